package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"veilchat/internal/codec"
	"veilchat/internal/domain"
)

// ErrRecipientKeyUnavailable means the recipient's public key could not be
// resolved locally or remotely; nothing can be encrypted to them.
var ErrRecipientKeyUnavailable = errors.New("recipient key unavailable")

// Draft is an outgoing message before encryption.
type Draft struct {
	Body  string
	Type  domain.MessageType
	Image *domain.ImageMeta
	File  *domain.FileMeta
}

// Send encrypts the draft to peerID and ships it.
//
// The message is persisted with pending-send status before the transport is
// touched, so the conversation reflects the attempt immediately. A
// transport failure flips the status to failed and is returned alongside
// the persisted message; an acknowledgment flips it to sent (or further,
// when the server echo already reports a later state).
func (e *Engine) Send(ctx context.Context, peerID string, d Draft) (domain.Message, error) {
	pub, err := e.recipientKey(ctx, peerID)
	if err != nil {
		return domain.Message{}, err
	}

	ct, nonce, err := e.crypto.EncryptOutgoing(*pub, d.Body)
	if err != nil {
		return domain.Message{}, errors.WithMessage(err, "encrypt outgoing")
	}

	typ := d.Type
	if typ == "" {
		typ = domain.TypeText
	}
	m := domain.Message{
		ID:         uuid.NewString(),
		SenderID:   e.localID,
		ReceiverID: peerID,
		SentAt:     time.Now(),
		Type:       typ,
		Image:      d.Image,
		File:       d.File,
		Status:     domain.StatusPending,
		Ciphertext: ct,
		Nonce:      nonce,
		Plaintext:  d.Body,
	}
	if err := e.store.UpsertMessage(m); err != nil {
		return domain.Message{}, errors.WithMessage(err, "persist outgoing")
	}

	echo, err := e.transport.SendMessage(ctx, codec.Encode(m))
	if err != nil {
		if serr := e.store.UpdateStatus(m.ID, domain.StatusFailed); serr != nil {
			jww.ERROR.Printf("send: marking %s failed: %v", m.ID, serr)
		}
		m.Status = domain.StatusFailed
		return m, errors.WithMessage(err, "transport send")
	}

	next := domain.ParseStatus(echo.Status)
	if next.Rank() < domain.StatusSent.Rank() {
		next = domain.StatusSent
	}
	if err := e.store.UpdateStatus(m.ID, next); err != nil {
		return m, errors.WithMessage(err, "record sent status")
	}
	m.Status = next
	return m, nil
}

// recipientKey resolves the peer's public key, consulting the remote
// directory for unknown contacts.
func (e *Engine) recipientKey(ctx context.Context, peerID string) (*domain.PublicKey, error) {
	pub, err := e.directory.PublicKey(peerID)
	if err != nil {
		return nil, err
	}
	if pub == nil {
		if _, err := e.directory.ResolveAndCache(ctx, peerID); err != nil {
			return nil, err
		}
		pub, err = e.directory.PublicKey(peerID)
		if err != nil {
			return nil, err
		}
	}
	if pub == nil {
		return nil, errors.WithMessagef(ErrRecipientKeyUnavailable, "peer %s", peerID)
	}
	return pub, nil
}
