// Package reconcile merges remote message batches into local persisted
// state and sends outgoing messages.
//
// One Sync call is a reconciliation pass for a single chat session:
// passes for the same session are serialized, passes for different
// sessions run concurrently. A message that reaches the decryption stage is
// always stored — with its plaintext when decryption succeeds, and with an
// explanatory placeholder when it cannot. Silent message loss is the one
// failure mode this package refuses to have.
package reconcile

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"veilchat/internal/codec"
	"veilchat/internal/domain"
)

// Placeholders stored instead of plaintext when decryption cannot succeed.
const (
	PlaceholderMissingData  = "missing encryption data"
	PlaceholderNoSenderKey  = "sender key unavailable"
	PlaceholderDecryptError = "decryption failed"
)

// reasonLimit truncates decryption failure details appended to the
// placeholder.
const reasonLimit = 80

// Engine orchestrates the key service, crypto engine, directory, codec and
// stores. The rest of the app calls into it; it is the only writer of
// message records.
type Engine struct {
	localID   string
	store     domain.MessageStore
	directory domain.Directory
	crypto    domain.CryptoEngine
	transport domain.Transport

	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// New returns an engine for the local user id.
func New(localID string, store domain.MessageStore, dir domain.Directory,
	crypto domain.CryptoEngine, transport domain.Transport) *Engine {
	return &Engine{
		localID:   localID,
		store:     store,
		directory: dir,
		crypto:    crypto,
		transport: transport,
		sessions:  make(map[string]*sync.Mutex),
	}
}

// Sync runs one reconciliation pass for the session with peerID and
// returns the updated local message list, the authoritative view for
// consumers. The remote batch itself is never handed out.
//
// Running the same pass twice is a no-op: deduplication is by message id
// against the local store, and persisting is an insert-if-absent. A pass
// cancelled mid-way leaves every already-persisted message intact and can
// simply be re-run.
func (e *Engine) Sync(ctx context.Context, peerID string) ([]domain.Message, error) {
	sessionID := domain.SessionIDFor(e.localID, peerID)
	lock := e.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	batch, err := e.transport.FetchMessages(ctx, sessionID)
	if err != nil {
		return nil, errors.WithMessage(err, "fetch remote batch")
	}

	existing, err := e.store.MessagesForSession(sessionID)
	if err != nil {
		return nil, errors.WithMessage(err, "read local messages")
	}
	known := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		known[m.ID] = struct{}{}
	}

	for _, w := range batch {
		if _, dup := known[w.ID]; dup {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Failure of one message never aborts the rest of the batch.
		if err := e.mergeOne(ctx, w); err != nil {
			jww.ERROR.Printf("reconcile: message %s: %v", w.ID, err)
		}
	}

	return e.store.MessagesForSession(sessionID)
}

// mergeOne decodes, classifies and persists a single new remote message.
func (e *Engine) mergeOne(ctx context.Context, w domain.WireMessage) error {
	m, decodeErr := codec.Decode(w)
	corrupt := errors.Is(decodeErr, domain.ErrCorruptRecord)
	if decodeErr != nil && !corrupt {
		return decodeErr
	}
	if corrupt {
		jww.WARN.Printf("reconcile: message %s violates ciphertext/nonce pairing, storing flagged", m.ID)
	}

	switch {
	case m.ReceiverID == e.localID:
		e.decryptIncoming(ctx, &m)

	case m.SenderID == e.localID:
		// Outgoing: the plaintext was known when we sent it. A record with
		// neither plaintext nor ciphertext carries nothing worth showing.
		if m.Plaintext == "" && !m.HasEncryptedBody() {
			jww.WARN.Printf("reconcile: dropping corrupted outgoing message %s (no content at all)", m.ID)
			return nil
		}

	default:
		jww.WARN.Printf("reconcile: message %s matches neither participant (sender=%s receiver=%s), storing as-is",
			m.ID, m.SenderID, m.ReceiverID)
	}

	return errors.WithMessage(e.store.UpsertMessage(m), "persist message")
}

// decryptIncoming resolves the placeholder ladder in order, each step
// short-circuiting. The message is always kept; only its body differs.
func (e *Engine) decryptIncoming(ctx context.Context, m *domain.Message) {
	// Incoming plaintext only ever comes out of the AEAD. A content field
	// on the wire is unauthenticated and must not shadow the placeholder.
	m.Plaintext = ""

	if !m.HasEncryptedBody() {
		m.Placeholder = PlaceholderMissingData
		return
	}

	senderPub := e.senderKey(ctx, m.SenderID)
	if senderPub == nil {
		m.Placeholder = PlaceholderNoSenderKey
		return
	}

	plaintext, err := e.crypto.DecryptIncoming(*senderPub, m.Ciphertext, m.Nonce)
	if err != nil {
		m.Placeholder = PlaceholderDecryptError + ": " + truncate(err.Error(), reasonLimit)
		return
	}
	m.Plaintext = plaintext
}

// senderKey resolves the sender's public key, pulling the contact from the
// remote directory when it is not known locally.
func (e *Engine) senderKey(ctx context.Context, senderID string) *domain.PublicKey {
	pub, err := e.directory.PublicKey(senderID)
	if err != nil {
		jww.ERROR.Printf("reconcile: key lookup for %s: %v", senderID, err)
		return nil
	}
	if pub != nil {
		return pub
	}

	contact, err := e.directory.ResolveAndCache(ctx, senderID)
	if err != nil {
		jww.ERROR.Printf("reconcile: directory resolve for %s: %v", senderID, err)
		return nil
	}
	if contact == nil {
		return nil
	}
	pub, err = e.directory.PublicKey(senderID)
	if err != nil || pub == nil {
		return nil
	}
	return pub
}

// ApplyStatus records a delivery-state change for a message. The store
// enforces monotonicity, so acknowledgements arriving out of order are
// absorbed without regressing.
func (e *Engine) ApplyStatus(id string, status domain.Status) error {
	return e.store.UpdateStatus(id, status)
}

func (e *Engine) sessionLock(sessionID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.sessions[sessionID]
	if !ok {
		l = &sync.Mutex{}
		e.sessions[sessionID] = l
	}
	return l
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
