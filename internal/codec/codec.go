// Package codec converts between the wire message representation and the
// domain record.
//
// Decoding is defensive: malformed base64 degrades to an empty field,
// unknown type or status discriminators fall back to their defaults, and a
// ciphertext/nonce pairing violation is flagged rather than raised. A batch
// is never lost to one bad record.
package codec

import (
	"encoding/base64"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"veilchat/internal/domain"
)

// Decode converts a wire message into a domain record.
//
// The returned error is domain.ErrCorruptRecord when the ciphertext/nonce
// pairing invariant is violated; the message is still returned with both
// fields cleared so the caller can store it behind a placeholder instead of
// dropping it.
func Decode(w domain.WireMessage) (domain.Message, error) {
	m := domain.Message{
		ID:         w.ID,
		SenderID:   w.SenderID,
		ReceiverID: w.ReceiverID,
		SentAt:     time.UnixMilli(w.Timestamp),
		Type:       domain.ParseMessageType(w.Type),
		Status:     domain.ParseStatus(w.Status),
		Ciphertext: decodeB64(w.EncryptedContent, w.ID, "encrypted_content"),
		Nonce:      decodeB64(w.IV, w.ID, "iv"),
	}
	if w.Content != nil {
		m.Plaintext = *w.Content
	}
	switch m.Type {
	case domain.TypeImage:
		m.Image = &domain.ImageMeta{Width: w.ImageWidth, Height: w.ImageHeight, Mime: w.MimeType}
	case domain.TypeFile:
		m.File = &domain.FileMeta{Name: w.FileName, Size: w.FileSize, Mime: w.MimeType}
	}

	if !m.ValidEncryptionPairing() {
		m.Ciphertext = nil
		m.Nonce = nil
		return m, errors.WithMessagef(domain.ErrCorruptRecord, "message %s has unpaired ciphertext/nonce", w.ID)
	}
	return m, nil
}

// Encode is the mirror of Decode: every field Decode extracted survives a
// round trip. Local-only fields (placeholder, recovered plaintext of
// incoming messages) are not part of the wire shape; Content is set only
// when the message originated locally in plaintext.
func Encode(m domain.Message) domain.WireMessage {
	w := domain.WireMessage{
		ID:               m.ID,
		Timestamp:        m.SentAt.UnixMilli(),
		SenderID:         m.SenderID,
		ReceiverID:       m.ReceiverID,
		Status:           string(m.Status),
		Type:             string(m.Type),
		EncryptedContent: base64.StdEncoding.EncodeToString(m.Ciphertext),
		IV:               base64.StdEncoding.EncodeToString(m.Nonce),
	}
	if m.Plaintext != "" {
		content := m.Plaintext
		w.Content = &content
	}
	if m.Image != nil {
		w.ImageWidth = m.Image.Width
		w.ImageHeight = m.Image.Height
		w.MimeType = m.Image.Mime
	}
	if m.File != nil {
		w.FileName = m.File.Name
		w.FileSize = m.File.Size
		w.MimeType = m.File.Mime
	}
	return w
}

// decodeB64 tolerates malformed input: downstream logic already treats an
// empty field as "no encrypted body", which is the safe reading of garbage.
func decodeB64(s, id, field string) []byte {
	if s == "" {
		return nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		jww.WARN.Printf("codec: message %s has malformed base64 in %s, treating as empty", id, field)
		return nil
	}
	return b
}
