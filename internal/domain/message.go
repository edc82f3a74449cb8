package domain

import (
	"strings"
	"time"
)

// MessageType discriminates what the plaintext carries.
type MessageType string

const (
	TypeText  MessageType = "Text"
	TypeImage MessageType = "Image"
	TypeFile  MessageType = "File"
)

// ParseMessageType maps a wire discriminator to a MessageType. Unknown or
// missing values default to text rather than failing the message.
func ParseMessageType(s string) MessageType {
	switch s {
	case string(TypeImage):
		return TypeImage
	case string(TypeFile):
		return TypeFile
	default:
		return TypeText
	}
}

// Status is the delivery state of a message. It only ever moves forward.
type Status string

const (
	StatusPending   Status = "pending-send"
	StatusSent      Status = "sent"
	StatusDelivered Status = "delivered"
	StatusRead      Status = "read"
	StatusFailed    Status = "failed"
)

// Rank orders the linear statuses. Failed sits outside the line and is
// handled by CanTransition.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	default:
		return -1
	}
}

// CanTransition reports whether moving from s to next is a legal forward
// step. Failed is reachable from pending-send or sent only; everything else
// must strictly advance the rank.
func (s Status) CanTransition(next Status) bool {
	if next == StatusFailed {
		return s == StatusPending || s == StatusSent
	}
	if s == StatusFailed {
		return false
	}
	return next.Rank() > s.Rank()
}

// ParseStatus maps a wire status string; unknown values degrade to
// pending-send so a bad record never blocks the batch.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusSent, StatusDelivered, StatusRead, StatusFailed:
		return Status(s)
	default:
		return StatusPending
	}
}

// ImageMeta carries the type-specific fields of an image message.
type ImageMeta struct {
	Width  int
	Height int
	Mime   string
}

// FileMeta carries the type-specific fields of a file message.
type FileMeta struct {
	Name string
	Size int64
	Mime string
}

// Message is the domain record for one chat message.
//
// Ciphertext and Nonce are either both empty (placeholder or corrupt
// record) or both non-empty; anything else violates the pairing invariant
// and is flagged as a corrupt record. Plaintext and Placeholder are local
// state only and never leave the device: exactly one of them is expected to
// be set once reconciliation has processed the message.
type Message struct {
	ID         string
	SenderID   string
	ReceiverID string
	SentAt     time.Time
	Type       MessageType
	Image      *ImageMeta
	File       *FileMeta
	Status     Status
	Ciphertext []byte
	Nonce      []byte

	// Local-only fields.
	Plaintext   string
	Placeholder string
}

// SessionID returns the canonical chat-session key for the message.
func (m Message) SessionID() string {
	return SessionIDFor(m.SenderID, m.ReceiverID)
}

// HasEncryptedBody reports whether both ciphertext and nonce are present.
func (m Message) HasEncryptedBody() bool {
	return len(m.Ciphertext) > 0 && len(m.Nonce) > 0
}

// ValidEncryptionPairing reports whether the ciphertext/nonce pairing
// invariant holds: both present or both absent.
func (m Message) ValidEncryptionPairing() bool {
	return (len(m.Ciphertext) == 0) == (len(m.Nonce) == 0)
}

// DisplayBody is what the UI renders: the recovered plaintext, or the
// placeholder when decryption could not succeed.
func (m Message) DisplayBody() string {
	if m.Plaintext != "" {
		return m.Plaintext
	}
	return m.Placeholder
}

// SessionIDFor derives the session key for the unordered participant pair
// {a, b}. Both orderings yield the same id.
func SessionIDFor(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "|" + b
}
