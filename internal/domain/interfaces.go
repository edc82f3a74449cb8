package domain

import "context"

// SecureStorage is platform secure key storage: an opaque put/get of the
// two base64-encoded key halves, encrypted at rest. Implementations own the
// at-rest encryption; callers never see storage internals.
type SecureStorage interface {
	StoreKeys(privateB64, publicB64 string) error
	// LoadKeys returns ok=false when no pair has ever been stored.
	LoadKeys() (privateB64, publicB64 string, ok bool, err error)
}

// KeyService manages the local user's key-agreement pair.
type KeyService interface {
	// Generate creates and persists a fresh pair, destroying the old one.
	// Explicit calls only; the lazy bootstrap inside PublicKey/PrivateKey is
	// the single allowed implicit generation.
	Generate() (KeyPair, error)
	PublicKey() (PublicKey, error)
	PrivateKey() (PrivateKey, error)
}

// CryptoEngine exposes message encryption against a peer key as first-class
// operations, so callers never need to reach for a concrete implementation.
type CryptoEngine interface {
	EncryptOutgoing(peerPub PublicKey, plaintext string) (ciphertext, nonce []byte, err error)
	DecryptIncoming(senderPub PublicKey, ciphertext, nonce []byte) (string, error)
}

// MessageStore is the local persistence layer, the single source of truth
// for what the UI displays. UpsertMessage is a no-op for an id that is
// already present, which is what makes reconciliation idempotent.
type MessageStore interface {
	UpsertMessage(m Message) error
	GetMessage(id string) (Message, bool, error)
	MessagesForSession(sessionID string) ([]Message, error)
	// UpdateStatus applies a forward transition and silently ignores
	// out-of-order updates so a stored status never regresses.
	UpdateStatus(id string, status Status) error
}

// ContactStore persists known peers.
type ContactStore interface {
	UpsertContact(c Contact) error
	GetContact(id string) (Contact, bool, error)
	ListContacts() ([]Contact, error)
}

// Transport is the remote API. All three calls are fallible and
// latency-bearing; implementations bound each round-trip with a timeout.
type Transport interface {
	FetchMessages(ctx context.Context, sessionID string) ([]WireMessage, error)
	SendMessage(ctx context.Context, msg WireMessage) (WireMessage, error)
	FetchUser(ctx context.Context, contactID string) (UserProfile, error)
}

// Directory maps contact identity to the public key needed for decryption.
type Directory interface {
	// PublicKey returns nil when the contact or its key is unknown locally.
	PublicKey(contactID string) (*PublicKey, error)
	// ResolveAndCache fetches an unknown contact from the remote directory,
	// persists it and returns it. A nil contact with nil error means the
	// remote lookup failed too; callers treat that as "cannot proceed".
	ResolveAndCache(ctx context.Context, contactID string) (*Contact, error)
}
