package domain

import "github.com/pkg/errors"

// Failure taxonomy shared across the engine. Per-message failures are
// contained and become placeholders or status flags; only KeyStore-level
// failures are allowed to abort a whole operation.
var (
	// ErrInvalidKeyFormat means key bytes are not a recognised length or
	// encoding. The parser never guesses.
	ErrInvalidKeyFormat = errors.New("invalid public key format")

	// ErrDecryption is an authentication/integrity failure during symmetric
	// decryption. Retrying with the same inputs cannot succeed.
	ErrDecryption = errors.New("decryption failed")

	// ErrDirectoryLookup is a transient remote-directory failure; safe to
	// retry on the next reconciliation pass.
	ErrDirectoryLookup = errors.New("directory lookup failed")

	// ErrTransport is a transient transport failure; a send flips to the
	// failed status and may be retried explicitly.
	ErrTransport = errors.New("transport error")

	// ErrCorruptRecord marks a record violating the ciphertext/nonce
	// pairing invariant. Non-fatal to the batch.
	ErrCorruptRecord = errors.New("corrupt message record")

	// ErrNotFound is returned by stores for unknown ids.
	ErrNotFound = errors.New("not found")
)
