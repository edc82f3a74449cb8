package crypto

import (
	"crypto/rand"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"

	"veilchat/internal/domain"
)

// NonceSize is the AEAD nonce length in bytes (96 bits).
const NonceSize = chacha20poly1305.NonceSize

// Encrypt seals plaintext under the shared secret with ChaCha20-Poly1305.
// A fresh random nonce is drawn on every call; the returned ciphertext
// includes the 16-byte authentication tag.
func Encrypt(plaintext string, secret domain.SharedSecret) (ciphertext, nonce []byte, err error) {
	aead, err := chacha20poly1305.New(secret.Slice())
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return aead.Seal(nil, nonce, []byte(plaintext), nil), nonce, nil
}

// Decrypt opens ciphertext. Any authentication failure — tampered data,
// wrong key, wrong nonce — yields ErrDecryption and no plaintext.
func Decrypt(ciphertext, nonce []byte, secret domain.SharedSecret) (string, error) {
	aead, err := chacha20poly1305.New(secret.Slice())
	if err != nil {
		return "", err
	}
	if len(nonce) != NonceSize {
		return "", errors.WithMessagef(domain.ErrDecryption, "nonce is %d bytes, want %d", len(nonce), NonceSize)
	}
	pt, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", errors.WithMessage(domain.ErrDecryption, err.Error())
	}
	return string(pt), nil
}
