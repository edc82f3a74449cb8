package crypto

import (
	"encoding/base64"

	"github.com/pkg/errors"

	"veilchat/internal/domain"
)

// wrappedKeyPrefix is the curve-type byte some clients prepend to X25519
// public keys on the wire.
const wrappedKeyPrefix = 0x05

// ParsePublicKey decodes a base64 public key in either accepted encoding:
// the raw 32-byte form, or the wrapped 33-byte form carrying a leading
// curve-type byte. Any other length or prefix is ErrInvalidKeyFormat; the
// parser never guesses.
func ParsePublicKey(b64 string) (domain.PublicKey, error) {
	var pub domain.PublicKey
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return pub, errors.WithMessage(domain.ErrInvalidKeyFormat, err.Error())
	}
	switch len(raw) {
	case 32:
		copy(pub[:], raw)
	case 33:
		if raw[0] != wrappedKeyPrefix {
			return pub, errors.WithMessagef(domain.ErrInvalidKeyFormat, "unknown key type byte 0x%02x", raw[0])
		}
		copy(pub[:], raw[1:])
	default:
		return pub, errors.WithMessagef(domain.ErrInvalidKeyFormat, "key is %d bytes", len(raw))
	}
	return pub, nil
}

// EncodePublicKey returns the raw base64 form used for storage and display.
func EncodePublicKey(pub domain.PublicKey) string {
	return base64.StdEncoding.EncodeToString(pub.Slice())
}
