package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"veilchat/internal/domain"
	"veilchat/internal/util/memzero"
)

// hkdfLabel separates message-key derivation from any other use of the raw
// DH output.
const hkdfLabel = "veilchat message key v1"

// GenerateKeyPair returns a fresh Curve25519 key pair.
// The private key is clamped per RFC 7748.
func GenerateKeyPair() (domain.KeyPair, error) {
	var priv domain.PrivateKey
	if _, err := rand.Read(priv[:]); err != nil {
		return domain.KeyPair{}, err
	}
	clamp(&priv)
	pb, err := curve25519.X25519(priv.Slice(), curve25519.Basepoint)
	if err != nil {
		return domain.KeyPair{}, err
	}
	var pub domain.PublicKey
	copy(pub[:], pb)
	return domain.KeyPair{Public: pub, Private: priv}, nil
}

// SharedSecret computes the X25519 Diffie-Hellman value and stretches it
// through HKDF-SHA256 into the symmetric message key. The operation is
// symmetric in its pairs: SharedSecret(aPriv, bPub) == SharedSecret(bPriv, aPub).
func SharedSecret(priv domain.PrivateKey, peerPub domain.PublicKey) (domain.SharedSecret, error) {
	var out domain.SharedSecret
	dh, err := curve25519.X25519(priv.Slice(), peerPub.Slice())
	if err != nil {
		return out, err
	}
	kdf := hkdf.New(sha256.New, dh, nil, []byte(hkdfLabel))
	if _, err := io.ReadFull(kdf, out[:]); err != nil {
		return out, err
	}
	memzero.Zero(dh)
	return out, nil
}

func clamp(k *domain.PrivateKey) {
	kb := k[:]
	kb[0] &= 248
	kb[31] &= 127
	kb[31] |= 64
}
