package domain

import "fmt"

// ------------- X25519 -------------

// PrivateKey is a Curve25519 private scalar used for key agreement only.
type PrivateKey [32]byte

// PublicKey is the matching Curve25519 public point.
type PublicKey [32]byte

// SharedSecret is the symmetric key both parties derive independently.
// It is never transmitted.
type SharedSecret [32]byte

func (k PrivateKey) Slice() []byte   { return k[:] }
func (k PublicKey) Slice() []byte    { return k[:] }
func (s SharedSecret) Slice() []byte { return s[:] }

// KeyPair is the local user's key-agreement pair. Exactly one is active at
// a time; generating a new one invalidates everything encrypted under
// secrets derived from the old one.
type KeyPair struct {
	Public  PublicKey
	Private PrivateKey
}

func MustPrivateKey(b []byte) PrivateKey {
	if len(b) != 32 {
		panic(fmt.Errorf("X25519 private: want 32 bytes, got %d", len(b)))
	}
	var out PrivateKey
	copy(out[:], b)
	return out
}

func MustPublicKey(b []byte) PublicKey {
	if len(b) != 32 {
		panic(fmt.Errorf("X25519 public: want 32 bytes, got %d", len(b)))
	}
	var out PublicKey
	copy(out[:], b)
	return out
}
