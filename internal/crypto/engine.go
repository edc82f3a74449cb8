package crypto

import (
	"veilchat/internal/domain"
	"veilchat/internal/util/memzero"
)

// Engine binds the stateless primitives to the local key pair so callers
// can encrypt to and decrypt from a peer without handling secrets
// themselves. Decrypting an incoming message is a first-class operation
// here, not something reached through a concrete-type assertion.
type Engine struct {
	keys domain.KeyService
}

// NewEngine returns an Engine over the given key service.
func NewEngine(keys domain.KeyService) *Engine { return &Engine{keys: keys} }

// EncryptOutgoing derives the shared secret with the recipient and seals
// the plaintext with a fresh nonce.
func (e *Engine) EncryptOutgoing(peerPub domain.PublicKey, plaintext string) ([]byte, []byte, error) {
	priv, err := e.keys.PrivateKey()
	if err != nil {
		return nil, nil, err
	}
	secret, err := SharedSecret(priv, peerPub)
	if err != nil {
		return nil, nil, err
	}
	defer memzero.Zero(secret[:])
	return Encrypt(plaintext, secret)
}

// DecryptIncoming derives the shared secret with the sender and opens the
// ciphertext. Authentication failures surface as domain.ErrDecryption.
func (e *Engine) DecryptIncoming(senderPub domain.PublicKey, ciphertext, nonce []byte) (string, error) {
	priv, err := e.keys.PrivateKey()
	if err != nil {
		return "", err
	}
	secret, err := SharedSecret(priv, senderPub)
	if err != nil {
		return "", err
	}
	defer memzero.Zero(secret[:])
	return Decrypt(ciphertext, nonce, secret)
}

// Compile-time assertion that Engine implements domain.CryptoEngine.
var _ domain.CryptoEngine = (*Engine)(nil)
