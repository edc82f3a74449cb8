package keystore

import (
	"encoding/base64"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"veilchat/internal/crypto"
	"veilchat/internal/domain"
)

// Service owns the local user's key-agreement pair.
//
// The persisted pair is a single mutable resource: Generate takes the write
// lock, so a decrypt that already obtained the private key finishes with
// the old key and one that arrives during replacement waits for the new
// one. Raw private bytes leave this package only through PrivateKey.
type Service struct {
	storage domain.SecureStorage
	mu      sync.RWMutex
}

// New returns a key service backed by the given secure storage.
func New(storage domain.SecureStorage) *Service { return &Service{storage: storage} }

// Generate creates a fresh pair and persists it, overwriting any previous
// pair. This is destructive: ciphertext received under secrets derived from
// the old pair becomes undecryptable. Callers invoke this explicitly; the
// only implicit generation is the lazy bootstrap in load.
func (s *Service) Generate() (domain.KeyPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generateLocked()
}

// PublicKey loads the persisted public key, bootstrapping a pair first if
// none exists yet.
func (s *Service) PublicKey() (domain.PublicKey, error) {
	kp, err := s.load()
	return kp.Public, err
}

// PrivateKey loads the persisted private key for key agreement,
// bootstrapping a pair first if none exists yet.
func (s *Service) PrivateKey() (domain.PrivateKey, error) {
	kp, err := s.load()
	return kp.Private, err
}

// Fingerprint returns the short fingerprint of the local public key.
func (s *Service) Fingerprint() (string, error) {
	pub, err := s.PublicKey()
	if err != nil {
		return "", err
	}
	return crypto.Fingerprint(pub.Slice()), nil
}

func (s *Service) load() (domain.KeyPair, error) {
	s.mu.RLock()
	kp, ok, err := s.read()
	s.mu.RUnlock()
	if err != nil {
		return domain.KeyPair{}, err
	}
	if ok {
		return kp, nil
	}

	// First use on this device: bootstrap a pair. Re-check under the write
	// lock in case another goroutine got here first.
	s.mu.Lock()
	defer s.mu.Unlock()
	kp, ok, err = s.read()
	if err != nil {
		return domain.KeyPair{}, err
	}
	if ok {
		return kp, nil
	}
	jww.INFO.Printf("keystore: no key pair on device, bootstrapping a new one")
	return s.generateLocked()
}

func (s *Service) read() (domain.KeyPair, bool, error) {
	privB64, pubB64, ok, err := s.storage.LoadKeys()
	if err != nil || !ok {
		return domain.KeyPair{}, false, err
	}
	priv, err := base64.StdEncoding.DecodeString(privB64)
	if err != nil {
		return domain.KeyPair{}, false, errors.Wrap(err, "stored private key")
	}
	pub, err := base64.StdEncoding.DecodeString(pubB64)
	if err != nil {
		return domain.KeyPair{}, false, errors.Wrap(err, "stored public key")
	}
	if len(priv) != 32 || len(pub) != 32 {
		return domain.KeyPair{}, false, errors.Errorf("stored key pair has lengths %d/%d, want 32/32", len(priv), len(pub))
	}
	return domain.KeyPair{
		Private: domain.MustPrivateKey(priv),
		Public:  domain.MustPublicKey(pub),
	}, true, nil
}

func (s *Service) generateLocked() (domain.KeyPair, error) {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return domain.KeyPair{}, err
	}
	err = s.storage.StoreKeys(
		base64.StdEncoding.EncodeToString(kp.Private.Slice()),
		base64.StdEncoding.EncodeToString(kp.Public.Slice()),
	)
	if err != nil {
		return domain.KeyPair{}, errors.Wrap(err, "persist key pair")
	}
	return kp, nil
}

// Compile-time assertion that Service implements domain.KeyService.
var _ domain.KeyService = (*Service)(nil)
