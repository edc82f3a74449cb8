package securefile

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"veilchat/internal/domain"
	"veilchat/internal/util/memzero"
)

const keysFile = "keys.enc"

// Store persists the two base64 key strings in a single file encrypted
// with a passphrase-derived key. It is the desktop/test stand-in for a
// platform keychain: the raw key halves never touch disk unencrypted.
type Store struct {
	dir        string
	passphrase string
	mu         sync.Mutex
}

// New returns a Store rooted at dir, sealing with passphrase.
func New(dir, passphrase string) *Store {
	return &Store{dir: dir, passphrase: passphrase}
}

type payload struct {
	PrivateB64 string `json:"private"`
	PublicB64  string `json:"public"`
}

// envelope is the on-disk shape: scrypt salt, AEAD nonce, ciphertext.
type envelope struct {
	Salt  []byte `json:"salt"`
	Nonce []byte `json:"nonce"`
	CT    []byte `json:"ct"`
}

// StoreKeys seals both key halves into the keys file, replacing any
// previous content atomically.
func (s *Store) StoreKeys(privateB64, publicB64 string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(payload{PrivateB64: privateB64, PublicB64: publicB64})
	if err != nil {
		return err
	}
	blob, err := s.seal(raw)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, keysFile), blob, 0o600)
}

// LoadKeys opens the keys file. ok is false when no pair was ever stored.
func (s *Store) LoadKeys() (privateB64, publicB64 string, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blob, err := os.ReadFile(filepath.Join(s.dir, keysFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", "", false, nil
	}
	if err != nil {
		return "", "", false, err
	}
	raw, err := s.open(blob)
	if err != nil {
		return "", "", false, err
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return "", "", false, err
	}
	memzero.Zero(raw)
	return p.PrivateB64, p.PublicB64, true, nil
}

func (s *Store) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(s.passphrase), salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, plaintext, salt)
	return json.Marshal(envelope{Salt: salt, Nonce: nonce, CT: ct})
}

func (s *Store) open(blob []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, err
	}
	key, err := scrypt.Key([]byte(s.passphrase), env.Salt, scryptN, scryptR, scryptP, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer memzero.Zero(key)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, env.Nonce, env.CT, env.Salt)
}

// scrypt cost parameters (fixed here; tune as needed)
const (
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// writeFile writes bytes via a temp file, then atomically replaces the target.
func writeFile(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// Compile-time assertion that Store implements domain.SecureStorage.
var _ domain.SecureStorage = (*Store)(nil)
