package app

import (
	"path/filepath"

	"veilchat/internal/crypto"
	"veilchat/internal/directory"
	"veilchat/internal/domain"
	"veilchat/internal/keystore"
	"veilchat/internal/reconcile"
	"veilchat/internal/remote"
	"veilchat/internal/store/memstore"
	"veilchat/internal/store/securefile"
	"veilchat/internal/store/sqlite"
)

// Wire bundles the constructed stores, services and clients for the CLI.
type Wire struct {
	Keys      *keystore.Service
	Messages  domain.MessageStore
	Contacts  domain.ContactStore
	Directory domain.Directory
	Engine    *reconcile.Engine
	Transport domain.Transport

	closer func() error
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	keys := keystore.New(securefile.New(cfg.Home, cfg.Passphrase))
	cryptoEngine := crypto.NewEngine(keys)

	var (
		messages domain.MessageStore
		contacts domain.ContactStore
		closer   func() error
	)
	if cfg.InMemory {
		ms := memstore.New()
		messages, contacts = ms, ms
	} else {
		db, err := sqlite.New(filepath.Join(cfg.Home, "veilchat.db"))
		if err != nil {
			return nil, err
		}
		messages, contacts = db, db
		closer = db.Close
	}

	transport := remote.New(cfg.ServerURL, cfg.HTTP, cfg.Timeout)
	dir := directory.New(contacts, transport)
	engine := reconcile.New(cfg.UserID, messages, dir, cryptoEngine, transport)

	return &Wire{
		Keys:      keys,
		Messages:  messages,
		Contacts:  contacts,
		Directory: dir,
		Engine:    engine,
		Transport: transport,
		closer:    closer,
	}, nil
}

// Close releases held resources (the sqlite handle, when in use).
func (w *Wire) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer()
}
