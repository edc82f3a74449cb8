// Package sqlite is the production persistence layer: messages and
// contacts in a local SQLite database.
//
// The database opens in WAL mode so readers stay live during a
// reconciliation pass's writes, and every message write is a single
// statement or transaction, so a cancelled pass leaves only whole records
// behind.
package sqlite

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/pkg/errors"
)

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and ensures the schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) createTables() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS contacts (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL DEFAULT '',
		public_key TEXT NOT NULL DEFAULT '',
		presence TEXT NOT NULL DEFAULT 'unknown',
		last_seen INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		sender_id TEXT NOT NULL,
		receiver_id TEXT NOT NULL,
		sent_at INTEGER NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		ciphertext BLOB,
		nonce BLOB,
		plaintext TEXT NOT NULL DEFAULT '',
		placeholder TEXT NOT NULL DEFAULT '',
		image_width INTEGER NOT NULL DEFAULT 0,
		image_height INTEGER NOT NULL DEFAULT 0,
		file_name TEXT NOT NULL DEFAULT '',
		file_size INTEGER NOT NULL DEFAULT 0,
		mime_type TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, sent_at);
	`
	_, err := s.db.Exec(schema)
	return errors.Wrap(err, "create tables")
}
