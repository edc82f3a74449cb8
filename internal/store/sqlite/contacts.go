package sqlite

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"veilchat/internal/domain"
)

// UpsertContact inserts or replaces the contact record. Unlike messages,
// contacts are mutable: edits and directory refreshes overwrite.
func (s *Store) UpsertContact(c domain.Contact) error {
	_, err := s.db.Exec(`
		INSERT INTO contacts (id, display_name, public_key, presence, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			public_key = excluded.public_key,
			presence = excluded.presence,
			last_seen = excluded.last_seen`,
		c.ID, c.DisplayName, c.PublicKey, string(c.Presence), c.LastSeen.UnixMilli(),
	)
	return errors.Wrap(err, "upsert contact")
}

// GetContact loads one contact by id.
func (s *Store) GetContact(id string) (domain.Contact, bool, error) {
	row := s.db.QueryRow(
		`SELECT id, display_name, public_key, presence, last_seen FROM contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Contact{}, false, nil
	}
	if err != nil {
		return domain.Contact{}, false, err
	}
	return c, true, nil
}

// ListContacts returns all contacts ordered by id.
func (s *Store) ListContacts() ([]domain.Contact, error) {
	rows, err := s.db.Query(
		`SELECT id, display_name, public_key, presence, last_seen FROM contacts ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanContact(r rowScanner) (domain.Contact, error) {
	var (
		c        domain.Contact
		presence string
		lastSeen int64
	)
	if err := r.Scan(&c.ID, &c.DisplayName, &c.PublicKey, &presence, &lastSeen); err != nil {
		return domain.Contact{}, err
	}
	c.Presence = domain.Presence(presence)
	if lastSeen > 0 {
		c.LastSeen = time.UnixMilli(lastSeen)
	}
	return c, nil
}

// Compile-time assertion that Store implements domain.ContactStore.
var _ domain.ContactStore = (*Store)(nil)
