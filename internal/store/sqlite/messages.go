package sqlite

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"veilchat/internal/domain"
)

// UpsertMessage inserts the message once; an id that already exists is left
// untouched. Deduplication is by id, never by content.
func (s *Store) UpsertMessage(m domain.Message) error {
	var (
		imgW, imgH int
		fName      string
		fSize      int64
		mime       string
	)
	if m.Image != nil {
		imgW, imgH, mime = m.Image.Width, m.Image.Height, m.Image.Mime
	}
	if m.File != nil {
		fName, fSize, mime = m.File.Name, m.File.Size, m.File.Mime
	}
	_, err := s.db.Exec(`
		INSERT INTO messages (
			id, session_id, sender_id, receiver_id, sent_at, type, status,
			ciphertext, nonce, plaintext, placeholder,
			image_width, image_height, file_name, file_size, mime_type
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		m.ID, m.SessionID(), m.SenderID, m.ReceiverID, m.SentAt.UnixMilli(),
		string(m.Type), string(m.Status),
		m.Ciphertext, m.Nonce, m.Plaintext, m.Placeholder,
		imgW, imgH, fName, fSize, mime,
	)
	return errors.Wrap(err, "upsert message")
}

// GetMessage loads one message by id.
func (s *Store) GetMessage(id string) (domain.Message, bool, error) {
	row := s.db.QueryRow(selectMessage+` WHERE id = ?`, id)
	m, err := scanMessage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Message{}, false, nil
	}
	if err != nil {
		return domain.Message{}, false, err
	}
	return m, true, nil
}

// MessagesForSession returns the session's messages ordered by send time.
func (s *Store) MessagesForSession(sessionID string) ([]domain.Message, error) {
	rows, err := s.db.Query(selectMessage+` WHERE session_id = ? ORDER BY sent_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateStatus applies a forward status transition inside a transaction.
// Out-of-order updates are ignored, never applied: the stored status cannot
// regress even when acknowledgements arrive shuffled.
func (s *Store) UpdateStatus(id string, status domain.Status) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRow(`SELECT status FROM messages WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !domain.Status(current).CanTransition(status) {
		return nil
	}
	if _, err := tx.Exec(`UPDATE messages SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return err
	}
	return tx.Commit()
}

const selectMessage = `
	SELECT id, sender_id, receiver_id, sent_at, type, status,
	       ciphertext, nonce, plaintext, placeholder,
	       image_width, image_height, file_name, file_size, mime_type
	FROM messages`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(r rowScanner) (domain.Message, error) {
	var (
		m          domain.Message
		sentAt     int64
		typ, stat  string
		imgW, imgH int
		fName      string
		fSize      int64
		mime       string
	)
	err := r.Scan(
		&m.ID, &m.SenderID, &m.ReceiverID, &sentAt, &typ, &stat,
		&m.Ciphertext, &m.Nonce, &m.Plaintext, &m.Placeholder,
		&imgW, &imgH, &fName, &fSize, &mime,
	)
	if err != nil {
		return domain.Message{}, err
	}
	m.SentAt = time.UnixMilli(sentAt)
	m.Type = domain.ParseMessageType(typ)
	m.Status = domain.ParseStatus(stat)
	switch m.Type {
	case domain.TypeImage:
		m.Image = &domain.ImageMeta{Width: imgW, Height: imgH, Mime: mime}
	case domain.TypeFile:
		m.File = &domain.FileMeta{Name: fName, Size: fSize, Mime: mime}
	}
	return m, nil
}

// Compile-time assertion that Store implements domain.MessageStore.
var _ domain.MessageStore = (*Store)(nil)
