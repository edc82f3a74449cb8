// Package memstore is an in-memory indexed store with the same interface
// and guarantees as the sqlite store. It backs tests and throwaway
// profiles; because it honours the same upsert and status rules, code
// exercised against it sees the invariants of the real store.
package memstore

import (
	"sort"
	"sync"

	"veilchat/internal/domain"
)

// Store indexes messages and contacts by id under one RWMutex, so readers
// observe either the pre-write or post-write record, never a torn one.
type Store struct {
	mu       sync.RWMutex
	messages map[string]domain.Message
	contacts map[string]domain.Contact
}

// New returns an empty store.
func New() *Store {
	return &Store{
		messages: make(map[string]domain.Message),
		contacts: make(map[string]domain.Contact),
	}
}

// UpsertMessage inserts m if its id is new and does nothing otherwise,
// which is what makes a repeated reconciliation pass a no-op.
func (s *Store) UpsertMessage(m domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.messages[m.ID]; exists {
		return nil
	}
	s.messages[m.ID] = m
	return nil
}

func (s *Store) GetMessage(id string) (domain.Message, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	return m, ok, nil
}

// MessagesForSession returns the session's messages ordered by send time,
// ties broken by id for a stable view.
func (s *Store) MessagesForSession(sessionID string) ([]domain.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Message
	for _, m := range s.messages {
		if m.SessionID() == sessionID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SentAt.Equal(out[j].SentAt) {
			return out[i].SentAt.Before(out[j].SentAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateStatus applies a forward transition; out-of-order updates are
// ignored so a status never regresses. Unknown ids are domain.ErrNotFound.
func (s *Store) UpdateStatus(id string, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !m.Status.CanTransition(status) {
		return nil
	}
	m.Status = status
	s.messages[id] = m
	return nil
}

func (s *Store) UpsertContact(c domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[c.ID] = c
	return nil
}

func (s *Store) GetContact(id string) (domain.Contact, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contacts[id]
	return c, ok, nil
}

func (s *Store) ListContacts() ([]domain.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Compile-time assertions against the store interfaces.
var (
	_ domain.MessageStore = (*Store)(nil)
	_ domain.ContactStore = (*Store)(nil)
)
