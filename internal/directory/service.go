// Package directory maps contact identity to the public key needed for
// decryption, lazily pulling unknown contacts from the remote user
// directory.
package directory

import (
	"context"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"veilchat/internal/crypto"
	"veilchat/internal/domain"
)

// Service resolves contacts against the local store first and the remote
// directory second.
type Service struct {
	contacts  domain.ContactStore
	transport domain.Transport
}

// New returns a directory service over the given store and transport.
func New(contacts domain.ContactStore, transport domain.Transport) *Service {
	return &Service{contacts: contacts, transport: transport}
}

// PublicKey looks the contact up locally and parses its stored key. A nil
// key means the contact is unknown or carries no usable key; the caller
// decides whether to attempt a remote resolve.
func (s *Service) PublicKey(contactID string) (*domain.PublicKey, error) {
	c, ok, err := s.contacts.GetContact(contactID)
	if err != nil {
		return nil, err
	}
	if !ok || c.PublicKey == "" {
		return nil, nil
	}
	pub, err := crypto.ParsePublicKey(c.PublicKey)
	if err != nil {
		// A stored key that no longer parses is as unusable as a missing
		// one; reconciliation shows the placeholder instead of crashing.
		jww.WARN.Printf("directory: contact %s has unparseable public key: %v", contactID, err)
		return nil, nil
	}
	return &pub, nil
}

// ResolveAndCache queries the remote directory for an unknown contact,
// persists it and returns it. A nil contact with a nil error means the
// remote lookup failed too; callers treat that as "cannot proceed", not as
// an exception. The miss is safe to retry on the next pass.
func (s *Service) ResolveAndCache(ctx context.Context, contactID string) (*domain.Contact, error) {
	if c, ok, err := s.contacts.GetContact(contactID); err != nil {
		return nil, err
	} else if ok {
		return &c, nil
	}

	profile, err := s.transport.FetchUser(ctx, contactID)
	if err != nil {
		jww.INFO.Printf("directory: remote lookup for %s failed: %v",
			contactID, errors.WithMessage(domain.ErrDirectoryLookup, err.Error()))
		return nil, nil
	}
	c := profile.AsContact()
	if c.ID == "" {
		c.ID = contactID
	}
	if err := s.contacts.UpsertContact(c); err != nil {
		return nil, errors.Wrap(err, "cache resolved contact")
	}
	return &c, nil
}

// Compile-time assertion that Service implements domain.Directory.
var _ domain.Directory = (*Service)(nil)
