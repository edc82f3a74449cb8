package directory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"veilchat/internal/crypto"
	"veilchat/internal/directory"
	"veilchat/internal/domain"
	"veilchat/internal/store/memstore"
)

// fakeTransport serves canned directory profiles; message endpoints are
// unused here.
type fakeTransport struct {
	users map[string]domain.UserProfile
	err   error
	calls int
}

func (f *fakeTransport) FetchMessages(ctx context.Context, sessionID string) ([]domain.WireMessage, error) {
	panic("not used")
}

func (f *fakeTransport) SendMessage(ctx context.Context, m domain.WireMessage) (domain.WireMessage, error) {
	panic("not used")
}

func (f *fakeTransport) FetchUser(ctx context.Context, id string) (domain.UserProfile, error) {
	f.calls++
	if f.err != nil {
		return domain.UserProfile{}, f.err
	}
	p, ok := f.users[id]
	if !ok {
		return domain.UserProfile{}, domain.ErrDirectoryLookup
	}
	return p, nil
}

func validKeyB64(t *testing.T) string {
	t.Helper()
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	return crypto.EncodePublicKey(kp.Public)
}

func TestPublicKey_LocalHit(t *testing.T) {
	contacts := memstore.New()
	keyB64 := validKeyB64(t)
	require.NoError(t, contacts.UpsertContact(domain.Contact{ID: "alice", PublicKey: keyB64}))

	svc := directory.New(contacts, &fakeTransport{})
	pub, err := svc.PublicKey("alice")
	require.NoError(t, err)
	require.NotNil(t, pub)
	require.Equal(t, keyB64, crypto.EncodePublicKey(*pub))
}

func TestPublicKey_UnknownOrBadKey(t *testing.T) {
	contacts := memstore.New()
	svc := directory.New(contacts, &fakeTransport{})

	pub, err := svc.PublicKey("nobody")
	require.NoError(t, err)
	require.Nil(t, pub)

	// A stored key that does not parse behaves like a missing key.
	require.NoError(t, contacts.UpsertContact(domain.Contact{ID: "bob", PublicKey: "garbage!!"}))
	pub, err = svc.PublicKey("bob")
	require.NoError(t, err)
	require.Nil(t, pub)
}

func TestResolveAndCache_FetchesAndPersists(t *testing.T) {
	contacts := memstore.New()
	keyB64 := validKeyB64(t)
	ft := &fakeTransport{users: map[string]domain.UserProfile{
		"carol": {ID: "carol", DisplayName: "Carol", PublicKey: keyB64},
	}}
	svc := directory.New(contacts, ft)

	c, err := svc.ResolveAndCache(context.Background(), "carol")
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Equal(t, "Carol", c.DisplayName)

	// Persisted: a second resolve answers locally.
	c, err = svc.ResolveAndCache(context.Background(), "carol")
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Equal(t, 1, ft.calls)

	// And the key is now available for decryption.
	pub, err := svc.PublicKey("carol")
	require.NoError(t, err)
	require.NotNil(t, pub)
}

func TestResolveAndCache_RemoteFailure_NilNotError(t *testing.T) {
	svc := directory.New(memstore.New(), &fakeTransport{err: domain.ErrTransport})

	c, err := svc.ResolveAndCache(context.Background(), "ghost")
	require.NoError(t, err)
	require.Nil(t, c)
}
