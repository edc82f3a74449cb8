package reconcile_test

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"veilchat/internal/crypto"
	"veilchat/internal/directory"
	"veilchat/internal/domain"
	"veilchat/internal/reconcile"
	"veilchat/internal/store/memstore"
)

// fixedKeys is a KeyService over a pre-generated pair.
type fixedKeys struct{ kp domain.KeyPair }

func (f fixedKeys) Generate() (domain.KeyPair, error)      { return f.kp, nil }
func (f fixedKeys) PublicKey() (domain.PublicKey, error)   { return f.kp.Public, nil }
func (f fixedKeys) PrivateKey() (domain.PrivateKey, error) { return f.kp.Private, nil }

// fakeTransport serves a canned batch and directory, and records sends.
type fakeTransport struct {
	batch    []domain.WireMessage
	fetchErr error

	users map[string]domain.UserProfile

	sent     []domain.WireMessage
	sendErr  error
	echoStat string
}

func (f *fakeTransport) FetchMessages(ctx context.Context, sessionID string) ([]domain.WireMessage, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.batch, nil
}

func (f *fakeTransport) SendMessage(ctx context.Context, m domain.WireMessage) (domain.WireMessage, error) {
	if f.sendErr != nil {
		return domain.WireMessage{}, f.sendErr
	}
	f.sent = append(f.sent, m)
	echo := m
	if f.echoStat != "" {
		echo.Status = f.echoStat
	} else {
		echo.Status = string(domain.StatusSent)
	}
	return echo, nil
}

func (f *fakeTransport) FetchUser(ctx context.Context, id string) (domain.UserProfile, error) {
	p, ok := f.users[id]
	if !ok {
		return domain.UserProfile{}, domain.ErrDirectoryLookup
	}
	return p, nil
}

// harness bundles one local user ("bob") with his engine and collaborators.
type harness struct {
	engine    *reconcile.Engine
	store     *memstore.Store
	transport *fakeTransport
	bob       domain.KeyPair
	alice     domain.KeyPair
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	bob, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	alice, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	store := memstore.New()
	require.NoError(t, store.UpsertContact(domain.Contact{
		ID:        "alice",
		PublicKey: crypto.EncodePublicKey(alice.Public),
	}))

	ft := &fakeTransport{users: map[string]domain.UserProfile{}}
	dir := directory.New(store, ft)
	engine := reconcile.New("bob", store, dir, crypto.NewEngine(fixedKeys{bob}), ft)
	return &harness{engine: engine, store: store, transport: ft, bob: bob, alice: alice}
}

// incomingFrom builds a wire message encrypted from the sender pair to bob.
func (h *harness) incomingFrom(t *testing.T, id, senderID string, sender domain.KeyPair, body string) domain.WireMessage {
	t.Helper()
	secret, err := crypto.SharedSecret(sender.Private, h.bob.Public)
	require.NoError(t, err)
	ct, nonce, err := crypto.Encrypt(body, secret)
	require.NoError(t, err)
	return domain.WireMessage{
		ID:               id,
		Timestamp:        time.Now().UnixMilli(),
		SenderID:         senderID,
		ReceiverID:       "bob",
		Status:           string(domain.StatusSent),
		Type:             string(domain.TypeText),
		EncryptedContent: base64.StdEncoding.EncodeToString(ct),
		IV:               base64.StdEncoding.EncodeToString(nonce),
	}
}

func TestSync_HappyPath(t *testing.T) {
	h := newHarness(t)
	h.transport.batch = []domain.WireMessage{h.incomingFrom(t, "m1", "alice", h.alice, "hello")}

	msgs, err := h.engine.Sync(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "alice", msgs[0].SenderID)
	require.Equal(t, "hello", msgs[0].Plaintext)
	require.Empty(t, msgs[0].Placeholder)
}

func TestSync_Idempotent(t *testing.T) {
	h := newHarness(t)
	h.transport.batch = []domain.WireMessage{
		h.incomingFrom(t, "m1", "alice", h.alice, "one"),
		h.incomingFrom(t, "m2", "alice", h.alice, "two"),
	}

	first, err := h.engine.Sync(context.Background(), "alice")
	require.NoError(t, err)
	second, err := h.engine.Sync(context.Background(), "alice")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, second, 2)
}

func TestSync_UnknownSender_LookupFails(t *testing.T) {
	h := newHarness(t)
	mallory, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	h.transport.batch = []domain.WireMessage{
		h.incomingFrom(t, "bad", "mallory", mallory, "psst"),
		h.incomingFrom(t, "good", "alice", h.alice, "hi"),
	}

	// mallory's messages land in the alice session batch only in this
	// contrived fixture; what matters is that her failure is contained.
	msgs, err := h.engine.Sync(context.Background(), "alice")
	require.NoError(t, err)

	byID := map[string]domain.Message{}
	for _, m := range msgs {
		byID[m.ID] = m
	}
	require.Equal(t, reconcile.PlaceholderNoSenderKey, byID["bad"].Placeholder)
	require.Empty(t, byID["bad"].Plaintext)
	require.Equal(t, "hi", byID["good"].Plaintext)
}

func TestSync_UnknownSender_ResolvedRemotely(t *testing.T) {
	h := newHarness(t)
	carol, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	h.transport.users["carol"] = domain.UserProfile{
		ID:          "carol",
		DisplayName: "Carol",
		PublicKey:   crypto.EncodePublicKey(carol.Public),
	}
	h.transport.batch = []domain.WireMessage{h.incomingFrom(t, "m1", "carol", carol, "hey bob")}

	msgs, err := h.engine.Sync(context.Background(), "carol")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, "hey bob", msgs[0].Plaintext)

	// The lazily fetched contact is persisted.
	c, ok, err := h.store.GetContact("carol")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Carol", c.DisplayName)
}

func TestSync_MissingEncryptionData(t *testing.T) {
	h := newHarness(t)
	h.transport.batch = []domain.WireMessage{{
		ID:         "empty",
		Timestamp:  time.Now().UnixMilli(),
		SenderID:   "alice",
		ReceiverID: "bob",
		Type:       string(domain.TypeText),
	}}

	msgs, err := h.engine.Sync(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, reconcile.PlaceholderMissingData, msgs[0].Placeholder)
}

func TestSync_UnpairedCiphertext_StoredFlagged(t *testing.T) {
	h := newHarness(t)
	w := h.incomingFrom(t, "torn", "alice", h.alice, "body")
	w.IV = "" // violates the pairing invariant

	h.transport.batch = []domain.WireMessage{w}
	msgs, err := h.engine.Sync(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, reconcile.PlaceholderMissingData, msgs[0].Placeholder)
	require.Empty(t, msgs[0].Ciphertext)
}

func TestSync_TamperedCiphertext(t *testing.T) {
	h := newHarness(t)
	w := h.incomingFrom(t, "tampered", "alice", h.alice, "body")
	ct, err := base64.StdEncoding.DecodeString(w.EncryptedContent)
	require.NoError(t, err)
	ct[0] ^= 0xff
	w.EncryptedContent = base64.StdEncoding.EncodeToString(ct)

	h.transport.batch = []domain.WireMessage{w}
	msgs, err := h.engine.Sync(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.True(t, strings.HasPrefix(msgs[0].Placeholder, reconcile.PlaceholderDecryptError))
	require.Empty(t, msgs[0].Plaintext)
}

func TestSync_ForgedIncomingContent_Ignored(t *testing.T) {
	h := newHarness(t)
	mallory, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	forged := "forged by server"

	// A content field on an incoming message is unauthenticated and must
	// never shadow the placeholder, whichever ladder step applies.
	bare := domain.WireMessage{
		ID:         "bare",
		Content:    &forged,
		Timestamp:  time.Now().UnixMilli(),
		SenderID:   "alice",
		ReceiverID: "bob",
		Type:       string(domain.TypeText),
	}
	noKey := h.incomingFrom(t, "nokey", "mallory", mallory, "psst")
	noKey.Content = &forged
	tampered := h.incomingFrom(t, "tampered", "alice", h.alice, "body")
	ct, err := base64.StdEncoding.DecodeString(tampered.EncryptedContent)
	require.NoError(t, err)
	ct[0] ^= 0xff
	tampered.EncryptedContent = base64.StdEncoding.EncodeToString(ct)
	tampered.Content = &forged

	h.transport.batch = []domain.WireMessage{bare, noKey, tampered}
	msgs, err := h.engine.Sync(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	byID := map[string]domain.Message{}
	for _, m := range msgs {
		byID[m.ID] = m
	}
	require.Equal(t, reconcile.PlaceholderMissingData, byID["bare"].DisplayBody())
	require.Equal(t, reconcile.PlaceholderNoSenderKey, byID["nokey"].DisplayBody())
	require.True(t, strings.HasPrefix(byID["tampered"].DisplayBody(), reconcile.PlaceholderDecryptError))
	for id, m := range byID {
		require.Empty(t, m.Plaintext, "message %s kept unauthenticated plaintext", id)
	}
}

func TestSync_OutgoingWithContent(t *testing.T) {
	h := newHarness(t)
	content := "sent earlier from this device"
	h.transport.batch = []domain.WireMessage{{
		ID:         "out",
		Content:    &content,
		Timestamp:  time.Now().UnixMilli(),
		SenderID:   "bob",
		ReceiverID: "alice",
		Status:     string(domain.StatusDelivered),
		Type:       string(domain.TypeText),
	}}

	msgs, err := h.engine.Sync(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	require.Equal(t, content, msgs[0].Plaintext)
	require.Equal(t, domain.StatusDelivered, msgs[0].Status)
}

func TestSync_CorruptedOutgoingDropped(t *testing.T) {
	h := newHarness(t)
	h.transport.batch = []domain.WireMessage{{
		ID:         "husk",
		Timestamp:  time.Now().UnixMilli(),
		SenderID:   "bob",
		ReceiverID: "alice",
		Type:       string(domain.TypeText),
	}}

	msgs, err := h.engine.Sync(context.Background(), "alice")
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestSync_AmbiguousDirection_StoredNotCrashed(t *testing.T) {
	h := newHarness(t)
	stray := "who are these people"
	h.transport.batch = []domain.WireMessage{
		{
			ID:         "stray",
			Content:    &stray,
			Timestamp:  time.Now().UnixMilli(),
			SenderID:   "carol",
			ReceiverID: "dave",
			Type:       string(domain.TypeText),
		},
		h.incomingFrom(t, "fine", "alice", h.alice, "still works"),
	}

	_, err := h.engine.Sync(context.Background(), "alice")
	require.NoError(t, err)

	got, ok, err := h.store.GetMessage("stray")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, stray, got.Plaintext)

	fine, ok, _ := h.store.GetMessage("fine")
	require.True(t, ok)
	require.Equal(t, "still works", fine.Plaintext)
}

func TestSync_FetchFailure(t *testing.T) {
	h := newHarness(t)
	h.transport.fetchErr = domain.ErrTransport
	_, err := h.engine.Sync(context.Background(), "alice")
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestSync_ConcurrentSameSession_NoDuplicates(t *testing.T) {
	h := newHarness(t)
	h.transport.batch = []domain.WireMessage{
		h.incomingFrom(t, "m1", "alice", h.alice, "one"),
		h.incomingFrom(t, "m2", "alice", h.alice, "two"),
		h.incomingFrom(t, "m3", "alice", h.alice, "three"),
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.engine.Sync(context.Background(), "alice")
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	msgs, err := h.store.MessagesForSession(domain.SessionIDFor("bob", "alice"))
	require.NoError(t, err)
	require.Len(t, msgs, 3)
}

func TestSend_HappyPath(t *testing.T) {
	h := newHarness(t)

	m, err := h.engine.Send(context.Background(), "alice", reconcile.Draft{Body: "hello alice"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusSent, m.Status)
	require.NotEmpty(t, m.ID)
	require.Len(t, h.transport.sent, 1)

	// Persisted locally with the transport-acknowledged status.
	stored, ok, err := h.store.GetMessage(m.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, domain.StatusSent, stored.Status)
	require.Equal(t, "hello alice", stored.Plaintext)

	// The posted wire message carries the plaintext echo for the sender's
	// own devices alongside the ciphertext.
	require.NotNil(t, h.transport.sent[0].Content)
	require.Equal(t, "hello alice", *h.transport.sent[0].Content)

	// Alice can decrypt the ciphertext with her half of the shared secret.
	secret, err := crypto.SharedSecret(h.alice.Private, h.bob.Public)
	require.NoError(t, err)
	pt, err := crypto.Decrypt(stored.Ciphertext, stored.Nonce, secret)
	require.NoError(t, err)
	require.Equal(t, "hello alice", pt)
}

func TestSend_TransportFailure_MarksFailed(t *testing.T) {
	h := newHarness(t)
	h.transport.sendErr = domain.ErrTransport

	m, err := h.engine.Send(context.Background(), "alice", reconcile.Draft{Body: "doomed"})
	require.ErrorIs(t, err, domain.ErrTransport)
	require.Equal(t, domain.StatusFailed, m.Status)

	// Persisted first, so the attempt is visible even though it failed.
	stored, ok, _ := h.store.GetMessage(m.ID)
	require.True(t, ok)
	require.Equal(t, domain.StatusFailed, stored.Status)
}

func TestSend_UnknownRecipient(t *testing.T) {
	h := newHarness(t)
	_, err := h.engine.Send(context.Background(), "stranger", reconcile.Draft{Body: "hi"})
	require.ErrorIs(t, err, reconcile.ErrRecipientKeyUnavailable)
}

func TestApplyStatus_Monotonic(t *testing.T) {
	h := newHarness(t)
	m, err := h.engine.Send(context.Background(), "alice", reconcile.Draft{Body: "x"})
	require.NoError(t, err)

	require.NoError(t, h.engine.ApplyStatus(m.ID, domain.StatusRead))
	require.NoError(t, h.engine.ApplyStatus(m.ID, domain.StatusDelivered)) // late, ignored

	stored, _, err := h.store.GetMessage(m.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusRead, stored.Status)
}
