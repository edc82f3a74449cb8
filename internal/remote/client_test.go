package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"veilchat/internal/domain"
	"veilchat/internal/remote"
)

func TestFetchMessages(t *testing.T) {
	batch := []domain.WireMessage{{ID: "m1", SenderID: "a", ReceiverID: "b", Status: "sent", Type: "Text"}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions/a%7Cb/messages", r.URL.EscapedPath())
		_ = json.NewEncoder(w).Encode(batch)
	}))
	defer srv.Close()

	c := remote.New(srv.URL, nil, time.Second)
	got, err := c.FetchMessages(context.Background(), "a|b")
	require.NoError(t, err)
	require.Equal(t, batch, got)
}

func TestSendMessage_EchoesServerStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var m domain.WireMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		m.Status = "sent"
		_ = json.NewEncoder(w).Encode(m)
	}))
	defer srv.Close()

	c := remote.New(srv.URL, nil, time.Second)
	echo, err := c.SendMessage(context.Background(), domain.WireMessage{ID: "m1"})
	require.NoError(t, err)
	require.Equal(t, "sent", echo.Status)
}

func TestFetchUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/carol", r.URL.Path)
		_ = json.NewEncoder(w).Encode(domain.UserProfile{ID: "carol", DisplayName: "Carol"})
	}))
	defer srv.Close()

	c := remote.New(srv.URL, nil, time.Second)
	p, err := c.FetchUser(context.Background(), "carol")
	require.NoError(t, err)
	require.Equal(t, "Carol", p.DisplayName)
}

func TestNon2xx_IsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := remote.New(srv.URL, nil, time.Second)

	_, err := c.FetchMessages(context.Background(), "s")
	require.ErrorIs(t, err, domain.ErrTransport)

	_, err = c.SendMessage(context.Background(), domain.WireMessage{})
	require.ErrorIs(t, err, domain.ErrTransport)

	_, err = c.FetchUser(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestMalformedBody_IsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := remote.New(srv.URL, nil, time.Second)

	_, err := c.FetchMessages(context.Background(), "s")
	require.ErrorIs(t, err, domain.ErrTransport)

	_, err = c.SendMessage(context.Background(), domain.WireMessage{})
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestTimeout_IsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := remote.New(srv.URL, nil, 20*time.Millisecond)
	_, err := c.FetchMessages(context.Background(), "s")
	require.ErrorIs(t, err, domain.ErrTransport)
}
