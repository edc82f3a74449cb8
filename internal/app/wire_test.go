package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"veilchat/internal/app"
)

func TestNewWire_InMemory(t *testing.T) {
	wire, err := app.NewWire(app.Config{
		Home:       t.TempDir(),
		ServerURL:  "http://127.0.0.1:0",
		UserID:     "me",
		Passphrase: "pass",
		Timeout:    time.Second,
		InMemory:   true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = wire.Close() })

	require.NotNil(t, wire.Engine)
	require.NotNil(t, wire.Directory)

	// The keystore bootstraps lazily on first use.
	fp, err := wire.Keys.Fingerprint()
	require.NoError(t, err)
	require.NotEmpty(t, fp)
}

func TestNewWire_SQLite(t *testing.T) {
	wire, err := app.NewWire(app.Config{
		Home:       t.TempDir(),
		ServerURL:  "http://127.0.0.1:0",
		UserID:     "me",
		Passphrase: "pass",
	})
	require.NoError(t, err)
	require.NoError(t, wire.Close())
}
