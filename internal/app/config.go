package app

import (
	"net/http"
	"time"
)

// Config holds runtime wiring options for building the app. Implementations
// are chosen here, at startup, never by a runtime flag check.
type Config struct {
	Home       string        // data directory, e.g. $HOME/.veilchat
	ServerURL  string        // chat server base URL
	UserID     string        // the local user's stable id
	Passphrase string        // seals the key storage at rest
	Timeout    time.Duration // bound for one remote round-trip
	InMemory   bool          // use the in-memory store instead of sqlite
	HTTP       *http.Client  // optional; defaults to http.DefaultClient
}
