package domain

import "time"

// Presence is a contact's last known availability.
type Presence string

const (
	PresenceUnknown Presence = "unknown"
	PresenceOnline  Presence = "online"
	PresenceOffline Presence = "offline"
)

// Contact is a known peer. PublicKey is stored as base64 and may be either
// the raw 32-byte encoding or the wrapped 33-byte form; internal/crypto
// accepts both when parsing.
type Contact struct {
	ID          string
	DisplayName string
	PublicKey   string
	Presence    Presence
	LastSeen    time.Time
}

// UserProfile is what the remote directory returns for a contact id.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	PublicKey   string `json:"public_key"`
	Presence    string `json:"presence,omitempty"`
	LastSeen    int64  `json:"last_seen,omitempty"`
}

// AsContact converts a directory profile into a locally persisted contact.
func (p UserProfile) AsContact() Contact {
	c := Contact{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		PublicKey:   p.PublicKey,
		Presence:    PresenceUnknown,
	}
	if p.Presence != "" {
		c.Presence = Presence(p.Presence)
	}
	if p.LastSeen > 0 {
		c.LastSeen = time.UnixMilli(p.LastSeen)
	}
	return c
}
