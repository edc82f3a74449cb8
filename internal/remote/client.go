// Package remote is the HTTP client for the chat server: message batches,
// message posting, and user-directory lookups. Reconnect and heartbeat
// logic live outside the engine; this client only does bounded, fallible
// round-trips.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"veilchat/internal/domain"
)

// DefaultTimeout bounds one round-trip when the config does not say
// otherwise.
const DefaultTimeout = 10 * time.Second

// Client talks JSON over HTTP to the chat server.
type Client struct {
	base    string
	http    *http.Client
	timeout time.Duration
}

// New returns a client for the server at base. A nil httpClient falls back
// to http.DefaultClient; a zero timeout falls back to DefaultTimeout.
func New(base string, httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{base: base, http: httpClient, timeout: timeout}
}

// FetchMessages returns the remote batch for one chat session.
func (c *Client) FetchMessages(ctx context.Context, sessionID string) ([]domain.WireMessage, error) {
	var out []domain.WireMessage
	if err := c.getJSON(ctx, "/sessions/"+url.PathEscape(sessionID)+"/messages", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage posts one wire message and returns the server's echo (which
// carries the server-assigned status).
func (c *Client) SendMessage(ctx context.Context, msg domain.WireMessage) (domain.WireMessage, error) {
	var out domain.WireMessage
	if err := c.post(ctx, "/messages", msg, &out); err != nil {
		return domain.WireMessage{}, err
	}
	return out, nil
}

// FetchUser looks a contact up in the remote user directory.
func (c *Client) FetchUser(ctx context.Context, contactID string) (domain.UserProfile, error) {
	var out domain.UserProfile
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(contactID), &out); err != nil {
		return domain.UserProfile{}, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WithMessage(domain.ErrTransport, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.WithMessagef(domain.ErrTransport, "get %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.WithMessagef(domain.ErrTransport, "get %s: decode response: %v", path, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WithMessage(domain.ErrTransport, err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return errors.WithMessagef(domain.ErrTransport, "post %s: %s", path, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.WithMessagef(domain.ErrTransport, "post %s: decode response: %v", path, err)
		}
	}
	return nil
}

// Compile-time assertion that Client implements domain.Transport.
var _ domain.Transport = (*Client)(nil)
