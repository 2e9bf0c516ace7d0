// Package api is a small client for the resin HTTP API.
//
// Endpoints and the request timeout are read from the settings store on
// every request. Authenticated requests carry the session token (or the
// RESIN_API_KEY fallback) as a Bearer header.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"resin-sdk-go/internal/config"
	"resin-sdk-go/internal/session"

	"golang.org/x/oauth2"
)

// Client talks to the resin API.
type Client struct {
	settings config.Store
	session  *session.Manager
	apiKey   string
	base     *http.Client
	logger   *slog.Logger

	mu   sync.Mutex
	user *User // cached whoami result
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for requests. Its Timeout is replaced
// by the timeout setting on each request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.base = hc
		}
	}
}

// WithAPIKey sets the credential used when no session token is stored.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Client reading endpoints from settings and credentials
// from sess.
func New(settings config.Store, sess *session.Manager, opts ...Option) *Client {
	c := &Client{
		settings: settings,
		session:  sess,
		base:     http.DefaultClient,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one API call.
type request struct {
	method  string
	baseKey string // settings key holding the base URL
	path    string
	body    any
	auth    bool
}

// do sends r and returns the response body of a successful call.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	endpoint, err := c.url(r.baseKey, r.path)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc, err := c.httpClient(r.auth)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("api request", slog.String("method", r.method), slog.String("url", endpoint), slog.Bool("auth", r.auth))

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", r.method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("api response", slog.String("url", endpoint), slog.Int("status", resp.StatusCode))

	if err := checkStatus(resp, data); err != nil {
		return nil, err
	}
	return data, nil
}

// url joins path onto the base URL stored under baseKey.
func (c *Client) url(baseKey, path string) (string, error) {
	base, err := config.String(c.settings, baseKey)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", baseKey, err)
	}
	return u.JoinPath(strings.TrimPrefix(path, "/")).String(), nil
}

// httpClient returns a copy of the base client with the configured timeout
// and, for authenticated calls, a Bearer-token transport.
func (c *Client) httpClient(auth bool) (*http.Client, error) {
	timeout, err := config.Duration(c.settings, config.KeyTimeout)
	if err != nil {
		return nil, err
	}

	hc := *c.base
	hc.Timeout = timeout
	if auth {
		transport := hc.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		hc.Transport = &oauth2.Transport{
			Source: c.session.TokenSource(c.apiKey),
			Base:   transport,
		}
	}
	return &hc, nil
}

func decodeJSON(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
