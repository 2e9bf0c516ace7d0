// Package session manages the resin auth token kept in the settings file.
//
// The token lives under the reserved "token" key. Its presence means the
// user is logged in. ShouldRefresh inspects the token's expiry claim without
// verifying the signature: the client holds no key material, and the API
// remains the authority on whether a token is accepted.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"resin-sdk-go/internal/config"

	"github.com/go-jose/go-jose/v3/jwt"
)

// ErrNotLoggedIn is returned when a credential is needed but none is stored.
var ErrNotLoggedIn = errors.New("session: not logged in")

// Store is the part of config.Store the session needs.
type Store interface {
	Get(key string) (any, bool, error)
	Set(key string, value any) error
	Remove(key string) (bool, error)
}

// Manager reads and writes the session token.
type Manager struct {
	store  Store
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger used to report token classification.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a Manager storing the token in store.
func New(store Store, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		now:    time.Now,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetToken stores token as the current session. Empty tokens are rejected.
func (m *Manager) SetToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", config.ErrInvalidArgument)
	}
	return m.store.Set(config.KeyToken, token)
}

// Token returns the stored token and whether one is set. A non-string
// value under the token key counts as no token.
func (m *Manager) Token() (string, bool, error) {
	v, ok, err := m.store.Get(config.KeyToken)
	if err != nil || !ok {
		return "", false, err
	}
	token, isString := v.(string)
	if !isString || token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// ClearToken removes the stored token. It reports whether one was set.
func (m *Manager) ClearToken() (bool, error) {
	return m.store.Remove(config.KeyToken)
}

// IsLoggedIn reports whether a token is stored.
func (m *Manager) IsLoggedIn() (bool, error) {
	_, ok, err := m.Token()
	return ok, err
}

// ShouldRefresh reports whether token needs to be renewed. Only the expiry
// claim is consulted: a token that does not decode, or whose expiry has
// passed, needs a refresh. A token without an expiry never does.
func (m *Manager) ShouldRefresh(token string) bool {
	claims, err := decodeClaims(token)
	if err != nil {
		m.logger.Debug("token needs refresh", slog.String("reason", err.Error()))
		return true
	}
	if claims.Expiry == nil {
		return false
	}
	if exp := claims.Expiry.Time(); !m.now().Before(exp) {
		m.logger.Debug("token needs refresh", slog.String("reason", "expired"), slog.Time("expiry", exp))
		return true
	}
	return false
}

// Expiry returns the token's expiry claim. ok is false when the token does
// not decode or carries no expiry.
func (m *Manager) Expiry(token string) (exp time.Time, ok bool) {
	claims, err := decodeClaims(token)
	if err != nil || claims.Expiry == nil {
		return time.Time{}, false
	}
	return claims.Expiry.Time(), true
}

// decodeClaims parses a compact JWS and reads its registered claims without
// checking the signature.
func decodeClaims(token string) (jwt.Claims, error) {
	parsed, err := jwt.ParseSigned(token)
	if err != nil {
		return jwt.Claims{}, fmt.Errorf("parsing token: %w", err)
	}
	var claims jwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return jwt.Claims{}, fmt.Errorf("reading claims: %w", err)
	}
	return claims, nil
}
