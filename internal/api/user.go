package api

import (
	"context"
	"net/http"
	"strings"

	"resin-sdk-go/internal/config"
)

// User is the account returned by whoami.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Login exchanges credentials for a session token and stores it.
func (c *Client) Login(ctx context.Context, username, password string) error {
	data, err := c.do(ctx, request{
		method:  http.MethodPost,
		baseKey: config.KeyAPIEndpoint,
		path:    "/login_",
		body:    map[string]string{"username": username, "password": password},
	})
	if err != nil {
		return err
	}
	return c.storeToken(string(data))
}

// Register creates an account, stores the returned session token and
// returns it.
func (c *Client) Register(ctx context.Context, email, password string) (string, error) {
	data, err := c.do(ctx, request{
		method:  http.MethodPost,
		baseKey: config.KeyAPIEndpoint,
		path:    "/user/register",
		body:    map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return "", err
	}
	token := string(data)
	if err := c.storeToken(token); err != nil {
		return "", err
	}
	return token, nil
}

// LoginWithToken stores a session token or API key obtained elsewhere.
func (c *Client) LoginWithToken(token string) error {
	return c.storeToken(token)
}

// Logout removes the stored session token.
func (c *Client) Logout() error {
	c.forgetUser()
	_, err := c.session.ClearToken()
	return err
}

// Token returns the stored session token, if any.
func (c *Client) Token() (string, bool, error) {
	return c.session.Token()
}

// IsLoggedIn reports whether a session token is stored.
func (c *Client) IsLoggedIn() (bool, error) {
	return c.session.IsLoggedIn()
}

// Whoami returns the logged-in user. The result is cached until the next
// login or logout through this client.
func (c *Client) Whoami(ctx context.Context) (*User, error) {
	c.mu.Lock()
	cached := c.user
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	data, err := c.do(ctx, request{
		method:  http.MethodGet,
		baseKey: config.KeyAPIEndpoint,
		path:    "/user/v1/whoami",
		auth:    true,
	})
	if err != nil {
		return nil, err
	}

	var u User
	if err := decodeJSON(data, &u); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.user = &u
	c.mu.Unlock()
	return &u, nil
}

// UserID returns the ID of the logged-in user.
func (c *Client) UserID(ctx context.Context) (int64, error) {
	u, err := c.Whoami(ctx)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// Email returns the email of the logged-in user.
func (c *Client) Email(ctx context.Context) (string, error) {
	u, err := c.Whoami(ctx)
	if err != nil {
		return "", err
	}
	return u.Email, nil
}

// CreateAPIKey creates a named API key for the logged-in user and returns
// it.
func (c *Client) CreateAPIKey(ctx context.Context, name string) (string, error) {
	data, err := c.do(ctx, request{
		method:  http.MethodPost,
		baseKey: config.KeyAPIEndpoint,
		path:    "/api-key/user/full",
		body:    map[string]string{"name": name},
		auth:    true,
	})
	if err != nil {
		return "", err
	}

	var key string
	if err := decodeJSON(data, &key); err != nil {
		return "", err
	}
	return key, nil
}

func (c *Client) storeToken(token string) error {
	c.forgetUser()
	return c.session.SetToken(strings.TrimSpace(token))
}

func (c *Client) forgetUser() {
	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()
}
