package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"resin-sdk-go/internal/session"
)

var (
	// ErrUnexpectedStatus is returned for responses outside 200-204 that
	// are not client errors the API explains.
	ErrUnexpectedStatus = errors.New("api: unexpected status")

	// ErrNotAuthenticated is returned for authenticated calls made without
	// a stored token or API key.
	ErrNotAuthenticated = session.ErrNotLoggedIn
)

// ResponseError is a 400 or 401 response from the API.
type ResponseError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ResponseError) Error() string {
	if e.Body == "" {
		return "api: " + e.Status
	}
	return fmt.Sprintf("api: %s: %s", e.Status, e.Body)
}

// Unauthorized reports whether the API rejected the credentials.
func (e *ResponseError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func checkStatus(resp *http.Response, body []byte) error {
	switch code := resp.StatusCode; {
	case code >= 200 && code <= 204:
		return nil
	case code == http.StatusBadRequest || code == http.StatusUnauthorized:
		return &ResponseError{
			StatusCode: code,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
}
