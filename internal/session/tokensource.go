package session

import "golang.org/x/oauth2"

// TokenSource returns an oauth2.TokenSource that reads the stored token on
// every call, so a login or logout in another process takes effect on the
// next request. When no token is stored, apiKey is used instead; with
// neither, Token returns ErrNotLoggedIn.
func (m *Manager) TokenSource(apiKey string) oauth2.TokenSource {
	return &tokenSource{m: m, apiKey: apiKey}
}

type tokenSource struct {
	m      *Manager
	apiKey string
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	token, ok, err := s.m.Token()
	if err != nil {
		return nil, err
	}
	if !ok {
		if s.apiKey == "" {
			return nil, ErrNotLoggedIn
		}
		return &oauth2.Token{AccessToken: s.apiKey, TokenType: "Bearer"}, nil
	}

	t := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
	if exp, ok := s.m.Expiry(token); ok {
		t.Expiry = exp
	}
	return t, nil
}
