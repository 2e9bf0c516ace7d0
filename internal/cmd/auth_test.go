package cmd

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resin-sdk-go/internal/config"
	"resin-sdk-go/internal/session"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
)

// pointAt directs the app's API endpoints at srv.
func pointAt(t *testing.T, app *App, srv *httptest.Server) {
	t.Helper()
	seedSettings(t, app, map[string]any{
		config.KeyAPIEndpoint:  srv.URL,
		config.KeyPineEndpoint: srv.URL + "/v4/",
	})
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: []byte("0123456789abcdef0123456789abcdef")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := jwt.Signed(signer).Claims(jwt.Claims{
		NotBefore: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		Expiry:    jwt.NewNumericDate(exp),
	}).CompactSerialize()
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestLogin_Password(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		if body["username"] != "alice" || body["password"] != "s3cret" {
			t.Errorf("credentials = %v", body)
		}
		io.WriteString(w, "session-token")
	}))
	defer srv.Close()

	app, out := setupTestApp(t)
	pointAt(t, app, srv)
	app.In = strings.NewReader("alice\ns3cret\n")

	cmd := newLoginCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "Logged in as alice" {
		t.Errorf("output = %q, want %q", got, "Logged in as alice")
	}
	token, ok, err := app.Session.Token()
	if err != nil || !ok || token != "session-token" {
		t.Errorf("Token() = %q, %v, %v; want session-token", token, ok, err)
	}
}

func TestLogin_UsernameFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "tok")
	}))
	defer srv.Close()

	app, _ := setupTestApp(t)
	pointAt(t, app, srv)
	app.In = strings.NewReader("pw")

	cmd := newLoginCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"--username", "bob"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if loggedIn, _ := app.Session.IsLoggedIn(); !loggedIn {
		t.Error("expected to be logged in")
	}
}

func TestLogin_Token(t *testing.T) {
	app, out := setupTestApp(t)

	cmd := newLoginCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"--token", "abc"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("login --token failed: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "Token stored" {
		t.Errorf("output = %q, want %q", got, "Token stored")
	}
	v, _, _ := app.Settings.Get(config.KeyToken)
	if v != "abc" {
		t.Errorf("stored token = %v, want abc", v)
	}
}

func TestLogin_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	app, _ := setupTestApp(t)
	pointAt(t, app, srv)
	app.In = strings.NewReader("alice\nwrong\n")

	cmd := newLoginCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected login error")
	}
	if loggedIn, _ := app.Session.IsLoggedIn(); loggedIn {
		t.Error("rejected login stored a token")
	}
}

func TestRegister_RequiresEmail(t *testing.T) {
	app, _ := setupTestApp(t)

	cmd := newRegisterCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error without --email")
	}
}

func TestRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/register" {
			t.Errorf("path = %s, want /user/register", r.URL.Path)
		}
		io.WriteString(w, "new-token")
	}))
	defer srv.Close()

	app, out := setupTestApp(t)
	pointAt(t, app, srv)
	app.In = strings.NewReader("pw\n")

	cmd := newRegisterCmd(NewTestProvider(app))
	cmd.SetArgs([]string{"--email", "alice@example.com"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "Registered alice@example.com" {
		t.Errorf("output = %q", got)
	}
	if token, _, _ := app.Session.Token(); token != "new-token" {
		t.Errorf("token = %q, want new-token", token)
	}
}

func TestLogout(t *testing.T) {
	app, out := setupTestApp(t)
	if err := app.Session.SetToken("abc"); err != nil {
		t.Fatal(err)
	}

	cmd := newLogoutCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "Logged out" {
		t.Errorf("output = %q, want %q", got, "Logged out")
	}
	if loggedIn, _ := app.Session.IsLoggedIn(); loggedIn {
		t.Error("still logged in after logout")
	}
}

func TestWhoami(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("Authorization = %q, want %q", got, "Bearer abc")
		}
		io.WriteString(w, `{"id":7,"username":"alice","email":"alice@example.com"}`)
	}))
	defer srv.Close()

	app, out := setupTestApp(t)
	pointAt(t, app, srv)
	if err := app.Session.SetToken("abc"); err != nil {
		t.Fatal(err)
	}

	cmd := newWhoamiCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}

	for _, want := range []string{"ID:       7", "Username: alice", "Email:    alice@example.com"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestWhoami_NotLoggedIn(t *testing.T) {
	app, _ := setupTestApp(t)

	cmd := newWhoamiCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	if !errors.Is(err, session.ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}
}

func TestToken_Print(t *testing.T) {
	app, out := setupTestApp(t)
	if err := app.Session.SetToken("abc"); err != nil {
		t.Fatal(err)
	}

	cmd := newTokenCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("token failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "abc" {
		t.Errorf("output = %q, want abc", got)
	}
}

func TestToken_NotLoggedIn(t *testing.T) {
	app, _ := setupTestApp(t)

	cmd := newTokenCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); !errors.Is(err, session.ErrNotLoggedIn) {
		t.Fatalf("err = %v, want ErrNotLoggedIn", err)
	}
}

func TestToken_Check(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		wantRefresh bool
		wantExpiry  bool
	}{
		{"opaque", "not-a-jwt", true, false},
		// not-before lies in the future; only the expiry counts
		{"fresh", signedToken(t, time.Now().Add(time.Hour)), false, true},
		{"expired", signedToken(t, time.Now().Add(-time.Hour)), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, out := setupTestApp(t)
			app.JSON = true
			if err := app.Session.SetToken(tt.token); err != nil {
				t.Fatal(err)
			}

			cmd := newTokenCmd(NewTestProvider(app))
			cmd.SetArgs([]string{"--check"})
			if err := cmd.Execute(); err != nil {
				t.Fatalf("token --check failed: %v", err)
			}

			var result map[string]any
			if err := json.Unmarshal(out.Bytes(), &result); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if result["should_refresh"] != tt.wantRefresh {
				t.Errorf("should_refresh = %v, want %v", result["should_refresh"], tt.wantRefresh)
			}
			if _, ok := result["expires_at"]; ok != tt.wantExpiry {
				t.Errorf("expires_at present = %v, want %v", ok, tt.wantExpiry)
			}
		})
	}
}

func TestApps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v4/application" {
			t.Errorf("path = %s, want /v4/application", r.URL.Path)
		}
		io.WriteString(w, `{"d":[{"id":3,"app_name":"fleet","device_type":"raspberrypi3","commit":"abc123"}]}`)
	}))
	defer srv.Close()

	app, out := setupTestApp(t)
	pointAt(t, app, srv)
	if err := app.Session.SetToken("abc"); err != nil {
		t.Fatal(err)
	}

	cmd := newAppsCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("apps failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[1], "3 ") || !strings.Contains(lines[1], "fleet") || !strings.HasSuffix(lines[1], "abc123") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestApps_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"d":[]}`)
	}))
	defer srv.Close()

	app, out := setupTestApp(t)
	pointAt(t, app, srv)
	if err := app.Session.SetToken("abc"); err != nil {
		t.Fatal(err)
	}

	cmd := newAppsCmd(NewTestProvider(app))
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("apps failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "No applications" {
		t.Errorf("output = %q, want %q", got, "No applications")
	}
}
