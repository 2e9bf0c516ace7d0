package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "key-123")
	t.Setenv(EnvDataDir, "/tmp/resin-data")

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.APIKey != "key-123" {
		t.Errorf("APIKey = %q, want %q", e.APIKey, "key-123")
	}
	if e.DataDir != "/tmp/resin-data" {
		t.Errorf("DataDir = %q, want %q", e.DataDir, "/tmp/resin-data")
	}
}

func TestLoadEnv_Unset(t *testing.T) {
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvDataDir, "")

	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if e.APIKey != "" || e.DataDir != "" {
		t.Errorf("LoadEnv = %+v, want zero value", e)
	}
}

func TestAccessors(t *testing.T) {
	s := &memStore{data: DefaultValues("/data")}

	endpoint, err := String(s, KeyAPIEndpoint)
	if err != nil || endpoint != "https://api.resin.io/" {
		t.Errorf("String(api_endpoint) = %q, %v", endpoint, err)
	}

	timeout, err := Duration(s, KeyTimeout)
	if err != nil || timeout != 30*time.Second {
		t.Errorf("Duration(timeout) = %v, %v; want 30s", timeout, err)
	}

	if _, err := String(s, KeyTimeout); !errors.Is(err, ErrWrongType) {
		t.Errorf("String(timeout) err = %v, want ErrWrongType", err)
	}
	if _, err := Int(s, KeyToken); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Int(token) err = %v, want ErrKeyNotFound", err)
	}
}
