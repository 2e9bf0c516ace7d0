package config

import (
	"strings"
	"testing"
)

func TestValidate_Defaults(t *testing.T) {
	if err := Validate(DefaultValues("/data")); err != nil {
		t.Errorf("Validate(defaults) = %v, want nil", err)
	}
}

func TestValidate_UnknownKeysAccepted(t *testing.T) {
	values := DefaultValues("/data")
	values["token"] = "abc"
	values["custom"] = int64(1)
	if err := Validate(values); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	values := DefaultValues("/data")
	values["api_endpoint"] = "not a url"
	values["timeout"] = "soon"
	values["image_cache_time"] = int64(-1)
	values["api_version"] = "4"
	values["cache_directory"] = ""

	err := Validate(values)
	if err == nil {
		t.Fatal("Validate should fail")
	}
	msg := err.Error()
	for _, key := range []string{"api_endpoint", "timeout", "image_cache_time", "api_version", "cache_directory"} {
		if !strings.Contains(msg, key+":") {
			t.Errorf("error should mention %s, got:\n%s", key, msg)
		}
	}
	if strings.Contains(msg, "pine_endpoint") {
		t.Errorf("error should not mention valid keys, got:\n%s", msg)
	}
}

func TestValidate_MissingKeysIgnored(t *testing.T) {
	if err := Validate(map[string]any{"timeout": int64(10)}); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}
