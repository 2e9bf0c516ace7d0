package config

import (
	"fmt"
	"path/filepath"
)

// APIVersion is the resin API version the default endpoints point at.
const APIVersion = 4

// Schema keys.
const (
	KeyPineEndpoint         = "pine_endpoint"
	KeyAPIEndpoint          = "api_endpoint"
	KeyAPIVersion           = "api_version"
	KeyDataDirectory        = "data_directory"
	KeyImageCacheTime       = "image_cache_time"
	KeyTokenRefreshInterval = "token_refresh_interval"
	KeyTimeout              = "timeout"
	KeyCacheDirectory       = "cache_directory"

	// KeyToken is reserved for the session token. It is not part of the
	// schema and has no default.
	KeyToken = "token"
)

// RequiredKeys lists the keys every loaded configuration must carry.
var RequiredKeys = []string{
	KeyPineEndpoint,
	KeyAPIEndpoint,
	KeyAPIVersion,
	KeyDataDirectory,
	KeyImageCacheTime,
	KeyTokenRefreshInterval,
	KeyTimeout,
	KeyCacheDirectory,
}

// DefaultValues returns the default settings for a store rooted at dataDir.
// Integer settings are int64 milliseconds, matching what the TOML decoder
// produces, so defaults and file values compare equal.
func DefaultValues(dataDir string) map[string]any {
	return map[string]any{
		KeyPineEndpoint:         fmt.Sprintf("https://api.resin.io/v%d/", APIVersion),
		KeyAPIEndpoint:          "https://api.resin.io/",
		KeyAPIVersion:           fmt.Sprintf("v%d", APIVersion),
		KeyDataDirectory:        dataDir,
		KeyImageCacheTime:       int64(1000 * 60 * 60 * 24 * 7),
		KeyTokenRefreshInterval: int64(1000 * 60 * 60),
		KeyTimeout:              int64(30 * 1000),
		KeyCacheDirectory:       filepath.Join(dataDir, "cache"),
	}
}

// MergeDefaults returns a new map holding defaults overlaid with values.
// Values win for any key present in both.
func MergeDefaults(defaults, values map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(values))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range values {
		out[k] = v
	}
	return out
}

// CheckRequired reports a *ValidationError naming every required key
// missing from values.
func CheckRequired(values map[string]any) error {
	var missing []string
	for _, k := range RequiredKeys {
		if _, ok := values[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Missing: missing, Reason: "required keys missing"}
}

// IsRequired reports whether key is one of the schema keys.
func IsRequired(key string) bool {
	for _, k := range RequiredKeys {
		if k == key {
			return true
		}
	}
	return false
}
