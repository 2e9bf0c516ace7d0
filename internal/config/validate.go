package config

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var apiVersionPattern = regexp.MustCompile(`^v[0-9]+$`)

// validators maps schema keys to a check of their value. Each returns a
// message describing the problem, or "" if the value is acceptable.
var validators = map[string]func(any) string{
	KeyPineEndpoint:         checkURL,
	KeyAPIEndpoint:          checkURL,
	KeyAPIVersion:           checkAPIVersion,
	KeyDataDirectory:        checkPath,
	KeyCacheDirectory:       checkPath,
	KeyImageCacheTime:       checkMillis,
	KeyTokenRefreshInterval: checkMillis,
	KeyTimeout:              checkMillis,
}

// Validate checks the values of known keys. It returns an error describing
// every invalid value found, or nil if all values are valid. Unknown keys
// are always accepted.
func Validate(values map[string]any) error {
	var errs []string

	for key, check := range validators {
		val, ok := values[key]
		if !ok {
			continue
		}
		if msg := check(val); msg != "" {
			errs = append(errs, fmt.Sprintf("%s: %s", key, msg))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	sort.Strings(errs)
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
}

func checkURL(v any) string {
	s, ok := v.(string)
	if !ok {
		return fmt.Sprintf("must be a URL string, got %T", v)
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("must be an absolute http(s) URL, got %q", s)
	}
	return ""
}

func checkAPIVersion(v any) string {
	s, ok := v.(string)
	if !ok || !apiVersionPattern.MatchString(s) {
		return fmt.Sprintf("must look like \"v%d\", got %v", APIVersion, v)
	}
	return ""
}

func checkPath(v any) string {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fmt.Sprintf("must be a non-empty path, got %v", v)
	}
	return ""
}

func checkMillis(v any) string {
	n, ok := v.(int64)
	if !ok {
		return fmt.Sprintf("must be an integer number of milliseconds, got %T", v)
	}
	if n < 0 {
		return fmt.Sprintf("must not be negative, got %d", n)
	}
	return ""
}
