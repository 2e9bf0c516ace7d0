package tomlstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"resin-sdk-go/internal/config"

	"github.com/BurntSushi/toml"
)

// decodeResult is the outcome of reading the settings file. At most one of
// invalid and err is set; values is set only when both are nil.
type decodeResult struct {
	values  map[string]any          // effective settings, defaults merged in
	invalid *config.ValidationError // the file must be replaced with defaults
	exists  bool                    // a file was found at the path
	err     error                   // unrecoverable read failure
}

func (s *Store) decode() decodeResult {
	raw, err := os.ReadFile(s.paths.ConfigFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return decodeResult{invalid: &config.ValidationError{Reason: "settings file missing"}}
		}
		return decodeResult{exists: true, err: &config.IOError{Op: "read", Path: s.paths.ConfigFile, Err: err}}
	}

	parsed, invalid := parseSettings(raw)
	if invalid != nil {
		return decodeResult{invalid: invalid, exists: true}
	}

	merged := config.MergeDefaults(s.defaults, parsed)
	if err := config.CheckRequired(merged); err != nil {
		var verr *config.ValidationError
		if !errors.As(err, &verr) {
			verr = &config.ValidationError{Reason: err.Error()}
		}
		return decodeResult{invalid: verr, exists: true}
	}
	return decodeResult{values: merged, exists: true}
}

// parseSettings decodes raw and returns the [Settings] table with
// normalized keys.
func parseSettings(raw []byte) (map[string]any, *config.ValidationError) {
	var doc map[string]any
	if _, err := toml.Decode(string(raw), &doc); err != nil {
		return nil, &config.ValidationError{Reason: "parsing: " + err.Error()}
	}

	section, ok := doc[config.Section].(map[string]any)
	if !ok {
		return nil, &config.ValidationError{
			Reason:  fmt.Sprintf("no [%s] table", config.Section),
			Missing: append([]string(nil), config.RequiredKeys...),
		}
	}

	out := make(map[string]any, len(section))
	for k, v := range section {
		nk, err := config.NormalizeKey(k)
		if err != nil {
			return nil, &config.ValidationError{Reason: "empty key"}
		}
		if _, dup := out[nk]; dup {
			return nil, &config.ValidationError{Reason: fmt.Sprintf("duplicate key %q", nk)}
		}
		if _, nested := v.(map[string]any); nested {
			return nil, &config.ValidationError{Reason: fmt.Sprintf("%s: nested tables are not supported", nk)}
		}
		out[nk] = v
	}
	return out, nil
}
