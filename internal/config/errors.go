package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is returned when a caller passes no usable key,
	// value, or mapping. The store is left unchanged.
	ErrInvalidArgument = errors.New("config: invalid argument")

	// ErrKeyNotFound is returned by the typed accessors for unset keys.
	ErrKeyNotFound = errors.New("config: key not found")

	// ErrWrongType is returned by the typed accessors when a value does not
	// have the requested type.
	ErrWrongType = errors.New("config: wrong value type")
)

// IOError reports a failure to persist the settings file.
type IOError struct {
	Op   string // "mkdir", "lock", "write", "rename", "backup", "read"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("config: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ValidationError describes why a settings file cannot be used as is. Stores
// recover from it by resetting to defaults; it is not returned to callers.
type ValidationError struct {
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return "config: invalid settings file: " + e.Reason
	}
	return fmt.Sprintf("config: invalid settings file: %s: %s", e.Reason, strings.Join(e.Missing, ", "))
}
