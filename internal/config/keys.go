package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// NormalizeKey returns the canonical form of key: surrounding whitespace
// trimmed and lower-cased. Keys read from the file and keys passed by
// callers both go through here so they compare equal.
func NormalizeKey(key string) (string, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidArgument)
	}
	return k, nil
}

// NormalizeValue converts v to one of the scalar types the settings file can
// hold: string, int64, float64 or bool. Durations are stored as
// milliseconds.
func NormalizeValue(v any) (any, error) {
	switch x := v.(type) {
	case string, bool, int64, float64:
		return x, nil
	case time.Duration:
		return x.Milliseconds(), nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrInvalidArgument, x)
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows int64", ErrInvalidArgument, x)
		}
		return int64(x), nil
	case float32:
		return float64(x), nil
	default:
		return nil, fmt.Errorf("%w: unsupported value type %T", ErrInvalidArgument, v)
	}
}

// NormalizeMap normalizes every key and value of m into a new map. It fails
// on the first bad entry without returning a partial result.
func NormalizeMap(m map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		nk, err := NormalizeKey(k)
		if err != nil {
			return nil, err
		}
		nv, err := NormalizeValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", nk, err)
		}
		out[nk] = nv
	}
	return out, nil
}
