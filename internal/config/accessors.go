package config

import (
	"fmt"
	"time"
)

// String returns the string value stored under key.
func String(s Store, key string) (string, error) {
	v, err := lookup(s, key)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s is %T, want string", ErrWrongType, key, v)
	}
	return str, nil
}

// Int returns the integer value stored under key.
func Int(s Store, key string) (int64, error) {
	v, err := lookup(s, key)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("%w: %s is %T, want integer", ErrWrongType, key, v)
	}
	return n, nil
}

// Duration returns the millisecond setting stored under key as a
// time.Duration.
func Duration(s Store, key string) (time.Duration, error) {
	ms, err := Int(s, key)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func lookup(s Store, key string) (any, error) {
	v, ok, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return v, nil
}
