// Package tomlstore implements config.Store backed by resin.cfg, a TOML file
// with a single [Settings] table.
//
// Nothing is cached between calls: every operation re-reads the file, merges
// it over the defaults, and (for writes) rewrites the whole file. A file
// that is missing, unparsable, or lacks the [Settings] table is moved aside
// to resin.cfg.old and replaced with the defaults; callers see the defaults
// rather than an error.
package tomlstore

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"syscall"

	"resin-sdk-go/internal/config"

	"github.com/BurntSushi/toml"
)

// Store implements config.Store using a TOML file on disk.
type Store struct {
	paths    config.Paths
	defaults map[string]any
	logger   *slog.Logger

	// mu serializes operations on this handle; the flock on the lock file
	// serializes them across handles and processes.
	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report recoveries from bad files.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Store for resin.cfg inside dataDir. An empty dataDir means
// ~/.resin. The file is not touched until the first operation.
func New(dataDir string, opts ...Option) (*Store, error) {
	paths, err := config.ResolvePaths(dataDir)
	if err != nil {
		return nil, err
	}
	s := &Store{
		paths:    paths,
		defaults: config.DefaultValues(paths.DataDir),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the path of the settings file.
func (s *Store) Path() string { return s.paths.ConfigFile }

// Paths returns every location the store uses.
func (s *Store) Paths() config.Paths { return s.paths }

// Get returns the value for key and whether it was found.
func (s *Store) Get(key string) (any, bool, error) {
	k, err := config.NormalizeKey(key)
	if err != nil {
		return nil, false, err
	}
	values, err := s.load()
	if err != nil {
		return nil, false, err
	}
	v, ok := values[k]
	return v, ok, nil
}

// All returns a copy of every setting, defaults included.
func (s *Store) All() (map[string]any, error) {
	return s.load()
}

// HasKey reports whether key is present.
func (s *Store) HasKey(key string) (bool, error) {
	_, ok, err := s.Get(key)
	return ok, err
}

// Set writes key=value and persists to disk.
func (s *Store) Set(key string, value any) error {
	k, err := config.NormalizeKey(key)
	if err != nil {
		return err
	}
	v, err := config.NormalizeValue(value)
	if err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	return s.update(func(values map[string]any) bool {
		values[k] = v
		return true
	})
}

// SetAll merges values into the settings and persists once. An empty map is
// rejected with config.ErrInvalidArgument.
func (s *Store) SetAll(values map[string]any) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: no settings given", config.ErrInvalidArgument)
	}
	overrides, err := config.NormalizeMap(values)
	if err != nil {
		return err
	}
	return s.update(func(current map[string]any) bool {
		for k, v := range overrides {
			current[k] = v
		}
		return true
	})
}

// Remove deletes key and persists. It reports whether the key existed; the
// file is only rewritten when it did.
func (s *Store) Remove(key string) (bool, error) {
	k, err := config.NormalizeKey(key)
	if err != nil {
		return false, err
	}
	var removed bool
	err = s.update(func(values map[string]any) bool {
		_, removed = values[k]
		delete(values, k)
		return removed
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// Reset backs up the current file and rewrites it with the defaults.
func (s *Store) Reset() error {
	return s.withLock(func() error {
		_, err := s.reset(fileExists(s.paths.ConfigFile), "reset requested")
		return err
	})
}

// load returns the effective settings, recovering from a bad file.
func (s *Store) load() (map[string]any, error) {
	var values map[string]any
	err := s.withLock(func() error {
		var err error
		values, err = s.loadLocked()
		return err
	})
	return values, err
}

// update loads the settings, lets fn mutate them, and persists the result
// if fn reports a change. The whole sequence runs under the lock so
// concurrent writers cannot lose each other's updates.
func (s *Store) update(fn func(map[string]any) bool) error {
	return s.withLock(func() error {
		values, err := s.loadLocked()
		if err != nil {
			return err
		}
		if !fn(values) {
			return nil
		}
		return s.persist(values)
	})
}

func (s *Store) loadLocked() (map[string]any, error) {
	res := s.decode()
	switch {
	case res.err != nil:
		return nil, res.err
	case res.invalid != nil:
		return s.reset(res.exists, res.invalid.Error())
	default:
		return res.values, nil
	}
}

// reset moves an existing file to the backup path and persists the
// defaults. It must be called with the lock held.
func (s *Store) reset(exists bool, reason string) (map[string]any, error) {
	if exists {
		if err := os.Rename(s.paths.ConfigFile, s.paths.BackupFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, &config.IOError{Op: "backup", Path: s.paths.BackupFile, Err: err}
		}
		s.logger.Warn("settings file replaced with defaults",
			slog.String("path", s.paths.ConfigFile),
			slog.String("backup", s.paths.BackupFile),
			slog.String("reason", reason))
	}

	values := config.MergeDefaults(s.defaults, nil)
	if err := s.persist(values); err != nil {
		return nil, err
	}
	return values, nil
}

// persist serializes values under the [Settings] table and atomically
// replaces the settings file.
func (s *Store) persist(values map[string]any) error {
	if err := os.MkdirAll(s.paths.DataDir, 0755); err != nil {
		return &config.IOError{Op: "mkdir", Path: s.paths.DataDir, Err: err}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(map[string]any{config.Section: values}); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	return atomicWrite(s.paths.ConfigFile, buf.Bytes())
}

// withLock holds the handle mutex and an exclusive flock on the lock file
// while fn runs.
func (s *Store) withLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.paths.DataDir, 0755); err != nil {
		return &config.IOError{Op: "mkdir", Path: s.paths.DataDir, Err: err}
	}

	f, err := os.OpenFile(s.paths.LockFile, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return &config.IOError{Op: "lock", Path: s.paths.LockFile, Err: err}
	}
	defer f.Close()

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		return &config.IOError{Op: "lock", Path: s.paths.LockFile, Err: err}
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN)

	return fn()
}

// atomicWrite writes data to a file atomically via a temporary file and
// rename. The file may hold the session token, so it is private to the
// owner.
func atomicWrite(path string, data []byte) error {
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return fmt.Errorf("generating random suffix: %w", err)
	}
	tmp := path + ".tmp." + hex.EncodeToString(randBytes)

	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return &config.IOError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best effort cleanup
		return &config.IOError{Op: "rename", Path: path, Err: err}
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Compile-time check that Store implements config.Store.
var _ config.Store = (*Store)(nil)
