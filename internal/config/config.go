// Package config defines the resin settings schema: the canonical keys and
// their defaults, the on-disk location of resin.cfg, and the Store contract
// that settings backends implement.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// File layout constants.
const (
	Section      = "Settings"  // the single table inside resin.cfg
	FileName     = "resin.cfg" // settings file name inside the data directory
	DataDirName  = ".resin"    // default data directory under $HOME
	BackupSuffix = ".old"      // suffix for the copy kept when a bad file is replaced
	LockSuffix   = ".lock"
)

// Paths captures resolved locations for the settings file.
type Paths struct {
	DataDir    string // directory holding resin.cfg
	ConfigFile string // path to resin.cfg
	BackupFile string // path to resin.cfg.old
	LockFile   string // path to resin.cfg.lock
}

// DefaultDataDir returns ~/.resin.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find home directory: %w", err)
	}
	return filepath.Join(home, DataDirName), nil
}

// ResolvePaths resolves Paths for dataDir. An empty dataDir means the
// default location.
func ResolvePaths(dataDir string) (Paths, error) {
	if dataDir == "" {
		def, err := DefaultDataDir()
		if err != nil {
			return Paths{}, err
		}
		dataDir = def
	}

	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return Paths{}, fmt.Errorf("resolving data directory: %w", err)
	}

	file := filepath.Join(abs, FileName)
	return Paths{
		DataDir:    abs,
		ConfigFile: file,
		BackupFile: file + BackupSuffix,
		LockFile:   file + LockSuffix,
	}, nil
}
