package config

// Store provides key-value access to resin settings.
//
// Every read reflects the file as it is on disk at the time of the call,
// merged over the defaults. Keys are normalized with NormalizeKey and values
// with NormalizeValue before they are stored.
type Store interface {
	// Get returns the value for key and whether it was found.
	Get(key string) (any, bool, error)

	// All returns a copy of every setting, defaults included.
	All() (map[string]any, error)

	// HasKey reports whether key is present.
	HasKey(key string) (bool, error)

	// Set writes key=value and persists to disk.
	Set(key string, value any) error

	// SetAll merges values into the settings (values win) and persists once.
	SetAll(values map[string]any) error

	// Remove deletes key and persists. It reports whether the key existed.
	// Removing a schema key resets it to its default on the next read.
	Remove(key string) (bool, error)

	// Reset backs up the current file and rewrites it with the defaults.
	Reset() error
}
