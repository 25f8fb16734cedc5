package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/cardscrub/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// DirName is the settings directory under the user's home.
const DirName = ".cardscrub"

// FileName is the settings file inside the settings directory.
const FileName = "config.toml"

// ConfigStore keeps the non-secret settings in a flat TOML file.
// Credentials never go through it.
type ConfigStore struct {
	mu       sync.RWMutex
	path     string
	settings map[string]any
}

// NewConfigStore opens the settings file in configDir, creating the directory
// if needed. An empty configDir means ~/.cardscrub.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		configDir = filepath.Join(home, DirName)
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(configDir, FileName)}
	settings, err := readSettings(s.path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.path, err)
	}
	s.settings = settings
	return s, nil
}

// Get returns the stored value of key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.settings[key]
	return val, ok
}

// Keys returns every stored key in sorted order.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.settings))
	for k := range s.settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores value under key and rewrites the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings[key] = value
	return s.write()
}

// Unset removes key and rewrites the file. Removing an absent key is not an error.
func (s *ConfigStore) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.settings[key]; !ok {
		return nil
	}
	delete(s.settings, key)
	return s.write()
}

// Path returns the settings file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// write replaces the file through a rename so a crash never leaves it
// half written. Caller holds the lock.
func (s *ConfigStore) write() error {
	data, err := toml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), FileName+".*")
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// readSettings loads path. A missing file is an empty settings set; tables
// are rejected since every setting is top level.
func readSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}

	settings := map[string]any{}
	if err := toml.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	for key, val := range settings {
		if _, ok := val.(map[string]any); ok {
			return nil, fmt.Errorf("table [%s] is not supported, settings are top level keys", key)
		}
	}
	return settings, nil
}
