package visibility

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store persists small keyed string values across restarts.
type Store interface {
	// Get returns the stored value and whether the key was present
	Get(key string) (string, bool, error)
	// Set durably writes the value under the key
	Set(key, value string) error
}

// FileStore implements Store with one file per key under a base
// directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the base directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid store directory '%s': %w", dir, err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory '%s': %w", absDir, err)
	}
	return &FileStore{dir: absDir}, nil
}

func (fs *FileStore) pathFor(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, "/\\") {
		return "", fmt.Errorf("invalid store key '%s'", key)
	}
	return filepath.Join(fs.dir, key), nil
}

func (fs *FileStore) Get(key string) (string, bool, error) {
	path, err := fs.pathFor(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read store key '%s': %w", key, err)
	}
	return strings.TrimSpace(string(data)), true, nil
}

func (fs *FileStore) Set(key, value string) error {
	path, err := fs.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write store key '%s': %w", key, err)
	}
	return nil
}

// Setting is an observable boolean container for the visibility flag.
// Reads fall back to false when the flag is absent or unparsable.
// Subscribers are notified synchronously on every Set, so all mounted
// listings can re-query without polling.
type Setting struct {
	mu          sync.Mutex
	store       Store
	subscribers []func(bool)
}

func NewSetting(store Store) *Setting {
	return &Setting{store: store}
}

// Read returns the current flag. Anything other than a stored "true" is
// reported as false.
func (s *Setting) Read() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	value, ok, err := s.store.Get(Key)
	if err != nil || !ok {
		return false
	}
	return value == "true"
}

// Set persists the flag and notifies every subscriber with the new
// value. The persist happens before any notification so a subscriber
// re-reading the setting observes the update.
func (s *Setting) Set(value bool) error {
	s.mu.Lock()
	str := "false"
	if value {
		str = "true"
	}
	if err := s.store.Set(Key, str); err != nil {
		s.mu.Unlock()
		return err
	}
	subscribers := make([]func(bool), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, notify := range subscribers {
		notify(value)
	}
	return nil
}

// Subscribe registers a callback invoked on every flag change.
func (s *Setting) Subscribe(fn func(bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
