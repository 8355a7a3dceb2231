// Package shopstore implements the durable settings and credential store:
// a single JSON document holding arbitrary shop settings and one credential
// record per provider, fronted by an in-process read cache. Every write
// serializes the whole document back to disk before returning, so a
// successful call is durable. The store is an injectable object with an
// explicit lifecycle; nothing in this package is process-global.
package shopstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/dkstudio/shopsync/internal/config"
	"github.com/dkstudio/shopsync/pkg/errors"
)

// Store is a cached key-value view over one JSON settings document.
type Store struct {
	path string

	mu     sync.Mutex
	cache  map[string]any
	loaded bool
}

// Open returns a store backed by the document at path. When path is empty
// the configured default location is used. The document is not read until
// first access.
func Open(path string) *Store {
	if path == "" {
		path = config.DefaultStoragePath()
	}
	return &Store{path: path}
}

// Path returns the backing document location.
func (s *Store) Path() string {
	return s.path
}

// Has reports whether key exists in the document.
func (s *Store) Has(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return false, err
	}
	_, ok := s.cache[key]
	return ok, nil
}

// Get returns the value stored under key. The second result is false when
// the key is absent, which is distinct from a stored JSON null (nil, true).
func (s *Store) Get(key string) (any, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, false, err
	}
	v, ok := s.cache[key]
	return v, ok, nil
}

// GetDefault returns the value stored under key, materializing def as the
// stored value on a miss. The default is written durably before it is
// returned and is never re-applied once the key exists.
func (s *Store) GetDefault(key string, def any) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}
	if v, ok := s.cache[key]; ok {
		return v, nil
	}
	s.cache[key] = def
	if err := s.flush(); err != nil {
		return nil, err
	}
	return def, nil
}

// GetString returns the value under key as a string, or "" when the key is
// absent or holds a non-string.
func (s *Store) GetString(key string) (string, error) {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return "", err
	}
	str, _ := v.(string)
	return str, nil
}

// Set stores value under key and writes the document through to disk.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	s.cache[key] = value
	return s.flush()
}

// Update merges values into the document in one durable write.
func (s *Store) Update(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	for k, v := range values {
		s.cache[k] = v
	}
	return s.flush()
}

// Refresh drops the read cache so the next access re-reads the document.
// Used after an external process (the auth flow) writes credentials.
func (s *Store) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
	s.loaded = false
}

// load populates the cache from disk on first access. A missing file is an
// empty document; a malformed file fails with a ParseError that callers
// must treat as fatal.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.cache = make(map[string]any)
			s.loaded = true
			return nil
		}
		return errors.WrapIO("read", s.path, err)
	}

	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.WrapParse("json", s.path, err)
	}
	s.cache = doc
	s.loaded = true
	return nil
}

// flush serializes the whole document back to its file. Whole-document
// overwrite, not an append log; a crash mid-write can lose the document.
func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.cache, "", "  ")
	if err != nil {
		return errors.WrapParse("json", s.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.WrapIO("create", filepath.Dir(s.path), err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return errors.WrapIO("write", s.path, err)
	}
	return nil
}
