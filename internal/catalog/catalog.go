// Package catalog implements durable per-entity JSON persistence under
// named collections (namespaces), plus a path-addressed sidecar store for
// metadata that travels beside a tracked artifact. The catalog caches
// remote listing snapshots; the sidecar holds local association records.
// Writes are whole-file snapshot replacements with no locking: this is a
// single-operator tool and concurrent writers are unsupported.
package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dkstudio/shopsync/internal/config"
	"github.com/dkstudio/shopsync/pkg/errors"
)

// Well-known namespaces.
const (
	// NamespaceProducts holds one snapshot per remote listing, keyed by
	// listing id.
	NamespaceProducts = "products"

	// NamespaceListingIndex is the reverse index: listing id to the local
	// product folder that claims it.
	NamespaceListingIndex = "listing_index"
)

// Entity is one cached remote object, an opaque decoded JSON document.
type Entity = map[string]any

// Store persists entities as one JSON file per id below a namespace
// directory.
type Store struct {
	dir string
}

// Open returns a store rooted at dir, falling back to the configured
// default catalog directory when dir is empty.
func Open(dir string) *Store {
	if dir == "" {
		dir = config.DefaultCatalogDir()
	}
	return &Store{dir: dir}
}

// Dir returns the catalog root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Persist writes one entity snapshot under namespace/id, fully replacing
// any prior snapshot for that id. Parent directories are created as needed.
func (s *Store) Persist(namespace, id string, entity Entity) error {
	if id == "" {
		return errors.ErrInvalidInput
	}

	nsDir := filepath.Join(s.dir, namespace)
	if err := os.MkdirAll(nsDir, 0o755); err != nil {
		return errors.WrapIO("create", nsDir, err)
	}

	data, err := json.MarshalIndent(entity, "", "  ")
	if err != nil {
		return errors.WrapParse("json", id, err)
	}

	path := s.entityPath(namespace, id)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// Select returns the entity stored under namespace/id. Absence is reported
// as found=false, never as an error, so callers can branch without
// guarding.
func (s *Store) Select(namespace, id string) (Entity, bool, error) {
	data, err := os.ReadFile(s.entityPath(namespace, id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.WrapIO("read", s.entityPath(namespace, id), err)
	}

	var entity Entity
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, false, errors.WrapParse("json", s.entityPath(namespace, id), err)
	}
	return entity, true, nil
}

// SelectKeys lists all ids currently present in a namespace, sorted. A
// namespace directory that does not exist yet yields an empty list, not an
// error.
func (s *Store) SelectKeys(namespace string) ([]string, error) {
	nsDir := filepath.Join(s.dir, namespace)
	dirents, err := os.ReadDir(nsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.WrapIO("read", nsDir, err)
	}

	keys := make([]string, 0, len(dirents))
	for _, de := range dirents {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes the snapshot for namespace/id. Deleting an absent entity
// is a no-op.
func (s *Store) Delete(namespace, id string) error {
	err := os.Remove(s.entityPath(namespace, id))
	if err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("delete", s.entityPath(namespace, id), err)
	}
	return nil
}

func (s *Store) entityPath(namespace, id string) string {
	return filepath.Join(s.dir, namespace, id+".json")
}
