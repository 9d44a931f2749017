// Package storage implements the durable stores of the engine: atomic JSON
// state files for users, portfolios and the rate cache, and a WAL-backed
// append-only journal for rate history.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/valutatrade/valutahub/internal/domain"
)

// JSONStore persists one JSON document with atomic replace semantics: the
// new content is written to a temp file, synced, then renamed over the
// canonical path. A reader observes either the old or the new complete
// document, never a torn write. Commits from one process are serialized.
type JSONStore struct {
	name string
	path string
	mu   sync.Mutex
}

// NewJSONStore creates a store bound to path, creating parent directories.
func NewJSONStore(name, path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &domain.PersistenceError{Store: name, Err: errors.Wrap(err, "create store dir")}
	}
	return &JSONStore{name: name, path: path}, nil
}

// Load unmarshals the current document into v. A missing file leaves v
// untouched so callers keep their empty default.
func (s *JSONStore) Load(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return &domain.PersistenceError{Store: s.name, Err: errors.Wrap(err, "read store")}
	}
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return &domain.PersistenceError{Store: s.name, Err: errors.Wrap(err, "decode store")}
	}
	return nil
}

// Commit atomically replaces the document with the marshalled form of v.
func (s *JSONStore) Commit(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return &domain.PersistenceError{Store: s.name, Err: errors.Wrap(err, "encode store")}
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &domain.PersistenceError{Store: s.name, Err: errors.Wrap(err, "open temp file")}
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(tmp)
		return &domain.PersistenceError{Store: s.name, Err: errors.Wrap(err, "write temp file")}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &domain.PersistenceError{Store: s.name, Err: errors.Wrap(err, "sync temp file")}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return &domain.PersistenceError{Store: s.name, Err: errors.Wrap(err, "close temp file")}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return &domain.PersistenceError{Store: s.name, Err: errors.Wrap(err, "replace store")}
	}
	return nil
}

// Path returns the canonical file path of the store.
func (s *JSONStore) Path() string { return s.path }
