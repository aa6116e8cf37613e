// Package cache is a small file-backed JSON cache with per-read
// freshness windows. Callers treat ErrStale and ErrMiss identically:
// fetch live data and Put it back.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	// ErrMiss is returned when the key has never been written.
	ErrMiss = errors.New("cache miss")

	// ErrStale is returned when the entry is older than the caller's
	// freshness window. The stale value is never returned.
	ErrStale = errors.New("cache entry stale")
)

// entry is the on-disk envelope: the payload plus its write timestamp.
// There is no schema versioning; a shape change shows up as a decode
// error and the caller re-fetches.
type entry struct {
	SavedAt int64           `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// Store is a directory of JSON cache entries, one file per key.
type Store struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// New creates a cache store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Get decodes the entry for key into out if it is younger than maxAge.
// Returns ErrMiss when absent, ErrStale when too old.
func (s *Store) Get(key string, maxAge time.Duration, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cache entry: %w", err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		// Corrupt or old-shape entry: treat as a miss.
		return ErrMiss
	}

	age := s.now().Sub(time.Unix(e.SavedAt, 0))
	if age > maxAge {
		return ErrStale
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return ErrMiss
	}
	return nil
}

// Put writes the value for key with the current timestamp.
func (s *Store) Put(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache value: %w", err)
	}
	raw, err := json.Marshal(entry{SavedAt: s.now().Unix(), Data: data})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := os.WriteFile(s.path(key), raw, 0644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Invalidate removes the entry for key, if present.
func (s *Store) Invalidate(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

// SetClock overrides the time source. Tests use it to age entries.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// path maps a key to a file inside dir. Keys can carry request-derived
// text, so no path separator may survive into the filename.
func (s *Store) path(key string) string {
	return filepath.Join(s.dir, url.PathEscape(key)+".json")
}
