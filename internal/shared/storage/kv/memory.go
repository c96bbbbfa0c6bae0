package kv

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps entries in memory and is safe for concurrent use.
// It is the dev fallback when no database is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

// Set stores value under key, overwriting any existing value.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

// List returns entries whose key matches the pattern, ordered by key.
func (s *MemoryStore) List(ctx context.Context, pattern string, withValues bool) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefix := prefixFromPattern(pattern)

	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for key, value := range s.entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		entry := Entry{Key: key}
		if withValues {
			entry.Value = value
		}
		out = append(out, entry)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Flush removes every entry from the store.
func (s *MemoryStore) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]string)
	return nil
}

var _ Store = (*MemoryStore)(nil)
