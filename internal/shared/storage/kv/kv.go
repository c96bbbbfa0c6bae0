package kv

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned when a key is absent from the store.
var ErrNotFound = errors.New("key not found")

// Entry is a single key/value pair returned by List.
type Entry struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

// Store is the key/value capability consumed by the record store.
// List matches keys by prefix; a single trailing '*' in the pattern is
// accepted as a wildcard ("resume:*" and "resume:" are equivalent).
// Flush unconditionally empties the entire key space.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	List(ctx context.Context, pattern string, withValues bool) ([]Entry, error)
	Flush(ctx context.Context) error
}

func prefixFromPattern(pattern string) string {
	return strings.TrimSuffix(pattern, "*")
}
