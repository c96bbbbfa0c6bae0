package kv

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// PGStore implements Store on Postgres via database/sql.
type PGStore struct {
	DB *sql.DB
}

// Get returns the value stored under key.
func (s *PGStore) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM kv_entries WHERE key = $1 LIMIT 1`
	var value string
	err := s.DB.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

// Set upserts the value under key; last writer wins.
func (s *PGStore) Set(ctx context.Context, key, value string) error {
	const query = `
INSERT INTO kv_entries (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value,
    updated_at = now()`
	_, err := s.DB.ExecContext(ctx, query, key, value)
	return err
}

// List returns entries whose key matches the pattern, ordered by key.
func (s *PGStore) List(ctx context.Context, pattern string, withValues bool) ([]Entry, error) {
	prefix := prefixFromPattern(pattern)

	const query = `SELECT key, value FROM kv_entries WHERE key LIKE $1 ORDER BY key`
	rows, err := s.DB.QueryContext(ctx, query, escapeLike(prefix)+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var entry Entry
		var value string
		if err := rows.Scan(&entry.Key, &value); err != nil {
			return nil, err
		}
		if withValues {
			entry.Value = value
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Flush removes every entry from the store.
func (s *PGStore) Flush(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM kv_entries`)
	return err
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

var _ Store = (*PGStore)(nil)
