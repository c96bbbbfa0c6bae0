package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"resumecrack-backend/internal/shared/storage/kv"
)

// keyPrefix namespaces record keys in the key/value store. It is used both
// for individual lookups and for prefix listing of all records.
const keyPrefix = "resume:"

func recordKey(id string) string {
	return keyPrefix + id
}

// Store persists ResumeRecords as JSON values in a key/value store.
// It is the exclusive owner of persisted records.
type Store struct {
	kv kv.Store
}

// NewStore builds a record store over the given key/value capability.
func NewStore(kvStore kv.Store) *Store {
	return &Store{kv: kvStore}
}

// Put writes the record under its id, overwriting any existing value.
// Last writer wins; there is no optimistic-concurrency check.
func (s *Store) Put(ctx context.Context, record *ResumeRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := s.kv.Set(ctx, recordKey(record.ID), string(value)); err != nil {
		return fmt.Errorf("write record %s: %w", record.ID, err)
	}
	return nil
}

// Get reads the record stored under id. Returns ErrNotFound when absent.
func (s *Store) Get(ctx context.Context, id string) (*ResumeRecord, error) {
	value, err := s.kv.Get(ctx, recordKey(id))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read record %s: %w", id, err)
	}
	var record ResumeRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	return &record, nil
}

// List returns every record under the resume namespace, tombstoned records
// included. Callers that want live records only must filter on Deleted or
// use ListLive.
func (s *Store) List(ctx context.Context) ([]*ResumeRecord, error) {
	entries, err := s.kv.List(ctx, keyPrefix+"*", true)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	records := make([]*ResumeRecord, 0, len(entries))
	for _, entry := range entries {
		var record ResumeRecord
		if err := json.Unmarshal([]byte(entry.Value), &record); err != nil {
			return nil, fmt.Errorf("decode record at %s: %w", entry.Key, err)
		}
		records = append(records, &record)
	}
	return records, nil
}

// ListLive returns only records that have not been soft-deleted.
func (s *Store) ListLive(ctx context.Context) ([]*ResumeRecord, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	live := make([]*ResumeRecord, 0, len(all))
	for _, record := range all {
		if !record.Deleted {
			live = append(live, record)
		}
	}
	return live, nil
}

// SoftDelete marks the record as deleted and writes it back. All other
// fields stay intact and the key is never physically removed. Returns
// ErrNotFound when the record does not exist.
func (s *Store) SoftDelete(ctx context.Context, id string) (*ResumeRecord, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	record.Deleted = true
	if err := s.Put(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Flush unconditionally empties the key/value space. Used only by the wipe
// operation, never by single-record deletion.
func (s *Store) Flush(ctx context.Context) error {
	return s.kv.Flush(ctx)
}
