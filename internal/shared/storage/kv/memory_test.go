package kv_test

import (
	"context"
	"errors"
	"testing"

	"resumecrack-backend/internal/shared/storage/kv"
)

func TestMemoryStoreGetSet(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "resume:1"); !errors.Is(err, kv.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "resume:1", "v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := store.Get(ctx, "resume:1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "v1" {
		t.Fatalf("got %q, want v1", value)
	}

	if err := store.Set(ctx, "resume:1", "v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, err = store.Get(ctx, "resume:1")
	if err != nil {
		t.Fatalf("get after overwrite: %v", err)
	}
	if value != "v2" {
		t.Fatalf("last write must win, got %q", value)
	}
}

func TestMemoryStoreListPattern(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()

	for key, value := range map[string]string{
		"resume:a": "1",
		"resume:b": "2",
		"other:c":  "3",
	} {
		if err := store.Set(ctx, key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	entries, err := store.List(ctx, "resume:*", true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Key != "resume:a" || entries[1].Key != "resume:b" {
		t.Fatalf("entries not ordered by key: %+v", entries)
	}
	if entries[0].Value != "1" {
		t.Fatalf("values missing: %+v", entries)
	}

	// Trailing-wildcard and bare-prefix patterns are equivalent.
	bare, err := store.List(ctx, "resume:", false)
	if err != nil {
		t.Fatalf("list bare prefix: %v", err)
	}
	if len(bare) != 2 {
		t.Fatalf("got %d entries for bare prefix, want 2", len(bare))
	}
	if bare[0].Value != "" {
		t.Fatalf("withValues=false must omit values: %+v", bare)
	}
}

func TestMemoryStoreFlush(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()

	if err := store.Set(ctx, "resume:a", "1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "other:b", "2"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := store.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	entries, err := store.List(ctx, "", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("flush must empty the whole key space, got %d entries", len(entries))
	}
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Set(ctx, "k", "v"); err == nil {
		t.Fatalf("set with cancelled context must fail")
	}
	if _, err := store.Get(ctx, "k"); err == nil {
		t.Fatalf("get with cancelled context must fail")
	}
}
