package local_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"resumecrack-backend/internal/shared/storage/object/local"
)

func TestSaveOpenRoundTrip(t *testing.T) {
	store := local.New(t.TempDir())
	ctx := context.Background()

	payload := []byte("%PDF-1.4 test payload")
	key, size, _, err := store.Save(ctx, "guest:abc", "resume.pdf", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len(payload)) {
		t.Fatalf("size %d, want %d", size, len(payload))
	}

	r, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("content mismatch")
	}
}

func TestSaveProducesFreshKeys(t *testing.T) {
	store := local.New(t.TempDir())
	ctx := context.Background()

	payload := []byte("identical bytes")
	key1, _, _, err := store.Save(ctx, "guest:abc", "resume.pdf", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	key2, _, _, err := store.Save(ctx, "guest:abc", "resume.pdf", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if key1 == key2 {
		t.Fatalf("identical payloads must get distinct keys")
	}
}

func TestDelete(t *testing.T) {
	store := local.New(t.TempDir())
	ctx := context.Background()

	key, _, _, err := store.Save(ctx, "guest:abc", "resume.pdf", bytes.NewReader([]byte("x")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, key); err == nil {
		t.Fatalf("open after delete must fail")
	}
	if err := store.Delete(ctx, key); err == nil {
		t.Fatalf("deleting a missing key must fail")
	}
}

func TestDeleteRejectsTraversal(t *testing.T) {
	store := local.New(t.TempDir())
	if err := store.Delete(context.Background(), "../../etc/passwd"); err == nil {
		t.Fatalf("path traversal must be rejected")
	}
}

func TestList(t *testing.T) {
	store := local.New(t.TempDir())
	ctx := context.Background()

	key1, _, _, err := store.Save(ctx, "guest:abc", "a.pdf", bytes.NewReader([]byte("1")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	key2, _, _, err := store.Save(ctx, "guest:def", "b.pdf", bytes.NewReader([]byte("2")))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	keys, err := store.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d keys, want 2", len(keys))
	}
	found := map[string]bool{}
	for _, key := range keys {
		found[key] = true
	}
	if !found[key1] || !found[key2] {
		t.Fatalf("listing missing saved keys: %v", keys)
	}
}

func TestListMissingBaseDir(t *testing.T) {
	store := local.New(t.TempDir() + "/does-not-exist")
	keys, err := store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("list on missing dir: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected no keys, got %v", keys)
	}
}
