package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving, retrieving and removing binary blobs.
// Save must return a fresh storage key on every call, even for identical payloads;
// callers rely on that for duplicate submissions producing distinct blobs.
type ObjectStore interface {
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
	List(ctx context.Context, prefix string) ([]string, error)
}
