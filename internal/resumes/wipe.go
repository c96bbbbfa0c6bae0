package resumes

import (
	"context"
	"fmt"

	"resumecrack-backend/internal/shared/metrics"
	"resumecrack-backend/internal/shared/storage/object"
	"resumecrack-backend/internal/shared/telemetry"
)

// WipeResult reports the per-blob outcome of a wipe. Deletion is
// best-effort, so failed paths are listed instead of raised.
type WipeResult struct {
	Deleted []string `json:"deleted"`
	Failed  []string `json:"failed"`
}

// Wiper bulk-deletes every stored blob and flushes the record store.
type Wiper struct {
	Objects object.ObjectStore
	Records *Store
}

// NewWiper builds the wipe operation over the given stores.
func NewWiper(objects object.ObjectStore, records *Store) *Wiper {
	return &Wiper{Objects: objects, Records: records}
}

// WipeAll enumerates every blob, deletes each in turn and then flushes the
// record store. Individual deletion failures are logged and collected, not
// raised, and do not stop the loop. The key space is cleared only after the
// loop finishes; if listing fails outright the key space is left untouched.
// Destructive and irreversible, with no partial rollback.
func (w *Wiper) WipeAll(ctx context.Context) (*WipeResult, error) {
	paths, err := w.Objects.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}

	result := &WipeResult{
		Deleted: make([]string, 0, len(paths)),
		Failed:  make([]string, 0),
	}
	for _, path := range paths {
		if err := w.Objects.Delete(ctx, path); err != nil {
			telemetry.Warn("wipe.delete_failed", map[string]any{
				"path":  path,
				"error": err.Error(),
			})
			result.Failed = append(result.Failed, path)
			continue
		}
		result.Deleted = append(result.Deleted, path)
	}
	metrics.AddWipeBlobsDeleted(len(result.Deleted))
	metrics.AddWipeBlobsFailed(len(result.Failed))

	if err := w.Records.Flush(ctx); err != nil {
		return result, fmt.Errorf("flush records: %w", err)
	}

	telemetry.Info("wipe.complete", map[string]any{
		"deleted": len(result.Deleted),
		"failed":  len(result.Failed),
	})
	if len(result.Failed) > 0 {
		return result, fmt.Errorf("%w: %d of %d blobs not deleted", ErrPartialWipeFailure, len(result.Failed), len(paths))
	}
	return result, nil
}
