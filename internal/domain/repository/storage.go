package repository

import (
	"context"
	"io"
	"time"
)

// ObjectStorage defines the interface for object store operations.
// Implementations are provided by the infrastructure layer (MinIO).
type ObjectStorage interface {
	// Upload streams an object into the store under the given key,
	// tagged with its content type. A failed upload is not retried
	// internally; the caller re-runs the whole pipeline stage.
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Download retrieves an object from the store.
	// Caller is responsible for closing the returned ReadCloser.
	// Returns ErrObjectNotFound if no object exists under the key.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// SignedDownloadURL produces a time-limited URL authorizing a read
	// of the given key for exactly expiry from the moment of signing.
	// Pure computation against the store's credentials; no network call.
	// The result must never be persisted.
	SignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error)

	// Delete removes an object from the store.
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object exists under the key.
	Exists(ctx context.Context, key string) (bool, error)
}
