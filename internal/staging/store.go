// Package staging persists incoming upload streams to local temp files
// for the duration of an ingestion run.
package staging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store writes upload streams under a shared staging root.
//
// Paths are derived from the video identifier alone, so concurrent
// uploads for different videos never collide. Concurrent re-upload of
// the same video may race on the same path; the final remote key is
// identical in that case, so the last writer wins.
type Store struct {
	root string
}

// NewStore creates a staging store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create staging root: %w", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the staging root directory.
func (s *Store) Root() string {
	return s.root
}

// Stage writes the full input stream to a file keyed by the video
// identifier and returns its path.
func (s *Store) Stage(videoID uuid.UUID, r io.Reader) (string, error) {
	path := filepath.Join(s.root, videoID.String()+".mp4")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write staging file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close staging file: %w", err)
	}

	return path, nil
}

// Release removes a staged file. Safe to call for files that were never
// created or were already removed.
func (s *Store) Release(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove staged file",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
