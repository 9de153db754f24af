package staging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("stream interrupted")
}

func TestStore_Stage(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	videoID := uuid.New()
	path, err := store.Stage(videoID, strings.NewReader("video bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if filepath.Base(path) != videoID.String()+".mp4" {
		t.Errorf("staged path %s should be keyed by the video ID", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("staged file should exist: %v", err)
	}
	if string(data) != "video bytes" {
		t.Errorf("staged content = %q, expected %q", data, "video bytes")
	}
}

func TestStore_Stage_SameIDSamePath(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	videoID := uuid.New()
	first, err := store.Stage(videoID, strings.NewReader("one"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := store.Stage(videoID, strings.NewReader("two"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != second {
		t.Errorf("same identifier should stage to the same path: %s vs %s", first, second)
	}
}

func TestStore_Stage_ReadFailure(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	videoID := uuid.New()
	_, err = store.Stage(videoID, failingReader{})
	if err == nil {
		t.Fatal("expected error for interrupted stream")
	}

	// No partial file may be left behind.
	if _, statErr := os.Stat(filepath.Join(store.Root(), videoID.String()+".mp4")); !os.IsNotExist(statErr) {
		t.Error("partial staging file should be removed on write failure")
	}
}

func TestStore_Release_Idempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	path, err := store.Stage(uuid.New(), strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.Release(path)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("released file should be removed")
	}

	// Releasing again, or releasing a path that never existed, must not panic.
	store.Release(path)
	store.Release(filepath.Join(store.Root(), "never-created.mp4"))
	store.Release("")
}

func TestJanitor_Sweep(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	stalePath := filepath.Join(store.Root(), "stale.mp4")
	freshPath := filepath.Join(store.Root(), "fresh.mp4")
	for _, p := range []string{stalePath, freshPath} {
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}

	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stalePath, old, old); err != nil {
		t.Fatalf("failed to age file: %v", err)
	}

	janitor := NewJanitor(store, time.Hour)
	janitor.Sweep()

	if _, err := os.Stat(stalePath); !os.IsNotExist(err) {
		t.Error("stale file should be swept")
	}
	if _, err := os.Stat(freshPath); err != nil {
		t.Error("fresh file should be kept")
	}
}
