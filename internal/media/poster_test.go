package media

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestFFmpegPosterExtractor_Extract(t *testing.T) {
	t.Run("invokes ffmpeg with frame grab flags", func(t *testing.T) {
		runner := &fakeRunner{onRun: touchOutput()}
		extractor := NewFFmpegPosterExtractor(runner, "")

		out := filepath.Join(t.TempDir(), "poster.jpg")
		if err := extractor.Extract(context.Background(), "/tmp/in.mp4", out); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(runner.calls) != 1 {
			t.Fatalf("runner called %d times, want 1", len(runner.calls))
		}
		argv := strings.Join(runner.calls[0], " ")
		want := "ffmpeg -i /tmp/in.mp4 -ss 00:00:01.000 -vframes 1 -f image2 -y " + out
		if argv != want {
			t.Errorf("argv = %q, want %q", argv, want)
		}
	})

	t.Run("non-zero exit", func(t *testing.T) {
		runner := &fakeRunner{exitCode: 1, stderr: []byte("invalid data found")}
		extractor := NewFFmpegPosterExtractor(runner, "")

		err := extractor.Extract(context.Background(), "/tmp/in.mp4", filepath.Join(t.TempDir(), "poster.jpg"))
		var posterErr *PosterError
		if !errors.As(err, &posterErr) {
			t.Fatalf("error = %v, want *PosterError", err)
		}
		if !strings.Contains(posterErr.Stderr, "invalid data found") {
			t.Errorf("Stderr = %q, want captured ffmpeg output", posterErr.Stderr)
		}
	})

	t.Run("spawn failure", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("executable not found")}
		extractor := NewFFmpegPosterExtractor(runner, "")

		err := extractor.Extract(context.Background(), "/tmp/in.mp4", filepath.Join(t.TempDir(), "poster.jpg"))
		if err == nil || !strings.Contains(err.Error(), "run ffmpeg") {
			t.Errorf("error = %v, want spawn failure", err)
		}
	})

	t.Run("missing output", func(t *testing.T) {
		runner := &fakeRunner{}
		extractor := NewFFmpegPosterExtractor(runner, "")

		err := extractor.Extract(context.Background(), "/tmp/in.mp4", filepath.Join(t.TempDir(), "poster.jpg"))
		if err == nil || !strings.Contains(err.Error(), "produced no poster") {
			t.Errorf("error = %v, want missing output error", err)
		}
	})
}
