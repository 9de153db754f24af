package media

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFFmpegFastStarter_Process_Success(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "upload.mp4")
	if err := os.WriteFile(inputPath, []byte("original bytes"), 0644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	runner := &fakeRunner{onRun: touchOutput()}
	fs := NewFFmpegFastStarter(runner, "")

	outputPath, err := fs.Process(context.Background(), inputPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if outputPath != inputPath+".processed" {
		t.Errorf("output path = %s, expected %s", outputPath, inputPath+".processed")
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Errorf("output file should exist: %v", err)
	}

	// The input must be left untouched for the caller to clean up.
	data, err := os.ReadFile(inputPath)
	if err != nil {
		t.Fatalf("input file should still exist: %v", err)
	}
	if string(data) != "original bytes" {
		t.Error("input file content should be unchanged")
	}
}

func TestFFmpegFastStarter_Process_Args(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "upload.mp4")
	runner := &fakeRunner{onRun: touchOutput()}
	fs := NewFFmpegFastStarter(runner, "ffmpeg")

	if _, err := fs.Process(context.Background(), inputPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	argv := strings.Join(runner.calls[0], " ")
	expected := "ffmpeg -i " + inputPath + " -movflags faststart -map_metadata 0 -codec copy -f mp4 -y " + inputPath + ".processed"
	if argv != expected {
		t.Errorf("argv = %q, expected %q", argv, expected)
	}
}

func TestFFmpegFastStarter_Process_NonZeroExit(t *testing.T) {
	inputPath := filepath.Join(t.TempDir(), "broken.mp4")
	runner := &fakeRunner{
		stderr:   []byte("Invalid data found when processing input"),
		exitCode: 1,
		onRun:    touchOutput(),
	}
	fs := NewFFmpegFastStarter(runner, "")

	outputPath, err := fs.Process(context.Background(), inputPath)

	var fsErr *FastStartError
	if !errors.As(err, &fsErr) {
		t.Fatalf("expected *FastStartError, got %T: %v", err, err)
	}
	if !strings.Contains(fsErr.Stderr, "Invalid data") {
		t.Errorf("FastStartError should carry captured stderr, got %q", fsErr.Stderr)
	}

	// ffmpeg left a partial file behind; the caller needs its path to
	// remove it.
	if outputPath != inputPath+".processed" {
		t.Errorf("output path = %q, expected the partial output %q", outputPath, inputPath+".processed")
	}
	if _, statErr := os.Stat(outputPath); statErr != nil {
		t.Fatalf("partial output should exist for this scenario: %v", statErr)
	}
}

func TestFFmpegFastStarter_Process_MissingOutput(t *testing.T) {
	// Zero exit but no output file written: an unexpected condition,
	// distinct from FastStartError.
	runner := &fakeRunner{}
	fs := NewFFmpegFastStarter(runner, "")

	_, err := fs.Process(context.Background(), filepath.Join(t.TempDir(), "upload.mp4"))
	if err == nil {
		t.Fatal("expected error when output file is missing")
	}

	var fsErr *FastStartError
	if errors.As(err, &fsErr) {
		t.Error("missing output should not be reported as FastStartError")
	}
}

func TestFFmpegPosterExtractor_Extract_Basic(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "video.mp4")
	outputPath := filepath.Join(dir, "poster.jpg")

	t.Run("success", func(t *testing.T) {
		runner := &fakeRunner{onRun: touchOutput()}
		ex := NewFFmpegPosterExtractor(runner, "")

		if err := ex.Extract(context.Background(), inputPath, outputPath); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if runner.lastArg() != outputPath {
			t.Errorf("output path = %s, expected %s", runner.lastArg(), outputPath)
		}
	})

	t.Run("non-zero exit", func(t *testing.T) {
		runner := &fakeRunner{stderr: []byte("boom"), exitCode: 1}
		ex := NewFFmpegPosterExtractor(runner, "")

		err := ex.Extract(context.Background(), inputPath, outputPath)
		var posterErr *PosterError
		if !errors.As(err, &posterErr) {
			t.Fatalf("expected *PosterError, got %T: %v", err, err)
		}
	})
}
