package media

import (
	"context"
	"fmt"
	"os"
)

// processedSuffix distinguishes the rewritten sibling file from its input.
const processedSuffix = ".processed"

// FastStartError indicates that the rewriting tool exited non-zero.
// Stderr carries the tool's diagnostic output for operators.
type FastStartError struct {
	Stderr string
}

func (e *FastStartError) Error() string {
	return fmt.Sprintf("ffmpeg faststart failed: %s", e.Stderr)
}

// FastStarter rewrites a local file for progressive playback.
type FastStarter interface {
	// Process produces a sibling file with its container index moved to
	// the front. The input file is left untouched; the caller decides
	// when to remove both. On failure a non-empty returned path names a
	// partial output the caller must also remove.
	Process(ctx context.Context, inputPath string) (string, error)
}

// FFmpegFastStarter implements FastStarter using the ffmpeg CLI.
// Streams are copied verbatim (no re-encoding) while the moov atom is
// relocated to the front of the file and metadata tags are preserved.
type FFmpegFastStarter struct {
	runner  Runner
	binPath string
}

var _ FastStarter = (*FFmpegFastStarter)(nil)

// NewFFmpegFastStarter creates a FastStarter backed by the ffmpeg
// binary at binPath ("ffmpeg" resolves via PATH).
func NewFFmpegFastStarter(runner Runner, binPath string) *FFmpegFastStarter {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FFmpegFastStarter{runner: runner, binPath: binPath}
}

func (f *FFmpegFastStarter) Process(ctx context.Context, inputPath string) (string, error) {
	outputPath := inputPath + processedSuffix

	_, stderr, exitCode, err := f.runner.Run(ctx, f.binPath,
		"-i", inputPath,
		"-movflags", "faststart",
		"-map_metadata", "0",
		"-codec", "copy",
		"-f", "mp4",
		"-y",
		outputPath,
	)
	if err != nil {
		return "", fmt.Errorf("run ffmpeg: %w", err)
	}
	if exitCode != 0 {
		// ffmpeg may have partially written the output before dying.
		// Hand the path back so the caller schedules it for cleanup.
		return outputPath, &FastStartError{Stderr: string(stderr)}
	}

	// A zero exit without an output file is an invariant violation on
	// the tool's side, not part of the expected failure taxonomy.
	if _, err := os.Stat(outputPath); err != nil {
		return "", fmt.Errorf("ffmpeg exited successfully but produced no output at %s: %w", outputPath, err)
	}

	return outputPath, nil
}
