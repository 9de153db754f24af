package media

import (
	"context"
	"fmt"
	"os"
)

// PosterError indicates that poster extraction exited non-zero.
type PosterError struct {
	Stderr string
}

func (e *PosterError) Error() string {
	return fmt.Sprintf("ffmpeg poster extraction failed: %s", e.Stderr)
}

// PosterExtractor grabs a single representative frame from a video file.
type PosterExtractor interface {
	// Extract writes a JPEG frame taken near the start of the video at
	// outputPath.
	Extract(ctx context.Context, inputPath, outputPath string) error
}

// FFmpegPosterExtractor implements PosterExtractor using the ffmpeg CLI.
type FFmpegPosterExtractor struct {
	runner  Runner
	binPath string
}

var _ PosterExtractor = (*FFmpegPosterExtractor)(nil)

func NewFFmpegPosterExtractor(runner Runner, binPath string) *FFmpegPosterExtractor {
	if binPath == "" {
		binPath = "ffmpeg"
	}
	return &FFmpegPosterExtractor{runner: runner, binPath: binPath}
}

func (p *FFmpegPosterExtractor) Extract(ctx context.Context, inputPath, outputPath string) error {
	_, stderr, exitCode, err := p.runner.Run(ctx, p.binPath,
		"-i", inputPath,
		"-ss", "00:00:01.000",
		"-vframes", "1",
		"-f", "image2",
		"-y",
		outputPath,
	)
	if err != nil {
		return fmt.Errorf("run ffmpeg: %w", err)
	}
	if exitCode != 0 {
		return &PosterError{Stderr: string(stderr)}
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("ffmpeg exited successfully but produced no poster at %s: %w", outputPath, err)
	}

	return nil
}
