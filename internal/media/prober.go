package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Dimensions holds the pixel dimensions of a video stream.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ErrNoVideoStream is returned when the probed file contains no video streams.
var ErrNoVideoStream = errors.New("no video stream found")

// ProbeError indicates that the analysis tool exited non-zero.
// Stderr carries the tool's diagnostic output for operators; it must
// not be echoed verbatim in client responses.
type ProbeError struct {
	Stderr string
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("ffprobe failed: %s", e.Stderr)
}

// Prober extracts the dimensions of a local media file.
type Prober interface {
	Probe(ctx context.Context, path string) (Dimensions, error)
}

// FFprobeProber implements Prober using the ffprobe CLI.
type FFprobeProber struct {
	runner  Runner
	binPath string
}

var _ Prober = (*FFprobeProber)(nil)

// NewFFprobeProber creates a Prober backed by the ffprobe binary at
// binPath ("ffprobe" resolves via PATH).
func NewFFprobeProber(runner Runner, binPath string) *FFprobeProber {
	if binPath == "" {
		binPath = "ffprobe"
	}
	return &FFprobeProber{runner: runner, binPath: binPath}
}

type probeOutput struct {
	Streams []Dimensions `json:"streams"`
}

// Probe runs ffprobe against the file, selecting the first video
// stream and requesting JSON output. Both output streams are captured
// fully before the exit status is inspected.
func (p *FFprobeProber) Probe(ctx context.Context, path string) (Dimensions, error) {
	stdout, stderr, exitCode, err := p.runner.Run(ctx, p.binPath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		path,
	)
	if err != nil {
		return Dimensions{}, fmt.Errorf("run ffprobe: %w", err)
	}
	if exitCode != 0 {
		return Dimensions{}, &ProbeError{Stderr: string(stderr)}
	}

	var out probeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return Dimensions{}, fmt.Errorf("parse ffprobe output: %w", err)
	}

	if len(out.Streams) == 0 {
		return Dimensions{}, ErrNoVideoStream
	}

	return out.Streams[0], nil
}
