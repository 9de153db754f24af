// Package media wraps the external analysis and rewriting tools used
// by the ingestion pipeline.
package media

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Runner executes an external tool and returns its captured output and
// exit code. Both streams are drained concurrently with waiting for
// exit, so a tool that fills one pipe cannot deadlock the run.
type Runner interface {
	// Run executes name with args. err is non-nil only when the process
	// could not be started or was interrupted; a non-zero exit is
	// reported through exitCode with err == nil, and captured output is
	// returned either way.
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, exitCode int, err error)
}

// ExecRunner runs tools via os/exec.
type ExecRunner struct{}

var _ Runner = ExecRunner{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stdout.Bytes(), stderr.Bytes(), exitErr.ExitCode(), nil
		}
		return stdout.Bytes(), stderr.Bytes(), -1, err
	}

	return stdout.Bytes(), stderr.Bytes(), 0, nil
}
