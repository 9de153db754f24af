package media

import (
	"context"
	"os"
	"path/filepath"
)

// fakeRunner provides a configurable Runner for tests in this package.
type fakeRunner struct {
	stdout   []byte
	stderr   []byte
	exitCode int
	err      error

	// calls records each invocation's argv (name followed by args).
	calls [][]string

	// onRun, when set, is invoked before returning the canned results.
	// Useful for creating the output file a tool would have written.
	onRun func(name string, args []string)
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, int, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.onRun != nil {
		f.onRun(name, args)
	}
	return f.stdout, f.stderr, f.exitCode, f.err
}

// lastArg returns the final argument of the most recent call, which for
// ffmpeg invocations is the output path.
func (f *fakeRunner) lastArg() string {
	if len(f.calls) == 0 {
		return ""
	}
	call := f.calls[len(f.calls)-1]
	return call[len(call)-1]
}

// touchOutput returns an onRun hook that creates the tool's output file.
func touchOutput() func(string, []string) {
	return func(_ string, args []string) {
		if len(args) == 0 {
			return
		}
		out := args[len(args)-1]
		_ = os.MkdirAll(filepath.Dir(out), 0755)
		_ = os.WriteFile(out, []byte("fake output"), 0644)
	}
}
