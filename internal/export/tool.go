package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/fakeyudi/relapse/internal/selection"
)

// ErrToolNotFound is returned when the external program is not on PATH.
var ErrToolNotFound = errors.New("external tool not found")

// Streams are the standard streams handed to the external program.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// ToolRunner executes name with args and returns its exit code.
// This abstraction allows mocking in tests.
type ToolRunner func(ctx context.Context, streams Streams, name string, args ...string) (int, error)

// defaultToolRunner runs the tool as a real subprocess. A non-zero exit is
// reported through the exit code, not the error.
func defaultToolRunner(ctx context.Context, streams Streams, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = streams.In
	cmd.Stdout = streams.Out
	cmd.Stderr = streams.Err

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	case errors.Is(err, exec.ErrNotFound):
		return 0, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	default:
		return 0, fmt.Errorf("running %s: %w", name, err)
	}
}

// Tool passes the absolute paths of a selection to an external program.
type Tool struct {
	Name   string
	Runner ToolRunner // if nil, runs a real subprocess
}

// Run invokes the tool once with every file and returns its exit code.
func (t *Tool) Run(ctx context.Context, streams Streams, files []selection.SelectedFile) (int, error) {
	runner := t.Runner
	if runner == nil {
		runner = defaultToolRunner
	}
	args := make([]string, len(files))
	for i, f := range files {
		args[i] = f.Absolute
	}
	return runner(ctx, streams, t.Name, args...)
}
