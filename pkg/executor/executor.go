package executor

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Executor defines the interface for running system commands.
type Executor interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// DefaultExecutor is the standard implementation using os/exec. Run attaches the command to
// Stdin, Stdout and Stderr, which default to the ones of the current process.
type DefaultExecutor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

func (e *DefaultExecutor) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = orDefault(e.Stdin, io.Reader(os.Stdin))
	cmd.Stdout = orDefault(e.Stdout, io.Writer(os.Stdout))
	cmd.Stderr = orDefault(e.Stderr, io.Writer(os.Stderr))
	return cmd.Run()
}

func (e *DefaultExecutor) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = e.Stderr
	return cmd.Output()
}

func orDefault[T comparable](v, fallback T) T {
	var zero T
	if v == zero {
		return fallback
	}
	return v
}

// ExitCode returns the exit status carried by err: 0 for nil, the child's code for an
// *exec.ExitError and 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return exitErr.ExitCode()
	}
	return 1
}
