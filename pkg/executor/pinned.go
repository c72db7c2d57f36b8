package executor

import (
	"context"
	"fmt"
	"log/slog"
)

// PinFunc applies an affinity that commands started afterwards inherit. The returned
// function undoes it.
type PinFunc func(cores []int) (func() error, error)

// Pinned runs commands through Next with Cores applied. Each command is started from a
// fresh goroutine so a thread that could not be restored never outlives the call.
type Pinned struct {
	Next  Executor
	Cores []int
	// Pin defaults to the platform's inheritable affinity.
	Pin PinFunc
}

// NewPinned wraps next so that its commands run on cores.
func NewPinned(next Executor, cores []int) *Pinned {
	return &Pinned{Next: next, Cores: cores, Pin: inheritablePin}
}

func (p *Pinned) Run(ctx context.Context, name string, args ...string) error {
	_, err := p.do(func() ([]byte, error) {
		return nil, p.Next.Run(ctx, name, args...)
	})
	return err
}

func (p *Pinned) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return p.do(func() ([]byte, error) {
		return p.Next.Output(ctx, name, args...)
	})
}

type result struct {
	out []byte
	err error
}

func (p *Pinned) do(run func() ([]byte, error)) ([]byte, error) {
	pin := p.Pin
	if pin == nil {
		pin = inheritablePin
	}

	done := make(chan result, 1)
	go func() {
		restore, err := pin(p.Cores)
		if err != nil {
			done <- result{err: fmt.Errorf("failed to apply affinity %v: %w", p.Cores, err)}
			return
		}
		slog.Debug("Running pinned command", "cores", p.Cores)

		out, runErr := run()
		if err := restore(); err != nil {
			slog.Warn("Failed to restore affinity", "error", err)
		}
		done <- result{out: out, err: runErr}
	}()

	r := <-done
	return r.out, r.err
}
