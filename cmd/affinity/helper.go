package main

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/samber/lo"

	"github.com/egandro/go-affinity/pkg/cpulist"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// resolveCores parses the --cores flag, falling back to AFFINITY_DEFAULT_CORES.
func resolveCores(flagValue, configured string) ([]int, error) {
	value := flagValue
	if value == "" {
		value = configured
	}
	if value == "" {
		return nil, fmt.Errorf("no cores given: use --cores or set AFFINITY_DEFAULT_CORES")
	}
	cores, err := cpulist.Parse(value)
	if err != nil {
		return nil, err
	}
	if len(cores) == 0 {
		return nil, fmt.Errorf("core list %q is empty", value)
	}
	return cores, nil
}

// evenCores returns 0, 2, 4, ... below n.
func evenCores(n int) []int {
	return lo.Filter(lo.Range(n), func(c, _ int) bool {
		return c%2 == 0
	})
}

// onLockedThread runs fn on a dedicated OS thread. The thread is never unlocked, so the
// runtime discards it together with whatever affinity fn left on it.
func onLockedThread(fn func() error) error {
	errc := make(chan error, 1)
	go func() {
		runtime.LockOSThread()
		errc <- fn()
	}()
	return <-errc
}
