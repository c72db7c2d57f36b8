package affinity

import (
	"log/slog"
	"runtime"
)

// Driver is implemented once per supported operating system.
// newDriver is defined in affinity_linux.go, affinity_windows.go and affinity_darwin.go.
type Driver interface {
	SetThreadAffinity(cores []int) error
	GetThreadAffinity() ([]int, error)
	GetCoreNum() int
}

// ProcessDriver is the process-wide extension only the Windows driver provides.
type ProcessDriver interface {
	SetProcessAffinity(cores []int) error
	GetProcessAffinity() ([]int, error)
}

var driver Driver = newDriver()

// SetThreadAffinity binds the calling thread to the given cores.
func SetThreadAffinity(cores []int) error {
	return driver.SetThreadAffinity(cores)
}

// GetThreadAffinity returns the cores the calling thread is bound to, in ascending order.
func GetThreadAffinity() ([]int, error) {
	return driver.GetThreadAffinity()
}

// GetCoreNum returns the number of logical cores available to the process.
// It never returns less than 1.
func GetCoreNum() int {
	if n := driver.GetCoreNum(); n > 0 {
		return n
	}
	return 1
}

// PinThread locks the calling goroutine to its OS thread and binds that thread to cores.
// The returned function restores the previous affinity and unlocks the thread. If the
// restore fails the goroutine stays locked, so the runtime terminates the thread when the
// goroutine exits rather than reusing it with the wrong affinity.
func PinThread(cores []int) (func() error, error) {
	runtime.LockOSThread()

	prev, err := driver.GetThreadAffinity()
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	if err := driver.SetThreadAffinity(cores); err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	slog.Debug("Pinned thread", "cores", cores, "previous", prev)

	return func() error {
		if err := driver.SetThreadAffinity(prev); err != nil {
			slog.Debug("Failed to restore thread affinity, keeping thread locked", "previous", prev, "error", err)
			return err
		}
		runtime.UnlockOSThread()
		return nil
	}, nil
}
