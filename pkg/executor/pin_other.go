//go:build !windows

package executor

import "github.com/egandro/go-affinity/pkg/affinity"

// inheritablePin pins the calling thread. A forked child inherits the mask of the thread
// that forked it.
func inheritablePin(cores []int) (func() error, error) {
	return affinity.PinThread(cores)
}
