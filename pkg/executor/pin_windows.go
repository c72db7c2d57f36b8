//go:build windows

package executor

import (
	"errors"

	"github.com/egandro/go-affinity/pkg/affinity"
)

// inheritablePin binds the whole process, since new processes inherit the process mask and
// not the mask of the creating thread.
func inheritablePin(cores []int) (func() error, error) {
	previous, err := affinity.GetProcessAffinity()
	if err != nil {
		return nil, err
	}
	if err := affinity.SetProcessAffinity(cores); err != nil {
		return nil, err
	}
	restoreThread, err := affinity.PinThread(cores)
	if err != nil {
		return nil, errors.Join(err, affinity.SetProcessAffinity(previous))
	}
	return func() error {
		return errors.Join(restoreThread(), affinity.SetProcessAffinity(previous))
	}, nil
}
