package affinity

import (
	"errors"
	"log/slog"
	"syscall"
)

// errInvalidParameter is ERROR_INVALID_PARAMETER, returned by SetThreadAffinityMask for a
// mask that lies outside the process affinity mask.
const errInvalidParameter = syscall.Errno(0x57)

// maskSetter sets the affinity mask of the calling thread and returns the previous one.
type maskSetter func(mask uintptr) (uintptr, error)

// probeThreadMask recovers the current thread mask on Windows, which has no
// GetThreadAffinityMask. Single-core masks are tried in ascending bit order; the first one
// accepted yields the previous mask, which is put back before returning.
// Cores outside the process mask fail with ERROR_INVALID_PARAMETER and are skipped.
func probeThreadMask(set maskSetter) (uintptr, error) {
	for bit := uintptr(1); bit != 0; bit <<= 1 {
		prev, err := set(bit)
		if err != nil {
			if errors.Is(err, errInvalidParameter) {
				slog.Debug("Core not in process affinity, skipping", "mask", bit)
				continue
			}
			return 0, err
		}
		if _, err := set(prev); err != nil {
			return 0, err
		}
		return prev, nil
	}
	return 0, nil
}
