package affinity

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeThread behaves like SetThreadAffinityMask on a thread inside a restricted process.
type fakeThread struct {
	process uintptr
	current uintptr
	calls   []uintptr
	failOn  uintptr
	failErr error
}

func (f *fakeThread) set(mask uintptr) (uintptr, error) {
	f.calls = append(f.calls, mask)
	if f.failErr != nil && mask == f.failOn {
		return 0, f.failErr
	}
	if mask == 0 || mask&^f.process != 0 {
		return 0, &Error{Op: "SetThreadAffinityMask", Code: int(errInvalidParameter), Err: errInvalidParameter}
	}
	prev := f.current
	f.current = mask
	return prev, nil
}

func TestProbeThreadMask(t *testing.T) {
	tests := []struct {
		name          string
		process       uintptr
		current       uintptr
		expectedCalls []uintptr
	}{
		{
			name:          "first core allowed",
			process:       0b1111,
			current:       0b0101,
			expectedCalls: []uintptr{0b0001, 0b0101},
		},
		{
			name:          "leading cores outside process mask are skipped",
			process:       0b1100,
			current:       0b1000,
			expectedCalls: []uintptr{0b0001, 0b0010, 0b0100, 0b1000},
		},
		{
			name:          "even cores",
			process:       0xff,
			current:       0b01010101,
			expectedCalls: []uintptr{0b0001, 0b01010101},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ft := &fakeThread{process: tt.process, current: tt.current}

			mask, err := probeThreadMask(ft.set)
			require.NoError(t, err)

			assert.Equal(t, tt.current, mask)
			assert.Equal(t, tt.current, ft.current, "probe must restore the original mask")
			assert.Equal(t, tt.expectedCalls, ft.calls)
		})
	}
}

func TestProbeThreadMask_EveryCoreRejected(t *testing.T) {
	ft := &fakeThread{process: 0, current: 0}

	mask, err := probeThreadMask(ft.set)
	require.NoError(t, err)
	assert.Zero(t, mask)
	assert.Empty(t, decodeMask(uint64(mask)))
}

func TestProbeThreadMask_FatalError(t *testing.T) {
	accessDenied := &Error{Op: "SetThreadAffinityMask", Code: 5, Err: syscall.Errno(5)}
	ft := &fakeThread{process: 0b1100, current: 0b0100, failOn: 0b0010, failErr: accessDenied}

	_, err := probeThreadMask(ft.set)
	assert.ErrorIs(t, err, accessDenied)
	assert.Equal(t, []uintptr{0b0001, 0b0010}, ft.calls)
	assert.Equal(t, uintptr(0b0100), ft.current)
}

func TestProbeThreadMask_RestoreFails(t *testing.T) {
	restoreErr := errors.New("restore failed")
	ft := &fakeThread{process: 0b11, current: 0b10, failOn: 0b10, failErr: restoreErr}

	_, err := probeThreadMask(ft.set)
	assert.ErrorIs(t, err, restoreErr)
}

// The process mask bounds every thread mask: after restricting the process to core 0,
// asking for cores 0 and 1 can only be refused.
func TestProbeThreadMask_ProcessMaskOverwrite(t *testing.T) {
	ft := &fakeThread{process: 0b11, current: 0b11}

	ft.process, ft.current = 0b01, 0b01
	_, err := ft.set(0b11)
	assert.ErrorIs(t, err, errInvalidParameter)

	mask, err := probeThreadMask(ft.set)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, decodeMask(uint64(mask)))
}
