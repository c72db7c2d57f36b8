package affinity

import (
	"errors"
	"fmt"
	"syscall"
)

var (
	// ErrTagCount is returned on macOS when SetThreadAffinity is not given exactly one tag.
	ErrTagCount = errors.New("expected exactly one tag")
	// ErrCoreRange is returned when a core does not fit in the platform mask.
	ErrCoreRange = errors.New("core out of range")
)

// Error is the only error type returned by this package.
type Error struct {
	// Op is the native call that failed, or the package function for validation errors.
	Op string
	// Code is the OS error code. Zero for validation errors.
	Code int
	// Msg describes a validation failure. Empty for OS errors.
	Msg string
	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	if e.Code == 0 && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	// codeFormat is defined per platform.
	return fmt.Sprintf("%s failed with "+codeFormat, e.Op, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// osError wraps err returned by the native call op.
func osError(op string, err error) *Error {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return &Error{Op: op, Code: int(errno), Err: errno}
	}
	return &Error{Op: op, Err: err}
}

func validationError(op string, cause error, format string, args ...any) *Error {
	return &Error{Op: op, Msg: fmt.Sprintf(format, args...), Err: cause}
}
