package monitoring

import (
	"errors"
	"fmt"
)

// Error codes for process control results.
const (
	ErrorCodeProcessNotFound = 1001
	ErrorCodeNotSupported    = 1002
	ErrorCodeOperationFailed = 1003
)

// ProcessError is the result of a failed process control operation.
type ProcessError struct {
	Op      string
	PID     int32
	Message string
	Code    int
	Err     error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] PID %d: %s (Code: %d): %v", e.Op, e.PID, e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("[%s] PID %d: %s (Code: %d)", e.Op, e.PID, e.Message, e.Code)
}

func (e *ProcessError) Unwrap() error { return e.Err }

func newProcessError(op string, pid int32, message string, code int) *ProcessError {
	return &ProcessError{Op: op, PID: pid, Message: message, Code: code}
}

func errorCode(err error) int {
	var pe *ProcessError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return 0
}

// IsNotFound reports whether err means the pid was absent from the current
// raw process table.
func IsNotFound(err error) bool { return errorCode(err) == ErrorCodeProcessNotFound }

// IsNotSupported reports whether err means the platform has no graceful
// terminate primitive distinct from a forceful kill.
func IsNotSupported(err error) bool { return errorCode(err) == ErrorCodeNotSupported }

// IsOperationFailed reports whether err means the OS accepted the request
// but reported failure.
func IsOperationFailed(err error) bool { return errorCode(err) == ErrorCodeOperationFailed }
