package braille

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of a device failure.
type ErrorType int

const (
	// ErrTypeIO indicates a failed read or write on the device connection
	ErrTypeIO ErrorType = iota
	// ErrTypeTimeout indicates a device call or connect attempt that did not complete in time
	ErrTypeTimeout
	// ErrTypeClosed indicates the device or its daemon went away
	ErrTypeClosed
	// ErrTypeProtocol indicates an unexpected reply from the device
	ErrTypeProtocol
	// ErrTypeUnknown indicates an unknown or unexpected error
	ErrTypeUnknown
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeIO:
		return "I/O Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeClosed:
		return "Connection Closed"
	case ErrTypeProtocol:
		return "Protocol Error"
	case ErrTypeUnknown:
		return "Unknown Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

var (
	// ErrQueueFull is returned when the device task queue is at capacity.
	ErrQueueFull = errors.New("braille: device queue full")

	// ErrQueueClosed is returned when submitting to a worker that has been
	// shut down or torn down.
	ErrQueueClosed = errors.New("braille: device queue closed")

	// ErrNotConnected is returned by operations that need a ready device.
	ErrNotConnected = errors.New("braille: device not connected")
)

// DeviceError is a failure of one device operation. Every DeviceError
// reaching the engine is recovered locally by tearing the connection down
// and reconnecting; Retryable only affects logging.
type DeviceError struct {
	Op        string    // Device operation, e.g. "write" or "read key"
	Type      ErrorType // Category of error
	Err       error     // Underlying error (if any)
	Retryable bool      // Whether reconnecting is expected to help
}

// Error implements the error interface
func (e *DeviceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Op)
}

// Unwrap returns the underlying error for error chain inspection
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// NewIOError wraps a transport failure of op.
func NewIOError(op string, err error) *DeviceError {
	return &DeviceError{Op: op, Type: ErrTypeIO, Err: err, Retryable: true}
}

// NewTimeoutError reports that op did not finish in time.
func NewTimeoutError(op string, err error) *DeviceError {
	return &DeviceError{Op: op, Type: ErrTypeTimeout, Err: err, Retryable: true}
}

// NewClosedError reports that the device connection is gone.
func NewClosedError(op string, err error) *DeviceError {
	return &DeviceError{Op: op, Type: ErrTypeClosed, Err: err, Retryable: true}
}

// NewProtocolError reports a malformed reply to op.
func NewProtocolError(op string, err error) *DeviceError {
	return &DeviceError{Op: op, Type: ErrTypeProtocol, Err: err, Retryable: false}
}

// IsRetryable reports whether err is a DeviceError marked retryable.
func IsRetryable(err error) bool {
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr.Retryable
	}
	return false
}

// classify wraps a non-DeviceError returned by a Device implementation.
func classify(op string, err error) *DeviceError {
	if err == nil {
		return nil
	}
	var devErr *DeviceError
	if errors.As(err, &devErr) {
		return devErr
	}
	return &DeviceError{Op: op, Type: ErrTypeUnknown, Err: err, Retryable: true}
}
