package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorCode classifies failures that did not produce a response.
type ErrorCode int

const (
	// ErrCodeConfiguration indicates the request could not be constructed,
	// e.g. a malformed URI or an invalid verb. No network call was made.
	ErrCodeConfiguration ErrorCode = iota
	// ErrCodeConnection indicates a connection failure (refused, DNS, reset, ...).
	ErrCodeConnection
	// ErrCodeTimeout indicates the round trip timed out or was cancelled.
	ErrCodeTimeout
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeConfiguration:
		return "configuration"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is returned by Execute when no HTTP response is available.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// Method is the verb that was being sent.
	Method string
	// URI is the resolved request URI, empty if it could not be resolved.
	URI string
	// Message describes the error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.URI != "" {
		return fmt.Sprintf("httpclient: %s: %s %s: %s", e.Code, e.Method, e.URI, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError creates a configuration error.
func NewConfigurationError(msg string, err error) *Error {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &Error{
		Code:    ErrCodeConfiguration,
		Message: msg,
		Err:     err,
	}
}

// NewConnectionError creates a connection error.
func NewConnectionError(err error) *Error {
	return &Error{
		Code:    ErrCodeConnection,
		Message: err.Error(),
		Err:     err,
	}
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{
		Code:    ErrCodeTimeout,
		Message: err.Error(),
		Err:     err,
	}
}

// classifyTransportError maps an error from the HTTP round trip onto a
// timeout or connection Error.
func classifyTransportError(ctx context.Context, err error) *Error {
	var netErr net.Error
	switch {
	case ctx.Err() != nil,
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.As(err, &netErr) && netErr.Timeout():
		return NewTimeoutError(err)
	default:
		return NewConnectionError(err)
	}
}

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool {
	return hasCode(err, ErrCodeConfiguration)
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	return hasCode(err, ErrCodeConnection)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return hasCode(err, ErrCodeTimeout)
}

// IsTransport checks if an error is a connection or timeout error.
func IsTransport(err error) bool {
	return IsConnection(err) || IsTimeout(err)
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

var errMissingHost = errors.New("missing host")
