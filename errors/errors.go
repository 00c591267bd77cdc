package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status code the error was derived from, 0 if none.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// NotFound creates an AppError for a missing database or document.
func NotFound(reason string) *AppError {
	if reason == "" {
		reason = "missing"
	}
	return New(ErrCodeNotFound, reason, http.StatusNotFound)
}

// Conflict creates an AppError for a document update conflict.
func Conflict(reason string) *AppError {
	if reason == "" {
		reason = "Document update conflict."
	}
	return New(ErrCodeConflict, reason, http.StatusConflict)
}

// Unauthorized creates an AppError for missing or rejected credentials.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "Authentication required."
	}
	return New(ErrCodeUnauthorized, reason, http.StatusUnauthorized)
}

// Forbidden creates an AppError for insufficient permissions.
func Forbidden(reason string) *AppError {
	if reason == "" {
		reason = "You don't have permission to perform this action."
	}
	return New(ErrCodeForbidden, reason, http.StatusForbidden)
}

// Validation creates an AppError for invalid input.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// MissingField creates an AppError for a missing required field.
func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("Missing required field: %s", field), http.StatusBadRequest).
		WithDetail("field", field)
}

// statusCodes maps well-known document-store statuses onto error codes.
var statusCodes = map[int]ErrorCode{
	http.StatusBadRequest:            ErrCodeInvalidInput,
	http.StatusUnauthorized:          ErrCodeUnauthorized,
	http.StatusForbidden:             ErrCodeForbidden,
	http.StatusNotFound:              ErrCodeNotFound,
	http.StatusMethodNotAllowed:      ErrCodeMethodNotAllowed,
	http.StatusConflict:              ErrCodeConflict,
	http.StatusPreconditionFailed:    ErrCodePreconditionFailed,
	http.StatusRequestEntityTooLarge: ErrCodeTooLarge,
	http.StatusUnsupportedMediaType:  ErrCodeUnsupportedMedia,
	http.StatusTooManyRequests:       ErrCodeRateLimited,
	http.StatusInternalServerError:   ErrCodeInternal,
	http.StatusServiceUnavailable:    ErrCodeServiceUnavailable,
	http.StatusGatewayTimeout:        ErrCodeTimeout,
}

// FromStatus classifies a failed status into an AppError.
// errName and reason are the "error" and "reason" members of the server's
// error body; both may be empty. Returns nil for statuses below 400.
func FromStatus(status int, errName, reason string) *AppError {
	if status < http.StatusBadRequest {
		return nil
	}
	code, ok := statusCodes[status]
	switch {
	case ok:
	case status >= http.StatusInternalServerError:
		code = ErrCodeInternal
	case status >= http.StatusBadRequest:
		code = ErrCodeInvalidInput
	default:
		code = ErrCodeUnknown
	}

	message := reason
	if message == "" {
		message = http.StatusText(status)
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}

	e := New(code, message, status)
	if errName != "" {
		e.WithDetail("error", errName)
	}
	return e
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a NOT_FOUND AppError.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsConflict reports whether err is a CONFLICT AppError.
func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

func hasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
