package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified client error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the response status the error relates to (0 when no
	// response was received).
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
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// Transport wraps a connection-level failure.
func Transport(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTransport, Message: "transport failure",
		Retryable: true, Cause: cause,
	}
}

// Timeout wraps a deadline or cancellation reported by the transport.
func Timeout(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "request timed out",
		Retryable: true, Cause: cause,
	}
}

// RateLimited reports a call rejected by the client-side rate limiter.
func RateLimited(cause error) *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "rate limit exceeded",
		Retryable: true, Cause: cause,
	}
}

// CircuitOpen reports a call rejected by an open circuit breaker.
func CircuitOpen(name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeCircuitOpen, Message: fmt.Sprintf("circuit %q is open", name),
		Cause: cause, Details: map[string]any{"circuit": name},
	}
}

// UnknownContentType reports a response whose format cannot be detected.
// An empty contentType means the header was missing altogether.
func UnknownContentType(contentType string) *AppError {
	msg := "response has no Content-Type header"
	if contentType != "" {
		msg = fmt.Sprintf("no format registered for content type %q", contentType)
	}
	return &AppError{
		Code: ErrCodeUnknownContentType, Message: msg,
		Details: map[string]any{"content_type": contentType},
	}
}

// Deserialization wraps a decoding failure reported by the serializer.
func Deserialization(format string, status int, cause error) *AppError {
	return &AppError{
		Code: ErrCodeDeserialization, Message: fmt.Sprintf("cannot decode %s body", format),
		HTTPStatus: status, Cause: cause,
		Details: map[string]any{"format": format},
	}
}

// Serialization wraps an encoding failure reported by the serializer.
func Serialization(format string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeSerialization, Message: fmt.Sprintf("cannot encode %s body", format),
		Cause: cause, Details: map[string]any{"format": format},
	}
}

// UnhandledStatus reports an error status with no registered handler.
func UnhandledStatus(status int, body []byte) *AppError {
	e := &AppError{
		Code:       ErrCodeUnhandledStatus,
		Message:    fmt.Sprintf("HTTP %d %s", status, http.StatusText(status)),
		HTTPStatus: status,
		Retryable:  status == http.StatusTooManyRequests || status >= 500,
	}
	if len(body) > 0 {
		e.Details = map[string]any{"body": string(body)}
	}
	return e
}

// Configuration reports a client that lacks a capability needed for the call.
func Configuration(message string) *AppError {
	return &AppError{Code: ErrCodeConfiguration, Message: message}
}

// AlreadyIssued reports a request spec whose terminal operation ran twice.
func AlreadyIssued(method string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyIssued, Message: fmt.Sprintf("%s request was already issued", method),
	}
}

// MissingBody reports a body-required request without a body.
func MissingBody(method string) *AppError {
	return &AppError{
		Code: ErrCodeMissingBody, Message: fmt.Sprintf("%s request requires a body", method),
	}
}

// InvalidInput reports invalid caller input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid input: %s", reason),
		Details: details,
	}
}

// --- Inspection ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	e, ok := AsAppError(err)
	return ok && e.Code == code
}

// IsTransport checks if an error is a transport failure.
func IsTransport(err error) bool { return HasCode(err, ErrCodeTransport) }

// IsTimeout checks if an error is a timeout.
func IsTimeout(err error) bool { return HasCode(err, ErrCodeTimeout) }

// IsUnknownContentType checks if an error is an unknown content type error.
func IsUnknownContentType(err error) bool { return HasCode(err, ErrCodeUnknownContentType) }

// IsDeserialization checks if an error is a deserialization error.
func IsDeserialization(err error) bool { return HasCode(err, ErrCodeDeserialization) }

// IsUnhandledStatus checks if an error is an unhandled status error.
func IsUnhandledStatus(err error) bool { return HasCode(err, ErrCodeUnhandledStatus) }

// IsConfiguration checks if an error is a configuration error.
func IsConfiguration(err error) bool { return HasCode(err, ErrCodeConfiguration) }

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	e, ok := AsAppError(err)
	return ok && e.Retryable
}
