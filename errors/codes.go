package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Transport errors (retryable)
const (
	// ErrCodeTransport indicates a connection or socket level failure.
	ErrCodeTransport ErrorCode = "TRANSPORT"
	// ErrCodeTimeout indicates the request deadline was exceeded.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client-side rate limiter rejected the call.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeCircuitOpen indicates the circuit breaker rejected the call.
	ErrCodeCircuitOpen ErrorCode = "CIRCUIT_OPEN"
)

// Response handling errors
const (
	// ErrCodeUnknownContentType indicates the response format could not be
	// derived from its Content-Type header.
	ErrCodeUnknownContentType ErrorCode = "UNKNOWN_CONTENT_TYPE"
	// ErrCodeDeserialization indicates a malformed or type-mismatched body.
	ErrCodeDeserialization ErrorCode = "DESERIALIZATION"
	// ErrCodeUnhandledStatus indicates an error status nobody handled.
	ErrCodeUnhandledStatus ErrorCode = "UNHANDLED_STATUS"
)

// Request building errors
const (
	// ErrCodeSerialization indicates the request body could not be encoded.
	ErrCodeSerialization ErrorCode = "SERIALIZATION"
	// ErrCodeConfiguration indicates the client is missing a capability,
	// such as an RFC 6570 expander.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION"
	// ErrCodeAlreadyIssued indicates a request spec was issued twice.
	ErrCodeAlreadyIssued ErrorCode = "ALREADY_ISSUED"
	// ErrCodeMissingBody indicates a body was required but never attached.
	ErrCodeMissingBody ErrorCode = "MISSING_BODY"
	// ErrCodeInvalidInput indicates invalid caller input.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransport:   true,
	ErrCodeTimeout:     true,
	ErrCodeRateLimited: true,
	ErrCodeCircuitOpen: false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
