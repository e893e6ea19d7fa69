package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of a client failure.
type ErrorType int

// Error type constants categorize failures so callers can decide how to react.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeUnsupportedVariant indicates the exchange variant has no endpoint.
	ErrorTypeUnsupportedVariant
	// ErrorTypeUnsupportedMethod indicates an HTTP method the dispatcher does not issue.
	ErrorTypeUnsupportedMethod
	// ErrorTypeMissingSecret indicates a signature was required but no secret was available.
	ErrorTypeMissingSecret
	// ErrorTypeMissingSymbol indicates an isolated margin call without a symbol.
	ErrorTypeMissingSymbol
	// ErrorTypeMissingListenKey indicates keepalive or revoke without any listen key.
	ErrorTypeMissingListenKey
	// ErrorTypeMissingBody indicates a PUT request without a payload.
	ErrorTypeMissingBody
	// ErrorTypeUnknownStream indicates the stream id is not in the registry.
	ErrorTypeUnknownStream
	// ErrorTypeNetwork indicates the request never reached the exchange.
	ErrorTypeNetwork
	// ErrorTypeMalformedResponse indicates the exchange answered with a non-JSON body.
	ErrorTypeMalformedResponse
	// ErrorTypeClientClosed indicates the client was used after Close.
	ErrorTypeClientClosed
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	names := [...]string{
		"UNKNOWN",
		"UNSUPPORTED_VARIANT",
		"UNSUPPORTED_METHOD",
		"MISSING_SECRET",
		"MISSING_SYMBOL",
		"MISSING_LISTEN_KEY",
		"MISSING_BODY",
		"UNKNOWN_STREAM",
		"NETWORK",
		"MALFORMED_RESPONSE",
		"CLIENT_CLOSED",
	}
	if t < 0 || int(t) >= len(names) {
		return "UNKNOWN"
	}
	return names[t]
}

// Sentinel errors, one per ErrorType. An *ExchangeError matches the sentinel of
// its type with errors.Is.
var (
	ErrUnsupportedVariant = errors.New("unsupported exchange variant")
	ErrUnsupportedMethod  = errors.New("unsupported http method")
	ErrMissingSecret      = errors.New("api secret is missing")
	ErrMissingSymbol      = errors.New("symbol is missing")
	ErrMissingListenKey   = errors.New("listen key is missing")
	ErrMissingBody        = errors.New("request body is missing")
	ErrUnknownStream      = errors.New("unknown stream")
	ErrNetwork            = errors.New("network error")
	ErrMalformedResponse  = errors.New("malformed response")
	ErrClientClosed       = errors.New("client is closed")
)

var sentinels = map[ErrorType]error{
	ErrorTypeUnsupportedVariant: ErrUnsupportedVariant,
	ErrorTypeUnsupportedMethod:  ErrUnsupportedMethod,
	ErrorTypeMissingSecret:      ErrMissingSecret,
	ErrorTypeMissingSymbol:      ErrMissingSymbol,
	ErrorTypeMissingListenKey:   ErrMissingListenKey,
	ErrorTypeMissingBody:        ErrMissingBody,
	ErrorTypeUnknownStream:      ErrUnknownStream,
	ErrorTypeNetwork:            ErrNetwork,
	ErrorTypeMalformedResponse:  ErrMalformedResponse,
	ErrorTypeClientClosed:       ErrClientClosed,
}

// ExchangeError is the failure returned by every client operation.
// It provides detailed context for debugging and error handling.
type ExchangeError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType `json:"type"`
	// Op is the operation that failed ("acquire", "keepalive", "dispatch", ...).
	Op string `json:"op,omitempty"`
	// StreamID is the stream the call was made for, if any.
	StreamID string `json:"stream_id,omitempty"`
	// StatusCode is the HTTP status code, zero when no response was received.
	StatusCode int `json:"status_code,omitempty"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Body holds the raw response body for malformed responses.
	Body []byte `json:"-"`
	// Err is the underlying cause.
	Err error `json:"-"`
	// Timestamp is when the error occurred.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface for ExchangeError.
func (e *ExchangeError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}

	prefix := e.Type.String()
	if e.Op != "" {
		prefix = e.Op + " " + prefix
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", prefix, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", prefix, msg)
}

// Unwrap returns the underlying cause.
func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel error of e's type.
func (e *ExchangeError) Is(target error) bool {
	sentinel, ok := sentinels[e.Type]
	return ok && sentinel == target
}

// WithOp sets the failing operation and returns the error for chaining.
func (e *ExchangeError) WithOp(op string) *ExchangeError {
	e.Op = op
	return e
}

// WithStream sets the stream id and returns the error for chaining.
func (e *ExchangeError) WithStream(streamID string) *ExchangeError {
	e.StreamID = streamID
	return e
}

// NewError creates an ExchangeError of the given type.
// The timestamp is automatically set to the current time.
func NewError(errorType ErrorType, message string) *ExchangeError {
	return &ExchangeError{
		Type:      errorType,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WrapError creates an ExchangeError of the given type around cause.
func WrapError(errorType ErrorType, message string, cause error) *ExchangeError {
	e := NewError(errorType, message)
	e.Err = cause
	return e
}

func errorTypeOf(err error) (ErrorType, bool) {
	var e *ExchangeError
	if errors.As(err, &e) {
		return e.Type, true
	}
	return ErrorTypeUnknown, false
}

// IsNetworkError returns true if the request never reached the exchange.
// Retrying, if desired, is left to the caller.
func IsNetworkError(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && t == ErrorTypeNetwork
}

// IsMalformedResponse returns true if the exchange answered with a body that is not JSON.
func IsMalformedResponse(err error) bool {
	t, ok := errorTypeOf(err)
	return ok && t == ErrorTypeMalformedResponse
}

// IsConfigurationError returns true for failures that no retry can fix:
// unsupported variants or methods, and missing secrets, symbols or streams.
func IsConfigurationError(err error) bool {
	t, ok := errorTypeOf(err)
	if !ok {
		return false
	}
	switch t {
	case ErrorTypeUnsupportedVariant, ErrorTypeUnsupportedMethod, ErrorTypeMissingSecret,
		ErrorTypeMissingSymbol, ErrorTypeUnknownStream:
		return true
	}
	return false
}
