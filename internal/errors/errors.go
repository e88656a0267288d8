// Package errors provides the error taxonomy for nlq query requests.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies why a query request did not succeed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation is a local failure caught before any network call.
	KindValidation
	// KindNetwork means no response was obtained.
	KindNetwork
	// KindRequestFailed is a non-2xx response from the service.
	KindRequestFailed
	// KindInvalidResponse is a 2xx response whose payload is malformed.
	KindInvalidResponse
)

// String returns the human readable name of the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindRequestFailed:
		return "request failed"
	case KindInvalidResponse:
		return "invalid response"
	default:
		return "unknown"
	}
}

// Sentinel errors for each kind
var (
	ErrValidation      = errors.New("validation failed")
	ErrNetwork         = errors.New("network error")
	ErrRequestFailed   = errors.New("request failed")
	ErrInvalidResponse = errors.New("invalid response format")
)

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindNetwork:
		return ErrNetwork
	case KindRequestFailed:
		return ErrRequestFailed
	case KindInvalidResponse:
		return ErrInvalidResponse
	default:
		return nil
	}
}

// QueryError is the single error type surfaced by a query request
type QueryError struct {
	Kind       Kind
	Message    string
	StatusCode int    // set for KindRequestFailed
	Field      string // first offending field for KindValidation / KindInvalidResponse
	Endpoint   string
	Cause      error
}

// Error returns the message shown to the user. For RequestFailed the message is
// the server text, unchanged.
func (e *QueryError) Error() string {
	switch e.Kind {
	case KindRequestFailed:
		return e.Message
	case KindNetwork:
		if e.Cause != nil {
			return fmt.Sprintf("network error: %s: %v", e.Message, e.Cause)
		}
		return fmt.Sprintf("network error: %s", e.Message)
	case KindInvalidResponse:
		if e.Field != "" {
			return fmt.Sprintf("invalid response: %s: %s", e.Field, e.Message)
		}
		return fmt.Sprintf("invalid response: %s", e.Message)
	case KindValidation:
		return e.Message
	default:
		return e.Message
	}
}

// Unwrap returns the underlying cause
func (e *QueryError) Unwrap() error {
	return e.Cause
}

// Is allows comparison with sentinel errors
func (e *QueryError) Is(target error) bool {
	if s := e.Kind.sentinel(); s != nil && target == s {
		return true
	}
	// Match another QueryError of the same kind
	if t, ok := target.(*QueryError); ok {
		return t.Kind == e.Kind
	}
	return false
}

// NewValidationError creates a validation error for the given field
func NewValidationError(field, message string) *QueryError {
	return &QueryError{Kind: KindValidation, Field: field, Message: message}
}

// NewNetworkError creates an error for a request that got no response
func NewNetworkError(endpoint string, cause error) *QueryError {
	message := "no response"
	if endpoint != "" {
		message += " from " + endpoint
	}
	return &QueryError{
		Kind:     KindNetwork,
		Message:  message,
		Endpoint: endpoint,
		Cause:    cause,
	}
}

// NewRequestFailedError creates an error for a non-2xx response. An empty
// message is replaced by a generic one derived from the status.
func NewRequestFailedError(statusCode int, endpoint, message string) *QueryError {
	if message == "" {
		message = StatusMessage(statusCode)
	}
	return &QueryError{
		Kind:       KindRequestFailed,
		Message:    message,
		StatusCode: statusCode,
		Endpoint:   endpoint,
	}
}

// NewInvalidResponseError creates an error naming the first offending field
func NewInvalidResponseError(field, message string) *QueryError {
	return &QueryError{Kind: KindInvalidResponse, Field: field, Message: message}
}

// StatusMessage returns the generic message used when the server sent no body
func StatusMessage(statusCode int) string {
	if text := http.StatusText(statusCode); text != "" {
		return fmt.Sprintf("request failed with status %d (%s)", statusCode, text)
	}
	return fmt.Sprintf("request failed with status %d", statusCode)
}

// KindOf returns the Kind of err, or KindUnknown
func KindOf(err error) Kind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return KindUnknown
}

// IsValidation reports whether err is a local validation failure
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNetwork reports whether err is a transport failure
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsRequestFailed reports whether err is a non-2xx response
func IsRequestFailed(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

// IsInvalidResponse reports whether err is a malformed success payload
func IsInvalidResponse(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.StatusCode
	}
	return 0
}

// GetField returns the offending field carried by err, or ""
func GetField(err error) string {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Field
	}
	return ""
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Endpoint
	}
	return ""
}
