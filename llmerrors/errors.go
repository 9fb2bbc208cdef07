// Package llmerrors provides structured error classification for model
// provider interactions. Providers wrap every SDK failure in an *Error with a
// classified type; retry and rotation decisions upstream key off that type
// instead of the raw error text. Substring matching on provider messages
// survives only as a fallback for SDKs that expose nothing better.
package llmerrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents categories of model provider errors for retry logic.
type ErrorType int8

const (
	// ErrorTypeRateLimit represents rate limiting errors (429, quota exceeded).
	ErrorTypeRateLimit ErrorType = iota
	// ErrorTypeTransient represents transient errors (5xx, connection reset, timeout).
	ErrorTypeTransient
	// ErrorTypeAuth represents authentication errors (401/403, bad API key).
	ErrorTypeAuth
	// ErrorTypeBadPrompt represents malformed request errors (too long, policy violation).
	ErrorTypeBadPrompt
	// ErrorTypeOffline represents a runtime whose backends never initialized.
	// Calls fail fast with this type; it is never retried.
	ErrorTypeOffline
	// ErrorTypeUnknown is the default for unclassified errors.
	ErrorTypeUnknown
)

// String returns the string representation of the error type.
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeRateLimit:
		return "rate_limit"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeAuth:
		return "auth"
	case ErrorTypeBadPrompt:
		return "bad_prompt"
	case ErrorTypeOffline:
		return "offline"
	case ErrorTypeUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// Error is a classified model provider error.
type Error struct {
	Err        error     // wrapped underlying error
	Message    string    // human-readable error message
	Provider   string    // provider id ("gemini", "openai", "anthropic", "vertex")
	ModelID    string    // model the call was bound to, if known
	Type       ErrorType // classified error type
	StatusCode int       // HTTP status code if applicable
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("model error (%s): %s", e.Type, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("model error (%s): %v", e.Type, e.Err)
	default:
		return fmt.Sprintf("model error (%s): status %d", e.Type, e.StatusCode)
	}
}

// Unwrap returns the underlying error for error unwrapping.
func (e *Error) Unwrap() error { return e.Err }

// IsRetryable reports whether this error type may be retried. Quota and
// transient failures are; auth, bad prompts and offline runtimes are not.
func (e *Error) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit, ErrorTypeTransient:
		return true
	default:
		return false
	}
}

// New creates a classified error.
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// NewWithStatus creates a classified error carrying an HTTP status.
func NewWithStatus(errorType ErrorType, statusCode int, message string) *Error {
	return &Error{Type: errorType, StatusCode: statusCode, Message: message}
}

// Wrap creates a classified error wrapping a cause.
func Wrap(errorType ErrorType, cause error, message string) *Error {
	return &Error{Type: errorType, Err: cause, Message: message}
}

// Is checks whether err carries the given classified type.
func Is(err error, errorType ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errorType
	}
	return false
}

// TypeOf returns the classified type of err, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Retryable reports whether err should be retried (with backoff or rotation).
// Unclassified errors fall through the substring heuristic before defaulting
// to non-retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.IsRetryable()
	}
	return classifyMessage(err.Error()).IsRetryable()
}

// ClassifyStatus maps an HTTP status code to an error type.
func ClassifyStatus(code int) ErrorType {
	switch {
	case code == 429:
		return ErrorTypeRateLimit
	case code >= 500:
		return ErrorTypeTransient
	case code == 401 || code == 403:
		return ErrorTypeAuth
	case code >= 400:
		return ErrorTypeBadPrompt
	default:
		return ErrorTypeUnknown
	}
}

// Classify wraps an arbitrary error into a classified *Error. Already
// classified errors pass through unchanged; everything else goes through the
// message heuristic.
func Classify(err error, provider, modelID string) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	c := classifyMessage(err.Error())
	c.Err = err
	c.Provider = provider
	c.ModelID = modelID
	return c
}

// classifyMessage is the legacy substring heuristic. Loose on purpose: the
// original wording of quota errors differs between providers and changes
// without notice, so this only has to catch the retryable families.
func classifyMessage(msg string) *Error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "429") || strings.Contains(lower, "quota") || strings.Contains(lower, "rate limit"):
		return &Error{Type: ErrorTypeRateLimit, Message: msg}
	case strings.Contains(lower, "500") || strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") || strings.Contains(lower, "504") ||
		strings.Contains(lower, "internal") || strings.Contains(lower, "unavailable") ||
		strings.Contains(lower, "timeout") || strings.Contains(lower, "connection"):
		return &Error{Type: ErrorTypeTransient, Message: msg}
	case strings.Contains(lower, "401") || strings.Contains(lower, "403") ||
		strings.Contains(lower, "api key") || strings.Contains(lower, "unauthorized"):
		return &Error{Type: ErrorTypeAuth, Message: msg}
	default:
		return &Error{Type: ErrorTypeUnknown, Message: msg}
	}
}
