package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so cloned sentinels still compare equal under
// errors.Is.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e != nil && other != nil && e.Code == other.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound   = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrConflict   = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal   = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	// ErrInvalidWeights signals a weight configuration whose weights do not
	// sum to 100 within tolerance. Caller-correctable.
	ErrInvalidWeights = New("INVALID_WEIGHTS", http.StatusBadRequest, "invalid category weights")
	// ErrEmptySelection signals a toggle selection that resolved to no
	// series at all. Caller-correctable.
	ErrEmptySelection = New("EMPTY_SELECTION", http.StatusBadRequest, "no chart series selected")
	// ErrRenderUnavailable signals that the primary rendering engine could
	// not produce an image. The export pipeline absorbs it by falling back
	// to the markup representation; it is never surfaced to HTTP callers.
	ErrRenderUnavailable = New("RENDER_ENGINE_UNAVAILABLE", http.StatusServiceUnavailable, "rendering engine unavailable")
	// ErrArtifactWrite signals that both the primary and the fallback
	// artifact writes failed. Fatal for the affected chart.
	ErrArtifactWrite = New("ARTIFACT_WRITE_FAILED", http.StatusInternalServerError, "failed to persist chart artifact")

	// ErrCacheMiss marks an absent cache entry; a miss, not a failure.
	ErrCacheMiss = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
