package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
// Implementing this interface enables extensible error handling (OCP compliance).
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates authentication failure
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates authorization failure
	ForbiddenError struct {
		Message string
	}
)

// Error implementations
func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

// StatusCode implementations (HTTPError interface)
func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrPersistence indicates the persistence layer could not complete an
	// update. A manual save surfaces it to the caller; an autosave only logs it.
	ErrPersistence = errors.New("persistence failure")

	// ErrGeneration indicates the generation provider errored, timed out, or
	// returned empty content.
	ErrGeneration = errors.New("generation failure")

	// ErrSaveInFlight signals that a full save was suppressed because another
	// one is already running for the same session. Not user-visible: callers
	// either wait for the in-flight result or treat the tick as a no-op.
	ErrSaveInFlight = errors.New("save already in flight")

	// ErrSessionClosed is returned when an operation targets a draft session
	// that has been closed. In-flight completions treat it as a no-op.
	ErrSessionClosed = errors.New("draft session closed")

	// ErrAwaitingPrimary is returned when a document with competing initial
	// snapshots is opened for editing before a primary version was chosen.
	ErrAwaitingPrimary = errors.New("awaiting primary version selection")
)

// ConflictError represents a resource conflict with details about the existing resource
// Implements HTTPError interface for extensible error handling
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (document, snapshot)
	ResourceID   string // ID of the existing/conflicting resource
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// StaleSpanError indicates an accept(replace) target span no longer matches the
// live content verbatim. The accept is refused; the caller must re-select.
type StaleSpanError struct {
	Start int
	Span  string
}

func (e *StaleSpanError) Error() string {
	return fmt.Sprintf("span at offset %d no longer matches live content", e.Start)
}

// StatusCode implements the HTTPError interface
func (e *StaleSpanError) StatusCode() int {
	return http.StatusConflict
}
