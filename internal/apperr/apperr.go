// Package apperr defines the error kinds the board distinguishes when
// deciding what to show a user.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound reports an empty query result or a missing record.
	ErrNotFound = errors.New("not found")
	// ErrConflict reports that a record changed since it was read.
	ErrConflict = errors.New("record changed concurrently")
	// ErrForbidden reports an admin-only action requested by an employee.
	ErrForbidden = errors.New("admin role required")
	// ErrUnauthenticated reports a protected view requested without a session.
	ErrUnauthenticated = errors.New("login required")
)

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Set.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Set records a message for a field, keeping the first one.
func (e *ValidationError) Set(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NetworkError wraps a transport failure or a 5xx answer from the store.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: store answered %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UserMessage turns an error into the short text shown on a page.
func UserMessage(err error) string {
	var ve *ValidationError
	var ne *NetworkError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return "Please fix the highlighted fields."
	case errors.Is(err, ErrConflict):
		return "This task was changed by someone else. Reload and try again."
	case errors.Is(err, ErrNotFound):
		return "Nothing was found."
	case errors.Is(err, ErrForbidden):
		return "Only admins can do that."
	case errors.Is(err, ErrUnauthenticated):
		return "Please log in."
	case errors.As(err, &ne):
		return "The scrum store is unreachable right now. Try again shortly."
	default:
		return "Something went wrong."
	}
}
