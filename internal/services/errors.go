package services

import (
	"errors"
	"fmt"

	"timber-backend/internal/repositories"
)

// ErrorKind classifies service failures so callers can map them to a response
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "UNAUTHENTICATED"
	KindForbidden       ErrorKind = "FORBIDDEN"
	KindInvalidState    ErrorKind = "INVALID_STATE"
	KindNotFound        ErrorKind = "NOT_FOUND"
	KindQueryFailed     ErrorKind = "QUERY_FAILED"
	KindUpdateFailed    ErrorKind = "UPDATE_FAILED"
	KindDeleteFailed    ErrorKind = "DELETE_FAILED"
	KindValidation      ErrorKind = "VALIDATION"
	KindConflict        ErrorKind = "CONFLICT"
)

// Error is the failure value returned by every service operation.
// Message is safe to show to the user; Err carries the underlying cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// storeError wraps a repository failure, promoting not-found and duplicate
// sentinels to their own kinds
func storeError(kind ErrorKind, message string, err error) *Error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		kind = KindNotFound
	case errors.Is(err, repositories.ErrDuplicate):
		kind = KindConflict
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of a service error, or "" for foreign errors
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// AsError extracts the service error from err
func AsError(err error) (*Error, bool) {
	var se *Error
	ok := errors.As(err, &se)
	return se, ok
}
