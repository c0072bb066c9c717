package domain

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable identifier for a failure class. Kinds survive
// serialization boundaries (CLI, HTTP) unchanged.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindInvalidTransition ErrorKind = "invalid_transition"
	KindInvalidSchedule   ErrorKind = "invalid_schedule"
	KindInvalidPlan       ErrorKind = "invalid_plan_request"
	KindInvalidInput      ErrorKind = "invalid_input"
	KindStorageCorrupted  ErrorKind = "storage_corrupted"
	KindLockTimeout       ErrorKind = "lock_timeout"
	KindTransportFailure  ErrorKind = "transport_failure"
	KindNotAuthenticated  ErrorKind = "not_authenticated"
)

// Error pairs a kind with a human-readable message and an optional cause.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an Error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a kind and message to an underlying cause.
func WrapError(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind carried by err, or "" for untyped errors.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
