// Package apperr defines the error type returned by user-facing operations
package apperr

import (
	"errors"
	"fmt"
)

// Error is an error with a user-presentable message. Package-level values act
// as templates: Fmt and Wrap derive new errors that still match the template
// through errors.Is.
type Error struct {
	Cause   error
	base    *Error
	Message string
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}

	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is e or the template e was derived from.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t == e || (e.base != nil && t == e.base)
}

// Fmt formats the message template with the provided arguments.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{
		Message: fmt.Sprintf(e.Message, args...),
		Cause:   e.Cause,
		base:    e.root(),
	}
}

// Wrap attaches err as the cause of a copy of e.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		Message: e.Message,
		Cause:   err,
		base:    e.root(),
	}
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}
