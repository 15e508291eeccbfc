// Package errors augments the standard errors package with sentinel values
// that can wrap a cause, so callers can test with Is() and still print the
// underlying failure.
package errors

import (
	stderr "errors"
)

var _ error = New("")

// Sentinel errors shared across packages.
var (
	// ErrRepoNotFound is returned when the source repository is not present on disk.
	ErrRepoNotFound = New("source repository not found")

	// ErrNotARepository is returned when the repository path exists but is not a git repository.
	ErrNotARepository = New("path is not a git repository")

	// ErrCommandFailed is matched by every error reporting a non-zero exit of an external command.
	ErrCommandFailed = New("external command failed")

	// ErrTagNotFound is matched by resolution failures.
	ErrTagNotFound = New("tag not found")
)

// New Error
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Error is a message with an optional nested cause.
type Error struct {
	msg string
	err error
}

// Error message
func (e *Error) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

// Unwrap nested error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap returns a copy of e carrying err as its cause.
//
// The receiver is left untouched so package-level sentinels can be wrapped
// concurrently and still compare equal through Is.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: &wrapped{sentinel: e, err: err}}
}

// Is of some error type?
func (e *Error) Is(target error) bool {
	return e == target
}

// wrapped links a copy produced by Wrap back to its sentinel.
type wrapped struct {
	sentinel *Error
	err      error
}

func (w *wrapped) Error() string {
	return w.err.Error()
}

func (w *wrapped) Unwrap() []error {
	return []error{w.sentinel, w.err}
}

// As finds the first error in err's chain that matches target
// (a shortcut to standard lib errors.As)
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to standard lib errors.Is)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
