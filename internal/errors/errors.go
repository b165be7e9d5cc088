// Package errors defines structured error types for catalog operations.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode defines specific error types reported to the user.
type ErrorCode string

const (
	// ErrMalformedData is returned when the persisted catalog cannot be parsed
	ErrMalformedData ErrorCode = "MALFORMED_DATA"
	// ErrStorageError is returned when reading or writing the catalog fails
	ErrStorageError ErrorCode = "STORAGE_ERROR"

	// ErrInvalidInput is returned when user input fails validation
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrNoSelection is returned when no valid book was selected
	ErrNoSelection ErrorCode = "NO_SELECTION"
	// ErrOutOfRange is returned when a position does not exist in the catalog
	ErrOutOfRange ErrorCode = "OUT_OF_RANGE"

	// ErrInternal is returned when an unexpected error occurs
	ErrInternal ErrorCode = "INTERNAL_ERROR"
)

// Severity tells the user interface how to surface an error.
type Severity int

const (
	// SeverityWarning is recovered locally and shown as a warning.
	SeverityWarning Severity = iota
	// SeverityError is recovered locally and shown as an error notification.
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Error is a concrete error type with a code, a severity, a short title and optional details.
type Error struct {
	code       ErrorCode
	severity   Severity
	title      string
	message    string
	details    map[string]any
	wrappedErr error
}

// New creates a new Error.
func New(code ErrorCode, severity Severity, title, message string) *Error {
	return &Error{
		code:     code,
		severity: severity,
		title:    title,
		message:  message,
		details:  make(map[string]any),
	}
}

// WithDetail adds a single detail to the error.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	e.details[key] = value
	return e
}

// Wrap wraps an underlying error.
func (e *Error) Wrap(err error) *Error {
	e.wrappedErr = err
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.wrappedErr != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrappedErr)
	}
	return e.message
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Severity returns how the error should be surfaced.
func (e *Error) Severity() Severity {
	return e.severity
}

// Title returns a short heading for notifications.
func (e *Error) Title() string {
	return e.title
}

// Message returns the message without the wrapped error.
func (e *Error) Message() string {
	return e.message
}

// Details returns additional error details.
func (e *Error) Details() map[string]any {
	return e.details
}

// Unwrap returns the wrapped error if any.
func (e *Error) Unwrap() error {
	return e.wrappedErr
}

// Malformed creates a warning for catalog content that could not be parsed.
func Malformed(path string, err error) *Error {
	return New(ErrMalformedData, SeverityWarning, "Invalid JSON",
		fmt.Sprintf("%s is invalid, ignoring its content", path)).WithDetail("path", path).Wrap(err)
}

// Storage creates an error for a failed read or write.
func Storage(title, path string, err error) *Error {
	return New(ErrStorageError, SeverityError, title,
		fmt.Sprintf("could not access %s", path)).WithDetail("path", path).Wrap(err)
}

// InvalidInput creates a warning for rejected user input.
func InvalidInput(message string) *Error {
	return New(ErrInvalidInput, SeverityWarning, "Attention", message)
}

// NoSelection creates a warning for a missing or invalid selection.
func NoSelection(message string) *Error {
	return New(ErrNoSelection, SeverityWarning, "Notice", message)
}

// OutOfRange creates a warning for a position outside the catalog.
func OutOfRange(index, length int) *Error {
	return New(ErrOutOfRange, SeverityWarning, "Notice",
		fmt.Sprintf("position %d is outside the catalog (%d books)", index, length)).
		WithDetail("index", index).WithDetail("length", length)
}

// Internal creates an error for an unexpected failure.
func Internal(message string, err error) *Error {
	return New(ErrInternal, SeverityError, "Error", message).Wrap(err)
}

// As reports whether err is or wraps an *Error and returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}
