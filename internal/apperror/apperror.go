// Package apperror defines the error taxonomy shared by services and
// handlers. Services return *AppError values; handlers translate the
// code into an HTTP status.
package apperror

import (
	"errors"
	"fmt"
)

// Code classifies an AppError.
type Code string

const (
	CodeNotFound         Code = "NOT_FOUND"
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeInvalidOperation Code = "INVALID_OPERATION"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeInternal         Code = "INTERNAL_ERROR"
)

// AppError carries a code, a caller-facing message and, for validation
// failures, the name of the offending field.
type AppError struct {
	Code    Code
	Message string
	Field   string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError without a cause.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NotFound reports a missing user, film, genre, MPA rating or edge.
func NotFound(format string, args ...any) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a record that violates a domain invariant.
func Validation(field, format string, args ...any) *AppError {
	return &AppError{Code: CodeValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidOperation reports a well-formed but nonsensical request.
func InvalidOperation(format string, args ...any) *AppError {
	return &AppError{Code: CodeInvalidOperation, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code of the first AppError in err's chain.
// Errors that carry no code are internal.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
