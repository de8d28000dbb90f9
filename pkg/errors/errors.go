// Package errors provides structured error types for lzdraw.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so that the CLI, the HTTP API and the Lambda handler can map it to
// an exit status, a response code, or a user-facing message without string
// matching.
//
// # Error Codes
//
//   - INVALID_*: the caller supplied something unusable (architecture, format, theme)
//   - UPSTREAM_FAILURE: the architecture extraction service failed or returned garbage
//   - NOT_FOUND: a stored workshop record does not exist
//   - INTERNAL_ERROR: anything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "account_structure is required")
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // reject the request
//	}
//
//	err = errors.Wrap(errors.ErrCodeUpstream, origErr, "completion request failed")
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidTheme  Code = "INVALID_THEME"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// External collaborator errors
	ErrCodeUpstream Code = "UPSTREAM_FAILURE"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the response status an HTTP caller should see.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidTheme, ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeUpstream:
		return http.StatusBadGateway
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
