// Package errors provides structured error types for codegraph.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and the workspace
//   - Machine-readable error codes for programmatic handling
//   - User-facing notification text without the code prefix
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - NO_*: An operation had nothing to work on (no selection, no edges)
//   - NOT_FOUND: Unknown node id or tree path
//   - STALE_GENERATION: A rebuild finished after a newer one started
//   - ANALYSIS_FAILED / INTERNAL_ERROR: Unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoEdges, "graph has no edges to export")
//	if errors.Is(err, errors.ErrCodeNoEdges) {
//	    // Show a notification and abort the export
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeAnalysis, origErr, "build graph")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidSettings Code = "INVALID_SETTINGS"
	ErrCodeInvalidSource   Code = "INVALID_SOURCE"
	ErrCodeInvalidPath     Code = "INVALID_PATH"

	// Nothing to operate on
	ErrCodeNoSelection Code = "NO_SELECTION"
	ErrCodeNoEdges     Code = "NO_EDGES"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Rebuild ordering
	ErrCodeStale Code = "STALE_GENERATION"

	// Internal errors
	ErrCodeAnalysis    Code = "ANALYSIS_FAILED"
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

// IsNoOp reports whether err means there was simply nothing to do, such as a
// rebuild requested without any selected files. Callers treat these as silent.
func IsNoOp(err error) bool {
	return Is(err, ErrCodeNoSelection)
}
