// Package errors provides structured error types for spritepack.
//
// Every failure that aborts a packing run carries a machine-readable Code so
// the CLI and the MCP server can report it consistently:
//   - SIZE_EXCEEDED: a sprite cannot fit on an empty page
//   - INVALID_CONFIGURATION: an option is out of range (checked before any work)
//   - SOLVER_INVARIANT: the transport solver lost its spanning tree
//   - EXTERNAL_TOOL: the compressor or a codec failed
//   - INVALID_INPUT: source bytes could not be decoded
//
// # Usage
//
//	err := errors.New(errors.ErrCodeSizeExceeded, "image %dx%d exceeds page limits", w, h)
//	if errors.Is(err, errors.ErrCodeSizeExceeded) {
//	    // report and abort
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeExternalTool, runErr, "pngquant failed")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the failure taxonomy of a packing run.
const (
	ErrCodeSizeExceeded         Code = "SIZE_EXCEEDED"
	ErrCodeInvalidConfiguration Code = "INVALID_CONFIGURATION"
	ErrCodeSolverInvariant      Code = "SOLVER_INVARIANT"
	ErrCodeExternalTool         Code = "EXTERNAL_TOOL"
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeInternal             Code = "INTERNAL_ERROR"
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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}
