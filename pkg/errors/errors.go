// Package errors provides structured error types for flowprof.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP surface and the TUI
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: malformed input (log lines, addresses, specs)
//   - DUPLICATE_*, DANGLING_*, EMPTY_*: topology validation failures
//   - ADDRESS_*: operator ownership violations
//   - NOT_FOUND / INTERNAL: lookup misses and unexpected failures
//
// Domain packages define their own typed errors (for example a duplicate node
// id carrying the offending id). Those types expose a Code method, and
// [GetCode] and [Is] recognise them alongside [*Error].
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidLogLine, "cannot parse line %d", n)
//	if errors.Is(err, errors.ErrCodeInvalidLogLine) {
//	    // Handle parse error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidSpec, origErr, "decode %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidSpec    Code = "INVALID_SPEC"
	ErrCodeInvalidLogLine Code = "INVALID_LOG_LINE"
	ErrCodeInvalidAddress Code = "INVALID_ADDRESS"
	ErrCodeInvalidPath    Code = "INVALID_PATH"

	// Topology validation errors
	ErrCodeDuplicateNodeID Code = "DUPLICATE_NODE_ID"
	ErrCodeEmptySpec       Code = "EMPTY_SPEC"
	ErrCodeDanglingChild   Code = "DANGLING_CHILD"

	// Aggregation errors
	ErrCodeOwnershipConflict Code = "ADDRESS_OWNERSHIP_CONFLICT"
	ErrCodeDuplicateAddress  Code = "DUPLICATE_ADDRESS"

	// Resource errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Coder is implemented by domain error types that carry a Code.
type Coder interface {
	error
	Code() Code
}

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
// It inspects the outermost coded error in the chain, so a wrapped error
// reports the wrapper's code.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Both *Error and any error implementing [Coder] are recognised.
// Returns empty string if no coded error is found in the chain.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case Coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
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
