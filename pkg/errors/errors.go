// Package errors provides structured error types for witpanel.
//
// Errors carry a machine-readable [Code] so that the CLI, the HTTP API and
// the interactive board can decide how to surface a failure:
//   - GRID_FULL is the one layout failure shown to the user
//   - INVALID_PLACEMENT is swallowed by gesture handling (snap back)
//   - PERSISTENCE_PARSE is recovered by the layout store and only logged
//
// # Usage
//
//	err := errors.New(errors.ErrCodeGridFull, "no free %dx%d slot", w, h)
//	if errors.Is(err, errors.ErrCodeGridFull) {
//	    // tell the user
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "dial %s", url)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidKey    Code = "INVALID_KEY"

	// Layout errors
	ErrCodeGridFull         Code = "GRID_FULL"
	ErrCodeInvalidPlacement Code = "INVALID_PLACEMENT"
	ErrCodePersistenceParse Code = "PERSISTENCE_PARSE"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Connection errors
	ErrCodeNetwork            Code = "NETWORK_ERROR"
	ErrCodeTimeout            Code = "TIMEOUT"
	ErrCodeDisconnected       Code = "DISCONNECTED"
	ErrCodeReconnectExhausted Code = "RECONNECT_EXHAUSTED"
	ErrCodeCommandFailed      Code = "COMMAND_FAILED"

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

// coder is implemented by typed errors such as [CommandError].
type coder interface {
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error, or a typed error with a
// Code method, with a matching code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.Code()
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

// CommandError is returned when the desktop companion answers a command
// with success=false.
type CommandError struct {
	Target  string
	Command string
	Message string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("command %s/%s failed", e.Target, e.Command)
	}
	return fmt.Sprintf("command %s/%s failed: %s", e.Target, e.Command, e.Message)
}

// Code returns the error code for this error type.
func (e *CommandError) Code() Code {
	return ErrCodeCommandFailed
}
