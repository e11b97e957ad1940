// Package errors provides the coded error type used across instl.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPanic        ErrorCode = "PANIC"
	ErrInterrupted  ErrorCode = "INTERRUPTED"

	// Startup errors
	ErrStartupEncoding ErrorCode = "STARTUP_ENCODING"

	// Invocation errors
	ErrInvocationSetup ErrorCode = "INVOCATION_SETUP"
	ErrInvocationState ErrorCode = "INVOCATION_STATE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// InstlError represents a structured error with code and details.
// ExitStatus is an optional hint for the process exit status; zero means
// no hint.
type InstlError struct {
	Code       ErrorCode
	Message    string
	Details    map[string]interface{}
	Wrapped    error
	ExitStatus int
}

// Error implements the error interface
func (e *InstlError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *InstlError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *InstlError) Is(target error) bool {
	var targetErr *InstlError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// ExitCode returns the exit status hint carried by the error.
func (e *InstlError) ExitCode() int {
	return e.ExitStatus
}

// New creates a new InstlError with the given code and message
func New(code ErrorCode, message string) *InstlError {
	return &InstlError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new InstlError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *InstlError {
	return &InstlError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with an InstlError.
// A nil err yields a nil *InstlError; check err before returning the
// result as an error interface.
func Wrap(err error, code ErrorCode, message string) *InstlError {
	if err == nil {
		return nil
	}
	return &InstlError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *InstlError {
	if err == nil {
		return nil
	}
	return &InstlError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *InstlError) WithDetail(key string, value interface{}) *InstlError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithDetails adds multiple details to the error
func (e *InstlError) WithDetails(details map[string]interface{}) *InstlError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithExitCode sets the exit status hint
func (e *InstlError) WithExitCode(code int) *InstlError {
	e.ExitStatus = code
	return e
}

// Coder is implemented by error types defined outside this package that
// belong to an error category
type Coder interface {
	ErrorCode() ErrorCode
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	c, ok := lookupCode(err)
	return ok && c == code
}

// GetErrorCode returns the error code from an error, or ErrUnknown if no
// error in the chain carries one
func GetErrorCode(err error) ErrorCode {
	if c, ok := lookupCode(err); ok {
		return c
	}
	return ErrUnknown
}

// lookupCode returns the code of the outermost error in the chain that
// carries one, so a wrapper with its own category shadows what it wraps.
func lookupCode(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	switch e := err.(type) {
	case *InstlError:
		return e.Code, true
	case Coder:
		return e.ErrorCode(), true
	}
	switch e := err.(type) {
	case interface{ Unwrap() error }:
		return lookupCode(e.Unwrap())
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if c, ok := lookupCode(inner); ok {
				return c, true
			}
		}
	}
	return "", false
}

// GetErrorDetails returns the details from an error, or nil if not an InstlError
func GetErrorDetails(err error) map[string]interface{} {
	var instlErr *InstlError
	if errors.As(err, &instlErr) {
		return instlErr.Details
	}
	return nil
}
