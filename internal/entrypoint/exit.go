package entrypoint

import (
	"context"
	stderrors "errors"

	"github.com/arthur-debert/instl/pkg/config"
	"github.com/arthur-debert/instl/pkg/errors"
)

// StartupFailureStatus is the exit status when the standard streams cannot
// be normalized (EX_OSERR). Configuration is not loaded yet at that point.
const StartupFailureStatus = 71

// exitCoder is implemented by failures that suggest their own exit status:
// *errors.InstlError, *SignalError and *exec.ExitError among others.
type exitCoder interface {
	ExitCode() int
}

// ExitStatus derives the process exit status of an invocation. nil is 0.
// A failure is never 0: it takes the first usable value of its own hint,
// the status configured for its error code, and the generic status.
func ExitStatus(err error, exit config.Exit) int {
	if err == nil {
		return 0
	}

	if status := exitHint(err); status != 0 {
		return status
	}

	if status := exit.StatusFor(string(errors.GetErrorCode(err))); validStatus(status) {
		return status
	}

	if validStatus(exit.Generic) {
		return exit.Generic
	}
	return 1
}

// exitHint returns the first usable hint in err's chain, depth first, or 0.
// An *errors.InstlError without a hint does not hide one it wraps.
func exitHint(err error) int {
	if err == nil {
		return 0
	}
	if coder, ok := err.(exitCoder); ok {
		if status := coder.ExitCode(); validStatus(status) {
			return status
		}
	}
	switch e := err.(type) {
	case interface{ Unwrap() error }:
		return exitHint(e.Unwrap())
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			if status := exitHint(inner); status != 0 {
				return status
			}
		}
	}
	return 0
}

// Statuses above 255 wrap modulo 256 on unix and could read as success.
func validStatus(status int) bool {
	return status >= 1 && status <= 255
}

// resolveCause replaces a bare context cancellation with the signal that
// caused it, so the exit status reflects the signal.
func resolveCause(ctx context.Context, err error) error {
	if err == nil || !stderrors.Is(err, context.Canceled) {
		return err
	}
	var sigErr *SignalError
	if cause := context.Cause(ctx); stderrors.As(cause, &sigErr) {
		return &interruptedError{err: err, signal: sigErr}
	}
	return err
}

// interruptedError keeps the entry function's error text and chain while
// carrying the signal's exit status and code.
type interruptedError struct {
	err    error
	signal *SignalError
}

func (e *interruptedError) Error() string               { return e.err.Error() }
func (e *interruptedError) Unwrap() []error             { return []error{e.err, e.signal} }
func (e *interruptedError) ExitCode() int               { return e.signal.ExitCode() }
func (e *interruptedError) ErrorCode() errors.ErrorCode { return errors.ErrInterrupted }
