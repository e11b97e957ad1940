package entrypoint

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/instl/pkg/errors"
)

// SignalError is the cancellation cause of the invocation context when the
// process receives a termination signal.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("interrupted by %s", e.Signal)
}

// ExitCode follows the shell convention of 128 + signal number
func (e *SignalError) ExitCode() int {
	if s, ok := e.Signal.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 130
}

// ErrorCode implements errors.Coder
func (e *SignalError) ErrorCode() errors.ErrorCode {
	return errors.ErrInterrupted
}

// terminationSignals are the signals turned into context cancellation
var terminationSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

// withSignals returns a context cancelled with a *SignalError cause on the
// first termination signal. Handling is removed after that signal, so a
// second one terminates the process even if the entry function ignores
// the context; the reporter does not run in that case.
func withSignals(parent context.Context, sigs ...os.Signal) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-ch:
			signal.Stop(ch)
			cancel(&SignalError{Signal: sig})
		case <-done:
		}
	}()

	return ctx, func() {
		signal.Stop(ch)
		close(done)
		cancel(nil)
	}
}
