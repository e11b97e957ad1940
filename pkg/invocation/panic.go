package invocation

import (
	"fmt"

	"github.com/arthur-debert/instl/pkg/errors"
)

// PanicError is the cause recorded when the entry function panics. The
// panic itself is re-raised after the report is sent.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorCode classifies panics for exit status mapping
func (e *PanicError) ErrorCode() errors.ErrorCode {
	return errors.ErrPanic
}

// Unwrap exposes a panicked error value
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// errGoexit is the cause recorded when the entry function's goroutine
// exits through runtime.Goexit instead of returning.
var errGoexit = errors.New(errors.ErrInternal, "entry function exited without returning")
