package invocation

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arthur-debert/instl/pkg/errors"
	"github.com/rs/zerolog"
)

// EntryFunc is the external entry function: it receives the raw command
// line, program name included, and reports failure by returning an error.
type EntryFunc func(ctx context.Context, args []string) error

// active is set while a Reporter is Running; invocations do not nest.
var active atomic.Bool

// Reporter observes a single invocation. Create it with Begin.
type Reporter struct {
	ctx        Context
	sinks      []Sink
	logger     zerolog.Logger
	now        func() time.Time
	exitStatus func(error) int

	mu      sync.Mutex
	state   State
	outcome Outcome
	report  Report
}

type options struct {
	sinks       []Sink
	historyFile string
	logger      *zerolog.Logger
	now         func() time.Time
	exitStatus  func(error) int
	version     string
}

// Option configures Begin
type Option func(*options)

// WithSink adds a sink. Sinks receive the report in the order added.
func WithSink(s Sink) Option {
	return func(o *options) { o.sinks = append(o.sinks, s) }
}

// WithHistoryFile adds a FileSink appending to path. The file is opened
// by Begin; failing to open it fails Begin.
func WithHistoryFile(path string) Option {
	return func(o *options) { o.historyFile = path }
}

// WithLogger sets the logger used for the reporter's own diagnostics.
// It does not add a LogSink.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithExitStatus sets the function that derives the exit status recorded
// in the report. Without it the report carries 0 on success and 1 on
// failure.
func WithExitStatus(fn func(error) int) Option {
	return func(o *options) { o.exitStatus = fn }
}

// WithVersion records the tool version in the context
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// Begin opens a reporting scope: it captures the Context and opens the
// sinks. Every failure is an ErrInvocationSetup error and leaves nothing
// open.
func Begin(args []string, opts ...Option) (*Reporter, error) {
	o := options{
		now:        time.Now,
		exitStatus: defaultExitStatus,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger := zerolog.Nop()
	if o.logger != nil {
		logger = *o.logger
	}

	if !active.CompareAndSwap(false, true) {
		return nil, errors.New(errors.ErrInvocationSetup, "an invocation is already running in this process")
	}

	ctx, err := captureContext(args, o.now(), o.version)
	if err != nil {
		active.Store(false)
		return nil, err
	}

	sinks := o.sinks
	if o.historyFile != "" {
		fs, err := OpenFileSink(o.historyFile)
		if err != nil {
			active.Store(false)
			return nil, errors.Wrapf(err, errors.ErrInvocationSetup, "failed to open invocation history %s", o.historyFile).
				WithDetail("path", o.historyFile)
		}
		sinks = append(sinks, fs)
	}

	r := &Reporter{
		ctx:        ctx,
		sinks:      sinks,
		logger:     logger,
		now:        o.now,
		exitStatus: o.exitStatus,
		state:      Running,
	}

	r.logger.Debug().
		Str("id", ctx.ID).
		Strs("args", ctx.Args).
		Int("pid", ctx.PID).
		Str("version", ctx.Version).
		Msg("Invocation started")

	return r, nil
}

// End closes the scope. It records the outcome of err, sends the report
// to every sink once and returns err unchanged. Sink failures are logged
// and never change the outcome. Calling End again returns an
// ErrInvocationState error and reports nothing.
func (r *Reporter) End(err error) error {
	r.mu.Lock()
	if r.state != Running {
		state := r.state
		r.mu.Unlock()
		return errors.Newf(errors.ErrInvocationState, "invocation %s already ended as %s", r.ctx.ID, state).
			WithDetail("state", state.String())
	}

	end := r.now()
	r.outcome = OutcomeOf(err)
	r.state = r.outcome.State
	r.report = newReport(r.ctx, end, r.outcome, r.exitStatus(err))
	sinks := r.sinks
	r.sinks = nil
	r.mu.Unlock()

	defer active.Store(false)

	for _, s := range sinks {
		if serr := s.Send(r.report); serr != nil {
			r.logger.Warn().Err(serr).Str("id", r.ctx.ID).Msg("Failed to report invocation")
		}
	}
	for _, s := range sinks {
		if cerr := s.Close(); cerr != nil {
			r.logger.Warn().Err(cerr).Str("id", r.ctx.ID).Msg("Failed to close invocation sink")
		}
	}

	return err
}

// Context returns the captured invocation context
func (r *Reporter) Context() Context {
	return r.ctx
}

// State returns the current lifecycle state
func (r *Reporter) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Outcome returns the outcome; it is only meaningful once State is terminal
func (r *Reporter) Outcome() Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// Report returns the report sent by End
func (r *Reporter) Report() Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.report
}

// Run opens a scope for args, calls fn exactly once and closes the scope
// on every exit path. fn's error is returned unchanged. If fn panics the
// invocation is reported as Failed and the panic continues.
func Run(ctx context.Context, args []string, fn EntryFunc, opts ...Option) error {
	r, err := Begin(args, opts...)
	if err != nil {
		return err
	}

	returned := false
	defer func() {
		if returned {
			return
		}
		p := recover()
		if p == nil {
			// runtime.Goexit; let it continue unwinding.
			_ = r.End(errGoexit)
			return
		}
		_ = r.End(&PanicError{Value: p, Stack: debug.Stack()})
		panic(p)
	}()

	err = fn(ctx, args)
	returned = true
	return r.End(err)
}

func defaultExitStatus(err error) int {
	if err == nil {
		return 0
	}
	return 1
}
