package invocation

import (
	"time"

	"github.com/arthur-debert/instl/pkg/errors"
)

// Report is what sinks receive when a Reporter's scope closes
type Report struct {
	ID        string        `json:"id" yaml:"id"`
	Args      []string      `json:"args" yaml:"args"`
	PID       int           `json:"pid" yaml:"pid"`
	Version   string        `json:"version,omitempty" yaml:"version,omitempty"`
	Dir       string        `json:"dir,omitempty" yaml:"dir,omitempty"`
	Start     time.Time     `json:"start" yaml:"start"`
	End       time.Time     `json:"end" yaml:"end"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration"`
	Outcome   string        `json:"outcome" yaml:"outcome"`
	Cause     string        `json:"cause,omitempty" yaml:"cause,omitempty"`
	ErrorCode string        `json:"error_code,omitempty" yaml:"error_code,omitempty"`
	ExitCode  int           `json:"exit_code" yaml:"exit_code"`
}

func newReport(c Context, end time.Time, outcome Outcome, exitCode int) Report {
	duration := end.Sub(c.Start)
	if duration < 0 {
		// A wall clock stepped backwards; the run did not take negative time.
		duration = 0
	}

	r := Report{
		ID:       c.ID,
		Args:     c.Args,
		PID:      c.PID,
		Version:  c.Version,
		Dir:      c.Dir,
		Start:    c.Start,
		End:      end,
		Duration: duration,
		Outcome:  outcome.State.String(),
		ExitCode: exitCode,
	}
	if outcome.Cause != nil {
		r.Cause = outcome.Cause.Error()
		if code := errors.GetErrorCode(outcome.Cause); code != errors.ErrUnknown {
			r.ErrorCode = string(code)
		}
	}
	return r
}

// Succeeded reports whether the recorded invocation succeeded
func (r Report) Succeeded() bool {
	return r.Outcome == Succeeded.String()
}
