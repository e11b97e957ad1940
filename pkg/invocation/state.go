package invocation

import (
	"fmt"
)

// State is the lifecycle state of a Reporter
type State int

const (
	NotStarted State = iota
	Running
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no further transition is possible
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}

// Outcome is the classified result of one invocation
type Outcome struct {
	State State
	Cause error
}

// OutcomeOf classifies the error returned by the entry function
func OutcomeOf(err error) Outcome {
	if err != nil {
		return Outcome{State: Failed, Cause: err}
	}
	return Outcome{State: Succeeded}
}

// Succeeded reports whether the invocation returned normally
func (o Outcome) Succeeded() bool {
	return o.State == Succeeded
}

func (o Outcome) String() string {
	if o.Cause != nil {
		return fmt.Sprintf("%s: %v", o.State, o.Cause)
	}
	return o.State.String()
}
