// Package invocation wraps the single run of instl's entry function in a
// reporting scope.
//
// A Reporter is opened with Begin, which captures the invocation Context
// (argv, start time, a random invocation id, pid, version). End closes it:
// it classifies the Outcome, measures the duration and sends exactly one
// Report to every configured Sink. End hands the run's error back
// unchanged; the reporter observes failures, it never absorbs them.
//
// Run is the scoped form used by the entry point: it calls the entry
// function once between Begin and a deferred End, so the report is sent on
// normal return, on error and on panic. A panic is reported as Failed and
// then re-raised.
//
// Lifecycle per process:
//
//	NotStarted -> Running -> Succeeded
//	                      -> Failed
//
// Only one Reporter may be Running at a time.
package invocation
