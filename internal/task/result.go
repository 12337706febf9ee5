// Package task runs the runtime helper for a single show and types its outcome.
package task

import (
	"fmt"
	"strings"
	"time"
)

// Reason classifies why a task produced no runtime.
type Reason int

const (
	// ReasonNone marks a valid result.
	ReasonNone Reason = iota

	// ReasonLaunchFailed means the helper could not be started.
	ReasonLaunchFailed

	// ReasonHelperFailed means the helper exited with a non-zero status.
	ReasonHelperFailed

	// ReasonMalformedOutput means the helper exited 0 but stdout was not a
	// non-negative integer.
	ReasonMalformedOutput

	// ReasonTimeout means the per-task timeout expired and the helper was killed.
	ReasonTimeout

	// ReasonCanceled means the batch was interrupted before the task finished.
	ReasonCanceled
)

// Reasons lists every failure reason, in declaration order.
var Reasons = []Reason{
	ReasonLaunchFailed,
	ReasonHelperFailed,
	ReasonMalformedOutput,
	ReasonTimeout,
	ReasonCanceled,
}

// String returns the snake_case name used in logs and metric labels.
func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "ok"
	case ReasonLaunchFailed:
		return "launch_failed"
	case ReasonHelperFailed:
		return "helper_failed"
	case ReasonMalformedOutput:
		return "malformed_output"
	case ReasonTimeout:
		return "timeout"
	case ReasonCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Result is the outcome of one helper invocation.
//
// A valid result carries Minutes; an invalid one carries Reason and Err.
// Results are never modified after the runner returns them.
type Result struct {
	// Index is the item's position in the input list.
	Index int
	Item  string

	Minutes int
	Reason  Reason
	Err     error

	// Observability
	ExitCode int
	Stderr   string
	Duration time.Duration
}

// Valid reports whether the helper produced a usable runtime.
func (r Result) Valid() bool {
	return r.Reason == ReasonNone && r.Err == nil
}

// Error is the per-item failure carried by an invalid Result.
// Its message is the diagnostic line printed for the item.
type Error struct {
	Item   string
	Reason Reason
	Detail string
	Err    error
}

// lineBreaks flattens diagnostics to a single line.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func (e *Error) Error() string {
	var msg string
	if e.Reason == ReasonMalformedOutput {
		msg = fmt.Sprintf("Invalid runtime value for %s. Expected integer but got: %s", e.Item, e.Detail)
	} else {
		msg = fmt.Sprintf("Error for %s: %s", e.Item, e.Detail)
	}
	return lineBreaks.Replace(msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}
