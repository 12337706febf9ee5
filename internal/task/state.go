package task

// State represents where a task is in its single run.
type State int

const (
	// StateQueued is the initial state before the helper has started.
	StateQueued State = iota

	// StateRunning indicates the helper process is running.
	StateRunning

	// StateSucceeded indicates the helper returned a valid runtime.
	StateSucceeded

	// StateFailed indicates the task ended with an invalid result.
	StateFailed
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true once the task has produced its result.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// StateOf returns the terminal state matching a result.
func StateOf(r Result) State {
	if r.Valid() {
		return StateSucceeded
	}
	return StateFailed
}
