// Package supervisor runs one game process from start to exit and
// classifies how it ended.
package supervisor

// State represents the current state of a supervised game.
type State int

const (
	// StateCreated is the initial state before Run is called.
	StateCreated State = iota

	// StateStarting indicates the process factory is being called.
	StateStarting

	// StateRunning indicates the game process is alive and its output is
	// being read.
	StateRunning

	// StateCompleted indicates the game exited with code 0.
	StateCompleted

	// StateFailed indicates the game could not be started or exited with
	// a non-zero code.
	StateFailed

	// StateCancelled indicates the run was cancelled and the game killed.
	StateCancelled
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// IsActive returns true while a game is being started or is running.
func (s State) IsActive() bool {
	return s == StateStarting || s == StateRunning
}

// IsTerminal returns true if the state is final.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}
