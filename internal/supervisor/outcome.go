package supervisor

import (
	"errors"
	"fmt"

	"github.com/randomizedcoder/go-game-launcher/internal/process"
)

// ErrAlreadyRun is reported when Run is called more than once on a Task.
var ErrAlreadyRun = errors.New("task already run")

// StartError reports that the game process could not be created.
type StartError struct {
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("start game process: %v", e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// ExitError reports that the game ran and exited with a non-zero code.
// Code is the raw exit status; signal terminations appear as 128+signal.
// Err is set when waiting on the process itself failed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("game process exited with code %d: %v", e.Code, e.Err)
	}
	if sig, ok := e.Signal(); ok {
		return fmt.Sprintf("game process exited with code %d (%s)", e.Code, process.SignalName(sig))
	}
	return fmt.Sprintf("game process exited with code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Signal reports the signal encoded in Code, if any.
func (e *ExitError) Signal() (int, bool) {
	return process.SignalFromExitCode(e.Code)
}

// Outcome is the terminal classification of a Task.
type Outcome struct {
	// State is StateCompleted, StateFailed or StateCancelled.
	State State

	// MarkerObserved is the success-marker flag at the time the task ended.
	MarkerObserved bool

	// ExitCode is the process exit status, or -1 when no exit was observed
	// (start failures and cancellation).
	ExitCode int

	// Err is a *StartError or *ExitError when State is StateFailed.
	Err error
}

// Success reports whether the game exited cleanly.
func (o Outcome) Success() bool {
	return o.State == StateCompleted
}

// Cancelled reports whether the run was cancelled.
func (o Outcome) Cancelled() bool {
	return o.State == StateCancelled
}

// Kind returns a short label for metrics and logs:
// "completed", "start_error", "exit_error", "cancelled" or "unknown".
func (o Outcome) Kind() string {
	switch o.State {
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		var startErr *StartError
		if errors.As(o.Err, &startErr) {
			return "start_error"
		}
		var exitErr *ExitError
		if errors.As(o.Err, &exitErr) {
			return "exit_error"
		}
	}
	return "unknown"
}
