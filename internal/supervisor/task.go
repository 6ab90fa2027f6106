package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randomizedcoder/go-game-launcher/internal/logging"
	"github.com/randomizedcoder/go-game-launcher/internal/parser"
	"github.com/randomizedcoder/go-game-launcher/internal/process"
)

// errNoProcess is wrapped in a StartError when a factory returns neither a
// handle nor an error.
var errNoProcess = errors.New("factory returned no process")

// Callbacks contains optional callback functions for task events.
// They run on the goroutine executing Run and should return quickly.
type Callbacks struct {
	// OnStateChange is called when the task state changes.
	OnStateChange func(oldState, newState State)

	// OnStart is called once the game process exists.
	OnStart func(pid int)

	// OnOutput is called for every output line, after it was logged.
	OnOutput func(line string)

	// OnMarker is called once, when the success marker is first seen.
	OnMarker func()

	// OnExit is called when the game process exits on its own.
	OnExit func(exitCode int, uptime time.Duration)
}

// Config holds configuration for creating a new Task.
type Config struct {
	// Factory starts the game. Required.
	Factory process.Factory

	// Spec is the launch description the factory was built from. The task
	// only reports from it.
	Spec process.LaunchSpec

	// Marker recognises the success line (default parser.DefaultMarker()).
	Marker *parser.Marker

	// Logger receives lifecycle records (default slog.Default()).
	Logger *slog.Logger

	// Output receives each game output line (default: an OutputHandler on Logger).
	Output *logging.OutputHandler

	Callbacks Callbacks
}

// Task supervises one game run: start, stream output, detect the success
// marker, wait for exit and classify the result. Run is called exactly once
// by the owner's executor; every other method is safe from any goroutine.
type Task struct {
	factory   process.Factory
	spec      process.LaunchSpec
	marker    *parser.Marker
	logger    *slog.Logger
	output    *logging.OutputHandler
	callbacks Callbacks

	ran atomic.Bool

	// State management
	state     State
	startTime time.Time
	stateMu   sync.RWMutex

	observed *Latch

	// Cancel() cancels cancelCtx; Run links it to its own context.
	cancelCtx context.Context
	cancel    context.CancelFunc

	// Settle-once terminal outcome
	done       chan struct{}
	outcome    Outcome
	settleOnce sync.Once
}

// New creates a new Task with the given configuration.
func New(cfg Config) *Task {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	marker := cfg.Marker
	if marker == nil {
		marker = parser.DefaultMarker()
	}
	output := cfg.Output
	if output == nil {
		output = logging.NewOutputHandler(logger, nil)
	}

	cancelCtx, cancel := context.WithCancel(context.Background())

	return &Task{
		factory:   cfg.Factory,
		spec:      cfg.Spec,
		marker:    marker,
		logger:    logger,
		output:    output,
		callbacks: cfg.Callbacks,
		state:     StateCreated,
		observed:  NewLatch(),
		cancelCtx: cancelCtx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Run starts the game and blocks until it exits or the run is cancelled
// through ctx or Cancel. It returns the terminal outcome, which is also
// published to Wait, Outcome and Done.
func (t *Task) Run(ctx context.Context) Outcome {
	if !t.ran.CompareAndSwap(false, true) {
		return Outcome{State: StateFailed, ExitCode: -1, Err: ErrAlreadyRun}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	unlink := context.AfterFunc(t.cancelCtx, cancel)
	defer unlink()

	if ctx.Err() != nil || t.cancelCtx.Err() != nil {
		t.logger.Info("game_launch_cancelled", "stage", "before_start")
		return t.finish(Outcome{State: StateCancelled, ExitCode: -1})
	}

	t.setState(StateStarting)

	h, err := t.factory()
	if err == nil && h == nil {
		err = errNoProcess
	}
	if err != nil {
		t.logger.Error("game_start_failed",
			"work_dir", t.spec.WorkDir,
			"error", err,
		)
		return t.finish(Outcome{State: StateFailed, ExitCode: -1, Err: &StartError{Err: err}})
	}

	var killOnce sync.Once
	kill := func() {
		killOnce.Do(func() {
			if err := h.Kill(); err != nil {
				t.logger.Warn("game_kill_failed", "pid", h.Pid(), "error", err)
			}
		})
	}
	// Killing the process also ends the blocking line read below.
	stopKill := context.AfterFunc(ctx, kill)
	defer stopKill()

	pid := h.Pid()
	t.stateMu.Lock()
	t.startTime = time.Now()
	t.stateMu.Unlock()
	t.setState(StateRunning)

	t.logger.Info("game_started",
		"pid", pid,
		"work_dir", t.spec.WorkDir,
	)
	if t.callbacks.OnStart != nil {
		t.callbacks.OnStart(pid)
	}

	readErr := parser.NewLineReader(h.Output()).Run(func(line string) bool {
		if ctx.Err() != nil {
			return false
		}
		t.handleLine(pid, line)
		return true
	})

	if ctx.Err() != nil {
		return t.abort(h, kill)
	}
	if readErr != nil {
		t.logger.Warn("game_output_read_failed", "pid", pid, "error", readErr)
	}

	waitErr := h.Wait()
	if !stopKill() {
		// Cancelled while waiting; kill has already run.
		return t.abort(h, kill)
	}

	exitCode := h.ExitCode()
	uptime := t.Uptime()

	t.logger.Debug("game_exited",
		"pid", pid,
		"exit_code", exitCode,
		"uptime", uptime.String(),
		"marker_observed", t.observed.IsSet(),
	)
	if t.callbacks.OnExit != nil {
		t.callbacks.OnExit(exitCode, uptime)
	}

	if waitErr != nil {
		t.logger.Warn("game_wait_failed", "pid", pid, "error", waitErr)
		return t.finish(Outcome{
			State:          StateFailed,
			MarkerObserved: t.observed.IsSet(),
			ExitCode:       exitCode,
			Err:            &ExitError{Code: exitCode, Err: waitErr},
		})
	}

	if exitCode != 0 {
		return t.finish(Outcome{
			State:          StateFailed,
			MarkerObserved: t.observed.IsSet(),
			ExitCode:       exitCode,
			Err:            &ExitError{Code: exitCode},
		})
	}

	return t.finish(Outcome{
		State:          StateCompleted,
		MarkerObserved: t.observed.IsSet(),
		ExitCode:       0,
	})
}

// handleLine logs one output line and checks it for the success marker.
func (t *Task) handleLine(pid int, line string) {
	t.output.HandleLine(line)
	if t.callbacks.OnOutput != nil {
		t.callbacks.OnOutput(line)
	}

	if !t.marker.Match(line) || !t.observed.Set() {
		return
	}

	t.logger.Info("game_ready",
		"pid", pid,
		"after", t.Uptime().String(),
	)
	if t.callbacks.OnMarker != nil {
		t.callbacks.OnMarker()
	}
}

// abort kills and reaps the process after cancellation.
func (t *Task) abort(h process.Handle, kill func()) Outcome {
	kill()
	// Reap the killed process; its status is irrelevant now.
	_ = h.Wait()

	t.logger.Info("game_cancelled",
		"pid", h.Pid(),
		"uptime", t.Uptime().String(),
	)
	return t.finish(Outcome{
		State:          StateCancelled,
		MarkerObserved: t.observed.IsSet(),
		ExitCode:       -1,
	})
}

// finish publishes the outcome exactly once.
func (t *Task) finish(o Outcome) Outcome {
	t.settleOnce.Do(func() {
		t.outcome = o
		t.setState(o.State)
		close(t.done)
	})
	return o
}

// Cancel requests cancellation. It is safe to call at any time, any number
// of times; after the outcome is settled it has no effect.
func (t *Task) Cancel() {
	t.cancel()
}

// Done returns a channel closed when the outcome is settled.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Outcome returns the terminal outcome without blocking. ok is false while
// the task is still running.
func (t *Task) Outcome() (o Outcome, ok bool) {
	select {
	case <-t.done:
		return t.outcome, true
	default:
		return Outcome{}, false
	}
}

// Wait blocks until the outcome is settled or ctx ends.
func (t *Task) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-t.done:
		return t.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// MarkerObserved reports whether the success marker has been seen.
func (t *Task) MarkerObserved() bool {
	return t.observed.IsSet()
}

// MarkerDone returns a channel closed when the success marker is first seen.
func (t *Task) MarkerDone() <-chan struct{} {
	return t.observed.Done()
}

// State returns the current state of the task.
func (t *Task) State() State {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	return t.state
}

// setState updates the state and calls the callback if registered.
func (t *Task) setState(newState State) {
	t.stateMu.Lock()
	oldState := t.state
	t.state = newState
	t.stateMu.Unlock()

	if t.callbacks.OnStateChange != nil && oldState != newState {
		t.callbacks.OnStateChange(oldState, newState)
	}
}

// Uptime returns how long the game process has been (or was) running.
func (t *Task) Uptime() time.Duration {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	if t.startTime.IsZero() {
		return 0
	}
	return time.Since(t.startTime)
}

// WorkDir returns the directory the game runs in.
func (t *Task) WorkDir() string {
	return t.spec.WorkDir
}

// Spec returns the launch description the task reports from.
func (t *Task) Spec() process.LaunchSpec {
	return t.spec
}
