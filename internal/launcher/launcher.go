// Package launcher is the caller side of a game session: it prepares the
// launch, hands the supervised task to its own goroutine, reacts to the
// early readiness signal, and decides whether a failed game is relaunched.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/randomizedcoder/go-game-launcher/internal/config"
	"github.com/randomizedcoder/go-game-launcher/internal/logging"
	"github.com/randomizedcoder/go-game-launcher/internal/metrics"
	"github.com/randomizedcoder/go-game-launcher/internal/parser"
	"github.com/randomizedcoder/go-game-launcher/internal/preflight"
	"github.com/randomizedcoder/go-game-launcher/internal/process"
	"github.com/randomizedcoder/go-game-launcher/internal/supervisor"
)

// ErrPreflightFailed is returned when a required preflight check fails.
var ErrPreflightFailed = errors.New("preflight checks failed (use --skip-preflight to override)")

// shutdownTimeout bounds the metrics server shutdown.
const shutdownTimeout = 10 * time.Second

// Options holds the launcher's injectable dependencies. Zero values select
// the production behaviour.
type Options struct {
	// Version is shown in the banner and the info metric.
	Version string

	// Out receives the banner, preflight results and exit summary
	// (default os.Stdout).
	Out io.Writer

	// NewFactory builds the process factory for a spec
	// (default process.NewFactory).
	NewFactory func(process.LaunchSpec) process.Factory

	// Registry holds the launcher's metrics (default: a new registry with
	// Go runtime and process collectors).
	Registry *prometheus.Registry

	// BackoffSeed seeds relaunch jitter (default: current time).
	BackoffSeed int64
}

// Launcher coordinates one game session.
type Launcher struct {
	config *config.Config
	logger *slog.Logger
	out    io.Writer

	newFactory func(process.LaunchSpec) process.Factory
	registry   *prometheus.Registry
	metrics    *metrics.Collector
	seed       int64
	version    string
}

// New creates a Launcher for cfg. cfg is expected to have passed
// config.Validate.
func New(cfg *config.Config, logger *slog.Logger, opts Options) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	newFactory := opts.NewFactory
	if newFactory == nil {
		newFactory = process.NewFactory
	}
	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	seed := opts.BackoffSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	return &Launcher{
		config:     cfg,
		logger:     logger,
		out:        out,
		newFactory: newFactory,
		registry:   registry,
		metrics: metrics.NewCollectorWithRegistry(metrics.CollectorConfig{
			Version: version,
			GameDir: cfg.GameDir,
			Marker:  cfg.MarkerPattern,
		}, registry),
		seed:    seed,
		version: version,
	}
}

// Metrics returns the metrics collector for external access.
func (l *Launcher) Metrics() *metrics.Collector {
	return l.metrics
}

// Run launches the game and blocks until the session ends: the game exits
// for good, ctx is cancelled, or SIGINT/SIGTERM arrives. It returns the
// outcome of the last run. The error is non-nil only when the session
// could not be set up.
func (l *Launcher) Run(ctx context.Context) (supervisor.Outcome, error) {
	spec, err := l.config.LaunchSpec()
	if err != nil {
		return supervisor.Outcome{}, err
	}
	marker, err := parser.NewMarker(l.config.MarkerPattern)
	if err != nil {
		return supervisor.Outcome{}, fmt.Errorf("ready marker: %w", err)
	}
	gameLogPath := l.config.GameLogPath()

	if !l.config.SkipPreflight {
		result := preflight.RunAll(ctx, preflight.Options{
			Spec:        spec,
			GameLogPath: gameLogPath,
		})
		preflight.PrintResults(l.out, result)
		if !result.Passed {
			return supervisor.Outcome{}, ErrPreflightFailed
		}
	}

	var server *metrics.Server
	if l.config.MetricsAddr != "" {
		server = metrics.NewServer(metrics.ServerConfig{
			Addr:     l.config.MetricsAddr,
			Gatherer: l.registry,
			Ready:    l.metrics.Ready,
		}, l.logger)
		if err := server.Start(); err != nil {
			return supervisor.Outcome{}, fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				l.logger.Warn("metrics_server_shutdown_error", "error", err)
			}
		}()
	}

	gameLog := logging.FileConfig{Path: gameLogPath}.Writer()
	defer gameLog.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			l.logger.Info("received_signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	l.logger.Info("launching",
		"command", spec.CommandString(),
		"work_dir", spec.WorkDir,
		"marker", marker.String(),
		"relaunch", l.config.Relaunch,
	)
	printBanner(l.out, bannerInfo{
		Version:     l.version,
		Spec:        spec,
		Marker:      marker.String(),
		MetricsAddr: l.config.MetricsAddr,
		Relaunch:    l.config.Relaunch,
		GameLog:     gameLogPath,
	})

	outcome, output := l.session(ctx, spec, marker, gameLog)

	printSummary(l.out, summaryInfo{
		Outcome:     outcome,
		Metrics:     l.metrics.GenerateSummary(),
		RecentLines: output.RecentLines(crashTailLines),
		ErrorCounts: output.CountErrors(),
		MetricsAddr: l.config.MetricsAddr,
	})

	return outcome, nil
}

// session runs the game, relaunching after failed exits while the policy
// allows. It returns the last outcome and that run's output handler.
func (l *Launcher) session(ctx context.Context, spec process.LaunchSpec, marker *parser.Marker, gameLog io.Writer) (supervisor.Outcome, *logging.OutputHandler) {
	backoff := supervisor.NewBackoff(l.seed, supervisor.BackoffConfig{
		Initial:    l.config.BackoffInitial,
		Max:        l.config.BackoffMax,
		Multiplier: l.config.BackoffMultiply,
		JitterPct:  supervisor.DefaultBackoffConfig().JitterPct,
	})

	for attempt := 0; ; attempt++ {
		output := logging.NewOutputHandler(l.logger, gameLog)
		outcome, uptime := l.runOnce(ctx, spec, marker, output, attempt)

		if !l.shouldRelaunch(ctx, outcome, attempt) {
			return outcome, output
		}

		if supervisor.ShouldReset(uptime, outcome.MarkerObserved) {
			backoff.Reset()
		}
		delay := backoff.Next()
		l.logger.Info("game_relaunch_scheduled",
			"attempt", attempt+1,
			"max", l.config.Relaunch,
			"delay", delay.String(),
			"exit_code", outcome.ExitCode,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			l.logger.Info("game_relaunch_cancelled", "attempt", attempt+1)
			return outcome, output
		case <-timer.C:
		}
		l.metrics.GameRelaunched()
	}
}

// shouldRelaunch applies the relaunch policy: only runs that started and
// then exited non-zero are retried, and only while attempts remain.
func (l *Launcher) shouldRelaunch(ctx context.Context, outcome supervisor.Outcome, attempt int) bool {
	if ctx.Err() != nil || attempt >= l.config.Relaunch {
		return false
	}
	var exitErr *supervisor.ExitError
	return errors.As(outcome.Err, &exitErr)
}

// runOnce submits one Task to its executor goroutine and waits for it,
// reporting the marker as soon as it is seen. It returns the outcome and
// the game's uptime at exit.
func (l *Launcher) runOnce(ctx context.Context, spec process.LaunchSpec, marker *parser.Marker, output *logging.OutputHandler, attempt int) (supervisor.Outcome, time.Duration) {
	var (
		uptime time.Duration
		task   *supervisor.Task
	)

	task = supervisor.New(supervisor.Config{
		Factory: l.newFactory(spec),
		Spec:    spec,
		Marker:  marker,
		Logger:  l.logger.With("attempt", attempt),
		Output:  output,
		Callbacks: supervisor.Callbacks{
			OnStart: func(pid int) {
				l.metrics.GameStarted()
			},
			OnOutput: func(string) {
				l.metrics.OutputLine()
			},
			OnMarker: func() {
				l.metrics.GameReady(task.Uptime())
			},
			OnExit: func(exitCode int, up time.Duration) {
				uptime = up
				l.metrics.RecordExit(exitCode, up)
			},
		},
	})

	go task.Run(ctx)

	select {
	case <-task.MarkerDone():
		l.logger.Info("game_initialized",
			"work_dir", task.WorkDir(),
			"after", task.Uptime().String(),
		)
	case <-task.Done():
	}

	// Run always settles; cancellation of ctx reaches it as well.
	outcome, _ := task.Wait(context.Background())
	l.metrics.RecordOutcome(outcome.Kind())

	attrs := []any{
		"outcome", outcome.Kind(),
		"exit_code", outcome.ExitCode,
		"marker_observed", outcome.MarkerObserved,
	}
	if outcome.Err != nil {
		attrs = append(attrs, "error", outcome.Err)
	}
	if outcome.State == supervisor.StateFailed {
		l.logger.Warn("game_finished", attrs...)
	} else {
		l.logger.Info("game_finished", attrs...)
	}

	return outcome, uptime
}
