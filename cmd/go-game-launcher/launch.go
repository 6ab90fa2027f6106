package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/randomizedcoder/go-game-launcher/internal/config"
	"github.com/randomizedcoder/go-game-launcher/internal/launcher"
	"github.com/randomizedcoder/go-game-launcher/internal/logging"
	"github.com/randomizedcoder/go-game-launcher/internal/supervisor"
)

// gameExitError carries the game's exit status to the process exit code.
type gameExitError struct {
	code int
}

func (e *gameExitError) Error() string {
	return fmt.Sprintf("game exited with code %d", e.code)
}

// status maps the game's code onto a valid process exit status.
func (e *gameExitError) status() int {
	if e.code <= 0 || e.code > 255 {
		return 1
	}
	return e.code
}

func newLaunchCommand() *cobra.Command {
	cfg := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Start the game and supervise it until it exits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, cfg)
		},
	}
	config.BindFlags(cmd.Flags(), cfg)
	cmd.SetHelpFunc(groupedHelp)
	return cmd
}

// loadConfig applies settings file and environment to cfg and validates it.
func loadConfig(cmd *cobra.Command, cfg *config.Config) error {
	if err := config.LoadSettings(cfg, cmd.Flags()); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	return nil
}

func runLaunch(cmd *cobra.Command, cfg *config.Config) error {
	if err := loadConfig(cmd, cfg); err != nil {
		return err
	}

	logger, closeLog := newLogger(cfg)
	defer closeLog()
	logging.SetDefault(logger)

	logger.Info("starting",
		"version", version,
		"game_dir", cfg.GameDir,
		"data_dir", cfg.DataDir,
		"relaunch", cfg.Relaunch,
		"metrics_addr", cfg.MetricsAddr,
	)

	l := launcher.New(cfg, logger, launcher.Options{
		Version: version,
		Out:     cmd.OutOrStdout(),
	})
	outcome, err := l.Run(cmd.Context())
	if err != nil {
		logger.Error("launcher_failed", "error", err)
		return err
	}

	switch outcome.State {
	case supervisor.StateFailed:
		if outcome.ExitCode > 0 {
			return &gameExitError{code: outcome.ExitCode}
		}
		return outcome.Err
	default:
		return nil
	}
}

// newLogger builds the launcher logger, teeing into --log-file when set.
func newLogger(cfg *config.Config) (*slog.Logger, func()) {
	file := logging.FileConfig{Path: cfg.LogFile}.Writer()
	if file == nil {
		return logging.NewLogger(cfg.LogFormat, "info", cfg.Verbose), func() {}
	}

	level := "info"
	if cfg.Verbose {
		level = "debug"
	}
	w := io.MultiWriter(os.Stderr, file)
	return logging.NewLoggerWithWriter(w, cfg.LogFormat, level), func() { _ = file.Close() }
}

// groupedHelp prints launch flags grouped by concern.
func groupedHelp(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s\n\nUsage:\n  %s\n", cmd.Short, cmd.UseLine())

	groups := []struct {
		title string
		names []string
	}{
		{"Game", config.GameFlags},
		{"JVM", config.JVMFlags},
		{"Readiness", config.ReadinessFlags},
		{"Observability", config.ObservabilityFlags},
		{"Relaunch", config.RelaunchFlags},
		{"Diagnostics", config.DiagnosticFlags},
	}
	for _, g := range groups {
		if usages := config.FlagUsages(cmd.Flags(), g.names); usages != "" {
			fmt.Fprintf(w, "\n%s:\n%s", g.title, usages)
		}
	}
	fmt.Fprintf(w, "\nSettings are read from %s; environment variables use the %s_ prefix.\n",
		config.DefaultSettingsPath(), config.EnvPrefix)
}
