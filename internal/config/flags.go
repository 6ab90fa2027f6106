package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/randomizedcoder/go-game-launcher/internal/process"
)

// Flag groups, used by the CLI to print categorised help.
var (
	GameFlags          = []string{"game-dir", "data-dir", "java-home", "settings"}
	JVMFlags           = []string{"heap-min", "heap-max", "game-log-level", "java-params", "game-params"}
	ReadinessFlags     = []string{"marker"}
	ObservabilityFlags = []string{"metrics", "verbose", "log-format", "log-file", "game-log"}
	RelaunchFlags      = []string{"relaunch", "backoff-initial", "backoff-max", "backoff-multiply"}
	DiagnosticFlags    = []string{"skip-preflight"}
)

// BindFlags registers every launcher flag on fs, writing into cfg. Values
// already in cfg become the flag defaults.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	// Game
	fs.StringVar(&cfg.GameDir, "game-dir", cfg.GameDir, "Game installation directory (contains libs/Terasology.jar)")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "Game data directory, passed as --homedir (path or file: URI)")
	fs.StringVar(&cfg.JavaHome, "java-home", cfg.JavaHome, "Java installation to use (default: JAVA_HOME, then java on PATH)")
	fs.StringVar(&cfg.SettingsPath, "settings", cfg.SettingsPath, "Launcher settings file (default: "+DefaultSettingsPath()+")")

	// JVM
	fs.StringVar(&cfg.HeapMin, "heap-min", cfg.HeapMin, "Initial heap size: "+heapSizeHelp())
	fs.StringVar(&cfg.HeapMax, "heap-max", cfg.HeapMax, "Maximum heap size: "+heapSizeHelp())
	fs.StringVar(&cfg.GameLogLevel, "game-log-level", cfg.GameLogLevel, `Game log level override: "DEFAULT", "TRACE", "DEBUG", "INFO", "WARN", "ERROR"`)
	fs.StringVar(&cfg.JavaParams, "java-params", cfg.JavaParams, "Extra JVM parameters (whitespace-separated)")
	fs.StringVar(&cfg.GameParams, "game-params", cfg.GameParams, "Extra game parameters (whitespace-separated)")

	// Readiness
	fs.StringVar(&cfg.MarkerPattern, "marker", cfg.MarkerPattern, "Regular expression of the output line that means the game is ready")

	// Observability
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics address (empty = disabled)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also write launcher logs to this rotating file")
	fs.StringVar(&cfg.GameLog, "game-log", cfg.GameLog, "Game output log file (default: <data-dir>/"+DefaultGameLogName+")")

	// Relaunch policy
	fs.IntVar(&cfg.Relaunch, "relaunch", cfg.Relaunch, "Relaunch the game up to N times after it exits with an error")
	fs.DurationVar(&cfg.BackoffInitial, "backoff-initial", cfg.BackoffInitial, "First relaunch delay")
	fs.DurationVar(&cfg.BackoffMax, "backoff-max", cfg.BackoffMax, "Maximum relaunch delay")
	fs.Float64Var(&cfg.BackoffMultiply, "backoff-multiply", cfg.BackoffMultiply, "Relaunch delay multiplier")

	// Diagnostics
	fs.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")
}

// FlagUsages returns the help text for the named flags, in order.
func FlagUsages(fs *pflag.FlagSet, names []string) string {
	sub := pflag.NewFlagSet("", pflag.ContinueOnError)
	for _, name := range names {
		if f := fs.Lookup(name); f != nil {
			sub.AddFlag(f)
		}
	}
	sub.SortFlags = false
	return sub.FlagUsages()
}

func heapSizeHelp() string {
	sizes := process.HeapSizes()
	names := make([]string, 0, len(sizes))
	for _, hs := range sizes {
		if hs.IsUsed() {
			names = append(names, hs.Param())
		}
	}
	return fmt.Sprintf("one of %s (or a setting name such as GB_2)", strings.Join(names, ", "))
}
