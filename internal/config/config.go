// Package config provides configuration management for go-game-launcher.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/randomizedcoder/go-game-launcher/internal/process"
)

// DefaultGameLogName is the game output log file, relative to the data
// directory (or the game directory when no data directory is set).
const DefaultGameLogName = "logs/game-output.log"

// Config holds all configuration options for the launcher.
type Config struct {
	// Game installation and runtime
	GameDir  string `json:"game_dir"`
	DataDir  string `json:"data_dir"` // empty = let the game pick
	JavaHome string `json:"java_home"`

	// JVM and game parameters
	HeapMin      string `json:"initial_heap_size"` // heap size name or JVM size
	HeapMax      string `json:"max_heap_size"`
	GameLogLevel string `json:"game_log_level"`
	JavaParams   string `json:"java_params"` // whitespace-separated
	GameParams   string `json:"game_params"` // whitespace-separated

	// Readiness detection
	MarkerPattern string `json:"marker_pattern"`

	// Settings file ("" = default location, missing file is fine)
	SettingsPath string `json:"settings_path"`

	// Observability
	MetricsAddr string `json:"metrics_addr"` // empty = disabled
	Verbose     bool   `json:"verbose"`
	LogFormat   string `json:"log_format"` // json, text
	LogFile     string `json:"log_file"`   // empty = stderr only
	GameLog     string `json:"game_log"`   // empty = DefaultGameLogName

	// Diagnostic modes
	SkipPreflight bool `json:"skip_preflight"`

	// Relaunch policy
	Relaunch        int           `json:"relaunch"` // 0 = launch once
	BackoffInitial  time.Duration `json:"backoff_initial"`
	BackoffMax      time.Duration `json:"backoff_max"`
	BackoffMultiply float64       `json:"backoff_multiply"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		// Game
		GameDir: ".",

		// JVM
		GameLogLevel: string(process.LogLevelDefault),

		// Readiness
		MarkerPattern: "Initialization completed",

		// Observability
		Verbose:   false,
		LogFormat: "json",

		// Relaunch policy
		Relaunch:        0,
		BackoffInitial:  2 * time.Second,
		BackoffMax:      30 * time.Second,
		BackoffMultiply: 2.0,
	}
}

// GameLogPath returns where game output is mirrored.
func (c *Config) GameLogPath() string {
	if c.GameLog != "" {
		return c.GameLog
	}
	base := c.DataDir
	if base == "" {
		base = c.GameDir
	}
	return filepath.Join(base, filepath.FromSlash(DefaultGameLogName))
}

// LaunchSpec resolves the configuration into a process.LaunchSpec with
// absolute paths.
func (c *Config) LaunchSpec() (process.LaunchSpec, error) {
	gameDir, err := filepath.Abs(c.GameDir)
	if err != nil {
		return process.LaunchSpec{}, fmt.Errorf("resolve game directory: %w", err)
	}

	var dataDir string
	if c.DataDir != "" {
		dataDir, err = filepath.Abs(c.DataDir)
		if err != nil {
			return process.LaunchSpec{}, fmt.Errorf("resolve game data directory: %w", err)
		}
	}

	heapMin, err := process.ParseHeapSize(c.HeapMin)
	if err != nil {
		return process.LaunchSpec{}, fmt.Errorf("initial heap size: %w", err)
	}
	heapMax, err := process.ParseHeapSize(c.HeapMax)
	if err != nil {
		return process.LaunchSpec{}, fmt.Errorf("max heap size: %w", err)
	}
	level, err := process.ParseLogLevel(c.GameLogLevel)
	if err != nil {
		return process.LaunchSpec{}, fmt.Errorf("game log level: %w", err)
	}

	return process.LaunchSpec{
		Runtime:  process.ResolveRuntime(c.JavaHome),
		Jar:      process.GameJar(gameDir),
		WorkDir:  gameDir,
		DataDir:  dataDir,
		JavaArgs: strings.Fields(c.JavaParams),
		GameArgs: strings.Fields(c.GameParams),
		HeapMin:  heapMin,
		HeapMax:  heapMax,
		LogLevel: level,
	}, nil
}
