package config

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/randomizedcoder/go-game-launcher/internal/process"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Verify critical defaults
	if cfg.GameDir != "." {
		t.Errorf("GameDir = %q, want %q", cfg.GameDir, ".")
	}
	if cfg.MarkerPattern != "Initialization completed" {
		t.Errorf("MarkerPattern = %q", cfg.MarkerPattern)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, want metrics disabled by default", cfg.MetricsAddr)
	}
	if cfg.Relaunch != 0 {
		t.Errorf("Relaunch = %d, want 0", cfg.Relaunch)
	}
	if cfg.BackoffMultiply < 1.0 {
		t.Errorf("BackoffMultiply = %f, should be >= 1.0", cfg.BackoffMultiply)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfig_GameLogPath(t *testing.T) {
	tests := []struct {
		name    string
		gameDir string
		dataDir string
		gameLog string
		want    string
	}{
		{"explicit", "/games/t", "/data", "/tmp/out.log", "/tmp/out.log"},
		{"data dir", "/games/t", "/data", "", filepath.Join("/data", "logs", "game-output.log")},
		{"game dir fallback", "/games/t", "", "", filepath.Join("/games/t", "logs", "game-output.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.GameDir, cfg.DataDir, cfg.GameLog = tt.gameDir, tt.dataDir, tt.gameLog
			if got := cfg.GameLogPath(); got != tt.want {
				t.Errorf("GameLogPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_LaunchSpec(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")

	cfg := DefaultConfig()
	cfg.GameDir = dir
	cfg.DataDir = data
	cfg.JavaHome = "/opt/jdk"
	cfg.HeapMin = "GB_1"
	cfg.HeapMax = "4g"
	cfg.GameLogLevel = "debug"
	cfg.JavaParams = "  -XX:+UseG1GC   -Dfoo=bar "
	cfg.GameParams = "--headless"

	spec, err := cfg.LaunchSpec()
	if err != nil {
		t.Fatalf("LaunchSpec() error = %v", err)
	}

	if spec.WorkDir != dir {
		t.Errorf("WorkDir = %q, want %q", spec.WorkDir, dir)
	}
	if spec.Jar != filepath.Join(dir, "libs", "Terasology.jar") {
		t.Errorf("Jar = %q", spec.Jar)
	}
	if spec.DataDir != data {
		t.Errorf("DataDir = %q, want %q", spec.DataDir, data)
	}
	if spec.Runtime != process.ResolveRuntime("/opt/jdk") {
		t.Errorf("Runtime = %q", spec.Runtime)
	}
	if spec.HeapMin != process.Heap1G || spec.HeapMax != process.Heap4G {
		t.Errorf("heap = %v..%v, want GB_1..GB_4", spec.HeapMin, spec.HeapMax)
	}
	if spec.LogLevel != process.LogLevelDebug {
		t.Errorf("LogLevel = %q, want DEBUG", spec.LogLevel)
	}
	if !reflect.DeepEqual(spec.JavaArgs, []string{"-XX:+UseG1GC", "-Dfoo=bar"}) {
		t.Errorf("JavaArgs = %q", spec.JavaArgs)
	}
	if !reflect.DeepEqual(spec.GameArgs, []string{"--headless"}) {
		t.Errorf("GameArgs = %q", spec.GameArgs)
	}
}

func TestConfig_LaunchSpec_RelativeAndEmpty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GameDir = "game"

	spec, err := cfg.LaunchSpec()
	if err != nil {
		t.Fatalf("LaunchSpec() error = %v", err)
	}
	if !filepath.IsAbs(spec.WorkDir) {
		t.Errorf("WorkDir = %q, want absolute", spec.WorkDir)
	}
	if spec.DataDir != "" {
		t.Errorf("DataDir = %q, want empty", spec.DataDir)
	}
	if spec.JavaArgs != nil || spec.GameArgs != nil {
		t.Errorf("args = %q / %q, want none", spec.JavaArgs, spec.GameArgs)
	}
	if spec.HeapMin.IsUsed() || spec.HeapMax.IsUsed() {
		t.Error("heap sizes set without configuration")
	}
}

func TestConfig_LaunchSpec_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"bad heap min", func(c *Config) { c.HeapMin = "lots" }, "initial heap size"},
		{"bad heap max", func(c *Config) { c.HeapMax = "GB_99" }, "max heap size"},
		{"bad log level", func(c *Config) { c.GameLogLevel = "LOUD" }, "game log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			_, err := cfg.LaunchSpec()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LaunchSpec() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

// =============================================================================
// Validate
// =============================================================================

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"empty game dir", func(c *Config) { c.GameDir = "" }, "game_dir"},
		{"unknown heap min", func(c *Config) { c.HeapMin = "huge" }, "initial_heap_size"},
		{"unknown heap max", func(c *Config) { c.HeapMax = "huge" }, "max_heap_size"},
		{"min above max", func(c *Config) { c.HeapMin = "GB_4"; c.HeapMax = "GB_2" }, "initial_heap_size"},
		{"bad log level", func(c *Config) { c.GameLogLevel = "chatty" }, "game_log_level"},
		{"empty marker", func(c *Config) { c.MarkerPattern = "" }, "marker_pattern"},
		{"bad marker", func(c *Config) { c.MarkerPattern = "(" }, "marker_pattern"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"negative relaunch", func(c *Config) { c.Relaunch = -1 }, "relaunch"},
		{"zero backoff", func(c *Config) { c.BackoffInitial = 0 }, "backoff_initial"},
		{"max below initial", func(c *Config) { c.BackoffMax = time.Second; c.BackoffInitial = 2 * time.Second }, "backoff_max"},
		{"multiplier below one", func(c *Config) { c.BackoffMultiply = 0.5 }, "backoff_multiply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error should mention %s: %v", tt.field, err)
			}
			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Errorf("error %v is not a ValidationError", err)
			}
		})
	}
}

func TestValidate_HeapOrdering(t *testing.T) {
	tests := []struct {
		min, max string
		valid    bool
	}{
		{"", "", true},
		{"GB_1", "", true},
		{"", "512m", true},
		{"GB_2", "GB_2", true},
		{"1g", "GB_16", true},
		{"GB_8", "1g", false},
	}

	for _, tt := range tests {
		t.Run(tt.min+"_"+tt.max, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.HeapMin, cfg.HeapMax = tt.min, tt.max
			if err := Validate(cfg); (err == nil) != tt.valid {
				t.Errorf("Validate(min=%q, max=%q) = %v, want valid=%v", tt.min, tt.max, err, tt.valid)
			}
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GameDir = ""
	cfg.LogFormat = "xml"
	cfg.Relaunch = -3

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected multiple errors")
	}

	errStr := err.Error()
	for _, field := range []string{"game_dir", "log_format", "relaunch"} {
		if !strings.Contains(errStr, field) {
			t.Errorf("Error should mention %s", field)
		}
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidationError{
		Field:   "test_field",
		Message: "test message",
	}

	errStr := err.Error()
	if errStr != "test_field: test message" {
		t.Errorf("Error string = %q, want %q", errStr, "test_field: test message")
	}
}

// =============================================================================
// Flags
// =============================================================================

func TestBindFlags(t *testing.T) {
	cfg := DefaultConfig()
	fs := pflag.NewFlagSet("launch", pflag.ContinueOnError)
	BindFlags(fs, cfg)

	err := fs.Parse([]string{
		"--game-dir", "/games/terasology",
		"--heap-max", "GB_4",
		"--java-params", "-XX:+UseG1GC -Dx=y",
		"-v",
		"--relaunch", "3",
		"--backoff-initial", "500ms",
		"--metrics", "127.0.0.1:9090",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.GameDir != "/games/terasology" {
		t.Errorf("GameDir = %q", cfg.GameDir)
	}
	if cfg.HeapMax != "GB_4" {
		t.Errorf("HeapMax = %q", cfg.HeapMax)
	}
	if cfg.JavaParams != "-XX:+UseG1GC -Dx=y" {
		t.Errorf("JavaParams = %q", cfg.JavaParams)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false after -v")
	}
	if cfg.Relaunch != 3 {
		t.Errorf("Relaunch = %d, want 3", cfg.Relaunch)
	}
	if cfg.BackoffInitial != 500*time.Millisecond {
		t.Errorf("BackoffInitial = %v", cfg.BackoffInitial)
	}
	if cfg.MetricsAddr != "127.0.0.1:9090" {
		t.Errorf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	// Untouched flags keep defaults
	if cfg.MarkerPattern != "Initialization completed" {
		t.Errorf("MarkerPattern = %q, want default", cfg.MarkerPattern)
	}
}

func TestFlagGroups_AllRegistered(t *testing.T) {
	fs := pflag.NewFlagSet("launch", pflag.ContinueOnError)
	BindFlags(fs, DefaultConfig())

	groups := [][]string{GameFlags, JVMFlags, ReadinessFlags, ObservabilityFlags, RelaunchFlags, DiagnosticFlags}
	seen := make(map[string]bool)
	for _, group := range groups {
		for _, name := range group {
			if fs.Lookup(name) == nil {
				t.Errorf("flag group names unknown flag %q", name)
			}
			seen[name] = true
		}
	}
	fs.VisitAll(func(f *pflag.Flag) {
		if !seen[f.Name] {
			t.Errorf("flag %q is not in any help group", f.Name)
		}
	})
}

func TestFlagUsages(t *testing.T) {
	fs := pflag.NewFlagSet("launch", pflag.ContinueOnError)
	BindFlags(fs, DefaultConfig())

	usage := FlagUsages(fs, RelaunchFlags)
	for _, name := range RelaunchFlags {
		if !strings.Contains(usage, "--"+name) {
			t.Errorf("usage missing --%s:\n%s", name, usage)
		}
	}
	if strings.Contains(usage, "--game-dir") {
		t.Error("usage contains flags outside the group")
	}
	if strings.Index(usage, "--relaunch") > strings.Index(usage, "--backoff-initial") {
		t.Error("usage not in group order")
	}
}
