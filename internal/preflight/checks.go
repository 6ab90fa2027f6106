// Package preflight provides startup validation checks.
package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/randomizedcoder/go-game-launcher/internal/process"
)

// MinJavaMajor is the oldest Java release the game supports.
const MinJavaMajor = 11

// RecommendedFileDescriptors is the open-file limit below which a warning is
// shown. The engine keeps many module jars and asset files open at once.
const RecommendedFileDescriptors = 4096

// probeTimeout bounds "java -version".
const probeTimeout = 10 * time.Second

// Check represents the result of a single preflight check.
type Check struct {
	Name     string // Name of the check
	Required int    // Required value (if applicable)
	Actual   int    // Actual value found
	Passed   bool   // Whether the check passed
	Warning  bool   // True if it's a warning (non-fatal)
	Message  string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// Options selects what RunAll inspects.
type Options struct {
	Spec         process.LaunchSpec
	GameLogPath  string // "" skips the log directory check
	MinJavaMajor int    // 0 = MinJavaMajor
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}

	if c.Required > 0 {
		return fmt.Sprintf("  %s %s: %d available (need %d)", status, c.Name, c.Actual, c.Required)
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// RunAll executes all preflight checks.
func RunAll(ctx context.Context, opts Options) *Result {
	result := &Result{
		Checks: make([]Check, 0, 6),
		Passed: true,
	}
	add := func(c Check) {
		result.Checks = append(result.Checks, c)
		if !c.Passed {
			result.Passed = false
		}
	}

	minMajor := opts.MinJavaMajor
	if minMajor <= 0 {
		minMajor = MinJavaMajor
	}

	add(checkRuntime(ctx, opts.Spec.Runtime, minMajor))
	add(checkGameDirectory(opts.Spec.WorkDir))
	add(checkGameJar(opts.Spec.Jar))
	add(checkDataDirectory(opts.Spec.DataDir))
	if opts.GameLogPath != "" {
		add(checkWritableDir("log_directory", filepath.Dir(opts.GameLogPath)))
	}
	// Warning only
	add(checkFileDescriptors(RecommendedFileDescriptors))

	return result
}

// checkRuntime verifies java is available and recent enough.
func checkRuntime(ctx context.Context, path string, minMajor int) Check {
	if path == "" {
		return Check{
			Name:    "java",
			Passed:  false,
			Message: "no runtime configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	info, err := process.ProbeRuntime(ctx, path)
	if err != nil {
		return Check{
			Name:    "java",
			Passed:  false,
			Message: fmt.Sprintf("not usable at %s: %v", path, err),
		}
	}

	if info.Major < minMajor {
		return Check{
			Name:    "java",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("found at %s (version %s, recommend %d or newer)", path, info.Version, minMajor),
		}
	}

	return Check{
		Name:    "java",
		Passed:  true,
		Message: fmt.Sprintf("found at %s (version %s)", path, info.Version),
	}
}

// checkGameDirectory verifies the installation directory exists.
func checkGameDirectory(dir string) Check {
	fi, err := os.Stat(dir)
	switch {
	case err != nil:
		return Check{Name: "game_directory", Passed: false, Message: err.Error()}
	case !fi.IsDir():
		return Check{Name: "game_directory", Passed: false, Message: dir + " is not a directory"}
	}
	return Check{Name: "game_directory", Passed: true, Message: dir}
}

// checkGameJar verifies the game jar is a regular file.
func checkGameJar(jar string) Check {
	fi, err := os.Stat(jar)
	switch {
	case err != nil:
		return Check{Name: "game_jar", Passed: false, Message: fmt.Sprintf("missing: %v", err)}
	case !fi.Mode().IsRegular():
		return Check{Name: "game_jar", Passed: false, Message: jar + " is not a regular file"}
	}
	return Check{Name: "game_jar", Passed: true, Message: fmt.Sprintf("%s (%d bytes)", jar, fi.Size())}
}

// checkDataDirectory verifies the data directory can be written, creating it
// if needed. An empty directory leaves the choice to the game.
func checkDataDirectory(dir string) Check {
	if dir == "" {
		return Check{Name: "data_directory", Passed: true, Message: "game default"}
	}
	return checkWritableDir("data_directory", dir)
}

func checkWritableDir(name, dir string) Check {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Check{Name: name, Passed: false, Message: fmt.Sprintf("cannot create %s: %v", dir, err)}
	}

	f, err := os.CreateTemp(dir, ".preflight-*")
	if err != nil {
		return Check{Name: name, Passed: false, Message: fmt.Sprintf("%s not writable: %v", dir, err)}
	}
	f.Close()
	os.Remove(f.Name())

	return Check{Name: name, Passed: true, Message: dir + " (writable)"}
}

// checkFileDescriptors warns when the open-file limit is low.
func checkFileDescriptors(recommended int) Check {
	actual, ok := fileDescriptorLimit()
	if !ok {
		return Check{
			Name:    "file_descriptors",
			Passed:  true,
			Warning: true,
			Message: "unable to check on this platform",
		}
	}

	return Check{
		Name:     "file_descriptors",
		Required: recommended,
		Actual:   actual,
		Passed:   true, // Don't fail on this
		Warning:  actual < recommended,
		Message:  fmt.Sprintf("ulimit -n %d (recommend %d)", actual, recommended),
	}
}

// PrintResults writes the preflight check results to w.
func PrintResults(w io.Writer, result *Result) {
	fmt.Fprintln(w, "Preflight checks:")
	for _, check := range result.Checks {
		fmt.Fprintln(w, check.String())
		if !check.Passed || check.Warning {
			fmt.Fprintf(w, "    Fix: %s\n", suggestFix(check.Name))
		}
	}
	fmt.Fprintln(w)
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "java":
		return fmt.Sprintf("install Java %d+ or point --java-home / JAVA_HOME at it", MinJavaMajor)
	case "game_directory", "game_jar":
		return "set --game-dir to a Terasology installation (it contains libs/Terasology.jar)"
	case "data_directory":
		return "set --data-dir to a writable directory"
	case "log_directory":
		return "set --game-log to a writable location"
	case "file_descriptors":
		return fmt.Sprintf("ulimit -n %d (or edit /etc/security/limits.conf)", RecommendedFileDescriptors)
	default:
		return "see documentation"
	}
}
