package process

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
)

// RuntimeInfo describes a probed Java runtime.
type RuntimeInfo struct {
	Path    string
	Version string // e.g. "17.0.2" or "1.8.0_292"
	Major   int    // e.g. 17 or 8
}

var runtimeVersionRe = regexp.MustCompile(`version "([^"]+)"`)

// ResolveRuntime returns the java binary inside javaHome, or "java" (looked
// up on PATH at start time) when javaHome is empty.
func ResolveRuntime(javaHome string) string {
	name := "java"
	if runtime.GOOS == "windows" {
		name = "java.exe"
	}
	if javaHome == "" {
		return name
	}
	return filepath.Join(javaHome, "bin", name)
}

// RuntimeAvailable checks if the runtime can be found.
func RuntimeAvailable(path string) bool {
	_, err := exec.LookPath(path)
	return err == nil
}

// ProbeRuntime runs "<path> -version" and parses the reported version.
func ProbeRuntime(ctx context.Context, path string) (RuntimeInfo, error) {
	cmd := exec.CommandContext(ctx, path, "-version")

	// java prints its version banner on stderr
	output, err := cmd.CombinedOutput()
	if err != nil {
		return RuntimeInfo{}, fmt.Errorf("runtime probe failed: %w", err)
	}

	info, err := parseRuntimeVersion(string(output))
	if err != nil {
		return RuntimeInfo{}, err
	}
	info.Path = path
	return info, nil
}

// parseRuntimeVersion extracts the version from "java -version" output.
func parseRuntimeVersion(output string) (RuntimeInfo, error) {
	m := runtimeVersionRe.FindStringSubmatch(output)
	if m == nil {
		return RuntimeInfo{}, fmt.Errorf("no version in runtime output %q", strings.TrimSpace(output))
	}

	version := m[1]
	parts := strings.FieldsFunc(version, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return RuntimeInfo{}, fmt.Errorf("malformed runtime version %q", version)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return RuntimeInfo{}, fmt.Errorf("malformed runtime version %q: %w", version, err)
	}
	// Pre-9 runtimes report 1.x
	if major == 1 && len(parts) > 1 {
		if minor, err := strconv.Atoi(parts[1]); err == nil {
			major = minor
		}
	}

	return RuntimeInfo{Version: version, Major: major}, nil
}
