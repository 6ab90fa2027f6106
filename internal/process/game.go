package process

import (
	"fmt"
	"path/filepath"
	"strings"
)

// GameJarName is the jar the launcher starts, relative to the game directory.
var GameJarName = filepath.Join("libs", "Terasology.jar")

// GameJar returns the path of the game jar inside gameDir.
func GameJar(gameDir string) string {
	return filepath.Join(gameDir, GameJarName)
}

// HeapSize is a JVM heap size choice. HeapNotUsed omits the flag entirely.
type HeapSize int

const (
	HeapNotUsed HeapSize = iota
	Heap256M
	Heap512M
	Heap768M
	Heap1G
	Heap1536M
	Heap2G
	Heap2560M
	Heap3G
	Heap4G
	Heap5G
	Heap6G
	Heap7G
	Heap8G
	Heap9G
	Heap10G
	Heap11G
	Heap12G
	Heap13G
	Heap14G
	Heap15G
	Heap16G
)

// heapSizes maps each HeapSize to its settings name and JVM size parameter.
// Order matches the constants above, smallest first.
var heapSizes = []struct {
	name  string
	param string
}{
	{"NOT_USED", ""},
	{"MB_256", "256m"},
	{"MB_512", "512m"},
	{"MB_768", "768m"},
	{"GB_1", "1g"},
	{"GB_1_5", "1536m"},
	{"GB_2", "2g"},
	{"GB_2_5", "2560m"},
	{"GB_3", "3g"},
	{"GB_4", "4g"},
	{"GB_5", "5g"},
	{"GB_6", "6g"},
	{"GB_7", "7g"},
	{"GB_8", "8g"},
	{"GB_9", "9g"},
	{"GB_10", "10g"},
	{"GB_11", "11g"},
	{"GB_12", "12g"},
	{"GB_13", "13g"},
	{"GB_14", "14g"},
	{"GB_15", "15g"},
	{"GB_16", "16g"},
}

// String returns the settings name, e.g. "GB_2_5".
func (h HeapSize) String() string {
	if h < 0 || int(h) >= len(heapSizes) {
		return fmt.Sprintf("HeapSize(%d)", int(h))
	}
	return heapSizes[h].name
}

// Param returns the JVM size parameter, e.g. "2560m". Empty for HeapNotUsed.
func (h HeapSize) Param() string {
	if h < 0 || int(h) >= len(heapSizes) {
		return ""
	}
	return heapSizes[h].param
}

// IsUsed reports whether the size produces a JVM flag.
func (h HeapSize) IsUsed() bool {
	return h.Param() != ""
}

// ParseHeapSize accepts either a settings name ("GB_4", case-insensitive)
// or a JVM size parameter ("4g", "1536m"). Empty input means HeapNotUsed.
func ParseHeapSize(s string) (HeapSize, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return HeapNotUsed, nil
	}
	for i, hs := range heapSizes {
		if strings.EqualFold(s, hs.name) || (hs.param != "" && strings.EqualFold(s, hs.param)) {
			return HeapSize(i), nil
		}
	}
	return HeapNotUsed, fmt.Errorf("unknown heap size %q", s)
}

// HeapSizes returns every selectable heap size, smallest first.
func HeapSizes() []HeapSize {
	out := make([]HeapSize, len(heapSizes))
	for i := range heapSizes {
		out[i] = HeapSize(i)
	}
	return out
}

// LogLevel is the log level override passed to the game.
type LogLevel string

const (
	LogLevelDefault LogLevel = "DEFAULT"
	LogLevelTrace   LogLevel = "TRACE"
	LogLevelDebug   LogLevel = "DEBUG"
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarn    LogLevel = "WARN"
	LogLevelError   LogLevel = "ERROR"
)

// ParseLogLevel parses a level name, case-insensitively. Empty input means
// LogLevelDefault.
func ParseLogLevel(s string) (LogLevel, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return LogLevelDefault, nil
	}
	switch l := LogLevel(s); l {
	case LogLevelDefault, LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return l, nil
	}
	return LogLevelDefault, fmt.Errorf("unknown log level %q", s)
}

// IsDefault reports whether the level leaves the game's own default alone.
func (l LogLevel) IsDefault() bool {
	return l == "" || l == LogLevelDefault
}

// LaunchSpec describes how to start the game. All paths are expected to be
// resolved by the caller; LaunchSpec only assembles them.
type LaunchSpec struct {
	// Runtime is the interpreter executable (usually a java binary).
	Runtime string

	// Jar is the game jar passed after -jar.
	Jar string

	// WorkDir is the directory the game resolves relative paths against.
	WorkDir string

	// DataDir is passed as --homedir. Empty omits the flag.
	DataDir string

	// JavaArgs are interpreter flags, placed before -jar.
	JavaArgs []string

	// GameArgs are application flags, placed after the jar.
	GameArgs []string

	HeapMin HeapSize
	HeapMax HeapSize

	LogLevel LogLevel

	// Env holds extra KEY=value entries added to the inherited environment.
	Env []string
}

// Args returns the argument vector without the runtime itself.
func (s LaunchSpec) Args() []string {
	args := make([]string, 0, 8+len(s.JavaArgs)+len(s.GameArgs))

	if s.HeapMin.IsUsed() {
		args = append(args, "-Xms"+s.HeapMin.Param())
	}
	if s.HeapMax.IsUsed() {
		args = append(args, "-Xmx"+s.HeapMax.Param())
	}
	if !s.LogLevel.IsDefault() {
		args = append(args, "-DlogOverrideLevel="+string(s.LogLevel))
	}

	args = append(args, s.JavaArgs...)
	args = append(args, "-jar", s.Jar)

	if s.DataDir != "" {
		args = append(args, "--homedir="+s.DataDir)
	}

	args = append(args, s.GameArgs...)
	return args
}

// Argv returns the full command line, runtime first.
func (s LaunchSpec) Argv() []string {
	return append([]string{s.Runtime}, s.Args()...)
}

// Command converts the spec into a startable Command.
func (s LaunchSpec) Command() Command {
	env := make([]string, len(s.Env))
	copy(env, s.Env)
	return Command{
		Path: s.Runtime,
		Args: s.Args(),
		Dir:  s.WorkDir,
		Env:  env,
	}
}

// CommandString returns the command that would be executed (for --print-cmd).
func (s LaunchSpec) CommandString() string {
	return strings.Join(s.Argv(), " ")
}
