package parser

import (
	"fmt"
	"regexp"
)

// DefaultMarkerPattern matches the engine's log line announcing that start-up
// finished, e.g. "TerasologyEngine : Initialization completed".
const DefaultMarkerPattern = `Initialization completed`

// Marker recognises the success-marker line in the game's output.
// It is immutable and safe for concurrent use.
type Marker struct {
	re *regexp.Regexp
}

// NewMarker compiles pattern as a regular expression matched anywhere in a line.
func NewMarker(pattern string) (*Marker, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty marker pattern")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid marker pattern %q: %w", pattern, err)
	}
	return &Marker{re: re}, nil
}

// DefaultMarker returns the marker for DefaultMarkerPattern.
func DefaultMarker() *Marker {
	return &Marker{re: regexp.MustCompile(DefaultMarkerPattern)}
}

// Match reports whether line is a success-marker line.
func (m *Marker) Match(line string) bool {
	return m.re.MatchString(line)
}

// String returns the pattern source.
func (m *Marker) String() string {
	return m.re.String()
}
