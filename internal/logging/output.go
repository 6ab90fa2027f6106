package logging

import (
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// MaxBufferedLines is the number of recent game output lines kept for the
// exit summary.
const MaxBufferedLines = 100

// OutputMessage is the log message of every forwarded game output line.
const OutputMessage = "game_output"

// OutputHandler forwards game output lines to the launcher log, mirrors them
// into an optional game log file, and keeps the most recent lines for the
// crash summary. HandleLine is called from one goroutine; the accessors may
// be used from any.
type OutputHandler struct {
	logger *slog.Logger
	file   io.Writer

	// Circular buffer for recent lines
	mu     sync.Mutex
	buffer []string
	bufIdx int
	filled int

	lines atomic.Int64
}

// NewOutputHandler creates a handler logging to logger. file may be nil.
func NewOutputHandler(logger *slog.Logger, file io.Writer) *OutputHandler {
	return &OutputHandler{
		logger: logger,
		file:   file,
		buffer: make([]string, MaxBufferedLines),
	}
}

// HandleLine processes a single line of game output.
func (h *OutputHandler) HandleLine(line string) {
	h.lines.Add(1)

	h.mu.Lock()
	h.buffer[h.bufIdx] = line
	h.bufIdx = (h.bufIdx + 1) % MaxBufferedLines
	if h.filled < MaxBufferedLines {
		h.filled++
	}
	if h.file != nil {
		// A full disk must not stop the game; the launcher log still has the line.
		_, _ = io.WriteString(h.file, line+"\n")
	}
	h.mu.Unlock()

	h.logger.Info(OutputMessage, "line", line)
}

// Lines returns the number of lines handled.
func (h *OutputHandler) Lines() int64 {
	return h.lines.Load()
}

// RecentLines returns up to n of the most recent lines, oldest first.
func (h *OutputHandler) RecentLines(n int) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n > h.filled {
		n = h.filled
	}
	if n <= 0 {
		return nil
	}

	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		idx := (h.bufIdx - n + i + MaxBufferedLines) % MaxBufferedLines
		lines = append(lines, h.buffer[idx])
	}
	return lines
}

// ErrorPatterns are markers of typical game crashes, counted for the exit summary.
var ErrorPatterns = []string{
	"Exception",
	"OutOfMemoryError",
	"UnsatisfiedLinkError",
	"ERROR",
	"FATAL",
}

// CountErrors counts occurrences of error patterns in the buffered lines.
func (h *OutputHandler) CountErrors() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	counts := make(map[string]int)
	for i := 0; i < h.filled; i++ {
		line := h.buffer[i]
		for _, pattern := range ErrorPatterns {
			if strings.Contains(line, pattern) {
				counts[pattern]++
			}
		}
	}
	return counts
}
