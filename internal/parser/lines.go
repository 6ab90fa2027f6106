// Package parser reads the game's output stream and recognises the lines
// the launcher cares about.
package parser

import (
	"bufio"
	"errors"
	"io"
	"sync/atomic"
)

const (
	// MaxLineLength is the longest line delivered intact. Longer lines are
	// cut and suffixed with TruncatedSuffix; the remainder is discarded so
	// the game never blocks on a full pipe.
	MaxLineLength = 64 * 1024

	// TruncatedSuffix marks a line cut at MaxLineLength.
	TruncatedSuffix = "...(truncated)"

	readBufferSize = 64 * 1024
)

// LineReader reads newline-delimited text from a process output stream.
// A single goroutine calls Run; Stats may be read from any goroutine.
type LineReader struct {
	reader io.Reader

	bytesRead atomic.Int64
	linesRead atomic.Int64
	truncated atomic.Int64
}

// NewLineReader creates a reader over r (typically Handle.Output()).
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{reader: r}
}

// Run calls fn for each line, with the trailing newline (and any \r)
// removed. It returns nil at EOF, the read error if the stream fails, or
// nil as soon as fn returns false.
func (l *LineReader) Run(fn func(line string) bool) error {
	br := bufio.NewReaderSize(l.reader, readBufferSize)

	var (
		line   []byte
		inLine bool
		cut    bool
	)

	emit := func() bool {
		text := string(line)
		if cut {
			text += TruncatedSuffix
			l.truncated.Add(1)
		}
		line = line[:0]
		inLine = false
		cut = false
		l.linesRead.Add(1)
		return fn(text)
	}

	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			// A final line that filled the buffer exactly has no terminator.
			if inLine {
				emit()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		l.bytesRead.Add(int64(len(chunk)))
		inLine = true

		if room := MaxLineLength - len(line); room > 0 {
			if len(chunk) > room {
				line = append(line, chunk[:room]...)
				cut = true
			} else {
				line = append(line, chunk...)
			}
		} else if len(chunk) > 0 {
			cut = true
		}

		if isPrefix {
			continue
		}

		l.bytesRead.Add(1) // newline
		if !emit() {
			return nil
		}
	}
}

// Stats returns (bytesRead, linesRead, truncatedLines).
func (l *LineReader) Stats() (bytesRead, linesRead, truncated int64) {
	return l.bytesRead.Load(), l.linesRead.Load(), l.truncated.Load()
}
