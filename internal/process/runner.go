// Package process provides abstractions for running the game process.
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// ErrEmptyCommand is returned when a Command has no executable path.
var ErrEmptyCommand = errors.New("empty command")

// Handle is a started process owned by exactly one supervisor.
type Handle interface {
	// Output returns the combined stdout/stderr stream. It reaches EOF once
	// every writer (normally the process itself) has closed it.
	Output() io.Reader

	// Wait blocks until the process terminates. A non-zero exit is not an
	// error; read it with ExitCode.
	Wait() error

	// ExitCode returns the exit status after Wait returned. Signal
	// terminations are reported as 128+signal.
	ExitCode() int

	// Kill forcibly terminates the process and abandons its output.
	Kill() error

	// Pid returns the OS process id, or 0 if there is none.
	Pid() int
}

// Factory starts a process. It is the seam tests replace with fakes.
type Factory func() (Handle, error)

// Command is a low-level description of a process to start.
type Command struct {
	Path string
	Args []string
	Dir  string

	// Env holds extra KEY=value entries appended to os.Environ().
	Env []string
}

// String returns the command line for logging.
func (c Command) String() string {
	s := c.Path
	for _, a := range c.Args {
		s += " " + a
	}
	return s
}

// NewFactory returns a Factory that starts the game described by spec.
func NewFactory(spec LaunchSpec) Factory {
	cmd := spec.Command()
	return func() (Handle, error) {
		return Start(cmd)
	}
}

// CommandFactory returns a Factory for an arbitrary command.
func CommandFactory(c Command) Factory {
	return func() (Handle, error) {
		return Start(c)
	}
}

// Start launches c with stdout and stderr sharing one pipe.
func Start(c Command) (Handle, error) {
	if c.Path == "" {
		return nil, ErrEmptyCommand
	}

	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	setProcAttr(cmd)

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("output pipe: %w", err)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, err
	}

	// Close the parent's write end so EOF arrives when the child exits.
	w.Close()

	return &execHandle{cmd: cmd, out: r}, nil
}

// execHandle is the Handle backed by a real OS process.
type execHandle struct {
	cmd *exec.Cmd
	out *os.File

	waitOnce sync.Once
	waitErr  error

	closeOnce sync.Once
}

func (h *execHandle) Output() io.Reader {
	return h.out
}

func (h *execHandle) Wait() error {
	h.waitOnce.Do(func() {
		err := h.cmd.Wait()
		h.closeOutput()

		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			h.waitErr = err
		}
	})
	return h.waitErr
}

func (h *execHandle) ExitCode() int {
	if h.cmd.ProcessState == nil {
		return -1
	}
	return exitCodeFromState(h.cmd.ProcessState)
}

func (h *execHandle) Kill() error {
	err := killProcess(h.cmd.Process)
	// Closing the read end unblocks a reader even if a grandchild still
	// holds the write end.
	h.closeOutput()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (h *execHandle) Pid() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

func (h *execHandle) closeOutput() {
	h.closeOnce.Do(func() {
		h.out.Close()
	})
}
