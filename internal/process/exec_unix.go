//go:build !windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcAttr puts the game in its own process group so Kill reaches any
// helpers it spawned.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcess(p *os.Process) error {
	if p == nil {
		return nil
	}
	if pgid, err := syscall.Getpgid(p.Pid); err == nil && pgid == p.Pid {
		if err := syscall.Kill(-pgid, syscall.SIGKILL); err == nil {
			return nil
		}
	}
	return p.Kill()
}

func exitCodeFromState(ps *os.ProcessState) int {
	if status, ok := ps.Sys().(syscall.WaitStatus); ok {
		if status.Signaled() {
			return ExitCodeForSignal(int(status.Signal()))
		}
		return status.ExitStatus()
	}
	return ps.ExitCode()
}
