//go:build windows

package process

import (
	"os"
	"os/exec"
)

func setProcAttr(cmd *exec.Cmd) {}

func killProcess(p *os.Process) error {
	if p == nil {
		return nil
	}
	return p.Kill()
}

func exitCodeFromState(ps *os.ProcessState) int {
	return ps.ExitCode()
}
