//go:build !windows

package sandbox

import (
	"os/exec"
	"syscall"
)

// isolate starts cmd in its own process group and kills the whole group on
// cancellation, so grandchildren cannot outlive the deadline.
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}

// signalOf returns the signal that terminated cmd, if any
func signalOf(cmd *exec.Cmd) (syscall.Signal, bool) {
	if cmd.ProcessState == nil {
		return 0, false
	}
	ws, ok := cmd.ProcessState.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return 0, false
	}
	return ws.Signal(), true
}
