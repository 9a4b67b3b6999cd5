//go:build windows

package sandbox

import (
	"os/exec"
	"syscall"
)

func isolate(cmd *exec.Cmd) {}

func signalOf(cmd *exec.Cmd) (syscall.Signal, bool) {
	return 0, false
}
