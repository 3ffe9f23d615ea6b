//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// Setpgid configures cmd to start in its own process group so the whole
// group can be killed on timeout.
func Setpgid(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// KillTree kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillTree(pid int) {
	// Best-effort cleanup; the exec.Cmd wait provides the fallback
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
