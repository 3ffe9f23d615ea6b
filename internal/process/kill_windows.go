//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// Setpgid is a no-op on Windows; taskkill /T walks the tree instead.
func Setpgid(cmd *exec.Cmd) {}

// KillTree kills a process and all its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillTree(pid int) {
	// Best-effort cleanup; error ignored as the exec.Cmd wait provides fallback
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
