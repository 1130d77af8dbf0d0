//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// setupProcessGroup runs cmd in its own process group so any children it
// spawns stay reachable as a unit, mirroring internal/act/runner.go's
// Setpgid use. Zinn never signals the group (spec §4.4/§5 non-goal), and
// nothing here stops a job's descendants from outliving it.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func signaled(exitErr *exec.ExitError) bool {
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	return ok && status.Signaled()
}
