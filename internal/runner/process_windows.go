//go:build windows

package runner

import "os/exec"

// setupProcessGroup is a no-op on Windows; process groups work differently
// there and Zinn never signals them (see process_unix.go).
func setupProcessGroup(cmd *exec.Cmd) {}

// signaled is always false on Windows: exec.ExitError carries no signal
// information there.
func signaled(exitErr *exec.ExitError) bool { return false }
