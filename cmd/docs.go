package cmd

import (
	"fmt"
	"os/exec"
)

// openerFor shells out to the platform's "open a URL" command, matching
// --docs's stdlib os/exec + runtime.GOOS dispatch (spec §6 EXPANSION).
func openerFor(name, url string) error {
	args := []string{url}
	if name == "rundll32" {
		args = []string{"url.dll,FileProtocolHandler", url}
	}

	cmd := exec.Command(name, args...) //nolint:gosec // name is one of a fixed, hardcoded set
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening docs: %w", err)
	}
	return nil
}
