// Package nixshell re-execs the current process inside `nix shell` when a
// Zinnfile declares a `nix:` block, matching the optional wrapper described
// in spec §1/§6 and supplementing it from the original implementation's
// nix.rs (dropped from the distilled spec but present in the original).
package nixshell

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/jzbor/zinn/internal/zinnerr"
	"github.com/jzbor/zinn/internal/zinnfile"
)

// envMarker is set in the re-exec'd process so InsideWrap can tell it
// should not wrap again, ported from the original's ZINN_NIX_ENV.
const envMarker = "ZINN_NIX_ENV"

// InsideWrap reports whether the current process is already running
// inside the nix shell wrapper.
func InsideWrap() bool {
	_, ok := os.LookupEnv(envMarker)
	return ok
}

// CheckAvailable reports whether `nix shell` is usable at all.
func CheckAvailable() bool {
	cmd := exec.Command("nix", "shell", "--version")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

func packageRefs(cfg *zinnfile.NixConfig) []string {
	nixpkgs := cfg.Nixpkgs
	if nixpkgs == "" {
		nixpkgs = zinnfile.DefaultNixpkgs
	}
	refs := make([]string, len(cfg.Packages))
	for i, pkg := range cfg.Packages {
		refs[i] = fmt.Sprintf("%s#%s", nixpkgs, pkg)
	}
	return refs
}

// Wrap re-execs the current process (os.Args) inside `nix shell` with the
// Zinnfile's declared packages, marking the child so it won't wrap again.
func Wrap(cfg *zinnfile.NixConfig) error {
	args := append([]string{"shell"}, packageRefs(cfg)...)
	args = append(args, "--command")
	args = append(args, os.Args...)

	cmd := exec.Command("nix", args...) //nolint:gosec // nix itself is trusted tooling
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), envMarker+"=1")

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: nix shell: %s", zinnerr.ErrFile, err)
	}
	return nil
}
