// Package runner executes one realized job: dry-run/skip/trace checks,
// shell spawn, output streaming, and exit handling (spec §4.4).
package runner

// Options controls how a job is executed; it is threaded down from CLI
// flags (spec §6).
type Options struct {
	Verbose bool
	Force   bool
	Trace   bool
	DryRun  bool
}
