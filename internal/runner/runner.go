package runner

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/jzbor/zinn/internal/progress"
	"github.com/jzbor/zinn/internal/queue"
	"github.com/jzbor/zinn/internal/realize"
	"github.com/jzbor/zinn/internal/zinnerr"
)

// Run executes one realized job to completion and reports its terminal
// state (spec §4.4). In-flight jobs are never interrupted — there is no
// context-driven kill here; cancellation after failure only stops the
// queue from handing out further work (spec §4.3/§5).
func Run(job *realize.Job, tracker progress.ThreadTracker, opts Options) (queue.State, error) {
	if opts.DryRun {
		if opts.Trace {
			tracker.Trace(job.Run)
		}
		return queue.Finished, nil
	}

	for _, in := range job.Inputs {
		if _, err := os.Stat(in); err != nil {
			return queue.Failed, zinnerr.NewInputFileError(in)
		}
	}

	if !opts.Force && len(job.Inputs) > 0 && len(job.Outputs) > 0 {
		skip, err := isSkippable(job)
		if err != nil {
			return queue.Failed, err
		}
		if skip {
			return queue.Skipped, nil
		}
	}

	if opts.Trace {
		tracker.Trace(job.Run)
	}

	state, err := spawnAndStream(job, tracker, opts.Verbose)
	if err != nil {
		return state, err
	}

	for _, out := range job.Outputs {
		if _, err := os.Stat(out); err != nil {
			return queue.Failed, zinnerr.NewOutputFileError(out)
		}
	}

	return queue.Finished, nil
}

// isSkippable implements the mtime-based skip check: every output must
// exist, and for every (output, input) pair the output's mtime must be at
// least as new as the input's (spec §4.4 step 3).
func isSkippable(job *realize.Job) (bool, error) {
	outMTimes := make([]int64, len(job.Outputs))
	for i, out := range job.Outputs {
		info, err := os.Stat(out)
		if err != nil {
			return false, nil // an output is missing: not skippable
		}
		outMTimes[i] = info.ModTime().UnixNano()
	}

	for _, in := range job.Inputs {
		info, err := os.Stat(in)
		if err != nil {
			return false, zinnerr.NewInputFileError(in)
		}
		inMTime := info.ModTime().UnixNano()
		for _, outMTime := range outMTimes {
			if outMTime < inMTime {
				return false, nil
			}
		}
	}

	return true, nil
}

// spawnAndStream runs `sh -c "set -e; <run>"`. Interactive jobs inherit the
// controlling terminal and are not captured; other jobs have stdout+stderr
// merged into one pipe, streamed line-by-line to the tracker (spec §4.4
// step 5). The process runs in its own group (mirroring
// internal/act/runner.go's Setpgid) so any subprocesses it spawns are
// reachable as a unit, even though nothing here signals them.
func spawnAndStream(job *realize.Job, tracker progress.ThreadTracker, verbose bool) (queue.State, error) {
	cmd := exec.Command("sh", "-c", "set -e; "+job.Run) //nolint:gosec // zinnfile authors are trusted
	setupProcessGroup(cmd)

	display := job.Display()

	if job.Interactive {
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return exitState(err)
		}
		return queue.Finished, nil
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return queue.Failed, fmt.Errorf("%w: %s", zinnerr.ErrFile, err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return queue.Failed, fmt.Errorf("%w: %s", zinnerr.ErrFile, err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		tracker.CmdOutput(display, scanner.Text(), verbose)
	}
	tracker.FlushCmdOutput(display, verbose)

	if err := cmd.Wait(); err != nil {
		return exitState(err)
	}

	return queue.Finished, nil
}

func exitState(err error) (queue.State, error) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if signaled(exitErr) {
			return queue.Failed, zinnerr.ErrChildSignaled
		}
		return queue.Failed, &zinnerr.ChildFailedError{Code: exitErr.ExitCode()}
	}
	return queue.Failed, fmt.Errorf("%w: %s", zinnerr.ErrFile, err)
}
