// Package progress defines the two-variant progress-tracker capability
// surface workers use to report status, streamed command output, and
// completion events (spec §4.6). It deliberately avoids inheritance: a
// tracker is a small interface with exactly two implementations (Interactive,
// Plain) and a factory (New) that picks one.
package progress

import (
	"github.com/jzbor/zinn/internal/queue"
	"github.com/jzbor/zinn/internal/realize"
)

// ThreadTracker is owned by a single worker goroutine; it is not safe to
// share across goroutines.
type ThreadTracker interface {
	// Start begins any per-thread animation.
	Start()
	// SetPrefix updates the persistent label shown for this thread.
	SetPrefix(s string)
	// ClearStatus blanks the transient status area.
	ClearStatus()
	// CmdOutput reports the newest line of a running job's output.
	CmdOutput(jobDisplay, line string, verbose bool)
	// FlushCmdOutput promotes any buffered previous line to a persistent
	// log entry (verbose mode only).
	FlushCmdOutput(jobDisplay string, verbose bool)
	// Trace prints a rendered job command verbatim, persistently.
	Trace(cmd string)
	// JobCompleted prints a styled completion line and advances the main
	// progress counter.
	JobCompleted(job *realize.Job, state queue.State, jobErr error)
}

// Tracker is the parent/aggregate side: it knows the total job count and
// mints one ThreadTracker per worker.
type Tracker interface {
	SetNJobs(n int)
	Start()
	ForThreads(n int) []ThreadTracker
	// Wait lets the tracker wind down any background animation once the
	// pool has drained. Plain's is a no-op; Interactive quits its
	// tea.Program.
	Wait()
}

// New picks Plain when progress is disabled by the --no-progress flag or
// when any enqueued job is interactive (interactive children need the
// controlling terminal), and Interactive otherwise — matching spec §4.6's
// selection rule, with the queue-side interactive check per §9 open
// question 3.
func New(noProgress bool, anyInteractive bool) Tracker {
	if noProgress || anyInteractive {
		return NewPlain()
	}
	return NewInteractive()
}
