// Package worker implements the per-thread loop: pull a job from the
// queue, run it, report to the tracker and queue (spec §4.5).
package worker

import (
	"github.com/jzbor/zinn/internal/progress"
	"github.com/jzbor/zinn/internal/queue"
	"github.com/jzbor/zinn/internal/runner"
)

const prefixTruncateLen = 60

// Loop drives one worker thread until the queue has no more work for it.
// It is the direct analogue of the original implementation's run_worker:
// set a waiting prefix, fetch, run, report, repeat.
func Loop(q *queue.Queue, tracker progress.ThreadTracker, opts runner.Options) {
	for {
		tracker.SetPrefix("waiting...")
		tracker.ClearStatus()

		job, ok := q.Fetch()
		if !ok {
			return
		}

		tracker.SetPrefix(truncateDisplay(job.Display(), prefixTruncateLen))

		state, err := runner.Run(job, tracker, opts)
		tracker.JobCompleted(job, state, err)
		q.Finished(job, state)
	}
}
