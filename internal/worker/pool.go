package worker

import (
	"golang.org/x/sync/errgroup"

	"github.com/jzbor/zinn/internal/progress"
	"github.com/jzbor/zinn/internal/queue"
	"github.com/jzbor/zinn/internal/runner"
)

// RunPool starts n worker goroutines against q, each driven by its own
// ThreadTracker, and blocks until every one of them has observed the queue
// go terminal (spec §5: "fixed pool of N workers... all run in parallel").
//
// errgroup only carries fatal setup-phase failures here (there are none —
// Loop never returns an error); runtime job failures are routed through
// the queue's failed flag instead, so a single failing job never gets
// conflated with errgroup's own cancel-the-group behavior.
func RunPool(q *queue.Queue, trackers []progress.ThreadTracker, opts runner.Options) {
	var g errgroup.Group
	for _, t := range trackers {
		t := t
		g.Go(func() error {
			Loop(q, t, opts)
			return nil
		})
	}
	_ = g.Wait()
}
