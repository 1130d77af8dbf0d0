package worker

import (
	"testing"
	"time"

	"github.com/jzbor/zinn/internal/progress"
	"github.com/jzbor/zinn/internal/queue"
	"github.com/jzbor/zinn/internal/realize"
	"github.com/jzbor/zinn/internal/runner"
)

func TestLoop_DrivesJobsToTerminalStates(t *testing.T) {
	q := queue.New()
	a := &realize.Job{Name: "a", Hash: "a", Run: "echo a"}
	b := &realize.Job{Name: "b", Hash: "b", Run: "exit 3"}
	q.Enqueue(a)
	q.Enqueue(b)
	q.Done()

	tracker := progress.NewPlain()
	done := make(chan struct{})
	go func() {
		Loop(q, tracker.ForThreads(1)[0], runner.Options{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker loop did not drain within timeout")
	}

	if !q.HasFailed() {
		t.Fatal("expected the failing job to set the queue's failed flag")
	}
}

func TestRunPool_JoinsAllWorkers(t *testing.T) {
	q := queue.New()
	q.Enqueue(&realize.Job{Name: "a", Hash: "a", Run: "echo a"})
	q.Enqueue(&realize.Job{Name: "b", Hash: "b", Run: "echo b"})
	q.Done()

	tracker := progress.NewPlain()
	done := make(chan struct{})
	go func() {
		RunPool(q, tracker.ForThreads(2), runner.Options{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pool did not join within timeout")
	}

	if q.HasFailed() {
		t.Fatal("did not expect any failure")
	}
}
