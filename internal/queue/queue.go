// Package queue implements the thread-safe scheduling structure workers
// pull from: a ready-set, a per-job state map, a liveness predicate, and a
// termination signal (spec §4.3).
package queue

import (
	"sync"

	"github.com/jzbor/zinn/internal/realize"
)

// Queue is safe for concurrent use by the orchestrator and every worker.
type Queue struct {
	mu   sync.Mutex
	cond *sync.Cond

	jobs   []*realize.Job    // not yet dispatched, in enqueue order
	states map[string]State  // keyed by Job.Hash, append-only
	byHash map[string]*realize.Job
	done   bool
	failed bool
}

// New builds an empty Queue.
func New() *Queue {
	q := &Queue{
		states: make(map[string]State),
		byHash: make(map[string]*realize.Job),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds job if an identical job (by content hash) isn't already
// present, then wakes one waiter. Re-enqueuing an already-known job is a
// no-op, which is how diamond dependencies get deduplicated.
func (q *Queue) Enqueue(job *realize.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, known := q.states[job.Hash]; known {
		return
	}

	q.jobs = append(q.jobs, job)
	q.states[job.Hash] = Ready
	q.byHash[job.Hash] = job
	q.cond.Signal()
}

// Fetch blocks until a job is ready to run, transitions it to Running and
// returns it, or returns (nil, false) once the queue has reached a
// terminal condition (spec §4.3's fetch loop).
func (q *Queue) Fetch() (*realize.Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if (q.done && !q.hasAliveTasksLocked()) || q.failed {
			return nil, false
		}

		if job := q.getReadyLocked(); job != nil {
			return job, true
		}

		q.cond.Wait()
	}
}

// Finished records job's terminal state. Failed additionally flips the
// global failed flag, which drains the pool on the next Fetch of every
// waiter (spec §4.3's cancellation semantics).
func (q *Queue) Finished(job *realize.Job, state State) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.states[job.Hash] = state
	if state == Failed {
		q.failed = true
	}
	q.cond.Broadcast()
}

// Done marks that no further Enqueue calls will happen. Combined with the
// liveness predicate this lets Fetch recognize a drained, successful queue.
func (q *Queue) Done() {
	q.mu.Lock()
	q.done = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Cancel stops the queue from handing out further jobs, used when the
// orchestrator observes SIGINT/SIGTERM. It reuses the same failed flag a
// job failure would set: either way, Fetch drains and returns (nil, false)
// to every waiter, while jobs already Running are left to finish on their
// own (spec §4.4/§5's "in-flight jobs are not interrupted").
func (q *Queue) Cancel() {
	q.mu.Lock()
	q.failed = true
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Len returns the number of jobs not yet dispatched.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// HasFailed reports whether any job has ever transitioned to Failed.
func (q *Queue) HasFailed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.failed
}

// HasInteractive reports whether any currently-enqueued job is interactive.
// Per spec §9 open question 3, this queue-side check (over realized,
// enqueued jobs) is authoritative; it must be called after all targets have
// been enqueued and before any worker starts dispatching.
func (q *Queue) HasInteractive() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, j := range q.jobs {
		if j.Interactive {
			return true
		}
	}
	return false
}

func (q *Queue) dependenciesSatisfiedLocked(job *realize.Job) bool {
	for _, dep := range job.Dependencies {
		if !q.states[dep.Hash].CompletedSuccessfully() {
			return false
		}
	}
	return true
}

// getReadyLocked selects the last Ready job (in q.jobs order) whose
// dependencies are all satisfied, transitions it to Running, and removes it
// from the pending slice. No ordering is specified among ready siblings;
// "last match" mirrors the original implementation.
func (q *Queue) getReadyLocked() *realize.Job {
	var ready *realize.Job
	for _, job := range q.jobs {
		if q.states[job.Hash] == Ready && q.dependenciesSatisfiedLocked(job) {
			ready = job
		}
	}

	if ready == nil {
		return nil
	}

	q.states[ready.Hash] = Running
	filtered := q.jobs[:0]
	for _, j := range q.jobs {
		if j != ready {
			filtered = append(filtered, j)
		}
	}
	q.jobs = filtered

	return ready
}

// taskAliveLocked determines whether job is running or may run in the
// future: not terminal, and every not-yet-successfully-completed
// dependency is itself alive. A cyclic dependency chain makes this
// recursion diverge — spec §4.3 treats that as user error, so no cycle
// guard is added here.
func (q *Queue) taskAliveLocked(job *realize.Job) bool {
	if q.states[job.Hash].Terminal() {
		return false
	}

	for _, dep := range job.Dependencies {
		if !q.states[dep.Hash].CompletedSuccessfully() && !q.taskAliveLocked(dep) {
			return false
		}
	}
	return true
}

func (q *Queue) hasAliveTasksLocked() bool {
	for _, job := range q.jobs {
		if q.taskAliveLocked(job) {
			return true
		}
	}
	return false
}
