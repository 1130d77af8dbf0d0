package progress

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/jzbor/zinn/internal/queue"
	"github.com/jzbor/zinn/internal/realize"
)

// Semantic completion colors, matching the palette the teacher's TUI
// package uses for success/error/warning states.
var (
	plainDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	plainSkippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	plainFailedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Plain is the non-animated tracker: every line of output and every
// completion is a plain stdout print. Selected when progress is disabled or
// any job is interactive (spec §4.6).
type Plain struct {
	mu sync.Mutex
}

// NewPlain builds a Plain tracker.
func NewPlain() *Plain { return &Plain{} }

func (p *Plain) SetNJobs(int) {}
func (p *Plain) Start()       {}
func (p *Plain) Wait()        {}

func (p *Plain) ForThreads(n int) []ThreadTracker {
	threads := make([]ThreadTracker, n)
	for i := range threads {
		threads[i] = &plainThread{parent: p}
	}
	return threads
}

type plainThread struct {
	parent *Plain
}

func (t *plainThread) Start()          {}
func (t *plainThread) SetPrefix(string) {}
func (t *plainThread) ClearStatus()     {}

func (t *plainThread) CmdOutput(jobDisplay, line string, verbose bool) {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	fmt.Printf("%s: %s\n", jobDisplay, line)
}

func (t *plainThread) FlushCmdOutput(string, bool) {}

func (t *plainThread) Trace(cmd string) {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	fmt.Println(cmd)
}

func (t *plainThread) JobCompleted(job *realize.Job, state queue.State, jobErr error) {
	t.parent.mu.Lock()
	defer t.parent.mu.Unlock()
	printCompletionLine(os.Stdout, job, state, jobErr)
}

func printCompletionLine(w *os.File, job *realize.Job, state queue.State, jobErr error) {
	switch state {
	case queue.Finished:
		fmt.Fprintln(w, plainDoneStyle.Render(fmt.Sprintf("=> DONE %s", job.Display())))
	case queue.Skipped:
		fmt.Fprintln(w, plainSkippedStyle.Render(fmt.Sprintf("=> SKIPPED %s", job.Display())))
	case queue.Failed:
		fmt.Fprintln(w, plainFailedStyle.Render(fmt.Sprintf("=> FAILED %s", job.Display())))
	}
	if jobErr != nil {
		fmt.Fprintln(w, jobErr.Error())
	}
}
