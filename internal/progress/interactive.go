package progress

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jzbor/zinn/internal/queue"
	"github.com/jzbor/zinn/internal/realize"
)

// Interactive is the multi-bar tracker: one spinner row per worker thread
// plus a total-progress counter, with completion lines printed above the
// rows (spec §4.6). It is built around a single tea.Program driving a
// model that every ThreadTracker feeds via program.Send, the same
// send-from-a-goroutine pattern the teacher's own TUI commands use.
type Interactive struct {
	mu      sync.Mutex
	program *tea.Program
	njobs   int
}

// NewInteractive builds an Interactive tracker. The underlying tea.Program
// is not started until Start is called.
func NewInteractive() *Interactive {
	return &Interactive{}
}

func (i *Interactive) SetNJobs(n int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.njobs = n
	if i.program != nil {
		i.program.Send(totalMsg{n: n})
	}
}

// Start launches the bubbletea program in the background. It returns
// immediately; the caller must call Wait once every job has completed so
// the program can quit and the terminal can be restored.
func (i *Interactive) Start() {
	i.mu.Lock()
	model := newBarModel(i.njobs)
	program := tea.NewProgram(model)
	i.program = program
	i.mu.Unlock()

	go func() { _, _ = program.Run() }()
}

// Wait tells the running program to quit once its event loop drains. Safe
// to call even if Start was never invoked.
func (i *Interactive) Wait() {
	i.mu.Lock()
	program := i.program
	i.mu.Unlock()
	if program != nil {
		program.Quit()
	}
}

func (i *Interactive) ForThreads(n int) []ThreadTracker {
	threads := make([]ThreadTracker, n)
	for idx := range threads {
		threads[idx] = &interactiveThread{parent: i, idx: idx}
	}
	return threads
}

type interactiveThread struct {
	parent *Interactive
	idx    int
}

func (t *interactiveThread) send(msg tea.Msg) {
	t.parent.mu.Lock()
	program := t.parent.program
	t.parent.mu.Unlock()
	if program != nil {
		program.Send(msg)
	}
}

func (t *interactiveThread) Start() {}

func (t *interactiveThread) SetPrefix(s string) {
	t.send(prefixMsg{thread: t.idx, prefix: s})
}

func (t *interactiveThread) ClearStatus() {
	t.send(statusMsg{thread: t.idx, text: ""})
}

func (t *interactiveThread) CmdOutput(jobDisplay, line string, verbose bool) {
	t.send(statusMsg{thread: t.idx, text: line})
	if verbose {
		t.send(logLineMsg{text: fmt.Sprintf("%s: %s", jobDisplay, line)})
	}
}

func (t *interactiveThread) FlushCmdOutput(string, bool) {}

func (t *interactiveThread) Trace(cmd string) {
	t.send(logLineMsg{text: cmd})
}

func (t *interactiveThread) JobCompleted(job *realize.Job, state queue.State, jobErr error) {
	t.send(completionMsg{job: job, state: state, err: jobErr})
}

// --- bubbletea model ---

type prefixMsg struct {
	thread int
	prefix string
}

type statusMsg struct {
	thread int
	text   string
}

type totalMsg struct{ n int }

type logLineMsg struct{ text string }

type completionMsg struct {
	job   *realize.Job
	state queue.State
	err   error
}

type row struct {
	spinner spinner.Model
	prefix  string
	status  string
}

type barModel struct {
	rows      []row
	total     int
	completed int
}

func newBarModel(njobs int) barModel {
	return barModel{total: njobs}
}

func newRow() row {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	return row{spinner: s, prefix: "waiting..."}
}

func (m barModel) Init() tea.Cmd {
	return nil
}

func (m barModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case totalMsg:
		m.total = msg.n
		return m, nil

	case prefixMsg:
		tick := m.ensureRow(msg.thread)
		m.rows[msg.thread].prefix = msg.prefix
		return m, tick

	case statusMsg:
		tick := m.ensureRow(msg.thread)
		m.rows[msg.thread].status = msg.text
		return m, tick

	case logLineMsg:
		return m, tea.Println(msg.text)

	case completionMsg:
		m.completed++
		return m, tea.Println(completionLine(msg.job, msg.state, msg.err))

	case spinner.TickMsg:
		var cmds []tea.Cmd
		for idx := range m.rows {
			var cmd tea.Cmd
			m.rows[idx].spinner, cmd = m.rows[idx].spinner.Update(msg)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	return m, nil
}

// ensureRow grows rows up to idx, returning a batched Tick command for any
// newly created spinners so they start animating immediately.
func (m *barModel) ensureRow(idx int) tea.Cmd {
	var ticks []tea.Cmd
	for len(m.rows) <= idx {
		r := newRow()
		m.rows = append(m.rows, r)
		ticks = append(ticks, r.spinner.Tick)
	}
	return tea.Batch(ticks...)
}

func (m barModel) View() string {
	var b strings.Builder
	for _, r := range m.rows {
		fmt.Fprintf(&b, "%s %s %s\n", r.spinner.View(), lipgloss.NewStyle().Foreground(lipgloss.Color("45")).Render(r.prefix), r.status)
	}
	fmt.Fprintf(&b, "[%d/%d]\n", m.completed, m.total)
	return b.String()
}

func completionLine(job *realize.Job, state queue.State, jobErr error) string {
	var line string
	switch state {
	case queue.Finished:
		line = plainDoneStyle.Render(fmt.Sprintf("=> DONE %s", job.Display()))
	case queue.Skipped:
		line = plainSkippedStyle.Render(fmt.Sprintf("=> SKIPPED %s", job.Display()))
	case queue.Failed:
		line = plainFailedStyle.Render(fmt.Sprintf("=> FAILED %s", job.Display()))
	}
	if jobErr != nil {
		line += "\n" + jobErr.Error()
	}
	return line
}
