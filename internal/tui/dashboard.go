package tui

import (
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/show-runtime/internal/task"
)

// Dashboard runs a Model as a Bubble Tea program and forwards task events
// to it. All methods are safe for concurrent use.
type Dashboard struct {
	program *tea.Program
	done    chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
	err     error
}

// NewDashboard creates a dashboard rendering model to out. Keyboard input
// is not read and signals are left to the caller.
func NewDashboard(model Model, out io.Writer, opts ...tea.ProgramOption) *Dashboard {
	base := []tea.ProgramOption{
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
		tea.WithAltScreen(),
	}
	return &Dashboard{
		program: tea.NewProgram(model, append(base, opts...)...),
		done:    make(chan struct{}),
	}
}

// Start runs the program in a goroutine.
func (d *Dashboard) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true

	go func() {
		defer close(d.done)
		_, err := d.program.Run()
		d.mu.Lock()
		d.err = err
		d.mu.Unlock()
	}()
}

// TaskStarted forwards a task start.
func (d *Dashboard) TaskStarted(index int, item string) {
	d.send(TaskStartedMsg{Index: index, Item: item})
}

// TaskDone forwards a finished task.
func (d *Dashboard) TaskDone(res task.Result) {
	d.send(TaskDoneMsg{Result: res})
}

func (d *Dashboard) send(msg tea.Msg) {
	d.mu.Lock()
	active := d.started && !d.stopped
	d.mu.Unlock()
	if active {
		d.program.Send(msg)
	}
}

// Stop quits the program, waits for it to restore the terminal and returns
// the program's error, if any.
func (d *Dashboard) Stop() error {
	d.mu.Lock()
	if !d.started || d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	d.mu.Unlock()

	d.program.Send(QuitMsg{})
	<-d.done

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}
