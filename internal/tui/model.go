package tui

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/randomizedcoder/show-runtime/internal/stats"
	"github.com/randomizedcoder/show-runtime/internal/task"
)

// maxRecentFailures bounds the failure list shown on the dashboard.
const maxRecentFailures = 5

// maxRunningShown bounds the running list shown on the dashboard.
const maxRunningShown = 5

// =============================================================================
// Messages
// =============================================================================

// TickMsg is sent periodically to update the display.
type TickMsg time.Time

// TaskStartedMsg reports a helper starting for an item.
type TaskStartedMsg struct {
	Index int
	Item  string
}

// TaskDoneMsg reports a finished task.
type TaskDoneMsg struct {
	Result task.Result
}

// QuitMsg signals the TUI should exit.
type QuitMsg struct{}

// =============================================================================
// Model
// =============================================================================

// StatsSource provides the current batch summary.
type StatsSource interface {
	Snapshot() stats.Summary
}

// Config holds TUI configuration.
type Config struct {
	Total       int
	Parallel    int
	HelperName  string
	MetricsAddr string
	RunID       string
	StatsSource StatsSource
}

// tracked is the dashboard's view of one task.
type tracked struct {
	item  string
	state task.State
}

// Model represents the TUI state.
type Model struct {
	// Configuration
	total       int
	parallel    int
	helperName  string
	metricsAddr string
	runID       string
	statsSource StatsSource

	// Current state
	summary  stats.Summary
	tasks    map[int]tracked
	running  int
	finished int
	invalid  int
	failures []task.Result

	startTime  time.Time
	lastUpdate time.Time

	// Display options
	width  int
	height int

	quitting bool
}

// New creates a new TUI model.
func New(cfg Config) Model {
	now := time.Now()
	return Model{
		total:       cfg.Total,
		parallel:    cfg.Parallel,
		helperName:  cfg.HelperName,
		metricsAddr: cfg.MetricsAddr,
		runID:       cfg.RunID,
		statsSource: cfg.StatsSource,
		tasks:       make(map[int]tracked),
		startTime:   now,
		lastUpdate:  now,
		width:       80,
		height:      24,
	}
}

// =============================================================================
// Bubble Tea Interface
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case TickMsg:
		m.refresh()
		return m, tickCmd()

	case TaskStartedMsg:
		if m.State(msg.Index) != task.StateQueued {
			return m, nil
		}
		m.tasks = copyTasks(m.tasks)
		m.tasks[msg.Index] = tracked{item: msg.Item, state: task.StateRunning}
		m.running++
		return m, nil

	case TaskDoneMsg:
		prev := m.State(msg.Result.Index)
		if prev.IsTerminal() {
			return m, nil
		}
		if prev == task.StateRunning {
			m.running--
		}

		state := task.StateOf(msg.Result)
		m.tasks = copyTasks(m.tasks)
		m.tasks[msg.Result.Index] = tracked{item: msg.Result.Item, state: state}
		m.finished++
		if state == task.StateFailed {
			m.invalid++
			m.failures = append(m.failures, msg.Result)
			if len(m.failures) > maxRecentFailures {
				m.failures = m.failures[len(m.failures)-maxRecentFailures:]
			}
		}
		m.refresh()
		return m, nil

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderSummaryView()
}

func (m *Model) refresh() {
	if m.statsSource != nil {
		m.summary = m.statsSource.Snapshot()
	}
	m.lastUpdate = time.Now()
}

// copyTasks keeps earlier model values unchanged; Bubble Tea models are
// values and the task table is a map.
func copyTasks(src map[int]tracked) map[int]tracked {
	dst := make(map[int]tracked, len(src)+1)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// =============================================================================
// Commands
// =============================================================================

// tickCmd returns a command that sends a tick after 250ms.
func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// =============================================================================
// Accessors
// =============================================================================

// Elapsed returns the time since the batch started.
func (m Model) Elapsed() time.Duration {
	return time.Since(m.startTime)
}

// Progress returns the finished share of the batch, 0.0 to 1.0.
func (m Model) Progress() float64 {
	if m.total <= 0 {
		return 0
	}
	p := float64(m.finished) / float64(m.total)
	if p > 1 {
		return 1
	}
	return p
}

// Finished returns the number of finished tasks.
func (m Model) Finished() int {
	return m.finished
}

// Invalid returns the number of invalid results so far.
func (m Model) Invalid() int {
	return m.invalid
}

// State returns the task's state. Tasks not yet reported are queued.
func (m Model) State(index int) task.State {
	if t, ok := m.tasks[index]; ok {
		return t.state
	}
	return task.StateQueued
}

// Running returns the items currently running, in input order.
func (m Model) Running() []string {
	indexes := make([]int, 0, m.running)
	for i, t := range m.tasks {
		if t.state == task.StateRunning {
			indexes = append(indexes, i)
		}
	}
	sort.Ints(indexes)

	items := make([]string, len(indexes))
	for i, idx := range indexes {
		items[i] = m.tasks[idx].item
	}
	return items
}

// Failures returns the most recent invalid results, oldest first.
func (m Model) Failures() []task.Result {
	return m.failures
}
