// Package tui is the interactive task browser behind `taskctl browse`.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adanyl0v/task-manager/internal/client/notify"
	"github.com/adanyl0v/task-manager/internal/client/session"
	"github.com/adanyl0v/task-manager/internal/client/workspace"
	"github.com/adanyl0v/task-manager/internal/models"
	"github.com/adanyl0v/task-manager/internal/view"
)

const requestTimeout = 15 * time.Second

// SessionState is implemented by *session.Manager.
type SessionState interface {
	State() session.State
}

// tasksLoadedMsg and actionDoneMsg carry the result of a workspace call
// back into Update.
type (
	tasksLoadedMsg struct{ err error }
	actionDoneMsg  struct{ err error }
)

type Model struct {
	ws       *workspace.Workspace
	session  SessionState
	recorder *notify.Recorder

	search    textinput.Model
	searching bool
	query     view.Query
	visible   []*models.Task
	cursor    int

	// pendingDelete is the task awaiting a y/n answer before removal.
	pendingDelete *models.Task

	loading  bool
	loadErr  error
	quitting bool
	width    int
	now      func() time.Time
}

// New builds the model. The recorder must be the notifier the workspace
// reports to, so that the latest message shows in the status line.
func New(ws *workspace.Workspace, sess SessionState, recorder *notify.Recorder) *Model {
	search := textinput.New()
	search.Placeholder = "search title or description"
	search.Prompt = "/ "
	search.CharLimit = 120

	return &Model{
		ws:       ws,
		session:  sess,
		recorder: recorder,
		search:   search,
		query:    view.Query{Status: view.StatusAll, Sort: view.SortCreatedAt},
		loading:  true,
		now:      time.Now,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.refresh()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tasksLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		m.rebuild()
		return m, m.quitIfSignedOut()
	case actionDoneMsg:
		m.rebuild()
		return m, m.quitIfSignedOut()
	case tea.KeyMsg:
		if m.pendingDelete != nil {
			return m, m.handleConfirmKey(msg)
		}
		if m.searching {
			return m, m.handleSearchKey(msg)
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return tea.Quit
	case "esc":
		m.search.SetValue("")
		m.search.Blur()
		m.searching = false
		m.query.Search = ""
		m.rebuild()
		return nil
	case "enter":
		m.search.Blur()
		m.searching = false
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.query.Search = m.search.Value()
	m.rebuild()
	return cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	task := m.pendingDelete
	m.pendingDelete = nil
	switch msg.String() {
	case "y", "Y":
		return m.act(func(ctx context.Context) error {
			return m.ws.Remove(ctx, task.ID)
		})
	case "ctrl+c":
		m.quitting = true
		return tea.Quit
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return tea.Quit
	case "/":
		m.searching = true
		return m.search.Focus()
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case "f":
		m.query.Status = next(view.Statuses, m.query.Status)
		m.rebuild()
	case "s":
		m.query.Sort = next(view.SortKeys, m.query.Sort)
		m.rebuild()
	case "r":
		m.loading = true
		return m.refresh()
	case " ", "x":
		if task := m.selected(); task != nil {
			return m.act(func(ctx context.Context) error {
				_, err := m.ws.Toggle(ctx, task.ID)
				return err
			})
		}
	case "d":
		m.pendingDelete = m.selected()
	}
	return nil
}

func (m *Model) refresh() tea.Cmd {
	ws := m.ws
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return tasksLoadedMsg{err: ws.Refresh(ctx)}
	}
}

func (m *Model) act(fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return actionDoneMsg{err: fn(ctx)}
	}
}

func (m *Model) quitIfSignedOut() tea.Cmd {
	if m.session != nil && m.session.State() == session.StateUnauthenticated {
		m.quitting = true
		return tea.Quit
	}
	return nil
}

func (m *Model) rebuild() {
	m.visible = m.ws.View(m.query)
	m.cursor = min(m.cursor, max(len(m.visible)-1, 0))
}

func (m *Model) selected() *models.Task {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return nil
	}
	return m.visible[m.cursor]
}

func next[T comparable](values []T, current T) T {
	idx := slices.Index(values, current)
	return values[(idx+1)%len(values)]
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	doneStyle = lipgloss.NewStyle().
			Strikethrough(true).
			Foreground(lipgloss.Color("#888888"))
	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	confirmStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F5A623"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#F5A623")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
	}
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	stats := view.Summarize(m.ws.Tasks(), m.now())
	sections := []string{
		headerStyle.Render("TASKS"),
		statsStyle.Render(fmt.Sprintf(
			"Total %d · Completed %d · Pending %d · Overdue %d · %d%% done",
			stats.Total, stats.Completed, stats.Pending, stats.Overdue, stats.CompletionRate,
		)),
		statsStyle.Render(fmt.Sprintf("Filter: %s · Sort: %s", m.query.Status, m.query.Sort)),
	}
	if m.searching || m.query.Search != "" {
		sections = append(sections, m.search.View())
	}

	sections = append(sections, boxStyle.Render(m.renderList()))

	if m.pendingDelete != nil {
		sections = append(sections, confirmStyle.Render(fmt.Sprintf(
			"Delete %q? This action cannot be undone. (y/n)", m.pendingDelete.Title,
		)))
	} else if n, ok := m.recorder.Last(); ok {
		sections = append(sections, notify.Render(n))
	}
	sections = append(sections, hintStyle.Render(
		"↑/↓ move  space toggle  d delete  / search  f filter  s sort  r refresh  q quit",
	))
	return strings.Join(sections, "\n")
}

func (m *Model) renderList() string {
	switch {
	case m.loading:
		return "Loading tasks..."
	case m.loadErr != nil && len(m.visible) == 0:
		return "Could not load tasks."
	case len(m.visible) == 0:
		return "No tasks found."
	}

	now := m.now()
	lines := make([]string, 0, len(m.visible))
	for i, task := range m.visible {
		lines = append(lines, m.renderTask(task, i == m.cursor, now))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderTask(task *models.Task, selected bool, now time.Time) string {
	check := "[ ]"
	if task.Completed {
		check = "[x]"
	}
	title := task.Title
	if task.Completed {
		title = doneStyle.Render(title)
	}

	due := task.DueDate.String()
	if task.DueTime != "" {
		due += " " + task.DueTime
	}
	if view.IsOverdue(task, now) {
		due = overdueStyle.Render(due + " overdue")
	}

	priority := string(task.Priority)
	if style, ok := priorityStyles[task.Priority]; ok {
		priority = style.Render(priority)
	}

	line := fmt.Sprintf("%s %s  %s  %s", check, title, priority, due)
	if selected {
		return cursorStyle.Render("> ") + line
	}
	return "  " + line
}
