// Package tui provides the interactive terminal interface.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todo/internal/service"
	"todo/internal/store"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	pendingStyle = lipgloss.NewStyle().Italic(true).Faint(true)
	footerStyle  = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// snapshotMsg carries a store state change.
type snapshotMsg store.Snapshot

// doneMsg reports the outcome of a store action.
type doneMsg struct {
	action string
	err    error
}

// Model is the bubbletea model. State comes from a store subscription;
// key presses start store actions whose effects arrive as snapshots.
type Model struct {
	ctx    context.Context
	st     *store.Store
	snaps  <-chan store.Snapshot
	snap   store.Snapshot
	cursor int
	mode   mode
	editID string
	input  textinput.Model
	status string
	failed bool
}

// New creates a model over st. snaps should come from st.Subscribe.
func New(ctx context.Context, st *store.Store, snaps <-chan store.Snapshot) Model {
	ti := textinput.New()
	ti.Placeholder = "What needs to be done?"
	ti.CharLimit = 256
	ti.Width = 50

	return Model{
		ctx:    ctx,
		st:     st,
		snaps:  snaps,
		snap:   st.Snapshot(),
		input:  ti,
		status: "Press 'a' to add, space to toggle, 'd' to delete.",
	}
}

// Run starts the interface on the given terminal streams and blocks until
// the user quits or ctx is cancelled.
func Run(ctx context.Context, st *store.Store, in io.Reader, out io.Writer) error {
	snaps, cancel := st.Subscribe()
	defer cancel()

	program := tea.NewProgram(New(ctx, st, snaps),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	_, err := program.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.snaps)
}

func waitForSnapshot(ch <-chan store.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(snap)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snap = store.Snapshot(msg)
		m.cursor = clampCursor(m.cursor, len(m.visible()))
		return m, waitForSnapshot(m.snaps)
	case doneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
			m.failed = true
		} else {
			m.status = msg.action + " ok"
			m.failed = false
		}
		return m, nil
	case tea.WindowSizeMsg:
		m.input.Width = max(msg.Width-10, 10)
		return m, nil
	case tea.KeyMsg:
		if m.mode != modeList {
			return m.updateInputMode(msg)
		}
		return m.updateListMode(msg.String())
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	tasks := m.visible()

	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(tasks))
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(tasks))
	case "a":
		m.mode = modeAdd
		m.input.SetValue("")
		return m, m.input.Focus()
	case "e":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.editID = t.ID
		m.input.SetValue(t.Title)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case " ", "x":
		if t, ok := m.selected(); ok {
			return m, m.run("toggle", func(ctx context.Context) error {
				return m.st.Toggle(ctx, t.ID)
			})
		}
	case "d":
		if t, ok := m.selected(); ok {
			return m, m.run("delete", func(ctx context.Context) error {
				return m.st.Remove(ctx, t.ID)
			})
		}
	case "c":
		return m, m.run("clear completed", m.st.ClearCompleted)
	case "r":
		return m, m.run("reload", m.st.Load)
	case "f", "tab":
		m.setFilter(nextFilter(m.snap.Filter))
	case "1":
		m.setFilter(service.FilterAll)
	case "2":
		m.setFilter(service.FilterActive)
	case "3":
		m.setFilter(service.FilterCompleted)
	}
	return m, nil
}

func (m Model) updateInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveInput()
		m.status = "Cancelled"
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.status = "Title cannot be empty"
			m.failed = true
			return m, nil
		}
		editing, id := m.mode == modeEdit, m.editID
		m.leaveInput()
		if editing {
			return m, m.run("edit", func(ctx context.Context) error {
				return m.st.Update(ctx, id, service.SetTitle(title))
			})
		}
		return m, m.run("add", func(ctx context.Context) error {
			_, err := m.st.Add(ctx, title)
			return err
		})
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) leaveInput() {
	m.mode = modeList
	m.editID = ""
	m.input.SetValue("")
	m.input.Blur()
}

func (m *Model) setFilter(f service.Filter) {
	m.st.SetFilter(f)
	m.snap = m.st.Snapshot()
	m.cursor = clampCursor(m.cursor, len(m.visible()))
}

// run starts a store action in the background. Its state changes arrive
// through the subscription; only the outcome is reported here.
func (m Model) run(action string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return doneMsg{action: action, err: fn(ctx)}
	}
}

func (m Model) visible() []service.Task {
	return m.snap.Filtered()
}

func (m Model) selected() (service.Task, bool) {
	tasks := m.visible()
	if m.cursor < 0 || m.cursor >= len(tasks) {
		return service.Task{}, false
	}
	return tasks[m.cursor], true
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("todos"))
	b.WriteString("\n\n")

	tasks := m.visible()
	if len(tasks) == 0 {
		b.WriteString("No tasks. Press 'a' to add one.\n")
	}
	for i, t := range tasks {
		b.WriteString(m.renderTask(i, t))
		b.WriteString("\n")
	}

	if m.mode != modeList {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	c := m.snap.Counts
	b.WriteString(footerStyle.Render(fmt.Sprintf("%d left • %d completed • filter: %s", c.Active, c.Completed, m.snap.Filter)))
	b.WriteString("\n")
	if m.status != "" {
		if m.failed {
			b.WriteString(errorStyle.Render(m.status))
		} else {
			b.WriteString(m.status)
		}
		b.WriteString("\n")
	}
	b.WriteString(footerStyle.Render("j/k move • a add • e edit • space toggle • d delete • c clear • f filter • r reload • q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTask(i int, t service.Task) string {
	cursor := " "
	if i == m.cursor && m.mode == modeList {
		cursor = cursorStyle.Render(">")
	}
	box := "[ ]"
	title := t.Title
	switch {
	case store.IsTemp(t.ID):
		title = pendingStyle.Render(title)
	case t.Completed:
		box = "[x]"
		title = doneStyle.Render(title)
	}
	return fmt.Sprintf("%s %s %s", cursor, box, title)
}

func nextFilter(f service.Filter) service.Filter {
	switch f {
	case service.FilterAll:
		return service.FilterActive
	case service.FilterActive:
		return service.FilterCompleted
	default:
		return service.FilterAll
	}
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
