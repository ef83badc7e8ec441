package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"todo/internal/service"
	"todo/internal/store"
	"todo/internal/testutil"
)

func newModel(t *testing.T, titles ...string) (Model, *store.Store, *testutil.FakeService) {
	t.Helper()
	fake := testutil.NewFakeService()
	fake.Seed(titles...)
	st := store.New(fake)
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	snaps, cancel := st.Subscribe()
	t.Cleanup(cancel)
	return New(context.Background(), st, snaps), st, fake
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// press sends msg and discards any command.
func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// act sends msg, runs the store action it starts, and feeds the outcome
// and the resulting state back into the model.
func act(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("expected an action for %v", msg)
	}
	done, ok := cmd().(doneMsg)
	if !ok {
		t.Fatalf("expected doneMsg for %v", msg)
	}
	m = press(t, m, done)
	return press(t, m, snapshotMsg(m.st.Snapshot()))
}

func TestToggleSelected(t *testing.T) {
	m, st, fake := newModel(t, "walk dog", "buy milk")

	m = act(t, m, key(" "))

	// Cursor starts on the newest task.
	got, _ := st.Find("task-2")
	if !got.Completed {
		t.Errorf("expected task-2 completed, got %+v", got)
	}
	if fake.Stored()[0].Completed != true {
		t.Error("expected backend update")
	}
	if !strings.Contains(m.View(), "[x]") {
		t.Errorf("expected completed box in view:\n%s", m.View())
	}
}

func TestCursorMovesAndDeletes(t *testing.T) {
	m, st, _ := newModel(t, "a", "b", "c")

	m = press(t, m, key("j"))
	m = press(t, m, key("j"))
	m = press(t, m, key("j")) // clamped at the last task
	m = act(t, m, key("d"))

	tasks := st.Tasks()
	if len(tasks) != 2 || tasks[0].Title != "c" || tasks[1].Title != "b" {
		t.Errorf("expected oldest task deleted, got %+v", tasks)
	}
	if m.cursor != 1 {
		t.Errorf("expected cursor clamped to 1, got %d", m.cursor)
	}
}

func TestAddTask(t *testing.T) {
	m, st, _ := newModel(t)

	m = press(t, m, key("a"))
	if m.mode != modeAdd {
		t.Fatalf("expected add mode")
	}
	m = press(t, m, key("buy milk"))
	m = act(t, m, key("enter"))

	if m.mode != modeList {
		t.Error("expected list mode after enter")
	}
	tasks := st.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "buy milk" {
		t.Errorf("expected added task, got %+v", tasks)
	}
	if !strings.Contains(m.View(), "buy milk") {
		t.Errorf("expected task in view:\n%s", m.View())
	}
}

func TestAddEmptyTitle(t *testing.T) {
	m, _, fake := newModel(t)

	m = press(t, m, key("a"))
	m = press(t, m, key("enter"))

	if m.mode != modeAdd {
		t.Error("expected to stay in add mode")
	}
	if !strings.Contains(m.View(), "Title cannot be empty") {
		t.Errorf("expected validation message:\n%s", m.View())
	}
	if fake.CallCount("Create") != 0 {
		t.Error("expected no backend call")
	}
}

func TestEditTask(t *testing.T) {
	m, st, _ := newModel(t, "old")

	m = press(t, m, key("e"))
	if m.input.Value() != "old" {
		t.Fatalf("expected input prefilled, got %q", m.input.Value())
	}
	m = press(t, m, key(" new"))
	act(t, m, key("enter"))

	if got, _ := st.Find("task-1"); got.Title != "old new" {
		t.Errorf("expected edited title, got %q", got.Title)
	}
}

func TestEscCancelsInput(t *testing.T) {
	m, _, fake := newModel(t)

	m = press(t, m, key("a"))
	m = press(t, m, key("x"))
	m = press(t, m, key("esc"))

	if m.mode != modeList || m.input.Value() != "" {
		t.Errorf("expected reset list mode, got mode=%d input=%q", m.mode, m.input.Value())
	}
	if fake.CallCount("Create") != 0 {
		t.Error("expected no backend call")
	}
}

func TestFilterKeys(t *testing.T) {
	m, st, fake := newModel(t, "a", "b")
	fake.SetCompleted("task-1", true)
	if err := st.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	m = press(t, m, key("f"))
	if st.Filter() != service.FilterActive || len(m.visible()) != 1 {
		t.Errorf("expected active filter, got %s with %d visible", st.Filter(), len(m.visible()))
	}
	m = press(t, m, key("f"))
	if st.Filter() != service.FilterCompleted || m.visible()[0].ID != "task-1" {
		t.Errorf("expected completed filter, got %s", st.Filter())
	}
	m = press(t, m, key("1"))
	if st.Filter() != service.FilterAll || len(m.visible()) != 2 {
		t.Errorf("expected all filter, got %s", st.Filter())
	}
}

func TestFailedActionShowsError(t *testing.T) {
	m, st, fake := newModel(t, "keep")
	fake.RemoveErr = errors.New("server unavailable")

	m = act(t, m, key("d"))

	if !strings.Contains(m.View(), "delete failed: server unavailable") {
		t.Errorf("expected error in view:\n%s", m.View())
	}
	if len(st.Tasks()) != 1 {
		t.Error("expected task restored after failed delete")
	}
}

func TestSnapshotUpdatesView(t *testing.T) {
	m, st, _ := newModel(t)

	if _, err := st.Add(context.Background(), "from elsewhere"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	// The subscription channel holds the latest state.
	next, cmd := m.Update(waitForSnapshot(m.snaps)())
	m = next.(Model)
	if cmd == nil {
		t.Error("expected to keep listening for snapshots")
	}
	if !strings.Contains(m.View(), "from elsewhere") {
		t.Errorf("expected subscribed change in view:\n%s", m.View())
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newModel(t)

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
