package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitflow/internal/chart"
	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/tracker"
	"github.com/julianstephens/habitflow/internal/tui/components/habits"
)

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func newTestModel(t *testing.T, names ...string) (Model, *tracker.Tracker) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "habits.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	tr := tracker.New("tester", store,
		tracker.WithClock(func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }),
		tracker.WithLocation(time.UTC),
	)
	for _, name := range names {
		if _, err := tr.AddHabit(context.Background(), name, "", ""); err != nil {
			t.Fatalf("AddHabit(%q) failed: %v", name, err)
		}
	}

	m, _ := update(t, NewModel(tr), tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, tr
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

// follow runs cmd and feeds its message back into the model.
func follow(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return update(t, m, cmd())
}

func TestHeaderShowsProgress(t *testing.T) {
	m, _ := newTestModel(t, "Exercise", "Read")

	view := m.View()
	for _, want := range []string{"HabitFlow", "Friday, March 1, 2024", "0/2 completed", "Exercise", "Read", "Active Habits: 2   Total Completions: 0"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestToggleSelectedHabit(t *testing.T) {
	m, tr := newTestModel(t, "Exercise")
	id := tr.Habits()[0].ID

	m, cmd := update(t, m, keyEnter)
	m, cmd = follow(t, m, cmd) // ToggleHabitMsg
	m, _ = follow(t, m, cmd)   // syncDoneMsg

	if !tr.IsCompleted(id, "2024-03-01") {
		t.Fatal("expected habit to be completed today")
	}
	if !strings.Contains(m.View(), "1/1 completed") {
		t.Error("expected header to show 1/1 completed")
	}
	if !strings.Contains(m.View(), "Total Completions: 1") {
		t.Error("expected stats to count the new completion")
	}

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, cmd = follow(t, m, cmd)
	m, _ = follow(t, m, cmd)
	if tr.IsCompleted(id, "2024-03-01") {
		t.Error("expected second toggle to clear the completion")
	}
}

func TestToggleShowsBeforeRoundTrip(t *testing.T) {
	m, tr := newTestModel(t, "Exercise")
	id := tr.Habits()[0].ID

	m, cmd := update(t, m, keyEnter)
	m, cmd = follow(t, m, cmd) // ToggleHabitMsg; the round trip has not run yet

	if tr.IsCompleted(id, "2024-03-01") {
		t.Fatal("tracker should not have recorded the completion yet")
	}
	view := m.View()
	if !strings.Contains(view, "1/1 completed") || strings.Contains(view, "not completed today") {
		t.Errorf("expected the pending toggle to show as done:\n%s", view)
	}

	m, _ = follow(t, m, cmd)
	if !tr.IsCompleted(id, "2024-03-01") || !strings.Contains(m.View(), "1/1 completed") {
		t.Error("expected the completion to stay after the round trip")
	}
}

func TestFailedToggleFallsBackToTracker(t *testing.T) {
	m, tr := newTestModel(t, "Exercise")
	id := tr.Habits()[0].ID

	m, _ = update(t, m, habits.ToggleHabitMsg{ID: id})
	if !strings.Contains(m.View(), "1/1 completed") {
		t.Fatal("expected the pending toggle to show as done")
	}

	m, _ = update(t, m, syncDoneMsg{op: "toggle", habitID: id, err: context.DeadlineExceeded})
	view := m.View()
	if !strings.Contains(view, "0/1 completed") || !strings.Contains(view, "not completed today") {
		t.Errorf("expected the row to return to the tracker's state:\n%s", view)
	}
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	m, tr := newTestModel(t, "Exercise")

	m, cmd := update(t, m, runeKey('d'))
	m, _ = follow(t, m, cmd)
	if m.state != constants.StateConfirmDelete {
		t.Fatalf("state = %v, want confirm delete", m.state)
	}
	if !strings.Contains(m.View(), `Delete "Exercise"`) {
		t.Error("expected confirmation prompt")
	}

	m, _ = update(t, m, runeKey('n'))
	if m.state != constants.StateHabits || len(tr.Habits()) != 1 {
		t.Fatalf("expected cancel to keep the habit (state %v, %d habits)", m.state, len(tr.Habits()))
	}

	m, cmd = update(t, m, runeKey('d'))
	m, _ = follow(t, m, cmd)
	m, cmd = update(t, m, runeKey('y'))
	m, _ = follow(t, m, cmd)

	if len(tr.Habits()) != 0 {
		t.Fatalf("expected habit to be deleted, %d left", len(tr.Habits()))
	}
	if !strings.Contains(m.View(), "Add some habits to see your progress charts") {
		t.Error("expected empty chart state")
	}
}

func TestTabCyclesCharts(t *testing.T) {
	m, _ := newTestModel(t, "Exercise")

	want := []chart.View{chart.Month, chart.SixMonths, chart.Week}
	for _, v := range want {
		m, _ = update(t, m, keyTab)
		if m.view != v {
			t.Fatalf("view = %v, want %v", m.view, v)
		}
	}

	m, _ = update(t, m, keyTab)
	if !strings.Contains(m.View(), "Wk 1") {
		t.Error("expected monthly chart labels")
	}
}

func TestNoticeSetsStatus(t *testing.T) {
	m, _ := newTestModel(t, "Exercise")

	m, _ = update(t, m, NoticeMsg{Level: tracker.NoticeError, Title: "Failed to update habit", Message: "Exercise could not be marked done."})
	view := m.View()
	if !strings.Contains(view, "Failed to update habit") || !strings.Contains(view, "could not be marked done") {
		t.Error("expected error notice in status line")
	}

	m, _ = update(t, m, NoticeMsg{Level: tracker.NoticeSuccess, Title: "Habit created!"})
	if !strings.Contains(m.View(), "✓ Habit created!") {
		t.Error("expected success notice in status line")
	}
}

func TestLocalErrorsReachStatus(t *testing.T) {
	m, _ := newTestModel(t, "Exercise")

	m, _ = update(t, m, syncDoneMsg{op: "toggle", err: context.DeadlineExceeded})
	if !strings.Contains(m.View(), "Could not toggle") {
		t.Error("expected local error in status line")
	}
}

func TestAddHabitDialog(t *testing.T) {
	m, tr := newTestModel(t)

	m, cmd := update(t, m, runeKey('a'))
	m, _ = follow(t, m, cmd)
	if m.state != constants.StateAddHabit {
		t.Fatalf("state = %v, want add habit", m.state)
	}
	if m.habitForm.Color != constants.DefaultColor() {
		t.Errorf("form color = %q, want default preset", m.habitForm.Color)
	}

	m, _ = update(t, m, keyEsc)
	if m.state != constants.StateHabits {
		t.Fatalf("esc should close the dialog, state = %v", m.state)
	}

	m, _ = update(t, m, addCmd(tr, HabitFormModel{Name: "Read", Color: "#3B82F6"})())
	if len(tr.Habits()) != 1 || tr.Habits()[0].Color != "#3B82F6" {
		t.Fatalf("unexpected habits: %+v", tr.Habits())
	}
	if !strings.Contains(m.View(), "Read") {
		t.Error("expected new habit in list")
	}
}

func TestAddHabitValidationError(t *testing.T) {
	m, tr := newTestModel(t)

	m, _ = update(t, m, addCmd(tr, HabitFormModel{Name: "Read", Color: "#123456"})())
	if len(tr.Habits()) != 0 {
		t.Fatal("expected invalid color to be rejected")
	}
	if !strings.Contains(m.View(), "Could not add") {
		t.Error("expected validation error in status line")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)

	m, cmd := update(t, m, runeKey('q'))
	if cmd == nil || !m.quitting {
		t.Fatal("expected quit")
	}
	if m.View() != "" {
		t.Error("expected empty view after quit")
	}
}

func TestHabitMessagesFromList(t *testing.T) {
	m, tr := newTestModel(t, "Exercise")
	h := tr.Habits()[0]

	m, _ = update(t, m, habits.DeleteHabitMsg{ID: h.ID, Name: h.Name})
	if m.habitToDeleteID != h.ID {
		t.Errorf("habitToDeleteID = %q, want %q", m.habitToDeleteID, h.ID)
	}
}
