// Package tui is the bubbletea dashboard: today's habits on the left, the
// completion charts on the right and a status line for tracker notices.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitflow/internal/chart"
	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/tracker"
	"github.com/julianstephens/habitflow/internal/tui/components/habits"
)

// NoticeMsg carries a tracker notice into the update loop.
type NoticeMsg tracker.Notice

// syncDoneMsg reports the end of a tracker round trip started by the model.
type syncDoneMsg struct {
	op      string
	habitID string
	err     error
}

type HabitFormModel struct {
	Name        string
	Description string
	Color       string
}

type Model struct {
	tracker *tracker.Tracker

	state       constants.SessionState
	keys        KeyMap
	help        help.Model
	habitsModel habits.Model
	view        chart.View

	form      *huh.Form
	habitForm *HabitFormModel

	habitToDeleteID   string
	habitToDeleteName string

	// today's state shown for habits whose toggle is still in flight
	expected map[string]bool
	inFlight map[string]int

	status    tracker.Notice
	hasStatus bool

	quitting bool
	width    int
	height   int
}

func NewModel(t *tracker.Tracker) Model {
	m := Model{
		tracker:  t,
		state:    constants.StateHabits,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		view:     chart.Week,
		expected: make(map[string]bool),
		inFlight: make(map[string]int),
	}
	m.habitsModel = habits.New(t.Habits(), m.doneToday(), 0, 0)
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// doneToday maps habit ids to whether they are completed today.
func (m Model) doneToday() map[string]bool {
	today := m.tracker.Today()
	done := make(map[string]bool)
	for _, h := range m.tracker.Habits() {
		done[h.ID] = m.tracker.IsCompleted(h.ID, today)
		if want, ok := m.expected[h.ID]; ok {
			done[h.ID] = want
		}
	}
	return done
}

func (m Model) doneCount() int {
	n := 0
	for _, ok := range m.doneToday() {
		if ok {
			n++
		}
	}
	return n
}

// startToggle shows the flipped state right away. finishToggle hands the row
// back to the tracker once the last pending toggle for it returns.
func (m *Model) startToggle(habitID string) {
	m.expected[habitID] = !m.doneToday()[habitID]
	m.inFlight[habitID]++
	m.refresh()
}

func (m *Model) finishToggle(habitID string) {
	if m.inFlight[habitID] <= 1 {
		delete(m.inFlight, habitID)
		delete(m.expected, habitID)
		return
	}
	m.inFlight[habitID]--
}

// refresh rebuilds the habit rows from the tracker.
func (m *Model) refresh() {
	m.habitsModel.SetHabits(m.tracker.Habits(), m.doneToday())
}

func (m *Model) setStatus(n tracker.Notice) {
	m.status = n
	m.hasStatus = true
}

func toggleCmd(t *tracker.Tracker, habitID string) tea.Cmd {
	return func() tea.Msg {
		_, err := t.Toggle(context.Background(), habitID, t.Today())
		return syncDoneMsg{op: "toggle", habitID: habitID, err: err}
	}
}

func deleteCmd(t *tracker.Tracker, habitID string) tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg{op: "delete", err: t.DeleteHabit(context.Background(), habitID)}
	}
}

func addCmd(t *tracker.Tracker, fm HabitFormModel) tea.Cmd {
	return func() tea.Msg {
		_, err := t.AddHabit(context.Background(), fm.Name, fm.Description, fm.Color)
		return syncDoneMsg{op: "add", err: err}
	}
}
