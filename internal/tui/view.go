package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitflow/internal/chart"
	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/tracker"
	"github.com/julianstephens/habitflow/internal/utils"
)

const (
	minListWidth  = 28
	minChartWidth = 10
	// header, status line, help and panel borders
	chromeHeight = 8
)

func (m Model) listWidth() int {
	return max(minListWidth, m.width*2/5)
}

func (m Model) bodyHeight() int {
	return max(4, m.height-chromeHeight)
}

// chartWidth is the number of bar cells that fit beside the habit list.
func (m Model) chartWidth() int {
	if m.width == 0 {
		return 20
	}
	// label column, value column, border and padding
	return max(minChartWidth, m.width-m.listWidth()-22)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateAddHabit:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	default:
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(m.listWidth()).Render(m.habitsModel.View()),
			m.viewChart(),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m.keys),
	)
}

func (m Model) viewHeader() string {
	today := m.tracker.Today()
	date := today
	if t, err := utils.ParseDay(today); err == nil {
		date = t.Format("Monday, January 2, 2006")
	}
	progress := fmt.Sprintf("%d/%d completed", m.doneCount(), len(m.tracker.Habits()))
	return docStyle.Render(titleStyle.Render("HabitFlow") + "  " + subtleStyle.Render(date) + "  " + progress)
}

func (m Model) viewTabs() string {
	tabs := make([]string, 0, len(chart.Views))
	for _, v := range chart.Views {
		if v == m.view {
			tabs = append(tabs, activeTabStyle.Render(v.Title()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(v.Title()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewChart() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, m.viewTabs(), "", m.chartBody())),
		m.viewStats(),
	)
}

func (m Model) viewStats() string {
	return docStyle.Render(subtleStyle.Render(chart.Stats(len(m.tracker.Habits()), len(m.tracker.Completions()))))
}

func (m Model) chartBody() string {
	if len(m.tracker.Habits()) == 0 {
		return subtleStyle.Render("Add some habits to see your progress charts")
	}

	var bars []chart.Bar
	switch m.view {
	case chart.Month:
		buckets, err := m.tracker.MonthlyBuckets("")
		if err != nil {
			return dangerStyle.Render(err.Error())
		}
		bars = chart.MonthlyBars(buckets)
	case chart.SixMonths:
		buckets, err := m.tracker.SixMonthBuckets("")
		if err != nil {
			return dangerStyle.Render(err.Error())
		}
		bars = chart.SixMonthBars(buckets)
	default:
		buckets, err := m.tracker.WeeklyBuckets("")
		if err != nil {
			return dangerStyle.Render(err.Error())
		}
		bars = chart.WeeklyBars(buckets)
	}

	body := chart.Render(bars, m.chartWidth(), constants.DefaultColor())
	if m.view != chart.SixMonths {
		body += "\n\n" + subtleStyle.Render(chart.Summary(bars))
	}
	return body
}

func (m Model) viewStatus() string {
	if !m.hasStatus {
		return ""
	}
	if m.status.Level == tracker.NoticeError {
		return docStyle.Render(dangerStyle.Render("✗ "+m.status.Title) + " " + m.status.Message)
	}
	return docStyle.Render(successStyle.Render("✓ "+m.status.Title) + " " + m.status.Message)
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, m.bodyHeight(),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete %q and all of its history?", m.habitToDeleteName)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
