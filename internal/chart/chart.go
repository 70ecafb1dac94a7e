// Package chart renders completion buckets as horizontal lipgloss bars.
package chart

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitflow/internal/aggregate"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
)

// View selects one of the three aggregation windows.
type View int

const (
	Week View = iota
	Month
	SixMonths
)

// Views lists every view in tab order.
var Views = []View{Week, Month, SixMonths}

func (v View) Title() string {
	switch v {
	case Month:
		return "Monthly"
	case SixMonths:
		return "6 Months"
	default:
		return "This Week"
	}
}

// Next cycles to the following tab.
func (v View) Next() View {
	return Views[(int(v)+1)%len(Views)]
}

// ParseView accepts the --view flag values.
func ParseView(s string) (View, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "week", "weekly":
		return Week, nil
	case "month", "monthly":
		return Month, nil
	case "six-month", "six-months", "6m", "sixmonth":
		return SixMonths, nil
	}
	return Week, apperrors.Validation("view", fmt.Sprintf("%q is not one of week, month, six-month", s))
}

// Bar is one labelled row of a chart. Max is the most the row could hold;
// rows without a natural maximum leave it 0 and are drawn against Scale.
type Bar struct {
	Label string
	Value int
	Max   int
	Scale int
}

func (b Bar) denominator() int {
	if b.Max > 0 {
		return b.Max
	}
	return b.Scale
}

const (
	fullCell  = "█"
	emptyCell = "░"
)

var (
	labelStyle = lipgloss.NewStyle().Width(7).Foreground(lipgloss.Color("245"))
	emptyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(1)
)

// Cells returns how many of width cells a bar of value/max fills. Any
// non-zero value fills at least one cell.
func Cells(value, max, width int) int {
	if value <= 0 || max <= 0 || width <= 0 {
		return 0
	}
	if value >= max {
		return width
	}
	n := value * width / max
	if n == 0 {
		n = 1
	}
	return n
}

// Render draws one line per bar, filled with color.
func Render(bars []Bar, width int, color string) string {
	if width < 1 {
		width = 1
	}
	fill := lipgloss.NewStyle().Foreground(lipgloss.Color(color))

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		n := Cells(b.Value, b.denominator(), width)
		value := fmt.Sprintf("%d", b.Value)
		if b.Max > 0 {
			value = fmt.Sprintf("%d/%d", b.Value, b.Max)
		}
		lines = append(lines, labelStyle.Render(b.Label)+
			fill.Render(strings.Repeat(fullCell, n))+
			emptyStyle.Render(strings.Repeat(emptyCell, width-n))+
			valueStyle.Render(value))
	}
	return strings.Join(lines, "\n")
}

func WeeklyBars(buckets []models.DayBucket) []Bar {
	bars := make([]Bar, len(buckets))
	for i, b := range buckets {
		bars[i] = Bar{Label: b.Label, Value: b.CompletedCount, Max: b.TotalHabits}
	}
	return bars
}

func MonthlyBars(buckets []models.WeekBucket) []Bar {
	bars := make([]Bar, len(buckets))
	for i, b := range buckets {
		bars[i] = Bar{Label: strings.Replace(b.Label, "Week ", "Wk ", 1), Value: b.CompletedCount, Max: b.TotalHabits}
	}
	return bars
}

// SixMonthBars scales every month against the busiest one.
func SixMonthBars(buckets []models.MonthBucket) []Bar {
	peak := 0
	for _, b := range buckets {
		peak = max(peak, b.CompletedCount)
	}
	bars := make([]Bar, len(buckets))
	for i, b := range buckets {
		bars[i] = Bar{Label: b.Label, Value: b.CompletedCount, Scale: peak}
	}
	return bars
}

// Summary returns the overall completion rate of a week or month view.
func Summary(bars []Bar) string {
	done, total := 0, 0
	for _, b := range bars {
		done += b.Value
		total += b.Max
	}
	return fmt.Sprintf("%d%% complete (%d/%d)", aggregate.Percent(done, total), done, total)
}

// Stats is the dashboard footer: habits being tracked and completions ever
// recorded.
func Stats(habits, completions int) string {
	return fmt.Sprintf("Active Habits: %d   Total Completions: %d", habits, completions)
}
