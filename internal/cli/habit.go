package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitflow/internal/chart"
	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List habits."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit and all of its completions."`
	Toggle HabitToggleCmd `cmd:"" help:"Mark or unmark a habit as done for a day."`
	Today  HabitTodayCmd  `cmd:"" help:"Show today's habit status."`
	Chart  HabitChartCmd  `cmd:"" help:"Show completion charts."`
	Log    HabitLogCmd    `cmd:"" help:"Show habit log (ASCII history)."`
	Export HabitExportCmd `cmd:"" help:"Export habits and completions."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Description string `help:"Optional description." default:""`
	Color       string `help:"Hex color from the preset palette (default: first preset)." default:""`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.load(bg); err != nil {
		return err
	}

	habit, err := ctx.Tracker.AddHabit(bg, c.Name, c.Description, c.Color)
	if err != nil {
		return err
	}

	ctx.printf("Added habit: %s\n", habit.Name)
	return nil
}

type HabitListCmd struct{}

func (c *HabitListCmd) Run(ctx *Context) error {
	if err := ctx.load(context.Background()); err != nil {
		return err
	}

	habits := ctx.Tracker.Habits()
	if len(habits) == 0 {
		ctx.printf("No habits yet. Add one with '%s habit add NAME'.\n", constants.AppName)
		return nil
	}

	names := make(map[string]int, len(habits))
	for _, h := range habits {
		names[strings.ToLower(h.Name)]++
	}

	today := ctx.Tracker.Today()
	for _, h := range habits {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(h.Color)).Render("●")
		mark := " "
		if ctx.Tracker.IsCompleted(h.ID, today) {
			mark = "✓"
		}
		line := fmt.Sprintf("%s %s %s", swatch, mark, h.Name)
		if names[strings.ToLower(h.Name)] > 1 {
			line += " (" + h.ID + ")"
		}
		if h.Description != "" {
			line += " - " + h.Description
		}
		ctx.printf("%s\n", line)
	}
	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name or id."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.load(bg); err != nil {
		return err
	}

	habit, err := ctx.findHabit(c.Name)
	if err != nil {
		return err
	}

	if err := ctx.Tracker.DeleteHabit(bg, habit.ID); err != nil {
		return err
	}

	ctx.printf("Deleted habit: %s\n", habit.Name)
	return nil
}

type HabitToggleCmd struct {
	Name string `arg:"" help:"Habit name or id."`
	Date string `help:"Date in YYYY-MM-DD format (default: today)." default:""`
}

func (c *HabitToggleCmd) Run(ctx *Context) error {
	bg := context.Background()
	if err := ctx.load(bg); err != nil {
		return err
	}

	habit, err := ctx.findHabit(c.Name)
	if err != nil {
		return err
	}

	day := c.Date
	if day == "" {
		day = ctx.Tracker.Today()
	}

	done, err := ctx.Tracker.Toggle(bg, habit.ID, day)
	if err != nil {
		return err
	}

	if done {
		ctx.printf("Marked habit %q for %s\n", habit.Name, day)
	} else {
		ctx.printf("Unmarked habit %q for %s\n", habit.Name, day)
	}
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *Context) error {
	if err := ctx.load(context.Background()); err != nil {
		return err
	}

	habits := ctx.Tracker.Habits()
	if len(habits) == 0 {
		ctx.printf("No habits yet.\n")
		return nil
	}

	today := ctx.Tracker.Today()
	ctx.printf("Habits for %s:\n\n", today)
	for _, h := range habits {
		status := "[ ]"
		if ctx.Tracker.IsCompleted(h.ID, today) {
			status = "[x]"
		}
		ctx.printf("%s %s\n", status, h.Name)
	}

	ctx.printf("\nRecorded: %d/%d\n", ctx.Tracker.TodaysCompletedCount(), len(habits))
	ctx.printf("%s\n", chart.Stats(len(habits), len(ctx.Tracker.Completions())))
	return nil
}

type HabitChartCmd struct {
	View  string `help:"Chart window: week, month or six-month." default:"week" enum:"week,month,six-month"`
	Date  string `help:"Reference date in YYYY-MM-DD format (default: today)." default:""`
	Width int    `help:"Bar width in cells." default:"28"`
}

func (c *HabitChartCmd) Run(ctx *Context) error {
	view, err := chart.ParseView(c.View)
	if err != nil {
		return err
	}
	if c.Width < 1 {
		return apperrors.Validation("width", "must be at least 1")
	}
	if err := ctx.load(context.Background()); err != nil {
		return err
	}

	if len(ctx.Tracker.Habits()) == 0 {
		ctx.printf("Add some habits to see your progress charts.\n")
		return nil
	}

	var bars []chart.Bar
	switch view {
	case chart.Month:
		buckets, err := ctx.Tracker.MonthlyBuckets(c.Date)
		if err != nil {
			return err
		}
		bars = chart.MonthlyBars(buckets)
	case chart.SixMonths:
		buckets, err := ctx.Tracker.SixMonthBuckets(c.Date)
		if err != nil {
			return err
		}
		bars = chart.SixMonthBars(buckets)
	default:
		buckets, err := ctx.Tracker.WeeklyBuckets(c.Date)
		if err != nil {
			return err
		}
		bars = chart.WeeklyBars(buckets)
	}

	ctx.printf("%s\n\n%s\n", view.Title(), chart.Render(bars, c.Width, constants.DefaultColor()))
	if view != chart.SixMonths {
		ctx.printf("\n%s\n", chart.Summary(bars))
	}
	ctx.printf("\n%s\n", chart.Stats(len(ctx.Tracker.Habits()), len(ctx.Tracker.Completions())))
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"${log_days}"`
	Habit string `help:"Show log for specific habit only."`
}

const logNameWidth = 20

func (c *HabitLogCmd) Run(ctx *Context) error {
	if c.Days < 1 {
		return apperrors.Validation("days", "must be at least 1")
	}
	if err := ctx.load(context.Background()); err != nil {
		return err
	}

	habits := ctx.Tracker.Habits()
	if c.Habit != "" {
		h, err := ctx.findHabit(c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	}
	if len(habits) == 0 {
		ctx.printf("No habits yet.\n")
		return nil
	}

	end, err := utils.ParseDay(ctx.Tracker.Today())
	if err != nil {
		return err
	}
	start := end.AddDate(0, 0, -(c.Days - 1))

	var b strings.Builder
	fmt.Fprintf(&b, "Habit log (last %d days):\n\n", c.Days)
	b.WriteString(padName("Habit"))
	for i := 0; i < c.Days; i++ {
		fmt.Fprintf(&b, " %5s", start.AddDate(0, 0, i).Format("01/02"))
	}
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", logNameWidth+6*c.Days))
	b.WriteString("\n")

	for _, h := range habits {
		b.WriteString(padName(h.Name))
		for i := 0; i < c.Days; i++ {
			if ctx.Tracker.IsCompleted(h.ID, utils.FormatDay(start.AddDate(0, 0, i))) {
				b.WriteString("   x  ")
			} else {
				b.WriteString("   .  ")
			}
		}
		b.WriteString("\n")
	}

	ctx.printf("%s", b.String())
	return nil
}

// padName truncates or pads a habit name to the log column width.
func padName(name string) string {
	runes := []rune(name)
	if len(runes) > logNameWidth {
		return string(runes[:logNameWidth-3]) + "..."
	}
	return name + strings.Repeat(" ", logNameWidth-len(runes))
}
