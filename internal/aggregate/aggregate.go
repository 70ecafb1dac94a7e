// Package aggregate derives the chart buckets shown for a set of habits and
// their completions. Every function here is pure: the same inputs always
// produce the same buckets, and only the civil date of the reference time is
// used.
package aggregate

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/utils"
)

// dayIndex maps a civil day to the distinct known habits completed on it.
// Completions referencing habits outside the given set are ignored.
type dayIndex map[string]map[string]struct{}

func buildIndex(habits []models.Habit, completions []models.Completion) dayIndex {
	known := make(map[string]struct{}, len(habits))
	for _, h := range habits {
		known[h.ID] = struct{}{}
	}

	idx := make(dayIndex)
	for _, c := range completions {
		if _, ok := known[c.HabitID]; !ok {
			continue
		}
		if idx[c.Day] == nil {
			idx[c.Day] = make(map[string]struct{})
		}
		idx[c.Day][c.HabitID] = struct{}{}
	}
	return idx
}

func (idx dayIndex) count(day string) int {
	return len(idx[day])
}

// Weekly returns the seven days of the ISO week containing ref, Monday first.
func Weekly(habits []models.Habit, completions []models.Completion, ref time.Time) []models.DayBucket {
	idx := buildIndex(habits, completions)
	start := utils.WeekStart(ref)

	buckets := make([]models.DayBucket, 0, constants.DaysPerWeek)
	for i := 0; i < constants.DaysPerWeek; i++ {
		d := start.AddDate(0, 0, i)
		day := utils.FormatDay(d)
		buckets = append(buckets, models.DayBucket{
			Date:           day,
			Label:          d.Format("Mon"),
			CompletedCount: idx.count(day),
			TotalHabits:    len(habits),
		})
	}
	return buckets
}

// Monthly returns the ISO week containing ref and the three before it,
// oldest first. Each bucket's total is the most completions the week could hold.
func Monthly(habits []models.Habit, completions []models.Completion, ref time.Time) []models.WeekBucket {
	idx := buildIndex(habits, completions)
	current := utils.WeekStart(ref)

	buckets := make([]models.WeekBucket, 0, constants.MonthlyWeeks)
	for w := constants.MonthlyWeeks - 1; w >= 0; w-- {
		start := current.AddDate(0, 0, -7*w)
		completed := 0
		for i := 0; i < constants.DaysPerWeek; i++ {
			completed += idx.count(utils.FormatDay(start.AddDate(0, 0, i)))
		}
		buckets = append(buckets, models.WeekBucket{
			Label:          fmt.Sprintf("Week %d", constants.MonthlyWeeks-w),
			Start:          utils.FormatDay(start),
			End:            utils.FormatDay(start.AddDate(0, 0, constants.DaysPerWeek-1)),
			CompletedCount: completed,
			TotalHabits:    len(habits) * constants.DaysPerWeek,
		})
	}
	return buckets
}

// SixMonth returns the month of ref and the five before it, oldest first,
// each holding the raw number of completions in that calendar month.
func SixMonth(habits []models.Habit, completions []models.Completion, ref time.Time) []models.MonthBucket {
	idx := buildIndex(habits, completions)

	perMonth := make(map[string]int)
	for day, done := range idx {
		if len(day) != len(constants.DateFormat) {
			continue
		}
		perMonth[day[:7]] += len(done)
	}

	first := utils.MonthStart(ref)
	buckets := make([]models.MonthBucket, 0, constants.SixMonthMonths)
	for i := constants.SixMonthMonths - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		key := m.Format("2006-01")
		buckets = append(buckets, models.MonthBucket{
			Label:          m.Format("Jan"),
			Month:          key,
			CompletedCount: perMonth[key],
		})
	}
	return buckets
}

// Percent returns completed/total as a whole percentage, or 0 when total is 0.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return completed * 100 / total
}
