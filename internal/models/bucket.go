package models

// DayBucket is one day of the weekly view.
type DayBucket struct {
	Date           string `json:"date"`
	Label          string `json:"label"`
	CompletedCount int    `json:"completed"`
	TotalHabits    int    `json:"total"`
}

// WeekBucket is one ISO week (Monday to Sunday) of the monthly view.
type WeekBucket struct {
	Label          string `json:"label"`
	Start          string `json:"start"`
	End            string `json:"end"`
	CompletedCount int    `json:"completed"`
	TotalHabits    int    `json:"total"`
}

// MonthBucket is one calendar month of the six-month view. It carries no
// denominator.
type MonthBucket struct {
	Label          string `json:"label"`
	Month          string `json:"month"` // YYYY-MM format
	CompletedCount int    `json:"completed"`
}
