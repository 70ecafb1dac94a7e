package models

import (
	"strings"
	"time"

	"github.com/julianstephens/habitflow/internal/constants"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID          string    `json:"id" yaml:"id"`
	OwnerID     string    `json:"owner_id" yaml:"owner_id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Color       string    `json:"color" yaml:"color"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Pending reports whether the habit still carries a locally assigned id.
func (h Habit) Pending() bool {
	return strings.HasPrefix(h.ID, constants.TempIDPrefix)
}

// Completion records that a habit was done on a civil day
type Completion struct {
	ID        string    `json:"id" yaml:"id"`
	OwnerID   string    `json:"owner_id" yaml:"owner_id"`
	HabitID   string    `json:"habit_id" yaml:"habit_id"`
	Day       string    `json:"day" yaml:"day"` // YYYY-MM-DD format
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// Pending reports whether the completion still carries a locally assigned id.
func (c Completion) Pending() bool {
	return strings.HasPrefix(c.ID, constants.TempIDPrefix)
}

// Snapshot is a point-in-time copy of everything an owner tracks.
type Snapshot struct {
	OwnerID     string       `json:"owner_id" yaml:"owner_id"`
	ExportedAt  time.Time    `json:"exported_at" yaml:"exported_at"`
	Habits      []Habit      `json:"habits" yaml:"habits"`
	Completions []Completion `json:"completions" yaml:"completions"`
}
