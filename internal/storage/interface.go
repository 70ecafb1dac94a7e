package storage

import (
	"context"

	"github.com/julianstephens/habitflow/internal/models"
)

// Adapter is the remote round trip behind every tracker mutation.
// Missing ids are reported as a NotFoundError.
type Adapter interface {
	// Habits, ordered by created_at
	LoadHabits(ctx context.Context, ownerID string) ([]models.Habit, error)
	CreateHabit(ctx context.Context, ownerID, name, description, color string) (models.Habit, error)
	// DeleteHabit removes the habit and every completion recorded for it.
	DeleteHabit(ctx context.Context, habitID string) error

	// Completions
	LoadCompletions(ctx context.Context, ownerID string) ([]models.Completion, error)
	// CreateCompletion returns the existing record when the pair is already stored.
	CreateCompletion(ctx context.Context, ownerID, habitID, day string) (models.Completion, error)
	DeleteCompletion(ctx context.Context, completionID string) error
}

type Provider interface {
	Adapter

	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Utils
	GetConfigPath() string
}
