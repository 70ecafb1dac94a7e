package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
)

var errOffline = errors.New("network unreachable")

// fakeAdapter is an in-memory adapter with per-operation failure injection.
type fakeAdapter struct {
	mu          sync.Mutex
	seq         int
	habits      []models.Habit
	completions map[string]models.Completion // keyed by habitID|day
	fail        map[string]error
	calls       map[string]int
	// before runs at the start of every call, outside the lock
	before func(op string)
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		completions: make(map[string]models.Completion),
		fail:        make(map[string]error),
		calls:       make(map[string]int),
	}
}

func (f *fakeAdapter) enter(ctx context.Context, op string) error {
	if f.before != nil {
		f.before(op)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.fail[op]
}

func (f *fakeAdapter) setFail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

func (f *fakeAdapter) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAdapter) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeAdapter) storedCompletions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.completions)
}

func (f *fakeAdapter) LoadHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	if err := f.enter(ctx, "LoadHabits"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Habit
	for _, h := range f.habits {
		if h.OwnerID == ownerID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeAdapter) CreateHabit(ctx context.Context, ownerID, name, description, color string) (models.Habit, error) {
	if err := f.enter(ctx, "CreateHabit"); err != nil {
		return models.Habit{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	h := models.Habit{
		ID:          f.nextID("habit"),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Color:       color,
		CreatedAt:   time.Date(2024, time.March, 1, 0, 0, f.seq, 0, time.UTC),
	}
	f.habits = append(f.habits, h)
	return h, nil
}

func (f *fakeAdapter) DeleteHabit(ctx context.Context, habitID string) error {
	if err := f.enter(ctx, "DeleteHabit"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, h := range f.habits {
		if h.ID == habitID {
			f.habits = append(f.habits[:i], f.habits[i+1:]...)
			for k, c := range f.completions {
				if c.HabitID == habitID {
					delete(f.completions, k)
				}
			}
			return nil
		}
	}
	return apperrors.NotFound("habit", habitID)
}

func (f *fakeAdapter) LoadCompletions(ctx context.Context, ownerID string) ([]models.Completion, error) {
	if err := f.enter(ctx, "LoadCompletions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Completion
	for _, c := range f.completions {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeAdapter) CreateCompletion(ctx context.Context, ownerID, habitID, day string) (models.Completion, error) {
	if err := f.enter(ctx, "CreateCompletion"); err != nil {
		return models.Completion{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := habitID + "|" + day
	if c, ok := f.completions[key]; ok {
		return c, nil
	}
	c := models.Completion{
		ID:      f.nextID("completion"),
		OwnerID: ownerID,
		HabitID: habitID,
		Day:     day,
	}
	f.completions[key] = c
	return c, nil
}

func (f *fakeAdapter) DeleteCompletion(ctx context.Context, completionID string) error {
	if err := f.enter(ctx, "DeleteCompletion"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, c := range f.completions {
		if c.ID == completionID {
			delete(f.completions, k)
			return nil
		}
	}
	return apperrors.NotFound("completion", completionID)
}
