// Package registry holds the ordered set of habits owned by the current user.
package registry

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
)

// Registry keeps habits in insertion order. The zero value is not usable;
// call New.
type Registry struct {
	mu      sync.RWMutex
	ownerID string
	habits  []models.Habit
	now     func() time.Time
}

func New(ownerID string) *Registry {
	return &Registry{
		ownerID: ownerID,
		now:     time.Now,
	}
}

// ValidateHabit trims name and description and resolves the color. It is
// run before any mutation so a rejected habit leaves no trace.
func ValidateHabit(name, description, color string) (string, string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", "", apperrors.Validation("name", "habit name cannot be empty")
	}
	color = strings.TrimSpace(color)
	if color == "" {
		color = constants.DefaultColor()
	}
	if !slices.Contains(constants.Palette, strings.ToUpper(color)) {
		return "", "", "", apperrors.Validation("color", color+" is not one of the preset colors")
	}
	return name, strings.TrimSpace(description), strings.ToUpper(color), nil
}

// Add validates and appends a new habit with a temporary id and CreatedAt set to now.
func (r *Registry) Add(name, description, color string) (models.Habit, error) {
	name, description, color, err := ValidateHabit(name, description, color)
	if err != nil {
		return models.Habit{}, err
	}

	habit := models.Habit{
		ID:          constants.TempIDPrefix + uuid.New().String(),
		OwnerID:     r.ownerID,
		Name:        name,
		Description: description,
		Color:       color,
		CreatedAt:   r.now(),
	}

	r.mu.Lock()
	r.habits = append(r.habits, habit)
	r.mu.Unlock()

	return habit, nil
}

// Insert appends an already identified habit. A habit whose id is present is ignored.
func (r *Registry) Insert(habit models.Habit) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(habit.ID) >= 0 {
		return
	}
	r.habits = append(r.habits, habit)
}

// Reset replaces the whole collection, keeping the given order.
func (r *Registry) Reset(habits []models.Habit) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.habits = slices.Clone(habits)
}

// Remove deletes the habit and returns it with the position it held.
// An absent id yields a NotFoundError.
func (r *Registry) Remove(id string) (models.Habit, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.Habit{}, -1, apperrors.NotFound("habit", id)
	}
	habit := r.habits[idx]
	r.habits = slices.Delete(r.habits, idx, idx+1)
	return habit, idx, nil
}

// Restore puts a removed habit back at index, clamped to the current length.
func (r *Registry) Restore(habit models.Habit, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(habit.ID) >= 0 {
		return
	}
	index = max(0, min(index, len(r.habits)))
	r.habits = slices.Insert(r.habits, index, habit)
}

// Replace swaps the habit stored under oldID for habit, keeping its position.
func (r *Registry) Replace(oldID string, habit models.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(oldID)
	if idx < 0 {
		return apperrors.NotFound("habit", oldID)
	}
	r.habits[idx] = habit
	return nil
}

func (r *Registry) Get(id string) (models.Habit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.Habit{}, false
	}
	return r.habits[idx], true
}

// FindByName returns the first habit whose name matches, ignoring case.
func (r *Registry) FindByName(name string) (models.Habit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name = strings.TrimSpace(name)
	for _, h := range r.habits {
		if strings.EqualFold(h.Name, name) {
			return h, true
		}
	}
	return models.Habit{}, false
}

// List returns a copy of the habits in insertion order.
func (r *Registry) List() []models.Habit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.habits)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.habits)
}

func (r *Registry) indexOf(id string) int {
	return slices.IndexFunc(r.habits, func(h models.Habit) bool { return h.ID == id })
}
