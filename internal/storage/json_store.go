package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
)

type document struct {
	Version     int                 `json:"version"`
	Habits      []models.Habit      `json:"habits"`
	Completions []models.Completion `json:"completions"`
}

// JSONStore keeps every owner's habits in a single JSON file that is rewritten
// after each mutation.
type JSONStore struct {
	path string

	mu  sync.Mutex
	doc *document
	now func() time.Time
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
		now:  time.Now,
	}
}

func (s *JSONStore) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.read()
	}

	s.doc = &document{Version: 1}
	return s.save()
}

func (s *JSONStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

func (s *JSONStore) read() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	doc := &document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	s.doc = doc
	return nil
}

func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	// Write to a sibling file and rename it over the document
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) loaded(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.doc == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *JSONStore) LoadHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(ctx); err != nil {
		return nil, err
	}

	habits := make([]models.Habit, 0, len(s.doc.Habits))
	for _, h := range s.doc.Habits {
		if h.OwnerID == ownerID {
			habits = append(habits, h)
		}
	}
	sort.SliceStable(habits, func(i, j int) bool {
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
	return habits, nil
}

func (s *JSONStore) CreateHabit(ctx context.Context, ownerID, name, description, color string) (models.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(ctx); err != nil {
		return models.Habit{}, err
	}

	h := models.Habit{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Color:       color,
		CreatedAt:   s.now().UTC(),
	}
	s.doc.Habits = append(s.doc.Habits, h)
	if err := s.save(); err != nil {
		s.doc.Habits = s.doc.Habits[:len(s.doc.Habits)-1]
		return models.Habit{}, err
	}
	return h, nil
}

func (s *JSONStore) DeleteHabit(ctx context.Context, habitID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(ctx); err != nil {
		return err
	}

	idx := -1
	for i, h := range s.doc.Habits {
		if h.ID == habitID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return apperrors.NotFound("habit", habitID)
	}

	prevHabits := s.doc.Habits
	prevCompletions := s.doc.Completions

	habits := make([]models.Habit, 0, len(prevHabits)-1)
	habits = append(habits, prevHabits[:idx]...)
	habits = append(habits, prevHabits[idx+1:]...)

	completions := make([]models.Completion, 0, len(prevCompletions))
	for _, c := range prevCompletions {
		if c.HabitID != habitID {
			completions = append(completions, c)
		}
	}

	s.doc.Habits, s.doc.Completions = habits, completions
	if err := s.save(); err != nil {
		s.doc.Habits, s.doc.Completions = prevHabits, prevCompletions
		return err
	}
	return nil
}

func (s *JSONStore) LoadCompletions(ctx context.Context, ownerID string) ([]models.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(ctx); err != nil {
		return nil, err
	}

	completions := make([]models.Completion, 0, len(s.doc.Completions))
	for _, c := range s.doc.Completions {
		if c.OwnerID == ownerID {
			completions = append(completions, c)
		}
	}
	return completions, nil
}

func (s *JSONStore) CreateCompletion(ctx context.Context, ownerID, habitID, day string) (models.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(ctx); err != nil {
		return models.Completion{}, err
	}

	found := false
	for _, h := range s.doc.Habits {
		if h.ID == habitID {
			found = true
			break
		}
	}
	if !found {
		return models.Completion{}, apperrors.NotFound("habit", habitID)
	}

	for _, c := range s.doc.Completions {
		if c.HabitID == habitID && c.Day == day {
			return c, nil
		}
	}

	c := models.Completion{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		HabitID:   habitID,
		Day:       day,
		CreatedAt: s.now().UTC(),
	}
	s.doc.Completions = append(s.doc.Completions, c)
	if err := s.save(); err != nil {
		s.doc.Completions = s.doc.Completions[:len(s.doc.Completions)-1]
		return models.Completion{}, err
	}
	return c, nil
}

func (s *JSONStore) DeleteCompletion(ctx context.Context, completionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(ctx); err != nil {
		return err
	}

	for i, c := range s.doc.Completions {
		if c.ID != completionID {
			continue
		}
		prev := s.doc.Completions
		completions := make([]models.Completion, 0, len(prev)-1)
		completions = append(completions, prev[:i]...)
		completions = append(completions, prev[i+1:]...)
		s.doc.Completions = completions
		if err := s.save(); err != nil {
			s.doc.Completions = prev
			return err
		}
		return nil
	}
	return apperrors.NotFound("completion", completionID)
}
