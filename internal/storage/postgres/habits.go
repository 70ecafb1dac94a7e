package postgres

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
)

var habitColumns = []string{"id", "owner_id", "name", "description", "color", "created_at"}

func loadHabitsQuery(ownerID string) sq.SelectBuilder {
	return psql.Select(habitColumns...).
		From("habits").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at ASC", "id ASC")
}

func (s *Store) LoadHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	query, args, err := loadHabitsQuery(ownerID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		var h models.Habit
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Description, &h.Color, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func createHabitQuery(id, ownerID, name, description, color string) sq.InsertBuilder {
	return psql.Insert("habits").
		Columns("id", "owner_id", "name", "description", "color").
		Values(id, ownerID, name, description, color).
		Suffix("RETURNING created_at")
}

func (s *Store) CreateHabit(ctx context.Context, ownerID, name, description, color string) (models.Habit, error) {
	h := models.Habit{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Color:       color,
	}

	query, args, err := createHabitQuery(h.ID, ownerID, name, description, color).ToSql()
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to build query: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&h.CreatedAt); err != nil {
		return models.Habit{}, fmt.Errorf("failed to insert habit: %w", err)
	}
	return h, nil
}

// DeleteHabit relies on ON DELETE CASCADE for the habit's completions.
func (s *Store) DeleteHabit(ctx context.Context, habitID string) error {
	if _, err := uuid.Parse(habitID); err != nil {
		return apperrors.NotFound("habit", habitID)
	}

	query, args, err := psql.Delete("habits").Where(sq.Eq{"id": habitID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound("habit", habitID)
	}
	return nil
}
