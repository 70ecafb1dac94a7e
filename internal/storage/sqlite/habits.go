package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
)

func (s *Store) LoadHabits(ctx context.Context, ownerID string) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, name, description, color, created_at
		FROM habits WHERE owner_id = ?
		ORDER BY rowid`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		var h models.Habit
		var createdAt string
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Description, &h.Color, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		if h.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) CreateHabit(ctx context.Context, ownerID, name, description, color string) (models.Habit, error) {
	createdAt := s.timestamp()
	h := models.Habit{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		Color:       color,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (id, owner_id, name, description, color, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		h.ID, h.OwnerID, h.Name, h.Description, h.Color, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to insert habit: %w", err)
	}

	if h.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

// DeleteHabit removes the habit and its completions in one transaction.
func (s *Store) DeleteHabit(ctx context.Context, habitID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM habit_completions WHERE habit_id = ?", habitID); err != nil {
		return fmt.Errorf("failed to delete completions: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM habits WHERE id = ?", habitID)
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

	return tx.Commit()
}
