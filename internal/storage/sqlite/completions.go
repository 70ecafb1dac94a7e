package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
)

func (s *Store) LoadCompletions(ctx context.Context, ownerID string) ([]models.Completion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, habit_id, day, created_at
		FROM habit_completions WHERE owner_id = ?
		ORDER BY day, rowid`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCompletion(row scanner) (models.Completion, error) {
	var c models.Completion
	var createdAt string
	if err := row.Scan(&c.ID, &c.OwnerID, &c.HabitID, &c.Day, &createdAt); err != nil {
		return models.Completion{}, err
	}
	var err error
	if c.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return models.Completion{}, err
	}
	return c, nil
}

// CreateCompletion inserts the pair unless it already exists and returns the
// stored record either way.
func (s *Store) CreateCompletion(ctx context.Context, ownerID, habitID, day string) (models.Completion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Completion{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM habits WHERE id = ?", habitID).Scan(&exists); err != nil {
		return models.Completion{}, fmt.Errorf("failed to look up habit: %w", err)
	}
	if exists == 0 {
		return models.Completion{}, apperrors.NotFound("habit", habitID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO habit_completions (id, owner_id, habit_id, day, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (habit_id, day) DO NOTHING`,
		uuid.New().String(), ownerID, habitID, day, s.timestamp())
	if err != nil {
		return models.Completion{}, fmt.Errorf("failed to insert completion: %w", err)
	}

	c, err := scanCompletion(tx.QueryRowContext(ctx, `
		SELECT id, owner_id, habit_id, day, created_at
		FROM habit_completions WHERE habit_id = ? AND day = ?`, habitID, day))
	if err != nil {
		return models.Completion{}, fmt.Errorf("failed to read completion: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Completion{}, fmt.Errorf("failed to commit completion: %w", err)
	}
	return c, nil
}

func (s *Store) DeleteCompletion(ctx context.Context, completionID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM habit_completions WHERE id = ?", completionID)
	if err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete completion: %w", err)
	}
	if n == 0 {
		return apperrors.NotFound("completion", completionID)
	}
	return nil
}
