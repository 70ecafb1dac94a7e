package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	pq "github.com/lib/pq"

	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
)

// pgForeignKeyViolation is the SQLSTATE raised when habit_id has no habit.
const pgForeignKeyViolation = "23503"

var completionColumns = []string{"id", "owner_id", "habit_id", "to_char(day, 'YYYY-MM-DD')", "created_at"}

func loadCompletionsQuery(ownerID string) sq.SelectBuilder {
	return psql.Select(completionColumns...).
		From("habit_completions").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("day ASC", "created_at ASC")
}

func (s *Store) LoadCompletions(ctx context.Context, ownerID string) ([]models.Completion, error) {
	query, args, err := loadCompletionsQuery(ownerID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		var c models.Completion
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.HabitID, &c.Day, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// createCompletionQuery is an upsert whose no-op update makes RETURNING yield
// the stored row when the pair already exists.
func createCompletionQuery(id, ownerID, habitID, day string) sq.InsertBuilder {
	return psql.Insert("habit_completions").
		Columns("id", "owner_id", "habit_id", "day").
		Values(id, ownerID, habitID, day).
		Suffix("ON CONFLICT (habit_id, day) DO UPDATE SET day = EXCLUDED.day RETURNING " +
			"id, owner_id, habit_id, to_char(day, 'YYYY-MM-DD'), created_at")
}

func (s *Store) CreateCompletion(ctx context.Context, ownerID, habitID, day string) (models.Completion, error) {
	if _, err := uuid.Parse(habitID); err != nil {
		return models.Completion{}, apperrors.NotFound("habit", habitID)
	}

	query, args, err := createCompletionQuery(uuid.New().String(), ownerID, habitID, day).ToSql()
	if err != nil {
		return models.Completion{}, fmt.Errorf("failed to build query: %w", err)
	}

	var c models.Completion
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.OwnerID, &c.HabitID, &c.Day, &c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgForeignKeyViolation {
			return models.Completion{}, apperrors.NotFound("habit", habitID)
		}
		if errors.Is(err, sql.ErrNoRows) {
			return models.Completion{}, fmt.Errorf("completion upsert returned no row for %s/%s", habitID, day)
		}
		return models.Completion{}, fmt.Errorf("failed to insert completion: %w", err)
	}
	return c, nil
}

func (s *Store) DeleteCompletion(ctx context.Context, completionID string) error {
	if _, err := uuid.Parse(completionID); err != nil {
		return apperrors.NotFound("completion", completionID)
	}

	query, args, err := psql.Delete("habit_completions").Where(sq.Eq{"id": completionID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
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
