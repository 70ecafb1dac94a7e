// Package storagetest holds behavior checks shared by every storage backend.
package storagetest

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/storage"
)

// Run exercises an initialized provider against the adapter contract.
// newProvider must return a fresh, empty, initialized store for each call.
func Run(t *testing.T, newProvider func(t *testing.T) storage.Provider) {
	t.Helper()

	t.Run("HabitsOrderedByCreation", func(t *testing.T) {
		p := newProvider(t)
		ctx := context.Background()

		for _, name := range []string{"Exercise", "Read", "Meditate"} {
			if _, err := p.CreateHabit(ctx, "alice", name, "", "#10B981"); err != nil {
				t.Fatalf("CreateHabit(%q) error = %v", name, err)
			}
			time.Sleep(2 * time.Millisecond)
		}
		if _, err := p.CreateHabit(ctx, "bob", "Other", "", "#3B82F6"); err != nil {
			t.Fatalf("CreateHabit() error = %v", err)
		}

		habits, err := p.LoadHabits(ctx, "alice")
		if err != nil {
			t.Fatalf("LoadHabits() error = %v", err)
		}
		if len(habits) != 3 {
			t.Fatalf("LoadHabits() returned %d habits, want 3", len(habits))
		}
		for i, want := range []string{"Exercise", "Read", "Meditate"} {
			if habits[i].Name != want {
				t.Errorf("habits[%d].Name = %q, want %q", i, habits[i].Name, want)
			}
			if habits[i].OwnerID != "alice" {
				t.Errorf("habits[%d].OwnerID = %q, want alice", i, habits[i].OwnerID)
			}
			if habits[i].ID == "" || habits[i].Pending() {
				t.Errorf("habits[%d].ID = %q, want a confirmed id", i, habits[i].ID)
			}
		}
	})

	t.Run("CreateCompletionIsIdempotent", func(t *testing.T) {
		p := newProvider(t)
		ctx := context.Background()

		h, err := p.CreateHabit(ctx, "alice", "Exercise", "", "#10B981")
		if err != nil {
			t.Fatalf("CreateHabit() error = %v", err)
		}

		first, err := p.CreateCompletion(ctx, "alice", h.ID, "2024-03-01")
		if err != nil {
			t.Fatalf("CreateCompletion() error = %v", err)
		}
		second, err := p.CreateCompletion(ctx, "alice", h.ID, "2024-03-01")
		if err != nil {
			t.Fatalf("second CreateCompletion() error = %v", err)
		}
		if first.ID != second.ID {
			t.Errorf("CreateCompletion() ids differ: %q vs %q", first.ID, second.ID)
		}

		completions, err := p.LoadCompletions(ctx, "alice")
		if err != nil {
			t.Fatalf("LoadCompletions() error = %v", err)
		}
		if len(completions) != 1 {
			t.Fatalf("LoadCompletions() returned %d records, want 1", len(completions))
		}
		if c := completions[0]; c.HabitID != h.ID || c.Day != "2024-03-01" {
			t.Errorf("LoadCompletions()[0] = %+v", c)
		}
	})

	t.Run("DeleteCompletion", func(t *testing.T) {
		p := newProvider(t)
		ctx := context.Background()

		h, _ := p.CreateHabit(ctx, "alice", "Exercise", "", "#10B981")
		c, err := p.CreateCompletion(ctx, "alice", h.ID, "2024-03-01")
		if err != nil {
			t.Fatalf("CreateCompletion() error = %v", err)
		}

		if err := p.DeleteCompletion(ctx, c.ID); err != nil {
			t.Fatalf("DeleteCompletion() error = %v", err)
		}
		completions, _ := p.LoadCompletions(ctx, "alice")
		if len(completions) != 0 {
			t.Errorf("LoadCompletions() after delete = %d records, want 0", len(completions))
		}

		err = p.DeleteCompletion(ctx, c.ID)
		if !apperrors.IsNotFound(err) {
			t.Errorf("DeleteCompletion() of missing id error = %v, want NotFoundError", err)
		}
	})

	t.Run("DeleteHabitCascades", func(t *testing.T) {
		p := newProvider(t)
		ctx := context.Background()

		keep, _ := p.CreateHabit(ctx, "alice", "Read", "", "#3B82F6")
		drop, _ := p.CreateHabit(ctx, "alice", "Exercise", "", "#10B981")
		for _, day := range []string{"2024-03-01", "2024-03-02"} {
			if _, err := p.CreateCompletion(ctx, "alice", drop.ID, day); err != nil {
				t.Fatalf("CreateCompletion() error = %v", err)
			}
		}
		if _, err := p.CreateCompletion(ctx, "alice", keep.ID, "2024-03-01"); err != nil {
			t.Fatalf("CreateCompletion() error = %v", err)
		}

		if err := p.DeleteHabit(ctx, drop.ID); err != nil {
			t.Fatalf("DeleteHabit() error = %v", err)
		}

		habits, _ := p.LoadHabits(ctx, "alice")
		if len(habits) != 1 || habits[0].ID != keep.ID {
			t.Errorf("LoadHabits() after delete = %+v", habits)
		}
		completions, _ := p.LoadCompletions(ctx, "alice")
		if len(completions) != 1 || completions[0].HabitID != keep.ID {
			t.Errorf("LoadCompletions() after delete = %+v", completions)
		}

		if err := p.DeleteHabit(ctx, drop.ID); !apperrors.IsNotFound(err) {
			t.Errorf("DeleteHabit() of missing id error = %v, want NotFoundError", err)
		}
	})

	t.Run("CompletionForMissingHabit", func(t *testing.T) {
		p := newProvider(t)

		_, err := p.CreateCompletion(context.Background(), "alice", "no-such-habit", "2024-03-01")
		if !apperrors.IsNotFound(err) {
			t.Errorf("CreateCompletion() error = %v, want NotFoundError", err)
		}
	})

	t.Run("CanceledContext", func(t *testing.T) {
		p := newProvider(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := p.LoadHabits(ctx, "alice"); err == nil {
			t.Error("LoadHabits() with canceled context error = nil")
		}
	})
}
