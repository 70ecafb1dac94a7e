package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/storage/storagetest"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(filepath.Join(t.TempDir(), "habitflow.db"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Provider {
		return setupStore(t)
	})
}

func TestInitIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitflow.db")

	first := NewStore(path)
	if err := first.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	first.Close()

	second := NewStore(path)
	if err := second.Init(); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	defer second.Close()

	current, latest, err := second.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion() error = %v", err)
	}
	if current != latest || current < 1 {
		t.Errorf("SchemaVersion() = %d/%d, want equal and >= 1", current, latest)
	}
}

func TestLoadBeforeInit(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := s.Load(); err == nil {
		t.Error("Load() on missing database error = nil, want error")
	}
}

func TestLoadExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitflow.db")
	ctx := context.Background()

	s := NewStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	h, err := s.CreateHabit(ctx, "alice", "Exercise", "", "#10B981")
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}
	s.Close()

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer reopened.Close()

	habits, err := reopened.LoadHabits(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadHabits() error = %v", err)
	}
	if len(habits) != 1 || habits[0].ID != h.ID {
		t.Errorf("LoadHabits() = %+v, want [%s]", habits, h.ID)
	}
	if !habits[0].CreatedAt.Equal(h.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", habits[0].CreatedAt, h.CreatedAt)
	}
}

func TestUniquePairConstraint(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	h, _ := s.CreateHabit(ctx, "alice", "Exercise", "", "#10B981")
	if _, err := s.CreateCompletion(ctx, "alice", h.ID, "2024-03-01"); err != nil {
		t.Fatalf("CreateCompletion() error = %v", err)
	}

	_, err := s.GetDB().ExecContext(ctx, `
		INSERT INTO habit_completions (id, owner_id, habit_id, day, created_at)
		VALUES ('dup', 'alice', ?, '2024-03-01', '2024-03-01T00:00:00Z')`, h.ID)
	if err == nil {
		t.Error("duplicate (habit_id, day) insert succeeded, want constraint error")
	}
}

func TestForeignKeyCascade(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	h, _ := s.CreateHabit(ctx, "alice", "Exercise", "", "#10B981")
	if _, err := s.CreateCompletion(ctx, "alice", h.ID, "2024-03-01"); err != nil {
		t.Fatalf("CreateCompletion() error = %v", err)
	}

	// Bypass DeleteHabit so only the schema cascade removes the completion
	if _, err := s.GetDB().ExecContext(ctx, "DELETE FROM habits WHERE id = ?", h.ID); err != nil {
		t.Fatalf("raw delete error = %v", err)
	}

	var n int
	if err := s.GetDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM habit_completions").Scan(&n); err != nil {
		t.Fatalf("count error = %v", err)
	}
	if n != 0 {
		t.Errorf("habit_completions has %d rows after habit delete, want 0", n)
	}
}

func TestLoadHabitsKeepsInsertionOrder(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	stamps := []time.Time{
		base.Add(120 * time.Millisecond),
		base.Add(123 * time.Millisecond),
		base.Add(time.Second),
	}
	next := 0
	s.now = func() time.Time {
		ts := stamps[next]
		next++
		return ts
	}

	names := []string{"First", "Second", "Third"}
	for _, name := range names {
		if _, err := s.CreateHabit(ctx, "alice", name, "", "#10B981"); err != nil {
			t.Fatalf("CreateHabit(%q) error = %v", name, err)
		}
	}

	habits, err := s.LoadHabits(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadHabits() error = %v", err)
	}
	if len(habits) != len(names) {
		t.Fatalf("LoadHabits() returned %d habits, want %d", len(habits), len(names))
	}
	for i, h := range habits {
		if h.Name != names[i] {
			t.Errorf("habits[%d] = %q, want %q", i, h.Name, names[i])
		}
		if !h.CreatedAt.Equal(stamps[i]) {
			t.Errorf("habits[%d].CreatedAt = %v, want %v", i, h.CreatedAt, stamps[i])
		}
	}

	var stored []string
	rows, err := s.GetDB().QueryContext(ctx, "SELECT created_at FROM habits ORDER BY created_at")
	if err != nil {
		t.Fatalf("query error = %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			t.Fatalf("scan error = %v", err)
		}
		stored = append(stored, v)
	}
	want := []string{
		"2024-03-01T09:00:00.120000000Z",
		"2024-03-01T09:00:00.123000000Z",
		"2024-03-01T09:00:01.000000000Z",
	}
	if len(stored) != len(want) {
		t.Fatalf("stored %d timestamps, want %d", len(stored), len(want))
	}
	for i := range want {
		if stored[i] != want[i] {
			t.Errorf("created_at[%d] = %q, want %q", i, stored[i], want[i])
		}
	}
}
