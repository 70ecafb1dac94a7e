package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/storage/storagetest"
)

func newJSONStore(t *testing.T) storage.Provider {
	t.Helper()
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "habitflow.json"))
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return s
}

func TestJSONStoreContract(t *testing.T) {
	storagetest.Run(t, newJSONStore)
}

func TestJSONStoreLoadBeforeInit(t *testing.T) {
	s := storage.NewJSONStore(filepath.Join(t.TempDir(), "missing.json"))
	if err := s.Load(); err == nil {
		t.Error("Load() on missing file error = nil, want error")
	}
}

func TestJSONStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitflow.json")
	ctx := context.Background()

	s := storage.NewJSONStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	h, err := s.CreateHabit(ctx, "alice", "Exercise", "daily run", "#10B981")
	if err != nil {
		t.Fatalf("CreateHabit() error = %v", err)
	}
	if _, err := s.CreateCompletion(ctx, "alice", h.ID, "2024-03-01"); err != nil {
		t.Fatalf("CreateCompletion() error = %v", err)
	}

	reopened := storage.NewJSONStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	habits, err := reopened.LoadHabits(ctx, "alice")
	if err != nil {
		t.Fatalf("LoadHabits() error = %v", err)
	}
	if len(habits) != 1 || habits[0].Description != "daily run" {
		t.Errorf("LoadHabits() = %+v", habits)
	}
	completions, _ := reopened.LoadCompletions(ctx, "alice")
	if len(completions) != 1 {
		t.Errorf("LoadCompletions() returned %d records, want 1", len(completions))
	}

	// Init on an existing document keeps its contents
	again := storage.NewJSONStore(path)
	if err := again.Init(); err != nil {
		t.Fatalf("Init() on existing file error = %v", err)
	}
	if habits, _ := again.LoadHabits(ctx, "alice"); len(habits) != 1 {
		t.Errorf("Init() dropped existing habits: %+v", habits)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestJSONStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitflow.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	s := storage.NewJSONStore(path)
	if err := s.Load(); err == nil {
		t.Error("Load() on corrupt file error = nil, want error")
	}
}
