package ledger

import (
	"fmt"
	"sync"
	"testing"

	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
)

const today = "2024-03-01"

func TestToggleScenario(t *testing.T) {
	l := New("owner")

	if l.IsCompleted("exercise", today) {
		t.Fatal("new ledger should have no completions")
	}

	c, completed := l.Toggle("exercise", today)
	if !completed {
		t.Fatal("first toggle should complete the habit")
	}
	if !c.Pending() {
		t.Errorf("locally created completion should have a temporary id, got %q", c.ID)
	}
	if c.HabitID != "exercise" || c.Day != today || c.OwnerID != "owner" {
		t.Errorf("unexpected completion %+v", c)
	}
	if !l.IsCompleted("exercise", today) {
		t.Error("IsCompleted() = false after toggle on")
	}

	removed, completed := l.Toggle("exercise", today)
	if completed {
		t.Error("second toggle should uncomplete the habit")
	}
	if removed.ID != c.ID {
		t.Errorf("second toggle removed %q, want %q", removed.ID, c.ID)
	}
	if l.IsCompleted("exercise", today) {
		t.Error("IsCompleted() = true after toggle off")
	}
}

func TestToggleIsSelfInverse(t *testing.T) {
	l := New("owner")
	l.Toggle("a", "2024-01-01")

	pairs := []struct{ habit, day string }{
		{"a", "2024-01-01"},
		{"a", "2024-01-02"},
		{"b", "2024-01-01"},
	}
	for _, p := range pairs {
		before := l.IsCompleted(p.habit, p.day)
		l.Toggle(p.habit, p.day)
		l.Toggle(p.habit, p.day)
		if after := l.IsCompleted(p.habit, p.day); after != before {
			t.Errorf("double toggle on (%s, %s) changed state %v -> %v", p.habit, p.day, before, after)
		}
	}
}

func TestPairsAreIndependent(t *testing.T) {
	l := New("owner")
	l.Toggle("a", "2024-01-01")

	if l.IsCompleted("a", "2024-01-02") {
		t.Error("other day must not be completed")
	}
	if l.IsCompleted("b", "2024-01-01") {
		t.Error("other habit must not be completed")
	}
}

func TestConcurrentTogglesNeverDuplicate(t *testing.T) {
	l := New("owner")

	const workers = 16
	const perWorker = 50
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				l.Toggle("h", today)
				if n := l.Len(); n > 1 {
					t.Errorf("ledger holds %d records for a single pair", n)
				}
			}
		}()
	}
	wg.Wait()

	// An even number of toggles lands back on the initial state.
	if l.IsCompleted("h", today) {
		t.Error("even number of toggles should leave the pair uncompleted")
	}
	if l.CountFor(today) != 0 {
		t.Errorf("CountFor() = %d, want 0", l.CountFor(today))
	}
}

func TestCountFor(t *testing.T) {
	l := New("owner")
	l.Toggle("a", today)
	l.Toggle("b", today)
	l.Toggle("c", "2024-03-02")

	if got := l.CountFor(today); got != 2 {
		t.Errorf("CountFor(today) = %d, want 2", got)
	}

	// Repeated toggles never double count.
	l.Toggle("a", today)
	l.Toggle("a", today)
	if got := l.CountFor(today); got != 2 {
		t.Errorf("CountFor(today) after toggle pair = %d, want 2", got)
	}

	// Put of an existing pair is ignored.
	if l.Put(models.Completion{ID: "dup", HabitID: "b", Day: today}) {
		t.Error("Put() stored a duplicate pair")
	}
	if got := l.CountFor(today); got != 2 {
		t.Errorf("CountFor(today) after duplicate Put = %d, want 2", got)
	}
	if got := l.CountFor("1999-01-01"); got != 0 {
		t.Errorf("CountFor(empty day) = %d, want 0", got)
	}
}

func TestRemoveAllForCascade(t *testing.T) {
	l := New("owner")
	for i := 1; i <= 5; i++ {
		l.Toggle("gone", fmt.Sprintf("2024-01-%02d", i))
	}
	l.Toggle("kept", "2024-01-01")

	removed := l.RemoveAllFor("gone")
	if len(removed) != 5 {
		t.Fatalf("RemoveAllFor() removed %d, want 5", len(removed))
	}
	if removed[0].Day != "2024-01-01" || removed[4].Day != "2024-01-05" {
		t.Errorf("RemoveAllFor() result not ordered by day: %v .. %v", removed[0].Day, removed[4].Day)
	}
	for i := 1; i <= 5; i++ {
		if l.IsCompleted("gone", fmt.Sprintf("2024-01-%02d", i)) {
			t.Errorf("completion for removed habit survived on day %d", i)
		}
	}
	if !l.IsCompleted("kept", "2024-01-01") {
		t.Error("RemoveAllFor() touched another habit")
	}
	if got := l.CountFor("2024-01-01"); got != 1 {
		t.Errorf("CountFor() = %d after cascade, want 1", got)
	}

	if again := l.RemoveAllFor("gone"); len(again) != 0 {
		t.Errorf("second RemoveAllFor() removed %d records", len(again))
	}

	l.Restore(removed)
	if got := l.Len(); got != 6 {
		t.Errorf("Len() after Restore = %d, want 6", got)
	}
}

func TestThreeHabitsScenario(t *testing.T) {
	l := New("owner")
	l.Toggle("h1", today)
	l.Toggle("h2", today)

	if got := l.CountFor(today); got != 2 {
		t.Fatalf("CountFor(today) = %d, want 2", got)
	}

	l.RemoveAllFor("h1")
	if got := l.CountFor(today); got != 1 {
		t.Errorf("CountFor(today) after deleting h1 = %d, want 1", got)
	}
}

func TestConfirm(t *testing.T) {
	l := New("owner")
	tmp, _ := l.Toggle("h", today)

	confirmed := tmp
	confirmed.ID = "server-1"
	if err := l.Confirm(confirmed); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	all := l.All()
	if len(all) != 1 || all[0].ID != "server-1" {
		t.Errorf("All() = %+v, want single confirmed record", all)
	}

	err := l.Confirm(models.Completion{ID: "x", HabitID: "other", Day: today})
	if !apperrors.IsNotFound(err) {
		t.Errorf("Confirm() of missing pair error = %v, want NotFoundError", err)
	}
}

func TestRemove(t *testing.T) {
	l := New("owner")
	l.Toggle("h", today)

	c, ok := l.Remove("h", today)
	if !ok || c.HabitID != "h" {
		t.Errorf("Remove() = (%+v, %v)", c, ok)
	}
	if _, ok := l.Remove("h", today); ok {
		t.Error("Remove() of absent pair reported success")
	}
}

func TestReset(t *testing.T) {
	l := New("owner")
	l.Toggle("old", today)

	l.Reset([]models.Completion{
		{ID: "1", HabitID: "a", Day: "2024-01-01"},
		{ID: "2", HabitID: "a", Day: "2024-01-01"},
		{ID: "3", HabitID: "b", Day: "2024-01-01"},
	})

	if l.IsCompleted("old", today) {
		t.Error("Reset() kept old records")
	}
	if got := l.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2 (duplicate pair dropped)", got)
	}
	if got := l.CountFor("2024-01-01"); got != 2 {
		t.Errorf("CountFor() = %d, want 2", got)
	}
}
