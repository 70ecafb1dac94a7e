// Package ledger stores habit completions indexed by (habit, day).
//
// At most one record exists for a pair at any time: records live in a map
// keyed by the pair, so a second insert for the same pair is impossible by
// construction rather than by a scan. Two secondary indexes (by day and by
// habit) keep CountFor and RemoveAllFor proportional to their result size.
package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/models"
)

type pair struct {
	habitID string
	day     string
}

type set map[string]struct{}

type Ledger struct {
	mu      sync.RWMutex
	ownerID string
	records map[pair]models.Completion
	byDay   map[string]set // day -> habit ids
	byHabit map[string]set // habit id -> days
	now     func() time.Time
}

func New(ownerID string) *Ledger {
	return &Ledger{
		ownerID: ownerID,
		records: make(map[pair]models.Completion),
		byDay:   make(map[string]set),
		byHabit: make(map[string]set),
		now:     time.Now,
	}
}

// IsCompleted reports whether a record exists for the exact pair.
func (l *Ledger) IsCompleted(habitID, day string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.records[pair{habitID, day}]
	return ok
}

// Toggle flips the pair. When a record exists it is removed and returned
// with false; otherwise a record with a temporary id is created and
// returned with true.
func (l *Ledger) Toggle(habitID, day string) (models.Completion, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := pair{habitID, day}
	if existing, ok := l.records[k]; ok {
		l.delete(k)
		return existing, false
	}

	c := models.Completion{
		ID:        constants.TempIDPrefix + uuid.New().String(),
		OwnerID:   l.ownerID,
		HabitID:   habitID,
		Day:       day,
		CreatedAt: l.now(),
	}
	l.insert(c)
	return c, true
}

// RemoveAllFor deletes every record of the habit under a single lock and
// returns what was removed.
func (l *Ledger) RemoveAllFor(habitID string) []models.Completion {
	l.mu.Lock()
	defer l.mu.Unlock()

	days := l.byHabit[habitID]
	removed := make([]models.Completion, 0, len(days))
	for day := range days {
		k := pair{habitID, day}
		removed = append(removed, l.records[k])
		l.delete(k)
	}
	sortCompletions(removed)
	return removed
}

// CountFor returns the number of distinct habits completed on day.
func (l *Ledger) CountFor(day string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.byDay[day])
}

// Remove deletes the record for the pair, if any.
func (l *Ledger) Remove(habitID, day string) (models.Completion, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := pair{habitID, day}
	c, ok := l.records[k]
	if ok {
		l.delete(k)
	}
	return c, ok
}

// Put inserts c unless its pair already has a record. It reports whether c was stored.
func (l *Ledger) Put(c models.Completion) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.records[pair{c.HabitID, c.Day}]; ok {
		return false
	}
	l.insert(c)
	return true
}

// Restore re-inserts previously removed records.
func (l *Ledger) Restore(cs []models.Completion) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, c := range cs {
		if _, ok := l.records[pair{c.HabitID, c.Day}]; !ok {
			l.insert(c)
		}
	}
}

// Confirm swaps the record held for c's pair with c, typically replacing a
// temporary id with the one assigned by the sync adapter.
func (l *Ledger) Confirm(c models.Completion) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	k := pair{c.HabitID, c.Day}
	if _, ok := l.records[k]; !ok {
		return apperrors.NotFound("completion", c.HabitID+"@"+c.Day)
	}
	l.records[k] = c
	return nil
}

// Reset replaces every record. Later duplicates of a pair are dropped.
func (l *Ledger) Reset(cs []models.Completion) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = make(map[pair]models.Completion, len(cs))
	l.byDay = make(map[string]set)
	l.byHabit = make(map[string]set)
	for _, c := range cs {
		if _, ok := l.records[pair{c.HabitID, c.Day}]; !ok {
			l.insert(c)
		}
	}
}

// All returns a snapshot ordered by day, then creation time.
func (l *Ledger) All() []models.Completion {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Completion, 0, len(l.records))
	for _, c := range l.records {
		out = append(out, c)
	}
	sortCompletions(out)
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.records)
}

// insert and delete keep the indexes in step; callers hold the write lock.
func (l *Ledger) insert(c models.Completion) {
	l.records[pair{c.HabitID, c.Day}] = c
	if l.byDay[c.Day] == nil {
		l.byDay[c.Day] = make(set)
	}
	l.byDay[c.Day][c.HabitID] = struct{}{}
	if l.byHabit[c.HabitID] == nil {
		l.byHabit[c.HabitID] = make(set)
	}
	l.byHabit[c.HabitID][c.Day] = struct{}{}
}

func (l *Ledger) delete(k pair) {
	delete(l.records, k)
	if habits := l.byDay[k.day]; habits != nil {
		delete(habits, k.habitID)
		if len(habits) == 0 {
			delete(l.byDay, k.day)
		}
	}
	if days := l.byHabit[k.habitID]; days != nil {
		delete(days, k.day)
		if len(days) == 0 {
			delete(l.byHabit, k.habitID)
		}
	}
}

func sortCompletions(cs []models.Completion) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Day != cs[j].Day {
			return cs[i].Day < cs[j].Day
		}
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.Before(cs[j].CreatedAt)
		}
		return cs[i].HabitID < cs[j].HabitID
	})
}
