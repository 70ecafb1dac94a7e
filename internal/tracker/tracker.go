// Package tracker ties the habit registry, the completion ledger and a sync
// adapter into one owner-scoped session.
//
// Every mutation is applied locally first, then sent to the adapter. A failed
// round trip reverts the local change, emits an error Notice and returns a
// SyncFailure. Same-pair toggles are serialized for their whole round trip,
// and deleting a habit excludes toggles on that habit until it finishes.
package tracker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitflow/internal/aggregate"
	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/ledger"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/registry"
	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/utils"
)

type Tracker struct {
	ownerID  string
	adapter  storage.Adapter
	registry *registry.Registry
	ledger   *ledger.Ledger

	notify  Notifier
	now     func() time.Time
	loc     *time.Location
	timeout time.Duration

	habitLocks *keyedLocks
	pairLocks  *keyedLocks
}

type Option func(*Tracker)

// WithNotifier routes notices to fn.
func WithNotifier(fn Notifier) Option {
	return func(t *Tracker) {
		if fn != nil {
			t.notify = fn
		}
	}
}

// WithClock overrides the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLocation sets the timezone that decides which civil day is today.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// WithTimeout bounds each adapter round trip. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		t.timeout = d
	}
}

func New(ownerID string, adapter storage.Adapter, opts ...Option) *Tracker {
	t := &Tracker{
		ownerID:    ownerID,
		adapter:    adapter,
		registry:   registry.New(ownerID),
		ledger:     ledger.New(ownerID),
		notify:     func(Notice) {},
		now:        time.Now,
		loc:        time.Local,
		timeout:    constants.DefaultSyncTimeout,
		habitLocks: newKeyedLocks(),
		pairLocks:  newKeyedLocks(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) OwnerID() string {
	return t.ownerID
}

func (t *Tracker) roundTrip(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.timeout)
}

func (t *Tracker) fail(op, title, message string, err error) error {
	logger.Error("Sync failed", "op", op, "owner", t.ownerID, "error", err)
	t.notify(Notice{Level: NoticeError, Title: title, Message: message})
	return apperrors.Sync(op, err)
}

// Load fetches habits and completions concurrently and replaces the local
// state only when both succeed. It is meant to run before any mutation.
func (t *Tracker) Load(ctx context.Context) error {
	ctx, cancel := t.roundTrip(ctx)
	defer cancel()

	var habits []models.Habit
	var completions []models.Completion

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		habits, err = t.adapter.LoadHabits(gctx, t.ownerID)
		return err
	})
	g.Go(func() error {
		var err error
		completions, err = t.adapter.LoadCompletions(gctx, t.ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return t.fail("load", "Failed to load habits", "Your habits could not be fetched. Try again later.", err)
	}

	t.registry.Reset(habits)
	t.ledger.Reset(completions)
	logger.Debug("Loaded habits", "owner", t.ownerID, "habits", len(habits), "completions", len(completions))
	return nil
}

// AddHabit validates the input, shows the habit immediately under a
// temporary id and swaps in the adapter's copy once it is stored.
func (t *Tracker) AddHabit(ctx context.Context, name, description, color string) (models.Habit, error) {
	pending, err := t.registry.Add(name, description, color)
	if err != nil {
		return models.Habit{}, err
	}

	ctx, cancel := t.roundTrip(ctx)
	defer cancel()

	created, err := t.adapter.CreateHabit(ctx, t.ownerID, pending.Name, pending.Description, pending.Color)
	if err != nil {
		_, _, _ = t.registry.Remove(pending.ID)
		return models.Habit{}, t.fail("create habit", "Failed to add habit", pending.Name+" could not be saved.", err)
	}

	if err := t.registry.Replace(pending.ID, created); err != nil {
		// Load replaced the collection mid-flight
		t.registry.Insert(created)
	}
	logger.Info("Habit created", "id", created.ID, "name", created.Name)
	t.notify(Notice{Level: NoticeSuccess, Title: "Habit created!", Message: created.Name + " has been added to your habits."})
	return created, nil
}

// DeleteHabit removes the habit and every completion of it. Deleting an
// unknown habit is a no-op.
func (t *Tracker) DeleteHabit(ctx context.Context, habitID string) error {
	unlock := t.habitLocks.Lock(habitID)
	defer unlock()

	if h, ok := t.registry.Get(habitID); ok && h.Pending() {
		return apperrors.Validation("habit", h.Name+" is still being saved")
	}

	habit, index, err := t.registry.Remove(habitID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			logger.Debug("Delete of unknown habit ignored", "id", habitID)
			return nil
		}
		return err
	}
	removed := t.ledger.RemoveAllFor(habitID)

	ctx, cancel := t.roundTrip(ctx)
	defer cancel()

	if err := t.adapter.DeleteHabit(ctx, habitID); err != nil && !apperrors.IsNotFound(err) {
		t.registry.Restore(habit, index)
		t.ledger.Restore(removed)
		return t.fail("delete habit", "Failed to delete habit", habit.Name+" could not be removed.", err)
	}

	logger.Info("Habit removed", "id", habitID, "name", habit.Name, "completions", len(removed))
	t.notify(Notice{Level: NoticeSuccess, Title: "Habit removed", Message: habit.Name + " has been removed."})
	return nil
}

// Toggle flips the completion of habitID on day and returns the new state.
// A habit that no longer exists yields a NotFoundError and changes nothing.
func (t *Tracker) Toggle(ctx context.Context, habitID, day string) (bool, error) {
	if _, err := utils.ParseDay(day); err != nil {
		return false, err
	}

	unlockHabit := t.habitLocks.RLock(habitID)
	defer unlockHabit()

	habit, ok := t.registry.Get(habitID)
	if !ok {
		return false, apperrors.NotFound("habit", habitID)
	}
	if habit.Pending() {
		return false, apperrors.Validation("habit", habit.Name+" is still being saved")
	}

	unlockPair := t.pairLocks.Lock(habitID + "|" + day)
	defer unlockPair()

	record, completed := t.ledger.Toggle(habitID, day)

	ctx, cancel := t.roundTrip(ctx)
	defer cancel()

	if completed {
		stored, err := t.adapter.CreateCompletion(ctx, t.ownerID, habitID, day)
		if err != nil {
			t.ledger.Remove(habitID, day)
			return false, t.fail("create completion", "Failed to update habit", habit.Name+" could not be marked done.", err)
		}
		if err := t.ledger.Confirm(stored); err != nil {
			t.ledger.Put(stored)
		}
		logger.Debug("Completion recorded", "habit", habitID, "day", day)
		return true, nil
	}

	if err := t.adapter.DeleteCompletion(ctx, record.ID); err != nil && !apperrors.IsNotFound(err) {
		t.ledger.Put(record)
		return true, t.fail("delete completion", "Failed to update habit", habit.Name+" could not be unmarked.", err)
	}
	logger.Debug("Completion cleared", "habit", habitID, "day", day)
	return false, nil
}

// FindHabit looks a habit up by id, falling back to a case-insensitive name match.
func (t *Tracker) FindHabit(idOrName string) (models.Habit, bool) {
	if h, ok := t.registry.Get(idOrName); ok {
		return h, true
	}
	return t.registry.FindByName(idOrName)
}

func (t *Tracker) Habits() []models.Habit {
	return t.registry.List()
}

func (t *Tracker) Completions() []models.Completion {
	return t.ledger.All()
}

func (t *Tracker) IsCompleted(habitID, day string) bool {
	return t.ledger.IsCompleted(habitID, day)
}

// Today returns the current civil day in the tracker's timezone.
func (t *Tracker) Today() string {
	return utils.FormatDay(t.now().In(t.loc))
}

func (t *Tracker) TodaysCompletedCount() int {
	return t.ledger.CountFor(t.Today())
}

// Snapshot copies the current state for export.
func (t *Tracker) Snapshot() models.Snapshot {
	return models.Snapshot{
		OwnerID:     t.ownerID,
		ExportedAt:  t.now().UTC(),
		Habits:      t.Habits(),
		Completions: t.Completions(),
	}
}

// reference resolves day to a civil date; an empty day means today.
func (t *Tracker) reference(day string) (time.Time, error) {
	if day == "" {
		day = t.Today()
	}
	return utils.ParseDay(day)
}

func (t *Tracker) WeeklyBuckets(day string) ([]models.DayBucket, error) {
	ref, err := t.reference(day)
	if err != nil {
		return nil, err
	}
	return aggregate.Weekly(t.Habits(), t.Completions(), ref), nil
}

func (t *Tracker) MonthlyBuckets(day string) ([]models.WeekBucket, error) {
	ref, err := t.reference(day)
	if err != nil {
		return nil, err
	}
	return aggregate.Monthly(t.Habits(), t.Completions(), ref), nil
}

func (t *Tracker) SixMonthBuckets(day string) ([]models.MonthBucket, error) {
	ref, err := t.reference(day)
	if err != nil {
		return nil, err
	}
	return aggregate.SixMonth(t.Habits(), t.Completions(), ref), nil
}
