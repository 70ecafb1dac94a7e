package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/storage/sqlite"
	"github.com/julianstephens/habitflow/internal/utils"
)

// schemaReporter is implemented by the SQL backends.
type schemaReporter interface {
	SchemaVersion() (current, latest int, err error)
}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.printf("Running diagnostics...\n\n")

	hasError := false
	check := func(name string, err error) {
		if err != nil {
			ctx.printf("❌ %s: FAIL\n", name)
			ctx.printf("   Error: %v\n", err)
			hasError = true
			return
		}
		ctx.printf("✓ %s: OK\n", name)
	}
	skip := func(name string) {
		ctx.printf("⊘ %s: SKIPPED (database not reachable)\n", name)
	}

	reachErr := checkDBReachable(ctx)
	check("Database reachable", reachErr)
	dbReachable := reachErr == nil

	if dbReachable {
		check("Schema version", checkSchemaVersion(ctx))
		check("Migrations complete", checkMigrationsComplete(ctx))
	} else {
		skip("Schema version")
		skip("Migrations complete")
	}

	if _, ok := ctx.Store.(*sqlite.Store); ok {
		if err := checkBackupsPresent(ctx); err != nil {
			ctx.printf("⚠ Backups present: WARNING\n")
			ctx.printf("   %v\n", err)
		} else {
			ctx.printf("✓ Backups present: OK\n")
		}
	}

	if dbReachable {
		check("Completion integrity", checkCompletionIntegrity(ctx))
	} else {
		skip("Completion integrity")
	}

	check("Clock/timezone", checkClockTimezone(ctx))

	ctx.printf("\n")
	if hasError {
		ctx.printf("Diagnostics completed with errors.\n")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.printf("All diagnostics passed!\n")
	return nil
}

func checkDBReachable(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	// For SQLite, also try a simple query
	if sqliteStore, ok := ctx.Store.(*sqlite.Store); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *Context) error {
	reporter, ok := ctx.Store.(schemaReporter)
	if !ok {
		// JSON store doesn't have a schema version
		return nil
	}

	current, latest, err := reporter.SchemaVersion()
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *Context) error {
	reporter, ok := ctx.Store.(schemaReporter)
	if !ok {
		return nil
	}

	current, latest, err := reporter.SchemaVersion()
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr, err := ctx.backupManager()
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

// checkCompletionIntegrity reads straight from the backend, bypassing the
// ledger, which would silently collapse duplicate pairs.
func checkCompletionIntegrity(ctx *Context) error {
	bg := context.Background()
	owner := ctx.Tracker.OwnerID()

	habits, err := ctx.Store.LoadHabits(bg, owner)
	if err != nil {
		return fmt.Errorf("failed to load habits: %w", err)
	}
	completions, err := ctx.Store.LoadCompletions(bg, owner)
	if err != nil {
		return fmt.Errorf("failed to load completions: %w", err)
	}

	known := make(map[string]bool, len(habits))
	for _, h := range habits {
		known[h.ID] = true
	}

	seen := make(map[string]bool, len(completions))
	for _, c := range completions {
		if !known[c.HabitID] {
			return fmt.Errorf("completion %s references missing habit %s", c.ID, c.HabitID)
		}
		if _, err := utils.ParseDay(c.Day); err != nil {
			return fmt.Errorf("completion %s has an invalid day: %w", c.ID, err)
		}
		key := c.HabitID + "|" + c.Day
		if seen[key] {
			return fmt.Errorf("duplicate completion for habit %s on %s", c.HabitID, c.Day)
		}
		seen[key] = true
	}

	if sqliteStore, ok := ctx.Store.(*sqlite.Store); ok {
		var orphaned int
		err := sqliteStore.GetDB().QueryRow(`
			SELECT COUNT(*)
			FROM habit_completions c
			LEFT JOIN habits h ON c.habit_id = h.id
			WHERE h.id IS NULL
		`).Scan(&orphaned)
		if err != nil {
			return fmt.Errorf("failed to check orphaned completions: %w", err)
		}
		if orphaned > 0 {
			return fmt.Errorf("found %d orphaned completions (referencing non-existent habits)", orphaned)
		}
	}
	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	if ctx.Config != nil {
		if _, err := utils.LoadLocation(ctx.Config.Timezone); err != nil {
			return fmt.Errorf("configured timezone %q: %w", ctx.Config.Timezone, err)
		}
	}
	return nil
}
