package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/habitflow/internal/backup"
	"github.com/julianstephens/habitflow/internal/config"
	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/keyring"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/models"
	"github.com/julianstephens/habitflow/internal/storage"
	"github.com/julianstephens/habitflow/internal/storage/postgres"
	"github.com/julianstephens/habitflow/internal/storage/sqlite"
	"github.com/julianstephens/habitflow/internal/tracker"
)

type Context struct {
	Config  *config.Config
	Store   storage.Provider
	Tracker *tracker.Tracker
	Out     io.Writer

	// OnNotice, when set, receives tracker notices instead of the log.
	OnNotice func(tracker.Notice)
}

// Notice is the tracker notifier for every command.
func (c *Context) Notice(n tracker.Notice) {
	if c.OnNotice != nil {
		c.OnNotice(n)
		return
	}
	if n.Level == tracker.NoticeError {
		logger.Warn(n.Title, "message", n.Message)
		return
	}
	logger.Info(n.Title, "message", n.Message)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

// load opens the store and fills the tracker from it.
func (c *Context) load(ctx context.Context) error {
	if err := c.Store.Load(); err != nil {
		return err
	}
	return c.Tracker.Load(ctx)
}

// findHabit resolves a habit by id or name. Names may repeat, so a name
// shared by several habits has to be given as an id instead.
func (c *Context) findHabit(name string) (models.Habit, error) {
	h, ok := c.Tracker.FindHabit(name)
	if !ok {
		return models.Habit{}, fmt.Errorf("habit %q not found", name)
	}
	if h.ID == name {
		return h, nil
	}

	var ids []string
	for _, other := range c.Tracker.Habits() {
		if strings.EqualFold(other.Name, h.Name) {
			ids = append(ids, other.ID)
		}
	}
	if len(ids) > 1 {
		return models.Habit{}, fmt.Errorf("habit name %q is ambiguous, use one of these ids: %s", name, strings.Join(ids, ", "))
	}
	return h, nil
}

func (c *Context) backupMax() int {
	if c.Config == nil {
		return 0
	}
	return c.Config.Backup.Max
}

// PerformAutomaticBackup creates an automatic backup of a SQLite store and
// silently handles errors. Other backends are skipped.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath(), c.backupMax())
	if _, err := mgr.Create(context.Background()); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// OpenStore picks the backend for target: a PostgreSQL connection string, a
// .json file or a SQLite database path. The keyring target is resolved
// first.
func OpenStore(target string) (storage.Provider, error) {
	fromKeyring := strings.EqualFold(strings.TrimSpace(target), keyring.Target)
	resolved, err := keyring.ResolveDatabase(target)
	if err != nil {
		return nil, err
	}

	if postgres.IsConnString(resolved) || strings.Contains(resolved, "host=") {
		if _, err := postgres.ValidateConnString(resolved); err != nil {
			if fromKeyring {
				return nil, fmt.Errorf("connection string in keyring: %w", err)
			}
			return nil, fmt.Errorf("%w (store it with '%s config set-connection' and use --db keyring)", err, constants.AppName)
		}
		return postgres.New(resolved), nil
	}

	path := config.ExpandPath(resolved)
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return storage.NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}
