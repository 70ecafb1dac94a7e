// Package backup keeps rotating snapshots of a SQLite habit database in a
// backups directory beside it. Snapshots are taken with VACUUM INTO, so a
// database that is open elsewhere is still copied consistently.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitflow/internal/constants"
	"github.com/julianstephens/habitflow/internal/logger"
)

const stampLayout = "20060102-150405"

// habitflow-20240301-090000.db, with an optional -N when two snapshots share
// a second.
var namePattern = regexp.MustCompile(`^` + regexp.QuoteMeta(constants.BackupFilePrefix) +
	`(\d{8}-\d{6})(?:-(\d+))?` + regexp.QuoteMeta(constants.BackupFileSuffix) + `$`)

type Snapshot struct {
	Path  string
	Taken time.Time
	Size  int64

	seq int
}

func (s Snapshot) Name() string {
	return filepath.Base(s.Path)
}

type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
}

// NewManager manages snapshots of dbPath. keep <= 0 means constants.MaxBackups.
func NewManager(dbPath string, keep int) *Manager {
	if keep <= 0 {
		keep = constants.MaxBackups
	}
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		keep:   keep,
		now:    time.Now,
	}
}

func (m *Manager) Dir() string { return m.dir }

// Max is how many snapshots Prune keeps.
func (m *Manager) Max() int { return m.keep }

// Resolve maps a bare snapshot name to its path in Dir. Anything else is
// returned unchanged.
func (m *Manager) Resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if p := filepath.Join(m.dir, name); fileExists(p) {
		return p
	}
	return name
}

// Create snapshots the database, then prunes old snapshots.
func (m *Manager) Create(ctx context.Context) (string, error) {
	path, err := m.snapshot(ctx)
	if err != nil {
		return "", err
	}
	if _, err := m.Prune(); err != nil {
		logger.Warn("Failed to prune old backups", "error", err)
	}
	return path, nil
}

func (m *Manager) snapshot(ctx context.Context) (string, error) {
	if !fileExists(m.dbPath) {
		return "", fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0o700); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	dest, err := m.freeName()
	if err != nil {
		return "", err
	}

	db, err := openChecked(ctx, m.dbPath)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	_, err = db.ExecContext(ctx, "VACUUM INTO ?", dest)
	db.Close()
	if err != nil {
		logger.Debug("VACUUM INTO failed, copying the file instead", "error", err)
		if err := copyFile(m.dbPath, dest); err != nil {
			return "", fmt.Errorf("copy database: %w", err)
		}
	}

	logger.Info("Created backup", "path", dest)
	return dest, nil
}

func (m *Manager) freeName() (string, error) {
	stamp := m.now().Format(stampLayout)
	for seq := 0; seq <= 100; seq++ {
		name := constants.BackupFilePrefix + stamp
		if seq > 0 {
			name += "-" + strconv.Itoa(seq)
		}
		p := filepath.Join(m.dir, name+constants.BackupFileSuffix)
		if !fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("no free backup name for %s", stamp)
}

func parseName(name string) (time.Time, int, bool) {
	match := namePattern.FindStringSubmatch(name)
	if match == nil {
		return time.Time{}, 0, false
	}
	taken, err := time.ParseInLocation(stampLayout, match[1], time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	seq := 0
	if match[2] != "" {
		seq, _ = strconv.Atoi(match[2])
	}
	return taken, seq, true
}

// List returns the snapshots in Dir, newest first. Files that do not follow
// the snapshot naming are ignored.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return []Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	out := []Snapshot{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		taken, seq, ok := parseName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Snapshot{
			Path:  filepath.Join(m.dir, e.Name()),
			Taken: taken,
			Size:  info.Size(),
			seq:   seq,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].Taken.Equal(out[j].Taken) {
			return out[i].Taken.After(out[j].Taken)
		}
		return out[i].seq > out[j].seq
	})
	return out, nil
}

// Prune deletes everything past the newest Max snapshots and returns the
// removed paths.
func (m *Manager) Prune() ([]string, error) {
	all, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(all) <= m.keep {
		return nil, nil
	}

	var removed []string
	for _, s := range all[m.keep:] {
		if err := os.Remove(s.Path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", s.Name(), err)
		}
		removed = append(removed, s.Path)
	}
	return removed, nil
}

// Restore replaces the database with the snapshot at path. The current
// database is snapshotted first, without pruning, so the restore source can
// never be evicted; that snapshot's path is returned. The database must not
// be open while this runs.
func (m *Manager) Restore(ctx context.Context, path string) (string, error) {
	if !fileExists(path) {
		return "", fmt.Errorf("backup file does not exist: %s", path)
	}
	db, err := openChecked(ctx, path)
	if err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}
	db.Close()

	var previous string
	if fileExists(m.dbPath) {
		if previous, err = m.snapshot(ctx); err != nil {
			return "", fmt.Errorf("back up current database: %w", err)
		}
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return previous, fmt.Errorf("copy backup: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		_ = os.Remove(tmp)
		return previous, fmt.Errorf("replace database: %w", err)
	}

	logger.Info("Restored database", "from", path, "previous", previous)
	return previous, nil
}

// openChecked opens path read-only and makes sure it parses as SQLite.
func openChecked(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, err
	}
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
