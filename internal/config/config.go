// Package config loads habitflow settings from an optional YAML file with
// environment overrides. Priority: ENV > YAML > defaults (via env-default tags).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/julianstephens/habitflow/internal/constants"
)

// Config is the root application configuration.
type Config struct {
	Owner    string       `yaml:"owner"    env:"HABITFLOW_OWNER"    env-default:"local"`
	Database string       `yaml:"database" env:"HABITFLOW_DB"       env-default:"~/.config/habitflow/habitflow.db"`
	Timezone string       `yaml:"timezone" env:"HABITFLOW_TIMEZONE" env-default:"Local"`
	Log      LogConfig    `yaml:"log"`
	Backup   BackupConfig `yaml:"backup"`
	Sync     SyncConfig   `yaml:"sync"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Debug bool `yaml:"debug" env:"HABITFLOW_DEBUG" env-default:"false"`
}

// BackupConfig holds SQLite backup settings.
type BackupConfig struct {
	Max int `yaml:"max" env:"HABITFLOW_MAX_BACKUPS" env-default:"14"`
}

// SyncConfig bounds every round trip to the storage backend.
type SyncConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"HABITFLOW_SYNC_TIMEOUT" env-default:"10s"`
}

// Load reads configuration from path (when it exists) and the environment.
// A missing file is only an error when explicit is true.
func Load(path string, explicit bool) (*Config, error) {
	var cfg Config

	path = ExpandPath(path)
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	cfg.Database = ExpandPath(cfg.Database)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the loaded values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Owner) == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database cannot be empty")
	}
	if c.Timezone != "" && c.Timezone != "Local" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
	}
	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("sync timeout must be positive, got %s", c.Sync.Timeout)
	}
	if c.Backup.Max < 1 {
		return fmt.Errorf("backup max must be at least 1, got %d", c.Backup.Max)
	}
	return nil
}

// IsPostgres reports whether the database setting is a PostgreSQL connection string.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.Database, "postgres://") || strings.HasPrefix(c.Database, "postgresql://") ||
		strings.Contains(c.Database, "host=")
}

// isRemote covers connection strings and the keyring placeholder, neither of
// which names a local directory.
func (c *Config) isRemote() bool {
	return c.IsPostgres() || strings.EqualFold(strings.TrimSpace(c.Database), "keyring")
}

// IsJSON reports whether the database setting points at a JSON file store.
func (c *Config) IsJSON() bool {
	return strings.HasSuffix(strings.ToLower(c.Database), ".json")
}

// ConfigDir is where logs and backups live. For file-backed stores it is the
// directory of the database file.
func (c *Config) ConfigDir() string {
	if c.isRemote() {
		return ExpandPath(constants.DefaultConfigDir)
	}
	return filepath.Dir(c.Database)
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
