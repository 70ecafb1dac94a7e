package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/habitflow/internal/constants"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), false)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Owner != "local" {
		t.Errorf("Owner = %q, want %q", cfg.Owner, "local")
	}
	if cfg.Timezone != "Local" {
		t.Errorf("Timezone = %q, want %q", cfg.Timezone, "Local")
	}
	if cfg.Sync.Timeout != 10*time.Second {
		t.Errorf("Sync.Timeout = %v, want 10s", cfg.Sync.Timeout)
	}
	if cfg.Backup.Max != 14 {
		t.Errorf("Backup.Max = %d, want 14", cfg.Backup.Max)
	}
	if strings.HasPrefix(cfg.Database, "~") {
		t.Errorf("Database path was not expanded: %q", cfg.Database)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), true); err == nil {
		t.Error("Load() with explicit missing file should fail")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `owner: alice
database: ` + filepath.Join(dir, "habits.db") + `
timezone: UTC
sync:
  timeout: 3s
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("HABITFLOW_OWNER", "bob")

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Owner != "bob" {
		t.Errorf("Owner = %q, want env override %q", cfg.Owner, "bob")
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want %q", cfg.Timezone, "UTC")
	}
	if cfg.Sync.Timeout != 3*time.Second {
		t.Errorf("Sync.Timeout = %v, want 3s", cfg.Sync.Timeout)
	}
	if cfg.ConfigDir() != dir {
		t.Errorf("ConfigDir() = %q, want %q", cfg.ConfigDir(), dir)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Owner:    "local",
			Database: "/tmp/habitflow.db",
			Timezone: "Local",
			Backup:   BackupConfig{Max: 14},
			Sync:     SyncConfig{Timeout: time.Second},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty owner", mutate: func(c *Config) { c.Owner = "  " }, wantErr: true},
		{name: "empty database", mutate: func(c *Config) { c.Database = "" }, wantErr: true},
		{name: "bad timezone", mutate: func(c *Config) { c.Timezone = "Invalid/Zone" }, wantErr: true},
		{name: "named timezone", mutate: func(c *Config) { c.Timezone = "Europe/London" }},
		{name: "zero timeout", mutate: func(c *Config) { c.Sync.Timeout = 0 }, wantErr: true},
		{name: "zero backups", mutate: func(c *Config) { c.Backup.Max = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBackendDetection(t *testing.T) {
	tests := []struct {
		database string
		postgres bool
		json     bool
	}{
		{database: "/home/u/.config/habitflow/habitflow.db"},
		{database: "postgres://u@localhost:5432/habitflow", postgres: true},
		{database: "postgresql://u@localhost/habitflow", postgres: true},
		{database: "host=db.local user=u dbname=habitflow", postgres: true},
		{database: "/tmp/habits.JSON", json: true},
	}

	for _, tt := range tests {
		t.Run(tt.database, func(t *testing.T) {
			cfg := Config{Database: tt.database}
			if got := cfg.IsPostgres(); got != tt.postgres {
				t.Errorf("IsPostgres() = %v, want %v", got, tt.postgres)
			}
			if got := cfg.IsJSON(); got != tt.json {
				t.Errorf("IsJSON() = %v, want %v", got, tt.json)
			}
		})
	}
}

func TestConfigDirForRemoteBackends(t *testing.T) {
	want := ExpandPath(constants.DefaultConfigDir)
	for _, db := range []string{"postgres://u@localhost/habitflow", "keyring", "KEYRING"} {
		cfg := Config{Database: db}
		if got := cfg.ConfigDir(); got != want {
			t.Errorf("ConfigDir() for %q = %q, want %q", db, got, want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/x.db"); got != filepath.Join(home, "x.db") {
		t.Errorf("ExpandPath(~/x.db) = %q", got)
	}
	if got := ExpandPath("/abs/x.db"); got != "/abs/x.db" {
		t.Errorf("ExpandPath(/abs/x.db) = %q", got)
	}
}
