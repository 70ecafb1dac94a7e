package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readLog(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	return string(data)
}

func TestInitWritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: dir}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Debug("hidden detail")
	Info("Habit created", "name", "Read")
	Warn("Automatic backup failed", "error", "disk full")
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	out := readLog(t, dir)
	for _, want := range []string{"Habit created", "name=Read", "Automatic backup failed", "habitflow"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden detail") {
		t.Error("debug line written without debug mode")
	}
}

func TestDebugModeCopiesToStderr(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer

	if err := Init(Config{Debug: true, ConfigDir: dir, Stderr: &stderr}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Debug("loaded habits", "count", 3)
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if !strings.Contains(stderr.String(), "loaded habits") {
		t.Errorf("stderr missing debug line: %q", stderr.String())
	}
	if !strings.Contains(readLog(t, dir), "count=3") {
		t.Error("log file missing debug line")
	}
}

func TestHelpersWithoutInit(t *testing.T) {
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	Debug("dropped")
	Info("dropped")
	Warn("dropped")
	Error("dropped")
}

func TestReinitSwitchesFile(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()

	if err := Init(Config{ConfigDir: first}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Info("first")
	if err := Init(Config{ConfigDir: second}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	Info("second")
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if got := readLog(t, first); strings.Contains(got, "second") {
		t.Errorf("first log received a later line: %s", got)
	}
	if got := readLog(t, second); !strings.Contains(got, "second") {
		t.Errorf("second log missing its line: %s", got)
	}
}
