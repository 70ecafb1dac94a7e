// Package logger owns the process-wide charmbracelet logger. Lines go to a
// size-rotated file under <config dir>/logs, and in debug mode to stderr too.
// The helpers are safe to call before Init; they drop the message.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/habitflow/internal/constants"
)

const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 28
)

type Config struct {
	Debug     bool
	ConfigDir string
	// Stderr receives a copy of each line in debug mode. Defaults to os.Stderr.
	Stderr io.Writer
}

var (
	mu      sync.RWMutex
	current *log.Logger
	rotator *lumberjack.Logger
)

// Path is the active log file for a config directory.
func Path(configDir string) string {
	return filepath.Join(configDir, "logs", constants.AppName+".log")
}

// Init replaces the global logger. A previous log file is closed.
func Init(cfg Config) error {
	path := Path(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	rot := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	var w io.Writer = rot
	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
		stderr := cfg.Stderr
		if stderr == nil {
			stderr = os.Stderr
		}
		w = io.MultiWriter(stderr, rot)
	}

	l := log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          constants.AppName,
		ReportTimestamp: true,
		ReportCaller:    cfg.Debug,
		// skip the package helper frame
		CallerOffset: 1,
	})

	mu.Lock()
	prev := rotator
	current, rotator = l, rot
	mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Close flushes and detaches the log file. Later calls to the helpers are
// dropped until the next Init.
func Close() error {
	mu.Lock()
	rot := rotator
	current, rotator = nil, nil
	mu.Unlock()

	if rot == nil {
		return nil
	}
	return rot.Close()
}

func get() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Debug(msg string, keyvals ...interface{}) {
	if l := get(); l != nil {
		l.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...interface{}) {
	if l := get(); l != nil {
		l.Info(msg, keyvals...)
	}
}

// Infof suits callbacks that report progress as format strings.
func Infof(format string, args ...interface{}) {
	if l := get(); l != nil {
		l.Infof(format, args...)
	}
}

func Warn(msg string, keyvals ...interface{}) {
	if l := get(); l != nil {
		l.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...interface{}) {
	if l := get(); l != nil {
		l.Error(msg, keyvals...)
	}
}
