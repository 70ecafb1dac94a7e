package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "habitflow"
	DefaultKeyringUser = "database-connection"
	DefaultConfigDir   = "~/.config/habitflow"
	DefaultConfigPath  = "~/.config/habitflow/habitflow.db"
	DefaultConfigFile  = "~/.config/habitflow/config.yaml"
	DefaultOwner       = "local"
	Version            = "v0.3.0"

	// DateFormat is the civil date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TempIDPrefix marks ids assigned locally that the sync adapter has not confirmed yet
	TempIDPrefix = "tmp-"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitflow-"
	BackupFileSuffix = ".db"

	DefaultSyncTimeout = 10 * time.Second
	DefaultLogDays     = 14

	// Chart windows
	DaysPerWeek    = 7
	MonthlyWeeks   = 4
	SixMonthMonths = 6
)

// Session States
const (
	StateHabits SessionState = iota
	StateAddHabit
	StateConfirmDelete
)

// Palette is the fixed set of colors a habit can be drawn with.
var Palette = []string{
	"#10B981", "#3B82F6", "#8B5CF6", "#F59E0B",
	"#EF4444", "#EC4899", "#14B8A6", "#6366F1",
}

// PaletteNames gives each preset a human label for forms and listings.
var PaletteNames = map[string]string{
	"#10B981": "emerald",
	"#3B82F6": "blue",
	"#8B5CF6": "violet",
	"#F59E0B": "amber",
	"#EF4444": "red",
	"#EC4899": "pink",
	"#14B8A6": "teal",
	"#6366F1": "indigo",
}

// DefaultColor is used when a habit is created without a color.
func DefaultColor() string {
	return Palette[0]
}
