package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitflow/internal/cli"
	"github.com/julianstephens/habitflow/internal/config"
	"github.com/julianstephens/habitflow/internal/constants"
	apperrors "github.com/julianstephens/habitflow/internal/errors"
	"github.com/julianstephens/habitflow/internal/logger"
	"github.com/julianstephens/habitflow/internal/tracker"
	"github.com/julianstephens/habitflow/internal/utils"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"string" default:"${config_file}"`
	DB      string `name:"db" help:"Database path, PostgreSQL connection string or 'keyring'. Connection strings must NOT embed a password; use .pgpass, PGPASSWORD or the OS keyring instead."`
	Owner   string `help:"Owner id that habits and completions are scoped to."`
	Debug   bool   `help:"Log debug output to stderr."`

	Init      cli.InitCmd   `cmd:"" help:"Initialize habitflow storage."`
	Tui       cli.TuiCmd    `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Habit     cli.HabitCmd  `cmd:"" help:"Manage habits and daily completions."`
	Doctor    cli.DoctorCmd `cmd:"" help:"Run health checks and diagnostics."`
	Backup    cli.BackupCmd `cmd:"" help:"Manage SQLite database backups."`
	ConfigCmd cli.ConfigCmd `cmd:"" name:"config" help:"Manage the PostgreSQL connection stored in the OS keyring."`
	DebugCmd  cli.DebugCmd  `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Track daily habits and chart your progress."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":     constants.Version,
			"config_file": constants.DefaultConfigFile,
			"log_days":    strconv.Itoa(constants.DefaultLogDays),
		},
	)

	cfg, err := config.Load(CLI.Config, CLI.Config != constants.DefaultConfigFile)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.DB != "" {
		cfg.Database = CLI.DB
	}
	if CLI.Owner != "" {
		cfg.Owner = CLI.Owner
	}
	if CLI.Debug {
		cfg.Log.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Log.Debug, ConfigDir: cfg.ConfigDir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}
	defer logger.Close()

	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		apperrors.Fatal(err)
	}

	store, err := cli.OpenStore(cfg.Database)
	if err != nil {
		apperrors.Fatal(err)
	}

	appCtx := &cli.Context{
		Config: cfg,
		Store:  store,
	}
	appCtx.Tracker = tracker.New(cfg.Owner, store,
		tracker.WithNotifier(appCtx.Notice),
		tracker.WithLocation(loc),
		tracker.WithTimeout(cfg.Sync.Timeout),
	)
	defer store.Close()

	// Fatal exits without running the deferred closes; it closes the log
	// itself.
	if err := ctx.Run(appCtx); err != nil {
		_ = store.Close()
		apperrors.Fatal(err)
	}
}
