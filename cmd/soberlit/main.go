package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/soberlit/internal/cli"
	"github.com/julianstephens/soberlit/internal/cli/backups"
	"github.com/julianstephens/soberlit/internal/cli/settings"
	"github.com/julianstephens/soberlit/internal/cli/streaks"
	"github.com/julianstephens/soberlit/internal/cli/system"
	"github.com/julianstephens/soberlit/internal/constants"
	apperrors "github.com/julianstephens/soberlit/internal/errors"
	"github.com/julianstephens/soberlit/internal/logger"
	"github.com/julianstephens/soberlit/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite path, .json file, PostgreSQL connection string, or 'keyring'. PostgreSQL credentials must NOT be embedded in the connection string." type:"string" default:"~/.config/soberlit/soberlit.db"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd      `cmd:"" help:"Initialize soberlit storage."`
	Migrate  system.MigrateCmd   `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd    `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd       `cmd:"" help:"Launch the interactive calendar." default:"1"`
	Status   streaks.StatusCmd   `cmd:"" help:"Show current and longest streak."`
	Toggle   streaks.ToggleCmd   `cmd:"" help:"Toggle a day between sober and not sober."`
	Calendar streaks.CalendarCmd `cmd:"" help:"Print the calendar grid."`
	Timer    streaks.TimerCmd    `cmd:"" help:"Show the sobriety timer."`
	Settings struct {
		Show settings.SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
		Set  settings.SettingsSetCmd  `cmd:"" help:"Update settings."`
	} `cmd:"" help:"Manage application settings."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string (password masked)."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check OS keyring availability." default:"1"`
	} `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Sobriety calendar and streak tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	configDir, err := configDir(CLI.Config)
	if err != nil {
		apperrors.Fatalf("failed to resolve config directory: %w", err)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	command := ctx.Command()
	appCtx := &cli.Context{ConfigDir: configDir}

	// Keyring commands manage the connection string and need no storage.
	if !strings.HasPrefix(command, "keyring") {
		store, err := storage.Open(resolveConfig(CLI.Config))
		if err != nil {
			apperrors.Fatal(err)
		}
		defer store.Close()
		appCtx.Store = store

		// Init handles its own loading
		if !strings.HasPrefix(command, "init") {
			if err := store.Load(); err != nil {
				store.Close()
				apperrors.Fatal(err)
			}
		}
	}

	if err := ctx.Run(appCtx); err != nil {
		logger.Error("Command failed", "command", command, "error", err)
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		if appCtx.Store != nil {
			appCtx.Store.Close()
		}
		os.Exit(1)
	}
}

// resolveConfig switches to the keyring/environment connection when the
// default path is in use and SOBERLIT_DB_CONNECTION is set.
func resolveConfig(config string) string {
	if config == constants.DefaultConfigPath && os.Getenv(constants.ConnectionEnvVar) != "" {
		return constants.KeyringConfigValue
	}
	return config
}

// configDir is where logs and the session lock live: next to file-backed
// storage, or in the default directory for PostgreSQL.
func configDir(config string) (string, error) {
	path := config
	if config == constants.KeyringConfigValue || strings.Contains(config, "://") || strings.Contains(config, "host=") {
		path = constants.DefaultConfigPath
	}
	expanded, err := storage.ExpandPath(path)
	if err != nil {
		return "", err
	}
	return filepath.Dir(expanded), nil
}
