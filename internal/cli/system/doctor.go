package system

import (
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/soberlit/internal/backup"
	"github.com/julianstephens/soberlit/internal/calendar"
	"github.com/julianstephens/soberlit/internal/cli"
	"github.com/julianstephens/soberlit/internal/constants"
	"github.com/julianstephens/soberlit/internal/keyring"
	"github.com/julianstephens/soberlit/internal/lock"
	"github.com/julianstephens/soberlit/internal/storage/postgres"
	"github.com/julianstephens/soberlit/internal/storage/sqlite"
)

type DoctorCmd struct{}

type check struct {
	name     string
	run      func(*cli.Context) error
	needsDB  bool
	warnOnly bool
}

var checks = []check{
	{name: "Storage reachable", run: checkStorageReachable},
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Migrations complete", run: checkMigrationsComplete, needsDB: true},
	{name: "Data validation", run: checkDayRecords, needsDB: true},
	{name: "Streak snapshot", run: checkStreakSnapshot, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Session lock", run: checkSessionLock, warnOnly: true},
	{name: "Keyring", run: checkKeyring, warnOnly: true},
	{name: "Clock/timezone", run: func(*cli.Context) error { return checkClockTimezone(time.Now()) }},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	reachable := false
	for i, c := range checks {
		if c.needsDB && !reachable {
			fmt.Printf("⊘ %s: SKIPPED (storage not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			fmt.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			fmt.Printf("⚠ %s: WARNING\n", c.name)
			fmt.Printf("   %v\n", err)
		default:
			fmt.Printf("❌ %s: FAIL\n", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}

		if i == 0 {
			reachable = err == nil
		}
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkStorageReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}

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

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Store.(schemaStore)
	if !ok {
		// JSON storage carries its own format version
		return nil
	}
	current, latest, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	store, ok := ctx.Store.(schemaStore)
	if !ok {
		return nil
	}
	current, latest, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d (run 'soberlit migrate')", current, latest)
	}
	return nil
}

func checkDayRecords(ctx *cli.Context) error {
	if _, err := ctx.Store.GetSettings(); err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	days, err := ctx.Store.LoadAllDayStatus()
	if err != nil {
		return fmt.Errorf("failed to load days: %w", err)
	}
	for date, status := range days {
		if _, err := calendar.ParseDate(date); err != nil {
			return fmt.Errorf("day %q: %w", date, err)
		}
		if status.StreakStartTimestampUTC != nil && !status.Sober {
			return fmt.Errorf("day %s has a streak start time but is not sober", date)
		}
	}
	return nil
}

func checkStreakSnapshot(ctx *cli.Context) error {
	data, err := ctx.Store.LoadStreakData()
	if err != nil {
		return fmt.Errorf("failed to load streak snapshot: %w", err)
	}
	if data == nil {
		return nil
	}
	if data.CurrentStreak < 0 || data.LongestStreak < 0 {
		return fmt.Errorf("negative streak values: current %d, longest %d", data.CurrentStreak, data.LongestStreak)
	}
	if data.CurrentStreak > data.LongestStreak {
		return fmt.Errorf("current streak (%d) exceeds longest streak (%d)", data.CurrentStreak, data.LongestStreak)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'soberlit backup create'")
	}
	return nil
}

func checkSessionLock(ctx *cli.Context) error {
	holder, err := lock.Inspect(ctx.LockDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("unreadable lockfile %s: %v", lock.Path(ctx.LockDir()), err)
	}
	if holder.Alive {
		return fmt.Errorf("a soberlit session is running (pid %d)", holder.PID)
	}
	return fmt.Errorf("stale lockfile from pid %d, it will be replaced on next start", holder.PID)
}

func checkKeyring(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*postgres.Store); !ok {
		return nil
	}
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is not available, use %s instead", constants.ConnectionEnvVar)
	}
	return nil
}

func checkClockTimezone(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}
