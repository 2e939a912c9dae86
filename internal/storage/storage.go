package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/soberlit/internal/constants"
	"github.com/julianstephens/soberlit/internal/keyring"
	"github.com/julianstephens/soberlit/internal/logger"
	"github.com/julianstephens/soberlit/internal/models"
	"github.com/julianstephens/soberlit/internal/storage/postgres"
	"github.com/julianstephens/soberlit/internal/storage/sqlite"
)

var log = logger.For("storage")

var (
	_ Provider = (*JSONStore)(nil)
	_ Provider = (*sqlite.Store)(nil)
	_ Provider = (*postgres.Store)(nil)
)

// Open picks a backend for the --config value.
//
//   - "keyring": PostgreSQL, connection string from SOBERLIT_DB_CONNECTION or the OS keyring
//   - postgres:// or postgresql:// URL: PostgreSQL, refused when it embeds a password
//   - a path ending in .json: JSON file store
//   - anything else: SQLite database path, "~" expanded
func Open(config string) (Provider, error) {
	switch {
	case config == constants.KeyringConfigValue:
		connStr, source, err := keyring.ResolveConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no connection string in %s or the OS keyring, run 'soberlit keyring set' first", constants.ConnectionEnvVar)
			}
			return nil, err
		}
		log.Debug("Using PostgreSQL connection string", "source", source)
		return postgres.New(connStr), nil

	case postgres.IsConnString(config):
		if postgres.HasEmbeddedCredentials(config) {
			return nil, fmt.Errorf("%w: store it with 'soberlit keyring set' or export %s instead",
				postgres.ErrEmbeddedCredentials, constants.ConnectionEnvVar)
		}
		return postgres.New(config), nil
	}

	path, err := ExpandPath(config)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return NewJSONStore(path), nil
	}
	return sqlite.NewStore(path), nil
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// MigrationResult summarizes a Migrate call.
type MigrationResult struct {
	Days     int
	Streak   bool
	Timer    bool
	Settings bool
}

// Migrate copies every record from src into dst. Both providers must be
// loaded. Days already present in dst are overwritten.
func Migrate(src, dst Provider) (MigrationResult, error) {
	var res MigrationResult

	days, err := src.LoadAllDayStatus()
	if err != nil {
		return res, fmt.Errorf("reading days from %s: %w", src.GetConfigPath(), err)
	}
	for date, status := range days {
		if err := dst.SaveDayStatus(date, status); err != nil {
			return res, fmt.Errorf("writing day %s: %w", date, err)
		}
		res.Days++
	}

	streak, err := src.LoadStreakData()
	if err != nil {
		return res, fmt.Errorf("reading streak snapshot: %w", err)
	}
	if streak != nil {
		if err := dst.SaveStreakData(*streak); err != nil {
			return res, fmt.Errorf("writing streak snapshot: %w", err)
		}
		res.Streak = true
	}

	timerState, err := src.LoadTimerState()
	if err != nil {
		return res, fmt.Errorf("reading timer state: %w", err)
	}
	if timerState != (models.TimerState{}) {
		if err := dst.SaveTimerState(timerState); err != nil {
			return res, fmt.Errorf("writing timer state: %w", err)
		}
		res.Timer = true
	}

	settings, err := src.GetSettings()
	if err != nil {
		return res, fmt.Errorf("reading settings: %w", err)
	}
	if err := dst.SaveSettings(settings); err != nil {
		return res, fmt.Errorf("writing settings: %w", err)
	}
	res.Settings = true

	return res, nil
}
