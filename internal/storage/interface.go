package storage

import "github.com/julianstephens/soberlit/internal/models"

// Provider is a storage backend for the calendar, its streak snapshot,
// the timer and user settings.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Days
	LoadAllDayStatus() (map[string]models.DayStatus, error)
	SaveDayStatus(date string, status models.DayStatus) error

	// Streak snapshot. LoadStreakData returns nil when nothing was saved yet.
	LoadStreakData() (*models.StreakData, error)
	SaveStreakData(models.StreakData) error

	// Timer
	LoadTimerState() (models.TimerState, error)
	SaveTimerState(models.TimerState) error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Utils
	GetConfigPath() string
}
