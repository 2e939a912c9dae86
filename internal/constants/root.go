package constants

// Direction selects which end of the calendar range an extension grows.
type Direction string

const (
	AppName            = "soberlit"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/soberlit/soberlit.db"
	ConnectionEnvVar   = "SOBERLIT_DB_CONNECTION"
	LogLevelEnvVar     = "SOBERLIT_LOG_LEVEL"
	KeyringConfigValue = "keyring"
	Version            = "v0.3.0"

	// Calendar window
	InitialWeeksBefore = 4
	InitialWeeksAfter  = 4
	ExtensionWeeks     = 4
	DaysPerWeek        = 7
	MaxIntensity       = 10

	DirectionPast   Direction = "past"
	DirectionFuture Direction = "future"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "soberlit-"
	BackupFileSuffix = ".db"

	// Session lock
	SessionLockfileName = "soberlit-session.lock"

	// JSON store format version. Version 1 stored bare booleans per day.
	JSONStoreVersion = 2
)
