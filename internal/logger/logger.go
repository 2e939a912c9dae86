package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/soberlit/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger

	scopedMu sync.Mutex
	scoped   = map[string]*log.Logger{}
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	ConfigDir string
}

// Init initializes the global logger. The level is warn, debug with
// cfg.Debug, and SOBERLIT_LOG_LEVEL overrides both.
func Init(cfg Config) error {
	logDir := filepath.Join(cfg.ConfigDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.AppName+".log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	level := log.WarnLevel
	if cfg.Debug {
		level = log.DebugLevel
	}
	if env := os.Getenv(constants.LogLevelEnvVar); env != "" {
		parsed, err := log.ParseLevel(env)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", constants.LogLevelEnvVar, err)
		}
		level = parsed
	}

	// Stderr only gets a copy in debug mode; the TUI owns the terminal otherwise.
	var writer io.Writer = fileWriter
	if cfg.Debug {
		writer = io.MultiWriter(os.Stderr, fileWriter)
	}

	scopedMu.Lock()
	defer scopedMu.Unlock()
	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})
	scoped = map[string]*log.Logger{}
	return nil
}

// Component logs with a "soberlit/<name>" prefix. It can be declared as a
// package variable: the global logger is looked up on every call.
type Component struct {
	name string
}

// For returns the component logger for name.
func For(name string) Component {
	return Component{name: name}
}

func (c Component) logger() *log.Logger {
	scopedMu.Lock()
	defer scopedMu.Unlock()
	if Logger == nil {
		return nil
	}
	l, ok := scoped[c.name]
	if !ok {
		l = Logger.WithPrefix(constants.AppName + "/" + c.name)
		scoped[c.name] = l
	}
	return l
}

func (c Component) Debug(msg string, keyvals ...any) {
	if l := c.logger(); l != nil {
		l.Debug(msg, keyvals...)
	}
}

func (c Component) Info(msg string, keyvals ...any) {
	if l := c.logger(); l != nil {
		l.Info(msg, keyvals...)
	}
}

func (c Component) Warn(msg string, keyvals ...any) {
	if l := c.logger(); l != nil {
		l.Warn(msg, keyvals...)
	}
}

func (c Component) Error(msg string, keyvals ...any) {
	if l := c.logger(); l != nil {
		l.Error(msg, keyvals...)
	}
}

// Debug logs a debug message
func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}

// Fatal logs a fatal error and exits
func Fatal(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Fatal(msg, keyvals...)
	}
	os.Exit(1)
}
