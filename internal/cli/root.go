package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/julianstephens/soberlit/internal/backup"
	"github.com/julianstephens/soberlit/internal/calendar"
	"github.com/julianstephens/soberlit/internal/constants"
	"github.com/julianstephens/soberlit/internal/engine"
	"github.com/julianstephens/soberlit/internal/lock"
	"github.com/julianstephens/soberlit/internal/logger"
	"github.com/julianstephens/soberlit/internal/storage"
	"github.com/julianstephens/soberlit/internal/storage/sqlite"
	"github.com/julianstephens/soberlit/internal/timer"
)

// maxBackfillExtensions bounds how far back a command extends the range
// to reach a requested date.
const maxBackfillExtensions = 52

type Context struct {
	Store     storage.Provider
	ConfigDir string
	Clock     engine.Clock // nil means the system clock
}

// Session is a loaded engine and the timer it drives.
type Session struct {
	Engine *engine.Engine
	Timer  *timer.Timer
}

// Close waits for queued writes to reach storage.
func (s *Session) Close() {
	s.Engine.Wait()
	s.Timer.Wait()
}

// NewSession restores the timer and loads the calendar. A load failure is
// reported and the session continues on the fallback range the engine publishes.
func (c *Context) NewSession() *Session {
	t := timer.New(c.Store)
	if err := t.Restore(); err != nil {
		logger.Warn("Failed to restore timer state", "error", err)
	}

	var opts []engine.Option
	if c.Clock != nil {
		opts = append(opts, engine.WithClock(c.Clock))
	}
	eng := engine.New(c.Store, t, opts...)
	if err := eng.Load(); err != nil {
		fmt.Printf("Warning: could not load saved days, showing an empty calendar: %v\n", err)
	}
	return &Session{Engine: eng, Timer: t}
}

// EnsureInRange extends the range into the past until it contains date.
// Dates after the range are left for the engine to reject.
func (s *Session) EnsureInRange(date string) error {
	if _, err := calendar.ParseDate(date); err != nil {
		return err
	}
	for i := 0; i <= maxBackfillExtensions; i++ {
		weeks := s.Engine.Weeks()
		if len(weeks) == 0 || weeks[0].Days[0].ID <= date {
			return nil
		}
		if i == maxBackfillExtensions {
			break
		}
		if err := s.Engine.LoadPastWeeks(); err != nil && !errors.Is(err, engine.ErrExtensionInFlight) {
			return err
		}
	}
	return fmt.Errorf("%s is more than %d weeks before the calendar", date, maxBackfillExtensions*constants.ExtensionWeeks)
}

// PerformAutomaticBackup backs up SQLite stores, logging any failure.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// AcquireLock takes the session lock so only one process changes the
// calendar at a time. The returned func releases it.
func (c *Context) AcquireLock() (func(), error) {
	l, err := lock.Acquire(c.LockDir())
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return nil, fmt.Errorf("%w, close it before changing the calendar", err)
		}
		return nil, err
	}
	return func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release session lock", "error", err)
		}
	}, nil
}

// LockDir is where the session lockfile lives.
func (c *Context) LockDir() string {
	if c.ConfigDir != "" {
		return c.ConfigDir
	}
	return filepath.Dir(c.Store.GetConfigPath())
}
