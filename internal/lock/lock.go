// Package lock keeps a single soberlit process in charge of the calendar.
//
// The lockfile holds "PID|SESSION_ID". A lockfile whose PID is no longer a
// running soberlit process is stale and gets taken over.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/soberlit/internal/constants"
	"github.com/julianstephens/soberlit/internal/logger"
)

var (
	findProcessFunc = ps.FindProcess
	getpid          = os.Getpid
)

// ErrLocked is returned when another live soberlit process holds the lock.
var ErrLocked = errors.New("another soberlit session is running")

// Holder describes the contents of a lockfile.
type Holder struct {
	PID       int
	SessionID string
	Alive     bool
}

// Lock is a held session lock.
type Lock struct {
	path      string
	sessionID string
}

// Path returns the lockfile location for a config directory.
func Path(dir string) string {
	return filepath.Join(dir, constants.SessionLockfileName)
}

// Acquire takes the session lock in dir, replacing a stale lockfile.
func Acquire(dir string) (*Lock, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	path := Path(dir)

	holder, err := Inspect(dir)
	switch {
	case err == nil && holder.Alive:
		return nil, fmt.Errorf("%w (pid %d)", ErrLocked, holder.PID)
	case err == nil:
		logger.Info("Removing stale session lock", "pid", holder.PID)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove stale lock: %w", err)
		}
	case !os.IsNotExist(err):
		logger.Warn("Replacing unreadable session lock", "error", err)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove unreadable lock: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("failed to create lockfile: %w", err)
	}
	defer f.Close()

	l := &Lock{path: path, sessionID: uuid.NewString()}
	if _, err := fmt.Fprintf(f, "%d|%s", getpid(), l.sessionID); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write lockfile: %w", err)
	}
	return l, nil
}

// Release removes the lockfile if it still belongs to this lock.
func (l *Lock) Release() error {
	content, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	_, sessionID, err := parse(content)
	if err != nil || sessionID != l.sessionID {
		logger.Warn("Session lock was taken over, leaving it in place", "path", l.path)
		return nil
	}
	return os.Remove(l.path)
}

// SessionID identifies this lock holder.
func (l *Lock) SessionID() string {
	return l.sessionID
}

// Inspect reads the lockfile in dir. The returned error satisfies
// os.IsNotExist when there is no lockfile.
func Inspect(dir string) (Holder, error) {
	content, err := os.ReadFile(Path(dir))
	if err != nil {
		return Holder{}, err
	}
	pid, sessionID, err := parse(content)
	if err != nil {
		return Holder{}, err
	}
	return Holder{PID: pid, SessionID: sessionID, Alive: alive(pid)}, nil
}

func parse(content []byte) (int, string, error) {
	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 2 {
		return 0, "", errors.New("lockfile is malformed")
	}
	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return 0, "", errors.New("invalid process ID in lockfile")
	}
	if strings.TrimSpace(parts[1]) == "" {
		return 0, "", errors.New("session id in lockfile is empty")
	}
	return pid, parts[1], nil
}

// alive reports whether pid is a running soberlit process.
func alive(pid int) bool {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(process.Executable(), constants.AppName)
}
