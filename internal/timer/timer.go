package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/soberlit/internal/logger"
	"github.com/julianstephens/soberlit/internal/models"
	"github.com/julianstephens/soberlit/internal/queue"
)

var log = logger.For("timer")

// Store persists the timer snapshot.
type Store interface {
	LoadTimerState() (models.TimerState, error)
	SaveTimerState(models.TimerState) error
}

// Timer tracks whether a streak is running and since when. Every change is
// saved through the store in the background, in order.
type Timer struct {
	store  Store
	writes *queue.Queue

	mu    sync.Mutex
	state models.TimerState
}

func New(store Store) *Timer {
	return &Timer{store: store, writes: queue.New()}
}

// Restore loads the last saved snapshot.
func (t *Timer) Restore() error {
	state, err := t.store.LoadTimerState()
	if err != nil {
		return fmt.Errorf("failed to load timer state: %w", err)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
	return nil
}

// StartTimer sets the timer's origin, replacing any running origin. Starting
// again from the same instant is a no-op.
func (t *Timer) StartTimer(start time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start = start.UTC()
	if t.state.Running && t.state.StartedAt != nil && t.state.StartedAt.Equal(start) {
		return
	}
	t.state = models.TimerState{Running: true, StartedAt: &start, RunID: uuid.New().String()}
	t.save(t.state)
}

// StopTimer stops the timer. Stopping a stopped timer is a no-op.
func (t *Timer) StopTimer() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.Running && t.state.StartedAt == nil {
		return
	}
	t.state = models.TimerState{}
	t.save(t.state)
}

// State returns a copy of the current snapshot.
func (t *Timer) State() models.TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.state
	if s.StartedAt != nil {
		started := *s.StartedAt
		s.StartedAt = &started
	}
	return s
}

// Elapsed returns how long the timer has been running at now, or zero.
func (t *Timer) Elapsed(now time.Time) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.state.Running || t.state.StartedAt == nil || now.Before(*t.state.StartedAt) {
		return 0
	}
	return now.Sub(*t.state.StartedAt)
}

// Wait blocks until queued snapshot writes have finished.
func (t *Timer) Wait() {
	t.writes.Wait()
}

func (t *Timer) save(state models.TimerState) {
	t.writes.Submit(func() {
		if err := t.store.SaveTimerState(state); err != nil {
			log.Error("Failed to save timer state", "error", err)
		}
	})
}

// FormatElapsed renders d as "Nd HH:MM:SS".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, seconds)
}
