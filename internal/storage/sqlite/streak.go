package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/soberlit/internal/models"
)

func (s *Store) LoadStreakData() (*models.StreakData, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	var data models.StreakData
	err := s.db.QueryRow("SELECT current_streak, longest_streak FROM streak_data WHERE id = 1").
		Scan(&data.CurrentStreak, &data.LongestStreak)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *Store) SaveStreakData(data models.StreakData) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	_, err := s.db.Exec(`
		INSERT INTO streak_data (id, current_streak, longest_streak, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			updated_at = excluded.updated_at`,
		data.CurrentStreak, data.LongestStreak, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) LoadTimerState() (models.TimerState, error) {
	if s.db == nil {
		return models.TimerState{}, fmt.Errorf("storage not loaded")
	}

	var state models.TimerState
	var startedMs sql.NullInt64
	err := s.db.QueryRow("SELECT running, started_at_ms, run_id FROM timer_state WHERE id = 1").
		Scan(&state.Running, &startedMs, &state.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TimerState{}, nil
	}
	if err != nil {
		return models.TimerState{}, err
	}
	if startedMs.Valid {
		state.StartedAt = models.FromUnixMilli(&startedMs.Int64)
	}
	return state, nil
}

func (s *Store) SaveTimerState(state models.TimerState) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}

	var startedMs sql.NullInt64
	if ms := models.ToUnixMilli(state.StartedAt); ms != nil {
		startedMs = sql.NullInt64{Int64: *ms, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO timer_state (id, running, started_at_ms, run_id)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			running = excluded.running,
			started_at_ms = excluded.started_at_ms,
			run_id = excluded.run_id`,
		state.Running, startedMs, state.RunID)
	return err
}
