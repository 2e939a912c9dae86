package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/soberlit/internal/calendar"
	"github.com/julianstephens/soberlit/internal/models"
)

func (s *Store) LoadAllDayStatus() (map[string]models.DayStatus, error) {
	if s.db == nil {
		return nil, fmt.Errorf("storage not loaded")
	}

	rows, err := s.db.Query("SELECT date, sober, streak_start_ms FROM day_status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make(map[string]models.DayStatus)
	for rows.Next() {
		var date string
		var sober bool
		var startMs sql.NullInt64
		if err := rows.Scan(&date, &sober, &startMs); err != nil {
			return nil, err
		}
		status := models.DayStatus{Sober: sober}
		if startMs.Valid {
			status.StreakStartTimestampUTC = models.FromUnixMilli(&startMs.Int64)
		}
		days[date] = status
	}
	return days, rows.Err()
}

func (s *Store) SaveDayStatus(date string, status models.DayStatus) error {
	if s.db == nil {
		return fmt.Errorf("storage not loaded")
	}
	if _, err := calendar.ParseDate(date); err != nil {
		return err
	}

	var startMs sql.NullInt64
	if ms := models.ToUnixMilli(status.StreakStartTimestampUTC); ms != nil {
		startMs = sql.NullInt64{Int64: *ms, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO day_status (id, date, sober, streak_start_ms, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date) DO UPDATE SET
			sober = EXCLUDED.sober,
			streak_start_ms = EXCLUDED.streak_start_ms,
			updated_at = EXCLUDED.updated_at`,
		uuid.New(), date, status.Sober, startMs, time.Now().UTC())
	return err
}

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
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			updated_at = EXCLUDED.updated_at`,
		data.CurrentStreak, data.LongestStreak, time.Now().UTC())
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
		VALUES (1, $1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			running = EXCLUDED.running,
			started_at_ms = EXCLUDED.started_at_ms,
			run_id = EXCLUDED.run_id`,
		state.Running, startedMs, state.RunID)
	return err
}
