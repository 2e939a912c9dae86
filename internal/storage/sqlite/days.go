package sqlite

import (
	"database/sql"
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

	// The row id is only assigned on first insert; updates keep it.
	_, err := s.db.Exec(`
		INSERT INTO day_status (id, date, sober, streak_start_ms, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			sober = excluded.sober,
			streak_start_ms = excluded.streak_start_ms,
			updated_at = excluded.updated_at`,
		uuid.NewString(), date, status.Sober, startMs, time.Now().UTC().Format(time.RFC3339))
	return err
}
