package models

import "time"

// StreakData is the persisted streak snapshot.
type StreakData struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

// TimerState is the persisted state of the elapsed-time timer.
type TimerState struct {
	Running   bool       `json:"running"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	RunID     string     `json:"run_id,omitempty"` // changes whenever the origin changes
}

// ToUnixMilli converts an optional instant to optional Unix milliseconds.
func ToUnixMilli(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// FromUnixMilli converts optional Unix milliseconds to an optional UTC instant.
func FromUnixMilli(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms).UTC()
	return &t
}
