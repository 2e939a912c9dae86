package models

import "time"

// Day is one calendar date in the range. Only Sober is changed by the user;
// Intensity is derived by the streak recalculation.
type Day struct {
	ID             string `json:"id"`
	Date           string `json:"date"` // YYYY-MM-DD format, same value as ID
	Day            int    `json:"day"`
	Month          int    `json:"month"`
	Year           int    `json:"year"`
	Sober          bool   `json:"sober"`
	Intensity      int    `json:"intensity"`
	IsFirstOfMonth bool   `json:"is_first_of_month"`
	// StreakStartTimestampUTC is only set on the day a streak began, and only
	// when that day was today at the moment it was marked.
	StreakStartTimestampUTC *time.Time `json:"streak_start_timestamp_utc,omitempty"`
}

// Week is seven contiguous days, Sunday through Saturday.
type Week struct {
	ID   string `json:"id"`
	Days []Day  `json:"days"`
}

// DayStatus is the persisted part of a Day.
type DayStatus struct {
	Sober                   bool       `json:"sober"`
	StreakStartTimestampUTC *time.Time `json:"streak_start_timestamp_utc,omitempty"`
}

// Status returns the persisted part of the day.
func (d Day) Status() DayStatus {
	return DayStatus{Sober: d.Sober, StreakStartTimestampUTC: d.StreakStartTimestampUTC}
}

// FlattenDays returns every day of every week in order.
func FlattenDays(weeks []Week) []Day {
	days := make([]Day, 0, len(weeks)*7)
	for _, w := range weeks {
		days = append(days, w.Days...)
	}
	return days
}

// CloneWeeks returns a copy of weeks that shares no day storage with the input.
func CloneWeeks(weeks []Week) []Week {
	if weeks == nil {
		return nil
	}
	out := make([]Week, len(weeks))
	for i, w := range weeks {
		days := make([]Day, len(w.Days))
		copy(days, w.Days)
		out[i] = Week{ID: w.ID, Days: days}
	}
	return out
}
