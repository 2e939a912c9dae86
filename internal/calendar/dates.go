package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/soberlit/internal/constants"
	"github.com/julianstephens/soberlit/internal/models"
)

var ErrInvalidDate = errors.New("invalid date")

// DateString formats t as a local calendar date (YYYY-MM-DD) in t's location.
func DateString(t time.Time) string {
	return t.Format(constants.DateFormat)
}

// civil drops the clock and location of t, keeping its calendar date.
// Calendar arithmetic is done on UTC midnights so DST never shifts a day.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return t, nil
}

// StartOfDay returns midnight of date in loc.
func StartOfDay(date string, loc *time.Location) (time.Time, error) {
	t, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// StartOfWeek returns the Sunday on or before t's calendar date.
func StartOfWeek(t time.Time) time.Time {
	d := civil(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

// NewDay builds a non-sober day for t's calendar date.
func NewDay(t time.Time) models.Day {
	date := DateString(t)
	return models.Day{
		ID:             date,
		Date:           date,
		Day:            t.Day(),
		Month:          int(t.Month()),
		Year:           t.Year(),
		IsFirstOfMonth: t.Day() == 1,
	}
}

// NewWeek builds the seven non-sober days starting at sunday.
func NewWeek(sunday time.Time) models.Week {
	days := make([]models.Day, constants.DaysPerWeek)
	for i := range days {
		days[i] = NewDay(sunday.AddDate(0, 0, i))
	}
	return models.Week{ID: days[0].Date, Days: days}
}

// weeksFrom builds count contiguous weeks starting at the given Sunday.
func weeksFrom(sunday time.Time, count int) []models.Week {
	weeks := make([]models.Week, 0, count)
	for i := 0; i < count; i++ {
		weeks = append(weeks, NewWeek(sunday.AddDate(0, 0, 7*i)))
	}
	return weeks
}

// FindDay returns the day with the given date from weeks.
func FindDay(weeks []models.Week, date string) (models.Day, bool) {
	for _, w := range weeks {
		for _, d := range w.Days {
			if d.ID == date {
				return d, true
			}
		}
	}
	return models.Day{}, false
}
