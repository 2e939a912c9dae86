package calendar

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/soberlit/internal/constants"
	"github.com/julianstephens/soberlit/internal/models"
)

var ErrEmptyRange = errors.New("calendar range is empty")

// GenerateInitialRange returns the Sunday-aligned window around today: the
// week four weeks back through the week four weeks ahead, all non-sober.
func GenerateInitialRange(today time.Time) []models.Week {
	first := StartOfWeek(today).AddDate(0, 0, -7*constants.InitialWeeksBefore)
	return weeksFrom(first, constants.InitialWeeksBefore+1+constants.InitialWeeksAfter)
}

// Extend returns a new range with count non-sober weeks added before the
// earliest week (past) or after the latest week (future). The input is not
// modified and existing days are carried over untouched.
func Extend(weeks []models.Week, direction constants.Direction, count int) ([]models.Week, error) {
	if len(weeks) == 0 {
		return nil, ErrEmptyRange
	}
	if count <= 0 {
		return weeks, nil
	}

	switch direction {
	case constants.DirectionPast:
		first, err := weekStart(weeks[0])
		if err != nil {
			return nil, err
		}
		added := weeksFrom(first.AddDate(0, 0, -7*count), count)
		return append(added, weeks...), nil
	case constants.DirectionFuture:
		last, err := weekStart(weeks[len(weeks)-1])
		if err != nil {
			return nil, err
		}
		out := make([]models.Week, 0, len(weeks)+count)
		out = append(out, weeks...)
		return append(out, weeksFrom(last.AddDate(0, 0, 7), count)...), nil
	default:
		return nil, fmt.Errorf("unknown extension direction %q", direction)
	}
}

func weekStart(w models.Week) (time.Time, error) {
	if len(w.Days) != constants.DaysPerWeek {
		return time.Time{}, fmt.Errorf("%w: week %s has %d days", ErrMalformedWeek, w.ID, len(w.Days))
	}
	return ParseDate(w.Days[0].Date)
}
