package calendar

import (
	"errors"
	"fmt"

	"github.com/julianstephens/soberlit/internal/constants"
	"github.com/julianstephens/soberlit/internal/models"
)

var ErrMalformedWeek = errors.New("week does not have exactly 7 days")

// Result holds a recalculated range and its derived metrics.
type Result struct {
	Weeks         []models.Week
	CurrentStreak int
	LongestStreak int
	// StreakStartDay is the first day of the streak ending today, or nil when
	// today is missing from the range or not sober.
	StreakStartDay *models.Day
}

// Recalculate derives every day's intensity plus the current and longest
// streaks from the sober flags in weeks. It never modifies its input; the
// returned weeks are fresh copies sliced back along the original boundaries.
func Recalculate(weeks []models.Week, today string) (Result, error) {
	for _, w := range weeks {
		if len(w.Days) != constants.DaysPerWeek {
			return Result{}, fmt.Errorf("%w: week %s has %d days", ErrMalformedWeek, w.ID, len(w.Days))
		}
	}
	if len(weeks) == 0 {
		return Result{Weeks: []models.Week{}}, nil
	}

	days := models.FlattenDays(weeks)

	longest, run := 0, 0
	todayIdx := -1
	for i := range days {
		if days[i].Date == today {
			todayIdx = i
		}
		if days[i].Sober {
			run++
			days[i].Intensity = min(run, constants.MaxIntensity)
			continue
		}
		longest = max(longest, run)
		run = 0
		days[i].Intensity = 0
	}
	longest = max(longest, run)

	res := Result{LongestStreak: longest}
	if todayIdx >= 0 && days[todayIdx].Sober {
		start := todayIdx
		for start > 0 && days[start-1].Sober {
			start--
		}
		res.CurrentStreak = todayIdx - start + 1
		startDay := days[start]
		res.StreakStartDay = &startDay
	}

	res.Weeks = make([]models.Week, len(weeks))
	for i, w := range weeks {
		res.Weeks[i] = models.Week{
			ID:   w.ID,
			Days: days[i*constants.DaysPerWeek : (i+1)*constants.DaysPerWeek : (i+1)*constants.DaysPerWeek],
		}
	}
	return res, nil
}
