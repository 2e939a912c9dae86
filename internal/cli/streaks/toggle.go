package streaks

import (
	"fmt"

	"github.com/julianstephens/soberlit/internal/calendar"
	"github.com/julianstephens/soberlit/internal/cli"
)

type ToggleCmd struct {
	Date string `arg:"" optional:"" help:"Day to toggle (YYYY-MM-DD). Defaults to today."`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	release, err := ctx.AcquireLock()
	if err != nil {
		return err
	}
	defer release()

	session := ctx.NewSession()
	defer session.Close()

	date := c.Date
	if date == "" {
		date = calendar.DateString(now(ctx))
	}
	if err := session.EnsureInRange(date); err != nil {
		return err
	}

	if err := session.Engine.ToggleSoberDay(date); err != nil {
		return err
	}

	state := session.Engine.Snapshot()
	mark := "not sober"
	if d, ok := calendar.FindDay(state.Weeks, date); ok && d.Sober {
		mark = "sober"
	}
	fmt.Printf("✓ %s marked %s\n", date, mark)
	fmt.Printf("Current streak: %d  Longest streak: %d\n", state.CurrentStreak, state.LongestStreak)
	return nil
}
