package streaks

import (
	"fmt"
	"time"

	"github.com/julianstephens/soberlit/internal/cli"
	"github.com/julianstephens/soberlit/internal/timer"
)

type StatusCmd struct{}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	session := ctx.NewSession()
	defer session.Close()

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}

	state := session.Engine.Snapshot()
	fmt.Printf("Current streak: %d day(s)\n", state.CurrentStreak)
	fmt.Printf("Longest streak: %d day(s)\n", state.LongestStreak)

	ts := session.Timer.State()
	if ts.Running && ts.StartedAt != nil {
		fmt.Printf("Sober for:      %s (since %s)\n",
			timer.FormatElapsed(session.Timer.Elapsed(now(ctx))),
			ts.StartedAt.Local().Format("2006-01-02 15:04"))
	} else {
		fmt.Println("Sober for:      timer stopped")
	}

	if settings.DrinkCost > 0 {
		fmt.Printf("Saved:          %.2f %s\n", settings.Savings(state.CurrentStreak), settings.Currency)
	}
	return nil
}

func now(ctx *cli.Context) time.Time {
	if ctx.Clock != nil {
		return ctx.Clock.Now()
	}
	return time.Now()
}
