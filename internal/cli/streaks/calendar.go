package streaks

import (
	"fmt"

	"github.com/julianstephens/soberlit/internal/calendar"
	"github.com/julianstephens/soberlit/internal/cli"
)

type CalendarCmd struct {
	Past   int `help:"Extra batches of past weeks to show." default:"0"`
	Future int `help:"Extra batches of future weeks to show." default:"0"`
}

func (c *CalendarCmd) Run(ctx *cli.Context) error {
	if c.Past < 0 || c.Future < 0 {
		return fmt.Errorf("--past and --future must not be negative")
	}

	session := ctx.NewSession()
	defer session.Close()

	for i := 0; i < c.Past; i++ {
		if err := session.Engine.LoadPastWeeks(); err != nil {
			return err
		}
	}
	for i := 0; i < c.Future; i++ {
		if err := session.Engine.LoadFutureWeeks(); err != nil {
			return err
		}
	}

	state := session.Engine.Snapshot()
	fmt.Println(RenderGrid(state.Weeks, calendar.DateString(now(ctx))))
	fmt.Printf("\nCurrent streak: %d  Longest streak: %d\n", state.CurrentStreak, state.LongestStreak)
	return nil
}
