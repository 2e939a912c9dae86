package streaks

import (
	"fmt"

	"github.com/julianstephens/soberlit/internal/cli"
	"github.com/julianstephens/soberlit/internal/timer"
)

type TimerCmd struct{}

func (c *TimerCmd) Run(ctx *cli.Context) error {
	t := timer.New(ctx.Store)
	if err := t.Restore(); err != nil {
		return fmt.Errorf("failed to read timer state: %w", err)
	}

	state := t.State()
	if !state.Running || state.StartedAt == nil {
		fmt.Println("Timer: stopped")
		return nil
	}
	fmt.Printf("Timer: running since %s\n", state.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Elapsed: %s\n", timer.FormatElapsed(t.Elapsed(now(ctx))))
	if state.RunID != "" {
		fmt.Printf("Run: %s\n", state.RunID)
	}
	return nil
}
