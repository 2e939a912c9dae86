package system

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/soberlit/internal/cli"
	"github.com/julianstephens/soberlit/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	release, err := ctx.AcquireLock()
	if err != nil {
		return err
	}
	defer release()

	// Automatic backup on startup, after a successful load
	ctx.PerformAutomaticBackup()

	session := ctx.NewSession()
	defer session.Close()

	now := time.Now
	if ctx.Clock != nil {
		now = ctx.Clock.Now
	}

	p := tea.NewProgram(tui.NewModel(session.Engine, session.Timer, ctx.Store, now), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited with error: %w", err)
	}
	return nil
}
