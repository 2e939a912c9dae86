package settings

import (
	"fmt"
	"strings"

	"github.com/julianstephens/soberlit/internal/cli"
)

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	fmt.Println("Current Settings:")
	fmt.Printf("  Drink Cost:  %.2f\n", settings.DrinkCost)
	fmt.Printf("  Currency:    %s\n", settings.Currency)
	fmt.Println("  Week Start:  Sunday")
	return nil
}

type SettingsSetCmd struct {
	DrinkCost *float64 `help:"Cost of one drink, used for savings estimates."`
	Currency  *string  `help:"Currency code shown next to money amounts (e.g. USD)."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	updated := false
	if c.DrinkCost != nil {
		if *c.DrinkCost < 0 {
			return fmt.Errorf("drink cost must not be negative")
		}
		settings.DrinkCost = *c.DrinkCost
		updated = true
	}
	if c.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*c.Currency))
		if currency == "" {
			return fmt.Errorf("currency must not be empty")
		}
		settings.Currency = currency
		updated = true
	}

	if !updated {
		fmt.Println("No changes specified. Use 'settings show' to view settings or flags to update them.")
		return nil
	}

	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	fmt.Println("Settings updated successfully.")
	return nil
}
