package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/soberlit/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	DrinkCost float64 `json:"drink_cost"` // cost of one drink, used for savings estimates
	Currency  string  `json:"currency"`   // ISO 4217 code shown next to money amounts
}

// DefaultSettings returns the settings written when a store is initialized.
func DefaultSettings() Settings {
	return Settings{
		DrinkCost: constants.DefaultDrinkCost,
		Currency:  constants.DefaultCurrency,
	}
}

// Pairs returns the settings as key/value rows for key-value tables.
func (s Settings) Pairs() [][2]string {
	return [][2]string{
		{constants.SettingDrinkCost, strconv.FormatFloat(s.DrinkCost, 'f', -1, 64)},
		{constants.SettingCurrency, s.Currency},
	}
}

// ApplySetting sets one key-value row on s. Unknown keys are ignored so
// older binaries can read newer stores.
func ApplySetting(s *Settings, key, value string) error {
	switch key {
	case constants.SettingDrinkCost:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		s.DrinkCost = v
	case constants.SettingCurrency:
		if value != "" {
			s.Currency = value
		}
	}
	return nil
}

// Savings estimates money not spent over the given number of sober days,
// assuming one drink per day.
func (s Settings) Savings(soberDays int) float64 {
	return float64(soberDays) * s.DrinkCost
}
