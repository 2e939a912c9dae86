package constants

const (
	SettingDrinkCost = "drink_cost"
	SettingCurrency  = "currency"

	DefaultDrinkCost = 0.0
	DefaultCurrency  = "USD"
)
