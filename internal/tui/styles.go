package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/soberlit/internal/constants"
)

// intensityColors runs from the first sober day to the capped intensity.
var intensityColors = [constants.MaxIntensity]lipgloss.Color{
	"22", "28", "28", "34", "34", "40", "40", "46", "82", "118",
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	statStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	cellStyle = lipgloss.NewStyle().
			Width(4).
			Align(lipgloss.Center)

	emptyCellStyle = cellStyle.
			Foreground(lipgloss.Color("250"))

	futureCellStyle = cellStyle.
			Foreground(lipgloss.Color("238"))

	todayStyle = lipgloss.NewStyle().
			Underline(true).
			Bold(true)

	cursorStyle = lipgloss.NewStyle().
			Reverse(true)

	monthStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)

func soberCellStyle(intensity int) lipgloss.Style {
	idx := min(max(intensity, 1), constants.MaxIntensity) - 1
	return cellStyle.
		Background(intensityColors[idx]).
		Foreground(lipgloss.Color("232"))
}
