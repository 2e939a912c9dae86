package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/soberlit/internal/calendar"
	"github.com/julianstephens/soberlit/internal/models"
	"github.com/julianstephens/soberlit/internal/timer"
)

var weekdayHeaders = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateEditSettings:
		content = m.form.View()
		if m.formError != "" {
			content = lipgloss.JoinVertical(lipgloss.Left, content, dangerStyle.Render(m.formError))
		}
	default:
		content = m.viewCalendar()
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.help.View(m),
	))
}

func (m Model) viewHeader() string {
	state := m.engine.Snapshot()

	stats := []string{
		fmt.Sprintf("Current streak: %d", state.CurrentStreak),
		fmt.Sprintf("Longest: %d", state.LongestStreak),
	}
	if ts := m.timer.State(); ts.Running {
		stats = append(stats, "Sober for: "+timer.FormatElapsed(m.timer.Elapsed(m.now())))
	}
	if m.settings.DrinkCost > 0 {
		stats = append(stats, fmt.Sprintf("Saved: %.2f %s", m.settings.Savings(state.CurrentStreak), m.settings.Currency))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render("soberlit"),
		statStyle.Render(strings.Join(stats, "  •  ")),
		"",
	)
}

func (m Model) viewCalendar() string {
	today := calendar.DateString(m.now())

	var headers []string
	for _, h := range weekdayHeaders {
		headers = append(headers, cellStyle.Render(h))
	}
	rows := []string{headerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, headers...))}

	if m.engine.IsLoadingPast() {
		rows = append(rows, warningStyle.Render("loading earlier weeks…"))
	}
	for _, w := range m.engine.Weeks() {
		rows = append(rows, m.viewWeek(w, today))
	}
	if m.engine.IsLoadingFuture() {
		rows = append(rows, warningStyle.Render("loading later weeks…"))
	}

	if m.status != "" {
		rows = append(rows, "", warningStyle.Render(m.status))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) viewWeek(w models.Week, today string) string {
	cells := make([]string, 0, len(w.Days)+1)
	month := ""
	for _, d := range w.Days {
		cells = append(cells, m.viewDay(d, today))
		if d.IsFirstOfMonth {
			month = d.Date[:7]
		}
	}
	if month != "" {
		cells = append(cells, monthStyle.Render(" "+month))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func (m Model) viewDay(d models.Day, today string) string {
	label := strconv.Itoa(d.Day)

	var style lipgloss.Style
	switch {
	case d.ID > today:
		style = futureCellStyle
	case d.Sober:
		style = soberCellStyle(d.Intensity)
	default:
		style = emptyCellStyle
	}
	if d.ID == today {
		style = style.Inherit(todayStyle)
	}
	if d.ID == m.cursor {
		style = style.Inherit(cursorStyle)
	}
	return style.Render(label)
}
