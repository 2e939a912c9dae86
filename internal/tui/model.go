package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/soberlit/internal/calendar"
	"github.com/julianstephens/soberlit/internal/constants"
	"github.com/julianstephens/soberlit/internal/engine"
	"github.com/julianstephens/soberlit/internal/logger"
	"github.com/julianstephens/soberlit/internal/models"
	"github.com/julianstephens/soberlit/internal/timer"
)

type SessionState int

const (
	StateCalendar SessionState = iota
	StateEditSettings
)

// SettingsStore is the part of storage the settings form uses.
type SettingsStore interface {
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error
}

type SettingsFormModel struct {
	DrinkCost string
	Currency  string
}

type tickMsg time.Time

// extendedMsg reports a finished range extension.
type extendedMsg struct {
	direction constants.Direction
	err       error
}

type Model struct {
	engine   *engine.Engine
	timer    *timer.Timer
	store    SettingsStore
	now      func() time.Time
	state    SessionState
	keys     KeyMap
	help     help.Model
	cursor   string // ID of the selected day
	settings models.Settings

	form         *huh.Form
	settingsForm *SettingsFormModel
	formError    string
	status       string

	quitting bool
	width    int
	height   int
}

// NewModel builds the calendar view over a loaded engine. The cursor starts on today.
func NewModel(eng *engine.Engine, t *timer.Timer, store SettingsStore, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}

	settings, err := store.GetSettings()
	if err != nil {
		logger.Warn("Failed to load settings, using defaults", "error", err)
		settings = models.DefaultSettings()
	}

	return Model{
		engine:   eng,
		timer:    t,
		store:    store,
		now:      now,
		state:    StateCalendar,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		cursor:   calendar.DateString(now()),
		settings: settings,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) ShortHelp() []key.Binding {
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

// Cursor returns the ID of the selected day.
func (m Model) Cursor() string {
	return m.cursor
}

// extend runs a range extension off the update loop.
func (m Model) extend(direction constants.Direction) tea.Cmd {
	eng := m.engine
	return func() tea.Msg {
		var err error
		if direction == constants.DirectionPast {
			err = eng.LoadPastWeeks()
		} else {
			err = eng.LoadFutureWeeks()
		}
		return extendedMsg{direction: direction, err: err}
	}
}

// moveCursor shifts the selection by days, staying inside the range.
func (m *Model) moveCursor(days int) {
	current, err := calendar.ParseDate(m.cursor)
	if err != nil {
		return
	}
	next := calendar.DateString(current.AddDate(0, 0, days))

	weeks := m.engine.Weeks()
	if len(weeks) == 0 {
		return
	}
	first := weeks[0].Days[0].ID
	lastWeek := weeks[len(weeks)-1]
	last := lastWeek.Days[len(lastWeek.Days)-1].ID
	if next < first || next > last {
		return
	}
	m.cursor = next
}
