package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/soberlit/internal/calendar"
	"github.com/julianstephens/soberlit/internal/constants"
	"github.com/julianstephens/soberlit/internal/engine"
	"github.com/julianstephens/soberlit/internal/logger"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateEditSettings {
		return m.updateSettingsForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		return m, tick()

	case extendedMsg:
		if msg.err != nil && !errors.Is(msg.err, engine.ErrExtensionInFlight) {
			m.status = fmt.Sprintf("Failed to load %s weeks: %v", msg.direction, msg.err)
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-constants.DaysPerWeek)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(constants.DaysPerWeek)
	case key.Matches(msg, m.keys.Today):
		m.cursor = calendar.DateString(m.now())
	case key.Matches(msg, m.keys.Toggle):
		if err := m.engine.ToggleSoberDay(m.cursor); err != nil {
			m.status = err.Error()
		} else {
			m.status = ""
		}
	case key.Matches(msg, m.keys.Past):
		if m.engine.IsLoadingPast() {
			return m, nil
		}
		return m, m.extend(constants.DirectionPast)
	case key.Matches(msg, m.keys.Future):
		if m.engine.IsLoadingFuture() {
			return m, nil
		}
		return m, m.extend(constants.DirectionFuture)
	case key.Matches(msg, m.keys.Settings):
		return m.openSettingsForm()
	}
	return m, nil
}

func (m Model) openSettingsForm() (tea.Model, tea.Cmd) {
	settings, err := m.store.GetSettings()
	if err != nil {
		m.formError = "Failed to load settings: " + err.Error()
		settings = m.settings
	} else {
		m.formError = ""
		m.settings = settings
	}

	m.settingsForm = &SettingsFormModel{
		DrinkCost: strconv.FormatFloat(settings.DrinkCost, 'f', 2, 64),
		Currency:  settings.Currency,
	}
	m.form = NewSettingsForm(m.settingsForm)
	m.state = StateEditSettings
	return m, m.form.Init()
}

func (m Model) updateSettingsForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.formError = ""
		m.state = StateCalendar
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.saveSettingsForm(); err != nil {
			// Stay in the form so the user can retry
			m.formError = "Failed to update settings: " + err.Error()
			m.form.State = huh.StateNormal
			return m, tea.Batch(cmds...)
		}
		m.formError = ""
		m.state = StateCalendar
	case huh.StateAborted:
		m.formError = ""
		m.state = StateCalendar
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) saveSettingsForm() error {
	cost, err := strconv.ParseFloat(strings.TrimSpace(m.settingsForm.DrinkCost), 64)
	if err != nil {
		return fmt.Errorf("invalid drink cost: %w", err)
	}

	next := m.settings
	next.DrinkCost = cost
	if c := strings.ToUpper(strings.TrimSpace(m.settingsForm.Currency)); c != "" {
		next.Currency = c
	}

	if err := m.store.SaveSettings(next); err != nil {
		logger.Error("Failed to save settings", "error", err)
		return err
	}
	m.settings = next
	return nil
}

func NewSettingsForm(fm *SettingsFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Drink Cost").
				Description("Cost of one drink, used to estimate savings.").
				Value(&fm.DrinkCost).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil {
						return fmt.Errorf("must be a number")
					}
					if v < 0 {
						return fmt.Errorf("must not be negative")
					}
					return nil
				}),
			huh.NewInput().
				Title("Currency").
				Value(&fm.Currency).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("currency is required")
					}
					return nil
				}),
		),
	)
}
