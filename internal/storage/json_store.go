package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/julianstephens/soberlit/internal/calendar"
	"github.com/julianstephens/soberlit/internal/constants"
	"github.com/julianstephens/soberlit/internal/models"
)

// jsonDay is the on-disk form of a day. Files written before version 2
// stored a bare boolean instead.
type jsonDay struct {
	Sober                   bool   `json:"sober"`
	StreakStartTimestampUTC *int64 `json:"streakStartTimestampUTC"`
}

type jsonTimer struct {
	Running     bool   `json:"running"`
	StartedAtMs *int64 `json:"startedAtMs,omitempty"`
	RunID       string `json:"runId,omitempty"`
}

type jsonFile struct {
	Version  int                        `json:"version"`
	Days     map[string]json.RawMessage `json:"days"`
	Streak   *models.StreakData         `json:"streak,omitempty"`
	Timer    jsonTimer                  `json:"timer"`
	Settings *models.Settings           `json:"settings,omitempty"`
}

type jsonData struct {
	days     map[string]models.DayStatus
	streak   *models.StreakData
	timer    models.TimerState
	settings models.Settings
}

func emptyJSONData() *jsonData {
	return &jsonData{
		days:     make(map[string]models.DayStatus),
		settings: models.DefaultSettings(),
	}
}

// JSONStore keeps everything in one JSON file, rewritten on every save.
type JSONStore struct {
	path string

	mu   sync.Mutex
	data *jsonData
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return s.Load()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = emptyJSONData()
	return s.save()
}

func (s *JSONStore) Load() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("storage not initialized, run 'soberlit init' first")
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, upgraded, rewrite, err := decodeJSONFile(raw)
	if err != nil {
		log.Warn("Storage file is corrupted, starting from an empty calendar", "path", s.path, "error", err)
		s.data = emptyJSONData()
		return s.save()
	}
	s.data = data

	if rewrite {
		log.Info("Upgraded legacy storage file", "path", s.path, "days", upgraded)
		if err := s.save(); err != nil {
			return fmt.Errorf("failed to rewrite upgraded storage: %w", err)
		}
	}
	return nil
}

// decodeJSONFile parses a storage file. It reports how many legacy boolean
// day values it upgraded and whether the file must be rewritten.
//
// Version 1 files were a flat object of date to boolean. Later version 1
// files used the wrapped layout but still held boolean day values.
func decodeJSONFile(raw []byte) (*jsonData, int, bool, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, 0, false, err
	}

	var file jsonFile
	_, hasDays := top["days"]
	_, hasVersion := top["version"]
	if hasDays || hasVersion {
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, 0, false, err
		}
	} else {
		file.Version = 1
		file.Days = top
	}

	data := emptyJSONData()
	upgraded := 0
	for date, value := range file.Days {
		if _, err := calendar.ParseDate(date); err != nil {
			log.Warn("Dropping day with invalid date", "date", date)
			continue
		}

		switch literal := string(bytes.TrimSpace(value)); literal {
		case "true", "false":
			data.days[date] = models.DayStatus{Sober: literal == "true"}
			upgraded++
			continue
		case "null":
			log.Warn("Dropping empty day record", "date", date)
			continue
		}

		var day jsonDay
		if err := json.Unmarshal(value, &day); err != nil {
			log.Warn("Dropping unreadable day record", "date", date, "error", err)
			continue
		}
		data.days[date] = models.DayStatus{
			Sober:                   day.Sober,
			StreakStartTimestampUTC: models.FromUnixMilli(day.StreakStartTimestampUTC),
		}
	}

	data.streak = file.Streak
	data.timer = models.TimerState{
		Running:   file.Timer.Running,
		StartedAt: models.FromUnixMilli(file.Timer.StartedAtMs),
		RunID:     file.Timer.RunID,
	}
	if file.Settings != nil {
		data.settings = *file.Settings
		if data.settings.Currency == "" {
			data.settings.Currency = constants.DefaultCurrency
		}
	}

	rewrite := upgraded > 0 || file.Version < constants.JSONStoreVersion
	return data, upgraded, rewrite, nil
}

func (s *JSONStore) Close() error {
	return nil
}

// save writes the file atomically. The caller holds s.mu.
func (s *JSONStore) save() error {
	file := jsonFile{
		Version: constants.JSONStoreVersion,
		Days:    make(map[string]json.RawMessage, len(s.data.days)),
		Streak:  s.data.streak,
		Timer: jsonTimer{
			Running:     s.data.timer.Running,
			StartedAtMs: models.ToUnixMilli(s.data.timer.StartedAt),
			RunID:       s.data.timer.RunID,
		},
		Settings: &s.data.settings,
	}
	for date, status := range s.data.days {
		value, err := json.Marshal(jsonDay{
			Sober:                   status.Sober,
			StreakStartTimestampUTC: models.ToUnixMilli(status.StreakStartTimestampUTC),
		})
		if err != nil {
			return fmt.Errorf("failed to serialize day %s: %w", date, err)
		}
		file.Days[date] = value
	}

	out, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, out, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}

func (s *JSONStore) loaded() error {
	if s.data == nil {
		return fmt.Errorf("storage not loaded")
	}
	return nil
}

func (s *JSONStore) LoadAllDayStatus() (map[string]models.DayStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}

	days := make(map[string]models.DayStatus, len(s.data.days))
	for date, status := range s.data.days {
		days[date] = status
	}
	return days, nil
}

func (s *JSONStore) SaveDayStatus(date string, status models.DayStatus) error {
	if _, err := calendar.ParseDate(date); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}

	s.data.days[date] = status
	return s.save()
}

func (s *JSONStore) LoadStreakData() (*models.StreakData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return nil, err
	}
	if s.data.streak == nil {
		return nil, nil
	}
	data := *s.data.streak
	return &data, nil
}

func (s *JSONStore) SaveStreakData(data models.StreakData) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	s.data.streak = &data
	return s.save()
}

func (s *JSONStore) LoadTimerState() (models.TimerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return models.TimerState{}, err
	}
	return s.data.timer, nil
}

func (s *JSONStore) SaveTimerState(state models.TimerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	s.data.timer = state
	return s.save()
}

func (s *JSONStore) GetSettings() (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return models.Settings{}, err
	}
	return s.data.settings, nil
}

func (s *JSONStore) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loaded(); err != nil {
		return err
	}
	s.data.settings = settings
	return s.save()
}

// GetConfigPath returns the path of the JSON file.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}
