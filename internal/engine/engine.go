package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/julianstephens/soberlit/internal/calendar"
	"github.com/julianstephens/soberlit/internal/constants"
	apperrors "github.com/julianstephens/soberlit/internal/errors"
	"github.com/julianstephens/soberlit/internal/logger"
	"github.com/julianstephens/soberlit/internal/models"
	"github.com/julianstephens/soberlit/internal/queue"
)

var log = logger.For("engine")

var (
	ErrNotLoaded         = apperrors.NewRejection("calendar has not finished loading")
	ErrDayNotFound       = apperrors.NewRejection("day is not in the calendar range")
	ErrFutureDay         = apperrors.NewRejection("cannot change a day after today")
	ErrExtensionInFlight = apperrors.NewRejection("range extension already in progress")
)

// Store is the persistence the engine reads at load and writes after commits.
type Store interface {
	LoadAllDayStatus() (map[string]models.DayStatus, error)
	SaveDayStatus(date string, status models.DayStatus) error
	LoadStreakData() (*models.StreakData, error)
	SaveStreakData(models.StreakData) error
}

// Timer is the elapsed-time timer kept in step with the current streak.
type Timer interface {
	StartTimer(start time.Time)
	StopTimer()
}

// Clock supplies the current instant; its location defines "today".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// State is the published calendar: the materialized range and its metrics.
type State struct {
	Weeks         []models.Week
	CurrentStreak int
	LongestStreak int
}

// Option configures an Engine
type Option func(*Engine)

// WithClock replaces the system clock
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// Engine owns the in-memory calendar range. Every mutation goes through the
// engine mutex, reads the latest committed state, and replaces it whole, so
// concurrent callers never act on a stale range.
type Engine struct {
	store  Store
	timer  Timer
	clock  Clock
	writes *queue.Queue

	mu     sync.Mutex
	state  State
	loaded bool
	hooks  []func(State)
	// stored mirrors the persisted day records so weeks added after load
	// show what storage holds.
	stored map[string]models.DayStatus

	loadingInitial atomic.Bool
	loadingPast    atomic.Bool
	loadingFuture  atomic.Bool
}

// New creates an engine seeded with the initial range around today and zero
// metrics. Call Load before toggling or extending.
func New(store Store, timer Timer, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		timer:  timer,
		clock:  systemClock{},
		writes: queue.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = State{Weeks: calendar.GenerateInitialRange(e.clock.Now())}
	e.loadingInitial.Store(true)
	return e
}

// OnCommit registers a hook called after every committed state change.
// Hooks run while the engine is locked and must not call back into it.
func (e *Engine) OnCommit(fn func(State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hooks = append(e.hooks, fn)
}

// Snapshot returns a copy of the published state.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.state)
}

// Weeks returns a copy of the materialized range.
func (e *Engine) Weeks() []models.Week { return e.Snapshot().Weeks }

// CurrentStreak is the published current streak.
func (e *Engine) CurrentStreak() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CurrentStreak
}

// LongestStreak is the published longest streak. It never decreases.
func (e *Engine) LongestStreak() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.LongestStreak
}

// IsLoadingInitial reports whether Load has not completed yet.
func (e *Engine) IsLoadingInitial() bool { return e.loadingInitial.Load() }

// IsLoadingPast reports whether a past extension is running.
func (e *Engine) IsLoadingPast() bool { return e.loadingPast.Load() }

// IsLoadingFuture reports whether a future extension is running.
func (e *Engine) IsLoadingFuture() bool { return e.loadingFuture.Load() }

// Wait blocks until all queued persistence writes have finished.
func (e *Engine) Wait() {
	e.writes.Wait()
}

// Load reads persisted days and the streak snapshot, rebuilds the range and
// synchronizes the timer. On any storage failure the engine falls back to
// the empty initial range with zero metrics and a stopped timer; the error
// is still returned so the caller can report it. Load runs at most once.
func (e *Engine) Load() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	defer e.loadingInitial.Store(false)

	if e.loaded {
		return nil
	}
	e.loaded = true

	now := e.clock.Now()
	today := calendar.DateString(now)

	next, startDay, err := e.readInitialState(now, today)
	if err != nil {
		log.Error("Initial calendar load failed, starting from an empty range", "error", err)
		e.timer.StopTimer()
		e.commit(State{Weeks: calendar.GenerateInitialRange(now)}, true)
		return err
	}

	if next.CurrentStreak > 0 && startDay != nil {
		// Any captured instant is trusted here, even from an earlier day, so
		// the timer keeps its origin across restarts.
		origin := startOfDay(startDay.Date, now)
		if startDay.StreakStartTimestampUTC != nil {
			origin = *startDay.StreakStartTimestampUTC
		}
		e.timer.StartTimer(origin)
	} else {
		e.timer.StopTimer()
	}

	e.commit(next, true)
	log.Debug("Calendar loaded", "today", today, "current", next.CurrentStreak, "longest", next.LongestStreak)
	return nil
}

func (e *Engine) readInitialState(now time.Time, today string) (State, *models.Day, error) {
	var (
		wg        sync.WaitGroup
		statuses  map[string]models.DayStatus
		snapshot  *models.StreakData
		statusErr error
		streakErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		statuses, statusErr = e.store.LoadAllDayStatus()
	}()
	go func() {
		defer wg.Done()
		snapshot, streakErr = e.store.LoadStreakData()
	}()
	wg.Wait()

	if statusErr != nil {
		statusErr = fmt.Errorf("failed to load day status: %w", statusErr)
	}
	if streakErr != nil {
		streakErr = fmt.Errorf("failed to load streak data: %w", streakErr)
	}
	if err := errors.Join(statusErr, streakErr); err != nil {
		return State{}, nil, err
	}

	e.stored = statuses
	weeks := calendar.GenerateInitialRange(now)
	overlay(weeks, statuses)
	// A run crossing the window's first day is loaded whole, so the current
	// streak and its start day are exact.
	weeks, err := e.reachBack(weeks)
	if err != nil {
		return State{}, nil, err
	}

	res, err := calendar.Recalculate(weeks, today)
	if err != nil {
		return State{}, nil, err
	}

	next := State{Weeks: res.Weeks, CurrentStreak: res.CurrentStreak, LongestStreak: res.LongestStreak}
	// The stored snapshot wins at load so a longest streak outside the
	// materialized window is not lost.
	if snapshot != nil {
		next.CurrentStreak = snapshot.CurrentStreak
		next.LongestStreak = snapshot.LongestStreak
	}
	return next, res.StreakStartDay, nil
}

// ToggleSoberDay flips the sober flag of dayID. Unknown days and days after
// today are rejected without touching state, storage or the timer.
func (e *Engine) ToggleSoberDay(dayID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded || e.loadingInitial.Load() {
		log.Warn("Toggle rejected before initial load", "day", dayID)
		return fmt.Errorf("toggle %s: %w", dayID, ErrNotLoaded)
	}

	now := e.clock.Now()
	today := calendar.DateString(now)

	wi, di, ok := locate(e.state.Weeks, dayID)
	if !ok {
		log.Warn("Toggle rejected for unknown day", "day", dayID)
		return fmt.Errorf("toggle %s: %w", dayID, ErrDayNotFound)
	}
	// YYYY-MM-DD strings order the same way as the dates they name.
	if dayID > today {
		log.Warn("Toggle rejected for future day", "day", dayID, "today", today)
		return fmt.Errorf("toggle %s: %w", dayID, ErrFutureDay)
	}

	newSober := !e.state.Weeks[wi].Days[di].Sober
	var stamp *time.Time
	if newSober && !previousDaySober(e.state.Weeks, wi, di) && dayID == today {
		t := now.UTC()
		stamp = &t
	}

	next := replaceDay(e.state.Weeks, wi, di, newSober, stamp)
	res, err := calendar.Recalculate(next, today)
	if err != nil {
		log.Error("Streak recalculation failed, toggle discarded", "day", dayID, "error", err)
		return err
	}

	status := models.DayStatus{Sober: newSober, StreakStartTimestampUTC: stamp}
	if e.stored == nil {
		e.stored = make(map[string]models.DayStatus)
	}
	e.stored[dayID] = status
	e.writes.Submit(func() {
		if err := e.store.SaveDayStatus(dayID, status); err != nil {
			log.Error("Failed to save day status", "day", dayID, "error", err)
		}
	})

	e.commit(State{
		Weeks:         res.Weeks,
		CurrentStreak: res.CurrentStreak,
		LongestStreak: max(e.state.LongestStreak, res.LongestStreak),
	}, false)

	e.timer.StopTimer()
	if res.CurrentStreak > 0 && res.StreakStartDay != nil {
		e.timer.StartTimer(effectiveStart(res.StreakStartDay, today, now))
	}

	log.Debug("Day toggled", "day", dayID, "sober", newSober, "current", res.CurrentStreak)
	return nil
}

// effectiveStart is the captured instant when the streak began today, and
// the start of the streak's first day otherwise.
func effectiveStart(start *models.Day, today string, now time.Time) time.Time {
	if start.StreakStartTimestampUTC != nil && start.Date == today {
		return *start.StreakStartTimestampUTC
	}
	return startOfDay(start.Date, now)
}

func startOfDay(date string, now time.Time) time.Time {
	sod, err := calendar.StartOfDay(date, now.Location())
	if err != nil {
		// Range dates are generated, so this only happens on a bug.
		log.Error("Invalid streak start date", "date", date, "error", err)
		return now
	}
	return sod
}

// LoadPastWeeks prepends a batch of weeks before the earliest week, filled
// from the persisted day records.
func (e *Engine) LoadPastWeeks() error {
	return e.extend(constants.DirectionPast, &e.loadingPast)
}

// LoadFutureWeeks appends a batch of weeks after the latest week.
func (e *Engine) LoadFutureWeeks() error {
	return e.extend(constants.DirectionFuture, &e.loadingFuture)
}

// extend grows the range in one direction. The run holding the current
// streak is already in range, so added days cannot join it: the current
// streak and the timer are left alone.
func (e *Engine) extend(direction constants.Direction, flag *atomic.Bool) error {
	if !flag.CompareAndSwap(false, true) {
		log.Debug("Extension already in flight", "direction", direction)
		return ErrExtensionInFlight
	}
	defer flag.Store(false)

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded || e.loadingInitial.Load() {
		return fmt.Errorf("extend %s: %w", direction, ErrNotLoaded)
	}

	next, err := e.grow(e.state.Weeks, direction)
	if err == nil && direction == constants.DirectionPast {
		next, err = e.reachBack(next)
	}
	if err != nil {
		log.Error("Range extension failed", "direction", direction, "error", err)
		return err
	}
	res, err := calendar.Recalculate(next, calendar.DateString(e.clock.Now()))
	if err != nil {
		log.Error("Streak recalculation failed, extension discarded", "direction", direction, "error", err)
		return err
	}

	e.commit(State{
		Weeks:         res.Weeks,
		CurrentStreak: e.state.CurrentStreak,
		LongestStreak: max(e.state.LongestStreak, res.LongestStreak),
	}, false)
	log.Debug("Range extended", "direction", direction, "weeks", len(res.Weeks))
	return nil
}

// grow adds one batch of weeks and fills them from the stored records.
func (e *Engine) grow(weeks []models.Week, direction constants.Direction) ([]models.Week, error) {
	next, err := calendar.Extend(weeks, direction, constants.ExtensionWeeks)
	if err != nil {
		return nil, err
	}
	added := next[:constants.ExtensionWeeks]
	if direction == constants.DirectionFuture {
		added = next[len(next)-constants.ExtensionWeeks:]
	}
	overlay(added, e.stored)
	return next, nil
}

// reachBack extends into the past while a stored sober run continues
// before the range's first day.
func (e *Engine) reachBack(weeks []models.Week) ([]models.Week, error) {
	for len(weeks) > 0 && len(weeks[0].Days) > 0 {
		first := weeks[0].Days[0]
		if !first.Sober {
			break
		}
		prev, err := dayBefore(first.Date)
		if err != nil {
			return nil, err
		}
		if !e.stored[prev].Sober {
			break
		}
		if weeks, err = e.grow(weeks, constants.DirectionPast); err != nil {
			return nil, err
		}
	}
	return weeks, nil
}

// overlay copies stored statuses onto matching days in place.
func overlay(weeks []models.Week, statuses map[string]models.DayStatus) {
	for wi := range weeks {
		for di := range weeks[wi].Days {
			if st, ok := statuses[weeks[wi].Days[di].Date]; ok {
				weeks[wi].Days[di].Sober = st.Sober
				weeks[wi].Days[di].StreakStartTimestampUTC = st.StreakStartTimestampUTC
			}
		}
	}
}

func dayBefore(date string) (string, error) {
	t, err := calendar.ParseDate(date)
	if err != nil {
		return "", err
	}
	return calendar.DateString(t.AddDate(0, 0, -1)), nil
}

// commit publishes next and runs the post-commit hooks. The streak snapshot
// is saved whenever the metrics change, except for the commit made by Load.
// Callers hold e.mu.
func (e *Engine) commit(next State, initial bool) {
	prev := e.state
	e.state = next

	if !initial && (prev.CurrentStreak != next.CurrentStreak || prev.LongestStreak != next.LongestStreak) {
		data := models.StreakData{CurrentStreak: next.CurrentStreak, LongestStreak: next.LongestStreak}
		e.writes.Submit(func() {
			if err := e.store.SaveStreakData(data); err != nil {
				log.Error("Failed to save streak data", "error", err)
			}
		})
	}

	if len(e.hooks) == 0 {
		return
	}
	published := cloneState(next)
	for _, hook := range e.hooks {
		hook(published)
	}
}

func locate(weeks []models.Week, dayID string) (int, int, bool) {
	for wi, w := range weeks {
		if len(w.Days) == 0 || dayID < w.Days[0].Date || dayID > w.Days[len(w.Days)-1].Date {
			continue
		}
		for di, d := range w.Days {
			if d.ID == dayID {
				return wi, di, true
			}
		}
	}
	return 0, 0, false
}

func previousDaySober(weeks []models.Week, wi, di int) bool {
	if di > 0 {
		return weeks[wi].Days[di-1].Sober
	}
	if wi > 0 && len(weeks[wi-1].Days) > 0 {
		prev := weeks[wi-1].Days
		return prev[len(prev)-1].Sober
	}
	return false
}

// replaceDay returns a range sharing every week except the one holding the
// toggled day, which gets a fresh day slice.
func replaceDay(weeks []models.Week, wi, di int, sober bool, stamp *time.Time) []models.Week {
	next := make([]models.Week, len(weeks))
	copy(next, weeks)

	days := make([]models.Day, len(weeks[wi].Days))
	copy(days, weeks[wi].Days)
	days[di].Sober = sober
	days[di].StreakStartTimestampUTC = stamp
	next[wi] = models.Week{ID: weeks[wi].ID, Days: days}
	return next
}

func cloneState(s State) State {
	return State{
		Weeks:         models.CloneWeeks(s.Weeks),
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
	}
}
