package streaks

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/soberlit/internal/calendar"
	"github.com/julianstephens/soberlit/internal/cli"
	"github.com/julianstephens/soberlit/internal/engine"
	apperrors "github.com/julianstephens/soberlit/internal/errors"
	"github.com/julianstephens/soberlit/internal/models"
	"github.com/julianstephens/soberlit/internal/storage/sqlite"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2025, 3, 12, 14, 30, 0, 0, time.FixedZone("test", -5*3600))

func setupTestContext(t *testing.T) *cli.Context {
	t.Helper()
	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return &cli.Context{Store: store, ConfigDir: dir, Clock: fixedClock{testNow}}
}

func TestToggleCmd_Today(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&ToggleCmd{}).Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}

	days, err := ctx.Store.LoadAllDayStatus()
	if err != nil {
		t.Fatalf("LoadAllDayStatus failed: %v", err)
	}
	today := days["2025-03-12"]
	if !today.Sober || today.StreakStartTimestampUTC == nil {
		t.Errorf("expected today sober with a captured instant, got %+v", today)
	}
	if !today.StreakStartTimestampUTC.Equal(testNow) {
		t.Errorf("captured instant = %v, want %v", today.StreakStartTimestampUTC, testNow)
	}

	streak, _ := ctx.Store.LoadStreakData()
	if streak == nil || streak.CurrentStreak != 1 || streak.LongestStreak != 1 {
		t.Errorf("unexpected streak snapshot: %+v", streak)
	}

	timerState, _ := ctx.Store.LoadTimerState()
	if !timerState.Running || timerState.StartedAt == nil || !timerState.StartedAt.Equal(testNow) {
		t.Errorf("expected timer running from the toggle instant, got %+v", timerState)
	}
}

func TestToggleCmd_StreakAcrossRuns(t *testing.T) {
	ctx := setupTestContext(t)

	for _, date := range []string{"2025-03-10", "2025-03-11", "2025-03-12"} {
		if err := (&ToggleCmd{Date: date}).Run(ctx); err != nil {
			t.Fatalf("toggle %s failed: %v", date, err)
		}
	}

	session := ctx.NewSession()
	defer session.Close()
	if got := session.Engine.CurrentStreak(); got != 3 {
		t.Errorf("CurrentStreak = %d, want 3", got)
	}

	// The streak began on a past day, so the timer starts at its midnight.
	ts := session.Timer.State()
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, testNow.Location())
	if !ts.Running || ts.StartedAt == nil || !ts.StartedAt.Equal(want) {
		t.Errorf("timer = %+v, want start %v", ts, want)
	}
}

func TestToggleCmd_FutureRejected(t *testing.T) {
	ctx := setupTestContext(t)

	err := (&ToggleCmd{Date: "2025-03-13"}).Run(ctx)
	if !errors.Is(err, engine.ErrFutureDay) || !apperrors.IsRejection(err) {
		t.Fatalf("expected future-day rejection, got %v", err)
	}

	days, _ := ctx.Store.LoadAllDayStatus()
	if len(days) != 0 {
		t.Errorf("rejected toggle must not persist, got %+v", days)
	}
}

func TestToggleCmd_OlderDateExtendsRange(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&ToggleCmd{Date: "2024-12-20"}).Run(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	days, _ := ctx.Store.LoadAllDayStatus()
	if got := days["2024-12-20"]; !got.Sober || got.StreakStartTimestampUTC != nil {
		t.Errorf("expected backfilled sober day without timestamp, got %+v", got)
	}
}

func TestToggleCmd_OlderDateTwiceRestores(t *testing.T) {
	ctx := setupTestContext(t)

	for i := 0; i < 2; i++ {
		if err := (&ToggleCmd{Date: "2024-12-20"}).Run(ctx); err != nil {
			t.Fatalf("toggle %d failed: %v", i+1, err)
		}
	}
	days, _ := ctx.Store.LoadAllDayStatus()
	if days["2024-12-20"].Sober {
		t.Errorf("second toggle should clear 2024-12-20, got %+v", days["2024-12-20"])
	}
}

func TestToggleCmd_StreakLongerThanWindow(t *testing.T) {
	ctx := setupTestContext(t)

	first := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		date := calendar.DateString(first.AddDate(0, 0, i))
		if err := (&ToggleCmd{Date: date}).Run(ctx); err != nil {
			t.Fatalf("toggle %s failed: %v", date, err)
		}
	}

	streak, _ := ctx.Store.LoadStreakData()
	if streak == nil || streak.CurrentStreak != 60 || streak.LongestStreak != 60 {
		t.Errorf("expected stored snapshot 60/60, got %+v", streak)
	}

	session := ctx.NewSession()
	defer session.Close()
	if cur, long := session.Engine.CurrentStreak(), session.Engine.LongestStreak(); cur != 60 || long != 60 {
		t.Errorf("expected 60/60 after reopening, got %d/%d", cur, long)
	}
	want := time.Date(2025, 1, 12, 0, 0, 0, 0, testNow.Location())
	ts := session.Timer.State()
	if !ts.Running || ts.StartedAt == nil || !ts.StartedAt.Equal(want) {
		t.Errorf("timer = %+v, want start %v", ts, want)
	}
}

func TestToggleCmd_InvalidDate(t *testing.T) {
	ctx := setupTestContext(t)
	if err := (&ToggleCmd{Date: "yesterday"}).Run(ctx); !errors.Is(err, calendar.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestCalendarCmd(t *testing.T) {
	ctx := setupTestContext(t)

	if err := (&CalendarCmd{Past: 1, Future: 2}).Run(ctx); err != nil {
		t.Errorf("calendar failed: %v", err)
	}
	if err := (&CalendarCmd{Past: -1}).Run(ctx); err == nil {
		t.Error("expected error for negative --past")
	}
}

func TestStatusAndTimerCmd(t *testing.T) {
	ctx := setupTestContext(t)
	if err := ctx.Store.SaveSettings(models.Settings{DrinkCost: 5, Currency: "USD"}); err != nil {
		t.Fatal(err)
	}

	if err := (&StatusCmd{}).Run(ctx); err != nil {
		t.Errorf("status failed: %v", err)
	}
	if err := (&TimerCmd{}).Run(ctx); err != nil {
		t.Errorf("timer failed: %v", err)
	}
}

func TestRenderGrid(t *testing.T) {
	weeks := calendar.GenerateInitialRange(testNow)
	for wi := range weeks {
		for di := range weeks[wi].Days {
			switch weeks[wi].Days[di].ID {
			case "2025-03-11", "2025-03-12":
				weeks[wi].Days[di].Sober = true
			}
		}
	}
	res, err := calendar.Recalculate(weeks, "2025-03-12")
	if err != nil {
		t.Fatal(err)
	}

	out := RenderGrid(res.Weeks, "2025-03-12")
	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("expected header plus 9 weeks, got %d lines", len(lines))
	}
	if !strings.Contains(out, "[2]") {
		t.Errorf("expected today bracketed with intensity 2:\n%s", out)
	}
	if !strings.Contains(out, "2025-03") {
		t.Errorf("expected a month marker for March:\n%s", out)
	}
	last := lines[len(lines)-1]
	if strings.Contains(last, ".") || !strings.Contains(last, "-") {
		t.Errorf("last week is in the future and should only show '-': %q", last)
	}
}
