package gamify

import (
	"testing"
	"time"

	"github.com/abhisek/smartstudy/internal/store"
)

func TestAdvanceStreak(t *testing.T) {
	tests := []struct {
		name        string
		in          store.StatsData
		day         string
		wantCurrent int
		wantLongest int
	}{
		{"first session", store.StatsData{}, "2026-03-01", 1, 1},
		{"same day", store.StatsData{CurrentStreak: 3, LongestStreak: 3, LastSessionDay: "2026-03-01"}, "2026-03-01", 3, 3},
		{"next day", store.StatsData{CurrentStreak: 3, LongestStreak: 3, LastSessionDay: "2026-03-01"}, "2026-03-02", 4, 4},
		{"gap resets", store.StatsData{CurrentStreak: 5, LongestStreak: 5, LastSessionDay: "2026-03-01"}, "2026-03-04", 1, 5},
		{"month boundary", store.StatsData{CurrentStreak: 2, LongestStreak: 9, LastSessionDay: "2026-02-28"}, "2026-03-01", 3, 9},
		{"clock backwards", store.StatsData{CurrentStreak: 2, LongestStreak: 2, LastSessionDay: "2026-03-05"}, "2026-03-04", 2, 2},
	}
	for _, tt := range tests {
		got := AdvanceStreak(tt.in, tt.day)
		if got.CurrentStreak != tt.wantCurrent {
			t.Errorf("%s: CurrentStreak = %d, want %d", tt.name, got.CurrentStreak, tt.wantCurrent)
		}
		if got.LongestStreak != tt.wantLongest {
			t.Errorf("%s: LongestStreak = %d, want %d", tt.name, got.LongestStreak, tt.wantLongest)
		}
	}
}

func TestStreakAlive(t *testing.T) {
	st := store.StatsData{CurrentStreak: 2, LastSessionDay: "2026-03-01"}
	if !StreakAlive(st, "2026-03-01") {
		t.Error("StreakAlive same day = false, want true")
	}
	if !StreakAlive(st, "2026-03-02") {
		t.Error("StreakAlive next day = false, want true")
	}
	if StreakAlive(st, "2026-03-03") {
		t.Error("StreakAlive after gap = true, want false")
	}
	if StreakAlive(store.StatsData{}, "2026-03-03") {
		t.Error("StreakAlive without sessions = true, want false")
	}
}

func TestDay(t *testing.T) {
	got := Day(time.Date(2026, 7, 4, 23, 59, 0, 0, time.Local))
	if got != "2026-07-04" {
		t.Errorf("Day = %q, want %q", got, "2026-07-04")
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		xp      int
		level   int
		inLevel int
		forNext int
	}{
		{0, 1, 0, 100},
		{-5, 1, 0, 100},
		{99, 1, 99, 100},
		{100, 2, 0, 120},
		{219, 2, 119, 120},
		{220, 3, 0, 144},
		{364, 4, 0, 172},
	}
	for _, tt := range tests {
		got := LevelFor(tt.xp)
		if got.Level != tt.level || got.XPInLevel != tt.inLevel || got.XPForNext != tt.forNext {
			t.Errorf("LevelFor(%d) = {%d %d %d}, want {%d %d %d}",
				tt.xp, got.Level, got.XPInLevel, got.XPForNext, tt.level, tt.inLevel, tt.forNext)
		}
	}
	if p := LevelFor(150).Progress(); p < 0.41 || p > 0.42 {
		t.Errorf("LevelFor(150).Progress() = %v, want ~0.4167", p)
	}
}
