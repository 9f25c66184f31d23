package progress

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/gamify"
	"github.com/abhisek/smartstudy/internal/store"
)

type stubSets struct{ err error }

func (s stubSets) LoadSets(context.Context) ([]deck.Set, deck.LoadReport, error) {
	return []deck.Set{{ID: "s1", Name: "Biology", Active: true}}, deck.LoadReport{}, s.err
}

type stubOverview struct {
	ov  gamify.Overview
	got int
}

func (s *stubOverview) Overview(_ context.Context, sets []deck.Set) (gamify.Overview, error) {
	s.got = len(sets)
	return s.ov, nil
}

func sampleOverview() gamify.Overview {
	ov := gamify.Overview{
		Stats:          store.StatsData{CurrentStreak: 3, LongestStreak: 5, SessionsCompleted: 7, PerfectSessions: 2},
		StreakAlive:    true,
		Level:          gamify.Level{Level: 2, TotalXP: 150, XPInLevel: 50, XPForNext: 200},
		TotalQuestions: 4,
		ActiveSets:     1,
		Mastery:        [deck.LadderLength]int{2, 1, 1, 0, 0},
	}
	ov.Quests = []gamify.QuestStatus{
		{Quest: gamify.Quest{Name: "Finish a session", Goal: 1, XP: 20}, Current: 1, Claimed: true},
		{Quest: gamify.Quest{Name: "Answer 20", Goal: 20, XP: 30}, Current: 5},
	}
	ov.Achievements = []gamify.AchievementStatus{
		{Achievement: gamify.Achievement{Name: "First Step", Description: "Complete a session."}, Unlocked: true},
		{Achievement: gamify.Achievement{Name: "Flawless", Description: "Score 100%."}},
	}
	ov.RecentSessions = []store.SessionEventRecord{{
		SessionEventData: store.SessionEventData{SessionNumber: 6, Score: 3, Total: 4},
		Timestamp:        time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC),
	}}
	return ov
}

func TestProgressView(t *testing.T) {
	src := &stubOverview{ov: sampleOverview()}
	s := New(stubSets{}, src)

	if got := s.View(100, 40); !strings.Contains(got, "Loading") {
		t.Errorf("View before load = %q, want loading message", got)
	}

	msg := s.Init()()
	s.Update(msg)
	if src.got != 1 {
		t.Errorf("Overview got %d sets, want 1", src.got)
	}

	for _, width := range []int{70, 120} {
		view := s.View(width, 40)
		for _, want := range []string{
			"Level 2", "50/200", "Streak: 3 day(s)", "7 sessions",
			"Daily quests", "Finish a session", "done", "5/20",
			"★ First Step", "☆ Flawless",
			"Mastery", "Familiar", "session 6",
		} {
			if !strings.Contains(view, want) {
				t.Errorf("View(%d) missing %q", width, want)
			}
		}
	}
}

func TestProgressStreakAtRisk(t *testing.T) {
	ov := sampleOverview()
	ov.StreakAlive = false
	s := New(stubSets{}, &stubOverview{ov: ov})
	s.Update(s.Init()())

	if got := s.View(120, 40); !strings.Contains(got, "study today") {
		t.Errorf("View missing streak warning")
	}
}

func TestProgressLoadError(t *testing.T) {
	s := New(stubSets{err: errors.New("disk gone")}, &stubOverview{})
	s.Update(s.Init()())

	if got := s.View(100, 40); !strings.Contains(got, "disk gone") {
		t.Errorf("View = %q, want error text", got)
	}
}
