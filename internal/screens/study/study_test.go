package study

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/gamify"
	"github.com/abhisek/smartstudy/internal/logging"
	sess "github.com/abhisek/smartstudy/internal/study"
)

type memStore struct {
	sets    []deck.Set
	session int
}

func (m *memStore) LoadSets(context.Context) ([]deck.Set, deck.LoadReport, error) {
	return deck.Clone(m.sets), deck.LoadReport{}, nil
}

func (m *memStore) SaveSets(_ context.Context, sets []deck.Set) error {
	m.sets = deck.Clone(sets)
	return nil
}

func (m *memStore) LoadCurrentSession(context.Context) (int, error) { return m.session, nil }

func (m *memStore) SaveCurrentSession(_ context.Context, n int) error {
	m.session = n
	return nil
}

type stubRewards struct{ rewards []gamify.Reward }

func (r *stubRewards) TakeRewards() []gamify.Reward {
	out := r.rewards
	r.rewards = nil
	return out
}

func newStore() *memStore {
	return &memStore{
		session: 1,
		sets: []deck.Set{{
			ID:     "s1",
			Name:   "Capitals",
			Active: true,
			Questions: []deck.Question{
				deck.NewQuestion("q1", "Capital of France?", [4]string{"Paris", "Rome", "Oslo", "Bern"}, 0),
				deck.NewQuestion("q2", "Capital of Italy?", [4]string{"Paris", "Rome", "Oslo", "Bern"}, 1),
			},
		}},
	}
}

func key(s string) tea.Msg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

func load(t *testing.T, s *Screen) {
	t.Helper()
	cmd := s.Init()
	if cmd == nil {
		t.Fatal("Init() returned nil command")
	}
	s.Update(cmd())
	if s.machine == nil {
		t.Fatal("machine not set after load")
	}
}

func press(s *Screen, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = s.Update(key(k))
	}
	return cmd
}

func TestStudyFlow(t *testing.T) {
	st := newStore()
	rewards := &stubRewards{rewards: []gamify.Reward{{Name: "Daily Check-in", XP: 15}}}
	s := New(Deps{Store: st, Rewards: rewards, Logger: logging.Discard()})
	load(t, s)

	if got := s.machine.Phase(); got != sess.PhaseReady {
		t.Fatalf("phase after load = %v, want ready", got)
	}
	if !strings.Contains(s.View(80, 24), "2 question(s) due") {
		t.Error("ready view does not show the due count")
	}

	press(s, "enter")
	if got := s.machine.Phase(); got != sess.PhaseInProgress {
		t.Fatalf("phase after enter = %v, want in_progress", got)
	}

	press(s, "enter")
	if !strings.Contains(s.notice, "Select an option") {
		t.Errorf("notice = %q, want selection required", s.notice)
	}
	if got := s.machine.Phase(); got != sess.PhaseInProgress {
		t.Errorf("phase after empty submit = %v, want in_progress", got)
	}

	first := s.machine.Current().ID
	correctKey := map[string]string{"q1": "1", "q2": "2"}
	press(s, correctKey[first])
	if got := s.machine.Phase(); got != sess.PhaseAnswered {
		t.Fatalf("phase after answer = %v, want answered", got)
	}
	if !s.machine.LastAnswer().Correct {
		t.Error("first answer should be correct")
	}
	if !strings.Contains(s.View(80, 24), "Correct!") {
		t.Error("feedback view does not say Correct!")
	}

	press(s, "enter")
	press(s, "4")
	if s.machine.LastAnswer().Correct {
		t.Error("second answer should be wrong")
	}
	press(s, "enter")

	if got := s.machine.Phase(); got != sess.PhaseCompleted {
		t.Fatalf("phase after last question = %v, want completed", got)
	}
	if len(s.rewards) != 1 {
		t.Errorf("rewards = %d, want 1", len(s.rewards))
	}
	view := s.View(80, 30)
	if !strings.Contains(view, "Session complete") || !strings.Contains(view, "Daily Check-in") {
		t.Errorf("summary view missing title or reward:\n%s", view)
	}

	// Both questions now have future due sessions.
	press(s, "r")
	if got := s.machine.Phase(); got != sess.PhaseCaughtUp {
		t.Fatalf("phase after restart = %v, want caught_up", got)
	}
	if s.machine.Session() != 1 {
		t.Errorf("restart changed session to %d", s.machine.Session())
	}

	press(s, "n")
	if st.session != 2 {
		t.Errorf("stored session = %d, want 2", st.session)
	}
	if got := s.machine.Phase(); got != sess.PhaseInProgress {
		t.Fatalf("phase after next session = %v, want in_progress", got)
	}
	if got := s.machine.Run().Total(); got != 1 {
		t.Errorf("due in session 2 = %d, want 1", got)
	}
}

func TestNothingScheduled(t *testing.T) {
	s := New(Deps{Store: &memStore{session: 1}, Logger: logging.Discard()})
	load(t, s)
	if s.machine.Reason() != sess.CaughtUpNothingScheduled {
		t.Errorf("reason = %v, want nothing scheduled", s.machine.Reason())
	}
	if !strings.Contains(s.View(80, 24), "Nothing to study yet") {
		t.Error("view does not explain the empty library")
	}
}

func TestTimerExpiry(t *testing.T) {
	s := New(Deps{Store: newStore(), TimerSeconds: 2, Logger: logging.Discard()})
	load(t, s)

	if cmd := press(s, "enter"); cmd == nil {
		t.Fatal("begin did not schedule a tick")
	}
	if !strings.Contains(s.Status(), "2s") {
		t.Errorf("Status() = %q, want countdown", s.Status())
	}

	gen := s.machine.TimerGeneration()
	if _, cmd := s.Update(tickMsg{gen: gen - 1}); cmd != nil {
		t.Error("stale tick scheduled another tick")
	}
	if s.machine.TimeRemaining() != 2 {
		t.Errorf("stale tick changed remaining to %d", s.machine.TimeRemaining())
	}

	if _, cmd := s.Update(tickMsg{gen: gen}); cmd == nil {
		t.Error("live tick did not schedule the next tick")
	}
	if _, cmd := s.Update(tickMsg{gen: gen}); cmd != nil {
		t.Error("expired countdown scheduled another tick")
	}

	if got := s.machine.Phase(); got != sess.PhaseAnswered {
		t.Fatalf("phase after expiry = %v, want answered", got)
	}
	rec := s.machine.LastAnswer()
	if !rec.TimedOut || rec.Correct {
		t.Errorf("last answer = %+v, want timed out and wrong", rec)
	}
	if !strings.Contains(s.View(80, 24), "Time's up") {
		t.Error("feedback does not mention the timeout")
	}
}

func TestTimerCycleAndLock(t *testing.T) {
	s := New(Deps{Store: newStore(), Logger: logging.Discard()})
	load(t, s)

	press(s, "t")
	if got := s.machine.TimerSeconds(); got != 15 {
		t.Errorf("timer after t = %d, want 15", got)
	}
	press(s, "t")
	if got := s.machine.TimerSeconds(); got != 30 {
		t.Errorf("timer after second t = %d, want 30", got)
	}

	press(s, "enter", "1")
	press(s, "t")
	if !strings.Contains(s.notice, "before the first answer") {
		t.Errorf("notice = %q, want timer locked", s.notice)
	}
	if got := s.machine.TimerSeconds(); got != 30 {
		t.Errorf("locked timer changed to %d", got)
	}
}

func TestNextTimerChoice(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 15},
		{15, 30},
		{60, 0},
		{7, 15},
	}
	for _, tt := range tests {
		if got := nextTimerChoice(tt.in); got != tt.want {
			t.Errorf("nextTimerChoice(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
