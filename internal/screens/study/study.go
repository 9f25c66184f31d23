// Package study is the TUI screen for a study session.
package study

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/exam"
	"github.com/abhisek/smartstudy/internal/gamify"
	"github.com/abhisek/smartstudy/internal/screen"
	sess "github.com/abhisek/smartstudy/internal/study"
	"github.com/abhisek/smartstudy/internal/ui/components"
	"github.com/abhisek/smartstudy/internal/ui/layout"
)

// RewardSource hands out rewards granted since the last call.
type RewardSource interface {
	TakeRewards() []gamify.Reward
}

// Deps are the collaborators of the study screen. Events and Rewards may
// be nil.
type Deps struct {
	Store        sess.Persistence
	Events       sess.Events
	Rewards      RewardSource
	TimerSeconds int
	Logger       *slog.Logger
}

// Screen drives a sess.Machine from key presses and timer ticks.
type Screen struct {
	deps    Deps
	machine *sess.Machine
	choices components.Choices
	rewards []gamify.Reward

	// notice is a one-line message under the question, cleared on the
	// next key press.
	notice string
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.StatusProvider  = (*Screen)(nil)
)

// New creates the screen. The machine is built and started by Init.
func New(deps Deps) *Screen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Screen{deps: deps}
}

func (s *Screen) Init() tea.Cmd {
	if s.machine != nil {
		return nil
	}
	deps := s.deps
	return func() tea.Msg {
		m := sess.New(deps.Store, deps.Events, sess.Options{
			TimerSeconds: deps.TimerSeconds,
			Logger:       deps.Logger,
		})
		err := m.Start(context.Background())
		return loadedMsg{machine: m, err: err}
	}
}

func (s *Screen) Title() string { return "Study" }

// Status shows the session number and the running countdown.
func (s *Screen) Status() string {
	if s.machine == nil {
		return ""
	}
	status := fmt.Sprintf("Session %d", s.machine.Session())
	if s.machine.TimerActive() {
		status += fmt.Sprintf("  ⏱ %ds", s.machine.TimeRemaining())
	}
	return status
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.machine == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	switch s.machine.Phase() {
	case sess.PhaseReady:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Begin"},
			{Key: "T", Description: "Timer"},
			{Key: "Esc", Description: "Back"},
		}
	case sess.PhaseInProgress:
		hints := []layout.KeyHint{
			{Key: "1-4", Description: "Answer"},
			{Key: "↑↓ Enter", Description: "Select"},
		}
		if !s.machine.TimerLocked() {
			hints = append(hints, layout.KeyHint{Key: "T", Description: "Timer"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	case sess.PhaseAnswered:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	case sess.PhaseCompleted:
		return []layout.KeyHint{
			{Key: "R", Description: "Restart"},
			{Key: "N", Description: "Next session"},
			{Key: "Esc", Description: "Home"},
		}
	case sess.PhaseCaughtUp:
		return []layout.KeyHint{
			{Key: "N", Description: "Next session"},
			{Key: "Esc", Description: "Home"},
		}
	}
	return nil
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.machine = msg.machine
		if msg.err != nil {
			s.notice = "Could not save the session number: " + msg.err.Error()
		}
		s.resetChoices()
		return s, nil

	case tickMsg:
		return s, s.handleTick(msg)

	case tea.KeyMsg:
		if s.machine == nil {
			return s, nil
		}
		s.notice = ""
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) tea.Cmd {
	ctx := context.Background()
	key := msg.String()

	switch s.machine.Phase() {
	case sess.PhaseReady:
		switch key {
		case "enter":
			if err := s.machine.Begin(ctx); err != nil {
				s.notice = err.Error()
				return nil
			}
			s.resetChoices()
			return s.scheduleTick()
		case "t", "T":
			return s.cycleTimer(ctx)
		}

	case sess.PhaseInProgress:
		if key == "t" || key == "T" {
			return s.cycleTimer(ctx)
		}
		var sub *components.Submitted
		s.choices, sub = s.choices.Update(msg)
		if sub == nil {
			return nil
		}
		rec, err := s.machine.SubmitAnswer(ctx, sub.Index, false)
		s.applyAnswer(rec, err)
		return nil

	case sess.PhaseAnswered:
		switch key {
		case "enter", " ", "space", "n":
			return s.next(ctx)
		case "t", "T":
			return s.cycleTimer(ctx)
		}

	case sess.PhaseCompleted:
		switch key {
		case "r", "R":
			return s.restart(ctx)
		case "n", "N":
			return s.startNext(ctx)
		}

	case sess.PhaseCaughtUp:
		if key == "n" || key == "N" {
			return s.startNext(ctx)
		}
	}
	return nil
}

// applyAnswer reveals the scored answer. A record with an error means the
// answer counted but the schedule was not saved.
func (s *Screen) applyAnswer(rec *sess.AnswerRecord, err error) {
	switch {
	case errors.Is(err, sess.ErrSelectionRequired):
		s.notice = "Select an option first (1-4, or arrows then Enter)."
		return
	case rec == nil && err != nil:
		s.notice = err.Error()
		return
	case rec == nil:
		return
	}
	s.choices.Reveal(rec.Selected, rec.CorrectIndex)
	if err != nil {
		s.notice = "Progress not saved: " + err.Error()
	}
}

func (s *Screen) next(ctx context.Context) tea.Cmd {
	if err := s.machine.Next(ctx); err != nil {
		s.notice = err.Error()
		return nil
	}
	if s.machine.Phase() == sess.PhaseCompleted {
		if s.deps.Rewards != nil {
			s.rewards = s.deps.Rewards.TakeRewards()
		}
		return nil
	}
	s.resetChoices()
	return s.scheduleTick()
}

func (s *Screen) restart(ctx context.Context) tea.Cmd {
	if err := s.machine.Restart(ctx); err != nil {
		s.notice = err.Error()
		return nil
	}
	s.rewards = nil
	s.resetChoices()
	return s.scheduleTick()
}

func (s *Screen) startNext(ctx context.Context) tea.Cmd {
	if err := s.machine.StartNext(ctx); err != nil {
		s.notice = err.Error()
		return nil
	}
	s.rewards = nil
	s.resetChoices()
	if s.machine.Phase() == sess.PhaseReady {
		if err := s.machine.Begin(ctx); err != nil {
			s.notice = err.Error()
			return nil
		}
		return s.scheduleTick()
	}
	return nil
}

// cycleTimer steps through the countdown choices.
func (s *Screen) cycleTimer(ctx context.Context) tea.Cmd {
	next := nextTimerChoice(s.machine.TimerSeconds())
	if err := s.machine.SetTimer(ctx, next); err != nil {
		if errors.Is(err, sess.ErrTimerLocked) {
			s.notice = "The timer can only be changed before the first answer."
		} else {
			s.notice = err.Error()
		}
		return nil
	}
	return s.scheduleTick()
}

func nextTimerChoice(current int) int {
	i := slices.Index(exam.TimerChoices, current)
	return exam.TimerChoices[(i+1)%len(exam.TimerChoices)]
}

func (s *Screen) handleTick(msg tickMsg) tea.Cmd {
	if s.machine == nil {
		return nil
	}
	rec, err := s.machine.Tick(msg.gen)
	if rec != nil || err != nil {
		s.applyAnswer(rec, err)
		return nil
	}
	if msg.gen == s.machine.TimerGeneration() {
		return s.scheduleTick()
	}
	return nil
}

// scheduleTick starts a tick chain for the live countdown, if any.
func (s *Screen) scheduleTick() tea.Cmd {
	if !s.machine.TimerActive() {
		return nil
	}
	gen := s.machine.TimerGeneration()
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (s *Screen) resetChoices() {
	if q := s.currentQuestion(); q != nil {
		s.choices = components.NewChoices(q.Options)
	}
}

func (s *Screen) currentQuestion() *deck.Question {
	if s.machine == nil || s.machine.Run() == nil {
		return nil
	}
	return s.machine.Current()
}
