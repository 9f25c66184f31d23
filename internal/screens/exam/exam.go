// Package exam is the TUI screen for exam mode.
package exam

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/smartstudy/internal/deck"
	core "github.com/abhisek/smartstudy/internal/exam"
	"github.com/abhisek/smartstudy/internal/filter"
	"github.com/abhisek/smartstudy/internal/router"
	"github.com/abhisek/smartstudy/internal/screen"
	"github.com/abhisek/smartstudy/internal/ui/components"
	"github.com/abhisek/smartstudy/internal/ui/layout"
)

// SetLoader supplies the library.
type SetLoader interface {
	LoadSets(ctx context.Context) ([]deck.Set, deck.LoadReport, error)
}

// Deps are the collaborators of the exam screen. Filter may be nil.
type Deps struct {
	Sets         SetLoader
	Filter       *filter.Filter
	TimerSeconds int
}

type phase int

const (
	phaseLoading phase = iota
	phaseSetup
	phaseRunning
	phaseResults
	phaseEmpty
)

type poolMsg struct {
	pool []deck.Question
	err  error
}

type tickMsg struct {
	gen uint64
}

// Screen runs one exam at a time over the active pool.
type Screen struct {
	deps  Deps
	phase phase
	pool  []deck.Question
	exam  *core.Exam

	timerCursor int
	choices     components.Choices
	confirmExit bool
	scroll      int
	notice      string
	loadErr     string
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.StatusProvider  = (*Screen)(nil)
	_ screen.EscapeHandler   = (*Screen)(nil)
)

// New creates the screen. The default timer choice is preselected.
func New(deps Deps) *Screen {
	cursor := slices.Index(core.TimerChoices, deps.TimerSeconds)
	if cursor < 0 {
		cursor = len(core.TimerChoices) - 1
	}
	return &Screen{deps: deps, timerCursor: cursor}
}

func (s *Screen) Init() tea.Cmd {
	if s.phase != phaseLoading {
		return nil
	}
	deps := s.deps
	return func() tea.Msg {
		sets, _, err := deps.Sets.LoadSets(context.Background())
		if err != nil {
			return poolMsg{err: err}
		}
		if deps.Filter != nil {
			sets, err = deps.Filter.Apply(sets)
			if err != nil {
				return poolMsg{err: err}
			}
		}
		return poolMsg{pool: deck.ActivePool(sets)}
	}
}

func (s *Screen) Title() string { return "Exam" }

// HandlesEscape is always true: esc either confirms leaving a running exam
// or pops the screen.
func (s *Screen) HandlesEscape() bool { return true }

func (s *Screen) Status() string {
	if s.exam == nil || s.phase != phaseRunning {
		return ""
	}
	n, total := s.exam.Position()
	status := fmt.Sprintf("Q %d/%d", n, total)
	if s.exam.TimerActive() {
		status += fmt.Sprintf("  ⏱ %ds", s.exam.TimeRemaining())
	}
	return status
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.confirmExit {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave exam"},
			{Key: "N", Description: "Keep going"},
		}
	}
	switch s.phase {
	case phaseSetup:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Timer"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	case phaseRunning:
		if s.exam.Answered() {
			return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
		}
		return []layout.KeyHint{
			{Key: "1-4", Description: "Answer"},
			{Key: "↑↓ Enter", Description: "Select"},
			{Key: "Esc", Description: "Quit exam"},
		}
	case phaseResults:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "R", Description: "Retake"},
			{Key: "Esc", Description: "Home"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case poolMsg:
		if msg.err != nil {
			s.loadErr = msg.err.Error()
			s.phase = phaseEmpty
			return s, nil
		}
		s.pool = msg.pool
		if len(s.pool) == 0 {
			s.phase = phaseEmpty
			return s, nil
		}
		s.phase = phaseSetup
		return s, nil

	case tickMsg:
		return s, s.handleTick(msg)

	case tea.KeyMsg:
		s.notice = ""
		return s, s.handleKey(msg)
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if s.confirmExit {
		switch key {
		case "y", "Y":
			s.confirmExit = false
			s.exam.ConfirmExit()
			return router.Pop()
		case "n", "N", "esc":
			s.confirmExit = false
		}
		return nil
	}

	if key == "esc" {
		if s.phase == phaseRunning && s.exam.RequestExit() {
			s.confirmExit = true
			return nil
		}
		return router.Pop()
	}

	switch s.phase {
	case phaseSetup:
		switch key {
		case "up", "k":
			s.timerCursor = max(s.timerCursor-1, 0)
		case "down", "j":
			s.timerCursor = min(s.timerCursor+1, len(core.TimerChoices)-1)
		case "enter":
			return s.start()
		}

	case phaseRunning:
		if s.exam.Answered() {
			if key == "enter" || key == "space" || key == " " {
				return s.next()
			}
			return nil
		}
		var sub *components.Submitted
		s.choices, sub = s.choices.Update(msg)
		if sub == nil {
			return nil
		}
		it, err := s.exam.Submit(sub.Index, false)
		s.applyItem(it, err)

	case phaseResults:
		switch key {
		case "up", "k":
			s.scroll = max(s.scroll-1, 0)
		case "down", "j":
			s.scroll = min(s.scroll+1, max(len(s.exam.Summary().Items)-1, 0))
		case "r", "R":
			return s.start()
		}
	}
	return nil
}

func (s *Screen) start() tea.Cmd {
	s.exam = core.New(s.pool, core.Options{TimerSeconds: core.TimerChoices[s.timerCursor]})
	if err := s.exam.Start(); err != nil {
		s.phase = phaseEmpty
		s.loadErr = err.Error()
		return nil
	}
	s.phase = phaseRunning
	s.scroll = 0
	s.resetChoices()
	return s.scheduleTick()
}

func (s *Screen) next() tea.Cmd {
	if err := s.exam.Next(); err != nil {
		s.notice = err.Error()
		return nil
	}
	if s.exam.Finished() {
		s.phase = phaseResults
		return nil
	}
	s.resetChoices()
	return s.scheduleTick()
}

func (s *Screen) applyItem(it *core.Item, err error) {
	switch {
	case errors.Is(err, core.ErrSelectionRequired):
		s.notice = "Select an option first (1-4, or arrows then Enter)."
	case err != nil:
		s.notice = err.Error()
	case it != nil:
		s.choices.Reveal(it.Selected, it.CorrectIndex)
	}
}

func (s *Screen) handleTick(msg tickMsg) tea.Cmd {
	if s.exam == nil || s.phase != phaseRunning {
		return nil
	}
	if it := s.exam.Tick(msg.gen); it != nil {
		s.applyItem(it, nil)
		return nil
	}
	if msg.gen == s.exam.TimerGeneration() {
		return s.scheduleTick()
	}
	return nil
}

func (s *Screen) scheduleTick() tea.Cmd {
	if !s.exam.TimerActive() {
		return nil
	}
	gen := s.exam.TimerGeneration()
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

func (s *Screen) resetChoices() {
	if q := s.exam.Current(); q != nil {
		s.choices = components.NewChoices(q.Options)
	}
}
