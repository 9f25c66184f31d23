// Package home is the main menu of the TUI.
package home

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/filter"
	"github.com/abhisek/smartstudy/internal/router"
	"github.com/abhisek/smartstudy/internal/screen"
	examscreen "github.com/abhisek/smartstudy/internal/screens/exam"
	progressscreen "github.com/abhisek/smartstudy/internal/screens/progress"
	setsscreen "github.com/abhisek/smartstudy/internal/screens/sets"
	studyscreen "github.com/abhisek/smartstudy/internal/screens/study"
	"github.com/abhisek/smartstudy/internal/spacedrep"
	sess "github.com/abhisek/smartstudy/internal/study"
	"github.com/abhisek/smartstudy/internal/ui/components"
	"github.com/abhisek/smartstudy/internal/ui/layout"
	"github.com/abhisek/smartstudy/internal/ui/theme"
)

// Store is the persistence the TUI needs.
type Store interface {
	sess.Persistence
	setsscreen.Library
}

// Progress records study events and reports gamification state.
type Progress interface {
	sess.Events
	studyscreen.RewardSource
	progressscreen.Overviewer
}

// Deps wires the home screen and every screen it opens.
type Deps struct {
	Store      Store
	Progress   Progress
	StudyTimer int
	ExamTimer  int
	ExamFilter *filter.Filter
	Logger     *slog.Logger
}

// StudyScreen opens a study session.
func (d Deps) StudyScreen() screen.Screen {
	return studyscreen.New(studyscreen.Deps{
		Store:        d.Store,
		Events:       d.Progress,
		Rewards:      d.Progress,
		TimerSeconds: d.StudyTimer,
		Logger:       d.Logger,
	})
}

// ExamScreen opens an exam over the active sets.
func (d Deps) ExamScreen() screen.Screen {
	return examscreen.New(examscreen.Deps{
		Sets:         d.Store,
		Filter:       d.ExamFilter,
		TimerSeconds: d.ExamTimer,
	})
}

type summary struct {
	session    int
	due        int
	pool       int
	sets       int
	activeSets int
	dropped    int
	level      int
	streak     int
}

type summaryMsg struct {
	summary summary
	err     error
}

// Screen is the main menu.
type Screen struct {
	deps    Deps
	menu    components.Menu
	summary summary
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*Screen)(nil)

const (
	itemStudy = iota
	itemExam
	itemSets
	itemProgress
	itemQuit
)

// New creates the home screen.
func New(deps Deps) *Screen {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	h := &Screen{deps: deps}
	push := func(open func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd { return router.Push(open()) }
	}
	h.menu = components.NewMenu([]components.MenuItem{
		itemStudy: {Label: "Study", Action: push(deps.StudyScreen)},
		itemExam:  {Label: "Exam", Action: push(deps.ExamScreen)},
		itemSets: {Label: "Question sets", Action: push(func() screen.Screen {
			return setsscreen.New(deps.Store)
		})},
		itemProgress: {Label: "Progress", Disabled: deps.Progress == nil, Action: push(func() screen.Screen {
			return progressscreen.New(deps.Store, deps.Progress)
		})},
		itemQuit: {Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	})
	return h
}

// Init reloads the summary. The router calls it again whenever the home
// screen becomes active after a pop.
func (h *Screen) Init() tea.Cmd {
	deps := h.deps
	return func() tea.Msg {
		sum, err := loadSummary(context.Background(), deps)
		return summaryMsg{summary: sum, err: err}
	}
}

func loadSummary(ctx context.Context, deps Deps) (summary, error) {
	var (
		sum    summary
		sets   []deck.Set
		report deck.LoadReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sets, report, err = deps.Store.LoadSets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		sum.session, err = deps.Store.LoadCurrentSession(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return sum, err
	}

	pool := deck.ActivePool(sets)
	sum.pool = len(pool)
	sum.due = len(spacedrep.SelectDue(pool, sum.session))
	sum.sets = len(sets)
	sum.dropped = report.Dropped
	for _, s := range sets {
		if s.Active {
			sum.activeSets++
		}
	}

	if deps.Progress != nil {
		ov, err := deps.Progress.Overview(ctx, sets)
		if err != nil {
			deps.Logger.Warn("load progress overview", "error", err)
		} else {
			sum.level = ov.Level.Level
			sum.streak = ov.Stats.CurrentStreak
		}
	}
	return sum, nil
}

func (h *Screen) Title() string { return "Home" }

func (h *Screen) Status() string {
	if !h.loaded || h.summary.level == 0 {
		return ""
	}
	return fmt.Sprintf("Lv %d · streak %d", h.summary.level, h.summary.streak)
}

func (h *Screen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "q", Description: "Quit"},
	}
}

func (h *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case summaryMsg:
		h.loaded = true
		h.errMsg = ""
		if msg.err != nil {
			h.errMsg = msg.err.Error()
			return h, nil
		}
		h.summary = msg.summary
		h.applyHints()
		return h, nil
	case tea.KeyMsg:
		if msg.String() == "q" {
			return h, tea.Quit
		}
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *Screen) applyHints() {
	s := h.summary
	items := h.menu.Items
	items[itemStudy].Hint = fmt.Sprintf("session %d · %d due", s.session, s.due)
	items[itemExam].Hint = fmt.Sprintf("%d active questions", s.pool)
	items[itemSets].Hint = fmt.Sprintf("%d sets, %d active", s.sets, s.activeSets)
	if s.level > 0 {
		items[itemProgress].Hint = fmt.Sprintf("level %d", s.level)
	}
}

func (h *Screen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("SmartStudy"))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render("Spaced repetition for multiple-choice questions"))
	b.WriteString("\n\n")

	switch {
	case h.errMsg != "":
		b.WriteString(theme.Incorrect.Render("Could not load library: " + h.errMsg))
		b.WriteString("\n\n")
	case h.loaded:
		b.WriteString(h.renderSummary())
		b.WriteString("\n\n")
	}

	b.WriteString(h.menu.View())

	card := theme.Card.Width(min(width-4, 64)).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (h *Screen) renderSummary() string {
	s := h.summary
	var line string
	switch {
	case s.pool == 0:
		line = "No active questions yet. Import a set to get started."
	case s.due == 0:
		line = fmt.Sprintf("Session %d · nothing due", s.session)
	default:
		line = fmt.Sprintf("Session %d · %d question(s) due", s.session, s.due)
	}
	out := theme.Body.Render(line)
	if s.streak > 0 {
		out += "\n" + lipgloss.NewStyle().Foreground(theme.Accent).Render(fmt.Sprintf("🔥 %d day streak", s.streak))
	}
	if s.dropped > 0 {
		out += "\n" + theme.Warning.Render(fmt.Sprintf("%d malformed question(s) skipped", s.dropped))
	}
	return out
}
