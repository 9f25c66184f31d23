// Package progress is the TUI screen for XP, streaks, quests and mastery.
package progress

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/gamify"
	"github.com/abhisek/smartstudy/internal/screen"
	"github.com/abhisek/smartstudy/internal/ui/components"
	"github.com/abhisek/smartstudy/internal/ui/layout"
	"github.com/abhisek/smartstudy/internal/ui/theme"
)

// Source loads the library and builds the overview.
type Source interface {
	LoadSets(ctx context.Context) ([]deck.Set, deck.LoadReport, error)
}

// Overviewer computes progress for a set of sets.
type Overviewer interface {
	Overview(ctx context.Context, sets []deck.Set) (gamify.Overview, error)
}

type loadedMsg struct {
	overview gamify.Overview
	err      error
}

// Screen shows the gamification overview.
type Screen struct {
	sets     Source
	progress Overviewer
	overview gamify.Overview
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*Screen)(nil)

// New creates the screen.
func New(sets Source, progress Overviewer) *Screen {
	return &Screen{sets: sets, progress: progress}
}

func (s *Screen) Init() tea.Cmd {
	sets, progress := s.sets, s.progress
	return func() tea.Msg {
		ctx := context.Background()
		lib, _, err := sets.LoadSets(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		ov, err := progress.Overview(ctx, lib)
		return loadedMsg{overview: ov, err: err}
	}
}

func (s *Screen) Title() string { return "Progress" }

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(loadedMsg); ok {
		s.loaded = true
		if msg.err != nil {
			s.errMsg = msg.err.Error()
		} else {
			s.overview = msg.overview
		}
	}
	return s, nil
}

func (s *Screen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().Width(width).Padding(1, 2).
			Render(theme.Incorrect.Render("Could not load progress: " + s.errMsg))
	}
	if !s.loaded {
		return layout.Center(theme.Hint.Render("\n\nLoading progress..."), width)
	}

	wide := width >= layout.CompactWidth
	col := width - 6
	if wide {
		col = (width - 8) / 2
	}
	left := strings.Join([]string{
		s.renderLevel(col),
		s.renderQuests(col),
		s.renderAchievements(),
	}, "\n\n")
	right := strings.Join([]string{
		s.renderMastery(col),
		s.renderRecent(),
	}, "\n\n")

	body := left + "\n\n" + right
	if wide {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			lipgloss.NewStyle().Width(col).Render(left),
			"    ",
			lipgloss.NewStyle().Width(col).Render(right))
	}
	return lipgloss.NewStyle().Width(width).Padding(1, 2).Render(body)
}

func heading(s string) string {
	return theme.Title.Render(s) + "\n"
}

func (s *Screen) renderLevel(width int) string {
	ov := s.overview
	var b strings.Builder
	b.WriteString(heading(fmt.Sprintf("Level %d", ov.Level.Level)))
	b.WriteString(components.ProgressBar{
		Label:   "XP",
		Percent: ov.Level.Progress(),
		Suffix:  fmt.Sprintf("%d/%d", ov.Level.XPInLevel, ov.Level.XPForNext),
		Width:   width,
		Fill:    theme.Primary,
	}.View())
	b.WriteString("\n")

	streak := fmt.Sprintf("Streak: %d day(s)", ov.Stats.CurrentStreak)
	if ov.Stats.CurrentStreak > 0 && !ov.StreakAlive {
		streak += " (study today to keep it)"
	}
	b.WriteString(theme.Body.Render(streak))
	b.WriteString("\n")
	b.WriteString(theme.Muted.Render(fmt.Sprintf("Longest %d · %d sessions · %d perfect · %d XP total",
		ov.Stats.LongestStreak, ov.Stats.SessionsCompleted, ov.Stats.PerfectSessions, ov.Level.TotalXP)))
	return b.String()
}

func (s *Screen) renderQuests(width int) string {
	var b strings.Builder
	b.WriteString(heading("Daily quests"))
	for _, q := range s.overview.Quests {
		label := q.Name
		suffix := fmt.Sprintf("%d/%d · %d XP", min(q.Current, q.Goal), q.Goal, q.XP)
		if q.Claimed {
			suffix = "done · " + fmt.Sprintf("%d XP", q.XP)
		}
		b.WriteString(components.ProgressBar{
			Label:      label,
			LabelWidth: 18,
			Percent:    components.Ratio(min(q.Current, q.Goal), q.Goal),
			Suffix:     suffix,
			Width:      width,
			Fill:       theme.Accent,
		}.View())
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (s *Screen) renderAchievements() string {
	var b strings.Builder
	b.WriteString(heading("Achievements"))
	for _, a := range s.overview.Achievements {
		if a.Unlocked {
			b.WriteString(theme.Correct.Render("★ " + a.Name))
		} else {
			b.WriteString(theme.Muted.Render("☆ " + a.Name))
		}
		b.WriteString(" " + theme.Hint.Render(a.Description))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (s *Screen) renderMastery(width int) string {
	ov := s.overview
	var b strings.Builder
	b.WriteString(heading(fmt.Sprintf("Mastery · %d questions in %d active set(s)", ov.TotalQuestions, ov.ActiveSets)))
	for i, label := range deck.MasteryLabels() {
		b.WriteString(components.ProgressBar{
			Label:      label,
			LabelWidth: 12,
			Percent:    components.Ratio(ov.Mastery[i], ov.TotalQuestions),
			Suffix:     fmt.Sprint(ov.Mastery[i]),
			Width:      width,
			Fill:       theme.MasteryColor(i),
		}.View())
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (s *Screen) renderRecent() string {
	var b strings.Builder
	b.WriteString(heading("Recent sessions"))
	if len(s.overview.RecentSessions) == 0 {
		b.WriteString(theme.Hint.Render("No sessions yet."))
		return b.String()
	}
	for _, r := range s.overview.RecentSessions {
		b.WriteString(theme.Body.Render(fmt.Sprintf("%s  session %-3d %d/%d",
			r.Timestamp.Local().Format("Jan 02 15:04"), r.SessionNumber, r.Score, r.Total)))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
