package study

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/smartstudy/internal/deck"
	sess "github.com/abhisek/smartstudy/internal/study"
	"github.com/abhisek/smartstudy/internal/ui/components"
	"github.com/abhisek/smartstudy/internal/ui/layout"
	"github.com/abhisek/smartstudy/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	if s.machine == nil {
		return layout.Center(theme.Hint.Render("\n\nLoading your sets..."), width)
	}

	var body string
	switch s.machine.Phase() {
	case sess.PhaseReady:
		body = s.renderReady()
	case sess.PhaseCaughtUp:
		body = s.renderCaughtUp()
	case sess.PhaseInProgress, sess.PhaseAnswered:
		body = s.renderQuestion(width)
	case sess.PhaseCompleted:
		body = s.renderSummary(width, height)
	}
	if s.notice != "" {
		body += "\n\n" + theme.Warning.Render(s.notice)
	}
	return lipgloss.NewStyle().Width(width).Padding(1, 2).Render(body)
}

func timerLabel(seconds int) string {
	if seconds <= 0 {
		return "off"
	}
	return fmt.Sprintf("%ds per question", seconds)
}

func (s *Screen) renderReady() string {
	var b strings.Builder
	run := s.machine.Run()
	b.WriteString(theme.Title.Render(fmt.Sprintf("Session %d", s.machine.Session())))
	b.WriteString("\n\n")
	if from, ok := s.machine.AutoAdvancedFrom(); ok {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("Nothing was due in session %d, so we skipped ahead.", from)))
		b.WriteString("\n")
	}
	b.WriteString(theme.Body.Render(fmt.Sprintf("%d question(s) due.", run.Total())))
	b.WriteString("\n")
	b.WriteString(theme.Muted.Render("Timer: " + timerLabel(s.machine.TimerSeconds())))
	if r := s.machine.LoadReport(); r.Dropped > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Warning.Render(fmt.Sprintf("%d invalid question(s) were skipped while loading.", r.Dropped)))
	}
	b.WriteString("\n\n")
	b.WriteString(theme.Hint.Render("Press Enter to begin."))
	return b.String()
}

func (s *Screen) renderCaughtUp() string {
	var b strings.Builder
	switch s.machine.Reason() {
	case sess.CaughtUpNothingScheduled:
		b.WriteString(theme.Title.Render("Nothing to study yet"))
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Render("There are no active questions. Import a set, generate one, or activate a set from the Sets screen."))
	default:
		b.WriteString(theme.Title.Render("All caught up"))
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Render(fmt.Sprintf("Nothing else is due in session %d.", s.machine.Session())))
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("Press N to move on to the next session."))
	}
	return b.String()
}

func (s *Screen) renderQuestion(width int) string {
	run := s.machine.Run()
	q := s.machine.Current()
	if run == nil || q == nil {
		return ""
	}

	var b strings.Builder
	info := fmt.Sprintf("Question %d/%d   Score %d", run.Cursor+1, run.Total(), run.Score)
	if q.Subject != "" {
		info += "   " + q.Subject
	}
	b.WriteString(theme.Muted.Render(info))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-6, 0))))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(max(width-6, 10)).Render(q.Prompt))
	b.WriteString("\n\n")
	b.WriteString(s.choices.View())

	if s.machine.Phase() == sess.PhaseAnswered {
		b.WriteString("\n")
		b.WriteString(s.renderFeedback(width))
	}
	return b.String()
}

func (s *Screen) renderFeedback(width int) string {
	rec := s.machine.LastAnswer()
	if rec == nil {
		return ""
	}
	var b strings.Builder
	switch {
	case rec.Correct:
		b.WriteString(theme.Correct.Render("Correct!"))
	case rec.TimedOut:
		b.WriteString(theme.Incorrect.Render("Time's up."))
		b.WriteString(" " + theme.Body.Render("Answer: "+rec.CorrectText()))
	default:
		b.WriteString(theme.Incorrect.Render("Not quite."))
		b.WriteString(" " + theme.Body.Render("Answer: "+rec.CorrectText()))
	}
	b.WriteString("\n")
	label := deck.MasteryLabel(rec.Transition.Index)
	b.WriteString(lipgloss.NewStyle().Foreground(theme.MasteryColor(rec.Transition.Index)).
		Render(fmt.Sprintf("%s · next review in session %d", label, rec.Transition.NextDue)))
	if rec.Explanation != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Width(max(width-6, 10)).Render(rec.Explanation))
	}
	return b.String()
}

func (s *Screen) renderSummary(width, height int) string {
	sum := s.machine.Summary()
	if sum == nil {
		return ""
	}
	var b strings.Builder
	title := "Session complete"
	if sum.Perfect() {
		title = "Perfect session!"
	}
	b.WriteString(theme.Title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(components.ProgressBar{
		Label:   "Score",
		Percent: sum.Accuracy,
		Suffix:  fmt.Sprintf("%d/%d (%s)", sum.Score, sum.Total, components.Percent(sum.Accuracy)),
		Width:   min(width-6, 60),
		Fill:    theme.Success,
	}.View())
	b.WriteString("\n")
	details := fmt.Sprintf("Session %d · %s", sum.Session, sum.Duration.Round(time.Second))
	if n := sum.TimedOut(); n > 0 {
		details += fmt.Sprintf(" · %d timed out", n)
	}
	b.WriteString(theme.Muted.Render(details))
	b.WriteString("\n\n")

	// Leave room for the header lines and rewards.
	limit := max(height-12-len(s.rewards), 3)
	for i, it := range sum.Items {
		if i == limit {
			b.WriteString(theme.Muted.Render(fmt.Sprintf("  … and %d more", len(sum.Items)-limit)))
			b.WriteString("\n")
			break
		}
		mark := theme.Correct.Render("✓")
		if !it.Correct {
			mark = theme.Incorrect.Render("✗")
		}
		prompt := lipgloss.NewStyle().MaxWidth(max(width-30, 20)).Render(firstLine(it.Prompt))
		b.WriteString(fmt.Sprintf("%s %s  %s\n", mark, prompt,
			theme.Muted.Render("→ "+deck.MasteryLabel(it.Transition.Index))))
	}

	if len(s.rewards) > 0 {
		b.WriteString("\n")
		for _, r := range s.rewards {
			b.WriteString(theme.Warning.Render(fmt.Sprintf("★ %s  +%d XP", r.Name, r.XP)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
