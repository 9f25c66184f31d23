package exam

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	core "github.com/abhisek/smartstudy/internal/exam"
	"github.com/abhisek/smartstudy/internal/ui/components"
	"github.com/abhisek/smartstudy/internal/ui/layout"
	"github.com/abhisek/smartstudy/internal/ui/theme"
)

func (s *Screen) View(width, height int) string {
	var body string
	switch s.phase {
	case phaseLoading:
		return layout.Center(theme.Hint.Render("\n\nLoading questions..."), width)
	case phaseEmpty:
		body = s.renderEmpty()
	case phaseSetup:
		body = s.renderSetup()
	case phaseRunning:
		body = s.renderQuestion(width)
	case phaseResults:
		body = s.renderResults(width, height)
	}
	if s.confirmExit {
		body += "\n\n" + theme.Card.BorderForeground(theme.Accent).Render(
			theme.Warning.Render("Leave the exam?")+"\n"+
				theme.Body.Render("Your answers so far will be discarded. (y/n)"))
	}
	if s.notice != "" {
		body += "\n\n" + theme.Warning.Render(s.notice)
	}
	return lipgloss.NewStyle().Width(width).Padding(1, 2).Render(body)
}

func (s *Screen) renderEmpty() string {
	if s.loadErr != "" && s.loadErr != core.ErrEmptyPool.Error() {
		return theme.Incorrect.Render("Could not load questions: " + s.loadErr)
	}
	msg := "There are no active questions for an exam."
	if s.deps.Filter != nil {
		msg = fmt.Sprintf("No active questions match the filter %q.", s.deps.Filter.String())
	}
	return theme.Title.Render("Nothing to examine") + "\n\n" + theme.Body.Render(msg)
}

func (s *Screen) renderSetup() string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Exam"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("%d question(s) in random order. Schedules are not changed.", len(s.pool))))
	b.WriteString("\n\n")
	b.WriteString(theme.Muted.Render("Time per question:"))
	b.WriteString("\n")
	for i, secs := range core.TimerChoices {
		label := "Off"
		if secs > 0 {
			label = fmt.Sprintf("%d seconds", secs)
		}
		if i == s.timerCursor {
			b.WriteString(theme.Selected.Render("▸ " + label))
		} else {
			b.WriteString(theme.Unselected.Render("  " + label))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (s *Screen) renderQuestion(width int) string {
	q := s.exam.Current()
	if q == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(max(width-6, 10)).Render(q.Prompt))
	b.WriteString("\n\n")
	b.WriteString(s.choices.View())

	if it := s.exam.LastItem(); s.exam.Answered() && it != nil {
		b.WriteString("\n")
		switch {
		case it.Correct:
			b.WriteString(theme.Correct.Render("Correct!"))
		case it.TimedOut:
			b.WriteString(theme.Incorrect.Render(core.TimedOutText))
		default:
			b.WriteString(theme.Incorrect.Render("Incorrect."))
		}
	}
	return b.String()
}

func (s *Screen) renderResults(width, height int) string {
	sum := s.exam.Summary()
	var b strings.Builder
	b.WriteString(theme.Title.Render("Exam results"))
	b.WriteString("\n\n")
	b.WriteString(components.ProgressBar{
		Label:   "Score",
		Percent: components.Ratio(sum.Score, sum.Total),
		Suffix:  fmt.Sprintf("%d/%d (%d%%)", sum.Score, sum.Total, sum.Percent()),
		Width:   min(width-6, 60),
		Fill:    theme.Success,
	}.View())
	b.WriteString("\n\n")

	// Each item takes three lines.
	visible := max((height-8)/3, 1)
	end := min(s.scroll+visible, len(sum.Items))
	for i := s.scroll; i < end; i++ {
		it := sum.Items[i]
		mark := theme.Correct.Render("✓")
		if !it.Correct {
			mark = theme.Incorrect.Render("✗")
		}
		b.WriteString(fmt.Sprintf("%s %d. %s\n", mark, i+1,
			lipgloss.NewStyle().MaxWidth(max(width-12, 20)).Render(it.Prompt)))
		chosen := theme.Muted.Render("   Your answer: ") + theme.Body.Render(it.ChosenText())
		b.WriteString(chosen + "\n")
		if !it.Correct {
			b.WriteString(theme.Muted.Render("   Correct: ") + theme.Correct.Render(it.CorrectText()) + "\n")
		} else {
			b.WriteString("\n")
		}
	}
	if end < len(sum.Items) {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%d more below", len(sum.Items)-end)))
	}
	return b.String()
}
