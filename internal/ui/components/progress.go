package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/smartstudy/internal/ui/theme"
)

// ProgressBar is a labelled horizontal bar.
type ProgressBar struct {
	Label string
	// LabelWidth pads labels so stacked bars line up.
	LabelWidth int
	Percent    float64
	Suffix     string
	Width      int
	Fill       color.Color
}

// View renders the bar within Width cells.
func (p ProgressBar) View() string {
	var out string
	if p.Label != "" {
		out = lipgloss.NewStyle().Foreground(theme.Text).Width(p.LabelWidth).Render(p.Label) + " "
	}
	suffix := ""
	if p.Suffix != "" {
		suffix = " " + lipgloss.NewStyle().Foreground(theme.TextDim).Render(p.Suffix)
	}

	barWidth := max(p.Width-lipgloss.Width(out)-lipgloss.Width(suffix), 4)
	filled := max(0, min(int(float64(barWidth)*p.Percent), barWidth))

	fill := p.Fill
	if fill == nil {
		fill = theme.Secondary
	}
	out += lipgloss.NewStyle().Foreground(fill).Render(strings.Repeat("█", filled))
	out += lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", barWidth-filled))
	return out + suffix
}

// Ratio formats n/total as a bar fraction, zero when total is zero.
func Ratio(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// Percent formats a fraction as "NN%".
func Percent(f float64) string {
	return fmt.Sprintf("%d%%", int(f*100+0.5))
}
