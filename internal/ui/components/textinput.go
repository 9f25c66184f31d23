package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/smartstudy/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with a prompt label and an inline
// validation message.
type TextInput struct {
	Model  textinput.Model
	Label  string
	errMsg string
}

// NewTextInput creates a focused input prefilled with value.
func NewTextInput(label, value string, limit int) TextInput {
	ti := textinput.New()
	ti.SetValue(value)
	ti.CursorEnd()
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()
	return TextInput{Model: ti, Label: label}
}

// Update forwards messages to the wrapped model and clears the error.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		t.errMsg = ""
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// Value returns the trimmed input.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.Model.Value())
}

// SetError shows msg under the input until the next key press.
func (t *TextInput) SetError(msg string) {
	t.errMsg = msg
}

// View renders the label, input and any error.
func (t TextInput) View() string {
	out := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(t.Label) + " " + t.Model.View()
	if t.errMsg != "" {
		out += "\n" + theme.Incorrect.Render(t.errMsg)
	}
	return out
}
