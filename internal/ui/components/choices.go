package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/ui/theme"
)

// Choices is the four-option answer picker. Keys 1-4 pick and submit at
// once; arrows move the cursor and enter submits it.
type Choices struct {
	Options [deck.OptionCount]string

	// Cursor is the highlighted option, -1 before any movement.
	Cursor int

	// Revealed marks the answer as scored; Chosen may be nil on timeout.
	Revealed bool
	Chosen   *int
	Correct  int
}

// NewChoices creates a picker with nothing highlighted.
func NewChoices(options [deck.OptionCount]string) Choices {
	return Choices{Options: options, Cursor: -1}
}

// Submitted is the result of a key press that answers the question.
// Index is nil when enter was pressed with nothing highlighted.
type Submitted struct {
	Index *int
}

// Update handles navigation. It returns a non-nil *Submitted when the key
// press should be scored.
func (c Choices) Update(msg tea.Msg) (Choices, *Submitted) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || c.Revealed {
		return c, nil
	}
	switch key := kmsg.String(); key {
	case "1", "2", "3", "4":
		i := int(key[0] - '1')
		c.Cursor = i
		return c, &Submitted{Index: &i}
	case "up", "k":
		if c.Cursor > 0 {
			c.Cursor--
		} else {
			c.Cursor = 0
		}
	case "down", "j":
		if c.Cursor < deck.OptionCount-1 {
			c.Cursor++
		}
	case "enter":
		if c.Cursor < 0 {
			return c, &Submitted{}
		}
		i := c.Cursor
		return c, &Submitted{Index: &i}
	}
	return c, nil
}

// Reveal marks the correct option and the chosen one.
func (c *Choices) Reveal(chosen *int, correct int) {
	c.Revealed = true
	c.Chosen = chosen
	c.Correct = correct
}

// View renders the options, colored once revealed.
func (c Choices) View() string {
	var b strings.Builder
	for i, opt := range c.Options {
		prefix := "  "
		if !c.Revealed && i == c.Cursor {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d) %s", prefix, i+1, opt)

		style := theme.Unselected
		switch {
		case c.Revealed && i == c.Correct:
			style = theme.Correct
		case c.Revealed && c.Chosen != nil && i == *c.Chosen:
			style = theme.Incorrect
		case c.Revealed:
			style = theme.Muted
		case i == c.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
