// Package screen defines the contract between the router and each view.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/smartstudy/internal/ui/layout"
)

// Screen is one page of the TUI.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the content area, excluding header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider puts a short status, such as a countdown, at the right of
// the header.
type StatusProvider interface {
	Status() string
}

// EscapeHandler is implemented by screens that handle esc themselves, for
// example to confirm leaving a running exam. The app pops every other
// screen on esc.
type EscapeHandler interface {
	HandlesEscape() bool
}
