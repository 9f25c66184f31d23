// Package sets is the TUI screen for managing question sets.
package sets

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/router"
	"github.com/abhisek/smartstudy/internal/screen"
	"github.com/abhisek/smartstudy/internal/ui/components"
	"github.com/abhisek/smartstudy/internal/ui/layout"
	"github.com/abhisek/smartstudy/internal/ui/theme"
)

// nameLimit caps set names typed in the rename field.
const nameLimit = 80

// Library is the persistence the screen edits.
type Library interface {
	LoadSets(ctx context.Context) ([]deck.Set, deck.LoadReport, error)
	SetActive(ctx context.Context, id string, active bool) error
	RenameSet(ctx context.Context, id, name string) error
	DeleteSet(ctx context.Context, id string) error
}

type mode int

const (
	modeList mode = iota
	modeRename
	modeConfirmDelete
)

type loadedMsg struct {
	sets    []deck.Set
	dropped int
	err     error
}

// savedMsg reports the outcome of an edit; the list reloads either way.
type savedMsg struct {
	action string
	err    error
}

// Screen lists sets and toggles, renames or deletes them.
type Screen struct {
	lib      Library
	sets     []deck.Set
	dropped  int
	loaded   bool
	selected int
	mode     mode
	input    components.TextInput
	notice   string
	errMsg   string
}

var (
	_ screen.Screen          = (*Screen)(nil)
	_ screen.KeyHintProvider = (*Screen)(nil)
	_ screen.EscapeHandler   = (*Screen)(nil)
)

// New creates the screen.
func New(lib Library) *Screen {
	return &Screen{lib: lib}
}

func (s *Screen) Init() tea.Cmd {
	return s.reload()
}

func (s *Screen) reload() tea.Cmd {
	lib := s.lib
	return func() tea.Msg {
		sets, report, err := lib.LoadSets(context.Background())
		return loadedMsg{sets: sets, dropped: report.Dropped, err: err}
	}
}

func (s *Screen) Title() string { return "Sets" }

// HandlesEscape is true while a prompt is open so esc cancels it.
func (s *Screen) HandlesEscape() bool { return s.mode != modeList }

func (s *Screen) KeyHints() []layout.KeyHint {
	switch s.mode {
	case modeRename:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	case modeConfirmDelete:
		return []layout.KeyHint{
			{Key: "Y", Description: "Delete"},
			{Key: "N", Description: "Keep"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Space", Description: "Active on/off"},
		{Key: "R", Description: "Rename"},
		{Key: "D", Description: "Delete"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.sets = msg.sets
		s.dropped = msg.dropped
		s.selected = min(s.selected, max(len(s.sets)-1, 0))
		return s, nil

	case savedMsg:
		if msg.err != nil {
			s.notice = fmt.Sprintf("Could not %s: %v", msg.action, msg.err)
		}
		return s, s.reload()

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}

	if s.mode == modeRename {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Screen) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	switch s.mode {
	case modeRename:
		switch key {
		case "esc":
			s.mode = modeList
			return nil
		case "enter":
			name := s.input.Value()
			if name == "" {
				s.input.SetError("Name cannot be empty.")
				return nil
			}
			s.mode = modeList
			return s.edit("rename set", func(ctx context.Context, set deck.Set) error {
				return s.lib.RenameSet(ctx, set.ID, name)
			})
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return cmd

	case modeConfirmDelete:
		switch key {
		case "y", "Y":
			s.mode = modeList
			return s.edit("delete set", func(ctx context.Context, set deck.Set) error {
				return s.lib.DeleteSet(ctx, set.ID)
			})
		case "n", "N", "esc":
			s.mode = modeList
		}
		return nil
	}

	s.notice = ""
	switch key {
	case "esc":
		return router.Pop()
	case "up", "k":
		s.selected = max(s.selected-1, 0)
	case "down", "j":
		s.selected = min(s.selected+1, max(len(s.sets)-1, 0))
	case "space", " ", "enter":
		return s.edit("update set", func(ctx context.Context, set deck.Set) error {
			return s.lib.SetActive(ctx, set.ID, !set.Active)
		})
	case "r", "R":
		if set, ok := s.current(); ok {
			s.input = components.NewTextInput("New name:", set.Name, nameLimit)
			s.mode = modeRename
		}
	case "d", "D":
		if _, ok := s.current(); ok {
			s.mode = modeConfirmDelete
		}
	}
	return nil
}

func (s *Screen) current() (deck.Set, bool) {
	if s.selected < 0 || s.selected >= len(s.sets) {
		return deck.Set{}, false
	}
	return s.sets[s.selected], true
}

// edit runs fn against the selected set off the UI loop.
func (s *Screen) edit(action string, fn func(ctx context.Context, set deck.Set) error) tea.Cmd {
	set, ok := s.current()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		return savedMsg{action: action, err: fn(context.Background(), set)}
	}
}

func (s *Screen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().Width(width).Padding(1, 2).
			Render(theme.Incorrect.Render("Could not load sets: " + s.errMsg))
	}
	if !s.loaded {
		return layout.Center(theme.Hint.Render("\n\nLoading sets..."), width)
	}
	if len(s.sets) == 0 {
		return lipgloss.NewStyle().Width(width).Padding(1, 2).Render(
			theme.Title.Render("No sets yet") + "\n\n" +
				theme.Body.Render("Import one with `smartstudy import FILE` or generate one with `smartstudy generate FILE`."))
	}

	var b strings.Builder
	for i, set := range s.sets {
		check := "[ ]"
		if set.Active {
			check = "[x]"
		}
		dist := deck.MasteryDistribution(set.Questions)
		line := fmt.Sprintf("%s %s", check, set.Name)
		meta := fmt.Sprintf("%d questions · %d mastered · %s", len(set.Questions), dist[deck.LadderLength-1], set.Source)

		style := theme.Unselected
		prefix := "  "
		if i == s.selected {
			style = theme.Selected
			prefix = "▸ "
		}
		b.WriteString(style.Render(prefix + line))
		b.WriteString("  ")
		b.WriteString(theme.Muted.Render(meta))
		b.WriteString("\n")
	}

	if s.dropped > 0 {
		b.WriteString("\n")
		b.WriteString(theme.Warning.Render(fmt.Sprintf("%d invalid question(s) were skipped while loading.", s.dropped)))
		b.WriteString("\n")
	}

	switch s.mode {
	case modeRename:
		b.WriteString("\n")
		b.WriteString(s.input.View())
	case modeConfirmDelete:
		if set, ok := s.current(); ok {
			b.WriteString("\n")
			b.WriteString(theme.Warning.Render(fmt.Sprintf("Delete %q and its %d questions? (y/n)", set.Name, len(set.Questions))))
		}
	}
	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(s.notice))
	}
	return lipgloss.NewStyle().Width(width).Padding(1, 2).Render(b.String())
}
