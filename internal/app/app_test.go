package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/smartstudy/internal/deck"
	"github.com/abhisek/smartstudy/internal/logging"
	"github.com/abhisek/smartstudy/internal/router"
	"github.com/abhisek/smartstudy/internal/screens/home"
)

type emptyStore struct{}

func (emptyStore) LoadSets(context.Context) ([]deck.Set, deck.LoadReport, error) {
	return nil, deck.LoadReport{}, nil
}
func (emptyStore) SaveSets(context.Context, []deck.Set) error      { return nil }
func (emptyStore) LoadCurrentSession(context.Context) (int, error) { return 1, nil }
func (emptyStore) SaveCurrentSession(context.Context, int) error   { return nil }
func (emptyStore) SetActive(context.Context, string, bool) error   { return nil }
func (emptyStore) RenameSet(context.Context, string, string) error { return nil }
func (emptyStore) DeleteSet(context.Context, string) error         { return nil }

func deps() home.Deps {
	return home.Deps{Store: emptyStore{}, Logger: logging.Discard()}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestStartScreens(t *testing.T) {
	tests := []struct {
		start     Start
		wantDepth int
		wantTitle string
	}{
		{StartHome, 1, "Home"},
		{StartStudy, 2, "Study"},
		{StartExam, 2, "Exam"},
	}
	for _, tt := range tests {
		m := NewModel(deps(), tt.start)
		if got := m.router.Depth(); got != tt.wantDepth {
			t.Errorf("start %d: Depth() = %d, want %d", tt.start, got, tt.wantDepth)
		}
		if got := m.router.Active().Title(); got != tt.wantTitle {
			t.Errorf("start %d: Title() = %q, want %q", tt.start, got, tt.wantTitle)
		}
		if m.Init() == nil {
			t.Errorf("start %d: Init() = nil", tt.start)
		}
	}
}

func TestEscPopsToHome(t *testing.T) {
	m := NewModel(deps(), StartStudy)

	m, cmd := update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("esc returned nil cmd")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatalf("esc cmd() = %T, want router.PopScreenMsg", cmd())
	}
	m, _ = update(t, m, router.PopScreenMsg{})
	if got := m.router.Depth(); got != 1 {
		t.Errorf("Depth() = %d after pop, want 1", got)
	}

	_, cmd = update(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		t.Error("esc at root returned a cmd")
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := NewModel(deps(), StartHome)
	_, cmd := update(t, m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("ctrl+c returned nil cmd")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("ctrl+c cmd() = %T, want tea.QuitMsg", cmd())
	}
}

func TestView(t *testing.T) {
	m := NewModel(deps(), StartStudy)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 10})
	if got := m.render(); !strings.Contains(got, "Terminal too small") {
		t.Errorf("small View() = %q, want size warning", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	got := m.render()
	for _, want := range []string{"SmartStudy", "Study", "Esc", "Back", "Ctrl+C"} {
		if !strings.Contains(got, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
