package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/flowprof/pkg/layout"
	"github.com/matzehuels/flowprof/pkg/surface"
)

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m browseModel, msgs ...tea.Msg) browseModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(browseModel)
	}
	return m
}

func TestBrowseTreeNavigation(t *testing.T) {
	m := newBrowseModel(scenarioReport(t), layout.DefaultConfig())
	if len(m.frame.Tree) != 3 || m.state.Selected != "1" {
		t.Fatalf("initial: %d rows, selected %q", len(m.frame.Tree), m.state.Selected)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.state.Selected != "2" || m.cursor != 1 {
		t.Errorf("after down: selected %q at %d", m.state.Selected, m.cursor)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.frame.Tree) != 4 || !m.state.IsExpanded("2") {
		t.Errorf("after enter: %d rows, expanded %v", len(m.frame.Tree), m.state.Expanded)
	}

	m = press(t, m, keys("c"))
	if len(m.frame.Tree) != 1 {
		t.Errorf("after collapse all: %d rows, want 1", len(m.frame.Tree))
	}
	m = press(t, m, keys("e"))
	if len(m.frame.Tree) != 4 {
		t.Errorf("after expand all: %d rows, want 4", len(m.frame.Tree))
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyUp})
	if m.state.Selected != "1" {
		t.Errorf("up past the first row: selected %q", m.state.Selected)
	}
}

func TestBrowseSearch(t *testing.T) {
	m := newBrowseModel(scenarioReport(t), layout.DefaultConfig())
	m = press(t, m, keys("/"))
	if !m.searching {
		t.Fatal("/ did not start a search")
	}
	m = press(t, m, keys("D"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching || m.state.Search != "D" {
		t.Errorf("search state = %q (searching %v)", m.state.Search, m.searching)
	}
	if !strings.Contains(m.View(), "filter: D") {
		t.Error("footer does not show the active filter")
	}

	m = press(t, m, keys("/"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.state.Search != "" || m.query != "" {
		t.Errorf("esc left search %q", m.state.Search)
	}
}

func TestBrowseGraphTab(t *testing.T) {
	m := newBrowseModel(scenarioReport(t), layout.DefaultConfig())
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state.Tab != surface.TabGraph || m.frame.Graph == nil {
		t.Fatal("tab did not switch to the graph")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyDown})
	if got := m.frame.Transform; got != "translate(-40 -40) scale(1)" {
		t.Errorf("Transform after panning = %q", got)
	}
	if m.state.Selected != "1" {
		t.Errorf("panning changed the selection to %q", m.state.Selected)
	}

	m = press(t, m, keys("+"))
	if m.state.Viewport.Scale <= 1 {
		t.Errorf("zoom in: scale %v", m.state.Viewport.Scale)
	}
	m = press(t, m, keys("0"))
	if m.frame.Transform != "translate(0 0) scale(1)" {
		t.Errorf("reset: %q", m.frame.Transform)
	}

	view := m.View()
	for _, want := range []string{"3 layers", "[A]", "D"} {
		if !strings.Contains(view, want) {
			t.Errorf("graph view lacks %q", want)
		}
	}
}

func TestBrowseQuit(t *testing.T) {
	m := newBrowseModel(scenarioReport(t), layout.DefaultConfig())
	_, cmd := m.Update(keys("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
