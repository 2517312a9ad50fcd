package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/weekflow/pkg/breakdown"
	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/render/icicle"
	"github.com/matzehuels/weekflow/pkg/tree"
	"github.com/matzehuels/weekflow/pkg/view"
)

func newDemoExplorer(t *testing.T) ExploreModel {
	t.Helper()
	tr, err := tree.Build(breakdown.Demo())
	if err != nil {
		t.Fatal(err)
	}
	ctrl, err := view.New(context.Background(), tr, layout.DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	return NewExploreModel(context.Background(), ctrl, icicle.DefaultPalette())
}

func press(t *testing.T, m ExploreModel, keys ...tea.KeyMsg) ExploreModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(ExploreModel)
	}
	return m
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestExploreNavigation(t *testing.T) {
	m := newDemoExplorer(t)
	if m.Cursor != breakdown.IDTotal {
		t.Fatalf("initial cursor = %q, want %q", m.Cursor, breakdown.IDTotal)
	}

	steps := []struct {
		key  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyDown}, "busy"},
		{tea.KeyMsg{Type: tea.KeyRight}, "free"},
		{tea.KeyMsg{Type: tea.KeyRight}, "free"},
		{runeKey('j'), "prod"},
		{runeKey('l'), "unprod"},
		{runeKey('k'), "free"},
		{tea.KeyMsg{Type: tea.KeyLeft}, "busy"},
		{tea.KeyMsg{Type: tea.KeyDown}, "busy"},
		{tea.KeyMsg{Type: tea.KeyUp}, breakdown.IDTotal},
		{tea.KeyMsg{Type: tea.KeyUp}, breakdown.IDTotal},
	}
	for i, s := range steps {
		m = press(t, m, s.key)
		if m.Cursor != s.want {
			t.Fatalf("step %d (%s): cursor = %q, want %q", i, s.key, m.Cursor, s.want)
		}
	}
}

func TestExploreToggle(t *testing.T) {
	m := newDemoExplorer(t)

	var toggled []string
	m.OnToggle = func(id string) error {
		toggled = append(toggled, id)
		return nil
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyEnter})
	if got := len(m.ctrl.Result().Placements); got != 3 {
		t.Fatalf("placements after collapsing Free = %d, want 3", got)
	}
	if len(toggled) != 1 || toggled[0] != "free" {
		t.Errorf("OnToggle calls = %v, want [free]", toggled)
	}
	if !strings.Contains(m.View(), "Collapsed Free") {
		t.Error("status line missing")
	}

	m = press(t, m, runeKey(' '))
	if got := len(m.ctrl.Result().Placements); got != 5 {
		t.Errorf("placements after expanding Free = %d, want 5", got)
	}
}

func TestExploreToggleLeaf(t *testing.T) {
	m := newDemoExplorer(t)
	calls := 0
	m.OnToggle = func(string) error { calls++; return nil }

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	if calls != 0 {
		t.Error("toggling a leaf must not be recorded")
	}
	if !strings.Contains(m.View(), "Busy has nothing to expand") {
		t.Error("leaf status missing")
	}
	if got := len(m.ctrl.Result().Placements); got != 5 {
		t.Errorf("placements = %d, want 5", got)
	}
}

func TestExploreCollapseAll(t *testing.T) {
	m := newDemoExplorer(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, runeKey('c'))

	if got := len(m.ctrl.Result().Placements); got != 1 {
		t.Errorf("placements after collapse all = %d, want 1", got)
	}
	if m.Cursor != breakdown.IDTotal {
		t.Errorf("cursor = %q, want root", m.Cursor)
	}
	if ids := m.ctrl.ExpandedIDs(); len(ids) != 0 {
		t.Errorf("still expanded: %v", ids)
	}
}

func TestExploreSave(t *testing.T) {
	m := newDemoExplorer(t)
	var saved int
	m.Save = func(res layout.Result) (string, error) {
		saved = len(res.Placements)
		return "week.svg", nil
	}

	m = press(t, m, runeKey('s'))
	if saved != 5 {
		t.Errorf("saved %d placements, want 5", saved)
	}
	if !strings.Contains(m.View(), "Saved week.svg") {
		t.Error("save status missing")
	}
}

func TestExploreView(t *testing.T) {
	m := newDemoExplorer(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 62, Height: 30})
	m = next.(ExploreModel)
	if m.Width != 60 {
		t.Errorf("Width = %d, want 60", m.Width)
	}

	out := m.View()
	for _, want := range []string{"Weekflow Explorer", "Total", "Busy", "Free", "5 bars visible"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 5})
	if w := next.(ExploreModel).Width; w != minExploreWidth {
		t.Errorf("Width = %d, want %d", w, minExploreWidth)
	}
}

func TestExploreQuit(t *testing.T) {
	m := newDemoExplorer(t)
	_, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestExploreHelpers(t *testing.T) {
	if got := hoursLabel(12.346); got != "12.35h" {
		t.Errorf("hoursLabel = %q", got)
	}
	if got := hoursLabel(8); got != "8h" {
		t.Errorf("hoursLabel = %q", got)
	}
	if got := share(10, 40); got != "25%" {
		t.Errorf("share = %q", got)
	}
	if got := share(1, 0); got != "-" {
		t.Errorf("share with zero whole = %q", got)
	}
	if got := fitCell("Productive", 4); got != "Prod" {
		t.Errorf("fitCell truncate = %q", got)
	}
	if got := fitCell("ab", 4); got != "ab  " {
		t.Errorf("fitCell pad = %q", got)
	}
}
