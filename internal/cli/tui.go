package cli

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/render/icicle"
	"github.com/matzehuels/weekflow/pkg/tree"
	"github.com/matzehuels/weekflow/pkg/view"
)

// Explorer styles
var (
	exploreDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	exploreStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	exploreErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	defaultExploreWidth = 100
	minExploreWidth     = 20
)

// =============================================================================
// ExploreModel - Interactive icicle explorer
// =============================================================================

// ExploreModel is the bubbletea model of the terminal explorer. It draws the
// current layout of a view.Controller scaled to the terminal width and turns
// key presses into controller commands.
type ExploreModel struct {
	ctrl    *view.Controller
	palette icicle.Palette
	ctx     context.Context

	// OnToggle runs after every successful toggle, e.g. to persist it.
	OnToggle func(nodeID string) error
	// Save writes a snapshot of the current layout and returns its path.
	Save func(res layout.Result) (string, error)

	Cursor string // selected node ID
	Width  int
	status string
	err    error
}

// NewExploreModel creates an explorer over ctrl with the cursor on the root.
func NewExploreModel(ctx context.Context, ctrl *view.Controller, palette icicle.Palette) ExploreModel {
	m := ExploreModel{
		ctrl:    ctrl,
		palette: palette,
		ctx:     ctx,
		Width:   defaultExploreWidth,
	}
	if ps := ctrl.Result().Placements; len(ps) > 0 {
		m.Cursor = ps[0].NodeID
	}
	return m
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.status, m.err = "", nil
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.moveSibling(-1)
		case "right", "l":
			m.moveSibling(1)
		case "up", "k":
			if n, ok := m.ctrl.Node(m.Cursor); ok && n.Parent != "" {
				m.Cursor = n.Parent
			}
		case "down", "j":
			m.moveDown()
		case "enter", " ":
			m.toggle(m.Cursor)
		case "c":
			m.collapseAll()
		case "s":
			m.save()
		}
	case tea.WindowSizeMsg:
		m.Width = max(msg.Width-2, minExploreWidth)
	}
	return m, nil
}

// moveSibling moves the cursor to the neighbouring bar in the same row.
func (m *ExploreModel) moveSibling(step int) {
	cur, ok := m.ctrl.Result().Placement(m.Cursor)
	if !ok {
		return
	}
	row := rowOf(m.ctrl.Result(), cur.Depth)
	for i, p := range row {
		if p.NodeID != m.Cursor {
			continue
		}
		if j := i + step; j >= 0 && j < len(row) {
			m.Cursor = row[j].NodeID
		}
		return
	}
}

// moveDown selects the first visible child.
func (m *ExploreModel) moveDown() {
	n, ok := m.ctrl.Node(m.Cursor)
	if !ok || !n.Expanded || n.IsLeaf() {
		return
	}
	m.Cursor = n.Children[0]
}

func (m *ExploreModel) toggle(id string) {
	n, ok := m.ctrl.Node(id)
	if !ok {
		m.err = errs.New(errs.ErrCodeNodeNotFound, "node %q not found", id)
		return
	}
	if n.IsLeaf() {
		m.status = n.Name + " has nothing to expand"
		return
	}
	if err := m.ctrl.Dispatch(m.ctx, view.Toggle{NodeID: id}); err != nil {
		m.err = err
		return
	}
	if m.OnToggle != nil {
		if err := m.OnToggle(id); err != nil {
			m.err = fmt.Errorf("save state: %w", err)
		}
	}
	verb := "Collapsed"
	if !n.Expanded {
		verb = "Expanded"
	}
	m.status = verb + " " + n.Name
}

// collapseAll collapses every expanded bar, deepest first, and moves the
// cursor to the root.
func (m *ExploreModel) collapseAll() {
	ids := m.ctrl.ExpandedIDs()
	for i := len(ids) - 1; i >= 0; i-- {
		m.toggle(ids[i])
		if m.err != nil {
			return
		}
	}
	m.Cursor = m.ctrl.Spec().ID
	m.status = fmt.Sprintf("Collapsed %d bars", len(ids))
}

func (m *ExploreModel) save() {
	if m.Save == nil {
		return
	}
	path, err := m.Save(m.ctrl.Result())
	if err != nil {
		m.err = err
		return
	}
	m.status = "Saved " + path
}

func (m ExploreModel) View() string {
	var b strings.Builder
	res := m.ctrl.Result()

	b.WriteString(StyleTitle.Render("Weekflow Explorer"))
	b.WriteString("\n")
	b.WriteString(exploreDimStyle.Render("←/→ siblings  ↑/↓ parent/child  ⏎ toggle  c collapse all  s save svg  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.renderBars(res))
	b.WriteString("\n")
	b.WriteString(m.renderDetail(res))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(exploreErrorStyle.Render(iconError + " " + errs.UserMessage(m.err)))
	case m.status != "":
		b.WriteString(exploreStatusStyle.Render(iconInfo + " " + m.status))
	}
	return b.String()
}

// renderBars draws one terminal row per depth plus a row of flow stubs
// between depths, all scaled from layout units to m.Width columns.
func (m ExploreModel) renderBars(res layout.Result) string {
	if len(res.Placements) == 0 {
		return ""
	}
	minX, _, maxX, _ := res.Bounds()
	scale := float64(m.Width) / math.Max(maxX-minX, 1)
	col := func(x float64) int { return int(math.Round((x - minX) * scale)) }

	var b strings.Builder
	for depth := 0; ; depth++ {
		row := rowOf(res, depth)
		if len(row) == 0 {
			break
		}
		if depth > 0 {
			b.WriteString(m.renderRow(row, col, m.flowCell))
			b.WriteString("\n")
		}
		b.WriteString(m.renderRow(row, col, m.barCell))
		b.WriteString("\n")
	}
	return b.String()
}

// renderRow lays out cells left to right. Bars narrower than one column
// still get one; overlaps caused by rounding are clipped.
func (m ExploreModel) renderRow(row []layout.Placement, col func(float64) int, cell func(layout.Placement, int) string) string {
	var b strings.Builder
	pos := 0
	for _, p := range row {
		start, end := max(col(p.X), pos), col(p.Right())
		if end <= start {
			end = start + 1
		}
		b.WriteString(strings.Repeat(" ", start-pos))
		b.WriteString(cell(p, end-start))
		pos = end
	}
	return b.String()
}

func (m ExploreModel) barCell(p layout.Placement, width int) string {
	marker := " "
	if p.Expandable {
		marker = "▸"
		if p.Expanded {
			marker = "▾"
		}
	}
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(m.palette.Color(p.Name))).
		Foreground(lipgloss.Color(m.palette.Contrast(p.Name)))
	if p.NodeID == m.Cursor {
		style = style.Bold(true).Reverse(true)
	}
	return style.Render(fitCell(marker+p.Name+" "+hoursLabel(p.Hours), width))
}

func (m ExploreModel) flowCell(p layout.Placement, width int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Color(p.Name)))
	return style.Render(strings.Repeat("▁", width))
}

// renderDetail shows the selected bar and its children as a table.
func (m ExploreModel) renderDetail(res layout.Result) string {
	n, ok := m.ctrl.Node(m.Cursor)
	if !ok {
		return ""
	}

	rows := [][]string{{n.Name, hoursLabel(n.Hours), m.shareOfParent(n), stateLabel(n)}}
	for _, id := range n.Children {
		c, _ := m.ctrl.Node(id)
		rows = append(rows, []string{"  " + c.Name, hoursLabel(c.Hours), share(c.Hours, n.Hours), stateLabel(c)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Category", "Hours", "Share", "State").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row == 0:
				return lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
			case col == 0:
				name := strings.TrimSpace(rows[row][0])
				return lipgloss.NewStyle().Foreground(lipgloss.Color(m.palette.Color(name)))
			default:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
		})

	visible := len(res.Placements)
	return t.Render() + "\n" + exploreDimStyle.Render(fmt.Sprintf("  %d bars visible", visible))
}

func (m ExploreModel) shareOfParent(n tree.Node) string {
	if n.Parent == "" {
		return "100%"
	}
	p, _ := m.ctrl.Node(n.Parent)
	return share(n.Hours, p.Hours)
}

// =============================================================================
// Helpers
// =============================================================================

// rowOf returns the placements of one depth ordered left to right.
func rowOf(res layout.Result, depth int) []layout.Placement {
	var row []layout.Placement
	for _, p := range res.Placements {
		if p.Depth == depth {
			row = append(row, p)
		}
	}
	sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	return row
}

// fitCell truncates or pads s to exactly width runes.
func fitCell(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

func hoursLabel(h float64) string {
	return strconv.FormatFloat(math.Round(h*100)/100, 'f', -1, 64) + "h"
}

func share(part, whole float64) string {
	if whole <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", part/whole*100)
}

func stateLabel(n tree.Node) string {
	switch {
	case n.IsLeaf():
		return ""
	case n.Expanded:
		return "expanded"
	default:
		return "collapsed"
	}
}
