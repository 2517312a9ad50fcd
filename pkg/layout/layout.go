// Package layout computes the collapsible icicle geometry of an hours tree.
//
// [Compute] walks the visible part of a [tree.Tree] depth first and returns
// one [Placement] per visible node and one [Flow] per visible parent/child
// edge. Sibling widths are proportional to their share of the parent's
// width, and the parent's branch spread is distributed as gaps strictly
// between consecutive siblings. Collapsed nodes are placed but their
// subtrees are not.
//
// The function is pure: the same tree state and parameters always produce
// the same result, and nothing is retained between calls. Hosts recompute
// the whole layout after each toggle instead of patching a previous result.
package layout

import (
	"math"

	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/tree"
)

// Placement is the rectangle assigned to one visible node.
type Placement struct {
	NodeID     string  `json:"id"`
	Name       string  `json:"name"`
	Hours      float64 `json:"hours"`
	Depth      int     `json:"depth"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Expandable bool    `json:"expandable"`
	Expanded   bool    `json:"expanded"`
}

// Right returns the x coordinate of the right edge.
func (p Placement) Right() float64 { return p.X + p.Width }

// Bottom returns the y coordinate of the bottom edge.
func (p Placement) Bottom() float64 { return p.Y + p.Height }

// Flow is the funnel connecting a parent bar to one child bar.
//
// The top edge sits where the child's share falls within the parent's own
// width; the bottom edge sits at the child's actual, gap-shifted position.
type Flow struct {
	ParentID    string  `json:"parent"`
	ChildID     string  `json:"child"`
	TopX        float64 `json:"top_x"`
	TopWidth    float64 `json:"top_width"`
	BottomX     float64 `json:"bottom_x"`
	BottomWidth float64 `json:"bottom_width"`
	TopY        float64 `json:"top_y"`
	BottomY     float64 `json:"bottom_y"`
	ColorKey    string  `json:"color"`
}

// Result is a complete layout.
type Result struct {
	Placements []Placement `json:"placements"`
	Flows      []Flow      `json:"flows"`
}

// Bounds returns the extent of all placements. Width and height are zero for
// an empty result.
func (r Result) Bounds() (minX, minY, maxX, maxY float64) {
	if len(r.Placements) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range r.Placements {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.Right())
		maxY = math.Max(maxY, p.Bottom())
	}
	return minX, minY, maxX, maxY
}

// Placement returns the placement of the node with the given ID.
func (r Result) Placement(id string) (Placement, bool) {
	for _, p := range r.Placements {
		if p.NodeID == id {
			return p, true
		}
	}
	return Placement{}, false
}

// Compute lays out the visible part of t.
//
// Params are validated first. A node reached twice during traversal aborts
// the layout with a MALFORMED_TREE error; no partial result is returned.
func Compute(t *tree.Tree, p Params) (Result, error) {
	if t == nil {
		return Result{}, errs.New(errs.ErrCodeInvalidInput, "layout of nil tree")
	}
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	return compute(t, p)
}

// nodeSource is the read side of [tree.Tree] the layout walks.
type nodeSource interface {
	Root() string
	Len() int
	Node(id string) (tree.Node, bool)
}

// compute walks src from its root. The visited set guards the arena
// invariant that every node has at most one parent; tree.Build already
// enforces it, other sources may not.
func compute(src nodeSource, p Params) (Result, error) {
	c := &computer{
		t:       src,
		p:       p,
		visited: make(map[string]bool, src.Len()),
	}
	if err := c.place(src.Root(), p.LeftPad, p.BaseWidth, 0); err != nil {
		return Result{}, err
	}
	return Result{Placements: c.placements, Flows: c.flows}, nil
}

type computer struct {
	t          nodeSource
	p          Params
	visited    map[string]bool
	placements []Placement
	flows      []Flow
}

func (c *computer) place(id string, xStart, width float64, depth int) error {
	if c.visited[id] {
		return errs.New(errs.ErrCodeMalformedTree, "node %q reached twice", id)
	}
	c.visited[id] = true

	n, ok := c.t.Node(id)
	if !ok {
		return errs.New(errs.ErrCodeMalformedTree, "dangling child reference %q", id)
	}

	y := c.p.RowY(depth)
	w := math.Max(MinWidth, width)
	c.placements = append(c.placements, Placement{
		NodeID:     n.ID,
		Name:       n.Name,
		Hours:      n.Hours,
		Depth:      depth,
		X:          xStart,
		Y:          y,
		Width:      w,
		Height:     c.p.BarThickness,
		Expandable: !n.IsLeaf(),
		Expanded:   n.Expanded && !n.IsLeaf(),
	})

	if !n.Expanded || n.IsLeaf() {
		return nil
	}

	children := make([]tree.Node, 0, len(n.Children))
	var sum float64
	for _, cid := range n.Children {
		ch, ok := c.t.Node(cid)
		if !ok {
			return errs.New(errs.ErrCodeMalformedTree, "dangling child reference %q", cid)
		}
		children = append(children, ch)
		sum += ch.Hours
	}
	if sum == 0 {
		sum = 1
	}

	var gap float64
	if k := len(children); k > 1 {
		gap = w * c.p.BranchSpread / float64(k-1)
	}

	cursorX := xStart
	var accumShare float64
	for _, ch := range children {
		share := ch.Hours / sum
		childWidth := share * w

		c.flows = append(c.flows, Flow{
			ParentID:    n.ID,
			ChildID:     ch.ID,
			TopX:        xStart + accumShare*w,
			TopWidth:    childWidth,
			BottomX:     cursorX,
			BottomWidth: childWidth,
			TopY:        y + c.p.BarThickness,
			BottomY:     c.p.RowY(depth + 1),
			ColorKey:    ch.Name,
		})

		if err := c.place(ch.ID, cursorX, childWidth, depth+1); err != nil {
			return err
		}
		cursorX += childWidth + gap
		accumShare += share
	}
	return nil
}
