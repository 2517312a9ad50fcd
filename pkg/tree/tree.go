package tree

import (
	"errors"

	errs "github.com/matzehuels/weekflow/pkg/errors"
)

// ErrNodeNotFound is returned by [Tree.Toggle] when the ID is not in the tree.
var ErrNodeNotFound = errors.New("node not found")

const noParent = -1

// Spec is the nested form of a tree, as produced by the breakdown model.
type Spec struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Hours    float64 `json:"hours"`
	Expanded bool    `json:"expanded,omitempty"`
	Children []Spec  `json:"children,omitempty"`
}

// Node is a read-only snapshot of one tree element.
type Node struct {
	ID       string
	Name     string
	Hours    float64
	Expanded bool
	Parent   string   // empty for the root
	Children []string // in sibling order
}

// IsLeaf reports whether the node has no children.
func (n Node) IsLeaf() bool { return len(n.Children) == 0 }

type node struct {
	id       string
	name     string
	hours    float64
	expanded bool
	parent   int
	children []int
}

// Tree is an arena of nodes with a single root.
//
// Tree is not safe for concurrent mutation; hosts serialize Toggle calls
// and never toggle while a layout is being computed.
type Tree struct {
	nodes []node
	index map[string]int
	root  int
}

// Build constructs a tree from a nested spec. Children are taken in order.
func Build(spec Spec) (*Tree, error) {
	var records []Record
	var flatten func(s Spec, parent string)
	flatten = func(s Spec, parent string) {
		records = append(records, Record{
			ID:       s.ID,
			Parent:   parent,
			Name:     s.Name,
			Hours:    s.Hours,
			Expanded: s.Expanded,
		})
		for _, c := range s.Children {
			flatten(c, s.ID)
		}
	}
	flatten(spec, "")
	return FromRecords(records)
}

// Root returns the ID of the root node.
func (t *Tree) Root() string { return t.nodes[t.root].id }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Has reports whether a node with the given ID exists.
func (t *Tree) Has(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Node returns a snapshot of the node with the given ID.
func (t *Tree) Node(id string) (Node, bool) {
	i, ok := t.index[id]
	if !ok {
		return Node{}, false
	}
	return t.snapshot(i), true
}

// Children returns the IDs of the node's children in sibling order.
// It returns nil for leaves and unknown IDs.
func (t *Tree) Children(id string) []string {
	i, ok := t.index[id]
	if !ok || len(t.nodes[i].children) == 0 {
		return nil
	}
	out := make([]string, len(t.nodes[i].children))
	for k, c := range t.nodes[i].children {
		out[k] = t.nodes[c].id
	}
	return out
}

// Toggle flips the expanded flag of the node with the given ID.
// Toggling a leaf is a no-op. Unknown IDs return an error wrapping
// [ErrNodeNotFound].
func (t *Tree) Toggle(id string) error {
	i, ok := t.index[id]
	if !ok {
		return errs.Wrap(errs.ErrCodeNodeNotFound, ErrNodeNotFound, "toggle %q", id)
	}
	n := &t.nodes[i]
	if len(n.children) == 0 {
		return nil
	}
	n.expanded = !n.expanded
	return nil
}

// ExpandedIDs returns the IDs of expanded nodes that have children, in
// pre-order.
func (t *Tree) ExpandedIDs() []string {
	var ids []string
	t.Walk(func(n Node, _ int) bool {
		if n.Expanded && !n.IsLeaf() {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

// Walk visits every node in pre-order, passing its depth (root = 0).
// Returning false from fn skips the node's descendants.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	var visit func(i, depth int)
	visit = func(i, depth int) {
		if !fn(t.snapshot(i), depth) {
			return
		}
		for _, c := range t.nodes[i].children {
			visit(c, depth+1)
		}
	}
	visit(t.root, 0)
}

// Spec returns the nested form of the tree, including expand state.
func (t *Tree) Spec() Spec {
	var build func(i int) Spec
	build = func(i int) Spec {
		n := t.nodes[i]
		s := Spec{ID: n.id, Name: n.name, Hours: n.hours, Expanded: n.expanded}
		for _, c := range n.children {
			s.Children = append(s.Children, build(c))
		}
		return s
	}
	return build(t.root)
}

func (t *Tree) snapshot(i int) Node {
	n := t.nodes[i]
	out := Node{
		ID:       n.id,
		Name:     n.name,
		Hours:    n.hours,
		Expanded: n.expanded,
	}
	if n.parent != noParent {
		out.Parent = t.nodes[n.parent].id
	}
	if len(n.children) > 0 {
		out.Children = make([]string, len(n.children))
		for k, c := range n.children {
			out.Children[k] = t.nodes[c].id
		}
	}
	return out
}
