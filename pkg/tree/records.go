package tree

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	errs "github.com/matzehuels/weekflow/pkg/errors"
)

// Record is the flat form of a node: one entry per node with a parent
// reference. An empty Parent marks the root.
type Record struct {
	ID       string  `json:"id"`
	Parent   string  `json:"parent,omitempty"`
	Name     string  `json:"name,omitempty"`
	Hours    float64 `json:"hours"`
	Expanded bool    `json:"expanded,omitempty"`
}

// FromRecords builds a tree from flat records. Siblings keep the order in
// which they appear. A record without a Name takes its ID as the name.
func FromRecords(records []Record) (*Tree, error) {
	if len(records) == 0 {
		return nil, errs.New(errs.ErrCodeMalformedTree, "tree has no nodes")
	}

	t := &Tree{
		nodes: make([]node, 0, len(records)),
		index: make(map[string]int, len(records)),
		root:  noParent,
	}

	for _, r := range records {
		if err := errs.ValidateNodeID(r.ID); err != nil {
			return nil, err
		}
		if err := errs.ValidateHours("hours of "+r.ID, r.Hours); err != nil {
			return nil, err
		}
		if _, dup := t.index[r.ID]; dup {
			return nil, errs.New(errs.ErrCodeMalformedTree, "node %q appears more than once", r.ID)
		}
		name := r.Name
		if name == "" {
			name = r.ID
		}
		t.index[r.ID] = len(t.nodes)
		t.nodes = append(t.nodes, node{
			id:       r.ID,
			name:     name,
			hours:    r.Hours,
			expanded: r.Expanded,
			parent:   noParent,
		})
	}

	for i, r := range records {
		if r.Parent == "" {
			if t.root != noParent {
				return nil, errs.New(errs.ErrCodeMalformedTree,
					"multiple roots: %q and %q", t.nodes[t.root].id, r.ID)
			}
			t.root = i
			continue
		}
		p, ok := t.index[r.Parent]
		if !ok {
			return nil, errs.New(errs.ErrCodeMalformedTree, "node %q has unknown parent %q", r.ID, r.Parent)
		}
		if p == i {
			return nil, errs.New(errs.ErrCodeMalformedTree, "node %q is its own parent", r.ID)
		}
		t.nodes[i].parent = p
		t.nodes[p].children = append(t.nodes[p].children, i)
	}

	if t.root == noParent {
		return nil, errs.New(errs.ErrCodeMalformedTree, "tree has no root")
	}

	// Every node has exactly one known parent, so anything the root cannot
	// reach sits on a cycle.
	seen := make([]bool, len(t.nodes))
	stack := []int{t.root}
	reached := 0
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[i] {
			continue
		}
		seen[i] = true
		reached++
		stack = append(stack, t.nodes[i].children...)
	}
	if reached != len(t.nodes) {
		for i, ok := range seen {
			if !ok {
				return nil, errs.New(errs.ErrCodeMalformedTree, "node %q is part of a cycle", t.nodes[i].id)
			}
		}
	}

	return t, nil
}

// Records returns the flat form of the tree in pre-order.
func (t *Tree) Records() []Record {
	out := make([]Record, 0, len(t.nodes))
	t.Walk(func(n Node, _ int) bool {
		out = append(out, Record{
			ID:       n.ID,
			Parent:   n.Parent,
			Name:     n.Name,
			Hours:    n.Hours,
			Expanded: n.Expanded,
		})
		return true
	})
	return out
}

// Parse decodes a tree from JSON. Both the flat form (an array of records)
// and the nested form (a single [Spec] object) are accepted.
func Parse(data []byte) (*Tree, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "empty tree document")
	}

	switch trimmed[0] {
	case '[':
		var records []Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode tree records")
		}
		return FromRecords(records)
	case '{':
		var spec Spec
		if err := json.Unmarshal(trimmed, &spec); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode tree spec")
		}
		return Build(spec)
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "tree document must be a JSON array or object")
	}
}

// Read decodes a tree from r. See [Parse].
func Read(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read tree")
	}
	return Parse(data)
}

// ReadFile decodes a tree from the named file. See [Parse].
func ReadFile(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read %s", path)
	}
	return Parse(data)
}

// WriteRecords encodes the tree as an indented JSON array of records.
func WriteRecords(w io.Writer, t *Tree) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t.Records())
}
