// Package tree holds the hierarchy of named hour quantities that weekflow
// lays out, together with the per-node expand/collapse state.
//
// # Overview
//
// A [Tree] is an arena of nodes addressed by stable string IDs. Each node
// stores its parent as an index into the arena and owns an ordered list of
// child indices; insertion order is the left-to-right sibling order used by
// the layout engine. There are no owning back-references, so a tree can be
// copied, hashed and serialized without cycles.
//
// Trees are supplied wholesale, either from a nested [Spec] (the shape the
// breakdown model produces) or from a flat list of [Record] values read from
// a file:
//
//	t, err := tree.Build(tree.Spec{
//	    ID: "total", Name: "Total", Hours: 100, Expanded: true,
//	    Children: []tree.Spec{
//	        {ID: "busy", Name: "Busy", Hours: 80},
//	        {ID: "free", Name: "Free", Hours: 20},
//	    },
//	})
//
// Construction rejects malformed input with an [errors.ErrCodeMalformedTree]
// error: duplicate IDs (a node under two parents), unknown parents, missing
// or multiple roots, and cycles.
//
// # Mutation
//
// The only mutation is [Tree.Toggle], which flips the expanded flag of a node
// that has children. Toggling a leaf is a no-op and two identical toggles
// restore the previous state. Hours and structure never change after
// construction.
//
// # Consistency
//
// A parent's hours should equal the sum of its children's hours, but the
// layout engine does not rely on it. [Tree.CheckConsistency] reports every
// parent where the two disagree so callers can warn or refuse.
//
// [errors.ErrCodeMalformedTree]: github.com/matzehuels/weekflow/pkg/errors.ErrCodeMalformedTree
package tree
