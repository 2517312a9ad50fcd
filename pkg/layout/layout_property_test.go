package layout

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/weekflow/pkg/tree"
)

// randomSpec builds a tree of bounded depth with positive hours whose
// parents equal the sum of their children.
func randomSpec(rng *rand.Rand, id string, depth int) tree.Spec {
	s := tree.Spec{ID: id, Name: id, Expanded: rng.Intn(4) != 0}
	if depth == 0 || rng.Intn(3) == 0 {
		s.Hours = float64(rng.Intn(40) + 1)
		return s
	}
	n := rng.Intn(4) + 1
	for i := 0; i < n; i++ {
		c := randomSpec(rng, fmt.Sprintf("%s.%d", id, i), depth-1)
		s.Hours += c.Hours
		s.Children = append(s.Children, c)
	}
	return s
}

func randomParams(rng *rand.Rand) Params {
	return Params{
		BarThickness: float64(rng.Intn(60) + 1),
		LevelGap:     float64(rng.Intn(40)),
		LeftPad:      float64(rng.Intn(100)),
		TopPad:       float64(rng.Intn(100)),
		BaseWidth:    float64(rng.Intn(1200) + 50),
		BranchSpread: rng.Float64() * 0.5,
		FlowInset:    float64(rng.Intn(8)),
	}
}

// TestCompute_Invariants_Deterministic checks that identical inputs give
// identical layouts.
func TestCompute_Invariants_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 100; trial++ {
		spec := randomSpec(rng, "r", 4)
		p := randomParams(rng)

		a, err := Compute(mustBuild(t, spec), p)
		require.NoError(t, err)
		b, err := Compute(mustBuild(t, spec), p)
		require.NoError(t, err)

		assert.Equal(t, a, b, "trial %d: layouts differ", trial)
	}
}

// TestCompute_Invariants_Geometry property-tests depth spacing, the width
// floor, width conservation among siblings, and single-child pass-through.
func TestCompute_Invariants_Geometry(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 200; trial++ {
		spec := randomSpec(rng, "r", 5)
		p := randomParams(rng)
		tr := mustBuild(t, spec)

		res, err := Compute(tr, p)
		require.NoError(t, err)

		byID := make(map[string]Placement, len(res.Placements))
		for _, pl := range res.Placements {
			byID[pl.NodeID] = pl

			assert.Equal(t, p.TopPad+float64(pl.Depth)*(p.BarThickness+p.LevelGap), pl.Y,
				"trial %d: %s y off its row", trial, pl.NodeID)
			assert.GreaterOrEqual(t, pl.Width, MinWidth,
				"trial %d: %s narrower than the floor", trial, pl.NodeID)
			assert.Equal(t, p.BarThickness, pl.Height, "trial %d: %s height", trial, pl.NodeID)
		}

		flowsByParent := make(map[string][]Flow)
		for _, f := range res.Flows {
			assert.GreaterOrEqual(t, f.TopWidth, 0.0, "trial %d: negative top width", trial)
			assert.GreaterOrEqual(t, f.BottomWidth, 0.0, "trial %d: negative bottom width", trial)
			flowsByParent[f.ParentID] = append(flowsByParent[f.ParentID], f)
		}

		for parentID, flows := range flowsByParent {
			parent := byID[parentID]
			var sum float64
			for _, f := range flows {
				sum += f.TopWidth
			}
			assert.InDelta(t, parent.Width, sum, 1e-9,
				"trial %d: children of %s do not conserve width", trial, parentID)

			if len(flows) == 1 {
				child := byID[flows[0].ChildID]
				assert.Equal(t, parent.X, child.X, "trial %d: single child x", trial)
				assert.InDelta(t, parent.Width, child.Width, 1e-9, "trial %d: single child width", trial)
			}

			// Bottom edges are laid out left to right with the gaps between them.
			for i := 1; i < len(flows); i++ {
				prev, cur := flows[i-1], flows[i]
				assert.GreaterOrEqual(t, cur.BottomX, prev.BottomX+prev.BottomWidth-1e-9,
					"trial %d: siblings of %s overlap", trial, parentID)
			}
		}
	}
}

// TestCompute_Invariants_CollapseHidesSubtree checks that collapsing a node
// removes exactly its descendants and leaves every other placement alone.
func TestCompute_Invariants_CollapseHidesSubtree(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	for trial := 0; trial < 100; trial++ {
		spec := randomSpec(rng, "r", 4)
		spec.Expanded = true
		tr := mustBuild(t, spec)
		p := DefaultParams()

		before, err := Compute(tr, p)
		require.NoError(t, err)

		var target string
		for _, pl := range before.Placements {
			if pl.Expanded && pl.NodeID != tr.Root() {
				target = pl.NodeID
				break
			}
		}
		if target == "" {
			continue
		}

		require.NoError(t, tr.Toggle(target))
		after, err := Compute(tr, p)
		require.NoError(t, err)

		hidden := make(map[string]bool)
		var mark func(id string)
		mark = func(id string) {
			for _, c := range tr.Children(id) {
				hidden[c] = true
				mark(c)
			}
		}
		mark(target)

		for _, pl := range before.Placements {
			got, ok := after.Placement(pl.NodeID)
			if hidden[pl.NodeID] {
				assert.False(t, ok, "trial %d: %s should be hidden", trial, pl.NodeID)
				continue
			}
			require.True(t, ok, "trial %d: %s disappeared", trial, pl.NodeID)
			if pl.NodeID == target {
				pl.Expanded = false
			}
			assert.Equal(t, pl, got, "trial %d: %s moved", trial, pl.NodeID)
		}

		// Toggling back restores the original layout.
		require.NoError(t, tr.Toggle(target))
		again, err := Compute(tr, p)
		require.NoError(t, err)
		assert.Equal(t, before, again, "trial %d: toggle is not an involution", trial)
	}
}
