package tree

import (
	"fmt"
	"math"
	"strings"

	errs "github.com/matzehuels/weekflow/pkg/errors"
)

// DefaultTolerance is the absolute difference in hours below which a parent
// and the sum of its children are considered equal.
const DefaultTolerance = 1e-6

// Mismatch describes a parent whose hours differ from its children's sum.
type Mismatch struct {
	NodeID      string
	Hours       float64
	ChildrenSum float64
}

// Delta returns Hours minus ChildrenSum.
func (m Mismatch) Delta() float64 { return m.Hours - m.ChildrenSum }

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: %.4g h vs children %.4g h (delta %+.4g)", m.NodeID, m.Hours, m.ChildrenSum, m.Delta())
}

// CheckConsistency returns every non-leaf node whose hours differ from the
// sum of its children's hours by more than tol, in pre-order.
// A negative tol is treated as [DefaultTolerance].
func (t *Tree) CheckConsistency(tol float64) []Mismatch {
	if tol < 0 {
		tol = DefaultTolerance
	}
	var out []Mismatch
	for _, i := range t.preorder() {
		n := t.nodes[i]
		if len(n.children) == 0 {
			continue
		}
		var sum float64
		for _, c := range n.children {
			sum += t.nodes[c].hours
		}
		if math.Abs(n.hours-sum) > tol {
			out = append(out, Mismatch{NodeID: n.id, Hours: n.hours, ChildrenSum: sum})
		}
	}
	return out
}

// ConsistencyError folds mismatches into a single INCONSISTENT_HOURS error,
// or returns nil when there are none.
func ConsistencyError(ms []Mismatch) error {
	if len(ms) == 0 {
		return nil
	}
	parts := make([]string, len(ms))
	for i, m := range ms {
		parts[i] = m.String()
	}
	return errs.New(errs.ErrCodeInconsistentHours, "%d parent(s) disagree with their children: %s",
		len(ms), strings.Join(parts, "; "))
}

func (t *Tree) preorder() []int {
	out := make([]int, 0, len(t.nodes))
	stack := []int{t.root}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, i)
		ch := t.nodes[i].children
		for k := len(ch) - 1; k >= 0; k-- {
			stack = append(stack, ch[k])
		}
	}
	return out
}
