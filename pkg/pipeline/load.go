package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/weekflow/pkg/breakdown"
	"github.com/matzehuels/weekflow/pkg/observability"
	"github.com/matzehuels/weekflow/pkg/tree"
)

// Load builds the tree named by opts, applies opts.Toggles in order and
// checks hours consistency. Mismatches are logged as warnings and returned;
// with opts.Strict they fail the load.
func Load(ctx context.Context, opts Options) (*tree.Tree, []tree.Mismatch, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	t, err := loadTree(opts)
	observability.Pipeline().OnTreeLoaded(ctx, opts.Source, treeLen(t), time.Since(start), err)
	if err != nil {
		return nil, nil, err
	}

	for _, id := range opts.Toggles {
		if err := t.Toggle(id); err != nil {
			return nil, nil, err
		}
	}

	ms := t.CheckConsistency(tree.DefaultTolerance)
	for _, m := range ms {
		opts.Logger.Warn("hours do not add up", "node", m.NodeID, "hours", m.Hours, "children", m.ChildrenSum)
	}
	if opts.Strict && len(ms) > 0 {
		return nil, ms, tree.ConsistencyError(ms)
	}
	return t, ms, nil
}

func loadTree(opts Options) (*tree.Tree, error) {
	switch opts.Source {
	case SourceFile:
		return tree.ReadFile(opts.TreeFile)
	case SourceDemo:
		return tree.Build(breakdown.Demo())
	default:
		b := breakdown.Compute(*opts.Hours)
		if over := b.Overcommitted(); over > 0 {
			opts.Logger.Warn("week is overcommitted", "hours", over)
		}
		return tree.Build(b.Spec())
	}
}

func treeLen(t *tree.Tree) int {
	if t == nil {
		return 0
	}
	return t.Len()
}
