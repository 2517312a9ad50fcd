package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/weekflow/pkg/cache"
	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/observability"
	"github.com/matzehuels/weekflow/pkg/tree"
)

// TreeHash returns the content hash of t's records, which include names,
// hours and expand state.
func TreeHash(t *tree.Tree) string {
	h, _ := cache.HashJSON(t.Records())
	return h
}

// ComputeLayout lays out t without caching and reports the run to the
// pipeline hooks.
func ComputeLayout(ctx context.Context, t *tree.Tree, p layout.Params) (layout.Result, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnLayoutStart(ctx, t.Len())
	res, err := layout.Compute(t, p)
	hooks.OnLayoutComplete(ctx, len(res.Placements), time.Since(start), err)
	return res, err
}

func marshalLayout(res layout.Result) ([]byte, error) {
	return json.Marshal(res)
}

func unmarshalLayout(data []byte) (layout.Result, error) {
	var res layout.Result
	err := json.Unmarshal(data, &res)
	return res, err
}
