package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/weekflow/pkg/breakdown"
	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/pipeline"
)

// =============================================================================
// Tree Source Flags
// =============================================================================

// sourceFlags selects the tree a command works on.
type sourceFlags struct {
	demo    bool
	file    string
	toggles []string
	strict  bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.demo, "demo", false, "use the small five-node demo tree")
	cmd.Flags().StringVar(&f.file, "tree", "", "read a tree from a JSON records file")
	cmd.Flags().StringSliceVar(&f.toggles, "toggle", nil, "node IDs to toggle after loading (repeatable)")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail when a parent's hours differ from its children's sum")
	cmd.MarkFlagsMutuallyExclusive("demo", "tree")
}

// apply copies the source selection into opts. Hours come from the config
// file; the tree file and demo flags override the breakdown source.
func (f *sourceFlags) apply(opts *pipeline.Options, hours breakdown.Inputs) {
	opts.Hours = &hours
	opts.Toggles = f.toggles
	opts.Strict = f.strict
	switch {
	case f.file != "":
		opts.Source = pipeline.SourceFile
		opts.TreeFile = f.file
	case f.demo:
		opts.Source = pipeline.SourceDemo
	default:
		opts.Source = pipeline.SourceBreakdown
	}
}

// =============================================================================
// Layout Flags
// =============================================================================

// layoutFlags overrides single layout parameters on top of the config file.
type layoutFlags struct {
	p layout.Params
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	def := layout.DefaultParams()
	f.p = def
	cmd.Flags().Float64Var(&f.p.BaseWidth, "base-width", def.BaseWidth, "width of the root bar")
	cmd.Flags().Float64Var(&f.p.BarThickness, "bar-thickness", def.BarThickness, "height of every bar")
	cmd.Flags().Float64Var(&f.p.LevelGap, "level-gap", def.LevelGap, "vertical space between rows")
	cmd.Flags().Float64Var(&f.p.BranchSpread, "branch-spread", def.BranchSpread, "fraction of a parent's width spent on gaps between children")
	cmd.Flags().Float64Var(&f.p.FlowInset, "flow-inset", def.FlowInset, "horizontal inset of flow corners")
	cmd.Flags().Float64Var(&f.p.LeftPad, "left-pad", def.LeftPad, "x of the root bar")
	cmd.Flags().Float64Var(&f.p.TopPad, "top-pad", def.TopPad, "y of the root bar")
}

// resolve returns base with every explicitly set flag applied.
func (f *layoutFlags) resolve(cmd *cobra.Command, base layout.Params) layout.Params {
	set := func(name string, dst *float64, v float64) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	p := base
	set("base-width", &p.BaseWidth, f.p.BaseWidth)
	set("bar-thickness", &p.BarThickness, f.p.BarThickness)
	set("level-gap", &p.LevelGap, f.p.LevelGap)
	set("branch-spread", &p.BranchSpread, f.p.BranchSpread)
	set("flow-inset", &p.FlowInset, f.p.FlowInset)
	set("left-pad", &p.LeftPad, f.p.LeftPad)
	set("top-pad", &p.TopPad, f.p.TopPad)
	return p
}
