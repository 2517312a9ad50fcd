package layout

import (
	"math"

	errs "github.com/matzehuels/weekflow/pkg/errors"
)

// Default layout parameters.
const (
	DefaultBarThickness = 44.0
	DefaultLevelGap     = 28.0
	DefaultLeftPad      = 80.0
	DefaultTopPad       = 60.0
	DefaultBaseWidth    = 700.0
	DefaultBranchSpread = 0.10
	DefaultFlowInset    = 5.0
)

// MinWidth is the floor applied to every placed bar so that zero-hour nodes
// stay visible and clickable.
const MinWidth = 20.0

// Params controls the geometry of a layout. All lengths are in output units
// (pixels for the SVG and PNG sinks).
type Params struct {
	BarThickness float64 `json:"bar_thickness" toml:"bar_thickness"`
	LevelGap     float64 `json:"level_gap" toml:"level_gap"`
	LeftPad      float64 `json:"left_pad" toml:"left_pad"`
	TopPad       float64 `json:"top_pad" toml:"top_pad"`
	BaseWidth    float64 `json:"base_width" toml:"base_width"`
	BranchSpread float64 `json:"branch_spread" toml:"branch_spread"` // fraction of a parent's width spent on gaps, in [0, 1)
	FlowInset    float64 `json:"flow_inset" toml:"flow_inset"`
}

// DefaultParams returns the standard layout geometry.
func DefaultParams() Params {
	return Params{
		BarThickness: DefaultBarThickness,
		LevelGap:     DefaultLevelGap,
		LeftPad:      DefaultLeftPad,
		TopPad:       DefaultTopPad,
		BaseWidth:    DefaultBaseWidth,
		BranchSpread: DefaultBranchSpread,
		FlowInset:    DefaultFlowInset,
	}
}

// Validate rejects negative or non-finite values and a branch spread outside
// [0, 1). The returned error carries [errs.ErrCodeInvalidParameters].
func (p Params) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"bar_thickness", p.BarThickness},
		{"level_gap", p.LevelGap},
		{"left_pad", p.LeftPad},
		{"top_pad", p.TopPad},
		{"base_width", p.BaseWidth},
		{"branch_spread", p.BranchSpread},
		{"flow_inset", p.FlowInset},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return errs.New(errs.ErrCodeInvalidParameters, "%s must be finite, got %v", f.name, f.v)
		}
		if f.v < 0 {
			return errs.New(errs.ErrCodeInvalidParameters, "%s must be non-negative, got %v", f.name, f.v)
		}
	}
	if p.BranchSpread >= 1 {
		return errs.New(errs.ErrCodeInvalidParameters, "branch_spread must be in [0, 1), got %v", p.BranchSpread)
	}
	return nil
}

// RowY returns the top edge of the bar row at the given depth.
func (p Params) RowY(depth int) float64 {
	return p.TopPad + float64(depth)*(p.BarThickness+p.LevelGap)
}
