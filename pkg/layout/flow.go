package layout

import "math"

// Corners are the four x coordinates of a flow after insetting each edge.
type Corners struct {
	TopLeft     float64 `json:"top_left"`
	TopRight    float64 `json:"top_right"`
	BottomLeft  float64 `json:"bottom_left"`
	BottomRight float64 `json:"bottom_right"`
}

// Corners applies the drawing-time geometry to f: each edge width is clamped
// to at least 1, then shrunk on both sides by min(width/2-1, inset).
// The resulting corners are never inverted.
func (f Flow) Corners(inset float64) Corners {
	tl, tr := insetEdge(f.TopX, f.TopWidth, inset)
	bl, br := insetEdge(f.BottomX, f.BottomWidth, inset)
	return Corners{TopLeft: tl, TopRight: tr, BottomLeft: bl, BottomRight: br}
}

func insetEdge(x, width, inset float64) (left, right float64) {
	w := math.Max(1, width)
	in := math.Min(w/2-1, inset)
	// For w < 2 the inset is negative and the edge widens slightly.
	return x + in, x + w - in
}

// CurveOffset is the vertical control-point offset of the cubic curves
// drawn along a flow's sides, as a fraction of the flow's height.
const CurveOffset = 0.45

// ControlOffset returns the control-point offset for f.
func (f Flow) ControlOffset() float64 {
	return (f.BottomY - f.TopY) * CurveOffset
}
