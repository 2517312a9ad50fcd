package icicle

import (
	"encoding/json"

	"github.com/matzehuels/weekflow/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	palette Palette
	inset   float64
	params  *layout.Params
}

// WithJSONPalette resolves colors against p instead of the default palette.
func WithJSONPalette(p Palette) JSONOption { return func(r *jsonRenderer) { r.palette = p } }

// WithJSONParams records the layout parameters and uses their flow inset for
// the exported corners.
func WithJSONParams(p layout.Params) JSONOption {
	return func(r *jsonRenderer) { r.params = &p; r.inset = p.FlowInset }
}

type jsonOutput struct {
	Width      float64         `json:"width"`
	Height     float64         `json:"height"`
	Params     *layout.Params  `json:"params,omitempty"`
	Placements []jsonPlacement `json:"placements"`
	Flows      []jsonFlow      `json:"flows"`
}

type jsonPlacement struct {
	layout.Placement
	Color string `json:"color"`
}

type jsonFlow struct {
	layout.Flow
	Fill          string         `json:"fill"`
	Corners       layout.Corners `json:"corners"`
	ControlOffset float64        `json:"control_offset"`
}

// RenderJSON exports res with resolved colors, inset flow corners and the
// curve control offset, so clients can draw the diagram without
// reimplementing the geometry.
func RenderJSON(res layout.Result, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{palette: DefaultPalette(), inset: layout.DefaultFlowInset}
	for _, opt := range opts {
		opt(&r)
	}

	w, h := canvasSize(res)
	out := jsonOutput{
		Width:      w,
		Height:     h,
		Params:     r.params,
		Placements: make([]jsonPlacement, 0, len(res.Placements)),
		Flows:      make([]jsonFlow, 0, len(res.Flows)),
	}
	for _, p := range res.Placements {
		out.Placements = append(out.Placements, jsonPlacement{Placement: p, Color: r.palette.Color(p.Name)})
	}
	for _, f := range res.Flows {
		out.Flows = append(out.Flows, jsonFlow{
			Flow:          f,
			Fill:          r.palette.Color(f.ColorKey),
			Corners:       f.Corners(r.inset),
			ControlOffset: f.ControlOffset(),
		})
	}
	return json.MarshalIndent(out, "", "  ")
}
