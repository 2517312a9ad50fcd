package icicle

import (
	"bytes"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"

	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/layout"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts []SVGOption
	scale   float64
}

// WithPNGSVGOptions applies SVG options (palette, flow inset, background) to
// the PNG drawing. Toggle links are ignored.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

var (
	labelFont     *truetype.Font
	labelFontErr  error
	labelFontOnce sync.Once
)

func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = truetype.Parse(gobold.TTF)
	})
	return labelFont, labelFontErr
}

// RenderPNG draws res directly into a raster image.
func RenderPNG(res layout.Result, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 || math.IsNaN(r.scale) || math.IsInf(r.scale, 0) {
		return nil, errs.New(errs.ErrCodeInvalidInput, "png scale must be positive, got %v", r.scale)
	}
	sr := newSVGRenderer(r.svgOpts...)

	w, h := canvasSize(res)
	dc := gg.NewContext(max(1, int(math.Ceil(w*r.scale))), max(1, int(math.Ceil(h*r.scale))))
	dc.Scale(r.scale, r.scale)

	if sr.background != "" {
		dc.SetHexColor(sr.background)
		dc.Clear()
	}

	f, err := loadLabelFont()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "parse label font")
	}
	// The context scale applies to glyph outlines as well, so the face is
	// sized in layout units.
	face := truetype.NewFace(f, &truetype.Options{
		Size:    labelFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()
	dc.SetFontFace(face)

	for _, fl := range res.Flows {
		drawFlowPNG(dc, sr, fl)
	}
	for _, p := range res.Placements {
		drawBarPNG(dc, sr, p)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func drawFlowPNG(dc *gg.Context, r svgRenderer, f layout.Flow) {
	s := shapeOf(f, r.inset)
	dc.NewSubPath()
	dc.MoveTo(s.c.TopLeft, s.y0)
	dc.CubicTo(s.c.TopLeft, s.y0+s.cy, s.c.BottomLeft, s.y1-s.cy, s.c.BottomLeft, s.y1)
	dc.LineTo(s.c.BottomRight, s.y1)
	dc.CubicTo(s.c.BottomRight, s.y1-s.cy, s.c.TopRight, s.y0+s.cy, s.c.TopRight, s.y0)
	dc.ClosePath()

	c := r.palette.RGB(f.ColorKey)
	dc.SetRGBA(c.R, c.G, c.B, flowOpacity)
	dc.Fill()
}

func drawBarPNG(dc *gg.Context, r svgRenderer, p layout.Placement) {
	c := r.palette.RGB(p.Name)
	dc.DrawRoundedRectangle(p.X, p.Y, p.Width, p.Height, barRadius)
	dc.SetRGBA(c.R, c.G, c.B, barOpacity)
	dc.FillPreserve()
	dc.SetHexColor(barStroke)
	dc.SetLineWidth(barStrokeWidth)
	dc.Stroke()

	measure := func(s string) float64 {
		w, _ := dc.MeasureString(s)
		return w
	}
	if label := fitLabel(labelText(p), labelAvail(p), measure); label != "" {
		dc.SetHexColor(labelColor)
		dc.DrawString(label, p.X+labelPadX, p.Y+p.Height/2+labelBaseline)
	}

	if p.Expandable {
		m := marker(p)
		dc.MoveTo(m[0].X, m[0].Y)
		dc.LineTo(m[1].X, m[1].Y)
		dc.LineTo(m[2].X, m[2].Y)
		dc.ClosePath()
		dc.SetHexColor(markerColor)
		dc.Fill()
	}
}
