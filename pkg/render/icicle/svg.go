package icicle

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/weekflow/pkg/layout"
)

const barInteractionCSS = `
    .bar rect { transition: stroke-width 0.2s ease; }
    .bar:hover rect { stroke-width: 3; }
    .bar text { pointer-events: none; }
    a { cursor: pointer; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	palette    Palette
	inset      float64
	background string
	toggleLink func(nodeID string) string
}

func WithPalette(p Palette) SVGOption    { return func(r *svgRenderer) { r.palette = p } }
func WithFlowInset(in float64) SVGOption { return func(r *svgRenderer) { r.inset = in } }
func WithBackground(c string) SVGOption  { return func(r *svgRenderer) { r.background = c } }

// WithToggleLinks wraps every expandable bar in a link to link(nodeID).
func WithToggleLinks(link func(nodeID string) string) SVGOption {
	return func(r *svgRenderer) { r.toggleLink = link }
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{palette: DefaultPalette(), inset: layout.DefaultFlowInset}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG draws res as a standalone SVG document. Flows are drawn first so
// bars sit on top of them.
func RenderSVG(res layout.Result, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	w, h := canvasSize(res)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", barInteractionCSS)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}

	buf.WriteString(`  <g class="flows">` + "\n")
	for _, f := range res.Flows {
		r.renderFlow(&buf, f)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString(`  <g class="bars">` + "\n")
	for _, p := range res.Placements {
		r.renderBar(&buf, p)
	}
	buf.WriteString("  </g>\n")

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderFlow(buf *bytes.Buffer, f layout.Flow) {
	s := shapeOf(f, r.inset)
	fmt.Fprintf(buf, `    <path class="flow" data-parent="%s" data-child="%s" d="M %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f L %.2f %.2f C %.2f %.2f, %.2f %.2f, %.2f %.2f Z" fill="%s" fill-opacity="%.2f"/>`+"\n",
		escapeXML(f.ParentID), escapeXML(f.ChildID),
		s.c.TopLeft, s.y0,
		s.c.TopLeft, s.y0+s.cy, s.c.BottomLeft, s.y1-s.cy, s.c.BottomLeft, s.y1,
		s.c.BottomRight, s.y1,
		s.c.BottomRight, s.y1-s.cy, s.c.TopRight, s.y0+s.cy, s.c.TopRight, s.y0,
		escapeXML(r.palette.Color(f.ColorKey)), flowOpacity)
}

func (r *svgRenderer) renderBar(buf *bytes.Buffer, p layout.Placement) {
	fmt.Fprintf(buf, `    <g class="bar" id="bar-%s">`+"\n", escapeXML(p.NodeID))
	link := ""
	if p.Expandable && r.toggleLink != nil {
		link = r.toggleLink(p.NodeID)
	}
	if link != "" {
		fmt.Fprintf(buf, `      <a href="%s">`+"\n", escapeXML(link))
	}

	fmt.Fprintf(buf, `      <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.0f" fill="%s" fill-opacity="%.1f" stroke="%s" stroke-width="%.0f"><title>%s</title></rect>`+"\n",
		p.X, p.Y, p.Width, p.Height, barRadius,
		escapeXML(r.palette.Color(p.Name)), barOpacity, barStroke, barStrokeWidth,
		escapeXML(labelText(p)))

	if label := fitLabel(labelText(p), labelAvail(p), estimateWidth); label != "" {
		fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" fill="%s" font-family="sans-serif" font-weight="700" font-size="%.0f">%s</text>`+"\n",
			p.X+labelPadX, p.Y+p.Height/2+labelBaseline, labelColor, labelFontSize, escapeXML(label))
	}

	if p.Expandable {
		m := marker(p)
		fmt.Fprintf(buf, `      <polygon class="marker" points="%.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="%s"/>`+"\n",
			m[0].X, m[0].Y, m[1].X, m[1].Y, m[2].X, m[2].Y, markerColor)
	}

	if link != "" {
		buf.WriteString("      </a>\n")
	}
	buf.WriteString("    </g>\n")
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
