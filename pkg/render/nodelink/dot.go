package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/render"
	"github.com/matzehuels/weekflow/pkg/render/icicle"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds depth and icicle geometry to node labels.
	Detailed bool
	// Palette colors nodes by name. Nil means the default palette.
	Palette icicle.Palette
}

const (
	minPenWidth = 1.0
	maxPenWidth = 12.0
)

// ToDOT converts the visible part of a layout to Graphviz DOT format.
// Edges are weighted by the child's share of its parent's hours. Collapsed
// nodes that hide children are drawn with a double outline.
//
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(res layout.Result, opts Options) string {
	pal := opts.Palette
	if pal == nil {
		pal = icicle.DefaultPalette()
	}

	hours := make(map[string]float64, len(res.Placements))
	for _, p := range res.Placements {
		hours[p.NodeID] = p.Hours
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica-Bold\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, p := range res.Placements {
		attrs := fmtAttrs(p, fmtLabel(p, opts.Detailed), pal)
		fmt.Fprintf(&buf, "  %q [%s];\n", p.NodeID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, f := range res.Flows {
		share := 0.0
		if h := hours[f.ParentID]; h > 0 {
			share = math.Min(1, hours[f.ChildID]/h)
		}
		fmt.Fprintf(&buf, "  %q -> %q [penwidth=%.2f, color=%q];\n",
			f.ParentID, f.ChildID, minPenWidth+share*(maxPenWidth-minPenWidth), pal.Color(f.ColorKey))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(p layout.Placement, detailed bool) string {
	label := fmt.Sprintf("%s\n%sh", p.Name, strconv.FormatFloat(math.Round(p.Hours*100)/100, 'f', -1, 64))
	if !detailed {
		return label
	}
	return label + fmt.Sprintf("\ndepth: %d\nx: %.1f\nwidth: %.1f", p.Depth, p.X, p.Width)
}

func fmtAttrs(p layout.Placement, label string, pal icicle.Palette) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("fillcolor=%q", pal.Color(p.Name)),
		fmt.Sprintf("fontcolor=%q", pal.Contrast(p.Name)),
	}
	if p.Expandable && !p.Expanded {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render DOT")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel-sized one so the diagram scales like the icicle SVG.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
