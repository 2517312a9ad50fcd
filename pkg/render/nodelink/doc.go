// Package nodelink renders the visible hours tree as a node-link diagram.
//
// # Overview
//
// Where the icicle view encodes hours as bar widths, this view draws one box
// per visible node and one edge per parent/child pair, using Graphviz for
// placement. Edge thickness grows with the child's share of its parent's
// hours, and boxes take their fill from the same palette as the icicle.
//
// # Usage
//
// Convert a layout to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(res, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)
//
// The DOT text itself is a supported output format and can be processed
// with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
