// Package icicle draws a computed layout as a collapsible icicle diagram.
//
// # Overview
//
// Every [layout.Placement] becomes a rounded bar labelled "Name: Nh", and
// every [layout.Flow] becomes a translucent funnel whose sides are cubic
// curves. Bars that have children carry a small triangle that points down
// when the node is expanded and up when it is collapsed.
//
// Colors come from a [Palette] keyed by node name. Unknown names fall back
// to [FallbackColor].
//
// # Sinks
//
//   - [RenderSVG]: standalone SVG, optionally with toggle links per bar
//   - [RenderPNG]: raster image drawn natively with gg (no external tools)
//   - [RenderPDF]: PDF via rsvg-convert
//   - [RenderJSON]: the layout with resolved colors and flow corners
//
// All sinks accept functional options:
//
//	svg := icicle.RenderSVG(res,
//		icicle.WithPalette(icicle.DefaultPalette().With(overrides)),
//		icicle.WithToggleLinks(func(id string) string { return "/toggle/" + id }),
//	)
//
//	png, err := icicle.RenderPNG(res, icicle.WithScale(2),
//		icicle.WithPNGSVGOptions(icicle.WithBackground("#ffffff")))
//
// [layout.Placement]: github.com/matzehuels/weekflow/pkg/layout#Placement
// [layout.Flow]: github.com/matzehuels/weekflow/pkg/layout#Flow
package icicle
