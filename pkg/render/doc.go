// Package render turns computed layouts into viewable artifacts.
//
// # Overview
//
// The layout engine in [layout] only produces geometry. This package and its
// subpackages draw that geometry:
//
//   - Format names and SVG conversion shared by every renderer (this package)
//   - The icicle diagram with bars, flows and toggle markers (in [icicle])
//   - A node-link view of the visible tree (in [nodelink])
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// from librsvg:
//
//	svg := icicle.RenderSVG(res)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// The icicle renderer can also draw PNGs natively (see [icicle.RenderPNG]),
// which avoids the librsvg dependency.
//
// [layout]: github.com/matzehuels/weekflow/pkg/layout
// [icicle]: github.com/matzehuels/weekflow/pkg/render/icicle
// [icicle.RenderPNG]: github.com/matzehuels/weekflow/pkg/render/icicle#RenderPNG
// [nodelink]: github.com/matzehuels/weekflow/pkg/render/nodelink
package render
