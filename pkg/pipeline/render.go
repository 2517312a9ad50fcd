package pipeline

import (
	"context"
	"time"

	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/observability"
	"github.com/matzehuels/weekflow/pkg/render"
	"github.com/matzehuels/weekflow/pkg/render/icicle"
	"github.com/matzehuels/weekflow/pkg/render/nodelink"
)

// =============================================================================
// Rendering
// =============================================================================

// RenderFromLayout generates artifacts for every requested format without
// caching.
func RenderFromLayout(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, error) {
	opts.SetDefaults()
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)

	var (
		artifacts map[string][]byte
		err       error
	)
	if opts.View == render.ViewNodelink {
		artifacts, err = renderNodelink(ctx, res, opts)
	} else {
		artifacts, err = renderIcicle(ctx, res, opts)
	}
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

// =============================================================================
// Icicle
// =============================================================================

func renderIcicle(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, error) {
	pal := opts.ResolvedPalette()
	svgOpts := []icicle.SVGOption{
		icicle.WithPalette(pal),
		icicle.WithFlowInset(opts.Params.FlowInset),
	}
	if opts.Background != "" {
		svgOpts = append(svgOpts, icicle.WithBackground(opts.Background))
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case render.FormatSVG:
			linked := svgOpts
			if opts.ToggleLink != nil {
				linked = append(linked[:len(linked):len(linked)], icicle.WithToggleLinks(opts.ToggleLink))
			}
			data = icicle.RenderSVG(res, linked...)
		case render.FormatPNG:
			data, err = icicle.RenderPNG(res, icicle.WithScale(opts.Scale), icicle.WithPNGSVGOptions(svgOpts...))
		case render.FormatPDF:
			data, err = icicle.RenderPDF(ctx, res, icicle.WithPDFSVGOptions(svgOpts...))
		case render.FormatJSON:
			data, err = icicle.RenderJSON(res, icicle.WithJSONPalette(pal), icicle.WithJSONParams(*opts.Params))
		case render.FormatDOT:
			data = []byte(nodelink.ToDOT(res, nodelink.Options{Palette: pal, Detailed: opts.Detailed}))
		default:
			return nil, errs.New(errs.ErrCodeUnsupported, "unsupported icicle format: %s", format)
		}
		if err != nil {
			return nil, wrapRender(format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// =============================================================================
// Nodelink
// =============================================================================

func renderNodelink(ctx context.Context, res layout.Result, opts Options) (map[string][]byte, error) {
	pal := opts.ResolvedPalette()
	dot := nodelink.ToDOT(res, nodelink.Options{Palette: pal, Detailed: opts.Detailed})

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case render.FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dot)
		case render.FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case render.FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dot)
		case render.FormatJSON:
			data, err = icicle.RenderJSON(res, icicle.WithJSONPalette(pal), icicle.WithJSONParams(*opts.Params))
		case render.FormatDOT:
			data = []byte(dot)
		default:
			return nil, errs.New(errs.ErrCodeUnsupported, "unsupported nodelink format: %s", format)
		}
		if err != nil {
			return nil, wrapRender(format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// wrapRender keeps the cause's code so a missing rsvg-convert still reads as
// UNSUPPORTED to callers.
func wrapRender(format string, err error) error {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	return errs.Wrap(code, err, "render %s", format)
}
