// Package pipeline provides the load → layout → render pipeline for weekflow.
//
// The CLI commands and the HTTP host all produce diagrams the same way, so
// the steps live here instead of in each entry point.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: build the hours tree from the weekly breakdown, the demo tree or
//     a tree file, apply initial toggles and check hours consistency
//  2. Layout: compute placements and flows for the visible tree
//  3. Render: produce artifacts in the requested formats (SVG, PNG, PDF,
//     JSON, DOT) for the icicle or node-link view
//
// Layouts and artifacts are cached by content hash through [Runner].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  pipeline.SourceDemo,
//	    Formats: []string{"svg", "png"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	t, err := pipeline.Load(ctx, opts)
//	res, err := runner.ComputeLayout(ctx, t, opts)
//	artifacts, err := runner.Render(ctx, res, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/weekflow/pkg/breakdown"
	"github.com/matzehuels/weekflow/pkg/cache"
	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/render"
	"github.com/matzehuels/weekflow/pkg/render/icicle"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultView is the diagram drawn when none is requested.
	DefaultView = render.ViewIcicle

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Source names where a tree came from.
const (
	SourceBreakdown = "breakdown"
	SourceDemo      = "demo"
	SourceFile      = "file"
)

// Options contains all configuration for the pipeline.
type Options struct {
	// Load options
	Source   string           `json:"source,omitempty"`
	TreeFile string           `json:"tree_file,omitempty"`
	Hours    *breakdown.Inputs `json:"hours,omitempty"` // nil means breakdown.DefaultInputs
	Toggles  []string          `json:"toggles,omitempty"` // node IDs toggled after loading
	Strict   bool              `json:"strict,omitempty"`  // fail on inconsistent hours

	// Layout options
	Params *layout.Params `json:"params,omitempty"` // nil means layout.DefaultParams

	// Render options
	View       string            `json:"view,omitempty"`
	Formats    []string          `json:"formats,omitempty"`
	Palette    map[string]string `json:"palette,omitempty"`
	Background string            `json:"background,omitempty"`
	Scale      float64           `json:"scale,omitempty"`
	Detailed   bool              `json:"detailed,omitempty"` // node-link labels with geometry

	// Refresh bypasses cached layouts and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
	// ToggleLink, when set, links every expandable bar of the icicle SVG.
	ToggleLink func(nodeID string) string `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// TreeHash is the content hash of the loaded tree including expand state.
	TreeHash string

	// Layout is the computed geometry.
	Layout layout.Result

	// Mismatches lists parents whose hours differ from their children's sum.
	Mismatches int

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	Placements int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool // all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset fields. It is idempotent. Hours and Params are
// only defaulted when nil; an all-zero week or geometry is kept as given.
func (o *Options) SetDefaults() {
	if o.Source == "" {
		o.Source = SourceBreakdown
		if o.TreeFile != "" {
			o.Source = SourceFile
		}
	}
	if o.Hours == nil {
		h := breakdown.DefaultInputs()
		o.Hours = &h
	}
	if o.Params == nil {
		p := layout.DefaultParams()
		o.Params = &p
	}
	if o.View == "" {
		o.View = DefaultView
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{render.FormatSVG}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks the options after defaults have been applied.
func (o *Options) Validate() error {
	switch o.Source {
	case SourceBreakdown:
		if err := o.Hours.Validate(); err != nil {
			return err
		}
	case SourceDemo:
	case SourceFile:
		if o.TreeFile == "" {
			return errs.New(errs.ErrCodeInvalidInput, "tree file is required for source %q", SourceFile)
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown tree source %q", o.Source)
	}
	for _, id := range o.Toggles {
		if err := errs.ValidateNodeID(id); err != nil {
			return err
		}
	}
	if err := o.Params.Validate(); err != nil {
		return err
	}
	if err := render.ValidateView(o.View); err != nil {
		return err
	}
	for _, f := range o.Formats {
		if err := errs.ValidateFormat(f, render.Formats...); err != nil {
			return err
		}
	}
	for name, c := range o.Palette {
		if err := errs.ValidateHexColor(c); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidStyle, err, "palette entry %q", name)
		}
	}
	if o.Background != "" {
		if err := errs.ValidateHexColor(o.Background); err != nil {
			return err
		}
	}
	if o.Scale < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	return nil
}

// ResolvedPalette returns the default palette with the configured overrides.
func (o *Options) ResolvedPalette() icicle.Palette {
	return icicle.DefaultPalette().With(o.Palette)
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Params: *o.Params}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{
		Format:  format,
		View:    o.View,
		Params:  artifactParams{Layout: *o.Params, Background: o.Background, Scale: o.Scale, Detailed: o.Detailed},
		Palette: o.Palette,
	}
	// Links change the SVG but not the other formats.
	if format == render.FormatSVG && o.View == render.ViewIcicle {
		opts.Links = o.ToggleLink != nil
	}
	return opts
}

// artifactParams are the render settings that change artifact bytes. The
// layout parameters are included because the flow inset and the JSON export
// depend on them even when the geometry does not.
type artifactParams struct {
	Layout     layout.Params `json:"layout"`
	Background string        `json:"background,omitempty"`
	Scale      float64       `json:"scale"`
	Detailed   bool          `json:"detailed,omitempty"`
}
