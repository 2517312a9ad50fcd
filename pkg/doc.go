// Package pkg holds the libraries behind weekflow, a layout engine that
// draws a weekly time budget as a collapsible icicle diagram.
//
// # Overview
//
// A week of 168 hours is split into categories (sleep, maintenance, classes
// and so on). The categories form a tree; every expanded node is drawn as a
// bar on its own row and its children sit on the row below, joined to the
// parent by curved flows. Collapsing a node hides its whole subtree.
//
// The data flows through the packages in one direction:
//
//	weekly inputs or tree file
//	         ↓
//	    [breakdown] / [tree] (hours tree with expand flags)
//	         ↓
//	    [layout] (bars and flows in layout units)
//	         ↓
//	    [render] (icicle SVG/PNG/PDF/JSON, Graphviz node-link)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/weekflow/pkg/breakdown"
//	    "github.com/matzehuels/weekflow/pkg/layout"
//	    "github.com/matzehuels/weekflow/pkg/render/icicle"
//	)
//
//	t, _ := breakdown.Tree(breakdown.DefaultInputs())
//	_ = t.Toggle("classes")
//	res, _ := layout.Compute(t, layout.DefaultParams())
//	svg := icicle.RenderSVG(res)
//
// # Main Packages
//
// [breakdown] turns weekly figures (sleep per night, commute, classes and
// their homework) into the category tree.
//
// [tree] is the hours tree with per-node expand state, the JSON records
// format and the hours consistency check.
//
// [layout] places bars and flows. [view] wraps a tree and its layout behind
// a command interface so interactive hosts never see a half-applied toggle.
//
// [render] validates output formats. [render/icicle] draws the diagram and
// [render/nodelink] draws the same visible tree through Graphviz.
//
// [pipeline] runs load, layout and render with caching and is shared by
// every CLI command and the HTTP viewer.
//
// [cache] stores layouts and artifacts by content hash (file, Redis).
// [session] keeps the toggle history of each viewer (memory, file, Redis,
// MongoDB). [config] reads the TOML config file.
//
// [errors] defines coded errors and their HTTP status. [observability]
// exposes hooks that hosts attach logging or metrics to.
//
// [breakdown]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/breakdown
// [tree]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/tree
// [layout]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/layout
// [view]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/view
// [render]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/render
// [render/icicle]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/render/icicle
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/weekflow/pkg/observability
package pkg
