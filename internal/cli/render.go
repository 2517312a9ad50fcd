package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/pipeline"
	"github.com/matzehuels/weekflow/pkg/render"
)

// renderOpts holds the flags of the render command that do not map onto
// pipeline.Options directly.
type renderOpts struct {
	formats string
	output  string
	noCache bool
}

// renderCommand creates the render command: load → layout → render.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		ro     renderOpts
		source sourceFlags
		geom   layoutFlags
	)
	opts := pipeline.Options{View: pipeline.DefaultView, Scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the week as an icicle or node-link diagram",
		Long: `Render the week as an icicle or node-link diagram.

By default the tree is built from the [hours] section of the config file.
Use --demo for the five-node demo tree or --tree to lay out any tree stored
as JSON records. Bars start collapsed except where the tree says otherwise;
--toggle expands (or collapses) bars by ID before rendering.

Multiple formats can be requested at once (-f svg,png,json). Each artifact
is written to <output>.<format>. Results are cached locally for faster
subsequent runs.`,
		Example: `  weekflow render
  weekflow render --toggle total,awake -f svg,png -o week
  weekflow render --tree team.json --view nodelink -f pdf
  weekflow render --demo -f json -o -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := render.ParseFormats(ro.formats)
			if err != nil {
				return err
			}
			opts.Formats = formats
			source.apply(&opts, c.cfg.Hours)
			params := geom.resolve(cmd, c.cfg.Layout)
			opts.Params = &params
			opts.Palette = c.cfg.Palette
			return c.runRender(cmd.Context(), opts, ro)
		},
	}

	source.register(cmd)
	geom.register(cmd)

	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format), base path (multiple), or - for stdout")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached results and render again")
	cmd.Flags().StringVar(&opts.View, "view", opts.View, "diagram: icicle (default), nodelink")
	cmd.Flags().Float64Var(&opts.Scale, "scale", opts.Scale, "PNG scale factor")
	cmd.Flags().StringVar(&opts.Background, "background", "", "background color as #rrggbb (default: transparent)")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show depth and geometry in node-link labels")

	return cmd
}

// runRender executes the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, ro renderOpts) error {
	if ro.output == "-" && len(opts.Formats) > 1 {
		return errs.New(errs.ErrCodeInvalidInput, "--output - needs exactly one format, got %d", len(opts.Formats))
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.View))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if spinner.Cancelled() {
			spinner.Stop()
			return ctx.Err()
		}
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     opts.TreeFile,
		output:    ro.output,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("wrote %d artifact(s)", len(paths)))
	if ro.output == "-" {
		return nil
	}

	printSuccess("Rendered %s diagram", opts.View)
	printStats(result.Stats.NodeCount, result.Stats.Placements, result.CacheInfo.RenderHit)
	if result.Mismatches > 0 {
		printWarning("%d parent(s) differ from the sum of their children (see --strict)", result.Mismatches)
	}
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
