package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/pipeline"
	"github.com/matzehuels/weekflow/pkg/tree"
)

// layoutCommand creates the layout command, which prints geometry or tree
// records instead of a picture.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		source  sourceFlags
		geom    layoutFlags
		output  string
		noCache bool
		records bool
		asTable bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the icicle layout and print it as JSON",
		Long: `Compute the icicle layout and print it as JSON.

The output lists one placement per visible bar and one flow per visible
parent/child pair, in the same units the SVG renderer uses. With --records
the loaded tree is written as flat JSON records instead; that file can be
edited and passed back with 'render --tree'. With --table a summary of the
placements is printed for reading in the terminal.`,
		Example: `  weekflow layout --toggle total,awake
  weekflow layout --records -o week.json
  weekflow layout --demo --table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			source.apply(&opts, c.cfg.Hours)
			params := geom.resolve(cmd, c.cfg.Layout)
			opts.Params = &params
			opts.Logger = c.Logger

			if records {
				return c.runRecords(cmd.Context(), opts, output)
			}
			return c.runLayout(cmd.Context(), opts, output, noCache, asTable)
		},
	}

	source.register(cmd)
	geom.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&records, "records", false, "write the tree as flat JSON records instead of the layout")
	cmd.Flags().BoolVar(&asTable, "table", false, "print placements as a table")
	cmd.MarkFlagsMutuallyExclusive("records", "table")

	return cmd
}

// runLayout loads the tree, computes the layout through the cached runner
// and writes it.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache, asTable bool) error {
	prog := newProgress(c.Logger)
	t, _, err := pipeline.Load(ctx, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, hit, err := runner.ComputeLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if asTable {
		_, err = fmt.Fprintln(out, placementTable(res))
		return err
	}
	if err := writeJSON(out, res); err != nil {
		return err
	}
	prog.done("computed layout")
	if output != "" {
		printSuccess("Computed layout")
		printStats(t.Len(), len(res.Placements), hit)
		printFile(output)
	}
	return nil
}

// runRecords writes the loaded tree, including toggles, as flat records.
func (c *CLI) runRecords(ctx context.Context, opts pipeline.Options, output string) error {
	t, _, err := pipeline.Load(ctx, opts)
	if err != nil {
		return err
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := tree.WriteRecords(out, t); err != nil {
		return err
	}
	if output != "" {
		printSuccess("Wrote %d records", t.Len())
		printFile(output)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// placementTable renders one row per placement, indented by depth.
func placementTable(res layout.Result) string {
	rows := make([][]string, 0, len(res.Placements))
	for _, p := range res.Placements {
		name := p.Name
		for i := 0; i < p.Depth; i++ {
			name = "  " + name
		}
		rows = append(rows, []string{
			name,
			hoursLabel(p.Hours),
			fmt.Sprintf("%.1f", p.X),
			fmt.Sprintf("%.1f", p.Y),
			fmt.Sprintf("%.1f", p.Width),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Bar", "Hours", "X", "Y", "Width").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		}).
		Render()
}
