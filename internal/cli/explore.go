package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/observability"
	"github.com/matzehuels/weekflow/pkg/pipeline"
	"github.com/matzehuels/weekflow/pkg/render/icicle"
	"github.com/matzehuels/weekflow/pkg/session"
	"github.com/matzehuels/weekflow/pkg/tree"
	"github.com/matzehuels/weekflow/pkg/view"
)

// exploreSnapshot is the file the explorer's save key writes to.
const exploreSnapshot = "weekflow-explore.svg"

// exploreCommand creates the explore command, the terminal counterpart of
// the web viewer.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		source sourceFlags
		geom   layoutFlags
		fresh  bool
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Expand and collapse bars in the terminal",
		Long: `Expand and collapse bars in the terminal.

The explorer draws the icicle diagram scaled to the terminal width. Move
between bars with the arrow keys and press enter to expand or collapse the
selected bar. Press s to save the current view as SVG.

The expand state is remembered per tree source and restored on the next
run unless --fresh is given. Passing --toggle also starts fresh.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			source.apply(&opts, c.cfg.Hours)
			params := geom.resolve(cmd, c.cfg.Layout)
			opts.Params = &params
			opts.Palette = c.cfg.Palette
			return c.runExplore(cmd.Context(), opts, fresh || len(source.toggles) > 0)
		},
	}

	source.register(cmd)
	geom.register(cmd)
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore the remembered expand state")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, opts pipeline.Options, fresh bool) error {
	opts.Logger = c.Logger
	t, _, err := pipeline.Load(ctx, opts)
	if err != nil {
		return err
	}

	store, err := session.NewFileStore("")
	if err != nil {
		return err
	}
	defer store.Close()

	ttl := c.sessionTTL()
	sess, err := restoreExploreSession(ctx, store, exploreSessionName(opts), ttl, t, fresh)
	if err != nil {
		return err
	}

	ctrl, err := view.New(ctx, t, *opts.Params)
	if err != nil {
		return err
	}

	palette := opts.ResolvedPalette()
	model := NewExploreModel(ctx, ctrl, palette)
	model.OnToggle = func(nodeID string) error {
		observability.Session().OnToggle(ctx, sess.ID, nodeID, nil)
		sess.Record(nodeID)
		sess.Touch(ttl)
		return store.Set(ctx, sess)
	}
	model.Save = func(res layout.Result) (string, error) {
		svg := icicle.RenderSVG(res, icicle.WithPalette(palette), icicle.WithFlowInset(opts.Params.FlowInset))
		if err := os.WriteFile(exploreSnapshot, svg, 0o644); err != nil {
			return "", err
		}
		return exploreSnapshot, nil
	}

	if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("explorer: %w", err)
	}
	return nil
}

// exploreSessionName keys the remembered state by tree source, so the demo
// tree and a tree file do not share toggles.
func exploreSessionName(opts pipeline.Options) string {
	switch opts.Source {
	case pipeline.SourceFile:
		path, err := filepath.Abs(opts.TreeFile)
		if err != nil {
			path = opts.TreeFile
		}
		return "explore:file:" + path
	case pipeline.SourceDemo:
		return "explore:demo"
	default:
		return "explore:breakdown"
	}
}

// restoreExploreSession loads the named session and replays it onto t. A
// missing session, or fresh, starts a new one.
func restoreExploreSession(ctx context.Context, store session.Store, name string, ttl time.Duration, t *tree.Tree, fresh bool) (*session.Session, error) {
	logger := loggerFromContext(ctx)
	hooks := observability.Session()

	id := session.NamedID(name)
	if !fresh {
		sess, err := store.Get(ctx, id)
		if err != nil {
			logger.Warn("could not read explorer state, starting fresh", "err", err)
		}
		if sess != nil {
			if skipped := sess.Replay(t); len(skipped) > 0 {
				logger.Warn("remembered toggles refer to missing nodes", "nodes", skipped)
			}
			hooks.OnSessionRestore(ctx, sess.ID, len(sess.Toggles))
			return sess, nil
		}
	}

	sess := session.NewNamed(name, ttl)
	hooks.OnSessionStart(ctx, sess.ID)
	return sess, store.Set(ctx, sess)
}
