// Package view drives an interactive icicle view from explicit commands.
//
// A [Controller] owns one tree and the last computed layout. Hosts (the
// terminal explorer, the HTTP server) translate user input into commands
// such as [Toggle] and pass them to [Controller.Dispatch]. Every command
// recomputes the complete layout and swaps it in only on success, so a
// failed command leaves the previous view untouched.
package view

import (
	"context"
	"sync"

	errs "github.com/matzehuels/weekflow/pkg/errors"
	"github.com/matzehuels/weekflow/pkg/layout"
	"github.com/matzehuels/weekflow/pkg/pipeline"
	"github.com/matzehuels/weekflow/pkg/tree"
)

// Command is an input to [Controller.Dispatch].
type Command interface {
	command()
}

// Toggle expands or collapses a node.
type Toggle struct {
	NodeID string
}

// SetParams replaces the layout parameters.
type SetParams struct {
	Params layout.Params
}

func (Toggle) command()    {}
func (SetParams) command() {}

// Controller serializes commands against one tree. It is safe for
// concurrent use.
type Controller struct {
	mu      sync.RWMutex
	tree    *tree.Tree
	params  layout.Params
	current layout.Result
	version uint64
}

// New computes the initial layout of t. The controller takes ownership of t;
// callers must not toggle it directly afterwards.
func New(ctx context.Context, t *tree.Tree, p layout.Params) (*Controller, error) {
	c := &Controller{tree: t, params: p}
	res, err := c.compute(ctx, p)
	if err != nil {
		return nil, err
	}
	c.current = res
	return c, nil
}

// Dispatch applies cmd and recomputes the layout.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch cmd := cmd.(type) {
	case Toggle:
		if err := c.tree.Toggle(cmd.NodeID); err != nil {
			return err
		}
		res, err := c.compute(ctx, c.params)
		if err != nil {
			// Toggle is an involution, so this restores the old state.
			_ = c.tree.Toggle(cmd.NodeID)
			return err
		}
		c.swap(res)
	case SetParams:
		res, err := c.compute(ctx, cmd.Params)
		if err != nil {
			return err
		}
		c.params = cmd.Params
		c.swap(res)
	default:
		return errs.New(errs.ErrCodeUnsupported, "unknown command %T", cmd)
	}
	return nil
}

// Result returns the current layout.
func (c *Controller) Result() layout.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Version increases by one with every successful command.
func (c *Controller) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Params returns the current layout parameters.
func (c *Controller) Params() layout.Params {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.params
}

// Spec returns a snapshot of the tree including expand state.
func (c *Controller) Spec() tree.Spec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Spec()
}

// ExpandedIDs returns the expanded nodes that have children, in pre-order.
func (c *Controller) ExpandedIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.ExpandedIDs()
}

// Node returns a snapshot of one node.
func (c *Controller) Node(id string) (tree.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree.Node(id)
}

func (c *Controller) swap(res layout.Result) {
	c.current = res
	c.version++
}

func (c *Controller) compute(ctx context.Context, p layout.Params) (layout.Result, error) {
	return pipeline.ComputeLayout(ctx, c.tree, p)
}
