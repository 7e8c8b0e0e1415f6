package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperscene/pkg/cache"
	"github.com/matzehuels/hyperscene/pkg/session"
)

const (
	defaultTicks  = 500  // layout steps for headless commands
	defaultSettle = 0.01 // energy below which a layout counts as settled
)

// layoutOpts holds the flags shared by commands that pre-compute a layout.
type layoutOpts struct {
	session sessionOpts
	ticks   int
	settle  float64
}

func (o *layoutOpts) register(cmd *cobra.Command) {
	o.session.register(cmd)
	cmd.Flags().IntVarP(&o.ticks, "ticks", "n", defaultTicks, "maximum layout steps")
	cmd.Flags().Float64Var(&o.settle, "settle", defaultSettle, "stop once a step's energy falls below this")
}

// layoutCommand creates the layout command, which settles a model's layout
// and stores the positions for later runs.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		opts   layoutOpts
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [model.yaml...]",
		Short: "Compute and cache a force-directed layout",
		Long: `Compute a force-directed layout for one or more model files.

Several files are merged into one model. Positions are restored from the cache
before the simulation starts and saved afterwards, so repeated runs refine the
same arrangement. Use -o to also write the positions as JSON.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args, opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write positions JSON to this file")
	opts.register(cmd)

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, paths []string, opts layoutOpts, output string) error {
	sess, store, err := c.settle(ctx, paths, opts)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := sess.SavePositions(ctx); err != nil {
		printWarning("Could not cache positions: %v", err)
	}
	if output != "" {
		data, err := json.MarshalIndent(session.Capture(sess.Registry()), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printFile(output)
	}
	return nil
}

// settle loads the models, builds a session and runs the layout. The
// caller closes the returned cache.
func (c *CLI) settle(ctx context.Context, paths []string, opts layoutOpts) (*session.Session, cache.Cache, error) {
	m, err := c.loadModel(paths)
	if err != nil {
		return nil, nil, err
	}
	sess, store, err := c.newSession(ctx, m, modelKey(paths[0]), opts.session)
	if err != nil {
		return nil, nil, err
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Settling layout...")
	spinner.Start()
	sess.SetLayoutEnabled(true)
	steps := sess.Simulator().Run(sess.Registry(), opts.ticks, opts.settle)
	spinner.Stop()
	// Stop cancels the spinner's own context, so only ctx tells an interrupt.
	if err := ctx.Err(); err != nil {
		store.Close()
		return nil, nil, err
	}

	reg := sess.Registry()
	printSuccess("Layout settled after %d steps", steps)
	printStats(reg.Len(), reg.EdgeCount(), steps < opts.ticks)
	prog.done(fmt.Sprintf("Laid out %d nodes", reg.Len()))
	return sess, store, nil
}
