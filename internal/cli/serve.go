package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperscene/internal/server"
	"github.com/matzehuels/hyperscene/pkg/render"
)

// serveCommand creates the serve command, which exposes an editing session
// over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		opts   sessionOpts
		addr   string
		engine string
	)

	cmd := &cobra.Command{
		Use:   "serve [model.yaml...]",
		Short: "Serve a live editing session over HTTP",
		Long: `Serve a model as a live scene over a JSON API.

The layout keeps running at the configured tick rate. Clients read the scene
from /api/scene (or /api/scene.svg), edit the model through /api/concepts,
/api/relations and /api/elements, and steer the layout via /api/layout and
/api/filters. Positions are saved to the cache on shutdown.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args, opts, addr, engine)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&engine, "engine", string(render.EngineFDP), "graphviz engine for /api/scene.svg")
	opts.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, paths []string, opts sessionOpts, addr, engineName string) error {
	engine, err := render.ParseEngine(engineName)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = c.cfg.Server.Addr
	}

	m, err := c.loadModel(paths)
	if err != nil {
		return err
	}
	sess, store, err := c.newSession(ctx, m, modelKey(paths[0]), opts)
	if err != nil {
		return err
	}
	defer store.Close()

	srv := server.New(sess,
		server.WithLogger(c.Logger),
		server.WithTickInterval(c.cfg.TickInterval()),
		server.WithRenderEngine(engine),
	)
	printInfo("Serving %s on %s", paths[0], StyleLink.Render("http://"+addr))

	err = srv.ListenAndServe(ctx, addr)

	// The loop has exited, so the session is ours again.
	if saveErr := sess.SavePositions(context.Background()); saveErr != nil {
		c.Logger.Warn("could not save positions", "err", saveErr)
	}
	if errors.Is(err, context.Canceled) {
		printSuccess("Stopped")
	}
	return err
}
