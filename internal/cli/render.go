package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperscene/pkg/cache"
	"github.com/matzehuels/hyperscene/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	layout   layoutOpts
	output   string  // output file path
	format   string  // dot, svg, pdf, png
	engine   string  // fdp, neato
	detailed bool    // add superclass names under labels
	unpinned bool    // let Graphviz place nodes
	scale    float64 // PNG scale factor
}

// renderCommand creates the render command, which lays out a model and
// writes it as DOT, SVG, PDF or PNG.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: string(render.FormatSVG), engine: string(render.EngineFDP), scale: 2}

	cmd := &cobra.Command{
		Use:   "render [model.yaml...]",
		Short: "Render a model to DOT, SVG, PDF or PNG",
		Long: `Render a model with its force-directed layout.

Node positions are pinned in the generated Graphviz source, so the picture
matches the simulated arrangement. Containment relations become nested
clusters. PDF and PNG output need rsvg-convert (librsvg).`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <model>.<format>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg (default), pdf, png")
	cmd.Flags().StringVar(&opts.engine, "engine", opts.engine, "graphviz engine: fdp (default), neato")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show superclass names under labels")
	cmd.Flags().BoolVar(&opts.unpinned, "unpinned", false, "let graphviz compute positions")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	opts.layout.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, paths []string, opts renderOpts) error {
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	engine, err := render.ParseEngine(opts.engine)
	if err != nil {
		return err
	}

	sess, store, err := c.settle(ctx, paths, opts.layout)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := sess.SavePositions(ctx); err != nil {
		printWarning("Could not cache positions: %v", err)
	}

	dot := render.ToDOT(sess.Registry(), render.Options{Detailed: opts.detailed, Unpinned: opts.unpinned})

	artifacts := cache.Instrumented(store, "artifact")
	keyOpts := cache.ArtifactKeyOpts{Format: string(format), Engine: string(engine)}
	if format == render.FormatPNG {
		keyOpts.Scale = opts.scale
	}
	key := c.keyer().ArtifactKey(cache.Hash([]byte(dot)), keyOpts)

	data, hit, err := artifacts.Get(ctx, key)
	if err != nil {
		c.Logger.Debug("artifact cache read failed", "err", err)
	}
	if !hit {
		data, err = render.Render(ctx, dot, format, engine, opts.scale)
		if err != nil {
			return fmt.Errorf("render %s: %w", format, err)
		}
		if err := artifacts.Set(ctx, key, data, c.cfg.Cache.TTL.Duration); err != nil {
			c.Logger.Debug("artifact cache write failed", "err", err)
		}
	}

	out := opts.output
	if out == "" {
		out = defaultOutput(paths[0], format)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printSuccess("Rendered %s", strings.ToUpper(string(format)))
	printFile(out)
	return nil
}

// defaultOutput replaces the model file's extension with the format.
func defaultOutput(modelPath string, format render.Format) string {
	base := strings.TrimSuffix(modelPath, filepath.Ext(modelPath))
	return base + "." + string(format)
}
