package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hyperscene/internal/config"
	"github.com/matzehuels/hyperscene/pkg/buildinfo"
	"github.com/matzehuels/hyperscene/pkg/cache"
	"github.com/matzehuels/hyperscene/pkg/errors"
	"github.com/matzehuels/hyperscene/pkg/layout"
	"github.com/matzehuels/hyperscene/pkg/model"
	"github.com/matzehuels/hyperscene/pkg/reconcile"
	"github.com/matzehuels/hyperscene/pkg/session"
)

// appName is the application name used for directories and display.
const appName = "hyperscene"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	logOut     io.Writer
	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		logOut: w,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Hyperscene lays out and renders concept graphs",
		Long: `Hyperscene keeps a visual scene in step with a concept graph or ontology
model and arranges it with a force-directed layout. Models are YAML files of
concepts, relation definitions and facts.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/hyperscene/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.Logger.Debug("loaded config", "path", c.configPathOrDefault())
	return nil
}

func (c *CLI) configPathOrDefault() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

// =============================================================================
// Model & Session
// =============================================================================

// loadModel reads every path and merges them into one model. Definitions
// and facts of later files are added to the first; ids already present win.
func (c *CLI) loadModel(paths []string) (*model.Memory, error) {
	classifier, err := c.cfg.Classifier()
	if err != nil {
		return nil, err
	}
	var m *model.Memory
	for _, p := range paths {
		next, err := model.LoadFile(p, model.WithClassifier(classifier))
		if err != nil {
			return nil, err
		}
		if m == nil {
			m = next
			continue
		}
		added := m.Merge(next)
		c.Logger.Debug("merged model", "path", p, "added", added)
	}
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no model files given")
	}
	return m, nil
}

// sessionOpts are command-line overrides applied on top of the config.
type sessionOpts struct {
	noCache       bool
	equilibrium   float64
	hideClasses   bool
	hideInstances bool
}

func (o *sessionOpts) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "do not restore or save positions")
	cmd.Flags().Float64Var(&o.equilibrium, "distance", 0, "equilibrium distance (default from config)")
	cmd.Flags().BoolVar(&o.hideClasses, "hide-classes", false, "hide class nodes")
	cmd.Flags().BoolVar(&o.hideInstances, "hide-instances", false, "hide instance nodes")
}

// newSession builds a session over m configured from c.cfg and opts, with
// positions cached under the first model path. The returned cache must be
// closed by the caller.
func (c *CLI) newSession(ctx context.Context, m *model.Memory, modelKey string, opts sessionOpts) (*session.Session, cache.Cache, error) {
	classifier, err := c.cfg.Classifier()
	if err != nil {
		return nil, nil, err
	}
	params := c.cfg.LayoutParams()
	if opts.equilibrium > 0 {
		params.Equilibrium = opts.equilibrium
	}
	filters := c.cfg.ReconcileFilters()
	if opts.hideClasses {
		filters.ShowClasses = false
	}
	if opts.hideInstances {
		filters.ShowInstances = false
	}

	store, err := c.newCache(ctx, opts.noCache)
	if err != nil {
		return nil, nil, err
	}

	engine := reconcile.New(
		reconcile.WithClassifier(classifier),
		reconcile.WithSeed(c.cfg.Placement.Seed),
		reconcile.WithPlacement(c.cfg.PlacementSettings()),
		reconcile.WithLogger(c.Logger),
	)
	sim := layout.NewSimulator(
		layout.WithParams(params),
		layout.WithEnabled(c.cfg.Layout.Enabled),
		layout.WithLogger(c.Logger),
	)
	sess := session.New(m,
		session.WithEngine(engine),
		session.WithSimulator(sim),
		session.WithFilters(filters),
		session.WithLogger(c.Logger),
		session.WithPositionCache(cache.Instrumented(store, "positions"), c.keyer(), modelKey),
		session.WithPositionTTL(c.cfg.Cache.TTL.Duration),
	)
	if err := sess.Err(); err != nil {
		store.Close()
		return nil, nil, err
	}
	if n, err := sess.RestorePositions(ctx); err != nil {
		c.Logger.Warn("could not restore positions", "err", err)
	} else if n > 0 {
		c.Logger.Debug("restored positions", "nodes", n)
	}
	return sess, store, nil
}

// modelKey identifies a model across runs by its absolute path.
func modelKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// =============================================================================
// Cache
// =============================================================================

// newCache returns the configured position cache: Redis when an address is
// configured, the file cache otherwise, and a null cache when disabled.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if addr := c.cfg.Cache.RedisAddr; addr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     addr,
			Password: c.cfg.Cache.RedisPassword,
			DB:       c.cfg.Cache.RedisDB,
			Prefix:   appName + ":",
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect to redis at %s", addr)
		}
		return rc, nil
	}
	dir := c.cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// keyer returns the cache keyer, scoped to the configured namespace.
func (c *CLI) keyer() cache.Keyer {
	k := cache.NewDefaultKeyer()
	if ns := c.cfg.Cache.Namespace; ns != "" {
		k = cache.NewScopedKeyer(k, ns+":")
	}
	return k
}

// cacheDir returns the cache directory using XDG standard (~/.cache/hyperscene/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
