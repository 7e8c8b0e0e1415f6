// Package config loads hyperscene's TOML configuration.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
	"github.com/matzehuels/hyperscene/pkg/layout"
	"github.com/matzehuels/hyperscene/pkg/reconcile"
)

const appName = "hyperscene"

// Config holds hyperscene configuration.
type Config struct {
	Layout    LayoutConfig    `toml:"layout"`
	Filters   FiltersConfig   `toml:"filters"`
	Placement PlacementConfig `toml:"placement"`
	Classify  ClassifyConfig  `toml:"classify"`
	Cache     CacheConfig     `toml:"cache"`
	Server    ServerConfig    `toml:"server"`
}

// LayoutConfig controls the force layout.
type LayoutConfig struct {
	EquilibriumDistance float64 `toml:"equilibrium_distance"`
	TickRate            int     `toml:"tick_rate"` // Ticks per second in interactive hosts
	MaxStep             float64 `toml:"max_step"`  // 0 = unbounded
	Enabled             bool    `toml:"enabled"`
}

// FiltersConfig holds the initial display toggles.
type FiltersConfig struct {
	ShowClasses   bool `toml:"show_classes"`
	ShowInstances bool `toml:"show_instances"`
	ShowConcepts  bool `toml:"show_concepts"`
}

// PlacementConfig controls where new nodes appear.
type PlacementConfig struct {
	Seed   uint64  `toml:"seed"`
	Spread float64 `toml:"spread"` // 0 = scale with the scene
}

// ClassifyConfig sets the tie-break order between edge kinds.
type ClassifyConfig struct {
	Priority []string `toml:"priority"`
}

// CacheConfig selects the position cache backend.
type CacheConfig struct {
	Disabled      bool     `toml:"disabled"`
	Dir           string   `toml:"dir"`        // File cache directory; empty = XDG cache dir
	RedisAddr     string   `toml:"redis_addr"` // Non-empty selects Redis
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Namespace     string   `toml:"namespace"` // Key prefix shared by everyone using one backend
	TTL           Duration `toml:"ttl"`       // 0 = no expiry
}

// ServerConfig configures `hyperscene serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a Go duration string ("24h").
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			EquilibriumDistance: layout.DefaultEquilibrium,
			TickRate:            25,
			Enabled:             true,
		},
		Filters:   FiltersConfig{ShowClasses: true, ShowInstances: true, ShowConcepts: true},
		Placement: PlacementConfig{Seed: 42},
		Classify:  ClassifyConfig{Priority: kindNames(classify.DefaultPriority)},
		Cache:     CacheConfig{TTL: Duration{7 * 24 * time.Hour}},
		Server:    ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

func kindNames(ks []classify.Kind) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = k.String()
	}
	return out
}

// Dir returns the hyperscene config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string { return filepath.Join(Dir(), "config.toml") }

// Load reads the config at path, or at [Path] when path is empty. A missing
// file yields the defaults; a malformed or invalid one an INVALID_CONFIG
// error. Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config")
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks value ranges and the priority list.
func (c *Config) Validate() error {
	switch {
	case c.Layout.EquilibriumDistance <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "layout.equilibrium_distance must be positive, got %v", c.Layout.EquilibriumDistance)
	case c.Layout.TickRate <= 0 || c.Layout.TickRate > 1000:
		return errors.New(errors.ErrCodeInvalidConfig, "layout.tick_rate must be in 1..1000, got %d", c.Layout.TickRate)
	case c.Layout.MaxStep < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "layout.max_step must not be negative, got %v", c.Layout.MaxStep)
	case c.Placement.Spread < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "placement.spread must not be negative, got %v", c.Placement.Spread)
	case c.Cache.TTL.Duration < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative, got %v", c.Cache.TTL)
	case c.Cache.RedisDB < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_db must not be negative, got %d", c.Cache.RedisDB)
	}
	if _, err := classify.ParsePriority(c.Classify.Priority); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "classify.priority")
	}
	return nil
}

// TickInterval is the wall-clock time between layout ticks.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.Layout.TickRate)
}

// LayoutParams returns the simulator parameters.
func (c *Config) LayoutParams() layout.Params {
	return layout.Params{Equilibrium: c.Layout.EquilibriumDistance, MaxStep: c.Layout.MaxStep}
}

// ReconcileFilters returns the initial display filters.
func (c *Config) ReconcileFilters() reconcile.Filters {
	return reconcile.Filters{
		ShowClasses:   c.Filters.ShowClasses,
		ShowInstances: c.Filters.ShowInstances,
		ShowConcepts:  c.Filters.ShowConcepts,
	}
}

// PlacementSettings returns the node placement settings around center zero.
func (c *Config) PlacementSettings() reconcile.Placement {
	return reconcile.Placement{Spread: c.Placement.Spread}
}

// Classifier builds the classifier with the configured priority.
func (c *Config) Classifier() (*classify.Classifier, error) {
	prio, err := classify.ParsePriority(c.Classify.Priority)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "classify.priority")
	}
	return classify.New(classify.DefaultRoots(), prio)
}
