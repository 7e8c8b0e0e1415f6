package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Layout.EquilibriumDistance != 100 {
		t.Errorf("equilibrium_distance = %v, want 100", cfg.Layout.EquilibriumDistance)
	}
	if cfg.Layout.TickRate != 25 {
		t.Errorf("tick_rate = %d, want 25", cfg.Layout.TickRate)
	}
	if !cfg.Layout.Enabled {
		t.Error("layout should be enabled by default")
	}
	if !cfg.Filters.ShowClasses || !cfg.Filters.ShowInstances {
		t.Error("classes and instances should be shown by default")
	}
	if cfg.Placement.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Placement.Seed)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if got := cfg.TickInterval(); got != 40*time.Millisecond {
		t.Errorf("TickInterval = %v, want 40ms", got)
	}
}

func TestDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if dir := Dir(); dir != "/tmp/test-xdg/hyperscene" {
		t.Errorf("Dir() = %q, want /tmp/test-xdg/hyperscene", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	if dir, want := Dir(), filepath.Join(home, ".config", "hyperscene"); dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.EquilibriumDistance != 100 {
		t.Errorf("missing file did not yield defaults: %+v", cfg.Layout)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(missing explicit) error = %v", err)
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[layout]
equilibrium_distance = 60
max_step = 15

[filters]
show_instances = false

[classify]
priority = ["isA", "partOf", "instanceOf", "connects"]

[cache]
ttl = "1h"
redis_addr = "localhost:6379"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.EquilibriumDistance != 60 || cfg.Layout.MaxStep != 15 {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if cfg.Layout.TickRate != 25 {
		t.Errorf("absent tick_rate lost its default: %d", cfg.Layout.TickRate)
	}
	if cfg.Filters.ShowInstances || !cfg.Filters.ShowClasses {
		t.Errorf("filters = %+v", cfg.Filters)
	}
	if cfg.Cache.TTL.Duration != time.Hour || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}

	c, err := cfg.Classifier()
	if err != nil {
		t.Fatalf("Classifier: %v", err)
	}
	if p := c.Priority(); p[0] != classify.IsA {
		t.Errorf("priority = %v, want isA first", p)
	}

	f := cfg.ReconcileFilters()
	if f.ShowInstances || !f.ShowClasses || !f.ShowConcepts {
		t.Errorf("ReconcileFilters = %+v", f)
	}
	if p := cfg.LayoutParams(); p.Equilibrium != 60 || p.MaxStep != 15 {
		t.Errorf("LayoutParams = %+v", p)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[layout\n"},
		{"unknown key", "[layout]\nspeed = 3\n"},
		{"negative distance", "[layout]\nequilibrium_distance = -1\n"},
		{"zero tick rate", "[layout]\ntick_rate = 0\n"},
		{"negative max step", "[layout]\nmax_step = -2\n"},
		{"bad ttl", "[cache]\nttl = \"soon\"\n"},
		{"bad priority", "[classify]\npriority = [\"isA\"]\n"},
		{"unknown kind", "[classify]\npriority = [\"isA\", \"partOf\", \"instanceOf\", \"likes\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Layout.EquilibriumDistance = 80
	cfg.Placement.Seed = 7
	cfg.Cache.TTL = Duration{30 * time.Minute}
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Layout.EquilibriumDistance != 80 || got.Placement.Seed != 7 {
		t.Errorf("round trip lost values: %+v %+v", got.Layout, got.Placement)
	}
	if got.Cache.TTL.Duration != 30*time.Minute {
		t.Errorf("ttl = %v, want 30m", got.Cache.TTL)
	}
}
