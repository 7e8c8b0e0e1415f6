package layout

import (
	"testing"

	"github.com/matzehuels/hyperscene/pkg/observability"
	"github.com/matzehuels/hyperscene/pkg/scene"
)

type recordingLayoutHooks struct {
	observability.NoopLayoutHooks
	ticks []observability.TickStats
}

func (h *recordingLayoutHooks) OnTick(s observability.TickStats) { h.ticks = append(h.ticks, s) }

func TestSimulatorDisabled(t *testing.T) {
	reg := build(t, map[string]scene.Vec{"A": {X: -5}, "B": {X: 5}})
	s := NewSimulator(WithEnabled(false))
	if s.Enabled() {
		t.Fatal("WithEnabled(false) ignored")
	}
	if res := s.Step(reg); res.Moved() != 0 {
		t.Error("disabled simulator moved nodes")
	}
	if n := s.Run(reg, 10, 0); n != 0 {
		t.Errorf("Run while disabled took %d steps", n)
	}

	s.SetEnabled(true)
	if res := s.Step(reg); res.Moved() != 2 {
		t.Errorf("enabled simulator moved %d nodes, want 2", res.Moved())
	}
}

func TestSimulatorEquilibriumDistance(t *testing.T) {
	s := NewSimulator()
	if s.EquilibriumDistance() != DefaultEquilibrium {
		t.Errorf("default = %v", s.EquilibriumDistance())
	}
	s.SetEquilibriumDistance(40)
	s.SetEquilibriumDistance(0)
	s.SetEquilibriumDistance(-3)
	if s.EquilibriumDistance() != 40 {
		t.Errorf("EquilibriumDistance() = %v, want 40", s.EquilibriumDistance())
	}

	s.SetMaxStep(5)
	s.SetMaxStep(-1)
	if s.Params().MaxStep != 5 {
		t.Errorf("MaxStep = %v, want 5", s.Params().MaxStep)
	}
}

func TestSimulatorFreezesSelectedAndInvisible(t *testing.T) {
	reg := build(t, map[string]scene.Vec{"A": {X: -5}, "B": {X: 5}, "C": {X: 0, Y: 5}})
	nodeOf(reg, "A").Selected = true
	nodeOf(reg, "B").Visible = false

	res := NewSimulator().Step(reg)
	if nodeOf(reg, "A").Pos != (scene.Vec{X: -5}) || nodeOf(reg, "B").Pos != (scene.Vec{X: 5}) {
		t.Error("selected or invisible node moved")
	}
	if res.Nodes != 1 {
		t.Errorf("Nodes = %d, want 1", res.Nodes)
	}
}

func TestSimulatorReportsTicks(t *testing.T) {
	hooks := &recordingLayoutHooks{}
	observability.SetLayoutHooks(hooks)
	defer observability.Reset()

	reg := build(t, map[string]scene.Vec{"A": {X: -5}, "B": {X: 5}})
	s := NewSimulator(WithParams(Params{Equilibrium: 50}))
	s.Step(reg)
	s.Step(reg)

	if len(hooks.ticks) != 2 {
		t.Fatalf("got %d tick reports, want 2", len(hooks.ticks))
	}
	if hooks.ticks[0].Nodes != 2 || hooks.ticks[0].Energy <= 0 {
		t.Errorf("first tick = %+v", hooks.ticks[0])
	}
}

func TestSimulatorRunSettles(t *testing.T) {
	reg := build(t, map[string]scene.Vec{"A": {X: -2000}, "B": {X: 2000}})
	// Beyond the cutoff and unconnected: nothing moves, Run stops at once.
	if n := NewSimulator().Run(reg, 50, 1e-6); n != 1 {
		t.Errorf("Run took %d steps, want 1", n)
	}
}
