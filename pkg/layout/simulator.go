package layout

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hyperscene/pkg/observability"
	"github.com/matzehuels/hyperscene/pkg/scene"
)

// Simulator holds the layout controls between ticks. It reads topology
// from a registry and writes positions; it never creates or removes nodes
// or edges.
type Simulator struct {
	enabled bool
	params  Params
	logger  *log.Logger
}

// SimulatorOption configures a [Simulator].
type SimulatorOption func(*Simulator)

// WithParams sets the initial force parameters.
func WithParams(p Params) SimulatorOption {
	return func(s *Simulator) {
		s.SetEquilibriumDistance(p.Equilibrium)
		s.SetMaxStep(p.MaxStep)
	}
}

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) SimulatorOption {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEnabled sets the initial enabled state. Simulators start enabled.
func WithEnabled(on bool) SimulatorOption { return func(s *Simulator) { s.enabled = on } }

// NewSimulator returns an enabled simulator with [DefaultParams].
func NewSimulator(opts ...SimulatorOption) *Simulator {
	s := &Simulator{enabled: true, params: DefaultParams(), logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEnabled turns stepping on or off. A step already running completes.
func (s *Simulator) SetEnabled(on bool) { s.enabled = on }

// Enabled reports whether [Simulator.Step] moves nodes.
func (s *Simulator) Enabled() bool { return s.enabled }

// SetEquilibriumDistance changes the target spacing from the next step on.
// Positions are kept. Non-positive values are ignored.
func (s *Simulator) SetEquilibriumDistance(eq float64) {
	if eq > 0 {
		s.params.Equilibrium = eq
	}
}

// EquilibriumDistance returns the target spacing.
func (s *Simulator) EquilibriumDistance() float64 { return s.params.eq() }

// SetMaxStep bounds how far one node moves per step; 0 removes the bound.
// Negative values are ignored.
func (s *Simulator) SetMaxStep(limit float64) {
	if limit >= 0 {
		s.params.MaxStep = limit
	}
}

// Params returns the current force parameters.
func (s *Simulator) Params() Params { return s.params }

// Step runs one tick over reg, freezing selected and invisible nodes.
// It is a no-op while disabled.
func (s *Simulator) Step(reg *scene.Registry) Result {
	if !s.enabled || reg == nil {
		return Result{}
	}
	start := time.Now()
	nodes := reg.Nodes()
	excluded := make(map[string]bool)
	for _, n := range nodes {
		if n.Selected || !n.Visible {
			excluded[n.ID] = true
		}
	}

	res := Tick(nodes, reg.Edges(), excluded, s.params)
	if res.Dropped > 0 {
		s.logger.Debug("dropped unstable displacements", "nodes", res.Dropped)
	}
	observability.Layout().OnTick(observability.TickStats{
		Nodes:    res.Nodes,
		Moved:    res.Moved(),
		Dropped:  res.Dropped,
		Energy:   res.Energy,
		Duration: time.Since(start),
	})
	return res
}

// Run steps reg up to n times, stopping early once the applied energy of a
// step falls below settle. It returns the number of steps taken, 0 while
// disabled. Headless hosts use it to pre-compute a layout.
func (s *Simulator) Run(reg *scene.Registry, n int, settle float64) int {
	if !s.enabled {
		return 0
	}
	for i := range n {
		if res := s.Step(reg); res.Energy < settle {
			return i + 1
		}
	}
	return n
}
