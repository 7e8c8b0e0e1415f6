package reconcile

import (
	"math/rand/v2"

	"github.com/matzehuels/hyperscene/pkg/scene"
)

// Placement controls where new nodes appear.
type Placement struct {
	Center scene.Vec // Typically the current view center
	Spread float64   // Side of the square new nodes are scattered in; 0 = automatic
}

// spread returns the effective scatter width for a scene of n valid
// entities at equilibrium distance eq.
func (p Placement) spread(n int, eq float64) float64 {
	if p.Spread > 0 {
		return p.Spread
	}
	return float64(n) * eq / 2
}

// point draws a position uniformly from the square of side spread around
// the center.
func (p Placement) point(rng *rand.Rand, spread float64) scene.Vec {
	return scene.Vec{
		X: p.Center.X + (rng.Float64()-0.5)*spread,
		Y: p.Center.Y + (rng.Float64()-0.5)*spread,
	}
}

// NewRand returns the seeded PCG source used for placement.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}
