package layout

import (
	"github.com/matzehuels/hyperscene/pkg/scene"
)

const (
	// DefaultEquilibrium is the reference equilibrium distance.
	DefaultEquilibrium = 100.0

	// cutoffFactor bounds repulsion to pairs closer than cutoffFactor·eq.
	cutoffFactor = 10.0

	// epsilon is the squared distance below which a pair is skipped.
	epsilon = 1e-9
)

// Params are the force constants of one tick.
type Params struct {
	Equilibrium float64 // Target spacing; non-positive selects DefaultEquilibrium
	MaxStep     float64 // Upper bound on one node's move per tick; 0 = unbounded
}

// DefaultParams returns the reference parameters.
func DefaultParams() Params { return Params{Equilibrium: DefaultEquilibrium} }

func (p Params) eq() float64 {
	if p.Equilibrium > 0 {
		return p.Equilibrium
	}
	return DefaultEquilibrium
}

// Result reports what a tick did.
type Result struct {
	Displacement map[string]scene.Vec // Applied moves by node id
	Nodes        int                  // Top-level nodes that took part
	Dropped      int                  // Nodes skipped for a NaN or infinite displacement
	Energy       float64              // Sum of squared applied moves
}

// Moved returns the number of nodes whose position changed.
func (r Result) Moved() int { return len(r.Displacement) }

// Forces sums the displacement of every top-level node that is not
// excluded. Nodes that are nested, excluded or absent from nodes get no
// entry. Forces does not modify positions.
func Forces(nodes []*scene.Node, edges []*scene.Edge, excluded map[string]bool, p Params) map[*scene.Node]scene.Vec {
	eq := p.eq()
	cutoff2 := cutoffFactor * eq * cutoffFactor * eq
	eq3 := eq * eq * eq

	var active []*scene.Node
	member := make(map[*scene.Node]bool, len(nodes))
	for _, n := range nodes {
		if n == nil || !n.IsTopLevel() || excluded[n.ID] || member[n] {
			continue
		}
		member[n] = true
		active = append(active, n)
	}
	disp := make(map[*scene.Node]scene.Vec, len(active))
	if len(active) == 0 {
		return disp
	}

	for i, a := range active {
		for _, b := range active[i+1:] {
			d := a.Pos.Sub(b.Pos)
			l2 := d.Len2()
			// !(l2 >= epsilon) also skips NaN positions.
			if !(l2 >= epsilon) || l2 > cutoff2 {
				continue
			}
			// eq³/|d|² along d̂ = d · eq³/|d|³
			f := d.Scale(eq3 / (l2 * d.Len()))
			disp[a] = disp[a].Add(f)
			disp[b] = disp[b].Sub(f)
		}
	}

	n := float64(len(active))
	for _, e := range edges {
		if e == nil || e.Source == nil || e.Target == nil {
			continue
		}
		src, dst := e.Source.Root(), e.Target.Root()
		if src == dst {
			continue
		}
		d := src.Pos.Sub(dst.Pos)
		if l2 := d.Len2(); !(l2 >= epsilon) {
			continue
		}
		f := d.Scale((1 - eq/d.Len()) / n)
		if member[dst] {
			disp[dst] = disp[dst].Add(f)
		}
		if member[src] {
			disp[src] = disp[src].Sub(f)
		}
	}
	return disp
}

// Tick applies one relaxation step to nodes. Excluded ids are frozen; they
// still exert attraction through their edges but neither repel nor move.
// A node whose summed displacement is NaN or infinite keeps its position
// for this tick.
func Tick(nodes []*scene.Node, edges []*scene.Edge, excluded map[string]bool, p Params) Result {
	disp := Forces(nodes, edges, excluded, p)
	res := Result{Displacement: make(map[string]scene.Vec, len(disp))}
	for _, n := range nodes {
		if n != nil && n.IsTopLevel() && !excluded[n.ID] {
			res.Nodes++
		}
	}

	for node, d := range disp {
		if !d.IsFinite() {
			res.Dropped++
			continue
		}
		d = d.Clamp(p.MaxStep)
		if d == (scene.Vec{}) {
			continue
		}
		node.Pos = node.Pos.Add(d)
		res.Displacement[node.ID] = d
		res.Energy += d.Len2()
	}
	return res
}
