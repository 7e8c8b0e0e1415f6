package reconcile

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
	"github.com/matzehuels/hyperscene/pkg/model"
	"github.com/matzehuels/hyperscene/pkg/observability"
	"github.com/matzehuels/hyperscene/pkg/scene"
)

// DefaultEquilibrium is the equilibrium distance used for automatic spread
// when none is configured.
const DefaultEquilibrium = 100.0

// Engine reconciles a registry against snapshots.
//
// The zero value is not usable; call [New]. An Engine is not safe for
// concurrent use and guards against re-entrant passes: a call made while a
// pass is running (for example from a subscriber) fails with BUSY and leaves
// the registry untouched.
type Engine struct {
	classifier  *classify.Classifier
	rng         *rand.Rand
	placement   Placement
	equilibrium float64
	logger      *log.Logger
	subscribers []func(Event)
	busy        bool
}

// Option configures an [Engine].
type Option func(*Engine)

// WithClassifier sets the classifier whose priority breaks ties between
// edge kinds. The default is [classify.Default].
func WithClassifier(c *classify.Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// WithRand injects the random source used for initial placement.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithSeed seeds a fresh PCG source for initial placement.
func WithSeed(seed uint64) Option { return func(e *Engine) { e.rng = NewRand(seed) } }

// WithPlacement sets where new nodes appear.
func WithPlacement(p Placement) Option { return func(e *Engine) { e.placement = p } }

// WithEquilibrium sets the equilibrium distance used for automatic spread.
func WithEquilibrium(eq float64) Option { return func(e *Engine) { e.SetEquilibrium(eq) } }

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine seeded with 0 unless a random source is given.
func New(opts ...Option) *Engine {
	e := &Engine{
		classifier:  classify.Default(),
		equilibrium: DefaultEquilibrium,
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = NewRand(0)
	}
	return e
}

// Subscribe registers fn to receive change events. Subscribers are called in
// registration order. They must not call [Engine.Reconcile]; such calls fail
// with BUSY.
func (e *Engine) Subscribe(fn func(Event)) {
	if fn != nil {
		e.subscribers = append(e.subscribers, fn)
	}
}

// SetPlacement changes where subsequently created nodes appear.
func (e *Engine) SetPlacement(p Placement) { e.placement = p }

// Placement returns the current placement.
func (e *Engine) Placement() Placement { return e.placement }

// SetEquilibrium changes the equilibrium distance used for automatic
// spread. Non-positive values are ignored.
func (e *Engine) SetEquilibrium(eq float64) {
	if eq > 0 {
		e.equilibrium = eq
	}
}

// Classifier returns the classifier used for tie-breaking.
func (e *Engine) Classifier() *classify.Classifier { return e.classifier }

// Busy reports whether a pass is running.
func (e *Engine) Busy() bool { return e.busy }

// Reconcile brings prev in line with snap under filters f and returns it.
// A nil prev starts from an empty registry. An invalid snapshot
// short-circuits the pass with an INVALID_SNAPSHOT error and no changes.
func (e *Engine) Reconcile(prev *scene.Registry, snap *model.Snapshot, f Filters) (*scene.Registry, Changes, error) {
	if e.busy {
		return prev, Changes{}, errors.New(errors.ErrCodeBusy, "reconciliation already in progress")
	}
	e.busy = true
	defer func() { e.busy = false }()

	if prev == nil {
		prev = scene.NewRegistry()
	}
	if err := snap.Validate(); err != nil {
		observability.Reconcile().OnReconcile(observability.ReconcileStats{
			Nodes: prev.Len(), Edges: prev.EdgeCount(), Err: err,
		})
		return prev, Changes{}, err
	}

	start := time.Now()
	p := &pass{engine: e, reg: prev, snap: snap, valid: make(map[string]model.Entity)}
	p.run(f)

	for _, ev := range p.events {
		for _, fn := range e.subscribers {
			fn(ev)
		}
	}

	elapsed := time.Since(start)
	if !p.changes.Empty() {
		e.logger.Debug("reconciled scene",
			"nodes", prev.Len(),
			"edges", prev.EdgeCount(),
			"created", p.changes.NodesCreated,
			"removed", p.changes.NodesRemoved,
			"edges+", p.changes.EdgesCreated,
			"edges-", p.changes.EdgesRemoved,
			"duration", elapsed)
	}
	observability.Reconcile().OnReconcile(observability.ReconcileStats{
		Nodes:        prev.Len(),
		Edges:        prev.EdgeCount(),
		NodesCreated: p.changes.NodesCreated,
		NodesRemoved: p.changes.NodesRemoved,
		EdgesCreated: p.changes.EdgesCreated,
		EdgesRemoved: p.changes.EdgesRemoved,
		Reparented:   p.changes.Reparented,
		Duration:     elapsed,
	})
	return prev, p.changes, nil
}

// pass holds the state of one reconciliation.
type pass struct {
	engine  *Engine
	reg     *scene.Registry
	snap    *model.Snapshot
	valid   map[string]model.Entity
	keep    map[scene.EdgeKey]bool
	changes Changes
	events  []Event
}

func (p *pass) run(f Filters) {
	var order []model.Entity
	for _, ent := range p.snap.Entities() {
		if f.Allows(ent) {
			p.valid[ent.ID] = ent
			order = append(order, ent)
		}
	}

	p.upsertNodes(order)
	p.releaseOrphans(order)
	p.applyRelations()
	p.dropStaleEdges()
	p.removeStale()
	p.retag(order)
}

func (p *pass) emit(t EventType, n *scene.Node, e *scene.Edge) {
	p.events = append(p.events, Event{Type: t, Node: n, Edge: e})
}

// upsertNodes creates missing nodes and refreshes existing ones.
func (p *pass) upsertNodes(order []model.Entity) {
	spread := p.engine.placement.spread(len(order), p.engine.equilibrium)
	for _, ent := range order {
		n, ok := p.reg.Node(ent.ID)
		if !ok {
			n = scene.NewNode(ent.ID, ent.Label, ent.Type.NodeKind(), p.engine.placement.point(p.engine.rng, spread))
			if err := p.reg.Add(n); err != nil {
				continue
			}
			p.changes.NodesCreated++
			p.emit(NodeCreated, n, nil)
		}
		n.Label = ent.Label
		n.Detail = ent.Detail()
		n.Visible = true
	}
}

// releaseOrphans moves nodes whose containment parent no longer holds them
// back to top-level.
func (p *pass) releaseOrphans(order []model.Entity) {
	for _, ent := range order {
		n, _ := p.reg.Node(ent.ID)
		parent := n.Parent()
		if parent == nil {
			continue
		}
		_, parentValid := p.valid[parent.ID]
		if parentValid && slices.Contains(p.snap.Set(ent.ID, model.Parents), parent.ID) {
			continue
		}
		if p.reg.Release(n) {
			p.changes.Released++
		}
	}
}

type pairKey struct{ a, b string }

func unordered(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{x, y}
}

// applyRelations nests and connects valid entities. Relations are grouped
// per unordered entity pair so the priority tie-break sees every kind that
// relates the pair, in either direction.
func (p *pass) applyRelations() {
	p.keep = make(map[scene.EdgeKey]bool)

	var pairs []pairKey
	groups := make(map[pairKey][]model.Relation)
	for _, r := range p.snap.Relations() {
		if r.From == r.To {
			continue
		}
		if _, ok := p.valid[r.From]; !ok {
			continue
		}
		if _, ok := p.valid[r.To]; !ok {
			continue
		}
		k := unordered(r.From, r.To)
		if _, seen := groups[k]; !seen {
			pairs = append(pairs, k)
		}
		groups[k] = append(groups[k], r)
	}

	c := p.engine.classifier
	for _, k := range pairs {
		rels := groups[k]
		kinds := classify.Set{}
		for _, r := range rels {
			kinds.Union(r.Kinds)
		}
		contain, winner := c.Resolve(kinds)

		for _, r := range rels {
			src, _ := p.reg.Node(r.From)
			dst, _ := p.reg.Node(r.To)
			if contain && r.Kinds.Has(classify.Containment) && dst.Parent() != src {
				if p.reg.SetParent(dst, src) {
					p.changes.Reparented++
				}
			}
			if winner == classify.None || !r.Kinds.Has(winner) {
				continue
			}
			style, _ := classify.StyleOf(winner)
			e, created := p.reg.Connect(src, dst, r.Dir, winner, style)
			if e == nil {
				continue
			}
			p.keep[e.Key()] = true
			if created {
				p.changes.EdgesCreated++
				p.emit(EdgeCreated, nil, e)
			}
		}
	}
}

// dropStaleEdges removes edges between valid nodes that no relation in the
// snapshot supports any more.
func (p *pass) dropStaleEdges() {
	for _, e := range p.reg.Edges() {
		_, srcValid := p.valid[e.Source.ID]
		_, dstValid := p.valid[e.Target.ID]
		if !srcValid || !dstValid || p.keep[e.Key()] {
			continue
		}
		if p.reg.Disconnect(e) {
			p.changes.EdgesRemoved++
			p.emit(EdgeRemoved, nil, e)
		}
	}
}

// removeStale deletes every registered node whose id left the valid set.
func (p *pass) removeStale() {
	for _, id := range p.reg.IDs() {
		if _, ok := p.valid[id]; ok {
			continue
		}
		n, edges, ok := p.reg.Remove(id)
		if !ok {
			continue
		}
		for _, e := range edges {
			p.changes.EdgesRemoved++
			p.emit(EdgeRemoved, nil, e)
		}
		p.changes.NodesRemoved++
		p.emit(NodeRemoved, n, nil)
	}
}

// retag sets the node kind from the entity type, or Container for nodes
// that currently nest others.
func (p *pass) retag(order []model.Entity) {
	for _, ent := range order {
		n, ok := p.reg.Node(ent.ID)
		if !ok {
			continue
		}
		if len(n.Children()) > 0 {
			n.Kind = scene.KindContainer
		} else {
			n.Kind = ent.Type.NodeKind()
		}
	}
}
