package reconcile

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/model"
	"github.com/matzehuels/hyperscene/pkg/scene"
)

const propNodes = 6

var propKinds = []classify.Kind{
	classify.Containment, classify.PartOf, classify.IsA, classify.InstanceOf, classify.Connects,
}

// decodeSnapshot turns generated integers into a snapshot over a fixed set
// of entities. Each value encodes (from, to, kind, dir); self relations are kept
// on purpose.
func decodeSnapshot(codes []int) *model.Snapshot {
	types := []model.EntityType{model.Class, model.Class, model.Instance, model.Instance, model.Concept, model.Concept}
	ents := make([]model.Entity, propNodes)
	for i := range ents {
		ents[i] = model.Entity{ID: fmt.Sprintf("n%d", i), Label: fmt.Sprintf("N%d", i), Type: types[i]}
	}
	rels := make([]model.Relation, 0, len(codes))
	for i, c := range codes {
		from := c % propNodes
		to := (c / propNodes) % propNodes
		kind := propKinds[(c/(propNodes*propNodes))%len(propKinds)]
		dir := scene.To
		if c/(propNodes*propNodes*len(propKinds))%2 == 1 {
			dir = scene.From
		}
		rels = append(rels, model.Relation{
			ID:    fmt.Sprintf("r%d", i),
			From:  fmt.Sprintf("n%d", from),
			To:    fmt.Sprintf("n%d", to),
			Dir:   dir,
			Kinds: classify.NewSet(kind),
		})
	}
	return model.NewSnapshot(ents, rels)
}

func genCodes() gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, 2*propNodes*propNodes*len(propKinds)-1))
}

// consistent checks edge uniqueness, incidence bookkeeping and acyclic
// containment.
func consistent(reg *scene.Registry) bool {
	seen := map[scene.EdgeKey]bool{}
	for _, e := range reg.Edges() {
		k := e.Key()
		if seen[k] {
			return false
		}
		seen[k] = true
		if e.Source == e.Target || !reg.Has(e.Source.ID) || !reg.Has(e.Target.ID) {
			return false
		}
	}
	incident := 0
	for _, n := range reg.Nodes() {
		incident += len(n.Edges())
		if n.IsAncestorOf(n) {
			return false
		}
		if p := n.Parent(); p != nil && !reg.Has(p.ID) {
			return false
		}
	}
	return incident == 2*reg.EdgeCount()
}

func TestReconcileProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("at most one edge per (source, target, kind)", prop.ForAll(
		func(a, b []int, hideInstances bool) bool {
			e := New(WithSeed(7))
			f := DefaultFilters()
			reg, _, err := e.Reconcile(nil, decodeSnapshot(a), f)
			if err != nil || !consistent(reg) {
				return false
			}
			f.ShowInstances = !hideInstances
			reg, _, err = e.Reconcile(reg, decodeSnapshot(b), f)
			if err != nil || !consistent(reg) {
				return false
			}
			reg, _, err = e.Reconcile(reg, decodeSnapshot(append(a, b...)), DefaultFilters())
			return err == nil && consistent(reg)
		},
		genCodes(),
		genCodes(),
		gen.Bool(),
	))

	properties.Property("second pass on an unchanged snapshot changes nothing", prop.ForAll(
		func(prev, next []int) bool {
			e := New(WithSeed(7))
			reg, _, err := e.Reconcile(nil, decodeSnapshot(prev), DefaultFilters())
			if err != nil {
				return false
			}
			snap := decodeSnapshot(next)
			reg, _, err = e.Reconcile(reg, snap, DefaultFilters())
			if err != nil {
				return false
			}
			nodes, edges := reg.Len(), reg.EdgeCount()
			_, ch, err := e.Reconcile(reg, snap, DefaultFilters())
			return err == nil && ch.Empty() && reg.Len() == nodes && reg.EdgeCount() == edges
		},
		genCodes(),
		genCodes(),
	))

	properties.TestingRun(t)
}
