package reconcile

import (
	"fmt"
	"testing"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
	"github.com/matzehuels/hyperscene/pkg/model"
	"github.com/matzehuels/hyperscene/pkg/scene"
)

func rel(id, from, to string, kinds ...classify.Kind) model.Relation {
	return model.Relation{ID: id, From: from, To: to, Dir: scene.To, Kinds: classify.NewSet(kinds...)}
}

func entities(ids ...string) []model.Entity {
	out := make([]model.Entity, len(ids))
	for i, id := range ids {
		out[i] = model.Entity{ID: id, Label: id, Type: model.Class}
	}
	return out
}

func reconcileOnce(t *testing.T, e *Engine, reg *scene.Registry, snap *model.Snapshot) (*scene.Registry, Changes) {
	t.Helper()
	reg, ch, err := e.Reconcile(reg, snap, DefaultFilters())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	return reg, ch
}

func edgesOf(reg *scene.Registry, kind classify.Kind) []string {
	var out []string
	for _, e := range reg.Edges() {
		if e.Kind == kind {
			out = append(out, e.Source.ID+"→"+e.Target.ID)
		}
	}
	return out
}

func TestReconcileCreatesNodes(t *testing.T) {
	e := New(WithSeed(1))
	snap := model.NewSnapshot(entities("a", "b", "c"), nil)

	reg, ch := reconcileOnce(t, e, nil, snap)
	if ch.NodesCreated != 3 || reg.Len() != 3 {
		t.Fatalf("created %d nodes, registry has %d", ch.NodesCreated, reg.Len())
	}
	// Automatic spread: 3 nodes × 100 / 2 = 150, so |coord| ≤ 75.
	for _, n := range reg.Nodes() {
		if n.Pos.X < -75 || n.Pos.X > 75 || n.Pos.Y < -75 || n.Pos.Y > 75 {
			t.Errorf("%s placed at %v, outside spread", n.ID, n.Pos)
		}
		if !n.Visible || n.Kind != scene.KindClass {
			t.Errorf("%s visible=%v kind=%v", n.ID, n.Visible, n.Kind)
		}
	}
}

func TestReconcileDeterministicPlacement(t *testing.T) {
	snap := model.NewSnapshot(entities("a", "b"), nil)
	r1, _ := reconcileOnce(t, New(WithSeed(42)), nil, snap)
	r2, _ := reconcileOnce(t, New(WithSeed(42)), nil, snap)
	for _, id := range []string{"a", "b"} {
		n1, _ := r1.Node(id)
		n2, _ := r2.Node(id)
		if n1.Pos != n2.Pos {
			t.Errorf("%s: %v != %v with the same seed", id, n1.Pos, n2.Pos)
		}
	}
}

func TestReconcilePlacementCenter(t *testing.T) {
	e := New(WithPlacement(Placement{Center: scene.Vec{X: 1000, Y: -500}, Spread: 10}))
	reg, _ := reconcileOnce(t, e, nil, model.NewSnapshot(entities("a"), nil))
	n, _ := reg.Node("a")
	if n.Pos.X < 995 || n.Pos.X > 1005 || n.Pos.Y < -505 || n.Pos.Y > -495 {
		t.Errorf("placed at %v, want within 5 of center", n.Pos)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	snap := model.NewSnapshot(entities("p", "q", "r", "s"), []model.Relation{
		rel("r1", "p", "q", classify.Containment),
		rel("r2", "q", "r", classify.Connects),
		rel("r3", "r", "s", classify.IsA),
		rel("r4", "s", "p", classify.PartOf, classify.Connects),
	})
	e := New()
	reg, first := reconcileOnce(t, e, nil, snap)
	if first.Empty() {
		t.Fatal("first pass changed nothing")
	}

	var events []Event
	e.Subscribe(func(ev Event) { events = append(events, ev) })

	_, second := reconcileOnce(t, e, reg, snap)
	if !second.Empty() {
		t.Errorf("second pass changes = %+v, want none", second)
	}
	if len(events) != 0 {
		t.Errorf("second pass fired %d events", len(events))
	}
}

func TestReconcileTransitiveIsA(t *testing.T) {
	snap := model.NewSnapshot(entities("A", "B", "C"), []model.Relation{
		rel("ab", "A", "B", classify.IsA),
		rel("bc", "B", "C", classify.IsA),
	})
	reg, _ := reconcileOnce(t, New(), nil, snap)

	got := edgesOf(reg, classify.IsA)
	if len(got) != 2 || got[0] != "A→B" || got[1] != "B→C" {
		t.Errorf("IsA edges = %v, want [A→B B→C]", got)
	}
	if reg.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", reg.EdgeCount())
	}
	for _, e := range reg.Edges() {
		if e.Style != classify.SolidStraight {
			t.Errorf("IsA edge style = %v", e.Style)
		}
	}
}

func TestReconcileContainmentAndEdge(t *testing.T) {
	snap := model.NewSnapshot(entities("P", "Q", "R"), []model.Relation{
		rel("pq", "P", "Q", classify.Containment),
		rel("qr", "Q", "R", classify.Connects),
	})
	reg, ch := reconcileOnce(t, New(), nil, snap)

	p, _ := reg.Node("P")
	q, _ := reg.Node("Q")
	if q.Parent() != p {
		t.Error("Q is not nested inside P")
	}
	if p.Kind != scene.KindContainer {
		t.Errorf("P kind = %v, want container", p.Kind)
	}
	got := edgesOf(reg, classify.Connects)
	if len(got) != 1 || got[0] != "Q→R" {
		t.Errorf("Connects edges = %v, want [Q→R]", got)
	}
	if e := reg.Edges()[0]; e.Style != classify.SolidCurved {
		t.Errorf("Connects style = %v, want curved", e.Style)
	}
	if ch.Reparented != 1 {
		t.Errorf("Reparented = %d, want 1", ch.Reparented)
	}
}

func TestReconcileContainmentCoexistsWithEdgeOnSamePair(t *testing.T) {
	snap := model.NewSnapshot(entities("P", "Q"), []model.Relation{
		rel("pq", "P", "Q", classify.Containment, classify.Connects),
	})
	reg, _ := reconcileOnce(t, New(), nil, snap)
	q, _ := reg.Node("Q")
	if q.Parent() == nil || reg.EdgeCount() != 1 {
		t.Errorf("parent = %v, edges = %d; want nesting and one edge", q.Parent(), reg.EdgeCount())
	}
}

func TestReconcilePriority(t *testing.T) {
	rels := []model.Relation{
		rel("isa", "A", "B", classify.IsA),
		rel("part", "B", "A", classify.PartOf),
		rel("conn", "A", "B", classify.Connects),
	}
	snap := model.NewSnapshot(entities("A", "B"), rels)

	tests := []struct {
		name     string
		priority []classify.Kind
		want     classify.Kind
		edge     string
	}{
		{"default", nil, classify.PartOf, "B→A"},
		{"connects first", []classify.Kind{classify.Connects, classify.IsA, classify.PartOf, classify.InstanceOf}, classify.Connects, "A→B"},
		{"isA first", []classify.Kind{classify.IsA, classify.PartOf, classify.InstanceOf, classify.Connects}, classify.IsA, "A→B"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := classify.New(nil, tt.priority)
			if err != nil {
				t.Fatal(err)
			}
			reg, _ := reconcileOnce(t, New(WithClassifier(c)), nil, snap)
			if reg.EdgeCount() != 1 {
				t.Fatalf("EdgeCount() = %d, want 1", reg.EdgeCount())
			}
			e := reg.Edges()[0]
			if e.Kind != tt.want || e.Source.ID+"→"+e.Target.ID != tt.edge {
				t.Errorf("edge = %s→%s %v, want %s %v", e.Source.ID, e.Target.ID, e.Kind, tt.edge, tt.want)
			}
		})
	}
}

func TestReconcileSkipsSelfAndInvalid(t *testing.T) {
	snap := model.NewSnapshot([]model.Entity{
		{ID: "a", Type: model.Class},
		{ID: "i", Type: model.Instance},
	}, []model.Relation{
		rel("self", "a", "a", classify.IsA, classify.Containment),
		rel("ia", "i", "a", classify.InstanceOf),
	})
	f := DefaultFilters()
	f.ShowInstances = false

	reg, ch, err := New().Reconcile(nil, snap, f)
	if err != nil {
		t.Fatal(err)
	}
	if reg.Len() != 1 || reg.EdgeCount() != 0 || ch.Reparented != 0 {
		t.Errorf("nodes=%d edges=%d reparented=%d, want 1/0/0", reg.Len(), reg.EdgeCount(), ch.Reparented)
	}
}

func TestReconcileRemovalSafety(t *testing.T) {
	snap := model.NewSnapshot(entities("X", "Y", "Z", "W"), []model.Relation{
		rel("xy", "X", "Y", classify.Containment),
		rel("xz", "X", "Z", classify.Containment),
		rel("xw", "X", "W", classify.Connects),
	})
	e := New()
	reg, _ := reconcileOnce(t, e, nil, snap)

	var events []Event
	e.Subscribe(func(ev Event) { events = append(events, ev) })

	without := model.NewSnapshot(entities("Y", "Z", "W"), nil)
	reg, ch := reconcileOnce(t, e, reg, without)

	if reg.Has("X") {
		t.Error("X still registered")
	}
	for _, id := range []string{"Y", "Z", "W"} {
		n, ok := reg.Node(id)
		if !ok {
			t.Fatalf("%s missing", id)
		}
		if n.Parent() != nil {
			t.Errorf("%s still has a parent", id)
		}
		if len(n.Edges()) != 0 {
			t.Errorf("%s has dangling edges", id)
		}
	}
	if reg.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d", reg.EdgeCount())
	}
	if ch.NodesRemoved != 1 || ch.EdgesRemoved != 1 {
		t.Errorf("changes = %+v", ch)
	}

	var types []EventType
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	if len(types) != 2 || types[0] != EdgeRemoved || types[1] != NodeRemoved {
		t.Errorf("events = %v, want [edge-removed node-removed]", events)
	}
}

func TestReconcileReleasesWhenContainmentDisappears(t *testing.T) {
	with := model.NewSnapshot(entities("P", "Q"), []model.Relation{rel("pq", "P", "Q", classify.Containment)})
	e := New()
	reg, _ := reconcileOnce(t, e, nil, with)
	q, _ := reg.Node("Q")
	scenePos := q.ScenePos()

	reg, ch := reconcileOnce(t, e, reg, model.NewSnapshot(entities("P", "Q"), nil))
	if q.Parent() != nil || ch.Released != 1 {
		t.Errorf("Q parent = %v, released = %d", q.Parent(), ch.Released)
	}
	if q.Pos != scenePos {
		t.Errorf("released Q at %v, want %v", q.Pos, scenePos)
	}
	if p, _ := reg.Node("P"); p.Kind != scene.KindClass {
		t.Errorf("P kind = %v after losing its child", p.Kind)
	}
}

func TestReconcileDropsEdgeWhenRelationDisappears(t *testing.T) {
	e := New()
	reg, _ := reconcileOnce(t, e, nil, model.NewSnapshot(entities("a", "b"), []model.Relation{rel("ab", "a", "b", classify.IsA)}))
	reg, ch := reconcileOnce(t, e, reg, model.NewSnapshot(entities("a", "b"), nil))
	if reg.EdgeCount() != 0 || ch.EdgesRemoved != 1 {
		t.Errorf("edges = %d, removed = %d", reg.EdgeCount(), ch.EdgesRemoved)
	}
}

func TestReconcileOneEdgePerKindRegardlessOfDirection(t *testing.T) {
	e := New(WithSeed(1))
	back := rel("f2", "a", "b", classify.IsA)
	back.Dir = scene.From
	snap := model.NewSnapshot(entities("a", "b"), []model.Relation{rel("f1", "a", "b", classify.IsA), back})

	reg, ch := reconcileOnce(t, e, nil, snap)
	if got := edgesOf(reg, classify.IsA); len(got) != 1 {
		t.Fatalf("isA edges = %v, want one", got)
	}
	if ch.EdgesCreated != 1 {
		t.Errorf("EdgesCreated = %d, want 1", ch.EdgesCreated)
	}
	if _, ch = reconcileOnce(t, e, reg, snap); !ch.Empty() {
		t.Errorf("second pass changed the scene: %+v", ch)
	}
}

func TestReconcileContainmentCycleRejected(t *testing.T) {
	snap := model.NewSnapshot(entities("P", "C"), []model.Relation{
		rel("pc", "P", "C", classify.Containment),
		rel("cp", "C", "P", classify.Containment),
	})
	reg, _ := reconcileOnce(t, New(), nil, snap)
	p, _ := reg.Node("P")
	c, _ := reg.Node("C")
	if c.Parent() != p || p.Parent() != nil {
		t.Errorf("P parent = %v, C parent = %v; want only C nested", p.Parent(), c.Parent())
	}
}

func TestReconcileUpdatesLabels(t *testing.T) {
	e := New()
	reg, _ := reconcileOnce(t, e, nil, model.NewSnapshot([]model.Entity{{ID: "a", Label: "old"}}, nil))
	reg, ch := reconcileOnce(t, e, reg, model.NewSnapshot([]model.Entity{
		{ID: "a", Label: "new", Type: model.Instance, Supers: []string{"X", "Y"}},
	}, nil))
	n, _ := reg.Node("a")
	if n.Label != "new" || n.Detail != "X Y" || n.Kind != scene.KindInstance {
		t.Errorf("node = %+v", n)
	}
	if !ch.Empty() {
		t.Errorf("relabel counted as structural change: %+v", ch)
	}
}

func TestReconcileInvalidSnapshot(t *testing.T) {
	e := New()
	reg, _ := reconcileOnce(t, e, nil, model.NewSnapshot(entities("a"), nil))

	bad := model.NewSnapshot(entities("b"), []model.Relation{rel("r", "b", "ghost", classify.IsA)})
	got, ch, err := e.Reconcile(reg, bad, DefaultFilters())
	if !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
		t.Fatalf("error = %v, want INVALID_SNAPSHOT", err)
	}
	if got != reg || !ch.Empty() || !reg.Has("a") {
		t.Error("invalid snapshot modified the registry")
	}
}

func TestReconcileBusy(t *testing.T) {
	e := New()
	snap := model.NewSnapshot(entities("a"), nil)

	var nested error
	e.Subscribe(func(Event) {
		_, _, nested = e.Reconcile(nil, snap, DefaultFilters())
	})
	reconcileOnce(t, e, nil, snap)

	if !errors.Is(nested, errors.ErrCodeBusy) {
		t.Errorf("nested Reconcile error = %v, want BUSY", nested)
	}
	if e.Busy() {
		t.Error("engine still busy after pass")
	}
}

func TestReconcileEventsOncePerChange(t *testing.T) {
	e := New()
	counts := map[EventType]int{}
	e.Subscribe(func(ev Event) { counts[ev.Type]++ })

	snap := model.NewSnapshot(entities("a", "b", "c"), []model.Relation{
		rel("ab", "a", "b", classify.IsA),
		rel("ab2", "a", "b", classify.IsA),
		rel("bc", "b", "c", classify.Connects),
	})
	reconcileOnce(t, e, nil, snap)

	want := map[EventType]int{NodeCreated: 3, EdgeCreated: 2}
	for typ, n := range want {
		if counts[typ] != n {
			t.Errorf("%v events = %d, want %d", typ, counts[typ], n)
		}
	}
}

func TestReconcileWithMemoryModel(t *testing.T) {
	m := model.NewMemory()
	for _, id := range []string{"dog", "animal", "rex"} {
		if _, err := m.Create(id, id); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := m.Connect("dog", "animal", classify.RootIsA, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Connect("rex", "dog", classify.RootInstanceOf, ""); err != nil {
		t.Fatal(err)
	}
	snap, err := m.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		filters Filters
		nodes   int
		edges   int
	}{
		{DefaultFilters(), 3, 2},
		{Filters{ShowClasses: true}, 2, 1},
		{Filters{ShowInstances: true}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%+v", tt.filters), func(t *testing.T) {
			reg, _, err := New().Reconcile(nil, snap, tt.filters)
			if err != nil {
				t.Fatal(err)
			}
			if reg.Len() != tt.nodes || reg.EdgeCount() != tt.edges {
				t.Errorf("nodes=%d edges=%d, want %d/%d", reg.Len(), reg.EdgeCount(), tt.nodes, tt.edges)
			}
		})
	}
}
