package classify

import (
	"testing"

	"github.com/matzehuels/hyperscene/pkg/errors"
)

// fakeModel is a minimal Resolver: facts point at their relation, definitions
// at their super-relations.
type fakeModel struct {
	facts map[string]string
	defs  map[string][]string
}

func (m fakeModel) IsFact(id string) bool {
	_, ok := m.facts[id]
	return ok
}

func (m fakeModel) SuperRelations(id string) []string {
	if rel, ok := m.facts[id]; ok {
		return []string{rel}
	}
	return m.defs[id]
}

func newFakeModel() fakeModel {
	return fakeModel{
		facts: map[string]string{
			"f-isa":      RootIsA,
			"f-owns":     "owns",
			"f-wheel":    "wheelOf",
			"f-both":     "attachedPart",
			"f-loop":     "loopA",
			"f-unknown":  "likes",
			"f-instance": RootInstanceOf,
		},
		defs: map[string][]string{
			"owns":         {RootHasA},
			"wheelOf":      {"componentOf"},
			"componentOf":  {RootPartOf},
			"attachedPart": {RootPartOf, RootConnects},
			"loopA":        {"loopB"},
			"loopB":        {"loopA", RootConnects},
			"likes":        nil,
		},
	}
}

func TestKinds(t *testing.T) {
	c := Default()
	m := newFakeModel()

	tests := []struct {
		name string
		id   string
		want []Kind
	}{
		{"direct root", "f-isa", []Kind{IsA}},
		{"one level", "f-owns", []Kind{Containment}},
		{"transitive", "f-wheel", []Kind{PartOf}},
		{"multiple roots", "f-both", []Kind{PartOf, Connects}},
		{"cyclic definitions", "f-loop", []Kind{Connects}},
		{"unrecognised", "f-unknown", nil},
		{"definition is not a fact", "wheelOf", nil},
		{"root definition is not a fact", RootIsA, nil},
		{"unknown id", "nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Kinds(tt.id, m).Sorted()
			if len(got) != len(tt.want) {
				t.Fatalf("Kinds(%q) = %v, want %v", tt.id, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Kinds(%q)[%d] = %v, want %v", tt.id, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestClassify(t *testing.T) {
	c := Default()
	m := newFakeModel()

	tests := []struct {
		id   string
		want Kind
	}{
		{"f-isa", IsA},
		{"f-owns", Containment},
		{"f-both", PartOf},
		{"f-instance", InstanceOf},
		{"f-unknown", None},
		{"owns", None},
	}
	for _, tt := range tests {
		if got := c.Classify(tt.id, m); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	c := Default()

	tests := []struct {
		name        string
		kinds       Set
		wantContain bool
		wantEdge    Kind
	}{
		{"empty", NewSet(), false, None},
		{"containment only", NewSet(Containment), true, None},
		{"containment and connects coexist", NewSet(Containment, Connects), true, Connects},
		{"partOf beats isA", NewSet(IsA, PartOf), false, PartOf},
		{"isA beats instanceOf", NewSet(InstanceOf, IsA), false, IsA},
		{"instanceOf beats connects", NewSet(Connects, InstanceOf), false, InstanceOf},
		{"all", NewSet(Containment, PartOf, IsA, InstanceOf, Connects), true, PartOf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			contain, edge := c.Resolve(tt.kinds)
			if contain != tt.wantContain || edge != tt.wantEdge {
				t.Errorf("Resolve() = (%v, %v), want (%v, %v)", contain, edge, tt.wantContain, tt.wantEdge)
			}
		})
	}
}

func TestCustomPriority(t *testing.T) {
	c, err := New(nil, []Kind{Connects, InstanceOf, IsA, PartOf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, edge := c.Resolve(NewSet(PartOf, Connects))
	if edge != Connects {
		t.Errorf("edge = %v, want connects", edge)
	}
	if got := c.Priority(); got[0] != Connects {
		t.Errorf("Priority()[0] = %v, want connects", got[0])
	}
}

func TestValidatePriority(t *testing.T) {
	tests := []struct {
		name    string
		p       []Kind
		wantErr bool
	}{
		{"default", DefaultPriority, false},
		{"reversed", []Kind{Connects, InstanceOf, IsA, PartOf}, false},
		{"too short", []Kind{PartOf, IsA}, true},
		{"duplicate", []Kind{PartOf, PartOf, IsA, Connects}, true},
		{"containment not allowed", []Kind{Containment, IsA, InstanceOf, Connects}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePriority(tt.p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePriority(%v) error = %v, wantErr %v", tt.p, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidPriority) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidPriority)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	got, err := ParsePriority([]string{"connects", "instance_of", "IS-A", "partof"})
	if err != nil {
		t.Fatalf("ParsePriority: %v", err)
	}
	want := []Kind{Connects, InstanceOf, IsA, PartOf}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if _, err := ParsePriority([]string{"likes", "isA", "partOf", "connects"}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestStyleOf(t *testing.T) {
	tests := []struct {
		kind   Kind
		style  Style
		hasOne bool
	}{
		{PartOf, DottedStraight, true},
		{IsA, SolidStraight, true},
		{InstanceOf, DashedStraight, true},
		{Connects, SolidCurved, true},
		{Containment, SolidStraight, false},
		{None, SolidStraight, false},
	}
	for _, tt := range tests {
		style, ok := StyleOf(tt.kind)
		if style != tt.style || ok != tt.hasOne {
			t.Errorf("StyleOf(%v) = (%v, %v), want (%v, %v)", tt.kind, style, ok, tt.style, tt.hasOne)
		}
	}
}

func TestKindAndStyleText(t *testing.T) {
	for _, k := range []Kind{None, Containment, PartOf, IsA, InstanceOf, Connects} {
		text, _ := k.MarshalText()
		var got Kind
		if err := got.UnmarshalText(text); err != nil || got != k {
			t.Errorf("Kind %q decoded to %v, %v", text, got, err)
		}
	}
	for _, s := range []Style{SolidStraight, DashedStraight, DottedStraight, SolidCurved} {
		text, _ := s.MarshalText()
		var got Style
		if err := got.UnmarshalText(text); err != nil || got != s {
			t.Errorf("Style %q decoded to %v, %v", text, got, err)
		}
	}

	var k Kind
	if err := k.UnmarshalText([]byte("likes")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown kind error = %v", err)
	}
	var s Style
	if err := s.UnmarshalText([]byte("wavy")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown style error = %v", err)
	}
}
