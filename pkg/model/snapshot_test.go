package model

import (
	"testing"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
)

func TestSnapshotValidate(t *testing.T) {
	isa := classify.NewSet(classify.IsA)
	tests := []struct {
		name      string
		entities  []Entity
		relations []Relation
		wantErr   bool
	}{
		{
			name:     "valid",
			entities: []Entity{{ID: "a"}, {ID: "b"}},
			relations: []Relation{
				{ID: "r", From: "a", To: "b", Kinds: isa},
			},
		},
		{name: "empty", wantErr: false},
		{name: "empty entity id", entities: []Entity{{ID: ""}}, wantErr: true},
		{name: "duplicate entity", entities: []Entity{{ID: "a"}, {ID: "a"}}, wantErr: true},
		{
			name:      "dangling target",
			entities:  []Entity{{ID: "a"}},
			relations: []Relation{{ID: "r", From: "a", To: "x", Kinds: isa}},
			wantErr:   true,
		},
		{
			name:     "duplicate relation",
			entities: []Entity{{ID: "a"}, {ID: "b"}},
			relations: []Relation{
				{ID: "r", From: "a", To: "b", Kinds: isa},
				{ID: "r", From: "b", To: "a", Kinds: isa},
			},
			wantErr: true,
		},
		{
			name:      "empty relation id",
			entities:  []Entity{{ID: "a"}, {ID: "b"}},
			relations: []Relation{{From: "a", To: "b", Kinds: isa}},
			wantErr:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSnapshot(tt.entities, tt.relations).Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidSnapshot) {
				t.Errorf("code = %v, want INVALID_SNAPSHOT", errors.GetCode(err))
			}
		})
	}
}

func TestSnapshotOrdersEntities(t *testing.T) {
	s := NewSnapshot([]Entity{{ID: "c"}, {ID: "a"}, {ID: "b"}}, nil)
	es := s.Entities()
	if es[0].ID != "a" || es[1].ID != "b" || es[2].ID != "c" {
		t.Errorf("entities not sorted: %v", es)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d", s.Len())
	}
}
