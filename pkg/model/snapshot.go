package model

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
	"github.com/matzehuels/hyperscene/pkg/scene"
)

// EntityType is the logical type of an entity, used by display filters.
type EntityType int

const (
	// Concept is an entity with no taxonomic relations.
	Concept EntityType = iota
	// Class is an entity that takes part in is-a relations or has instances.
	Class
	// Instance is an entity with at least one outgoing instance-of relation.
	Instance
)

var entityTypeNames = [...]string{"concept", "class", "instance"}

func (t EntityType) String() string {
	if int(t) >= 0 && int(t) < len(entityTypeNames) {
		return entityTypeNames[t]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t EntityType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *EntityType) UnmarshalText(b []byte) error {
	i := slices.Index(entityTypeNames[:], string(b))
	if i < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown entity type %q", b)
	}
	*t = EntityType(i)
	return nil
}

// NodeKind maps the entity type to the visual node tag.
func (t EntityType) NodeKind() scene.NodeKind {
	switch t {
	case Class:
		return scene.KindClass
	case Instance:
		return scene.KindInstance
	default:
		return scene.KindConcept
	}
}

// Entity is one node-worthy element of a snapshot.
type Entity struct {
	ID     string
	Label  string
	Type   EntityType
	Supers []string // Labels of direct superclasses and classes
}

// Detail returns the secondary label of an entity: its direct superclass
// and class labels, space separated.
func (e Entity) Detail() string { return strings.Join(e.Supers, " ") }

// Relation is a classified fact between two entities.
type Relation struct {
	ID    string
	From  string
	To    string
	Dir   scene.Direction
	Label string
	Kinds classify.Set
}

// SetKind names a per-entity relation set derived from the relations.
type SetKind int

const (
	Children SetKind = iota
	Parents
	Parts
	Wholes
	Endpoints
	Superclasses
	Subclasses
	Classes
	Instances
)

var setKindNames = [...]string{
	"children", "parents", "parts", "wholes", "endpoints",
	"superclasses", "subclasses", "classes", "instances",
}

func (k SetKind) String() string {
	if int(k) >= 0 && int(k) < len(setKindNames) {
		return setKindNames[k]
	}
	return "unknown"
}

// Snapshot is an immutable read of a model. Build one with [NewSnapshot].
type Snapshot struct {
	entities  []Entity
	relations []Relation
	byID      map[string]int
	sets      map[string]map[SetKind][]string
}

// NewSnapshot indexes entities and relations. Entities are ordered by id;
// relation order is preserved. Relation sets are derived from each
// relation's kinds:
//
//	hasA        from=parent   to=child
//	partOf      from=part     to=whole
//	isA         from=subclass to=superclass
//	instanceOf  from=instance to=class
//	connects    endpoints of each other
//
// NewSnapshot does not validate; call [Snapshot.Validate].
func NewSnapshot(entities []Entity, relations []Relation) *Snapshot {
	s := &Snapshot{
		entities:  slices.Clone(entities),
		relations: slices.Clone(relations),
		byID:      make(map[string]int, len(entities)),
		sets:      make(map[string]map[SetKind][]string),
	}
	slices.SortStableFunc(s.entities, func(a, b Entity) int { return cmp.Compare(a.ID, b.ID) })
	for i, e := range s.entities {
		if _, dup := s.byID[e.ID]; !dup {
			s.byID[e.ID] = i
		}
	}

	for _, r := range s.relations {
		if r.Kinds.Has(classify.Containment) {
			s.add(r.From, Children, r.To)
			s.add(r.To, Parents, r.From)
		}
		if r.Kinds.Has(classify.PartOf) {
			s.add(r.To, Parts, r.From)
			s.add(r.From, Wholes, r.To)
		}
		if r.Kinds.Has(classify.IsA) {
			s.add(r.From, Superclasses, r.To)
			s.add(r.To, Subclasses, r.From)
		}
		if r.Kinds.Has(classify.InstanceOf) {
			s.add(r.From, Classes, r.To)
			s.add(r.To, Instances, r.From)
		}
		if r.Kinds.Has(classify.Connects) {
			s.add(r.From, Endpoints, r.To)
			s.add(r.To, Endpoints, r.From)
		}
	}
	for _, bySet := range s.sets {
		for k, ids := range bySet {
			slices.Sort(ids)
			bySet[k] = slices.Compact(ids)
		}
	}
	return s
}

func (s *Snapshot) add(id string, k SetKind, other string) {
	bySet, ok := s.sets[id]
	if !ok {
		bySet = make(map[SetKind][]string)
		s.sets[id] = bySet
	}
	bySet[k] = append(bySet[k], other)
}

// Entities returns the entities ordered by id.
func (s *Snapshot) Entities() []Entity { return slices.Clone(s.entities) }

// Relations returns the classified relations.
func (s *Snapshot) Relations() []Relation { return slices.Clone(s.relations) }

// Entity looks up an entity by id.
func (s *Snapshot) Entity(id string) (Entity, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Entity{}, false
	}
	return s.entities[i], true
}

// Set returns the ids related to id by k, sorted.
func (s *Snapshot) Set(id string, k SetKind) []string {
	return slices.Clone(s.sets[id][k])
}

// Len returns the number of entities.
func (s *Snapshot) Len() int { return len(s.entities) }

// Validate checks structural validity: non-empty unique entity ids, unique
// relation ids, and relation endpoints that name entities. Failures are
// INVALID_SNAPSHOT errors.
func (s *Snapshot) Validate() error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidSnapshot, "nil snapshot")
	}
	for i, e := range s.entities {
		if e.ID == "" {
			return errors.New(errors.ErrCodeInvalidSnapshot, "entity %d has an empty id", i)
		}
		if i > 0 && s.entities[i-1].ID == e.ID {
			return errors.New(errors.ErrCodeInvalidSnapshot, "duplicate entity id %q", e.ID)
		}
	}
	seen := make(map[string]bool, len(s.relations))
	for _, r := range s.relations {
		if r.ID == "" {
			return errors.New(errors.ErrCodeInvalidSnapshot, "relation %s→%s has an empty id", r.From, r.To)
		}
		if seen[r.ID] {
			return errors.New(errors.ErrCodeInvalidSnapshot, "duplicate relation id %q", r.ID)
		}
		seen[r.ID] = true
		if _, ok := s.byID[r.From]; !ok {
			return errors.New(errors.ErrCodeInvalidSnapshot, "relation %q: unknown source %q", r.ID, r.From)
		}
		if _, ok := s.byID[r.To]; !ok {
			return errors.New(errors.ErrCodeInvalidSnapshot, "relation %q: unknown target %q", r.ID, r.To)
		}
	}
	return nil
}
