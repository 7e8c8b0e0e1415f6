package classify

import (
	"slices"

	"github.com/matzehuels/hyperscene/pkg/errors"
)

// Root relation ids recognised by [DefaultRoots].
const (
	RootHasA       = "hasA"
	RootPartOf     = "partOf"
	RootIsA        = "isA"
	RootInstanceOf = "instanceOf"
	RootConnects   = "connects"
)

// DefaultPriority is the edge precedence used when a pair of entities is
// related by more than one edge-producing kind.
var DefaultPriority = []Kind{PartOf, IsA, InstanceOf, Connects}

// Resolver answers the two questions classification needs from a model.
type Resolver interface {
	// IsFact reports whether id is a concrete relation instance rather than
	// a relation definition or a concept.
	IsFact(id string) bool
	// SuperRelations returns the relation ids that id directly specialises.
	// For a fact this is its relation; for a definition, its super-relations.
	SuperRelations(id string) []string
}

// Roots maps root relation ids to the kind they denote.
type Roots map[string]Kind

// DefaultRoots returns the built-in root relations.
func DefaultRoots() Roots {
	return Roots{
		RootHasA:       Containment,
		RootPartOf:     PartOf,
		RootIsA:        IsA,
		RootInstanceOf: InstanceOf,
		RootConnects:   Connects,
	}
}

// Classifier resolves facts to visual kinds.
// It holds no model state and is safe for concurrent use.
type Classifier struct {
	roots    Roots
	priority []Kind
}

// New creates a classifier. A nil priority selects [DefaultPriority].
// The priority must list each of PartOf, IsA, InstanceOf and Connects
// exactly once; anything else is an INVALID_PRIORITY error.
func New(roots Roots, priority []Kind) (*Classifier, error) {
	if roots == nil {
		roots = DefaultRoots()
	}
	if priority == nil {
		priority = DefaultPriority
	}
	if err := ValidatePriority(priority); err != nil {
		return nil, err
	}
	return &Classifier{roots: roots, priority: slices.Clone(priority)}, nil
}

// Default returns a classifier with the built-in roots and priority.
func Default() *Classifier {
	c, _ := New(nil, nil)
	return c
}

// ValidatePriority checks that p is a permutation of the edge kinds.
func ValidatePriority(p []Kind) error {
	want := NewSet(DefaultPriority...)
	if len(p) != len(want) {
		return errors.New(errors.ErrCodeInvalidPriority, "priority must list %d kinds, got %d", len(want), len(p))
	}
	seen := Set{}
	for _, k := range p {
		if !want.Has(k) {
			return errors.New(errors.ErrCodeInvalidPriority, "kind %s cannot be prioritised", k)
		}
		if seen.Has(k) {
			return errors.New(errors.ErrCodeInvalidPriority, "kind %s listed twice", k)
		}
		seen.Add(k)
	}
	return nil
}

// ParsePriority parses kind names into a validated priority list.
func ParsePriority(names []string) ([]Kind, error) {
	out := make([]Kind, 0, len(names))
	for _, n := range names {
		k, ok := ParseKind(n)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidPriority, "unknown relation kind %q", n)
		}
		out = append(out, k)
	}
	if err := ValidatePriority(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Priority returns a copy of the edge precedence.
func (c *Classifier) Priority() []Kind { return slices.Clone(c.priority) }

// Root returns the kind of a root relation id.
func (c *Classifier) Root(id string) (Kind, bool) {
	k, ok := c.roots[id]
	return k, ok
}

// Kinds returns every recognised kind reachable from fact id by following
// super-relation links upward. Expansion stops at roots. Definitions and
// unknown ids yield an empty set; cyclic sub-relation links are tolerated.
func (c *Classifier) Kinds(id string, r Resolver) Set {
	out := Set{}
	if !r.IsFact(id) {
		return out
	}

	visited := map[string]bool{id: true}
	queue := slices.Clone(r.SuperRelations(id))
	for len(queue) > 0 {
		rel := queue[0]
		queue = queue[1:]
		if visited[rel] {
			continue
		}
		visited[rel] = true

		if k, ok := c.roots[rel]; ok {
			out.Add(k)
			continue
		}
		queue = append(queue, r.SuperRelations(rel)...)
	}
	return out
}

// Classify returns the single kind a fact is drawn with: the edge kind
// winning the priority order, else Containment, else None.
func (c *Classifier) Classify(id string, r Resolver) Kind {
	contain, edge := c.Resolve(c.Kinds(id, r))
	if edge != None {
		return edge
	}
	if contain {
		return Containment
	}
	return None
}

// Resolve applies the tie-break to the kinds relating one entity pair.
// Containment is reported independently; edge is the highest-priority
// edge kind present, or None.
func (c *Classifier) Resolve(kinds Set) (contain bool, edge Kind) {
	contain = kinds.Has(Containment)
	for _, k := range c.priority {
		if kinds.Has(k) {
			return contain, k
		}
	}
	return contain, None
}
