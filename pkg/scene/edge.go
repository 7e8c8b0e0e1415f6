package scene

import (
	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
)

// Direction records which way a logical relation points relative to the
// edge's source node.
type Direction int

const (
	// To means the relation reads source → target.
	To Direction = iota
	// From means the relation reads target → source.
	From
)

func (d Direction) String() string {
	if d == From {
		return "from"
	}
	return "to"
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	switch string(b) {
	case "to":
		*d = To
	case "from":
		*d = From
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown direction %q", b)
	}
	return nil
}

// Edge is a visual line between two nodes. At most one edge exists per
// (Source, Target, Kind); [Registry.Connect] enforces this. Dir is taken
// from the first relation that created the edge.
type Edge struct {
	Source *Node
	Target *Node
	Dir    Direction
	Kind   classify.Kind
	Style  classify.Style
}

// Key identifies the edge by endpoint ids and kind.
func (e *Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source.ID, Target: e.Target.ID, Kind: e.Kind}
}

// EdgeKey is the identity of an edge independent of its pointer.
type EdgeKey struct {
	Source string
	Target string
	Kind   classify.Kind
}
