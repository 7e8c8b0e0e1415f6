package scene

import (
	"slices"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
)

// NodeKind tags the visual treatment of a node. A single record carries the
// tag; rendering dispatches on it.
type NodeKind int

const (
	// KindConcept is a plain concept-graph node.
	KindConcept NodeKind = iota
	// KindRelation is a relation definition shown as a node.
	KindRelation
	// KindClass is an ontology class.
	KindClass
	// KindInstance is an instance of one or more classes.
	KindInstance
	// KindContainer is a node that currently nests others.
	KindContainer
	// KindConnector is a hyperedge connector.
	KindConnector
)

var nodeKindNames = [...]string{"concept", "relation", "class", "instance", "container", "connector"}

func (k NodeKind) String() string {
	if int(k) >= 0 && int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k NodeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *NodeKind) UnmarshalText(b []byte) error {
	i := slices.Index(nodeKindNames[:], string(b))
	if i < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unknown node kind %q", b)
	}
	*k = NodeKind(i)
	return nil
}

// Node is the visual representation of one logical entity.
//
// Topology fields (parent, children, edges) are private; they change only
// through [Registry] so the containment and edge invariants hold.
type Node struct {
	ID     string   // Logical model id
	Label  string   // Display label
	Detail string   // Secondary label, e.g. superclass names
	Kind   NodeKind // Visual treatment
	Pos    Vec      // Relative to parent; scene coordinates when top-level

	Visible  bool
	Selected bool

	parent   *Node
	children []*Node
	edges    []*Edge
}

// NewNode returns a visible node at pos.
func NewNode(id, label string, kind NodeKind, pos Vec) *Node {
	return &Node{ID: id, Label: label, Kind: kind, Pos: pos, Visible: true}
}

// Parent returns the containment parent, or nil for top-level nodes.
func (n *Node) Parent() *Node { return n.parent }

// IsTopLevel reports whether n has no containment parent.
func (n *Node) IsTopLevel() bool { return n.parent == nil }

// Children returns a copy of the directly nested nodes.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Edges returns a copy of the incident edges.
func (n *Node) Edges() []*Edge { return slices.Clone(n.edges) }

// Root returns the top-level containment ancestor of n (n itself if top-level).
func (n *Node) Root() *Node {
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// ScenePos returns the position of n in scene coordinates.
func (n *Node) ScenePos() Vec {
	p := n.Pos
	for a := n.parent; a != nil; a = a.parent {
		p = p.Add(a.Pos)
	}
	return p
}

// IsAncestorOf reports whether n is a strict containment ancestor of o.
func (n *Node) IsAncestorOf(o *Node) bool {
	for a := o.parent; a != nil; a = a.parent {
		if a == n {
			return true
		}
	}
	return false
}

// Depth returns the number of containment ancestors.
func (n *Node) Depth() int {
	d := 0
	for a := n.parent; a != nil; a = a.parent {
		d++
	}
	return d
}

func (n *Node) findEdge(target *Node, kind classify.Kind) *Edge {
	for _, e := range n.edges {
		if e.Source == n && e.Target == target && e.Kind == kind {
			return e
		}
	}
	return nil
}

func (n *Node) dropEdge(e *Edge) {
	n.edges = slices.DeleteFunc(n.edges, func(x *Edge) bool { return x == e })
}

func (n *Node) dropChild(c *Node) {
	n.children = slices.DeleteFunc(n.children, func(x *Node) bool { return x == c })
}
