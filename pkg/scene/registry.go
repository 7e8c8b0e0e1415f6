package scene

import (
	"maps"
	"slices"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/errors"
)

// Registry is the explicit id → node index of a scene, plus its edge set.
//
// The zero value is not usable; call [NewRegistry]. Operations on nodes that
// are not registered are silent no-ops: a stale reference never panics and
// never errors.
type Registry struct {
	nodes map[string]*Node
	edges []*Edge
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*Node)}
}

// Add registers n. It fails with INVALID_INPUT for an empty id and
// DUPLICATE_ID if the id is taken.
func (r *Registry) Add(n *Node) error {
	if n == nil || n.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "node id must not be empty")
	}
	if _, ok := r.nodes[n.ID]; ok {
		return errors.New(errors.ErrCodeDuplicateID, "node %q already registered", n.ID)
	}
	r.nodes[n.ID] = n
	return nil
}

// Node returns the node registered under id.
func (r *Registry) Node(id string) (*Node, bool) {
	n, ok := r.nodes[id]
	return n, ok
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.nodes[id]
	return ok
}

// IDs returns the registered ids in ascending order.
func (r *Registry) IDs() []string {
	return slices.Sorted(maps.Keys(r.nodes))
}

// Nodes returns every node ordered by id.
func (r *Registry) Nodes() []*Node {
	ids := r.IDs()
	out := make([]*Node, len(ids))
	for i, id := range ids {
		out[i] = r.nodes[id]
	}
	return out
}

// Edges returns every edge in creation order.
func (r *Registry) Edges() []*Edge { return slices.Clone(r.edges) }

// Len returns the number of nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// EdgeCount returns the number of edges.
func (r *Registry) EdgeCount() int { return len(r.edges) }

// Selected returns the selected nodes ordered by id.
func (r *Registry) Selected() []*Node {
	var out []*Node
	for _, n := range r.Nodes() {
		if n.Selected {
			out = append(out, n)
		}
	}
	return out
}

func (r *Registry) owns(n *Node) bool {
	return n != nil && r.nodes[n.ID] == n
}

// Connect creates an edge src → dst unless one with the same target and
// kind is already incident to src, whatever its direction. The existing edge is found
// by scanning src's incident edges. It returns the edge (new or existing) and
// whether it was created. Self edges and unregistered endpoints yield
// (nil, false).
func (r *Registry) Connect(src, dst *Node, dir Direction, kind classify.Kind, style classify.Style) (*Edge, bool) {
	if src == dst || !r.owns(src) || !r.owns(dst) {
		return nil, false
	}
	if e := src.findEdge(dst, kind); e != nil {
		return e, false
	}
	e := &Edge{Source: src, Target: dst, Dir: dir, Kind: kind, Style: style}
	src.edges = append(src.edges, e)
	dst.edges = append(dst.edges, e)
	r.edges = append(r.edges, e)
	return e, true
}

// Disconnect removes e from both endpoints and from the edge set.
// It reports whether e was present.
func (r *Registry) Disconnect(e *Edge) bool {
	if e == nil {
		return false
	}
	n := len(r.edges)
	r.edges = slices.DeleteFunc(r.edges, func(x *Edge) bool { return x == e })
	if len(r.edges) == n {
		return false
	}
	e.Source.dropEdge(e)
	e.Target.dropEdge(e)
	return true
}

// SetParent nests child inside parent. It is rejected (returning false, with
// topology unchanged) when child already has a parent, when child == parent,
// or when parent is a descendant of child. The child's position is converted
// into parent-local coordinates so it does not jump on screen.
func (r *Registry) SetParent(child, parent *Node) bool {
	if child == parent || !r.owns(child) || !r.owns(parent) {
		return false
	}
	if child.parent != nil || child.IsAncestorOf(parent) {
		return false
	}
	child.Pos = child.ScenePos().Sub(parent.ScenePos())
	child.parent = parent
	parent.children = append(parent.children, child)
	return true
}

// Release moves child back to top-level, converting its position to scene
// coordinates. It reports whether child had a parent.
func (r *Registry) Release(child *Node) bool {
	if child == nil || child.parent == nil {
		return false
	}
	child.Pos = child.ScenePos()
	child.parent.dropChild(child)
	child.parent = nil
	return true
}

// Remove deletes the node registered under id. Incident edges are detached
// first, then children are released to top-level, then the node itself is
// unlinked from its own parent and dropped. It returns the removed node and
// the detached edges.
func (r *Registry) Remove(id string) (*Node, []*Edge, bool) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, nil, false
	}
	detached := n.Edges()
	for _, e := range detached {
		r.Disconnect(e)
	}
	for _, c := range n.Children() {
		r.Release(c)
	}
	r.Release(n)
	delete(r.nodes, id)
	return n, detached, true
}
