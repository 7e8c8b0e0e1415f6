// Package scene holds the visual side of a hypergraph view: nodes, edges and
// the caller-owned [Registry] that indexes them by logical id.
//
// The registry is the only place topology changes. Containment (one node
// drawn inside another) and edges are both maintained here so that every
// mutation keeps the two structural invariants:
//
//   - each logical id maps to at most one node
//   - no node is its own containment ancestor
//
// Positions are stored relative to the containment parent. A top-level
// node's [Node.Pos] is in scene coordinates; [Node.ScenePos] resolves any
// node to scene coordinates by walking up its ancestors.
//
// Nothing here is safe for concurrent use. A registry is owned by exactly one
// host loop, which hands it to the reconciliation engine and the layout
// simulator in turn.
package scene
