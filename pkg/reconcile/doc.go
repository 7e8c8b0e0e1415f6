// Package reconcile keeps a visual scene consistent with a logical model.
//
// An [Engine] diffs the nodes and edges in a caller-owned [scene.Registry]
// against a fresh [model.Snapshot]. Each pass:
//
//  1. computes the valid set: snapshot entities passing the [Filters]
//  2. creates a node for every valid entity not yet registered, placed by
//     the engine's [Placement] and random source, and refreshes label,
//     detail and kind of the others
//  3. applies relations between valid entities, grouped per unordered pair:
//     containment nests the child (guarded against cycles); among the edge
//     kinds only the highest by the classifier's priority draws edges
//  4. removes every registered node whose id left the valid set: edges
//     first, then children are released, then the node itself
//
// Passes are idempotent: reconciling an unchanged snapshot twice produces no
// changes on the second pass. Stale references, self relations and
// rejected reparenting are absorbed silently.
//
// Subscribers registered with [Engine.Subscribe] receive one [Event] per
// change, synchronously, after the pass has finished mutating the registry.
package reconcile
