// Package classify maps semantic relation kinds to visual treatments.
//
// A concrete relation instance (a fact) is classified by walking its
// super-relation links upward, through any number of user-defined
// sub-relations, until one or more recognised root relations are reached.
// Each root corresponds to a [Kind]:
//
//	hasA       → Containment  (child nested inside parent, no line)
//	partOf     → PartOf       (dotted straight edge, part → whole)
//	isA        → IsA          (solid straight edge, subclass → superclass)
//	instanceOf → InstanceOf   (dashed straight edge, instance → class)
//	connects   → Connects     (solid curved edge, endpoint → endpoint)
//
// Relation definitions themselves are never classified: [Classifier.Kinds]
// returns an empty [Set] for anything the [Resolver] does not report as a
// fact.
//
// # Tie-break
//
// When a pair of entities is related by several kinds at once, Containment
// is always applied and at most one of the remaining kinds produces an edge:
// the first in the classifier's priority order (default PartOf > IsA >
// InstanceOf > Connects). The order is configurable through [New].
//
//	c := classify.Default()
//	kinds := c.Kinds(factID, store)
//	contain, edge := c.Resolve(kinds)
package classify
