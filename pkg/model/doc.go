// Package model is the logical side of a hypergraph view.
//
// It defines the contract the scene core consumes ([Facade], [Mutator],
// [Snapshot]) and ships one implementation, [Memory], an in-process concept
// graph with relation definitions and facts.
//
// # Concepts, definitions and facts
//
// A concept is an entity that can appear as a node. A relation definition
// names a kind of relation and lists the definitions it specialises; the
// built-in roots hasA, partOf, isA, instanceOf and connects terminate every
// chain. A fact is a concrete relation instance between two concepts.
//
// Only facts become visual edges. The classifier walks a fact's relation up
// through the definition chain and reports which roots it reaches:
//
//	m := model.NewMemory()
//	_ = m.Define("wheelOf", "wheel of", classify.RootPartOf)
//	_, _ = m.Create("car", "Car")
//	_, _ = m.Create("wheel", "Wheel")
//	id, _ := m.Connect("wheel", "car", "wheelOf", "")
//	m.ClassifyRelation(id) // {partOf}
//
// # Snapshots
//
// [Memory.Snapshot] returns an immutable read of the model: entities ordered
// by id, classified relations, and per-entity relation sets keyed by
// [SetKind]. The reconciliation engine consumes one snapshot per pass.
//
// Model files are YAML; see [Load] and [Memory.Save].
package model
