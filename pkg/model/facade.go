package model

import "github.com/matzehuels/hyperscene/pkg/classify"

// Facade is the read contract the scene core consumes.
type Facade interface {
	// Snapshot returns a point-in-time read of the model. An error
	// short-circuits the reconciliation pass that asked for it.
	Snapshot() (*Snapshot, error)
	// ClassifyRelation resolves a fact to every recognised kind it reaches.
	ClassifyRelation(id string) classify.Set
}

// Mutator is the set of atomic edits the editing layer routes to the model.
type Mutator interface {
	// Create adds a concept. An empty id is replaced by a generated one,
	// which is returned.
	Create(id, label string) (string, error)
	// Destroy removes a concept, definition or fact.
	Destroy(id string) error
	// Relabel changes the label of any element.
	Relabel(id, label string) error
	// Connect adds a fact relating from to to. An empty id is replaced by a
	// generated one, which is returned.
	Connect(from, to, relation, label string) (string, error)
}

// Store is a model that can be both read and edited.
type Store interface {
	Facade
	Mutator
}
