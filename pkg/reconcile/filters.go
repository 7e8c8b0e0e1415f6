package reconcile

import "github.com/matzehuels/hyperscene/pkg/model"

// Filters are the display toggles deciding which entities are valid.
type Filters struct {
	ShowClasses   bool
	ShowInstances bool
	ShowConcepts  bool
}

// DefaultFilters shows everything.
func DefaultFilters() Filters {
	return Filters{ShowClasses: true, ShowInstances: true, ShowConcepts: true}
}

// Allows reports whether e passes the filters.
func (f Filters) Allows(e model.Entity) bool {
	switch e.Type {
	case model.Class:
		return f.ShowClasses
	case model.Instance:
		return f.ShowInstances
	default:
		return f.ShowConcepts
	}
}
