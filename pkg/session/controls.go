package session

import (
	"github.com/matzehuels/hyperscene/pkg/errors"
	"github.com/matzehuels/hyperscene/pkg/reconcile"
)

// SetLayoutEnabled starts or stops layout ticks.
func (s *Session) SetLayoutEnabled(on bool) { s.sim.SetEnabled(on) }

// LayoutEnabled reports whether layout ticks move nodes.
func (s *Session) LayoutEnabled() bool { return s.sim.Enabled() }

// SetEquilibriumDistance changes the layout spacing from the next tick on.
// Non-positive values are ignored.
func (s *Session) SetEquilibriumDistance(eq float64) {
	s.sim.SetEquilibriumDistance(eq)
	s.engine.SetEquilibrium(eq)
}

// EquilibriumDistance returns the layout spacing.
func (s *Session) EquilibriumDistance() float64 { return s.sim.EquilibriumDistance() }

// Filters returns the display filters.
func (s *Session) Filters() reconcile.Filters { return s.filters }

// SetFilters replaces the display filters and reconciles.
func (s *Session) SetFilters(f reconcile.Filters) error {
	if f == s.filters {
		return nil
	}
	s.filters = f
	_, err := s.Refresh()
	return err
}

// ShowClasses toggles class nodes.
func (s *Session) ShowClasses(on bool) error {
	f := s.filters
	f.ShowClasses = on
	return s.SetFilters(f)
}

// ShowInstances toggles instance nodes.
func (s *Session) ShowInstances(on bool) error {
	f := s.filters
	f.ShowInstances = on
	return s.SetFilters(f)
}

// ShowConcepts toggles nodes without taxonomic relations.
func (s *Session) ShowConcepts(on bool) error {
	f := s.filters
	f.ShowConcepts = on
	return s.SetFilters(f)
}

// Select highlights node id. It reports whether the node exists.
func (s *Session) Select(id string) bool {
	n, ok := s.reg.Node(id)
	if ok {
		n.Selected = true
	}
	return ok
}

// Deselect clears the highlight of node id.
func (s *Session) Deselect(id string) {
	if n, ok := s.reg.Node(id); ok {
		n.Selected = false
	}
}

// ToggleSelect flips the highlight of node id and returns the new state.
func (s *Session) ToggleSelect(id string) bool {
	n, ok := s.reg.Node(id)
	if !ok {
		return false
	}
	n.Selected = !n.Selected
	return n.Selected
}

// ClearSelection deselects every node.
func (s *Session) ClearSelection() {
	for _, n := range s.reg.Selected() {
		n.Selected = false
	}
}

// Selection returns the selected node ids in ascending order.
func (s *Session) Selection() []string {
	sel := s.reg.Selected()
	ids := make([]string, len(sel))
	for i, n := range sel {
		ids[i] = n.ID
	}
	return ids
}

// DestroySelected removes every selected element from the model and
// reconciles once. It returns the number removed and the first error.
func (s *Session) DestroySelected() (int, error) {
	return s.eachSelected(s.model.Destroy)
}

// RelabelSelected gives every selected element the same label and
// reconciles once.
func (s *Session) RelabelSelected(label string) (int, error) {
	return s.eachSelected(func(id string) error { return s.model.Relabel(id, label) })
}

func (s *Session) eachSelected(fn func(id string) error) (int, error) {
	ids := s.Selection()
	if len(ids) == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "nothing selected")
	}
	done := 0
	var first error
	for _, id := range ids {
		if err := fn(id); err != nil {
			if first == nil {
				first = err
			}
			continue
		}
		done++
	}
	if done > 0 {
		_, _ = s.Refresh()
	}
	return done, first
}
