package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/hyperscene/pkg/cache"
	"github.com/matzehuels/hyperscene/pkg/scene"
)

// Position is a saved node position. Nested nodes store coordinates in
// their parent's frame and the parent id.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Parent string  `json:"parent,omitempty"`
}

// Positions maps node ids to saved positions.
type Positions map[string]Position

// Capture records the position of every node in reg.
func Capture(reg *scene.Registry) Positions {
	out := make(Positions, reg.Len())
	for _, n := range reg.Nodes() {
		p := Position{X: n.Pos.X, Y: n.Pos.Y}
		if parent := n.Parent(); parent != nil {
			p.Parent = parent.ID
		}
		out[n.ID] = p
	}
	return out
}

// Apply moves nodes of reg to their saved positions. A saved position is
// used only when the node still has the same parent, so the coordinate
// frame matches. It returns the number of nodes moved.
func (ps Positions) Apply(reg *scene.Registry) int {
	moved := 0
	for _, n := range reg.Nodes() {
		p, ok := ps[n.ID]
		if !ok {
			continue
		}
		parent := ""
		if n.Parent() != nil {
			parent = n.Parent().ID
		}
		if parent != p.Parent {
			continue
		}
		pos := scene.Vec{X: p.X, Y: p.Y}
		if !pos.IsFinite() {
			continue
		}
		n.Pos = pos
		moved++
	}
	return moved
}

func (s *Session) positionsKey() string {
	return s.keyer.PositionsKey(cache.Hash([]byte(s.modelKey)), cache.PositionKeyOpts{
		ShowClasses:   s.filters.ShowClasses,
		ShowInstances: s.filters.ShowInstances,
		ShowConcepts:  s.filters.ShowConcepts,
	})
}

// SavePositions stores the current positions in the position cache.
// It is a no-op without one.
func (s *Session) SavePositions(ctx context.Context) error {
	if s.positions == nil {
		return nil
	}
	if err := cache.SetJSON(ctx, s.positions, s.positionsKey(), Capture(s.reg), s.ttl); err != nil {
		return fmt.Errorf("save positions: %w", err)
	}
	s.logger.Debug("saved positions", "nodes", s.reg.Len())
	return nil
}

// RestorePositions loads positions from the position cache and applies
// them. A cache miss restores nothing and is not an error.
func (s *Session) RestorePositions(ctx context.Context) (int, error) {
	if s.positions == nil {
		return 0, nil
	}
	var ps Positions
	err := cache.GetJSON(ctx, s.positions, s.positionsKey(), &ps)
	if errors.Is(err, cache.ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("restore positions: %w", err)
	}
	n := ps.Apply(s.reg)
	s.logger.Debug("restored positions", "nodes", n)
	return n, nil
}
