package reconcile

import (
	"fmt"

	"github.com/matzehuels/hyperscene/pkg/scene"
)

// EventType identifies a scene change.
type EventType int

const (
	NodeCreated EventType = iota
	NodeRemoved
	EdgeCreated
	EdgeRemoved
)

var eventTypeNames = [...]string{"node-created", "node-removed", "edge-created", "edge-removed"}

func (t EventType) String() string {
	if int(t) >= 0 && int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t EventType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// Event is one scene change. Node is set for node events, Edge for edge
// events. Removed nodes and edges are already detached from the registry.
type Event struct {
	Type EventType
	Node *scene.Node
	Edge *scene.Edge
}

func (e Event) String() string {
	switch {
	case e.Node != nil:
		return fmt.Sprintf("%s %s", e.Type, e.Node.ID)
	case e.Edge != nil:
		return fmt.Sprintf("%s %s→%s (%s)", e.Type, e.Edge.Source.ID, e.Edge.Target.ID, e.Edge.Kind)
	}
	return e.Type.String()
}

// Changes counts what a pass did.
type Changes struct {
	NodesCreated int `json:"nodes_created"`
	NodesRemoved int `json:"nodes_removed"`
	EdgesCreated int `json:"edges_created"`
	EdgesRemoved int `json:"edges_removed"`
	Reparented   int `json:"reparented"`
	Released     int `json:"released"`
}

// Empty reports whether the pass changed nothing.
func (c Changes) Empty() bool { return c == Changes{} }

// Add accumulates o into c.
func (c *Changes) Add(o Changes) {
	c.NodesCreated += o.NodesCreated
	c.NodesRemoved += o.NodesRemoved
	c.EdgesCreated += o.EdgesCreated
	c.EdgesRemoved += o.EdgesRemoved
	c.Reparented += o.Reparented
	c.Released += o.Released
}
