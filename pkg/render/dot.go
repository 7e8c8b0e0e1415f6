package render

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/scene"
)

// DefaultScale converts scene units (treated as points) to DOT inches.
const DefaultScale = 1.0 / 72

// Options configures DOT export.
type Options struct {
	// Detailed adds the node's secondary label (superclass names) under
	// its main label.
	Detailed bool
	// Unpinned omits node positions and lets Graphviz lay the graph out.
	Unpinned bool
	// Scale multiplies scene coordinates into inches. Zero means DefaultScale.
	Scale float64
}

func (o Options) scale() float64 {
	if o.Scale > 0 {
		return o.Scale
	}
	return DefaultScale
}

// ToDOT converts the visible part of reg to Graphviz DOT. Output is
// deterministic: nodes are written in id order, edges sorted by key.
func ToDOT(reg *scene.Registry, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  overlap=false;\n")
	fmt.Fprintf(&buf, "  splines=%s;\n", splines(reg))
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("\n")

	for _, n := range reg.Nodes() {
		if n.IsTopLevel() {
			writeNode(&buf, n, opts, 1)
		}
	}

	edges := visibleEdges(reg)
	if len(edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range edges {
		attrs := edgeAttrs(e)
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source.ID, e.Target.ID)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source.ID, e.Target.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func splines(reg *scene.Registry) string {
	for _, e := range reg.Edges() {
		if e.Style == classify.SolidCurved {
			return "true"
		}
	}
	return "line"
}

// writeNode writes n, and for a node with visible children a cluster
// holding n and its subtree.
func writeNode(buf *bytes.Buffer, n *scene.Node, opts Options, depth int) {
	if !n.Visible {
		return
	}
	indent := strings.Repeat("  ", depth)
	children := visibleChildren(n)
	if len(children) == 0 {
		fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(nodeAttrs(n, opts), ", "))
		return
	}

	fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+n.ID)
	fmt.Fprintf(buf, "%s  style=\"rounded,dashed\";\n", indent)
	fmt.Fprintf(buf, "%s  label=\"\";\n", indent)
	fmt.Fprintf(buf, "%s  %q [%s];\n", indent, n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	for _, c := range children {
		writeNode(buf, c, opts, depth+1)
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}

func visibleChildren(n *scene.Node) []*scene.Node {
	kids := slices.DeleteFunc(n.Children(), func(c *scene.Node) bool { return !c.Visible })
	slices.SortFunc(kids, func(a, b *scene.Node) int { return cmp.Compare(a.ID, b.ID) })
	return kids
}

// shown reports whether n and all its ancestors are visible.
func shown(n *scene.Node) bool {
	for ; n != nil; n = n.Parent() {
		if !n.Visible {
			return false
		}
	}
	return true
}

func visibleEdges(reg *scene.Registry) []*scene.Edge {
	edges := slices.DeleteFunc(reg.Edges(), func(e *scene.Edge) bool {
		return !shown(e.Source) || !shown(e.Target)
	})
	slices.SortFunc(edges, func(a, b *scene.Edge) int {
		ka, kb := a.Key(), b.Key()
		return cmp.Or(
			cmp.Compare(ka.Source, kb.Source),
			cmp.Compare(ka.Target, kb.Target),
			cmp.Compare(ka.Kind, kb.Kind),
		)
	})
	return edges
}

func fmtLabel(n *scene.Node, detailed bool) string {
	label := n.Label
	if label == "" {
		label = n.ID
	}
	if detailed && n.Detail != "" {
		label += "\n" + n.Detail
	}
	return label
}

func nodeAttrs(n *scene.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
	switch n.Kind {
	case scene.KindClass:
		attrs = append(attrs, "fillcolor=\"#e8f0fe\"")
	case scene.KindInstance:
		attrs = append(attrs, "shape=ellipse", "style=filled", "fillcolor=\"#fef7e0\"")
	case scene.KindRelation:
		attrs = append(attrs, "shape=diamond", "style=filled")
	case scene.KindConnector:
		attrs = append(attrs, "shape=point", "width=0.1")
	case scene.KindContainer:
		attrs = append(attrs, "style=\"rounded,filled,bold\"")
	}
	if n.Selected {
		attrs = append(attrs, "penwidth=3", "color=\"#1a73e8\"")
	}
	if !opts.Unpinned {
		p := n.ScenePos()
		s := opts.scale()
		// Scene y grows downward, DOT y upward.
		attrs = append(attrs, fmt.Sprintf("pos=\"%.3f,%.3f!\"", p.X*s, -p.Y*s))
	}
	return attrs
}

func edgeAttrs(e *scene.Edge) []string {
	var attrs []string
	switch e.Style {
	case classify.DashedStraight:
		attrs = append(attrs, "style=dashed")
	case classify.DottedStraight:
		attrs = append(attrs, "style=dotted")
	}
	switch e.Kind {
	case classify.PartOf:
		attrs = append(attrs, "arrowhead=odiamond")
	case classify.IsA, classify.InstanceOf:
		attrs = append(attrs, "arrowhead=empty")
	}
	if e.Dir == scene.From {
		attrs = append(attrs, "dir=back")
	}
	return attrs
}
