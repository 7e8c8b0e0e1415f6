// Package render exports a scene as Graphviz DOT and renders it.
//
// [ToDOT] writes every visible node at its current scene position, pinned
// with pos="x,y!", so Graphviz draws the arrangement the layout simulator
// produced instead of computing its own. Containment becomes nested
// clusters. Edge kinds map to line styles and arrowheads:
//
//	partOf      dotted, open diamond at the whole
//	isA         solid, empty arrow at the superclass
//	instanceOf  dashed, empty arrow at the class
//	connects    solid spline, normal arrow
//
// [RenderSVG] runs the DOT source through github.com/goccy/go-graphviz
// in-process; [Render] adds PDF and PNG output via rsvg-convert.
//
//	dot := render.ToDOT(sess.Registry(), render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot, render.EngineFDP)
package render
