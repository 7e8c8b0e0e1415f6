// Package pkg provides the core libraries for Hyperscene concept-graph scenes.
//
// # Overview
//
// Hyperscene keeps a visual scene in step with a concept graph or ontology
// and arranges it with a force-directed layout. A model holds concepts,
// relation definitions and facts; the scene holds one node per visible
// entity, with part-whole facts drawn as nesting instead of edges. The pkg
// directory is organized into these areas:
//
//  1. [model] - The logical model (concepts, relation definitions, facts)
//  2. [classify] - Mapping relation definitions onto the built-in root kinds
//  3. [scene] - Nodes, edges and containment of the visual scene
//  4. [reconcile] - Bringing a scene in line with a model snapshot
//  5. [layout] - The force-directed simulator
//  6. [session] - One editing session tying the pieces together
//  7. [render] - DOT, SVG, PDF and PNG output
//  8. [cache] - Position and artifact caches (file, Redis, null)
//
// # Architecture
//
// The typical data flow:
//
//	YAML model / edits
//	         ↓
//	    [model] package (snapshot)
//	         ↓
//	    [reconcile] package (diff snapshot against scene)
//	         ↓
//	    [layout] package (tick until settled)
//	         ↓
//	    [render] package (DOT → SVG/PDF/PNG)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/hyperscene/pkg/model"
//	    "github.com/matzehuels/hyperscene/pkg/render"
//	    "github.com/matzehuels/hyperscene/pkg/session"
//	)
//
//	// 1. Load a model
//	m, _ := model.LoadFile("vehicles.yaml")
//
//	// 2. Open a session; the scene is reconciled right away
//	sess := session.New(m)
//
//	// 3. Settle the layout
//	sess.SetLayoutEnabled(true)
//	sess.Simulator().Run(sess.Registry(), 500, 0.01)
//
//	// 4. Render
//	dot := render.ToDOT(sess.Registry(), render.Options{})
//	svg, _ := render.RenderSVG(context.Background(), dot, render.EngineNeato)
//
// # Editing
//
// Mutations go through the session, which refreshes the scene afterwards:
//
//	sess.Create("wheel", "Wheel")
//	sess.Connect("wheel", "car", "partOf", "")
//	sess.ShowInstances(false)
//
// A refresh that fires while another is running is deferred and folded
// into it, so subscribers may edit the model from event callbacks.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/reconcile/...          # Specific package
//	go test -run Example                 # Examples only
//
// [model]: https://pkg.go.dev/github.com/matzehuels/hyperscene/pkg/model
// [classify]: https://pkg.go.dev/github.com/matzehuels/hyperscene/pkg/classify
// [scene]: https://pkg.go.dev/github.com/matzehuels/hyperscene/pkg/scene
// [reconcile]: https://pkg.go.dev/github.com/matzehuels/hyperscene/pkg/reconcile
// [layout]: https://pkg.go.dev/github.com/matzehuels/hyperscene/pkg/layout
// [session]: https://pkg.go.dev/github.com/matzehuels/hyperscene/pkg/session
// [render]: https://pkg.go.dev/github.com/matzehuels/hyperscene/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/hyperscene/pkg/cache
package pkg
