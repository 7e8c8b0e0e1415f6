// Package session ties a model, a reconciliation engine, a layout simulator
// and a scene registry into one editing session.
//
// A Session is what a host loop drives. It is not safe for concurrent use:
// exactly one goroutine (a bubbletea Update loop, an HTTP server's event
// loop, or plain sequential code) calls into it.
//
// # Mutations
//
// Create, Destroy, Relabel and Connect forward to the model and then
// reconcile. A mutation issued while a pass is running, typically from an
// event subscriber, does not start a nested pass: the session marks itself
// dirty and runs one more pass after the current one returns.
//
// # Selection
//
// Selected nodes are frozen by the layout and are the targets of
// [Session.DestroySelected] and [Session.RelabelSelected].
//
// # Positions
//
// With a position cache configured, [Session.SavePositions] stores every
// node's position and [Session.RestorePositions] puts them back, so a model
// reopens in the arrangement it was left in.
package session
