// Package layout positions scene nodes by force-directed relaxation.
//
// [Tick] is a pure step: given nodes, edges and a set of frozen ids, it sums
// forces and moves every non-excluded top-level node. Two forces act:
//
//   - repulsion between every unordered pair of top-level nodes, magnitude
//     eq³/|d|², ignored beyond 10·eq
//   - attraction along every edge between the endpoints' top-level
//     ancestors, (1 − eq/|d|)·d/N, which pulls connected nodes towards the
//     equilibrium distance eq
//
// Nested nodes never move on their own; their position is relative to their
// parent and follows it.
//
// The relaxation does not converge to a fixed point. It settles into a
// low-amplitude oscillation and is meant to run for as long as it is
// enabled. The package owns no timer: hosts call [Simulator.Step] at their
// own cadence (25 Hz is the reference rate).
package layout
