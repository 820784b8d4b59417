// Package view implements the Lookup View: the interaction state of a
// single URL search box, the transition function that drives it, and a
// controller that issues lookups.
//
// The search lifecycle is Idle -> Searching -> {Resolved, Failed}. Resolved
// and Failed are quiescent; they differ from Idle only in whether a result
// is present. Transitions are computed by Reduce, a pure function over
// State and Event, so the state machine can be tested without a renderer
// or a network.
//
// Overlapping searches are allowed. What happens to a response that arrives
// after a newer search was issued is decided by StalePolicy:
//   - LastWriteWins applies every response in completion order.
//   - LatestOnly cancels the superseded request and drops its response.
//
// A failed lookup is logged and leaves no result. No error message is
// rendered to the user; State.LastErr keeps the cause for diagnostics.
package view
