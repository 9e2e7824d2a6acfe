// Package loader orchestrates the component load protocol: it owns the
// set of discovered descriptors, wires declared dependency names into
// graph edges, computes a dependency-first load order, activates each
// component through an open capability, and sequences lifecycle
// callbacks across the loaded set.
//
// A load run never fails as a whole. Every per-component problem (an
// unresolved dependency name, a version below the declared minimum, a
// gate veto, an open failure, a missing contract) is recorded as a
// status flag on that component's descriptor and the run moves on, so
// one broken unit cannot take down an otherwise healthy set. Callers
// inspect the descriptors afterwards to see exactly what loaded and why
// the rest did not.
//
// The protocol runs in six steps:
//
//  1. wire declared dependency names against the known set
//  2. resolve the global load order (dependencies first, cycles
//     tolerated)
//  3. activate each component in order: validate dependencies, consult
//     the gate, open, probe for the unit contract
//  4. call Initialise on every loaded unit in load order
//  5. call InitialisationFinished in reverse load order
//  6. on Close, call Finalise and release handles in reverse load order
//
// Loaders are single-threaded by contract: populate with Add, run Load
// once, tear down with Close, all from one goroutine.
package loader
