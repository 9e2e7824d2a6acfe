// Package component defines the unit descriptor: the identity, declared
// metadata, dependency edges, and accumulated load status of one
// discovered component.
//
// Descriptors are inert records. All mutation (wiring edges, noting
// missing dependencies, accumulating status flags) is driven by the
// loader package; everything else is read accessors intended for
// diagnostics and inspection surfaces.
package component
