package loader

import (
	"context"

	"github.com/wippyai/componentry/component"
)

// Opener is the open capability: it turns a component's opaque location
// into a live handle. Implementations decide what a location means, be
// it a wasm binary on disk, a compiled-in constructor, or anything
// else. An Opener error is recorded on the component as UnableToOpen
// and never aborts the load run.
type Opener interface {
	Open(ctx context.Context, location string) (Handle, error)
}

// OpenerFunc adapts a plain function to the Opener interface.
type OpenerFunc func(ctx context.Context, location string) (Handle, error)

// Open calls f.
func (f OpenerFunc) Open(ctx context.Context, location string) (Handle, error) {
	return f(ctx, location)
}

// Handle is one successfully opened unit. The loader probes Instance for
// the Unit contract; a handle whose instance lacks it is closed and the
// component recorded as MissingInterface.
type Handle interface {
	// Instance returns the live object the opened unit exposes.
	Instance() any

	// Close releases whatever the open acquired. Called during teardown
	// in reverse load order, or immediately when the contract probe
	// fails.
	Close(ctx context.Context) error
}

// Unit is the contract a component's instance must satisfy to be loaded.
// Initialise runs for every loaded unit in load order once activation of
// the whole set has finished; InitialisationFinished runs afterwards in
// reverse load order, when the full graph is stable.
type Unit interface {
	Initialise(ctx context.Context) error
	InitialisationFinished(ctx context.Context) error
}

// Finaliser is the optional teardown capability. Units that implement it
// have Finalise invoked in reverse load order before their handle is
// closed.
type Finaliser interface {
	Finalise(ctx context.Context) error
}

// Gate is the application-supplied predicate consulted once per
// component immediately before the open capability runs. Returning false
// suppresses the component with a Disabled outcome; it is not an error.
type Gate func(*component.Component) bool
