// Package builtin opens compiled-in components. Locations map to
// registered constructors instead of binaries on disk, so an embedding
// application can mix native units with wasm units under one loader,
// and tests get a real open capability without fixtures.
package builtin

import (
	"context"
	"sync"

	"github.com/wippyai/componentry/errors"
	"github.com/wippyai/componentry/loader"
)

// Constructor builds one fresh unit instance per open.
type Constructor func() any

// Opener serves instances from registered constructors.
type Opener struct {
	mu    sync.Mutex
	ctors map[string]Constructor
}

// NewOpener creates an empty opener.
func NewOpener() *Opener {
	return &Opener{ctors: make(map[string]Constructor)}
}

// Register binds a location to a constructor. The location is an opaque
// key; "builtin:<name>" is the conventional form. Registering the same
// location twice is an error.
func (o *Opener) Register(location string, ctor Constructor) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, ok := o.ctors[location]; ok {
		return errors.AlreadyExists(errors.PhaseRegistration, "builtin unit", location)
	}
	o.ctors[location] = ctor
	return nil
}

// Open invokes the constructor registered under location and wraps the
// instance in a handle.
func (o *Opener) Open(ctx context.Context, location string) (loader.Handle, error) {
	o.mu.Lock()
	ctor, ok := o.ctors[location]
	o.mu.Unlock()

	if !ok {
		return nil, errors.NotFound(errors.PhaseLoad, "builtin unit", location)
	}
	return &handle{instance: ctor()}, nil
}

// handle wraps a constructed instance. Closing it delegates to the
// instance when the instance owns closeable resources of its own.
type handle struct {
	instance any
}

func (h *handle) Instance() any {
	return h.instance
}

func (h *handle) Close(ctx context.Context) error {
	if c, ok := h.instance.(interface{ Close(context.Context) error }); ok {
		return c.Close(ctx)
	}
	return nil
}
