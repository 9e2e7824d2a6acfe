// Package registry provides the shared object store that loaded units use
// to publish and discover instances across component boundaries.
//
// The registry is an explicitly constructed service, handed to the loader
// and injected into units that ask for it, never ambient global state.
// Units conventionally Add objects during their initialise callback and
// Query for other units' objects during initialisation-finished, when the
// whole component graph is stable.
package registry

import "sync"

// Registry is a process-wide store of shared object instances. All
// methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	objects []any
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add publishes an object. Insertion order is retained and determines
// query precedence.
func (r *Registry) Add(obj any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects = append(r.objects, obj)
}

// Remove withdraws a previously added object, compared by identity.
// Removing an object that was never added is a no-op.
func (r *Registry) Remove(obj any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, o := range r.objects {
		if o == obj {
			r.objects = append(r.objects[:i], r.objects[i+1:]...)
			return
		}
	}
}

// Objects returns a snapshot of every published object in insertion
// order.
func (r *Registry) Objects() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]any, len(r.objects))
	copy(out, r.objects)
	return out
}

// Len returns the number of published objects.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

// Query returns the first published object satisfying the capability T.
func Query[T any](r *Registry) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.objects {
		if t, ok := o.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// QueryAll returns every published object satisfying the capability T,
// in insertion order.
func QueryAll[T any](r *Registry) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []T
	for _, o := range r.objects {
		if t, ok := o.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Aware is implemented by unit instances that want the shared registry
// handed to them before their initialise callback runs.
type Aware interface {
	AttachRegistry(*Registry)
}
