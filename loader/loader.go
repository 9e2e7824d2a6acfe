package loader

import (
	"context"
	stderrors "errors"
	"sort"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/wippyai/componentry/component"
	"github.com/wippyai/componentry/errors"
	"github.com/wippyai/componentry/loader/internal/resolve"
	"github.com/wippyai/componentry/registry"
)

// Option configures a Loader.
type Option func(*Loader)

// WithGate installs the application gate predicate, consulted once per
// component immediately before it is opened.
func WithGate(gate Gate) Option {
	return func(l *Loader) {
		l.gate = gate
	}
}

// WithRegistry hands the loader a shared object registry. The loader
// never reads or writes registry entries itself; it offers the registry
// to every loaded unit that implements registry.Aware before the
// initialise pass runs.
func WithRegistry(reg *registry.Registry) Option {
	return func(l *Loader) {
		l.registry = reg
	}
}

// WithHostVersion declares the host API version units are checked
// against at registration. A unit whose metadata names a host version
// with a different major component is flagged IncompatibleHostVersion
// immediately. Without this option the check is skipped.
func WithHostVersion(v *semver.Version) Option {
	return func(l *Loader) {
		l.host = v
	}
}

// loadedUnit is one entry of the load-order record: the opened handle,
// the contract instance obtained from it, and the descriptor.
type loadedUnit struct {
	handle Handle
	unit   Unit
	comp   *component.Component
}

// Loader owns the full set of discovered component descriptors, wires
// their dependency graph, computes the load order, drives activation
// through the open capability, and sequences lifecycle callbacks forward
// then in reverse.
//
// A Loader is populated with Add, run once with Load, and torn down with
// Close, all from one goroutine. Nothing here is safe for concurrent
// use; load order is only meaningful when strictly serialized.
type Loader struct {
	opener   Opener
	gate     Gate
	registry *registry.Registry
	host     *semver.Version
	units    []*component.Component
	byName   map[string]*component.Component
	record   []loadedUnit
	loaded   bool
	closed   bool
}

// New creates a loader that opens components through the given opener.
func New(opener Opener, opts ...Option) *Loader {
	l := &Loader{
		opener: opener,
		byName: make(map[string]*component.Component),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add registers one discovered unit from its discovery triple and
// returns the descriptor. Registration never fails: problems are
// recorded as status flags on the descriptor.
//
// A second unit with an already-registered name stays in the known set,
// but both holders of the name are flagged NameClash and neither will
// load; name lookups keep resolving to the first registration. Units
// added after Load has run are kept for inspection but never loaded.
func (l *Loader) Add(name, location string, meta component.Metadata) *component.Component {
	c := component.New(name, location, meta)

	if existing, ok := l.byName[name]; ok {
		existing.AddStatus(component.NameClash)
		c.AddStatus(component.NameClash)
		Logger().Warn("component name clash",
			zap.String("component", name),
			zap.String("location", location))
	} else {
		l.byName[name] = c
	}

	if l.host != nil && meta.HostVersion != nil && meta.HostVersion.Major() != l.host.Major() {
		c.AddStatus(component.IncompatibleHostVersion)
	}

	l.units = append(l.units, c)
	return c
}

// Load runs the whole protocol once over the known set: wire dependency
// edges, compute the load order, activate each component in order, then
// fire initialise callbacks forward and initialisation-finished
// callbacks in reverse.
//
// Individual component failures never surface here; they accumulate as
// status flags on the descriptors, and the run always terminates having
// loaded the maximal consistent subset. The returned error only reports
// misuse: a loader without an opener, or a second Load on the same
// loader.
func (l *Loader) Load(ctx context.Context) error {
	if l.opener == nil {
		return errors.InvalidInput(errors.PhaseLoad, "loader has no opener")
	}
	if l.loaded {
		return errors.InvalidInput(errors.PhaseLoad, "load already performed")
	}
	l.loaded = true

	l.wire()
	order := l.resolveOrder()
	l.activate(ctx, order)

	for _, lu := range l.record {
		if err := lu.unit.Initialise(ctx); err != nil {
			Logger().Warn("initialise callback failed",
				zap.String("component", lu.comp.Name()),
				zap.Error(err))
		}
	}

	for i := len(l.record) - 1; i >= 0; i-- {
		lu := l.record[i]
		if err := lu.unit.InitialisationFinished(ctx); err != nil {
			Logger().Warn("initialisation-finished callback failed",
				zap.String("component", lu.comp.Name()),
				zap.Error(err))
		}
	}

	return nil
}

// wire resolves declared dependency names against the known set. Only
// components with a clean status participate; a name that resolves adds
// an edge, a name that does not is recorded and flags the component.
// Wiring continues through the rest of the declared list after a miss so
// diagnostics name every missing dependency.
func (l *Loader) wire() {
	for _, c := range l.sortedUnits() {
		if c.Status() != component.Unloaded {
			continue
		}
		for _, dep := range c.Metadata().Dependencies {
			if target, ok := l.byName[dep.Name]; ok {
				c.AddDependency(target, dep.Version)
			} else {
				c.NoteMissingDependency(dep.Name)
				c.AddStatus(component.MissingDependency)
			}
		}
	}
}

// resolveOrder computes the global load order. The arena spans the full
// known set (flagged components can still be pulled into the order as
// dependency targets) while only components that survived wiring with a
// clean status seed a descent. Seeds run in name order, which makes the
// order deterministic and independent of registration order.
func (l *Loader) resolveOrder() []*component.Component {
	units := l.sortedUnits()

	index := make(map[*component.Component]int, len(units))
	for i, c := range units {
		index[c] = i
	}

	g := resolve.New(len(units))
	for i, c := range units {
		for _, e := range c.Dependencies() {
			g.AddEdge(i, index[e.Target])
		}
	}

	var seeds []int
	for i, c := range units {
		if c.Status() == component.Unloaded {
			seeds = append(seeds, i)
		}
	}

	order := g.Order(seeds)
	out := make([]*component.Component, 0, len(order))
	for _, i := range order {
		out = append(out, units[i])
	}

	Logger().Debug("load order resolved",
		zap.Int("known", len(units)),
		zap.Int("ordered", len(out)))

	return out
}

// activate walks the resolved order and attempts to load each component:
// skip anything already flagged, validate its dependencies, consult the
// gate, open it, and probe the instance for the unit contract. Every
// failure is local: flag, log, move on.
func (l *Loader) activate(ctx context.Context, order []*component.Component) {
	for _, c := range order {
		if c.Status() != component.Unloaded {
			l.warnNotLoaded(c)
			continue
		}

		c.ValidateDependencies()
		if c.Status() != component.Unloaded {
			l.warnNotLoaded(c)
			continue
		}

		if l.gate != nil && !l.gate(c) {
			c.AddStatus(component.Disabled)
			l.warnNotLoaded(c)
			continue
		}

		handle, err := l.opener.Open(ctx, c.Location())
		if err != nil {
			c.AddStatus(component.UnableToOpen)
			Logger().Warn("component was not loaded",
				zap.String("component", c.Name()),
				zap.String("status", c.StatusString()),
				zap.Error(err))
			continue
		}

		unit, ok := handle.Instance().(Unit)
		if !ok {
			c.AddStatus(component.MissingInterface)
			if cerr := handle.Close(ctx); cerr != nil {
				Logger().Warn("closing rejected handle",
					zap.String("component", c.Name()),
					zap.Error(cerr))
			}
			l.warnNotLoaded(c)
			continue
		}

		if l.registry != nil {
			if aware, ok := unit.(registry.Aware); ok {
				aware.AttachRegistry(l.registry)
			}
		}

		c.AddStatus(component.Loaded)
		l.record = append(l.record, loadedUnit{handle: handle, unit: unit, comp: c})

		Logger().Info("component was loaded", zap.String("component", c.Name()))
	}
}

func (l *Loader) warnNotLoaded(c *component.Component) {
	fields := []zap.Field{
		zap.String("component", c.Name()),
		zap.String("status", c.StatusString()),
	}
	if missing := c.MissingDependencies(); len(missing) > 0 {
		fields = append(fields, zap.Strings("missing", missing))
	}
	Logger().Warn("component was not loaded", fields...)
}

// Close tears the loaded set down: finalise callbacks run in reverse
// load order, each handle is closed after its unit finalises, and the
// record is cleared. Failures never stop the pass; they are aggregated
// into the returned error. Close is idempotent.
func (l *Loader) Close(ctx context.Context) error {
	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	for i := len(l.record) - 1; i >= 0; i-- {
		lu := l.record[i]

		if f, ok := lu.unit.(Finaliser); ok {
			if err := f.Finalise(ctx); err != nil {
				errs = append(errs, errors.New(errors.PhaseLifecycle, errors.KindCallbackFailed).
					Component(lu.comp.Name()).
					Cause(err).
					Detail("finalise").
					Build())
			}
		}

		if err := lu.handle.Close(ctx); err != nil {
			errs = append(errs, errors.New(errors.PhaseLifecycle, errors.KindCloseFailed).
				Component(lu.comp.Name()).
				Cause(err).
				Detail("closing handle").
				Build())
		}
	}
	l.record = nil

	return stderrors.Join(errs...)
}

// Components returns every known descriptor, clash duplicates included,
// sorted by name with registration order as the tie-break.
func (l *Loader) Components() []*component.Component {
	return l.sortedUnits()
}

// Component returns the descriptor registered under name. When the name
// clashed, this is the first registration.
func (l *Loader) Component(name string) (*component.Component, bool) {
	c, ok := l.byName[name]
	return c, ok
}

// LoadOrder returns the successfully loaded components in activation
// order, the sequence lifecycle callbacks follow.
func (l *Loader) LoadOrder() []*component.Component {
	out := make([]*component.Component, 0, len(l.record))
	for _, lu := range l.record {
		out = append(out, lu.comp)
	}
	return out
}

func (l *Loader) sortedUnits() []*component.Component {
	units := make([]*component.Component, len(l.units))
	copy(units, l.units)
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].Name() < units[j].Name()
	})
	return units
}
