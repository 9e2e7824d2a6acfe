package component

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Edge is one wired dependency: a reference to the target's descriptor
// plus the minimum version required of it.
type Edge struct {
	Target     *Component
	MinVersion *semver.Version
}

// Component is the in-memory descriptor of one discovered unit: its
// identity, declared metadata, wired dependency edges, and accumulated
// load status. Descriptors are created once during discovery and mutated
// only by the loader during resolution and activation.
type Component struct {
	name     string
	location string
	meta     Metadata
	edges    []Edge
	missing  []string
	status   Status
}

// New creates a descriptor for a discovered unit. The location is opaque
// to the descriptor; only the open capability interprets it.
func New(name, location string, meta Metadata) *Component {
	return &Component{
		name:     name,
		location: location,
		meta:     meta,
	}
}

// Name returns the identity the unit was registered under.
func (c *Component) Name() string {
	return c.name
}

// Location returns the opaque location consumed by the open capability.
func (c *Component) Location() string {
	return c.location
}

// Metadata returns the declared metadata record.
func (c *Component) Metadata() Metadata {
	return c.meta
}

// Version returns the declared version, or nil if none was declared.
func (c *Component) Version() *semver.Version {
	return c.meta.Version
}

// VersionString renders the declared version together with build
// provenance when present, e.g. "1.2.0-main (abc1234)".
func (c *Component) VersionString() string {
	var b strings.Builder
	if c.meta.Version != nil {
		b.WriteString(c.meta.Version.String())
	}
	if c.meta.Branch != "" {
		b.WriteByte('-')
		b.WriteString(c.meta.Branch)
	}
	if c.meta.Revision != "" {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "(%s)", c.meta.Revision)
	}
	return b.String()
}

// Identifier returns the lowercase "name.vendor" identity used to refer
// to the component across vendors.
func (c *Component) Identifier() string {
	if c.meta.Vendor == "" {
		return strings.ToLower(c.name)
	}
	return strings.ToLower(c.name + "." + c.meta.Vendor)
}

// Vendor returns the declared vendor.
func (c *Component) Vendor() string {
	return c.meta.Vendor
}

// Category returns the declared category.
func (c *Component) Category() string {
	return c.meta.Category
}

// Copyright returns the declared copyright line.
func (c *Component) Copyright() string {
	return c.meta.Copyright
}

// URL returns the declared project URL.
func (c *Component) URL() string {
	return c.meta.URL
}

// License returns the declared license text, lines joined.
func (c *Component) License() string {
	return strings.Join(c.meta.License, "\n")
}

// Description returns the declared free-text description, lines joined.
func (c *Component) Description() string {
	return strings.Join(c.meta.Description, "\n")
}

// DependencySummary renders the declared dependency list one per line as
// "Name (Version)".
func (c *Component) DependencySummary() string {
	var lines []string
	for _, dep := range c.meta.Dependencies {
		if dep.Version != nil {
			lines = append(lines, fmt.Sprintf("%s (%s)", dep.Name, dep.Version))
		} else {
			lines = append(lines, dep.Name)
		}
	}
	return strings.Join(lines, "\n")
}

// CanBeDisabled reports whether the application gate may suppress this
// component.
func (c *Component) CanBeDisabled() bool {
	return c.meta.CanBeDisabled()
}

// Status returns the accumulated load outcome flags.
func (c *Component) Status() Status {
	return c.status
}

// StatusString renders the accumulated flags for diagnostics, e.g.
// "MissingDependency | IncompatibleVersion".
func (c *Component) StatusString() string {
	return c.status.String()
}

// IsLoaded reports whether the open succeeded and every gating check
// passed.
func (c *Component) IsLoaded() bool {
	return c.status.Has(Loaded)
}

// Dependencies returns a copy of the wired dependency edges in
// declaration order. Empty until the loader has wired the graph.
func (c *Component) Dependencies() []Edge {
	out := make([]Edge, len(c.edges))
	copy(out, c.edges)
	return out
}

// MissingDependencies returns the declared dependency names that did not
// resolve to any known component.
func (c *Component) MissingDependencies() []string {
	out := make([]string, len(c.missing))
	copy(out, c.missing)
	return out
}

// AddDependency appends a wired edge. Called only by the loader during
// graph wiring; no validation happens here.
func (c *Component) AddDependency(target *Component, minVersion *semver.Version) {
	c.edges = append(c.edges, Edge{Target: target, MinVersion: minVersion})
}

// NoteMissingDependency records a declared dependency name that resolved
// to nothing. Called only by the loader during graph wiring.
func (c *Component) NoteMissingDependency(name string) {
	c.missing = append(c.missing, name)
}

// AddStatus adds outcome flags to the accumulated set. Called only by
// the loader; flags are never cleared.
func (c *Component) AddStatus(f Status) {
	c.status |= f
}

// ValidateDependencies checks every wired edge now that each target has
// had its chance to load: an unloaded target sets MissingDependency, a
// target below the required minimum version sets IncompatibleVersion.
// Both checks run independently for every edge.
func (c *Component) ValidateDependencies() {
	for _, e := range c.edges {
		if !e.Target.IsLoaded() {
			c.status |= MissingDependency
		}
		if e.MinVersion != nil && e.Target.Version() != nil && e.Target.Version().LessThan(e.MinVersion) {
			c.status |= IncompatibleVersion
		}
	}
}
