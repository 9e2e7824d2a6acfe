package component

import "github.com/Masterminds/semver/v3"

// Dependency is one declared requirement on another component: the name
// it was published under and the minimum acceptable version. A nil
// Version accepts any version of the target.
type Dependency struct {
	Version *semver.Version
	Name    string
}

// Metadata is the declared record a component ships with. The loader
// reads only the fields it needs for resolution (Version, HostVersion,
// Dependencies, Disableable); everything else passes through untouched
// for diagnostic and inspection surfaces.
type Metadata struct {
	Version      *semver.Version
	HostVersion  *semver.Version
	Disableable  *bool
	Name         string
	Vendor       string
	Copyright    string
	Category     string
	URL          string
	Branch       string
	Revision     string
	License      []string
	Description  []string
	Dependencies []Dependency
}

// CanBeDisabled reports whether the component may be suppressed by the
// application gate. Components are disableable unless they opt out.
func (m Metadata) CanBeDisabled() bool {
	return m.Disableable == nil || *m.Disableable
}
