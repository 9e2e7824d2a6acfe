package component

import "strings"

// Status is the accumulating set of load outcomes for a component. Flags
// are only ever added, never cleared, within one load attempt; multiple
// flags may be set at once and all are retained for diagnostics.
type Status uint32

const (
	// Loaded marks a component whose open succeeded and whose gating
	// checks all passed. It is never combined with a blocking flag.
	Loaded Status = 1 << iota
	// IncompatibleHostVersion marks a component built against a host API
	// with a different major version.
	IncompatibleHostVersion
	// NameClash marks every component involved in a duplicate-name
	// registration.
	NameClash
	// MissingDependency marks a component with a dependency that is
	// unknown or itself not loaded.
	MissingDependency
	// Disabled marks a component rejected by the application gate.
	Disabled
	// IncompatibleVersion marks a component with a dependency whose
	// version is below the declared minimum.
	IncompatibleVersion
	// UnableToOpen marks a component the open capability failed on.
	UnableToOpen
	// MissingInterface marks a component that opened but does not
	// satisfy the unit contract.
	MissingInterface
)

// Unloaded is the zero Status: no load attempt outcome recorded yet.
const Unloaded Status = 0

var statusNames = []struct {
	flag Status
	name string
}{
	{Loaded, "Loaded"},
	{IncompatibleHostVersion, "IncompatibleHostVersion"},
	{NameClash, "NameClash"},
	{MissingDependency, "MissingDependency"},
	{Disabled, "Disabled"},
	{IncompatibleVersion, "IncompatibleVersion"},
	{UnableToOpen, "UnableToOpen"},
	{MissingInterface, "MissingInterface"},
}

// Has reports whether every flag in f is set.
func (s Status) Has(f Status) bool {
	return s&f == f
}

// String renders the set flags joined with " | " in declaration order,
// or "Unloaded" for the empty set.
func (s Status) String() string {
	if s == Unloaded {
		return "Unloaded"
	}

	var parts []string
	for _, entry := range statusNames {
		if s.Has(entry.flag) {
			parts = append(parts, entry.name)
		}
	}
	return strings.Join(parts, " | ")
}
