package component

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ParseVersion parses a dotted numeric version string. Partial versions
// are accepted and zero-filled, so "1.5" parses as 1.5.0.
func ParseVersion(raw string) (*semver.Version, error) {
	v, err := semver.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", raw, err)
	}
	return v, nil
}

// MustParseVersion is ParseVersion for known-good literals; it panics on
// malformed input.
func MustParseVersion(raw string) *semver.Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}
