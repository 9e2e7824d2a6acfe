// Package manifest discovers loadable units from JSON sidecar
// documents. Each unit ships one manifest naming it, declaring its
// version and dependencies, and pointing at the binary to open; Scan
// walks a directory of them and produces deterministic registrations
// for a loader.
package manifest

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/componentry/component"
	"github.com/wippyai/componentry/errors"
	"github.com/wippyai/componentry/loader"
)

// Dependency is one declared requirement in a manifest document.
type Dependency struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// Manifest mirrors the JSON document one unit ships with. Name and
// Version are required; everything else is optional. Unknown fields are
// ignored so older hosts can read newer manifests.
type Manifest struct {
	Name          string       `json:"name"`
	Version       string       `json:"version"`
	HostVersion   string       `json:"hostVersion,omitempty"`
	Vendor        string       `json:"vendor,omitempty"`
	Copyright     string       `json:"copyright,omitempty"`
	License       []string     `json:"license,omitempty"`
	Category      string       `json:"category,omitempty"`
	Description   []string     `json:"description,omitempty"`
	URL           string       `json:"url,omitempty"`
	CanBeDisabled *bool        `json:"canBeDisabled,omitempty"`
	Branch        string       `json:"branch,omitempty"`
	Revision      string       `json:"revision,omitempty"`
	Dependencies  []Dependency `json:"dependencies,omitempty"`
	Entry         string       `json:"entry,omitempty"`
}

// Decode parses one manifest document and checks the required fields.
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.ParseFailed("manifest", err)
	}
	if m.Name == "" {
		return nil, errors.InvalidInput(errors.PhaseDiscover, "manifest missing name")
	}
	if m.Version == "" {
		return nil, errors.InvalidInput(errors.PhaseDiscover, "manifest missing version")
	}
	return &m, nil
}

// Metadata converts the document's declared fields into the descriptor
// metadata the loader consumes, parsing every version string.
func (m *Manifest) Metadata() (component.Metadata, error) {
	version, err := component.ParseVersion(m.Version)
	if err != nil {
		return component.Metadata{}, errors.New(errors.PhaseDiscover, errors.KindParseFailed).
			Component(m.Name).
			Cause(err).
			Detail("version %q", m.Version).
			Build()
	}

	meta := component.Metadata{
		Version:     version,
		Disableable: m.CanBeDisabled,
		Name:        m.Name,
		Vendor:      m.Vendor,
		Copyright:   m.Copyright,
		Category:    m.Category,
		URL:         m.URL,
		Branch:      m.Branch,
		Revision:    m.Revision,
		License:     m.License,
		Description: m.Description,
	}

	if m.HostVersion != "" {
		hv, err := component.ParseVersion(m.HostVersion)
		if err != nil {
			return component.Metadata{}, errors.New(errors.PhaseDiscover, errors.KindParseFailed).
				Component(m.Name).
				Cause(err).
				Detail("hostVersion %q", m.HostVersion).
				Build()
		}
		meta.HostVersion = hv
	}

	for _, d := range m.Dependencies {
		dep := component.Dependency{Name: d.Name}
		if d.Version != "" {
			dv, err := component.ParseVersion(d.Version)
			if err != nil {
				return component.Metadata{}, errors.New(errors.PhaseDiscover, errors.KindParseFailed).
					Component(m.Name).
					Cause(err).
					Detail("dependency %q version %q", d.Name, d.Version).
					Build()
			}
			dep.Version = dv
		}
		meta.Dependencies = append(meta.Dependencies, dep)
	}

	return meta, nil
}

// Registration is one discovered unit, ready to hand to a loader.
type Registration struct {
	Name     string
	Location string
	Meta     component.Metadata
}

// Register adds the unit to the loader and returns its descriptor.
func (r Registration) Register(l *loader.Loader) *component.Component {
	return l.Add(r.Name, r.Location, r.Meta)
}

// Registration converts the document into a loader registration. The
// entry resolves against the manifest's directory; when the document
// omits it, the manifest's own basename with a .wasm extension is
// assumed.
func (m *Manifest) Registration(path string) (Registration, error) {
	meta, err := m.Metadata()
	if err != nil {
		return Registration{}, err
	}

	entry := m.Entry
	if entry == "" {
		entry = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".wasm"
	}
	if !filepath.IsAbs(entry) {
		entry = filepath.Join(filepath.Dir(path), entry)
	}

	return Registration{Name: m.Name, Location: entry, Meta: meta}, nil
}

// FromFile reads and converts one manifest document from disk.
func FromFile(path string) (Registration, error) {
	f, err := os.Open(path)
	if err != nil {
		return Registration{}, errors.Wrap(errors.PhaseDiscover, errors.KindIO, err, "reading manifest")
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return Registration{}, err
	}
	return m.Registration(path)
}
