package manifest

import (
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/componentry/errors"
	"github.com/wippyai/componentry/loader"
)

const fullDocument = `{
	"name": "logging",
	"version": "1.2.0",
	"hostVersion": "1.0.0",
	"vendor": "Example",
	"copyright": "(C) 2026 Example",
	"license": ["MIT"],
	"category": "Services",
	"description": ["Structured logging", "for every unit"],
	"url": "https://example.org/logging",
	"canBeDisabled": false,
	"branch": "main",
	"revision": "abc1234",
	"dependencies": [
		{"name": "core", "version": "1.0.0"},
		{"name": "config"}
	],
	"entry": "bin/logging.wasm"
}`

func TestDecode(t *testing.T) {
	m, err := Decode(strings.NewReader(fullDocument))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if m.Name != "logging" {
		t.Errorf("name = %q", m.Name)
	}
	if m.Version != "1.2.0" {
		t.Errorf("version = %q", m.Version)
	}
	if m.Vendor != "Example" {
		t.Errorf("vendor = %q", m.Vendor)
	}
	if len(m.Description) != 2 {
		t.Errorf("description lines = %d, want 2", len(m.Description))
	}
	if m.CanBeDisabled == nil || *m.CanBeDisabled {
		t.Error("canBeDisabled should decode as false")
	}
	if len(m.Dependencies) != 2 {
		t.Fatalf("dependencies = %d, want 2", len(m.Dependencies))
	}
	if m.Dependencies[1].Name != "config" || m.Dependencies[1].Version != "" {
		t.Errorf("second dependency = %+v", m.Dependencies[1])
	}
	if m.Entry != "bin/logging.wasm" {
		t.Errorf("entry = %q", m.Entry)
	}
}

func TestDecodeIgnoresUnknownFields(t *testing.T) {
	doc := `{"name": "x", "version": "1.0.0", "futureField": {"a": 1}}`
	if _, err := Decode(strings.NewReader(doc)); err != nil {
		t.Fatalf("Decode: %v", err)
	}
}

func TestDecodeRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		kind errors.Kind
	}{
		{"missing name", `{"version": "1.0.0"}`, errors.KindInvalidInput},
		{"missing version", `{"name": "x"}`, errors.KindInvalidInput},
		{"malformed json", `{"name": `, errors.KindParseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("Decode succeeded")
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDiscover, Kind: tt.kind}) {
				t.Errorf("error = %v, want discover/%s", err, tt.kind)
			}
		})
	}
}

func TestMetadata(t *testing.T) {
	m, err := Decode(strings.NewReader(fullDocument))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	meta, err := m.Metadata()
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}

	if meta.Version == nil || meta.Version.String() != "1.2.0" {
		t.Errorf("version = %v", meta.Version)
	}
	if meta.HostVersion == nil || meta.HostVersion.Major() != 1 {
		t.Errorf("host version = %v", meta.HostVersion)
	}
	if meta.CanBeDisabled() {
		t.Error("metadata should not be disableable")
	}
	if len(meta.Dependencies) != 2 {
		t.Fatalf("dependencies = %d, want 2", len(meta.Dependencies))
	}
	if meta.Dependencies[0].Version == nil || meta.Dependencies[0].Version.String() != "1.0.0" {
		t.Errorf("first dependency version = %v", meta.Dependencies[0].Version)
	}
	if meta.Dependencies[1].Version != nil {
		t.Errorf("unversioned dependency got version %v", meta.Dependencies[1].Version)
	}
}

func TestMetadataBadVersions(t *testing.T) {
	tests := []struct {
		name     string
		manifest Manifest
	}{
		{"version", Manifest{Name: "x", Version: "banana"}},
		{"host version", Manifest{Name: "x", Version: "1.0.0", HostVersion: "banana"}},
		{"dependency version", Manifest{Name: "x", Version: "1.0.0",
			Dependencies: []Dependency{{Name: "y", Version: "banana"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manifest.Metadata()
			if err == nil {
				t.Fatal("Metadata succeeded")
			}
			if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDiscover, Kind: errors.KindParseFailed}) {
				t.Errorf("error = %v, want discover/parse_failed", err)
			}
		})
	}
}

func TestRegistrationEntryResolution(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "abs.wasm")

	tests := []struct {
		name  string
		entry string
		path  string
		want  string
	}{
		{"relative", "bin/logging.wasm", filepath.Join("plugins", "logging.json"),
			filepath.Join("plugins", "bin", "logging.wasm")},
		{"default", "", filepath.Join("plugins", "audio.json"),
			filepath.Join("plugins", "audio.wasm")},
		{"absolute", abs, filepath.Join("plugins", "x.json"), abs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Manifest{Name: "u", Version: "1.0.0", Entry: tt.entry}
			reg, err := m.Registration(tt.path)
			if err != nil {
				t.Fatalf("Registration: %v", err)
			}
			if reg.Location != tt.want {
				t.Errorf("location = %q, want %q", reg.Location, tt.want)
			}
		})
	}
}

func TestRegister(t *testing.T) {
	m := Manifest{Name: "core", Version: "2.0.0"}
	reg, err := m.Registration(filepath.Join("units", "core.json"))
	if err != nil {
		t.Fatalf("Registration: %v", err)
	}

	l := loader.New(nil)
	c := reg.Register(l)
	if c.Name() != "core" {
		t.Errorf("descriptor name = %q", c.Name())
	}
	if got, ok := l.Component("core"); !ok || got != c {
		t.Error("loader does not know the registered component")
	}
}
