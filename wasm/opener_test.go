package wasm

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/componentry/component"
	"github.com/wippyai/componentry/errors"
	"github.com/wippyai/componentry/loader"
)

func uleb(n int) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			return out
		}
	}
}

func section(id byte, contents []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(len(contents))...)
	return append(out, contents...)
}

// buildModule assembles a minimal wasm binary exporting the named
// functions, each with an empty () -> () body. A "!" prefix on a name
// makes that function trap when called.
func buildModule(exports ...string) []byte {
	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	// type section: single () -> () type
	mod = append(mod, section(1, []byte{0x01, 0x60, 0x00, 0x00})...)

	// function section: every function uses the shared type
	fns := uleb(len(exports))
	for range exports {
		fns = append(fns, 0x00)
	}
	mod = append(mod, section(3, fns)...)

	// export section
	exp := uleb(len(exports))
	for i, name := range exports {
		name = strings.TrimPrefix(name, "!")
		exp = append(exp, uleb(len(name))...)
		exp = append(exp, name...)
		exp = append(exp, 0x00)
		exp = append(exp, uleb(i)...)
	}
	mod = append(mod, section(7, exp)...)

	// code section: empty body, or unreachable for trapping functions
	code := uleb(len(exports))
	for _, name := range exports {
		if strings.HasPrefix(name, "!") {
			code = append(code, 0x03, 0x00, 0x00, 0x0b)
		} else {
			code = append(code, 0x02, 0x00, 0x0b)
		}
	}
	mod = append(mod, section(10, code)...)

	return mod
}

func writeModule(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unit.wasm")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write module: %v", err)
	}
	return path
}

func newOpener(t *testing.T) *Opener {
	t.Helper()
	o, err := NewOpener(context.Background())
	if err != nil {
		t.Fatalf("NewOpener: %v", err)
	}
	t.Cleanup(func() { _ = o.Close(context.Background()) })
	return o
}

func TestOpenFullLifecycle(t *testing.T) {
	ctx := context.Background()
	path := writeModule(t, buildModule(exportInitialise, exportInitialisationFinished, exportFinalise))

	o := newOpener(t)
	h, err := o.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	unit, ok := h.Instance().(loader.Unit)
	if !ok {
		t.Fatal("instance does not satisfy the unit contract")
	}
	fin, ok := h.Instance().(loader.Finaliser)
	if !ok {
		t.Fatal("instance does not satisfy the finaliser contract")
	}

	if err := unit.Initialise(ctx); err != nil {
		t.Errorf("Initialise: %v", err)
	}
	if err := unit.InitialisationFinished(ctx); err != nil {
		t.Errorf("InitialisationFinished: %v", err)
	}
	if err := fin.Finalise(ctx); err != nil {
		t.Errorf("Finalise: %v", err)
	}
	if err := h.Close(ctx); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestOpenWithoutFinaliseExport(t *testing.T) {
	ctx := context.Background()
	path := writeModule(t, buildModule(exportInitialise, exportInitialisationFinished))

	o := newOpener(t)
	h, err := o.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, ok := h.Instance().(loader.Unit); !ok {
		t.Error("instance does not satisfy the unit contract")
	}
	if _, ok := h.Instance().(loader.Finaliser); ok {
		t.Error("instance claims the finaliser contract without a finalise export")
	}
}

func TestOpenModuleWithoutLifecycleExports(t *testing.T) {
	ctx := context.Background()
	path := writeModule(t, buildModule("tick"))

	o := newOpener(t)
	h, err := o.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, ok := h.Instance().(loader.Unit); ok {
		t.Error("instance without lifecycle exports satisfies the unit contract")
	}
	if err := h.Close(ctx); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestOpenWrongLifecycleSignature(t *testing.T) {
	ctx := context.Background()

	// initialise takes an i32, which disqualifies it from the contract.
	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	mod = append(mod, section(1, []byte{
		0x02,
		0x60, 0x00, 0x00,
		0x60, 0x01, 0x7f, 0x00,
	})...)
	mod = append(mod, section(3, []byte{0x02, 0x01, 0x00})...)

	exp := []byte{0x02}
	exp = append(exp, byte(len(exportInitialise)))
	exp = append(exp, exportInitialise...)
	exp = append(exp, 0x00, 0x00)
	exp = append(exp, byte(len(exportInitialisationFinished)))
	exp = append(exp, exportInitialisationFinished...)
	exp = append(exp, 0x00, 0x01)
	mod = append(mod, section(7, exp)...)

	mod = append(mod, section(10, []byte{0x02, 0x02, 0x00, 0x0b, 0x02, 0x00, 0x0b})...)

	o := newOpener(t)
	h, err := o.Open(ctx, writeModule(t, mod))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := h.Instance().(loader.Unit); ok {
		t.Error("instance with mistyped initialise satisfies the unit contract")
	}
}

func TestTrapSurfacesAsCallbackError(t *testing.T) {
	ctx := context.Background()
	path := writeModule(t, buildModule("!"+exportInitialise, exportInitialisationFinished))

	o := newOpener(t)
	h, err := o.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	unit, ok := h.Instance().(loader.Unit)
	if !ok {
		t.Fatal("instance does not satisfy the unit contract")
	}

	err = unit.Initialise(ctx)
	if err == nil {
		t.Fatal("trapping initialise returned no error")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLifecycle, Kind: errors.KindCallbackFailed}) {
		t.Errorf("error = %v, want lifecycle/callback_failed", err)
	}
}

func TestOpenMissingFile(t *testing.T) {
	o := newOpener(t)
	_, err := o.Open(context.Background(), filepath.Join(t.TempDir(), "nope.wasm"))
	if err == nil {
		t.Fatal("Open succeeded on a missing file")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindIO}) {
		t.Errorf("error = %v, want load/io", err)
	}
}

func TestOpenInvalidBinary(t *testing.T) {
	o := newOpener(t)
	path := writeModule(t, []byte("definitely not wasm"))

	_, err := o.Open(context.Background(), path)
	if err == nil {
		t.Fatal("Open succeeded on garbage")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseLoad, Kind: errors.KindOpenFailed}) {
		t.Errorf("error = %v, want load/open_failed", err)
	}
}

func TestOpenSameBinaryTwice(t *testing.T) {
	ctx := context.Background()
	path := writeModule(t, buildModule(exportInitialise, exportInitialisationFinished))

	o := newOpener(t)
	if _, err := o.Open(ctx, path); err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := o.Open(ctx, path); err != nil {
		t.Fatalf("second Open: %v", err)
	}
}

func buildWASIModule() []byte {
	mod := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	mod = append(mod, section(1, []byte{
		0x02,
		0x60, 0x00, 0x00,
		0x60, 0x01, 0x7f, 0x00,
	})...)

	imp := []byte{0x01}
	imp = append(imp, byte(len("wasi_snapshot_preview1")))
	imp = append(imp, "wasi_snapshot_preview1"...)
	imp = append(imp, byte(len("proc_exit")))
	imp = append(imp, "proc_exit"...)
	imp = append(imp, 0x00, 0x01)
	mod = append(mod, section(2, imp)...)

	mod = append(mod, section(3, []byte{0x02, 0x00, 0x00})...)

	exp := []byte{0x02}
	exp = append(exp, byte(len(exportInitialise)))
	exp = append(exp, exportInitialise...)
	exp = append(exp, 0x00, 0x01)
	exp = append(exp, byte(len(exportInitialisationFinished)))
	exp = append(exp, exportInitialisationFinished...)
	exp = append(exp, 0x00, 0x02)
	mod = append(mod, section(7, exp)...)

	mod = append(mod, section(10, []byte{0x02, 0x02, 0x00, 0x0b, 0x02, 0x00, 0x0b})...)
	return mod
}

func TestWASIImports(t *testing.T) {
	ctx := context.Background()
	path := writeModule(t, buildWASIModule())

	plain := newOpener(t)
	if _, err := plain.Open(ctx, path); err == nil {
		t.Error("WASI-importing unit opened without WASI enabled")
	}

	wasi, err := NewOpenerWithConfig(ctx, &Config{EnableWASI: true})
	if err != nil {
		t.Fatalf("NewOpenerWithConfig: %v", err)
	}
	t.Cleanup(func() { _ = wasi.Close(ctx) })

	h, err := wasi.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open with WASI: %v", err)
	}
	if _, ok := h.Instance().(loader.Unit); !ok {
		t.Error("instance does not satisfy the unit contract")
	}
}

func TestLoaderEndToEnd(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	write := func(name string) string {
		path := filepath.Join(dir, name)
		data := buildModule(exportInitialise, exportInitialisationFinished, exportFinalise)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	o := newOpener(t)
	l := loader.New(o)
	l.Add("core", write("core.wasm"), component.Metadata{
		Version: component.MustParseVersion("1.0.0"),
	})
	l.Add("app", write("app.wasm"), component.Metadata{
		Version: component.MustParseVersion("1.0.0"),
		Dependencies: []component.Dependency{
			{Name: "core", Version: component.MustParseVersion("1.0.0")},
		},
	})

	if err := l.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	order := l.LoadOrder()
	if len(order) != 2 || order[0].Name() != "core" || order[1].Name() != "app" {
		got := make([]string, len(order))
		for i, c := range order {
			got[i] = c.Name()
		}
		t.Fatalf("load order = %v, want [core app]", got)
	}
	for _, c := range l.Components() {
		if !c.IsLoaded() {
			t.Errorf("%s: not loaded, status %s", c.Name(), c.StatusString())
		}
	}

	if err := l.Close(ctx); err != nil {
		t.Errorf("loader Close: %v", err)
	}
}
