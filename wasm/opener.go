// Package wasm opens components compiled to WebAssembly. The opener
// owns one wazero runtime; every location it opens is read from disk,
// compiled, and instantiated into that runtime. The lifecycle contract
// is probed through the module's exports: a unit that exports
// "initialise" and "initialisation-finished" satisfies the loader's
// unit contract, and an additional "finalise" export makes it
// finalisable.
package wasm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"

	"github.com/wippyai/componentry/errors"
	"github.com/wippyai/componentry/loader"
)

// Config holds configuration for opener creation.
type Config struct {
	// MemoryLimitPages caps each instance's memory in 64KB pages.
	// 0 keeps the wazero default.
	MemoryLimitPages uint32

	// EnableWASI instantiates wasi_snapshot_preview1 into the runtime so
	// units built against WASI can link their imports.
	EnableWASI bool
}

// Opener opens wasm component binaries through a shared wazero runtime.
type Opener struct {
	runtime wazero.Runtime
	seq     atomic.Uint64
}

// NewOpener creates an opener with default configuration.
func NewOpener(ctx context.Context) (*Opener, error) {
	return NewOpenerWithConfig(ctx, nil)
}

// NewOpenerWithConfig creates an opener with custom configuration.
func NewOpenerWithConfig(ctx context.Context, cfg *Config) (*Opener, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	if cfg != nil && cfg.EnableWASI {
		if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
			_ = runtime.Close(ctx)
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindOpenFailed, err, "instantiating WASI")
		}
	}

	return &Opener{runtime: runtime}, nil
}

// Open reads, compiles, and instantiates the unit binary at location.
// Each instance gets a unique module name so the same binary can be
// opened more than once in the shared runtime. The returned handle's
// instance satisfies the loader's unit contract only when the module
// exports the lifecycle functions with the expected empty signatures;
// otherwise the raw module is exposed and the loader records the
// missing contract.
func (o *Opener) Open(ctx context.Context, location string) (loader.Handle, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindIO, err, "reading unit binary")
	}

	compiled, err := o.runtime.CompileModule(ctx, data)
	if err != nil {
		return nil, errors.OpenFailed(location, err)
	}

	base := strings.TrimSuffix(filepath.Base(location), filepath.Ext(location))
	name := fmt.Sprintf("%s-%d", base, o.seq.Add(1))

	mod, err := o.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, errors.OpenFailed(location, err)
	}

	Logger().Debug("unit opened",
		zap.String("location", location),
		zap.String("module", name))

	return &handle{instance: instanceFor(mod), module: mod}, nil
}

// Close releases the runtime and every module instantiated through it.
// Call it after the loader's own teardown has finalised the loaded
// units.
func (o *Opener) Close(ctx context.Context) error {
	return o.runtime.Close(ctx)
}

type handle struct {
	instance any
	module   api.Module
}

func (h *handle) Instance() any {
	return h.instance
}

func (h *handle) Close(ctx context.Context) error {
	return h.module.Close(ctx)
}
