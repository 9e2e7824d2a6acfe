package wasm

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/componentry/errors"
)

// Lifecycle export names units are probed for. Kebab-case, matching the
// component-model convention for exported identifiers.
const (
	exportInitialise             = "initialise"
	exportInitialisationFinished = "initialisation-finished"
	exportFinalise               = "finalise"
)

// lifecycleFn returns the named export when it is a function taking no
// parameters and returning nothing, nil otherwise. A present export
// with the wrong shape counts as absent, so the mismatch is reported as
// a missing contract instead of a trap mid-callback.
func lifecycleFn(mod api.Module, name string) api.Function {
	def := mod.ExportedFunctionDefinitions()[name]
	if def == nil || len(def.ParamTypes()) != 0 || len(def.ResultTypes()) != 0 {
		return nil
	}
	return mod.ExportedFunction(name)
}

// instanceFor probes the module's exports and wraps it in the richest
// contract it supports. Without the two required lifecycle exports the
// raw module is returned as-is.
func instanceFor(mod api.Module) any {
	init := lifecycleFn(mod, exportInitialise)
	ready := lifecycleFn(mod, exportInitialisationFinished)
	if init == nil || ready == nil {
		return mod
	}

	u := unitModule{init: init, ready: ready}
	if fin := lifecycleFn(mod, exportFinalise); fin != nil {
		return &finalisableModule{unitModule: u, fin: fin}
	}
	return &u
}

// unitModule adapts a module's lifecycle exports to the loader's unit
// contract. A trap inside the guest surfaces as the callback's error.
type unitModule struct {
	init  api.Function
	ready api.Function
}

func (u *unitModule) Initialise(ctx context.Context) error {
	if _, err := u.init.Call(ctx); err != nil {
		return errors.Wrap(errors.PhaseLifecycle, errors.KindCallbackFailed, err, exportInitialise)
	}
	return nil
}

func (u *unitModule) InitialisationFinished(ctx context.Context) error {
	if _, err := u.ready.Call(ctx); err != nil {
		return errors.Wrap(errors.PhaseLifecycle, errors.KindCallbackFailed, err, exportInitialisationFinished)
	}
	return nil
}

type finalisableModule struct {
	unitModule
	fin api.Function
}

func (u *finalisableModule) Finalise(ctx context.Context) error {
	if _, err := u.fin.Call(ctx); err != nil {
		return errors.Wrap(errors.PhaseLifecycle, errors.KindCallbackFailed, err, exportFinalise)
	}
	return nil
}
