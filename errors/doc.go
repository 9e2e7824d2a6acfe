// Package errors provides structured error types for the componentry library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries the component name and location involved,
// a human-readable detail, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindOpenFailed).
//		Component("ui").
//		Location("/plugins/ui.wasm").
//		Cause(ioErr).
//		Detail("compiling module").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseLoad, "builtin unit", "spellcheck")
//	err := errors.ParseFailed("manifest", cause)
//
// All errors implement the standard error interface and support errors.Is/As.
//
// Note that failures of individual units during loading are not errors at
// all: they are recorded as status flags on the unit's descriptor. This
// package covers collaborator failures (discovery I/O, opener internals,
// API misuse), which follow ordinary Go error flow.
package errors
