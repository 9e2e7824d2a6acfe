// Package componentry implements a run-time component loader: it takes
// a set of separately delivered units, resolves their declared
// dependency graph into one global load order, activates each unit
// through an open capability, and drives lifecycle callbacks forward
// and backward across the loaded set.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	componentry/         Root package documentation
//	├── loader/          Orchestrator: wiring, load order, activation, lifecycle
//	├── component/       Unit descriptors: metadata, status flags, dependency edges
//	├── manifest/        JSON manifest discovery for units on disk
//	├── wasm/            Open capability backed by a wazero runtime
//	├── builtin/         Open capability for compiled-in units
//	├── registry/        Shared object registry offered to loaded units
//	└── errors/          Structured error types
//
// # Quick Start
//
// Discover and load components from a directory:
//
//	opener, err := wasm.NewOpener(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer opener.Close(ctx)
//
//	regs, err := manifest.Scan(ctx, "./components")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	l := loader.New(opener, loader.WithRegistry(registry.New()))
//	for _, reg := range regs {
//	    reg.Register(l)
//	}
//
//	if err := l.Load(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Close(ctx)
//
//	for _, c := range l.Components() {
//	    fmt.Println(c.Name(), c.StatusString())
//	}
//
// # Failure Model
//
// A load run never fails as a whole. Every per-component problem is
// recorded as a status flag on that component's descriptor (name clash,
// missing or too-old dependency, gate veto, open failure, missing
// lifecycle contract) and the run continues, loading the maximal
// consistent subset. Callers inspect the descriptors afterwards and
// decide whether to warn, refuse to proceed, or continue degraded.
//
// # Thread Safety
//
// A Loader is single-threaded by contract: populate it with Add, run
// Load once, tear down with Close, all from one goroutine. The registry
// is safe for concurrent use; openers document their own guarantees.
package componentry
