package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/componentry/component"
	"github.com/wippyai/componentry/loader"
	"github.com/wippyai/componentry/manifest"
	"github.com/wippyai/componentry/registry"
	"github.com/wippyai/componentry/wasm"
)

func main() {
	var (
		dir         = flag.String("dir", "", "Directory of component manifests")
		hostVersion = flag.String("host", "", "Host API version components are checked against")
		disable     = flag.String("disable", "", "Component names to disable (comma-separated)")
		list        = flag.Bool("list", false, "List discovered components and exit")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "Usage: run -dir <components> [-host 1.0.0] [-disable name,...]")
		fmt.Fprintln(os.Stderr, "       run -dir <components> -list")
		fmt.Fprintln(os.Stderr, "       run -dir <components> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		loader.SetLogger(logger)
		manifest.SetLogger(logger)
		wasm.SetLogger(logger)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*dir, *hostVersion, *disable); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*dir, *hostVersion, *disable, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(dir, hostVersion, disableList string, listOnly bool) error {
	ctx := context.Background()

	if listOnly {
		regs, err := manifest.Scan(ctx, dir)
		if err != nil {
			return fmt.Errorf("scan %s: %w", dir, err)
		}

		fmt.Printf("Components: %s\n", dir)
		fmt.Printf("Discovered: %d\n\n", len(regs))
		for _, reg := range regs {
			line := "  " + reg.Name
			if reg.Meta.Version != nil {
				line += " " + reg.Meta.Version.String()
			}
			if deps := declaredDeps(reg.Meta); deps != "" {
				line += " (needs " + deps + ")"
			}
			fmt.Println(line)
		}
		return nil
	}

	l, opener, err := buildLoader(ctx, dir, hostVersion, disableList)
	if err != nil {
		return err
	}
	defer opener.Close(ctx)

	known := l.Components()
	fmt.Printf("Components: %s\n", dir)
	fmt.Printf("Discovered: %d\n", len(known))

	if err := l.Load(ctx); err != nil {
		return fmt.Errorf("load: %w", err)
	}
	defer l.Close(ctx)

	fmt.Println()
	printStatus(os.Stdout, l.Components())
	fmt.Printf("\nLoaded %d of %d\n", len(l.LoadOrder()), len(known))

	return nil
}

// buildLoader scans the component directory and assembles a populated,
// not yet loaded, orchestrator over a fresh wasm opener.
func buildLoader(ctx context.Context, dir, hostVersion, disableList string) (*loader.Loader, *wasm.Opener, error) {
	regs, err := manifest.Scan(ctx, dir)
	if err != nil {
		return nil, nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	opener, err := wasm.NewOpener(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("create opener: %w", err)
	}

	opts := []loader.Option{loader.WithRegistry(registry.New())}

	if hostVersion != "" {
		hv, err := component.ParseVersion(hostVersion)
		if err != nil {
			opener.Close(ctx)
			return nil, nil, fmt.Errorf("host version: %w", err)
		}
		opts = append(opts, loader.WithHostVersion(hv))
	}

	if disableList != "" {
		disabled := make(map[string]bool)
		for _, name := range strings.Split(disableList, ",") {
			if name = strings.TrimSpace(name); name != "" {
				disabled[name] = true
			}
		}
		opts = append(opts, loader.WithGate(func(c *component.Component) bool {
			if !c.CanBeDisabled() {
				return true
			}
			return !disabled[c.Name()]
		}))
	}

	l := loader.New(opener, opts...)
	for _, reg := range regs {
		reg.Register(l)
	}
	return l, opener, nil
}

func printStatus(w io.Writer, comps []*component.Component) {
	nameW, verW := len("NAME"), len("VERSION")
	for _, c := range comps {
		if len(c.Name()) > nameW {
			nameW = len(c.Name())
		}
		if len(versionOf(c)) > verW {
			verW = len(versionOf(c))
		}
	}

	fmt.Fprintf(w, "%-*s  %-*s  %s\n", nameW, "NAME", verW, "VERSION", "STATUS")
	for _, c := range comps {
		status := c.StatusString()
		if missing := c.MissingDependencies(); len(missing) > 0 {
			status += " (missing " + strings.Join(missing, ", ") + ")"
		}
		fmt.Fprintf(w, "%-*s  %-*s  %s\n", nameW, c.Name(), verW, versionOf(c), status)
	}
}

func versionOf(c *component.Component) string {
	if c.Version() == nil {
		return "-"
	}
	return c.Version().String()
}

func declaredDeps(meta component.Metadata) string {
	var deps []string
	for _, d := range meta.Dependencies {
		if d.Version != nil {
			deps = append(deps, fmt.Sprintf("%s >= %s", d.Name, d.Version))
		} else {
			deps = append(deps, d.Name)
		}
	}
	return strings.Join(deps, ", ")
}
