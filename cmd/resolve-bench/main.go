package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/orbitpm/resolver"
)

// resolve-bench replays a JSON mock-graph fixture through the resolver
// core and reports the solution, the attempt count, and the wall-clock
// cost — correctness checking like the package's own tests, but driven
// from the command line for ad hoc performance work on large graphs.
func main() {
	graphPath := flag.String("graph", "", "path to a JSON mock-graph fixture")
	configPath := flag.String("config", ".resolve-bench.toml", "path to a resolve-bench TOML config")
	trace := flag.Bool("trace", false, "force trace output on, overriding the config file")
	nogoods := flag.Bool("nogoods", false, "force the nogood cache on, overriding the config file")
	flag.Parse()

	if *graphPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: resolve-bench -graph <fixture.json> [-config <file>] [-trace] [-nogoods]")
		os.Exit(2)
	}

	cfg, err := loadRunConfig(*configPath)
	if err != nil {
		if !os.IsNotExist(errors.Cause(err)) {
			fmt.Fprintf(os.Stderr, "resolve-bench: %s\n", err)
			os.Exit(1)
		}
		cfg = defaultRunConfig()
	}
	if *trace {
		cfg.Trace = true
	}
	if *nogoods {
		cfg.Nogoods = true
	}

	if err := run(*graphPath, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "resolve-bench: %s\n", err)
		os.Exit(1)
	}
}

func run(graphPath string, cfg runConfig) error {
	data, err := os.ReadFile(graphPath)
	if err != nil {
		return err
	}

	graph, err := resolver.ParseMockGraph(data)
	if err != nil {
		return err
	}

	roots, err := graph.RootConstraints()
	if err != nil {
		return err
	}
	provider, err := graph.Provider()
	if err != nil {
		return err
	}
	want, err := graph.ExpectedVersions()
	if err != nil {
		return err
	}

	provider = resolver.NewCachingProvider(withLatency(provider, time.Duration(cfg.LatencyMillis)*time.Millisecond))

	var delegate resolver.Delegate = resolver.NopDelegate{}
	if cfg.Trace {
		delegate = resolver.NewTraceDelegate(log.New(os.Stderr, "", 0))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		if _, ok := <-sigCh; ok {
			cancel()
		}
	}()
	defer signal.Stop(sigCh)

	start := time.Now()
	sol, err := resolver.Resolve(ctx, roots, provider, &resolver.ResolveOptions{
		Delegate: delegate,
		Nogoods:  cfg.Nogoods,
	})
	elapsed := time.Since(start)

	if err != nil {
		if _, unsat := err.(*resolver.UnsatisfiableError); unsat {
			fmt.Printf("unsatisfiable after %s: %s\n", elapsed, err)
			if len(want) == 0 {
				return nil // the fixture expected Unsatisfiable; this run matches it
			}
		}
		return err
	}

	printSolution(sol, elapsed)

	if len(want) == 0 {
		return fmt.Errorf("fixture expected Unsatisfiable, but resolve-bench found a solution")
	}
	return compareToExpected(sol, want)
}

func printSolution(sol *resolver.Solution, elapsed time.Duration) {
	names := make([]string, 0, len(sol.Versions))
	for id := range sol.Versions {
		names = append(names, string(id))
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s %s\n", name, sol.Versions[resolver.PackageId(name)])
	}
	fmt.Printf("# %d packages, %d attempts, %s\n", len(sol.Versions), sol.Attempts, elapsed)
}

func compareToExpected(sol *resolver.Solution, want map[resolver.PackageId]resolver.Version) error {
	if len(sol.Versions) != len(want) {
		return fmt.Errorf("expected %d packages, got %d", len(want), len(sol.Versions))
	}
	for id, wantVer := range want {
		got, ok := sol.Versions[id]
		if !ok {
			return fmt.Errorf("expected %s to be bound, it was not", id)
		}
		if !got.Equal(wantVer) {
			return fmt.Errorf("expected %s@%s, got %s@%s", id, wantVer, id, got)
		}
	}
	return nil
}
