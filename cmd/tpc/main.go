// Command tpc is a small test driver for the interval-checking core: it
// loads a JSON-encoded context and component, runs the Connection &
// Invocation checker followed by the Discharge pass against a live
// solver, and prints whatever diagnostics fall out. It is glue for
// exercising the core end-to-end without a surface-syntax parser, in the
// style of cmd/minzc/main.go.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/tempo-hdl/tpc/pkg/checker"
	"github.com/tempo-hdl/tpc/pkg/diag"
	"github.com/tempo-hdl/tpc/pkg/discharge"
	"github.com/tempo-hdl/tpc/pkg/smt"
	"github.com/tempo-hdl/tpc/pkg/version"
	"github.com/tempo-hdl/tpc/pkg/walk"
	"github.com/tempo-hdl/tpc/pkg/wire"
)

var (
	solverName   string
	solverReplay string
	showModels   bool
	debug        bool
	showVersion  bool
)

var rootCmd = &cobra.Command{
	Use:   "tpc",
	Short: "interval-checking core test driver " + version.GetVersion(),
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Println(version.GetVersion())
			return
		}
		cmd.Help()
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [file.json]",
	Short: "check and discharge the proof obligations of a JSON-encoded component",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(args[0])
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "show version")

	checkCmd.Flags().StringVar(&solverName, "solver", "z3", "SMT solver to use (z3, cvc5)")
	checkCmd.Flags().StringVar(&solverReplay, "solver-replay", "", "write a verbatim replay of every command sent to the solver")
	checkCmd.Flags().BoolVar(&showModels, "show-models", false, "attach counterexample assignments to unprovable diagnostics")
	checkCmd.Flags().BoolVar(&debug, "debug", false, "print debug trace to stderr")
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, "debug: "+format+"\n", args...)
	}
}

func solverKind() (smt.SolverKind, error) {
	switch solverName {
	case "z3":
		return smt.Z3, nil
	case "cvc5":
		return smt.CVC5, nil
	default:
		return 0, fmt.Errorf("unknown --solver %q (want z3 or cvc5)", solverName)
	}
}

func namingConvention() discharge.NamingConvention {
	if solverName == "cvc5" {
		return discharge.NamingCVC5
	}
	return discharge.NamingZ3
}

func runCheck(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	var doc wire.Context
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	ctx, err := doc.ToIR()
	if err != nil {
		return fmt.Errorf("building IR from %s: %w", path, err)
	}
	if len(ctx.Components) != 1 {
		return fmt.Errorf("%s: expected exactly one component, got %d", path, len(ctx.Components))
	}
	comp := ctx.Components[0]
	debugf("loaded component %q: %d params, %d events, %d props", ctx.Interner.Name(comp.Name), comp.NumParams(), comp.NumEvents(), comp.NumProps())
	if debug {
		names := maps.Keys(comp.Instances)
		slices.Sort(names)
		for _, n := range names {
			debugf("instance %s -> %s", ctx.Interner.Name(n), ctx.Interner.Name(comp.Instances[n]))
		}
	}

	if err := checker.Check(ctx, comp); err != nil {
		return fmt.Errorf("checking %s: %w", ctx.Interner.Name(comp.Name), err)
	}

	kind, err := solverKind()
	if err != nil {
		return err
	}
	sol, err := smt.Open(smt.Config{Solver: kind, ReplayFile: solverReplay})
	if err != nil {
		return fmt.Errorf("opening solver: %w", err)
	}
	defer sol.Close()
	debugf("opened %s solver session %s", solverName, sol.ID())

	pass := discharge.New(sol, discharge.Config{Naming: namingConvention(), ShowModels: showModels})
	count, hadErrors := walk.Run(pass, ctx, comp)
	debugf("discharge finished: count=%d hadErrors=%v", count, hadErrors)

	sink := diag.NewSink(os.Stderr)
	for _, d := range pass.Diagnostics() {
		sink.Report(d)
	}
	sink.Flush()

	if hadErrors {
		os.Exit(1)
	}
	return nil
}
