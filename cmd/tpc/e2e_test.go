//go:build solver_e2e

// This file only builds with -tags solver_e2e: it shells out to a real
// z3 binary and has no business running in an ordinary `go test ./...`,
// mirroring how the teacher keeps its hard external-tool dependencies
// (sjasmplus, tree-sitter) behind a harness rather than the default
// test run.
package main

import (
	"os/exec"
	"testing"

	"github.com/tempo-hdl/tpc/pkg/checker"
	"github.com/tempo-hdl/tpc/pkg/discharge"
	"github.com/tempo-hdl/tpc/pkg/fsmidx"
	"github.com/tempo-hdl/tpc/pkg/ir"
	"github.com/tempo-hdl/tpc/pkg/smt"
	"github.com/tempo-hdl/tpc/pkg/walk"
)

func requireZ3(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("z3"); err != nil {
		t.Skip("z3 not found on PATH")
	}
}

func TestLiveZ3DischargesTrivialObligation(t *testing.T) {
	requireZ3(t)

	in := ir.NewInterner()
	g := in.Intern("G")
	// _this is comp.Sig.Reversed(), so a bare ThisPort("out") resolves
	// its requirement against comp.Sig.Outputs and a bare ThisPort("in")
	// resolves its guarantee against comp.Sig.Inputs. "in" must be the
	// wider window for the guarantee to cover the requirement.
	sig := ir.Signature{
		Name:    in.Intern("c"),
		Inputs:  []ir.PortDef{{Name: in.Intern("in"), Liveness: ir.Interval{Within: ir.Range{Start: fsmidx.Unit(in, g, 0), End: fsmidx.Unit(in, g, 4)}}}},
		Outputs: []ir.PortDef{{Name: in.Intern("out"), Liveness: ir.Interval{Within: ir.Range{Start: fsmidx.Unit(in, g, 0), End: fsmidx.Unit(in, g, 2)}}}},
	}
	comp := ir.NewComponent(in.Intern("c"), sig)
	comp.Interner = in
	comp.Commands = []ir.Command{
		{Kind: ir.CmdConnect, Connect: &ir.Connect{
			Dst: ir.ThisPort(in.Intern("out")),
			Src: ir.ThisPort(in.Intern("in")),
		}},
	}
	ctx := ir.NewContext(in)
	ctx.AddComponent(comp)

	if err := checker.Check(ctx, comp); err != nil {
		t.Fatalf("Check: %v", err)
	}

	sol, err := smt.Open(smt.Config{Solver: smt.Z3})
	if err != nil {
		t.Fatalf("opening z3: %v", err)
	}
	defer sol.Close()

	pass := discharge.New(sol, discharge.Config{Naming: discharge.NamingZ3})
	count, hadErrors := walk.Run(pass, ctx, comp)
	if hadErrors {
		t.Fatalf("expected the trivial obligation to discharge cleanly, got %d diagnostics: %v", count, pass.Diagnostics())
	}
}
