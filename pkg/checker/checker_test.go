package checker

import (
	"testing"

	"github.com/tempo-hdl/tpc/pkg/fsmidx"
	"github.com/tempo-hdl/tpc/pkg/ir"
)

// buildPort builds a PortDef whose liveness is the single-event window
// [G+start, G+end).
func buildPort(in *ir.Interner, name string, event ir.Id, start, end uint64) ir.PortDef {
	within := ir.Range{
		Start: fsmidx.Unit(in, event, start),
		End:   fsmidx.Unit(in, event, end),
	}
	return ir.PortDef{Name: in.Intern(name), Liveness: ir.Interval{Within: within}}
}

func TestCheckConnectSucceedsWhenGuaranteeCoversRequirement(t *testing.T) {
	in := ir.NewInterner()
	g := in.Intern("G")
	// _this is comp.Sig.Reversed(), so a bare ThisPort("out") resolves
	// its requirement against comp.Sig.Outputs and a bare ThisPort("in")
	// resolves its guarantee against comp.Sig.Inputs. "in" must be the
	// wider window for the guarantee to cover the requirement.
	sig := ir.Signature{
		Name:    in.Intern("C"),
		Inputs:  []ir.PortDef{buildPort(in, "in", g, 0, 4)},
		Outputs: []ir.PortDef{buildPort(in, "out", g, 0, 2)},
	}
	comp := ir.NewComponent(in.Intern("c"), sig)
	comp.Commands = []ir.Command{
		{Kind: ir.CmdConnect, Connect: &ir.Connect{
			Dst: ir.ThisPort(in.Intern("out")),
			Src: ir.ThisPort(in.Intern("in")),
		}},
	}
	ctx := ir.NewContext(in)
	ctx.AddComponent(comp)

	if err := Check(ctx, comp); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if comp.NumProps() == 0 {
		t.Fatalf("expected at least one obligation proposition to be pushed")
	}
	var sawAssert bool
	for _, cmd := range comp.Commands {
		if cmd.Kind == ir.CmdFact && comp.Fact(cmd.Fact).Kind == ir.FactAssert {
			sawAssert = true
		}
	}
	if !sawAssert {
		t.Fatalf("expected a FactAssert obligation in the command stream")
	}
}

func TestCheckConnectConstantSourceGeneratesNoObligation(t *testing.T) {
	in := ir.NewInterner()
	g := in.Intern("G")
	// A bare destination port resolves against _this's inputs, which are
	// comp.Sig.Outputs, so the driven port is declared as an output.
	sig := ir.Signature{
		Name:    in.Intern("C"),
		Outputs: []ir.PortDef{buildPort(in, "out", g, 0, 2)},
	}
	comp := ir.NewComponent(in.Intern("c"), sig)
	comp.Commands = []ir.Command{
		{Kind: ir.CmdConnect, Connect: &ir.Connect{
			Dst: ir.ThisPort(in.Intern("out")),
			Src: ir.ConstPort(5),
		}},
	}
	ctx := ir.NewContext(in)
	ctx.AddComponent(comp)

	if err := Check(ctx, comp); err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	for _, cmd := range comp.Commands {
		if cmd.Kind == ir.CmdFact && comp.Fact(cmd.Fact).Kind == ir.FactAssert {
			t.Fatalf("constant source should not generate a proof obligation")
		}
	}
}

func TestCheckConnectConstantDestinationIsAnError(t *testing.T) {
	in := ir.NewInterner()
	sig := ir.Signature{Name: in.Intern("C")}
	comp := ir.NewComponent(in.Intern("c"), sig)
	comp.Commands = []ir.Command{
		{Kind: ir.CmdConnect, Connect: &ir.Connect{
			Dst: ir.ConstPort(1),
			Src: ir.ConstPort(1),
		}},
	}
	ctx := ir.NewContext(in)
	ctx.AddComponent(comp)

	if err := Check(ctx, comp); err == nil {
		t.Fatalf("expected an error for a constant connect destination")
	}
}

func TestCheckInvocationBindsConstraintsAndPortsOfThisComponent(t *testing.T) {
	in := ir.NewInterner()
	g := in.Intern("G")
	name := in.Intern("c")
	sig := ir.Signature{
		Name:         name,
		Inputs:       []ir.PortDef{buildPort(in, "x", g, 0, 1)},
		AbstractVars: []ir.Id{g},
	}
	comp := ir.NewComponent(name, sig)
	trueProp := comp.PushProp(ir.True())
	comp.Sig.Constraints = []ir.PropIdx{trueProp}

	ctx := ir.NewContext(in)
	ctx.AddComponent(comp)

	inv := &ir.Invoke{
		Bind:         in.Intern("i0"),
		Comp:         name,
		AbstractVars: []ir.Id{g},
		Ports:        []ir.Port{ir.ConstPort(0)},
	}
	c := New(ctx, comp)
	inst, err := c.CheckInvocation(inv)
	if err != nil {
		t.Fatalf("CheckInvocation returned error: %v", err)
	}
	if inst.Sig != &comp.Sig && inst.Sig.Name != name {
		t.Fatalf("expected invocation to bind against this component's own signature")
	}
	var sawConstraint bool
	for _, cmd := range comp.Commands {
		if cmd.Kind != ir.CmdFact {
			continue
		}
		if f := comp.Fact(cmd.Fact); f.Kind == ir.FactAssert && f.Prop == trueProp {
			sawConstraint = true
		}
	}
	if !sawConstraint {
		t.Fatalf("expected the invoked signature's constraint to be asserted as an obligation")
	}
}
