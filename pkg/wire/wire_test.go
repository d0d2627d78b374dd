package wire

import (
	"encoding/json"
	"testing"

	"github.com/tempo-hdl/tpc/pkg/ir"
)

func TestToIRReproducesArenaIndicesAndCommands(t *testing.T) {
	doc := Context{
		Names: []string{"c", "G", "in", "out"},
		Components: []Component{
			{
				Name: 0,
				Sig: Signature{
					Name: 0,
					Inputs: []PortDef{{
						Name: 2,
						Liveness: Interval{
							Within: Range{
								Start: TimeExpr{Events: []ir.Id{1}, Offsets: []uint64{0}},
								End:   TimeExpr{Events: []ir.Id{1}, Offsets: []uint64{2}},
							},
						},
					}},
				},
				Params: []ir.Param{{Name: 2}},
				Props:  []ir.Prop{ir.True()},
				Facts:  []ir.Fact{{Prop: 0, Kind: ir.FactAssert}},
				Info:   []ir.Info{{Kind: ir.InfoAssert, Pos: ir.Pos{File: "t", Line: 1, Col: 1}}},
				Commands: []ir.Command{
					{Kind: ir.CmdFact, Fact: 0},
				},
			},
		},
	}

	ctx, err := doc.ToIR()
	if err != nil {
		t.Fatalf("ToIR failed: %v", err)
	}
	if len(ctx.Components) != 1 {
		t.Fatalf("expected one component, got %d", len(ctx.Components))
	}
	comp := ctx.Components[0]
	if comp.NumParams() != 1 || comp.NumProps() != 1 {
		t.Fatalf("arena sizes not reproduced: params=%d props=%d", comp.NumParams(), comp.NumProps())
	}
	if len(comp.Commands) != 1 || comp.Commands[0].Kind != ir.CmdFact {
		t.Fatalf("commands not reproduced: %+v", comp.Commands)
	}
	if comp.Sig.Inputs[0].Name != ir.Id(2) {
		t.Fatalf("signature port name not reproduced")
	}
}

func TestToIRRoundTripsThroughJSON(t *testing.T) {
	doc := Context{
		Names: []string{"c"},
		Components: []Component{
			{Name: 0, Sig: Signature{Name: 0}},
		},
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded Context
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, err := decoded.ToIR(); err != nil {
		t.Fatalf("ToIR on decoded document failed: %v", err)
	}
}

func TestToIRRejectsEmptyTimeExpr(t *testing.T) {
	doc := Context{
		Names: []string{"c"},
		Components: []Component{
			{
				Name: 0,
				Sig: Signature{
					Name: 0,
					Inputs: []PortDef{{
						Liveness: Interval{Within: Range{}},
					}},
				},
			},
		},
	}
	if _, err := doc.ToIR(); err == nil {
		t.Fatalf("expected an error for an empty time expression")
	}
}
