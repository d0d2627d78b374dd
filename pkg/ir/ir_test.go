package ir

import "testing"

func TestTablePushGetIterClear(t *testing.T) {
	var tbl Table[string]
	i0 := tbl.Push("a")
	i1 := tbl.Push("b")
	if i0 != 0 || i1 != 1 {
		t.Fatalf("expected indices 0,1 got %d,%d", i0, i1)
	}
	if tbl.Get(0) != "a" || tbl.Get(1) != "b" {
		t.Fatalf("unexpected entries")
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tbl.Len())
	}
	var seen []string
	tbl.Iter(func(idx int, e string) bool {
		seen = append(seen, e)
		return true
	})
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Fatalf("Iter produced %v", seen)
	}
	tbl.Clear()
	if tbl.Len() != 0 {
		t.Fatalf("Clear() left Len() = %d", tbl.Len())
	}
}

func TestComponentArenaIndexOrdering(t *testing.T) {
	in := NewInterner()
	w := in.Intern("W")
	sig := Signature{Name: in.Intern("C")}
	comp := NewComponent(in.Intern("c"), sig)

	p := comp.PushParam(Param{Name: w})
	eight := comp.PushExpr(NewConcreteExpr(8))
	paramExpr := comp.PushExpr(NewParamExpr(p))
	prop := comp.PushProp(NewCmp(CmpGte, paramExpr, eight))

	if got := comp.DisplayProp(prop); got == "" {
		t.Fatalf("DisplayProp returned empty string")
	}
	params := comp.PropParams(prop)
	if len(params) != 1 || params[0] != p {
		t.Fatalf("PropParams = %v, want [%v]", params, p)
	}
}

func TestConsequentUnwrapsImplies(t *testing.T) {
	in := NewInterner()
	comp := NewComponent(in.Intern("c"), Signature{})
	a := comp.PushProp(True())
	b := comp.PushProp(False())
	imp := comp.PushProp(NewImplies(a, b))

	if got := comp.Consequent(imp); got != b {
		t.Fatalf("Consequent(implies) = %v, want %v", got, b)
	}
	if got := comp.Consequent(a); got != a {
		t.Fatalf("Consequent(non-implies) = %v, want %v", got, a)
	}
}

func TestSignatureReversedSwapsPorts(t *testing.T) {
	in := NewInterner()
	in2 := in.Intern("in")
	out := in.Intern("out")
	sig := Signature{
		Name:    in.Intern("C"),
		Inputs:  []PortDef{{Name: in2}},
		Outputs: []PortDef{{Name: out}},
	}
	rev := sig.Reversed()
	if len(rev.Inputs) != 1 || rev.Inputs[0].Name != out {
		t.Fatalf("Reversed().Inputs = %v, want output port", rev.Inputs)
	}
	if len(rev.Outputs) != 1 || rev.Outputs[0].Name != in2 {
		t.Fatalf("Reversed().Outputs = %v, want input port", rev.Outputs)
	}
}
