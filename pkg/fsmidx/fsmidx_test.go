package fsmidx

import (
	"testing"

	"github.com/tempo-hdl/tpc/pkg/ir"
)

func TestIncrementIdentityAndAdditivity(t *testing.T) {
	in := ir.NewInterner()
	e := in.Intern("E")

	x := Unit(in, e, 3)
	if x.Increment(0).String() != x.String() {
		t.Fatalf("increment(0) changed the expression: %s vs %s", x.Increment(0), x)
	}

	tests := []struct{ m, n uint64 }{
		{0, 0}, {1, 2}, {5, 0}, {3, 7},
	}
	for _, tc := range tests {
		got := x.Increment(tc.m).Increment(tc.n)
		want := x.Increment(tc.m + tc.n)
		if got.String() != want.String() {
			t.Errorf("increment(%d).increment(%d) = %s, want %s", tc.m, tc.n, got, want)
		}
	}
}

func TestResolveUnitZeroIsIdentity(t *testing.T) {
	in := ir.NewInterner()
	e := in.Intern("E")
	y := in.Intern("Y")

	x := Unit(in, e, 0)
	binding := map[ir.Id]ir.TimeRep{e: Unit(in, y, 2)}
	got, err := x.Resolve(binding)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	want := Unit(in, y, 2)
	if got.String() != want.String() {
		t.Errorf("resolve(unit(e,0), {e -> y+2}) = %s, want %s", got, want)
	}
}

func TestResolveIdentityBindingIsNoop(t *testing.T) {
	in := ir.NewInterner()
	e := in.Intern("E")

	x := Unit(in, e, 5)
	identity := map[ir.Id]ir.TimeRep{e: Unit(in, e, 0)}
	got, err := x.Resolve(identity)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got.String() != x.String() {
		t.Errorf("resolve(x, identity) = %s, want %s", got, x)
	}
}

func TestResolveMissingBindingIsUnboundEvent(t *testing.T) {
	in := ir.NewInterner()
	e := in.Intern("E")
	f := in.Intern("F")

	x := Unit(in, e, 1)
	_, err := x.Resolve(map[ir.Id]ir.TimeRep{f: Unit(in, f, 0)})
	if _, ok := err.(ir.UnboundEvent); !ok {
		t.Fatalf("expected UnboundEvent, got %v", err)
	}
}

func TestComparePartialOrder(t *testing.T) {
	in := ir.NewInterner()
	e := in.Intern("E")
	f := in.Intern("F")

	x := Unit(in, e, 1)
	if _, ok := x.Compare(x); !ok {
		t.Errorf("x should be comparable to itself (reflexive)")
	}

	y := Unit(in, e, 3)
	ord, ok := x.Compare(y)
	if !ok || ord != Less {
		t.Errorf("unit(e,1) vs unit(e,3): got (%v, %v), want (Less, true)", ord, ok)
	}
	ord, ok = y.Compare(x)
	if !ok || ord != Greater {
		t.Errorf("unit(e,3) vs unit(e,1): got (%v, %v), want (Greater, true)", ord, ok)
	}

	// Antisymmetry: equal offsets on both sides compare Equal both ways.
	z := Unit(in, e, 1)
	ordXZ, okXZ := x.Compare(z)
	ordZX, okZX := z.Compare(x)
	if !okXZ || !okZX || ordXZ != Equal || ordZX != Equal {
		t.Errorf("equal FsmIdxs should compare Equal both ways, got %v/%v, %v/%v", ordXZ, okXZ, ordZX, okZX)
	}

	// Different event sets: incomparable.
	w := Unit(in, f, 1)
	if _, ok := x.Compare(w); ok {
		t.Errorf("expressions over different events should be incomparable")
	}
}

func TestAsUnit(t *testing.T) {
	in := ir.NewInterner()
	e := in.Intern("E")
	f := in.Intern("F")

	x := Unit(in, e, 4)
	ev, off, ok := x.AsUnit()
	if !ok || ev != e || off != 4 {
		t.Fatalf("AsUnit() = (%v, %v, %v), want (%v, 4, true)", ev, off, ok, e)
	}

	x.Insert(f, 1)
	if _, _, ok := x.AsUnit(); ok {
		t.Errorf("AsUnit() should fail once a second event is present")
	}
}

func TestIntervalAsExactOffsetRoundTrips(t *testing.T) {
	in := ir.NewInterner()
	e := in.Intern("E")

	r := ir.Range{Start: Unit(in, e, 0), End: Unit(in, e, 1)}
	ev, start, end, ok := ir.Interval{Exact: &r, Within: r}.AsExactOffset()
	if !ok {
		t.Fatalf("AsExactOffset() failed for a same-event exact range")
	}
	if ev != e || start != 0 || end != 1 {
		t.Fatalf("AsExactOffset() = (%v, %d, %d), want (%v, 0, 1)", ev, start, end, e)
	}
	// Reconstructing the range from (e, start, end) must yield an equal
	// interval (same event, same offsets).
	r2 := ir.Range{Start: Unit(in, ev, start), End: Unit(in, ev, end)}
	ev2, start2, end2, ok2 := ir.Interval{Exact: &r2, Within: r2}.AsExactOffset()
	if !ok2 || ev2 != ev || start2 != start || end2 != end {
		t.Fatalf("round-trip mismatch: got (%v, %d, %d, %v)", ev2, start2, end2, ok2)
	}
}

func TestIntervalAsExactOffsetFailsOnMismatchedEvents(t *testing.T) {
	in := ir.NewInterner()
	e := in.Intern("E")
	f := in.Intern("F")

	r := ir.Range{Start: Unit(in, e, 0), End: Unit(in, f, 1)}
	if _, _, _, ok := (ir.Interval{Exact: &r, Within: r}).AsExactOffset(); ok {
		t.Errorf("AsExactOffset() should fail when start and end use different events")
	}
}
