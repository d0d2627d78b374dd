// Package fsmidx implements FsmIdxs, the symbolic max-of-sums time
// expression the signature-level interval algebra is built on. It is the
// sole implementation of ir.TimeRep shipped with this module.
package fsmidx

import (
	"fmt"

	"github.com/tempo-hdl/tpc/pkg/ir"
)

// Ordering is the result of comparing two FsmIdxs under the partial
// order defined in §4.1.
type Ordering int

const (
	Less Ordering = iota
	Equal
	Greater
)

// FsmIdxs is a symbolic max-of-sums time expression: a mapping from
// event identifier to nonnegative integer offset, representing
// max(e1+n1, e2+n2, …). Keys are unique and insertion order is
// preserved — both pretty-printing and SMT emission depend on it. The
// zero value is invalid; FsmIdxs must always be nonempty once built via
// Unit/Insert.
type FsmIdxs struct {
	interner *ir.Interner
	order    []ir.Id
	offsets  map[ir.Id]uint64
}

// Unit constructs an index with exactly one FSM: event+state.
func Unit(interner *ir.Interner, event ir.Id, state uint64) FsmIdxs {
	return FsmIdxs{
		interner: interner,
		order:    []ir.Id{event},
		offsets:  map[ir.Id]uint64{event: state},
	}
}

// AsUnit reports the sole (event, offset) pair if the receiver mentions
// exactly one event. Implements ir.Unitary.
func (f FsmIdxs) AsUnit() (ir.Id, uint64, bool) {
	if len(f.order) != 1 {
		return 0, 0, false
	}
	ev := f.order[0]
	return ev, f.offsets[ev], true
}

// Insert adds another summand, forming a max expression. If the event is
// already present, its offset is overwritten but its position in
// insertion order is preserved.
func (f *FsmIdxs) Insert(event ir.Id, state uint64) {
	if f.offsets == nil {
		f.offsets = make(map[ir.Id]uint64)
	}
	if _, ok := f.offsets[event]; !ok {
		f.order = append(f.order, event)
	}
	f.offsets[event] = state
}

// Events returns the names of all events used in the max expression, in
// insertion order. Implements ir.TimeRep.
func (f FsmIdxs) Events() []ir.Id {
	out := make([]ir.Id, len(f.order))
	copy(out, f.order)
	return out
}

// Increment shifts every summand by n, returning a new FsmIdxs (the
// receiver is never mutated).
func (f FsmIdxs) Increment(n uint64) FsmIdxs {
	out := FsmIdxs{
		interner: f.interner,
		order:    append([]ir.Id(nil), f.order...),
		offsets:  make(map[ir.Id]uint64, len(f.offsets)),
	}
	for ev, st := range f.offsets {
		out.offsets[ev] = st + n
	}
	return out
}

// Resolve substitutes bound events for their bindings and flattens the
// result by unioning summand maps in insertion order. Keys are unique,
// so if a summand's event recurs through a binding it keeps its first
// position and the larger of its offsets — the value `max` gives it.
// No other canonicalization is done.
func (f FsmIdxs) Resolve(bindings map[ir.Id]ir.TimeRep) (ir.TimeRep, error) {
	out := FsmIdxs{interner: f.interner, offsets: make(map[ir.Id]uint64)}
	for _, ev := range f.order {
		st := f.offsets[ev]
		bound, ok := bindings[ev]
		if !ok {
			name := ""
			if f.interner != nil {
				name = f.interner.Name(ev)
			}
			return nil, ir.UnboundEvent{Event: ev, Name: name}
		}
		boundFsm, ok := bound.(FsmIdxs)
		if !ok {
			return nil, fmt.Errorf("fsmidx: binding for event is not an FsmIdxs")
		}
		shifted := boundFsm.Increment(st)
		for _, ev2 := range shifted.order {
			prev, seen := out.offsets[ev2]
			if !seen {
				out.order = append(out.order, ev2)
			}
			if !seen || shifted.offsets[ev2] > prev {
				out.offsets[ev2] = shifted.offsets[ev2]
			}
		}
	}
	return out, nil
}

// Compare implements the partial order of §4.1: a ≤ b holds iff both
// mention the same set of events and, for every shared event, the
// offset ordering is consistent (all ≤ or all ≥). ok is false when the
// two are incomparable (different event sets, or conflicting orderings
// across shared events).
func (f FsmIdxs) Compare(other FsmIdxs) (ord Ordering, ok bool) {
	if len(f.order) != len(other.order) {
		return 0, false
	}
	haveOrder := false
	cur := Equal
	for _, ev := range f.order {
		st2, present := other.offsets[ev]
		if !present {
			return 0, false
		}
		st1 := f.offsets[ev]
		var this Ordering
		switch {
		case st1 < st2:
			this = Less
		case st1 > st2:
			this = Greater
		default:
			this = Equal
		}
		if this == Equal {
			continue
		}
		if !haveOrder {
			cur = this
			haveOrder = true
		} else if cur != this {
			return 0, false
		}
	}
	return cur, true
}

// String renders the expression as `e0+n0` or `max(…, ei+ni)`.
func (f FsmIdxs) String() string {
	if len(f.order) == 0 {
		panic("fsmidx: empty expression has undefined display")
	}
	name := func(id ir.Id) string {
		if f.interner != nil {
			return f.interner.Name(id)
		}
		return fmt.Sprintf("ev%d", id)
	}
	ev0 := f.order[0]
	out := fmt.Sprintf("%s+%d", name(ev0), f.offsets[ev0])
	for _, ev := range f.order[1:] {
		out = fmt.Sprintf("max(%s, %s+%d)", out, name(ev), f.offsets[ev])
	}
	return out
}

// SExp renders the expression as an SMT-LIB term: a bare symbol when the
// offset is zero, `(+ event n)` otherwise, folded together with `max`
// when there is more than one summand.
func (f FsmIdxs) SExp(eventName func(ir.Id) string) string {
	if len(f.order) == 0 {
		panic("fsmidx: empty expression has undefined display")
	}
	term := func(ev ir.Id) string {
		n := f.offsets[ev]
		if n == 0 {
			return eventName(ev)
		}
		return fmt.Sprintf("(+ %s %d)", eventName(ev), n)
	}
	acc := term(f.order[0])
	for _, ev := range f.order[1:] {
		acc = fmt.Sprintf("(max %s %s)", acc, term(ev))
	}
	return acc
}
