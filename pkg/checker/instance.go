// Package checker turns a component's Connect and Invoke commands into
// the proof obligations the discharge pass later lowers to SMT-LIB and
// checks. It runs entirely in terms of the abstract, pre-lowering
// interval algebra (ir.TimeRep / fsmidx.FsmIdxs) — obligations only
// touch the arena once an interval has been resolved down to concrete
// (event, offset) pairs, at which point they become ordinary ir.Prop
// nodes the discharge pass treats like any other.
//
// Grounded on interval_checking/checker.rs's check_connect and
// check_invocation.
package checker

import (
	"fmt"

	"github.com/tempo-hdl/tpc/pkg/ir"
)

// ThisName is the synthetic instance name a bare port reference resolves
// against.
const ThisName = "_this"

// Instance is a concrete invocation: a signature together with a binding
// from abstract time variable to the actual time expression supplied at
// the call site. The synthetic _this instance carries a nil binding —
// its ports are already expressed in terms of the component's own
// events, so there is nothing to resolve.
type Instance struct {
	Sig     *ir.Signature
	Binding map[ir.Id]ir.TimeRep
}

// NewInstance binds sig's abstract variables to actuals, positionally.
func NewInstance(sig *ir.Signature, actuals []ir.TimeRep) Instance {
	binding := make(map[ir.Id]ir.TimeRep, len(sig.AbstractVars))
	for i, v := range sig.AbstractVars {
		if i < len(actuals) {
			binding[v] = actuals[i]
		}
	}
	return Instance{Sig: sig, Binding: binding}
}

// ThisInstance builds the synthetic _this instance from a component's
// reversed signature (§4.6): a component receives at its own inputs, but
// from the body's point of view invoking _this, it guarantees at them.
func ThisInstance(reversed ir.Signature) Instance {
	return Instance{Sig: &reversed}
}

func (inst Instance) resolveRange(r ir.Range) (ir.Range, error) {
	if len(inst.Binding) == 0 {
		return r, nil
	}
	start, err := r.Start.Resolve(inst.Binding)
	if err != nil {
		return ir.Range{}, err
	}
	end, err := r.End.Resolve(inst.Binding)
	if err != nil {
		return ir.Range{}, err
	}
	return ir.Range{Start: start, End: end}, nil
}

func (inst Instance) resolveInterval(iv ir.Interval) (ir.Interval, error) {
	within, err := inst.resolveRange(iv.Within)
	if err != nil {
		return ir.Interval{}, err
	}
	out := ir.Interval{Within: within}
	if iv.Exact != nil {
		exact, err := inst.resolveRange(*iv.Exact)
		if err != nil {
			return ir.Interval{}, err
		}
		out.Exact = &exact
	}
	return out, nil
}

func findPort(ports []ir.PortDef, name ir.Id) (ir.PortDef, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return ir.PortDef{}, false
}

// Requirement resolves the liveness window an input port needs data
// available for.
func (inst Instance) Requirement(name ir.Id) (ir.Interval, error) {
	p, ok := findPort(inst.Sig.Inputs, name)
	if !ok {
		return ir.Interval{}, errUnknownPort{Name: name, Side: "input"}
	}
	return inst.resolveInterval(p.Liveness)
}

// Guarantee resolves the window during which an output port promises
// data is available.
func (inst Instance) Guarantee(name ir.Id) (ir.Interval, error) {
	p, ok := findPort(inst.Sig.Outputs, name)
	if !ok {
		return ir.Interval{}, errUnknownPort{Name: name, Side: "output"}
	}
	return inst.resolveInterval(p.Liveness)
}

type errUnknownPort struct {
	Name ir.Id
	Side string
}

func (e errUnknownPort) Error() string {
	return fmt.Sprintf("checker: no %s port with id %d on this instance", e.Side, e.Name)
}

type errUnknownInstance struct{ Name ir.Id }

func (e errUnknownInstance) Error() string {
	return fmt.Sprintf("checker: no instance bound to id %d", e.Name)
}

type errUnknownComponent struct{ Name ir.Id }

func (e errUnknownComponent) Error() string {
	return fmt.Sprintf("checker: no signature registered for component id %d", e.Name)
}

// errMultiEvent is returned when an obligation needs a time expression
// collapsed to a single (event, offset) pair but it mentions more than
// one event. The discharge pass's arena representation only has a slot
// for one event per ir.Time node (§4.4); intervals that don't reduce
// this way are an extension this checker does not yet support.
type errMultiEvent struct{ Repr string }

func (e errMultiEvent) Error() string {
	return fmt.Sprintf("checker: time expression %q does not reduce to a single event", e.Repr)
}
