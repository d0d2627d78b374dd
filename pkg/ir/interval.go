package ir

// Range is an ordered pair of time expressions marking when a port's
// liveness window opens and closes.
type Range struct {
	Start, End TimeRep
}

// AsOffset converts the range into (event, start, end) when both
// endpoints reduce to the same single event. Returns ok=false otherwise.
func (r Range) AsOffset() (event Id, start, end uint64, ok bool) {
	su, ok1 := r.Start.(Unitary)
	eu, ok2 := r.End.(Unitary)
	if !ok1 || !ok2 {
		return 0, 0, 0, false
	}
	sEv, sOff, ok1 := su.AsUnit()
	eEv, eOff, ok2 := eu.AsUnit()
	if !ok1 || !ok2 || sEv != eEv {
		return 0, 0, 0, false
	}
	return sEv, sOff, eOff, true
}

// Interval pairs an optional exact range with a nominal "within" range:
// the within range is the envelope a port may be live in, the exact
// range (when present) pins it down precisely.
type Interval struct {
	Exact  *Range
	Within Range
}

// AsExactOffset converts the interval's exact range into (event, start,
// end), iff one is present and reduces to a single shared event.
func (iv Interval) AsExactOffset() (event Id, start, end uint64, ok bool) {
	if iv.Exact == nil {
		return 0, 0, 0, false
	}
	return iv.Exact.AsOffset()
}

// PortDef is a named port carrying a liveness interval and a bitwidth.
type PortDef struct {
	Name     Id
	Liveness Interval
	Bitwidth uint64
}

// AsInterfacePort reports the driving event of this port, iff its
// liveness is an exact single-event offset.
func (p PortDef) AsInterfacePort() (Id, bool) {
	ev, _, _, ok := p.Liveness.AsExactOffset()
	return ev, ok
}

// Signature is a component interface: ordered inputs and outputs,
// abstract time variables, and parametric constraints (referenced as
// arena PropIdx values once lowered, or left nil pre-lowering).
type Signature struct {
	Name         Id
	Inputs       []PortDef
	Outputs      []PortDef
	AbstractVars []Id
	Constraints  []PropIdx
}

// Reversed swaps inputs and outputs. Used to build the synthetic _this
// instance: a component receives at its own inputs, but from the body's
// point of view invoking _this, it guarantees at them.
func (s Signature) Reversed() Signature {
	return Signature{
		Name:         s.Name,
		Inputs:       s.Outputs,
		Outputs:      s.Inputs,
		AbstractVars: s.AbstractVars,
		Constraints:  s.Constraints,
	}
}
