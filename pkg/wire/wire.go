// Package wire defines the JSON document cmd/tpc reads from disk and the
// conversion into a live ir.Context/ir.Component. It exists because the
// arena's interner and indexed tables use unexported fields (by design —
// arena entries are immutable once pushed) and Signature's port liveness
// is expressed over the ir.TimeRep interface, neither of which
// encoding/json can round-trip on its own. This is glue for the test
// driver, not part of the checked core.
package wire

import (
	"fmt"

	"github.com/tempo-hdl/tpc/pkg/fsmidx"
	"github.com/tempo-hdl/tpc/pkg/ir"
)

// TimeExpr is the wire form of an fsmidx.FsmIdxs: parallel arrays of
// event ids and offsets, in insertion order (fsmidx.FsmIdxs is the only
// ir.TimeRep this module ships, so the wire format is specific to it
// rather than a generic sum type).
type TimeExpr struct {
	Events  []ir.Id  `json:"events"`
	Offsets []uint64 `json:"offsets"`
}

func (t TimeExpr) toFsmIdxs(interner *ir.Interner) (fsmidx.FsmIdxs, error) {
	if len(t.Events) == 0 || len(t.Events) != len(t.Offsets) {
		return fsmidx.FsmIdxs{}, fmt.Errorf("wire: time expression must have matching nonempty events/offsets")
	}
	f := fsmidx.Unit(interner, t.Events[0], t.Offsets[0])
	for i := 1; i < len(t.Events); i++ {
		f.Insert(t.Events[i], t.Offsets[i])
	}
	return f, nil
}

// Range is the wire form of ir.Range.
type Range struct {
	Start TimeExpr `json:"start"`
	End   TimeExpr `json:"end"`
}

func (r Range) toIR(interner *ir.Interner) (ir.Range, error) {
	start, err := r.Start.toFsmIdxs(interner)
	if err != nil {
		return ir.Range{}, err
	}
	end, err := r.End.toFsmIdxs(interner)
	if err != nil {
		return ir.Range{}, err
	}
	return ir.Range{Start: start, End: end}, nil
}

// Interval is the wire form of ir.Interval.
type Interval struct {
	Exact  *Range `json:"exact,omitempty"`
	Within Range  `json:"within"`
}

func (iv Interval) toIR(interner *ir.Interner) (ir.Interval, error) {
	within, err := iv.Within.toIR(interner)
	if err != nil {
		return ir.Interval{}, err
	}
	out := ir.Interval{Within: within}
	if iv.Exact != nil {
		exact, err := iv.Exact.toIR(interner)
		if err != nil {
			return ir.Interval{}, err
		}
		out.Exact = &exact
	}
	return out, nil
}

// PortDef is the wire form of ir.PortDef.
type PortDef struct {
	Name     ir.Id    `json:"name"`
	Liveness Interval `json:"liveness"`
	Bitwidth uint64   `json:"bitwidth"`
}

func (p PortDef) toIR(interner *ir.Interner) (ir.PortDef, error) {
	liveness, err := p.Liveness.toIR(interner)
	if err != nil {
		return ir.PortDef{}, err
	}
	return ir.PortDef{Name: p.Name, Liveness: liveness, Bitwidth: p.Bitwidth}, nil
}

// Signature is the wire form of ir.Signature.
type Signature struct {
	Name         ir.Id       `json:"name"`
	Inputs       []PortDef   `json:"inputs,omitempty"`
	Outputs      []PortDef   `json:"outputs,omitempty"`
	AbstractVars []ir.Id     `json:"abstract_vars,omitempty"`
	Constraints  []ir.PropIdx `json:"constraints,omitempty"`
}

func (s Signature) toIR(interner *ir.Interner) (ir.Signature, error) {
	out := ir.Signature{
		Name:         s.Name,
		AbstractVars: s.AbstractVars,
		Constraints:  s.Constraints,
	}
	for _, p := range s.Inputs {
		pd, err := p.toIR(interner)
		if err != nil {
			return ir.Signature{}, err
		}
		out.Inputs = append(out.Inputs, pd)
	}
	for _, p := range s.Outputs {
		pd, err := p.toIR(interner)
		if err != nil {
			return ir.Signature{}, err
		}
		out.Outputs = append(out.Outputs, pd)
	}
	return out, nil
}

// Component is the wire form of ir.Component: the signature plus every
// arena table, dumped as plain slices in the exact order they were
// pushed — re-pushing them in that same order through ir.Component's own
// Push* methods reproduces identical indices.
type Component struct {
	Name      ir.Id          `json:"name"`
	Sig       Signature      `json:"sig"`
	Instances map[ir.Id]ir.Id `json:"instances,omitempty"`

	Params []ir.Param `json:"params,omitempty"`
	Events []ir.Event `json:"events,omitempty"`
	Exprs  []ir.Expr  `json:"exprs,omitempty"`
	Times  []ir.Time  `json:"times,omitempty"`
	Props  []ir.Prop  `json:"props,omitempty"`
	Facts  []ir.Fact  `json:"facts,omitempty"`
	Info   []ir.Info  `json:"info,omitempty"`

	Commands []ir.Command `json:"commands,omitempty"`
}

func (c Component) toIR(interner *ir.Interner) (*ir.Component, error) {
	sig, err := c.Sig.toIR(interner)
	if err != nil {
		return nil, fmt.Errorf("wire: component %q: %w", interner.Name(c.Name), err)
	}
	comp := ir.NewComponent(c.Name, sig)
	comp.Interner = interner
	for k, v := range c.Instances {
		comp.Instances[k] = v
	}
	for _, p := range c.Params {
		comp.PushParam(p)
	}
	for _, e := range c.Events {
		comp.PushEvent(e)
	}
	for _, e := range c.Exprs {
		comp.PushExpr(e)
	}
	for _, t := range c.Times {
		comp.PushTime(t)
	}
	for _, p := range c.Props {
		comp.PushProp(p)
	}
	for _, f := range c.Facts {
		comp.PushFact(f)
	}
	for _, i := range c.Info {
		comp.PushInfo(i)
	}
	comp.Commands = c.Commands
	return comp, nil
}

// Context is the wire form of ir.Context: the interner's name table (in
// assignment order, so re-interning reproduces identical ir.Ids) plus
// every component.
type Context struct {
	Names      []string    `json:"names"`
	Components []Component `json:"components"`
}

// ToIR rebuilds a live ir.Context from the wire document.
func (doc Context) ToIR() (*ir.Context, error) {
	interner := ir.NewInterner()
	for _, name := range doc.Names {
		interner.Intern(name)
	}
	ctx := ir.NewContext(interner)
	for _, wc := range doc.Components {
		comp, err := wc.toIR(interner)
		if err != nil {
			return nil, err
		}
		ctx.AddComponent(comp)
	}
	return ctx, nil
}
