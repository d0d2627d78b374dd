package checker

import (
	"github.com/tempo-hdl/tpc/pkg/fsmidx"
	"github.com/tempo-hdl/tpc/pkg/ir"
)

// Checker accumulates proof obligations for one component's body,
// pushing them into that component's own arena as CmdFact commands
// ready for the discharge pass to walk. One Checker checks exactly one
// component — the original's own NYI restriction to
// `namespace.components.len() <= 1` is preserved in Check, below.
type Checker struct {
	ctx    *ir.Context
	comp   *ir.Component
	insts  map[ir.Id]Instance
	events map[ir.Id]ir.EventIdx
	thisId ir.Id
}

// New builds a Checker for comp, registering the synthetic _this
// instance and asserting its (reversed) interface constraints as
// assumptions.
func New(ctx *ir.Context, comp *ir.Component) *Checker {
	c := &Checker{
		ctx:    ctx,
		comp:   comp,
		insts:  make(map[ir.Id]Instance),
		events: make(map[ir.Id]ir.EventIdx),
		thisId: ctx.Interner.Intern(ThisName),
	}
	this := ThisInstance(comp.Sig.Reversed())
	c.insts[c.thisId] = this
	for _, pidx := range this.Sig.Constraints {
		c.assume(pidx)
	}
	return c
}

func (c *Checker) assume(prop ir.PropIdx) {
	info := c.comp.PushInfo(ir.Info{Kind: ir.InfoNone})
	fact := c.comp.PushFact(ir.Fact{Prop: prop, Reason: info, Kind: ir.FactAssume})
	c.comp.Commands = append(c.comp.Commands, ir.Command{Kind: ir.CmdFact, Fact: fact})
}

func (c *Checker) addObligation(prop ir.PropIdx, pos ir.Pos) {
	info := c.comp.PushInfo(ir.Info{Kind: ir.InfoAssert, Pos: pos})
	fact := c.comp.PushFact(ir.Fact{Prop: prop, Reason: info, Kind: ir.FactAssert})
	c.comp.Commands = append(c.comp.Commands, ir.Command{Kind: ir.CmdFact, Fact: fact})
}

func (c *Checker) eventIdx(name ir.Id) ir.EventIdx {
	if idx, ok := c.events[name]; ok {
		return idx
	}
	idx := c.comp.PushEvent(ir.Event{Name: name})
	c.events[name] = idx
	return idx
}

// timeIdx lowers a resolved time expression into an arena Time node. It
// only succeeds when the expression reduces to a single (event, offset)
// pair — see errMultiEvent.
func (c *Checker) timeIdx(tr ir.TimeRep) (ir.TimeIdx, error) {
	u, ok := tr.(ir.Unitary)
	if !ok {
		return 0, errMultiEvent{Repr: tr.String()}
	}
	ev, off, ok := u.AsUnit()
	if !ok {
		return 0, errMultiEvent{Repr: tr.String()}
	}
	evIdx := c.eventIdx(ev)
	offExpr := c.comp.PushExpr(ir.NewConcreteExpr(int64(off)))
	return c.comp.PushTime(ir.Time{Event: evIdx, Offset: offExpr}), nil
}

// subsetObligation builds requirement ⊆ guarantee as a conjunction of
// two time comparisons over their Within ranges: the guarantee must open
// no later than the requirement needs, and close no earlier.
func (c *Checker) subsetObligation(requirement, guarantee ir.Interval) (ir.PropIdx, error) {
	reqStart, err := c.timeIdx(requirement.Within.Start)
	if err != nil {
		return 0, err
	}
	reqEnd, err := c.timeIdx(requirement.Within.End)
	if err != nil {
		return 0, err
	}
	guarStart, err := c.timeIdx(guarantee.Within.Start)
	if err != nil {
		return 0, err
	}
	guarEnd, err := c.timeIdx(guarantee.Within.End)
	if err != nil {
		return 0, err
	}
	opensInTime := c.comp.PushProp(ir.NewTimeCmp(ir.CmpGte, reqStart, guarStart))
	closesInTime := c.comp.PushProp(ir.NewTimeCmp(ir.CmpGte, guarEnd, reqEnd))
	return c.comp.PushProp(ir.NewAnd(opensInTime, closesInTime)), nil
}

func (c *Checker) instance(name ir.Id) (Instance, error) {
	inst, ok := c.insts[name]
	if !ok {
		return Instance{}, errUnknownInstance{Name: name}
	}
	return inst, nil
}

// requirementOf resolves the liveness window a destination port needs.
// A constant cannot be a destination — matches check_connect's own
// `todo!("destination port cannot be a constant")`.
func (c *Checker) requirementOf(p ir.Port) (ir.Interval, error) {
	switch p.Kind {
	case ir.PortThis:
		inst, err := c.instance(c.thisId)
		if err != nil {
			return ir.Interval{}, err
		}
		return inst.Requirement(p.Name)
	case ir.PortComp:
		inst, err := c.instance(p.Instance)
		if err != nil {
			return ir.Interval{}, err
		}
		return inst.Requirement(p.Port)
	default:
		return ir.Interval{}, errConstantDestination{}
	}
}

// guaranteeOf resolves the liveness window a source port promises, or
// ok=false for a constant source — constants generate no obligation
// because they are always available.
func (c *Checker) guaranteeOf(p ir.Port) (iv ir.Interval, ok bool, err error) {
	switch p.Kind {
	case ir.PortConstant:
		return ir.Interval{}, false, nil
	case ir.PortThis:
		inst, err := c.instance(c.thisId)
		if err != nil {
			return ir.Interval{}, false, err
		}
		iv, err := inst.Guarantee(p.Name)
		return iv, true, err
	case ir.PortComp:
		inst, err := c.instance(p.Instance)
		if err != nil {
			return ir.Interval{}, false, err
		}
		iv, err := inst.Guarantee(p.Port)
		return iv, true, err
	}
	return ir.Interval{}, false, nil
}

// CheckConnect emits the subset obligation for a `dst = src` command.
func (c *Checker) CheckConnect(con *ir.Connect) error {
	requirement, err := c.requirementOf(con.Dst)
	if err != nil {
		return err
	}
	guarantee, has, err := c.guaranteeOf(con.Src)
	if err != nil {
		return err
	}
	if !has {
		return nil
	}
	prop, err := c.subsetObligation(requirement, guarantee)
	if err != nil {
		return err
	}
	c.addObligation(prop, con.Pos)
	return nil
}

// CheckInvocation binds inv's actuals to the invoked signature, emitting
// an obligation per declared constraint and per input port, and returns
// the resulting Instance for the caller to record against inv.Bind.
func (c *Checker) CheckInvocation(inv *ir.Invoke) (Instance, error) {
	sig, ok := c.ctx.Signature(inv.Comp)
	if !ok {
		return Instance{}, errUnknownComponent{Name: inv.Comp}
	}

	// Actual time arguments are restricted to bare event references —
	// see DESIGN.md for why Invoke.AbstractVars doesn't yet carry
	// shifted expressions like G+1.
	actuals := make([]ir.TimeRep, len(inv.AbstractVars))
	for i, v := range inv.AbstractVars {
		actuals[i] = fsmidx.Unit(c.ctx.Interner, v, 0)
	}
	inst := NewInstance(sig, actuals)

	for _, pidx := range sig.Constraints {
		if sig.Name != c.comp.Sig.Name {
			// A different component's constraint propositions live in
			// that component's own arena; asserting them here would
			// require copying their expression subtree across arenas,
			// which this pass does not support (see DESIGN.md — mirrors
			// the original's own restriction to one component per run).
			continue
		}
		c.addObligation(pidx, inv.Pos)
	}

	for i, formal := range sig.Inputs {
		if i >= len(inv.Ports) {
			break
		}
		requirement, err := inst.Requirement(formal.Name)
		if err != nil {
			return Instance{}, err
		}
		guarantee, has, err := c.guaranteeOf(inv.Ports[i])
		if err != nil {
			return Instance{}, err
		}
		if !has {
			continue
		}
		prop, err := c.subsetObligation(requirement, guarantee)
		if err != nil {
			return Instance{}, err
		}
		c.addObligation(prop, inv.Pos)
	}
	return inst, nil
}

// CheckInvoke runs CheckInvocation and records the result against
// inv.Bind so later commands can reference it as a CompPort.
func (c *Checker) CheckInvoke(inv *ir.Invoke) error {
	inst, err := c.CheckInvocation(inv)
	if err != nil {
		return err
	}
	c.insts[inv.Bind] = inst
	return nil
}

// CheckInstance records a sub-circuit declaration.
func (c *Checker) CheckInstance(decl *ir.InstanceDecl) {
	c.comp.Instances[decl.Name] = decl.Component
}

// CheckCommands walks cmds, dispatching Connect/Invoke/Instance to their
// checks and recursing into If/Loop bodies. Fact commands already
// present in the stream (e.g. hoisted by an external pass) pass through
// untouched — this pass only ever appends new ones.
func (c *Checker) CheckCommands(cmds []ir.Command) error {
	for i := range cmds {
		cmd := &cmds[i]
		switch cmd.Kind {
		case ir.CmdConnect:
			if err := c.CheckConnect(cmd.Connect); err != nil {
				return err
			}
		case ir.CmdInvoke:
			if err := c.CheckInvoke(cmd.Invoke); err != nil {
				return err
			}
		case ir.CmdInstance:
			c.CheckInstance(cmd.Instance)
		case ir.CmdIf:
			if err := c.CheckCommands(cmd.If.Then); err != nil {
				return err
			}
			if err := c.CheckCommands(cmd.If.Alt); err != nil {
				return err
			}
		case ir.CmdLoop:
			if err := c.CheckCommands(cmd.Loop.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

type errConstantDestination struct{}

func (errConstantDestination) Error() string {
	return "checker: destination port cannot be a constant"
}

// Check runs the Connection & Invocation checker over one component,
// appending its proof obligations to the component's own command
// stream. Checking more than one component per Context is unsupported,
// matching the original's own `assert(namespace.components.len() <= 1,
// "NYI: Cannot check multiple components")`.
func Check(ctx *ir.Context, comp *ir.Component) error {
	if len(ctx.Components) > 1 {
		panic("checker: NYI: cannot check multiple components")
	}
	original := append([]ir.Command(nil), comp.Commands...)
	c := New(ctx, comp)
	return c.CheckCommands(original)
}
