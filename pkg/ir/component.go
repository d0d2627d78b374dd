package ir

// Component is one hardware component's fully-lowered body: the arena
// tables for every kind the solver core declares, plus the command
// stream the checker and discharge passes traverse. The arena is
// populated during lowering (external to this module); the checker
// appends its obligations (new arena entries and CmdFact commands), and
// the discharge pass only reads it.
type Component struct {
	Name      Id
	Sig       Signature
	Instances map[Id]Id // instance name -> component name

	// Interner resolves Param/Event names back to source text for
	// diagnostics. Nil is fine — display falls back to index-based names.
	Interner *Interner

	params Table[Param]
	events Table[Event]
	exprs  Table[Expr]
	times  Table[Time]
	props  Table[Prop]
	facts  Table[Fact]
	info   Table[Info]

	Commands []Command
}

// NewComponent creates an empty component ready for population.
func NewComponent(name Id, sig Signature) *Component {
	return &Component{
		Name:      name,
		Sig:       sig,
		Instances: make(map[Id]Id),
	}
}

// PushParam declares a new parameter and returns its index.
func (c *Component) PushParam(p Param) ParamIdx { return ParamIdx(c.params.Push(p)) }

// PushEvent declares a new event and returns its index.
func (c *Component) PushEvent(e Event) EventIdx { return EventIdx(c.events.Push(e)) }

// PushExpr declares a new expression. Its operands (Lhs/Rhs/Args) must
// already be at smaller indices.
func (c *Component) PushExpr(e Expr) ExprIdx { return ExprIdx(c.exprs.Push(e)) }

// PushTime declares a new time. Its event and offset must already be
// declared.
func (c *Component) PushTime(t Time) TimeIdx { return TimeIdx(c.times.Push(t)) }

// PushProp declares a new proposition. Its operands must already be
// declared.
func (c *Component) PushProp(p Prop) PropIdx { return PropIdx(c.props.Push(p)) }

// PushFact declares a new fact.
func (c *Component) PushFact(f Fact) FactIdx { return FactIdx(c.facts.Push(f)) }

// PushInfo declares a new provenance record.
func (c *Component) PushInfo(i Info) InfoIdx { return InfoIdx(c.info.Push(i)) }

// Param, Event, Expr, Time, Prop, Fact and Info fetch an arena entry by
// index.
func (c *Component) Param(i ParamIdx) Param { return c.params.Get(int(i)) }
func (c *Component) Event(i EventIdx) Event { return c.events.Get(int(i)) }
func (c *Component) Expr(i ExprIdx) Expr    { return c.exprs.Get(int(i)) }
func (c *Component) Time(i TimeIdx) Time    { return c.times.Get(int(i)) }
func (c *Component) Prop(i PropIdx) Prop    { return c.props.Get(int(i)) }
func (c *Component) Fact(i FactIdx) Fact    { return c.facts.Get(int(i)) }
func (c *Component) Info(i InfoIdx) Info    { return c.info.Get(int(i)) }

// NumParams, NumEvents, NumExprs, NumTimes, NumProps report the current
// arena sizes.
func (c *Component) NumParams() int { return c.params.Len() }
func (c *Component) NumEvents() int { return c.events.Len() }
func (c *Component) NumExprs() int  { return c.exprs.Len() }
func (c *Component) NumTimes() int  { return c.times.Len() }
func (c *Component) NumProps() int  { return c.props.Len() }

// IterParams, IterEvents, IterExprs, IterTimes, IterProps visit every
// arena entry of their kind in index order.
func (c *Component) IterParams(fn func(ParamIdx, Param) bool) {
	c.params.Iter(func(i int, p Param) bool { return fn(ParamIdx(i), p) })
}
func (c *Component) IterEvents(fn func(EventIdx, Event) bool) {
	c.events.Iter(func(i int, e Event) bool { return fn(EventIdx(i), e) })
}
func (c *Component) IterExprs(fn func(ExprIdx, Expr) bool) {
	c.exprs.Iter(func(i int, e Expr) bool { return fn(ExprIdx(i), e) })
}
func (c *Component) IterTimes(fn func(TimeIdx, Time) bool) {
	c.times.Iter(func(i int, t Time) bool { return fn(TimeIdx(i), t) })
}
func (c *Component) IterProps(fn func(PropIdx, Prop) bool) {
	c.props.Iter(func(i int, p Prop) bool { return fn(PropIdx(i), p) })
}

// PropParams returns the parameters syntactically mentioned by the
// proposition at idx, used to build counterexample assignments scoped to
// what's actually relevant.
func (c *Component) PropParams(idx PropIdx) []ParamIdx {
	seen := make(map[ParamIdx]bool)
	var out []ParamIdx
	var walkExpr func(ExprIdx)
	walkExpr = func(e ExprIdx) {
		expr := c.Expr(e)
		switch expr.Kind {
		case ExprParam:
			if !seen[expr.Param] {
				seen[expr.Param] = true
				out = append(out, expr.Param)
			}
		case ExprBin:
			walkExpr(expr.Lhs)
			walkExpr(expr.Rhs)
		case ExprFn:
			for _, a := range expr.Args {
				walkExpr(a)
			}
		}
	}
	walkTime := func(t TimeIdx) { walkExpr(c.Time(t).Offset) }
	walkTimeSub := func(ts TimeSub) {
		switch ts.Kind {
		case TimeSubUnit:
			walkExpr(ts.Unit)
		case TimeSubSym:
			walkTime(ts.L)
			walkTime(ts.R)
		}
	}
	var walkProp func(PropIdx)
	walkProp = func(p PropIdx) {
		prop := c.Prop(p)
		switch prop.Kind {
		case PropCmp:
			walkExpr(prop.Cmp.Lhs)
			walkExpr(prop.Cmp.Rhs)
		case PropTimeCmp:
			walkTime(prop.TimeCmp.Lhs)
			walkTime(prop.TimeCmp.Rhs)
		case PropTimeSubCmp:
			walkTimeSub(prop.TimeSubCmp.Lhs)
			walkTimeSub(prop.TimeSubCmp.Rhs)
		case PropNot:
			walkProp(prop.Operand)
		case PropAnd, PropOr, PropImplies:
			walkProp(prop.Lhs)
			walkProp(prop.Rhs)
		}
	}
	walkProp(idx)
	return out
}

// Consequent returns the "interesting" side of a proposition for
// diagnostics: the right-hand side of an Implies, or the proposition
// itself otherwise. Mirrors the original's `prop.consequent()`, used so
// "Cannot prove constraint: …" prints the obligation, not a constraint
// guard that is always true in context.
func (c *Component) Consequent(idx PropIdx) PropIdx {
	if p := c.Prop(idx); p.Kind == PropImplies {
		return p.Rhs
	}
	return idx
}

// Context holds every component known to a compilation unit and the
// signatures of components already checked, keyed by name. Per §9/Open
// Question, exactly one component is checked per pass invocation; the
// Context may still carry prior components' signatures so later
// components can invoke them.
type Context struct {
	Interner   *Interner
	Components []*Component
	Signatures map[Id]*Signature
}

// NewContext creates an empty context backed by the given interner.
func NewContext(interner *Interner) *Context {
	return &Context{
		Interner:   interner,
		Signatures: make(map[Id]*Signature),
	}
}

// AddComponent registers a component and its signature.
func (ctx *Context) AddComponent(c *Component) {
	ctx.Components = append(ctx.Components, c)
	sig := c.Sig
	ctx.Signatures[c.Name] = &sig
}

// Signature looks up a previously registered component's signature.
func (ctx *Context) Signature(name Id) (*Signature, bool) {
	s, ok := ctx.Signatures[name]
	return s, ok
}
