package ir

import "fmt"

// DisplayExpr renders an expression in infix form for diagnostics.
func (c *Component) DisplayExpr(idx ExprIdx) string {
	e := c.Expr(idx)
	switch e.Kind {
	case ExprParam:
		return c.DisplayParam(e.Param)
	case ExprConcrete:
		return fmt.Sprintf("%d", e.Concrete)
	case ExprBin:
		return fmt.Sprintf("(%s %s %s)", c.DisplayExpr(e.Lhs), e.Op, c.DisplayExpr(e.Rhs))
	case ExprFn:
		args := ""
		for i, a := range e.Args {
			if i > 0 {
				args += ", "
			}
			args += c.DisplayExpr(a)
		}
		return fmt.Sprintf("%s(%s)", e.Fn, args)
	default:
		return "<expr?>"
	}
}

// DisplayParam renders a parameter's interned name, falling back to an
// index-based name when no Interner is attached.
func (c *Component) DisplayParam(p ParamIdx) string {
	if c.Interner != nil {
		return c.Interner.Name(c.Param(p).Name)
	}
	return fmt.Sprintf("param%d", p)
}

// DisplayEvent renders an event's interned name, falling back to an
// index-based name when no Interner is attached.
func (c *Component) DisplayEvent(e EventIdx) string {
	if c.Interner != nil {
		return c.Interner.Name(c.Event(e).Name)
	}
	return fmt.Sprintf("event%d", e)
}

// DisplayTime renders a resolved time as `event+offset`.
func (c *Component) DisplayTime(idx TimeIdx) string {
	t := c.Time(idx)
	return fmt.Sprintf("%s+%s", c.DisplayEvent(t.Event), c.DisplayExpr(t.Offset))
}

// DisplayTimeSub renders a TimeSub operand.
func (c *Component) DisplayTimeSub(ts TimeSub) string {
	switch ts.Kind {
	case TimeSubUnit:
		return c.DisplayExpr(ts.Unit)
	case TimeSubSym:
		return fmt.Sprintf("(%s - %s)", c.DisplayTime(ts.L), c.DisplayTime(ts.R))
	default:
		return "<timesub?>"
	}
}

// DisplayProp renders a proposition in infix form, used in "Cannot prove
// constraint: …" diagnostics.
func (c *Component) DisplayProp(idx PropIdx) string {
	p := c.Prop(idx)
	switch p.Kind {
	case PropTrue:
		return "true"
	case PropFalse:
		return "false"
	case PropCmp:
		return fmt.Sprintf("%s %s %s", c.DisplayExpr(p.Cmp.Lhs), p.Cmp.Op, c.DisplayExpr(p.Cmp.Rhs))
	case PropTimeCmp:
		return fmt.Sprintf("%s %s %s", c.DisplayTime(p.TimeCmp.Lhs), p.TimeCmp.Op, c.DisplayTime(p.TimeCmp.Rhs))
	case PropTimeSubCmp:
		return fmt.Sprintf("%s %s %s", c.DisplayTimeSub(p.TimeSubCmp.Lhs), p.TimeSubCmp.Op, c.DisplayTimeSub(p.TimeSubCmp.Rhs))
	case PropNot:
		return fmt.Sprintf("!(%s)", c.DisplayProp(p.Operand))
	case PropAnd:
		return fmt.Sprintf("(%s && %s)", c.DisplayProp(p.Lhs), c.DisplayProp(p.Rhs))
	case PropOr:
		return fmt.Sprintf("(%s || %s)", c.DisplayProp(p.Lhs), c.DisplayProp(p.Rhs))
	case PropImplies:
		return fmt.Sprintf("(%s => %s)", c.DisplayProp(p.Lhs), c.DisplayProp(p.Rhs))
	default:
		return "<prop?>"
	}
}
