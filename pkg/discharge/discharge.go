// Package discharge implements the Discharge pass: it walks a checked
// component's facts, lowers every already-declared arena node into
// SMT-LIB via a pkg/smt.Solver, and determines which proof obligations
// the solver cannot establish, emitting a positioned diag.Diagnostic for
// each. Grounded directly on ir_passes/discharge.rs, adapted from a
// mutable-visitor-with-internal-state Rust pass into the
// Construct/Visitor contract of pkg/visitor.
package discharge

import (
	"fmt"

	"github.com/tempo-hdl/tpc/pkg/diag"
	"github.com/tempo-hdl/tpc/pkg/ir"
	"github.com/tempo-hdl/tpc/pkg/smt"
	"github.com/tempo-hdl/tpc/pkg/visitor"
	"github.com/tempo-hdl/tpc/pkg/walk"
)

// NamingConvention controls how declared SMT symbols are rendered. Z3
// accepts quoted symbols carrying the original identifier for readable
// counterexamples and replay files; CVC5's printer mishandles them, so
// it gets bare index-keyed names instead — matching fmt_param/fmt_event
// in the original.
type NamingConvention int

const (
	NamingZ3 NamingConvention = iota
	NamingCVC5
)

// assignment is one parameter's counterexample value, filtered to
// nonzero bindings the same way the original's Assign::display drops
// zero entries ("unmentioned parameters are 0").
type assignment struct {
	param ir.ParamIdx
	value string
}

// checkResult caches the outcome of proving one proposition: failed is
// false when it was proved; otherwise assigns carries the counterexample
// (empty when ShowModels is off).
type checkResult struct {
	assigns []assignment
	failed  bool
}

// Config configures a Pass.
type Config struct {
	Naming     NamingConvention
	ShowModels bool
}

// Pass is the Discharge pass. One Pass checks one component at a time;
// ClearData resets it (and rolls the solver's scope) between components.
type Pass struct {
	cfg Config
	sol smt.Solver

	funcs map[ir.FnOp]smt.SExpr

	paramMap map[ir.ParamIdx]smt.SExpr
	evMap    map[ir.EventIdx]smt.SExpr
	exprMap  map[ir.ExprIdx]smt.SExpr
	timeMap  map[ir.TimeIdx]smt.SExpr
	propMap  map[ir.PropIdx]smt.SExpr

	checked map[ir.PropIdx]checkResult

	actLitCount int

	scoped   bool
	toProve  []ir.Fact

	diagnostics []diag.Diagnostic
	errorCount  uint64
}

// New builds a Pass around an already-open solver, declaring the four
// uninterpreted primitives and opening the base solver scope.
func New(sol smt.Solver, cfg Config) *Pass {
	p := &Pass{cfg: cfg, sol: sol}
	p.defineFuncs()
	if err := p.sol.Push(); err != nil {
		panic(fmt.Sprintf("discharge: failed to open base solver scope: %v", err))
	}
	return p
}

func (p *Pass) Name() string { return "discharge" }

// ClearData resets all per-component maps and state, then rolls the
// solver's scope back to the fresh base pushed at construction.
func (p *Pass) ClearData() {
	p.paramMap = nil
	p.evMap = nil
	p.exprMap = nil
	p.timeMap = nil
	p.propMap = nil
	p.checked = nil
	p.actLitCount = 0
	p.toProve = nil
	p.diagnostics = nil
	p.errorCount = 0

	if err := p.sol.Pop(); err != nil {
		panic(fmt.Sprintf("discharge: failed to pop solver scope: %v", err))
	}
	if err := p.sol.Push(); err != nil {
		panic(fmt.Sprintf("discharge: failed to push solver scope: %v", err))
	}
}

func (p *Pass) defineFuncs() {
	is := p.sol.IntSort()
	declare := func(op ir.FnOp, arity int) {
		args := make([]smt.Sort, arity)
		for i := range args {
			args[i] = is
		}
		sexp, err := p.sol.DeclareFun(op.String(), args, is)
		if err != nil {
			panic(fmt.Sprintf("discharge: failed to declare %s: %v", op, err))
		}
		if p.funcs == nil {
			p.funcs = make(map[ir.FnOp]smt.SExpr)
		}
		p.funcs[op] = sexp
	}
	declare(ir.FnPow2, 1)
	declare(ir.FnLog2, 1)
	declare(ir.FnSinB, 2)
	declare(ir.FnCosB, 2)
}

func (p *Pass) fmtParam(idx ir.ParamIdx, comp *ir.Component) string {
	if p.cfg.Naming == NamingCVC5 {
		return fmt.Sprintf("param%d", idx)
	}
	return fmt.Sprintf("|%s@param%d|", comp.DisplayParam(idx), idx)
}

func (p *Pass) fmtEvent(idx ir.EventIdx, comp *ir.Component) string {
	if p.cfg.Naming == NamingCVC5 {
		return fmt.Sprintf("event%d", idx)
	}
	return fmt.Sprintf("|%s@event%d|", comp.DisplayEvent(idx), idx)
}

func fmtExpr(idx ir.ExprIdx) string { return fmt.Sprintf("e%d", idx) }
func fmtTime(idx ir.TimeIdx) string { return fmt.Sprintf("t%d", idx) }
func fmtProp(idx ir.PropIdx) string { return fmt.Sprintf("prop%d", idx) }

func (p *Pass) newActLit() (smt.SExpr, error) {
	p.actLitCount++
	return p.sol.DeclareConst(fmt.Sprintf("act_lit%d", p.actLitCount), p.sol.BoolSort())
}

func (p *Pass) exprToSExpr(e ir.Expr) smt.SExpr {
	switch e.Kind {
	case ir.ExprParam:
		return p.paramMap[e.Param]
	case ir.ExprConcrete:
		return p.sol.Numeral(e.Concrete)
	case ir.ExprBin:
		l, r := p.exprMap[e.Lhs], p.exprMap[e.Rhs]
		switch e.Op {
		case ir.OpAdd:
			return p.sol.Plus(l, r)
		case ir.OpSub:
			return p.sol.Sub(l, r)
		case ir.OpMul:
			return p.sol.Times(l, r)
		case ir.OpDiv:
			return p.sol.Div(l, r)
		default: // ir.OpMod
			return p.sol.Mod(l, r)
		}
	default: // ir.ExprFn
		items := make([]smt.SExpr, 0, len(e.Args)+1)
		items = append(items, p.funcs[e.Fn])
		for _, a := range e.Args {
			items = append(items, p.exprMap[a])
		}
		return p.sol.List(items)
	}
}

func cmpToSExpr[T any](p *Pass, cmp ir.CmpOp[T], transform func(T) smt.SExpr) smt.SExpr {
	l, r := transform(cmp.Lhs), transform(cmp.Rhs)
	switch cmp.Op {
	case ir.CmpGt:
		return p.sol.Gt(l, r)
	case ir.CmpGte:
		return p.sol.Gte(l, r)
	default: // ir.CmpEq
		return p.sol.Eq(l, r)
	}
}

func (p *Pass) propToSExpr(prop ir.Prop) smt.SExpr {
	switch prop.Kind {
	case ir.PropTrue:
		return p.sol.True()
	case ir.PropFalse:
		return p.sol.False()
	case ir.PropCmp:
		return cmpToSExpr(p, prop.Cmp, func(e ir.ExprIdx) smt.SExpr { return p.exprMap[e] })
	case ir.PropTimeCmp:
		return cmpToSExpr(p, prop.TimeCmp, func(t ir.TimeIdx) smt.SExpr { return p.timeMap[t] })
	case ir.PropTimeSubCmp:
		return cmpToSExpr(p, prop.TimeSubCmp, func(ts ir.TimeSub) smt.SExpr {
			if ts.Kind == ir.TimeSubUnit {
				return p.exprMap[ts.Unit]
			}
			return p.sol.Sub(p.timeMap[ts.L], p.timeMap[ts.R])
		})
	case ir.PropNot:
		return p.sol.Not(p.propMap[prop.Operand])
	case ir.PropAnd:
		return p.sol.And(p.propMap[prop.Lhs], p.propMap[prop.Rhs])
	case ir.PropOr:
		return p.sol.Or(p.propMap[prop.Lhs], p.propMap[prop.Rhs])
	default: // ir.PropImplies
		return p.sol.Imp(p.propMap[prop.Lhs], p.propMap[prop.Rhs])
	}
}

// Start bulk-declares every arena node in strictly increasing index
// order: parameters and events as fresh uninterpreted constants,
// expressions and times and propositions as define-const aliases of
// their already-declared operands. It never walks the command stream —
// the Discharge pass only needs facts, which Fact delivers directly.
func (p *Pass) Start(data *visitor.Data) visitor.Action {
	comp := data.Comp
	p.paramMap = make(map[ir.ParamIdx]smt.SExpr, comp.NumParams())
	p.evMap = make(map[ir.EventIdx]smt.SExpr, comp.NumEvents())
	p.exprMap = make(map[ir.ExprIdx]smt.SExpr, comp.NumExprs())
	p.timeMap = make(map[ir.TimeIdx]smt.SExpr, comp.NumTimes())
	p.propMap = make(map[ir.PropIdx]smt.SExpr, comp.NumProps())
	p.checked = make(map[ir.PropIdx]checkResult)

	intSort := p.sol.IntSort()
	mustDeclare := func(name string, sort smt.Sort) smt.SExpr {
		sexp, err := p.sol.DeclareFun(name, nil, sort)
		if err != nil {
			panic(fmt.Sprintf("discharge: failed to declare %s: %v", name, err))
		}
		return sexp
	}
	mustDefine := func(name string, sort smt.Sort, value smt.SExpr) smt.SExpr {
		sexp, err := p.sol.DefineConst(name, sort, value)
		if err != nil {
			panic(fmt.Sprintf("discharge: failed to define %s: %v", name, err))
		}
		return sexp
	}

	comp.IterParams(func(idx ir.ParamIdx, _ ir.Param) bool {
		p.paramMap[idx] = mustDeclare(p.fmtParam(idx, comp), intSort)
		return true
	})
	comp.IterEvents(func(idx ir.EventIdx, _ ir.Event) bool {
		p.evMap[idx] = mustDeclare(p.fmtEvent(idx, comp), intSort)
		return true
	})
	comp.IterExprs(func(idx ir.ExprIdx, e ir.Expr) bool {
		p.exprMap[idx] = mustDefine(fmtExpr(idx), intSort, p.exprToSExpr(e))
		return true
	})
	comp.IterTimes(func(idx ir.TimeIdx, t ir.Time) bool {
		assign := p.sol.Plus(p.evMap[t.Event], p.exprMap[t.Offset])
		p.timeMap[idx] = mustDefine(fmtTime(idx), intSort, assign)
		return true
	})
	boolSort := p.sol.BoolSort()
	comp.IterProps(func(idx ir.PropIdx, prop ir.Prop) bool {
		p.propMap[idx] = mustDefine(fmtProp(idx), boolSort, p.propToSExpr(prop))
		return true
	})

	return visitor.Continue
}

// Fact defers every fact to the end-of-component bulk check. Facts must
// already be hoisted to the top level and reduced to asserts by the
// (external) checker/hoist-facts stage — a scoped or surviving-assume
// fact reaching this pass is an invariant violation.
func (p *Pass) Fact(f *ir.Fact, _ *visitor.Data) visitor.Action {
	if p.scoped {
		panic("discharge: scoped facts not supported; hoist facts before this pass")
	}
	if f.IsAssume() {
		panic("discharge: assumptions should have been eliminated before this pass")
	}
	p.toProve = append(p.toProve, *f)
	return visitor.Continue
}

func (p *Pass) DoIf(i *ir.If, data *visitor.Data) visitor.Action {
	orig := p.scoped
	p.scoped = true
	out := walk.VisitCommands(p, i.Then, data).And(func() visitor.Action {
		return walk.VisitCommands(p, i.Alt, data)
	})
	p.scoped = orig
	return out
}

func (p *Pass) DoLoop(l *ir.Loop, data *visitor.Data) visitor.Action {
	orig := p.scoped
	p.scoped = true
	out := walk.VisitCommands(p, l.Body, data)
	p.scoped = orig
	return out
}

// End attempts to prove every deferred fact in one bulk query; only on
// failure does it fall back to checking each proposition individually
// for error reporting, mirroring the original's two-tier strategy.
func (p *Pass) End(data *visitor.Data) {
	if p.scoped {
		panic("discharge: unbalanced scopes")
	}
	if len(p.toProve) == 0 {
		return
	}

	props := make([]smt.SExpr, len(p.toProve))
	for i, f := range p.toProve {
		props[i] = p.propMap[f.Prop]
	}
	total := smt.AndMany(p.sol, props)
	if err := p.sol.Assert(p.sol.Not(total)); err != nil {
		panic(fmt.Sprintf("discharge: failed to assert bulk obligation: %v", err))
	}

	res, err := p.sol.Check()
	if err != nil {
		panic(fmt.Sprintf("discharge: solver check failed: %v", err))
	}
	if res == smt.Unknown {
		panic("discharge: solver returned unknown")
	}
	if res == smt.Sat {
		p.failingProps(data.Comp)
	}

	// Rendering is the caller's job (cmd/tpc prints via diag.Sink; tests
	// inspect Diagnostics() directly) — this pass only counts them.
	p.errorCount = uint64(len(p.diagnostics))
}

// AfterTraversal reports the component's error count, or ok=false if
// nothing was recorded (mirrors the original returning None vs Some(n)).
func (p *Pass) AfterTraversal() (uint64, bool) {
	if p.errorCount > 0 {
		return p.errorCount, true
	}
	return 0, false
}

// Diagnostics returns every diagnostic accumulated for the last
// component run, in the order obligations were checked.
func (p *Pass) Diagnostics() []diag.Diagnostic { return p.diagnostics }

func (p *Pass) failingProps(comp *ir.Component) {
	toProve := p.toProve
	p.toProve = nil
	for _, f := range toProve {
		p.checkValid(f, comp)
	}
}

// checkValid proves one obligation, caching the result by proposition so
// a repeated obligation (the same Prop index showing up twice) is only
// ever checked once.
func (p *Pass) checkValid(f ir.Fact, comp *ir.Component) {
	prop := f.Prop
	if _, ok := p.checked[prop]; !ok {
		result, err := p.checkOne(prop, comp)
		if err != nil {
			panic(fmt.Sprintf("discharge: solver failure while checking %s: %v", comp.DisplayProp(prop), err))
		}
		p.checked[prop] = result
	}

	result := p.checked[prop]
	if !result.failed {
		return
	}

	consequent := comp.Consequent(prop)
	consequentMsg := fmt.Sprintf("cannot prove constraint: %s", comp.DisplayProp(consequent))
	info := comp.Info(f.Reason)

	var d diag.Diagnostic
	if info.Kind != ir.InfoAssert {
		// No provenance was attached to this fact — report the bare
		// obligation rather than claiming a source location we don't have.
		d = diag.Diagnostic{
			Severity: diag.SeverityError,
			Message:  consequentMsg,
			Notes:    []string{"no information was given on who generated this error"},
		}
	} else {
		d = diag.Unprovable(comp.DisplayProp(consequent), info)
		if p.cfg.ShowModels {
			d = d.WithNote(consequentMsg)
			if len(result.assigns) > 0 {
				d = d.WithNote(fmt.Sprintf("counterexample: %s (unmentioned parameters are 0)", displayAssigns(result.assigns, comp)))
			}
		}
	}
	p.diagnostics = append(p.diagnostics, d)
}

// checkOne asks whether prop is valid via a fresh activation literal:
// assert(actlit => !prop), check-assuming [actlit]. Sat means the
// proposition can fail; its witness becomes the counterexample. The
// activation literal is permanently disabled afterward so later queries
// aren't contaminated by this one's negation.
func (p *Pass) checkOne(prop ir.PropIdx, comp *ir.Component) (checkResult, error) {
	actlit, err := p.newActLit()
	if err != nil {
		return checkResult{}, err
	}
	imp := p.sol.Imp(actlit, p.sol.Not(p.propMap[prop]))
	if err := p.sol.Assert(imp); err != nil {
		return checkResult{}, err
	}

	res, err := p.sol.CheckAssuming([]smt.SExpr{actlit})
	if err != nil {
		return checkResult{}, err
	}

	var out checkResult
	switch res {
	case smt.Sat:
		out.failed = true
		if p.cfg.ShowModels {
			assigns, err := p.getAssignments(comp.PropParams(comp.Consequent(prop)))
			if err != nil {
				return checkResult{}, err
			}
			out.assigns = assigns
		}
	case smt.Unsat:
		out.failed = false
	default:
		panic("discharge: solver returned unknown")
	}

	if err := p.sol.Assert(p.sol.Not(actlit)); err != nil {
		return checkResult{}, err
	}
	return out, nil
}

func (p *Pass) getAssignments(params []ir.ParamIdx) ([]assignment, error) {
	if len(params) == 0 {
		return nil, nil
	}
	terms := make([]smt.SExpr, len(params))
	rev := make(map[smt.SExpr]ir.ParamIdx, len(params))
	for i, pi := range params {
		terms[i] = p.paramMap[pi]
		rev[terms[i]] = pi
	}
	bindings, err := p.sol.GetValue(terms)
	if err != nil {
		return nil, err
	}
	out := make([]assignment, 0, len(bindings))
	for _, b := range bindings {
		pi, ok := rev[b.Term]
		if !ok {
			return nil, fmt.Errorf("discharge: missing binding for term %s", p.sol.Display(b.Term))
		}
		out = append(out, assignment{param: pi, value: p.sol.Display(b.Value)})
	}
	return out, nil
}

func displayAssigns(assigns []assignment, comp *ir.Component) string {
	out := ""
	first := true
	for _, a := range assigns {
		if a.value == "0" {
			continue
		}
		if !first {
			out += ", "
		}
		first = false
		out += fmt.Sprintf("%s = %s", comp.DisplayParam(a.param), a.value)
	}
	return out
}

var _ visitor.Visitor = (*Pass)(nil)
