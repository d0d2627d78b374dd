// Package visitor specifies the traversal surface a pass consumes. The
// walk itself (matching scope-open/scope-close events, recursing into
// If/Loop bodies) is external to this module by design — see package
// walk for the minimal reference implementation used by tests and
// cmd/tpc, which plays the same "glue, not the generic framework" role
// the teacher repo gives its own cmd/ wiring around tree-sitter.
package visitor

import "github.com/tempo-hdl/tpc/pkg/ir"

// Action tells the walker whether to keep descending into a command's
// children or to stop early.
type Action int

const (
	Continue Action = iota
	Stop
)

// And runs the next step only if the receiver is Continue, propagating
// Stop. Mirrors the original's Action::and_then combinator so multi-step
// hooks (do_if visiting both branches, do_loop visiting its start then
// its body) read the same way the teacher's own IR code chains
// fallible steps with `?`.
func (a Action) And(next func() Action) Action {
	if a == Stop {
		return a
	}
	return next()
}

// Data carries what the walker hands to every hook: the component being
// traversed and the context it belongs to. Named Data rather than
// VisitorData to avoid stuttering as visitor.Data.
type Data struct {
	Comp *ir.Component
	Ctx  *ir.Context
}

// Construct is implemented by a pass's constructor, mirroring the
// original's per-pass `from(opts, ctx)` + `clear_data` lifecycle.
type Construct interface {
	// ClearData resets any per-component state. Called between
	// components (and, for Discharge, also drives the solver's
	// pop/push pair — see discharge.Pass.ClearData).
	ClearData()
}

// Visitor is the full traversal surface. It is a single interface: a
// pass implements every hook, and package walk calls all of them.
type Visitor interface {
	Construct

	// Name identifies the pass, used in diagnostics and logs.
	Name() string

	// Start is called once per component, before any other callback.
	Start(data *Data) Action

	// End is called once per component, after every other callback.
	End(data *Data)

	// Fact is called exactly once per fact encountered in the command
	// stream, in the order the walker visits them.
	Fact(f *ir.Fact, data *Data) Action

	// DoIf is called for a scoped `if` command; its Then/Alt bodies'
	// own Fact/DoIf/DoLoop calls happen between scope-open and
	// scope-close, observable to the pass via Data and the pass's own
	// `scoped` bookkeeping.
	DoIf(i *ir.If, data *Data) Action

	// DoLoop is called for a scoped loop command.
	DoLoop(l *ir.Loop, data *Data) Action

	// AfterTraversal is called once after End; a pass returns a
	// nonzero error count here to tell the driver to abort the
	// pipeline, or ok=false to report nothing.
	AfterTraversal() (count uint64, ok bool)
}
