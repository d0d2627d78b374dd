// Package walk provides the minimal reference traversal that drives a
// visitor.Visitor over one component. It is deliberately small — no
// scheduling, no extensibility hooks beyond what package visitor already
// defines — because the generic visitor framework itself is external to
// this module's scope (§1); something still has to call Start/Fact/End
// to exercise the core in tests and in cmd/tpc, the same role the
// teacher repo's own cmd/ glue plays around its external tree-sitter
// binary.
package walk

import (
	"github.com/tempo-hdl/tpc/pkg/ir"
	"github.com/tempo-hdl/tpc/pkg/visitor"
)

// VisitCommands dispatches each command in cmds to the matching Visitor
// hook, in order, stopping early if any hook returns visitor.Stop. A
// pass's own DoIf/DoLoop implementations call this recursively to
// descend into scoped bodies — exactly as the original's `do_if` calls
// back into `visit_cmds` for its then/alt branches.
func VisitCommands(v visitor.Visitor, cmds []ir.Command, data *visitor.Data) visitor.Action {
	for i := range cmds {
		cmd := &cmds[i]
		var action visitor.Action
		switch cmd.Kind {
		case ir.CmdFact:
			f := data.Comp.Fact(cmd.Fact)
			action = v.Fact(&f, data)
		case ir.CmdIf:
			action = v.DoIf(cmd.If, data)
		case ir.CmdLoop:
			action = v.DoLoop(cmd.Loop, data)
		case ir.CmdConnect, ir.CmdInvoke, ir.CmdInstance:
			// These commands carry no fact/scope hooks of their own in
			// the visitor contract (§4.3) — their proof obligations
			// were already turned into CmdFact entries by the checker
			// pass (§4.6) before a Visitor ever walks the component.
			action = visitor.Continue
		default:
			action = visitor.Continue
		}
		if action == visitor.Stop {
			return visitor.Stop
		}
	}
	return visitor.Continue
}

// Run drives v over comp once: Start, then the command stream (unless
// Start returns Stop), then End, then AfterTraversal.
func Run(v visitor.Visitor, ctx *ir.Context, comp *ir.Component) (count uint64, ok bool) {
	data := &visitor.Data{Comp: comp, Ctx: ctx}
	if v.Start(data) == visitor.Continue {
		VisitCommands(v, comp.Commands, data)
	}
	v.End(data)
	return v.AfterTraversal()
}
