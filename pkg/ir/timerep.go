package ir

import "fmt"

// TimeRep is the capability a time representation must expose to the
// algebra-independent parts of the checker: binding substitution and the
// set of events it mentions. FsmIdxs (package fsmidx) is the only
// implementation the solver core ships, but nothing here depends on it
// concretely — obligation generation is written entirely against this
// interface.
type TimeRep interface {
	// Resolve substitutes bound events for their bindings, flattening
	// the result. Returns UnboundEvent if an event mentioned by the
	// receiver has no entry in bindings.
	Resolve(bindings map[Id]TimeRep) (TimeRep, error)

	// Events returns the names of every event this expression mentions,
	// in insertion order.
	Events() []Id

	// String renders the expression for diagnostics and SMT names.
	String() string
}

// Unitary is implemented by a TimeRep that can, in some cases, collapse
// to a single (event, offset) pair. FsmIdxs implements it; the interval
// machinery below uses only this interface, never the concrete type, so
// it stays decoupled from the time algebra package.
type Unitary interface {
	// AsUnit reports the sole (event, offset) pair if the receiver
	// mentions exactly one event, else ok is false.
	AsUnit() (event Id, offset uint64, ok bool)
}

// UnboundEvent is returned by Resolve when a binding is missing for an
// event the receiver mentions. It is a fatal, not recoverable, condition:
// it indicates an ill-typed IR reaching this pass (§7).
type UnboundEvent struct {
	Event Id
	Name  string // resolved display name, for error messages
}

func (e UnboundEvent) Error() string {
	return fmt.Sprintf("no binding for event %q", e.Name)
}
