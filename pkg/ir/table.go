package ir

// Table is a dense, append-only, index-addressed store. It backs every
// arena kind (Param, Event, Expr, Time, Prop, Fact): indices are stable
// until the table is cleared and double as printable identifiers. Clear
// empties the table, so pushes after it start again at index 0.
type Table[T any] struct {
	entries []T
}

// Push appends entry and returns its new index.
func (t *Table[T]) Push(entry T) int {
	t.entries = append(t.entries, entry)
	return len(t.entries) - 1
}

// Get returns the entry at idx. Panics on an out-of-range idx, which
// always indicates an ill-formed arena rather than a recoverable error.
func (t *Table[T]) Get(idx int) T {
	return t.entries[idx]
}

// Len returns the number of entries currently pushed.
func (t *Table[T]) Len() int {
	return len(t.entries)
}

// Clear empties the table, preparing it for reuse on the next component.
func (t *Table[T]) Clear() {
	t.entries = t.entries[:0]
}

// Iter calls fn for every (index, entry) pair in index order, stopping
// early if fn returns false.
func (t *Table[T]) Iter(fn func(idx int, entry T) bool) {
	for i, e := range t.entries {
		if !fn(i, e) {
			return
		}
	}
}

// ParamIdx addresses a parameter declaration in a Component's arena.
type ParamIdx int

// EventIdx addresses an event declaration in a Component's arena.
type EventIdx int

// ExprIdx addresses an expression node in a Component's arena.
type ExprIdx int

// TimeIdx addresses a resolved (event, offset) time in a Component's arena.
type TimeIdx int

// PropIdx addresses a proposition node in a Component's arena.
type PropIdx int

// FactIdx addresses a fact (assume/assert) in a Component's arena.
type FactIdx int

// InfoIdx addresses a provenance record (what source construct produced
// a fact) in a Component's arena.
type InfoIdx int
