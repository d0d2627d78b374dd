// Package ir defines the interned, arena-indexed intermediate
// representation the interval-checking core operates over: parameters,
// events, expressions, times, propositions and facts, plus the
// signature-level interval algebra used to generate proof obligations
// before they are lowered into arena propositions.
package ir

// Id is an interned name. Two Ids compare equal iff they name the same
// string; comparison and map-keying are by this small integer identity,
// never by re-comparing the underlying bytes.
type Id int

// NoId is a sentinel distinct from any Id Interner.Intern ever returns.
// It is not the zero value of Id — Id(0) is the first interned name and
// is itself a valid, meaningful identity, not an "absent" marker.
const NoId Id = -1

// Interner assigns a stable small-integer identity to each distinct
// name it sees. It is the concrete backing for every Id used across the
// arena (param names, event names, component names, instance names).
type Interner struct {
	byName map[string]Id
	names  []string
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{byName: make(map[string]Id)}
}

// Intern returns the Id for name, assigning a fresh one on first sight.
func (in *Interner) Intern(name string) Id {
	if id, ok := in.byName[name]; ok {
		return id
	}
	id := Id(len(in.names))
	in.names = append(in.names, name)
	in.byName[name] = id
	return id
}

// Name returns the string a previously interned Id stands for. Panics on
// an Id this interner never produced — that is always a bug in the
// caller, not a recoverable condition.
func (in *Interner) Name(id Id) string {
	return in.names[id]
}

// Lookup returns the Id for name without interning it.
func (in *Interner) Lookup(name string) (Id, bool) {
	id, ok := in.byName[name]
	return id, ok
}
