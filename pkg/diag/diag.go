// Package diag renders positioned diagnostics for the discharge pass,
// following the same ErrorWithPosition idiom the teacher uses in
// pkg/semantic/error_position.go — a concrete positioned error value
// rather than a wrapped stdlib error chain.
package diag

import (
	"fmt"

	"github.com/tempo-hdl/tpc/pkg/ir"
)

// Severity classifies a Diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityNote
)

func (s Severity) String() string {
	if s == SeverityNote {
		return "note"
	}
	return "error"
}

// Diagnostic is a positioned failure report: an unprovable obligation,
// with an optional counterexample attached as Notes.
type Diagnostic struct {
	Severity Severity
	Message  string
	Pos      ir.Pos // zero value means "no position available"
	Notes    []string
}

// HasPos reports whether Pos carries real source information.
func (d Diagnostic) HasPos() bool { return d.Pos.Line > 0 }

// Error satisfies the error interface, mirroring ErrorWithPosition: file
// and line when available, otherwise just the message.
func (d Diagnostic) Error() string {
	if d.HasPos() {
		if d.Pos.File != "" {
			return fmt.Sprintf("%s:%d:%d: %s", d.Pos.File, d.Pos.Line, d.Pos.Col, d.Message)
		}
		return fmt.Sprintf("line %d, col %d: %s", d.Pos.Line, d.Pos.Col, d.Message)
	}
	return d.Message
}

// WithNote appends a counterexample or explanation line and returns the
// updated Diagnostic.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// Unprovable builds the diagnostic for a failed obligation, with or
// without a reason attached — §7's two "recoverable, unprovable"
// classes differ only in whether Pos/Reason carry anything.
func Unprovable(display string, info ir.Info) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Message:  fmt.Sprintf("cannot prove constraint: %s", display),
	}
	if info.Kind == ir.InfoAssert {
		d.Pos = info.Pos
	}
	return d
}
