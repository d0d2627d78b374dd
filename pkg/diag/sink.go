package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"
)

// Sink collects diagnostics emitted while a pass runs a component and
// renders them at the end. Collecting rather than printing as they
// arrive lets a caller (cmd/tpc, or a test) decide whether to print at
// all.
type Sink struct {
	w           io.Writer
	diagnostics []Diagnostic
	color       bool
}

// NewSink wraps w. When w is an *os.File attached to a terminal, output
// is colorized; piped output (a log file, a CI runner) stays plain.
func NewSink(w io.Writer) *Sink {
	color := false
	if f, ok := w.(*os.File); ok {
		color = term.IsTerminal(int(f.Fd()))
	}
	return &Sink{w: w, color: color}
}

// Report records a diagnostic for later rendering.
func (s *Sink) Report(d Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}

// Count returns the number of diagnostics recorded so far.
func (s *Sink) Count() int { return len(s.diagnostics) }

// Diagnostics returns the diagnostics recorded so far, in report order.
func (s *Sink) Diagnostics() []Diagnostic { return s.diagnostics }

// Flush renders every recorded diagnostic as a table, one row per
// diagnostic plus one row per note attached to it.
func (s *Sink) Flush() {
	if len(s.diagnostics) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(s.w)
	t.SetTitle(fmt.Sprintf("%d diagnostic(s)", len(s.diagnostics)))
	t.AppendHeader(table.Row{"Severity", "Location", "Message"})
	for _, d := range s.diagnostics {
		loc := "<no position>"
		if d.HasPos() {
			loc = fmt.Sprintf("%s:%d:%d", d.Pos.File, d.Pos.Line, d.Pos.Col)
		}
		t.AppendRow(table.Row{severityLabel(d.Severity, s.color), loc, d.Message})
		for _, note := range d.Notes {
			t.AppendRow(table.Row{"", "", "  " + note})
		}
	}
	t.Render()
}

func severityLabel(sev Severity, color bool) string {
	label := sev.String()
	if !color {
		return label
	}
	if sev == SeverityError {
		return "\x1b[31m" + label + "\x1b[0m"
	}
	return "\x1b[33m" + label + "\x1b[0m"
}
