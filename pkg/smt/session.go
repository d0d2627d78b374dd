package smt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/xid"
)

// SolverKind selects which SMT binary a Session drives.
type SolverKind int

const (
	Z3 SolverKind = iota
	CVC5
)

func (k SolverKind) binaryAndFlags() (string, []string) {
	switch k {
	case CVC5:
		return "cvc5", []string{"--incremental", "--force-logic=ALL"}
	default:
		return "z3", []string{"-smt2", "-in"}
	}
}

// Config configures a Session.
type Config struct {
	Solver SolverKind
	// ReplayFile, if non-empty, receives a verbatim line-oriented copy
	// of every command sent to the solver — enough to reproduce the
	// session offline by piping it into the same solver binary.
	ReplayFile string
}

// Session is a persistent SMT solver subprocess, grounded on the same
// os/exec idiom the teacher uses for one-shot tool invocations
// (pkg/parser/parser.go, pkg/z80testing/e2e_harness.go) but extended to
// a long-lived bidirectional pipe, since one-shot processes would defeat
// incremental solving (§9).
type Session struct {
	kind SolverKind

	// id uniquely identifies this session for debug logging and replay
	// bookkeeping — distinct tpc invocations against the same solver
	// binary are otherwise indistinguishable in a shared log stream.
	id string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	replay io.WriteCloser
}

// ID returns this session's unique identifier.
func (s *Session) ID() string { return s.id }

// Open starts the configured solver subprocess.
func Open(cfg Config) (*Session, error) {
	bin, flags := cfg.Solver.binaryAndFlags()
	cmd := exec.Command(bin, flags...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("smt: failed to open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("smt: failed to open stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("smt: failed to start %s: %w", bin, err)
	}

	s := &Session{
		kind:   cfg.Solver,
		id:     xid.New().String(),
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdout),
	}

	if cfg.ReplayFile != "" {
		f, err := os.Create(cfg.ReplayFile)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("smt: failed to create replay file: %w", err)
		}
		s.replay = f
	}

	return s, nil
}

// send writes one command line to the solver (and, if configured, to
// the replay file). Commands are never batched: §5 requires declarations
// in strictly increasing index order, one at a time.
func (s *Session) send(line string) error {
	if s.replay != nil {
		if _, err := io.WriteString(s.replay, line+"\n"); err != nil {
			return fmt.Errorf("smt: failed to write replay line: %w", err)
		}
	}
	if _, err := io.WriteString(s.stdin, line+"\n"); err != nil {
		return fmt.Errorf("smt: failed to write to solver: %w", err)
	}
	return nil
}

// readLine reads one line of solver output, trimming the trailing
// newline.
func (s *Session) readLine() (string, error) {
	line, err := s.stdout.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("smt: failed to read from solver: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *Session) IntSort() Sort  { return SortInt }
func (s *Session) BoolSort() Sort { return SortBool }

func (s *Session) DeclareConst(name string, sort Sort) (SExpr, error) {
	return s.DeclareFun(name, nil, sort)
}

func (s *Session) DeclareFun(name string, args []Sort, ret Sort) (SExpr, error) {
	argList := sortList(args)
	if err := s.send(fmt.Sprintf("(declare-fun %s (%s) %s)", name, argList, ret)); err != nil {
		return "", err
	}
	return SExpr(name), nil
}

func (s *Session) DefineConst(name string, sort Sort, value SExpr) (SExpr, error) {
	if err := s.send(fmt.Sprintf("(define-const %s %s %s)", name, sort, value)); err != nil {
		return "", err
	}
	return SExpr(name), nil
}

func sortList(args []Sort) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = string(a)
	}
	return strings.Join(parts, " ")
}

func (s *Session) Numeral(n int64) SExpr {
	if n < 0 {
		return SExpr(fmt.Sprintf("(- %d)", -n))
	}
	return SExpr(fmt.Sprintf("%d", n))
}

func (s *Session) True() SExpr  { return "true" }
func (s *Session) False() SExpr { return "false" }

func (s *Session) Not(e SExpr) SExpr    { return SExpr(fmt.Sprintf("(not %s)", e)) }
func (s *Session) And(es ...SExpr) SExpr { return variadic("and", es) }
func (s *Session) Or(es ...SExpr) SExpr  { return variadic("or", es) }
func (s *Session) Imp(a, b SExpr) SExpr { return binary("=>", a, b) }
func (s *Session) Gt(a, b SExpr) SExpr  { return binary(">", a, b) }
func (s *Session) Gte(a, b SExpr) SExpr { return binary(">=", a, b) }
func (s *Session) Eq(a, b SExpr) SExpr  { return binary("=", a, b) }
func (s *Session) Plus(a, b SExpr) SExpr  { return binary("+", a, b) }
func (s *Session) Sub(a, b SExpr) SExpr   { return binary("-", a, b) }
func (s *Session) Times(a, b SExpr) SExpr { return binary("*", a, b) }
func (s *Session) Div(a, b SExpr) SExpr   { return binary("div", a, b) }
func (s *Session) Mod(a, b SExpr) SExpr   { return binary("mod", a, b) }

func (s *Session) List(items []SExpr) SExpr {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = string(it)
	}
	return SExpr(fmt.Sprintf("(%s)", strings.Join(parts, " ")))
}

func binary(op string, a, b SExpr) SExpr {
	return SExpr(fmt.Sprintf("(%s %s %s)", op, a, b))
}

func variadic(op string, es []SExpr) SExpr {
	if len(es) == 0 {
		return "true"
	}
	if len(es) == 1 {
		return es[0]
	}
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = string(e)
	}
	return SExpr(fmt.Sprintf("(%s %s)", op, strings.Join(parts, " ")))
}

func (s *Session) Assert(e SExpr) error {
	return s.send(fmt.Sprintf("(assert %s)", e))
}

func (s *Session) Push() error {
	return s.send("(push 1)")
}

func (s *Session) Pop() error {
	return s.send("(pop 1)")
}

func (s *Session) Check() (Response, error) {
	if err := s.send("(check-sat)"); err != nil {
		return Unknown, err
	}
	return s.readResponse()
}

func (s *Session) CheckAssuming(lits []SExpr) (Response, error) {
	names := make([]string, len(lits))
	for i, l := range lits {
		names[i] = string(l)
	}
	if err := s.send(fmt.Sprintf("(check-sat-assuming (%s))", strings.Join(names, " "))); err != nil {
		return Unknown, err
	}
	return s.readResponse()
}

func (s *Session) readResponse() (Response, error) {
	line, err := s.readLine()
	if err != nil {
		return Unknown, err
	}
	switch strings.TrimSpace(line) {
	case "sat":
		return Sat, nil
	case "unsat":
		return Unsat, nil
	case "unknown":
		return Unknown, nil
	default:
		return Unknown, errUnexpectedResponse{Got: line}
	}
}

// GetValue issues (get-value (terms...)) and parses the flat
// ((term value) ...) reply. Terms are the single symbols this module
// requests; a value may be a single token or a parenthesized group such
// as "(- 2)" (see parseGetValueReply).
func (s *Session) GetValue(terms []SExpr) ([]ValueBinding, error) {
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = string(t)
	}
	if err := s.send(fmt.Sprintf("(get-value (%s))", strings.Join(names, " "))); err != nil {
		return nil, err
	}
	line, err := s.readLine()
	if err != nil {
		return nil, err
	}
	return parseGetValueReply(line)
}

// parseGetValueReply parses a flat SMT-LIB get-value reply of the shape
// "((t1 v1) (t2 v2) ...)" into ValueBindings. It tolerates nested
// parenthesized values (e.g. "(- 3)") by pairing on balanced depth.
func parseGetValueReply(line string) ([]ValueBinding, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "(") || !strings.HasSuffix(line, ")") {
		return nil, errUnexpectedResponse{Got: line}
	}
	inner := line[1 : len(line)-1]
	pairs, err := splitTopLevel(inner)
	if err != nil {
		return nil, err
	}
	out := make([]ValueBinding, 0, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if !strings.HasPrefix(pair, "(") || !strings.HasSuffix(pair, ")") {
			return nil, errUnexpectedResponse{Got: pair}
		}
		fields, err := splitTopLevel(pair[1 : len(pair)-1])
		if err != nil {
			return nil, err
		}
		if len(fields) != 2 {
			return nil, errUnexpectedResponse{Got: pair}
		}
		out = append(out, ValueBinding{
			Term:  SExpr(strings.TrimSpace(fields[0])),
			Value: SExpr(strings.TrimSpace(fields[1])),
		})
	}
	return out, nil
}

// splitTopLevel splits s on whitespace at paren-depth zero, keeping
// parenthesized groups intact.
func splitTopLevel(s string) ([]string, error) {
	var out []string
	depth := 0
	start := -1
	for i, r := range s {
		switch r {
		case '(':
			if depth == 0 && start == -1 {
				start = i
			}
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, errUnexpectedResponse{Got: s}
			}
			if depth == 0 {
				out = append(out, s[start:i+1])
				start = -1
			}
		case ' ', '\t', '\n':
			if depth == 0 && start != -1 {
				out = append(out, s[start:i])
				start = -1
			}
		default:
			if depth == 0 && start == -1 {
				start = i
			}
		}
	}
	if depth != 0 {
		return nil, errUnexpectedResponse{Got: s}
	}
	if start != -1 {
		out = append(out, s[start:])
	}
	return out, nil
}

func (s *Session) Display(e SExpr) string { return string(e) }

func (s *Session) Close() error {
	var errs []error
	if s.stdin != nil {
		if err := s.stdin.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.replay != nil {
		if err := s.replay.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Wait()
	}
	if len(errs) > 0 {
		return fmt.Errorf("smt: close errors: %v", errs)
	}
	return nil
}

var _ Solver = (*Session)(nil)
