package smt

import (
	"bufio"
	"io"
	"strings"
	"testing"
)

// pipeSession builds a Session without a real subprocess: stdin writes
// into a buffer this test reads back to assert on the protocol sent,
// stdout is fed scripted solver replies.
func pipeSession(t *testing.T, replies string) (*Session, *strings.Builder) {
	t.Helper()
	var sent strings.Builder
	s := &Session{
		kind:   Z3,
		stdin:  nopCloser{&sent},
		stdout: bufio.NewReader(strings.NewReader(replies)),
	}
	return s, &sent
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func TestDeclareFunAndAssertFormatSMTLIB(t *testing.T) {
	s, sent := pipeSession(t, "")
	if _, err := s.DeclareFun("w", []Sort{SortInt}, SortBool); err != nil {
		t.Fatalf("DeclareFun: %v", err)
	}
	if err := s.Assert(s.Gt(SExpr("w"), s.Numeral(3))); err != nil {
		t.Fatalf("Assert: %v", err)
	}
	got := sent.String()
	want := "(declare-fun w (Int) Bool)\n(assert (> w 3))\n"
	if got != want {
		t.Fatalf("sent = %q, want %q", got, want)
	}
}

func TestCheckParsesSatUnsatUnknown(t *testing.T) {
	for _, tc := range []struct {
		reply string
		want  Response
	}{
		{"sat\n", Sat},
		{"unsat\n", Unsat},
		{"unknown\n", Unknown},
	} {
		s, _ := pipeSession(t, tc.reply)
		res, err := s.Check()
		if err != nil {
			t.Fatalf("Check: %v", err)
		}
		if res != tc.want {
			t.Fatalf("Check() = %v, want %v", res, tc.want)
		}
	}
}

func TestCheckRejectsMalformedResponse(t *testing.T) {
	s, _ := pipeSession(t, "garbage\n")
	if _, err := s.Check(); err == nil {
		t.Fatalf("expected an error for a malformed solver response")
	}
}

func TestGetValueParsesFlatReply(t *testing.T) {
	s, _ := pipeSession(t, "((param0 3) (param1 (- 2)))\n")
	bindings, err := s.GetValue([]SExpr{"param0", "param1"})
	if err != nil {
		t.Fatalf("GetValue: %v", err)
	}
	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(bindings))
	}
	if bindings[0].Term != "param0" || bindings[0].Value != "3" {
		t.Fatalf("unexpected first binding: %+v", bindings[0])
	}
	if bindings[1].Term != "param1" || bindings[1].Value != "(- 2)" {
		t.Fatalf("unexpected second binding: %+v", bindings[1])
	}
}

func TestAndManyMatchesZeroOneManyCases(t *testing.T) {
	s, _ := pipeSession(t, "")
	if got := AndMany(s, nil); got != "true" {
		t.Fatalf("AndMany(nil) = %q, want true", got)
	}
	if got := AndMany(s, []SExpr{"p"}); got != "p" {
		t.Fatalf("AndMany([p]) = %q, want p", got)
	}
	if got := AndMany(s, []SExpr{"p", "q"}); got != "(and p q)" {
		t.Fatalf("AndMany([p,q]) = %q, want (and p q)", got)
	}
}

func TestSplitTopLevelKeepsParenGroupsIntact(t *testing.T) {
	out, err := splitTopLevel("(a b) (c (d e)) f")
	if err != nil {
		t.Fatalf("splitTopLevel: %v", err)
	}
	want := []string{"(a b)", "(c (d e))", "f"}
	if len(out) != len(want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %q, want %q", i, out[i], want[i])
		}
	}
}
