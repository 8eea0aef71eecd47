package parser

import (
	"testing"

	"github.com/go6809/asm6809/asm"
)

func parseExprStr(t *testing.T, src string) *asm.Node {
	t.Helper()
	n, remain, err := parseExpr(newFstring("t.asm", 1, src), false)
	if err != nil {
		t.Fatalf("parseExpr(%q): %v", src, err)
	}
	if s := remain.consumeWhitespace(); !s.isEmpty() {
		t.Fatalf("parseExpr(%q): unconsumed input %q", src, s.str)
	}
	return n
}

func TestParseExprPrecedence(t *testing.T) {
	// 2+3*4 must parse as 2+(3*4), not (2+3)*4.
	n := parseExprStr(t, "2+3*4")
	if n.Kind != asm.KindOper || n.Op != asm.OpAdd {
		t.Fatalf("root: got kind %v op %v, want OpAdd", n.Kind, n.Op)
	}
	if n.Children[0].Kind != asm.KindInt || n.Children[0].Int != 2 {
		t.Fatalf("left: got %v", n.Children[0])
	}
	rhs := n.Children[1]
	if rhs.Kind != asm.KindOper || rhs.Op != asm.OpMul {
		t.Fatalf("right: got kind %v op %v, want OpMul", rhs.Kind, rhs.Op)
	}
	if rhs.Children[0].Int != 3 || rhs.Children[1].Int != 4 {
		t.Fatalf("right operands: got %v, %v", rhs.Children[0], rhs.Children[1])
	}
}

func TestParseExprLeftAssociative(t *testing.T) {
	// 10-3-2 must parse as (10-3)-2 == 5, not 10-(3-2) == 9.
	n := parseExprStr(t, "10-3-2")
	if n.Kind != asm.KindOper || n.Op != asm.OpSub {
		t.Fatalf("root: got %v", n)
	}
	lhs := n.Children[0]
	if lhs.Kind != asm.KindOper || lhs.Op != asm.OpSub {
		t.Fatalf("left child should be the first subtraction, got %v", lhs)
	}
	if lhs.Children[0].Int != 10 || lhs.Children[1].Int != 3 {
		t.Fatalf("left child operands: got %v", lhs)
	}
	if n.Children[1].Int != 2 {
		t.Fatalf("right operand: got %v", n.Children[1])
	}
}

func TestParseExprParens(t *testing.T) {
	n := parseExprStr(t, "(2+3)*4")
	if n.Kind != asm.KindOper || n.Op != asm.OpMul {
		t.Fatalf("root: got %v", n)
	}
	lhs := n.Children[0]
	if lhs.Kind != asm.KindOper || lhs.Op != asm.OpAdd {
		t.Fatalf("left child should be the parenthesized sum, got %v", lhs)
	}
}

func TestParseExprUnaryMinus(t *testing.T) {
	n := parseExprStr(t, "-5+3")
	if n.Kind != asm.KindOper || n.Op != asm.OpAdd {
		t.Fatalf("root: got %v", n)
	}
	neg := n.Children[0]
	if neg.Kind != asm.KindOper || neg.Op != asm.OpNeg || len(neg.Children) != 1 {
		t.Fatalf("left operand should be a unary negation, got %v", neg)
	}
	if neg.Children[0].Int != 5 {
		t.Fatalf("negated operand: got %v", neg.Children[0])
	}
}

func TestParseExprHereOperator(t *testing.T) {
	n := parseExprStr(t, "*+2")
	if n.Kind != asm.KindOper || n.Op != asm.OpAdd {
		t.Fatalf("root: got %v", n)
	}
	if n.Children[0].Kind != asm.KindPC {
		t.Fatalf("left operand should be the PC reference, got %v", n.Children[0])
	}
}

func TestParseExprMultiplyVsHereDisambiguation(t *testing.T) {
	// After an operand, '*' means multiply, never the here-operator.
	n := parseExprStr(t, "2*3")
	if n.Kind != asm.KindOper || n.Op != asm.OpMul {
		t.Fatalf("got %v, want a multiplication", n)
	}
}

func TestParseExprRadixLiterals(t *testing.T) {
	cases := []struct {
		src  string
		want int64
	}{
		{"$FF", 0xFF},
		{"%1010", 0b1010},
		{"@17", 017},
	}
	for _, c := range cases {
		n := parseExprStr(t, c.src)
		if n.Kind != asm.KindInt || n.Int != c.want {
			t.Errorf("%s: got %v, want int %d", c.src, n, c.want)
		}
	}
}

func TestParseExprCharLiteral(t *testing.T) {
	n := parseExprStr(t, "'A'")
	if n.Kind != asm.KindInt || n.Int != 'A' {
		t.Fatalf("got %v, want int 65", n)
	}
}

func TestParseExprLocalLabelRefs(t *testing.T) {
	back := parseExprStr(t, "10B")
	if back.Kind != asm.KindBackRef || back.Index != 10 {
		t.Fatalf("10B: got %v", back)
	}
	fwd := parseExprStr(t, "10F")
	if fwd.Kind != asm.KindFwdRef || fwd.Index != 10 {
		t.Fatalf("10F: got %v", fwd)
	}
}

func TestParseExprPlainDecimalNotMistakenForLocalRef(t *testing.T) {
	// A digit run followed by more identifier characters (or nothing
	// recognizable as B/F) must parse as a number, not a local ref.
	n := parseExprStr(t, "108")
	if n.Kind != asm.KindInt || n.Int != 108 {
		t.Fatalf("got %v, want int 108", n)
	}
}

func TestParseExprFloat(t *testing.T) {
	n := parseExprStr(t, "3.5")
	if n.Kind != asm.KindFloat || n.Float != 3.5 {
		t.Fatalf("got %v, want float 3.5", n)
	}
}

func TestParseExprIdentifier(t *testing.T) {
	n := parseExprStr(t, "LOOP")
	if n.Kind != asm.KindId || len(n.Children) != 1 || string(n.Children[0].Bytes) != "LOOP" {
		t.Fatalf("got %v", n)
	}
}

func TestParseExprIdentifierWithInterpolation(t *testing.T) {
	// LOOP&1 is two fragments: the literal text "LOOP" and an
	// interpolation of macro argument 1.
	n := parseExprStr(t, "LOOP&1")
	if n.Kind != asm.KindId || len(n.Children) != 2 {
		t.Fatalf("got %v", n)
	}
	if string(n.Children[0].Bytes) != "LOOP" {
		t.Fatalf("first fragment: got %v", n.Children[0])
	}
	if n.Children[1].Kind != asm.KindInterp || n.Children[1].Index != 1 {
		t.Fatalf("second fragment: got %v", n.Children[1])
	}
}

func TestParseExprBareInterpolation(t *testing.T) {
	n := parseExprStr(t, "&3")
	if n.Kind != asm.KindInterp || n.Index != 3 {
		t.Fatalf("got %v", n)
	}
}

func TestParseExprStopsAtAngleBracket(t *testing.T) {
	// '<'/'>' are addressing-mode-forcing prefixes handled by the
	// operand grammar, never expression operators; the expression
	// parser must stop cold rather than treat them as comparisons.
	n, remain, err := parseExpr(newFstring("t.asm", 1, "5<10"), false)
	if err != nil {
		t.Fatalf("parseExpr: %v", err)
	}
	if n.Kind != asm.KindInt || n.Int != 5 {
		t.Fatalf("got %v, want int 5", n)
	}
	if remain.str != "<10" {
		t.Fatalf("remain: got %q, want \"<10\"", remain.str)
	}
}

func TestParseExprUnmatchedParen(t *testing.T) {
	if _, _, err := parseExpr(newFstring("t.asm", 1, "(1+2"), false); err == nil {
		t.Fatal("expected an error for an unmatched '('")
	}
}

func TestParseExprDisallowsStringsByDefault(t *testing.T) {
	// A bare '"' isn't a recognized token start outside FCC-like
	// directives, so it should stop the expression, not error out
	// from inside the string scanner.
	n, remain, err := parseExpr(newFstring("t.asm", 1, `1"x"`), false)
	if err != nil {
		t.Fatalf("parseExpr: %v", err)
	}
	if n.Int != 1 {
		t.Fatalf("got %v", n)
	}
	if remain.str != `"x"` {
		t.Fatalf("remain: got %q", remain.str)
	}
}

func TestParseExprStringLiteralWhenAllowed(t *testing.T) {
	n, remain, err := parseExpr(newFstring("t.asm", 1, `"hi",next`), true)
	if err != nil {
		t.Fatalf("parseExpr: %v", err)
	}
	if n.Kind != asm.KindText || string(n.Children[0].Bytes) != "hi" {
		t.Fatalf("got %v", n)
	}
	if remain.str != ",next" {
		t.Fatalf("remain: got %q", remain.str)
	}
}
