package parser

import (
	"fmt"
	"strings"

	"github.com/go6809/asm6809/asm"
)

// parseExprList parses a comma-separated list of expressions, used by
// FCB/FDB and by macro invocations (whose argument shape is
// indistinguishable from a directive's until the driver looks the
// name up in the macro table at assembly time).
func parseExprList(file string, row int, rest fstring) ([]*asm.Node, error) {
	var args []*asm.Node
	rest = rest.consumeWhitespace()
	if rest.isEmpty() {
		return nil, nil
	}
	for {
		node, remain, err := parseExpr(rest, false)
		if err != nil {
			return nil, err
		}
		args = append(args, node)
		remain = remain.consumeWhitespace()
		if !remain.startsWithChar(',') {
			if !remain.isEmpty() {
				return nil, fmt.Errorf("unexpected %q in argument list", remain.str)
			}
			return args, nil
		}
		rest = remain.consume(1).consumeWhitespace()
	}
}

// parseNameArg parses a single literal-text argument: a quoted string,
// or (for bare filenames and section/export names) a plain word. The
// result is a Text node, never an Id — these names are never symbol
// lookups, unlike a bare identifier inside an expression.
func parseNameArg(rest fstring) (node *asm.Node, remain fstring, err error) {
	rest = rest.consumeWhitespace()
	if rest.isEmpty() {
		return nil, rest, fmt.Errorf("expected a name")
	}
	if rest.startsWithChar('"') || rest.startsWithChar('\'') {
		quote := rest.str[0]
		body := rest.consume(1)
		i := 0
		for i < len(body.str) && body.str[i] != quote {
			i++
		}
		if i >= len(body.str) {
			return nil, rest, fmt.Errorf("unterminated string")
		}
		return asm.NewText(quote, asm.NewString(body.trunc(i).str)), body.consume(i + 1), nil
	}
	word, remain := rest.consumeUntil(func(c byte) bool { return whitespace(c) || c == ',' })
	if word.isEmpty() {
		return nil, rest, fmt.Errorf("expected a name")
	}
	return asm.NewText(0, asm.NewString(word.str)), remain, nil
}

// parseNameArgList parses a comma-separated list of name arguments,
// for EXPORT.
func parseNameArgList(rest fstring) ([]*asm.Node, error) {
	var args []*asm.Node
	rest = rest.consumeWhitespace()
	if rest.isEmpty() {
		return nil, nil
	}
	for {
		node, remain, err := parseNameArg(rest)
		if err != nil {
			return nil, err
		}
		args = append(args, node)
		remain = remain.consumeWhitespace()
		if !remain.startsWithChar(',') {
			if !remain.isEmpty() {
				return nil, fmt.Errorf("unexpected %q after name list", remain.str)
			}
			return args, nil
		}
		rest = remain.consume(1).consumeWhitespace()
	}
}

// parseFCC parses FCC's delimited-text syntax: the first non-blank
// character after the mnemonic is the delimiter, and the literal text
// runs until that same character reappears. Motorola assemblers favor
// this over a fixed quote character so that a string itself may
// contain '"' (delimited with e.g. '/') or vice versa.
func parseFCC(rest fstring) ([]*asm.Node, error) {
	rest = rest.consumeWhitespace()
	if rest.isEmpty() {
		return nil, fmt.Errorf("FCC requires a delimited string")
	}
	delim := rest.str[0]
	body := rest.consume(1)
	i := strings.IndexByte(body.str, delim)
	if i < 0 {
		return nil, fmt.Errorf("FCC string missing closing delimiter %q", string(delim))
	}
	text := body.trunc(i).str
	return []*asm.Node{asm.NewText(delim, asm.NewString(text))}, nil
}
