package parser

import (
	"fmt"
	"strings"

	"github.com/go6809/asm6809/asm"
	"github.com/go6809/asm6809/m6809"
)

// exprOnlyMnemonics take exactly one bare expression argument.
var exprOnlyMnemonics = map[string]bool{
	"EQU": true, "ORG": true, "PUT": true, "SETDP": true,
	"RMB": true, "RZB": true,
}

// nameArgMnemonics take a single literal name/filename argument.
var nameArgMnemonics = map[string]bool{
	"SECTION": true, "INCLUDE": true, "INCLUDEBIN": true,
}

// parseLine lexes one line of source text into an asm.Line. number is
// the 1-based line number recorded on the result (and used for
// NB/NF local-label proximity at assembly time); file and row feed
// fstring's position tracking for error messages.
func parseLine(file string, number int, text string) (asm.Line, error) {
	raw := newFstring(file, number, text).stripTrailingComment()
	out := asm.Line{Number: number}

	if raw.isEmpty() {
		return out, nil
	}

	rest := raw
	if !rest.startsWith(whitespace) {
		labelTok, r := rest.consumeUntil(whitespace)
		out.Label = strings.TrimSuffix(labelTok.str, ":")
		rest = r
	}
	rest = rest.consumeWhitespace()
	if rest.isEmpty() {
		return out, nil
	}

	mnemonicTok, r := rest.consumeUntil(whitespace)
	out.Mnemonic = mnemonicTok.str
	rest = r.consumeWhitespace()

	mnemU := strings.ToUpper(out.Mnemonic)

	switch {
	case mnemU == "MACRO" || mnemU == "ENDM":
		// No argument grammar: MACRO's operand is the label already
		// captured above; ENDM takes nothing.

	case exprOnlyMnemonics[mnemU]:
		node, remain, err := parseExpr(rest, false)
		if err != nil {
			return out, fmt.Errorf("%s: %w", out.Mnemonic, err)
		}
		if s := remain.consumeWhitespace(); !s.isEmpty() {
			return out, fmt.Errorf("%s: unexpected %q", out.Mnemonic, s.str)
		}
		out.Args = []*asm.Node{node}

	case nameArgMnemonics[mnemU]:
		node, remain, err := parseNameArg(rest)
		if err != nil {
			return out, fmt.Errorf("%s: %w", out.Mnemonic, err)
		}
		if s := remain.consumeWhitespace(); !s.isEmpty() {
			return out, fmt.Errorf("%s: unexpected %q", out.Mnemonic, s.str)
		}
		out.Args = []*asm.Node{node}

	case mnemU == "EXPORT":
		args, err := parseNameArgList(rest)
		if err != nil {
			return out, fmt.Errorf("EXPORT: %w", err)
		}
		out.Args = args

	case mnemU == "FCC":
		args, err := parseFCC(rest)
		if err != nil {
			return out, fmt.Errorf("FCC: %w", err)
		}
		out.Args = args

	case mnemU == "FCB" || mnemU == "FDB":
		args, err := parseExprList(file, number, rest)
		if err != nil {
			return out, fmt.Errorf("%s: %w", out.Mnemonic, err)
		}
		out.Args = args

	case len(m6809.GetInstructions(mnemU)) > 0:
		operand, err := parseOperand(file, number, out.Mnemonic, rest)
		if err != nil {
			return out, fmt.Errorf("%s: %w", out.Mnemonic, err)
		}
		out.Operand = operand

	default:
		// Not a recognized pseudo-op or 6809 instruction: may be a
		// macro invocation, which shares FCB/FDB's comma-separated
		// expression-list argument shape. If it's neither, the driver
		// reports "unknown mnemonic" once it looks mnemU up.
		args, err := parseExprList(file, number, rest)
		if err != nil {
			return out, fmt.Errorf("%s: %w", out.Mnemonic, err)
		}
		out.Args = args
	}

	return out, nil
}
