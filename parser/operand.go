package parser

import (
	"fmt"
	"strings"

	"github.com/go6809/asm6809/asm"
	"github.com/go6809/asm6809/m6809"
)

var stackListMnemonics = map[string]bool{
	"PSHS": true, "PULS": true, "PSHU": true, "PULU": true,
}

var registerPairMnemonics = map[string]bool{
	"TFR": true, "EXG": true,
}

// parseOperand parses the operand field of a real 6809 instruction
// line. Which of Operand's shapes applies is decided mostly by the
// operand text itself (a leading '#' is always immediate; a comma
// followed by an index register is always indexed); PSHS/PULS/PSHU/
// PULU and TFR/EXG are the only mnemonics whose comma-separated
// register syntax needs the mnemonic itself to disambiguate from
// indexed mode.
func parseOperand(file string, row int, mnemonic string, rest fstring) (*asm.Operand, error) {
	text := strings.TrimSpace(rest.str)
	if text == "" {
		return &asm.Operand{Kind: asm.OperandNone}, nil
	}

	mnemU := strings.ToUpper(mnemonic)

	if stackListMnemonics[mnemU] {
		return parseRegisterList(text)
	}
	if registerPairMnemonics[mnemU] {
		return parseRegisterPair(text)
	}

	if text[0] == '#' {
		expr, remain, err := parseExpr(newFstring(file, row, text[1:]), false)
		if err != nil {
			return nil, err
		}
		if s := strings.TrimSpace(remain.str); s != "" {
			return nil, fmt.Errorf("unexpected %q after immediate operand", s)
		}
		return &asm.Operand{Kind: asm.OperandImmediate, Expr: expr}, nil
	}

	indirect := false
	inner := text
	if text[0] == '[' && text[len(text)-1] == ']' {
		indirect = true
		inner = strings.TrimSpace(text[1 : len(text)-1])
	}

	if indirect || strings.ContainsRune(inner, ',') {
		idx, err := parseIndexedOperand(file, row, inner, indirect)
		if err != nil {
			return nil, err
		}
		return &asm.Operand{Kind: asm.OperandIndexed, Indexed: idx}, nil
	}

	sizeHint := asm.AttrNone
	switch text[0] {
	case '<':
		sizeHint = asm.Attr8Bit
		text = text[1:]
	case '>':
		sizeHint = asm.Attr16Bit
		text = text[1:]
	}
	expr, remain, err := parseExpr(newFstring(file, row, text), false)
	if err != nil {
		return nil, err
	}
	if s := strings.TrimSpace(remain.str); s != "" {
		return nil, fmt.Errorf("unexpected %q after operand", s)
	}
	return &asm.Operand{Kind: asm.OperandSimple, Expr: expr, SizeHint: sizeHint}, nil
}

func parseRegisterList(text string) (*asm.Operand, error) {
	var regs []m6809.Register
	for _, tok := range strings.Split(text, ",") {
		name := strings.TrimSpace(tok)
		r, ok := m6809.LookupRegister(name)
		if !ok {
			return nil, fmt.Errorf("%q is not a valid register", name)
		}
		regs = append(regs, r)
	}
	return &asm.Operand{Kind: asm.OperandRegisterList, Registers: regs}, nil
}

func parseRegisterPair(text string) (*asm.Operand, error) {
	parts := strings.SplitN(text, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected exactly two comma-separated registers")
	}
	a, ok := m6809.LookupRegister(strings.TrimSpace(parts[0]))
	if !ok {
		return nil, fmt.Errorf("%q is not a valid register", parts[0])
	}
	b, ok := m6809.LookupRegister(strings.TrimSpace(parts[1]))
	if !ok {
		return nil, fmt.Errorf("%q is not a valid register", parts[1])
	}
	return &asm.Operand{Kind: asm.OperandRegisterPair, Registers: []m6809.Register{a, b}}, nil
}

// parseIndexedOperand parses the text between (and excluding) a
// surrounding '[' ']' pair, or the whole operand when not indirect:
// "n,R", ",R", ",R+", ",R++", ",-R", ",--R", "A,R"/"B,R"/"D,R", and
// "n,PCR". An indirect operand with no comma at all is extended
// indirect, "[n16]".
func parseIndexedOperand(file string, row int, inner string, indirect bool) (*asm.IndexedOperand, error) {
	idx := strings.LastIndexByte(inner, ',')
	if idx < 0 {
		if !indirect {
			return nil, fmt.Errorf("indexed operand %q has no base register", inner)
		}
		expr, remain, err := parseExpr(newFstring(file, row, inner), false)
		if err != nil {
			return nil, err
		}
		if s := strings.TrimSpace(remain.str); s != "" {
			return nil, fmt.Errorf("malformed indexed operand %q", inner)
		}
		return &asm.IndexedOperand{Base: m6809.RegNone, Offset: expr, Indirect: true}, nil
	}

	left := strings.TrimSpace(inner[:idx])
	right := strings.TrimSpace(inner[idx+1:])

	op := &asm.IndexedOperand{Indirect: indirect}

	reg := right
	switch {
	case strings.HasPrefix(reg, "--"):
		op.Mod = asm.AttrPreDec2
		reg = reg[2:]
	case strings.HasPrefix(reg, "-"):
		op.Mod = asm.AttrPreDec
		reg = reg[1:]
	case strings.HasSuffix(reg, "++"):
		op.Mod = asm.AttrPostInc2
		reg = reg[:len(reg)-2]
	case strings.HasSuffix(reg, "+"):
		op.Mod = asm.AttrPostInc
		reg = reg[:len(reg)-1]
	}
	reg = strings.TrimSpace(reg)

	if strings.EqualFold(reg, "PCR") {
		if left == "" {
			return nil, fmt.Errorf("'expr,PCR' indexed operand requires an expression")
		}
		expr, remain, err := parseExpr(newFstring(file, row, left), false)
		if err != nil {
			return nil, err
		}
		if s := strings.TrimSpace(remain.str); s != "" {
			return nil, fmt.Errorf("malformed indexed operand %q", inner)
		}
		op.Base = m6809.RegPC
		op.Offset = expr
		return op, nil
	}

	base, ok := m6809.LookupRegister(reg)
	if !ok {
		return nil, fmt.Errorf("%q is not a valid indexed-mode base register", reg)
	}
	op.Base = base

	if left == "" {
		return op, nil
	}
	if accum, ok := m6809.LookupRegister(left); ok &&
		(accum == m6809.RegA || accum == m6809.RegB || accum == m6809.RegD) {
		op.OffsetReg = accum
		return op, nil
	}

	expr, remain, err := parseExpr(newFstring(file, row, left), false)
	if err != nil {
		return nil, err
	}
	if s := strings.TrimSpace(remain.str); s != "" {
		return nil, fmt.Errorf("malformed indexed operand %q", inner)
	}
	op.Offset = expr
	return op, nil
}
