package parser

import (
	"testing"

	"github.com/go6809/asm6809/asm"
	"github.com/go6809/asm6809/m6809"
)

func mustParseOperand(t *testing.T, mnemonic, text string) *asm.Operand {
	t.Helper()
	op, err := parseOperand("t.asm", 1, mnemonic, newFstring("t.asm", 1, text))
	if err != nil {
		t.Fatalf("parseOperand(%q, %q): %v", mnemonic, text, err)
	}
	return op
}

func TestParseOperandNone(t *testing.T) {
	op := mustParseOperand(t, "NOP", "")
	if op.Kind != asm.OperandNone {
		t.Fatalf("got %v", op.Kind)
	}
}

func TestParseOperandImmediate(t *testing.T) {
	op := mustParseOperand(t, "LDA", "#$10")
	if op.Kind != asm.OperandImmediate || op.Expr.Int != 0x10 {
		t.Fatalf("got %+v", op)
	}
}

func TestParseOperandImmediateTrailingGarbage(t *testing.T) {
	if _, err := parseOperand("t.asm", 1, "LDA", newFstring("t.asm", 1, "#$10 extra")); err == nil {
		t.Fatal("expected an error for trailing garbage after an immediate operand")
	}
}

func TestParseOperandSimpleWithSizeHints(t *testing.T) {
	lo := mustParseOperand(t, "LDA", "<$50")
	if lo.Kind != asm.OperandSimple || lo.SizeHint != asm.Attr8Bit || lo.Expr.Int != 0x50 {
		t.Fatalf("got %+v", lo)
	}
	hi := mustParseOperand(t, "LDA", ">$50")
	if hi.Kind != asm.OperandSimple || hi.SizeHint != asm.Attr16Bit || hi.Expr.Int != 0x50 {
		t.Fatalf("got %+v", hi)
	}
}

func TestParseOperandPlainLabel(t *testing.T) {
	op := mustParseOperand(t, "JMP", "TARGET")
	if op.Kind != asm.OperandSimple || op.SizeHint != asm.AttrNone {
		t.Fatalf("got %+v", op)
	}
	if op.Expr.Kind != asm.KindId {
		t.Fatalf("expr: got %v", op.Expr)
	}
}

func TestParseOperandRegisterList(t *testing.T) {
	op := mustParseOperand(t, "PSHS", "A,B,X")
	if op.Kind != asm.OperandRegisterList {
		t.Fatalf("got %v", op.Kind)
	}
	want := []m6809.Register{m6809.RegA, m6809.RegB, m6809.RegX}
	if len(op.Registers) != len(want) {
		t.Fatalf("got %v", op.Registers)
	}
	for i, r := range want {
		if op.Registers[i] != r {
			t.Fatalf("register %d: got %v, want %v", i, op.Registers[i], r)
		}
	}
}

func TestParseOperandRegisterPair(t *testing.T) {
	op := mustParseOperand(t, "TFR", "D,X")
	if op.Kind != asm.OperandRegisterPair {
		t.Fatalf("got %v", op.Kind)
	}
	if op.Registers[0] != m6809.RegD || op.Registers[1] != m6809.RegX {
		t.Fatalf("got %v", op.Registers)
	}
}

func TestParseOperandIndexedBare(t *testing.T) {
	op := mustParseOperand(t, "LDA", ",X")
	if op.Kind != asm.OperandIndexed {
		t.Fatalf("got %v", op.Kind)
	}
	idx := op.Indexed
	if idx.Base != m6809.RegX || idx.Mod != asm.AttrNone || idx.Offset != nil || idx.Indirect {
		t.Fatalf("got %+v", idx)
	}
}

func TestParseOperandIndexedPostIncrement2(t *testing.T) {
	op := mustParseOperand(t, "LDA", ",X++")
	idx := op.Indexed
	if idx.Base != m6809.RegX || idx.Mod != asm.AttrPostInc2 {
		t.Fatalf("got %+v", idx)
	}
}

func TestParseOperandIndexedPreDecrement(t *testing.T) {
	op := mustParseOperand(t, "LDA", ",-X")
	idx := op.Indexed
	if idx.Base != m6809.RegX || idx.Mod != asm.AttrPreDec {
		t.Fatalf("got %+v", idx)
	}
}

func TestParseOperandIndexedConstantOffset(t *testing.T) {
	op := mustParseOperand(t, "LDA", "4,Y")
	idx := op.Indexed
	if idx.Base != m6809.RegY || idx.Offset == nil || idx.Offset.Int != 4 {
		t.Fatalf("got %+v", idx)
	}
}

func TestParseOperandIndexedAccumulatorOffset(t *testing.T) {
	op := mustParseOperand(t, "LDA", "B,X")
	idx := op.Indexed
	if idx.Base != m6809.RegX || idx.OffsetReg != m6809.RegB {
		t.Fatalf("got %+v", idx)
	}
}

func TestParseOperandIndexedIndirect(t *testing.T) {
	op := mustParseOperand(t, "LDA", "[,X]")
	idx := op.Indexed
	if !idx.Indirect || idx.Base != m6809.RegX {
		t.Fatalf("got %+v", idx)
	}
}

func TestParseOperandExtendedIndirect(t *testing.T) {
	op := mustParseOperand(t, "LDA", "[$1234]")
	idx := op.Indexed
	if !idx.Indirect || idx.Base != m6809.RegNone || idx.Offset == nil || idx.Offset.Int != 0x1234 {
		t.Fatalf("got %+v", idx)
	}
}

func TestParseOperandPCRelative(t *testing.T) {
	op := mustParseOperand(t, "LEAX", "TARGET,PCR")
	idx := op.Indexed
	if idx.Base != m6809.RegPC || idx.Offset == nil || idx.Offset.Kind != asm.KindId {
		t.Fatalf("got %+v", idx)
	}
}

func TestParseOperandIndexedNoBaseRegisterIsAnError(t *testing.T) {
	if _, err := parseOperand("t.asm", 1, "LDA", newFstring("t.asm", 1, "4")); err != nil {
		t.Fatalf("bare expression should be OperandSimple, not an error: %v", err)
	}
	if _, err := parseOperand("t.asm", 1, "LDA", newFstring("t.asm", 1, "4,")); err == nil {
		t.Fatal("expected an error for an indexed operand with no base register")
	}
}

func TestParseOperandUnknownRegisterIsAnError(t *testing.T) {
	if _, err := parseOperand("t.asm", 1, "PSHS", newFstring("t.asm", 1, "A,Q")); err == nil {
		t.Fatal("expected an error for an invalid register name")
	}
}
