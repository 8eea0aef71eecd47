package asm

import (
	"testing"

	"github.com/go6809/asm6809/m6809"
)

// assembleLines runs the full pass loop over lines and returns the
// single coalesced output span's bytes (or nil if the program emitted
// nothing), for tests that build their Line/Node trees by hand rather
// than through a parser.
func assembleLines(t *testing.T, lines []Line) []byte {
	t.Helper()
	result, err := Assemble(lines, Config{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(result.Spans) == 0 {
		return nil
	}
	return result.Spans[0].Data
}

func checkBytes(t *testing.T, got []byte, want ...byte) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d bytes %v, want %d bytes %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %#02x, want %#02x (full got=%v want=%v)", i, got[i], want[i], got, want)
		}
	}
}

func TestImmediate8(t *testing.T) {
	// LDA #$10
	lines := []Line{
		{Number: 1, Mnemonic: "LDA", Operand: &Operand{Kind: OperandImmediate, Expr: NewInt(0x10)}},
	}
	checkBytes(t, assembleLines(t, lines), 0x86, 0x10)
}

func TestDirectVsExtended(t *testing.T) {
	// SETDP $00 ; LDA $50 (direct) ; LDA $1234 (extended, no DP match)
	lines := []Line{
		{Number: 1, Mnemonic: "SETDP", Args: []*Node{NewInt(0x00)}},
		{Number: 2, Mnemonic: "LDA", Operand: &Operand{Kind: OperandSimple, Expr: NewInt(0x50)}},
		{Number: 3, Mnemonic: "LDA", Operand: &Operand{Kind: OperandSimple, Expr: NewInt(0x1234)}},
	}
	checkBytes(t, assembleLines(t, lines),
		0x96, 0x50, // LDA direct
		0xB6, 0x12, 0x34, // LDA extended
	)
}

func TestInherentAndBranch(t *testing.T) {
	// START: NOP ; BRA START
	lines := []Line{
		{Number: 1, Label: "START", Mnemonic: "NOP"},
		{Number: 2, Mnemonic: "BRA", Operand: &Operand{Kind: OperandSimple, Expr: NewId(NewString("START"))}},
	}
	checkBytes(t, assembleLines(t, lines),
		0x12,       // NOP
		0x20, 0xFD, // BRA START (disp = 0 - 3 = -3)
	)
}

func TestIndexedPostIncrement2(t *testing.T) {
	// LDA ,X++
	lines := []Line{
		{Number: 1, Mnemonic: "LDA", Operand: &Operand{
			Kind:    OperandIndexed,
			Indexed: &IndexedOperand{Base: m6809.RegX, Mod: AttrPostInc2},
		}},
	}
	checkBytes(t, assembleLines(t, lines), 0xA6, 0x81)
}

func TestPushPull(t *testing.T) {
	// PSHS A,B,X
	lines := []Line{
		{Number: 1, Mnemonic: "PSHS", Operand: &Operand{
			Kind:      OperandRegisterList,
			Registers: []m6809.Register{m6809.RegA, m6809.RegB, m6809.RegX},
		}},
	}
	checkBytes(t, assembleLines(t, lines), 0x34, 0x16)
}

func TestTransferRegisterPair(t *testing.T) {
	// TFR D,X
	lines := []Line{
		{Number: 1, Mnemonic: "TFR", Operand: &Operand{
			Kind:      OperandRegisterPair,
			Registers: []m6809.Register{m6809.RegD, m6809.RegX},
		}},
	}
	checkBytes(t, assembleLines(t, lines), 0x1F, 0x01)
}

func TestEquAndExport(t *testing.T) {
	lines := []Line{
		{Number: 1, Label: "VALUE", Mnemonic: "EQU", Args: []*Node{NewInt(42)}},
		{Number: 2, Mnemonic: "EXPORT", Args: []*Node{NewText(0, NewString("VALUE"))}},
	}
	result, err := Assemble(lines, Config{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(result.Exported) != 1 || result.Exported[0].Name != "VALUE" {
		t.Fatalf("expected VALUE to be exported, got %v", result.Exported)
	}
	if result.Exported[0].Value.Int != 42 {
		t.Fatalf("expected VALUE == 42, got %v", result.Exported[0].Value)
	}
}

func TestOrgBindsLabelToNewPC(t *testing.T) {
	// start ORG $1000 ; EXPORT start
	lines := []Line{
		{Number: 1, Label: "start", Mnemonic: "ORG", Args: []*Node{NewInt(0x1000)}},
		{Number: 2, Mnemonic: "EXPORT", Args: []*Node{NewText(0, NewString("start"))}},
	}
	result, err := Assemble(lines, Config{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(result.Exported) != 1 || result.Exported[0].Value.Int != 0x1000 {
		t.Fatalf("expected start == $1000, got %v", result.Exported)
	}
}

func TestSectionBindsLabelToResumedPC(t *testing.T) {
	// ORG $2000 ; NOP ; entry SECTION "code" ; EXPORT entry
	lines := []Line{
		{Number: 1, Mnemonic: "ORG", Args: []*Node{NewInt(0x2000)}},
		{Number: 2, Mnemonic: "NOP"},
		{Number: 3, Label: "entry", Mnemonic: "SECTION", Args: []*Node{NewText(0, NewString("code"))}},
		{Number: 4, Mnemonic: "EXPORT", Args: []*Node{NewText(0, NewString("entry"))}},
	}
	result, err := Assemble(lines, Config{})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(result.Exported) != 1 || result.Exported[0].Value.Int != 0x2001 {
		t.Fatalf("expected entry == $2001, got %v", result.Exported)
	}
}

func TestShiftByZeroIsNumericDomainError(t *testing.T) {
	v := NewOper(OpShl, NewInt(1), NewInt(0))
	_, err := Eval(&EvalContext{Syms: NewSymbolTable()}, v)
	if err == nil {
		t.Fatal("expected an error for shift by zero")
	}
	ae, ok := err.(*Error)
	if !ok || ae.Kind != NumericDomain {
		t.Fatalf("expected a NumericDomain *Error, got %T: %v", err, err)
	}
}

func TestForwardReferenceConverges(t *testing.T) {
	// LDA TARGET (extended, forward reference) ; TARGET: NOP
	lines := []Line{
		{Number: 1, Mnemonic: "LDA", Operand: &Operand{Kind: OperandSimple, SizeHint: Attr16Bit, Expr: NewId(NewString("TARGET"))}},
		{Number: 2, Label: "TARGET", Mnemonic: "NOP"},
	}
	checkBytes(t, assembleLines(t, lines),
		0xB6, 0x00, 0x03, // LDA TARGET (TARGET == 3)
		0x12, // NOP
	)
}
