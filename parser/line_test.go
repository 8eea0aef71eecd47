package parser

import (
	"testing"

	"github.com/go6809/asm6809/asm"
)

func TestParseLineEmpty(t *testing.T) {
	l, err := parseLine("t.asm", 1, "   ; just a comment")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if l.Label != "" || l.Mnemonic != "" {
		t.Fatalf("got %+v", l)
	}
}

func TestParseLineLabelAndInstruction(t *testing.T) {
	l, err := parseLine("t.asm", 1, "START: LDA #$10")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if l.Label != "START" || l.Mnemonic != "LDA" {
		t.Fatalf("got %+v", l)
	}
	if l.Operand == nil || l.Operand.Kind != asm.OperandImmediate {
		t.Fatalf("operand: got %+v", l.Operand)
	}
}

func TestParseLineLabelWithoutColon(t *testing.T) {
	l, err := parseLine("t.asm", 1, "LOOP NOP")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if l.Label != "LOOP" || l.Mnemonic != "NOP" {
		t.Fatalf("got %+v", l)
	}
}

func TestParseLineIndentedHasNoLabel(t *testing.T) {
	l, err := parseLine("t.asm", 1, "    LDA #1")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if l.Label != "" || l.Mnemonic != "LDA" {
		t.Fatalf("got %+v", l)
	}
}

func TestParseLineEquTakesBareExpression(t *testing.T) {
	l, err := parseLine("t.asm", 1, "VALUE EQU $2A")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if l.Label != "VALUE" || l.Mnemonic != "EQU" {
		t.Fatalf("got %+v", l)
	}
	if len(l.Args) != 1 || l.Args[0].Int != 0x2A {
		t.Fatalf("args: got %+v", l.Args)
	}
}

func TestParseLineEquRejectsTrailingGarbage(t *testing.T) {
	if _, err := parseLine("t.asm", 1, "VALUE EQU $2A extra"); err == nil {
		t.Fatal("expected an error for trailing garbage after EQU's expression")
	}
}

func TestParseLineSectionTakesNameArg(t *testing.T) {
	l, err := parseLine("t.asm", 1, " SECTION CODE")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if len(l.Args) != 1 {
		t.Fatalf("got %+v", l.Args)
	}
	arg := l.Args[0]
	if arg.Kind != asm.KindText {
		t.Fatalf("SECTION argument must be Text, not %v (an Id would resolve it as a symbol)", arg.Kind)
	}
}

func TestParseLineExportTakesNameList(t *testing.T) {
	l, err := parseLine("t.asm", 1, " EXPORT FOO, BAR")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if len(l.Args) != 2 {
		t.Fatalf("got %+v", l.Args)
	}
	for _, a := range l.Args {
		if a.Kind != asm.KindText {
			t.Fatalf("EXPORT argument must be Text, got %v", a.Kind)
		}
	}
}

func TestParseLineFCBList(t *testing.T) {
	l, err := parseLine("t.asm", 1, " FCB 1,2,$FF")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if len(l.Args) != 3 || l.Args[2].Int != 0xFF {
		t.Fatalf("got %+v", l.Args)
	}
}

func TestParseLineFCCDelimiter(t *testing.T) {
	l, err := parseLine("t.asm", 1, ` FCC /hello/`)
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if len(l.Args) != 1 || string(l.Args[0].Children[0].Bytes) != "hello" {
		t.Fatalf("got %+v", l.Args)
	}
}

func TestParseLineMacroInvocationSharesExprListShape(t *testing.T) {
	l, err := parseLine("t.asm", 1, " DELAY 10,20")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if l.Mnemonic != "DELAY" || len(l.Args) != 2 {
		t.Fatalf("got %+v", l)
	}
}

func TestParseLineStripsComment(t *testing.T) {
	l, err := parseLine("t.asm", 1, " NOP ; do nothing")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if l.Mnemonic != "NOP" {
		t.Fatalf("got %+v", l)
	}
}
