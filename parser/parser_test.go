package parser

import (
	"testing"
)

func TestParseStringLineNumbers(t *testing.T) {
	src := "START: NOP\n LDA #1\n\n BRA START\n"
	lines, err := ParseString("t.asm", src)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if lines[0].Number != 1 || lines[0].Label != "START" {
		t.Fatalf("line 1: got %+v", lines[0])
	}
	if lines[1].Number != 2 || lines[1].Mnemonic != "LDA" {
		t.Fatalf("line 2: got %+v", lines[1])
	}
	if lines[2].Number != 3 || lines[2].Mnemonic != "" {
		t.Fatalf("line 3 (blank): got %+v", lines[2])
	}
	if lines[3].Number != 4 || lines[3].Mnemonic != "BRA" {
		t.Fatalf("line 4: got %+v", lines[3])
	}
}

func TestParseStringPropagatesLineErrors(t *testing.T) {
	_, err := ParseString("t.asm", "VALUE EQU $2A extra\n")
	if err == nil {
		t.Fatal("expected an error")
	}
}

func TestParserResolveRelativePath(t *testing.T) {
	p := New("/src/project")
	if got := p.resolve("util.asm"); got != "/src/project/util.asm" {
		t.Fatalf("got %q", got)
	}
	if got := p.resolve("/abs/util.asm"); got != "/abs/util.asm" {
		t.Fatalf("got %q", got)
	}
}
