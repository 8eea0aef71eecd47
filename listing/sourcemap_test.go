package listing

import (
	"bytes"
	"testing"

	"github.com/go6809/asm6809/asm"
)

func TestSourceMapWriteReadRoundTrip(t *testing.T) {
	s := NewSourceMap()
	s.Origin = 0x1000
	s.Size = 4
	s.CRC = 0xDEADBEEF
	s.Files = []string{"main.asm"}
	s.Lines = []SourceLine{
		{Address: 0x1000, FileIndex: 0, Line: 1},
		{Address: 0x1002, FileIndex: 0, Line: 3},
	}
	s.Exports = []Export{{Label: "START", Address: 0x1000}}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got := NewSourceMap()
	if _, err := got.ReadFrom(&buf); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if got.Origin != s.Origin || got.Size != s.Size || got.CRC != s.CRC {
		t.Fatalf("header: got %+v", got)
	}
	if len(got.Files) != 1 || got.Files[0] != "main.asm" {
		t.Fatalf("files: got %v", got.Files)
	}
	if len(got.Lines) != 2 || got.Lines[0].Address != 0x1000 || got.Lines[1].Address != 0x1002 {
		t.Fatalf("lines: got %v", got.Lines)
	}
	if len(got.Exports) != 1 || got.Exports[0].Label != "START" || got.Exports[0].Address != 0x1000 {
		t.Fatalf("exports: got %v", got.Exports)
	}
}

func TestSourceMapFind(t *testing.T) {
	s := NewSourceMap()
	s.Files = []string{"main.asm"}
	s.Lines = []SourceLine{
		{Address: 0x1000, FileIndex: 0, Line: 1},
		{Address: 0x1005, FileIndex: 0, Line: 4},
	}
	file, line, err := s.Find(0x1005)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if file != "main.asm" || line != 4 {
		t.Fatalf("got %q, %d", file, line)
	}
	if _, _, err := s.Find(0x2000); err == nil {
		t.Fatal("expected an error for an address not in the map")
	}
}

func TestBuildSourceMapFromResult(t *testing.T) {
	result := &asm.Result{
		Spans: []*asm.Span{
			{Put: 0x1000, Data: []byte{0x12, 0x34}},
			{Put: 0x1002, Data: []byte{0x56}},
		},
		Exported: []asm.ExportedSymbol{
			{Name: "START", Value: asm.NewInt(0x1000)},
			{Name: "UNBOUND", Value: asm.NewUndef()},
		},
	}

	s := BuildSourceMap("main.asm", result)

	if s.Origin != 0x1000 {
		t.Fatalf("origin: got %#04x", s.Origin)
	}
	if s.Size != 3 {
		t.Fatalf("size: got %d, want 3", s.Size)
	}
	if len(s.Files) != 1 || s.Files[0] != "main.asm" {
		t.Fatalf("files: got %v", s.Files)
	}
	if len(s.Lines) != 2 {
		t.Fatalf("lines: got %v", s.Lines)
	}
	if len(s.Exports) != 1 || s.Exports[0].Label != "START" || s.Exports[0].Address != 0x1000 {
		t.Fatalf("exports: got %v (UNBOUND should have been skipped)", s.Exports)
	}
}
