// Command asm6809 is a batch and interactive front end for the
// assembler: it resolves INCLUDE/INCLUDEBIN against the filesystem,
// runs the multi-pass assembly, and writes the resulting binary,
// source map, and symbol file.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go6809/asm6809/asm"
	"github.com/go6809/asm6809/listing"
	"github.com/go6809/asm6809/parser"
)

// A Session holds the state of one interactive or batch asm6809 run:
// the last assembled Result, available for "symbols"/"listing"
// commands to report on without re-assembling.
type Session struct {
	input     *bufio.Scanner
	output    *bufio.Writer
	lastFile  string
	lastResult *asm.Result
	lastMap    *listing.SourceMap
}

// NewSession creates a Session with no assembly performed yet.
func NewSession() *Session {
	return &Session{}
}

func (s *Session) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.output, format, args...)
	s.output.Flush()
}

func (s *Session) println(args ...interface{}) {
	fmt.Fprintln(s.output, args...)
	s.output.Flush()
}

// assembleFile runs the full pipeline against filename: parse, run the
// multi-pass assembler, and stash the result for the companion
// commands (and for writeOutputs) to use.
func (s *Session) assembleFile(filename string) error {
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}
	dir := filepath.Dir(filename)
	p := parser.New(dir)

	lines, err := p.Parse(filename)
	if err != nil {
		return err
	}

	result, err := asm.Assemble(lines, asm.Config{Source: p})
	if err != nil {
		return err
	}

	s.lastFile = filename
	s.lastResult = result
	s.lastMap = listing.BuildSourceMap(filename, result)
	return nil
}

// writeOutputs writes base.bin, base.map, and base.sym for the most
// recently assembled file, where base is filename with its extension
// replaced.
func (s *Session) writeOutputs(base string) error {
	if s.lastResult == nil {
		return fmt.Errorf("nothing has been assembled yet")
	}

	if err := writeFile(base+".bin", func(w io.Writer) error {
		return listing.WriteBinary(w, s.lastResult.Spans)
	}); err != nil {
		return err
	}

	if err := writeFile(base+".map", func(w io.Writer) error {
		_, err := s.lastMap.WriteTo(w)
		return err
	}); err != nil {
		return err
	}

	return writeFile(base+".sym", func(w io.Writer) error {
		return listing.WriteSymbols(w, s.lastResult.Exported)
	})
}

func writeFile(name string, fn func(io.Writer) error) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

func baseName(filename string) string {
	ext := filepath.Ext(filename)
	return strings.TrimSuffix(filename, ext)
}
