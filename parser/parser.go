package parser

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go6809/asm6809/asm"
)

// A Parser resolves INCLUDE and INCLUDEBIN filenames against a base
// directory and lexes assembler source files into asm.Line values. It
// implements asm.SourceProvider.
type Parser struct {
	// Dir is the directory INCLUDE/INCLUDEBIN filenames are resolved
	// against when they are not absolute. Typically the directory
	// containing the top-level source file.
	Dir string
}

// New creates a Parser rooted at dir.
func New(dir string) *Parser {
	return &Parser{Dir: dir}
}

func (p *Parser) resolve(filename string) string {
	if filepath.IsAbs(filename) || p.Dir == "" {
		return filename
	}
	return filepath.Join(p.Dir, filename)
}

// Parse reads and lexes filename into a slice of asm.Line values, one
// per physical source line.
func (p *Parser) Parse(filename string) ([]asm.Line, error) {
	path := p.resolve(filename)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseLines(path, bufio.NewScanner(f))
}

// ReadBinary reads the raw contents of filename for INCLUDEBIN.
func (p *Parser) ReadBinary(filename string) ([]byte, error) {
	return os.ReadFile(p.resolve(filename))
}

// lineScanner is the subset of *bufio.Scanner that ParseLines needs,
// so tests can drive it from a strings.Reader without touching the
// filesystem.
type lineScanner interface {
	Scan() bool
	Text() string
	Err() error
}

// ParseLines lexes every line produced by sc, labeling diagnostics
// with file.
func ParseLines(file string, sc lineScanner) ([]asm.Line, error) {
	var lines []asm.Line
	n := 0
	for sc.Scan() {
		n++
		line, err := parseLine(file, n, sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", file, n, err)
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// ParseString lexes src (a complete in-memory source file) under the
// diagnostic name file. It's the entry point batch tools and tests use
// when the source isn't coming from the filesystem.
func ParseString(file, src string) ([]asm.Line, error) {
	return ParseLines(file, bufio.NewScanner(strings.NewReader(src)))
}
