package asm

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go6809/asm6809/m6809"
)

// A SourceProvider resolves INCLUDE and INCLUDEBIN by name. Reading
// and lexing a file is outside this package's scope (see the Line
// type's doc comment); the driver only needs the result.
type SourceProvider interface {
	Parse(filename string) ([]Line, error)
	ReadBinary(filename string) ([]byte, error)
}

// A Driver runs the multi-pass assembly loop: per-line dispatch
// through label/local-label definition, macro invocation, pseudo-op
// dispatch, and instruction encoding, repeated pass after pass until
// the output stops changing or the pass limit is reached.
type Driver struct {
	fs        SourceProvider
	Syms      *SymbolTable
	Macros    *MacroTable
	stack     *MacroStack
	sections  map[string]*Section
	order     []string
	cur       *Section
	seq       int
	pass      int
	maxPasses int
	recorder  *macroRecorder
	lastPC    int // the last_pc of whichever section was active before the current one, within this pass
	Errors    []*Error
}

// NewDriver creates a Driver. fs may be nil if the program under
// assembly contains no INCLUDE/INCLUDEBIN directives. maxPasses <= 0
// defaults to 4.
func NewDriver(fs SourceProvider, maxPasses int) *Driver {
	if maxPasses <= 0 {
		maxPasses = 4
	}
	d := &Driver{
		fs:        fs,
		Syms:      NewSymbolTable(),
		Macros:    NewMacroTable(),
		stack:     NewMacroStack(),
		sections:  make(map[string]*Section),
		maxPasses: maxPasses,
	}
	d.switchSection("")
	return d
}

func (d *Driver) nextSeq() int {
	d.seq++
	return d.seq
}

// switchSection implements the SECTION directive's section_set
// semantics: a section already seen this pass keeps its accumulated
// spans; one not yet seen this pass (including the first time any
// section is named) has its span list reset and its PC initialized
// from whichever section was active last, so that sections without an
// explicit ORG chain together in source order.
func (d *Driver) switchSection(name string) {
	if d.cur != nil {
		d.lastPC = d.cur.LastPC
	}
	sec, ok := d.sections[name]
	if !ok {
		sec = newSection(name, d.nextSeq)
		d.sections[name] = sec
		d.order = append(d.order, name)
	}
	if sec.Pass != d.pass {
		sec.resetForPass(d.pass, d.lastPC)
	}
	d.cur = sec
}

// includeSource resolves an INCLUDE by name. A failure to open the file
// is reported as FileNotFound; a failure to lex it (the parser's own
// errors already carry "file:line: " context, see parser.ParseLines)
// is reported as Syntax, so either way the caller gets a recoverable
// Error rather than an opaque one that aborts the run.
func (d *Driver) includeSource(name string) error {
	if d.fs == nil {
		return newError(FileNotFound, "INCLUDE %q: no source provider configured", name)
	}
	lines, err := d.fs.Parse(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Error{Kind: FileNotFound, Message: fmt.Sprintf("INCLUDE %q: %v", name, err)}
		}
		return &Error{Kind: Syntax, Message: err.Error()}
	}
	return d.processLines(lines)
}

func (d *Driver) includeBinary(name string) ([]byte, error) {
	if d.fs == nil {
		return nil, newError(FileNotFound, "INCLUDEBIN %q: no source provider configured", name)
	}
	data, err := d.fs.ReadBinary(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: FileNotFound, Message: fmt.Sprintf("INCLUDEBIN %q: %v", name, err)}
		}
		return nil, err
	}
	return data, nil
}

func (d *Driver) beginMacroDef(name string) {
	d.recorder = newMacroRecorder(strings.ToUpper(name))
}

// Run assembles lines, looping passes until the coalesced output
// image stabilizes or maxPasses is reached.
// Non-convergence after maxPasses is a fatal error, not a partial
// result.
func (d *Driver) Run(lines []Line) (*Result, error) {
	var prevImage []byte
	for pass := 1; pass <= d.maxPasses; pass++ {
		d.pass = pass
		d.seq = 0
		d.stack = NewMacroStack()
		d.recorder = nil
		d.Errors = nil
		d.Syms.ResetPass()

		d.cur = nil
		d.lastPC = 0
		d.switchSection("")

		if err := d.processLines(lines); err != nil {
			return nil, err
		}
		if len(d.Errors) > 0 && pass == d.maxPasses {
			return nil, fmt.Errorf("assembly failed with %d error(s): %w", len(d.Errors), d.Errors[0])
		}

		image := flattenForCompare(d.allSections())
		if pass > 1 && bytesEqual(image, prevImage) && len(d.Errors) == 0 {
			return d.result(), nil
		}
		prevImage = image
	}
	return nil, newError(Fatal, "assembly did not converge after %d passes", d.maxPasses)
}

func (d *Driver) allSections() []*Section {
	secs := make([]*Section, 0, len(d.order))
	for _, name := range d.order {
		secs = append(secs, d.sections[name])
	}
	return secs
}

func (d *Driver) result() *Result {
	return &Result{
		Spans:    CoalesceAll(d.allSections(), true),
		Exported: d.Syms.Exported(),
	}
}

// A Result is the output of a completed, converged assembly.
type Result struct {
	Spans    []*Span
	Exported []ExportedSymbol
}

func flattenForCompare(secs []*Section) []byte {
	spans := CoalesceAll(secs, true)
	if len(spans) == 0 {
		return nil
	}
	return spans[0].Data
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (d *Driver) evalContext(line *Line) *EvalContext {
	ctx := &EvalContext{Syms: d.Syms, Section: d.cur, Line: line.Number}
	if f := d.stack.Top(); f != nil {
		ctx.Args = f.Args
	}
	return ctx
}

func (d *Driver) processLines(lines []Line) error {
	for i := range lines {
		if err := d.processLine(&lines[i]); err != nil {
			if isFatal(err) {
				return err
			}
			d.Errors = append(d.Errors, asError(err, lines[i].Number))
		}
	}
	return nil
}

// A fatalError aborts assembly immediately instead of being collected
// and reported at the end of the pass: exceeding the macro-recursion
// bound is a fatal assembly error.
type fatalError struct{ error }

func isFatal(err error) bool {
	if _, ok := err.(fatalError); ok {
		return true
	}
	if e, ok := err.(*Error); ok {
		return e.Kind == Fatal
	}
	return false
}

func (d *Driver) processLine(line *Line) error {
	d.cur.LineNumber = line.Number

	if d.recorder != nil {
		if d.recorder.Feed(*line) {
			d.Macros.Define(d.recorder.Def())
			d.recorder = nil
		}
		return nil
	}

	ctx := d.evalContext(line)

	if line.Label != "" && !isLabelDefiningMnemonic(line.Mnemonic) {
		d.defineLabel(ctx, line.Label)
	}

	if line.Mnemonic == "" {
		return nil
	}
	mnemonic := strings.ToUpper(line.Mnemonic)

	if def := d.Macros.Lookup(mnemonic); def != nil {
		args := make([]*Node, len(line.Args))
		for i, a := range line.Args {
			v, err := Eval(ctx, a)
			if err != nil {
				return err
			}
			args[i] = v
		}
		if err := d.stack.Push(def, args, line.Number); err != nil {
			return fatalError{err}
		}
		err := d.processLines(def.Body)
		d.stack.Pop()
		return err
	}

	if fn, ok := LookupPseudoOp(mnemonic); ok {
		return fn(d, ctx, line)
	}

	return d.processInstruction(ctx, mnemonic, line)
}

// isLabelDefiningMnemonic reports whether mnemonic binds a line's label
// itself, so processLine must not default-bind it to the PC on entry.
// EQU and MACRO give the label a value with no connection to the PC at
// all; ORG and SECTION change the PC (or the section) before the label
// should be bound, so their handlers bind it themselves once the PC is
// settled.
func isLabelDefiningMnemonic(mnemonic string) bool {
	return strings.EqualFold(mnemonic, "EQU") ||
		strings.EqualFold(mnemonic, "MACRO") ||
		strings.EqualFold(mnemonic, "ORG") ||
		strings.EqualFold(mnemonic, "SECTION")
}

// defineLabel assigns name the current program counter. A purely
// numeric label (e.g. "10") is a local label recorded by line number
// rather than a global symbol, so that NB/NF references elsewhere in
// the section can find the nearest matching definition.
func (d *Driver) defineLabel(ctx *EvalContext, name string) {
	if n, ok := parseLocalLabel(name); ok {
		ctx.Section.Locals.Set(n, ctx.Line, NewInt(int64(ctx.Section.PC)))
		return
	}
	ctx.Syms.Set(name, NewInt(int64(ctx.Section.PC)))
}

func parseLocalLabel(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (d *Driver) processInstruction(ctx *EvalContext, mnemonic string, line *Line) error {
	insts := m6809.GetInstructions(mnemonic)
	if len(insts) == 0 {
		return fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
	for _, inst := range insts {
		if inst.Mode == m6809.Relative8 || inst.Mode == m6809.Relative16 {
			var target *Node
			if line.Operand != nil {
				target = line.Operand.Expr
			}
			return AssembleBranch(ctx, mnemonic, target)
		}
	}
	operand := line.Operand
	if operand == nil {
		operand = &Operand{Kind: OperandNone}
	}
	return AssembleInstruction(ctx, mnemonic, operand, line.Number)
}
