package asm

import (
	"fmt"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

// A Line is one already-lexed assembler source line, the boundary
// between the parser (out of this package's scope) and the driver.
// Label and Mnemonic are both optional; Args carries whatever the
// grammar produced for the line's argument list, in whatever shape
// the mnemonic's pseudo-op or instruction handler expects.
type Line struct {
	Number   int
	Label    string
	Mnemonic string
	Args     []*Node
	Operand  *Operand // set instead of Args for real 6809 instructions
}

// A pseudoOp handles one directive. ctx carries the active section,
// symbol table, and macro frame; line is the raw source line (for
// diagnostics and local-label line numbers).
type pseudoOp func(d *Driver, ctx *EvalContext, line *Line) error

var pseudoTree = prefixtree.New[pseudoOp]()

func init() {
	register := func(name string, fn pseudoOp) {
		pseudoTree.Add(strings.ToUpper(name), fn)
	}
	register("EQU", opEQU)
	register("ORG", opORG)
	register("SECTION", opSECTION)
	register("PUT", opPUT)
	register("SETDP", opSETDP)
	register("EXPORT", opEXPORT)
	register("FCB", opFCB)
	register("FCC", opFCC)
	register("FDB", opFDB)
	register("RMB", opRMB)
	register("RZB", opRZB) // RZB is RMB with defined zero content
	register("INCLUDE", opINCLUDE)
	register("INCLUDEBIN", opINCLUDEBIN)
	register("MACRO", opMACRO)
	register("ENDM", opENDM)
}

// LookupPseudoOp resolves mnemonic against the pseudo-op table,
// honoring unambiguous abbreviations the way the assembler's other
// directive-like lookups do.
func LookupPseudoOp(mnemonic string) (pseudoOp, bool) {
	fn, err := pseudoTree.FindValue(strings.ToUpper(mnemonic))
	if err != nil {
		return nil, false
	}
	return fn, true
}

func opEQU(d *Driver, ctx *EvalContext, line *Line) error {
	if line.Label == "" {
		return fmt.Errorf("EQU requires a label")
	}
	if len(line.Args) != 1 {
		return fmt.Errorf("EQU requires exactly one expression")
	}
	v, err := Eval(ctx, line.Args[0])
	if err != nil {
		return err
	}
	ctx.Syms.Set(line.Label, v)
	return nil
}

func opORG(d *Driver, ctx *EvalContext, line *Line) error {
	if len(line.Args) != 1 {
		return fmt.Errorf("ORG requires exactly one expression")
	}
	v, ok, err := EvalInt(ctx, line.Args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ORG address must not be a forward reference")
	}
	ctx.Section.SetPC(int(v))
	if line.Label != "" {
		d.defineLabel(ctx, line.Label)
	}
	return nil
}

func opSECTION(d *Driver, ctx *EvalContext, line *Line) error {
	if len(line.Args) != 1 {
		return fmt.Errorf("SECTION requires a name")
	}
	name, ok, err := EvalString(ctx, line.Args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("SECTION name must not be a forward reference")
	}
	d.switchSection(name)
	ctx.Section = d.cur
	if line.Label != "" {
		d.defineLabel(ctx, line.Label)
	}
	return nil
}

func opPUT(d *Driver, ctx *EvalContext, line *Line) error {
	if len(line.Args) != 1 {
		return fmt.Errorf("PUT requires exactly one expression")
	}
	v, ok, err := EvalInt(ctx, line.Args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("PUT address must not be a forward reference")
	}
	ctx.Section.SetPut(int(v))
	return nil
}

func opSETDP(d *Driver, ctx *EvalContext, line *Line) error {
	if len(line.Args) != 1 {
		return fmt.Errorf("SETDP requires exactly one expression")
	}
	v, ok, err := EvalInt(ctx, line.Args[0])
	if err != nil {
		return err
	}
	if !ok {
		ctx.Section.DP = -1
		return nil
	}
	ctx.Section.DP = int(v) & 0xFF
	return nil
}

func opEXPORT(d *Driver, ctx *EvalContext, line *Line) error {
	if len(line.Args) == 0 {
		if line.Label == "" {
			return fmt.Errorf("EXPORT requires at least one symbol name")
		}
		ctx.Syms.Export(line.Label)
		return nil
	}
	for _, a := range line.Args {
		name, ok, err := EvalString(ctx, a)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("EXPORT name must not be a forward reference")
		}
		ctx.Syms.Export(name)
	}
	return nil
}

func opFCB(d *Driver, ctx *EvalContext, line *Line) error {
	for _, a := range line.Args {
		v, ok, err := EvalInt(ctx, a)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Section.EmitPad(1)
			continue
		}
		ctx.Section.Emit(toBytesBE(1, v))
	}
	return nil
}

func opFDB(d *Driver, ctx *EvalContext, line *Line) error {
	for _, a := range line.Args {
		v, ok, err := EvalInt(ctx, a)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Section.EmitPad(2)
			continue
		}
		ctx.Section.Emit(toBytesBE(2, v))
	}
	return nil
}

func opFCC(d *Driver, ctx *EvalContext, line *Line) error {
	for _, a := range line.Args {
		s, ok, err := EvalString(ctx, a)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("FCC string must not be a forward reference")
		}
		ctx.Section.Emit([]byte(s))
	}
	return nil
}

func opRMB(d *Driver, ctx *EvalContext, line *Line) error {
	return reserve(ctx, line, false)
}

func opRZB(d *Driver, ctx *EvalContext, line *Line) error {
	return reserve(ctx, line, true)
}

// reserve implements RMB (zero false: the PC advances, nothing is
// emitted) and RZB (zero true: that many zero bytes are emitted).
func reserve(ctx *EvalContext, line *Line, zero bool) error {
	if len(line.Args) != 1 {
		return fmt.Errorf("RMB/RZB requires exactly one count")
	}
	v, ok, err := EvalInt(ctx, line.Args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("RMB/RZB count must not be a forward reference")
	}
	if v < 0 {
		return newError(OutOfRange, "RMB/RZB count must not be negative")
	}
	if !zero {
		ctx.Section.Advance(int(v))
		return nil
	}
	ctx.Section.EmitPad(int(v))
	return nil
}

// opINCLUDE and opINCLUDEBIN are specified only by interface: reading
// the named file is the responsibility of the Driver's SourceProvider,
// so these handlers do no I/O themselves — they delegate to the
// driver, which already owns whatever abstraction the host process
// supplies.
func opINCLUDE(d *Driver, ctx *EvalContext, line *Line) error {
	if len(line.Args) != 1 {
		return fmt.Errorf("INCLUDE requires a filename")
	}
	name, ok, err := EvalString(ctx, line.Args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("INCLUDE filename must not be a forward reference")
	}
	return d.includeSource(name)
}

func opINCLUDEBIN(d *Driver, ctx *EvalContext, line *Line) error {
	if len(line.Args) != 1 {
		return fmt.Errorf("INCLUDEBIN requires a filename")
	}
	name, ok, err := EvalString(ctx, line.Args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("INCLUDEBIN filename must not be a forward reference")
	}
	data, err := d.includeBinary(name)
	if err != nil {
		return err
	}
	ctx.Section.Emit(data)
	return nil
}

func opMACRO(d *Driver, ctx *EvalContext, line *Line) error {
	if line.Label == "" {
		return fmt.Errorf("MACRO requires a name")
	}
	d.beginMacroDef(line.Label)
	return nil
}

func opENDM(d *Driver, ctx *EvalContext, line *Line) error {
	return fmt.Errorf("ENDM without a matching MACRO")
}
