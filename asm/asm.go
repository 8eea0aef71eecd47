// Package asm implements the core of a two-pass 6809 cross-assembler:
// the node/expression model, symbol and local-label tables, the
// section/span engine, the macro interpreter, and the addressing-mode
// dispatcher and instruction encoders built on package m6809's opcode
// table. It does not read source text or files itself; a Line stream
// (see Line and SourceProvider) is the boundary between this package
// and whatever lexes and parses 6809 assembly syntax.
package asm

// Config controls how Assemble runs a program.
type Config struct {
	// MaxPasses bounds the pass loop. Zero selects the default of 4.
	MaxPasses int

	// Source resolves INCLUDE/INCLUDEBIN by name. It may be nil if the
	// program contains neither directive.
	Source SourceProvider
}

// Assemble runs the full multi-pass assembly of lines and returns the
// coalesced output image and exported symbol table. lines is the
// top-level program; INCLUDE directives within it are resolved via
// cfg.Source. A failed assembly returns Errors, the accumulated
// recoverable Error values from the final pass, unless the failure was
// Fatal (in which case that single error is returned directly).
func Assemble(lines []Line, cfg Config) (*Result, error) {
	d := NewDriver(cfg.Source, cfg.MaxPasses)
	result, err := d.Run(lines)
	if err != nil {
		if !isFatal(err) && len(d.Errors) > 0 {
			return nil, Errors(d.Errors)
		}
		return nil, err
	}
	return result, nil
}
