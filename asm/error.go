package asm

import "fmt"

// An ErrorKind classifies an Error the way a caller needs to decide
// whether assembly can still produce useful output: the recoverable
// kinds are reported and assembly continues, Fatal aborts the run.
type ErrorKind int

const (
	// Syntax covers a malformed directive, a wrong argument count, or
	// an unknown mnemonic.
	Syntax ErrorKind = iota
	// OutOfRange covers a branch too far, a negative reservation
	// count, or a numeric value that overflows where one was expected
	// to fit.
	OutOfRange
	// NumericDomain covers division or shift by zero.
	NumericDomain
	// UndefinedSymbol is only ever raised on the final pass; earlier
	// passes tolerate an Undef value and defer resolution.
	UndefinedSymbol
	// FileNotFound covers an INCLUDE or INCLUDEBIN naming a file the
	// SourceProvider could not open.
	FileNotFound
	// Fatal aborts assembly immediately: program-depth exceeded,
	// scanner internal failure, or pass-limit convergence failure.
	Fatal
)

func (k ErrorKind) String() string {
	switch k {
	case Syntax:
		return "Syntax"
	case OutOfRange:
		return "OutOfRange"
	case NumericDomain:
		return "NumericDomain"
	case UndefinedSymbol:
		return "UndefinedSymbol"
	case FileNotFound:
		return "FileNotFound"
	case Fatal:
		return "Fatal"
	default:
		return "Error"
	}
}

// An Error reports one problem found during assembly: its Kind (the
// spec's recoverable/fatal taxonomy) and the source position that
// caused it. File and Column are empty/zero when the code that raised
// the error has no position to attach (an expression evaluated outside
// of any particular line, for instance); Line is filled in by the
// driver from the enclosing Line.Number if the raiser didn't set one.
type Error struct {
	Kind    ErrorKind
	File    string
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.File != "":
		return fmt.Sprintf("%s error in %s, line %d: %s", e.Kind, e.File, e.Line, e.Message)
	case e.Line != 0:
		return fmt.Sprintf("%s error, line %d: %s", e.Kind, e.Line, e.Message)
	default:
		return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
	}
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// asError coerces err into an *Error carrying line, defaulting its Kind
// to Syntax when err isn't already a tagged *Error — the catch-all kind
// for the wrong-arg-count and unknown-mnemonic messages that make up
// most of the untyped errors raised throughout the pseudo-op and
// instruction dispatch code.
func asError(err error, line int) *Error {
	if e, ok := err.(*Error); ok {
		if e.Line == 0 {
			e.Line = line
		}
		return e
	}
	return &Error{Kind: Syntax, Line: line, Message: err.Error()}
}

// Errors aggregates every recoverable Error collected while running a
// failed assembly, in report order. It implements error so it can be
// returned directly; a caller that wants to report every failure
// (a listing renderer, for instance) can also range over it.
type Errors []*Error

func (e Errors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	s := fmt.Sprintf("%d assembly errors:", len(e))
	for _, err := range e {
		s += "\n" + err.Error()
	}
	return s
}
