package asm

import "github.com/go6809/asm6809/m6809"

// An OperandKind identifies which shape of instruction operand a line
// carries. This is the contract the line parser (a separate package,
// outside this one) must produce: one Operand value per instruction
// line, built from whatever syntax the grammar recognizes.
type OperandKind byte

const (
	// OperandNone is an inherent-mode instruction: no operand at all.
	OperandNone OperandKind = iota
	// OperandImmediate is '#expr'.
	OperandImmediate
	// OperandSimple is a bare expression with no '#' and no indexing;
	// the dispatcher chooses Direct or Extended once the value is
	// known, honoring SizeHint if the source forced one with '<' or
	// '>'.
	OperandSimple
	// OperandIndexed is a 6809 indexed-mode operand, e.g. ',X', '4,Y',
	// 'A,X', ',X++', '[,X]', 'name,PCR'.
	OperandIndexed
	// OperandRegisterList is a comma-separated register list for
	// PSHS/PULS/PSHU/PULU.
	OperandRegisterList
	// OperandRegisterPair is 'Ra,Rb' for TFR/EXG.
	OperandRegisterPair
)

// SizeHint forces Direct or Extended for an OperandSimple operand
// ('<' / '>' prefix). AttrNone lets the dispatcher choose. Branch
// targets ignore it: the mnemonic alone fixes a branch's size.
type SizeHint = Attr

// An IndexedOperand describes a 6809 indexed-mode addressing
// expression. Exactly one of Offset or OffsetReg describes the
// displacement; both are zero for the bare ',R' form.
type IndexedOperand struct {
	Base      m6809.Register // X, Y, U, S; RegPC for 'expr,PCR'; RegNone for extended indirect '[expr]'
	Offset    *Node          // constant/symbolic displacement, or nil
	OffsetReg m6809.Register // RegA, RegB, or RegD for accumulator-offset addressing, else RegNone
	Mod       Attr           // AttrPostInc, AttrPostInc2, AttrPreDec, AttrPreDec2, or AttrNone
	Indirect  bool           // operand was written inside '[...]'
}

// An Operand is the fully-parsed right-hand side of a 6809 instruction
// line, in whichever shape Kind selects.
type Operand struct {
	Kind      OperandKind
	Expr      *Node // OperandImmediate, OperandSimple
	SizeHint  SizeHint
	Indexed   *IndexedOperand   // OperandIndexed
	Registers []m6809.Register  // OperandRegisterList, OperandRegisterPair (len 2)
}
