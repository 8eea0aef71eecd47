package asm

import (
	"fmt"
	"strings"

	"github.com/go6809/asm6809/m6809"
)

// A Kind identifies which variant of the expression/argument tree a
// Node represents.
type Kind byte

// All node variants recognized by the evaluator.
const (
	KindUndef Kind = iota
	KindEmpty
	KindInt
	KindFloat
	KindReg
	KindString
	KindInterp
	KindPC
	KindBackRef
	KindFwdRef
	KindId
	KindText
	KindOper
	KindArray
)

// An Op identifies an operator carried by a KindOper node.
type Op byte

// Binary and unary operators. Each Op has exactly one arity: unary
// plus/minus are OpPos/OpNeg, distinct from OpAdd/OpSub; evaluation
// picks the unary or binary path by len(Children).
const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpNeg // unary -
	OpPos // unary +
	OpNot // unary ~
)

func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub, OpNeg:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpAnd:
		return "&"
	case OpOr:
		return "|"
	case OpXor:
		return "^"
	case OpShl:
		return "<<"
	case OpShr:
		return ">>"
	case OpPos:
		return "+"
	case OpNot:
		return "~"
	default:
		return "?"
	}
}

// An Attr is a node attribute: a size hint, an immediate-addressing
// marker, or an indexed-mode register pre/post increment/decrement
// modifier. At most one applies to a given node.
type Attr byte

const (
	AttrNone Attr = iota
	Attr5Bit
	Attr8Bit
	Attr16Bit
	AttrImmediate
	AttrPostInc  // ,R+
	AttrPostInc2 // ,R++
	AttrPreDec   // ,-R
	AttrPreDec2  // ,--R
	AttrPostDec  // not produced by any 6809 addressing mode; carried
	// for parity with the node-attribute table the parser's grammar
	// enumerates, in case a future mode needs it.
)

// isRegisterModifier reports whether a is one of the indexed-mode
// register pre/post in/decrement markers.
func (a Attr) isRegisterModifier() bool {
	switch a {
	case AttrPostInc, AttrPostInc2, AttrPreDec, AttrPreDec2, AttrPostDec:
		return true
	default:
		return false
	}
}

// A Node is a single element of an expression or argument tree. Nodes
// are reference-counted: Ref increments the count, Free decrements it
// and, on reaching zero, recursively frees owned children. Children
// held in Children are shared handles — more than one parent may hold
// a reference to the same child — so Free must never be called
// directly on a child still reachable from elsewhere; use Free only
// on a Node you hold your own reference to.
type Node struct {
	Kind     Kind
	Attr     Attr
	refs     int32
	Int      int64
	Float    float64
	Reg      m6809.Register
	Bytes    []byte // String payload, or FCC/Text rendering
	Index    int    // Interp N, BackRef N, FwdRef N
	Op       Op
	Children []*Node // Oper args, Id/Text fragments, Array elements
	Quote    byte    // delimiter used by a Text literal, for re-rendering
}

func newNode(k Kind) *Node {
	return &Node{Kind: k, refs: 1}
}

// NewUndef creates an unresolved node.
func NewUndef() *Node { return newNode(KindUndef) }

// NewEmpty creates an explicit empty argument-slot node.
func NewEmpty() *Node { return newNode(KindEmpty) }

// NewInt creates an integer literal node.
func NewInt(v int64) *Node {
	n := newNode(KindInt)
	n.Int = v
	return n
}

// NewFloat creates a floating-point literal node.
func NewFloat(v float64) *Node {
	n := newNode(KindFloat)
	n.Float = v
	return n
}

// NewReg creates a register-reference node.
func NewReg(r m6809.Register) *Node {
	n := newNode(KindReg)
	n.Reg = r
	return n
}

// NewString creates a string-literal or bare-identifier-name node.
func NewString(s string) *Node {
	n := newNode(KindString)
	n.Bytes = []byte(s)
	return n
}

// NewInterp creates a macro-argument interpolation node (&N, 1-indexed).
func NewInterp(n int) *Node {
	node := newNode(KindInterp)
	node.Index = n
	return node
}

// NewPC creates a program-counter reference node (*).
func NewPC() *Node { return newNode(KindPC) }

// NewBackRef creates a nearest-preceding local-label reference (NB).
func NewBackRef(n int) *Node {
	node := newNode(KindBackRef)
	node.Index = n
	return node
}

// NewFwdRef creates a nearest-following local-label reference (NF).
func NewFwdRef(n int) *Node {
	node := newNode(KindFwdRef)
	node.Index = n
	return node
}

// NewId creates an identifier built by concatenating the textual
// fragments and interpolations in parts. NewId takes ownership of one
// reference to each element of parts.
func NewId(parts ...*Node) *Node {
	n := newNode(KindId)
	n.Children = parts
	return n
}

// NewText creates a string literal built the same way as NewId,
// delimited by quote when re-rendered. NewText takes ownership of one
// reference to each element of parts.
func NewText(quote byte, parts ...*Node) *Node {
	n := newNode(KindText)
	n.Quote = quote
	n.Children = parts
	return n
}

// NewOper creates an operator node. a is required; b is nil for unary
// operators. NewOper takes ownership of one reference to each
// non-nil child.
func NewOper(op Op, a, b *Node) *Node {
	n := newNode(KindOper)
	n.Op = op
	if b == nil {
		n.Children = []*Node{a}
	} else {
		n.Children = []*Node{a, b}
	}
	return n
}

// NewArray creates an ordered argument-list node. NewArray takes
// ownership of one reference to each element of elems.
func NewArray(elems ...*Node) *Node {
	n := newNode(KindArray)
	n.Children = elems
	return n
}

// Ref increments n's reference count and returns n, for use at call
// sites that store a second handle to an existing node.
func Ref(n *Node) *Node {
	if n != nil {
		n.refs++
	}
	return n
}

// Free decrements n's reference count. At zero, Free recursively
// frees every child n owns. Free is a no-op on a nil node.
func Free(n *Node) {
	if n == nil {
		return
	}
	n.refs--
	if n.refs > 0 {
		return
	}
	for _, c := range n.Children {
		Free(c)
	}
	n.Children = nil
}

// IsUnary reports whether n is an operator node with a single child.
func (n *Node) IsUnary() bool {
	return n.Kind == KindOper && len(n.Children) == 1
}

// IsBinary reports whether n is an operator node with two children.
func (n *Node) IsBinary() bool {
	return n.Kind == KindOper && len(n.Children) == 2
}

// setAttrIf sets n's attribute to attr unless attr is AttrNone and n
// already carries a register-modifier attribute, in which case the
// existing modifier is preserved — an indexed postinc/predec marker set while
// parsing the register expression must survive a later pass that
// would otherwise reset the attribute to none.
func (n *Node) setAttrIf(attr Attr) {
	if attr == AttrNone && n.Attr.isRegisterModifier() {
		return
	}
	n.Attr = attr
}

// String renders n for diagnostics. It is not used by the encoder and
// need not round-trip.
func (n *Node) String() string {
	switch n.Kind {
	case KindUndef:
		return "<undef>"
	case KindEmpty:
		return "<empty>"
	case KindInt:
		return fmt.Sprintf("%d", n.Int)
	case KindFloat:
		return fmt.Sprintf("%g", n.Float)
	case KindReg:
		return n.Reg.String()
	case KindString:
		return string(n.Bytes)
	case KindInterp:
		return fmt.Sprintf("&%d", n.Index)
	case KindPC:
		return "*"
	case KindBackRef:
		return fmt.Sprintf("%dB", n.Index)
	case KindFwdRef:
		return fmt.Sprintf("%dF", n.Index)
	case KindId, KindText:
		var b strings.Builder
		for _, c := range n.Children {
			b.WriteString(c.String())
		}
		return b.String()
	case KindOper:
		if n.IsUnary() {
			return fmt.Sprintf("%s%s", n.Op, n.Children[0])
		}
		return fmt.Sprintf("(%s %s %s)", n.Children[0], n.Op, n.Children[1])
	case KindArray:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = c.String()
		}
		return strings.Join(parts, ",")
	default:
		return "?"
	}
}
