package asm

import (
	"fmt"
)

// An EvalContext carries everything expression evaluation needs beyond
// the node tree itself: the symbol tables a bare identifier resolves
// against, the section whose PC satisfies a '*' reference and whose
// local-label table satisfies NB/NF, and the active macro call frame's
// positional arguments for &N interpolation (nil outside a macro body).
type EvalContext struct {
	Syms    *SymbolTable
	Section *Section
	Line    int
	Args    []*Node // current macro frame's positional arguments, or nil
}

// Eval folds node into a literal (Int, Float, String, Reg) or, if it
// depends on a symbol not yet defined this pass, an Undef node. Eval
// never mutates node; it returns a new node the caller owns.
func Eval(ctx *EvalContext, node *Node) (*Node, error) {
	if node == nil {
		return NewUndef(), nil
	}
	switch node.Kind {
	case KindUndef, KindEmpty, KindInt, KindFloat, KindReg, KindString:
		return Ref(node), nil

	case KindPC:
		return NewInt(int64(ctx.Section.PC)), nil

	case KindInterp:
		if node.Index < 1 || node.Index > len(ctx.Args) {
			return nil, fmt.Errorf("macro argument &%d out of range", node.Index)
		}
		return Eval(ctx, ctx.Args[node.Index-1])

	case KindBackRef:
		v := ctx.Section.Locals.Back(node.Index, ctx.Line)
		if v == nil {
			return NewUndef(), nil
		}
		return Ref(v), nil

	case KindFwdRef:
		v := ctx.Section.Locals.Forward(node.Index, ctx.Line)
		if v == nil {
			return NewUndef(), nil
		}
		return Ref(v), nil

	case KindId:
		name, err := evalText(ctx, node)
		if err != nil {
			return nil, err
		}
		return ctx.Syms.Get(name), nil

	case KindText:
		s, err := evalText(ctx, node)
		if err != nil {
			return nil, err
		}
		n := NewString(s)
		n.Quote = node.Quote
		return n, nil

	case KindArray:
		elems := make([]*Node, len(node.Children))
		for i, c := range node.Children {
			v, err := Eval(ctx, c)
			if err != nil {
				for _, e := range elems[:i] {
					Free(e)
				}
				return nil, err
			}
			elems[i] = v
		}
		return NewArray(elems...), nil

	case KindOper:
		return evalOper(ctx, node)

	default:
		return nil, fmt.Errorf("cannot evaluate node kind %d", node.Kind)
	}
}

// evalText resolves the fragments of an Id or Text node (literal string
// pieces interleaved with &N interpolations) into a single string.
func evalText(ctx *EvalContext, node *Node) (string, error) {
	buf := make([]byte, 0, 16)
	for _, c := range node.Children {
		v, err := Eval(ctx, c)
		if err != nil {
			return "", err
		}
		switch v.Kind {
		case KindString:
			buf = append(buf, v.Bytes...)
		case KindInt:
			buf = append(buf, []byte(fmt.Sprintf("%d", v.Int))...)
		case KindUndef:
			Free(v)
			return "", fmt.Errorf("undefined value in identifier/string interpolation")
		default:
			Free(v)
			return "", fmt.Errorf("cannot interpolate node kind %d into identifier/string", v.Kind)
		}
		Free(v)
	}
	return string(buf), nil
}

func evalOper(ctx *EvalContext, node *Node) (*Node, error) {
	a, err := Eval(ctx, node.Children[0])
	if err != nil {
		return nil, err
	}
	defer Free(a)

	if node.IsUnary() {
		return evalUnary(node.Op, a)
	}

	b, err := Eval(ctx, node.Children[1])
	if err != nil {
		return nil, err
	}
	defer Free(b)

	return evalBinary(node.Op, a, b)
}

func evalUnary(op Op, a *Node) (*Node, error) {
	if a.Kind == KindUndef {
		return NewUndef(), nil
	}
	switch op {
	case OpNeg:
		switch a.Kind {
		case KindInt:
			return NewInt(-a.Int), nil
		case KindFloat:
			return NewFloat(-a.Float), nil
		}
	case OpPos:
		switch a.Kind {
		case KindInt:
			return NewInt(a.Int), nil
		case KindFloat:
			return NewFloat(a.Float), nil
		}
	case OpNot:
		if a.Kind == KindInt {
			return NewInt(^a.Int), nil
		}
	}
	return nil, fmt.Errorf("operator %s not valid on operand of kind %d", op, a.Kind)
}

// argsFloatToInt coerces a and b to a common numeric type for a binary
// operator: if either is Float, both become Float; otherwise both must
// already be Int. Mixed int/float arithmetic promotes to float;
// bitwise and shift operators require both operands to be integers.
func argsFloatToInt(op Op, a, b *Node) (aIsFloat bool, ai, bi int64, af, bf float64, err error) {
	switch op {
	case OpAnd, OpOr, OpXor, OpShl, OpShr:
		if a.Kind != KindInt || b.Kind != KindInt {
			return false, 0, 0, 0, 0, fmt.Errorf("operator %s requires integer operands", op)
		}
		return false, a.Int, b.Int, 0, 0, nil
	default:
		if a.Kind == KindFloat || b.Kind == KindFloat {
			return true, 0, 0, asFloat(a), asFloat(b), nil
		}
		if a.Kind != KindInt || b.Kind != KindInt {
			return false, 0, 0, 0, 0, fmt.Errorf("operator %s requires numeric operands", op)
		}
		return false, a.Int, b.Int, 0, 0, nil
	}
}

func asFloat(n *Node) float64 {
	if n.Kind == KindFloat {
		return n.Float
	}
	return float64(n.Int)
}

func evalBinary(op Op, a, b *Node) (*Node, error) {
	if a.Kind == KindUndef || b.Kind == KindUndef {
		return NewUndef(), nil
	}

	// String concatenation is the one binary operator defined on
	// KindString operands.
	if op == OpAdd && a.Kind == KindString && b.Kind == KindString {
		return NewString(string(a.Bytes) + string(b.Bytes)), nil
	}

	isFloat, ai, bi, af, bf, err := argsFloatToInt(op, a, b)
	if err != nil {
		return nil, err
	}

	if isFloat {
		switch op {
		case OpAdd:
			return NewFloat(af + bf), nil
		case OpSub:
			return NewFloat(af - bf), nil
		case OpMul:
			return NewFloat(af * bf), nil
		case OpDiv:
			if bf == 0 {
				return nil, newError(NumericDomain, "division by zero")
			}
			return NewFloat(af / bf), nil
		default:
			return nil, fmt.Errorf("operator %s not valid on floats", op)
		}
	}

	switch op {
	case OpAdd:
		return NewInt(ai + bi), nil
	case OpSub:
		return NewInt(ai - bi), nil
	case OpMul:
		return NewInt(ai * bi), nil
	case OpDiv:
		if bi == 0 {
			return nil, newError(NumericDomain, "division by zero")
		}
		return NewInt(ai / bi), nil
	case OpAnd:
		return NewInt(ai & bi), nil
	case OpOr:
		return NewInt(ai | bi), nil
	case OpXor:
		return NewInt(ai ^ bi), nil
	case OpShl:
		if bi == 0 {
			return nil, newError(NumericDomain, "shift by zero")
		}
		return NewInt(ai << uint(bi)), nil
	case OpShr:
		if bi == 0 {
			return nil, newError(NumericDomain, "shift by zero")
		}
		return NewInt(ai >> uint(bi)), nil
	default:
		return nil, fmt.Errorf("unknown operator %s", op)
	}
}

// EvalInt fully evaluates node and coerces the result to an integer. It
// reports ok=false (no error) if the value is still Undef, allowing
// callers to defer resolution to a later pass.
func EvalInt(ctx *EvalContext, node *Node) (value int64, ok bool, err error) {
	v, err := Eval(ctx, node)
	if err != nil {
		return 0, false, err
	}
	defer Free(v)
	switch v.Kind {
	case KindUndef:
		return 0, false, nil
	case KindInt:
		return v.Int, true, nil
	case KindFloat:
		return int64(v.Float), true, nil
	default:
		return 0, false, fmt.Errorf("expected a numeric value, got kind %d", v.Kind)
	}
}

// EvalString fully evaluates node and coerces the result to a string.
func EvalString(ctx *EvalContext, node *Node) (value string, ok bool, err error) {
	v, err := Eval(ctx, node)
	if err != nil {
		return "", false, err
	}
	defer Free(v)
	switch v.Kind {
	case KindUndef:
		return "", false, nil
	case KindString:
		return string(v.Bytes), true, nil
	default:
		return "", false, fmt.Errorf("expected a string value, got kind %d", v.Kind)
	}
}
