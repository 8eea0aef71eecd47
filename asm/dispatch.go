package asm

import (
	"fmt"

	"github.com/go6809/asm6809/m6809"
)

// AssembleInstruction selects the addressing-mode variant of mnemonic that fits
// operand and emits it into ctx.Section. line is the
// source line number, used to memoize the Direct/Extended choice so it
// cannot grow back once a pass has shrunk it.
func AssembleInstruction(ctx *EvalContext, mnemonic string, operand *Operand, line int) error {
	insts := m6809.GetInstructions(mnemonic)
	if len(insts) == 0 {
		return fmt.Errorf("unknown mnemonic %q", mnemonic)
	}

	switch operand.Kind {
	case OperandNone:
		for _, inst := range insts {
			if inst.Mode == m6809.Inherent {
				ctx.Section.Emit(inst.Opcode)
				return nil
			}
		}
		return fmt.Errorf("%s: inherent addressing not valid for this instruction", mnemonic)

	case OperandImmediate:
		return assembleImmediate(ctx, mnemonic, insts, operand)

	case OperandSimple:
		return assembleSimple(ctx, mnemonic, insts, operand, line)

	case OperandIndexed:
		return assembleIndexed(ctx, mnemonic, insts, operand)

	case OperandRegisterList:
		return assembleStack(ctx, mnemonic, insts, operand)

	case OperandRegisterPair:
		return assemblePair(ctx, mnemonic, insts, operand)

	default:
		return fmt.Errorf("%s: unrecognized operand shape", mnemonic)
	}
}

func findMode(insts []*m6809.Instruction, mode m6809.Mode) *m6809.Instruction {
	for _, inst := range insts {
		if inst.Mode == mode {
			return inst
		}
	}
	return nil
}

func assembleImmediate(ctx *EvalContext, mnemonic string, insts []*m6809.Instruction, operand *Operand) error {
	if inst := findMode(insts, m6809.Immediate16); inst != nil {
		v, ok, err := EvalInt(ctx, operand.Expr)
		if err != nil {
			return err
		}
		ctx.Section.Emit(inst.Opcode)
		if !ok {
			ctx.Section.EmitPad(2)
			return nil
		}
		return emitBE16(ctx.Section, v)
	}
	if inst := findMode(insts, m6809.Immediate8); inst != nil {
		v, ok, err := EvalInt(ctx, operand.Expr)
		if err != nil {
			return err
		}
		ctx.Section.Emit(inst.Opcode)
		if !ok {
			ctx.Section.EmitPad(1)
			return nil
		}
		return emitU8(ctx.Section, v)
	}
	return fmt.Errorf("%s: immediate addressing not valid for this instruction", mnemonic)
}

// assembleSimple picks Direct when the resolved value fits the
// section's current direct page and the source didn't force Extended
// with '>'. An unresolved forward reference defaults to Extended, the conservative
// (larger) choice; BranchSizeFor/RecordBranchSize then ensure that
// once a later pass proves Direct fits, the chosen size can shrink but
// never grow back, so the pass loop still converges even though this
// line's width depends on a value that moves between passes.
func assembleSimple(ctx *EvalContext, mnemonic string, insts []*m6809.Instruction, operand *Operand, line int) error {
	dirInst := findMode(insts, m6809.Direct)
	extInst := findMode(insts, m6809.Extended)
	if dirInst == nil && extInst == nil {
		return fmt.Errorf("%s: direct/extended addressing not valid for this instruction", mnemonic)
	}

	v, ok, err := EvalInt(ctx, operand.Expr)
	if err != nil {
		return err
	}

	wantSize := 2 // Extended: opcode + 2-byte operand, by default
	switch operand.SizeHint {
	case Attr8Bit:
		wantSize = 1
	case Attr16Bit:
		wantSize = 2
	default:
		if dirInst != nil && ok && ctx.Section.DP >= 0 && (v>>8) == int64(ctx.Section.DP) {
			wantSize = 1
		}
	}
	if dirInst == nil {
		wantSize = 2
	}
	if extInst == nil {
		wantSize = 1
	}
	size := ctx.Section.BranchSizeFor(line, wantSize)
	ctx.Section.RecordBranchSize(line, wantSize)

	if size == 1 {
		ctx.Section.Emit(dirInst.Opcode)
		if !ok {
			ctx.Section.EmitPad(1)
			return nil
		}
		return emitU8(ctx.Section, v&0xFF)
	}
	ctx.Section.Emit(extInst.Opcode)
	if !ok {
		ctx.Section.EmitPad(2)
		return nil
	}
	return emitBE16(ctx.Section, v)
}

func assembleIndexed(ctx *EvalContext, mnemonic string, insts []*m6809.Instruction, operand *Operand) error {
	inst := findMode(insts, m6809.Indexed)
	if inst == nil {
		return fmt.Errorf("%s: indexed addressing not valid for this instruction", mnemonic)
	}
	ctx.Section.Emit(inst.Opcode)
	return encodeIndexed(ctx, operand.Indexed)
}

func assembleStack(ctx *EvalContext, mnemonic string, insts []*m6809.Instruction, operand *Operand) error {
	inst := findMode(insts, m6809.Stack)
	if inst == nil {
		return fmt.Errorf("%s: a register list is not valid for this instruction", mnemonic)
	}
	ctx.Section.Emit(inst.Opcode)
	return encodeStackMask(ctx.Section, mnemonic, operand.Registers)
}

func assemblePair(ctx *EvalContext, mnemonic string, insts []*m6809.Instruction, operand *Operand) error {
	inst := findMode(insts, m6809.RegisterPair)
	if inst == nil {
		return fmt.Errorf("%s: a register pair is not valid for this instruction", mnemonic)
	}
	ctx.Section.Emit(inst.Opcode)
	return encodePairByte(ctx.Section, operand.Registers)
}

// AssembleBranch handles the short-branch and long-branch mnemonics
// (BRA, LBRA, BEQ, LBEQ, ...). Each 6809 branch
// mnemonic has exactly one relative mode (the assembler does not
// auto-promote BEQ to a long form); an out-of-range displacement on a
// short branch is reported as an error rather than silently widened.
func AssembleBranch(ctx *EvalContext, mnemonic string, target *Node) error {
	insts := m6809.GetInstructions(mnemonic)
	if len(insts) == 0 {
		return fmt.Errorf("unknown mnemonic %q", mnemonic)
	}

	if inst := findMode(insts, m6809.Relative8); inst != nil {
		dest, ok, err := EvalInt(ctx, target)
		if err != nil {
			return err
		}
		totalSize := len(inst.Opcode) + 1
		pcAfter := ctx.Section.PC + totalSize
		ctx.Section.Emit(inst.Opcode)
		if !ok {
			ctx.Section.EmitPad(1)
			return nil
		}
		disp := dest - int64(pcAfter)
		if disp < -128 || disp > 127 {
			return newError(OutOfRange, "%s: branch target out of 8-bit range (use an L-form branch)", mnemonic)
		}
		return emitU8(ctx.Section, disp)
	}

	if inst := findMode(insts, m6809.Relative16); inst != nil {
		dest, ok, err := EvalInt(ctx, target)
		if err != nil {
			return err
		}
		totalSize := len(inst.Opcode) + 2
		pcAfter := ctx.Section.PC + totalSize
		ctx.Section.Emit(inst.Opcode)
		if !ok {
			ctx.Section.EmitPad(2)
			return nil
		}
		return emitBE16(ctx.Section, dest-int64(pcAfter))
	}

	return fmt.Errorf("%s: not a branch instruction", mnemonic)
}
