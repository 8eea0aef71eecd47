package asm

import (
	"fmt"

	"github.com/go6809/asm6809/m6809"
)

// emitU8 appends the low 8 bits of v to sec.
func emitU8(sec *Section, v int64) error {
	sec.Emit([]byte{byte(v)})
	return nil
}

// emitBE16 appends v as a big-endian 16-bit value, the 6809's native
// byte order for every multi-byte immediate, direct, extended, and
// relative operand.
func emitBE16(sec *Section, v int64) error {
	sec.Emit([]byte{byte(v >> 8), byte(v)})
	return nil
}

// encodePairByte builds the post-byte for TFR/EXG: a 4-bit source
// register code in the high nibble, destination in the low nibble.
// Both registers must belong to the same size class, verified against
// m6809.PairNibble/Is16Bit.
func encodePairByte(sec *Section, regs []m6809.Register) error {
	if len(regs) != 2 {
		return fmt.Errorf("expected exactly two registers")
	}
	a, b := regs[0], regs[1]
	if m6809.Is16Bit(a) != m6809.Is16Bit(b) {
		return fmt.Errorf("cannot mix 8-bit and 16-bit registers in a register pair")
	}
	an, ok := m6809.PairNibble(a)
	if !ok {
		return fmt.Errorf("%s is not valid in a register pair", a)
	}
	bn, ok := m6809.PairNibble(b)
	if !ok {
		return fmt.Errorf("%s is not valid in a register pair", b)
	}
	sec.Emit([]byte{an<<4 | bn})
	return nil
}

// encodeStackMask builds the post-byte for PSHS/PULS/PSHU/PULU. RegD
// expands to the A and B bits; the stack-pointer register named by the
// other of S/U (whichever is not the instruction's own stack pointer)
// uses the shared "other" bit, per m6809.StackOtherBit.
func encodeStackMask(sec *Section, mnemonic string, regs []m6809.Register) error {
	var own m6809.Register
	switch mnemonic {
	case "PSHS", "PULS":
		own = m6809.RegU
	case "PSHU", "PULU":
		own = m6809.RegS
	default:
		return fmt.Errorf("%s does not take a register list", mnemonic)
	}

	var mask byte
	for _, r := range regs {
		if r == m6809.RegD {
			mask |= 1 << mustStackBit(m6809.RegA)
			mask |= 1 << mustStackBit(m6809.RegB)
			continue
		}
		if r == own {
			mask |= 1 << m6809.StackOtherBit
			continue
		}
		bit, ok := m6809.StackBit(r)
		if !ok {
			return fmt.Errorf("%s is not valid in a %s register list", r, mnemonic)
		}
		mask |= 1 << bit
	}
	sec.Emit([]byte{mask})
	return nil
}

func mustStackBit(r m6809.Register) byte {
	b, _ := m6809.StackBit(r)
	return b
}

// encodeIndexed builds the post-byte (and any extension bytes) for a
// 6809 indexed-mode operand:
//   - 5-bit offset form: bit7=0, bits6-5=RR, bits4-0=signed offset
//     (only when the offset fits -16..15, no increment/decrement
//     modifier, not indirect, and the base is a real index register).
//   - extended form: bit7=1, bits6-5=RR, bit4=indirect, bits3-0=submode.
func encodeIndexed(ctx *EvalContext, op *IndexedOperand) error {
	sec := ctx.Section

	if op.Base == m6809.RegNone {
		// Extended indirect: [n16]
		postbyte := byte(0x80 | 0x1F) // RR bits irrelevant, submode 1111
		sec.Emit([]byte{postbyte})
		v, ok, err := EvalInt(ctx, op.Offset)
		if err != nil {
			return err
		}
		if !ok {
			return sec2pad(sec, 2)
		}
		return emitBE16(sec, v)
	}

	rr, ok := m6809.RegisterRR(op.Base)
	if !ok && op.Base != m6809.RegPC {
		return fmt.Errorf("%s is not a valid indexed-mode base register", op.Base)
	}

	if op.OffsetReg != m6809.RegNone {
		var submode byte
		switch op.OffsetReg {
		case m6809.RegA:
			submode = 0x6
		case m6809.RegB:
			submode = 0x5
		case m6809.RegD:
			submode = 0xB
		default:
			return fmt.Errorf("%s is not a valid accumulator offset register", op.OffsetReg)
		}
		postbyte := byte(0x80) | rr<<5 | submode
		if op.Indirect {
			postbyte |= 0x10
		}
		sec.Emit([]byte{postbyte})
		return nil
	}

	switch op.Mod {
	case AttrPostInc:
		sec.Emit([]byte{0x80 | rr<<5 | 0x00})
		return nil
	case AttrPostInc2:
		postbyte := byte(0x80) | rr<<5 | 0x01
		if op.Indirect {
			postbyte |= 0x10
		}
		sec.Emit([]byte{postbyte})
		return nil
	case AttrPreDec:
		sec.Emit([]byte{0x80 | rr<<5 | 0x02})
		return nil
	case AttrPreDec2:
		postbyte := byte(0x80) | rr<<5 | 0x03
		if op.Indirect {
			postbyte |= 0x10
		}
		sec.Emit([]byte{postbyte})
		return nil
	}

	if op.Base == m6809.RegPC {
		// expr,PCR : always encoded as an extended 16-bit-offset
		// indexed form relative to the program counter after the
		// full instruction, since the displacement size can't be
		// known until the instruction's own length is fixed.
		postbyte := byte(0x80) | rr<<5 | 0x0D
		sec.Emit([]byte{postbyte})
		v, ok, err := EvalInt(ctx, op.Offset)
		if err != nil {
			return err
		}
		if !ok {
			return sec2pad(sec, 2)
		}
		disp := v - int64(sec.PC+2)
		return emitBE16(sec, disp)
	}

	if op.Offset == nil {
		// bare ',R' is a zero 5-bit offset.
		sec.Emit([]byte{0x00 | rr<<5})
		return nil
	}

	v, ok, err := EvalInt(ctx, op.Offset)
	if err != nil {
		return err
	}
	if !ok {
		// Conservative: an unresolved offset is encoded in the
		// 16-bit extended indexed form, which fits any value; once
		// resolved it may shrink to the 8-bit or 5-bit forms. The
		// caller's pass loop re-encodes every line every pass, so no
		// separate size memo is needed here — the chosen postbyte
		// type is a pure function of the final offset once it's
		// known, and all three forms agree on the indirect bit.
		postbyte := byte(0x80) | rr<<5 | 0x09
		if op.Indirect {
			postbyte |= 0x10
		}
		sec.Emit([]byte{postbyte})
		return sec2pad(sec, 2)
	}

	switch {
	case !op.Indirect && v >= -16 && v <= 15:
		sec.Emit([]byte{rr<<5 | byte(int8(v))&0x1F})
		return nil
	case v >= -128 && v <= 127:
		postbyte := byte(0x80) | rr<<5 | 0x08
		if op.Indirect {
			postbyte |= 0x10
		}
		sec.Emit([]byte{postbyte})
		return emitU8(sec, int64(int8(v)))
	default:
		postbyte := byte(0x80) | rr<<5 | 0x09
		if op.Indirect {
			postbyte |= 0x10
		}
		sec.Emit([]byte{postbyte})
		return emitBE16(sec, v)
	}
}

func sec2pad(sec *Section, n int) error {
	sec.EmitPad(n)
	return nil
}
