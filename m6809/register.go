// Package m6809 describes the Motorola 6809 instruction set: its
// registers, addressing modes, and opcode table. It carries no
// execution semantics; it exists to be consulted by an assembler or
// disassembler.
package m6809

// A Register identifies one of the 6809's registers, including PC and
// DP (which have TFR/EXG codes; PC also has a stack-mask bit) and the
// pseudo-register PCR, which appears only in assembly source, never in
// a post-byte.
type Register byte

// All 6809 registers recognized by the assembler.
const (
	RegNone Register = iota
	RegA
	RegB
	RegD
	RegX
	RegY
	RegU
	RegS
	RegPC
	RegCC
	RegDP
	RegPCR
)

var registerNames = [...]string{
	RegNone: "",
	RegA:    "A",
	RegB:    "B",
	RegD:    "D",
	RegX:    "X",
	RegY:    "Y",
	RegU:    "U",
	RegS:    "S",
	RegPC:   "PC",
	RegCC:   "CC",
	RegDP:   "DP",
	RegPCR:  "PCR",
}

func (r Register) String() string {
	if int(r) < len(registerNames) {
		return registerNames[r]
	}
	return "?"
}

// LookupRegister returns the register named by s, case-insensitively,
// and whether the name was recognized.
func LookupRegister(s string) (Register, bool) {
	r, ok := registerByName[upper(s)]
	return r, ok
}

var registerByName = map[string]Register{
	"A": RegA, "B": RegB, "D": RegD,
	"X": RegX, "Y": RegY, "U": RegU, "S": RegS,
	"PC": RegPC, "CC": RegCC, "DP": RegDP, "PCR": RegPCR,
}

// isIndexable reports whether r can appear as the base register of an
// indexed addressing mode (,R / ,R+ / ,R++ / ,-R / ,--R / n,R).
func (r Register) isIndexable() bool {
	switch r {
	case RegX, RegY, RegU, RegS:
		return true
	default:
		return false
	}
}

// indexBaseBits returns the 2-bit register-select field used in the
// 6809 indexed post-byte (bits 6:5).
func (r Register) indexBaseBits() byte {
	switch r {
	case RegX:
		return 0
	case RegY:
		return 1
	case RegU:
		return 2
	case RegS:
		return 3
	default:
		return 0
	}
}

// RegisterRR returns the 2-bit register-select field used in the 6809
// indexed post-byte (bits 6:5) for r, and whether r is a valid indexed
// base register at all.
func RegisterRR(r Register) (byte, bool) {
	if !r.isIndexable() {
		return 0, false
	}
	return r.indexBaseBits(), true
}

func upper(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}
