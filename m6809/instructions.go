package m6809

// An Instruction describes one (mnemonic, addressing-mode) pairing
// recognized by the 6809. Opcode carries one byte for page-0
// instructions and two bytes (the 0x10 or 0x11 prefix followed by the
// real opcode) for page-1/page-2 instructions.
//
// Size gives the number of operand bytes that follow the opcode for
// modes whose operand size is fixed (Immediate8, Immediate16, Direct,
// Extended). For Indexed, Relative8, Relative16, Stack, and
// RegisterPair the operand size is determined dynamically by the
// encoder in package asm, and Size is always 0 here.
type Instruction struct {
	Mnemonic string
	Mode     Mode
	Opcode   []byte
	Size     int
}

func op1(b byte) []byte      { return []byte{b} }
func op2(a, b byte) []byte   { return []byte{a, b} }

// accumulatorFamily describes the opcode column layout shared by every
// full 8-bit-accumulator instruction (ADDA, SUBA, LDA, ...): immediate,
// direct, indexed, extended, in that order. store is true for STA/STB,
// which have no immediate form.
func accumulatorFamily(mnemonic string, imm, dir, idx, ext byte, store bool) []*Instruction {
	var insts []*Instruction
	if !store {
		insts = append(insts, &Instruction{mnemonic, Immediate8, op1(imm), 1})
	}
	insts = append(insts,
		&Instruction{mnemonic, Direct, op1(dir), 1},
		&Instruction{mnemonic, Indexed, op1(idx), 0},
		&Instruction{mnemonic, Extended, op1(ext), 2},
	)
	return insts
}

// wideFamily is accumulatorFamily for a 16-bit register/pair (D, X, Y,
// U, S): the immediate and direct/indexed/extended operands are all
// two bytes wide except direct, which remains a 1-byte page offset.
func wideFamily(mnemonic string, imm, dir, idx, ext byte, store bool, prefix ...byte) []*Instruction {
	op := func(b byte) []byte {
		if len(prefix) == 0 {
			return op1(b)
		}
		return op2(prefix[0], b)
	}
	var insts []*Instruction
	if !store {
		insts = append(insts, &Instruction{mnemonic, Immediate16, op(imm), 2})
	}
	insts = append(insts,
		&Instruction{mnemonic, Direct, op(dir), 1},
		&Instruction{mnemonic, Indexed, op(idx), 0},
		&Instruction{mnemonic, Extended, op(ext), 2},
	)
	return insts
}

// singleOperandFamily describes the direct/indexed/extended layout
// shared by the read-modify-write family (NEG, COM, LSR, ROR, ...).
func singleOperandFamily(mnemonic string, dir, idx, ext byte) []*Instruction {
	return []*Instruction{
		{mnemonic, Direct, op1(dir), 1},
		{mnemonic, Indexed, op1(idx), 0},
		{mnemonic, Extended, op1(ext), 2},
	}
}

// accumulatorInherentFamily describes the inherent-only variant of the
// read-modify-write family applied directly to a register (NEGA,
// CLRB, ...).
func accumulatorInherentFamily(mnemonic string, opcode byte) *Instruction {
	return &Instruction{mnemonic, Inherent, op1(opcode), 0}
}

var table = buildTable()

func buildTable() map[string][]*Instruction {
	t := make(map[string][]*Instruction)
	add := func(insts ...*Instruction) {
		for _, in := range insts {
			t[in.Mnemonic] = append(t[in.Mnemonic], in)
		}
	}
	addAll := func(insts []*Instruction) { add(insts...) }

	// Full 8-bit accumulator families: A (0x8_-0xB_), B (0xC_-0xF_).
	addAll(accumulatorFamily("SUBA", 0x80, 0x90, 0xA0, 0xB0, false))
	addAll(accumulatorFamily("CMPA", 0x81, 0x91, 0xA1, 0xB1, false))
	addAll(accumulatorFamily("SBCA", 0x82, 0x92, 0xA2, 0xB2, false))
	addAll(accumulatorFamily("ANDA", 0x84, 0x94, 0xA4, 0xB4, false))
	addAll(accumulatorFamily("BITA", 0x85, 0x95, 0xA5, 0xB5, false))
	addAll(accumulatorFamily("LDA", 0x86, 0x96, 0xA6, 0xB6, false))
	addAll(accumulatorFamily("STA", 0, 0x97, 0xA7, 0xB7, true))
	addAll(accumulatorFamily("EORA", 0x88, 0x98, 0xA8, 0xB8, false))
	addAll(accumulatorFamily("ADCA", 0x89, 0x99, 0xA9, 0xB9, false))
	addAll(accumulatorFamily("ORA", 0x8A, 0x9A, 0xAA, 0xBA, false))
	addAll(accumulatorFamily("ADDA", 0x8B, 0x9B, 0xAB, 0xBB, false))

	addAll(accumulatorFamily("SUBB", 0xC0, 0xD0, 0xE0, 0xF0, false))
	addAll(accumulatorFamily("CMPB", 0xC1, 0xD1, 0xE1, 0xF1, false))
	addAll(accumulatorFamily("SBCB", 0xC2, 0xD2, 0xE2, 0xF2, false))
	addAll(accumulatorFamily("ANDB", 0xC4, 0xD4, 0xE4, 0xF4, false))
	addAll(accumulatorFamily("BITB", 0xC5, 0xD5, 0xE5, 0xF5, false))
	addAll(accumulatorFamily("LDB", 0xC6, 0xD6, 0xE6, 0xF6, false))
	addAll(accumulatorFamily("STB", 0, 0xD7, 0xE7, 0xF7, true))
	addAll(accumulatorFamily("EORB", 0xC8, 0xD8, 0xE8, 0xF8, false))
	addAll(accumulatorFamily("ADCB", 0xC9, 0xD9, 0xE9, 0xF9, false))
	addAll(accumulatorFamily("ORB", 0xCA, 0xDA, 0xEA, 0xFA, false))
	addAll(accumulatorFamily("ADDB", 0xCB, 0xDB, 0xEB, 0xFB, false))

	// 16-bit D-register family.
	addAll(wideFamily("SUBD", 0x83, 0x93, 0xA3, 0xB3, false))
	addAll(wideFamily("ADDD", 0xC3, 0xD3, 0xE3, 0xF3, false))
	addAll(wideFamily("LDD", 0xCC, 0xDC, 0xEC, 0xFC, false))
	addAll(wideFamily("STD", 0, 0xDD, 0xED, 0xFD, true))
	addAll(wideFamily("CMPD", 0x83, 0x93, 0xA3, 0xB3, false, 0x10))

	// Index/stack register families.
	addAll(wideFamily("LDX", 0x8E, 0x9E, 0xAE, 0xBE, false))
	addAll(wideFamily("STX", 0, 0x9F, 0xAF, 0xBF, true))
	addAll(wideFamily("CMPX", 0x8C, 0x9C, 0xAC, 0xBC, false))

	addAll(wideFamily("LDY", 0x8E, 0x9E, 0xAE, 0xBE, false, 0x10))
	addAll(wideFamily("STY", 0, 0x9F, 0xAF, 0xBF, true, 0x10))
	addAll(wideFamily("CMPY", 0x8C, 0x9C, 0xAC, 0xBC, false, 0x10))

	addAll(wideFamily("LDU", 0xCE, 0xDE, 0xEE, 0xFE, false))
	addAll(wideFamily("STU", 0, 0xDF, 0xEF, 0xFF, true))
	addAll(wideFamily("CMPU", 0x83, 0x93, 0xA3, 0xB3, false, 0x11))

	addAll(wideFamily("LDS", 0xCE, 0xDE, 0xEE, 0xFE, false, 0x10))
	addAll(wideFamily("STS", 0, 0xDF, 0xEF, 0xFF, true, 0x10))
	addAll(wideFamily("CMPS", 0x8C, 0x9C, 0xAC, 0xBC, false, 0x11))

	// Read-modify-write family: direct/indexed/extended plus an
	// inherent A/B variant.
	type rmw struct {
		name        string
		dir, idx, ext byte
		a, b        byte
	}
	for _, f := range []rmw{
		{"NEG", 0x00, 0x60, 0x70, 0x40, 0x50},
		{"COM", 0x03, 0x63, 0x73, 0x43, 0x53},
		{"LSR", 0x04, 0x64, 0x74, 0x44, 0x54},
		{"ROR", 0x06, 0x66, 0x76, 0x46, 0x56},
		{"ASR", 0x07, 0x67, 0x77, 0x47, 0x57},
		{"ASL", 0x08, 0x68, 0x78, 0x48, 0x58},
		{"ROL", 0x09, 0x69, 0x79, 0x49, 0x59},
		{"DEC", 0x0A, 0x6A, 0x7A, 0x4A, 0x5A},
		{"INC", 0x0C, 0x6C, 0x7C, 0x4C, 0x5C},
		{"TST", 0x0D, 0x6D, 0x7D, 0x4D, 0x5D},
		{"CLR", 0x0F, 0x6F, 0x7F, 0x4F, 0x5F},
	} {
		addAll(singleOperandFamily(f.name, f.dir, f.idx, f.ext))
		add(accumulatorInherentFamily(f.name+"A", f.a))
		add(accumulatorInherentFamily(f.name+"B", f.b))
	}
	// LSL (and LSLA/LSLB) as synonyms of ASL, used by some assemblers of this lineage.
	t["LSL"] = t["ASL"]
	t["LSLA"] = t["ASLA"]
	t["LSLB"] = t["ASLB"]

	// JMP/JSR/BSR.
	addAll(singleOperandFamily("JMP", 0x0E, 0x6E, 0x7E))
	addAll(singleOperandFamily("JSR", 0x9D, 0xAD, 0xBD))
	add(&Instruction{"BSR", Relative8, op1(0x8D), 0})
	add(&Instruction{"LBSR", Relative16, op1(0x17), 0})

	// LEA (indexed-only; the computed address is never dereferenced).
	add(&Instruction{"LEAX", Indexed, op1(0x30), 0})
	add(&Instruction{"LEAY", Indexed, op1(0x31), 0})
	add(&Instruction{"LEAS", Indexed, op1(0x32), 0})
	add(&Instruction{"LEAU", Indexed, op1(0x33), 0})

	// Stack.
	add(&Instruction{"PSHS", Stack, op1(0x34), 0})
	add(&Instruction{"PULS", Stack, op1(0x35), 0})
	add(&Instruction{"PSHU", Stack, op1(0x36), 0})
	add(&Instruction{"PULU", Stack, op1(0x37), 0})

	// Register pair.
	add(&Instruction{"EXG", RegisterPair, op1(0x1E), 0})
	add(&Instruction{"TFR", RegisterPair, op1(0x1F), 0})

	// Short (8-bit) conditional branches.
	for name, opcode := range map[string]byte{
		"BRA": 0x20, "BRN": 0x21, "BHI": 0x22, "BLS": 0x23,
		"BCC": 0x24, "BHS": 0x24, "BCS": 0x25, "BLO": 0x25,
		"BNE": 0x26, "BEQ": 0x27, "BVC": 0x28, "BVS": 0x29,
		"BPL": 0x2A, "BMI": 0x2B, "BGE": 0x2C, "BLT": 0x2D,
		"BGT": 0x2E, "BLE": 0x2F,
	} {
		add(&Instruction{name, Relative8, op1(opcode), 0})
	}
	add(&Instruction{"LBRA", Relative16, op1(0x16), 0})

	// Long (16-bit) conditional branches, page-1 prefixed.
	for name, opcode := range map[string]byte{
		"LBRN": 0x21, "LBHI": 0x22, "LBLS": 0x23,
		"LBCC": 0x24, "LBHS": 0x24, "LBCS": 0x25, "LBLO": 0x25,
		"LBNE": 0x26, "LBEQ": 0x27, "LBVC": 0x28, "LBVS": 0x29,
		"LBPL": 0x2A, "LBMI": 0x2B, "LBGE": 0x2C, "LBLT": 0x2D,
		"LBGT": 0x2E, "LBLE": 0x2F,
	} {
		add(&Instruction{name, Relative16, op2(0x10, opcode), 0})
	}

	// Miscellaneous inherent.
	for name, opcode := range map[string]byte{
		"NOP": 0x12, "SYNC": 0x13, "DAA": 0x19, "SEX": 0x1D,
		"RTS": 0x39, "ABX": 0x3A, "RTI": 0x3B, "MUL": 0x3D,
		"SWI": 0x3F,
	} {
		add(&Instruction{name, Inherent, op1(opcode), 0})
	}
	add(&Instruction{"SWI2", Inherent, op2(0x10, 0x3F), 0})
	add(&Instruction{"SWI3", Inherent, op2(0x11, 0x3F), 0})

	// CWAI/ORCC/ANDCC take an 8-bit immediate mask.
	add(&Instruction{"CWAI", Immediate8, op1(0x3C), 1})
	add(&Instruction{"ORCC", Immediate8, op1(0x1A), 1})
	add(&Instruction{"ANDCC", Immediate8, op1(0x1C), 1})

	return t
}

// GetInstructions returns every addressing-mode variant the 6809
// recognizes for the given mnemonic, or nil if the mnemonic is not a
// 6809 instruction.
func GetInstructions(mnemonic string) []*Instruction {
	return table[upper(mnemonic)]
}
