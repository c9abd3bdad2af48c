package mos6502

// buildOpcodeTable constructs the 256-entry byte -> opcode lookup
// table, documented instructions first, undocumented ones layered on
// top of the otherwise-unused byte values.
func buildOpcodeTable() map[uint8]opcode {
	m := make(map[uint8]opcode, 256)

	add := func(b uint8, inst uint8, name string, mode uint8, bytes, cycles uint8) {
		m[b] = opcode{inst: inst, name: name, mode: mode, bytes: bytes, cycles: cycles}
	}

	// ADC
	add(0x69, ADC, "ADC", IMMEDIATE, 2, 2)
	add(0x65, ADC, "ADC", ZERO_PAGE, 2, 3)
	add(0x75, ADC, "ADC", ZERO_PAGE_X, 2, 4)
	add(0x6D, ADC, "ADC", ABSOLUTE, 3, 4)
	add(0x7D, ADC, "ADC", ABSOLUTE_X, 3, 4) // +1 if page crossed
	add(0x79, ADC, "ADC", ABSOLUTE_Y, 3, 4) // +1 if page crossed
	add(0x61, ADC, "ADC", INDIRECT_X, 2, 6)
	add(0x71, ADC, "ADC", INDIRECT_Y, 2, 5) // +1 if page crossed

	// AND
	add(0x29, AND, "AND", IMMEDIATE, 2, 2)
	add(0x25, AND, "AND", ZERO_PAGE, 2, 3)
	add(0x35, AND, "AND", ZERO_PAGE_X, 2, 4)
	add(0x2D, AND, "AND", ABSOLUTE, 3, 4)
	add(0x3D, AND, "AND", ABSOLUTE_X, 3, 4) // +1 if page crossed
	add(0x39, AND, "AND", ABSOLUTE_Y, 3, 4) // +1 if page crossed
	add(0x21, AND, "AND", INDIRECT_X, 2, 6)
	add(0x31, AND, "AND", INDIRECT_Y, 2, 5) // +1 if page crossed

	// ASL
	add(0x0A, ASL, "ASL", ACCUMULATOR, 1, 2)
	add(0x06, ASL, "ASL", ZERO_PAGE, 2, 5)
	add(0x16, ASL, "ASL", ZERO_PAGE_X, 2, 6)
	add(0x0E, ASL, "ASL", ABSOLUTE, 3, 6)
	add(0x1E, ASL, "ASL", ABSOLUTE_X, 3, 7)

	// Branches: +1 if branch succeeds, +2 if to a new page
	add(0x90, BCC, "BCC", RELATIVE, 2, 2)
	add(0xB0, BCS, "BCS", RELATIVE, 2, 2)
	add(0xF0, BEQ, "BEQ", RELATIVE, 2, 2)
	add(0x30, BMI, "BMI", RELATIVE, 2, 2)
	add(0xD0, BNE, "BNE", RELATIVE, 2, 2)
	add(0x10, BPL, "BPL", RELATIVE, 2, 2)
	add(0x50, BVC, "BVC", RELATIVE, 2, 2)
	add(0x70, BVS, "BVS", RELATIVE, 2, 2)

	add(0x24, BIT, "BIT", ZERO_PAGE, 2, 3)
	add(0x2C, BIT, "BIT", ABSOLUTE, 3, 4)

	add(0x00, BRK, "BRK", IMPLICIT, 2, 7)

	add(0x18, CLC, "CLC", IMPLICIT, 1, 2)
	add(0xD8, CLD, "CLD", IMPLICIT, 1, 2)
	add(0x58, CLI, "CLI", IMPLICIT, 1, 2)
	add(0xB8, CLV, "CLV", IMPLICIT, 1, 2)

	add(0xC9, CMP, "CMP", IMMEDIATE, 2, 2)
	add(0xC5, CMP, "CMP", ZERO_PAGE, 2, 3)
	add(0xD5, CMP, "CMP", ZERO_PAGE_X, 2, 4)
	add(0xCD, CMP, "CMP", ABSOLUTE, 3, 4)
	add(0xDD, CMP, "CMP", ABSOLUTE_X, 3, 4) // +1 if page crossed
	add(0xD9, CMP, "CMP", ABSOLUTE_Y, 3, 4) // +1 if page crossed
	add(0xC1, CMP, "CMP", INDIRECT_X, 2, 6)
	add(0xD1, CMP, "CMP", INDIRECT_Y, 2, 5) // +1 if page crossed

	add(0xE0, CPX, "CPX", IMMEDIATE, 2, 2)
	add(0xE4, CPX, "CPX", ZERO_PAGE, 2, 3)
	add(0xEC, CPX, "CPX", ABSOLUTE, 3, 4)

	add(0xC0, CPY, "CPY", IMMEDIATE, 2, 2)
	add(0xC4, CPY, "CPY", ZERO_PAGE, 2, 3)
	add(0xCC, CPY, "CPY", ABSOLUTE, 3, 4)

	add(0xC6, DEC, "DEC", ZERO_PAGE, 2, 5)
	add(0xD6, DEC, "DEC", ZERO_PAGE_X, 2, 6)
	add(0xCE, DEC, "DEC", ABSOLUTE, 3, 6)
	add(0xDE, DEC, "DEC", ABSOLUTE_X, 3, 7)

	add(0xCA, DEX, "DEX", IMPLICIT, 1, 2)
	add(0x88, DEY, "DEY", IMPLICIT, 1, 2)

	add(0x49, EOR, "EOR", IMMEDIATE, 2, 2)
	add(0x45, EOR, "EOR", ZERO_PAGE, 2, 3)
	add(0x55, EOR, "EOR", ZERO_PAGE_X, 2, 4)
	add(0x4D, EOR, "EOR", ABSOLUTE, 3, 4)
	add(0x5D, EOR, "EOR", ABSOLUTE_X, 3, 4) // +1 if page crossed
	add(0x59, EOR, "EOR", ABSOLUTE_Y, 3, 4) // +1 if page crossed
	add(0x41, EOR, "EOR", INDIRECT_X, 2, 6)
	add(0x51, EOR, "EOR", INDIRECT_Y, 2, 5) // +1 if page crossed

	add(0xE6, INC, "INC", ZERO_PAGE, 2, 5)
	add(0xF6, INC, "INC", ZERO_PAGE_X, 2, 6)
	add(0xEE, INC, "INC", ABSOLUTE, 3, 6)
	add(0xFE, INC, "INC", ABSOLUTE_X, 3, 7)

	add(0xE8, INX, "INX", IMPLICIT, 1, 2)
	add(0xC8, INY, "INY", IMPLICIT, 1, 2)

	add(0x4C, JMP, "JMP", ABSOLUTE, 3, 3)
	add(0x6C, JMP, "JMP", INDIRECT, 3, 5)

	add(0x20, JSR, "JSR", ABSOLUTE, 3, 6)

	add(0xA9, LDA, "LDA", IMMEDIATE, 2, 2)
	add(0xA5, LDA, "LDA", ZERO_PAGE, 2, 3)
	add(0xB5, LDA, "LDA", ZERO_PAGE_X, 2, 4)
	add(0xAD, LDA, "LDA", ABSOLUTE, 3, 4)
	add(0xBD, LDA, "LDA", ABSOLUTE_X, 3, 4) // +1 if page crossed
	add(0xB9, LDA, "LDA", ABSOLUTE_Y, 3, 4) // +1 if page crossed
	add(0xA1, LDA, "LDA", INDIRECT_X, 2, 6)
	add(0xB1, LDA, "LDA", INDIRECT_Y, 2, 5) // +1 if page crossed

	add(0xA2, LDX, "LDX", IMMEDIATE, 2, 2)
	add(0xA6, LDX, "LDX", ZERO_PAGE, 2, 3)
	add(0xB6, LDX, "LDX", ZERO_PAGE_Y, 2, 4)
	add(0xAE, LDX, "LDX", ABSOLUTE, 3, 4)
	add(0xBE, LDX, "LDX", ABSOLUTE_Y, 3, 4) // +1 if page crossed

	add(0xA0, LDY, "LDY", IMMEDIATE, 2, 2)
	add(0xA4, LDY, "LDY", ZERO_PAGE, 2, 3)
	add(0xB4, LDY, "LDY", ZERO_PAGE_X, 2, 4)
	add(0xAC, LDY, "LDY", ABSOLUTE, 3, 4)
	add(0xBC, LDY, "LDY", ABSOLUTE_X, 3, 4) // +1 if page crossed

	add(0x4A, LSR, "LSR", ACCUMULATOR, 1, 2)
	add(0x46, LSR, "LSR", ZERO_PAGE, 2, 5)
	add(0x56, LSR, "LSR", ZERO_PAGE_X, 2, 6)
	add(0x4E, LSR, "LSR", ABSOLUTE, 3, 6)
	add(0x5E, LSR, "LSR", ABSOLUTE_X, 3, 7)

	add(0xEA, NOP, "NOP", IMPLICIT, 1, 2)

	add(0x09, ORA, "ORA", IMMEDIATE, 2, 2)
	add(0x05, ORA, "ORA", ZERO_PAGE, 2, 3)
	add(0x15, ORA, "ORA", ZERO_PAGE_X, 2, 4)
	add(0x0D, ORA, "ORA", ABSOLUTE, 3, 4)
	add(0x1D, ORA, "ORA", ABSOLUTE_X, 3, 4) // +1 if page crossed
	add(0x19, ORA, "ORA", ABSOLUTE_Y, 3, 4) // +1 if page crossed
	add(0x01, ORA, "ORA", INDIRECT_X, 2, 6)
	add(0x11, ORA, "ORA", INDIRECT_Y, 2, 5) // +1 if page crossed

	add(0x48, PHA, "PHA", IMPLICIT, 1, 3)
	add(0x08, PHP, "PHP", IMPLICIT, 1, 3)
	add(0x68, PLA, "PLA", IMPLICIT, 1, 4)
	add(0x28, PLP, "PLP", IMPLICIT, 1, 4)

	add(0x2A, ROL, "ROL", ACCUMULATOR, 1, 2)
	add(0x26, ROL, "ROL", ZERO_PAGE, 2, 5)
	add(0x36, ROL, "ROL", ZERO_PAGE_X, 2, 6)
	add(0x2E, ROL, "ROL", ABSOLUTE, 3, 6)
	add(0x3E, ROL, "ROL", ABSOLUTE_X, 3, 7)

	add(0x6A, ROR, "ROR", ACCUMULATOR, 1, 2)
	add(0x66, ROR, "ROR", ZERO_PAGE, 2, 5)
	add(0x76, ROR, "ROR", ZERO_PAGE_X, 2, 6)
	add(0x6E, ROR, "ROR", ABSOLUTE, 3, 6)
	add(0x7E, ROR, "ROR", ABSOLUTE_X, 3, 7)

	add(0x40, RTI, "RTI", IMPLICIT, 1, 6)
	add(0x60, RTS, "RTS", IMPLICIT, 1, 6)

	add(0xE9, SBC, "SBC", IMMEDIATE, 2, 2)
	add(0xE5, SBC, "SBC", ZERO_PAGE, 2, 3)
	add(0xF5, SBC, "SBC", ZERO_PAGE_X, 2, 4)
	add(0xED, SBC, "SBC", ABSOLUTE, 3, 4)
	add(0xFD, SBC, "SBC", ABSOLUTE_X, 3, 4) // +1 if page crossed
	add(0xF9, SBC, "SBC", ABSOLUTE_Y, 3, 4) // +1 if page crossed
	add(0xE1, SBC, "SBC", INDIRECT_X, 2, 6)
	add(0xF1, SBC, "SBC", INDIRECT_Y, 2, 5) // +1 if page crossed

	add(0x38, SEC, "SEC", IMPLICIT, 1, 2)
	add(0xF8, SED, "SED", IMPLICIT, 1, 2)
	add(0x78, SEI, "SEI", IMPLICIT, 1, 2)

	add(0x85, STA, "STA", ZERO_PAGE, 2, 3)
	add(0x95, STA, "STA", ZERO_PAGE_X, 2, 4)
	add(0x8D, STA, "STA", ABSOLUTE, 3, 4)
	add(0x9D, STA, "STA", ABSOLUTE_X, 3, 5)
	add(0x99, STA, "STA", ABSOLUTE_Y, 3, 5)
	add(0x81, STA, "STA", INDIRECT_X, 2, 6)
	add(0x91, STA, "STA", INDIRECT_Y, 2, 6)

	add(0x86, STX, "STX", ZERO_PAGE, 2, 3)
	add(0x96, STX, "STX", ZERO_PAGE_Y, 2, 4)
	add(0x8E, STX, "STX", ABSOLUTE, 3, 4)

	add(0x84, STY, "STY", ZERO_PAGE, 2, 3)
	add(0x94, STY, "STY", ZERO_PAGE_X, 2, 4)
	add(0x8C, STY, "STY", ABSOLUTE, 3, 4)

	add(0xAA, TAX, "TAX", IMPLICIT, 1, 2)
	add(0xA8, TAY, "TAY", IMPLICIT, 1, 2)
	add(0xBA, TSX, "TSX", IMPLICIT, 1, 2)
	add(0x8A, TXA, "TXA", IMPLICIT, 1, 2)
	add(0x9A, TXS, "TXS", IMPLICIT, 1, 2)
	add(0x98, TYA, "TYA", IMPLICIT, 1, 2)

	// --- Undocumented opcodes ---

	// JAM: the handful of byte values that lock up real hardware.
	// Mapped to the freeze handler rather than left unmapped so
	// executing one consumes cycles instead of erroring out.
	for _, b := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		add(b, JAM, "JAM", IMPLICIT, 1, 2)
	}

	add(0x07, SLO, "SLO", ZERO_PAGE, 2, 5)
	add(0x17, SLO, "SLO", ZERO_PAGE_X, 2, 6)
	add(0x03, SLO, "SLO", INDIRECT_X, 2, 8)
	add(0x13, SLO, "SLO", INDIRECT_Y, 2, 8)
	add(0x0F, SLO, "SLO", ABSOLUTE, 3, 6)
	add(0x1F, SLO, "SLO", ABSOLUTE_X, 3, 7)
	add(0x1B, SLO, "SLO", ABSOLUTE_Y, 3, 7)

	add(0x27, RLA, "RLA", ZERO_PAGE, 2, 5)
	add(0x37, RLA, "RLA", ZERO_PAGE_X, 2, 6)
	add(0x23, RLA, "RLA", INDIRECT_X, 2, 8)
	add(0x33, RLA, "RLA", INDIRECT_Y, 2, 8)
	add(0x2F, RLA, "RLA", ABSOLUTE, 3, 6)
	add(0x3F, RLA, "RLA", ABSOLUTE_X, 3, 7)
	add(0x3B, RLA, "RLA", ABSOLUTE_Y, 3, 7)

	add(0x47, SRE, "SRE", ZERO_PAGE, 2, 5)
	add(0x57, SRE, "SRE", ZERO_PAGE_X, 2, 6)
	add(0x43, SRE, "SRE", INDIRECT_X, 2, 8)
	add(0x53, SRE, "SRE", INDIRECT_Y, 2, 8)
	add(0x4F, SRE, "SRE", ABSOLUTE, 3, 6)
	add(0x5F, SRE, "SRE", ABSOLUTE_X, 3, 7)
	add(0x5B, SRE, "SRE", ABSOLUTE_Y, 3, 7)

	add(0x67, RRA, "RRA", ZERO_PAGE, 2, 5)
	add(0x77, RRA, "RRA", ZERO_PAGE_X, 2, 6)
	add(0x63, RRA, "RRA", INDIRECT_X, 2, 8)
	add(0x73, RRA, "RRA", INDIRECT_Y, 2, 8)
	add(0x6F, RRA, "RRA", ABSOLUTE, 3, 6)
	add(0x7F, RRA, "RRA", ABSOLUTE_X, 3, 7)
	add(0x7B, RRA, "RRA", ABSOLUTE_Y, 3, 7)

	add(0x87, SAX, "SAX", ZERO_PAGE, 2, 3)
	add(0x97, SAX, "SAX", ZERO_PAGE_Y, 2, 4)
	add(0x83, SAX, "SAX", INDIRECT_X, 2, 6)
	add(0x8F, SAX, "SAX", ABSOLUTE, 3, 4)

	add(0xA7, LAX, "LAX", ZERO_PAGE, 2, 3)
	add(0xB7, LAX, "LAX", ZERO_PAGE_Y, 2, 4)
	add(0xA3, LAX, "LAX", INDIRECT_X, 2, 6)
	add(0xB3, LAX, "LAX", INDIRECT_Y, 2, 5) // +1 if page crossed
	add(0xAF, LAX, "LAX", ABSOLUTE, 3, 4)
	add(0xBF, LAX, "LAX", ABSOLUTE_Y, 3, 4) // +1 if page crossed

	add(0xC7, DCP, "DCP", ZERO_PAGE, 2, 5)
	add(0xD7, DCP, "DCP", ZERO_PAGE_X, 2, 6)
	add(0xC3, DCP, "DCP", INDIRECT_X, 2, 8)
	add(0xD3, DCP, "DCP", INDIRECT_Y, 2, 8)
	add(0xCF, DCP, "DCP", ABSOLUTE, 3, 6)
	add(0xDF, DCP, "DCP", ABSOLUTE_X, 3, 7)
	add(0xDB, DCP, "DCP", ABSOLUTE_Y, 3, 7)

	add(0xE7, ISC, "ISC", ZERO_PAGE, 2, 5)
	add(0xF7, ISC, "ISC", ZERO_PAGE_X, 2, 6)
	add(0xE3, ISC, "ISC", INDIRECT_X, 2, 8)
	add(0xF3, ISC, "ISC", INDIRECT_Y, 2, 8)
	add(0xEF, ISC, "ISC", ABSOLUTE, 3, 6)
	add(0xFF, ISC, "ISC", ABSOLUTE_X, 3, 7)
	add(0xFB, ISC, "ISC", ABSOLUTE_Y, 3, 7)

	add(0x0B, ANC, "ANC", IMMEDIATE, 2, 2)
	add(0x2B, ANC, "ANC", IMMEDIATE, 2, 2)

	add(0x4B, ALR, "ALR", IMMEDIATE, 2, 2)
	add(0x6B, ARR, "ARR", IMMEDIATE, 2, 2)
	add(0xCB, SBX, "SBX", IMMEDIATE, 2, 2)
	add(0xAB, LXA, "LXA", IMMEDIATE, 2, 2)
	add(0x8B, ANE, "ANE", IMMEDIATE, 2, 2)

	add(0x9C, SHY, "SHY", ABSOLUTE_X, 3, 5)
	add(0x9E, SHX, "SHX", ABSOLUTE_Y, 3, 5)
	add(0x9F, SHA, "SHA", ABSOLUTE_Y, 3, 5)
	add(0x93, SHA, "SHA", INDIRECT_Y, 2, 6)
	add(0x9B, TAS, "TAS", ABSOLUTE_Y, 3, 5)
	add(0xBB, LAS, "LAS", ABSOLUTE_Y, 3, 4) // +1 if page crossed

	// Undocumented NOPs
	for _, b := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		add(b, NOP, "NOP", IMPLICIT, 1, 2)
	}
	for _, b := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		add(b, NOP, "NOP", IMMEDIATE, 2, 2)
	}
	for _, b := range []uint8{0x04, 0x44, 0x64} {
		add(b, NOP, "NOP", ZERO_PAGE, 2, 3)
	}
	for _, b := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		add(b, NOP, "NOP", ZERO_PAGE_X, 2, 4)
	}
	add(0x0C, NOP, "NOP", ABSOLUTE, 3, 4)
	for _, b := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		add(b, NOP, "NOP", ABSOLUTE_X, 3, 4) // +1 if page crossed
	}

	add(0xEB, SBC, "SBC", IMMEDIATE, 2, 2) // duplicate of 0xE9

	return m
}
