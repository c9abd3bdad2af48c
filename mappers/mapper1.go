package mappers

import "github.com/nes-core/nesemu/nesrom"

func init() {
	RegisterMapper(1, newMapper1)
}

// mapper1 implements MMC1: a 5-bit serial shift register loaded one
// LSB per write. Every fifth write routes the accumulated value to
// one of four internal registers selected by address bits 13-14.
type mapper1 struct {
	*baseMapper

	control uint8 // bits: 0-1 mirroring, 2-3 PRG mode, 4 CHR mode

	prgBank16Lo, prgBank16Hi uint8
	prgBank32                uint8
	chrBank4Lo, chrBank4Hi   uint8
	chrBank8                 uint8

	shiftReg   uint8
	writeCount uint8

	mirror uint8

	numPrgBanks uint8
	numChrBanks uint8
}

func newMapper1(rom *nesrom.ROM) Mapper {
	m := &mapper1{
		baseMapper:  newBaseMapper(1, "MMC1", rom),
		numPrgBanks: rom.NumPrgBlocks(),
		numChrBanks: rom.NumChrBlocks(),
	}
	m.Reset()
	return m
}

func (m *mapper1) Reset() {
	m.control = 0x1C
	m.shiftReg = 0x10
	m.writeCount = 0
	m.prgBank16Lo = 0
	m.prgBank16Hi = m.numPrgBanks - 1
	m.prgBank32 = 0
	m.chrBank4Lo, m.chrBank4Hi, m.chrBank8 = 0, 0, 0
	m.mirror = MIRROR_SINGLE_LOWER
}

func (m *mapper1) MirroringMode() uint8 {
	return m.mirror
}

func (m *mapper1) prgOffset(addr uint16) uint32 {
	if m.control&0b00001000 != 0 {
		// 16 KiB mode
		if addr >= 0x8000 && addr <= 0xBFFF {
			return uint32(m.prgBank16Lo)*prgBankSize + uint32(addr&0x3FFF)
		}
		return uint32(m.prgBank16Hi)*prgBankSize + uint32(addr&0x3FFF)
	}
	// 32 KiB mode
	return uint32(m.prgBank32)*0x8000 + uint32(addr&0x7FFF)
}

func (m *mapper1) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000:
		return m.rom.PrgRead(m.prgOffset(addr))
	}
	return 0xFF
}

func (m *mapper1) CPUWrite(addr uint16, data uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAMWrite(addr, data)
		return
	}
	if addr < 0x8000 {
		return
	}

	if data&0x80 != 0 {
		m.shiftReg = 0x10
		m.writeCount = 0
		m.control |= 0x0C
		return
	}

	m.shiftReg = (m.shiftReg >> 1) | ((data & 1) << 4)
	m.writeCount++
	if m.writeCount != 5 {
		return
	}

	target := (addr >> 13) & 0b11
	switch target {
	case 0: // 0x8000-0x9FFF: control
		m.control = m.shiftReg & 0b11111
		switch m.control & 0b11 {
		case 0:
			m.mirror = MIRROR_SINGLE_LOWER
		case 1:
			m.mirror = MIRROR_SINGLE_UPPER
		case 2:
			m.mirror = MIRROR_VERTICAL
		case 3:
			m.mirror = MIRROR_HORIZONTAL
		}
	case 1: // 0xA000-0xBFFF: CHR low / 8KiB bank
		if m.control&0b10000 != 0 {
			m.chrBank4Lo = m.shiftReg & 0b11111
		} else {
			m.chrBank8 = m.shiftReg & 0b11110
		}
	case 2: // 0xC000-0xDFFF: CHR high (4KiB mode only)
		if m.control&0b10000 != 0 {
			m.chrBank4Hi = m.shiftReg & 0b11111
		}
	case 3: // 0xE000-0xFFFF: PRG bank(s)
		prgMode := (m.control >> 2) & 0b11
		switch prgMode {
		case 0, 1:
			m.prgBank32 = (m.shiftReg & 0b1110) >> 1
		case 2:
			m.prgBank16Lo = 0
			m.prgBank16Hi = m.shiftReg & 0b1111
		case 3:
			m.prgBank16Lo = m.shiftReg & 0b1111
			m.prgBank16Hi = m.numPrgBanks - 1
		}
	}

	m.shiftReg = 0
	m.writeCount = 0
}

func (m *mapper1) PPURead(addr uint16) uint8 {
	if m.numChrBanks == 0 {
		return m.chrRead(addr)
	}

	off := m.chrOffset(addr)
	return m.rom.ChrRead(off)
}

func (m *mapper1) PPUWrite(addr uint16, val uint8) {
	if m.numChrBanks == 0 {
		m.chrWrite(addr, val)
		return
	}
	m.rom.ChrWrite(m.chrOffset(addr), val)
}

func (m *mapper1) chrOffset(addr uint16) uint32 {
	if m.control&0b10000 != 0 {
		if addr <= 0x0FFF {
			return uint32(m.chrBank4Lo)*0x1000 + uint32(addr&0x0FFF)
		}
		return uint32(m.chrBank4Hi)*0x1000 + uint32(addr&0x0FFF)
	}
	return uint32(m.chrBank8)*chrBankSize + uint32(addr&0x1FFF)
}
