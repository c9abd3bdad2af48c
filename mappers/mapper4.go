package mappers

import "github.com/nes-core/nesemu/nesrom"

func init() {
	RegisterMapper(4, newMapper4)
}

// mapper4 implements MMC3: two switchable 8 KiB PRG banks plus two
// fixed ones (the fixed-bank position depends on the PRG-mode bit),
// six CHR banks (two 2 KiB, four 1 KiB, with an inversion bit that
// swaps which half of CHR space gets the 2 KiB vs 1 KiB banks), and a
// scanline-counted IRQ driven by the PP.
type mapper4 struct {
	*baseMapper

	targetRegister uint8
	prgBankMode    bool
	chrInversion   bool

	registers [8]uint32
	chrBank   [8]uint32
	prgBank   [4]uint32

	irqRequested bool
	irqEnabled   bool
	irqCounter   uint16
	irqReload    uint16

	mirror      uint8
	numPrgBanks uint32
}

func newMapper4(rom *nesrom.ROM) Mapper {
	m := &mapper4{
		baseMapper:  newBaseMapper(4, "MMC3", rom),
		numPrgBanks: uint32(rom.NumPrgBlocks()),
	}
	m.Reset()
	return m
}

func (m *mapper4) Reset() {
	m.targetRegister = 0
	m.prgBankMode = false
	m.chrInversion = false
	m.mirror = MIRROR_HORIZONTAL

	m.irqRequested = false
	m.irqEnabled = false
	m.irqCounter = 0
	m.irqReload = 0

	for i := range m.prgBank {
		m.prgBank[i] = 0
	}
	for i := range m.chrBank {
		m.chrBank[i] = 0
		m.registers[i] = 0
	}

	m.prgBank[0] = 0 * 0x2000
	m.prgBank[1] = 1 * 0x2000
	m.prgBank[2] = (m.numPrgBanks*2 - 2) * 0x2000
	m.prgBank[3] = (m.numPrgBanks*2 - 1) * 0x2000
}

func (m *mapper4) MirroringMode() uint8 {
	return m.mirror
}

func (m *mapper4) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return m.rom.PrgRead(m.prgBank[0] + uint32(addr&0x1FFF))
	case addr >= 0xA000 && addr <= 0xBFFF:
		return m.rom.PrgRead(m.prgBank[1] + uint32(addr&0x1FFF))
	case addr >= 0xC000 && addr <= 0xDFFF:
		return m.rom.PrgRead(m.prgBank[2] + uint32(addr&0x1FFF))
	case addr >= 0xE000:
		return m.rom.PrgRead(m.prgBank[3] + uint32(addr&0x1FFF))
	}
	return 0xFF
}

func (m *mapper4) CPUWrite(addr uint16, data uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.prgRAMWrite(addr, data)
	case addr >= 0x8000 && addr <= 0x9FFF:
		if addr&1 == 0 {
			m.targetRegister = data & 0x07
			m.prgBankMode = data&0x40 != 0
			m.chrInversion = data&0x80 != 0
		} else {
			m.registers[m.targetRegister] = uint32(data)
			m.updateBankPointers()
		}
	case addr >= 0xA000 && addr <= 0xBFFF:
		if addr&1 == 0 {
			if data&1 != 0 {
				m.mirror = MIRROR_HORIZONTAL
			} else {
				m.mirror = MIRROR_VERTICAL
			}
		}
		// odd: PRG-RAM protect, not modeled
	case addr >= 0xC000 && addr <= 0xDFFF:
		if addr&1 == 0 {
			m.irqReload = uint16(data)
		} else {
			m.irqCounter = 0
		}
	case addr >= 0xE000:
		if addr&1 == 0 {
			m.irqEnabled = false
			m.irqRequested = false
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mapper4) updateBankPointers() {
	r := m.registers
	if m.chrInversion {
		m.chrBank[0] = r[2] * 0x0400
		m.chrBank[1] = r[3] * 0x0400
		m.chrBank[2] = r[4] * 0x0400
		m.chrBank[3] = r[5] * 0x0400
		m.chrBank[4] = (r[0] &^ 1) * 0x0400
		m.chrBank[5] = r[0]*0x0400 + 0x0400
		m.chrBank[6] = (r[1] &^ 1) * 0x0400
		m.chrBank[7] = r[1]*0x0400 + 0x0400
	} else {
		m.chrBank[0] = (r[0] &^ 1) * 0x0400
		m.chrBank[1] = r[0]*0x0400 + 0x0400
		m.chrBank[2] = (r[1] &^ 1) * 0x0400
		m.chrBank[3] = r[1]*0x0400 + 0x0400
		m.chrBank[4] = r[2] * 0x0400
		m.chrBank[5] = r[3] * 0x0400
		m.chrBank[6] = r[4] * 0x0400
		m.chrBank[7] = r[5] * 0x0400
	}

	if m.prgBankMode {
		m.prgBank[2] = (r[6] & 0x3F) * 0x2000
		m.prgBank[0] = (m.numPrgBanks*2 - 2) * 0x2000
	} else {
		m.prgBank[0] = (r[6] & 0x3F) * 0x2000
		m.prgBank[2] = (m.numPrgBanks*2 - 2) * 0x2000
	}

	m.prgBank[1] = (r[7] & 0x3F) * 0x2000
	m.prgBank[3] = (m.numPrgBanks*2 - 1) * 0x2000
}

func (m *mapper4) PPURead(addr uint16) uint8 {
	bank := addr / 0x0400
	return m.rom.ChrRead(m.chrBank[bank] + uint32(addr&0x03FF))
}

func (m *mapper4) PPUWrite(addr uint16, val uint8) {
	if !m.usesChr {
		return // CHR-ROM only on MMC3 boards; writes are dropped.
	}
	bank := addr / 0x0400
	m.rom.ChrWrite(m.chrBank[bank]+uint32(addr&0x03FF), val)
}

func (m *mapper4) IRQState() bool {
	return m.irqRequested
}

func (m *mapper4) IRQClear() {
	m.irqRequested = false
}

func (m *mapper4) CountScanline() {
	if m.irqCounter == 0 {
		m.irqCounter = m.irqReload
	} else {
		m.irqCounter--
	}

	if m.irqCounter == 0 && m.irqEnabled {
		m.irqRequested = true
	}
}
