package mappers

import "github.com/nes-core/nesemu/nesrom"

func init() {
	RegisterMapper(2, newMapper2)
}

// mapper2 implements UxROM: the upper 16 KiB PRG bank is fixed to the
// last bank, the lower 16 KiB is switched by any write to
// 0x8000-0xFFFF. CHR is always RAM (UxROM boards ship no CHR-ROM).
type mapper2 struct {
	*baseMapper
	prgBank16Lo uint8
	numPrgBanks uint8
}

func newMapper2(rom *nesrom.ROM) Mapper {
	return &mapper2{
		baseMapper:  newBaseMapper(2, "UxROM", rom),
		numPrgBanks: rom.NumPrgBlocks(),
	}
}

func (m *mapper2) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000 && addr <= 0xBFFF:
		return m.rom.PrgRead(uint32(m.prgBank16Lo)*prgBankSize + uint32(addr&0x3FFF))
	case addr >= 0xC000:
		return m.rom.PrgRead(uint32(m.numPrgBanks-1)*prgBankSize + uint32(addr&0x3FFF))
	}
	return 0xFF
}

func (m *mapper2) CPUWrite(addr uint16, data uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.prgRAMWrite(addr, data)
	case addr >= 0x8000:
		m.prgBank16Lo = data & 0b00001111
	}
}

func (m *mapper2) PPURead(addr uint16) uint8 {
	return m.chrRead(addr)
}

func (m *mapper2) PPUWrite(addr uint16, val uint8) {
	m.chrWrite(addr, val)
}
