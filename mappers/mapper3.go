package mappers

import "github.com/nes-core/nesemu/nesrom"

func init() {
	RegisterMapper(3, newMapper3)
}

// mapper3 implements CNROM: PRG is fixed (16 or 32 KiB, mirrored as
// needed); any write to 0x8000-0xFFFF selects an 8 KiB CHR bank.
type mapper3 struct {
	*baseMapper
	chrBank     uint8
	numPrgBanks uint8
	numChrBanks uint8
}

func newMapper3(rom *nesrom.ROM) Mapper {
	return &mapper3{
		baseMapper:  newBaseMapper(3, "CNROM", rom),
		numPrgBanks: rom.NumPrgBlocks(),
		numChrBanks: rom.NumChrBlocks(),
	}
}

func (m *mapper3) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000:
		off := uint32(addr - 0x8000)
		if m.numPrgBanks == 1 {
			off %= prgBankSize
		}
		return m.rom.PrgRead(off)
	}
	return 0xFF
}

func (m *mapper3) CPUWrite(addr uint16, data uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.prgRAMWrite(addr, data)
	case addr >= 0x8000:
		mask := uint8(0x03)
		if m.numChrBanks > 0 {
			mask = m.numChrBanks - 1
		}
		m.chrBank = data & mask
	}
}

func (m *mapper3) PPURead(addr uint16) uint8 {
	return m.rom.ChrRead(uint32(m.chrBank)*chrBankSize + uint32(addr))
}

func (m *mapper3) PPUWrite(addr uint16, val uint8) {
	m.rom.ChrWrite(uint32(m.chrBank)*chrBankSize+uint32(addr), val)
}
