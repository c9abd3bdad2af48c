package mappers

import "github.com/nes-core/nesemu/nesrom"

func init() {
	RegisterMapper(0, newMapper0)
}

// mapper0 implements NROM: a fixed mapping with no bank-select
// registers. Cartridges come in two fixed sizes, 16 KiB and 32 KiB; a
// 16 KiB cartridge mirrors its single bank across both halves of
// 0x8000-0xFFFF.
type mapper0 struct {
	*baseMapper
}

func newMapper0(rom *nesrom.ROM) Mapper {
	return &mapper0{baseMapper: newBaseMapper(0, "NROM", rom)}
}

func (m *mapper0) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000:
		off := uint32(addr - 0x8000)
		if m.rom.NumPrgBlocks() == 1 {
			off %= 16384
		}
		return m.rom.PrgRead(off)
	}
	return 0xFF
}

func (m *mapper0) CPUWrite(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAMWrite(addr, val)
	}
	// NROM has no bank-select registers; writes into 0x8000-0xFFFF are ignored.
}

func (m *mapper0) PPURead(addr uint16) uint8 {
	return m.chrRead(addr)
}

func (m *mapper0) PPUWrite(addr uint16, val uint8) {
	m.chrWrite(addr, val)
}
