// Package mappers implements and registers the cartridge mappers
// referenced numerically by iNES and NES2.0 ROM files: the bank
// switching circuits that decide which slice of PRG/CHR memory is
// currently visible to the CPU and PP.
package mappers

import (
	"fmt"

	"github.com/nes-core/nesemu/nesrom"
)

// A global registry of mapper factories, keyed by mapper id.
var allMappers = map[uint16]func(*nesrom.ROM) Mapper{}

// RegisterMapper records a constructor for mapper id. Called from
// each mapper's init().
func RegisterMapper(id uint16, newMapper func(*nesrom.ROM) Mapper) {
	if _, ok := allMappers[id]; ok {
		panic(fmt.Sprintf("mappers: mapper id %d registered twice", id))
	}
	allMappers[id] = newMapper
}

// Get constructs the mapper for the given ROM's mapper number, or
// returns an error if no mapper is registered for that id.
func Get(rom *nesrom.ROM) (Mapper, error) {
	id := rom.MapperNum()
	newMapper, ok := allMappers[id]
	if !ok {
		return nil, fmt.Errorf("unsupported mapper id %d", id)
	}

	return newMapper(rom), nil
}

// Mapper is the single interface surface every cartridge bank-switch
// circuit implements: address translation for both buses, a CPU-write
// hook for bank-select registers, mirroring, save RAM and the
// mapper-4-style scanline IRQ. Mappers that don't need a given piece
// of this surface (most of them) get a no-op for free by embedding
// *baseMapper.
type Mapper interface {
	ID() uint16
	Name() string
	Reset()

	// CPURead/CPUWrite handle the cartridge's PRG-RAM and PRG-ROM
	// (0x6000-0xFFFF); the bus does not forward 0x4020-0x5FFF.
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, val uint8)

	// PPURead/PPUWrite handle the pattern-table address space
	// (0x0000-0x1FFF): CHR-ROM or CHR-RAM.
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, val uint8)

	MirroringMode() uint8
	HasSaveRAM() bool

	// IRQState reports whether the mapper currently has an IRQ
	// asserted (mapper 4 only; always false otherwise).
	IRQState() bool
	// IRQClear acknowledges/clears any asserted IRQ.
	IRQClear()
	// CountScanline is invoked by the bus at dot 260 of each
	// visible/pre-render scanline while rendering (background or
	// sprites) is enabled, standing in for the point where hardware
	// would see a PPU A12 rising edge in the tile-fetch window. Only
	// mapper 4 reacts to it.
	CountScanline()
}

const (
	prgBankSize = 0x4000 // 16 KiB
	chrBankSize = 0x2000 // 8 KiB
	prgRAMSize  = 0x2000 // 8 KiB, mapped at 0x6000-0x7FFF
)

// Canonical nametable mirroring modes returned by Mapper.MirroringMode.
// Mappers that can change mirroring at runtime (1, 4) translate their
// own internal encoding into this set; mappers that can't just carry
// the header's mirroring forward unchanged.
const (
	MIRROR_HORIZONTAL = iota
	MIRROR_VERTICAL
	MIRROR_SINGLE_LOWER
	MIRROR_SINGLE_UPPER
	MIRROR_FOUR_SCREEN
)

// baseMapper supplies the common bookkeeping (ROM reference, optional
// PRG-RAM, CHR-RAM fallback when the cartridge has no CHR-ROM) shared
// by every mapper variant.
type baseMapper struct {
	id      uint16
	name    string
	rom     *nesrom.ROM
	prgRAM  []uint8
	chrRAM  []uint8
	mirror  uint8
	usesChr bool // true if backed by writable CHR RAM
}

// headerMirroring translates nesrom's header-level mirroring encoding
// (0=horizontal, 1=vertical, 2=four-screen) into the mapper package's
// canonical enum.
func headerMirroring(hm uint8) uint8 {
	switch hm {
	case nesrom.MIRROR_VERTICAL:
		return MIRROR_VERTICAL
	case nesrom.MIRROR_FOUR_SCREEN:
		return MIRROR_FOUR_SCREEN
	default:
		return MIRROR_HORIZONTAL
	}
}

func newBaseMapper(id uint16, name string, rom *nesrom.ROM) *baseMapper {
	bm := &baseMapper{
		id:      id,
		name:    name,
		rom:     rom,
		prgRAM:  make([]uint8, prgRAMSize),
		mirror:  headerMirroring(rom.MirroringMode()),
		usesChr: rom.UsesChrRAM(),
	}
	if bm.usesChr {
		bm.chrRAM = make([]uint8, chrBankSize)
	}
	return bm
}

func (bm *baseMapper) ID() uint16        { return bm.id }
func (bm *baseMapper) String() string    { return bm.name }
func (bm *baseMapper) Name() string      { return bm.name }
func (bm *baseMapper) MirroringMode() uint8 {
	return bm.mirror
}
func (bm *baseMapper) HasSaveRAM() bool { return bm.rom.HasSaveRAM() }
func (bm *baseMapper) Reset()           {}
func (bm *baseMapper) IRQState() bool   { return false }
func (bm *baseMapper) IRQClear()        {}
func (bm *baseMapper) CountScanline()   {}

// prgRAMRead/prgRAMWrite service 0x6000-0x7FFF for mappers with save
// RAM; embedders call these from CPURead/CPUWrite.
func (bm *baseMapper) prgRAMRead(addr uint16) uint8 {
	return bm.prgRAM[addr&(prgRAMSize-1)]
}

func (bm *baseMapper) prgRAMWrite(addr uint16, val uint8) {
	bm.prgRAM[addr&(prgRAMSize-1)] = val
}

// chrRead/chrWrite service the PPU side for mappers with a flat CHR
// mapping (no banking), falling back to CHR-RAM when the cartridge
// has no CHR-ROM.
func (bm *baseMapper) chrRead(addr uint16) uint8 {
	if bm.usesChr {
		return bm.chrRAM[addr&(chrBankSize-1)]
	}
	return bm.rom.ChrRead(uint32(addr))
}

func (bm *baseMapper) chrWrite(addr uint16, val uint8) {
	if bm.usesChr {
		bm.chrRAM[addr&(chrBankSize-1)] = val
	}
	// Writes to CHR-ROM are dropped.
}
