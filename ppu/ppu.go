// Package ppu implements the PPU hardware in the NES
package ppu

import (
	"github.com/nes-core/nesemu/mappers"
)

const (
	VRAM_SIZE    = 2048
	OAM_SIZE     = 256
	PALETTE_SIZE = 32

	NES_RES_WIDTH  = 256
	NES_RES_HEIGHT = 240
)

// CPU-visible register addresses (mirrored every 8 bytes across
// 0x2000-0x3FFF).
const (
	PPUCTRL = iota
	PPUMASK
	PPUSTATUS
	OAMADDR
	OAMDATA
	PPUSCROLL
	PPUADDR
	PPUDATA
	OAMDMA
)

const (
	CTRL_NAMETABLE_X    = 1 << 0
	CTRL_NAMETABLE_Y    = 1 << 1
	CTRL_VRAM_INCREMENT = 1 << 2
	CTRL_SPRITE_PATTERN = 1 << 3
	CTRL_BG_PATTERN     = 1 << 4
	CTRL_SPRITE_SIZE    = 1 << 5
	CTRL_MASTER_SLAVE   = 1 << 6
	CTRL_NMI_ENABLE     = 1 << 7
)

const (
	MASK_GREYSCALE         = 1 << 0
	MASK_SHOW_BG_LEFT      = 1 << 1
	MASK_SHOW_SPRITES_LEFT = 1 << 2
	MASK_SHOW_BG           = 1 << 3
	MASK_SHOW_SPRITES      = 1 << 4
	MASK_EMPHASIZE_RED     = 1 << 5
	MASK_EMPHASIZE_GREEN   = 1 << 6
	MASK_EMPHASIZE_BLUE    = 1 << 7
)

const (
	STATUS_SPRITE_OVERFLOW = 1 << 5
	STATUS_SPRITE_ZERO_HIT = 1 << 6
	STATUS_VBLANK          = 1 << 7
)

// PreRenderLine is the scanline number of the pre-render line, which
// runs immediately before scanline 0 and shares its fetch pattern with
// the visible scanlines.
const PreRenderLine = -1

// Bus is the PPU's view of the outside world: the cartridge's pattern
// tables and nametable mirroring. NMI delivery is not part of this
// interface - it is latched internally (see TakeNMI) and drained by
// the owning bus once per tick, after the CPU has finished executing.
type Bus interface {
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, val uint8)
	MirrorMode() uint8
}

// Color is a packed RGB triple, as produced by a loaded palette table.
type Color [3]uint8

func newColor(r, g, b uint8) Color {
	return Color{r, g, b}
}

// DefaultPalette is the NES 2C02 system palette, used when no .pal
// file has been loaded. It is passed into New explicitly rather than
// read from a package-level global, so multiple PPUs (or tests) can
// each carry their own palette.
var DefaultPalette = [64]Color{
	newColor(84, 84, 84), newColor(0, 30, 116), newColor(8, 16, 144), newColor(48, 0, 136),
	newColor(68, 0, 100), newColor(92, 0, 48), newColor(84, 4, 0), newColor(60, 24, 0),
	newColor(32, 42, 0), newColor(8, 58, 0), newColor(0, 64, 0), newColor(0, 60, 0),
	newColor(0, 50, 60), newColor(0, 0, 0), newColor(0, 0, 0), newColor(0, 0, 0),
	newColor(152, 150, 152), newColor(8, 76, 196), newColor(48, 50, 236), newColor(92, 30, 228),
	newColor(136, 20, 176), newColor(160, 20, 100), newColor(152, 34, 32), newColor(120, 60, 0),
	newColor(84, 90, 0), newColor(40, 114, 0), newColor(8, 124, 0), newColor(0, 118, 40),
	newColor(0, 102, 120), newColor(0, 0, 0), newColor(0, 0, 0), newColor(0, 0, 0),
	newColor(236, 238, 236), newColor(76, 154, 236), newColor(120, 124, 236), newColor(176, 98, 236),
	newColor(228, 84, 236), newColor(236, 88, 180), newColor(236, 106, 100), newColor(212, 136, 32),
	newColor(160, 170, 0), newColor(116, 196, 0), newColor(76, 208, 32), newColor(56, 204, 108),
	newColor(56, 180, 204), newColor(60, 60, 60), newColor(0, 0, 0), newColor(0, 0, 0),
	newColor(236, 238, 236), newColor(168, 204, 236), newColor(188, 188, 236), newColor(212, 178, 236),
	newColor(236, 174, 236), newColor(236, 174, 212), newColor(236, 180, 176), newColor(228, 196, 144),
	newColor(204, 210, 120), newColor(180, 222, 120), newColor(168, 226, 144), newColor(152, 226, 180),
	newColor(160, 214, 228), newColor(160, 162, 160), newColor(0, 0, 0), newColor(0, 0, 0),
}

// spriteLane holds one active sprite's render state for the scanline
// currently being drawn, loaded during secondary-OAM evaluation and
// consumed pixel-by-pixel as patternLo/Hi shift.
type spriteLane struct {
	patternLo, patternHi uint8
	attrib               uint8
	x                    uint8
	isSpriteZero         bool
}

// PPU implements the 2C02's per-dot rendering pipeline: background
// tile/attribute fetch with shift registers, sprite evaluation into an
// 8-entry secondary OAM, sprite-0 hit detection, and NMI generation at
// the start of vertical blank.
type PPU struct {
	bus     Bus
	palette [64]Color

	ctrl, mask, status uint8
	oamAddr            uint8

	primaryOAM  [OAM_SIZE]uint8
	spriteCount int
	sprites     [8]spriteLane

	nametables [VRAM_SIZE]uint8
	paletteRAM [PALETTE_SIZE]uint8

	v, t   loopy
	fineX  uint8
	wLatch bool

	bufferData uint8

	scanline int
	dot      int
	frameOdd bool

	ntByte, atByte           uint8
	bgPatternLo, bgPatternHi uint8

	bgShiftPatternLo, bgShiftPatternHi uint16
	bgShiftAttrLo, bgShiftAttrHi       uint16

	pixels    []Color
	frameDone bool

	nmiPending bool

	warmupDotsRemaining int
}

// warmupDots is how many PPU dots (3 per CPU cycle) after power-on or
// reset the PPU ignores writes to PPUCTRL/PPUMASK/PPUSCROLL/PPUADDR,
// modeling the real 2C02's ~29658 CPU cycle warm-up period.
const warmupDots = 29658 * 3

// New constructs a PPU wired to bus, using palette as its system
// palette table. Pass DefaultPalette when no .pal file was loaded.
func New(bus Bus, palette [64]Color) *PPU {
	p := &PPU{
		bus:                 bus,
		palette:             palette,
		scanline:            PreRenderLine,
		warmupDotsRemaining: warmupDots,
	}
	p.pixels = make([]Color, NES_RES_WIDTH*NES_RES_HEIGHT)
	return p
}

// Reset re-arms the power-on warm-up period, as happens on a real
// console's reset line.
func (p *PPU) Reset() {
	p.warmupDotsRemaining = warmupDots
}

// SetPalette swaps the active system palette table without resetting
// any other PPU state, used when a .pal file is loaded after startup.
func (p *PPU) SetPalette(palette [64]Color) {
	p.palette = palette
}

func (p *PPU) GetPixels() []Color {
	return p.pixels
}

func (p *PPU) GetResolution() (int, int) {
	return NES_RES_WIDTH, NES_RES_HEIGHT
}

// FrameDone reports whether the most recent Tick completed a frame,
// clearing the flag as a side effect.
func (p *PPU) FrameDone() bool {
	d := p.frameDone
	p.frameDone = false
	return d
}

// State is a snapshot of everything needed to resume rendering later,
// used by the save-state channel. The loaded palette is not part of
// it; palettes are a display preference, not emulated console state.
type State struct {
	Ctrl, Mask, Status, OAMAddr uint8
	PrimaryOAM                  [OAM_SIZE]uint8
	Nametables                  [VRAM_SIZE]uint8
	PaletteRAM                  [PALETTE_SIZE]uint8
	V, T                        uint16
	FineX                       uint8
	WLatch                      bool
	BufferData                  uint8
	Scanline, Dot               int
	FrameOdd                    bool
}

// State returns a snapshot of the PPU's current registers and memory.
func (p *PPU) State() State {
	return State{
		Ctrl:       p.ctrl,
		Mask:       p.mask,
		Status:     p.status,
		OAMAddr:    p.oamAddr,
		PrimaryOAM: p.primaryOAM,
		Nametables: p.nametables,
		PaletteRAM: p.paletteRAM,
		V:          p.v.data,
		T:          p.t.data,
		FineX:      p.fineX,
		WLatch:     p.wLatch,
		BufferData: p.bufferData,
		Scanline:   p.scanline,
		Dot:        p.dot,
		FrameOdd:   p.frameOdd,
	}
}

// Restore loads a previously captured State. The background/sprite
// shift-register pipeline is left to refill naturally over the next
// few fetch cycles rather than being reconstructed byte-for-byte.
func (p *PPU) Restore(s State) {
	p.ctrl, p.mask, p.status, p.oamAddr = s.Ctrl, s.Mask, s.Status, s.OAMAddr
	p.primaryOAM = s.PrimaryOAM
	p.nametables = s.Nametables
	p.paletteRAM = s.PaletteRAM
	p.v.data, p.t.data = s.V, s.T
	p.fineX = s.FineX
	p.wLatch = s.WLatch
	p.bufferData = s.BufferData
	p.scanline, p.dot = s.Scanline, s.Dot
	p.frameOdd = s.FrameOdd
}

// Scanline and Dot expose the current position in the 341x262 dot
// grid, used by the bus to drive mapper scanline counters (MMC3's IRQ
// counter ticks off of this).
func (p *PPU) Scanline() int {
	return p.scanline
}

func (p *PPU) Dot() int {
	return p.dot
}

// RenderingEnabled reports whether background or sprite rendering is
// currently on, matching the condition mapper scanline counters key
// their tick off of.
func (p *PPU) RenderingEnabled() bool {
	return p.renderingEnabled()
}

// ReadReg services a CPU read of one of the eight mirrored PPU
// registers (r should already be reduced to the 0-7 range by the
// caller).
func (p *PPU) ReadReg(r uint16) uint8 {
	switch r % 8 {
	case PPUSTATUS:
		val := (p.status & 0xE0) | (p.bufferData & 0x1F)
		p.status &^= STATUS_VBLANK
		p.wLatch = false
		return val
	case OAMDATA:
		return p.primaryOAM[p.oamAddr]
	case PPUDATA:
		val := p.bufferData
		p.bufferData = p.read(p.v.data)
		// Palette reads bypass the read-buffer delay.
		if p.v.data >= 0x3F00 {
			val = p.bufferData
		}
		p.vramIncrement()
		return val
	default:
		return 0
	}
}

// WriteReg services a CPU write of one of the eight mirrored PPU
// registers.
func (p *PPU) WriteReg(r uint16, val uint8) {
	switch r % 8 {
	case PPUCTRL:
		if p.warmupDotsRemaining > 0 {
			return
		}
		prevNMI := p.ctrl & CTRL_NMI_ENABLE
		p.ctrl = val
		p.t.data = (p.t.data &^ 0x0C00) | (uint16(val&0x03) << 10)
		if prevNMI == 0 && val&CTRL_NMI_ENABLE != 0 && p.status&STATUS_VBLANK != 0 {
			p.nmiPending = true
		}
	case PPUMASK:
		if p.warmupDotsRemaining > 0 {
			return
		}
		p.mask = val
	case OAMADDR:
		p.oamAddr = val
	case OAMDATA:
		p.primaryOAM[p.oamAddr] = val
		p.oamAddr++
	case PPUSCROLL:
		if p.warmupDotsRemaining > 0 {
			return
		}
		if !p.wLatch {
			p.fineX = val & 0x07
			p.t.setCoarseX(uint16(val >> 3))
		} else {
			p.t.setFineY(uint16(val & 0x07))
			p.t.setCoarseY(uint16(val >> 3))
		}
		p.wLatch = !p.wLatch
	case PPUADDR:
		if p.warmupDotsRemaining > 0 {
			return
		}
		if !p.wLatch {
			p.t.data = (p.t.data & 0x00FF) | (uint16(val&0x3F) << 8)
		} else {
			p.t.data = (p.t.data & 0xFF00) | uint16(val)
			p.v.data = p.t.data
		}
		p.wLatch = !p.wLatch
	case PPUDATA:
		p.write(p.v.data, val)
		p.vramIncrement()
	}
}

// WriteOAMDMA loads an entire 256-byte page into primary OAM starting
// at oamAddr, as driven by a write to $4014. The 513/514-cycle CPU
// stall this entails is modeled by the caller (console.Bus), not here.
func (p *PPU) WriteOAMDMA(page []uint8) {
	for _, b := range page {
		p.primaryOAM[p.oamAddr] = b
		p.oamAddr++
	}
}

func (p *PPU) vramIncrement() {
	if p.ctrl&CTRL_VRAM_INCREMENT != 0 {
		p.v.data += 32
	} else {
		p.v.data += 1
	}
}

// tileMapAddr resolves a $2000-$2FFF nametable address through the
// cartridge's mirroring mode into a 2KiB VRAM offset.
func (p *PPU) tileMapAddr(addr uint16) uint16 {
	addr &= 0x0FFF
	table := addr / 0x0400
	offset := addr % 0x0400

	switch p.bus.MirrorMode() {
	case mappers.MIRROR_VERTICAL:
		return (table%2)*0x0400 + offset
	case mappers.MIRROR_SINGLE_LOWER:
		return offset
	case mappers.MIRROR_SINGLE_UPPER:
		return 0x0400 + offset
	case mappers.MIRROR_FOUR_SCREEN:
		return addr % VRAM_SIZE
	default: // MIRROR_HORIZONTAL
		return (table/2)*0x0400 + offset
	}
}

func (p *PPU) read(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.bus.PPURead(addr)
	case addr < 0x3F00:
		return p.nametables[p.tileMapAddr(addr)]
	default:
		return p.paletteRAM[paletteAddr(addr)]
	}
}

func (p *PPU) write(addr uint16, val uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.bus.PPUWrite(addr, val)
	case addr < 0x3F00:
		p.nametables[p.tileMapAddr(addr)] = val
	default:
		p.paletteRAM[paletteAddr(addr)] = val
	}
}

// paletteAddr mirrors the 32-byte palette RAM, folding the
// background-color mirrors of sprite palette entries 0/4/8/C onto
// their background counterparts.
func paletteAddr(addr uint16) uint16 {
	a := addr % 32
	if a >= 16 && a%4 == 0 {
		a -= 16
	}
	return a
}

// Tick advances the PPU by one PPU clock (a third of a CPU clock). A
// vblank-start or immediate-enable NMI is latched rather than raised
// directly on the bus; see TakeNMI.
func (p *PPU) Tick() {
	if p.warmupDotsRemaining > 0 {
		p.warmupDotsRemaining--
	}

	p.renderDot()

	p.dot++
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > 260 {
			p.scanline = PreRenderLine
			p.frameOdd = !p.frameOdd
			p.frameDone = true
			// On odd frames with rendering (background or sprites)
			// enabled, skip dot 0 of the pre-render line, making
			// the frame one dot shorter.
			if p.frameOdd && p.renderingEnabled() {
				p.dot = 1
			}
		}
	}
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(MASK_SHOW_BG|MASK_SHOW_SPRITES) != 0
}

func (p *PPU) renderDot() {
	visible := p.scanline >= 0 && p.scanline <= 239
	prerender := p.scanline == PreRenderLine

	if prerender && p.dot == 1 {
		p.status &^= STATUS_VBLANK | STATUS_SPRITE_ZERO_HIT | STATUS_SPRITE_OVERFLOW
	}

	if (visible || prerender) && p.renderingEnabled() {
		p.backgroundCycle()
		if p.dot == 257 {
			p.evaluateSprites()
		}
		if prerender && p.dot >= 280 && p.dot <= 304 {
			p.v.setFineY(p.t.fineY())
			p.v.setCoarseY(p.t.coarseY())
			p.v.toggleNametableYIfDiffers(p.t.nametableY())
		}
	}

	if visible && p.dot >= 1 && p.dot <= 256 {
		p.drawPixel()
	}

	if p.scanline == 241 && p.dot == 1 {
		p.status |= STATUS_VBLANK
		if p.ctrl&CTRL_NMI_ENABLE != 0 {
			p.nmiPending = true
		}
	}
}

// TakeNMI reports whether an NMI has been latched since the last call
// and clears it. The bus drains this once per tick, after the CPU has
// finished its current instruction, rather than raising NMI
// synchronously mid-render or mid-write.
func (p *PPU) TakeNMI() bool {
	pending := p.nmiPending
	p.nmiPending = false
	return pending
}

// toggleNametableYIfDiffers is a small convenience used only by the
// pre-render vertical-reset copy; loopy itself only exposes a strict
// toggle, so the PPU compares before flipping.
func (l *loopy) toggleNametableYIfDiffers(want uint16) {
	if l.nametableY() != want {
		l.toggleNametableY()
	}
}

func (l *loopy) toggleNametableXIfDiffers(want uint16) {
	if l.nametableX() != want {
		l.toggleNametableX()
	}
}

// incrementCoarseXWrap wraps coarse X at 32 tiles, flipping the
// horizontal nametable bit; plain incrementCoarseX in loopy.go does
// not wrap and is unsuitable for the hardware scroll increment.
func (l *loopy) incrementCoarseXWrap() {
	if l.coarseX() == 31 {
		l.setCoarseX(0)
		l.toggleNametableX()
	} else {
		l.incrementCoarseX()
	}
}

// incrementFineYWrap is the full "increment Y" hardware routine: fine
// Y rolls into coarse Y, which wraps at 30 (not 32) rows and flips the
// vertical nametable bit, or clamps without flipping past row 31.
func (l *loopy) incrementFineYWrap() {
	if l.fineY() < 7 {
		l.incrementFineY()
		return
	}
	l.setFineY(0)
	switch l.coarseY() {
	case 29:
		l.setCoarseY(0)
		l.toggleNametableY()
	case 31:
		l.setCoarseY(0)
	default:
		l.incrementCoarseY()
	}
}

// backgroundCycle runs the 8-phase nametable/attribute/pattern fetch
// sequence and shift-register bookkeeping shared by the visible and
// pre-render scanlines.
func (p *PPU) backgroundCycle() {
	switch {
	case p.dot >= 1 && p.dot <= 256, p.dot >= 321 && p.dot <= 336:
		p.shiftBackground()
		switch p.dot % 8 {
		case 1:
			p.loadShiftRegisters()
			p.ntByte = p.read(0x2000 | (p.v.data & 0x0FFF))
		case 3:
			attrAddr := 0x23C0 | (p.v.data & 0x0C00) | ((p.v.coarseY() >> 2) << 3) | (p.v.coarseX() >> 2)
			shift := ((p.v.coarseY() & 0x02) << 1) | (p.v.coarseX() & 0x02)
			p.atByte = (p.read(attrAddr) >> shift) & 0x03
		case 5:
			base := uint16(0)
			if p.ctrl&CTRL_BG_PATTERN != 0 {
				base = 0x1000
			}
			p.bgPatternLo = p.read(base + uint16(p.ntByte)*16 + p.v.fineY())
		case 7:
			base := uint16(0)
			if p.ctrl&CTRL_BG_PATTERN != 0 {
				base = 0x1000
			}
			p.bgPatternHi = p.read(base + uint16(p.ntByte)*16 + p.v.fineY() + 8)
		case 0:
			p.v.incrementCoarseXWrap()
		}
		if p.dot == 256 {
			p.v.incrementFineYWrap()
		}
	case p.dot == 257:
		p.loadShiftRegisters()
		p.v.setCoarseX(p.t.coarseX())
		p.v.toggleNametableXIfDiffers(p.t.nametableX())
	}

	if p.dot == 338 || p.dot == 340 {
		p.ntByte = p.read(0x2000 | (p.v.data & 0x0FFF))
	}
}

func (p *PPU) loadShiftRegisters() {
	p.bgShiftPatternLo = (p.bgShiftPatternLo & 0xFF00) | uint16(p.bgPatternLo)
	p.bgShiftPatternHi = (p.bgShiftPatternHi & 0xFF00) | uint16(p.bgPatternHi)

	var lo, hi uint16
	if p.atByte&0x01 != 0 {
		lo = 0x00FF
	}
	if p.atByte&0x02 != 0 {
		hi = 0x00FF
	}
	p.bgShiftAttrLo = (p.bgShiftAttrLo & 0xFF00) | lo
	p.bgShiftAttrHi = (p.bgShiftAttrHi & 0xFF00) | hi
}

func (p *PPU) shiftBackground() {
	p.bgShiftPatternLo <<= 1
	p.bgShiftPatternHi <<= 1
	p.bgShiftAttrLo <<= 1
	p.bgShiftAttrHi <<= 1
}

// evaluateSprites scans primary OAM for up to 8 sprites that intersect
// the NEXT scanline, sets the overflow flag per hardware's sprite
// evaluation rule, and latches pattern data for each found sprite.
func (p *PPU) evaluateSprites() {
	spriteHeight := uint8(8)
	if p.ctrl&CTRL_SPRITE_SIZE != 0 {
		spriteHeight = 16
	}

	targetLine := p.scanline + 1
	p.spriteCount = 0
	overflow := false

	i := 0
	for ; i < 64 && p.spriteCount < 8; i++ {
		entry := OAMFromBytes(p.primaryOAM[i*4 : i*4+4])
		// OAM Y is one less than the sprite's first displayed line.
		row := targetLine - 1 - int(entry.y)
		if row < 0 || row >= int(spriteHeight) {
			continue
		}

		if entry.flipV {
			row = int(spriteHeight) - 1 - row
		}

		tile := uint16(entry.tileId)
		base := uint16(0)
		if spriteHeight == 8 {
			if p.ctrl&CTRL_SPRITE_PATTERN != 0 {
				base = 0x1000
			}
		} else {
			base = uint16(tile&0x01) * 0x1000
			tile &^= 0x01
			if row >= 8 {
				tile++
				row -= 8
			}
		}

		patAddr := base + tile*16 + uint16(row)
		lo := p.read(patAddr)
		hi := p.read(patAddr + 8)
		if entry.flipH {
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		p.sprites[p.spriteCount] = spriteLane{
			patternLo:    lo,
			patternHi:    hi,
			attrib:       entry.attributes(),
			x:            entry.x,
			isSpriteZero: i == 0,
		}
		p.spriteCount++
	}

	// Real hardware's overflow flag is driven by a buggy diagonal scan
	// of OAM past the eighth match; that bug is not reproduced here,
	// only the common case of "more than 8 sprites on a line".
	for ; i < 64; i++ {
		entry := OAMFromBytes(p.primaryOAM[i*4 : i*4+4])
		row := targetLine - 1 - int(entry.y)
		if row >= 0 && row < int(spriteHeight) {
			overflow = true
			break
		}
	}
	if overflow {
		p.status |= STATUS_SPRITE_OVERFLOW
	}
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// drawPixel composes the background and sprite pipelines for the
// current dot into the framebuffer, resolving priority and sprite-0
// hit.
func (p *PPU) drawPixel() {
	x := p.dot - 1
	y := p.scanline

	var bgPixel, bgPalette uint8
	if p.mask&MASK_SHOW_BG != 0 && (x >= 8 || p.mask&MASK_SHOW_BG_LEFT != 0) {
		shift := uint16(15 - p.fineX)
		lo := (p.bgShiftPatternLo >> shift) & 1
		hi := (p.bgShiftPatternHi >> shift) & 1
		bgPixel = uint8(lo) | uint8(hi)<<1

		alo := (p.bgShiftAttrLo >> shift) & 1
		ahi := (p.bgShiftAttrHi >> shift) & 1
		bgPalette = uint8(alo) | uint8(ahi)<<1
	}

	var sprPixel, sprPalette uint8
	spriteInFront := false
	spriteZeroHere := false
	if p.mask&MASK_SHOW_SPRITES != 0 && (x >= 8 || p.mask&MASK_SHOW_SPRITES_LEFT != 0) {
		for i := 0; i < p.spriteCount; i++ {
			s := &p.sprites[i]
			offset := x - int(s.x)
			if offset < 0 || offset > 7 {
				continue
			}
			shift := uint(7 - offset)
			lo := (s.patternLo >> shift) & 1
			hi := (s.patternHi >> shift) & 1
			px := lo | hi<<1
			if px == 0 {
				continue
			}
			sprPixel = px
			sprPalette = (s.attrib & 0x03) + 4
			spriteInFront = s.attrib&0x20 == 0
			spriteZeroHere = s.isSpriteZero
			break
		}
	}

	if spriteZeroHere && bgPixel != 0 && sprPixel != 0 && x != 255 {
		p.status |= STATUS_SPRITE_ZERO_HIT
	}

	var palIdx uint16
	switch {
	case bgPixel == 0 && sprPixel == 0:
		palIdx = 0
	case bgPixel == 0:
		palIdx = uint16(sprPalette)<<2 | uint16(sprPixel)
	case sprPixel == 0:
		palIdx = uint16(bgPalette)<<2 | uint16(bgPixel)
	case spriteInFront:
		palIdx = uint16(sprPalette)<<2 | uint16(sprPixel)
	default:
		palIdx = uint16(bgPalette)<<2 | uint16(bgPixel)
	}

	colorIdx := p.paletteRAM[paletteAddr(0x3F00+palIdx)] & 0x3F
	p.pixels[y*NES_RES_WIDTH+x] = p.palette[colorIdx]
}

// PatternTable renders one of the cartridge's two 4KiB pattern tables
// (i = 0 or 1) as a 128x128 image using palette entry paletteIdx
// (0-7), for debug introspection.
func (p *PPU) PatternTable(i int, paletteIdx uint8) []Color {
	out := make([]Color, 128*128)
	base := uint16(i) * 0x1000

	for tileY := 0; tileY < 16; tileY++ {
		for tileX := 0; tileX < 16; tileX++ {
			offset := uint16(tileY*256 + tileX*16)
			for row := 0; row < 8; row++ {
				lo := p.read(base + offset + uint16(row))
				hi := p.read(base + offset + uint16(row) + 8)
				for col := 0; col < 8; col++ {
					bit := 7 - col
					px := ((lo >> bit) & 1) | (((hi >> bit) & 1) << 1)
					palAddr := 0x3F00 + uint16(paletteIdx)*4 + uint16(px)
					colorIdx := p.paletteRAM[paletteAddr(palAddr)] & 0x3F
					x := tileX*8 + col
					y := tileY*8 + row
					out[y*128+x] = p.palette[colorIdx]
				}
			}
		}
	}
	return out
}

// NametableDump returns the raw 1KiB nametable bytes for table i
// (0-3), resolved through the current mirroring mode, for debug
// introspection.
func (p *PPU) NametableDump(i int) []uint8 {
	out := make([]uint8, 0x400)
	for offset := uint16(0); offset < 0x400; offset++ {
		addr := uint16(i)*0x400 + offset
		out[offset] = p.nametables[p.tileMapAddr(addr)]
	}
	return out
}
