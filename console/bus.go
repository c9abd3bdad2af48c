package console

import (
	"context"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/nes-core/nesemu/mappers"
	"github.com/nes-core/nesemu/mos6502"
	"github.com/nes-core/nesemu/ppu"
)

const (
	NES_BASE_MEMORY = 0x800 // 2KB built in RAM

	MAX_ADDRESS          = math.MaxUint16
	MAX_NES_BASE_RAM     = 0x1FFF
	MAX_PPU_REG_MIRRORED = 0x3FFF
	MAX_IO_REG           = 0x4020
	MAX_SRAM             = 0x6000
)

const (
	OAMDMA      = 0x4014 // Triggers DMA from CPU memory to OAM
	CONTROLLER1 = 0x4016
	CONTROLLER2 = 0x4017

	// mapper scanline counters (MMC3) tick once per scanline at this dot
	mapperIRQDot = 260
)

// Bus wires the CPU, PPU, cartridge mapper and controllers together
// into the NES's single shared address space, and implements
// ebiten.Game so it can drive its own window.
type Bus struct {
	cpu     *mos6502.CPU
	ppu     *ppu.PPU
	mapper  mappers.Mapper
	romHash uint64
	saveDir string
	ram     []uint8
	ticks   uint64

	controller1, controller2 controller
}

// New constructs a Bus around mapper m, rendering with palette (pass
// ppu.DefaultPalette when no .pal file was loaded). romHash identifies
// the loaded ROM for save-state file naming; saveDir is the directory
// F5/F9 write/read save states to.
func New(m mappers.Mapper, romHash uint64, palette [64]ppu.Color, saveDir string) *Bus {
	bus := &Bus{mapper: m, romHash: romHash, saveDir: saveDir, ram: make([]uint8, NES_BASE_MEMORY)}

	bus.cpu = mos6502.New(bus)
	bus.ppu = ppu.New(bus, palette)

	w, h := bus.ppu.GetResolution()
	ebiten.SetWindowSize(w*2, h*2) // Start with 2x the screen size
	ebiten.SetWindowTitle("nesemu")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	return bus
}

func (b *Bus) MirrorMode() uint8 {
	return b.mapper.MirroringMode()
}

// Layout returns the constant resolution of the NES and is part of
// the ebiten.Game interface. By returning constants here, we will
// force ebiten to scale the display when the window size changes.
func (b *Bus) Layout(w, h int) (int, int) {
	return b.ppu.GetResolution()
}

// Draw updates the displayed ebiten window with the current state of
// the PPU.
func (b *Bus) Draw(screen *ebiten.Image) {
	px := b.ppu.GetPixels()
	w, h := b.ppu.GetResolution()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := px[y*w+x]
			screen.Set(x, y, color.RGBA{c[0], c[1], c[2], 0xFF})
		}
	}
}

// Update is called by ebiten roughly every 1/60s and will be our
// driver for the emulation. Emulation itself runs on a separate
// goroutine (see Run); Update only services save-state hotkeys.
func (b *Bus) Update() error {
	if ebiten.IsKeyJustPressed(ebiten.KeyF5) {
		if err := b.SaveState(b.saveDir, 0); err != nil {
			logger.Printf("save state failed: %v", err)
		}
	}
	if ebiten.IsKeyJustPressed(ebiten.KeyF9) {
		if err := b.LoadState(b.saveDir, 0); err != nil {
			logger.Printf("load state failed: %v", err)
		}
	}
	return nil
}

// PPURead/PPUWrite give the PPU access to the cartridge's CHR space
// (pattern tables) through the loaded mapper.
func (b *Bus) PPURead(addr uint16) uint8 {
	return b.mapper.PPURead(addr)
}

func (b *Bus) PPUWrite(addr uint16, val uint8) {
	b.mapper.PPUWrite(addr, val)
}

func (b *Bus) Read(addr uint16) uint8 {
	// https://www.nesdev.org/wiki/CPU_memory_map
	switch {
	case addr <= MAX_NES_BASE_RAM:
		// 0x800-0x1FFF mirrors 0x0000-0x07FF
		return b.ram[addr&0x07FF]
	case addr <= MAX_PPU_REG_MIRRORED:
		// PPU registers are mirrored between 0x2000 and 0x4000
		return b.ppu.ReadReg(addr & 0x2007)
	case addr == CONTROLLER1:
		return b.controller1.read()
	case addr == CONTROLLER2:
		return b.controller2.read()
	case addr < MAX_IO_REG:
		return 0
	case addr < MAX_SRAM:
		return 0
	default:
		return b.mapper.CPURead(addr)
	}
}

func (b *Bus) ClearMem() {
	b.ram = make([]uint8, len(b.ram))
}

func (b *Bus) Write(addr uint16, val uint8) {
	// https://www.nesdev.org/wiki/CPU_memory_map
	switch {
	case addr <= MAX_NES_BASE_RAM:
		// 0x800-0x1FFF mirrors 0x0000-0x07FF
		b.ram[addr&0x07FF] = val
	case addr <= MAX_PPU_REG_MIRRORED:
		// PPU registers are mirrored between 0x2000 and 0x4000
		b.ppu.WriteReg(addr&0x2007, val)
	case addr == OAMDMA:
		b.dmaTransfer(val)
	case addr == CONTROLLER1:
		b.controller1.write(val)
	case addr == CONTROLLER2:
		b.controller2.write(val)
	case addr < MAX_IO_REG:
		// APU and unimplemented I/O
	case addr < MAX_SRAM:
		// nothing for now
	default:
		b.mapper.CPUWrite(addr, val)
	}
}

// dmaTransfer copies a full 256-byte CPU page into OAM and stalls the
// CPU for the 513/514 cycles real OAM DMA takes: 512 cycles to
// alternately read/write each byte, one cycle to start, and one more
// if the write that triggered it landed on an odd CPU cycle.
func (b *Bus) dmaTransfer(page uint8) {
	base := uint16(page) << 8
	buf := make([]uint8, 256)
	for i := range buf {
		buf[i] = b.Read(base + uint16(i))
	}
	b.ppu.WriteOAMDMA(buf)

	cycles := 513
	if (b.ticks/3)%2 != 0 {
		cycles = 514
	}
	b.cpu.Stall(cycles)
}

// Run drives the PPU/CPU clock ratio (3 PPU dots per CPU cycle) and
// the cartridge's scanline-based IRQ counter (MMC3) until ctx is
// cancelled.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			b.tick()
		}
	}
}

func (b *Bus) tick() {
	b.ppu.Tick()
	if b.ticks%3 == 0 {
		b.cpu.Step()
		if b.ppu.TakeNMI() {
			b.cpu.NMI()
		}
	}
	b.ticks++

	line := b.ppu.Scanline()
	onRenderedLine := line == ppu.PreRenderLine || (line >= 0 && line <= 239)
	if b.ppu.Dot() == mapperIRQDot && onRenderedLine && b.ppu.RenderingEnabled() {
		b.mapper.CountScanline()
		if b.mapper.IRQState() {
			b.cpu.IRQ()
			b.mapper.IRQClear()
		}
	}
}
