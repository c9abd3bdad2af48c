package ppu

import (
	"testing"

	"github.com/nes-core/nesemu/mappers"
)

type testBus struct {
	mirror uint8
	chr    [0x2000]uint8
}

func (tb *testBus) PPURead(addr uint16) uint8 {
	return tb.chr[addr%0x2000]
}

func (tb *testBus) PPUWrite(addr uint16, val uint8) {
	tb.chr[addr%0x2000] = val
}

func (tb *testBus) MirrorMode() uint8 {
	return tb.mirror
}

func (tb *testBus) reset() {}

func TestWriteRegPPUCTRL(t *testing.T) {
	cases := []struct {
		val   uint8
		wantT uint16
	}{
		// These are cumulative.
		{0b11001100, 0b00000000_00000000},
		{0b01010101, 0b00000100_00000000},
		{0b01010111, 0b00001100_00000000},
		{0b01010100, 0b00000000_00000000},
		{0b01010110, 0b00001000_00000000},
	}

	p := New(&testBus{}, DefaultPalette)
	p.warmupDotsRemaining = 0

	for i, tc := range cases {
		p.WriteReg(PPUCTRL, tc.val)
		if p.t.data != tc.wantT {
			t.Errorf("%d: Got t=%015b wanted %015b", i, p.t.data, tc.wantT)
		}
	}
}

func TestWriteRegPPUSCROLL(t *testing.T) {
	cases := []struct {
		val       uint8
		wantT     uint16
		wantX     uint8
		wantLatch bool
	}{
		// These are cumulative.
		{0b11001100, 0b00000000_00011001, 0b00000100, true},
		{0b01010101, 0b01010001_01011001, 0b00000100, false},
		{0b11111111, 0b01010001_01011111, 0b00000111, true},
		{0b00000000, 0b00000000_00011111, 0b00000111, false},
		{0b01101010, 0b00000000_00001101, 0b00000010, true},
		{0b01101010, 0b00100001_10101101, 0b00000010, false},
	}

	p := New(&testBus{}, DefaultPalette)
	p.warmupDotsRemaining = 0
	for i, tc := range cases {
		p.WriteReg(PPUSCROLL, tc.val)
		if p.t.data != tc.wantT || p.fineX != tc.wantX || p.wLatch != tc.wantLatch {
			t.Errorf("%d: Got t,x,latch=%015b,%03b,%t, wanted %015b,%03b,%t", i, p.t.data, p.fineX, p.wLatch, tc.wantT, tc.wantX, tc.wantLatch)
		}
	}
}

func TestWriteRegPPUADDR(t *testing.T) {
	cases := []struct {
		val       uint8
		startT    uint16
		wantT     uint16
		wantV     uint16
		wantLatch bool
	}{
		// These are cumulative.
		{0b11001100, 0b1000000_00000000, 0b00001100_00000000, 0x0000, true},
		{0b11001100, 0b00001100_00000000, 0b00001100_11001100, 0b00001100_11001100, false},
		{0b11111111, 0b00001100_11001100, 0b00111111_11001100, 0b00001100_11001100, true},
		{0b10001110, 0b00111111_11001100, 0b00111111_10001110, 0b00111111_10001110, false},
	}

	p := New(&testBus{}, DefaultPalette)
	p.warmupDotsRemaining = 0

	for i, tc := range cases {
		p.t.data = tc.startT
		p.WriteReg(PPUADDR, tc.val)
		if p.t.data != tc.wantT || p.v.data != tc.wantV || p.wLatch != tc.wantLatch {
			t.Errorf("%d: Got t,v,latch=%015b,%015b,%t,\n\t\t   wanted %015b,%015b,%t", i, p.t.data, p.v.data, p.wLatch, tc.wantT, tc.wantV, tc.wantLatch)
		}
	}
}

func TestReadRegPPUSTATUSClearsVBlankAndLatch(t *testing.T) {
	p := New(&testBus{}, DefaultPalette)
	p.status = STATUS_VBLANK | STATUS_SPRITE_ZERO_HIT
	p.wLatch = true

	got := p.ReadReg(PPUSTATUS)
	if want := uint8(STATUS_VBLANK | STATUS_SPRITE_ZERO_HIT); got&0xE0 != want {
		t.Errorf("ReadReg(PPUSTATUS) = %#02x, want top bits %#02x", got, want)
	}
	if p.status&STATUS_VBLANK != 0 {
		t.Errorf("vblank flag not cleared after PPUSTATUS read")
	}
	if p.wLatch {
		t.Errorf("write latch not reset after PPUSTATUS read")
	}
}

func TestOAMDMAWritesPrimaryOAM(t *testing.T) {
	p := New(&testBus{}, DefaultPalette)
	page := make([]uint8, 256)
	for i := range page {
		page[i] = uint8(i)
	}
	p.oamAddr = 4
	p.WriteOAMDMA(page)

	if p.primaryOAM[4] != 0 || p.primaryOAM[5] != 1 {
		t.Errorf("OAM DMA did not wrap/copy starting at oamAddr correctly: %v", p.primaryOAM[:8])
	}
}

func TestTickFrameTiming(t *testing.T) {
	p := New(&testBus{}, DefaultPalette)
	// With rendering disabled, every frame is exactly 341*262 dots, no
	// odd-frame skip.
	total := 341 * 262
	for i := 0; i < total-1; i++ {
		p.Tick()
		if p.FrameDone() {
			t.Fatalf("frame completed early at dot %d", i)
		}
	}
	p.Tick()
	if !p.FrameDone() {
		t.Errorf("frame did not complete after %d dots", total)
	}
	if p.scanline != PreRenderLine || p.dot != 0 {
		t.Errorf("after frame wrap, scanline/dot = %d/%d, want %d/0", p.scanline, p.dot, PreRenderLine)
	}
}

func TestTickTriggersNMIAtVBlank(t *testing.T) {
	bus := &testBus{}
	p := New(bus, DefaultPalette)
	p.ctrl = CTRL_NMI_ENABLE

	for p.scanline != 241 || p.dot != 1 {
		p.Tick()
	}
	p.Tick()

	if !p.TakeNMI() {
		t.Errorf("NMI not latched at scanline 241 dot 1 with NMI enabled")
	}
	if p.status&STATUS_VBLANK == 0 {
		t.Errorf("vblank flag not set at scanline 241 dot 1")
	}
}

func TestWriteRegPPUCTRLTriggersNMIWhileInVBlank(t *testing.T) {
	bus := &testBus{}
	p := New(bus, DefaultPalette)
	p.warmupDotsRemaining = 0
	p.status |= STATUS_VBLANK

	p.WriteReg(PPUCTRL, CTRL_NMI_ENABLE)
	if !p.TakeNMI() {
		t.Errorf("enabling NMI while vblank flag is set should latch an immediate NMI")
	}

	// Already enabled: writing it again with vblank still set must not
	// re-latch, since nmiEnable didn't transition from 0 to 1.
	p.WriteReg(PPUCTRL, CTRL_NMI_ENABLE)
	if p.TakeNMI() {
		t.Errorf("rewriting PPUCTRL without a 0->1 nmiEnable transition should not latch NMI")
	}
}

func TestWriteRegIgnoredDuringWarmup(t *testing.T) {
	p := New(&testBus{}, DefaultPalette)

	p.WriteReg(PPUCTRL, 0xFF)
	p.WriteReg(PPUMASK, 0xFF)
	p.WriteReg(PPUSCROLL, 0xFF)
	p.WriteReg(PPUADDR, 0xFF)

	if p.ctrl != 0 || p.mask != 0 || p.t.data != 0 || p.wLatch {
		t.Errorf("writes during warm-up were not ignored: ctrl=%#02x mask=%#02x t=%#04x latch=%t", p.ctrl, p.mask, p.t.data, p.wLatch)
	}

	p.warmupDotsRemaining = 0
	p.WriteReg(PPUCTRL, 0xFF)
	if p.ctrl != 0xFF {
		t.Errorf("PPUCTRL write after warm-up was ignored")
	}
}

func TestTileMapAddrHorizontalMirroring(t *testing.T) {
	bus := &testBus{mirror: mappers.MIRROR_HORIZONTAL}
	p := New(bus, DefaultPalette)

	if got, want := p.tileMapAddr(0x2000), p.tileMapAddr(0x2400); got != want {
		t.Errorf("horizontal mirroring: table 0 (%#04x) != table 1 (%#04x)", got, want)
	}
	if got, want := p.tileMapAddr(0x2800), p.tileMapAddr(0x2C00); got != want {
		t.Errorf("horizontal mirroring: table 2 (%#04x) != table 3 (%#04x)", got, want)
	}
}

func TestTileMapAddrVerticalMirroring(t *testing.T) {
	bus := &testBus{mirror: mappers.MIRROR_VERTICAL}
	p := New(bus, DefaultPalette)

	if got, want := p.tileMapAddr(0x2000), p.tileMapAddr(0x2800); got != want {
		t.Errorf("vertical mirroring: table 0 (%#04x) != table 2 (%#04x)", got, want)
	}
}

func TestPaletteAddrMirrorsBackgroundEntries(t *testing.T) {
	cases := []struct{ in, want uint16 }{
		{0x3F00, 0}, {0x3F10, 0}, {0x3F04, 4}, {0x3F14, 4}, {0x3F1F, 0x1F},
	}
	for _, tc := range cases {
		if got := paletteAddr(tc.in); got != tc.want {
			t.Errorf("paletteAddr(%#04x) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
