package console

import (
	"testing"

	"github.com/nes-core/nesemu/mappers"
	"github.com/nes-core/nesemu/ppu"
)

func TestBaseNESMapping(t *testing.T) {
	b := New(mappers.Dummy, 0, ppu.DefaultPalette, "")
	c := b.cpu

	for i := 0; i < 10; i++ {
		c.Write(uint16(i), uint8(i+1))
	}

	for _, a := range []uint16{0, 0x800, 0x1000, 0x1800} {
		for i := 0; i < 10; i++ {
			if got := c.Read(a + uint16(i)); got != uint8(i+1) {
				t.Errorf("mem[%04x] = %02x, wanted %02x", a, got, i+1)
			}
		}
	}
}

func TestOAMDMAStallsCPU(t *testing.T) {
	b := New(mappers.Dummy, 0, ppu.DefaultPalette, "")

	before := b.cpu.State().Cycles
	b.Write(OAMDMA, 0x02)
	after := b.cpu.State().Cycles

	if after-before != 513 && after-before != 514 {
		t.Errorf("OAM DMA stalled CPU by %d cycles, want 513 or 514", after-before)
	}
}

func TestSaveStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	b := New(mappers.Dummy, 0xDEADBEEF, ppu.DefaultPalette, dir)

	b.cpu.Write(0x0000, 0x42)
	if err := b.SaveState(dir, 0); err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	b.cpu.Write(0x0000, 0x99)
	if err := b.LoadState(dir, 0); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if got := b.cpu.Read(0x0000); got != 0x42 {
		t.Errorf("RAM after restore = %#02x, want 0x42", got)
	}
}
