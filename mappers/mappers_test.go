package mappers

import (
	"bytes"
	"testing"

	"github.com/nes-core/nesemu/nesrom"
)

// buildROM assembles a minimal well-formed iNES image for the given
// mapper number with prgBanks*16KiB PRG and chrBanks*8KiB CHR, each
// bank filled with a distinct byte value so bank-switch tests can tell
// banks apart.
func buildROM(t *testing.T, mapperNum uint8, prgBanks, chrBanks uint8) *nesrom.ROM {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("NES\x1A")
	buf.WriteByte(prgBanks)
	buf.WriteByte(chrBanks)
	buf.WriteByte((mapperNum & 0x0F) << 4)
	buf.WriteByte(mapperNum & 0xF0)
	buf.Write(make([]byte, 8))

	for i := uint8(0); i < prgBanks; i++ {
		buf.Write(bytes.Repeat([]byte{0x10 + i}, 16384))
	}
	for i := uint8(0); i < chrBanks; i++ {
		buf.Write(bytes.Repeat([]byte{0x40 + i}, 8192))
	}

	rom, err := nesrom.New(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("buildROM: %v", err)
	}
	return rom
}

func TestMapper0Mirrors16KiB(t *testing.T) {
	m, err := Get(buildROM(t, 0, 1, 1))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if got, want := m.CPURead(0x8000), m.CPURead(0xC000); got != want {
		t.Errorf("16KiB NROM: 0x8000 = %#02x, 0xC000 = %#02x, want equal", got, want)
	}
}

func TestMapper0FullPRG32(t *testing.T) {
	m, err := Get(buildROM(t, 0, 2, 1))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got, want := m.CPURead(0x8000), uint8(0x10); got != want {
		t.Errorf("CPURead(0x8000) = %#02x, want %#02x", got, want)
	}
	if got, want := m.CPURead(0xC000), uint8(0x11); got != want {
		t.Errorf("CPURead(0xC000) = %#02x, want %#02x", got, want)
	}
}

func TestMapper1SerialLoad(t *testing.T) {
	// Spec scenario: five writes to 0x8000 of value 0b00000001 (LSB=1)
	// program the control register to 0b11111 (PRG mode 3: switch low,
	// fix high at last bank; CHR 4 KiB mode; horizontal mirroring).
	m, err := Get(buildROM(t, 1, 4, 0))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	mm1 := m.(*mapper1)

	for i := 0; i < 5; i++ {
		m.CPUWrite(0x8000, 0x01)
	}

	if got, want := mm1.control, uint8(0b11111); got != want {
		t.Fatalf("control register = %#07b, want %#07b", got, want)
	}
	if got, want := mm1.MirroringMode(), uint8(MIRROR_HORIZONTAL); got != want {
		t.Errorf("MirroringMode() = %d, want %d", got, want)
	}
}

func TestMapper1PrgBankSwitch(t *testing.T) {
	m, err := Get(buildROM(t, 1, 4, 0))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	writeSerial := func(addr uint16, val uint8) {
		for i := 0; i < 5; i++ {
			m.CPUWrite(addr, (val>>i)&1)
		}
	}

	// Select PRG mode 3 (switch low/fix high) via control register.
	writeSerial(0x8000, 0b01111)
	// Select bank 2 as the low 16KiB bank.
	writeSerial(0xE000, 0b00010)

	if got, want := m.CPURead(0x8000), uint8(0x12); got != want {
		t.Errorf("CPURead(0x8000) after bank select = %#02x, want %#02x", got, want)
	}
	// High bank is fixed at the last bank (index 3 -> 0x13).
	if got, want := m.CPURead(0xC000), uint8(0x13); got != want {
		t.Errorf("CPURead(0xC000) = %#02x, want %#02x", got, want)
	}
}

func TestMapper2BankSwitch(t *testing.T) {
	m, err := Get(buildROM(t, 2, 4, 0))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	m.CPUWrite(0x8000, 2)
	if got, want := m.CPURead(0x8000), uint8(0x12); got != want {
		t.Errorf("CPURead(0x8000) = %#02x, want %#02x", got, want)
	}
	// Upper 16KiB is fixed to the last bank regardless of writes.
	if got, want := m.CPURead(0xC000), uint8(0x13); got != want {
		t.Errorf("CPURead(0xC000) = %#02x, want %#02x", got, want)
	}
}

func TestMapper3ChrBankSwitch(t *testing.T) {
	m, err := Get(buildROM(t, 3, 1, 4))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	m.CPUWrite(0x8000, 3)
	if got, want := m.PPURead(0x0000), uint8(0x43); got != want {
		t.Errorf("PPURead(0) after bank select 3 = %#02x, want %#02x", got, want)
	}
}

func TestMapper4IRQCounterReload(t *testing.T) {
	m, err := Get(buildROM(t, 4, 4, 8))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	m.CPUWrite(0xC000, 4) // reload value
	m.CPUWrite(0xC001, 0) // force counter to 0 so next count reloads
	m.CPUWrite(0xE001, 0) // enable IRQ

	for i := 0; i < 5; i++ {
		m.CountScanline()
	}
	if !m.IRQState() {
		t.Errorf("IRQState() = false after counter should have reached 0")
	}
	m.IRQClear()
	if m.IRQState() {
		t.Errorf("IRQState() = true after IRQClear()")
	}
}

func TestMapper4PrgBankModeSwap(t *testing.T) {
	m, err := Get(buildROM(t, 4, 8, 8))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	// Select register 6 (PRG low bank), write 8KiB bank index 2 (which
	// lands inside the second 16KiB PRG bank, filled with 0x11).
	m.CPUWrite(0x8000, 6)
	m.CPUWrite(0x8001, 2)

	if got, want := m.CPURead(0x8000), uint8(0x11); got != want {
		t.Errorf("CPURead(0x8000) = %#02x, want %#02x", got, want)
	}

	// Flip PRG bank mode: now 0xC000 should carry the switched bank
	// and 0x8000 should be fixed to the second-to-last 8KiB bank.
	m.CPUWrite(0x8000, 6|0x40)
	m.CPUWrite(0x8001, 2)

	if got, want := m.CPURead(0xC000), uint8(0x11); got != want {
		t.Errorf("CPURead(0xC000) after mode swap = %#02x, want %#02x", got, want)
	}
}
