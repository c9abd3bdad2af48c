package console

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nes-core/nesemu/mos6502"
	"github.com/nes-core/nesemu/ppu"
)

// saveStateVersion guards against loading a snapshot written by an
// incompatible build; bump it whenever State's shape changes.
const saveStateVersion = 1

// State is the full snapshot persisted by Bus.SaveState: CPU and PPU
// registers/memory plus console RAM. Cartridge mapper state (bank
// registers, IRQ counters) is not captured - resuming a save made
// mid-bank-switch replays from whatever the mapper's own power-on
// state is, a known limitation rather than a silent one.
type State struct {
	Version int
	CPU     mos6502.State
	PPU     ppu.State
	RAM     []uint8
}

// State returns a snapshot of the bus's current CPU/PPU/RAM state.
func (b *Bus) State() State {
	ram := make([]uint8, len(b.ram))
	copy(ram, b.ram)
	return State{
		Version: saveStateVersion,
		CPU:     b.cpu.State(),
		PPU:     b.ppu.State(),
		RAM:     ram,
	}
}

// Restore loads a previously captured State.
func (b *Bus) Restore(s State) error {
	if s.Version != saveStateVersion {
		return fmt.Errorf("save state version %d incompatible with current version %d", s.Version, saveStateVersion)
	}
	b.cpu.Restore(s.CPU)
	b.ppu.Restore(s.PPU)
	copy(b.ram, s.RAM)
	return nil
}

// savePath builds the hash-keyed save-state filename for the ROM
// currently loaded into mapper, <hash>.save<slot>, inside dir.
func savePath(dir string, romHash uint64, slot int) string {
	return filepath.Join(dir, fmt.Sprintf("%016x.save%d", romHash, slot))
}

// SaveState writes the bus's current state to slot within dir, keyed
// by the loaded ROM's content hash so save files from different games
// never collide.
func (b *Bus) SaveState(dir string, slot int) error {
	path := savePath(dir, b.romHash, slot)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating save state %q: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(b.State()); err != nil {
		return fmt.Errorf("encoding save state: %w", err)
	}
	return nil
}

// LoadState reads and restores a state previously written by
// SaveState for the currently loaded ROM.
func (b *Bus) LoadState(dir string, slot int) error {
	path := savePath(dir, b.romHash, slot)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening save state %q: %w", path, err)
	}
	defer f.Close()

	var s State
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return fmt.Errorf("decoding save state: %w", err)
	}
	return b.Restore(s)
}
