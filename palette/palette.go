// Package palette loads external .pal files: the common 192-byte
// format (64 RGB triples, one per system palette entry) used by most
// NES emulators, so players can swap in their preferred palette
// without a recompile.
package palette

import (
	"fmt"
	"io"
	"os"

	"github.com/nes-core/nesemu/ppu"
)

const fileSize = 64 * 3

// Load reads a 192-byte .pal file from path and returns its 64 RGB
// entries as a palette table ready to pass to ppu.New or
// ppu.SetPalette.
func Load(path string) ([64]ppu.Color, error) {
	var out [64]ppu.Color

	f, err := os.Open(path)
	if err != nil {
		return out, fmt.Errorf("couldn't open palette file %q: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, fileSize)
	if _, err := io.ReadFull(f, buf); err != nil {
		return out, fmt.Errorf("couldn't read palette file %q (want %d bytes): %w", path, fileSize, err)
	}

	for i := 0; i < 64; i++ {
		out[i] = ppu.Color{buf[i*3], buf[i*3+1], buf[i*3+2]}
	}
	return out, nil
}
