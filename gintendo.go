package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/nes-core/nesemu/console"
	"github.com/nes-core/nesemu/mappers"
	"github.com/nes-core/nesemu/nesrom"
	"github.com/nes-core/nesemu/palette"
	"github.com/nes-core/nesemu/ppu"
)

var (
	romFile  = flag.String("nes_rom", "", "Path to NES ROM to run.")
	palFile  = flag.String("palette", "", "Path to a .pal file (192-byte RGB triples); defaults to the built-in palette.")
	saveDir  = flag.String("save-dir", ".", "Directory save states are written to and read from.")
	breaks   = flag.String("breaks", "", "Comma-separated hex breakpoints (eg 8000,c3f2) for -debug mode.")
	debugRun = flag.Bool("debug", false, "Run the interactive debug console instead of the emulator window.")
)

func parseBreaks(s string) []uint16 {
	if s == "" {
		return nil
	}
	var out []uint16
	for _, tok := range strings.Split(s, ",") {
		v, err := strconv.ParseUint(strings.TrimSpace(tok), 16, 16)
		if err != nil {
			logger.Printf("ignoring invalid breakpoint %q: %v", tok, err)
			continue
		}
		out = append(out, uint16(v))
	}
	return out
}

var logger = log.New(os.Stderr, "nes: ", log.LstdFlags)

func loadPalette(path string) [64]ppu.Color {
	if path == "" {
		return ppu.DefaultPalette
	}
	pal, err := palette.Load(path)
	if err != nil {
		logger.Printf("couldn't load palette %q, falling back to built-in default: %v", path, err)
		return ppu.DefaultPalette
	}
	return pal
}

func main() {
	flag.Parse()

	rom, err := nesrom.Load(*romFile)
	if err != nil {
		log.Fatalf("Invalid ROM: %v", err)
	}

	m, err := mappers.Get(rom)
	if err != nil {
		log.Fatalf("Couldn't Get() mapper: %v", err)
	}

	bus := console.New(m, rom.Hash(), loadPalette(*palFile), *saveDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *debugRun {
		dbg := console.NewDebugger(bus, parseBreaks(*breaks))
		dbg.Run(ctx)
		return
	}

	go bus.Run(ctx)

	if err := ebiten.RunGame(bus); err != nil {
		log.Fatal(err)
	}
}
