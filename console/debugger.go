package console

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
)

// Debugger is the interactive BIOS-style REPL the teacher kept
// duplicated across three separate files; it drives a single Bus by
// breakpoint, single-step or free-run, and dumps CPU/PPU/memory state
// on request. Wired in behind -debug rather than run by default.
type Debugger struct {
	bus    *Bus
	breaks map[uint16]struct{}
}

// NewDebugger wraps bus with breakpoints parsed from the -breaks flag
// value (a comma-separated list of hex addresses, e.g. "8000,c3f2").
func NewDebugger(bus *Bus, breaks []uint16) *Debugger {
	d := &Debugger{bus: bus, breaks: make(map[uint16]struct{})}
	for _, a := range breaks {
		d.breaks[a] = struct{}{}
	}
	return d
}

func readAddress(prompt string) uint16 {
	var a uint16
	fmt.Print(prompt)
	fmt.Scanf("%04x\n", &a)
	return a
}

// Run starts the interactive REPL loop until the user quits or ctx is
// cancelled.
func (d *Debugger) Run(ctx context.Context) {
	sigQuit := make(chan os.Signal, 1)
	signal.Notify(sigQuit, syscall.SIGINT, syscall.SIGTERM)

	for {
		fmt.Printf("%s\n\n", d.bus.cpu)
		fmt.Println("(B)reak - add breakpoint")
		fmt.Println("(C)lear - clear breakpoints")
		fmt.Println("(R)un - run to completion (or next breakpoint)")
		fmt.Println("(S)tep - step the CPU one instruction")
		fmt.Println("R(e)set - hit the reset button")
		fmt.Println("(M)emory - display a memory range")
		fmt.Println("S(t)ack - show the last 3 items on the stack")
		fmt.Println("(P)C - set program counter")
		fmt.Println("PP(U) - show PPU status")
		fmt.Println("(Q)uit - shut down")
		fmt.Print("Choice: ")

		var in rune
		fmt.Scanf("%c\n", &in)

		switch in {
		case 'b', 'B':
			d.breaks[readAddress("Breakpoint (eg: ff15): ")] = struct{}{}
		case 'c', 'C':
			d.breaks = make(map[uint16]struct{})
		case 'p', 'P':
			d.bus.cpu.SetPC(readAddress("Set PC to what address (eg: 0400)?: "))
		case 'q', 'Q':
			return
		case 'r', 'R':
			cctx, cancel := context.WithCancel(ctx)
			go func() {
				select {
				case <-sigQuit:
					cancel()
				case <-cctx.Done():
				}
			}()
			d.runUntilBreak(cctx)
			cancel()
		case 's', 'S':
			before := d.bus.cpu.PC()
			for d.bus.cpu.PC() == before {
				d.bus.tick()
			}
		case 't', 'T':
			fmt.Println()
			base := d.bus.cpu.State().SP
			top := uint16(0x0100) | uint16(base)
			for i := 0; i < 3; i++ {
				m := top + uint16(i)
				fmt.Printf("0x%04x: 0x%02x ", m, d.bus.Read(m))
				if m == 0x01ff {
					break
				}
			}
			fmt.Printf("\n\n")
		case 'u', 'U':
			fmt.Printf("scanline=%d dot=%d\n", d.bus.ppu.Scanline(), d.bus.ppu.Dot())
		case 'e', 'E':
			d.bus.cpu.Reset()
			d.bus.ppu.Reset()
		case 'm', 'M':
			fmt.Println()
			low := readAddress("Low address (eg f00d): ")
			high := readAddress("High address (eg beef): ")
			fmt.Println()

			x := 1
			for i := low; ; i++ {
				fmt.Printf("0x%04x: 0x%02x ", i, d.bus.Read(i))
				if x%5 == 0 {
					fmt.Println()
				}
				if i == high || i == math.MaxUint16 {
					break
				}
				x++
			}
			fmt.Printf("\n\n")
		}
	}
}

// runUntilBreak free-runs the bus one CPU cycle at a time, stopping
// when the PC lands on a registered breakpoint or ctx is cancelled.
func (d *Debugger) runUntilBreak(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			d.bus.tick()
			if _, hit := d.breaks[d.bus.cpu.PC()]; hit {
				return
			}
		}
	}
}
