// mos6502run loads a flat binary image as RAM, resets a CPU against it,
// and ticks it to completion (halt), printing state along the way. It is
// the demonstrator command for the cpu/memory packages: not a full
// emulator front-end, just enough of a host to exercise the public
// façade the way a larger synchronous emulator loop would.
package main

import (
	"fmt"
	"os"

	"github.com/sixtyfiveohtwo/core/cpu"
	"github.com/sixtyfiveohtwo/core/disassemble"
	"github.com/sixtyfiveohtwo/core/memory"
	"github.com/spf13/cobra"
)

// scratchMMIO backs an optional one-page peripheral the demonstrator can map
// alongside the program's RAM, purely to smoke-test the MMIO handler path
// end to end (a write latches a byte, a read returns the last one written).
// It is threaded through as the region's opaque ctx rather than captured by
// the handler closure, to exercise Region.Ctx the way a handler shared
// across several regions would need to.
type scratchMMIO struct {
	last uint8
}

func scratchMMIOHandle(_ memory.Accessor, r *memory.Region, isWrite bool, _ uint16, data *uint8) {
	s := r.Ctx.(*scratchMMIO)
	if isWrite {
		s.last = *data
	} else {
		*data = s.last
	}
}

func main() {
	var (
		origin      uint16
		trace       bool
		maxTick     int
		mmioBase    uint16
		withScratch bool
	)

	rootCmd := &cobra.Command{
		Use:   "mos6502run <image>",
		Short: "Run a flat 6502 binary image to completion, cycle by cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %q: %w", args[0], err)
			}

			ram := make([]uint8, 65536)
			copy(ram[origin:], img)

			c := cpu.NewChip(8)
			if withScratch {
				const mmioSize = 0x100
				c.MapRAMRegion(0, ram[:mmioBase])
				c.MapMMIORegion(mmioBase, mmioSize, scratchMMIOHandle, &scratchMMIO{})
				if end := int(mmioBase) + mmioSize; end < len(ram) {
					c.MapRAMRegion(mmioBase+mmioSize, ram[end:])
				}
			} else {
				c.MapRAMRegion(0, ram)
			}
			c.Reset()

			fmt.Printf("loaded %d bytes at 0x%04X, reset PC=0x%04X\n", len(img), origin, c.PC)

			atFetch := true // the first Tick after Reset fetches an opcode
			for i := 0; i < maxTick && !c.IsHalted(); i++ {
				if trace && atFetch && !c.IsHalted() {
					text, _ := disassemble.Step(c.PC, c)
					fmt.Printf("%s | %s\n", c, text)
				}
				atFetch = c.Tick()
			}

			fmt.Printf("final: %s\n", c)
			if !c.IsHalted() {
				return fmt.Errorf("did not halt within %d ticks:\n%s", maxTick, c.Debug())
			}
			return nil
		},
	}
	rootCmd.Flags().Uint16Var(&origin, "origin", 0, "Address to load the image at")
	rootCmd.Flags().BoolVar(&trace, "trace", false, "Print the decoded instruction before each fetch")
	rootCmd.Flags().IntVar(&maxTick, "max-ticks", 1_000_000, "Bail out after this many ticks if the CPU never halts")
	rootCmd.Flags().BoolVar(&withScratch, "scratch-mmio", false, "Map a one-page scratch MMIO peripheral alongside RAM")
	rootCmd.Flags().Uint16Var(&mmioBase, "scratch-mmio-base", 0x9000, "Base address of the scratch MMIO region (with --scratch-mmio)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
