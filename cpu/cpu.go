// Package cpu implements the Ricoh 2A03/2A07 variant of the MOS 6502
// (NMOS 6502 with decimal mode removed) at single bus-cycle granularity.
// A Chip is driven entirely by repeated calls to Tick; each call advances
// exactly one bus cycle, mirroring the real part's timing so a caller can
// interleave other synchronous peripherals (video, audio, timers) between
// calls.
package cpu

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/sixtyfiveohtwo/core/internal/diag"
	"github.com/sixtyfiveohtwo/core/memory"
)

// Status register bits. Bit 5 (U) always reads 1; bit 4 (B) never exists
// in the physical register and is synthesized only when pushed to the
// stack by PHP (or, in a fuller implementation, BRK/IRQ/NMI).
const (
	PNegative  = uint8(0x80)
	POverflow  = uint8(0x40)
	PUnused    = uint8(0x20)
	PBreak     = uint8(0x10)
	PDecimal   = uint8(0x08)
	PInterrupt = uint8(0x04)
	PZero      = uint8(0x02)
	PCarry     = uint8(0x01)
)

// ResetVector is the address of the little-endian reset vector.
const ResetVector = uint16(0xFFFC)

// Chip is the processor state. The zero value is a freshly "init"ed CPU
// with no mapped address space; use NewChip to get one with a usable bus.
type Chip struct {
	A, X, Y uint8
	P       uint8
	SP      uint8
	PC      uint16

	// AB is the address-bus latch: the effective address computed by the
	// addressing-mode engine. DB is a one-byte scratch register used to
	// carry partial state (a zero-page pointer, a read-modify-write value)
	// across sub-cycles of a single instruction.
	AB uint16
	DB uint8

	halted     bool
	haltOpcode uint8

	instr instr

	cycle        uint64
	totalRetired uint64

	bus *memory.Map
}

// NewChip returns an "init"ed CPU with a bus map of the given region
// capacity (raised to memory.MinCapacity if smaller). The CPU is not
// runnable until at least one region is mapped and Reset is called.
func NewChip(capacity int) *Chip {
	return &Chip{bus: memory.NewMap(capacity)}
}

// MapRAMRegion appends a RAM-backed region to the CPU's address space.
// Regions may only be added before Reset; see memory.Map.InsertRAM for
// the overlap/capacity contract (violations are fatal).
func (c *Chip) MapRAMRegion(base uint16, backing []uint8) {
	c.bus.InsertRAM(base, backing)
}

// MapMMIORegion appends a callback-backed region to the CPU's address
// space. ctx is opaque user data h can recover from the Region it's
// called with (region.Ctx), for handlers that don't want to close over
// per-region state. See memory.Map.InsertMMIO for the contract.
func (c *Chip) MapMMIORegion(base uint16, size int, h memory.Handler, ctx interface{}) {
	c.bus.InsertMMIO(base, size, h, ctx)
}

// LoadByte and StoreByte are the bypass accessors used by hosts and tests
// to inspect or seed memory directly; they dispatch through the same bus
// as instruction execution but do not count against Cycle.
func (c *Chip) LoadByte(addr uint16) uint8 {
	return c.bus.Load(c, addr)
}

func (c *Chip) StoreByte(addr uint16, v uint8) {
	c.bus.Store(c, addr, v)
}

// IsHalted reports whether a KIL/JAM opcode has stopped the CPU. Once
// true, Tick becomes a no-op returning false forever.
func (c *Chip) IsHalted() bool {
	return c.halted
}

// HaltOpcode returns the opcode byte that halted the CPU (valid only once
// IsHalted is true).
func (c *Chip) HaltOpcode() uint8 {
	return c.haltOpcode
}

// Cycle returns the total number of bus cycles consumed since Reset.
func (c *Chip) Cycle() uint64 {
	return c.cycle
}

// TotalRetired returns the number of instructions retired since Reset.
func (c *Chip) TotalRetired() uint64 {
	return c.totalRetired
}

// Reset loads PC from the little-endian reset vector at 0xFFFC/0xFFFD,
// sets SP to 0xFD and P to I|U, and clears halted state and the counters.
// A, X and Y survive reset untouched. The instruction slot is left ready
// (cycle 0) so the very next Tick performs the first opcode fetch.
func (c *Chip) Reset() {
	lo := c.LoadByte(ResetVector)
	hi := c.LoadByte(ResetVector + 1)
	c.PC = uint16(hi)<<8 | uint16(lo)
	c.SP = 0xFD
	c.P = PInterrupt | PUnused
	c.AB = 0
	c.DB = 0
	c.halted = false
	c.haltOpcode = 0
	c.cycle = 8
	c.totalRetired = 0
	c.instr = instr{}
}

// Tick advances the CPU by exactly one bus cycle and reports whether an
// instruction retired during that cycle.
//
// Sub-cycle 0 of every instruction is the opcode fetch and decode; it is
// never itself the terminal cycle except for HLT, whose single cycle is
// simultaneously the fetch and the halt. PHA/PLA/PHP/PLP drive their own
// stack addressing across their sub-cycles rather than going through the
// generic addressing-mode engine (their descriptor mode is IMP only for
// disassembly purposes). Every other instruction runs the addressing-mode
// engine until AB latches, then the micro-op executor until the terminal
// sub-cycle, at which point the instruction retires and the slot resets
// so the next Tick call fetches the following opcode.
func (c *Chip) Tick() bool {
	if c.halted {
		return false
	}

	var retired bool
	switch {
	case c.instr.cycle == 0:
		c.fetch()
		if c.instr.uop == uopHLT {
			c.halted = true
			c.haltOpcode = c.instr.opcode
			retired = true
		}
	case isStackUop(c.instr.uop):
		retired = c.stackStep()
	case !c.instr.addressLatched:
		c.stepAddressing()
		if c.instr.addressLatched && isImmediateMode(c.instr.mode) {
			retired = c.stepUop()
		}
	default:
		retired = c.stepUop()
	}

	c.cycle++
	if retired {
		c.totalRetired++
		c.instr.cycle = 0
		c.instr.addressLatched = false
	} else {
		c.instr.cycle++
	}
	return retired
}

// fetch reads the opcode at PC, advances PC, and decodes the descriptor
// into the in-flight instruction slot. An opcode with no table entry is a
// fatal "unimplemented instruction" condition.
func (c *Chip) fetch() {
	op := c.LoadByte(c.PC)
	c.PC++
	desc := opcodeTable[op]
	if desc == nil {
		diag.Fail("unimplemented opcode 0x%02X fetched at 0x%04X", op, c.PC-1)
	}
	c.instr = instr{
		opcode:      op,
		uop:         desc.uop,
		mode:        desc.mode,
		ncycles:     desc.ncycles,
		xpageStall:  desc.xpageStall,
		alwaysStall: desc.alwaysStall,
		rw:          desc.rw,
	}
}

// String renders a one-line summary of CPU state, suitable for test
// failure output and for the demonstrator command.
func (c *Chip) String() string {
	return fmt.Sprintf("PC=%04X A=%02X X=%02X Y=%02X P=%02X SP=%02X AB=%04X cycle=%d retired=%d halted=%t",
		c.PC, c.A, c.X, c.Y, c.P, c.SP, c.AB, c.cycle, c.totalRetired, c.halted)
}

// Debug renders the full CPU state (including the in-flight instruction
// slot and the address-space map) via spew, for diagnosing a run that
// didn't halt where expected rather than staring at the one-line String.
func (c *Chip) Debug() string {
	return spew.Sdump(c)
}
