package cpu

import "github.com/sixtyfiveohtwo/core/internal/diag"

// stepAddressing runs one sub-cycle of the addressing-mode state machine
// for the in-flight instruction. instr.cycle (1, 2, 3, ...) identifies
// which sub-cycle of the mode this is, since sub-cycle 0 was the opcode
// fetch handled by Tick before this is ever called. On the sub-cycle that
// materializes the effective address, instr.addressLatched is set.
func (c *Chip) stepAddressing() {
	switch c.instr.mode {
	case modeIMP:
		c.instr.addressLatched = true
	case modeIMM:
		c.AB = c.PC
		c.PC++
		c.instr.addressLatched = true
	case modeZ:
		c.AB = uint16(c.LoadByte(c.PC))
		c.PC++
		c.instr.addressLatched = true
	case modeZX:
		c.stepZIndexed(c.X)
	case modeZY:
		c.stepZIndexed(c.Y)
	case modeABS:
		c.stepAbsolute(false, 0)
	case modeABSX:
		c.stepAbsolute(true, c.X)
	case modeABSY:
		c.stepAbsolute(true, c.Y)
	case modeINDX:
		c.stepIndirectX()
	case modeINDY:
		c.stepIndirectY()
	default:
		diag.Fail("unimplemented addressing mode %d", c.instr.mode)
	}
}

// stepZIndexed implements ZX/ZY: DB <- load(PC); PC++ on the first
// sub-cycle, then AB <- (DB + index) mod 256 on the second. Zero-page
// indexed addressing always wraps within the zero page; there is no
// page-cross stall to model.
func (c *Chip) stepZIndexed(index uint8) {
	switch c.instr.cycle {
	case 1:
		c.DB = c.LoadByte(c.PC)
		c.PC++
	case 2:
		c.AB = uint16((c.DB + index) & 0xFF)
		c.instr.addressLatched = true
	default:
		diag.Fail("illegal sub-cycle %d for zero-page-indexed addressing", c.instr.cycle)
	}
}

// crossesPage reports whether adding index to the low byte of base
// carries into the high byte, per (not base_low) & 0xFF < index.
func crossesPage(base uint16, index uint8) bool {
	lo := uint8(base & 0xFF)
	return (^lo) < index
}

// stepAbsolute implements ABS (indexed=false) and ABSX/ABSY (indexed=true).
// The low byte is read on sub-cycle 1, the high byte (and base address)
// on sub-cycle 2. For non-indexed ABS, AB latches immediately on
// sub-cycle 2. For indexed modes, sub-cycle 2 also tests for a page
// crossing: if the instruction is xpage_stall and the add carries, or if
// it is always_stall (indexed store / indexed RMW), the latch is deferred
// to sub-cycle 3; otherwise it completes on sub-cycle 2.
func (c *Chip) stepAbsolute(indexed bool, index uint8) {
	switch c.instr.cycle {
	case 1:
		c.DB = c.LoadByte(c.PC)
		c.PC++
	case 2:
		hi := c.LoadByte(c.PC)
		c.PC++
		base := uint16(hi)<<8 | uint16(c.DB)
		if !indexed {
			c.AB = base
			c.instr.addressLatched = true
			return
		}
		c.AB = base // provisional; finalized below or on sub-cycle 3
		stall := c.instr.alwaysStall || (c.instr.xpageStall && crossesPage(base, index))
		if stall {
			if c.instr.xpageStall && !c.instr.alwaysStall {
				c.instr.ncycles++
			}
			return
		}
		c.AB = base + uint16(index)
		c.instr.addressLatched = true
	case 3:
		c.AB += uint16(index)
		c.instr.addressLatched = true
	default:
		diag.Fail("illegal sub-cycle %d for absolute addressing", c.instr.cycle)
	}
}

// stepIndirectX implements (zp,X): a 4 sub-cycle mode with no page-cross
// stall (X is added to the zero-page pointer, not to the final address).
func (c *Chip) stepIndirectX() {
	switch c.instr.cycle {
	case 1:
		c.DB = c.LoadByte(c.PC)
		c.PC++
	case 2:
		c.DB = c.DB + c.X
	case 3:
		lo := c.LoadByte(uint16(c.DB))
		c.DB++
		c.AB = uint16(lo)
	case 4:
		hi := c.LoadByte(uint16(c.DB))
		c.AB = uint16(hi)<<8 | (c.AB & 0xFF)
		c.instr.addressLatched = true
	default:
		diag.Fail("illegal sub-cycle %d for indirect-X addressing", c.instr.cycle)
	}
}

// stepIndirectY implements (zp),Y: a 3 (+1 on stall) sub-cycle mode, with
// the same stall test and deferred-latch structure as stepAbsolute.
func (c *Chip) stepIndirectY() {
	switch c.instr.cycle {
	case 1:
		c.DB = c.LoadByte(c.PC)
		c.PC++
	case 2:
		lo := c.LoadByte(uint16(c.DB))
		c.DB++
		c.AB = uint16(lo)
	case 3:
		hi := c.LoadByte(uint16(c.DB))
		base := uint16(hi)<<8 | (c.AB & 0xFF)
		c.AB = base
		stall := c.instr.alwaysStall || (c.instr.xpageStall && crossesPage(base, c.Y))
		if stall {
			if c.instr.xpageStall && !c.instr.alwaysStall {
				c.instr.ncycles++
			}
			return
		}
		c.AB = base + uint16(c.Y)
		c.instr.addressLatched = true
	case 4:
		c.AB += uint16(c.Y)
		c.instr.addressLatched = true
	default:
		diag.Fail("illegal sub-cycle %d for indirect-Y addressing", c.instr.cycle)
	}
}
