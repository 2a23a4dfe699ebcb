package cpu

import "github.com/sixtyfiveohtwo/core/internal/diag"

// stepUop runs one sub-cycle of the micro-op executor, invoked once AB
// has latched. Simple ALU/load/store/transfer/flag ops complete in their
// single remaining sub-cycle; read-modify-write ops (memory shifts,
// INC/DEC) span their last three sub-cycles, dispatched on remaining, the
// number of sub-cycles left including this one. It returns true on the
// sub-cycle that retires the instruction.
func (c *Chip) stepUop() bool {
	remaining := c.instr.ncycles - c.instr.cycle
	terminal := remaining == 1

	switch c.instr.uop {
	case uopNOP:
		// Nothing to do; the cycle is spent on a dummy operand fetch.
	case uopLDA:
		c.A = c.setValueFlags(c.LoadByte(c.AB))
	case uopLDX:
		c.X = c.setValueFlags(c.LoadByte(c.AB))
	case uopLDY:
		c.Y = c.setValueFlags(c.LoadByte(c.AB))
	case uopSTA:
		c.StoreByte(c.AB, c.A)
	case uopSTX:
		c.StoreByte(c.AB, c.X)
	case uopSTY:
		c.StoreByte(c.AB, c.Y)
	case uopTAX:
		c.X = c.setValueFlags(c.A)
	case uopTAY:
		c.Y = c.setValueFlags(c.A)
	case uopTSX:
		c.X = c.setValueFlags(c.SP)
	case uopTXA:
		c.A = c.setValueFlags(c.X)
	case uopTXS:
		c.SP = c.X // no flag change
	case uopTYA:
		c.A = c.setValueFlags(c.Y)
	case uopDEX:
		c.X = c.dec8(c.X)
	case uopDEY:
		c.Y = c.dec8(c.Y)
	case uopINX:
		c.X = c.inc8(c.X)
	case uopINY:
		c.Y = c.inc8(c.Y)
	case uopADC:
		c.adc(c.LoadByte(c.AB))
	case uopSBC:
		c.sbc(c.LoadByte(c.AB))
	case uopAND:
		c.A = c.setValueFlags(c.A & c.LoadByte(c.AB))
	case uopEOR:
		c.A = c.setValueFlags(c.A ^ c.LoadByte(c.AB))
	case uopORA:
		c.A = c.setValueFlags(c.A | c.LoadByte(c.AB))
	case uopCLC:
		c.setCarry(false)
	case uopSEC:
		c.setCarry(true)
	case uopCLI:
		c.P &^= PInterrupt
	case uopSEI:
		c.P |= PInterrupt
	case uopCLV:
		c.setOverflow(false)
	case uopCLD, uopSED:
		diag.Fail("decimal mode unsupported: opcode 0x%02X", c.instr.opcode)
	case uopASL, uopLSR, uopROL, uopROR:
		c.stepShiftRotate(remaining)
	case uopINC, uopDEC:
		c.stepIncDecMem(remaining)
	default:
		diag.Fail("unimplemented micro-op %d", c.instr.uop)
	}
	return terminal
}

// stepShiftRotate handles ASL/LSR/ROL/ROR. instr.rw (set only on the
// memory-operand table entries, not the accumulator form) selects between
// the two shapes: the accumulator form runs on A in a single cycle, while
// the memory RMW form spans its last three sub-cycles, dispatched on
// remaining, the number of sub-cycles left including this one -- remaining
// 3 reads the operand into DB, remaining 2 writes it back unchanged (the
// real part's spurious write), remaining 1 computes the new value and
// writes it, setting flags from the result.
func (c *Chip) stepShiftRotate(remaining int) {
	if !c.instr.rw {
		c.A = c.shiftRotateValue(c.A)
		return
	}
	switch remaining {
	case 3:
		c.DB = c.LoadByte(c.AB)
	case 2:
		c.StoreByte(c.AB, c.DB)
	case 1:
		c.DB = c.shiftRotateValue(c.DB)
		c.StoreByte(c.AB, c.DB)
	default:
		diag.Fail("illegal RMW sub-cycle (remaining=%d) for shift/rotate", remaining)
	}
}

// shiftRotateValue applies the uop's transform to v, updates C from the
// bit shifted out and N/Z from the result, and returns the new value. ROL
// and ROR shift the old C into the vacated bit.
func (c *Chip) shiftRotateValue(v uint8) uint8 {
	var result uint8
	var carryOut bool
	switch c.instr.uop {
	case uopASL:
		carryOut = v&0x80 != 0
		result = v << 1
	case uopLSR:
		carryOut = v&0x01 != 0
		result = v >> 1
	case uopROL:
		carryOut = v&0x80 != 0
		result = v << 1
		if c.P&PCarry != 0 {
			result |= 0x01
		}
	case uopROR:
		carryOut = v&0x01 != 0
		result = v >> 1
		if c.P&PCarry != 0 {
			result |= 0x80
		}
	default:
		diag.Fail("shiftRotateValue called for non-shift uop %d", c.instr.uop)
	}
	c.setCarry(carryOut)
	return c.setValueFlags(result)
}

// stepIncDecMem handles memory INC/DEC: the same three-sub-cycle RMW
// shape as shift/rotate, but without touching C. Every INC/DEC table
// entry is a memory RMW (there is no accumulator form), so instr.rw must
// always be set here; a clear rw would mean opcodes.go mis-decoded it.
func (c *Chip) stepIncDecMem(remaining int) {
	if !c.instr.rw {
		diag.Fail("INC/DEC uop %d reached stepIncDecMem with rw unset", c.instr.uop)
	}
	switch remaining {
	case 3:
		c.DB = c.LoadByte(c.AB)
	case 2:
		c.StoreByte(c.AB, c.DB)
	case 1:
		if c.instr.uop == uopINC {
			c.DB = c.setValueFlags(c.DB + 1)
		} else {
			c.DB = c.setValueFlags(c.DB - 1)
		}
		c.StoreByte(c.AB, c.DB)
	default:
		diag.Fail("illegal RMW sub-cycle (remaining=%d) for INC/DEC", remaining)
	}
}

// stackStep drives PHA/PLA/PHP/PLP, which compute their own stack address
// across their sub-cycles rather than going through the generic
// addressing-mode engine.
func (c *Chip) stackStep() bool {
	switch c.instr.uop {
	case uopPHA, uopPHP:
		switch c.instr.cycle {
		case 1:
			c.AB = 0x0100 | uint16(c.SP)
			return false
		case 2:
			v := c.A
			if c.instr.uop == uopPHP {
				v = c.P | PBreak | PUnused
			}
			c.StoreByte(c.AB, v)
			c.SP--
			return true
		default:
			diag.Fail("illegal sub-cycle %d for push", c.instr.cycle)
		}
	case uopPLA, uopPLP:
		switch c.instr.cycle {
		case 1:
			c.SP++
			return false
		case 2:
			c.AB = 0x0100 | uint16(c.SP)
			return false
		case 3:
			v := c.LoadByte(c.AB)
			if c.instr.uop == uopPLA {
				c.A = c.setValueFlags(v)
			} else {
				c.P = (c.P & (PBreak | PUnused)) | (v &^ (PBreak | PUnused))
			}
			return true
		default:
			diag.Fail("illegal sub-cycle %d for pull", c.instr.cycle)
		}
	default:
		diag.Fail("stackStep called for non-stack uop %d", c.instr.uop)
	}
	panic("unreachable")
}
