package cpu

// opDescriptor is the static, per-opcode decode result: the micro-op, the
// addressing mode, the base sub-cycle count (before any runtime page-cross
// stall), and the stall/RMW flags consulted by the addressing engine and
// executor.
type opDescriptor struct {
	uop         uop
	mode        addrMode
	ncycles     int
	xpageStall  bool
	alwaysStall bool
	rw          bool
}

// opcodeTable is a sparse 256-entry lookup from opcode byte to decode
// descriptor. A nil entry fetched by the control loop is a fatal
// "unimplemented instruction" condition (see Chip.fetch).
var opcodeTable [256]*opDescriptor

func desc(u uop, m addrMode, ncycles int) *opDescriptor {
	return &opDescriptor{uop: u, mode: m, ncycles: ncycles}
}

func descXPage(u uop, m addrMode, ncycles int) *opDescriptor {
	return &opDescriptor{uop: u, mode: m, ncycles: ncycles, xpageStall: true}
}

func descAlwaysStall(u uop, m addrMode, ncycles int) *opDescriptor {
	return &opDescriptor{uop: u, mode: m, ncycles: ncycles, alwaysStall: true}
}

func descRMW(u uop, m addrMode, ncycles int, alwaysStall bool) *opDescriptor {
	return &opDescriptor{uop: u, mode: m, ncycles: ncycles, alwaysStall: alwaysStall, rw: true}
}

func set(op uint8, d *opDescriptor) {
	if opcodeTable[op] != nil {
		panic("duplicate opcode table entry")
	}
	opcodeTable[op] = d
}

// init populates the opcode decode table for every instruction/addressing
// mode combination this revision supports (see the external interfaces
// section of the design for the full enumeration and §4.3 for cycle
// derivations).
func init() {
	// ADC/SBC/AND/EOR/ORA: IMM, Z, ZX, ABS, ABSX(+stall), ABSY(+stall), INDX, INDY(+stall).
	type alu struct {
		u                                             uop
		imm, z, zx, abs, absx, absy, indx, indy uint8
	}
	for _, a := range []alu{
		{uopADC, 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71},
		{uopSBC, 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1},
		{uopAND, 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31},
		{uopEOR, 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51},
		{uopORA, 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11},
		{uopLDA, 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1},
	} {
		set(a.imm, desc(a.u, modeIMM, 2))
		set(a.z, desc(a.u, modeZ, 3))
		set(a.zx, desc(a.u, modeZX, 4))
		set(a.abs, desc(a.u, modeABS, 4))
		set(a.absx, descXPage(a.u, modeABSX, 4))
		set(a.absy, descXPage(a.u, modeABSY, 4))
		set(a.indx, desc(a.u, modeINDX, 6))
		set(a.indy, descXPage(a.u, modeINDY, 5))
	}

	// LDX: IMM, Z, ZY, ABS, ABSY(+stall).
	set(0xA2, desc(uopLDX, modeIMM, 2))
	set(0xA6, desc(uopLDX, modeZ, 3))
	set(0xB6, desc(uopLDX, modeZY, 4))
	set(0xAE, desc(uopLDX, modeABS, 4))
	set(0xBE, descXPage(uopLDX, modeABSY, 4))

	// LDY: IMM, Z, ZX, ABS, ABSX(+stall).
	set(0xA0, desc(uopLDY, modeIMM, 2))
	set(0xA4, desc(uopLDY, modeZ, 3))
	set(0xB4, desc(uopLDY, modeZX, 4))
	set(0xAC, desc(uopLDY, modeABS, 4))
	set(0xBC, descXPage(uopLDY, modeABSX, 4))

	// STA: Z, ZX, ABS, ABSX(always), ABSY(always), INDX, INDY(always).
	set(0x85, desc(uopSTA, modeZ, 3))
	set(0x95, desc(uopSTA, modeZX, 4))
	set(0x8D, desc(uopSTA, modeABS, 4))
	set(0x9D, descAlwaysStall(uopSTA, modeABSX, 5))
	set(0x99, descAlwaysStall(uopSTA, modeABSY, 5))
	set(0x81, desc(uopSTA, modeINDX, 6))
	set(0x91, descAlwaysStall(uopSTA, modeINDY, 6))

	// STX: Z, ZY, ABS.
	set(0x86, desc(uopSTX, modeZ, 3))
	set(0x96, desc(uopSTX, modeZY, 4))
	set(0x8E, desc(uopSTX, modeABS, 4))

	// STY: Z, ZX, ABS.
	set(0x84, desc(uopSTY, modeZ, 3))
	set(0x94, desc(uopSTY, modeZX, 4))
	set(0x8C, desc(uopSTY, modeABS, 4))

	// Transfers: all IMP, 2 cycles.
	set(0xAA, desc(uopTAX, modeIMP, 2))
	set(0xA8, desc(uopTAY, modeIMP, 2))
	set(0xBA, desc(uopTSX, modeIMP, 2))
	set(0x8A, desc(uopTXA, modeIMP, 2))
	set(0x9A, desc(uopTXS, modeIMP, 2))
	set(0x98, desc(uopTYA, modeIMP, 2))

	// Stack ops.
	set(0x48, desc(uopPHA, modeIMP, 3))
	set(0x68, desc(uopPLA, modeIMP, 4))
	set(0x08, desc(uopPHP, modeIMP, 3))
	set(0x28, desc(uopPLP, modeIMP, 4))

	// INX/DEX/INY/DEY: IMP, 2 cycles.
	set(0xE8, desc(uopINX, modeIMP, 2))
	set(0xCA, desc(uopDEX, modeIMP, 2))
	set(0xC8, desc(uopINY, modeIMP, 2))
	set(0x88, desc(uopDEY, modeIMP, 2))

	// INC/DEC memory: Z, ZX, ABS, ABSX(always, RMW).
	set(0xE6, descRMW(uopINC, modeZ, 5, false))
	set(0xF6, descRMW(uopINC, modeZX, 6, false))
	set(0xEE, descRMW(uopINC, modeABS, 6, false))
	set(0xFE, descRMW(uopINC, modeABSX, 7, true))
	set(0xC6, descRMW(uopDEC, modeZ, 5, false))
	set(0xD6, descRMW(uopDEC, modeZX, 6, false))
	set(0xCE, descRMW(uopDEC, modeABS, 6, false))
	set(0xDE, descRMW(uopDEC, modeABSX, 7, true))

	// ASL/LSR/ROL/ROR: accumulator form (IMP, 2 cycles) plus memory forms
	// Z/ZX/ABS/ABSX (RMW, ABSX always pays the indexing cycle).
	for _, s := range []struct {
		u                            uop
		acc, z, zx, abs, absx uint8
	}{
		{uopASL, 0x0A, 0x06, 0x16, 0x0E, 0x1E},
		{uopLSR, 0x4A, 0x46, 0x56, 0x4E, 0x5E},
		{uopROL, 0x2A, 0x26, 0x36, 0x2E, 0x3E},
		{uopROR, 0x6A, 0x66, 0x76, 0x6E, 0x7E},
	} {
		set(s.acc, desc(s.u, modeIMP, 2))
		set(s.z, descRMW(s.u, modeZ, 5, false))
		set(s.zx, descRMW(s.u, modeZX, 6, false))
		set(s.abs, descRMW(s.u, modeABS, 6, false))
		set(s.absx, descRMW(s.u, modeABSX, 7, true))
	}

	// Flag ops: IMP, 2 cycles. CLD/SED are decoded normally but fault when
	// executed (decimal mode is unsupported).
	set(0x18, desc(uopCLC, modeIMP, 2))
	set(0xD8, desc(uopCLD, modeIMP, 2))
	set(0x58, desc(uopCLI, modeIMP, 2))
	set(0xB8, desc(uopCLV, modeIMP, 2))
	set(0x38, desc(uopSEC, modeIMP, 2))
	set(0xF8, desc(uopSED, modeIMP, 2))
	set(0x78, desc(uopSEI, modeIMP, 2))

	// NOP.
	set(0xEA, desc(uopNOP, modeIMP, 2))

	// KIL/JAM halt encodings: one cycle, sets halted.
	for _, op := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		set(op, desc(uopHLT, modeIMP, 1))
	}
}
