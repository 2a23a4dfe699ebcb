// Package disassemble implements a reduced disassembler covering exactly
// the opcode set this revision of the CPU supports. It is used by the
// demonstrator command and is handy for rendering the instruction a test
// failure caught the CPU mid-executing.
package disassemble

import (
	"fmt"

	"github.com/sixtyfiveohtwo/core/memory"
)

type mode int

const (
	modeImplied mode = iota
	modeImmediate
	modeZ
	modeZX
	modeZY
	modeAbs
	modeAbsX
	modeAbsY
	modeIndX
	modeIndY
)

type entry struct {
	mnemonic string
	mode     mode
}

var table [256]*entry

func set(op uint8, mnemonic string, m mode) {
	table[op] = &entry{mnemonic: mnemonic, mode: m}
}

func init() {
	type alu struct {
		name                                     string
		imm, z, zx, abs, absx, absy, indx, indy uint8
	}
	for _, a := range []alu{
		{"ADC", 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71},
		{"SBC", 0xE9, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1},
		{"AND", 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31},
		{"EOR", 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51},
		{"ORA", 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11},
		{"LDA", 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1},
	} {
		set(a.imm, a.name, modeImmediate)
		set(a.z, a.name, modeZ)
		set(a.zx, a.name, modeZX)
		set(a.abs, a.name, modeAbs)
		set(a.absx, a.name, modeAbsX)
		set(a.absy, a.name, modeAbsY)
		set(a.indx, a.name, modeIndX)
		set(a.indy, a.name, modeIndY)
	}

	set(0xA2, "LDX", modeImmediate)
	set(0xA6, "LDX", modeZ)
	set(0xB6, "LDX", modeZY)
	set(0xAE, "LDX", modeAbs)
	set(0xBE, "LDX", modeAbsY)

	set(0xA0, "LDY", modeImmediate)
	set(0xA4, "LDY", modeZ)
	set(0xB4, "LDY", modeZX)
	set(0xAC, "LDY", modeAbs)
	set(0xBC, "LDY", modeAbsX)

	set(0x85, "STA", modeZ)
	set(0x95, "STA", modeZX)
	set(0x8D, "STA", modeAbs)
	set(0x9D, "STA", modeAbsX)
	set(0x99, "STA", modeAbsY)
	set(0x81, "STA", modeIndX)
	set(0x91, "STA", modeIndY)

	set(0x86, "STX", modeZ)
	set(0x96, "STX", modeZY)
	set(0x8E, "STX", modeAbs)

	set(0x84, "STY", modeZ)
	set(0x94, "STY", modeZX)
	set(0x8C, "STY", modeAbs)

	set(0xAA, "TAX", modeImplied)
	set(0xA8, "TAY", modeImplied)
	set(0xBA, "TSX", modeImplied)
	set(0x8A, "TXA", modeImplied)
	set(0x9A, "TXS", modeImplied)
	set(0x98, "TYA", modeImplied)

	set(0x48, "PHA", modeImplied)
	set(0x68, "PLA", modeImplied)
	set(0x08, "PHP", modeImplied)
	set(0x28, "PLP", modeImplied)

	set(0xE8, "INX", modeImplied)
	set(0xCA, "DEX", modeImplied)
	set(0xC8, "INY", modeImplied)
	set(0x88, "DEY", modeImplied)

	set(0xE6, "INC", modeZ)
	set(0xF6, "INC", modeZX)
	set(0xEE, "INC", modeAbs)
	set(0xFE, "INC", modeAbsX)
	set(0xC6, "DEC", modeZ)
	set(0xD6, "DEC", modeZX)
	set(0xCE, "DEC", modeAbs)
	set(0xDE, "DEC", modeAbsX)

	for _, s := range []struct {
		name                         string
		acc, z, zx, abs, absx uint8
	}{
		{"ASL", 0x0A, 0x06, 0x16, 0x0E, 0x1E},
		{"LSR", 0x4A, 0x46, 0x56, 0x4E, 0x5E},
		{"ROL", 0x2A, 0x26, 0x36, 0x2E, 0x3E},
		{"ROR", 0x6A, 0x66, 0x76, 0x6E, 0x7E},
	} {
		set(s.acc, s.name, modeImplied)
		set(s.z, s.name, modeZ)
		set(s.zx, s.name, modeZX)
		set(s.abs, s.name, modeAbs)
		set(s.absx, s.name, modeAbsX)
	}

	set(0x18, "CLC", modeImplied)
	set(0xD8, "CLD", modeImplied)
	set(0x58, "CLI", modeImplied)
	set(0xB8, "CLV", modeImplied)
	set(0x38, "SEC", modeImplied)
	set(0xF8, "SED", modeImplied)
	set(0x78, "SEI", modeImplied)

	set(0xEA, "NOP", modeImplied)

	for _, op := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		set(op, "HLT", modeImplied)
	}
}

// Step disassembles the instruction at pc, returning its text rendering
// and the number of bytes (including the opcode) it occupies. An
// unrecognized opcode renders as a raw byte value rather than erroring;
// this package is a debugging aid, not part of the fatal-precondition
// contract the CPU itself enforces on fetch.
func Step(pc uint16, mem memory.Accessor) (string, int) {
	op := mem.LoadByte(pc)
	e := table[op]
	if e == nil {
		return fmt.Sprintf(".byte $%02X", op), 1
	}

	switch e.mode {
	case modeImplied:
		return e.mnemonic, 1
	case modeImmediate:
		return fmt.Sprintf("%s #$%02X", e.mnemonic, mem.LoadByte(pc+1)), 2
	case modeZ:
		return fmt.Sprintf("%s $%02X", e.mnemonic, mem.LoadByte(pc+1)), 2
	case modeZX:
		return fmt.Sprintf("%s $%02X,X", e.mnemonic, mem.LoadByte(pc+1)), 2
	case modeZY:
		return fmt.Sprintf("%s $%02X,Y", e.mnemonic, mem.LoadByte(pc+1)), 2
	case modeAbs:
		return fmt.Sprintf("%s $%02X%02X", e.mnemonic, mem.LoadByte(pc+2), mem.LoadByte(pc+1)), 3
	case modeAbsX:
		return fmt.Sprintf("%s $%02X%02X,X", e.mnemonic, mem.LoadByte(pc+2), mem.LoadByte(pc+1)), 3
	case modeAbsY:
		return fmt.Sprintf("%s $%02X%02X,Y", e.mnemonic, mem.LoadByte(pc+2), mem.LoadByte(pc+1)), 3
	case modeIndX:
		return fmt.Sprintf("%s ($%02X,X)", e.mnemonic, mem.LoadByte(pc+1)), 2
	case modeIndY:
		return fmt.Sprintf("%s ($%02X),Y", e.mnemonic, mem.LoadByte(pc+1)), 2
	default:
		return fmt.Sprintf(".byte $%02X", op), 1
	}
}
