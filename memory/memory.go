// Package memory implements the physical address-space map the CPU is
// wired against: a sorted, non-overlapping list of regions, each backed
// either by a directly-mapped byte slice or by an MMIO callback.
package memory

import (
	"fmt"

	"github.com/sixtyfiveohtwo/core/internal/diag"
)

// MinCapacity is the minimum number of regions a Map must support per the
// data-model contract (pa_map capacity >= 8).
const MinCapacity = 8

// Accessor is the minimal CPU surface handed to MMIO handlers so they can
// drive the bus (or, for fancier peripherals, inspect other CPU-visible
// state) without this package importing the cpu package. The cpu package
// supplies a value satisfying this interface; the Map never stores it.
type Accessor interface {
	LoadByte(addr uint16) uint8
	StoreByte(addr uint16, v uint8)
}

// Handler services reads and writes to an MMIO region. isWrite is false
// for a read (the handler fills *data) and true for a write (the handler
// consumes *data). offset is relative to the region's base.
type Handler func(cpu Accessor, r *Region, isWrite bool, offset uint16, data *uint8)

// Region is a single contiguous span of the 16-bit physical address space.
type Region struct {
	Base  uint16
	Size  int
	IsRAM bool

	// Ctx is the opaque user data a caller registered an MMIO region with
	// (via InsertMMIO); it is handed back to the Handler through the
	// Region passed into every call so a handler can recover per-region
	// state without closing over it. Unused (nil) for RAM regions.
	Ctx interface{}

	ram     []uint8
	handler Handler
}

// End returns the last address (inclusive) covered by the region.
func (r *Region) End() uint16 {
	return r.Base + uint16(r.Size) - 1
}

// Map is the sorted, disjoint list of regions covering (a subset of) the
// 16-bit address space.
type Map struct {
	regions []Region
	cap     int
}

// NewMap creates an address-space map with the given region capacity.
// Capacity below MinCapacity is raised to MinCapacity.
func NewMap(capacity int) *Map {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	return &Map{cap: capacity}
}

// InsertRAM appends a RAM-backed region. backing is borrowed for the
// lifetime of the Map; the Map never reslices or appends to it. Overlap,
// out-of-range placement, or exceeding capacity is fatal.
func (m *Map) InsertRAM(base uint16, backing []uint8) {
	if backing == nil {
		diag.Fail("InsertRAM: backing slice must not be nil")
	}
	m.insert(Region{Base: base, Size: len(backing), IsRAM: true, ram: backing})
}

// InsertMMIO appends a callback-backed region of the given size. ctx is
// opaque user data stashed on the Region and handed back to h via its
// region argument (Region.Ctx) on every call.
func (m *Map) InsertMMIO(base uint16, size int, h Handler, ctx interface{}) {
	if h == nil {
		diag.Fail("InsertMMIO: handler must not be nil")
	}
	m.insert(Region{Base: base, Size: size, IsRAM: false, handler: h, Ctx: ctx})
}

func (m *Map) insert(r Region) {
	if r.Size < 1 {
		diag.Fail("region size must be >= 1, got %d", r.Size)
	}
	if int(r.Base)+r.Size-1 > 0xFFFF {
		diag.Fail("region [0x%04X, size %d) exceeds the 16-bit address space", r.Base, r.Size)
	}
	if len(m.regions) >= m.cap {
		diag.Fail("address-space map is at capacity (%d regions)", m.cap)
	}

	idx := 0
	for idx < len(m.regions) && m.regions[idx].Base < r.Base {
		idx++
	}
	if idx < len(m.regions) && r.End() >= m.regions[idx].Base {
		diag.Fail("region [0x%04X,0x%04X] overlaps existing region [0x%04X,0x%04X]",
			r.Base, r.End(), m.regions[idx].Base, m.regions[idx].End())
	}
	if idx > 0 && m.regions[idx-1].End() >= r.Base {
		diag.Fail("region [0x%04X,0x%04X] overlaps existing region [0x%04X,0x%04X]",
			r.Base, r.End(), m.regions[idx-1].Base, m.regions[idx-1].End())
	}

	m.regions = append(m.regions, Region{})
	copy(m.regions[idx+1:], m.regions[idx:])
	m.regions[idx] = r
}

// find locates the region covering addr via a linear scan of the sorted
// list; a binary search would be a valid optimisation but is not part of
// the contract.
func (m *Map) find(addr uint16) (*Region, uint16) {
	for i := range m.regions {
		r := &m.regions[i]
		if addr >= r.Base && addr <= r.End() {
			return r, addr - r.Base
		}
	}
	diag.Fail("unmapped bus probe at address 0x%04X", addr)
	panic("unreachable")
}

// Load reads a single byte from the region covering addr. cpu is passed
// through to MMIO handlers as their back-reference to the calling CPU.
func (m *Map) Load(cpu Accessor, addr uint16) uint8 {
	r, off := m.find(addr)
	if r.IsRAM {
		return r.ram[off]
	}
	var v uint8
	r.handler(cpu, r, false, off, &v)
	return v
}

// Store writes a single byte through the region covering addr.
func (m *Map) Store(cpu Accessor, addr uint16, v uint8) {
	r, off := m.find(addr)
	if r.IsRAM {
		r.ram[off] = v
		return
	}
	val := v
	r.handler(cpu, r, true, off, &val)
}

// String renders the region list for debugging/introspection.
func (m *Map) String() string {
	s := fmt.Sprintf("address map (%d/%d regions):\n", len(m.regions), m.cap)
	for _, r := range m.regions {
		kind := "MMIO"
		if r.IsRAM {
			kind = "RAM"
		}
		s += fmt.Sprintf("  [0x%04X,0x%04X] %s\n", r.Base, r.End(), kind)
	}
	return s
}
