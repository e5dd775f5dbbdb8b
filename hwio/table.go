package hwio

import "fmt"

// Table is a byte-addressable memory-mapped bus. It backs both the CPU bus
// (0x0000-0xFFFF) and the PPU bus (0x0000-0x3FFF is used of a 16-bit space).
// Storage is a flat 64K array of interface values rather than a radix tree:
// the NES address space is small enough that the memory cost (a few hundred
// KiB per bus) is irrelevant, and a flat array makes every access O(1) with
// no tree-balancing edge cases to get wrong without a compiler to check it.
type Table struct {
	Name string

	slots [0x10000]BankIO8
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) Reset() {
	for i := range t.slots {
		t.slots[i] = nil
	}
}

// MapBank maps every hwio-tagged field of bank belonging to bankNum, at
// addr+offset for each field's declared offset.
func (t *Table) MapBank(addr uint16, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}
	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Mem:
			t.MapMem(addr+reg.offset, r)
		case *Reg8:
			t.MapReg8(addr+reg.offset, r)
		case *Manual:
			t.MapManual(addr+reg.offset, r)
		default:
			panic(fmt.Errorf("hwio: invalid reg type %T", r))
		}
	}
}

func (t *Table) UnmapBank(addr uint16, bank any, bankNum int) {
	regs, err := bankGetRegs(bank, bankNum)
	if err != nil {
		panic(err)
	}
	for _, reg := range regs {
		switch r := reg.regPtr.(type) {
		case *Mem:
			t.Unmap(addr+reg.offset, addr+reg.offset+uint16(r.VSize)-1)
		case *Reg8:
			t.Unmap(addr+reg.offset, addr+reg.offset)
		case *Manual:
			t.Unmap(addr+reg.offset, addr+reg.offset+uint16(r.Size)-1)
		}
	}
}

func (t *Table) mapBus8(addr uint16, size int, io BankIO8) {
	a := uint32(addr)
	for i := 0; i < size; i++ {
		t.slots[uint16(a)] = io
		a++
	}
}

func (t *Table) MapReg8(addr uint16, io *Reg8) {
	t.mapBus8(addr, 1, io)
}

func (t *Table) MapManual(addr uint16, io *Manual) {
	t.mapBus8(addr, io.Size, io)
}

func (t *Table) MapMem(addr uint16, mem *Mem) {
	if mem.VSize == 0 {
		mem.VSize = len(mem.Data)
	}
	t.mapBus8(addr, mem.VSize, mem.BankIO8())
}

// MapMemorySlice maps a raw byte slice directly, with no mirroring: used by
// mappers to lay nametables and CHR banks out at exact addresses.
func (t *Table) MapMemorySlice(addr, end uint16, mem []uint8, readonly bool) {
	var flags MemFlags
	if readonly {
		flags = MemFlag8ReadOnly
	}
	t.MapMem(addr, &Mem{
		Data:  mem,
		Flags: flags,
		VSize: int(end-addr) + 1,
	})
}

func (t *Table) Unmap(begin, end uint16) {
	a := uint32(begin)
	last := uint32(end)
	for a <= last {
		t.slots[uint16(a)] = nil
		a++
	}
}

func (t *Table) Read8(addr uint16, peek bool) uint8 {
	io := t.slots[addr]
	if io == nil {
		return 0
	}
	return io.Read8(addr, peek)
}

func (t *Table) Peek8(addr uint16) uint8 {
	return t.Read8(addr, true)
}

func (t *Table) Write8(addr uint16, val uint8) {
	io := t.slots[addr]
	if io == nil {
		return
	}
	io.Write8(addr, val)
}

// FetchPointer returns a direct slice into the backing memory mapped at
// addr, or nil if nothing backed by a Mem is mapped there.
func (t *Table) FetchPointer(addr uint16) []uint8 {
	io := t.slots[addr]
	if m, ok := io.(*memIO); ok {
		off := int(addr) & (len(m.data) - 1)
		return m.data[off:]
	}
	return nil
}
