package hwio

import "nescore/internal/log"

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlag8ReadOnly MemFlags = 1 << iota
	MemFlagNoROLog
)

// Mem is a linear memory area (RAM, ROM, VRAM) that can be mapped into a
// Table. VSize may exceed len(Data): addresses are masked modulo len(Data),
// which is how NROM's 16 KiB PRG mirrors into a 32 KiB window and how CPU RAM
// mirrors four times across 0x0000-0x1FFF.
type Mem struct {
	Name    string
	Data    []byte
	VSize   int
	Flags   MemFlags
	WriteCb func(addr uint16, val uint8)
}

func (m *Mem) BankIO8() BankIO8 {
	return &memIO{data: m.Data, wcb: m.WriteCb, ro: m.Flags, name: m.Name}
}

type memIO struct {
	data []byte
	wcb  func(uint16, uint8)
	ro   MemFlags
	name string
}

func (m *memIO) mask(addr uint16) int {
	if len(m.data) == 0 {
		return 0
	}
	return int(addr) & (len(m.data) - 1)
}

func (m *memIO) Read8(addr uint16, peek bool) uint8 {
	if len(m.data) == 0 {
		return 0
	}
	return m.data[m.mask(addr)]
}

func (m *memIO) Write8(addr uint16, val uint8) {
	switch m.ro {
	case MemFlagReadWrite:
		if len(m.data) == 0 {
			return
		}
		m.data[m.mask(addr)] = val
		if m.wcb != nil {
			m.wcb(addr, val)
		}
	case MemFlag8ReadOnly:
		log.ModBus.ErrorZ("write to readonly memory").String("name", m.name).Hex16("addr", addr).Hex8("val", val).End()
	case MemFlagNoROLog:
		return
	}
}

// FetchPointer returns the backing slice starting at addr, wrapped modulo the
// buffer size.
func (m *Mem) FetchPointer(addr uint16) []uint8 {
	if len(m.Data) == 0 {
		return nil
	}
	off := int(addr) & (len(m.Data) - 1)
	return m.Data[off:]
}
