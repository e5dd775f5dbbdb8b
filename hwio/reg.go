package hwio

import (
	"fmt"

	"nescore/internal/log"
)

type RWFlags uint8

const (
	ReadWriteFlag RWFlags = 0
	ReadOnlyFlag  RWFlags = 1 << iota
	WriteOnlyFlag
)

// Reg8 is a single memory-mapped byte register. Games rarely write a raw
// byte and read it back unchanged: most registers latch part of the value
// and derive side effects from it, hence the three optional callbacks wired
// up from struct-tag metadata by MustInitRegs.
type Reg8 struct {
	Name   string
	Value  uint8
	RoMask uint8

	Flags   RWFlags
	ReadCb  func(val uint8) uint8
	PeekCb  func(val uint8) uint8
	WriteCb func(old, val uint8)
}

func (reg Reg8) String() string {
	return fmt.Sprintf("%s{%02x}", reg.Name, reg.Value)
}

func (reg *Reg8) set(val uint8) {
	old := reg.Value
	reg.Value = (reg.Value & reg.RoMask) | (val &^ reg.RoMask)
	if reg.WriteCb != nil {
		reg.WriteCb(old, reg.Value)
	}
}

func (reg *Reg8) Write8(addr uint16, val uint8) {
	if reg.Flags&ReadOnlyFlag != 0 {
		log.ModBus.ErrorZ("write to readonly register").String("name", reg.Name).Hex16("addr", addr).End()
		return
	}
	reg.set(val)
}

func (reg *Reg8) Read8(addr uint16, peek bool) uint8 {
	if reg.Flags&WriteOnlyFlag != 0 {
		if !peek {
			log.ModBus.ErrorZ("read from writeonly register").String("name", reg.Name).Hex16("addr", addr).End()
		}
		return 0
	}
	if peek {
		if reg.PeekCb != nil {
			return reg.PeekCb(reg.Value)
		}
		return reg.Value
	}
	if reg.ReadCb != nil {
		return reg.ReadCb(reg.Value)
	}
	return reg.Value
}

// GetBit reports whether bit n of the register's current value is set.
func (reg *Reg8) GetBit(n uint8) bool {
	return reg.Value&(1<<n) != 0
}

// GetBiti is GetBit as a 0/1 integer, handy for shifting into a result byte.
func (reg *Reg8) GetBiti(n uint8) uint8 {
	if reg.GetBit(n) {
		return 1
	}
	return 0
}

// SetBit and ClearBit mutate Value directly, bypassing WriteCb: used for
// hardware-driven state changes (vblank, sprite0 hit) rather than CPU writes.
func (reg *Reg8) SetBit(n uint8) {
	reg.Value |= 1 << n
}

func (reg *Reg8) ClearBit(n uint8) {
	reg.Value &^= 1 << n
}

func (reg *Reg8) ClearBits(mask uint8) {
	reg.Value &^= mask
}
