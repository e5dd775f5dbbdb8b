package cpu

// Flags holds the 6502 processor status byte: N V _ B D I Z C, bit 7 down
// to bit 0. The unused bit (0x20) reads as 1 whenever the register is
// pushed to the stack, even though nothing in hardware ever sets it
// directly.
type Flags uint8

const (
	FlagCarry     Flags = 1 << 0
	FlagZero      Flags = 1 << 1
	FlagIntDis    Flags = 1 << 2
	FlagDecimal   Flags = 1 << 3
	FlagBreak     Flags = 1 << 4
	FlagUnused    Flags = 1 << 5
	FlagOverflow  Flags = 1 << 6
	FlagNegative  Flags = 1 << 7
)

func (p Flags) Carry() bool      { return p&FlagCarry != 0 }
func (p Flags) Zero() bool       { return p&FlagZero != 0 }
func (p Flags) IntDisable() bool { return p&FlagIntDis != 0 }
func (p Flags) Decimal() bool    { return p&FlagDecimal != 0 }
func (p Flags) Overflow() bool   { return p&FlagOverflow != 0 }
func (p Flags) Negative() bool   { return p&FlagNegative != 0 }

func (p *Flags) set(mask Flags, v bool) {
	if v {
		*p |= mask
	} else {
		*p &^= mask
	}
}

func (p *Flags) SetCarry(v bool)      { p.set(FlagCarry, v) }
func (p *Flags) SetZero(v bool)       { p.set(FlagZero, v) }
func (p *Flags) SetIntDisable(v bool) { p.set(FlagIntDis, v) }
func (p *Flags) SetDecimal(v bool)    { p.set(FlagDecimal, v) }
func (p *Flags) SetBreak(v bool)      { p.set(FlagBreak, v) }
func (p *Flags) SetUnused(v bool)     { p.set(FlagUnused, v) }
func (p *Flags) SetOverflow(v bool)   { p.set(FlagOverflow, v) }
func (p *Flags) SetNegative(v bool)   { p.set(FlagNegative, v) }

// SetNZ sets the Negative and Zero flags from the given result byte, the
// pattern every load/transfer/most ALU opcodes follow.
func (p *Flags) SetNZ(v uint8) {
	p.SetZero(v == 0)
	p.SetNegative(v&0x80 != 0)
}

func (p Flags) String() string {
	bits := "nv_bdizc"
	out := []byte(bits)
	tbl := [8]Flags{FlagNegative, FlagOverflow, FlagUnused, FlagBreak, FlagDecimal, FlagIntDis, FlagZero, FlagCarry}
	for i, f := range tbl {
		if p&f != 0 {
			out[i] = bits[i] - ('a' - 'A')
		}
	}
	return string(out)
}
