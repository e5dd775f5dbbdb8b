package cpu

// opcodeTable dispatches the 256 possible opcode bytes, official 6502
// instructions plus the unofficial combinations commercial NES games and
// the CPU test ROMs rely on (LAX, SAX, DCP, ISC, SLO, RLA, SRE, RRA, ANC,
// ALR, ARR, AXS/SBX, and the various NOP/SKB/IGN forms).
var opcodeTable [256]func(*Core)

func init() {
	for i := range opcodeTable {
		opcodeTable[i] = jam
	}

	// Loads / stores.
	opcodeTable[0xA9] = op1(ld(regA), modeImmediate)
	opcodeTable[0xA5] = op1(ld(regA), modeZeroPage)
	opcodeTable[0xB5] = op1(ld(regA), modeZeroPageX)
	opcodeTable[0xAD] = op1(ld(regA), modeAbsolute)
	opcodeTable[0xBD] = op1(ld(regA), modeAbsoluteX)
	opcodeTable[0xB9] = op1(ld(regA), modeAbsoluteY)
	opcodeTable[0xA1] = op1(ld(regA), modeIndirectX)
	opcodeTable[0xB1] = op1(ld(regA), modeIndirectY)

	opcodeTable[0xA2] = op1(ld(regX), modeImmediate)
	opcodeTable[0xA6] = op1(ld(regX), modeZeroPage)
	opcodeTable[0xB6] = op1(ld(regX), modeZeroPageY)
	opcodeTable[0xAE] = op1(ld(regX), modeAbsolute)
	opcodeTable[0xBE] = op1(ld(regX), modeAbsoluteY)

	opcodeTable[0xA0] = op1(ld(regY), modeImmediate)
	opcodeTable[0xA4] = op1(ld(regY), modeZeroPage)
	opcodeTable[0xB4] = op1(ld(regY), modeZeroPageX)
	opcodeTable[0xAC] = op1(ld(regY), modeAbsolute)
	opcodeTable[0xBC] = op1(ld(regY), modeAbsoluteX)

	opcodeTable[0x85] = opSt(st(regA), modeZeroPage)
	opcodeTable[0x95] = opSt(st(regA), modeZeroPageX)
	opcodeTable[0x8D] = opSt(st(regA), modeAbsolute)
	opcodeTable[0x9D] = opSt(st(regA), modeAbsoluteXStore)
	opcodeTable[0x99] = opSt(st(regA), modeAbsoluteYStore)
	opcodeTable[0x81] = opSt(st(regA), modeIndirectX)
	opcodeTable[0x91] = opSt(st(regA), modeIndirectYStore)

	opcodeTable[0x86] = opSt(st(regX), modeZeroPage)
	opcodeTable[0x96] = opSt(st(regX), modeZeroPageY)
	opcodeTable[0x8E] = opSt(st(regX), modeAbsolute)

	opcodeTable[0x84] = opSt(st(regY), modeZeroPage)
	opcodeTable[0x94] = opSt(st(regY), modeZeroPageX)
	opcodeTable[0x8C] = opSt(st(regY), modeAbsolute)

	// Transfers.
	opcodeTable[0xAA] = transfer(regA, regX, true)
	opcodeTable[0xA8] = transfer(regA, regY, true)
	opcodeTable[0xBA] = transferSP
	opcodeTable[0x8A] = transfer(regX, regA, true)
	opcodeTable[0x9A] = txs // TXS: no flags touched.
	opcodeTable[0x98] = transfer(regY, regA, true)

	// Stack.
	opcodeTable[0x48] = pha
	opcodeTable[0x08] = php
	opcodeTable[0x68] = pla
	opcodeTable[0x28] = plp

	// ALU: AND / ORA / EOR / ADC / SBC.
	opcodeTable[0x29] = op1(alu(and), modeImmediate)
	opcodeTable[0x25] = op1(alu(and), modeZeroPage)
	opcodeTable[0x35] = op1(alu(and), modeZeroPageX)
	opcodeTable[0x2D] = op1(alu(and), modeAbsolute)
	opcodeTable[0x3D] = op1(alu(and), modeAbsoluteX)
	opcodeTable[0x39] = op1(alu(and), modeAbsoluteY)
	opcodeTable[0x21] = op1(alu(and), modeIndirectX)
	opcodeTable[0x31] = op1(alu(and), modeIndirectY)

	opcodeTable[0x09] = op1(alu(ora), modeImmediate)
	opcodeTable[0x05] = op1(alu(ora), modeZeroPage)
	opcodeTable[0x15] = op1(alu(ora), modeZeroPageX)
	opcodeTable[0x0D] = op1(alu(ora), modeAbsolute)
	opcodeTable[0x1D] = op1(alu(ora), modeAbsoluteX)
	opcodeTable[0x19] = op1(alu(ora), modeAbsoluteY)
	opcodeTable[0x01] = op1(alu(ora), modeIndirectX)
	opcodeTable[0x11] = op1(alu(ora), modeIndirectY)

	opcodeTable[0x49] = op1(alu(eor), modeImmediate)
	opcodeTable[0x45] = op1(alu(eor), modeZeroPage)
	opcodeTable[0x55] = op1(alu(eor), modeZeroPageX)
	opcodeTable[0x4D] = op1(alu(eor), modeAbsolute)
	opcodeTable[0x5D] = op1(alu(eor), modeAbsoluteX)
	opcodeTable[0x59] = op1(alu(eor), modeAbsoluteY)
	opcodeTable[0x41] = op1(alu(eor), modeIndirectX)
	opcodeTable[0x51] = op1(alu(eor), modeIndirectY)

	opcodeTable[0x69] = op1(adc, modeImmediate)
	opcodeTable[0x65] = op1(adc, modeZeroPage)
	opcodeTable[0x75] = op1(adc, modeZeroPageX)
	opcodeTable[0x6D] = op1(adc, modeAbsolute)
	opcodeTable[0x7D] = op1(adc, modeAbsoluteX)
	opcodeTable[0x79] = op1(adc, modeAbsoluteY)
	opcodeTable[0x61] = op1(adc, modeIndirectX)
	opcodeTable[0x71] = op1(adc, modeIndirectY)

	opcodeTable[0xE9] = op1(sbc, modeImmediate)
	opcodeTable[0xE5] = op1(sbc, modeZeroPage)
	opcodeTable[0xF5] = op1(sbc, modeZeroPageX)
	opcodeTable[0xED] = op1(sbc, modeAbsolute)
	opcodeTable[0xFD] = op1(sbc, modeAbsoluteX)
	opcodeTable[0xF9] = op1(sbc, modeAbsoluteY)
	opcodeTable[0xE1] = op1(sbc, modeIndirectX)
	opcodeTable[0xF1] = op1(sbc, modeIndirectY)
	opcodeTable[0xEB] = op1(sbc, modeImmediate) // unofficial SBC duplicate.

	// Compares.
	opcodeTable[0xC9] = op1(cmp(regA), modeImmediate)
	opcodeTable[0xC5] = op1(cmp(regA), modeZeroPage)
	opcodeTable[0xD5] = op1(cmp(regA), modeZeroPageX)
	opcodeTable[0xCD] = op1(cmp(regA), modeAbsolute)
	opcodeTable[0xDD] = op1(cmp(regA), modeAbsoluteX)
	opcodeTable[0xD9] = op1(cmp(regA), modeAbsoluteY)
	opcodeTable[0xC1] = op1(cmp(regA), modeIndirectX)
	opcodeTable[0xD1] = op1(cmp(regA), modeIndirectY)

	opcodeTable[0xE0] = op1(cmp(regX), modeImmediate)
	opcodeTable[0xE4] = op1(cmp(regX), modeZeroPage)
	opcodeTable[0xEC] = op1(cmp(regX), modeAbsolute)

	opcodeTable[0xC0] = op1(cmp(regY), modeImmediate)
	opcodeTable[0xC4] = op1(cmp(regY), modeZeroPage)
	opcodeTable[0xCC] = op1(cmp(regY), modeAbsolute)

	// Increments / decrements.
	opcodeTable[0xE6] = opRMW(incMem, modeZeroPage)
	opcodeTable[0xF6] = opRMW(incMem, modeZeroPageX)
	opcodeTable[0xEE] = opRMW(incMem, modeAbsolute)
	opcodeTable[0xFE] = opRMW(incMem, modeAbsoluteXStore)

	opcodeTable[0xC6] = opRMW(decMem, modeZeroPage)
	opcodeTable[0xD6] = opRMW(decMem, modeZeroPageX)
	opcodeTable[0xCE] = opRMW(decMem, modeAbsolute)
	opcodeTable[0xDE] = opRMW(decMem, modeAbsoluteXStore)

	opcodeTable[0xE8] = incReg(regX)
	opcodeTable[0xC8] = incReg(regY)
	opcodeTable[0xCA] = decReg(regX)
	opcodeTable[0x88] = decReg(regY)

	// Shifts / rotates.
	opcodeTable[0x0A] = shiftAcc(asl)
	opcodeTable[0x06] = opRMW(asl, modeZeroPage)
	opcodeTable[0x16] = opRMW(asl, modeZeroPageX)
	opcodeTable[0x0E] = opRMW(asl, modeAbsolute)
	opcodeTable[0x1E] = opRMW(asl, modeAbsoluteXStore)

	opcodeTable[0x4A] = shiftAcc(lsr)
	opcodeTable[0x46] = opRMW(lsr, modeZeroPage)
	opcodeTable[0x56] = opRMW(lsr, modeZeroPageX)
	opcodeTable[0x4E] = opRMW(lsr, modeAbsolute)
	opcodeTable[0x5E] = opRMW(lsr, modeAbsoluteXStore)

	opcodeTable[0x2A] = shiftAcc(rol)
	opcodeTable[0x26] = opRMW(rol, modeZeroPage)
	opcodeTable[0x36] = opRMW(rol, modeZeroPageX)
	opcodeTable[0x2E] = opRMW(rol, modeAbsolute)
	opcodeTable[0x3E] = opRMW(rol, modeAbsoluteXStore)

	opcodeTable[0x6A] = shiftAcc(ror)
	opcodeTable[0x66] = opRMW(ror, modeZeroPage)
	opcodeTable[0x76] = opRMW(ror, modeZeroPageX)
	opcodeTable[0x6E] = opRMW(ror, modeAbsolute)
	opcodeTable[0x7E] = opRMW(ror, modeAbsoluteXStore)

	// Jumps / calls / returns.
	opcodeTable[0x4C] = jmp
	opcodeTable[0x6C] = jmpIndirect
	opcodeTable[0x20] = jsr
	opcodeTable[0x60] = rts
	opcodeTable[0x40] = rti
	opcodeTable[0x00] = brk

	// Branches.
	opcodeTable[0x90] = branchIf(func(c *Core) bool { return !c.P.Carry() })
	opcodeTable[0xB0] = branchIf(func(c *Core) bool { return c.P.Carry() })
	opcodeTable[0xF0] = branchIf(func(c *Core) bool { return c.P.Zero() })
	opcodeTable[0xD0] = branchIf(func(c *Core) bool { return !c.P.Zero() })
	opcodeTable[0x10] = branchIf(func(c *Core) bool { return !c.P.Negative() })
	opcodeTable[0x30] = branchIf(func(c *Core) bool { return c.P.Negative() })
	opcodeTable[0x50] = branchIf(func(c *Core) bool { return !c.P.Overflow() })
	opcodeTable[0x70] = branchIf(func(c *Core) bool { return c.P.Overflow() })

	// Flag ops.
	opcodeTable[0x18] = setFlag(FlagCarry, false)
	opcodeTable[0x38] = setFlag(FlagCarry, true)
	opcodeTable[0xD8] = setFlag(FlagDecimal, false)
	opcodeTable[0xF8] = setFlag(FlagDecimal, true)
	opcodeTable[0x58] = setFlag(FlagIntDis, false)
	opcodeTable[0x78] = setFlag(FlagIntDis, true)
	opcodeTable[0xB8] = setFlag(FlagOverflow, false)

	// BIT.
	opcodeTable[0x24] = op1(bit, modeZeroPage)
	opcodeTable[0x2C] = op1(bit, modeAbsolute)

	// NOP and its many unofficial aliases.
	opcodeTable[0xEA] = implied(func(c *Core) {})
	for _, op := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		opcodeTable[op] = implied(func(c *Core) {})
	}
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		opcodeTable[op] = op1(func(c *Core, addr uint16) {}, modeImmediate) // SKB
	}
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		opcodeTable[op] = op1(func(c *Core, addr uint16) {}, modeZeroPage)
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		opcodeTable[op] = op1(func(c *Core, addr uint16) {}, modeZeroPageX)
	}
	opcodeTable[0x0C] = op1(func(c *Core, addr uint16) {}, modeAbsolute) // IGN
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		opcodeTable[op] = op1(func(c *Core, addr uint16) {}, modeAbsoluteX)
	}

	// Unofficial combined opcodes.
	opcodeTable[0x4B] = op1(alr, modeImmediate)
	opcodeTable[0x0B] = op1(anc, modeImmediate)
	opcodeTable[0x2B] = op1(anc, modeImmediate)
	opcodeTable[0x6B] = op1(arr, modeImmediate)
	opcodeTable[0xCB] = op1(axs, modeImmediate)

	opcodeTable[0xA7] = op1(lax, modeZeroPage)
	opcodeTable[0xB7] = op1(lax, modeZeroPageY)
	opcodeTable[0xAF] = op1(lax, modeAbsolute)
	opcodeTable[0xBF] = op1(lax, modeAbsoluteY)
	opcodeTable[0xA3] = op1(lax, modeIndirectX)
	opcodeTable[0xB3] = op1(lax, modeIndirectY)

	opcodeTable[0x87] = opSt(sax, modeZeroPage)
	opcodeTable[0x97] = opSt(sax, modeZeroPageY)
	opcodeTable[0x8F] = opSt(sax, modeAbsolute)
	opcodeTable[0x83] = opSt(sax, modeIndirectX)

	opcodeTable[0xC7] = opRMW(dcp, modeZeroPage)
	opcodeTable[0xD7] = opRMW(dcp, modeZeroPageX)
	opcodeTable[0xCF] = opRMW(dcp, modeAbsolute)
	opcodeTable[0xDF] = opRMW(dcp, modeAbsoluteXStore)
	opcodeTable[0xDB] = opRMW(dcp, modeAbsoluteYStore)
	opcodeTable[0xC3] = opRMW(dcp, modeIndirectX)
	opcodeTable[0xD3] = opRMW(dcp, modeIndirectYStore)

	opcodeTable[0xE7] = opRMW(isc, modeZeroPage)
	opcodeTable[0xF7] = opRMW(isc, modeZeroPageX)
	opcodeTable[0xEF] = opRMW(isc, modeAbsolute)
	opcodeTable[0xFF] = opRMW(isc, modeAbsoluteXStore)
	opcodeTable[0xFB] = opRMW(isc, modeAbsoluteYStore)
	opcodeTable[0xE3] = opRMW(isc, modeIndirectX)
	opcodeTable[0xF3] = opRMW(isc, modeIndirectYStore)

	opcodeTable[0x07] = opRMW(slo, modeZeroPage)
	opcodeTable[0x17] = opRMW(slo, modeZeroPageX)
	opcodeTable[0x0F] = opRMW(slo, modeAbsolute)
	opcodeTable[0x1F] = opRMW(slo, modeAbsoluteXStore)
	opcodeTable[0x1B] = opRMW(slo, modeAbsoluteYStore)
	opcodeTable[0x03] = opRMW(slo, modeIndirectX)
	opcodeTable[0x13] = opRMW(slo, modeIndirectYStore)

	opcodeTable[0x27] = opRMW(rla, modeZeroPage)
	opcodeTable[0x37] = opRMW(rla, modeZeroPageX)
	opcodeTable[0x2F] = opRMW(rla, modeAbsolute)
	opcodeTable[0x3F] = opRMW(rla, modeAbsoluteXStore)
	opcodeTable[0x3B] = opRMW(rla, modeAbsoluteYStore)
	opcodeTable[0x23] = opRMW(rla, modeIndirectX)
	opcodeTable[0x33] = opRMW(rla, modeIndirectYStore)

	opcodeTable[0x47] = opRMW(sre, modeZeroPage)
	opcodeTable[0x57] = opRMW(sre, modeZeroPageX)
	opcodeTable[0x4F] = opRMW(sre, modeAbsolute)
	opcodeTable[0x5F] = opRMW(sre, modeAbsoluteXStore)
	opcodeTable[0x5B] = opRMW(sre, modeAbsoluteYStore)
	opcodeTable[0x43] = opRMW(sre, modeIndirectX)
	opcodeTable[0x53] = opRMW(sre, modeIndirectYStore)

	opcodeTable[0x67] = opRMW(rra, modeZeroPage)
	opcodeTable[0x77] = opRMW(rra, modeZeroPageX)
	opcodeTable[0x6F] = opRMW(rra, modeAbsolute)
	opcodeTable[0x7F] = opRMW(rra, modeAbsoluteXStore)
	opcodeTable[0x7B] = opRMW(rra, modeAbsoluteYStore)
	opcodeTable[0x63] = opRMW(rra, modeIndirectX)
	opcodeTable[0x73] = opRMW(rra, modeIndirectYStore)
}

/* addressing-mode adapters: each returns the effective address. */

type modeFunc func(*Core) uint16

func modeImmediate(c *Core) uint16  { return c.addrImmediate() }
func modeZeroPage(c *Core) uint16   { return c.addrZeroPage() }
func modeZeroPageX(c *Core) uint16  { return c.addrZeroPageX() }
func modeZeroPageY(c *Core) uint16  { return c.addrZeroPageY() }
func modeAbsolute(c *Core) uint16   { return c.addrAbsolute() }
func modeAbsoluteX(c *Core) uint16  { return c.addrAbsoluteX(false) }
func modeAbsoluteY(c *Core) uint16  { return c.addrAbsoluteY(false) }
func modeIndirectX(c *Core) uint16  { return c.addrIndirectX() }
func modeIndirectY(c *Core) uint16  { return c.addrIndirectY(false) }

// *Store variants always pay the extra dummy-read cycle: stores and
// read-modify-writes can't skip it just because indexing didn't cross a
// page, since the effective address write always happens on the last cycle.
func modeAbsoluteXStore(c *Core) uint16 { return c.addrAbsoluteX(true) }
func modeAbsoluteYStore(c *Core) uint16 { return c.addrAbsoluteY(true) }
func modeIndirectYStore(c *Core) uint16 { return c.addrIndirectY(true) }

// op1 wraps a (value-consuming) instruction body with an addressing mode:
// fetch the effective address, then run fn, which reads the operand itself.
func op1(fn func(c *Core, addr uint16), mode modeFunc) func(*Core) {
	return func(c *Core) {
		addr := mode(c)
		fn(c, addr)
	}
}

// opSt wraps a store-family instruction: the callback receives the address
// to write to and decides what to write (used also by SAX).
func opSt(fn func(c *Core, addr uint16), mode modeFunc) func(*Core) {
	return func(c *Core) {
		addr := mode(c)
		fn(c, addr)
	}
}

// opRMW wraps a read-modify-write instruction: read the old value, run fn
// to compute the new one, write it back. The dummy write-back of the old
// value (real 6502 RMW timing) is reproduced explicitly.
func opRMW(fn func(c *Core, v uint8) uint8, mode modeFunc) func(*Core) {
	return func(c *Core) {
		addr := mode(c)
		old := c.Read8(addr)
		c.Write8(addr, old) // dummy write-back of the unmodified value.
		nv := fn(c, old)
		c.Write8(addr, nv)
	}
}

func implied(fn func(c *Core)) func(*Core) {
	return func(c *Core) {
		c.Read8(c.PC) // implied-mode opcodes still burn one bus cycle.
		fn(c)
	}
}

/* register pointers used as generic ld/st/transfer targets */

func regA(c *Core) *uint8 { return &c.A }
func regX(c *Core) *uint8 { return &c.X }
func regY(c *Core) *uint8 { return &c.Y }

func ld(reg func(*Core) *uint8) func(*Core, uint16) {
	return func(c *Core, addr uint16) {
		v := c.Read8(addr)
		*reg(c) = v
		c.P.SetNZ(v)
	}
}

func st(reg func(*Core) *uint8) func(*Core, uint16) {
	return func(c *Core, addr uint16) {
		c.Write8(addr, *reg(c))
	}
}

func transfer(src, dst func(*Core) *uint8, setFlags bool) func(*Core) {
	return implied(func(c *Core) {
		v := *src(c)
		if dst != nil {
			*dst(c) = v
		}
		if setFlags {
			c.P.SetNZ(v)
		}
	})
}

func transferSP(c *Core) {
	implied(func(c *Core) {
		c.X = c.SP
		c.P.SetNZ(c.X)
	})(c)
}

func txs(c *Core) {
	implied(func(c *Core) {
		c.SP = c.X
	})(c)
}

func pha(c *Core) {
	implied(func(c *Core) { c.push8(c.A) })(c)
}

func php(c *Core) {
	implied(func(c *Core) {
		p := c.P
		p.SetBreak(true)
		p.SetUnused(true)
		c.push8(uint8(p))
	})(c)
}

func pla(c *Core) {
	c.Read8(c.PC)
	c.SP++
	c.Read8(0x0100 + uint16(c.SP))
	c.SP--
	c.A = c.pull8()
	c.P.SetNZ(c.A)
}

func plp(c *Core) {
	c.Read8(c.PC)
	c.SP++
	c.Read8(0x0100 + uint16(c.SP))
	c.SP--
	v := c.pull8()
	c.P = Flags(v)
	c.P.SetUnused(true)
}

/* ALU */

func and(a, v uint8) uint8 { return a & v }
func ora(a, v uint8) uint8 { return a | v }
func eor(a, v uint8) uint8 { return a ^ v }

func alu(fn func(a, v uint8) uint8) func(*Core, uint16) {
	return func(c *Core, addr uint16) {
		v := c.Read8(addr)
		c.A = fn(c.A, v)
		c.P.SetNZ(c.A)
	}
}

func adc(c *Core, addr uint16) {
	v := c.Read8(addr)
	addWithCarry(c, v)
}

func addWithCarry(c *Core, v uint8) {
	carry := uint16(0)
	if c.P.Carry() {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	result := uint8(sum)
	c.P.SetOverflow((c.A^v)&0x80 == 0 && (c.A^result)&0x80 != 0)
	c.P.SetCarry(sum > 0xFF)
	c.A = result
	c.P.SetNZ(c.A)
}

func sbc(c *Core, addr uint16) {
	v := c.Read8(addr)
	addWithCarry(c, ^v)
}

func cmp(reg func(*Core) *uint8) func(*Core, uint16) {
	return func(c *Core, addr uint16) {
		v := c.Read8(addr)
		r := *reg(c)
		result := r - v
		c.P.SetCarry(r >= v)
		c.P.SetNZ(result)
	}
}

func bit(c *Core, addr uint16) {
	v := c.Read8(addr)
	c.P.SetZero(c.A&v == 0)
	c.P.SetNegative(v&0x80 != 0)
	c.P.SetOverflow(v&0x40 != 0)
}

/* inc/dec */

func incMem(c *Core, v uint8) uint8 {
	v++
	c.P.SetNZ(v)
	return v
}

func decMem(c *Core, v uint8) uint8 {
	v--
	c.P.SetNZ(v)
	return v
}

func incReg(reg func(*Core) *uint8) func(*Core) {
	return implied(func(c *Core) {
		r := reg(c)
		*r++
		c.P.SetNZ(*r)
	})
}

func decReg(reg func(*Core) *uint8) func(*Core) {
	return implied(func(c *Core) {
		r := reg(c)
		*r--
		c.P.SetNZ(*r)
	})
}

/* shifts/rotates: used both for accumulator mode and memory RMW */

func asl(c *Core, v uint8) uint8 {
	c.P.SetCarry(v&0x80 != 0)
	v <<= 1
	c.P.SetNZ(v)
	return v
}

func lsr(c *Core, v uint8) uint8 {
	c.P.SetCarry(v&0x01 != 0)
	v >>= 1
	c.P.SetNZ(v)
	return v
}

func rol(c *Core, v uint8) uint8 {
	carryIn := uint8(0)
	if c.P.Carry() {
		carryIn = 1
	}
	c.P.SetCarry(v&0x80 != 0)
	v = v<<1 | carryIn
	c.P.SetNZ(v)
	return v
}

func ror(c *Core, v uint8) uint8 {
	carryIn := uint8(0)
	if c.P.Carry() {
		carryIn = 0x80
	}
	c.P.SetCarry(v&0x01 != 0)
	v = v>>1 | carryIn
	c.P.SetNZ(v)
	return v
}

func shiftAcc(fn func(*Core, uint8) uint8) func(*Core) {
	return implied(func(c *Core) {
		c.A = fn(c, c.A)
	})
}

/* jumps/calls/returns */

func jmp(c *Core) {
	c.PC = c.addrAbsolute()
}

func jmpIndirect(c *Core) {
	ptr := c.addrAbsolute()
	c.PC = c.Read16Bugged(ptr)
}

func jsr(c *Core) {
	lo := c.fetch8()
	c.Read8(0x0100 + uint16(c.SP)) // internal dummy cycle.
	c.push16(c.PC)
	hi := c.fetch8()
	c.PC = uint16(hi)<<8 | uint16(lo)
}

func rts(c *Core) {
	c.Read8(c.PC)
	c.SP++
	c.Read8(0x0100 + uint16(c.SP))
	c.SP--
	ret := c.pull16()
	c.PC = ret + 1
	c.Read8(c.PC - 1)
}

func rti(c *Core) {
	c.Read8(c.PC)
	c.SP++
	c.Read8(0x0100 + uint16(c.SP))
	c.SP--
	v := c.pull8()
	c.P = Flags(v)
	c.P.SetUnused(true)
	c.PC = c.pull16()
}

func branchIf(cond func(*Core) bool) func(*Core) {
	return func(c *Core) {
		c.branch(cond(c))
	}
}

func setFlag(mask Flags, v bool) func(*Core) {
	return implied(func(c *Core) {
		c.P.set(mask, v)
	})
}

func jam(c *Core) {
	c.PC--
	c.halt()
}

/* unofficial opcodes */

func alr(c *Core, addr uint16) {
	v := c.Read8(addr)
	c.A &= v
	c.P.SetCarry(c.A&0x01 != 0)
	c.A >>= 1
	c.P.SetNZ(c.A)
}

func anc(c *Core, addr uint16) {
	v := c.Read8(addr)
	c.A &= v
	c.P.SetNZ(c.A)
	c.P.SetCarry(c.A&0x80 != 0)
}

func arr(c *Core, addr uint16) {
	v := c.Read8(addr)
	c.A &= v
	carryIn := uint8(0)
	if c.P.Carry() {
		carryIn = 0x80
	}
	c.A = c.A>>1 | carryIn
	c.P.SetNZ(c.A)
	c.P.SetCarry(c.A&0x40 != 0)
	c.P.SetOverflow((c.A&0x40 != 0) != (c.A&0x20 != 0))
}

func axs(c *Core, addr uint16) {
	v := c.Read8(addr)
	and := c.A & c.X
	result := and - v
	c.P.SetCarry(and >= v)
	c.X = result
	c.P.SetNZ(c.X)
}

func lax(c *Core, addr uint16) {
	v := c.Read8(addr)
	c.A = v
	c.X = v
	c.P.SetNZ(v)
}

func sax(c *Core, addr uint16) {
	c.Write8(addr, c.A&c.X)
}

func dcp(c *Core, v uint8) uint8 {
	v--
	c.P.SetCarry(c.A >= v)
	c.P.SetNZ(c.A - v)
	return v
}

func isc(c *Core, v uint8) uint8 {
	v++
	addWithCarry(c, ^v)
	return v
}

func slo(c *Core, v uint8) uint8 {
	c.P.SetCarry(v&0x80 != 0)
	v <<= 1
	c.A |= v
	c.P.SetNZ(c.A)
	return v
}

func rla(c *Core, v uint8) uint8 {
	carryIn := uint8(0)
	if c.P.Carry() {
		carryIn = 1
	}
	c.P.SetCarry(v&0x80 != 0)
	v = v<<1 | carryIn
	c.A &= v
	c.P.SetNZ(c.A)
	return v
}

func sre(c *Core, v uint8) uint8 {
	c.P.SetCarry(v&0x01 != 0)
	v >>= 1
	c.A ^= v
	c.P.SetNZ(c.A)
	return v
}

func rra(c *Core, v uint8) uint8 {
	carryIn := uint8(0)
	if c.P.Carry() {
		carryIn = 0x80
	}
	c.P.SetCarry(v&0x01 != 0)
	v = v>>1 | carryIn
	addWithCarry(c, v)
	return v
}
