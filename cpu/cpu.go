// Package cpu implements the NES's 6502-derived CPU core: official and
// unofficial opcodes, interrupt edge detection, and BRK/IRQ/NMI dispatch.
package cpu

import (
	"io"

	"nescore/hwdefs"
	"nescore/internal/log"
)

// Vector addresses.
const (
	NMIVector   = uint16(0xFFFA)
	ResetVector = uint16(0xFFFC)
	IRQVector   = uint16(0xFFFE)
)

// Bus is the CPU's view of the memory-mapped address space: RAM, PPU
// registers, APU/IO registers and cartridge space through the mapper.
type Bus interface {
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

// Core is the 6502 register file and execution engine. It owns no memory
// itself; all access goes through Bus.
type Core struct {
	Bus Bus

	A, X, Y, SP uint8
	PC          uint16
	P           Flags

	Cycles int64 // total CPU cycles since power-up/reset.

	// interrupt edge-detection state, polled once per instruction boundary.
	nmiLine, prevNmiLine bool
	needNmi              bool
	runIRQ               bool
	irqFlag              hwdefs.IRQSource

	halted bool

	tracer *tracer
	dbg    Debugger
}

// NewCore creates a CPU core wired to the given bus, at power-up register
// values (the actual PC is set by Reset, which needs the bus populated
// first to read the reset vector).
func NewCore(bus Bus) *Core {
	return &Core{
		Bus: bus,
		SP:  0xFD,
		dbg: nopDebugger{},
	}
}

// Reset performs either a soft reset (the RESET line, SP -= 3, sets I) or a
// hard reset / power-up (zeroes A/X/Y, SP = 0xFD, P = 0 then sets I). Both
// forms re-read the reset vector and burn the 6-cycle startup sequence real
// hardware takes before fetching the first opcode.
func (c *Core) Reset(soft bool) {
	if soft {
		c.SP -= 0x03
		c.P.SetIntDisable(true)
	} else {
		c.A, c.X, c.Y = 0, 0, 0
		c.runIRQ = false
		c.SP = 0xFD
		c.P = 0
		c.P.SetIntDisable(true)
	}

	// Read directly, bypassing the cycle-accounting Read8, to avoid side
	// effects (mapper IRQ counters etc.) from ticking during the vector
	// fetch itself.
	lo := c.Bus.Read8(ResetVector, true)
	hi := c.Bus.Read8(ResetVector+1, true)
	c.PC = uint16(hi)<<8 | uint16(lo)

	c.dbg.Reset()

	c.nmiLine = false
	c.prevNmiLine = false
	c.needNmi = false
	c.halted = false

	c.Cycles += 6
}

// Step executes exactly one instruction (including any pending interrupt
// dispatch found at the previous instruction boundary) and returns the
// number of CPU cycles it took.
func (c *Core) Step() int64 {
	before := c.Cycles

	if c.halted {
		c.Cycles++
		return c.Cycles - before
	}

	// Interrupts pending from the previous instruction's edge detection are
	// serviced before the next opcode is fetched, giving a one-instruction
	// dispatch latency in place of the hardware's one-cycle latency (see
	// the console package's simplified per-instruction interleave).
	if c.needNmi || c.runIRQ {
		c.dispatchIRQ()
		return c.Cycles - before
	}

	opcode := c.Read8(c.PC)
	c.traceOp()
	c.PC++
	opcodeTable[opcode](c)

	c.handleInterrupts()

	return c.Cycles - before
}

// Halted reports whether the CPU has executed a JAM/KIL opcode and will no
// longer fetch instructions until Reset.
func (c *Core) Halted() bool { return c.halted }

func (c *Core) halt() {
	c.halted = true
	log.ModCPU.WarnZ("cpu halted on illegal opcode").Hex16("pc", c.PC).End()
}

// StealCycles accounts for cycles consumed by OAM DMA or DMC DMA, which
// steal bus cycles without the CPU fetching or executing anything.
func (c *Core) StealCycles(n int64) {
	c.Cycles += n
}

// SetNMI sets the level of the NMI line. The edge detector in
// handleInterrupts latches needNmi on the 0->1 transition; the PPU holds
// this high for the duration of vblank and clears it at the next frame.
func (c *Core) SetNMI(asserted bool) {
	c.nmiLine = asserted
}

// RequestIRQ asserts one of the (possibly several) IRQ sources. The
// combined IRQ line stays high until every source calls ClearIRQ.
func (c *Core) RequestIRQ(src hwdefs.IRQSource) {
	c.irqFlag |= src
}

func (c *Core) ClearIRQ(src hwdefs.IRQSource) {
	c.irqFlag &^= src
}

func (c *Core) handleInterrupts() {
	// needNmi latches on the NMI line's falling... rather, rising edge (the
	// line is active-low on real hardware; here true means asserted) and
	// stays set until dispatchIRQ services it.
	if !c.prevNmiLine && c.nmiLine {
		c.needNmi = true
	}
	c.prevNmiLine = c.nmiLine

	c.runIRQ = c.irqFlag != 0 && !c.P.IntDisable()
}

func (c *Core) Read8(addr uint16) uint8 {
	val := c.Bus.Read8(addr, false)
	c.Cycles++
	return val
}

func (c *Core) Peek8(addr uint16) uint8 {
	return c.Bus.Read8(addr, true)
}

func (c *Core) Write8(addr uint16, val uint8) {
	c.Bus.Write8(addr, val)
	c.Cycles++
}

// Read16 and Read16Bugged both read a little-endian word, but Read16Bugged
// reproduces the indirect-JMP page-wrap bug: if the low byte of the pointer
// is 0xFF, the high byte is fetched from the start of the same page rather
// than the next one.
func (c *Core) Read16(addr uint16) uint16 {
	lo := c.Read8(addr)
	hi := c.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *Core) Read16Bugged(addr uint16) uint16 {
	lo := c.Read8(addr)
	var hiAddr uint16
	if addr&0x00FF == 0x00FF {
		hiAddr = addr &^ 0x00FF
	} else {
		hiAddr = addr + 1
	}
	hi := c.Read8(hiAddr)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *Core) Write16(addr uint16, val uint16) {
	c.Write8(addr, uint8(val&0xFF))
	c.Write8(addr+1, uint8(val>>8))
}

/* stack operations; SP always addresses 0x0100+SP */

func (c *Core) push8(val uint8) {
	c.Write8(0x0100+uint16(c.SP), val)
	c.SP--
}

func (c *Core) push16(val uint16) {
	c.push8(uint8(val >> 8))
	c.push8(uint8(val & 0xFF))
}

func (c *Core) pull8() uint8 {
	c.SP++
	return c.Read8(0x0100 + uint16(c.SP))
}

func (c *Core) pull16() uint16 {
	lo := c.pull8()
	hi := c.pull8()
	return uint16(hi)<<8 | uint16(lo)
}

/* interrupt dispatch */

func brk(c *Core) {
	_ = c.Read8(c.PC) // padding byte, discarded even for BRK with no operand.
	c.push16(c.PC + 1)

	p := c.P
	p.SetBreak(true)
	p.SetUnused(true)

	if c.needNmi {
		c.needNmi = false
		c.push8(uint8(p))
		c.P.SetIntDisable(true)
		c.PC = c.Read16(NMIVector)
	} else {
		c.push8(uint8(p))
		c.P.SetIntDisable(true)
		c.PC = c.Read16(IRQVector)
	}
}

func (c *Core) dispatchIRQ() {
	c.Read8(c.PC) // two dummy reads of the not-yet-incremented PC.
	c.Read8(c.PC)

	prevPC := c.PC
	c.push16(c.PC)

	if c.needNmi {
		c.needNmi = false
		p := c.P
		p.SetUnused(true)
		c.push8(uint8(p))
		c.P.SetIntDisable(true)
		c.PC = c.Read16(NMIVector)
		c.dbg.Interrupt(prevPC, c.PC, true)
	} else {
		p := c.P
		p.SetUnused(true)
		c.push8(uint8(p))
		c.P.SetIntDisable(true)
		c.PC = c.Read16(IRQVector)
		c.dbg.Interrupt(prevPC, c.PC, false)
	}
}

/* tracing / debugging */

func (c *Core) SetTraceOutput(w io.Writer) {
	c.tracer = &tracer{w: w, c: c}
}

func (c *Core) SetDebugger(dbg Debugger) {
	if dbg == nil {
		dbg = nopDebugger{}
	}
	c.dbg = dbg
}

func (c *Core) traceOp() {
	if c.tracer != nil {
		c.tracer.write()
	}
	c.dbg.Trace(c.PC)
}
