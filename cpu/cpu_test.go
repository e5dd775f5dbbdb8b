package cpu

import (
	"testing"

	"nescore/hwdefs"
)

// testBus is a flat 64 KiB RAM used to exercise the Core in isolation,
// without the PPU/APU/mapper wiring the console package provides.
type testBus struct {
	mem [0x10000]uint8
}

func (b *testBus) Read8(addr uint16, peek bool) uint8 { return b.mem[addr] }
func (b *testBus) Write8(addr uint16, val uint8)      { b.mem[addr] = val }

func newTestCore() (*Core, *testBus) {
	bus := new(testBus)
	return NewCore(bus), bus
}

func TestResetReadsVector(t *testing.T) {
	c, bus := newTestCore()
	bus.mem[ResetVector] = 0x00
	bus.mem[ResetVector+1] = 0xC0

	c.Reset(hardReset)

	if c.PC != 0xC000 {
		t.Errorf("PC = %04X, want C000", c.PC)
	}
	if c.SP != 0xFD {
		t.Errorf("SP = %02X, want FD", c.SP)
	}
	if !c.P.IntDisable() {
		t.Errorf("I flag should be set after reset")
	}
}

const hardReset = false

func TestLDAImmediateSetsFlags(t *testing.T) {
	c, bus := newTestCore()
	bus.mem[ResetVector] = 0x00
	bus.mem[ResetVector+1] = 0x80
	c.Reset(hardReset)

	bus.mem[0x8000] = 0xA9 // LDA #$00
	bus.mem[0x8001] = 0x00

	c.Step()

	if c.A != 0 {
		t.Errorf("A = %02X, want 00", c.A)
	}
	if !c.P.Zero() {
		t.Errorf("Z flag should be set after loading 0")
	}
}

func TestAdcOverflow(t *testing.T) {
	c, bus := newTestCore()
	bus.mem[ResetVector] = 0x00
	bus.mem[ResetVector+1] = 0x80
	c.Reset(hardReset)

	c.A = 0x7F // +127
	bus.mem[0x8000] = 0x69 // ADC #$01
	bus.mem[0x8001] = 0x01

	c.Step()

	if c.A != 0x80 {
		t.Errorf("A = %02X, want 80", c.A)
	}
	if !c.P.Overflow() {
		t.Errorf("V flag should be set: 127+1 overflows into negative")
	}
	if !c.P.Negative() {
		t.Errorf("N flag should be set")
	}
}

func TestBRKSetsInterruptVector(t *testing.T) {
	c, bus := newTestCore()
	bus.mem[ResetVector] = 0x00
	bus.mem[ResetVector+1] = 0x80
	c.Reset(hardReset)

	bus.mem[IRQVector] = 0x00
	bus.mem[IRQVector+1] = 0x90
	bus.mem[0x8000] = 0x00 // BRK

	c.Step()

	if c.PC != 0x9000 {
		t.Errorf("PC = %04X, want 9000 (IRQ vector)", c.PC)
	}
	if !c.P.IntDisable() {
		t.Errorf("I flag should be set after BRK")
	}
}

func TestNMITakesPriorityOverIRQ(t *testing.T) {
	c, bus := newTestCore()
	bus.mem[ResetVector] = 0x00
	bus.mem[ResetVector+1] = 0x80
	c.Reset(hardReset)

	bus.mem[NMIVector] = 0x00
	bus.mem[NMIVector+1] = 0xA0
	bus.mem[IRQVector] = 0x00
	bus.mem[IRQVector+1] = 0x90
	bus.mem[0x8000] = 0xEA // NOP

	c.P.SetIntDisable(false)
	c.RequestIRQ(hwdefs.External)
	c.SetNMI(true)
	c.Step() // edge-detect the NMI line, NOP executes.
	c.Step() // interrupt dispatched at this boundary.

	if c.PC != 0xA000 {
		t.Errorf("PC = %04X, want A000 (NMI vector)", c.PC)
	}
}

func TestStackWraps(t *testing.T) {
	c, bus := newTestCore()
	bus.mem[ResetVector] = 0x00
	bus.mem[ResetVector+1] = 0x80
	c.Reset(hardReset)

	c.SP = 0x00
	c.push8(0x42)
	if c.SP != 0xFF {
		t.Errorf("SP = %02X, want FF after underflow wrap", c.SP)
	}
	if bus.mem[0x0100] != 0x42 {
		t.Errorf("push8 should have written to 0x0100")
	}
}
