package console

import (
	"bytes"
	"testing"

	"nescore/hwdefs"
	"nescore/ines"
)

// buildNROM makes a 32 KiB NROM image whose reset vector points at a tight
// "JMP $8000" loop, enough to drive the console forward without crashing.
func buildNROM(t *testing.T) *ines.Rom {
	t.Helper()
	hdr := make([]byte, 16)
	copy(hdr, ines.Magic)
	hdr[4] = 2 // 32 KiB PRG
	hdr[5] = 1 // 8 KiB CHR

	prg := make([]byte, 0x8000)
	prg[0] = 0x4C // JMP $8000
	prg[1] = 0x00
	prg[2] = 0x80
	prg[0x7FFC] = 0x00 // reset vector -> $8000
	prg[0x7FFD] = 0x80

	chr := make([]byte, 0x2000)

	buf := append([]byte{}, hdr...)
	buf = append(buf, prg...)
	buf = append(buf, chr...)

	rom := new(ines.Rom)
	if _, err := rom.ReadFrom(bytes.NewReader(buf)); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	return rom
}

func TestNewConsoleResetsToProgramStart(t *testing.T) {
	c, err := New(buildNROM(t), 44100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.CPU.PC != 0x8000 {
		t.Errorf("PC after reset = %#04x, want 0x8000", c.CPU.PC)
	}
}

func TestFrameAdvancesPPUByOneFrame(t *testing.T) {
	c, err := New(buildNROM(t), 44100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Frame()
	if c.PPU.Scanline != 0 || c.PPU.Cycle != 0 {
		t.Errorf("after Frame(), PPU should be back at (0,0), got (%d,%d)", c.PPU.Scanline, c.PPU.Cycle)
	}
	if c.totalCycles == 0 {
		t.Errorf("expected the CPU to have run for a nonzero number of cycles")
	}
}

func TestSetButtonShiftsOutOnController1(t *testing.T) {
	c, err := New(buildNROM(t), 44100)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.SetButton(hwdefs.Port1, hwdefs.ButtonA, true)

	c.cpuBus.Write8(0x4016, 1) // strobe high: latch
	c.cpuBus.Write8(0x4016, 0) // strobe low: start shifting

	first := c.cpuBus.Read8(0x4016, false) & 1
	if first != 1 {
		t.Errorf("first bit out of $4016 should reflect button A held down, got %d", first)
	}
	second := c.cpuBus.Read8(0x4016, false) & 1
	if second != 0 {
		t.Errorf("second bit out of $4016 should be button B (not held), got %d", second)
	}
}
