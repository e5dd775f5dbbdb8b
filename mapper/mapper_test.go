package mapper

import (
	"bytes"
	"testing"

	"nescore/hwdefs"
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// buildRom constructs a minimal iNES image with distinctive PRG/CHR fill
// bytes per bank, so mapper tests can tell which bank got selected just by
// reading a byte back off the bus.
func buildRom(t *testing.T, mapperNum byte, prgBanks, chrBanks byte, chrRAM bool) *ines.Rom {
	t.Helper()
	hdr := make([]byte, 16)
	copy(hdr, ines.Magic)
	hdr[4] = prgBanks
	if chrRAM {
		hdr[5] = 0
	} else {
		hdr[5] = chrBanks
	}
	hdr[6] = (mapperNum & 0x0F) << 4
	hdr[7] = mapperNum & 0xF0

	buf := append([]byte{}, hdr...)
	for i := byte(0); i < prgBanks; i++ {
		buf = append(buf, bytes.Repeat([]byte{i}, 16384)...)
	}
	if !chrRAM {
		for i := byte(0); i < chrBanks; i++ {
			buf = append(buf, bytes.Repeat([]byte{0x80 + i}, 8192)...)
		}
	}

	rom := new(ines.Rom)
	if _, err := rom.ReadFrom(bytes.NewReader(buf)); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	return rom
}

func newBuses() (*hwio.Table, *ppu.PPU) {
	cpuBus := hwio.NewTable("cpu")
	p := &ppu.PPU{Bus: hwio.NewTable("ppu")}
	return cpuBus, p
}

func TestNROMFixedMappingAndMirror(t *testing.T) {
	rom := buildRom(t, 0, 2, 1, false)
	cpuBus, p := newBuses()
	m, err := New(rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Wire(cpuBus, p)

	if got := cpuBus.Read8(0x8000, false); got != 0 {
		t.Errorf("first PRG bank byte = %d, want 0", got)
	}
	if got := cpuBus.Read8(0xC000, false); got != 1 {
		t.Errorf("second PRG bank byte = %d, want 1", got)
	}
	if got := p.Bus.Read8(0x0000, false); got != 0x80 {
		t.Errorf("CHR byte = %#x, want 0x80", got)
	}
}

func TestUxROMBankSwitch(t *testing.T) {
	rom := buildRom(t, 2, 4, 0, true)
	cpuBus, p := newBuses()
	m, _ := New(rom)
	m.Wire(cpuBus, p)

	if got := cpuBus.Read8(0xC000, false); got != 3 {
		t.Errorf("fixed last bank byte = %d, want 3 (bank 3 of 4)", got)
	}
	cpuBus.Write8(0x8000, 2)
	if got := cpuBus.Read8(0x8000, false); got != 2 {
		t.Errorf("switchable bank byte after selecting bank 2 = %d, want 2", got)
	}
}

func TestCNROMBankSwitch(t *testing.T) {
	rom := buildRom(t, 3, 2, 4, false)
	cpuBus, p := newBuses()
	m, _ := New(rom)
	m.Wire(cpuBus, p)

	cpuBus.Write8(0x8000, 0xFF) // masked by bus-conflict AND against PRG ROM byte 0
	if got := p.Bus.Read8(0x0000, false); got != 0x80 {
		t.Errorf("CHR bank after a bus-conflicted write = %#x, want bank 0 (0x80)", got)
	}
}

func TestMMC1ShiftRegisterSetsControl(t *testing.T) {
	rom := buildRom(t, 1, 8, 0, true)
	cpuBus, p := newBuses()
	m, _ := New(rom)
	m.Wire(cpuBus, p)

	// Load 0b00010 (vertical mirroring, PRG mode 0) into the control
	// register one bit at a time, LSB first.
	writeMMC1(cpuBus, 0x8000, 0x02)

	if m.Mirroring() != ines.MirrorVertical {
		t.Errorf("Mirroring() = %v, want vertical", m.Mirroring())
	}
}

func TestMMC1PRGBankSelect(t *testing.T) {
	rom := buildRom(t, 1, 8, 0, true)
	cpuBus, p := newBuses()
	m, _ := New(rom)
	m.Wire(cpuBus, p)

	writeMMC1(cpuBus, 0x8000, 0x0F) // control: PRG mode 3 (fix last bank at $C000)
	writeMMC1(cpuBus, 0xE000, 0x02) // PRG bank register = 2

	if got := cpuBus.Read8(0x8000, false); got != 2 {
		t.Errorf("switchable $8000 bank = %d, want 2", got)
	}
	if got := cpuBus.Read8(0xC000, false); got != 7 {
		t.Errorf("fixed $C000 bank = %d, want 7 (last of 8)", got)
	}
}

// writeMMC1 feeds val's 5 low bits into the serial shift register one at a
// time, LSB first, as real software does.
func writeMMC1(cpuBus *hwio.Table, addr uint16, val uint8) {
	for i := 0; i < 5; i++ {
		cpuBus.Write8(addr, (val>>i)&1)
	}
}

func TestMMC3PRGModeSwap(t *testing.T) {
	rom := buildRom(t, 4, 8, 8, false)
	cpuBus, p := newBuses()
	m, _ := New(rom)
	m.Wire(cpuBus, p)

	cpuBus.Write8(0x8000, 6) // bank select: target R6, PRG mode 0
	cpuBus.Write8(0x8001, 3) // R6 = bank 3

	// 8 KiB bank 3 lies in buildRom's 16 KiB chunk 1, filled with byte 1.
	if got := cpuBus.Read8(0x8000, false); got != 1 {
		t.Errorf("switchable $8000 bank (mode 0) = %d, want 1 (8 KiB bank 3)", got)
	}
	if got := cpuBus.Read8(0xFFF0, false); got != 7 {
		t.Errorf("fixed last bank = %d, want 7 (last of 8)", got)
	}
}

func TestMMC3ScanlineIRQFiresAfterReload(t *testing.T) {
	rom := buildRom(t, 4, 8, 8, false)
	cpuBus, p := newBuses()
	m, _ := New(rom)
	m.Wire(cpuBus, p)

	stub := &stubIRQ{}
	WireIRQ(m, stub)

	cpuBus.Write8(0xC000, 2) // IRQ latch = 2
	cpuBus.Write8(0xC001, 0) // request reload
	cpuBus.Write8(0xE001, 0) // enable IRQ

	irqMapper := m.(*mmc3)
	clockA12Edges(irqMapper, 4)

	if !stub.requested {
		t.Errorf("expected an IRQ after the counter reloaded to 2 and was clocked down to 0")
	}
}

func clockA12Edges(m *mmc3, n int) {
	for i := 0; i < n; i++ {
		for j := 0; j < 10; j++ {
			m.NotifyA12(false)
		}
		m.NotifyA12(true)
	}
}

type stubIRQ struct{ requested bool }

func (s *stubIRQ) RequestIRQ(hwdefs.IRQSource) { s.requested = true }

func TestMMC5PRGMode3UsesDistinctWindows(t *testing.T) {
	rom := buildRom(t, 5, 8, 4, false) // 128 KiB PRG = 16 8 KiB banks
	cpuBus, p := newBuses()
	m, _ := New(rom)
	m.Wire(cpuBus, p)

	cpuBus.Write8(0x5100, 3) // PRG mode 3: four independent 8 KiB windows
	cpuBus.Write8(0x5114, 1) // $8000-9FFF
	cpuBus.Write8(0x5115, 5) // $A000-BFFF
	cpuBus.Write8(0x5116, 7) // $C000-DFFF
	cpuBus.Write8(0x5117, 3) // $E000-FFFF

	// Each 16 KiB chunk i in buildRom is filled with byte i; 8 KiB bank b
	// falls in chunk b/2.
	cases := []struct{ addr uint16; bank uint8 }{
		{0x8000, 1}, {0xA000, 5}, {0xC000, 7}, {0xE000, 3},
	}
	for _, c := range cases {
		want := c.bank / 2
		if got := cpuBus.Read8(c.addr, false); got != want {
			t.Errorf("bank %d at $%04X = %d, want %d (chunk for 8KiB bank %d)", c.bank, c.addr, got, want, c.bank)
		}
	}
}

func TestMMC5PRGMode0SingleWindow(t *testing.T) {
	rom := buildRom(t, 5, 8, 4, false) // 128 KiB PRG = four 32 KiB pages
	cpuBus, p := newBuses()
	m, _ := New(rom)
	m.Wire(cpuBus, p)

	cpuBus.Write8(0x5100, 0) // PRG mode 0: one 32 KiB window
	cpuBus.Write8(0x5117, 1<<2) // page 1 (bits 2-6)

	if got := cpuBus.Read8(0x8000, false); got != 2 {
		t.Errorf("page 1 start = %d, want 2 (start of 16KiB chunk 2)", got)
	}
	if got := cpuBus.Read8(0xC000, false); got != 3 {
		t.Errorf("page 1 midpoint = %d, want 3 (start of 16KiB chunk 3)", got)
	}
}

func TestMMC5ExtendedAttributeOverride(t *testing.T) {
	rom := buildRom(t, 5, 2, 4, false) // 32 KiB PRG, 32 KiB CHR = eight 4 KiB pages
	cpuBus, p := newBuses()
	m, _ := New(rom)
	m.Wire(cpuBus, p)

	cpuBus.Write8(0x5104, 1) // ExRAM mode 1: extended attribute
	if p.ExAttr == nil {
		t.Fatalf("ExRAM mode 1 should install the PPU's ExAttributeHook")
	}

	cpuBus.Write8(0x5C00, 0xC2) // nametable index 0: attr=3 (bits 6-7), CHR page 2 (bits 0-5)

	attr, lo, hi := p.ExAttr.ExAttribute(0, 0, 0)
	if attr != 3 {
		t.Errorf("attr = %d, want 3", attr)
	}
	const wantByte = 0x80 + 1 // CHR page 2 (4 KiB units) lands at the start of 8 KiB bank 1
	if lo != wantByte || hi != wantByte {
		t.Errorf("pattern bytes = %#x/%#x, want %#x/%#x", lo, hi, wantByte, wantByte)
	}

	cpuBus.Write8(0x5104, 0) // back to plain RAM mode
	if p.ExAttr != nil {
		t.Errorf("leaving ExRAM mode 1 should clear the PPU's ExAttributeHook")
	}
}
