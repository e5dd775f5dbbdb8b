package mapper

import (
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// axrom is mapper 7 (AxROM): a single register at $8000-$FFFF selects which
// 32 KiB PRG bank is mapped at $8000-$FFFF whole, and which of the
// cartridge's two internal VRAM pages is used for single-screen mirroring
// (AxROM carts have no nametable mirroring pins at all; the board always
// runs single-screen).
type axrom struct {
	prg      []byte
	chr      []byte
	ram      []byte
	ppu      *ppu.PPU
	prgBank  int
	prgBanks int
	page     int // currently selected single-screen VRAM bank (0 or 1)
}

func newAxROM(rom *ines.Rom) Mapper {
	return &axrom{
		prg:      prgData(rom),
		chr:      chrData(rom),
		ram:      prgRAM(rom),
		prgBanks: rom.PRGSize() / 0x8000,
	}
}

func (m *axrom) Wire(cpuBus *hwio.Table, p *ppu.PPU) {
	m.ppu = p
	cpuBus.MapMemorySlice(0x6000, 0x7FFF, m.ram, false)
	cpuBus.MapManual(0x8000, &hwio.Manual{Name: "axrom", Size: 0x8000, ReadCb: m.read, WriteCb: m.write})
	p.Bus.MapMemorySlice(0x0000, 0x1FFF, m.chr, false)
	p.SetSingleScreen(0)
}

func (m *axrom) read(addr uint16, _ bool) uint8 {
	return m.prg[m.prgBank*0x8000+int(addr&0x7FFF)]
}

func (m *axrom) write(_ uint16, val uint8) {
	m.prgBank = int(val&0x07) % m.prgBanks
	m.page = int(val>>4) & 1
	m.ppu.SetSingleScreen(m.page)
}

// Mirroring always reports MirrorHorizontal, since ines.NTMirroring has no
// single-screen value; the live selection lives
// in the PPU's own nametable wiring (m.write calls SetSingleScreen
// directly on every register write, since it can change mid-frame).
func (m *axrom) Mirroring() ines.NTMirroring { return ines.MirrorHorizontal }

type axromState struct {
	RAM     []byte
	CHR     []byte
	PRGBank int
	Page    int
}

func (m *axrom) SnapshotState() []byte {
	return gobEncode(axromState{RAM: m.ram, CHR: m.chr, PRGBank: m.prgBank, Page: m.page})
}

func (m *axrom) RestoreState(data []byte) error {
	var s axromState
	if err := gobDecode(data, &s); err != nil {
		return err
	}
	copy(m.ram, s.RAM)
	copy(m.chr, s.CHR)
	m.prgBank = s.PRGBank
	m.page = s.Page
	m.ppu.SetSingleScreen(m.page)
	return nil
}
