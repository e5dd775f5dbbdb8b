package mapper

import (
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// nrom is mapper 0: no bank switching at all. PRG is 16 or 32 KiB (the 16
// KiB case mirrors across $8000-$FFFF); CHR is a fixed 8 KiB ROM or RAM
// bank. The simplest possible board, and the natural one to build the rest
// of this package's wiring conventions against.
type nrom struct {
	prg      []byte
	chr      []byte
	chrIsRAM bool
	ram      []byte
	mir      ines.NTMirroring
}

func newNROM(rom *ines.Rom) Mapper {
	return &nrom{
		prg:      prgData(rom),
		chr:      chrData(rom),
		chrIsRAM: rom.HasCHRRAM(),
		ram:      prgRAM(rom),
		mir:      rom.Mirroring(),
	}
}

func (m *nrom) Wire(cpuBus *hwio.Table, p *ppu.PPU) {
	cpuBus.MapMemorySlice(0x6000, 0x7FFF, m.ram, false)
	cpuBus.MapMemorySlice(0x8000, 0xFFFF, m.prg, true)
	p.Bus.MapMemorySlice(0x0000, 0x1FFF, m.chr, !m.chrIsRAM)
	p.SetMirroring(m.mir)
}

func (m *nrom) Mirroring() ines.NTMirroring { return m.mir }

type nromState struct {
	RAM []byte
	CHR []byte // only meaningful when chrIsRAM
}

func (m *nrom) SnapshotState() []byte {
	return gobEncode(nromState{RAM: m.ram, CHR: m.chr})
}

func (m *nrom) RestoreState(data []byte) error {
	var s nromState
	if err := gobDecode(data, &s); err != nil {
		return err
	}
	copy(m.ram, s.RAM)
	if m.chrIsRAM {
		copy(m.chr, s.CHR)
	}
	return nil
}
