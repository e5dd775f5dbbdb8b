package mapper

import (
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// bnrom is mapper 34 (BNROM): the whole written byte selects a 32 KiB PRG
// bank, with no masking to bus conflicts. CHR is always 8 KiB of RAM.
type bnrom struct {
	prg      []byte
	chr      []byte
	mir      ines.NTMirroring
	prgBank  int
	prgBanks int
}

func newBNROM(rom *ines.Rom) Mapper {
	return &bnrom{
		prg:      prgData(rom),
		chr:      chrData(rom),
		mir:      rom.Mirroring(),
		prgBanks: rom.PRGSize() / 0x8000,
	}
}

func (m *bnrom) Wire(cpuBus *hwio.Table, p *ppu.PPU) {
	cpuBus.MapManual(0x8000, &hwio.Manual{Name: "bnrom", Size: 0x8000, ReadCb: m.read, WriteCb: m.write})
	p.Bus.MapMemorySlice(0x0000, 0x1FFF, m.chr, false)
	p.SetMirroring(m.mir)
}

func (m *bnrom) read(addr uint16, _ bool) uint8 {
	return m.prg[m.prgBank*0x8000+int(addr&0x7FFF)]
}

func (m *bnrom) write(_ uint16, val uint8) {
	m.prgBank = int(val) % m.prgBanks
}

func (m *bnrom) Mirroring() ines.NTMirroring { return m.mir }

type bnromState struct {
	CHR     []byte
	PRGBank int
}

func (m *bnrom) SnapshotState() []byte {
	return gobEncode(bnromState{CHR: m.chr, PRGBank: m.prgBank})
}

func (m *bnrom) RestoreState(data []byte) error {
	var s bnromState
	if err := gobDecode(data, &s); err != nil {
		return err
	}
	copy(m.chr, s.CHR)
	m.prgBank = s.PRGBank
	return nil
}
