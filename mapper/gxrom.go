package mapper

import (
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// gxrom is mapper 66 (GxROM/MHROM): one register selects both the 32 KiB
// PRG bank (bits 4-5) and the 8 KiB CHR bank (bits 0-1) in a single write.
type gxrom struct {
	prg      []byte
	chr      []byte
	mir      ines.NTMirroring
	ppu      *ppu.PPU
	prgBank  int
	chrBank  int
	prgBanks int
	chrBanks int
}

func newGxROM(rom *ines.Rom) Mapper {
	return &gxrom{
		prg:      prgData(rom),
		chr:      chrData(rom),
		mir:      rom.Mirroring(),
		prgBanks: rom.PRGSize() / 0x8000,
		chrBanks: rom.CHRSize() / 0x2000,
	}
}

func (m *gxrom) Wire(cpuBus *hwio.Table, p *ppu.PPU) {
	m.ppu = p
	cpuBus.MapManual(0x8000, &hwio.Manual{Name: "gxrom", Size: 0x8000, ReadCb: m.read, WriteCb: m.write})
	m.remapCHR()
	p.SetMirroring(m.mir)
}

func (m *gxrom) read(addr uint16, _ bool) uint8 {
	return m.prg[m.prgBank*0x8000+int(addr&0x7FFF)]
}

func (m *gxrom) write(_ uint16, val uint8) {
	m.chrBank = int(val&0x03) % m.chrBanks
	m.prgBank = (int(val>>4) & 0x03) % m.prgBanks
	m.remapCHR()
}

func (m *gxrom) remapCHR() {
	m.ppu.Bus.MapMemorySlice(0x0000, 0x1FFF, m.chr[m.chrBank*0x2000:(m.chrBank+1)*0x2000], true)
}

func (m *gxrom) Mirroring() ines.NTMirroring { return m.mir }

type gxromState struct {
	PRGBank int
	ChrBank int
}

func (m *gxrom) SnapshotState() []byte {
	return gobEncode(gxromState{PRGBank: m.prgBank, ChrBank: m.chrBank})
}

func (m *gxrom) RestoreState(data []byte) error {
	var s gxromState
	if err := gobDecode(data, &s); err != nil {
		return err
	}
	m.prgBank, m.chrBank = s.PRGBank, s.ChrBank
	m.remapCHR()
	return nil
}
