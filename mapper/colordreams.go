package mapper

import (
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// colorDreams is mapper 11: bits 0-1 of the register select a 32 KiB PRG
// bank, bits 4-7 select an 8 KiB CHR bank. Unlike CNROM this board has no
// bus-conflict behavior (it uses discrete logic rather than a diode), so
// writes aren't ANDed against the PRG ROM contents.
type colorDreams struct {
	prg      []byte
	chr      []byte
	mir      ines.NTMirroring
	ppu      *ppu.PPU
	prgBank  int
	chrBank  int
	prgBanks int
	chrBanks int
}

func newColorDreams(rom *ines.Rom) Mapper {
	return &colorDreams{
		prg:      prgData(rom),
		chr:      chrData(rom),
		mir:      rom.Mirroring(),
		prgBanks: rom.PRGSize() / 0x8000,
		chrBanks: rom.CHRSize() / 0x2000,
	}
}

func (m *colorDreams) Wire(cpuBus *hwio.Table, p *ppu.PPU) {
	m.ppu = p
	cpuBus.MapManual(0x8000, &hwio.Manual{Name: "colordreams", Size: 0x8000, ReadCb: m.read, WriteCb: m.write})
	m.remapCHR()
	p.SetMirroring(m.mir)
}

func (m *colorDreams) read(addr uint16, _ bool) uint8 {
	return m.prg[m.prgBank*0x8000+int(addr&0x7FFF)]
}

func (m *colorDreams) write(_ uint16, val uint8) {
	m.prgBank = int(val&0x03) % m.prgBanks
	m.chrBank = int(val>>4) % m.chrBanks
	m.remapCHR()
}

func (m *colorDreams) remapCHR() {
	m.ppu.Bus.MapMemorySlice(0x0000, 0x1FFF, m.chr[m.chrBank*0x2000:(m.chrBank+1)*0x2000], true)
}

func (m *colorDreams) Mirroring() ines.NTMirroring { return m.mir }

type colorDreamsState struct {
	PRGBank int
	ChrBank int
}

func (m *colorDreams) SnapshotState() []byte {
	return gobEncode(colorDreamsState{PRGBank: m.prgBank, ChrBank: m.chrBank})
}

func (m *colorDreams) RestoreState(data []byte) error {
	var s colorDreamsState
	if err := gobDecode(data, &s); err != nil {
		return err
	}
	m.prgBank, m.chrBank = s.PRGBank, s.ChrBank
	m.remapCHR()
	return nil
}
