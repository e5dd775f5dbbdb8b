package mapper

import (
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// mmc2mmc4 covers mappers 9 (MMC2, Punch-Out!!) and 10 (MMC4): each half
// of the CHR space has two banks and a latch that remembers whether the
// last fetch in that half hit the magic tile $FD or $FE; the latch's
// current state picks which of the two banks is visible (implements
// ChrLatcher via LatchAccess). The two boards differ only in PRG
// granularity: MMC2 switches an 8 KiB window at $8000 with the rest
// fixed; MMC4 switches a 16 KiB window at $8000 with $C000 fixed.
type mmc2mmc4 struct {
	prg []byte
	chr []byte
	ram []byte
	ppu *ppu.PPU
	mir ines.NTMirroring

	prg16KiBGranularity bool // false: MMC2 (8 KiB PRG window), true: MMC4

	prgBank  uint8
	chrLo    [2]uint8 // banks selected by the $FD/$FE latch, left half ($0000)
	chrHi    [2]uint8 // right half ($1000)
	latchLo  int      // 0 selects $FD-tagged bank, 1 selects $FE-tagged bank
	latchHi  int
	prgBanks int
	chrBanks int
}

func newMMC2(rom *ines.Rom) Mapper { return newMMC2Family(rom, false) }
func newMMC4(rom *ines.Rom) Mapper { return newMMC2Family(rom, true) }

func newMMC2Family(rom *ines.Rom, is4 bool) Mapper {
	return &mmc2mmc4{
		prg:                 prgData(rom),
		chr:                 chrData(rom),
		ram:                 prgRAM(rom),
		mir:                 rom.Mirroring(),
		prg16KiBGranularity: is4,
		prgBanks:            rom.PRGSize() / 0x2000,
		chrBanks:            max(rom.CHRSize()/0x1000, 1),
	}
}

func (m *mmc2mmc4) Wire(cpuBus *hwio.Table, p *ppu.PPU) {
	m.ppu = p
	cpuBus.MapMemorySlice(0x6000, 0x7FFF, m.ram, false)
	cpuBus.MapManual(0x8000, &hwio.Manual{Name: "mmc2/4", Size: 0x8000, ReadCb: m.read, WriteCb: m.write})
	m.remapCHR()
	p.SetMirroring(m.mir)
}

func (m *mmc2mmc4) read(addr uint16, _ bool) uint8 {
	if m.prg16KiBGranularity {
		if addr < 0xC000 {
			bank := int(m.prgBank) * 2 % m.prgBanks
			return m.prg[bank*0x2000+int(addr&0x3FFF)]
		}
		last := m.prgBanks - 2
		return m.prg[last*0x2000+int(addr&0x3FFF)]
	}
	if addr < 0xA000 {
		return m.prg[int(m.prgBank)%m.prgBanks*0x2000+int(addr&0x1FFF)]
	}
	last := m.prgBanks - 3 + int((addr-0xA000)/0x2000)
	return m.prg[last%m.prgBanks*0x2000+int(addr&0x1FFF)]
}

func (m *mmc2mmc4) write(addr uint16, val uint8) {
	switch {
	case addr < 0xA000:
		m.prgBank = val
	case addr < 0xB000:
		m.chrLo[0] = val
		m.remapCHR()
	case addr < 0xC000:
		m.chrLo[1] = val
		m.remapCHR()
	case addr < 0xD000:
		m.chrHi[0] = val
		m.remapCHR()
	case addr < 0xE000:
		m.chrHi[1] = val
		m.remapCHR()
	case addr < 0xF000:
		if val&1 == 0 {
			m.mir = ines.MirrorVertical
		} else {
			m.mir = ines.MirrorHorizontal
		}
		m.ppu.SetMirroring(m.mir)
	}
}

// LatchAccess implements ChrLatcher: every pattern fetch updates whichever
// half's latch it falls in when it hits the $FD/$FE magic tile addresses.
func (m *mmc2mmc4) LatchAccess(addr uint16) {
	switch addr & 0x1FF8 {
	case 0x0FD8:
		m.latchLo = 0
		m.remapCHR()
	case 0x0FE8:
		m.latchLo = 1
		m.remapCHR()
	case 0x1FD8:
		m.latchHi = 0
		m.remapCHR()
	case 0x1FE8:
		m.latchHi = 1
		m.remapCHR()
	}
}

func (m *mmc2mmc4) remapCHR() {
	lo := int(m.chrLo[m.latchLo]) % m.chrBanks
	hi := int(m.chrHi[m.latchHi]) % m.chrBanks
	m.ppu.Bus.MapMemorySlice(0x0000, 0x0FFF, m.chr[lo*0x1000:lo*0x1000+0x1000], true)
	m.ppu.Bus.MapMemorySlice(0x1000, 0x1FFF, m.chr[hi*0x1000:hi*0x1000+0x1000], true)
}

func (m *mmc2mmc4) Mirroring() ines.NTMirroring { return m.mir }

type mmc2mmc4State struct {
	RAM     []byte
	PrgBank uint8
	ChrLo   [2]uint8
	ChrHi   [2]uint8
	LatchLo int
	LatchHi int
	Mir     ines.NTMirroring
}

func (m *mmc2mmc4) SnapshotState() []byte {
	return gobEncode(mmc2mmc4State{
		RAM: m.ram, PrgBank: m.prgBank, ChrLo: m.chrLo, ChrHi: m.chrHi,
		LatchLo: m.latchLo, LatchHi: m.latchHi, Mir: m.mir,
	})
}

func (m *mmc2mmc4) RestoreState(data []byte) error {
	var s mmc2mmc4State
	if err := gobDecode(data, &s); err != nil {
		return err
	}
	copy(m.ram, s.RAM)
	m.prgBank, m.chrLo, m.chrHi = s.PrgBank, s.ChrLo, s.ChrHi
	m.latchLo, m.latchHi, m.mir = s.LatchLo, s.LatchHi, s.Mir
	m.ppu.SetMirroring(m.mir)
	m.remapCHR()
	return nil
}
