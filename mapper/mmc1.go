package mapper

import (
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// mmc1 is mapper 1: writes shift one bit at a time (LSB first) into a 5-bit
// serial register; on the 5th write the accumulated value loads one of
// four target registers, selected by address bits 13-14. Any write with
// bit 7 set resets the shift register and forces PRG mode 3 (so games can
// always recover a known state regardless of what the shift register held).
//
// Known simplification: real MMC1 ignores a second consecutive write if it
// happens on the very next CPU cycle (a quirk of its internal write-cycle
// counter, exercised by a handful of ROM hacks that intentionally rely on
// it). Not modeled here; every write is accepted.
type mmc1 struct {
	prg []byte
	chr []byte
	ram []byte
	ppu *ppu.PPU

	chrIsRAM bool
	prgBanks int
	chrBanks int

	shift    uint8
	shiftPos int

	control uint8 // mirroring(1:0), PRG mode(3:2), CHR mode(4)
	chr0    uint8
	chr1    uint8
	prgReg  uint8
}

func newMMC1(rom *ines.Rom) Mapper {
	return &mmc1{
		prg:      prgData(rom),
		chr:      chrData(rom),
		ram:      prgRAM(rom),
		chrIsRAM: rom.HasCHRRAM(),
		prgBanks: rom.PRGSize() / 0x4000,
		chrBanks: max(rom.CHRSize()/0x1000, 1),
		control:  0x0C,
	}
}

func (m *mmc1) Wire(cpuBus *hwio.Table, p *ppu.PPU) {
	m.ppu = p
	cpuBus.MapMemorySlice(0x6000, 0x7FFF, m.ram, false)
	cpuBus.MapManual(0x8000, &hwio.Manual{Name: "mmc1", Size: 0x8000, ReadCb: m.read, WriteCb: m.write})
	m.applyMirroring()
	m.remapCHR()
}

func (m *mmc1) read(addr uint16, _ bool) uint8 {
	bank, off := m.prgWindow(addr)
	return m.prg[bank*0x4000+off]
}

// prgWindow resolves addr to (bank index, offset within that 16 KiB bank)
// under the currently selected PRG mode.
func (m *mmc1) prgWindow(addr uint16) (int, int) {
	off := int(addr & 0x3FFF)
	switch (m.control >> 2) & 0x03 {
	case 0, 1:
		// 32 KiB mode: ignore the low bit of prgReg, map the whole window.
		bank := int(m.prgReg&0xFE) % m.prgBanks
		if addr >= 0xC000 {
			bank++
		}
		return bank, off
	case 2:
		// Fix first bank at $8000, switch $C000.
		if addr < 0xC000 {
			return 0, off
		}
		return int(m.prgReg) % m.prgBanks, off
	default: // 3
		// Switch $8000, fix last bank at $C000.
		if addr < 0xC000 {
			return int(m.prgReg) % m.prgBanks, off
		}
		return m.prgBanks - 1, off
	}
}

func (m *mmc1) write(addr uint16, val uint8) {
	if val&0x80 != 0 {
		m.shift = 0
		m.shiftPos = 0
		m.control |= 0x0C
		return
	}

	m.shift |= (val & 1) << m.shiftPos
	m.shiftPos++
	if m.shiftPos < 5 {
		return
	}

	result := m.shift
	m.shift = 0
	m.shiftPos = 0

	switch (addr >> 13) & 0x03 {
	case 0: // $8000-$9FFF: control
		m.control = result
		m.applyMirroring()
		m.remapCHR()
	case 1: // $A000-$BFFF: CHR bank 0
		m.chr0 = result
		m.remapCHR()
	case 2: // $C000-$DFFF: CHR bank 1
		m.chr1 = result
		m.remapCHR()
	case 3: // $E000-$FFFF: PRG bank
		m.prgReg = result & 0x0F
	}
}

func (m *mmc1) applyMirroring() {
	switch m.control & 0x03 {
	case 0:
		m.ppu.SetSingleScreen(0)
	case 1:
		m.ppu.SetSingleScreen(1)
	case 2:
		m.ppu.SetMirroring(ines.MirrorVertical)
	case 3:
		m.ppu.SetMirroring(ines.MirrorHorizontal)
	}
}

func (m *mmc1) remapCHR() {
	if m.chrIsRAM {
		m.ppu.Bus.MapMemorySlice(0x0000, 0x1FFF, m.chr, false)
		return
	}
	if m.control&0x10 == 0 {
		// 8 KiB mode: chr0's low bit is ignored; chr0>>1 selects the 8 KiB pair.
		bank := int(m.chr0>>1) % (m.chrBanks / 2)
		m.ppu.Bus.MapMemorySlice(0x0000, 0x1FFF, m.chr[bank*0x2000:bank*0x2000+0x2000], true)
		return
	}
	b0 := int(m.chr0) % m.chrBanks
	b1 := int(m.chr1) % m.chrBanks
	m.ppu.Bus.MapMemorySlice(0x0000, 0x0FFF, m.chr[b0*0x1000:b0*0x1000+0x1000], true)
	m.ppu.Bus.MapMemorySlice(0x1000, 0x1FFF, m.chr[b1*0x1000:b1*0x1000+0x1000], true)
}

func (m *mmc1) Mirroring() ines.NTMirroring {
	switch m.control & 0x03 {
	case 2:
		return ines.MirrorVertical
	case 3:
		return ines.MirrorHorizontal
	default:
		return ines.MirrorHorizontal
	}
}

type mmc1State struct {
	RAM      []byte
	CHR      []byte
	Shift    uint8
	ShiftPos int
	Control  uint8
	Chr0     uint8
	Chr1     uint8
	PrgReg   uint8
}

func (m *mmc1) SnapshotState() []byte {
	return gobEncode(mmc1State{
		RAM: m.ram, CHR: m.chr,
		Shift: m.shift, ShiftPos: m.shiftPos,
		Control: m.control, Chr0: m.chr0, Chr1: m.chr1, PrgReg: m.prgReg,
	})
}

func (m *mmc1) RestoreState(data []byte) error {
	var s mmc1State
	if err := gobDecode(data, &s); err != nil {
		return err
	}
	copy(m.ram, s.RAM)
	if m.chrIsRAM {
		copy(m.chr, s.CHR)
	}
	m.shift, m.shiftPos = s.Shift, s.ShiftPos
	m.control, m.chr0, m.chr1, m.prgReg = s.Control, s.Chr0, s.Chr1, s.PrgReg
	m.applyMirroring()
	m.remapCHR()
	return nil
}
