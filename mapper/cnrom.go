package mapper

import (
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// cnrom is mapper 3: PRG is fixed (16 KiB mirrored or 32 KiB), CHR is
// switched 8 KiB at a time by any write to $8000-$FFFF. Real CNROM boards
// often exhibit bus conflicts (the cartridge's ROM drives the data bus at
// the same time as the CPU during the write); modeled here by ANDing the
// written value with the byte the PRG ROM itself would have driven,
// matching the common bus-conflict-emulation technique used by mainstream
// emulators for exactly this board.
type cnrom struct {
	prg      []byte
	chr      []byte
	ram      []byte
	mir      ines.NTMirroring
	ppu      *ppu.PPU
	chrBank  int
	chrBanks int
}

func newCNROM(rom *ines.Rom) Mapper {
	return &cnrom{
		prg:      prgData(rom),
		chr:      chrData(rom),
		ram:      prgRAM(rom),
		mir:      rom.Mirroring(),
		chrBanks: rom.CHRSize() / 0x2000,
	}
}

func (m *cnrom) Wire(cpuBus *hwio.Table, p *ppu.PPU) {
	m.ppu = p
	cpuBus.MapMemorySlice(0x6000, 0x7FFF, m.ram, false)
	cpuBus.MapManual(0x8000, &hwio.Manual{Name: "cnrom", Size: 0x8000, ReadCb: m.read, WriteCb: m.write})
	m.remapCHR()
	p.SetMirroring(m.mir)
}

func (m *cnrom) read(addr uint16, _ bool) uint8 {
	return m.prg[int(addr&0x7FFF)%len(m.prg)]
}

func (m *cnrom) write(addr uint16, val uint8) {
	busByte := m.read(addr, true)
	m.chrBank = int(val&busByte) % m.chrBanks
	m.remapCHR()
}

func (m *cnrom) remapCHR() {
	m.ppu.Bus.MapMemorySlice(0x0000, 0x1FFF, m.chr[m.chrBank*0x2000:(m.chrBank+1)*0x2000], true)
}

func (m *cnrom) Mirroring() ines.NTMirroring { return m.mir }

type cnromState struct {
	RAM     []byte
	ChrBank int
}

func (m *cnrom) SnapshotState() []byte {
	return gobEncode(cnromState{RAM: m.ram, ChrBank: m.chrBank})
}

func (m *cnrom) RestoreState(data []byte) error {
	var s cnromState
	if err := gobDecode(data, &s); err != nil {
		return err
	}
	copy(m.ram, s.RAM)
	m.chrBank = s.ChrBank
	m.remapCHR()
	return nil
}
