package mapper

import (
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// uxrom is mapper 2 (UNROM/UOROM): any write to $8000-$FFFF selects which
// 16 KiB PRG bank appears at $8000-$BFFF; $C000-$FFFF is hard-wired to the
// last bank. CHR is always 8 KiB of RAM. No bus-conflict emulation: UxROM
// boards tie CHR-RAM's write line low, so the common case (CHR-RAM, no
// conflicting ROM read) never exercises it.
type uxrom struct {
	prg     []byte
	chr     []byte
	ram     []byte
	mir     ines.NTMirroring
	cpuBus  *hwio.Table
	prgBank int
	banks   int
}

func newUxROM(rom *ines.Rom) Mapper {
	return &uxrom{
		prg:   prgData(rom),
		chr:   chrData(rom),
		ram:   prgRAM(rom),
		mir:   rom.Mirroring(),
		banks: rom.PRGSize() / 0x4000,
	}
}

func (m *uxrom) Wire(cpuBus *hwio.Table, p *ppu.PPU) {
	m.cpuBus = cpuBus
	cpuBus.MapMemorySlice(0x6000, 0x7FFF, m.ram, false)
	cpuBus.MapManual(0x8000, &hwio.Manual{Name: "uxrom", Size: 0x8000, ReadCb: m.read, WriteCb: m.write})
	p.Bus.MapMemorySlice(0x0000, 0x1FFF, m.chr, false)
	p.SetMirroring(m.mir)
}

func (m *uxrom) read(addr uint16, _ bool) uint8 {
	if addr >= 0xC000 {
		return m.prg[(m.banks-1)*0x4000+int(addr&0x3FFF)]
	}
	return m.prg[m.prgBank*0x4000+int(addr&0x3FFF)]
}

func (m *uxrom) write(_ uint16, val uint8) {
	m.prgBank = int(val) % m.banks
}

func (m *uxrom) Mirroring() ines.NTMirroring { return m.mir }

type uxromState struct {
	RAM     []byte
	CHR     []byte
	PRGBank int
}

func (m *uxrom) SnapshotState() []byte {
	return gobEncode(uxromState{RAM: m.ram, CHR: m.chr, PRGBank: m.prgBank})
}

func (m *uxrom) RestoreState(data []byte) error {
	var s uxromState
	if err := gobDecode(data, &s); err != nil {
		return err
	}
	copy(m.ram, s.RAM)
	copy(m.chr, s.CHR)
	m.prgBank = s.PRGBank
	return nil
}
