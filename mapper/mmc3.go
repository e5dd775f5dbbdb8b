package mapper

import (
	"nescore/hwdefs"
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// mmc3 is mapper 4: eight bank registers (R0-R5 for CHR, R6-R7 for PRG)
// set via a bank-select/bank-data register pair, two independent
// PRG/CHR layout modes, and a scanline IRQ counter clocked by A12 rising
// edges on the PPU address bus (implements ScanlineIRQer).
type mmc3 struct {
	prg []byte
	chr []byte
	ram []byte
	ppu *ppu.PPU

	chrIsRAM bool
	prgBanks int // number of 8 KiB PRG banks
	chrBanks int // number of 1 KiB CHR banks

	bankSelect uint8
	regs       [8]uint8
	mirror     ines.NTMirroring

	irqLatch   uint8
	irqCounter uint8
	irqReload  bool
	irqEnabled bool
	lastA12    bool
	a12LowRun  int

	irqCPU IRQSetter
}

func newMMC3(rom *ines.Rom) Mapper {
	return &mmc3{
		prg:      prgData(rom),
		chr:      chrData(rom),
		ram:      prgRAM(rom),
		chrIsRAM: rom.HasCHRRAM(),
		prgBanks: rom.PRGSize() / 0x2000,
		chrBanks: max(rom.CHRSize()/0x0400, 1),
		mirror:   rom.Mirroring(),
	}
}

// SetIRQTarget wires the scanline IRQ counter to the CPU core (mapper.WireIRQ
// calls this after New, since 4.6's capability model type-asserts for it
// rather than every board needing a no-op implementation).
func (m *mmc3) SetIRQTarget(cpu IRQSetter) { m.irqCPU = cpu }

func (m *mmc3) Wire(cpuBus *hwio.Table, p *ppu.PPU) {
	m.ppu = p
	cpuBus.MapMemorySlice(0x6000, 0x7FFF, m.ram, false)
	cpuBus.MapManual(0x8000, &hwio.Manual{Name: "mmc3", Size: 0x8000, ReadCb: m.read, WriteCb: m.write})
	m.remapCHR()
	p.SetMirroring(m.mirror)
}

func (m *mmc3) read(addr uint16, _ bool) uint8 {
	bank := m.prgBankFor(addr)
	return m.prg[bank*0x2000+int(addr&0x1FFF)]
}

// prgBankFor resolves one of the four 8 KiB $8000-$FFFF windows under the
// current PRG mode (bankSelect bit 6): mode 0 fixes the second-to-last
// bank at $C000 and makes R6 switchable at $8000; mode 1 swaps them.
func (m *mmc3) prgBankFor(addr uint16) int {
	window := int((addr - 0x8000) / 0x2000)
	swapMode := m.bankSelect&0x40 != 0
	last := m.prgBanks - 1
	switch {
	case window == 0 && !swapMode, window == 2 && swapMode:
		return int(m.regs[6]) % m.prgBanks
	case window == 1:
		return int(m.regs[7]) % m.prgBanks
	case window == 2 && !swapMode, window == 0 && swapMode:
		return (last - 1) % m.prgBanks
	default: // window == 3, always fixed to the last bank
		return last
	}
}

func (m *mmc3) write(addr uint16, val uint8) {
	even := addr&1 == 0
	switch {
	case addr < 0xA000:
		if even {
			m.bankSelect = val
		} else {
			m.regs[m.bankSelect&0x07] = val
			m.remapCHR()
		}
	case addr < 0xC000:
		if even {
			if val&1 == 0 {
				m.mirror = ines.MirrorVertical
			} else {
				m.mirror = ines.MirrorHorizontal
			}
			m.ppu.SetMirroring(m.mirror)
		}
		// odd: PRG-RAM write-protect, not modeled (RAM is always writable).
	case addr < 0xE000:
		if even {
			m.irqLatch = val
		} else {
			m.irqReload = true
		}
	default:
		m.irqEnabled = !even
	}
}

// remapCHR maps the CHR windows under the CHR bank mode (bankSelect bit 7):
// mode 0 puts the two 2 KiB windows first, mode 1 swaps the 2 KiB and
// 1 KiB windows.
func (m *mmc3) remapCHR() {
	if m.chrIsRAM {
		m.ppu.Bus.MapMemorySlice(0x0000, 0x1FFF, m.chr, false)
		return
	}
	r := m.regs
	bank := func(n uint8) int { return int(n) % m.chrBanks }
	put := func(addr uint16, size int, kib int) {
		lo := bank(r[kib]) * 0x0400
		m.ppu.Bus.MapMemorySlice(addr, addr+uint16(size)-1, m.chr[lo:lo+size], true)
	}
	if m.bankSelect&0x80 == 0 {
		put(0x0000, 0x0800, 0)
		put(0x0800, 0x0800, 1)
		put(0x1000, 0x0400, 2)
		put(0x1400, 0x0400, 3)
		put(0x1800, 0x0400, 4)
		put(0x1C00, 0x0400, 5)
	} else {
		put(0x0000, 0x0400, 2)
		put(0x0400, 0x0400, 3)
		put(0x0800, 0x0400, 4)
		put(0x0C00, 0x0400, 5)
		put(0x1000, 0x0800, 0)
		put(0x1800, 0x0800, 1)
	}
}

// NotifyA12 clocks the scanline IRQ counter on the rising edge of PPU
// address bit 12, filtered to require the line to have been held low for
// at least a few PPU cycles first (the real board's RC-filtered A12
// input, approximated here by a small run-length threshold instead of a
// cycle-accurate analog model).
func (m *mmc3) NotifyA12(bit bool) {
	if !bit {
		m.a12LowRun++
		m.lastA12 = false
		return
	}
	if !m.lastA12 && m.a12LowRun >= 8 {
		m.clockIRQCounter()
	}
	m.lastA12 = true
	m.a12LowRun = 0
}

func (m *mmc3) clockIRQCounter() {
	if m.irqCounter == 0 || m.irqReload {
		m.irqCounter = m.irqLatch
		m.irqReload = false
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled && m.irqCPU != nil {
		m.irqCPU.RequestIRQ(hwdefs.External)
	}
}

func (m *mmc3) Mirroring() ines.NTMirroring { return m.mirror }

type mmc3State struct {
	RAM        []byte
	CHR        []byte
	BankSelect uint8
	Regs       [8]uint8
	Mirror     ines.NTMirroring
	IrqLatch   uint8
	IrqCounter uint8
	IrqReload  bool
	IrqEnabled bool
	LastA12    bool
	A12LowRun  int
}

func (m *mmc3) SnapshotState() []byte {
	return gobEncode(mmc3State{
		RAM: m.ram, CHR: m.chr,
		BankSelect: m.bankSelect, Regs: m.regs, Mirror: m.mirror,
		IrqLatch: m.irqLatch, IrqCounter: m.irqCounter, IrqReload: m.irqReload,
		IrqEnabled: m.irqEnabled, LastA12: m.lastA12, A12LowRun: m.a12LowRun,
	})
}

func (m *mmc3) RestoreState(data []byte) error {
	var s mmc3State
	if err := gobDecode(data, &s); err != nil {
		return err
	}
	copy(m.ram, s.RAM)
	if m.chrIsRAM {
		copy(m.chr, s.CHR)
	}
	m.bankSelect, m.regs, m.mirror = s.BankSelect, s.Regs, s.Mirror
	m.irqLatch, m.irqCounter, m.irqReload = s.IrqLatch, s.IrqCounter, s.IrqReload
	m.irqEnabled, m.lastA12, m.a12LowRun = s.IrqEnabled, s.LastA12, s.A12LowRun
	m.ppu.SetMirroring(m.mirror)
	m.remapCHR()
	return nil
}
