package console

import (
	"nescore/hwio"
	"nescore/internal/log"
)

// oamDMA reproduces the OAM DMA controller wired to $4014: a write there
// stalls the CPU for 513 or 514 cycles while it copies one 256-byte page
// from CPU memory into PPU OAM two bytes at a time (one read cycle, one
// write cycle), starting with a dummy cycle to align to an even CPU cycle.
type oamDMA struct {
	cpuBus hwio.BankIO8
	oam    []byte

	page       uint8
	addr       uint8
	data       uint8
	dummy      bool
	inProgress bool

	OAMDMA hwio.Reg8 `hwio:"offset=0x00,writeonly,wcb"`
}

func newOAMDMA(cpuBus hwio.BankIO8, oam []byte) *oamDMA {
	dma := &oamDMA{cpuBus: cpuBus, oam: oam, dummy: true}
	hwio.MustInitRegs(dma)
	return dma
}

func (dma *oamDMA) WriteOAMDMA(_, val uint8) {
	dma.page = val
	dma.addr = 0
	dma.inProgress = true
	log.ModBus.DebugZ("start OAM DMA").Hex8("page", val).End()
}

// step advances the transfer by one CPU cycle, given the CPU's running
// total cycle count (used only for its even/odd parity). Returns true
// while the CPU should remain stalled.
func (dma *oamDMA) step(cpuCycles int64) bool {
	if !dma.inProgress {
		return false
	}
	if dma.dummy {
		if cpuCycles%2 == 1 {
			dma.dummy = false
		}
		return true
	}
	if cpuCycles%2 == 0 {
		addr := uint16(dma.page)<<8 | uint16(dma.addr)
		dma.data = dma.cpuBus.Read8(addr, false)
		return true
	}
	dma.oam[dma.addr] = dma.data
	dma.addr++
	if dma.addr == 0 {
		dma.inProgress = false
		dma.dummy = true
	}
	return true
}
