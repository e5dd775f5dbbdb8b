// Package console wires the cpu, ppu, apu and mapper packages together
// into a runnable NES: the CPU/PPU/APU address spaces, OAM DMA, controller
// input, and the per-frame CPU->APU->PPU clocking interleave (spec.md
// §4.1/§4.7).
package console

import (
	"fmt"
	"hash/crc32"

	"nescore/apu"
	"nescore/cpu"
	"nescore/hwdefs"
	"nescore/hwio"
	"nescore/ines"
	"nescore/internal/log"
	"nescore/mapper"
	"nescore/ppu"
)

// Console is a complete NES: one CPU, one PPU, one APU, the currently
// loaded cartridge's mapper, and the two controller ports.
type Console struct {
	CPU *cpu.Core
	PPU *ppu.PPU
	APU *apu.APU

	cpuBus      *hwio.Table
	ram         [0x800]byte
	dma         *oamDMA
	controllers *controllers
	mapper      mapper.Mapper

	totalCycles int64

	// romFingerprint is a 32-bit hash of the loaded ROM's first 1 KiB,
	// stored in every snapshot so Restore can warn (not fail) when handed
	// a snapshot captured from a different ROM (spec.md §6/§7).
	romFingerprint uint32
}

// romFingerprint hashes the first 1 KiB of rom's serialized iNES bytes
// (header included), per spec.md §6's save-state fingerprint.
func romFingerprint(rom *ines.Rom) uint32 {
	b := rom.Serialize()
	if len(b) > 1024 {
		b = b[:1024]
	}
	return crc32.ChecksumIEEE(b)
}

// New builds a console around rom. sampleRate is the host audio sample
// rate the APU's mixer resamples into (spec.md §5).
func New(rom *ines.Rom, sampleRate int) (*Console, error) {
	m, err := mapper.New(rom)
	if err != nil {
		return nil, err
	}

	c := &Console{
		cpuBus:         hwio.NewTable("cpu"),
		controllers:    newControllers(),
		mapper:         m,
		romFingerprint: romFingerprint(rom),
	}

	c.PPU = ppu.New()
	c.CPU = cpu.NewCore(c.cpuBus)
	c.APU = apu.New(c.cpuBus, c.CPU, sampleRate)

	c.PPU.NMI = c.CPU
	c.PPU.Hook = mapper.Hook(m)
	mapper.WireIRQ(m, c.CPU)

	c.dma = newOAMDMA(c.cpuBus, c.PPU.OAM())

	c.wireCPUBus()
	m.Wire(c.cpuBus, c.PPU)

	c.Reset(hwdefs.HardReset)
	log.ModConsole.InfoZ("console ready").Uint16("mapper", rom.Mapper()).End()
	return c, nil
}

// wireCPUBus maps CPU RAM (mirrored 4x through $0000-$1FFF), the PPU's 8
// registers (mirrored every 8 bytes through $2000-$3FFF), OAMDMA, the
// controller/APU register block, and the combined $4017 port-2/frame-counter
// address. Cartridge space ($4020-$FFFF, including any PRG-RAM window) is
// left to mapper.Wire, called after this.
func (c *Console) wireCPUBus() {
	c.cpuBus.MapMemorySlice(0x0000, 0x1FFF, c.ram[:], false)
	c.PPU.WireCPURegs(c.cpuBus)
	c.cpuBus.MapBank(0x4014, c.dma, 0)
	c.controllers.WireCPURegs(c.cpuBus)
	c.APU.WireCPURegs(c.cpuBus)
	c.cpuBus.MapManual(0x4017, &hwio.Manual{
		Name: "joy2/framecounter",
		Size: 1,
		ReadCb: func(uint16, bool) uint8 {
			return c.controllers.ReadJOY2Data()
		},
		WriteCb: func(_ uint16, val uint8) {
			c.APU.WriteFrameCounter(val)
		},
	})
}

// Reset performs a soft or hard reset of every component.
func (c *Console) Reset(soft bool) {
	c.CPU.Reset(soft)
	c.PPU.Reset()
	c.APU.Reset(soft)
}

// SetButton updates one controller button's held state (spec.md §6).
func (c *Console) SetButton(port hwdefs.Port, b hwdefs.Button, down bool) {
	c.controllers.SetButton(port, b, down)
}

// Frame runs the console until the PPU completes exactly one frame (to the
// next visible scanline 0, dot 0), returning the rendered framebuffer. If
// the CPU has crashed on an illegal opcode, Frame is a no-op returning the
// last rendered framebuffer, per spec.md §7's CpuCrash policy; Reset is
// the only way out.
func (c *Console) Frame() *[ppu.FrameHeight][ppu.FrameWidth]ppu.RGB {
	if c.CPU.Halted() {
		return c.PPU.Frame()
	}
	c.step() // always make forward progress even if already at (0,0)
	for !c.atFrameStart() && !c.CPU.Halted() {
		c.step()
	}
	return c.PPU.Frame()
}

func (c *Console) atFrameStart() bool {
	return c.PPU.Scanline == 0 && c.PPU.Cycle == 0
}

// step advances the whole console by one CPU instruction, interleaving
// OAM DMA stalls, the APU's per-cycle channel/mixer ticking, and the PPU's
// 3x-rate dot clocking (spec.md §4.7).
func (c *Console) step() {
	var cycles int64
	if c.dma.step(c.totalCycles) {
		cycles = 1
	} else {
		cycles = c.CPU.Step()
	}
	c.totalCycles += cycles

	stolen := c.APU.Advance(cycles)
	c.PPU.Advance(cycles * 3)
	if stolen > 0 {
		// The DMC's sample-DMA steal happens on the bus between
		// instructions; keep the 3:1 PPU:CPU dot ratio intact by advancing
		// the PPU for the stolen cycles too.
		c.CPU.StealCycles(stolen)
		c.PPU.Advance(stolen * 3)
	}
}

func (c *Console) String() string {
	return fmt.Sprintf("console{cpu=%04X ppu=(%d,%d)}", c.CPU.PC, c.PPU.Scanline, c.PPU.Cycle)
}
