// Package ppu implements the NES Picture Processing Unit: the Loopy
// scroll/address state machine, background and sprite pixel pipelines,
// and the memory-mapped register surface the CPU sees at $2000-$3FFF.
package ppu

import (
	"nescore/hwio"
	"nescore/internal/log"
	"nescore/tile"
)

const (
	NumScanlines = 262 // scanlines per frame, including pre-render.
	NumDots      = 341 // PPU dots (cycles) per scanline.

	FrameWidth  = 256
	FrameHeight = 240
)

// PPUCTRL ($2000) bits.
const (
	ctrlNametable    = 0b11 // bits 0-1
	ctrlVramIncr     = 2
	ctrlSpritePT     = 3
	ctrlBgPT         = 4
	ctrlSpriteSize   = 5
	ctrlMasterSlave  = 6
	ctrlNMIOnVblank  = 7
)

// PPUMASK ($2001) bits.
const (
	maskGreyscale   = 0
	maskShowBgLeft  = 1
	maskShowSprLeft = 2
	maskShowBg      = 3
	maskShowSpr     = 4
	maskEmphRed     = 5
	maskEmphGreen   = 6
	maskEmphBlue    = 7
)

// PPUSTATUS ($2002) bits.
const (
	statOverflow = 5
	statSprite0  = 6
	statVblank   = 7
)

// NMI is implemented by the CPU core: the PPU drives the NMI line exactly
// the way the console's interleave expects (see cpu.Core.SetNMI).
type NMI interface {
	SetNMI(asserted bool)
}

// BusHook receives every PPU pattern-table address fetched, whether or not
// any mapper cares: capability gating (has_scanline_irq / has_chr_latch)
// lives on the mapper side, not here, so the hook is unconditional.
type BusHook interface {
	// OnPPUAddress is called for the nametable/attribute/pattern fetch
	// addresses issued every dot a fetch occurs, used by mappers that
	// watch the PPU address bus for A12 rising edges (MMC3 IRQ).
	OnPPUAddress(addr uint16)
	// OnPatternFetch is called specifically for pattern-table (CHR)
	// fetches with the real fetched address, used by mappers with a
	// CHR-address latch (MMC2/MMC4).
	OnPatternFetch(addr uint16)
}

type nopHook struct{}

func (nopHook) OnPPUAddress(uint16)  {}
func (nopHook) OnPatternFetch(uint16) {}

// ExAttributeHook lets a mapper with a per-tile extended-attribute
// nametable mode (MMC5 ExRAM mode 1) override a background tile's palette
// attribute and supply its own pattern bytes directly, bypassing both the
// normal attribute-table fetch and the bus-mapped CHR windows: the
// extended attribute table also carries an independent CHR page number per
// tile that doesn't correspond to any of the mapper's ordinary CHR bank
// registers. Left nil, the PPU fetches attribute/pattern bytes the usual
// way for every other board.
type ExAttributeHook interface {
	ExAttribute(ntIndex uint16, tile uint8, fineY uint16) (attr, patLo, patHi uint8)
}

// Sprite is one of the 64 OAM entries.
type Sprite struct {
	Y, Tile, Attr, X uint8
}

// PPU is the whole picture processing unit. It owns the 16-bit PPU address
// space (Bus), the 2 KiB of onboard nametable VRAM, OAM, and the output
// framebuffer.
type PPU struct {
	Bus    *hwio.Table // 0x0000-0x3FFF PPU address space
	NMI    NMI
	Hook   BusHook
	ExAttr ExAttributeHook // non-nil only while MMC5-style ExRAM mode 1 is active

	tiles *tile.Cache

	Cycle    int
	Scanline int
	frameOdd bool // true on odd frames: the pre-render line is one dot short.

	PPUCTRL   hwio.Reg8 `hwio:"bank=1,offset=0x0,writeonly,wcb"`
	PPUMASK   hwio.Reg8 `hwio:"bank=1,offset=0x1,writeonly,wcb"`
	PPUSTATUS hwio.Reg8 `hwio:"bank=1,offset=0x2,readonly,rcb"`
	OAMADDR   hwio.Reg8 `hwio:"bank=1,offset=0x3,writeonly,wcb"`
	OAMDATA   hwio.Reg8 `hwio:"bank=1,offset=0x4,rcb,wcb"`
	PPUSCROLL hwio.Reg8 `hwio:"bank=1,offset=0x5,writeonly,wcb"`
	PPUADDR   hwio.Reg8 `hwio:"bank=1,offset=0x6,writeonly,wcb"`
	PPUDATA   hwio.Reg8 `hwio:"bank=1,offset=0x7,rcb,wcb"`

	// Loopy scroll/address registers: v and t are 15-bit, x is 3-bit fine X.
	v, t uint16
	x    uint8
	w    bool // write toggle, shared by PPUSCROLL and PPUADDR

	ppuDataBuf uint8 // buffered PPUDATA read

	oam        [256]uint8
	secondary  [8]Sprite
	secondaryN int
	spritePat0 [8]uint8 // low bitplane, already flipped/shifted for the scanline
	spritePat1 [8]uint8
	spriteIdx  [8]int // index into oam of each secondary-OAM sprite, -1 if unused
	spriteRows [8]int
	sprite0InSecondary bool

	// background shift registers / latches
	bgShiftLo, bgShiftHi     uint16
	bgAttrShiftLo, bgAttrShiftHi uint16
	ntLatch, atLatch, ptLoLatch, ptHiLatch uint8
	exPatLoLatch, exPatHiLatch uint8 // scratch, only meaningful while ExAttr != nil

	nt [0x800]uint8 // onboard nametable VRAM, 2 KiB
	pal [0x20]uint8

	frame [FrameHeight][FrameWidth]RGB

	suppressVblank bool // set by a $2002 read on the exact set dot, NES quirk
}

// New creates a PPU with its own 16 KiB (well, 16-bit-addressed) bus. CHR
// pattern tables are mapped into Bus by the mapper; nametable mirroring is
// wired by SetMirroring.
func New() *PPU {
	p := &PPU{
		Bus:  hwio.NewTable("ppu"),
		Hook: nopHook{},
	}
	hwio.MustInitRegs(p)
	p.Bus.MapMemorySlice(0x3F00, 0x3FFF, p.pal[:], false)
	return p
}

// WireCPURegs maps the PPU's 8 CPU-visible registers onto cpuBus at
// $2000-$2007, mirrored every 8 bytes through $3FFF: unlike the PPU's own
// 14-bit internal address space (Bus), these registers live only on the
// CPU's side of the machine.
func (p *PPU) WireCPURegs(cpuBus *hwio.Table) {
	for base := uint16(0x2000); base < 0x4000; base += 8 {
		cpuBus.MapBank(base, p, 1)
	}
}

// SetTileCache installs a decode cache over the CHR bytes currently mapped
// at Bus 0x0000-0x1FFF. The live renderer fetches individual pattern rows
// directly off Bus (matching real per-dot hardware fetches and guaranteeing
// every A12/latch signal fires), but debugging/dumping a whole pattern
// table benefits from the cache's whole-tile memoized decode. No mapper
// board installs a cache or refreshes one on a CHR bank switch; without one,
// PatternTile reads the pattern bytes off Bus directly.
func (p *PPU) SetTileCache(c *tile.Cache) { p.tiles = c }

// PatternTile returns the decoded 8x8 tile at the given index (0-255) of
// pattern table 0 or 1, using the tile cache if one was installed.
func (p *PPU) PatternTile(table int, index uint8) tile.Tile {
	base := uint16(table) * 0x1000
	if p.tiles != nil {
		return *p.tiles.Get(uint16(table)*256 + uint16(index))
	}
	addr := base + uint16(index)*16
	var lo, hi [8]byte
	for row := 0; row < 8; row++ {
		lo[row] = p.Bus.Read8(addr+uint16(row), true)
		hi[row] = p.Bus.Read8(addr+uint16(row)+8, true)
	}
	return tile.Decode(lo, hi)
}

func (p *PPU) Frame() *[FrameHeight][FrameWidth]RGB { return &p.frame }

func (p *PPU) OAM() []uint8 { return p.oam[:] }

func (p *PPU) Reset() {
	p.Scanline = 0
	p.Cycle = 0
	p.w = false
	p.v, p.t = 0, 0
	p.PPUCTRL.Value = 0
	p.PPUMASK.Value = 0
	p.PPUSTATUS.Value = 0
}

func (p *PPU) renderingEnabled() bool {
	return p.PPUMASK.GetBit(maskShowBg) || p.PPUMASK.GetBit(maskShowSpr)
}

// Advance runs the PPU for n dots (the console drives this with 3x the
// CPU cycle count each step, per the NTSC 3:1 PPU:CPU clock ratio).
func (p *PPU) Advance(n int64) {
	for i := int64(0); i < n; i++ {
		p.tick()
	}
}

func (p *PPU) tick() {
	switch {
	case p.Scanline < 240:
		p.visibleOrPrerenderDot(false)
	case p.Scanline == 241:
		if p.Cycle == 1 {
			if !p.suppressVblank {
				p.PPUSTATUS.SetBit(statVblank)
				if p.PPUCTRL.GetBit(ctrlNMIOnVblank) && p.NMI != nil {
					p.NMI.SetNMI(true)
				}
			}
			p.suppressVblank = false
		}
	case p.Scanline == 261:
		p.visibleOrPrerenderDot(true)
	}

	p.Cycle++
	if p.Cycle >= NumDots {
		// The pre-render line is one dot shorter on odd frames when
		// rendering is enabled (the well-known NTSC skipped dot).
		skip := p.Scanline == 261 && p.frameOdd && p.renderingEnabled()
		if skip && p.Cycle == NumDots {
			p.Cycle = 0
		} else {
			p.Cycle -= NumDots
		}
		p.Scanline++
		if p.Scanline >= NumScanlines {
			p.Scanline = 0
			p.frameOdd = !p.frameOdd
		}
	}
}

func (p *PPU) visibleOrPrerenderDot(preRender bool) {
	if preRender && p.Cycle == 1 {
		const mask = 1<<statVblank | 1<<statSprite0 | 1<<statOverflow
		p.PPUSTATUS.ClearBits(mask)
		if p.NMI != nil {
			p.NMI.SetNMI(false)
		}
	}

	if !p.renderingEnabled() {
		if p.Cycle >= 1 && p.Cycle <= 256 && !preRender {
			p.emitPixel()
		}
		return
	}

	switch {
	case p.Cycle == 0:
		// idle dot
	case p.Cycle >= 1 && p.Cycle <= 256:
		p.backgroundFetchCycle(p.Cycle)
		if !preRender {
			p.emitPixel()
		}
		p.shiftBG()
		if p.Cycle == 256 {
			p.incrementY()
		}
	case p.Cycle == 257:
		p.copyHorizontal()
		p.evaluateSprites()
	case p.Cycle >= 258 && p.Cycle <= 320:
		// sprite pattern fetches happen logically here; done in bulk at
		// 320 below for simplicity, using the already-evaluated secondary
		// OAM (timing-equivalent for any mapper not snooping these exact
		// sub-cycles).
		if p.Cycle == 320 {
			p.fetchSpritePatterns()
		}
	case preRender && p.Cycle >= 280 && p.Cycle <= 304:
		p.copyVertical()
	case p.Cycle >= 321 && p.Cycle <= 336:
		p.backgroundFetchCycle(p.Cycle)
		p.shiftBG()
	case p.Cycle >= 337 && p.Cycle <= 340:
		// two unused nametable fetches, still issued on real hardware.
		if p.Cycle == 338 || p.Cycle == 340 {
			addr := 0x2000 | (p.v & 0x0FFF)
			p.Hook.OnPPUAddress(addr)
			_ = p.Bus.Read8(addr, false)
		}
	}
}

// WritePPUCTRL handles $2000 writes: nametable select bits land in t.
func (p *PPU) WritePPUCTRL(old, val uint8) {
	log.ModPPU.DebugZ("write PPUCTRL").Hex8("val", val).End()

	wasNMI := old&(1<<ctrlNMIOnVblank) != 0
	nowNMI := val&(1<<ctrlNMIOnVblank) != 0
	if p.NMI != nil {
		if !nowNMI {
			p.NMI.SetNMI(false)
		} else if !wasNMI && p.PPUSTATUS.GetBit(statVblank) {
			p.NMI.SetNMI(true)
		}
	}

	p.t = (p.t &^ (0b11 << 10)) | (uint16(val&ctrlNametable) << 10)
}

func (p *PPU) WritePPUMASK(old, val uint8) {
	log.ModPPU.DebugZ("write PPUMASK").Hex8("val", val).End()
}

// ReadPPUSTATUS returns {overflow, sprite0, vblank} in the top 3 bits; the
// low 5 bits read as 0 (open bus is not modeled). Reading clears vblank and
// the write toggle.
func (p *PPU) ReadPPUSTATUS(val uint8) uint8 {
	ret := val & (1<<statOverflow | 1<<statSprite0 | 1<<statVblank)
	p.PPUSTATUS.ClearBit(statVblank)
	p.w = false
	if p.Scanline == 241 && p.Cycle == 1 {
		// Reading exactly on the set dot suppresses the NMI this frame
		// (a documented, reproducible race on real hardware).
		p.suppressVblank = true
	}
	if p.NMI != nil {
		p.NMI.SetNMI(false)
	}
	return ret
}

func (p *PPU) WriteOAMADDR(old, val uint8) {}

func (p *PPU) ReadOAMDATA(val uint8) uint8 {
	return p.oam[p.OAMADDR.Value]
}

func (p *PPU) WriteOAMDATA(old, val uint8) {
	p.oam[p.OAMADDR.Value] = val
	p.OAMADDR.Value++
}

// WritePPUSCROLL handles the two $2005 writes (coarse/fine X then Y).
func (p *PPU) WritePPUSCROLL(old, val uint8) {
	if !p.w {
		p.t = (p.t &^ 0b11111) | uint16(val>>3)
		p.x = val & 0b111
	} else {
		p.t = (p.t &^ 0b111_00_11111_00000) | (uint16(val&0b111) << 12) | (uint16(val&0b11111000) << 2)
	}
	p.w = !p.w
}

// WritePPUADDR handles the two $2006 writes; the second copies t into v.
func (p *PPU) WritePPUADDR(old, val uint8) {
	if !p.w {
		p.t = (p.t &^ 0b0111_1111_0000_0000) | (uint16(val&0x3F) << 8)
	} else {
		p.t = (p.t &^ 0xFF) | uint16(val)
		p.v = p.t
		p.Hook.OnPPUAddress(p.v)
	}
	p.w = !p.w
}

// ReadPPUDATA implements the buffered-read quirk: reads below $3F00 return
// the byte latched by the *previous* read, not the one at the current
// address; palette reads are immediate but still refill the buffer (from
// the nametable mirror one would see through the palette region).
func (p *PPU) ReadPPUDATA(_ uint8) uint8 {
	addr := p.v & 0x3FFF
	var val uint8
	if addr < 0x3F00 {
		val = p.ppuDataBuf
		p.ppuDataBuf = p.Bus.Read8(addr, false)
	} else {
		val = p.Bus.Read8(addr, false)
		p.ppuDataBuf = p.Bus.Read8(addr&0x2FFF, false)
	}
	p.incrementVRAM()
	return val
}

func (p *PPU) WritePPUDATA(old, val uint8) {
	addr := p.v & 0x3FFF
	p.Bus.Write8(addr, val)
	p.incrementVRAM()
}

func (p *PPU) incrementVRAM() {
	if p.PPUCTRL.GetBit(ctrlVramIncr) {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}

// DMAWrite is invoked 256 times by console's OAM DMA with sequential
// bytes from CPU page memory; it always starts at OAMADDR's current value.
func (p *PPU) DMAWrite(b uint8) {
	p.oam[p.OAMADDR.Value] = b
	p.OAMADDR.Value++
}
