package ppu

// State is the serializable snapshot of the PPU's internal register and
// memory state (spec.md §6). The Bus's CHR mapping (owned by the
// cartridge mapper) is not included; only the PPU's own onboard VRAM/OAM
// and pipeline latches are.
type State struct {
	Cycle, Scanline int
	FrameOdd        bool

	PPUCTRL, PPUMASK, PPUSTATUS, OAMADDR uint8
	OAMDATA, PPUSCROLL, PPUADDR, PPUDATA uint8

	V, T uint16
	X    uint8
	W    bool

	PPUDataBuf uint8

	OAM       [256]uint8
	Nametable [0x800]uint8
	Palette   [0x20]uint8

	BgShiftLo, BgShiftHi         uint16
	BgAttrShiftLo, BgAttrShiftHi uint16
	NtLatch, AtLatch             uint8
	PtLoLatch, PtHiLatch         uint8
	ExPatLoLatch, ExPatHiLatch   uint8

	SuppressVblank bool
}

// State captures every field Restore needs to resume rendering exactly at
// the dot this was called on.
func (p *PPU) State() State {
	return State{
		Cycle: p.Cycle, Scanline: p.Scanline, FrameOdd: p.frameOdd,
		PPUCTRL: p.PPUCTRL.Value, PPUMASK: p.PPUMASK.Value, PPUSTATUS: p.PPUSTATUS.Value,
		OAMADDR: p.OAMADDR.Value, OAMDATA: p.OAMDATA.Value, PPUSCROLL: p.PPUSCROLL.Value,
		PPUADDR: p.PPUADDR.Value, PPUDATA: p.PPUDATA.Value,
		V: p.v, T: p.t, X: p.x, W: p.w,
		PPUDataBuf: p.ppuDataBuf,
		OAM:        p.oam, Nametable: p.nt, Palette: p.pal,
		BgShiftLo: p.bgShiftLo, BgShiftHi: p.bgShiftHi,
		BgAttrShiftLo: p.bgAttrShiftLo, BgAttrShiftHi: p.bgAttrShiftHi,
		NtLatch: p.ntLatch, AtLatch: p.atLatch, PtLoLatch: p.ptLoLatch, PtHiLatch: p.ptHiLatch,
		ExPatLoLatch: p.exPatLoLatch, ExPatHiLatch: p.exPatHiLatch,
		SuppressVblank: p.suppressVblank,
	}
}

// SetState restores a previously captured State. The cartridge mapper's
// own nametable/CHR wiring onto Bus is untouched by this call; a mapper
// with runtime-selectable mirroring (MMC1, AxROM) reapplies it from its
// own RestoreState after this.
func (p *PPU) SetState(s State) {
	p.Cycle, p.Scanline, p.frameOdd = s.Cycle, s.Scanline, s.FrameOdd
	p.PPUCTRL.Value, p.PPUMASK.Value, p.PPUSTATUS.Value = s.PPUCTRL, s.PPUMASK, s.PPUSTATUS
	p.OAMADDR.Value, p.OAMDATA.Value, p.PPUSCROLL.Value = s.OAMADDR, s.OAMDATA, s.PPUSCROLL
	p.PPUADDR.Value, p.PPUDATA.Value = s.PPUADDR, s.PPUDATA
	p.v, p.t, p.x, p.w = s.V, s.T, s.X, s.W
	p.ppuDataBuf = s.PPUDataBuf
	p.oam, p.nt, p.pal = s.OAM, s.Nametable, s.Palette
	p.bgShiftLo, p.bgShiftHi = s.BgShiftLo, s.BgShiftHi
	p.bgAttrShiftLo, p.bgAttrShiftHi = s.BgAttrShiftLo, s.BgAttrShiftHi
	p.ntLatch, p.atLatch, p.ptLoLatch, p.ptHiLatch = s.NtLatch, s.AtLatch, s.PtLoLatch, s.PtHiLatch
	p.exPatLoLatch, p.exPatHiLatch = s.ExPatLoLatch, s.ExPatHiLatch
	p.suppressVblank = s.SuppressVblank
}
