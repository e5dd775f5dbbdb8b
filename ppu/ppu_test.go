package ppu

import "testing"

func newTestPPU() *PPU {
	p := New()
	chr := make([]byte, 0x2000)
	p.Bus.MapMemorySlice(0x0000, 0x1FFF, chr, false)
	p.SetMirroring(1) // vertical, see ines.MirrorVertical
	return p
}

func TestPPUCTRLSetsNametableBitsOfT(t *testing.T) {
	p := newTestPPU()
	p.t = 0x7FFF

	p.WritePPUCTRL(0, 0b00)
	if got := (p.t >> 10) & 0b11; got != 0 {
		t.Errorf("t nametable bits = %02b, want 00", got)
	}

	p.WritePPUCTRL(0, 0b10)
	if got := (p.t >> 10) & 0b11; got != 0b10 {
		t.Errorf("t nametable bits = %02b, want 10", got)
	}
}

func TestPPUSCROLLTwoWrites(t *testing.T) {
	p := newTestPPU()

	p.WritePPUSCROLL(0, 0b01111_101) // coarse X = 0b01111, fine X = 0b101
	if got := p.t & 0x1F; got != 0b01111 {
		t.Errorf("t coarseX = %05b, want 01111", got)
	}
	if p.x != 0b101 {
		t.Errorf("fine X = %03b, want 101", p.x)
	}
	if !p.w {
		t.Errorf("write toggle should be true after first write")
	}

	p.WritePPUSCROLL(0, 0b01_011_110) // coarse Y = 0b01011, fine Y = 0b110
	if got := (p.t >> 5) & 0x1F; got != 0b01011 {
		t.Errorf("t coarseY = %05b, want 01011", got)
	}
	if got := (p.t >> 12) & 0b111; got != 0b110 {
		t.Errorf("t fineY = %03b, want 110", got)
	}
	if p.w {
		t.Errorf("write toggle should be false after second write")
	}
}

func TestPPUADDRCopiesIntoV(t *testing.T) {
	p := newTestPPU()

	p.WritePPUADDR(0, 0x3D) // high byte
	p.WritePPUADDR(0, 0xF0) // low byte, triggers t -> v

	if p.v != 0x3DF0 {
		t.Errorf("v = %04X, want 3DF0", p.v)
	}
}

func TestReadStatusClearsVblankAndToggle(t *testing.T) {
	p := newTestPPU()
	p.w = true
	p.PPUSTATUS.SetBit(statVblank)

	ret := p.ReadPPUSTATUS(p.PPUSTATUS.Value)

	if ret&(1<<statVblank) == 0 {
		t.Errorf("returned status should still reflect the prior vblank bit")
	}
	if p.PPUSTATUS.GetBit(statVblank) {
		t.Errorf("vblank should be cleared by the read")
	}
	if p.w {
		t.Errorf("write toggle should be cleared by the read")
	}
}

func TestPPUDATAReadIsBuffered(t *testing.T) {
	p := newTestPPU()
	p.Bus.Write8(0x0010, 0x42)
	p.Bus.Write8(0x0011, 0x99)

	p.v = 0x0010
	first := p.ReadPPUDATA(0)
	if first != 0 {
		t.Errorf("first read should return the stale buffer (0), got %02X", first)
	}

	second := p.ReadPPUDATA(0)
	if second != 0x42 {
		t.Errorf("second read should return the byte at the first address, got %02X", second)
	}
}

func TestVblankSetAndClearedAtFixedDots(t *testing.T) {
	p := newTestPPU()
	p.Scanline, p.Cycle = 241, 1

	p.Advance(1) // dot 1 of scanline 241
	if !p.PPUSTATUS.GetBit(statVblank) {
		t.Errorf("vblank should be set at scanline 241 dot 1")
	}

	p.Scanline, p.Cycle = 261, 1
	p.Advance(1) // dot 1 of the pre-render line
	if p.PPUSTATUS.GetBit(statVblank) {
		t.Errorf("vblank should be cleared at scanline 261 dot 1")
	}
}

func TestEightByEightSpritePatternTableSelect(t *testing.T) {
	p := newTestPPU()
	p.secondary[0] = Sprite{Y: 10, Tile: 0x05, Attr: 0, X: 0}
	p.spriteIdx[0] = 0
	p.spriteRows[0] = 3
	p.secondaryN = 1
	p.PPUCTRL.Value = 1 << ctrlSpritePT // sprite pattern table 1 in 8x8 mode

	// tile 0x05, row 3, from pattern table 1.
	wantAddr := uint16(0x1000) + uint16(0x05)*16 + 3
	p.Bus.Write8(wantAddr, 0xCD)

	p.fetchSpritePatterns()
	if p.spritePat0[0] != 0xCD {
		t.Errorf("spritePat0[0] = %02X, want CD (wrong 8x8 pattern table)", p.spritePat0[0])
	}
}

func TestSixteenHighSpriteUsesLSBOfTileForPatternTable(t *testing.T) {
	p := newTestPPU()
	p.PPUCTRL.SetBit(ctrlSpriteSize) // 8x16 sprites

	// tile=0x05 (odd -> pattern table 1); row 9 should select the second
	// half-tile (tile&0xFE + 1) at row 1, per the boundary property.
	p.secondary[0] = Sprite{Y: 0, Tile: 0x05, Attr: 0, X: 0}
	p.spriteIdx[0] = 0
	p.spriteRows[0] = 9
	p.secondaryN = 1

	// write a recognizable byte at the expected fetch address so the test
	// can confirm which address was actually read.
	wantAddr := uint16(0x1000) + uint16(0x04+1)*16 + 1
	p.Bus.Write8(wantAddr, 0xAB)

	p.fetchSpritePatterns()
	if p.spritePat0[0] != 0xAB {
		t.Errorf("spritePat0[0] = %02X, want AB (wrong 8x16 fetch address)", p.spritePat0[0])
	}
}
