package ppu

// This file implements the Loopy background pipeline and sprite evaluation
// described in spec.md 4.4: a faithful port of the well-known NES PPU
// fetch/shift-register algorithm, expressed over v/t/x without shadow
// scroll variables (see DESIGN.md's `ppu` section).

func fillByte(bit uint8) uint16 {
	if bit != 0 {
		return 0xFF
	}
	return 0
}

// backgroundFetchCycle issues the nametable/attribute/pattern fetches for
// dot `cycle`, spread across the usual 8-dot groups, and advances coarse X
// at the end of each group. Called for both the 32 visible tiles (dots
// 1-256) and the 2-tile next-scanline prefetch (dots 321-336): see
// DESIGN.md's "34 vs 32" decision.
func (p *PPU) backgroundFetchCycle(cycle int) {
	phase := (cycle - 1) % 8
	switch phase {
	case 0:
		p.loadBackgroundShifters()
		p.fetchNametableByte()
	case 2:
		p.fetchAttributeByte()
	case 4:
		p.fetchPatternLow()
	case 6:
		p.fetchPatternHigh()
	case 7:
		p.incrementCoarseX()
	}
}

func (p *PPU) fetchNametableByte() {
	addr := 0x2000 | (p.v & 0x0FFF)
	p.Hook.OnPPUAddress(addr)
	p.ntLatch = p.Bus.Read8(addr, false)
}

func (p *PPU) fetchAttributeByte() {
	if p.ExAttr != nil {
		fineY := (p.v >> 12) & 0x7
		p.atLatch, p.exPatLoLatch, p.exPatHiLatch = p.ExAttr.ExAttribute(p.v&0x03FF, p.ntLatch, fineY)
		return
	}

	addr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	p.Hook.OnPPUAddress(addr)
	atByte := p.Bus.Read8(addr, false)

	coarseX := p.v & 0x1F
	coarseY := (p.v >> 5) & 0x1F
	shift := ((coarseY & 2) << 1) | (coarseX & 2)
	p.atLatch = (atByte >> shift) & 0x3
}

func (p *PPU) bgPatternBase() uint16 {
	if p.PPUCTRL.GetBit(ctrlBgPT) {
		return 0x1000
	}
	return 0x0000
}

func (p *PPU) fetchPatternLow() {
	if p.ExAttr != nil {
		p.ptLoLatch = p.exPatLoLatch
		return
	}
	fineY := (p.v >> 12) & 0x7
	addr := p.bgPatternBase() + uint16(p.ntLatch)*16 + fineY
	p.Hook.OnPPUAddress(addr)
	p.Hook.OnPatternFetch(addr)
	p.ptLoLatch = p.Bus.Read8(addr, false)
}

func (p *PPU) fetchPatternHigh() {
	if p.ExAttr != nil {
		p.ptHiLatch = p.exPatHiLatch
		return
	}
	fineY := (p.v >> 12) & 0x7
	addr := p.bgPatternBase() + uint16(p.ntLatch)*16 + fineY + 8
	p.Hook.OnPPUAddress(addr)
	p.Hook.OnPatternFetch(addr)
	p.ptHiLatch = p.Bus.Read8(addr, false)
}

func (p *PPU) loadBackgroundShifters() {
	p.bgShiftLo = (p.bgShiftLo & 0xFF00) | uint16(p.ptLoLatch)
	p.bgShiftHi = (p.bgShiftHi & 0xFF00) | uint16(p.ptHiLatch)
	p.bgAttrShiftLo = (p.bgAttrShiftLo & 0xFF00) | fillByte(p.atLatch&1)
	p.bgAttrShiftHi = (p.bgAttrShiftHi & 0xFF00) | fillByte((p.atLatch>>1)&1)
}

func (p *PPU) shiftBG() {
	if !p.renderingEnabled() {
		return
	}
	p.bgShiftLo <<= 1
	p.bgShiftHi <<= 1
	p.bgAttrShiftLo <<= 1
	p.bgAttrShiftHi <<= 1
}

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyHorizontal() {
	if !p.renderingEnabled() {
		return
	}
	const mask = 0x041F // coarse X + nametable-X bit
	p.v = (p.v &^ mask) | (p.t & mask)
}

func (p *PPU) copyVertical() {
	if !p.renderingEnabled() {
		return
	}
	const mask = 0x7BE0 // fine Y + nametable-Y bit + coarse Y
	p.v = (p.v &^ mask) | (p.t & mask)
}

/* sprites */

func (p *PPU) spriteHeight() int {
	if p.PPUCTRL.GetBit(ctrlSpriteSize) {
		return 16
	}
	return 8
}

func (p *PPU) evaluateSprites() {
	target := p.Scanline + 1
	if target >= NumScanlines {
		target = 0
	}
	height := p.spriteHeight()

	p.secondaryN = 0
	p.sprite0InSecondary = false
	overflow := false

	var rows [8]int
	for i := 0; i < 64; i++ {
		y := p.oam[i*4]
		top := int(y) + 1
		row := target - top
		if row < 0 || row >= height {
			continue
		}
		if p.secondaryN >= 8 {
			overflow = true
			continue
		}
		idx := p.secondaryN
		p.secondary[idx] = Sprite{Y: y, Tile: p.oam[i*4+1], Attr: p.oam[i*4+2], X: p.oam[i*4+3]}
		p.spriteIdx[idx] = i
		rows[idx] = row
		if i == 0 {
			p.sprite0InSecondary = true
		}
		p.secondaryN++
	}
	p.spriteRows = rows

	if overflow {
		p.PPUSTATUS.SetBit(statOverflow)
	}
}

func (p *PPU) fetchSpritePatterns() {
	height := p.spriteHeight()
	for j := 0; j < p.secondaryN; j++ {
		spr := p.secondary[j]
		row := p.spriteRows[j]
		if spr.Attr&0x80 != 0 { // vertical flip
			row = height - 1 - row
		}

		var base uint16
		var tile uint8
		if height == 16 {
			tile = spr.Tile &^ 1
			if row >= 8 {
				tile++
				row -= 8
			}
			if spr.Tile&1 != 0 {
				base = 0x1000
			}
		} else {
			tile = spr.Tile
			if p.PPUCTRL.GetBit(ctrlSpritePT) {
				base = 0x1000
			}
		}

		addr := base + uint16(tile)*16 + uint16(row)
		p.Hook.OnPPUAddress(addr)
		p.Hook.OnPatternFetch(addr)
		lo := p.Bus.Read8(addr, false)
		p.Hook.OnPPUAddress(addr + 8)
		p.Hook.OnPatternFetch(addr + 8)
		hi := p.Bus.Read8(addr+8, false)

		if spr.Attr&0x40 != 0 { // horizontal flip: reverse bit order so
			// column 0 comes from the pattern byte's bit 0 instead of bit 7.
			lo, hi = reverseBits(lo), reverseBits(hi)
		}
		p.spritePat0[j] = lo
		p.spritePat1[j] = hi
	}
	for j := p.secondaryN; j < 8; j++ {
		p.spritePat0[j], p.spritePat1[j] = 0, 0
	}
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= (b >> i) & 1
	}
	return r
}

/* pixel composition */

func (p *PPU) backdropColor() uint8 {
	return p.pal[0]
}

func (p *PPU) emitPixel() {
	x := p.Cycle - 1
	if x < 0 || x >= FrameWidth {
		return
	}

	showBg := p.PPUMASK.GetBit(maskShowBg) && (x >= 8 || p.PPUMASK.GetBit(maskShowBgLeft))
	showSpr := p.PPUMASK.GetBit(maskShowSpr) && (x >= 8 || p.PPUMASK.GetBit(maskShowSprLeft))

	var bgPixel, bgAttr uint8
	if showBg {
		bit := uint8(15 - p.x)
		bgPixel = uint8((p.bgShiftLo>>bit)&1) | uint8((p.bgShiftHi>>bit)&1)<<1
		bgAttr = uint8((p.bgAttrShiftLo>>bit)&1) | uint8((p.bgAttrShiftHi>>bit)&1)<<1
	}

	var sprPixel, sprAttr uint8
	sprFound := false
	sprIsSprite0 := false
	if showSpr {
		for j := 0; j < p.secondaryN; j++ {
			spr := p.secondary[j]
			col := x - int(spr.X)
			if col < 0 || col > 7 {
				continue
			}
			pixel := uint8((p.spritePat0[j]>>(7-col))&1) | uint8((p.spritePat1[j]>>(7-col))&1)<<1
			if pixel == 0 {
				continue
			}
			sprPixel = pixel
			sprAttr = spr.Attr
			sprFound = true
			sprIsSprite0 = p.spriteIdx[j] == 0
			break
		}
	}

	if sprIsSprite0 && bgPixel != 0 && sprPixel != 0 && x != 255 {
		p.PPUSTATUS.SetBit(statSprite0)
	}

	var paletteAddr uint16
	switch {
	case !sprFound && bgPixel == 0:
		paletteAddr = 0x3F00
	case !sprFound:
		paletteAddr = 0x3F00 + uint16(bgAttr)*4 + uint16(bgPixel)
	case bgPixel == 0:
		paletteAddr = 0x3F10 + uint16(sprAttr&0x3)*4 + uint16(sprPixel)
	case sprAttr&0x20 == 0: // sprite priority: in front of background
		paletteAddr = 0x3F10 + uint16(sprAttr&0x3)*4 + uint16(sprPixel)
	default:
		paletteAddr = 0x3F00 + uint16(bgAttr)*4 + uint16(bgPixel)
	}

	idx := p.Bus.Read8(paletteAddr, true)
	p.frame[p.Scanline][x] = Lookup(idx,
		p.PPUMASK.GetBit(maskGreyscale),
		p.PPUMASK.GetBit(maskEmphRed),
		p.PPUMASK.GetBit(maskEmphGreen),
		p.PPUMASK.GetBit(maskEmphBlue))
}
