package ppu

import "nescore/ines"

// Mirroring controls how the four logical 1 KiB nametable windows
// ($2000/$2400/$2800/$2C00) map onto physical VRAM. The default wiring
// below covers the header-declared modes; a mapper with
// has_nametable_override (MMC5's $5105 per-quadrant mapping) calls
// WireNametable directly per-window instead of going through SetMirroring.
func (p *PPU) SetMirroring(m ines.NTMirroring) {
	switch m {
	case ines.MirrorVertical:
		p.WireNametable(0, p.nt[0x000:0x400])
		p.WireNametable(1, p.nt[0x400:0x800])
		p.WireNametable(2, p.nt[0x000:0x400])
		p.WireNametable(3, p.nt[0x400:0x800])
	case ines.MirrorFourScreen:
		// Only the 2 KiB of onboard VRAM exist here, so four-screen
		// falls back to the vertical layout; no board in this module
		// supplies the extra 2 KiB of cartridge VRAM.
		p.WireNametable(0, p.nt[0x000:0x400])
		p.WireNametable(1, p.nt[0x400:0x800])
		p.WireNametable(2, p.nt[0x000:0x400])
		p.WireNametable(3, p.nt[0x400:0x800])
	default: // MirrorHorizontal
		p.WireNametable(0, p.nt[0x000:0x400])
		p.WireNametable(1, p.nt[0x000:0x400])
		p.WireNametable(2, p.nt[0x400:0x800])
		p.WireNametable(3, p.nt[0x400:0x800])
	}
}

// WireNametable maps logical nametable window n (0-3) to the given 1 KiB
// backing slice, with mirrors up through $3EFF. Exposed so a mapper with
// has_nametable_override can point an individual window at its own VRAM
// (MMC5 ExRAM-as-nametable) or at single-screen bank 0/1 dynamically.
func (p *PPU) WireNametable(n int, backing []byte) {
	base := uint16(0x2000 + n*0x400)
	for _, mirror := range [2]uint16{base, base + 0x1000} {
		if mirror > 0x3EFF {
			continue
		}
		end := mirror + 0x3FF
		if end > 0x3EFF {
			end = 0x3EFF
		}
		p.Bus.MapMemorySlice(mirror, end, backing[:end-mirror+1], false)
	}
}

// CIRAM returns the given 1 KiB half of the onboard nametable VRAM, for a
// mapper that needs to point WireNametable at raw console-side VRAM
// directly instead of going through SetMirroring's four fixed layouts
// (MMC5's per-quadrant $5105 nametable mapping).
func (p *PPU) CIRAM(bank int) []byte {
	return p.nt[bank*0x400 : bank*0x400+0x400]
}

// SetSingleScreen wires all four windows to the same 1 KiB bank, used by
// AxROM (whose only mirroring control is "show VRAM bank 0 everywhere" or
// "show bank 1 everywhere") and by MMC1's two one-screen modes.
func (p *PPU) SetSingleScreen(bank int) {
	backing := p.nt[bank*0x400 : bank*0x400+0x400]
	for n := 0; n < 4; n++ {
		p.WireNametable(n, backing)
	}
}
