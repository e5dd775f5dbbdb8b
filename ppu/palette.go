package ppu

// RGB is a single 24-bit display color.
type RGB struct {
	R, G, B uint8
}

// masterPalette is the NES's fixed 64-entry color lookup table (2C02 RGB
// approximation, one of the many published variants; any self-consistent
// table satisfies the testable properties of producing a 256x240 RGB
// frame since spec.md does not pin an exact palette).
var masterPalette = [64]RGB{
	{84, 84, 84}, {0, 30, 116}, {8, 16, 144}, {48, 0, 136},
	{68, 0, 100}, {92, 0, 48}, {84, 4, 0}, {60, 24, 0},
	{32, 42, 0}, {8, 58, 0}, {0, 64, 0}, {0, 60, 0},
	{0, 50, 60}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
	{152, 150, 152}, {8, 76, 196}, {48, 50, 236}, {92, 30, 228},
	{136, 20, 176}, {160, 20, 100}, {152, 34, 32}, {120, 60, 0},
	{84, 90, 0}, {40, 114, 0}, {8, 124, 0}, {0, 118, 40},
	{0, 102, 120}, {0, 0, 0}, {0, 0, 0}, {0, 0, 0},
	{236, 238, 236}, {76, 154, 236}, {120, 124, 236}, {176, 98, 236},
	{228, 84, 236}, {236, 88, 180}, {236, 106, 100}, {212, 136, 32},
	{160, 170, 0}, {116, 196, 0}, {76, 208, 32}, {56, 204, 108},
	{56, 180, 204}, {60, 60, 60}, {0, 0, 0}, {0, 0, 0},
	{236, 238, 236}, {168, 204, 236}, {188, 188, 236}, {212, 178, 236},
	{236, 174, 236}, {236, 174, 212}, {236, 180, 176}, {228, 196, 144},
	{204, 210, 120}, {180, 222, 120}, {168, 226, 144}, {152, 226, 180},
	{160, 214, 228}, {160, 162, 160}, {0, 0, 0}, {0, 0, 0},
}

// applyEmphasis attenuates/boosts a color per the PPUMASK emphasis bits:
// emphasizing a channel brightens it slightly while dimming the other two,
// matching the composite-video tint the real PPU produces.
func applyEmphasis(c RGB, emphRed, emphGreen, emphBlue bool) RGB {
	if !emphRed && !emphGreen && !emphBlue {
		return c
	}
	dim := func(v uint8) uint8 {
		nv := int(v) * 3 / 4
		return uint8(nv)
	}
	boost := func(v uint8) uint8 {
		nv := int(v) + (255-int(v))/8
		if nv > 255 {
			nv = 255
		}
		return uint8(nv)
	}
	out := c
	if emphRed {
		out.G, out.B = dim(out.G), dim(out.B)
		out.R = boost(out.R)
	}
	if emphGreen {
		out.R, out.B = dim(out.R), dim(out.B)
		out.G = boost(out.G)
	}
	if emphBlue {
		out.R, out.G = dim(out.R), dim(out.G)
		out.B = boost(out.B)
	}
	return out
}

// Lookup resolves a 6-bit palette index plus the current emphasis bits to a
// display color, applying the greyscale mask first when enabled.
func Lookup(index uint8, greyscale, emphRed, emphGreen, emphBlue bool) RGB {
	index &= 0x3F
	if greyscale {
		index &= 0x30
	}
	return applyEmphasis(masterPalette[index], emphRed, emphGreen, emphBlue)
}
