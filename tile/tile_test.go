package tile

import "testing"

func TestDecode(t *testing.T) {
	// plane0 row0 = 0b10101010, plane1 row0 = 0b11110000 -> 3,2,3,2,1,0,1,0.
	var plane0, plane1 [8]byte
	plane0[0] = 0b10101010
	plane1[0] = 0b11110000

	tl := Decode(plane0, plane1)

	want := [8]uint8{3, 2, 3, 2, 1, 0, 1, 0}
	for c := 0; c < 8; c++ {
		if got := tl.At(0, c); got != want[c] {
			t.Errorf("At(0,%d) = %d, want %d", c, got, want[c])
		}
	}
	if tl.Opaque[0] {
		t.Errorf("row 0 should not be opaque (contains a zero pixel)")
	}
}

func TestDecodeOpaqueRow(t *testing.T) {
	var plane0, plane1 [8]byte
	plane0[3] = 0xFF
	plane1[3] = 0x00

	tl := Decode(plane0, plane1)
	if !tl.Opaque[3] {
		t.Errorf("row 3 should be opaque: every pixel is color 1")
	}
	for c := 0; c < 8; c++ {
		if got := tl.At(3, c); got != 1 {
			t.Errorf("At(3,%d) = %d, want 1", c, got)
		}
	}
}

func TestDecodeBytes(t *testing.T) {
	raw := make([]byte, 16)
	raw[0] = 0xFF // plane0 row0 all set
	raw[8] = 0xFF // plane1 row0 all set -> color 3

	tl := DecodeBytes(raw)
	for c := 0; c < 8; c++ {
		if got := tl.At(0, c); got != 3 {
			t.Errorf("At(0,%d) = %d, want 3", c, got)
		}
	}
}

func TestCacheInvalidation(t *testing.T) {
	chr := make([]byte, 32) // two tiles
	c := NewCache(chr)

	tl := c.Get(0)
	for r := 0; r < 8; r++ {
		for col := 0; col < 8; col++ {
			if tl.At(r, col) != 0 {
				t.Fatalf("expected all-zero tile before any CHR write")
			}
		}
	}

	chr[0] = 0xFF
	c.Invalidate(0)

	tl = c.Get(0)
	if tl.At(0, 0) != 1 {
		t.Errorf("At(0,0) = %d, want 1 after invalidate+rewrite", tl.At(0, 0))
	}
}

func TestCacheSetCHRDropsEntries(t *testing.T) {
	chrA := make([]byte, 16)
	chrA[0] = 0xFF
	c := NewCache(chrA)
	tl := c.Get(0)
	if tl.At(0, 0) != 1 {
		t.Fatalf("sanity check failed")
	}

	chrB := make([]byte, 16) // all zero
	c.SetCHR(chrB)
	tl = c.Get(0)
	if tl.At(0, 0) != 0 {
		t.Errorf("At(0,0) = %d, want 0 after SetCHR to a different bank", tl.At(0, 0))
	}
}
