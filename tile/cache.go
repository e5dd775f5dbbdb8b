package tile

// Cache decodes and memoizes tiles out of an 8 KiB CHR region (512 tiles of
// 16 bytes each). Each tile is decoded on its first Get, never eagerly;
// after pattern data changes, Invalidate drops the affected entry so the
// next Get re-decodes it.
type Cache struct {
	chr    []byte
	tiles  [512]Tile
	valid  [512]bool
}

// NewCache wraps a CHR byte slice (expected to be a multiple of 16 bytes,
// normally 8 KiB = 512 tiles). The slice is read, never copied: CHR-RAM
// writes go through Invalidate so the next Get re-decodes from the same
// backing storage.
func NewCache(chr []byte) *Cache {
	return &Cache{chr: chr}
}

// SetCHR repoints the cache at a different backing slice (used when a
// mapper switches which CHR bank is visible) and drops all cached entries,
// since tile index N now refers to different bytes.
func (c *Cache) SetCHR(chr []byte) {
	c.chr = chr
	for i := range c.valid {
		c.valid[i] = false
	}
}

// Get returns the decoded tile at the given tile index (0-511), decoding
// and caching it on first access.
func (c *Cache) Get(index uint16) *Tile {
	if c.valid[index] {
		return &c.tiles[index]
	}
	off := int(index) * 16
	if off+16 > len(c.chr) {
		c.tiles[index] = Tile{}
	} else {
		c.tiles[index] = DecodeBytes(c.chr[off : off+16])
	}
	c.valid[index] = true
	return &c.tiles[index]
}

// Invalidate drops the cached decode for whichever tile(s) contain the
// given CHR byte offset, called after every CHR-RAM write so the next Get
// reflects the new bitplane bytes.
func (c *Cache) Invalidate(chrOffset int) {
	index := chrOffset / 16
	if index >= 0 && index < len(c.valid) {
		c.valid[index] = false
	}
}

// InvalidateAll drops every cached entry, used when the whole backing CHR
// slice has been swapped out (bank switch) without calling SetCHR.
func (c *Cache) InvalidateAll() {
	for i := range c.valid {
		c.valid[i] = false
	}
}
