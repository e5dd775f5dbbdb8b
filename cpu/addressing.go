package cpu

// Addressing-mode helpers return the effective address an opcode should
// operate on. Each is responsible for whatever extra bus cycles its mode
// takes (dummy reads, page-cross penalties), matching real 6502 timing.

func (c *Core) fetch8() uint8 {
	v := c.Read8(c.PC)
	c.PC++
	return v
}

func (c *Core) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *Core) addrImmediate() uint16 {
	addr := c.PC
	c.PC++
	return addr
}

func (c *Core) addrZeroPage() uint16 {
	return uint16(c.fetch8())
}

func (c *Core) addrZeroPageX() uint16 {
	base := c.fetch8()
	c.Read8(uint16(base)) // dummy read at the un-indexed address
	return uint16(base + c.X)
}

func (c *Core) addrZeroPageY() uint16 {
	base := c.fetch8()
	c.Read8(uint16(base))
	return uint16(base + c.Y)
}

func (c *Core) addrAbsolute() uint16 {
	return c.fetch16()
}

// addrAbsoluteX/Y take an extra cycle only when indexing crosses a page,
// except when forceExtra (store instructions, read-modify-write) is set,
// since those always pay the dummy-read cycle regardless.
func (c *Core) addrAbsoluteX(forceExtra bool) uint16 {
	base := c.fetch16()
	addr := base + uint16(c.X)
	if forceExtra || (addr&0xFF00) != (base&0xFF00) {
		c.Read8((base & 0xFF00) | (addr & 0x00FF))
	}
	return addr
}

func (c *Core) addrAbsoluteY(forceExtra bool) uint16 {
	base := c.fetch16()
	addr := base + uint16(c.Y)
	if forceExtra || (addr&0xFF00) != (base&0xFF00) {
		c.Read8((base & 0xFF00) | (addr & 0x00FF))
	}
	return addr
}

func (c *Core) addrIndirectX() uint16 {
	base := c.fetch8()
	c.Read8(uint16(base))
	ptr := base + c.X
	lo := c.Read8(uint16(ptr))
	hi := c.Read8(uint16(ptr + 1))
	return uint16(hi)<<8 | uint16(lo)
}

func (c *Core) addrIndirectY(forceExtra bool) uint16 {
	ptr := c.fetch8()
	lo := c.Read8(uint16(ptr))
	hi := c.Read8(uint16(ptr + 1))
	base := uint16(hi)<<8 | uint16(lo)
	addr := base + uint16(c.Y)
	if forceExtra || (addr&0xFF00) != (base&0xFF00) {
		c.Read8((base & 0xFF00) | (addr & 0x00FF))
	}
	return addr
}

func (c *Core) addrRelative() int8 {
	return int8(c.fetch8())
}

func (c *Core) branch(taken bool) {
	offset := c.addrRelative()
	if !taken {
		return
	}
	oldPC := c.PC
	c.Read8(oldPC) // dummy read: the branch-taken cycle.
	newPC := uint16(int32(oldPC) + int32(offset))
	if (newPC & 0xFF00) != (oldPC & 0xFF00) {
		c.Read8((oldPC & 0xFF00) | (newPC & 0x00FF))
	}
	c.PC = newPC
}
