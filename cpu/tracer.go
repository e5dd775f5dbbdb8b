package cpu

import (
	"fmt"
	"io"
)

// tracer emits one line per instruction boundary, in the compact
// register-dump form used by cycle-accuracy test suites (nestest and
// friends): program counter, registers, and cumulative cycle count.
type tracer struct {
	w io.Writer
	c *Core
}

func (t *tracer) write() {
	c := t.c
	fmt.Fprintf(t.w, "%04X  A:%02X X:%02X Y:%02X P:%02X SP:%02X CYC:%d\n",
		c.PC, c.A, c.X, c.Y, uint8(c.P), c.SP, c.Cycles)
}
