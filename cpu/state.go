package cpu

import "nescore/hwdefs"

// State is the serializable snapshot of every register and interrupt-edge
// latch the core needs to resume exactly where it left off (spec.md §6).
// Bus/RAM contents are owned and snapshotted by the console, not here.
type State struct {
	A, X, Y, SP uint8
	PC          uint16
	P           Flags
	Cycles      int64

	NMILine, PrevNMILine bool
	NeedNMI              bool
	RunIRQ               bool
	IRQFlag              uint8

	Halted bool
}

// State captures the core's current register file and interrupt-edge
// latches.
func (c *Core) State() State {
	return State{
		A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC, P: c.P, Cycles: c.Cycles,
		NMILine: c.nmiLine, PrevNMILine: c.prevNmiLine, NeedNMI: c.needNmi,
		RunIRQ: c.runIRQ, IRQFlag: uint8(c.irqFlag), Halted: c.halted,
	}
}

// SetState restores a previously captured State.
func (c *Core) SetState(s State) {
	c.A, c.X, c.Y, c.SP, c.PC, c.P, c.Cycles = s.A, s.X, s.Y, s.SP, s.PC, s.P, s.Cycles
	c.nmiLine, c.prevNmiLine, c.needNmi = s.NMILine, s.PrevNMILine, s.NeedNMI
	c.runIRQ, c.halted = s.RunIRQ, s.Halted
	c.irqFlag = hwdefs.IRQSource(s.IRQFlag)
}
