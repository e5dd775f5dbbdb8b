package console

// Status reports whether the console is still running or has crashed
// (spec.md §7's CpuCrash policy: an illegal/unimplemented opcode halts
// the CPU, Frame() stops advancing and becomes a no-op, and the console
// only recovers via Reset).
type Status struct {
	Crashed bool
	PC      uint16
}

// Status reports the console's current run state.
func (c *Console) Status() Status {
	if c.CPU.Halted() {
		return Status{Crashed: true, PC: c.CPU.PC}
	}
	return Status{}
}
