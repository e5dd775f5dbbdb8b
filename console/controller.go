package console

import (
	"nescore/hwdefs"
	"nescore/hwio"
)

// controllerPort is one of the two standard NES controller ports: an 8-bit
// parallel-in/serial-out shift register. Writing $4016 bit 0 high latches
// the current button state; while it's low, each read shifts the next
// button bit out on D0 and pushes a 1 in behind it. Bits 1-7 of the read
// data come from the open bus / unconnected lines on real hardware; this
// core reports bit 6 as 1 (the $40 high address byte left on the bus) and
// the others as 0 rather than modeling bus-capacitance decay.
type controllerPort struct {
	buttons uint8 // bit i set means button i is currently held
	shift   uint8
	strobe  bool
}

func (c *controllerPort) setButton(b hwdefs.Button, down bool) {
	if down {
		c.buttons |= 1 << b
	} else {
		c.buttons &^= 1 << b
	}
	if c.strobe {
		c.shift = c.buttons
	}
}

func (c *controllerPort) setStrobe(high bool) {
	c.strobe = high
	if high {
		c.shift = c.buttons
	}
}

func (c *controllerPort) read() uint8 {
	if c.strobe {
		c.shift = c.buttons
	}
	bit := c.shift & 1
	c.shift = c.shift>>1 | 0x80
	return bit
}

// controllers wires $4016 (data port 1 + the shared strobe bit written to
// both ports). Port 2's data line lives at $4017, which console.go wires
// manually alongside the APU frame-counter write that shares the address.
type controllers struct {
	ports [hwdefs.NumPorts]controllerPort

	JOY1 hwio.Reg8 `hwio:"offset=0x16,bank=1,rcb,wcb"`
}

func newControllers() *controllers {
	c := &controllers{}
	hwio.MustInitRegs(c)
	return c
}

func (c *controllers) WireCPURegs(cpuBus *hwio.Table) {
	cpuBus.MapBank(0x4000, c, 1)
}

// SetButton updates the held/released state of one button on one port,
// the console's external input API (spec.md §6).
func (c *controllers) SetButton(port hwdefs.Port, b hwdefs.Button, down bool) {
	c.ports[port].setButton(b, down)
}

type controllerPortState struct {
	Buttons uint8
	Shift   uint8
	Strobe  bool
}

type controllersState struct {
	Ports [hwdefs.NumPorts]controllerPortState
}

func (c *controllers) state() controllersState {
	var s controllersState
	for i, p := range c.ports {
		s.Ports[i] = controllerPortState{Buttons: p.buttons, Shift: p.shift, Strobe: p.strobe}
	}
	return s
}

func (c *controllers) setState(s controllersState) {
	for i, ps := range s.Ports {
		c.ports[i] = controllerPort{buttons: ps.Buttons, shift: ps.Shift, strobe: ps.Strobe}
	}
}

func (c *controllers) ReadJOY1(uint8) uint8 { return c.ports[hwdefs.Port1].read() | 0x40 }
func (c *controllers) ReadJOY2Data() uint8  { return c.ports[hwdefs.Port2].read() | 0x40 }

func (c *controllers) WriteJOY1(_, val uint8) {
	strobe := val&1 != 0
	c.ports[hwdefs.Port1].setStrobe(strobe)
	c.ports[hwdefs.Port2].setStrobe(strobe)
}
