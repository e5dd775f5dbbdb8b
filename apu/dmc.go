package apu

import "nescore/hwio"

// dmcPeriodLUT converts the low nibble of $4010 into the sample-byte timer
// reload period, in CPU cycles.
var dmcPeriodLUT = [16]uint16{428, 380, 340, 320, 286, 254, 226, 214, 190, 160, 142, 128, 106, 84, 72, 54}

// DMCMemory is the DMC's view of the CPU's address space: sample data is
// fetched by direct DMA from cartridge/PRG-RAM space, stalling the CPU for
// roughly 4 cycles per byte (modeled coarsely; see DESIGN.md's "DMC cycle
// stealing" decision).
type DMCMemory interface {
	Read8(addr uint16, peek bool) uint8
}

// DMC implements the $4010-$4013 delta-modulation sample-playback channel.
type DMC struct {
	mem DMCMemory

	sampleAddr uint16
	sampleLen  uint16
	irqEnabled bool
	loop       bool
	irqPending bool

	curAddr   uint16
	remaining uint16
	readBuf   uint8
	bufEmpty  bool

	timer    uint16
	period   uint16
	shiftReg uint8
	bitsLeft uint8
	silence  bool
	outLevel uint8

	StolenCycles int64 // accumulated coarse cycle-steal count for this Advance call.

	FLAGS      hwio.Reg8 `hwio:"offset=0x10,bank=1,writeonly,wcb"`
	LOAD       hwio.Reg8 `hwio:"offset=0x11,bank=1,writeonly,wcb"`
	SAMPLEADDR hwio.Reg8 `hwio:"offset=0x12,bank=1,writeonly,wcb"`
	SAMPLELEN  hwio.Reg8 `hwio:"offset=0x13,bank=1,writeonly,wcb"`
}

func NewDMC(mem DMCMemory) *DMC {
	d := &DMC{mem: mem, bufEmpty: true, silence: true, bitsLeft: 8}
	hwio.MustInitRegs(d)
	return d
}

func (d *DMC) WriteFLAGS(_, val uint8) {
	d.irqEnabled = val&0x80 != 0
	d.loop = val&0x40 != 0
	d.period = dmcPeriodLUT[val&0x0F]
	if !d.irqEnabled {
		d.irqPending = false
	}
}

func (d *DMC) WriteLOAD(_, val uint8) {
	d.outLevel = val & 0x7F
}

func (d *DMC) WriteSAMPLEADDR(_, val uint8) {
	d.sampleAddr = 0xC000 | (uint16(val) << 6)
}

func (d *DMC) WriteSAMPLELEN(_, val uint8) {
	d.sampleLen = (uint16(val) << 4) + 1
}

func (d *DMC) restart() {
	d.curAddr = d.sampleAddr
	d.remaining = d.sampleLen
}

func (d *DMC) fetchByte() {
	if !d.bufEmpty || d.remaining == 0 {
		return
	}
	d.readBuf = d.mem.Read8(d.curAddr, false)
	d.bufEmpty = false
	d.curAddr++
	if d.curAddr == 0 {
		d.curAddr = 0x8000
	}
	d.remaining--
	d.StolenCycles += 4 // coarse: real hardware sometimes steals 2 or 4.
	if d.remaining == 0 {
		if d.loop {
			d.restart()
		} else if d.irqEnabled {
			d.irqPending = true
		}
	}
}

// tickTimer is called once every CPU cycle.
func (d *DMC) tickTimer() {
	if d.timer > 0 {
		d.timer--
		return
	}
	d.timer = d.period

	if !d.silence {
		if d.shiftReg&1 != 0 {
			if d.outLevel <= 125 {
				d.outLevel += 2
			}
		} else if d.outLevel >= 2 {
			d.outLevel -= 2
		}
	}
	d.shiftReg >>= 1
	d.bitsLeft--
	if d.bitsLeft == 0 {
		d.bitsLeft = 8
		d.fetchByte()
		if d.bufEmpty {
			d.silence = true
		} else {
			d.silence = false
			d.shiftReg = d.readBuf
			d.bufEmpty = true
		}
	}
}

func (d *DMC) output() uint8 { return d.outLevel }

func (d *DMC) setEnabled(enabled bool) {
	if !enabled {
		d.remaining = 0
	} else if d.remaining == 0 {
		d.restart()
	}
	d.irqPending = false
}

func (d *DMC) status() bool { return d.remaining > 0 }

func (d *DMC) reset(soft bool) {
	if !soft {
		d.sampleAddr = 0xC000
		d.sampleLen = 1
	}
	d.irqEnabled = false
	d.loop = false
	d.irqPending = false
	d.curAddr = 0
	d.remaining = 0
	d.readBuf = 0
	d.bufEmpty = true
	d.timer = 0
	d.period = dmcPeriodLUT[0]
	d.shiftReg = 0
	d.bitsLeft = 8
	d.silence = true
	d.outLevel = 0
	d.StolenCycles = 0
}
