package apu

import (
	"nescore/hwdefs"
	"nescore/hwio"
)

// frameStepCycles gives, for each step of the 4-step and 5-step sequences,
// the CPU-cycle count (measured from the start of the sequence) at which
// that step fires.
var frameStepCycles = [2][6]int32{
	{7457, 14913, 22371, 29828, 29829, 29830},
	{7457, 14913, 22371, 29829, 37281, 37282},
}

type frameStepKind uint8

const (
	noFrame frameStepKind = iota
	quarterFrame
	halfFrame
)

var frameStepKinds = [2][6]frameStepKind{
	{quarterFrame, halfFrame, quarterFrame, noFrame, halfFrame, noFrame},
	{quarterFrame, halfFrame, quarterFrame, noFrame, halfFrame, noFrame},
}

// irqSetter raises and clears the frame-counter's contribution to the
// shared IRQ line.
type irqSetter interface {
	RequestIRQ(src hwdefs.IRQSource)
	ClearIRQ(src hwdefs.IRQSource)
}

// FrameCounter sequences quarter-frame (envelope/linear-counter) and
// half-frame (length-counter/sweep) clocks at ~240 Hz / ~120 Hz, in either
// 4-step or 5-step mode, per $4017.
type FrameCounter struct {
	cpu irqSetter

	step       uint32
	cycle      int32
	mode       uint32 // 0: 4-step, 1: 5-step.
	inhibitIRQ bool

	pendingMode    int16 // -1 when no write is pending.
	writeDelay     uint8
	onQuarterFrame func()
	onHalfFrame    func()

	FRAMECOUNTER hwio.Reg8 `hwio:"offset=0x17,bank=1,writeonly,wcb"`
}

func NewFrameCounter(cpu irqSetter, onQuarterFrame, onHalfFrame func()) *FrameCounter {
	fc := &FrameCounter{cpu: cpu, pendingMode: -1, onQuarterFrame: onQuarterFrame, onHalfFrame: onHalfFrame}
	hwio.MustInitRegs(fc)
	return fc
}

// pendingIRQ reports whether the frame sequencer currently has an
// unacknowledged frame IRQ asserted; used by APU.PeekSTATUS to reflect
// $4015 bit 6 without side effects.
func (fc *FrameCounter) pendingIRQ() bool {
	return !fc.inhibitIRQ && fc.mode == 0 && fc.step >= 3 && fc.cycle >= frameStepCycles[0][3]
}

func (fc *FrameCounter) reset(soft bool) {
	fc.cycle = 0
	fc.step = 0
	if !soft {
		fc.mode = 0
	}
	fc.inhibitIRQ = false
	fc.pendingMode = -1
	fc.writeDelay = 0
}

// WriteFRAMECOUNTER handles $4017: bit 7 selects 5-step mode, bit 6
// inhibits the frame IRQ (and immediately clears a pending one).
func (fc *FrameCounter) WriteFRAMECOUNTER(_, val uint8) {
	fc.pendingMode = int16(val)
	fc.writeDelay = 3 // takes effect 3-4 CPU cycles after the write; modeled flatly at 3.
	fc.inhibitIRQ = val&0x40 != 0
	if fc.inhibitIRQ {
		fc.cpu.ClearIRQ(hwdefs.FrameCounter)
	}
}

// tick is called once per CPU cycle.
func (fc *FrameCounter) tick() {
	if fc.pendingMode >= 0 {
		fc.writeDelay--
		if fc.writeDelay == 0 {
			if fc.pendingMode&0x80 != 0 {
				fc.mode = 1
			} else {
				fc.mode = 0
			}
			fc.step = 0
			fc.cycle = 0
			fc.pendingMode = -1
			if fc.mode == 1 {
				// Writing with bit 7 set immediately clocks both units.
				fc.onQuarterFrame()
				fc.onHalfFrame()
			}
			return
		}
	}

	fc.cycle++
	if fc.cycle < frameStepCycles[fc.mode][fc.step] {
		return
	}

	if !fc.inhibitIRQ && fc.mode == 0 && fc.step >= 3 {
		fc.cpu.RequestIRQ(hwdefs.FrameCounter)
	}

	switch frameStepKinds[fc.mode][fc.step] {
	case quarterFrame:
		fc.onQuarterFrame()
	case halfFrame:
		fc.onQuarterFrame()
		fc.onHalfFrame()
	}

	fc.step++
	if fc.step == 6 {
		fc.step = 0
		fc.cycle = 0
	}
}
