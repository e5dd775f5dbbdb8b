// Package apu implements the NES's Audio Processing Unit: five channels
// (two pulse, triangle, noise, DMC), the frame-sequencer that clocks their
// envelopes/sweeps/length counters, and the nonlinear mixer that resamples
// the result to a host sample rate.
package apu

import (
	"nescore/hwdefs"
	"nescore/hwio"
	"nescore/internal/log"
)

// APU is the top-level audio unit, driven one CPU cycle at a time by
// Console.frame()'s CPU->APU->PPU interleave (spec 4.7).
type APU struct {
	Pulse1   *Pulse
	Pulse2   *Pulse
	Triangle *Triangle
	Noise    *Noise
	DMC      *DMC

	frameCounter *FrameCounter
	Mixer        *Mixer

	cpu irqSetter

	STATUS hwio.Reg8 `hwio:"offset=0x15,bank=1,rcb,wcb,pcb"`
}

// New wires all five channels, the frame sequencer and the mixer together.
// mem supplies the DMC's sample-DMA reads (the CPU's own bus); cpu receives
// the frame-counter and DMC IRQ lines.
func New(mem DMCMemory, cpu irqSetter, sampleRate int) *APU {
	a := &APU{
		Pulse1:   NewPulse(true),
		Pulse2:   NewPulse(false),
		Triangle: NewTriangle(),
		Noise:    NewNoise(),
		DMC:      NewDMC(mem),
		Mixer:    NewMixer(sampleRate),
		cpu:      cpu,
	}
	a.frameCounter = NewFrameCounter(cpu, a.tickQuarterFrame, a.tickHalfFrame)
	hwio.MustInitRegs(a)
	return a
}

// WireCPURegs maps every channel's registers plus $4015 onto the CPU's bus
// at their fixed (unmirrored) addresses. $4017 is deliberately left
// unmapped here: on real hardware it's shared with controller port 2's
// read-only data line (APU write / input read on the same address), so
// console wires that address itself via WriteFrameCounter.
func (a *APU) WireCPURegs(cpuBus *hwio.Table) {
	// Pulse1/Pulse2 share the Pulse type, whose tag offsets are 0x00-0x03
	// relative to each channel's own base, so Pulse2 needs its own +4
	// base. Triangle/Noise/DMC/STATUS already carry their real absolute
	// $40xx offsets in their tags, so all of them map from the $4000 base.
	cpuBus.MapBank(0x4000, a.Pulse1, 1)
	cpuBus.MapBank(0x4004, a.Pulse2, 1)
	cpuBus.MapBank(0x4000, a.Triangle, 1)
	cpuBus.MapBank(0x4000, a.Noise, 1)
	cpuBus.MapBank(0x4000, a.DMC, 1)
	cpuBus.MapBank(0x4000, a, 1) // $4015
}

// WriteFrameCounter forwards a $4017 write to the frame sequencer; see
// WireCPURegs for why this address isn't wired through hwio tags directly.
func (a *APU) WriteFrameCounter(val uint8) {
	a.frameCounter.WriteFRAMECOUNTER(0x17, val)
}

func (a *APU) tickQuarterFrame() {
	a.Pulse1.tickEnvelope()
	a.Pulse2.tickEnvelope()
	a.Noise.tickEnvelope()
	a.Triangle.tickLinearCounter()
}

func (a *APU) tickHalfFrame() {
	a.Pulse1.tickLength()
	a.Pulse2.tickLength()
	a.Triangle.tickLength()
	a.Noise.tickLength()
	a.Pulse1.tickSweep()
	a.Pulse2.tickSweep()
}

// ReadSTATUS reports each channel's length-counter-nonzero status in bits
// 0-4 and the frame/DMC IRQ flags in bits 6-7; reading clears the frame
// IRQ flag (but not the DMC one).
func (a *APU) ReadSTATUS(uint8) uint8 {
	v := a.PeekSTATUS(0)
	a.cpu.ClearIRQ(hwdefs.FrameCounter)
	return v
}

func (a *APU) PeekSTATUS(uint8) uint8 {
	var v uint8
	if a.Pulse1.status() {
		v |= 0x01
	}
	if a.Pulse2.status() {
		v |= 0x02
	}
	if a.Triangle.status() {
		v |= 0x04
	}
	if a.Noise.status() {
		v |= 0x08
	}
	if a.DMC.status() {
		v |= 0x10
	}
	if a.frameCounter.pendingIRQ() {
		v |= 0x40
	}
	if a.DMC.irqPending {
		v |= 0x80
	}
	return v
}

// WriteSTATUS enables/disables each channel and clears the DMC IRQ flag.
func (a *APU) WriteSTATUS(_, val uint8) {
	a.Pulse1.setEnabled(val&0x01 != 0)
	a.Pulse2.setEnabled(val&0x02 != 0)
	a.Triangle.setEnabled(val&0x04 != 0)
	a.Noise.setEnabled(val&0x08 != 0)
	a.DMC.setEnabled(val&0x10 != 0)
	a.cpu.ClearIRQ(hwdefs.DMC)

	log.ModAPU.DebugZ("write apu status").Hex8("val", val).End()
}

// Advance runs the APU for cpuCycles CPU cycles, ticking every channel's
// timer and the frame sequencer, and mixing one sample per cycle into the
// resampler. Call once per Console.frame() CPU step, matching the
// CPU->APU->PPU interleave. The return value is the number of CPU cycles
// the DMC's sample DMA stole this call; the caller is expected to feed it
// to cpu.StealCycles (coarse per spec 9's DMC cycle-stealing note: real
// stalls are 2 or 4 cycles depending on bus timing, modeled here as a flat
// 4 per byte fetched).
func (a *APU) Advance(cpuCycles int64) int64 {
	var stolen int64
	for i := int64(0); i < cpuCycles; i++ {
		a.frameCounter.tick()
		a.Pulse1.tickTimer()
		a.Pulse2.tickTimer()
		a.Triangle.tickTimer()
		a.Noise.tickTimer()
		a.DMC.tickTimer()
		if a.DMC.irqPending {
			a.cpu.RequestIRQ(hwdefs.DMC)
		} else {
			a.cpu.ClearIRQ(hwdefs.DMC)
		}

		if a.DMC.StolenCycles > 0 {
			stolen += a.DMC.StolenCycles
			a.DMC.StolenCycles = 0
		}

		a.Mixer.tick(a.Pulse1.output(), a.Pulse2.output(), a.Triangle.output(), a.Noise.output(), a.DMC.output())
	}
	a.Mixer.endFrame(cpuCycles)
	return stolen
}

func (a *APU) Reset(soft bool) {
	a.Pulse1.reset(soft)
	a.Pulse2.reset(soft)
	a.Triangle.reset(soft)
	a.Noise.reset(soft)
	a.DMC.reset(soft)
	a.frameCounter.reset(soft)
	a.Mixer.reset()
}
