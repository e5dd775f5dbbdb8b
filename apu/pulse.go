package apu

import "nescore/hwio"

// pulseDuty holds the four 8-step waveforms selectable by PPUCTRL-style bits
// 6-7 of $4000/$4004.
var pulseDuty = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

// Pulse implements one of the two square-wave channels ($4000-$4003 /
// $4004-$4007): envelope, sweep unit, duty sequencer and length counter.
type Pulse struct {
	channel1 bool // true for $4000-3, false for $4004-7 (affects sweep negate carry).

	env      Envelope
	length   LengthCounter
	duty        uint8
	dutyPos     uint8
	timer       uint16
	period      uint16 // raw 11-bit register period, used by sweep/mute math.
	timerPeriod uint16 // period*2+1: the pulse timer runs at half the CPU rate.
	sequence    uint8

	sweepEnabled bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepDivider uint8
	sweepReload  bool
	targetPeriod uint32

	lastOutput uint8

	Duty   hwio.Reg8 `hwio:"offset=0x00,bank=1,writeonly,wcb"`
	Sweep  hwio.Reg8 `hwio:"offset=0x01,bank=1,writeonly,wcb"`
	Timer  hwio.Reg8 `hwio:"offset=0x02,bank=1,writeonly,wcb"`
	Length hwio.Reg8 `hwio:"offset=0x03,bank=1,writeonly,wcb"`
}

func NewPulse(channel1 bool) *Pulse {
	p := &Pulse{channel1: channel1}
	hwio.MustInitRegs(p)
	return p
}

func (p *Pulse) WriteDUTY(_, val uint8) {
	p.env.init(val)
	p.length.setHalt(val&0x20 != 0)
	p.duty = val >> 6
}

func (p *Pulse) WriteSWEEP(_, val uint8) {
	p.sweepEnabled = val&0x80 != 0
	p.sweepPeriod = (val>>4)&0x07 + 1
	p.sweepNegate = val&0x08 != 0
	p.sweepShift = val & 0x07
	p.sweepReload = true
	p.computeTarget()
}

func (p *Pulse) WriteTIMER(_, val uint8) {
	p.setPeriod((p.period & 0xFF00) | uint16(val))
}

func (p *Pulse) WriteLENGTH(_, val uint8) {
	p.length.load(val >> 3)
	p.setPeriod((p.period & 0x00FF) | (uint16(val&0x07) << 8))
	p.sequence = 0
	p.env.restart()
}

func (p *Pulse) setPeriod(period uint16) {
	p.period = period
	p.timerPeriod = period*2 + 1
	p.computeTarget()
}

func (p *Pulse) computeTarget() {
	shifted := p.period >> p.sweepShift
	if p.sweepNegate {
		if p.channel1 {
			p.targetPeriod = uint32(p.period) - uint32(shifted) - 1
		} else {
			p.targetPeriod = uint32(p.period) - uint32(shifted)
		}
	} else {
		p.targetPeriod = uint32(p.period) + uint32(shifted)
	}
}

func (p *Pulse) muted() bool {
	return p.period < 8 || p.targetPeriod > 0x7FF
}

// tickTimer is called once every CPU cycle; timerPeriod already encodes
// the pulse channel's inherent divide-by-two.
func (p *Pulse) tickTimer() {
	if p.timer == 0 {
		p.timer = p.timerPeriod
		p.sequence = (p.sequence - 1) & 7
	} else {
		p.timer--
	}
}

func (p *Pulse) tickEnvelope() { p.env.tick() }
func (p *Pulse) tickLength()   { p.length.tick() }

func (p *Pulse) tickSweep() {
	p.sweepDivider--
	if int8(p.sweepDivider) < 0 {
		if p.sweepShift > 0 && p.sweepEnabled && p.period >= 8 && p.targetPeriod <= 0x7FF {
			p.setPeriod(uint16(p.targetPeriod))
		}
		p.sweepDivider = p.sweepPeriod
	}
	if p.sweepReload {
		p.sweepDivider = p.sweepPeriod
		p.sweepReload = false
	}
}

func (p *Pulse) output() uint8 {
	if p.muted() || pulseDuty[p.duty][p.sequence] == 0 || !p.length.status() {
		p.lastOutput = 0
	} else {
		p.lastOutput = p.env.output()
	}
	return p.lastOutput
}

func (p *Pulse) setEnabled(enabled bool) { p.length.setEnabled(enabled) }
func (p *Pulse) status() bool            { return p.length.status() }

func (p *Pulse) reset(soft bool) {
	p.env.reset(soft)
	p.length.reset(soft)
	p.duty = 0
	p.dutyPos = 0
	p.sequence = 0
	p.timer = 0
	p.period = 0
	p.sweepEnabled = false
	p.sweepPeriod = 0
	p.sweepNegate = false
	p.sweepShift = 0
	p.sweepDivider = 0
	p.sweepReload = false
	p.targetPeriod = 0
	p.lastOutput = 0
}
