package apu

// State is the serializable snapshot of every channel's register and
// sequencer state (spec.md §6). The Mixer's band-limited resampler
// (blip.Buffer) keeps its own internal ring of pending deltas that the
// library doesn't expose for serialization; it is not part of State, and
// SetState leaves whatever it already holds in place, so the first few
// samples after a restore can glitch, a limitation shared by most
// blip_buf-based cores' save states.
type State struct {
	Pulse1, Pulse2 PulseState
	Triangle       TriangleState
	Noise          NoiseState
	DMC            DMCState
	FrameCounter   FrameCounterState
	STATUS         uint8
}

type envelopeState struct {
	ConstantVolume bool
	Volume         uint8
	Start          bool
	Divider        int8
	Decay          uint8
	Loop           bool
}

func (e *Envelope) state() envelopeState {
	return envelopeState{e.constantVolume, e.volume, e.start, e.divider, e.decay, e.loop}
}
func (e *Envelope) setState(s envelopeState) {
	e.constantVolume, e.volume, e.start, e.divider, e.decay, e.loop =
		s.ConstantVolume, s.Volume, s.Start, s.Divider, s.Decay, s.Loop
}

type lengthCounterState struct {
	Enabled bool
	Halt    bool
	Counter uint8
}

func (lc *LengthCounter) state() lengthCounterState {
	return lengthCounterState{lc.enabled, lc.halt, lc.counter}
}
func (lc *LengthCounter) setState(s lengthCounterState) {
	lc.enabled, lc.halt, lc.counter = s.Enabled, s.Halt, s.Counter
}

type PulseState struct {
	Env          envelopeState
	Length       lengthCounterState
	Duty         uint8
	DutyPos      uint8
	Timer        uint16
	Period       uint16
	TimerPeriod  uint16
	Sequence     uint8
	SweepEnabled bool
	SweepPeriod  uint8
	SweepNegate  bool
	SweepShift   uint8
	SweepDivider uint8
	SweepReload  bool
	TargetPeriod uint32
	LastOutput   uint8
}

func (p *Pulse) state() PulseState {
	return PulseState{
		Env: p.env.state(), Length: p.length.state(),
		Duty: p.duty, DutyPos: p.dutyPos, Timer: p.timer, Period: p.period,
		TimerPeriod: p.timerPeriod, Sequence: p.sequence,
		SweepEnabled: p.sweepEnabled, SweepPeriod: p.sweepPeriod, SweepNegate: p.sweepNegate,
		SweepShift: p.sweepShift, SweepDivider: p.sweepDivider, SweepReload: p.sweepReload,
		TargetPeriod: p.targetPeriod, LastOutput: p.lastOutput,
	}
}
func (p *Pulse) setState(s PulseState) {
	p.env.setState(s.Env)
	p.length.setState(s.Length)
	p.duty, p.dutyPos, p.timer, p.period = s.Duty, s.DutyPos, s.Timer, s.Period
	p.timerPeriod, p.sequence = s.TimerPeriod, s.Sequence
	p.sweepEnabled, p.sweepPeriod, p.sweepNegate = s.SweepEnabled, s.SweepPeriod, s.SweepNegate
	p.sweepShift, p.sweepDivider, p.sweepReload = s.SweepShift, s.SweepDivider, s.SweepReload
	p.targetPeriod, p.lastOutput = s.TargetPeriod, s.LastOutput
}

type TriangleState struct {
	Length              lengthCounterState
	LinearCounter       uint8
	LinearCounterReload uint8
	LinearReload        bool
	LinearCtrl          bool
	Timer               uint16
	Period              uint16
	Pos                 uint8
	LastOutput          uint8
}

func (t *Triangle) state() TriangleState {
	return TriangleState{
		Length: t.length.state(),
		LinearCounter: t.linearCounter, LinearCounterReload: t.linearCounterReload,
		LinearReload: t.linearReload, LinearCtrl: t.linearCtrl,
		Timer: t.timer, Period: t.period, Pos: t.pos, LastOutput: t.lastOutput,
	}
}
func (t *Triangle) setState(s TriangleState) {
	t.length.setState(s.Length)
	t.linearCounter, t.linearCounterReload = s.LinearCounter, s.LinearCounterReload
	t.linearReload, t.linearCtrl = s.LinearReload, s.LinearCtrl
	t.timer, t.period, t.pos, t.lastOutput = s.Timer, s.Period, s.Pos, s.LastOutput
}

type NoiseState struct {
	Env        envelopeState
	Length     lengthCounterState
	Timer      uint16
	Period     uint16
	ShiftReg   uint16
	Mode       bool
	LastOutput uint8
}

func (n *Noise) state() NoiseState {
	return NoiseState{
		Env: n.env.state(), Length: n.length.state(),
		Timer: n.timer, Period: n.period, ShiftReg: n.shiftReg, Mode: n.mode,
		LastOutput: n.lastOutput,
	}
}
func (n *Noise) setState(s NoiseState) {
	n.env.setState(s.Env)
	n.length.setState(s.Length)
	n.timer, n.period, n.shiftReg, n.mode, n.lastOutput = s.Timer, s.Period, s.ShiftReg, s.Mode, s.LastOutput
}

type DMCState struct {
	SampleAddr   uint16
	SampleLen    uint16
	IrqEnabled   bool
	Loop         bool
	IrqPending   bool
	CurAddr      uint16
	Remaining    uint16
	ReadBuf      uint8
	BufEmpty     bool
	Timer        uint16
	Period       uint16
	ShiftReg     uint8
	BitsLeft     uint8
	Silence      bool
	OutLevel     uint8
}

func (d *DMC) state() DMCState {
	return DMCState{
		SampleAddr: d.sampleAddr, SampleLen: d.sampleLen, IrqEnabled: d.irqEnabled,
		Loop: d.loop, IrqPending: d.irqPending, CurAddr: d.curAddr, Remaining: d.remaining,
		ReadBuf: d.readBuf, BufEmpty: d.bufEmpty, Timer: d.timer, Period: d.period,
		ShiftReg: d.shiftReg, BitsLeft: d.bitsLeft, Silence: d.silence, OutLevel: d.outLevel,
	}
}
func (d *DMC) setState(s DMCState) {
	d.sampleAddr, d.sampleLen, d.irqEnabled = s.SampleAddr, s.SampleLen, s.IrqEnabled
	d.loop, d.irqPending = s.Loop, s.IrqPending
	d.curAddr, d.remaining, d.readBuf, d.bufEmpty = s.CurAddr, s.Remaining, s.ReadBuf, s.BufEmpty
	d.timer, d.period, d.shiftReg, d.bitsLeft = s.Timer, s.Period, s.ShiftReg, s.BitsLeft
	d.silence, d.outLevel = s.Silence, s.OutLevel
}

type FrameCounterState struct {
	Step        uint32
	Cycle       int32
	Mode        uint32
	InhibitIRQ  bool
	PendingMode int16
	WriteDelay  uint8
}

func (f *FrameCounter) state() FrameCounterState {
	return FrameCounterState{f.step, f.cycle, f.mode, f.inhibitIRQ, f.pendingMode, f.writeDelay}
}
func (f *FrameCounter) setState(s FrameCounterState) {
	f.step, f.cycle, f.mode = s.Step, s.Cycle, s.Mode
	f.inhibitIRQ, f.pendingMode, f.writeDelay = s.InhibitIRQ, s.PendingMode, s.WriteDelay
}

// State captures every channel's sequencer/envelope/length-counter state
// plus the frame sequencer and the $4015 enable bits (reconstructed from
// each channel's length-counter enabled flag on restore).
func (a *APU) State() State {
	return State{
		Pulse1: a.Pulse1.state(), Pulse2: a.Pulse2.state(),
		Triangle: a.Triangle.state(), Noise: a.Noise.state(), DMC: a.DMC.state(),
		FrameCounter: a.frameCounter.state(), STATUS: a.STATUS.Value,
	}
}

// SetState restores a previously captured State.
func (a *APU) SetState(s State) {
	a.Pulse1.setState(s.Pulse1)
	a.Pulse2.setState(s.Pulse2)
	a.Triangle.setState(s.Triangle)
	a.Noise.setState(s.Noise)
	a.DMC.setState(s.DMC)
	a.frameCounter.setState(s.FrameCounter)
	a.STATUS.Value = s.STATUS
}
