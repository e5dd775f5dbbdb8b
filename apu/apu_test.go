package apu

import (
	"testing"

	"nescore/hwdefs"
)

// testBus supplies both DMCMemory (sample DMA reads) and irqSetter (frame
// counter / DMC interrupt lines) for tests that don't need a real console.
type testBus struct {
	mem          [0x10000]uint8
	irqRequested hwdefs.IRQSource
}

func (b *testBus) Read8(addr uint16, peek bool) uint8 { return b.mem[addr] }
func (b *testBus) RequestIRQ(src hwdefs.IRQSource)     { b.irqRequested |= src }
func (b *testBus) ClearIRQ(src hwdefs.IRQSource)       { b.irqRequested &^= src }

func newAPU() (*APU, *testBus) {
	bus := &testBus{}
	return New(bus, bus, 44100), bus
}

func TestPulseLengthCounterMutesChannel(t *testing.T) {
	a, _ := newAPU()
	a.WriteSTATUS(0, 0x01) // enable pulse1

	a.Pulse1.WriteDUTY(0, 0x10)   // duty=0, constant volume 0
	a.Pulse1.WriteTIMER(0, 0xFF)  // low period bits
	a.Pulse1.WriteLENGTH(0, 0x08) // sets a nonzero length counter, restarts sequencer

	if !a.Pulse1.status() {
		t.Fatalf("pulse1 should have a nonzero length counter after WriteLENGTH")
	}

	for i := 0; i < 300; i++ {
		a.tickHalfFrame()
	}
	if a.Pulse1.status() {
		t.Errorf("pulse1 length counter should have decremented to 0 after enough half-frame ticks")
	}
}

func TestEnvelopeDecaysAndStaysInRange(t *testing.T) {
	var e Envelope
	e.init(0x2F) // loop=1, constant-volume=0, period=15
	e.restart()

	e.tick() // start: decay=15, divider reloaded to 15
	if e.output() != 15 {
		t.Fatalf("decay should start at 15, got %d", e.output())
	}

	for i := 0; i < 16*16; i++ {
		e.tick()
	}
	if out := e.output(); out > 15 {
		t.Errorf("decay level out of range: %d", out)
	}
}

func TestPulseSweepMutesBelowMinimumPeriod(t *testing.T) {
	p := NewPulse(true)
	p.WriteTIMER(0, 0x02) // period=2, below the mute threshold of 8
	if !p.muted() {
		t.Errorf("pulse with period < 8 should be muted")
	}
}

func TestTriangleSilentUntilLinearCounterNonzero(t *testing.T) {
	tri := NewTriangle()
	tri.length.setEnabled(true)
	tri.WriteLINEAR(0, 0x00) // linear counter reload = 0, not halted
	tri.WriteTIMER(0, 0x10)
	tri.WriteLENGTH(0, 0x08) // sets length counter and the linear-reload flag

	tri.tickLinearCounter() // consumes the reload; linearCounter stays 0

	for i := 0; i < 4000; i++ {
		tri.tickTimer()
	}
	if tri.pos != 0 {
		t.Errorf("triangle sequencer should not advance while linear counter is 0, pos=%d", tri.pos)
	}
}

func TestNoiseShiftRegisterNeverGoesToZero(t *testing.T) {
	n := NewNoise()
	n.WritePERIOD(0, 0x00)
	for i := 0; i < 5000; i++ {
		n.tickTimer()
		if n.shiftReg == 0 {
			t.Fatalf("noise LFSR reached the illegal all-zero state")
		}
	}
}

func TestFrameCounterFourStepFiresIRQ(t *testing.T) {
	bus := &testBus{}
	fc := NewFrameCounter(bus, func() {}, func() {})
	for i := 0; i < 30000; i++ {
		fc.tick()
	}
	if bus.irqRequested&hwdefs.FrameCounter == 0 {
		t.Errorf("4-step frame counter should fire a frame IRQ within one full sequence")
	}
}

func TestFrameCounterFiveStepDoesNotFireIRQ(t *testing.T) {
	bus := &testBus{}
	fc := NewFrameCounter(bus, func() {}, func() {})
	fc.WriteFRAMECOUNTER(0, 0x80) // select 5-step mode
	for i := 0; i < 3; i++ {
		fc.tick() // let the pending-mode write delay elapse
	}
	for i := 0; i < 40000; i++ {
		fc.tick()
	}
	if bus.irqRequested&hwdefs.FrameCounter != 0 {
		t.Errorf("5-step frame counter should never fire the frame IRQ")
	}
}

func TestMixerDCBlockConvergesOnSustainedTone(t *testing.T) {
	m := NewMixer(44100)
	var mean float64
	var n int
	for frame := 0; frame < 60; frame++ {
		for c := 0; c < 100; c++ {
			m.tick(0, 0, 15, 0, 0)
		}
		m.endFrame(100)
		for {
			l, _, ok := m.Out.Pop()
			if !ok {
				break
			}
			mean += float64(l)
			n++
		}
	}
	if n == 0 {
		t.Fatalf("expected the mixer to have produced samples")
	}
	mean /= float64(n)
	if mean > 1e-2 || mean < -1e-2 {
		t.Errorf("DC-blocked mean should be near zero for a sustained tone, got %f", mean)
	}
}
