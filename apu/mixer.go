package apu

import "github.com/arl/blip"

// ClockRate is the NTSC CPU/APU clock in Hz that the mixer's blip.Buffer
// treats as its high-rate input.
const ClockRate = 1789773

// defaultSampleRate is the host output rate assumed absent explicit
// configuration (cmd/nescore's config sets it under [general] sample_rate).
const defaultSampleRate = 44100

// dcBlockPole is the single-pole coefficient from the DC-blocking
// high-pass filter: y[n] = x[n] - x[n-1] + pole*y[n-1].
const dcBlockPole = 0.995

// Mixer combines the five channels' instantaneous outputs via the NES's
// nonlinear DAC lookup, band-limits and resamples from the CPU clock to
// the host rate with blip.Buffer (a Blip_Buffer port, exactly as the
// teacher wires it), applies a DC-blocking high-pass, and pushes the
// result into a RingBuffer for the host audio callback to drain.
type Mixer struct {
	buf        *blip.Buffer
	sampleRate int

	lastMix  int16
	cycle    uint64
	dcPrevIn float64
	dcPrevY  float64

	Out RingBuffer
}

func NewMixer(sampleRate int) *Mixer {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	m := &Mixer{
		buf:        blip.NewBuffer(sampleRate/30 + 64),
		sampleRate: sampleRate,
	}
	m.buf.SetRates(ClockRate, float64(sampleRate))
	return m
}

// pulseTable and tndTable are the standard NES DAC lookup tables,
// precomputed as float64 values from the two nonlinear formulas so a
// per-cycle mix costs two array lookups and one add rather than two
// divisions.
var pulseTable [31]float64
var tndTable [203]float64

func init() {
	for i := range pulseTable {
		if i == 0 {
			continue
		}
		pulseTable[i] = 95.52 / (8128.0/float64(i) + 100.0)
	}
	for i := range tndTable {
		if i == 0 {
			continue
		}
		tndTable[i] = 163.67 / (24329.0/float64(i) + 100.0)
	}
}

// sample computes the current mix in [0, ~1) from raw channel outputs:
// pulse1/pulse2 in 0..15, triangle in 0..15, noise in 0..15, dmc in 0..127.
func sample(pulse1, pulse2, triangle, noise, dmc uint8) float64 {
	pulseOut := pulseTable[pulse1+pulse2]
	tnd := 3*uint16(triangle) + 2*uint16(noise) + uint16(dmc)
	if int(tnd) >= len(tndTable) {
		tnd = uint16(len(tndTable) - 1)
	}
	tndOut := tndTable[tnd]
	return pulseOut + tndOut
}

// tick is called once per CPU cycle with the five channels' current raw
// outputs; it feeds the change in mix level to the resampler.
func (m *Mixer) tick(pulse1, pulse2, triangle, noise, dmc uint8) {
	mix := int16(sample(pulse1, pulse2, triangle, noise, dmc) * 32767)
	if mix != m.lastMix {
		m.buf.AddDelta(m.cycle, int32(mix-m.lastMix))
		m.lastMix = mix
	}
	m.cycle++
}

// endFrame finalizes the resampler for one Console.frame() worth of CPU
// cycles, drains the produced samples, DC-blocks them, and pushes stereo
// pairs (mono duplicated to both channels; the core has no panning) into
// the output ring buffer.
func (m *Mixer) endFrame(cpuCycles int64) {
	m.buf.EndFrame(int(cpuCycles))
	m.cycle = 0

	var out [512]int16
	for {
		n := m.buf.ReadSamples(out[:], len(out), false)
		if n == 0 {
			break
		}
		for i := 0; i < n; i++ {
			x := float64(out[i]) / 32768.0
			y := x - m.dcPrevIn + dcBlockPole*m.dcPrevY
			m.dcPrevIn = x
			m.dcPrevY = y
			f := float32(y)
			m.Out.Push(f, f)
		}
	}
}

func (m *Mixer) reset() {
	m.buf.Clear()
	m.lastMix = 0
	m.cycle = 0
	m.dcPrevIn = 0
	m.dcPrevY = 0
}
