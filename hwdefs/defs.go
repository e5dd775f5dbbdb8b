// Package hwdefs holds small shared constants and enums used across the
// cpu, apu, ppu, mapper and console packages, to avoid import cycles that
// would otherwise arise from each package needing the others' basic types.
package hwdefs

import "strings"

// IRQSource identifies which of the (possibly several, simultaneously
// asserted) hardware IRQ lines is active. The CPU only cares whether the
// combined line is non-zero, but keeping the source bits separate lets each
// producer clear only its own contribution.
type IRQSource uint8

const (
	External IRQSource = 1 << iota
	FrameCounter
	DMC

	numSources = 3
)

var irqSrcNames = [numSources]string{"ext", "fcnt", "dmc"}

func (irq IRQSource) String() string {
	var names []string
	for i := range numSources {
		if irq&(1<<i) != 0 {
			names = append(names, irqSrcNames[i])
		}
	}
	return strings.Join(names, "|")
}

const (
	SoftReset = true
	HardReset = false
)

// NumAudioChannels is Square1, Square2, Triangle, Noise, DMC.
const NumAudioChannels = 5

// Button is a single button on an NES controller. Values match the bit
// position each button occupies in the $4016/$4017 shift register: A is
// shifted out first, then B, Select, Start, Up, Down, Left, Right.
type Button uint8

const (
	ButtonA Button = iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight

	NumButtons = 8
)

func (b Button) String() string {
	names := [NumButtons]string{"A", "B", "Select", "Start", "Up", "Down", "Left", "Right"}
	if int(b) >= len(names) {
		return "?"
	}
	return names[b]
}

// Port identifies which of the two controller ports ($4016 vs $4017) is
// being addressed.
type Port uint8

const (
	Port1 Port = iota
	Port2

	NumPorts = 2
)
