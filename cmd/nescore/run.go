package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"
	"strings"

	"nescore/console"
	"nescore/hwdefs"
	"nescore/ines"
	"nescore/internal/log"
)

type RunCmd struct {
	RomPath string `arg:"" name:"rom-path" help:"Path to an iNES ROM." required:"true" type:"existingfile"`

	Frames     int      `name:"frames" help:"Number of frames to run." default:"60"`
	SampleRate int      `name:"sample-rate" help:"Audio sample rate, overrides the config default."`
	Hold       []string `name:"hold" help:"Button to hold for the whole run, port:button (e.g. 1:Start)." placeholder:"PORT:BUTTON"`

	PPM *outfile `name:"ppm" help:"Dump the final frame as a PPM image to FILE|stdout|stderr."`
	WAV *outfile `name:"wav" help:"Dump captured audio as a WAV file to FILE|stdout|stderr."`

	LoadState string `name:"load-state" help:"Restore a snapshot blob before running." type:"existingfile"`
	SaveState string `name:"save-state" help:"Write a snapshot blob after running." type:"path"`
}

func runRun(cli CLI) error {
	cmd := cli.Run
	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	sampleRate := cfg.General.SampleRate
	if cmd.SampleRate != 0 {
		sampleRate = cmd.SampleRate
	}

	rom, err := ines.Open(cmd.RomPath)
	if err != nil {
		return fmt.Errorf("opening rom: %w", err)
	}

	nes, err := console.New(rom, sampleRate)
	if err != nil {
		return fmt.Errorf("building console: %w", err)
	}

	holds, err := parseHolds(cmd.Hold)
	if err != nil {
		return err
	}
	for _, h := range holds {
		nes.SetButton(h.port, h.button, true)
	}

	if cmd.LoadState != "" {
		data, err := os.ReadFile(cmd.LoadState)
		if err != nil {
			return fmt.Errorf("reading save state: %w", err)
		}
		if err := nes.Restore(data); err != nil {
			return fmt.Errorf("restoring save state: %w", err)
		}
	}

	var samples [][2]float32
	for i := 0; i < cmd.Frames; i++ {
		nes.Frame()
		if cmd.WAV != nil {
			samples = append(samples, drainAudio(nes)...)
		}
	}

	st := nes.Status()
	log.ModConsole.InfoZ("run finished").Int("frames", cmd.Frames).Bool("crashed", st.Crashed).Hex16("pc", st.PC).End()
	fmt.Printf("frames: %d  crashed: %t  pc: $%04X\n", cmd.Frames, st.Crashed, st.PC)

	if cmd.PPM != nil {
		if err := writePPM(cmd.PPM, nes); err != nil {
			return fmt.Errorf("writing ppm: %w", err)
		}
		defer cmd.PPM.Close()
	}
	if cmd.WAV != nil {
		if err := writeWAV(cmd.WAV, sampleRate, samples); err != nil {
			return fmt.Errorf("writing wav: %w", err)
		}
		defer cmd.WAV.Close()
	}
	if cmd.SaveState != "" {
		data, err := nes.Snapshot()
		if err != nil {
			return fmt.Errorf("snapshotting: %w", err)
		}
		if err := os.WriteFile(cmd.SaveState, data, 0644); err != nil {
			return fmt.Errorf("writing save state: %w", err)
		}
	}
	return nil
}

type hold struct {
	port   hwdefs.Port
	button hwdefs.Button
}

var buttonNames = map[string]hwdefs.Button{
	"a": hwdefs.ButtonA, "b": hwdefs.ButtonB,
	"select": hwdefs.ButtonSelect, "start": hwdefs.ButtonStart,
	"up": hwdefs.ButtonUp, "down": hwdefs.ButtonDown,
	"left": hwdefs.ButtonLeft, "right": hwdefs.ButtonRight,
}

func parseHolds(specs []string) ([]hold, error) {
	var holds []hold
	for _, s := range specs {
		portStr, buttonStr, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("invalid --hold %q, want PORT:BUTTON", s)
		}
		portNum, err := strconv.Atoi(portStr)
		if err != nil || (portNum != 1 && portNum != 2) {
			return nil, fmt.Errorf("invalid --hold %q, port must be 1 or 2", s)
		}
		button, ok := buttonNames[strings.ToLower(buttonStr)]
		if !ok {
			return nil, fmt.Errorf("invalid --hold %q, unknown button %q", s, buttonStr)
		}
		port := hwdefs.Port1
		if portNum == 2 {
			port = hwdefs.Port2
		}
		holds = append(holds, hold{port: port, button: button})
	}
	return holds, nil
}

func drainAudio(nes *console.Console) [][2]float32 {
	var out [][2]float32
	for {
		l, r, ok := nes.APU.Mixer.Out.Pop()
		if !ok {
			break
		}
		out = append(out, [2]float32{l, r})
	}
	return out
}

func writePPM(w *outfile, nes *console.Console) error {
	frame := nes.PPU.Frame()
	fmt.Fprintf(w, "P6\n%d %d\n255\n", len(frame[0]), len(frame))
	for _, row := range frame {
		for _, px := range row {
			if _, err := w.Write([]byte{px.R, px.G, px.B}); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeWAV encodes samples as 16-bit signed stereo PCM. No third-party
// library in the corpus covers this niche a-format encoding, so it's hand
// rolled off encoding/binary, RIFF header fields only.
func writeWAV(w *outfile, sampleRate int, samples [][2]float32) error {
	const bitsPerSample = 16
	const numChannels = 2
	byteRate := sampleRate * numChannels * bitsPerSample / 8
	blockAlign := numChannels * bitsPerSample / 8
	dataSize := len(samples) * numChannels * bitsPerSample / 8

	buf := make([]byte, 0, 44+dataSize)
	buf = append(buf, "RIFF"...)
	buf = appendU32(buf, uint32(36+dataSize))
	buf = append(buf, "WAVEfmt "...)
	buf = appendU32(buf, 16)
	buf = appendU16(buf, 1) // PCM
	buf = appendU16(buf, numChannels)
	buf = appendU32(buf, uint32(sampleRate))
	buf = appendU32(buf, uint32(byteRate))
	buf = appendU16(buf, uint16(blockAlign))
	buf = appendU16(buf, bitsPerSample)
	buf = append(buf, "data"...)
	buf = appendU32(buf, uint32(dataSize))
	for _, s := range samples {
		buf = appendU16(buf, uint16(int16(s[0]*32767)))
		buf = appendU16(buf, uint16(int16(s[1]*32767)))
	}

	_, err := w.Write(buf)
	return err
}

func appendU32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendU16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}
