package main

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/go-faster/jx"

	"nescore/console"
)

type SnapshotCmd struct {
	Path string `arg:"" name:"path" help:"Path to a snapshot blob written by 'run --save-state'." required:"true" type:"existingfile"`
	JSON bool   `name:"json" help:"Print as JSON instead of plain text."`
}

// runSnapshot decodes a snapshot blob and prints a human-inspectable
// summary — the "alternate encoding" SPEC_FULL.md's DOMAIN STACK section
// earmarks go-faster/jx for, distinct from the binary gob schema itself.
func runSnapshot(cmd SnapshotCmd) error {
	data, err := os.ReadFile(cmd.Path)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	var snap console.Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("decoding snapshot: %w", err)
	}

	if cmd.JSON {
		fmt.Println(string(snapshotJSON(&snap)))
		return nil
	}

	fmt.Printf("version:          %d\n", snap.Version)
	fmt.Printf("rom fingerprint:  %08X\n", snap.ROMFingerprint)
	fmt.Printf("cpu: pc=$%04X a=$%02X x=$%02X y=$%02X sp=$%02X cycles=%d\n",
		snap.CPU.PC, snap.CPU.A, snap.CPU.X, snap.CPU.Y, snap.CPU.SP, snap.CPU.Cycles)
	fmt.Printf("ppu: scanline=%d cycle=%d odd-frame=%t\n",
		snap.PPU.Scanline, snap.PPU.Cycle, snap.PPU.FrameOdd)
	fmt.Printf("apu: frame-counter step=%d mode=%d\n", snap.APU.FrameCounter.Step, snap.APU.FrameCounter.Mode)
	fmt.Printf("mapper state: %d bytes\n", len(snap.Mapper))
	return nil
}

func snapshotJSON(snap *console.Snapshot) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("version")
	e.Int(snap.Version)
	e.FieldStart("rom_fingerprint")
	e.UInt32(snap.ROMFingerprint)

	e.FieldStart("cpu")
	e.ObjStart()
	e.FieldStart("pc")
	e.UInt32(uint32(snap.CPU.PC))
	e.FieldStart("a")
	e.UInt32(uint32(snap.CPU.A))
	e.FieldStart("x")
	e.UInt32(uint32(snap.CPU.X))
	e.FieldStart("y")
	e.UInt32(uint32(snap.CPU.Y))
	e.FieldStart("sp")
	e.UInt32(uint32(snap.CPU.SP))
	e.FieldStart("cycles")
	e.Int64(snap.CPU.Cycles)
	e.ObjEnd()

	e.FieldStart("ppu")
	e.ObjStart()
	e.FieldStart("scanline")
	e.Int(snap.PPU.Scanline)
	e.FieldStart("cycle")
	e.Int(snap.PPU.Cycle)
	e.FieldStart("frame_odd")
	e.Bool(snap.PPU.FrameOdd)
	e.ObjEnd()

	e.FieldStart("apu")
	e.ObjStart()
	e.FieldStart("frame_counter_step")
	e.UInt32(snap.APU.FrameCounter.Step)
	e.FieldStart("frame_counter_mode")
	e.UInt32(snap.APU.FrameCounter.Mode)
	e.ObjEnd()

	e.FieldStart("mapper_state_bytes")
	e.Int(len(snap.Mapper))
	e.ObjEnd()

	return e.Bytes()
}
