package console

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"

	"nescore/apu"
	"nescore/cpu"
	"nescore/internal/log"
	"nescore/mapper"
	"nescore/ppu"
)

// snapshotVersion is bumped whenever the Snapshot schema below changes in
// a way that breaks decoding older blobs.
const snapshotVersion = 1

// ErrSnapshotVersionMismatch is returned by Restore when the blob's schema
// version doesn't match this build's (spec.md §7's SaveStateMismatch).
var ErrSnapshotVersionMismatch = errors.New("console: snapshot version mismatch")

// Snapshot is the gob-encoded save-state record (spec.md §6): every
// component's full internal state, plus a schema version and a ROM
// fingerprint used to warn (not fail) on a ROM-mismatched restore.
type Snapshot struct {
	Version        int
	ROMFingerprint uint32

	CPU         cpu.State
	PPU         ppu.State
	APU         apu.State
	RAM         [0x800]byte
	Controllers controllersState
	Mapper      []byte // board-specific, from mapper.Snapshotter if implemented
}

// Snapshot captures the console's complete state as an opaque byte blob.
func (c *Console) Snapshot() ([]byte, error) {
	snap := Snapshot{
		Version:        snapshotVersion,
		ROMFingerprint: c.romFingerprint,
		CPU:            c.CPU.State(),
		PPU:            c.PPU.State(),
		APU:            c.APU.State(),
		RAM:            c.ram,
		Controllers:    c.controllers.state(),
	}
	if s, ok := c.mapper.(mapper.Snapshotter); ok {
		snap.Mapper = s.SnapshotState()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, fmt.Errorf("console: snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Restore decodes a blob previously returned by Snapshot and applies it to
// this console. A schema-version mismatch fails outright; a ROM
// fingerprint mismatch only logs a warning and proceeds, per spec.md §7's
// distinct policies for SaveStateMismatch vs SaveStateRomMismatch.
func (c *Console) Restore(data []byte) error {
	var snap Snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("console: restore: %w", err)
	}
	if snap.Version != snapshotVersion {
		return fmt.Errorf("%w: blob has version %d, this build expects %d",
			ErrSnapshotVersionMismatch, snap.Version, snapshotVersion)
	}
	if snap.ROMFingerprint != c.romFingerprint {
		log.ModSnapshot.WarnZ("restoring snapshot captured from a different ROM").
			Uint32("loaded", c.romFingerprint).Uint32("snapshot", snap.ROMFingerprint).End()
	}

	c.CPU.SetState(snap.CPU)
	c.PPU.SetState(snap.PPU)
	c.APU.SetState(snap.APU)
	c.ram = snap.RAM
	c.controllers.setState(snap.Controllers)
	if snap.Mapper != nil {
		if s, ok := c.mapper.(mapper.Snapshotter); ok {
			if err := s.RestoreState(snap.Mapper); err != nil {
				return fmt.Errorf("console: restore mapper state: %w", err)
			}
		}
	}
	return nil
}
