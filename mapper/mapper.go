// Package mapper implements the cartridge mapper / bus subsystem: the
// capability-based contract between the PPU and the many bank-switching
// schemes real NES cartridges use (spec.md 4.6).
package mapper

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"nescore/hwdefs"
	"nescore/hwio"
	"nescore/ines"
	"nescore/ppu"
)

// Mapper is the mandatory interface every cartridge board implements. It is
// a *polymorphic* object, not a register bank: unlike the fixed hardware
// registers hwio wires up for cpu/ppu/apu, a mapper's own register layout
// varies per board, so mappers wire themselves directly onto the CPU and
// PPU buses instead of being reflected over hwio tags.
type Mapper interface {
	// Wire installs this mapper's PRG/CHR/register mappings onto the CPU
	// bus and the PPU's internal bus, and sets the PPU's initial nametable
	// mirroring. Called once, after construction.
	Wire(cpuBus *hwio.Table, p *ppu.PPU)

	// Mirroring returns the currently configured nametable layout. Boards
	// that change mirroring at runtime (MMC1) call p.SetMirroring again
	// from inside their own register-write callback instead of relying on
	// this method being polled.
	Mirroring() ines.NTMirroring
}

// Optional capability interfaces (spec.md 4.6). The core never branches on
// mapper identity: Hook wraps whichever of these a concrete mapper
// implements into a ppu.BusHook once, at construction, which is this
// package's idiomatic-Go rendition of "capability flags queried by the
// PPU" — a type assertion checked once instead of a per-call flag test.

// ChrLatcher is has_chr_latch: MMC2/MMC4 remember the last of a magic pair
// of tiles fetched in each CHR half and swap banks accordingly.
type ChrLatcher interface {
	LatchAccess(addr uint16)
}

// ScanlineIRQer is has_scanline_irq: MMC3 clocks an IRQ counter on rising
// edges of PPU address bit 12, filtered to one clock per scanline while
// rendering.
type ScanlineIRQer interface {
	NotifyA12(bit bool)
}

// IRQSetter is implemented by the CPU core; WireIRQ hands it to any mapper
// board with a scanline IRQ counter (MMC3, MMC5) so the board can request
// hwdefs.External directly. Boards without an IRQ counter ignore it.
type IRQSetter interface {
	RequestIRQ(src hwdefs.IRQSource)
}

// irqWirer is the optional mapper-side hook: boards with a counter-driven
// IRQ line implement this to receive the CPU's IRQSetter.
type irqWirer interface {
	SetIRQTarget(cpu IRQSetter)
}

// WireIRQ connects m's scanline IRQ counter (if it has one) to cpu.
func WireIRQ(m Mapper, cpu IRQSetter) {
	if w, ok := m.(irqWirer); ok {
		w.SetIRQTarget(cpu)
	}
}

// New constructs the mapper declared by rom's header, or returns
// ErrUnsupportedMapper.
func New(rom *ines.Rom) (Mapper, error) {
	ctor, ok := registry[rom.Mapper()]
	if !ok {
		return nil, fmt.Errorf("%w: mapper %d", ErrUnsupportedMapper, rom.Mapper())
	}
	return ctor(rom), nil
}

var registry = map[uint16]func(*ines.Rom) Mapper{
	0:  newNROM,
	1:  newMMC1,
	2:  newUxROM,
	3:  newCNROM,
	4:  newMMC3,
	5:  newMMC5,
	7:  newAxROM,
	9:  newMMC2,
	10: newMMC4,
	11: newColorDreams,
	34: newBNROM,
	66: newGxROM,
}

// Hook builds the ppu.BusHook this mapper's PPU should call on every
// address/pattern access, wired unconditionally per spec.md 4.4; the hook
// itself dispatches only to the capabilities m actually implements.
func Hook(m Mapper) ppu.BusHook {
	h := &mapperHook{}
	if latcher, ok := m.(ChrLatcher); ok {
		h.latch = latcher.LatchAccess
	}
	if irqer, ok := m.(ScanlineIRQer); ok {
		h.a12 = irqer.NotifyA12
	}
	return h
}

type mapperHook struct {
	latch func(addr uint16)
	a12   func(bit bool)
}

func (h *mapperHook) OnPPUAddress(addr uint16) {
	if h.a12 != nil {
		h.a12(addr&0x1000 != 0)
	}
}

func (h *mapperHook) OnPatternFetch(addr uint16) {
	if h.latch != nil {
		h.latch(addr)
	}
}

// Snapshotter is the optional save-state capability (spec.md §6): a board
// encodes its own mutable register state plus PRG-RAM/CHR-RAM into an
// opaque blob console.Snapshot stores alongside CPU/PPU/APU state, and
// decodes it back on restore. PRG ROM itself is immutable and shared by
// reference (spec.md §5), so it's never part of the blob; nrom, mmc1, mmc3,
// axrom, bnrom and uxrom encode their CHR store even when it is ROM.
type Snapshotter interface {
	SnapshotState() []byte
	RestoreState(data []byte) error
}

// gobEncode/gobDecode back every board's SnapshotState/RestoreState: the
// per-board state is a handful of small fields plus possibly a RAM slice,
// well within what gob's reflection-based encoding handles cheaply, and
// every board already only needs to round-trip within this one process
// (no cross-version wire compatibility requirement, unlike ines.Rom's own
// on-disk format).
func gobEncode(v any) []byte {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		panic(err) // encoding a plain value literal never fails
	}
	return buf.Bytes()
}

func gobDecode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// prgRAM allocates a cartridge's battery/work RAM: always 8 KiB (the common
// case); the header is not consulted for a size.
func prgRAM(rom *ines.Rom) []byte {
	return make([]byte, 0x2000)
}

// chrData returns a mutable CHR store: the ROM's CHR banks concatenated if
// present, or 8 KiB of RAM if the cartridge uses CHR-RAM (ines.Rom.HasCHRRAM).
func chrData(rom *ines.Rom) []byte {
	if rom.HasCHRRAM() {
		return make([]byte, 0x2000)
	}
	data := make([]byte, 0, rom.CHRSize())
	for _, bank := range rom.CHR {
		data = append(data, bank...)
	}
	return data
}

// prgData concatenates a cartridge's PRG banks into one contiguous slice.
func prgData(rom *ines.Rom) []byte {
	data := make([]byte, 0, rom.PRGSize())
	for _, bank := range rom.PRG {
		data = append(data, bank...)
	}
	return data
}
