package ines

import (
	"bytes"
	"testing"
)

func tcheck(tb testing.TB, err error) {
	if err == nil {
		return
	}
	tb.Helper()
	tb.Fatalf("fatal error:\n\n%s\n", err)
}

func buildRom(t *testing.T, flags6, flags7, prgBanks, chrBanks byte) []byte {
	t.Helper()
	hdr := make([]byte, 16)
	copy(hdr, Magic)
	hdr[4] = prgBanks
	hdr[5] = chrBanks
	hdr[6] = flags6
	hdr[7] = flags7

	buf := append([]byte{}, hdr...)
	buf = append(buf, bytes.Repeat([]byte{0xEA}, int(prgBanks)*prgBankSize)...)
	buf = append(buf, bytes.Repeat([]byte{0x00}, int(chrBanks)*chrBankSize)...)
	return buf
}

func TestParseHeader(t *testing.T) {
	tests := []struct {
		name           string
		flags6, flags7 byte
		prgBanks       byte
		chrBanks       byte
		wantMapper     uint16
		wantMirror     NTMirroring
		wantBattery    bool
		wantCHRRAM     bool
	}{
		{
			name: "nrom horizontal", flags6: 0x00, flags7: 0x00,
			prgBanks: 1, chrBanks: 1, wantMapper: 0, wantMirror: MirrorHorizontal,
		},
		{
			name: "mmc1 vertical battery", flags6: 0x13, flags7: 0x00,
			prgBanks: 8, chrBanks: 0, wantMapper: 1, wantMirror: MirrorVertical,
			wantBattery: true, wantCHRRAM: true,
		},
		{
			name: "four-screen mapper 4", flags6: 0x48, flags7: 0x00,
			prgBanks: 16, chrBanks: 32, wantMapper: 4, wantMirror: MirrorFourScreen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := buildRom(t, tt.flags6, tt.flags7, tt.prgBanks, tt.chrBanks)

			rom := new(Rom)
			_, err := rom.ReadFrom(bytes.NewReader(raw))
			tcheck(t, err)

			if got := rom.Mapper(); got != tt.wantMapper {
				t.Errorf("Mapper() = %d, want %d", got, tt.wantMapper)
			}
			if got := rom.Mirroring(); got != tt.wantMirror {
				t.Errorf("Mirroring() = %s, want %s", got, tt.wantMirror)
			}
			if got := rom.HasBattery(); got != tt.wantBattery {
				t.Errorf("HasBattery() = %v, want %v", got, tt.wantBattery)
			}
			if got := rom.HasCHRRAM(); got != tt.wantCHRRAM {
				t.Errorf("HasCHRRAM() = %v, want %v", got, tt.wantCHRRAM)
			}
			if len(rom.PRG) != int(tt.prgBanks) {
				t.Errorf("len(PRG) = %d, want %d", len(rom.PRG), tt.prgBanks)
			}
			if len(rom.CHR) != int(tt.chrBanks)*2 {
				t.Errorf("len(CHR) = %d, want %d", len(rom.CHR), int(tt.chrBanks)*2)
			}
		})
	}
}

// dirty dumper: mapper high nibble must be discarded when bytes 8-15 aren't
// all zero, since that region is either padding or NES 2.0 fields we don't
// otherwise interpret.
func TestMapperDirtyDumper(t *testing.T) {
	raw := buildRom(t, 0x10, 0x20, 1, 1)
	raw[10] = 0xFF // pollute the "should be zero" tail.

	rom := new(Rom)
	_, err := rom.ReadFrom(bytes.NewReader(raw))
	tcheck(t, err)

	if got, want := rom.Mapper(), uint16(1); got != want {
		t.Errorf("Mapper() = %d, want %d (high nibble should be discarded)", got, want)
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	raw := buildRom(t, 0x09, 0x00, 2, 4) // four-screen, mapper 0
	rom := new(Rom)
	_, err := rom.ReadFrom(bytes.NewReader(raw))
	tcheck(t, err)

	got := rom.Serialize()
	if !bytes.Equal(got, raw) {
		t.Errorf("Serialize() round-trip mismatch:\ngot  %x\nwant %x", got, raw)
	}
}

func TestTruncated(t *testing.T) {
	raw := buildRom(t, 0, 0, 2, 1)
	raw = raw[:len(raw)-10]

	rom := new(Rom)
	_, err := rom.ReadFrom(bytes.NewReader(raw))
	if err == nil {
		t.Fatal("expected error for truncated rom")
	}
}

func TestInvalidMagic(t *testing.T) {
	raw := buildRom(t, 0, 0, 1, 1)
	raw[0] = 'X'

	rom := new(Rom)
	_, err := rom.ReadFrom(bytes.NewReader(raw))
	if err == nil {
		t.Fatal("expected error for invalid magic")
	}
}
