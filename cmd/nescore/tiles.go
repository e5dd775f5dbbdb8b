package main

import (
	"fmt"

	"nescore/console"
	"nescore/ines"
	"nescore/ppu"
)

type TilesCmd struct {
	RomPath string   `arg:"" name:"rom-path" help:"Path to an iNES ROM." required:"true" type:"existingfile"`
	PPM     *outfile `name:"ppm" help:"Dump both pattern tables as a PPM sprite sheet to FILE|stdout|stderr." required:"true"`
}

// runTiles dumps the two 128x128 pattern tables (16x16 tiles of 8x8 pixels
// each, side by side) as a single 256x128 PPM image, using PPU.PatternTile
// — the decode path this core otherwise leaves purely as debug/tooling API
// since the live renderer fetches pattern rows straight off the bus.
func runTiles(cmd TilesCmd) error {
	rom, err := ines.Open(cmd.RomPath)
	if err != nil {
		return fmt.Errorf("opening rom: %w", err)
	}
	nes, err := console.New(rom, 44100)
	if err != nil {
		return fmt.Errorf("building console: %w", err)
	}
	defer cmd.PPM.Close()

	const (
		tilesPerTable = 256
		tilesPerRow   = 16
		tileSize      = 8
		tableWidth    = tilesPerRow * tileSize // 128
		tableHeight   = tilesPerRow * tileSize // 128
		imgWidth      = tableWidth * 2
		imgHeight     = tableHeight
	)

	shade := func(v uint8) ppu.RGB {
		g := uint8(v * 85) // 0..3 -> 0..255
		return ppu.RGB{R: g, G: g, B: g}
	}

	fmt.Fprintf(cmd.PPM, "P6\n%d %d\n255\n", imgWidth, imgHeight)
	for y := 0; y < imgHeight; y++ {
		row := y / tileSize
		pixY := y % tileSize
		var line [imgWidth]ppu.RGB
		for table := 0; table < 2; table++ {
			for col := 0; col < tilesPerRow; col++ {
				idx := row*tilesPerRow + col
				if idx >= tilesPerTable {
					continue
				}
				t := nes.PPU.PatternTile(table, uint8(idx))
				for pixX := 0; pixX < tileSize; pixX++ {
					x := table*tableWidth + col*tileSize + pixX
					line[x] = shade(t.At(pixY, pixX))
				}
			}
		}
		for _, px := range line {
			if _, err := cmd.PPM.Write([]byte{px.R, px.G, px.B}); err != nil {
				return err
			}
		}
	}
	return nil
}
