package main

import (
	"fmt"

	"nescore/ines"
)

type InfoCmd struct {
	RomPath string `arg:"" name:"rom-path" help:"Path to an iNES ROM." required:"true" type:"existingfile"`
}

func runInfo(cmd InfoCmd) error {
	rom, err := ines.Open(cmd.RomPath)
	if err != nil {
		return fmt.Errorf("opening rom: %w", err)
	}

	fmt.Printf("mapper:     %d\n", rom.Mapper())
	fmt.Printf("mirroring:  %s\n", rom.Mirroring())
	fmt.Printf("prg size:   %d KiB\n", rom.PRGSize()/1024)
	fmt.Printf("chr size:   %d KiB\n", rom.CHRSize()/1024)
	fmt.Printf("chr ram:    %t\n", rom.HasCHRRAM())
	fmt.Printf("battery:    %t\n", rom.HasBattery())
	fmt.Printf("trainer:    %t\n", rom.HasTrainer())
	return nil
}

func printVersion() {
	fmt.Println("nescore", version)
}

const version = "0.1.0"
