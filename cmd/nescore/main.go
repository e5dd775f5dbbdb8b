// Command nescore is a headless runner for the nescore emulation core: load
// an iNES ROM, run it for a fixed number of frames, and optionally dump the
// final framebuffer, captured audio, or a save-state blob. It carries no
// video/audio/UI host of its own (SPEC_FULL.md's AMBIENT STACK CLI section,
// §1's Non-goals) — that's left to an embedder.
package main

import (
	"fmt"
	"os"
)

func main() {
	cli := parseArgs(os.Args[1:])
	var err error
	switch cli.mode {
	case infoMode:
		err = runInfo(cli.Info)
	case snapshotMode:
		err = runSnapshot(cli.Snapshot)
	case tilesMode:
		err = runTiles(cli.Tiles)
	case versionMode:
		printVersion()
	default:
		err = runRun(cli)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal error:\n\t%s\n", err)
		os.Exit(1)
	}
}
