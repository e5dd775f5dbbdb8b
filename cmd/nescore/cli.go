package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"nescore/internal/log"
)

type mode byte

const (
	runMode mode = iota
	infoMode
	snapshotMode
	tilesMode
	versionMode
)

type CLI struct {
	Run      RunCmd      `cmd:"" help:"Run a ROM for a fixed number of frames." default:"withargs"`
	Info     InfoCmd     `cmd:"" help:"Print ROM header information." name:"info"`
	Snapshot SnapshotCmd `cmd:"" help:"Inspect a save-state blob." name:"snapshot"`
	Tiles    TilesCmd    `cmd:"" help:"Dump the ROM's pattern tables as a PPM sprite sheet." name:"tiles"`
	Version  VersionCmd  `cmd:"" help:"Show nescore's version."`

	Config string     `help:"Path to a TOML config file." type:"path"`
	Log    logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

	mode mode
}

type VersionCmd struct{}

var vars = kong.Vars{
	"log_help": "Enable debug logging for the given comma-separated modules (or 'all'/'no').",
}

func parseArgs(args []string) CLI {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("nescore"),
		kong.Description("Headless NES emulation core runner."),
		kong.UsageOnError(),
		vars)
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch ctx.Command() {
	case "info <rom-path>":
		cli.mode = infoMode
	case "snapshot <path>":
		cli.mode = snapshotMode
	case "tiles <rom-path>":
		cli.mode = tilesMode
	case "version":
		cli.mode = versionMode
	default:
		cli.mode = runMode
	}
	return cli
}

// logModMask decodes the --log flag's comma-separated module list into a
// debug mask, matching the teacher's kong.MapperValue convention.
type logModMask log.ModuleMask

// Decode implements kong.MapperValue.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()

	nolog, allLogs := false, false
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %q", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs || lm != 0 {
			return fmt.Errorf("'no' cannot be combined with other log modules")
		}
		return nil
	}
	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}
	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

// outfile decodes a FILE|stdout|stderr argument into an io.WriteCloser,
// matching the teacher's --trace/--execlog flag convention.
type outfile struct {
	w    *os.File
	name string
}

// Decode implements kong.MapperValue.
func (f *outfile) Decode(ctx *kong.DecodeContext) error {
	tok := ctx.Scan.Pop()
	f.name = tok.Value.(string)

	switch f.name {
	case "stdout":
		f.w = os.Stdout
	case "stderr":
		f.w = os.Stderr
	default:
		fd, err := os.Create(f.name)
		if err != nil {
			return err
		}
		f.w = fd
	}
	return nil
}

func (f *outfile) String() string              { return f.name }
func (f *outfile) Write(p []byte) (int, error) { return f.w.Write(p) }
func (f *outfile) Close() error {
	if f.name == "stdout" || f.name == "stderr" {
		return nil
	}
	return f.w.Close()
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "fatal error:\n\t%s: %s\n", fmt.Sprintf(format, args...), err)
	os.Exit(1)
}
