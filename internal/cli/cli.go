package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Status   *StatusCommand
	Generate *GenerateCommand
	Stats    *StatsCommand
	Scan     *ScanCommand
	Resolve  *ResolveCommand
	Scrobble *ScrobbleCommand
	Discover *DiscoverCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "spindle"
	parser.LongDescription = "Playback-history analytics, dynamic playlists, and scrobbling for Rockbox players."

	cmds := &commands{
		Status:   &StatusCommand{globals: &globals, version: version},
		Generate: &GenerateCommand{globals: &globals, version: version},
		Stats:    &StatsCommand{globals: &globals, version: version},
		Scan:     &ScanCommand{globals: &globals, version: version},
		Resolve:  &ResolveCommand{globals: &globals, version: version},
		Scrobble: &ScrobbleCommand{globals: &globals, version: version},
		Discover: &DiscoverCommand{globals: &globals, version: version},
	}

	parser.AddCommand("status", "Show device and state health", "Show the configured drive, playback log, metadata cache, and scrobble session state.", cmds.Status)
	parser.AddCommand("generate", "Generate dynamic playlists", "Ingest the playback log, write dynamic playlists, and export the metrics snapshot.", cmds.Generate)
	parser.AddCommand("stats", "Show listening statistics", "Show listening statistics over a time window.", cmds.Stats)
	parser.AddCommand("scan", "Warm the metadata cache", "Resolve metadata for every audio file in the on-device library.", cmds.Scan)
	parser.AddCommand("resolve", "Resolve one device path", "Resolve metadata for a single device path, optionally bypassing the cache.", cmds.Resolve)
	parser.AddCommand("scrobble", "Submit plays to Last.fm", "Submit valid plays newer than the watermark to Last.fm in batches.", cmds.Scrobble)
	parser.AddCommand("discover", "Suggest similar artists", "Suggest artists similar to current favorites, excluding ones already in the library.", cmds.Discover)

	return parser, &globals, cmds
}

// Run is the main entry point for the Spindle CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("spindle %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
