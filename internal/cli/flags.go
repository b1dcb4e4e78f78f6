package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	Drive   string `long:"drive" description:"Player mount point (overrides config)" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// StatusCommand — show drive, log, cache, and session health.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// GenerateCommand — ingest the playback log and write dynamic playlists.
type GenerateCommand struct {
	Seed int64 `long:"seed" description:"Random seed for Second Chance sampling (0 = time-based)"`

	globals *GlobalFlags
	version string
}

// StatsCommand — print listening statistics over a time window.
type StatsCommand struct {
	Window string `long:"window" description:"Time window: all | year | month | week" default:"all"`

	globals *GlobalFlags
	version string
}

// ScanCommand — resolve metadata for every audio file in the library.
type ScanCommand struct {
	globals *GlobalFlags
	version string
}

// ResolveCommand — resolve metadata for a single device path.
type ResolveCommand struct {
	Refresh bool `long:"refresh" description:"Bypass the cache and re-read tags from the file"`

	Args struct {
		Path string `positional-arg-name:"device-path" required:"yes"`
	} `positional-args:"yes"`

	globals *GlobalFlags
	version string
}

// ScrobbleCommand — submit pending plays to Last.fm.
type ScrobbleCommand struct {
	DryRun    bool   `long:"dry-run" description:"List pending tracks without submitting"`
	Authorize bool   `long:"authorize" description:"Run the Last.fm authorization flow"`
	APIKey    string `long:"api-key" description:"Last.fm API key (stored on first use)"`
	Secret    string `long:"secret" description:"Last.fm shared secret (stored on first use)"`
	Token     string `long:"token" description:"Authorized token to exchange for a session"`

	globals *GlobalFlags
	version string
}

// DiscoverCommand — suggest artists similar to current favorites.
type DiscoverCommand struct {
	PerSeed int `long:"per-seed" description:"Suggestions kept per seed artist" default:"2"`
	Limit   int `long:"limit" description:"Total suggestions" default:"10"`

	globals *GlobalFlags
	version string
}
