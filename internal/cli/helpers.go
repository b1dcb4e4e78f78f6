package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/runnerr0/spindle/internal/config"
	"github.com/runnerr0/spindle/internal/device"
	"github.com/runnerr0/spindle/internal/metadata"
	"github.com/runnerr0/spindle/internal/playlist"
	"github.com/runnerr0/spindle/internal/playlog"
)

// engine bundles the wired components the subcommands share: the device
// layout, the metadata cache and resolver, and the log ingestor.
type engine struct {
	cfg      *config.Config
	layout   device.Layout
	cache    *metadata.Cache
	resolver *metadata.Resolver
	ingestor *playlog.Ingestor
	log      zerolog.Logger
}

// loadConfig loads from --config when given, the default path otherwise.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals != nil && globals.Config != "" {
		return config.Load(globals.Config)
	}
	return config.LoadOrCreate()
}

// newLogger writes human-readable log lines to stderr so stdout stays
// clean for command output. Warnings only, unless --verbose.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// newEngine loads the config and wires the engine for the selected drive.
func newEngine(globals *GlobalFlags) (*engine, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	return newEngineWith(cfg, globals)
}

// newEngineWith wires the engine against an already-loaded config (for testing).
func newEngineWith(cfg *config.Config, globals *GlobalFlags) (*engine, error) {
	log := newLogger(globals != nil && globals.Verbose)

	drive := cfg.Device.Drive
	if globals != nil && globals.Drive != "" {
		drive = globals.Drive
	}
	if drive == "" {
		return nil, fmt.Errorf("no player drive configured: set device.drive in the config or pass --drive")
	}
	if _, err := os.Stat(drive); err != nil {
		return nil, fmt.Errorf("player drive %s not mounted: %w", drive, err)
	}

	cachePath, err := cfg.CachePath()
	if err != nil {
		return nil, err
	}

	layout := device.NewLayout(drive)
	cache := metadata.NewCache(cachePath, log)
	cache.Load()
	resolver := metadata.NewResolver(cache, metadata.FileTagReader{}, layout, log)

	return &engine{
		cfg:      cfg,
		layout:   layout,
		cache:    cache,
		resolver: resolver,
		ingestor: playlog.NewIngestor(resolver, log),
		log:      log,
	}, nil
}

// ingestLog locates and parses the drive's playback log.
func (e *engine) ingestLog() (*playlog.Result, error) {
	logPath, err := e.layout.FindLog()
	if err != nil {
		return nil, err
	}
	return e.ingestor.IngestFile(logPath)
}

// ruleOptions maps the config's rule table onto generator options.
func ruleOptions(cfg *config.Config) playlist.Options {
	conv := func(r config.RuleConfig) playlist.RuleConfig {
		return playlist.RuleConfig{Enabled: r.Enabled, Limit: r.Limit}
	}
	return playlist.Options{
		OnRepeat:     conv(cfg.Rules.OnRepeat),
		Forgotten:    conv(cfg.Rules.Forgotten),
		SecondChance: conv(cfg.Rules.SecondChance),
		TimeTravel:   conv(cfg.Rules.TimeTravel),
		Flashback:    conv(cfg.Rules.Flashback),
		Decay:        cfg.Scoring.Decay,
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
		if len(s) > remainder {
			result.WriteString(",")
		}
	}
	for i := remainder; i < len(s); i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}
