package cli

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/runnerr0/spindle/internal/metrics"
	"github.com/runnerr0/spindle/internal/playlist"
)

// generateJSON is the JSON output structure for the generate command.
type generateJSON struct {
	Playlists []playlistJSON `json:"playlists"`
	Metrics   string         `json:"metrics,omitempty"`
	Events    int            `json:"events"`
	Skipped   int            `json:"skipped_lines"`
}

type playlistJSON struct {
	Rule   string `json:"rule"`
	File   string `json:"file"`
	Tracks int    `json:"tracks"`
	Error  string `json:"error,omitempty"`
}

// Execute implements the go-flags Commander interface for GenerateCommand.
func (c *GenerateCommand) Execute(args []string) error {
	e, err := newEngine(c.globals)
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return c.executeWith(e, time.Now(), rand.New(rand.NewSource(seed)))
}

// executeWith runs generation with an injected clock and random source (for testing).
func (c *GenerateCommand) executeWith(e *engine, now time.Time, rng *rand.Rand) error {
	res, err := e.ingestLog()
	if err != nil {
		return err
	}

	gen := playlist.NewGenerator(e.layout.PlaylistDir(), now, rng, e.log)
	results := gen.Generate(res.Events, ruleOptions(e.cfg))

	out := generateJSON{Events: len(res.Events), Skipped: res.Skipped}
	for _, r := range results {
		p := playlistJSON{Rule: r.Rule, File: r.File, Tracks: r.Tracks}
		if r.Err != nil {
			p.Error = r.Err.Error()
		}
		out.Playlists = append(out.Playlists, p)
	}

	if e.cfg.Metrics.Enabled {
		onPlaylist := playlist.ExistingLines(e.layout.PlaylistDir())
		snapshot := metrics.Snapshot(res.Events, onPlaylist)
		if err := metrics.Write(e.layout.MetricsPath(), snapshot); err != nil {
			return err
		}
		out.Metrics = e.layout.MetricsPath()
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Ingested %s events (%d malformed lines skipped)\n",
		formatNumber(int64(out.Events)), out.Skipped)
	for _, p := range out.Playlists {
		if p.Error != "" {
			fmt.Printf("  %-20s FAILED: %s\n", p.Rule, p.Error)
			continue
		}
		fmt.Printf("  %-20s %d tracks -> %s\n", p.Rule, p.Tracks, p.File)
	}
	if len(out.Playlists) == 0 {
		fmt.Println("  no playlists produced (no valid plays matched any enabled rule)")
	}
	if out.Metrics != "" {
		fmt.Printf("Metrics snapshot -> %s\n", out.Metrics)
	}

	return nil
}
