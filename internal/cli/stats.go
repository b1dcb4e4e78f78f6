package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/spindle/internal/stats"
)

// statsJSON is the JSON output structure for the stats command.
type statsJSON struct {
	Window        string            `json:"window"`
	MinutesPlayed int64             `json:"minutes_played"`
	ValidPlays    int               `json:"valid_plays"`
	AvgDailyPlays int               `json:"avg_daily_plays"`
	TopArtists    []nameCountJSON   `json:"top_artists"`
	TopAlbums     []nameCountJSON   `json:"top_albums"`
	TopTitles     []nameCountJSON   `json:"top_titles"`
	PeakHour      int               `json:"peak_hour"`
	PeakWeekday   string            `json:"peak_weekday"`
}

type nameCountJSON struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	e, err := newEngine(c.globals)
	if err != nil {
		return err
	}
	return c.executeWith(e, time.Now())
}

// executeWith runs stats with an injected clock (for testing).
func (c *StatsCommand) executeWith(e *engine, now time.Time) error {
	window, ok := stats.WindowFromString(c.Window)
	if !ok {
		return fmt.Errorf("unknown window %q (use all, year, month, or week)", c.Window)
	}

	res, err := e.ingestLog()
	if err != nil {
		return err
	}

	summary := stats.Summarize(stats.Filter(res.Events, window, now))

	if c.globals != nil && c.globals.JSON {
		out := statsJSON{
			Window:        c.Window,
			MinutesPlayed: summary.MinutesPlayed,
			ValidPlays:    summary.ValidPlays,
			AvgDailyPlays: summary.AvgDailyPlays,
			TopArtists:    toNameCounts(summary.TopArtists),
			TopAlbums:     toNameCounts(summary.TopAlbums),
			TopTitles:     toNameCounts(summary.TopTitles),
			PeakHour:      summary.PeakHour,
			PeakWeekday:   summary.PeakWeekday.String(),
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Printf("Listening Stats (%s)\n", c.Window)
	fmt.Println("====================")
	fmt.Printf("Minutes played:  %s\n", formatNumber(summary.MinutesPlayed))
	fmt.Printf("Valid plays:     %s\n", formatNumber(int64(summary.ValidPlays)))
	fmt.Printf("Avg plays/day:   %d\n", summary.AvgDailyPlays)

	printTop := func(label string, entries []stats.NameCount) {
		if len(entries) == 0 {
			return
		}
		fmt.Println()
		fmt.Println(label + ":")
		for _, nc := range entries {
			fmt.Printf("  %-40s %d\n", nc.Name, nc.Count)
		}
	}
	printTop("Top Artists", summary.TopArtists)
	printTop("Top Albums", summary.TopAlbums)
	printTop("Top Tracks", summary.TopTitles)

	if summary.ValidPlays > 0 {
		fmt.Println()
		fmt.Printf("Peak hour:       %02d:00 (%d plays)\n", summary.PeakHour, summary.PeakHourPlays)
		fmt.Printf("Peak weekday:    %s (%d plays)\n", summary.PeakWeekday, summary.PeakWeekdayPlays)
	}

	return nil
}

func toNameCounts(entries []stats.NameCount) []nameCountJSON {
	out := make([]nameCountJSON, len(entries))
	for i, nc := range entries {
		out[i] = nameCountJSON{Name: nc.Name, Count: nc.Count}
	}
	return out
}
