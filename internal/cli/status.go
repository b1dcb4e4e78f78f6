package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/spindle/internal/scrobble"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version          string `json:"version"`
	Drive            string `json:"drive"`
	PlaybackLog      string `json:"playback_log,omitempty"`
	TotalEvents      int    `json:"total_events"`
	ValidEvents      int    `json:"valid_events"`
	SkippedLines     int    `json:"skipped_lines"`
	OldestEvent      string `json:"oldest_event,omitempty"`
	NewestEvent      string `json:"newest_event,omitempty"`
	CacheEntries     int    `json:"cache_entries"`
	SessionActive    bool   `json:"session_active"`
	LastScrobbleTime int64  `json:"last_scrobble_time,omitempty"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	e, err := newEngine(c.globals)
	if err != nil {
		return err
	}

	sessionPath, err := e.cfg.SessionPath()
	if err != nil {
		return err
	}
	state, err := scrobble.LoadState(sessionPath)
	if err != nil {
		return err
	}

	return c.executeWith(e, state)
}

// executeWith runs status against a wired engine and session state (for testing).
func (c *StatusCommand) executeWith(e *engine, state *scrobble.State) error {
	out := statusJSON{
		Version:          c.version,
		Drive:            e.layout.Drive,
		SessionActive:    state.HasSession(),
		LastScrobbleTime: state.LastScrobbleTime,
		CacheEntries:     e.cache.Len(),
	}

	logPath, err := e.layout.FindLog()
	if err == nil {
		out.PlaybackLog = logPath

		res, err := e.ingestor.IngestFile(logPath)
		if err != nil {
			return err
		}
		out.TotalEvents = len(res.Events)
		out.SkippedLines = res.Skipped
		for _, ev := range res.Events {
			if ev.Valid {
				out.ValidEvents++
			}
		}
		if len(res.Events) > 0 {
			oldest, newest := res.Events[0].Timestamp, res.Events[0].Timestamp
			for _, ev := range res.Events[1:] {
				if ev.Timestamp < oldest {
					oldest = ev.Timestamp
				}
				if ev.Timestamp > newest {
					newest = ev.Timestamp
				}
			}
			out.OldestEvent = time.Unix(oldest, 0).Local().Format("2006-01-02")
			out.NewestEvent = time.Unix(newest, 0).Local().Format("2006-01-02")
		}
		// The ingest may have resolved paths the cache had not seen.
		out.CacheEntries = e.cache.Len()
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	fmt.Println("Spindle Status")
	fmt.Println("==============")
	fmt.Printf("Version:      %s\n", c.version)
	fmt.Printf("Drive:        %s\n", out.Drive)
	if out.PlaybackLog != "" {
		fmt.Printf("Playback log: %s\n", out.PlaybackLog)
		fmt.Printf("Events:       %s (%s valid, %d malformed)\n",
			formatNumber(int64(out.TotalEvents)), formatNumber(int64(out.ValidEvents)), out.SkippedLines)
		if out.OldestEvent != "" {
			fmt.Printf("Range:        %s to %s\n", out.OldestEvent, out.NewestEvent)
		}
	} else {
		fmt.Println("Playback log: not found")
	}
	fmt.Printf("Cache:        %s entries\n", formatNumber(int64(out.CacheEntries)))
	if out.SessionActive {
		fmt.Println("Last.fm:      authorized")
		if out.LastScrobbleTime > 0 {
			fmt.Printf("Scrobbled up to: %d\n", out.LastScrobbleTime)
		}
	} else {
		fmt.Println("Last.fm:      not authorized")
	}

	return nil
}
