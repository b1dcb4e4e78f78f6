package metrics

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/runnerr0/spindle/internal/playlog"
	"github.com/runnerr0/spindle/internal/scoring"
)

// Track is one row of the metrics snapshot consumed by on-device tools.
type Track struct {
	TrackID      string  `json:"track_id"`
	PlayCount    int     `json:"play_count"`
	LastPlayedTS int64   `json:"last_played_ts"`
	RecentScore  float64 `json:"recent_score"`
	NoveltyScore float64 `json:"novelty_score"`
	CooccurScore float64 `json:"cooccur_score"`
	IsOnPlaylist bool    `json:"is_on_playlist"`
}

// noveltyWindowDays bounds how long a track still counts as a new
// arrival. Novelty is a deliberate step function, not a ramp.
const noveltyWindowDays = 30

// Snapshot computes per-track metrics over the full event set, skipped
// plays included, since even aborted listens establish that a track is
// known. onPlaylist holds the entry lines of playlists already on the
// device, matched exactly against device paths.
func Snapshot(events []playlog.Event, onPlaylist map[string]struct{}) []Track {
	ref := scoring.ReferenceTime(events)

	byPath := make(map[string][]playlog.Event)
	for _, e := range events {
		byPath[e.DevicePath] = append(byPath[e.DevicePath], e)
	}

	out := make([]Track, 0, len(byPath))
	for path, group := range byPath {
		first, last := group[0].Timestamp, group[0].Timestamp
		for _, e := range group[1:] {
			if e.Timestamp < first {
				first = e.Timestamp
			}
			if e.Timestamp > last {
				last = e.Timestamp
			}
		}

		daysSinceLast := scoring.DaysAgo(ref, last)
		daysKnown := scoring.DaysAgo(ref, first)

		novelty := 0.1
		if daysKnown < noveltyWindowDays {
			novelty = 0.9
		}

		_, onPl := onPlaylist[path]

		out = append(out, Track{
			TrackID:      path,
			PlayCount:    len(group),
			LastPlayedTS: last,
			RecentScore:  round2(clamp01(1 - float64(daysSinceLast)/365)),
			NoveltyScore: novelty,
			CooccurScore: round3(float64(len(group)) / float64(daysKnown+1)),
			IsOnPlaylist: onPl,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TrackID < out[j].TrackID })
	return out
}

// Write emits the snapshot as a JSON array at path.
func Write(path string, tracks []Track) error {
	data, err := json.MarshalIndent(tracks, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
