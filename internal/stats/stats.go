package stats

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/runnerr0/spindle/internal/metadata"
	"github.com/runnerr0/spindle/internal/playlog"
	"github.com/runnerr0/spindle/internal/scoring"
)

// Window restricts statistics to a recent slice of the history.
type Window int

const (
	WindowAll Window = iota
	WindowThisYear
	WindowThisMonth
	WindowLastWeek
)

// WindowFromString maps a CLI argument to a Window.
func WindowFromString(s string) (Window, bool) {
	switch strings.ToLower(s) {
	case "", "all":
		return WindowAll, true
	case "year":
		return WindowThisYear, true
	case "month":
		return WindowThisMonth, true
	case "week":
		return WindowLastWeek, true
	}
	return WindowAll, false
}

// Filter returns the events inside the window relative to now.
func Filter(events []playlog.Event, w Window, now time.Time) []playlog.Event {
	if w == WindowAll {
		return events
	}

	keep := make([]playlog.Event, 0, len(events))
	for _, e := range events {
		at := time.Unix(e.Timestamp, 0)
		switch w {
		case WindowThisYear:
			if at.Year() == now.Year() {
				keep = append(keep, e)
			}
		case WindowThisMonth:
			if at.Year() == now.Year() && at.Month() == now.Month() {
				keep = append(keep, e)
			}
		case WindowLastWeek:
			if !at.Before(now.AddDate(0, 0, -7)) {
				keep = append(keep, e)
			}
		}
	}
	return keep
}

// NameCount pairs a display name with its valid play count.
type NameCount struct {
	Name  string
	Count int
}

// Summary holds the listening statistics for one window. Rankings and
// histograms count valid plays only; minutes include skipped listens.
type Summary struct {
	MinutesPlayed int64
	ValidPlays    int
	AvgDailyPlays int

	TopArtists []NameCount
	TopAlbums  []NameCount
	TopTitles  []NameCount

	HourCounts    [24]int
	WeekdayCounts [7]int

	PeakHour        int
	PeakHourPlays   int
	PeakWeekday     time.Weekday
	PeakWeekdayPlays int
}

// Summarize computes listening statistics over the given events.
func Summarize(events []playlog.Event) Summary {
	var s Summary
	if len(events) == 0 {
		return s
	}

	var playMS int64
	minTS, maxTS := events[0].Timestamp, events[0].Timestamp
	artists := make(map[string]int)
	albums := make(map[string]int)
	titles := make(map[string]int)

	for _, e := range events {
		playMS += e.PlayMS
		if e.Timestamp < minTS {
			minTS = e.Timestamp
		}
		if e.Timestamp > maxTS {
			maxTS = e.Timestamp
		}

		if !e.Valid {
			continue
		}
		s.ValidPlays++
		artists[e.Artist]++
		albums[e.Album]++
		titles[e.Title]++

		at := time.Unix(e.Timestamp, 0)
		s.HourCounts[at.Hour()]++
		s.WeekdayCounts[int(at.Weekday())]++
	}

	s.MinutesPlayed = playMS / 1000 / 60

	days := (maxTS - minTS) / 86400
	if days < 1 {
		days = 1
	}
	s.AvgDailyPlays = s.ValidPlays / int(days)

	s.TopArtists = topCounts(artists, 5)
	s.TopAlbums = topCounts(albums, 5)
	s.TopTitles = topCounts(titles, 5)

	for hour, count := range s.HourCounts {
		if count > s.PeakHourPlays {
			s.PeakHour, s.PeakHourPlays = hour, count
		}
	}
	for weekday, count := range s.WeekdayCounts {
		if count > s.PeakWeekdayPlays {
			s.PeakWeekday, s.PeakWeekdayPlays = time.Weekday(weekday), count
		}
	}

	return s
}

func topCounts(counts map[string]int, n int) []NameCount {
	out := make([]NameCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, NameCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// TopArtistsByScore ranks artists by summed recency-decay score over
// the valid plays and returns up to n names, skipping the unknown
// sentinel. These are the seeds for discovery.
func TopArtistsByScore(events []playlog.Event, n int) []string {
	valid := playlog.ValidOnly(events)
	ref := scoring.ReferenceTime(valid)

	scores := make(map[string]float64)
	for _, e := range valid {
		if e.Artist == metadata.UnknownArtist {
			continue
		}
		scores[e.Artist] += scoring.EventScore(ref, e.Timestamp, scoring.DefaultDecay)
	}

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if scores[names[i]] != scores[names[j]] {
			return scores[names[i]] > scores[names[j]]
		}
		return names[i] < names[j]
	})

	if len(names) > n {
		names = names[:n]
	}
	return names
}

var nonWord = regexp.MustCompile(`[^\w\s]`)

// Normalize lowercases a name and strips punctuation so library and
// service spellings compare loosely.
func Normalize(name string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(name), ""))
}

// LibraryArtists lists the normalized names of the top-level artist
// directories in the music library. A missing library yields an empty set.
func LibraryArtists(musicDir string) map[string]struct{} {
	out := make(map[string]struct{})

	entries, err := os.ReadDir(musicDir)
	if err != nil {
		return out
	}
	for _, entry := range entries {
		if entry.IsDir() {
			out[Normalize(entry.Name())] = struct{}{}
		}
	}
	return out
}
