package scoring

import (
	"math"
	"sort"

	"github.com/runnerr0/spindle/internal/playlog"
)

// DefaultDecay is the per-day decay factor for recency scoring.
const DefaultDecay = 0.95

const secondsPerDay = 86400

// ReferenceTime returns the maximum timestamp in the event set. Scores
// are computed relative to this dataset "now", not the wall clock, so a
// fixed dataset always produces the same scores.
func ReferenceTime(events []playlog.Event) int64 {
	var ref int64
	for _, e := range events {
		if e.Timestamp > ref {
			ref = e.Timestamp
		}
	}
	return ref
}

// DaysAgo returns whole days between ts and the reference time, floored
// at zero.
func DaysAgo(ref, ts int64) int64 {
	d := (ref - ts) / secondsPerDay
	if d < 0 {
		return 0
	}
	return d
}

// EventScore computes the recency-decay score decay^days_ago for one event.
func EventScore(ref, ts int64, decay float64) float64 {
	return math.Pow(decay, float64(DaysAgo(ref, ts)))
}

// TrackAggregate is the per-track rollup of an event group, keyed by
// device path. Identity fields come from the earliest event in the
// group, which keeps the representative pick deterministic no matter
// how the group is iterated.
type TrackAggregate struct {
	DevicePath string
	Artist     string
	Album      string
	Title      string

	PlayCount   int
	FirstPlayed int64
	LastPlayed  int64
	TrackMS     int64 // track duration from the representative event
	TotalMS     int64 // summed track duration across the group
	Score       float64
}

// Aggregate groups events by device path and computes per-track decay
// scores relative to the set's own reference time. The returned slice
// is sorted by device path for stable downstream iteration.
func Aggregate(events []playlog.Event, decay float64) []TrackAggregate {
	return AggregateAt(events, ReferenceTime(events), decay)
}

// AggregateAt is Aggregate with an explicit reference time, for callers
// ranking a subset against the full dataset's "now".
func AggregateAt(events []playlog.Event, ref int64, decay float64) []TrackAggregate {
	byPath := make(map[string]*TrackAggregate)
	repTS := make(map[string]int64)

	for _, e := range events {
		agg, ok := byPath[e.DevicePath]
		if !ok {
			agg = &TrackAggregate{
				DevicePath:  e.DevicePath,
				FirstPlayed: e.Timestamp,
				LastPlayed:  e.Timestamp,
			}
			byPath[e.DevicePath] = agg
			repTS[e.DevicePath] = math.MaxInt64
		}

		agg.PlayCount++
		agg.TotalMS += e.TrackMS
		agg.Score += EventScore(ref, e.Timestamp, decay)
		if e.Timestamp < agg.FirstPlayed {
			agg.FirstPlayed = e.Timestamp
		}
		if e.Timestamp > agg.LastPlayed {
			agg.LastPlayed = e.Timestamp
		}

		// Earliest-timestamp event supplies the representative identity.
		if e.Timestamp < repTS[e.DevicePath] {
			repTS[e.DevicePath] = e.Timestamp
			agg.Artist = e.Artist
			agg.Album = e.Album
			agg.Title = e.Title
			agg.TrackMS = e.TrackMS
		}
	}

	out := make([]TrackAggregate, 0, len(byPath))
	for _, agg := range byPath {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DevicePath < out[j].DevicePath })
	return out
}
