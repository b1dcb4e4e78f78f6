package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/spindle/internal/playlog"
)

const day = int64(86400)

func TestReferenceTime(t *testing.T) {
	events := []playlog.Event{
		{Timestamp: 100}, {Timestamp: 300}, {Timestamp: 200},
	}
	assert.Equal(t, int64(300), ReferenceTime(events))
	assert.Equal(t, int64(0), ReferenceTime(nil))
}

func TestDaysAgo(t *testing.T) {
	ref := int64(1700000000)

	assert.Equal(t, int64(0), DaysAgo(ref, ref))
	assert.Equal(t, int64(0), DaysAgo(ref, ref+day), "future events clamp to zero")
	assert.Equal(t, int64(0), DaysAgo(ref, ref-day+1), "partial days floor to zero")
	assert.Equal(t, int64(1), DaysAgo(ref, ref-day))
	assert.Equal(t, int64(30), DaysAgo(ref, ref-30*day))
}

func TestEventScore_RecencyMonotonic(t *testing.T) {
	ref := int64(1700000000)

	today := EventScore(ref, ref, DefaultDecay)
	monthAgo := EventScore(ref, ref-30*day, DefaultDecay)

	assert.Equal(t, 1.0, today)
	assert.Greater(t, today, monthAgo, "0.95^0 must beat 0.95^30")
	assert.InDelta(t, 0.2146, monthAgo, 0.0001)
}

func TestAggregate_GroupsByPath(t *testing.T) {
	ref := int64(1700000000)
	events := []playlog.Event{
		{Timestamp: ref, DevicePath: "/a", Artist: "Late", Album: "L", Title: "LT", TrackMS: 200000},
		{Timestamp: ref - 30*day, DevicePath: "/a", Artist: "Early", Album: "E", Title: "ET", TrackMS: 210000},
		{Timestamp: ref - day, DevicePath: "/b", Artist: "B", Album: "BB", Title: "BT", TrackMS: 100000},
	}

	aggs := Aggregate(events, DefaultDecay)
	require.Len(t, aggs, 2)

	a := aggs[0]
	assert.Equal(t, "/a", a.DevicePath)
	assert.Equal(t, 2, a.PlayCount)
	assert.Equal(t, ref-30*day, a.FirstPlayed)
	assert.Equal(t, ref, a.LastPlayed)
	assert.Equal(t, int64(410000), a.TotalMS)
	assert.InDelta(t, 1.0+0.2146, a.Score, 0.0001)

	// Representative identity comes from the earliest event.
	assert.Equal(t, "Early", a.Artist)
	assert.Equal(t, "E", a.Album)
	assert.Equal(t, "ET", a.Title)
	assert.Equal(t, int64(210000), a.TrackMS)
}

func TestAggregate_RecentTrackOutscoresStale(t *testing.T) {
	ref := int64(1700000000)
	events := []playlog.Event{
		{Timestamp: ref, DevicePath: "/recent"},
		{Timestamp: ref, DevicePath: "/recent"},
		{Timestamp: ref - 30*day, DevicePath: "/stale"},
		{Timestamp: ref - 30*day, DevicePath: "/stale"},
	}

	aggs := Aggregate(events, DefaultDecay)
	require.Len(t, aggs, 2)

	byPath := map[string]TrackAggregate{}
	for _, a := range aggs {
		byPath[a.DevicePath] = a
	}
	assert.Greater(t, byPath["/recent"].Score, byPath["/stale"].Score,
		"equal play counts: the recent track must score strictly higher")
}
