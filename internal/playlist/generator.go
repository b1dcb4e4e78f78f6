package playlist

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/runnerr0/spindle/internal/playlog"
	"github.com/runnerr0/spindle/internal/scoring"
)

// Rule names as they appear in results and playlist filenames.
const (
	RuleOnRepeat     = "On Repeat"
	RuleForgotten    = "Forgotten Favorites"
	RuleSecondChance = "Second Chance"
	RuleTimeTravel   = "Time Travel"
	RuleFlashback    = "Flashback"
)

// staleAfterDays is how long a favorite must go unplayed before
// Forgotten Favorites picks it up.
const staleAfterDays = 180

// RuleConfig enables one rule and bounds its result size.
type RuleConfig struct {
	Enabled bool
	Limit   int
}

func (r RuleConfig) limit(fallback int) int {
	if r.Limit < 1 {
		return fallback
	}
	return r.Limit
}

// Options selects which rules run and with what limits.
type Options struct {
	OnRepeat     RuleConfig
	Forgotten    RuleConfig
	SecondChance RuleConfig
	TimeTravel   RuleConfig
	Flashback    RuleConfig
	Decay        float64 // 0 means scoring.DefaultDecay
}

func (o Options) decay() float64 {
	if o.Decay <= 0 || o.Decay >= 1 {
		return scoring.DefaultDecay
	}
	return o.Decay
}

// Result reports one emitted (or failed) playlist.
type Result struct {
	Rule   string
	File   string
	Tracks int
	Err    error
}

// Generator derives dynamic playlists from the valid-play subset of an
// event table. The random source drives Second Chance sampling and the
// clock anchors Flashback's "this month in history"; both are
// injectable so generation is reproducible under test.
type Generator struct {
	dir string
	now time.Time
	rng *rand.Rand
	log zerolog.Logger
}

// NewGenerator returns a Generator writing playlists into dir.
func NewGenerator(dir string, now time.Time, rng *rand.Rand, log zerolog.Logger) *Generator {
	return &Generator{dir: dir, now: now, rng: rng, log: log}
}

// Generate runs every enabled rule over the valid events and writes one
// playlist per non-empty result. Rules share no mutable state and run
// concurrently; a failed write in one rule never stops the others.
func (g *Generator) Generate(events []playlog.Event, opts Options) []Result {
	valid := playlog.ValidOnly(events)
	ref := scoring.ReferenceTime(valid)
	decay := opts.decay()

	// Second Chance samples up front: it consumes the shared random
	// source, which must not be used from multiple goroutines.
	var secondPick []scoring.TrackAggregate
	if opts.SecondChance.Enabled {
		secondPick = g.sampleSecondChance(valid, decay, opts.SecondChance.limit(25))
	}

	results := make([][]Result, 5)
	var group errgroup.Group

	if opts.OnRepeat.Enabled {
		group.Go(func() error {
			results[0] = g.onRepeat(valid, decay, opts.OnRepeat.limit(25))
			return nil
		})
	}
	if opts.Forgotten.Enabled {
		group.Go(func() error {
			results[1] = g.forgotten(valid, ref, decay, opts.Forgotten.limit(25))
			return nil
		})
	}
	if opts.SecondChance.Enabled {
		group.Go(func() error {
			results[2] = g.secondChance(secondPick)
			return nil
		})
	}
	if opts.TimeTravel.Enabled {
		group.Go(func() error {
			results[3] = g.timeTravel(valid, decay, opts.TimeTravel.limit(50))
			return nil
		})
	}
	if opts.Flashback.Enabled {
		group.Go(func() error {
			results[4] = g.flashback(valid, decay, opts.Flashback.limit(50))
			return nil
		})
	}

	_ = group.Wait() // rule errors travel inside Result, never here

	var out []Result
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}

// onRepeat ranks tracks by aggregate decay score, favoring what the
// listener keeps coming back to right now.
func (g *Generator) onRepeat(valid []playlog.Event, decay float64, limit int) []Result {
	aggs := scoring.Aggregate(valid, decay)
	sort.SliceStable(aggs, func(i, j int) bool {
		if aggs[i].Score != aggs[j].Score {
			return aggs[i].Score > aggs[j].Score
		}
		return aggs[i].Title < aggs[j].Title
	})

	top := topN(aggs, limit)
	if len(top) == 0 {
		return nil
	}
	return []Result{g.write(RuleOnRepeat, "(Dynamic) On Repeat.m3u8", top)}
}

// forgotten surfaces tracks played at least three times but untouched
// for half a year.
func (g *Generator) forgotten(valid []playlog.Event, ref int64, decay float64, limit int) []Result {
	cutoff := ref - staleAfterDays*86400

	var keep []scoring.TrackAggregate
	for _, a := range scoring.AggregateAt(valid, ref, decay) {
		if a.PlayCount >= 3 && a.LastPlayed < cutoff {
			keep = append(keep, a)
		}
	}
	sort.SliceStable(keep, func(i, j int) bool {
		if keep[i].PlayCount != keep[j].PlayCount {
			return keep[i].PlayCount > keep[j].PlayCount
		}
		return keep[i].Title < keep[j].Title
	})

	top := topN(keep, limit)
	if len(top) == 0 {
		return nil
	}
	return []Result{g.write(RuleForgotten, "(Dynamic) Forgotten Favorites.m3u8", top)}
}

// sampleSecondChance uniformly samples, without replacement, tracks
// heard only once or twice. No ranking on purpose: the point is an
// unbiased second listen.
func (g *Generator) sampleSecondChance(valid []playlog.Event, decay float64, limit int) []scoring.TrackAggregate {
	var candidates []scoring.TrackAggregate
	for _, a := range scoring.Aggregate(valid, decay) {
		if a.PlayCount >= 1 && a.PlayCount <= 2 {
			candidates = append(candidates, a)
		}
	}

	g.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	return topN(candidates, limit)
}

func (g *Generator) secondChance(picked []scoring.TrackAggregate) []Result {
	if len(picked) == 0 {
		return nil
	}
	return []Result{g.write(RuleSecondChance, "(Dynamic) Second Chance.m3u8", picked)}
}

// timeTravel emits one playlist per calendar year present in the
// history, ranking each year by raw play count.
func (g *Generator) timeTravel(valid []playlog.Event, decay float64, limit int) []Result {
	byYear := make(map[int][]playlog.Event)
	for _, e := range valid {
		year := time.Unix(e.Timestamp, 0).Year()
		byYear[year] = append(byYear[year], e)
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Ints(years)

	var out []Result
	for _, year := range years {
		aggs := scoring.Aggregate(byYear[year], decay)
		sort.SliceStable(aggs, func(i, j int) bool {
			if aggs[i].PlayCount != aggs[j].PlayCount {
				return aggs[i].PlayCount > aggs[j].PlayCount
			}
			return aggs[i].Title < aggs[j].Title
		})

		top := topN(aggs, limit)
		if len(top) == 0 {
			continue
		}
		file := fmt.Sprintf("(Dynamic) Time Travel %d.m3u8", year)
		out = append(out, g.write(RuleTimeTravel, file, top))
	}
	return out
}

// flashback picks what the listener played in this same month of
// earlier years.
func (g *Generator) flashback(valid []playlog.Event, decay float64, limit int) []Result {
	var keep []playlog.Event
	for _, e := range valid {
		at := time.Unix(e.Timestamp, 0)
		if at.Month() == g.now.Month() && at.Year() < g.now.Year() {
			keep = append(keep, e)
		}
	}
	if len(keep) == 0 {
		return nil
	}

	aggs := scoring.Aggregate(keep, decay)
	sort.SliceStable(aggs, func(i, j int) bool {
		if aggs[i].PlayCount != aggs[j].PlayCount {
			return aggs[i].PlayCount > aggs[j].PlayCount
		}
		if aggs[i].TotalMS != aggs[j].TotalMS {
			return aggs[i].TotalMS > aggs[j].TotalMS
		}
		return aggs[i].Title < aggs[j].Title
	})

	top := topN(aggs, limit)
	if len(top) == 0 {
		return nil
	}
	file := fmt.Sprintf("(Dynamic) Flashback - %s.m3u8", g.now.Month().String())
	return []Result{g.write(RuleFlashback, file, top)}
}

func (g *Generator) write(rule, filename string, tracks []scoring.TrackAggregate) Result {
	path := filepath.Join(g.dir, filename)
	if err := writeM3U8(path, tracks); err != nil {
		g.log.Error().Err(err).Str("rule", rule).Msg("playlist write failed")
		return Result{Rule: rule, File: path, Err: err}
	}
	g.log.Debug().Str("rule", rule).Str("file", path).Int("tracks", len(tracks)).Msg("playlist written")
	return Result{Rule: rule, File: path, Tracks: len(tracks)}
}

func topN(aggs []scoring.TrackAggregate, n int) []scoring.TrackAggregate {
	if len(aggs) > n {
		return aggs[:n]
	}
	return aggs
}
