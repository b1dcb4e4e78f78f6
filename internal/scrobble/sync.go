package scrobble

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/runnerr0/spindle/internal/playlog"
)

// DefaultBatchSize is how many tracks go into one submission call.
const DefaultBatchSize = 50

// Track is one pending submission. StartTimestamp is when playback
// began; the device logs the end time, so the play duration is
// subtracted during selection.
type Track struct {
	Artist         string
	Title          string
	Album          string
	StartTimestamp int64
}

// Submitter delivers one batch to the external service. An error means
// the whole batch was rejected; acceptance is batch-granular.
type Submitter interface {
	Submit(ctx context.Context, batch []Track) error
}

// Outcome summarizes a submission run.
type Outcome struct {
	Pending   int // events newer than the watermark before the run
	Submitted int
	Batches   int
	Failed    int // events left behind by a failed or cancelled batch
}

// Syncer drives incremental submission: valid events newer than the
// watermark are batched in timestamp order, and after each accepted
// batch the watermark advances to that batch's newest event and is
// persisted immediately. A failed batch stops the run so the watermark
// never jumps past unacknowledged events; everything unsent stays
// eligible for the next run. A crash between remote acknowledgment and
// the local persist makes that batch resend, so delivery is
// at-least-once.
type Syncer struct {
	state     *State
	submitter Submitter
	batchSize int
	log       zerolog.Logger
}

// NewSyncer returns a Syncer submitting through sub. batchSize <= 0
// selects DefaultBatchSize.
func NewSyncer(state *State, sub Submitter, batchSize int, log zerolog.Logger) *Syncer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Syncer{state: state, submitter: sub, batchSize: batchSize, log: log}
}

// Pending returns the valid events newer than the watermark, oldest first.
func (s *Syncer) Pending(events []playlog.Event) []playlog.Event {
	var pending []playlog.Event
	for _, e := range events {
		if e.Valid && e.Timestamp > s.state.LastScrobbleTime {
			pending = append(pending, e)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Timestamp < pending[j].Timestamp
	})
	return pending
}

// Run submits all pending events. Cancellation is honored between
// batches; an in-flight batch is never abandoned halfway, so the
// watermark cannot partially advance.
func (s *Syncer) Run(ctx context.Context, events []playlog.Event) (Outcome, error) {
	pending := s.Pending(events)
	out := Outcome{Pending: len(pending)}

	for start := 0; start < len(pending); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			out.Failed = len(pending) - out.Submitted
			return out, err
		}

		end := start + s.batchSize
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		batch := make([]Track, len(chunk))
		var maxTS int64
		for i, e := range chunk {
			batch[i] = Track{
				Artist:         e.Artist,
				Title:          e.Title,
				Album:          e.Album,
				StartTimestamp: e.Timestamp - e.PlayMS/1000,
			}
			if e.Timestamp > maxTS {
				maxTS = e.Timestamp
			}
		}

		if err := s.submitter.Submit(ctx, batch); err != nil {
			s.log.Warn().Err(err).Int("batch", out.Batches+1).Msg("scrobble batch rejected")
			out.Failed = len(pending) - out.Submitted
			return out, nil
		}

		out.Submitted += len(chunk)
		out.Batches++

		s.state.LastScrobbleTime = maxTS
		if err := s.state.Save(); err != nil {
			// The remote already accepted the batch; the worst case of a
			// lost persist is a duplicate resend next run.
			s.log.Warn().Err(err).Msg("watermark persist failed")
		}
		s.log.Debug().Int("tracks", len(chunk)).Int64("watermark", maxTS).Msg("scrobble batch accepted")
	}

	return out, nil
}
