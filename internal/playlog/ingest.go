package playlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Resolver supplies identity metadata for a device path. Implementations
// must never fail; Flush persists any resolutions computed since the
// last flush.
type Resolver interface {
	Resolve(devicePath string) (artist, album, title string)
	Flush() error
}

// Result holds the parsed event table and a count of malformed lines
// that were skipped.
type Result struct {
	Events  []Event
	Skipped int
}

// Ingestor parses the raw playback log into validated events.
type Ingestor struct {
	resolver Resolver
	log      zerolog.Logger
}

// NewIngestor returns an Ingestor that resolves metadata through r.
func NewIngestor(r Resolver, log zerolog.Logger) *Ingestor {
	return &Ingestor{resolver: r, log: log}
}

// IngestFile parses the log at path. A missing or unreadable log fails
// the whole operation; no partial event table is produced.
func (in *Ingestor) IngestFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening playback log: %w", err)
	}
	defer f.Close()

	return in.Ingest(f)
}

// Ingest parses raw log text from r. Malformed lines are counted and
// skipped, never fatal. Metadata resolutions are flushed to the cache
// once at the end.
func (in *Ingestor) Ingest(r io.Reader) (*Result, error) {
	res := &Result{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		event, ok := parseLine(line)
		if !ok {
			res.Skipped++
			continue
		}

		event.Artist, event.Album, event.Title = in.resolver.Resolve(event.DevicePath)
		res.Events = append(res.Events, event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading playback log: %w", err)
	}

	// One flush per ingestion, not per record. A failed flush does not
	// invalidate the parsed table.
	if err := in.resolver.Flush(); err != nil {
		in.log.Warn().Err(err).Msg("metadata cache flush failed")
	}

	if res.Skipped > 0 {
		in.log.Debug().Int("skipped", res.Skipped).Msg("skipped malformed log lines")
	}

	return res, nil
}

// parseLine parses one record of the form
// timestamp:play_ms:track_ms:device_path. The device path is everything
// after the third colon and may itself contain colons.
func parseLine(line string) (Event, bool) {
	parts := strings.SplitN(line, ":", 4)
	if len(parts) < 4 {
		return Event{}, false
	}

	ts, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Event{}, false
	}
	playMS, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Event{}, false
	}
	trackMS, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Event{}, false
	}

	return Event{
		Timestamp:  ts,
		PlayMS:     playMS,
		TrackMS:    trackMS,
		Valid:      validPlay(playMS, trackMS),
		DevicePath: parts[3],
	}, true
}
