package playlog

// Event represents a single playback record parsed from the device log.
// Events are rebuilt from the full log on every parse and never mutated.
type Event struct {
	Timestamp  int64 // epoch seconds, end of playback
	PlayMS     int64
	TrackMS    int64
	Valid      bool
	DevicePath string
	Artist     string
	Album      string
	Title      string
}

// minValidPlayMS is the absolute floor above which a play counts
// regardless of how long the track is.
const minValidPlayMS = 120000

// validPlay reports whether a play crossed the completion threshold:
// at least 45% of the track, or two minutes of listening.
func validPlay(playMS, trackMS int64) bool {
	if trackMS <= 0 {
		return false
	}
	ratio := float64(playMS) / float64(trackMS)
	return ratio >= 0.45 || playMS >= minValidPlayMS
}

// ValidOnly returns the subset of events that count as real plays.
func ValidOnly(events []Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Valid {
			out = append(out, e)
		}
	}
	return out
}
