package scrobble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// State is the persisted session document: Last.fm credentials plus the
// submission watermark. The watermark is the timestamp of the newest
// event the remote service has acknowledged; it only ever moves forward.
type State struct {
	APIKey           string `json:"api_key"`
	SharedSecret     string `json:"shared_secret"`
	SessionKey       string `json:"session_key"`
	LastScrobbleTime int64  `json:"last_scrobble_time"`

	path string
}

// LoadState reads the session document at path. A missing document
// yields a zero state; a corrupt one is an error so credentials are
// never silently discarded.
func LoadState(path string) (*State, error) {
	s := &State{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading session state: %w", err)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing session state %s: %w", path, err)
	}
	s.path = path
	return s, nil
}

// HasSession reports whether an authorized Last.fm session is stored.
func (s *State) HasSession() bool {
	return s.SessionKey != ""
}

// Save persists the session document.
func (s *State) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing session state: %w", err)
	}
	return nil
}
