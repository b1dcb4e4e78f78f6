package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/runnerr0/spindle/internal/lastfm"
	"github.com/runnerr0/spindle/internal/scrobble"
	"github.com/runnerr0/spindle/internal/stats"
)

// similarSource is the slice of the Last.fm client discovery needs.
type similarSource interface {
	SimilarArtists(ctx context.Context, name string, limit int) ([]lastfm.Artist, error)
}

// suggestionJSON is one discovery suggestion.
type suggestionJSON struct {
	Seed   string `json:"seed"`
	Artist string `json:"artist"`
	URL    string `json:"url,omitempty"`
}

// Execute implements the go-flags Commander interface for DiscoverCommand.
func (c *DiscoverCommand) Execute(args []string) error {
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
	if state.APIKey == "" {
		return fmt.Errorf("no API key stored: run spindle scrobble --authorize first")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := &lastfm.Client{APIKey: state.APIKey, SharedSecret: state.SharedSecret}
	return c.executeWith(ctx, e, client)
}

// executeWith runs discovery through an injected similarity source (for testing).
func (c *DiscoverCommand) executeWith(ctx context.Context, e *engine, src similarSource) error {
	res, err := e.ingestLog()
	if err != nil {
		return err
	}

	seeds := stats.TopArtistsByScore(res.Events, 5)
	if len(seeds) == 0 {
		fmt.Println("No listening history to seed suggestions from.")
		return nil
	}

	library := stats.LibraryArtists(e.layout.MusicDir())
	seen := make(map[string]struct{})

	var suggestions []suggestionJSON
	for _, seed := range seeds {
		if len(suggestions) >= c.Limit {
			break
		}

		similar, err := src.SimilarArtists(ctx, seed, 8)
		if err != nil {
			e.log.Warn().Err(err).Str("seed", seed).Msg("similar-artist lookup failed")
			continue
		}

		kept := 0
		for _, artist := range similar {
			if kept >= c.PerSeed || len(suggestions) >= c.Limit {
				break
			}
			norm := stats.Normalize(artist.Name)
			if _, dup := seen[norm]; dup {
				continue
			}
			if _, inLibrary := library[norm]; inLibrary {
				continue
			}
			seen[norm] = struct{}{}
			suggestions = append(suggestions, suggestionJSON{Seed: seed, Artist: artist.Name, URL: artist.URL})
			kept++
		}
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(suggestions)
	}

	if len(suggestions) == 0 {
		fmt.Println("No new artists to suggest.")
		return nil
	}
	fmt.Println("Based on what you've been playing:")
	for _, s := range suggestions {
		fmt.Printf("  %-30s (like %s)\n", s.Artist, s.Seed)
	}
	return nil
}
