package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/runnerr0/spindle/internal/lastfm"
	"github.com/runnerr0/spindle/internal/scrobble"
)

// scrobbleJSON is the JSON output structure for a submission run.
type scrobbleJSON struct {
	Pending   int  `json:"pending"`
	Submitted int  `json:"submitted"`
	Batches   int  `json:"batches"`
	Failed    int  `json:"failed"`
	DryRun    bool `json:"dry_run,omitempty"`
}

// Execute implements the go-flags Commander interface for ScrobbleCommand.
func (c *ScrobbleCommand) Execute(args []string) error {
	cfg, err := loadConfig(c.globals)
	if err != nil {
		return err
	}
	sessionPath, err := cfg.SessionPath()
	if err != nil {
		return err
	}
	state, err := scrobble.LoadState(sessionPath)
	if err != nil {
		return err
	}
	if c.APIKey != "" {
		state.APIKey = c.APIKey
	}
	if c.Secret != "" {
		state.SharedSecret = c.Secret
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if c.Authorize {
		client := &lastfm.Client{APIKey: state.APIKey, SharedSecret: state.SharedSecret}
		return c.executeAuthorize(ctx, state, client)
	}

	e, err := newEngineWith(cfg, c.globals)
	if err != nil {
		return err
	}
	client := &lastfm.Client{
		APIKey:       state.APIKey,
		SharedSecret: state.SharedSecret,
		SessionKey:   state.SessionKey,
	}
	return c.executeSync(ctx, e, state, client)
}

// executeAuthorize runs the two-step Last.fm authorization flow: first
// call prints the authorization URL, second call (--token) exchanges the
// approved token for a session key.
func (c *ScrobbleCommand) executeAuthorize(ctx context.Context, state *scrobble.State, client *lastfm.Client) error {
	if state.APIKey == "" || state.SharedSecret == "" {
		return fmt.Errorf("no API credentials: pass --api-key and --secret")
	}

	if c.Token == "" {
		token, err := client.GetToken(ctx)
		if err != nil {
			return err
		}
		if err := state.Save(); err != nil {
			return err
		}
		fmt.Println("Approve access in your browser, then re-run with --token:")
		fmt.Println()
		fmt.Printf("  %s\n", lastfm.AuthURL(state.APIKey, token))
		fmt.Println()
		fmt.Printf("  spindle scrobble --authorize --token %s\n", token)
		return nil
	}

	key, user, err := client.GetSession(ctx, c.Token)
	if err != nil {
		return err
	}
	state.SessionKey = key
	if err := state.Save(); err != nil {
		return err
	}
	fmt.Printf("Authorized as %s\n", user)
	return nil
}

// executeSync ingests the log and submits pending plays through the
// given submitter (for testing).
func (c *ScrobbleCommand) executeSync(ctx context.Context, e *engine, state *scrobble.State, submitter scrobble.Submitter) error {
	if !state.HasSession() {
		return fmt.Errorf("no Last.fm session: run spindle scrobble --authorize first")
	}

	res, err := e.ingestLog()
	if err != nil {
		return err
	}

	syncer := scrobble.NewSyncer(state, submitter, e.cfg.Scrobble.BatchSize, e.log)

	if c.DryRun {
		pending := syncer.Pending(res.Events)
		if c.globals != nil && c.globals.JSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(scrobbleJSON{Pending: len(pending), DryRun: true})
		}
		fmt.Printf("%d plays pending\n", len(pending))
		for _, ev := range pending {
			fmt.Printf("  %d  %s - %s\n", ev.Timestamp, ev.Artist, ev.Title)
		}
		return nil
	}

	out, err := syncer.Run(ctx, res.Events)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scrobbleJSON{
			Pending:   out.Pending,
			Submitted: out.Submitted,
			Batches:   out.Batches,
			Failed:    out.Failed,
		})
	}

	fmt.Printf("Submitted %d of %d pending plays in %d batches\n", out.Submitted, out.Pending, out.Batches)
	if out.Failed > 0 {
		fmt.Printf("%d plays left for the next run\n", out.Failed)
	}
	return nil
}
