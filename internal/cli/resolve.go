package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// resolveJSON is the JSON output structure for the resolve command.
type resolveJSON struct {
	Path   string `json:"path"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Title  string `json:"title"`
}

// Execute implements the go-flags Commander interface for ResolveCommand.
func (c *ResolveCommand) Execute(args []string) error {
	e, err := newEngine(c.globals)
	if err != nil {
		return err
	}
	return c.executeWith(e)
}

// executeWith resolves one path against a wired engine (for testing).
func (c *ResolveCommand) executeWith(e *engine) error {
	var artist, album, title string
	if c.Refresh {
		artist, album, title = e.resolver.ResolveFresh(c.Args.Path)
	} else {
		artist, album, title = e.resolver.Resolve(c.Args.Path)
	}

	if err := e.resolver.Flush(); err != nil {
		e.log.Warn().Err(err).Msg("metadata cache flush failed")
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resolveJSON{Path: c.Args.Path, Artist: artist, Album: album, Title: title})
	}

	fmt.Printf("Artist: %s\n", artist)
	fmt.Printf("Album:  %s\n", album)
	fmt.Printf("Title:  %s\n", title)
	return nil
}
