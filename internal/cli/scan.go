package cli

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
)

// audioExts are the file types the resolver knows how to read.
var audioExts = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
	".opus": true,
	".wv":   true,
}

// Execute implements the go-flags Commander interface for ScanCommand.
func (c *ScanCommand) Execute(args []string) error {
	e, err := newEngine(c.globals)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.executeWith(ctx, e)
}

// executeWith walks the library with an injected context (for testing).
func (c *ScanCommand) executeWith(ctx context.Context, e *engine) error {
	musicDir := e.layout.MusicDir()
	before := e.cache.Len()

	var scanned int
	err := filepath.WalkDir(musicDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !audioExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		devicePath, err := e.layout.DevicePath(path)
		if err != nil {
			return err
		}
		e.resolver.Resolve(devicePath)
		scanned++
		return nil
	})

	// Partial progress is worth keeping even when the walk was cut short.
	if flushErr := e.resolver.Flush(); flushErr != nil {
		e.log.Warn().Err(flushErr).Msg("metadata cache flush failed")
	}

	if err != nil {
		return fmt.Errorf("scanning %s: %w", musicDir, err)
	}

	fmt.Printf("Scanned %s files, %s new cache entries (%s total)\n",
		formatNumber(int64(scanned)),
		formatNumber(int64(e.cache.Len()-before)),
		formatNumber(int64(e.cache.Len())))
	return nil
}
