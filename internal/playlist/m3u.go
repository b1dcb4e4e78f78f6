package playlist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/runnerr0/spindle/internal/scoring"
)

// writeM3U8 writes an extended M3U playlist. Device paths go in
// verbatim; Rockbox resolves them against its own volume roots.
func writeM3U8(path string, tracks []scoring.TrackAggregate) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating playlist directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating playlist: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "#EXTM3U")

	for _, t := range tracks {
		seconds := int64(-1)
		if t.TrackMS > 0 {
			seconds = t.TrackMS / 1000
		}
		fmt.Fprintf(w, "#EXTINF:%d,%s - %s\n%s\n", seconds, t.Title, t.Artist, t.DevicePath)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing playlist: %w", err)
	}
	return nil
}

// ExistingLines collects the entry lines of every .m3u8 file in dir,
// used for exact-string membership tests against device paths. A
// missing directory yields an empty set.
func ExistingLines(dir string) map[string]struct{} {
	lines := make(map[string]struct{})

	matches, err := filepath.Glob(filepath.Join(dir, "*.m3u8"))
	if err != nil {
		return lines
	}

	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			lines[line] = struct{}{}
		}
	}

	return lines
}
