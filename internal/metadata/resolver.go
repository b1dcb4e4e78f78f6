package metadata

import (
	"path"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/runnerr0/spindle/internal/device"
)

// Sentinel values returned when no better metadata can be found.
const (
	UnknownArtist = "Unknown"
	UnknownAlbum  = "Unknown Album"
	UnknownTitle  = "Unknown Title"
)

// Resolver resolves the identity of a device path through three tiers:
// cache hit, embedded tags from the real file, then a path heuristic.
// It never fails; the worst case is the sentinel triple. Every fresh
// resolution, heuristic ones included, is written back to the cache so
// it is computed at most once.
type Resolver struct {
	cache  *Cache
	tags   TagReader
	layout device.Layout
	log    zerolog.Logger
}

// NewResolver wires a resolver to its cache, tag reader and device layout.
func NewResolver(cache *Cache, tags TagReader, layout device.Layout, log zerolog.Logger) *Resolver {
	return &Resolver{cache: cache, tags: tags, layout: layout, log: log}
}

// Resolve returns (artist, album, title) for the raw device path. A
// cache hit returns immediately with no I/O and no cache write.
func (r *Resolver) Resolve(devicePath string) (artist, album, title string) {
	if e, ok := r.cache.Get(devicePath); ok {
		return e.Artist, e.Album, e.Title
	}
	e := r.resolve(devicePath)
	r.cache.Put(devicePath, e)
	return e.Artist, e.Album, e.Title
}

// ResolveFresh recomputes the triple from the file and overwrites any
// cached entry. This is the staleness escape hatch for paths whose tags
// changed after they were first cached.
func (r *Resolver) ResolveFresh(devicePath string) (artist, album, title string) {
	e := r.resolve(devicePath)
	r.cache.Put(devicePath, e)
	return e.Artist, e.Album, e.Title
}

// Flush persists the cache if any new resolutions were computed.
func (r *Resolver) Flush() error {
	if !r.cache.Dirty() {
		return nil
	}
	return r.cache.Save()
}

func (r *Resolver) resolve(devicePath string) Entry {
	e := Entry{Artist: UnknownArtist, Album: UnknownAlbum, Title: UnknownTitle}
	foundTags := false

	localPath := r.layout.LocalPath(devicePath)
	if tags, err := r.tags.ReadTags(localPath); err == nil {
		if tags.Artist != "" {
			e.Artist = tags.Artist
		}
		if tags.Album != "" {
			e.Album = tags.Album
		}
		if tags.Title != "" {
			e.Title = tags.Title
		}
		foundTags = true
	}

	if !foundTags || e.Artist == UnknownArtist {
		guess := guessFromPathV1(devicePath)
		if guess.Artist != "" {
			e.Artist = guess.Artist
		}
		if guess.Album != "" {
			e.Album = guess.Album
		}
		if guess.Title != "" {
			e.Title = guess.Title
		}
		r.log.Debug().Str("path", devicePath).Msg("metadata derived from path heuristic")
	}

	return e
}

var trackNumberPrefix = regexp.MustCompile(`^\d+[.\s-]*`)

// guessFromPathV1 derives metadata from the fixed library layout
// root → library marker → Artist → Album → filename. It applies only
// when the path is deep enough and a "music" segment sits at the
// expected position; a shallow path yields just the bare filename as
// title. Results are low-confidence guesses.
func guessFromPathV1(devicePath string) Entry {
	parts := strings.Split(strings.ReplaceAll(devicePath, "\\", "/"), "/")

	var e Entry
	if len(parts) > 3 {
		if strings.Contains(strings.ToLower(parts[2]), "music") {
			e.Artist = parts[3]
			if len(parts) > 4 {
				e.Album = parts[4]
			}
		}
		name := parts[len(parts)-1]
		e.Title = trackNumberPrefix.ReplaceAllString(strings.TrimSuffix(name, path.Ext(name)), "")
	} else {
		e.Title = path.Base(devicePath)
	}
	return e
}
