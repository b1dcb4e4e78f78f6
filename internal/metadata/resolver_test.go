package metadata

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/spindle/internal/device"
)

// fakeTagReader serves canned tags per local path and counts reads.
type fakeTagReader struct {
	tags  map[string]Tags
	reads int
}

func (f *fakeTagReader) ReadTags(localPath string) (Tags, error) {
	f.reads++
	if t, ok := f.tags[localPath]; ok {
		return t, nil
	}
	return Tags{}, errors.New("no tags")
}

func newTestResolver(t *testing.T, tags map[string]Tags) (*Resolver, *Cache, *fakeTagReader) {
	t.Helper()
	cache := newTestCache(t)
	cache.Load()
	reader := &fakeTagReader{tags: tags}
	layout := device.NewLayout("/mnt/ipod")
	return NewResolver(cache, reader, layout, zerolog.Nop()), cache, reader
}

func TestResolve_TagsWin(t *testing.T) {
	r, _, _ := newTestResolver(t, map[string]Tags{
		device.NewLayout("/mnt/ipod").LocalPath("/<HDD0>/Music/A/B/01 Song.mp3"): {
			Artist: "Tagged Artist", Album: "Tagged Album", Title: "Tagged Title",
		},
	})

	artist, album, title := r.Resolve("/<HDD0>/Music/A/B/01 Song.mp3")
	assert.Equal(t, "Tagged Artist", artist)
	assert.Equal(t, "Tagged Album", album)
	assert.Equal(t, "Tagged Title", title)
}

func TestResolve_Idempotent(t *testing.T) {
	r, cache, reader := newTestResolver(t, nil)

	a1, al1, t1 := r.Resolve("/<HDD0>/Music/Artist/Album/03 - Track.mp3")
	require.NoError(t, r.Flush())
	require.False(t, cache.Dirty())

	a2, al2, t2 := r.Resolve("/<HDD0>/Music/Artist/Album/03 - Track.mp3")
	assert.Equal(t, a1, a2)
	assert.Equal(t, al1, al2)
	assert.Equal(t, t1, t2)
	assert.Equal(t, 1, reader.reads, "second resolution must be a pure cache hit")
	assert.False(t, cache.Dirty(), "cache hit must not trigger a cache write")
}

func TestResolve_HeuristicFromLibraryLayout(t *testing.T) {
	r, _, _ := newTestResolver(t, nil)

	artist, album, title := r.Resolve("/<HDD0>/Music/Radiohead/OK Computer/02. Paranoid Android.mp3")
	assert.Equal(t, "Radiohead", artist)
	assert.Equal(t, "OK Computer", album)
	assert.Equal(t, "Paranoid Android", title)
}

func TestResolve_HeuristicFillsMissingArtist(t *testing.T) {
	// Tags exist but carry no artist: the heuristic still runs and the
	// path-derived fields take over.
	local := device.NewLayout("/mnt/ipod").LocalPath("/<HDD0>/Music/Artist/Album/05 Song.mp3")
	r, _, _ := newTestResolver(t, map[string]Tags{
		local: {Title: "Tagged Only Title"},
	})

	artist, album, title := r.Resolve("/<HDD0>/Music/Artist/Album/05 Song.mp3")
	assert.Equal(t, "Artist", artist)
	assert.Equal(t, "Album", album)
	assert.Equal(t, "Song", title)
}

func TestResolve_ShallowPathSentinels(t *testing.T) {
	r, _, _ := newTestResolver(t, nil)

	artist, album, title := r.Resolve("/track.mp3")
	assert.Equal(t, UnknownArtist, artist)
	assert.Equal(t, UnknownAlbum, album)
	assert.Equal(t, "track.mp3", title)
}

func TestResolve_NoLibraryMarkerKeepsSentinelArtist(t *testing.T) {
	r, _, _ := newTestResolver(t, nil)

	artist, album, title := r.Resolve("/<HDD0>/Podcasts/Show/Episode 12.mp3")
	assert.Equal(t, UnknownArtist, artist)
	assert.Equal(t, UnknownAlbum, album)
	assert.Equal(t, "Episode 12", title)
}

func TestResolveFresh_OverwritesCache(t *testing.T) {
	local := device.NewLayout("/mnt/ipod").LocalPath("/<HDD0>/Music/A/B/01.mp3")
	r, cache, reader := newTestResolver(t, nil)

	r.Resolve("/<HDD0>/Music/A/B/01.mp3")

	// Tags appear after the first (heuristic) resolution was cached.
	reader.tags = map[string]Tags{local: {Artist: "New", Album: "Better", Title: "Tags"}}

	artist, _, _ := r.Resolve("/<HDD0>/Music/A/B/01.mp3")
	assert.Equal(t, "A", artist, "plain resolve must keep serving the cached guess")

	artist, album, title := r.ResolveFresh("/<HDD0>/Music/A/B/01.mp3")
	assert.Equal(t, "New", artist)
	assert.Equal(t, "Better", album)
	assert.Equal(t, "Tags", title)

	e, ok := cache.Get("/<HDD0>/Music/A/B/01.mp3")
	require.True(t, ok)
	assert.Equal(t, "New", e.Artist)
}

func TestGuessFromPathV1(t *testing.T) {
	tests := []struct {
		name string
		path string
		want Entry
	}{
		{
			"full library layout",
			"/<HDD0>/Music/Artist/Album/01 - Song.flac",
			Entry{Artist: "Artist", Album: "Album", Title: "Song"},
		},
		{
			"track number with dot",
			"/<HDD0>/Music/Artist/Album/12.Intro.mp3",
			Entry{Artist: "Artist", Album: "Album", Title: "Intro"},
		},
		{
			"backslash separators",
			`\<HDD0>\Music\Artist\Album\03 Song.mp3`,
			Entry{Artist: "Artist", Album: "Album", Title: "Song"},
		},
		{
			"deep path without marker",
			"/<HDD0>/Audiobooks/Author/Book/Chapter 1.mp3",
			Entry{Title: "Chapter 1"},
		},
		{
			"shallow path",
			"/song.mp3",
			Entry{Title: "song.mp3"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, guessFromPathV1(tc.path))
		})
	}
}
