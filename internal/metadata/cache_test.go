package metadata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return NewCache(filepath.Join(t.TempDir(), "metadata_cache.json"), zerolog.Nop())
}

func TestCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	c.Load()

	c.Put("/<HDD0>/Music/A/B/01.mp3", Entry{Artist: "A", Album: "B", Title: "One"})
	c.Put("/<HDD0>/Music/X/Y/02.flac", Entry{Artist: "X", Album: "Y", Title: "Two"})
	require.NoError(t, c.Save())
	assert.False(t, c.Dirty())

	reloaded := NewCache(c.path, zerolog.Nop())
	reloaded.Load()
	assert.Equal(t, 2, reloaded.Len())

	e, ok := reloaded.Get("/<HDD0>/Music/A/B/01.mp3")
	require.True(t, ok)
	assert.Equal(t, Entry{Artist: "A", Album: "B", Title: "One"}, e)
}

func TestCache_WireFormat(t *testing.T) {
	c := newTestCache(t)
	c.Put("/<HDD0>/Music/A/B/01.mp3", Entry{Artist: "A", Album: "B", Title: "One"})
	require.NoError(t, c.Save())

	data, err := os.ReadFile(c.path)
	require.NoError(t, err)
	// Device tooling expects a path -> [artist, album, title] object.
	assert.JSONEq(t, `{"/<HDD0>/Music/A/B/01.mp3": ["A", "B", "One"]}`, string(data))
}

func TestCache_LoadMissingIsEmpty(t *testing.T) {
	c := newTestCache(t)
	c.Load()
	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Dirty())
}

func TestCache_LoadCorruptIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata_cache.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	c := NewCache(path, zerolog.Nop())
	c.Load()
	assert.Equal(t, 0, c.Len())
}

func TestCache_LoadSkipsMalformedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata_cache.json")
	doc := `{"/good.mp3": ["A", "B", "T"], "/bad.mp3": ["only-artist"]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	c := NewCache(path, zerolog.Nop())
	c.Load()
	assert.Equal(t, 1, c.Len())

	_, ok := c.Get("/bad.mp3")
	assert.False(t, ok)
}

func TestCache_SaveFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	// Point the cache document at a path whose parent is a file so the
	// write cannot succeed.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte(""), 0644))

	c := NewCache(filepath.Join(blocker, "cache.json"), zerolog.Nop())
	c.Put("/a.mp3", Entry{Artist: "A"})

	assert.Error(t, c.Save())
	assert.True(t, c.Dirty(), "failed save must not clear the dirty flag")
	assert.Equal(t, 1, c.Len(), "failed save must not clear the in-memory map")
}
