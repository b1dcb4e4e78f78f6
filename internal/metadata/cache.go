package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Entry is one resolved identity triple.
type Entry struct {
	Artist string
	Album  string
	Title  string
}

// Cache is a durable map from raw device path to resolved metadata.
// The on-disk document is a JSON object mapping device_path to a
// three-element [artist, album, title] array, shared with the device
// tooling. The in-memory map is the single source of truth for the
// engine's lifetime; storage is read once at load and written on flush.
type Cache struct {
	path string
	log  zerolog.Logger

	mu      sync.Mutex
	entries map[string]Entry
	dirty   bool
}

// NewCache returns an empty cache persisted at path. Call Load before use.
func NewCache(path string, log zerolog.Logger) *Cache {
	return &Cache{
		path:    path,
		log:     log,
		entries: make(map[string]Entry),
	}
}

// Load reads the cache document. A missing or corrupt document yields
// an empty cache rather than an error.
func (c *Cache) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn().Err(err).Str("path", c.path).Msg("metadata cache unreadable, starting empty")
		}
		return
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		c.log.Warn().Err(err).Str("path", c.path).Msg("metadata cache corrupt, starting empty")
		return
	}

	for devicePath, triple := range raw {
		if len(triple) != 3 {
			continue
		}
		c.entries[devicePath] = Entry{Artist: triple[0], Album: triple[1], Title: triple[2]}
	}
}

// Get returns the cached entry for the raw device path.
func (c *Cache) Get(devicePath string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[devicePath]
	return e, ok
}

// Put stores an entry and marks the cache dirty.
func (c *Cache) Put(devicePath string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[devicePath] = e
	c.dirty = true
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Dirty reports whether entries were added since the last successful save.
func (c *Cache) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// Save writes the cache document. A failed save leaves the in-memory
// map (and the dirty flag) untouched.
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw := make(map[string][]string, len(c.entries))
	for devicePath, e := range c.entries {
		raw[devicePath] = []string{e.Artist, e.Album, e.Title}
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return fmt.Errorf("writing metadata cache: %w", err)
	}

	c.dirty = false
	return nil
}
