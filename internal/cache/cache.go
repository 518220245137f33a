// Package cache holds rendered portfolio charts so repeated dashboard loads
// do not redraw an unchanged selection.
package cache

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Image is a rendered chart.
type Image struct {
	ContentType string
	Body        []byte
}

// entry wraps a cached image with expiry and insertion order tracking.
type entry struct {
	img       *Image
	expiry    time.Time
	insertIdx int64
}

// ChartCache caches rendered charts keyed by selection and render options.
// Thread-safe with sync.RWMutex.
type ChartCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
}

// New creates a ChartCache with the given TTL and max entry count.
func New(ttl time.Duration, maxEntries int) *ChartCache {
	return &ChartCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// MakeKey builds a cache key from the selection (in display order), output
// format and dimensions. Tickers never contain "|" or ",".
func MakeKey(selection []string, format string, width, height int) string {
	return strings.Join(selection, ",") + "|" + format + "|" + strconv.Itoa(width) + "x" + strconv.Itoa(height)
}

// Get returns a cached image if found and not expired.
func (c *ChartCache) Get(key string) (*Image, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiry) {
		// Expired: remove lazily
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && time.Now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.img, true
}

// Set stores an image. Evicts the oldest entry if at capacity.
func (c *ChartCache) Set(key string, img *Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := entry{
		img:       img,
		expiry:    time.Now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++

	if _, exists := c.items[key]; exists {
		c.items[key] = e
		return
	}

	if len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = e
}

// InvalidateTicker removes every entry whose selection includes ticker.
func (c *ChartCache) InvalidateTicker(ticker string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		selection, _, _ := strings.Cut(key, "|")
		for _, t := range strings.Split(selection, ",") {
			if t == ticker {
				delete(c.items, key)
				break
			}
		}
	}
}

// Purge removes every entry.
func (c *ChartCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
}

// Len returns the number of entries, including expired ones not yet removed.
func (c *ChartCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest removes the entry with the lowest insertIdx. Must be called with mu held.
func (c *ChartCache) evictOldest() {
	var oldestKey string
	var oldestIdx int64 = -1

	for key, e := range c.items {
		if oldestIdx == -1 || e.insertIdx < oldestIdx {
			oldestIdx = e.insertIdx
			oldestKey = key
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
