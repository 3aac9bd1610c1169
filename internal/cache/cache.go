// Package cache provides the process-wide in-memory file content cache.
//
// Entries are admitted only above a minimum priority score, expire lazily
// after a TTL, and are evicted least-valuable-first when the cache is full.
// The cache is constructed once per process and passed by handle to every
// caller; it holds no state across restarts.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"log"
	"sort"
	"sync"
	"time"
)

// Config controls cache behavior.
type Config struct {
	Enabled    bool
	MaxEntries int           // capacity before eviction kicks in
	TTL        time.Duration // entry lifetime, checked lazily on Get
	MinScore   int           // minimum priority score for admission
}

// DefaultConfig returns the standard cache configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		MaxEntries: 20,
		TTL:        24 * time.Hour,
		MinScore:   3,
	}
}

type entry struct {
	content     string
	path        string
	score       int
	sizeChars   int
	cachedAt    time.Time
	accessCount int
	lastAccess  time.Time
}

// Cache is a bounded, TTL'd, priority-aware content cache. Safe for
// concurrent use; duplicate concurrent misses are tolerated and the last
// Put wins.
type Cache struct {
	cfg Config

	mu      sync.Mutex
	entries map[string]*entry

	now func() time.Time // swappable in tests
}

// New creates a Cache. A non-positive MaxEntries falls back to the default
// capacity.
func New(cfg Config) *Cache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 20
	}
	return &Cache{
		cfg:     cfg,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Key derives a stable cache key from the file's identity. The same inputs
// always produce the same key; the optional hint (typically the content
// SHA) distinguishes versions of the same path.
func Key(owner, repo, path string, hint ...string) string {
	h := sha1.New()
	io.WriteString(h, owner+"/"+repo+"/"+path)
	for _, x := range hint {
		if x != "" {
			io.WriteString(h, "@"+x)
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached content for key. An expired entry is removed and
// reported as a miss. A hit bumps the entry's access count and last-access
// time before returning.
func (c *Cache) Get(key string) (string, bool) {
	if !c.cfg.Enabled {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.cachedAt) > c.cfg.TTL {
		log.Printf("cache: entry for %s expired, evicting", e.path)
		delete(c.entries, key)
		return "", false
	}

	e.accessCount++
	e.lastAccess = c.now()
	return e.content, true
}

// Put stores content under key. Disabled caches and files scoring below the
// admission minimum are skipped (logged, not an error). When the cache is
// at capacity the least-valuable quartile is evicted first.
func (c *Cache) Put(key, content string, score int, path string) {
	if !c.cfg.Enabled {
		return
	}
	if score < c.cfg.MinScore {
		log.Printf("cache: score %d below minimum %d, not caching %s", score, c.cfg.MinScore, path)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.cfg.MaxEntries {
		c.evictLocked()
	}

	now := c.now()
	c.entries[key] = &entry{
		content:     content,
		path:        path,
		score:       score,
		sizeChars:   len(content),
		cachedAt:    now,
		accessCount: 1,
		lastAccess:  now,
	}
}

// evictLocked removes the least-valuable quartile (at least one entry):
// least-accessed, lowest-score, stalest first. Caller holds the lock.
func (c *Cache) evictLocked() {
	type ranked struct {
		key string
		e   *entry
	}
	all := make([]ranked, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, ranked{k, e})
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].e, all[j].e
		if a.accessCount != b.accessCount {
			return a.accessCount < b.accessCount
		}
		if a.score != b.score {
			return a.score < b.score
		}
		return a.lastAccess.Before(b.lastAccess)
	})

	n := len(all) / 4
	if n < 1 {
		n = 1
	}
	for _, victim := range all[:n] {
		log.Printf("cache: evicting %s (accesses=%d score=%d)",
			victim.e.path, victim.e.accessCount, victim.e.score)
		delete(c.entries, victim.key)
	}
}

// Clear drops every entry and returns how many were removed.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.entries)
	c.entries = make(map[string]*entry)
	return n
}

// FileStat describes one cached file in Stats output.
type FileStat struct {
	Path     string `json:"path"`
	Accesses int    `json:"accesses"`
	Score    int    `json:"score"`
}

// Stats is a point-in-time summary of cache contents.
type Stats struct {
	Enabled       bool       `json:"enabled"`
	TotalFiles    int        `json:"total_files"`
	TotalChars    int        `json:"total_chars"`
	TotalAccesses int        `json:"total_accesses"`
	AvgScore      float64    `json:"avg_score"`
	MostAccessed  []FileStat `json:"most_accessed"`
}

// Stats reports cache usage, including the five most-accessed entries.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{Enabled: c.cfg.Enabled}
	var scoreSum int
	files := make([]FileStat, 0, len(c.entries))
	for _, e := range c.entries {
		stats.TotalFiles++
		stats.TotalChars += e.sizeChars
		stats.TotalAccesses += e.accessCount
		scoreSum += e.score
		files = append(files, FileStat{Path: e.path, Accesses: e.accessCount, Score: e.score})
	}
	if stats.TotalFiles > 0 {
		stats.AvgScore = float64(scoreSum) / float64(stats.TotalFiles)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Accesses > files[j].Accesses })
	if len(files) > 5 {
		files = files[:5]
	}
	stats.MostAccessed = files
	return stats
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
