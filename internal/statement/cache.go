package statement

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/reqkey/internal/request"
)

// Cache reuses statements rendered by an inner Builder.
//
// Entries are keyed by Request.Hash. A lookup only hits when the cached
// request also passes the structural comparer, so a hash collision is
// treated as a miss and the colliding request replaces the entry.
//
// Thread-safety: Cache is safe for concurrent use.
type Cache struct {
	inner    Builder
	comparer request.Comparer
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[uint64]cacheEntry
	stats   CacheStats
}

type cacheEntry struct {
	req  *request.Request
	stmt Statement
}

// CacheStats counts cache outcomes.
type CacheStats struct {
	Hits       int
	Misses     int
	Collisions int
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithLogger sets the logger used for hit and miss debug records.
func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithComparer replaces the structural comparer used to verify hits.
func WithComparer(cmp request.Comparer) CacheOption {
	return func(c *Cache) {
		if cmp != nil {
			c.comparer = cmp
		}
	}
}

// NewCache wraps inner.
func NewCache(inner Builder, opts ...CacheOption) *Cache {
	c := &Cache{
		inner:    inner,
		comparer: request.StructuralComparer{},
		logger:   slog.Default(),
		entries:  make(map[uint64]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build returns the cached statement for r, rendering it on a miss.
// Errors from the inner builder are not cached.
func (c *Cache) Build(r *request.Request) (Statement, error) {
	if r == nil {
		return c.inner.Build(r)
	}
	h := r.Hash()

	c.mu.RLock()
	e, found := c.entries[h]
	c.mu.RUnlock()

	if found && c.comparer.Equal(e.req, r) {
		c.record(func(s *CacheStats) { s.Hits++ })
		c.logger.Debug("statement cache hit",
			"kind", r.Kind(),
			"target", r.Name(),
			"hash", h,
		)
		return cloneStatement(e.stmt), nil
	}
	if found {
		c.record(func(s *CacheStats) { s.Collisions++ })
		c.logger.Warn("statement cache hash collision",
			"hash", h,
			"cached", e.req.String(),
			"request", r.String(),
		)
	}

	stmt, err := c.inner.Build(r)
	if err != nil {
		return Statement{}, err
	}

	c.mu.Lock()
	c.entries[h] = cacheEntry{req: r, stmt: cloneStatement(stmt)}
	c.stats.Misses++
	c.mu.Unlock()

	c.logger.Debug("statement cache miss",
		"kind", r.Kind(),
		"target", r.Name(),
		"hash", h,
	)
	return stmt, nil
}

func (c *Cache) record(fn func(*CacheStats)) {
	c.mu.Lock()
	fn(&c.stats)
	c.mu.Unlock()
}

// Len returns the number of cached statements.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Reset drops every entry and zeroes the counters.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	c.stats = CacheStats{}
}

func cloneStatement(s Statement) Statement {
	return Statement{SQL: s.SQL, Args: slices.Clone(s.Args)}
}
