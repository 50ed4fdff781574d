package analysis

import (
	"container/list"
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Evaluator computes a matchup report. Satisfied by *Engine; tests
// substitute counting fakes.
type Evaluator interface {
	Evaluate(ctx context.Context, ours, theirs []string) (*AnalysisResult, error)
}

// Store persists analysis results across restarts. TTL is enforced by
// the cache at read time; the store only records creation timestamps.
type Store interface {
	Load(fingerprint string) (*AnalysisResult, time.Time, error)
	Save(fingerprint string, res *AnalysisResult) error
}

// ErrCacheCorrupt marks an unreadable persisted entry. The cache treats
// it as a miss and recomputes.
var ErrCacheCorrupt = errors.New("corrupt cache entry")

// CacheConfig controls freshness and capacity.
type CacheConfig struct {
	TTL            time.Duration
	MaxEntries     int
	ComputeTimeout time.Duration
}

// DefaultCacheConfig matches the standard hardware tier.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:            time.Hour,
		MaxEntries:     100,
		ComputeTimeout: 10 * time.Second,
	}
}

type cacheEntry struct {
	fingerprint string
	result      *AnalysisResult
	createdAt   time.Time
}

// Cache wraps an Evaluator with a TTL+LRU result cache and a
// per-fingerprint singleflight guard, so a matchup is scored at most
// once per freshness window no matter how many callers ask at once.
type Cache struct {
	engine Evaluator
	config CacheConfig
	store  Store // optional

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used

	now func() time.Time // overridable in tests

	hits      int64
	misses    int64
	evictions int64
}

// NewCache creates a cache over the given evaluator. store may be nil.
func NewCache(engine Evaluator, config CacheConfig, store Store) *Cache {
	return &Cache{
		engine:  engine,
		config:  config,
		store:   store,
		entries: make(map[string]*list.Element),
		order:   list.New(),
		now:     time.Now,
	}
}

// Analyze returns the cached report for the matchup, computing it if
// absent or expired. Concurrent calls for the same fingerprint share a
// single computation. A computation that exceeds the configured timeout
// yields a neutral fallback result which is published but not cached.
func (c *Cache) Analyze(ctx context.Context, ours, theirs []string) (*AnalysisResult, error) {
	fp := Fingerprint(ours, theirs)

	if res, ok := c.lookup(fp); ok {
		return res, nil
	}

	v, err, _ := c.group.Do(fp, func() (interface{}, error) {
		// A previous flight may have filled the entry while this
		// caller waited on the group. Not counted as a hit or miss;
		// the outer lookup already recorded this call.
		if res, ok := c.peek(fp); ok {
			return res, nil
		}

		if res := c.loadPersisted(fp); res != nil {
			c.insert(fp, res, res.CreatedAt)
			return res, nil
		}

		cctx := ctx
		if c.config.ComputeTimeout > 0 {
			var cancel context.CancelFunc
			cctx, cancel = context.WithTimeout(ctx, c.config.ComputeTimeout)
			defer cancel()
		}

		res, err := c.engine.Evaluate(cctx, ours, theirs)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				log.Printf("[Cache] Computation timed out for %s, publishing fallback", fp)
				return FallbackResult(ours, theirs), nil
			}
			return nil, err
		}

		c.insert(fp, res, c.now())
		if c.store != nil {
			if err := c.store.Save(fp, res); err != nil {
				log.Printf("[Cache] Failed to persist %s: %v", fp, err)
			}
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*AnalysisResult), nil
}

// lookup returns a fresh entry, bumps its recency, and records the
// outcome in the hit/miss counters.
func (c *Cache) lookup(fp string) (*AnalysisResult, bool) {
	res, ok := c.peek(fp)
	c.mu.Lock()
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	c.mu.Unlock()
	return res, ok
}

// peek is lookup without the counters. Expired entries are removed on
// sight; there is no background sweeper.
func (c *Cache) peek(fp string) (*AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[fp]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)
	if c.now().Sub(entry.createdAt) > c.config.TTL {
		c.order.Remove(elem)
		delete(c.entries, fp)
		return nil, false
	}

	c.order.MoveToFront(elem)
	return entry.result, true
}

func (c *Cache) insert(fp string, res *AnalysisResult, createdAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[fp]; ok {
		elem.Value.(*cacheEntry).result = res
		elem.Value.(*cacheEntry).createdAt = createdAt
		c.order.MoveToFront(elem)
		return
	}

	c.entries[fp] = c.order.PushFront(&cacheEntry{fingerprint: fp, result: res, createdAt: createdAt})

	for c.config.MaxEntries > 0 && c.order.Len() > c.config.MaxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).fingerprint)
		c.evictions++
	}
}

func (c *Cache) loadPersisted(fp string) *AnalysisResult {
	if c.store == nil {
		return nil
	}
	res, createdAt, err := c.store.Load(fp)
	if errors.Is(err, ErrCacheCorrupt) {
		log.Printf("[Cache] Persisted entry %s corrupt, recomputing", fp)
		return nil
	}
	if err != nil {
		log.Printf("[Cache] Persisted read for %s failed, recomputing: %v", fp, err)
		return nil
	}
	if res == nil || c.now().Sub(createdAt) > c.config.TTL {
		return nil
	}
	res.CreatedAt = createdAt
	return res
}

// Stats returns hit/miss/eviction counters for the session summary.
func (c *Cache) Stats() (hits, misses, evictions int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, c.evictions
}

// Len returns the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
