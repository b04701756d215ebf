package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"jobpay-engine/internal/domain"
	"jobpay-engine/internal/logger"
)

var ErrNilFetch = errors.New("cache: nil fetch function")

// Fetcher loads the records for one key from the underlying source.
type Fetcher func(ctx context.Context) ([]domain.RawRecord, error)

// Snapshot is one cached fetch result.
type Snapshot struct {
	Records   []domain.RawRecord `json:"records"`
	FetchedAt time.Time          `json:"fetched_at"`
}

// Tier is an optional shared second level behind the in-process map.
type Tier interface {
	Get(ctx context.Context, key string) (Snapshot, bool, error)
	Set(ctx context.Context, key string, snap Snapshot, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type Config struct {
	TTL  time.Duration
	Now  func() time.Time // injectable clock for tests
	Tier Tier
}

type Stats struct {
	Entries    int    `json:"entries"`
	Hits       uint64 `json:"hits"`
	Misses     uint64 `json:"misses"`
	Fetches    uint64 `json:"fetches"`
	TierHits   uint64 `json:"tier_hits"`
	TierErrors uint64 `json:"tier_errors"`
}

// SourceCache is a read-through TTL cache of source fetches, keyed by source
// identity. Concurrent misses for one key share a single fetch and failed
// fetches are never stored. Returned slices are shared between callers and
// must not be modified.
type SourceCache struct {
	ttl  time.Duration
	now  func() time.Time
	tier Tier

	mu      sync.Mutex
	entries map[string]Snapshot
	group   singleflight.Group

	hits, misses, fetches atomic.Uint64
	tierHits, tierErrors  atomic.Uint64
}

// New builds a cache. A TTL <= 0 disables storing: every Get fetches.
func New(cfg Config) *SourceCache {
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &SourceCache{
		ttl:     cfg.TTL,
		now:     nowFn,
		tier:    cfg.Tier,
		entries: make(map[string]Snapshot),
	}
}

func (c *SourceCache) TTL() time.Duration { return c.ttl }

func (c *SourceCache) fresh(s Snapshot) bool {
	return c.ttl > 0 && c.now().Before(s.FetchedAt.Add(c.ttl))
}

func (c *SourceCache) lookup(key string) (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[key]
	if !ok {
		return Snapshot{}, false
	}
	if !c.fresh(s) {
		delete(c.entries, key)
		return Snapshot{}, false
	}
	return s, true
}

func (c *SourceCache) store(key string, s Snapshot) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = s
	c.mu.Unlock()
}

// Get returns the records for key, calling fetch when nothing fresh is
// cached.
func (c *SourceCache) Get(ctx context.Context, key string, fetch Fetcher) ([]domain.RawRecord, error) {
	snap, err := c.GetSnapshot(ctx, key, fetch)
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

// GetSnapshot is Get, also reporting when the records were fetched.
func (c *SourceCache) GetSnapshot(ctx context.Context, key string, fetch Fetcher) (Snapshot, error) {
	if fetch == nil {
		return Snapshot{}, ErrNilFetch
	}
	if s, ok := c.lookup(key); ok {
		c.hits.Add(1)
		return s, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(key, func() (any, error) {
		// another caller may have filled the entry while we waited
		if s, ok := c.lookup(key); ok {
			return s, nil
		}
		if s, ok := c.fromTier(ctx, key); ok {
			c.store(key, s)
			return s, nil
		}

		c.fetches.Add(1)
		recs, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s := Snapshot{Records: recs, FetchedAt: c.now()}
		c.store(key, s)
		c.toTier(ctx, key, s)
		return s, nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

func (c *SourceCache) fromTier(ctx context.Context, key string) (Snapshot, bool) {
	if c.tier == nil || c.ttl <= 0 {
		return Snapshot{}, false
	}
	s, ok, err := c.tier.Get(ctx, key)
	if err != nil {
		c.tierErrors.Add(1)
		logger.For("cache").Warn().Err(err).Str("key", key).Msg("tier get failed; falling back to source")
		return Snapshot{}, false
	}
	if !ok || !c.fresh(s) {
		return Snapshot{}, false
	}
	c.tierHits.Add(1)
	return s, true
}

func (c *SourceCache) toTier(ctx context.Context, key string, s Snapshot) {
	if c.tier == nil || c.ttl <= 0 {
		return
	}
	if err := c.tier.Set(ctx, key, s, c.ttl); err != nil {
		c.tierErrors.Add(1)
		logger.For("cache").Warn().Err(err).Str("key", key).Msg("tier set failed")
	}
}

// Peek reports the cached snapshot for key without fetching.
func (c *SourceCache) Peek(key string) (Snapshot, bool) {
	return c.lookup(key)
}

// Invalidate drops key from every level so the next Get fetches.
func (c *SourceCache) Invalidate(ctx context.Context, key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	c.group.Forget(key)

	if c.tier != nil {
		if err := c.tier.Delete(ctx, key); err != nil {
			c.tierErrors.Add(1)
			logger.For("cache").Warn().Err(err).Str("key", key).Msg("tier delete failed")
		}
	}
}

func (c *SourceCache) Stats() Stats {
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	return Stats{
		Entries:    n,
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
		Fetches:    c.fetches.Load(),
		TierHits:   c.tierHits.Load(),
		TierErrors: c.tierErrors.Load(),
	}
}
