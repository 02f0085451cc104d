package prismic

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
)

// CacheEntry is a stored value with its expiry.
type CacheEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is no longer live at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is a key-value backend for TTLCache.
type Store interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// MemoryStore is an in-process LRU store with per-entry expiry.
type MemoryStore struct {
	entries  *lru.Cache[string, *CacheEntry]
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore creates a memory store holding at most maxSize entries.
// The least recently used entry is evicted when full.
func NewMemoryStore(maxSize int) *MemoryStore {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	// lru.New only fails for a non-positive size.
	entries, _ := lru.New[string, *CacheEntry](maxSize)

	return &MemoryStore{
		entries: entries,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
}

// Get retrieves a live entry.
func (s *MemoryStore) Get(ctx context.Context, key string) (*CacheEntry, error) {
	entry, ok := s.entries.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	if entry.Expired(s.now()) {
		s.entries.Remove(key)

		return nil, fmt.Errorf("%w: %s", ErrEntryExpired, key)
	}

	return entry, nil
}

// Set stores an entry.
func (s *MemoryStore) Set(ctx context.Context, key string, entry *CacheEntry) error {
	s.entries.Add(key, entry)

	return nil
}

// Delete removes an entry.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.entries.Remove(key)

	return nil
}

// Clear removes every entry.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.entries.Purge()

	return nil
}

// Has reports whether a live entry exists.
func (s *MemoryStore) Has(ctx context.Context, key string) bool {
	entry, ok := s.entries.Peek(key)

	return ok && !entry.Expired(s.now())
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	return s.entries.Len()
}

// Cleanup removes expired entries.
func (s *MemoryStore) Cleanup() {
	now := s.now()

	for _, key := range s.entries.Keys() {
		entry, ok := s.entries.Peek(key)
		if ok && entry.Expired(now) {
			s.entries.Remove(key)
		}
	}
}

// StartCleanup runs Cleanup every interval until Close is called.
func (s *MemoryStore) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-s.stop:
				return
			}
		}
	}()
}

// Close stops the background sweep.
func (s *MemoryStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// CacheStats tracks cache activity.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	Loads  int64 `json:"loads"`
}

// GetHitRate returns the fraction of lookups served from the cache.
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// TTLCache implements Cache over a Store. Concurrent misses on one key share
// a single producer call; the entry is stamped with its expiry once the
// producer succeeds, and failures are never stored.
type TTLCache struct {
	store  Store
	group  singleflight.Group
	logger Logger
	now    func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
	loads  atomic.Int64
}

// CacheOption configures a TTLCache.
type CacheOption func(*TTLCache)

// WithCacheLogger sets the logger used for store failures.
func WithCacheLogger(logger Logger) CacheOption {
	return func(c *TTLCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) CacheOption {
	return func(c *TTLCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTTLCache creates a cache over store. A nil store gets a default memory store.
func NewTTLCache(store Store, opts ...CacheOption) *TTLCache {
	if store == nil {
		store = NewMemoryStore(constants.DefaultCacheSize)
	}

	cache := &TTLCache{
		store:  store,
		logger: NoopLogger{},
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// NewMemoryCache creates a TTLCache over a fresh memory store.
func NewMemoryCache(maxSize int, opts ...CacheOption) *TTLCache {
	return NewTTLCache(NewMemoryStore(maxSize), opts...)
}

// Store returns the backing store.
func (c *TTLCache) Store() Store {
	return c.store
}

// GetOrSet implements Cache.
func (c *TTLCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, producer func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if data, ok := c.lookup(ctx, key); ok {
		c.hits.Add(1)

		return data, nil
	}

	c.misses.Add(1)

	// The producer is shared by every waiter and ignores their cancellation.
	loadCtx := context.WithoutCancel(ctx)

	results := c.group.DoChan(key, func() (interface{}, error) {
		if data, ok := c.lookup(loadCtx, key); ok {
			return data, nil
		}

		c.loads.Add(1)

		data, err := producer(loadCtx)
		if err != nil {
			return nil, err
		}

		entry := &CacheEntry{Data: data, ExpiresAt: c.now().Add(ttl)}

		err = c.store.Set(loadCtx, key, entry)
		if err != nil {
			c.logger.Warn("cache store failed", map[string]interface{}{"key": key, "error": err.Error()})
		} else {
			c.sets.Add(1)
		}

		return data, nil
	})

	select {
	case result := <-results:
		if result.Err != nil {
			return nil, result.Err
		}

		data, _ := result.Val.([]byte)

		return data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s: %w", key, ctx.Err())
	}
}

// Invalidate drops the entry under key.
func (c *TTLCache) Invalidate(ctx context.Context, key string) error {
	err := c.store.Delete(ctx, key)
	if err != nil {
		return fmt.Errorf("invalidating %s: %w", key, err)
	}

	return nil
}

// GetStats returns a snapshot of cache activity.
func (c *TTLCache) GetStats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Sets:   c.sets.Load(),
		Loads:  c.loads.Load(),
	}
}

func (c *TTLCache) lookup(ctx context.Context, key string) ([]byte, bool) {
	entry, err := c.store.Get(ctx, key)
	if err != nil || entry == nil || entry.Expired(c.now()) {
		return nil, false
	}

	return entry.Data, true
}
