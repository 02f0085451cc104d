package prismic

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeTiered represents a memory cache in front of NATS KV.
	CacheTypeTiered CacheType = "tiered"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"
)

// CacheConfig configures cache backend.
type CacheConfig struct {
	// Type is the cache backend type
	Type CacheType

	// Memory cache configuration
	Memory *MemoryCacheConfig

	// NATS KV cache configuration
	NATS *NATSKVConfig

	// Logger receives store failures.
	Logger Logger
}

// MemoryCacheConfig configures memory cache.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of items in the cache
	MaxSize int

	// CleanupInterval is the interval for cleaning up expired entries
	CleanupInterval string // Duration string like "1m", "5s"
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type: CacheTypeMemory,
		Memory: &MemoryCacheConfig{
			MaxSize:         constants.DefaultCacheSize,
			CleanupInterval: constants.DefaultCleanupInterval.String(),
		},
	}
}

// NewCacheFromConfig creates a TTL cache over the configured backend.
func NewCacheFromConfig(config *CacheConfig) (*TTLCache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	store, err := NewStoreFromConfig(config)
	if err != nil {
		return nil, err
	}

	return NewTTLCache(store, WithCacheLogger(config.Logger)), nil
}

// NewStoreFromConfig creates a store backend from configuration.
func NewStoreFromConfig(config *CacheConfig) (Store, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory, "":
		return NewMemoryStoreFromConfig(config.Memory)

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVStore(config.NATS)

	case CacheTypeTiered:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		memory, err := NewMemoryStoreFromConfig(config.Memory)
		if err != nil {
			return nil, err
		}

		remote, err := NewNATSKVStore(config.NATS)
		if err != nil {
			memory.Close()

			return nil, err
		}

		return NewStoreChain(memory, remote), nil

	case CacheTypeNone:
		return NewNoOpStore(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCache, config.Type)
	}
}

// NewMemoryStoreFromConfig creates a memory store from configuration and
// starts its cleanup sweep when an interval is given.
func NewMemoryStoreFromConfig(config *MemoryCacheConfig) (*MemoryStore, error) {
	if config == nil {
		config = &MemoryCacheConfig{
			MaxSize:         constants.DefaultCacheSize,
			CleanupInterval: constants.DefaultCleanupInterval.String(),
		}
	}

	store := NewMemoryStore(config.MaxSize)

	if config.CleanupInterval != "" {
		interval, err := time.ParseDuration(config.CleanupInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing cleanup interval %q: %w", config.CleanupInterval, err)
		}

		store.StartCleanup(interval)
	}

	return store, nil
}

// NoOpStore is a store that does nothing (no caching).
type NoOpStore struct{}

// NewNoOpStore creates a new no-op store.
func NewNoOpStore() *NoOpStore {
	return &NoOpStore{}
}

// Get always returns an error (nothing cached).
func (s *NoOpStore) Get(ctx context.Context, key string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (s *NoOpStore) Set(ctx context.Context, key string, entry *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (s *NoOpStore) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (s *NoOpStore) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (s *NoOpStore) Has(ctx context.Context, key string) bool {
	return false
}

// CacheBuilder helps build cache configurations.
type CacheBuilder struct {
	config *CacheConfig
}

// NewCacheBuilder creates a new cache builder.
func NewCacheBuilder() *CacheBuilder {
	return &CacheBuilder{
		config: &CacheConfig{
			Type: CacheTypeMemory,
		},
	}
}

// WithType sets the cache type.
func (b *CacheBuilder) WithType(cacheType CacheType) *CacheBuilder {
	b.config.Type = cacheType

	return b
}

// WithMemoryConfig sets memory cache configuration.
func (b *CacheBuilder) WithMemoryConfig(maxSize int, cleanupInterval string) *CacheBuilder {
	b.config.Memory = &MemoryCacheConfig{
		MaxSize:         maxSize,
		CleanupInterval: cleanupInterval,
	}

	return b
}

// WithNATSConfig sets NATS cache configuration.
func (b *CacheBuilder) WithNATSConfig(config *NATSKVConfig) *CacheBuilder {
	b.config.NATS = config

	return b
}

// WithLogger sets the logger for store failures.
func (b *CacheBuilder) WithLogger(logger Logger) *CacheBuilder {
	b.config.Logger = logger

	return b
}

// Build creates the cache from the configuration.
func (b *CacheBuilder) Build() (*TTLCache, error) {
	return NewCacheFromConfig(b.config)
}

// StoreChain implements a chain of store backends (L1, L2, etc.)
type StoreChain struct {
	stores []Store
}

// NewStoreChain creates a new store chain.
func NewStoreChain(stores ...Store) *StoreChain {
	return &StoreChain{
		stores: stores,
	}
}

// Get retrieves an item from the store chain.
func (c *StoreChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, store := range c.stores {
		entry, err := store.Get(ctx, key)
		if err == nil {
			// Found in this store, populate earlier stores
			for j := range i {
				_ = c.stores[j].Set(ctx, key, entry)
			}

			return entry, nil
		}
	}

	return nil, ErrNotFoundInAnyStore
}

// Set stores an item in all stores.
func (c *StoreChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	var result *multierror.Error

	for _, store := range c.stores {
		err := store.Set(ctx, key, entry)
		if err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// Delete removes an item from all stores.
func (c *StoreChain) Delete(ctx context.Context, key string) error {
	var result *multierror.Error

	for _, store := range c.stores {
		err := store.Delete(ctx, key)
		if err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// Clear removes all items from all stores.
func (c *StoreChain) Clear(ctx context.Context) error {
	var result *multierror.Error

	for _, store := range c.stores {
		err := store.Clear(ctx)
		if err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

// Has checks if a key exists in any store.
func (c *StoreChain) Has(ctx context.Context, key string) bool {
	for _, store := range c.stores {
		if store.Has(ctx, key) {
			return true
		}
	}

	return false
}

// Close closes every store of the chain that can be closed.
func (c *StoreChain) Close() {
	for _, store := range c.stores {
		if closer, ok := store.(interface{ Close() }); ok {
			closer.Close()
		}
	}
}
