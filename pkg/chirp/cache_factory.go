package chirp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CacheType represents the type of cache backend.
type CacheType string

const (
	// CacheTypeMemory represents in-memory cache.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS represents NATS KV cache.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone represents no caching.
	CacheTypeNone CacheType = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired    = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType  = errors.New("unsupported cache type")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
)

// CacheConfig configures a cache backend.
type CacheConfig struct {
	// Type is the cache backend type.
	Type CacheType

	// Memory cache configuration.
	Memory *MemoryCacheConfig

	// NATS KV cache configuration.
	NATS *NATSKVConfig

	// Common options applied to any backend. If nil, DefaultCacheOptions()
	// is used.
	Options *CacheOptions
}

// MemoryCacheConfig configures the memory cache.
type MemoryCacheConfig struct {
	// MaxSize is the maximum number of items in the cache.
	MaxSize int
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type:    CacheTypeMemory,
		Memory:  &MemoryCacheConfig{MaxSize: 1000},
		Options: DefaultCacheOptions(),
	}
}

// NewCacheFromConfig creates a cache backend from configuration.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory:
		if config.Memory == nil {
			config.Memory = &MemoryCacheConfig{MaxSize: 1000}
		}

		return NewMemoryCache(config.Memory.MaxSize), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(config.NATS)

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(_ context.Context, _ string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(_ context.Context, _ string, _ *CacheEntry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(_ context.Context, _ string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(_ context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(_ context.Context, _ string) bool {
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
			Type:    CacheTypeMemory,
			Options: DefaultCacheOptions(),
		},
	}
}

// WithType sets the cache type.
func (b *CacheBuilder) WithType(cacheType CacheType) *CacheBuilder {
	b.config.Type = cacheType

	return b
}

// WithMemoryConfig sets memory cache configuration.
func (b *CacheBuilder) WithMemoryConfig(maxSize int) *CacheBuilder {
	b.config.Memory = &MemoryCacheConfig{MaxSize: maxSize}

	return b
}

// WithNATSConfig sets NATS cache configuration.
func (b *CacheBuilder) WithNATSConfig(config *NATSKVConfig) *CacheBuilder {
	b.config.NATS = config

	return b
}

// WithOptions sets cache options.
func (b *CacheBuilder) WithOptions(options *CacheOptions) *CacheBuilder {
	b.config.Options = options

	return b
}

// Build creates the cache from the configuration.
func (b *CacheBuilder) Build() (Cache, error) {
	return NewCacheFromConfig(b.config)
}

// CacheChain implements a chain of cache backends (L1, L2, etc.)
type CacheChain struct {
	caches []Cache
}

// NewCacheChain creates a new cache chain.
func NewCacheChain(caches ...Cache) *CacheChain {
	return &CacheChain{caches: caches}
}

// Get retrieves an item from the cache chain, populating earlier caches on
// a hit further down.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, cache := range c.caches {
		entry, err := cache.Get(ctx, key)
		if err == nil {
			for j := range i {
				_ = c.caches[j].Set(ctx, key, entry)
			}

			return entry, nil
		}
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set stores an item in all caches.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	var lastErr error

	for _, cache := range c.caches {
		err := cache.Set(ctx, key, entry)
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Delete removes an item from all caches.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	var lastErr error

	for _, cache := range c.caches {
		err := cache.Delete(ctx, key)
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Clear removes all items from all caches.
func (c *CacheChain) Clear(ctx context.Context) error {
	var lastErr error

	for _, cache := range c.caches {
		err := cache.Clear(ctx)
		if err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Has checks if a key exists in any cache.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, cache := range c.caches {
		if cache.Has(ctx, key) {
			return true
		}
	}

	return false
}

// CachingRequester is a Requester decorator serving repeat GET calls from a
// cache. Cache hits return a nil RequestContext since no wire exchange
// happened.
type CachingRequester struct {
	next    Requester
	manager *CacheManager
	policy  *CachingPolicy
	ttl     time.Duration
}

// NewCachingRequester wraps next with cache. Nil policy selects
// DefaultCachingPolicy; non-positive ttl selects the manager default.
func NewCachingRequester(next Requester, cache Cache, policy *CachingPolicy, ttl time.Duration) *CachingRequester {
	if policy == nil {
		policy = DefaultCachingPolicy()
	}

	return &CachingRequester{
		next:    next,
		manager: NewCacheManager(cache, nil),
		policy:  policy,
		ttl:     ttl,
	}
}

// Request implements Requester.
func (c *CachingRequester) Request(ctx context.Context, method, path string, args Args) (any, *RequestContext, error) {
	if !c.policy.ShouldCache(method, path, 200) {
		return c.next.Request(ctx, method, path, args)
	}

	key := c.manager.GetCacheKey(method, path, stringifyArgs(args))

	if data, err := c.manager.Get(ctx, key); err == nil {
		var result any

		err = json.Unmarshal(data, &result)
		if err == nil {
			return result, nil, nil
		}
	}

	result, rc, err := c.next.Request(ctx, method, path, args)
	if err != nil || rc == nil || rc.HTTPResponse == nil {
		return result, rc, err
	}

	if c.policy.ShouldCache(method, path, rc.HTTPResponse.StatusCode) {
		data, marshalErr := json.Marshal(result)
		if marshalErr == nil {
			etag := rc.HTTPResponse.Headers.Get("ETag")
			_ = c.manager.SetWithETag(ctx, key, data, etag, c.ttl)
		}
	}

	return result, rc, err
}

// Stats exposes the underlying cache manager's counters.
func (c *CachingRequester) Stats() CacheStats {
	return c.manager.GetStats()
}

// stringifyArgs renders non-option argument values for cache key
// construction.
func stringifyArgs(args Args) map[string]string {
	if len(args) == 0 {
		return nil
	}

	out := make(map[string]string, len(args))

	for key, value := range args {
		out[key] = fmt.Sprintf("%v", value)
	}

	return out
}
