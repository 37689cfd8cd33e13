package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/storefront-session/pkg/catalogapi"
	"github.com/angelmondragon/storefront-session/pkg/redis"
)

// OptionsCache stores the filter option set between catalog refreshes.
type OptionsCache interface {
	Get(ctx context.Context) (catalogapi.FilterOptionSet, bool, error)
	Set(ctx context.Context, options catalogapi.FilterOptionSet) error
}

// MemoryCache keeps a single filter option snapshot in process.
type MemoryCache struct {
	mu        sync.RWMutex
	ttl       time.Duration
	now       func() time.Time
	options   catalogapi.FilterOptionSet
	expiresAt time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, now: time.Now}
}

func (c *MemoryCache) Get(context.Context) (catalogapi.FilterOptionSet, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.options == nil || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	return cloneOptions(c.options), true, nil
}

func (c *MemoryCache) Set(_ context.Context, options catalogapi.FilterOptionSet) error {
	if c.ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = cloneOptions(options)
	c.expiresAt = c.now().Add(c.ttl)
	return nil
}

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// RedisCache shares the filter option snapshot across service replicas.
type RedisCache struct {
	store kvStore
	ttl   time.Duration
	key   string
}

func NewRedisCache(store kvStore, ttl time.Duration) *RedisCache {
	return &RedisCache{store: store, ttl: ttl, key: store.CacheKey("filters", "v1")}
}

func (c *RedisCache) Get(ctx context.Context) (catalogapi.FilterOptionSet, bool, error) {
	raw, err := c.store.Get(ctx, c.key)
	if errors.Is(err, redis.ErrMiss) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read filter options cache: %w", err)
	}
	var options catalogapi.FilterOptionSet
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, false, fmt.Errorf("decode cached filter options: %w", err)
	}
	return options, true, nil
}

func (c *RedisCache) Set(ctx context.Context, options catalogapi.FilterOptionSet) error {
	if c.ttl <= 0 {
		return nil
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encode filter options: %w", err)
	}
	if err := c.store.Set(ctx, c.key, string(encoded), c.ttl); err != nil {
		return fmt.Errorf("write filter options cache: %w", err)
	}
	return nil
}

func cloneOptions(options catalogapi.FilterOptionSet) catalogapi.FilterOptionSet {
	out := make(catalogapi.FilterOptionSet, len(options))
	for category, values := range options {
		out[category] = append([]string(nil), values...)
	}
	return out
}
