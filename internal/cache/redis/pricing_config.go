package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/exportquote/internal/domain"
	"github.com/davidbz/exportquote/internal/observability"
)

const keyPrefix = "exportquote:pricing_config:"

// PricingConfigCache is a read-through cache in front of a PricingConfigStore.
// Redis failures degrade to the underlying store.
type PricingConfigCache struct {
	client *redis.Client
	next   domain.PricingConfigStore
	ttl    time.Duration
}

// NewPricingConfigCache creates a new Redis pricing config cache.
func NewPricingConfigCache(
	client *redis.Client,
	next domain.PricingConfigStore,
	ttl time.Duration,
) (*PricingConfigCache, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if next == nil {
		return nil, errors.New("underlying pricing config store is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}

	return &PricingConfigCache{
		client: client,
		next:   next,
		ttl:    ttl,
	}, nil
}

// Get returns the tenant's pricing config, reading Redis first.
func (c *PricingConfigCache) Get(ctx context.Context, tenant string) (domain.PricingConfig, error) {
	logger := observability.FromContext(ctx)
	key := keyPrefix + tenant

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached domain.PricingConfig
		unmarshalErr := json.Unmarshal(data, &cached)
		if unmarshalErr == nil {
			logger.Debug("pricing config cache hit", observability.String("key", key))
			return cached, nil
		}
		logger.Warn("discarding corrupt cached pricing config",
			observability.String("key", key),
			observability.Error(unmarshalErr))
	case errors.Is(err, redis.Nil):
		logger.Debug("pricing config cache miss", observability.String("key", key))
	default:
		logger.Warn("pricing config cache read failed", observability.Error(err))
	}

	cfg, err := c.next.Get(ctx, tenant)
	if err != nil {
		// Not-found results are never cached so new tenants pick up their config immediately.
		return domain.PricingConfig{}, err
	}

	c.store(ctx, key, cfg)
	return cfg, nil
}

// Invalidate drops a tenant's cached config.
func (c *PricingConfigCache) Invalidate(ctx context.Context, tenant string) error {
	if err := c.client.Del(ctx, keyPrefix+tenant).Err(); err != nil {
		return fmt.Errorf("failed to invalidate pricing config: %w", err)
	}
	return nil
}

func (c *PricingConfigCache) store(ctx context.Context, key string, cfg domain.PricingConfig) {
	data, err := json.Marshal(cfg)
	if err != nil {
		observability.FromContext(ctx).Warn("failed to marshal pricing config", observability.Error(err))
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		observability.FromContext(ctx).Warn("pricing config cache write failed",
			observability.String("key", key),
			observability.Error(err))
	}
}
