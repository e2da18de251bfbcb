package redis_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/exportquote/internal/cache/redis"
	"github.com/davidbz/exportquote/internal/domain"
)

type fakeConfigStore struct {
	configs map[string]domain.PricingConfig
	err     error
	calls   int
}

func (f *fakeConfigStore) Get(_ context.Context, tenant string) (domain.PricingConfig, error) {
	f.calls++
	if f.err != nil {
		return domain.PricingConfig{}, f.err
	}
	cfg, ok := f.configs[tenant]
	if !ok {
		return domain.PricingConfig{}, domain.ErrPricingConfigNotFound
	}
	return cfg, nil
}

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *goredis.Client {
	t.Helper()

	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func newTestCache(t *testing.T, store domain.PricingConfigStore) (*redis.PricingConfigCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache, err := redis.NewPricingConfigCache(client, store, time.Minute)
	require.NoError(t, err)
	return cache, mr
}

func acmeConfig() domain.PricingConfig {
	return domain.PricingConfig{
		AdjustForVAT: true,
		VATRate:      decimal.RequireFromString("21.5"),
		BaseCurrency: "EUR",
		RoundingMode: domain.RoundingUp,
		Precision:    3,
	}
}

func TestNewPricingConfigCache_Validation(t *testing.T) {
	store := &fakeConfigStore{}
	client := unreachableClient(t)

	tests := []struct {
		name   string
		client *goredis.Client
		next   domain.PricingConfigStore
		ttl    time.Duration
	}{
		{name: "nil client", client: nil, next: store, ttl: time.Minute},
		{name: "nil store", client: client, next: nil, ttl: time.Minute},
		{name: "zero ttl", client: client, next: store, ttl: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := redis.NewPricingConfigCache(tt.client, tt.next, tt.ttl)
			require.Error(t, err)
		})
	}
}

func TestPricingConfigCache_FallsBackWhenRedisIsDown(t *testing.T) {
	cfg := domain.PricingConfig{
		AdjustForVAT: true,
		VATRate:      decimal.NewFromInt(21),
		BaseCurrency: "EUR",
		RoundingMode: domain.RoundingUp,
		Precision:    2,
	}
	store := &fakeConfigStore{configs: map[string]domain.PricingConfig{"acme": cfg}}

	cache, err := redis.NewPricingConfigCache(unreachableClient(t), store, time.Minute)
	require.NoError(t, err)

	got, err := cache.Get(context.Background(), "acme")
	require.NoError(t, err)
	require.Equal(t, "EUR", got.BaseCurrency)
	require.Equal(t, domain.RoundingUp, got.RoundingMode)
	require.Equal(t, 1, store.calls)
}

func TestPricingConfigCache_PropagatesStoreErrors(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		store := &fakeConfigStore{configs: map[string]domain.PricingConfig{}}
		cache, err := redis.NewPricingConfigCache(unreachableClient(t), store, time.Minute)
		require.NoError(t, err)

		_, err = cache.Get(context.Background(), "unknown")
		require.ErrorIs(t, err, domain.ErrPricingConfigNotFound)
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("database is locked")
		store := &fakeConfigStore{err: boom}
		cache, err := redis.NewPricingConfigCache(unreachableClient(t), store, time.Minute)
		require.NoError(t, err)

		_, err = cache.Get(context.Background(), "acme")
		require.ErrorIs(t, err, boom)
	})
}

func TestPricingConfigCache_InvalidateReportsRedisErrors(t *testing.T) {
	cache, err := redis.NewPricingConfigCache(unreachableClient(t), &fakeConfigStore{}, time.Minute)
	require.NoError(t, err)

	require.Error(t, cache.Invalidate(context.Background(), "acme"))
}

func TestPricingConfigCache_StoresOnMissAndServesHits(t *testing.T) {
	ctx := context.Background()
	store := &fakeConfigStore{configs: map[string]domain.PricingConfig{"acme": acmeConfig()}}
	cache, mr := newTestCache(t, store)

	got, err := cache.Get(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, 1, store.calls)
	require.True(t, mr.Exists("exportquote:pricing_config:acme"))
	require.Equal(t, time.Minute, mr.TTL("exportquote:pricing_config:acme"))

	store.configs["acme"] = domain.PricingConfig{
		VATRate:      decimal.Zero,
		BaseCurrency: "USD",
		RoundingMode: domain.RoundingHalfUp,
		Precision:    2,
	}

	cached, err := cache.Get(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, 1, store.calls)

	require.True(t, cached.AdjustForVAT)
	require.True(t, got.VATRate.Equal(cached.VATRate))
	require.Equal(t, "21.5", cached.VATRate.String())
	require.Equal(t, "EUR", cached.BaseCurrency)
	require.Equal(t, domain.RoundingUp, cached.RoundingMode)
	require.Equal(t, int32(3), cached.Precision)
}

func TestPricingConfigCache_InvalidateReloadsFromStore(t *testing.T) {
	ctx := context.Background()
	store := &fakeConfigStore{configs: map[string]domain.PricingConfig{"acme": acmeConfig()}}
	cache, mr := newTestCache(t, store)

	_, err := cache.Get(ctx, "acme")
	require.NoError(t, err)

	updated := acmeConfig()
	updated.BaseCurrency = "USD"
	updated.RoundingMode = domain.RoundingHalfUp
	store.configs["acme"] = updated

	require.NoError(t, cache.Invalidate(ctx, "acme"))
	require.False(t, mr.Exists("exportquote:pricing_config:acme"))

	got, err := cache.Get(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, 2, store.calls)
	require.Equal(t, "USD", got.BaseCurrency)
	require.Equal(t, domain.RoundingHalfUp, got.RoundingMode)
}

func TestPricingConfigCache_ReplacesCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := &fakeConfigStore{configs: map[string]domain.PricingConfig{"acme": acmeConfig()}}
	cache, mr := newTestCache(t, store)

	require.NoError(t, mr.Set("exportquote:pricing_config:acme", "{not json"))

	got, err := cache.Get(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, 1, store.calls)
	require.Equal(t, "EUR", got.BaseCurrency)

	raw, err := mr.Get("exportquote:pricing_config:acme")
	require.NoError(t, err)

	var stored domain.PricingConfig
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	require.Equal(t, "EUR", stored.BaseCurrency)
}

func TestPricingConfigCache_DoesNotCacheNotFound(t *testing.T) {
	ctx := context.Background()
	store := &fakeConfigStore{configs: map[string]domain.PricingConfig{}}
	cache, mr := newTestCache(t, store)

	_, err := cache.Get(ctx, "newcomer")
	require.ErrorIs(t, err, domain.ErrPricingConfigNotFound)
	require.False(t, mr.Exists("exportquote:pricing_config:newcomer"))

	store.configs["newcomer"] = acmeConfig()

	got, err := cache.Get(ctx, "newcomer")
	require.NoError(t, err)
	require.Equal(t, "EUR", got.BaseCurrency)
	require.Equal(t, 2, store.calls)
}
