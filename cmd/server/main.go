package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/davidbz/exportquote/internal/cache/redis"
	"github.com/davidbz/exportquote/internal/config"
	"github.com/davidbz/exportquote/internal/domain"
	"github.com/davidbz/exportquote/internal/httpserver"
	"github.com/davidbz/exportquote/internal/httpserver/middleware"
	"github.com/davidbz/exportquote/internal/observability"
	"github.com/davidbz/exportquote/internal/storage/sqlite"
)

func main() {
	container := buildContainer()

	err := container.Invoke(func(
		server *httpserver.Server,
		db *sql.DB,
		serverCfg *config.ServerConfig,
		logger *zap.Logger,
	) error {
		defer db.Close()
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(serverCfg.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})
	if err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	providers := []struct {
		name        string
		constructor interface{}
	}{
		// Configuration
		{"config", config.Load},
		{"config dependencies", config.ParseDependenciesConfig},

		// Observability
		{"logger", observability.InitLogger},
		{"event bus", func(logger *zap.Logger) domain.EventPublisher {
			return observability.NewEventBus(logger)
		}},

		// Storage
		{"database", openDatabase},
		{"product repository", func(db *sql.DB) domain.ProductRepository {
			return sqlite.NewProductRepository(db)
		}},
		{"expense repository", func(db *sql.DB) domain.ExpenseRepository {
			return sqlite.NewExpenseRepository(db)
		}},
		{"incoterm repository", func(db *sql.DB) domain.IncotermRepository {
			return sqlite.NewIncotermRepository(db)
		}},
		{"pricing config store", newPricingConfigStore},

		// Domain Services
		{"incoterm hierarchy", func(repo domain.IncotermRepository) (*domain.IncotermHierarchy, error) {
			return domain.LoadIncotermHierarchy(context.Background(), repo)
		}},
		{"inclusion filter", domain.NewInclusionFilter},
		{"strategy registry", func(filter *domain.InclusionFilter) (*domain.StrategyRegistry, error) {
			return domain.NewStrategyRegistry(
				domain.NewQuoteStrategy(filter),
				domain.NewBudgetStrategy(),
			)
		}},
		{"pricing pipeline", newPricingPipeline},

		// HTTP Layer
		{"HTTP handler", httpserver.NewHandler},
		{"middleware chain", middleware.BuildMiddlewareChain},
		{"HTTP server", httpserver.NewServer},
	}

	for _, p := range providers {
		if err := container.Provide(p.constructor); err != nil {
			log.Fatalf("Failed to provide %s: %v", p.name, err)
		}
	}

	return container
}

func openDatabase(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sqlite.Open(context.Background(), cfg.Path)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := sqlite.Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
	}

	return db, nil
}

// newPricingConfigStore puts the Redis cache in front of SQLite when REDIS_ADDR is set.
func newPricingConfigStore(
	db *sql.DB,
	cfg *config.RedisConfig,
	logger *zap.Logger,
) (domain.PricingConfigStore, error) {
	store := sqlite.NewPricingConfigRepository(db)
	if cfg.Addr == "" {
		return store, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		// The cache is optional; SQLite still serves configs.
		logger.Warn("redis unavailable, pricing config cache disabled",
			observability.String("addr", cfg.Addr),
			observability.Error(err))
		_ = client.Close()
		return store, nil
	}

	return redis.NewPricingConfigCache(client, store, cfg.TTL())
}

func newPricingPipeline(
	cfg *config.PricingConfig,
	products domain.ProductRepository,
	expenses domain.ExpenseRepository,
	configs domain.PricingConfigStore,
	hierarchy *domain.IncotermHierarchy,
	strategies *domain.StrategyRegistry,
	events domain.EventPublisher,
) (*domain.PricingPipeline, error) {
	defaults, err := domain.NewDefaultPricingConfig(cfg.DefaultCurrency, cfg.DefaultRounding, cfg.DefaultPrecision)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICING_DEFAULT_* settings: %w", err)
	}
	if cfg.MaxBatch > domain.MaxBatchScenarios {
		return nil, fmt.Errorf("PRICING_MAX_BATCH cannot exceed %d", domain.MaxBatchScenarios)
	}

	return domain.NewPricingPipeline(domain.PipelineDeps{
		Products:      products,
		Expenses:      expenses,
		Configs:       configs,
		Hierarchy:     hierarchy,
		Strategies:    strategies,
		Events:        events,
		DefaultConfig: &defaults,
		DefaultTenant: cfg.DefaultTenant,
		MaxBatch:      cfg.MaxBatch,
	})
}
