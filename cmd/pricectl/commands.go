package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/davidbz/exportquote/internal/cache/redis"
	"github.com/davidbz/exportquote/internal/config"
	"github.com/davidbz/exportquote/internal/domain"
	"github.com/davidbz/exportquote/internal/observability"
	"github.com/davidbz/exportquote/internal/storage/sqlite"
)

func setupLogger(c *cli.Context) error {
	if !c.Bool("verbose") {
		return nil
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	observability.SetLogger(logger)

	return nil
}

// openStore opens the database and applies pending migrations.
func openStore(c *cli.Context) (*sql.DB, error) {
	db, err := sqlite.Open(c.Context, c.String("db"))
	if err != nil {
		return nil, err
	}

	if err := sqlite.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func runMigrate(c *cli.Context) error {
	db, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(os.Stderr, "Migrations applied to %s\n", c.String("db"))
	return nil
}

func runImport(c *cli.Context) error {
	catalog, err := readCatalog(c.String("file"))
	if err != nil {
		return err
	}

	db, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := c.Context
	products := sqlite.NewProductRepository(db)
	expenses := sqlite.NewExpenseRepository(db)
	configs := sqlite.NewPricingConfigRepository(db)

	for _, product := range catalog.Products {
		if err := products.Save(ctx, product); err != nil {
			return err
		}
	}
	for _, expense := range catalog.Expenses {
		if err := expenses.Save(ctx, expense); err != nil {
			return err
		}
	}
	tenants := make([]string, 0, len(catalog.PricingConfigs))
	for tenant, cfg := range catalog.PricingConfigs {
		if err := configs.Save(ctx, tenant, cfg); err != nil {
			return err
		}
		tenants = append(tenants, tenant)
	}
	sort.Strings(tenants)

	fmt.Fprintf(os.Stderr, "Imported %d products, %d expenses, %d pricing configs\n",
		len(catalog.Products), len(catalog.Expenses), len(catalog.PricingConfigs))

	if c.String("redis-addr") == "" || len(tenants) == 0 {
		return nil
	}

	return invalidateCachedConfigs(c, configs, tenants)
}

// invalidateCachedConfigs drops the cached configs of tenants so running servers reload them.
func invalidateCachedConfigs(c *cli.Context, store domain.PricingConfigStore, tenants []string) error {
	client := goredis.NewClient(&goredis.Options{
		Addr:     c.String("redis-addr"),
		Password: c.String("redis-password"),
		DB:       c.Int("redis-db"),
	})
	defer client.Close()

	cache, err := redis.NewPricingConfigCache(client, store, config.Load().Redis.TTL())
	if err != nil {
		return err
	}

	for _, tenant := range tenants {
		if err := cache.Invalidate(c.Context, tenant); err != nil {
			return fmt.Errorf("pricing configs saved but cache for tenant %s is stale: %w", tenant, err)
		}
	}

	fmt.Fprintf(os.Stderr, "Cleared cached pricing configs for %d tenants\n", len(tenants))
	return nil
}

func runIncoterms(c *cli.Context) error {
	db, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	hierarchy, err := domain.LoadIncotermHierarchy(c.Context, sqlite.NewIncotermRepository(db))
	if err != nil {
		return err
	}

	for rank, code := range hierarchy.Codes() {
		fmt.Fprintf(c.App.Writer, "%d\t%s\t%s\tduty=%t\n",
			rank, code, hierarchy.Name(code), hierarchy.IsDutyEligible(code))
	}
	return nil
}

func runQuote(c *cli.Context) error {
	req, err := quoteRequest(c)
	if err != nil {
		return err
	}

	db, err := openStore(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := newPipeline(c.Context, db, &config.Load().Pricing)
	if err != nil {
		return err
	}

	resp, err := pipeline.Calculate(c.Context, req)
	if err != nil {
		return err
	}

	return printJSON(c.App.Writer, resp)
}

func runBudget(c *cli.Context) error {
	data, err := os.ReadFile(c.String("file"))
	if err != nil {
		return fmt.Errorf("failed to read budget request: %w", err)
	}

	var req domain.BudgetRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse budget request: %w", err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	return printJSON(c.App.Writer, domain.CalculateBudget(req.Items, req.Costs, req.Incoterm, req.DutyRate))
}

func quoteRequest(c *cli.Context) (*domain.PricingCalculationRequest, error) {
	products, err := parseProducts(c.StringSlice("product"))
	if err != nil {
		return nil, err
	}

	dutyRate, err := decimal.NewFromString(c.String("duty-rate"))
	if err != nil {
		return nil, fmt.Errorf("invalid --duty-rate: %w", err)
	}

	return &domain.PricingCalculationRequest{
		Products: products,
		Expenses: c.StringSlice("expense"),
		Incoterm: c.String("incoterm"),
		Currency: c.String("currency"),
		Strategy: domain.StrategyName(c.String("strategy")),
		DutyRate: dutyRate,
		TenantID: c.String("tenant"),
	}, nil
}

// newPipeline wires the engine over SQLite with the same PRICING_DEFAULT_* fallbacks as the server.
func newPipeline(ctx context.Context, db *sql.DB, cfg *config.PricingConfig) (*domain.PricingPipeline, error) {
	defaults, err := domain.NewDefaultPricingConfig(cfg.DefaultCurrency, cfg.DefaultRounding, cfg.DefaultPrecision)
	if err != nil {
		return nil, fmt.Errorf("invalid PRICING_DEFAULT_* settings: %w", err)
	}

	hierarchy, err := domain.LoadIncotermHierarchy(ctx, sqlite.NewIncotermRepository(db))
	if err != nil {
		return nil, err
	}

	strategies, err := domain.NewStrategyRegistry(
		domain.NewQuoteStrategy(domain.NewInclusionFilter(hierarchy)),
		domain.NewBudgetStrategy(),
	)
	if err != nil {
		return nil, err
	}

	return domain.NewPricingPipeline(domain.PipelineDeps{
		Products:      sqlite.NewProductRepository(db),
		Expenses:      sqlite.NewExpenseRepository(db),
		Configs:       sqlite.NewPricingConfigRepository(db),
		Hierarchy:     hierarchy,
		Strategies:    strategies,
		DefaultConfig: &defaults,
		DefaultTenant: cfg.DefaultTenant,
	})
}

func printJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
