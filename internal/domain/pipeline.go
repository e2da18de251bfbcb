package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/davidbz/exportquote/internal/observability"
)

const defaultTenant = "default"

// PricingPipeline orchestrates reference data loading and cost allocation per request.
// It keeps no state between calls.
type PricingPipeline struct {
	products      ProductRepository
	expenses      ExpenseRepository
	configs       PricingConfigStore
	hierarchy     *IncotermHierarchy
	strategies    *StrategyRegistry
	events        EventPublisher
	defaults      PricingConfig
	defaultTenant string
	maxBatch      int
	now           func() time.Time
}

// PipelineDeps are the collaborators of the pipeline.
type PipelineDeps struct {
	Products   ProductRepository
	Expenses   ExpenseRepository
	Configs    PricingConfigStore
	Hierarchy  *IncotermHierarchy
	Strategies *StrategyRegistry

	// Optional.
	Events        EventPublisher
	DefaultConfig *PricingConfig
	DefaultTenant string
	MaxBatch      int
	Now           func() time.Time
}

// NewPricingPipeline creates a new pricing pipeline (DI constructor).
func NewPricingPipeline(deps PipelineDeps) (*PricingPipeline, error) {
	if deps.Products == nil {
		return nil, errors.New("pricing pipeline: product repository is required")
	}
	if deps.Expenses == nil {
		return nil, errors.New("pricing pipeline: expense repository is required")
	}
	if deps.Hierarchy == nil {
		return nil, errors.New("pricing pipeline: incoterm hierarchy is required")
	}
	if deps.Strategies == nil {
		return nil, errors.New("pricing pipeline: strategy registry is required")
	}

	defaults := DefaultPricingConfig()
	if deps.DefaultConfig != nil {
		if err := deps.DefaultConfig.Validate(); err != nil {
			return nil, fmt.Errorf("pricing pipeline: invalid default config: %w", err)
		}
		defaults = *deps.DefaultConfig
	}

	tenant := deps.DefaultTenant
	if tenant == "" {
		tenant = defaultTenant
	}

	maxBatch := deps.MaxBatch
	if maxBatch <= 0 || maxBatch > MaxBatchScenarios {
		maxBatch = MaxBatchScenarios
	}

	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &PricingPipeline{
		products:      deps.Products,
		expenses:      deps.Expenses,
		configs:       deps.Configs,
		hierarchy:     deps.Hierarchy,
		strategies:    deps.Strategies,
		events:        deps.Events,
		defaults:      defaults,
		defaultTenant: tenant,
		maxBatch:      maxBatch,
		now: func() time.Time {
			return now().UTC()
		},
	}, nil
}

// Hierarchy returns the Incoterm hierarchy the pipeline ranks against.
func (p *PricingPipeline) Hierarchy() *IncotermHierarchy {
	return p.hierarchy
}

// Calculate prices a single request.
func (p *PricingPipeline) Calculate(
	ctx context.Context,
	req *PricingCalculationRequest,
) (*PricingResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	incoterm := NormalizeIncoterm(req.Incoterm)
	if _, err := p.hierarchy.Rank(incoterm); err != nil {
		return nil, err
	}

	strategyName := req.Strategy
	if strategyName == "" {
		strategyName = StrategyQuote
	}
	strategy, err := p.strategies.Get(ctx, strategyName)
	if err != nil {
		return nil, err
	}

	tenant := req.TenantID
	if tenant == "" {
		tenant = p.defaultTenant
	}

	ctx = observability.WithTenant(ctx, tenant)
	ctx = observability.WithIncoterm(ctx, incoterm)
	logger := observability.FromContext(ctx)

	products, expenses, err := p.fetchReferenceData(ctx, req)
	if err != nil {
		return nil, err
	}

	cfg, err := p.loadConfig(ctx, tenant)
	if err != nil {
		return nil, err
	}

	items, skipped := buildLineItems(req.Products, products, cfg)
	for _, id := range skipped {
		logger.Warn("product not found, skipping",
			observability.String("product_id", id))
	}

	orderedExpenses, missingExpenses := orderExpenses(req.Expenses, expenses)
	for _, id := range missingExpenses {
		logger.Warn("expense not found, skipping",
			observability.String("expense_id", id))
	}

	allocation, err := strategy.Allocate(ctx, AllocationInput{
		Incoterm: incoterm,
		Items:    items,
		Expenses: orderedExpenses,
		Config:   cfg,
		DutyRate: req.DutyRate,
	})
	if err != nil {
		return nil, fmt.Errorf("allocation failed: %w", err)
	}

	totalFOB := decimal.Zero
	for _, product := range allocation.Products {
		totalFOB = totalFOB.Add(product.TotalPrice)
	}
	// Budget responses report the exact request total.
	if allocation.Budget != nil {
		totalFOB = allocation.Budget.TotalAmount
	}

	currency := req.Currency
	if currency == "" {
		currency = cfg.BaseCurrency
	}

	metadata := PricingMetadata{
		Currency:          currency,
		ExchangeRate:      req.ExchangeRate,
		Precision:         cfg.Precision,
		RoundingMode:      cfg.RoundingMode,
		Strategy:          strategy.Name(),
		CalculatedAt:      p.now(),
		TotalFOB:          totalFOB,
		TotalCIF:          totalFOB,
		SkippedProductIDs: skipped,
	}
	if allocation.Budget != nil {
		metadata.Precision = budgetScale
		metadata.RoundingMode = RoundingHalfUp
	}

	response := &PricingResponse{
		Incoterm: incoterm,
		Products: allocation.Products,
		Metadata: metadata,
		Budget:   allocation.Budget,
	}

	logger.Info("pricing calculated",
		observability.String("strategy", string(strategy.Name())),
		observability.Int("products", len(response.Products)),
		observability.Int("skipped", len(skipped)),
		observability.Stringer("total_fob", totalFOB))

	if p.events != nil {
		p.events.Publish(ctx, "pricing.calculated", map[string]interface{}{
			"incoterm":  incoterm,
			"strategy":  string(strategy.Name()),
			"products":  len(response.Products),
			"skipped":   len(skipped),
			"currency":  currency,
			"total_fob": totalFOB.String(),
		})
	}

	return response, nil
}

// CalculateBatch prices independent scenarios concurrently. Results follow request order;
// the first failing scenario fails the batch.
func (p *PricingPipeline) CalculateBatch(
	ctx context.Context,
	req *BatchCalculationRequest,
) (*BatchCalculationResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request cannot be nil", ErrInvalidRequest)
	}

	if err := req.Validate(p.maxBatch); err != nil {
		return nil, err
	}

	results := make([]*PricingResponse, len(req.Scenarios))

	g, gctx := errgroup.WithContext(ctx)
	for i := range req.Scenarios {
		scenario := req.Scenarios[i]
		g.Go(func() error {
			resp, err := p.Calculate(gctx, &scenario)
			if err != nil {
				return fmt.Errorf("scenario %d: %w", i, err)
			}
			results[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if p.events != nil {
		p.events.Publish(ctx, "pricing.batch_calculated", map[string]interface{}{
			"scenarios": len(results),
		})
	}

	return &BatchCalculationResponse{Results: results}, nil
}

// fetchReferenceData loads products and expenses concurrently; both must succeed.
func (p *PricingPipeline) fetchReferenceData(
	ctx context.Context,
	req *PricingCalculationRequest,
) ([]Product, []Expense, error) {
	var (
		products []Product
		expenses []Expense
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		found, err := p.products.FindByIDs(gctx, uniqueProductIDs(req.Products))
		if err != nil {
			return fmt.Errorf("failed to fetch products: %w", err)
		}
		products = found
		return nil
	})

	if len(req.Expenses) > 0 {
		g.Go(func() error {
			found, err := p.expenses.FindByIDs(gctx, uniqueStrings(req.Expenses))
			if err != nil {
				return fmt.Errorf("failed to fetch expenses: %w", err)
			}
			expenses = found
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return products, expenses, nil
}

func (p *PricingPipeline) loadConfig(ctx context.Context, tenant string) (PricingConfig, error) {
	if p.configs == nil {
		return p.defaults, nil
	}

	cfg, err := p.configs.Get(ctx, tenant)
	if errors.Is(err, ErrPricingConfigNotFound) {
		return p.defaults, nil
	}
	if err != nil {
		return PricingConfig{}, fmt.Errorf("failed to load pricing config: %w", err)
	}

	if validateErr := cfg.Validate(); validateErr != nil {
		return PricingConfig{}, fmt.Errorf("invalid pricing config for tenant %s: %w", tenant, validateErr)
	}

	return cfg, nil
}

// buildLineItems resolves requested products in request order and reports unknown ids.
func buildLineItems(
	requested []ProductRequest,
	products []Product,
	cfg PricingConfig,
) ([]LineItem, []string) {
	byID := make(map[string]Product, len(products))
	for _, product := range products {
		byID[product.ID] = product
	}

	items := make([]LineItem, 0, len(requested))
	var skipped []string

	for _, req := range requested {
		product, ok := byID[req.ProductID]
		if !ok {
			skipped = append(skipped, req.ProductID)
			continue
		}

		items = append(items, LineItem{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			BasePrice: ResolveBaseExportPrice(product.PriceHistory, req.BasePrice, cfg),
			Tariff:    product.Tariff,
		})
	}

	return items, skipped
}

// orderExpenses returns the fetched expenses in request order and the ids that were not found.
func orderExpenses(ids []string, expenses []Expense) ([]Expense, []string) {
	byID := make(map[string]Expense, len(expenses))
	for _, expense := range expenses {
		byID[expense.ID] = expense
	}

	ordered := make([]Expense, 0, len(ids))
	var missing []string

	for _, id := range ids {
		expense, ok := byID[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		ordered = append(ordered, expense)
	}

	return ordered, missing
}

func uniqueProductIDs(products []ProductRequest) []string {
	ids := make([]string, len(products))
	for i, product := range products {
		ids[i] = product.ProductID
	}
	return uniqueStrings(ids)
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
