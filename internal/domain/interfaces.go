package domain

import "context"

// ProductRepository loads product reference data.
type ProductRepository interface {
	// FindByIDs returns the products that exist among ids. Unknown ids are not an error.
	FindByIDs(ctx context.Context, ids []string) ([]Product, error)
}

// ExpenseRepository loads expense definitions.
type ExpenseRepository interface {
	// FindByIDs returns the expenses that exist among ids. Unknown ids are not an error.
	FindByIDs(ctx context.Context, ids []string) ([]Expense, error)
}

// IncotermRepository reads the persisted Incoterm chain.
type IncotermRepository interface {
	// List returns every node of the chain.
	List(ctx context.Context) ([]IncotermNode, error)
}

// PricingConfigStore resolves the pricing configuration of a tenant.
type PricingConfigStore interface {
	// Get returns ErrPricingConfigNotFound when the tenant has no configuration.
	Get(ctx context.Context, tenantID string) (PricingConfig, error)
}

// CostAllocationStrategy distributes expenses and duties across line items.
type CostAllocationStrategy interface {
	// Name identifies the strategy in requests.
	Name() StrategyName

	// Allocate prices every line item of the input.
	Allocate(ctx context.Context, in AllocationInput) (*Allocation, error)
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}
