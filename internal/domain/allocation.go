package domain

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// StrategyName selects a cost allocation strategy.
type StrategyName string

const (
	StrategyQuote  StrategyName = "quote"
	StrategyBudget StrategyName = "budget"
)

// AllocationInput is everything a strategy needs to price a request.
type AllocationInput struct {
	Incoterm string
	Items    []LineItem
	Expenses []Expense
	Config   PricingConfig
	// DutyRate is the flat duty percentage of the budget strategy.
	DutyRate decimal.Decimal
}

// Allocation is the output of a strategy.
type Allocation struct {
	Products []ProductPricingResult
	Budget   *BudgetSummary
}

// ExpenseShare is the portion of an expense carried by one line item.
type ExpenseShare struct {
	PerUnit decimal.Decimal
	Total   decimal.Decimal
}

// ProrateExpense splits value in proportion to productValue/totalValue.
// A zero proration base yields a zero share.
func ProrateExpense(value, productValue, totalValue decimal.Decimal, quantity int64) ExpenseShare {
	if totalValue.IsZero() || quantity <= 0 {
		return ExpenseShare{PerUnit: decimal.Zero, Total: decimal.Zero}
	}

	total := value.Mul(productValue).Div(totalValue)
	return ExpenseShare{
		PerUnit: total.Div(decimal.NewFromInt(quantity)),
		Total:   total,
	}
}

// SplitFlatExpense applies a non-prorated expense to one line item.
// PER_UNIT charges the value on every unit; TOTAL divides it equally over all requested units.
func SplitFlatExpense(expense Expense, quantity, totalQuantity int64) ExpenseShare {
	qty := decimal.NewFromInt(quantity)

	perUnit := expense.Value
	if expense.Distribution == DistributionTotal {
		if totalQuantity <= 0 {
			return ExpenseShare{PerUnit: decimal.Zero, Total: decimal.Zero}
		}
		perUnit = expense.Value.Div(decimal.NewFromInt(totalQuantity))
	}

	return ExpenseShare{
		PerUnit: perUnit,
		Total:   perUnit.Mul(qty),
	}
}

// StrategyRegistry holds the available allocation strategies.
type StrategyRegistry struct {
	mu         sync.RWMutex
	strategies map[StrategyName]CostAllocationStrategy
}

// NewStrategyRegistry creates a registry pre-populated with strategies.
func NewStrategyRegistry(strategies ...CostAllocationStrategy) (*StrategyRegistry, error) {
	r := &StrategyRegistry{
		mu:         sync.RWMutex{},
		strategies: make(map[StrategyName]CostAllocationStrategy),
	}

	for _, strategy := range strategies {
		if err := r.Register(strategy); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds a strategy to the registry.
func (r *StrategyRegistry) Register(strategy CostAllocationStrategy) error {
	if strategy == nil {
		return errors.New("strategy cannot be nil")
	}

	name := strategy.Name()
	if name == "" {
		return errors.New("strategy name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("strategy %s already registered", name)
	}

	r.strategies[name] = strategy
	return nil
}

// Get retrieves a strategy by name.
func (r *StrategyRegistry) Get(_ context.Context, name StrategyName) (CostAllocationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	strategy, exists := r.strategies[name]
	if !exists {
		return nil, fmt.Errorf("%w: unknown strategy %q", ErrInvalidRequest, name)
	}

	return strategy, nil
}

// List returns the registered strategy names, sorted.
func (r *StrategyRegistry) List(_ context.Context) []StrategyName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]StrategyName, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}
