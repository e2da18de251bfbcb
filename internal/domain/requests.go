package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MaxBatchScenarios bounds the number of scenarios of a batch request.
const MaxBatchScenarios = 10

// ProductRequest is one requested product.
type ProductRequest struct {
	ProductID string           `json:"productId"`
	Quantity  int64            `json:"quantity"`
	BasePrice *decimal.Decimal `json:"basePrice,omitempty"`
}

// PricingCalculationRequest asks for a price build-up under an Incoterm.
type PricingCalculationRequest struct {
	Products     []ProductRequest `json:"products"`
	Expenses     []string         `json:"expenses"`
	Incoterm     string           `json:"incoterm"`
	Currency     string           `json:"currency,omitempty"`
	ExchangeRate *decimal.Decimal `json:"exchangeRate,omitempty"`
	Strategy     StrategyName     `json:"strategy,omitempty"`
	DutyRate     decimal.Decimal  `json:"dutyRate"`

	// TenantID is resolved from the transport, never from the body.
	TenantID string `json:"-"`
}

// Validate rejects malformed requests before the engine runs.
func (r *PricingCalculationRequest) Validate() error {
	if len(r.Products) == 0 {
		return fmt.Errorf("%w: at least one product is required", ErrInvalidRequest)
	}

	for i, product := range r.Products {
		if product.ProductID == "" {
			return fmt.Errorf("%w: products[%d].productId is required", ErrInvalidRequest, i)
		}
		if product.Quantity <= 0 {
			return fmt.Errorf("%w: products[%d].quantity must be positive", ErrInvalidRequest, i)
		}
		if product.BasePrice != nil && !product.BasePrice.IsPositive() {
			return fmt.Errorf("%w: products[%d].basePrice must be positive", ErrInvalidRequest, i)
		}
	}

	for i, id := range r.Expenses {
		if id == "" {
			return fmt.Errorf("%w: expenses[%d] is empty", ErrInvalidRequest, i)
		}
	}

	if err := validateIncotermCode(r.Incoterm); err != nil {
		return err
	}

	if r.ExchangeRate != nil && !r.ExchangeRate.IsPositive() {
		return fmt.Errorf("%w: exchangeRate must be positive", ErrInvalidRequest)
	}

	if r.DutyRate.IsNegative() {
		return fmt.Errorf("%w: dutyRate cannot be negative", ErrInvalidRequest)
	}

	return nil
}

// BatchCalculationRequest groups independent scenarios.
type BatchCalculationRequest struct {
	Scenarios []PricingCalculationRequest `json:"scenarios"`
}

// Validate checks the scenario count and every scenario.
func (b *BatchCalculationRequest) Validate(maxScenarios int) error {
	if maxScenarios <= 0 || maxScenarios > MaxBatchScenarios {
		maxScenarios = MaxBatchScenarios
	}

	if len(b.Scenarios) == 0 || len(b.Scenarios) > maxScenarios {
		return fmt.Errorf("%w: batch must contain 1 to %d scenarios, got %d",
			ErrInvalidRequest, maxScenarios, len(b.Scenarios))
	}

	for i := range b.Scenarios {
		if err := b.Scenarios[i].Validate(); err != nil {
			return fmt.Errorf("scenarios[%d]: %w", i, err)
		}
	}

	return nil
}

// BudgetRequest is the input of the pure budget calculation.
type BudgetRequest struct {
	Items    []BudgetItem      `json:"items"`
	Costs    []decimal.Decimal `json:"costs"`
	Incoterm string            `json:"incoterm"`
	DutyRate decimal.Decimal   `json:"dutyRate"`
}

// Validate rejects malformed budget requests.
func (r *BudgetRequest) Validate() error {
	if len(r.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidRequest)
	}

	for _, item := range r.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}

	for i, cost := range r.Costs {
		if cost.IsNegative() {
			return fmt.Errorf("%w: costs[%d] cannot be negative", ErrInvalidRequest, i)
		}
	}

	if r.DutyRate.IsNegative() {
		return fmt.Errorf("%w: dutyRate cannot be negative", ErrInvalidRequest)
	}

	return validateIncotermCode(r.Incoterm)
}

func validateIncotermCode(code string) error {
	normalized := NormalizeIncoterm(code)
	if len(normalized) < 2 || len(normalized) > 3 {
		return fmt.Errorf("%w: incoterm must be 2 or 3 letters, got %q", ErrInvalidRequest, code)
	}

	for _, r := range normalized {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: incoterm must be 2 or 3 letters, got %q", ErrInvalidRequest, code)
		}
	}

	return nil
}
