package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseType classifies an ad-hoc export expense.
type ExpenseType string

const (
	ExpenseTypeFixed     ExpenseType = "FIXED"
	ExpenseTypeVariable  ExpenseType = "VARIABLE"
	ExpenseTypeFreight   ExpenseType = "FREIGHT"
	ExpenseTypeInsurance ExpenseType = "INSURANCE"
)

// Distribution controls how a non-prorated expense is spread over units.
type Distribution string

const (
	DistributionPerUnit Distribution = "PER_UNIT"
	DistributionTotal   Distribution = "TOTAL"
)

// PriceType tags a price-history entry.
type PriceType string

const (
	PriceTypeCost    PriceType = "COST"
	PriceTypeSelling PriceType = "SELLING"
)

// PricePoint is one recorded price of a product.
type PricePoint struct {
	Type  PriceType       `json:"type"`
	Value decimal.Decimal `json:"value"`
	Date  time.Time       `json:"date"`
}

// TariffClassification holds the export duty parameters of a tariff position.
// Nil fields are not configured.
type TariffClassification struct {
	Code                string           `json:"code,omitempty"`
	AdValoremRate       *decimal.Decimal `json:"adValoremRate,omitempty"`
	FixedExportDuty     *decimal.Decimal `json:"fixedExportDuty,omitempty"`
	ExportDutyMinAmount *decimal.Decimal `json:"exportDutyMinAmount,omitempty"`
	ExportDutyMaxAmount *decimal.Decimal `json:"exportDutyMaxAmount,omitempty"`
}

// Product is the reference data the engine needs for one product.
type Product struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Tariff       *TariffClassification `json:"tariffPosition,omitempty"`
	PriceHistory []PricePoint          `json:"priceHistory"`
}

// Expense is a shared or flat cost attached to a calculation.
type Expense struct {
	ID                string          `json:"id"`
	Type              ExpenseType     `json:"type"`
	Description       string          `json:"description,omitempty"`
	Value             decimal.Decimal `json:"value"`
	Prorate           bool            `json:"prorate"`
	Distribution      Distribution    `json:"perUnitOrTotal"`
	IncotermThreshold string          `json:"incotermThreshold"`
}

// IncotermNode is a persisted link of the Incoterm chain.
type IncotermNode struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	PreviousCode string `json:"previousCode,omitempty"`
	// Position orders siblings sharing the same previous code.
	Position int `json:"position"`
}

// LineItem is one requested product after reference data has been resolved.
type LineItem struct {
	ProductID string
	Quantity  int64
	// BasePrice already reflects any requested override.
	BasePrice decimal.Decimal
	Tariff    *TariffClassification
}

// BreakdownKind identifies the origin of a breakdown row.
type BreakdownKind string

const (
	KindBasePrice       BreakdownKind = "BASE_PRICE"
	KindExportDuty      BreakdownKind = "EXPORT_DUTY"
	KindProratedExpense BreakdownKind = "PRORATED_EXPENSES"
	KindDuties          BreakdownKind = "DUTIES"
)

// ExpenseKind returns the breakdown kind for an expense type.
func ExpenseKind(t ExpenseType) BreakdownKind {
	return BreakdownKind("EXPENSE_" + string(t))
}

// CostBreakdownEntry is one row of a product's price build-up.
type CostBreakdownEntry struct {
	Label              string          `json:"label"`
	Kind               BreakdownKind   `json:"kind"`
	AmountPerUnit      decimal.Decimal `json:"amountPerUnit"`
	AmountTotal        decimal.Decimal `json:"amountTotal"`
	IncludedInIncoterm bool            `json:"includedInIncoterm"`
	Description        string          `json:"description,omitempty"`
}

// ProductPricingResult is the priced outcome for one line item.
type ProductPricingResult struct {
	ProductID  string               `json:"productId"`
	Quantity   int64                `json:"quantity"`
	UnitPrice  decimal.Decimal      `json:"unitPrice"`
	TotalPrice decimal.Decimal      `json:"totalPrice"`
	Breakdown  []CostBreakdownEntry `json:"breakdown"`
}

// PricingMetadata aggregates request-level figures.
type PricingMetadata struct {
	Currency          string           `json:"currency"`
	ExchangeRate      *decimal.Decimal `json:"exchangeRate,omitempty"`
	Precision         int32            `json:"precision"`
	RoundingMode      RoundingMode     `json:"roundingMode"`
	Strategy          StrategyName     `json:"strategy"`
	CalculatedAt      time.Time        `json:"calculatedAt"`
	TotalFOB          decimal.Decimal  `json:"totalFOB"`
	TotalCIF          decimal.Decimal  `json:"totalCIF"`
	SkippedProductIDs []string         `json:"skippedProductIds,omitempty"`
}

// PricingResponse is the result of one pricing calculation.
type PricingResponse struct {
	Incoterm string                 `json:"incoterm"`
	Products []ProductPricingResult `json:"products"`
	Metadata PricingMetadata        `json:"metadata"`
	Budget   *BudgetSummary         `json:"budget,omitempty"`
}

// BatchCalculationResponse holds one response per scenario, in request order.
type BatchCalculationResponse struct {
	Results []*PricingResponse `json:"results"`
}
