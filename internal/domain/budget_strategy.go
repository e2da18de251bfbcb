package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// BudgetItem is a priced line of a budget. Weight and volume are per unit and optional.
type BudgetItem struct {
	ProductID string          `json:"productId"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Weight    decimal.Decimal `json:"weight"`
	Volume    decimal.Decimal `json:"volume"`
}

// Validate checks a budget item before calculation.
func (i BudgetItem) Validate() error {
	if i.ProductID == "" {
		return errors.New("productId is required")
	}
	if i.Quantity <= 0 {
		return fmt.Errorf("quantity for %s must be positive", i.ProductID)
	}
	if i.UnitPrice.IsNegative() {
		return fmt.Errorf("unitPrice for %s cannot be negative", i.ProductID)
	}
	if i.Weight.IsNegative() || i.Volume.IsNegative() {
		return fmt.Errorf("weight and volume for %s cannot be negative", i.ProductID)
	}
	return nil
}

// BudgetLine is the allocation outcome for one budget item.
type BudgetLine struct {
	ProductID    string          `json:"productId"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	ExpenseShare decimal.Decimal `json:"expenseShare"`
	Duties       decimal.Decimal `json:"duties"`
	TotalLine    decimal.Decimal `json:"totalLine"`
	TotalWeight  decimal.Decimal `json:"totalWeight"`
	TotalVolume  decimal.Decimal `json:"totalVolume"`
}

// BudgetSummary carries the request-level budget totals.
type BudgetSummary struct {
	SubtotalProducts decimal.Decimal `json:"subtotalProducts"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	TotalDuties      decimal.Decimal `json:"totalDuties"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TotalWeight      decimal.Decimal `json:"totalWeight"`
	TotalVolume      decimal.Decimal `json:"totalVolume"`
}

// BudgetCalculationResult is the output of CalculateBudget.
type BudgetCalculationResult struct {
	Incoterm string       `json:"incoterm"`
	Items    []BudgetLine `json:"items"`
	BudgetSummary
}

// CalculateBudget distributes the sum of costs over items by value and applies a flat duty rate.
// Every figure is fixed to six decimals. Weight and volume are totalled for the shipment
// but never drive the allocation. It performs no I/O.
func CalculateBudget(
	items []BudgetItem,
	costs []decimal.Decimal,
	incotermCode string,
	dutyRatePercent decimal.Decimal,
) BudgetCalculationResult {
	subtotals := make([]decimal.Decimal, len(items))
	subtotal := decimal.Zero
	for i, item := range items {
		subtotals[i] = fixed6(item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity)))
		subtotal = subtotal.Add(subtotals[i])
	}
	subtotal = fixed6(subtotal)

	totalExpenses := decimal.Zero
	for _, cost := range costs {
		totalExpenses = totalExpenses.Add(cost)
	}
	totalExpenses = fixed6(totalExpenses)

	lines := make([]BudgetLine, len(items))
	totalDuties := decimal.Zero
	totalWeight := decimal.Zero
	totalVolume := decimal.Zero
	for i, item := range items {
		qty := decimal.NewFromInt(item.Quantity)
		weight := fixed6(item.Weight.Mul(qty))
		volume := fixed6(item.Volume.Mul(qty))
		totalWeight = totalWeight.Add(weight)
		totalVolume = totalVolume.Add(volume)

		share := decimal.Zero
		if !subtotal.IsZero() {
			share = fixed6(totalExpenses.Mul(subtotals[i]).Div(subtotal))
		}
		duties := fixed6(subtotals[i].Add(share).Mul(dutyRatePercent).Div(hundred))
		totalDuties = totalDuties.Add(duties)

		lines[i] = BudgetLine{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			UnitPrice:    fixed6(item.UnitPrice),
			Subtotal:     subtotals[i],
			ExpenseShare: share,
			Duties:       duties,
			TotalLine:    fixed6(subtotals[i].Add(share).Add(duties)),
			TotalWeight:  weight,
			TotalVolume:  volume,
		}
	}
	totalDuties = fixed6(totalDuties)

	code := NormalizeIncoterm(incotermCode)
	return BudgetCalculationResult{
		Incoterm: code,
		Items:    lines,
		BudgetSummary: BudgetSummary{
			SubtotalProducts: subtotal,
			TotalExpenses:    totalExpenses,
			TotalDuties:      totalDuties,
			TotalAmount:      budgetTotal(code, subtotal, totalExpenses, totalDuties),
			TotalWeight:      fixed6(totalWeight),
			TotalVolume:      fixed6(totalVolume),
		},
	}
}

func budgetTotal(code string, subtotal, totalExpenses, totalDuties decimal.Decimal) decimal.Decimal {
	fob := fixed6(subtotal.Add(totalExpenses))

	switch code {
	case "EXW", "FCA":
		return subtotal
	case "FOB", "CIF":
		return fob
	case "DDP":
		return fixed6(fob.Add(totalDuties))
	default:
		return fob
	}
}

// BudgetStrategy adapts CalculateBudget to the allocation contract. Every expense applies
// regardless of the selected Incoterm.
type BudgetStrategy struct{}

// NewBudgetStrategy creates the budget strategy.
func NewBudgetStrategy() *BudgetStrategy {
	return &BudgetStrategy{}
}

// Name implements CostAllocationStrategy.
func (s *BudgetStrategy) Name() StrategyName {
	return StrategyBudget
}

// Allocate implements CostAllocationStrategy.
func (s *BudgetStrategy) Allocate(_ context.Context, in AllocationInput) (*Allocation, error) {
	items := make([]BudgetItem, len(in.Items))
	for i, item := range in.Items {
		items[i] = BudgetItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.BasePrice,
		}
	}

	costs := make([]decimal.Decimal, len(in.Expenses))
	for i, expense := range in.Expenses {
		costs[i] = expense.Value
	}

	budget := CalculateBudget(items, costs, in.Incoterm, in.DutyRate)

	results := make([]ProductPricingResult, len(budget.Items))
	for i, line := range budget.Items {
		qty := decimal.NewFromInt(line.Quantity)
		breakdown := []CostBreakdownEntry{
			BaseExportPriceEntry(line.UnitPrice, line.Quantity, in.Config),
			{
				Label:              "Prorated Expenses",
				Kind:               KindProratedExpense,
				AmountPerUnit:      fixed6(line.ExpenseShare.Div(qty)),
				AmountTotal:        line.ExpenseShare,
				IncludedInIncoterm: true,
				Description:        "weighted by line value",
			},
		}
		if !line.Duties.IsZero() {
			breakdown = append(breakdown, CostBreakdownEntry{
				Label:              "Duties",
				Kind:               KindDuties,
				AmountPerUnit:      fixed6(line.Duties.Div(qty)),
				AmountTotal:        line.Duties,
				IncludedInIncoterm: true,
				Description:        fmt.Sprintf("flat %s%%", in.DutyRate.String()),
			})
		}

		unitPrice := fixed6(line.TotalLine.Div(qty))
		results[i] = ProductPricingResult{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: unitPrice.Mul(qty),
			Breakdown:  breakdown,
		}
	}

	summary := budget.BudgetSummary
	return &Allocation{Products: results, Budget: &summary}, nil
}
