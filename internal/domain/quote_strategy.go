package domain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// QuoteStrategy prices each product by adding included expenses one by one to the base
// export price, then export duty, then rounding the unit price.
type QuoteStrategy struct {
	filter *InclusionFilter
}

// NewQuoteStrategy creates the quote strategy.
func NewQuoteStrategy(filter *InclusionFilter) *QuoteStrategy {
	return &QuoteStrategy{filter: filter}
}

// Name implements CostAllocationStrategy.
func (s *QuoteStrategy) Name() StrategyName {
	return StrategyQuote
}

// Allocate implements CostAllocationStrategy.
func (s *QuoteStrategy) Allocate(_ context.Context, in AllocationInput) (*Allocation, error) {
	policy, err := NewRoundingPolicy(in.Config.RoundingMode, in.Config.Precision)
	if err != nil {
		return nil, fmt.Errorf("invalid rounding policy: %w", err)
	}

	if _, rankErr := s.filter.Hierarchy().Rank(in.Incoterm); rankErr != nil {
		return nil, rankErr
	}

	included := make([]bool, len(in.Expenses))
	for i, expense := range in.Expenses {
		ok, inclErr := s.filter.Includes(in.Incoterm, expense.IncotermThreshold)
		if inclErr != nil {
			return nil, fmt.Errorf("expense %s: %w", expense.ID, inclErr)
		}
		included[i] = ok
	}

	totalValue := decimal.Zero
	var totalQuantity int64
	for _, item := range in.Items {
		totalValue = totalValue.Add(item.BasePrice.Mul(decimal.NewFromInt(item.Quantity)))
		totalQuantity += item.Quantity
	}

	dutyEligible := s.filter.Hierarchy().IsDutyEligible(in.Incoterm)

	results := make([]ProductPricingResult, 0, len(in.Items))
	for _, item := range in.Items {
		qty := decimal.NewFromInt(item.Quantity)
		current := item.BasePrice
		productValue := item.BasePrice.Mul(qty)

		breakdown := []CostBreakdownEntry{BaseExportPriceEntry(item.BasePrice, item.Quantity, in.Config)}

		for i, expense := range in.Expenses {
			if !expense.Prorate {
				continue
			}
			share := ProrateExpense(expense.Value, productValue, totalValue, item.Quantity)
			breakdown = append(breakdown, expenseEntry(expense, share, included[i], "prorated by product value"))
			if included[i] {
				current = current.Add(share.PerUnit)
			}
		}

		for i, expense := range in.Expenses {
			if expense.Prorate {
				continue
			}
			share := SplitFlatExpense(expense, item.Quantity, totalQuantity)
			note := "per unit"
			if expense.Distribution == DistributionTotal {
				note = fmt.Sprintf("split across %d units", totalQuantity)
			}
			breakdown = append(breakdown, expenseEntry(expense, share, included[i], note))
			if included[i] {
				current = current.Add(share.PerUnit)
			}
		}

		if dutyEligible && item.Tariff != nil {
			duty := CalculateExportDuty(*item.Tariff, current.Mul(qty))
			if !duty.Amount.IsZero() {
				breakdown = append(breakdown, duty.Entry(*item.Tariff, item.Quantity))
				current = current.Add(duty.Amount.Div(qty))
			}
		}

		unitPrice := policy.Apply(current)
		results = append(results, ProductPricingResult{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: unitPrice.Mul(qty),
			Breakdown:  breakdown,
		})
	}

	return &Allocation{Products: results, Budget: nil}, nil
}

func expenseEntry(expense Expense, share ExpenseShare, included bool, note string) CostBreakdownEntry {
	label := expense.Description
	if label == "" {
		label = string(expense.Type)
	}

	description := note
	if !included {
		description += fmt.Sprintf("; excluded below %s", NormalizeIncoterm(expense.IncotermThreshold))
	}

	return CostBreakdownEntry{
		Label:              label,
		Kind:               ExpenseKind(expense.Type),
		AmountPerUnit:      share.PerUnit,
		AmountTotal:        share.Total,
		IncludedInIncoterm: included,
		Description:        description,
	}
}
