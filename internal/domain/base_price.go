package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const baseExportPriceLabel = "Base Export Price"

//nolint:gochecknoglobals // Immutable decimal constants
var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ResolveBaseExportPrice picks the starting unit price of a product.
// The override wins; otherwise the most recent SELLING entry is used, or zero if none exists.
// With VAT adjustment enabled the VAT-inclusive price is converted to a net export price.
func ResolveBaseExportPrice(history []PricePoint, override *decimal.Decimal, cfg PricingConfig) decimal.Decimal {
	price := decimal.Zero

	if override != nil {
		price = *override
	} else if latest, ok := latestSellingPrice(history); ok {
		price = latest.Value
	}

	if cfg.AdjustForVAT && cfg.VATRate.IsPositive() {
		price = price.Div(one.Add(cfg.VATRate.Div(hundred)))
	}

	return price
}

func latestSellingPrice(history []PricePoint) (PricePoint, bool) {
	var (
		latest PricePoint
		found  bool
	)

	for _, point := range history {
		if point.Type != PriceTypeSelling {
			continue
		}
		if !found || point.Date.After(latest.Date) {
			latest = point
			found = true
		}
	}

	return latest, found
}

// BaseExportPriceEntry builds the first breakdown row of a product.
func BaseExportPriceEntry(price decimal.Decimal, quantity int64, cfg PricingConfig) CostBreakdownEntry {
	entry := CostBreakdownEntry{
		Label:              baseExportPriceLabel,
		Kind:               KindBasePrice,
		AmountPerUnit:      price,
		AmountTotal:        price.Mul(decimal.NewFromInt(quantity)),
		IncludedInIncoterm: true,
	}
	if cfg.AdjustForVAT && cfg.VATRate.IsPositive() {
		entry.Description = fmt.Sprintf("net of %s%% VAT", cfg.VATRate.String())
	}

	return entry
}
