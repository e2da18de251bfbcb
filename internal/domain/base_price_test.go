package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/exportquote/internal/domain"
)

func TestResolveBaseExportPrice(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	history := []domain.PricePoint{
		{Type: domain.PriceTypeSelling, Value: dec("70"), Date: jan},
		{Type: domain.PriceTypeCost, Value: dec("50"), Date: mar},
		{Type: domain.PriceTypeSelling, Value: dec("75"), Date: feb},
	}

	vat := domain.DefaultPricingConfig()
	vat.AdjustForVAT = true
	vat.VATRate = dec("25")

	tests := []struct {
		name     string
		history  []domain.PricePoint
		override *decimal.Decimal
		cfg      domain.PricingConfig
		expected string
	}{
		{"latest selling price", history, nil, domain.DefaultPricingConfig(), "75"},
		{"override wins", history, decPtr("90"), domain.DefaultPricingConfig(), "90"},
		{"no selling price", history[1:2], nil, domain.DefaultPricingConfig(), "0"},
		{"empty history", nil, nil, domain.DefaultPricingConfig(), "0"},
		{"vat adjusted", history, nil, vat, "60"},
		{"vat adjusted override", history, decPtr("125"), vat, "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireDecimal(t, tt.expected, domain.ResolveBaseExportPrice(tt.history, tt.override, tt.cfg))
		})
	}
}

func TestBaseExportPriceEntry(t *testing.T) {
	entry := domain.BaseExportPriceEntry(dec("75"), 100, domain.DefaultPricingConfig())

	require.Equal(t, "Base Export Price", entry.Label)
	require.Equal(t, domain.KindBasePrice, entry.Kind)
	require.True(t, entry.IncludedInIncoterm)
	requireDecimal(t, "75", entry.AmountPerUnit)
	requireDecimal(t, "7500", entry.AmountTotal)
	require.Empty(t, entry.Description)

	cfg := domain.DefaultPricingConfig()
	cfg.AdjustForVAT = true
	cfg.VATRate = dec("21")
	entry = domain.BaseExportPriceEntry(dec("10"), 1, cfg)
	require.Equal(t, "net of 21% VAT", entry.Description)
}
