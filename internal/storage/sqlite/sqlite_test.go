package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/exportquote/internal/domain"
	"github.com/davidbz/exportquote/internal/storage/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Migrate(db))
	return db
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestIncotermRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewIncotermRepository(newTestDB(t))

	t.Run("seeded chain builds the expected hierarchy", func(t *testing.T) {
		hierarchy, err := domain.LoadIncotermHierarchy(ctx, repo)
		require.NoError(t, err)
		require.Equal(t,
			[]string{"EXW", "FCA", "FOB", "CFR", "CIF", "CPT", "CIP", "DAP", "DDP"},
			hierarchy.Codes())
	})

	t.Run("stored names are kept on the hierarchy", func(t *testing.T) {
		hierarchy, err := domain.LoadIncotermHierarchy(ctx, repo)
		require.NoError(t, err)
		require.Equal(t, "Carriage Paid To", hierarchy.Name("cpt"))
		require.Equal(t, "Free On Board", hierarchy.Name("FOB"))
		require.Empty(t, hierarchy.Name("XYZ"))
	})
}

func TestProductRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProductRepository(newTestDB(t))

	older := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, domain.Product{
		ID:    "prod-wine",
		Title: "Malbec 750ml",
		Tariff: &domain.TariffClassification{
			Code:                "2204.21",
			AdValoremRate:       decPtr("3"),
			ExportDutyMinAmount: decPtr("10"),
		},
		PriceHistory: []domain.PricePoint{
			{Type: domain.PriceTypeSelling, Value: dec("70.50"), Date: older},
			{Type: domain.PriceTypeCost, Value: dec("40"), Date: newer},
			{Type: domain.PriceTypeSelling, Value: dec("75"), Date: newer},
		},
	}))
	require.NoError(t, repo.Save(ctx, domain.Product{ID: "prod-oil", Title: "Olive oil"}))

	t.Run("finds products with tariff and history", func(t *testing.T) {
		products, err := repo.FindByIDs(ctx, []string{"prod-wine", "prod-oil", "missing"})
		require.NoError(t, err)
		require.Len(t, products, 2)

		byID := map[string]domain.Product{}
		for _, p := range products {
			byID[p.ID] = p
		}

		wine := byID["prod-wine"]
		require.Equal(t, "Malbec 750ml", wine.Title)
		require.NotNil(t, wine.Tariff)
		require.Equal(t, "2204.21", wine.Tariff.Code)
		require.True(t, wine.Tariff.AdValoremRate.Equal(dec("3")))
		require.True(t, wine.Tariff.ExportDutyMinAmount.Equal(dec("10")))
		require.Nil(t, wine.Tariff.FixedExportDuty)
		require.Nil(t, wine.Tariff.ExportDutyMaxAmount)
		require.Len(t, wine.PriceHistory, 3)

		price := domain.ResolveBaseExportPrice(wine.PriceHistory, nil, domain.DefaultPricingConfig())
		require.True(t, price.Equal(dec("75")), "got %s", price)

		oil := byID["prod-oil"]
		require.Nil(t, oil.Tariff)
		require.Empty(t, oil.PriceHistory)
	})

	t.Run("save replaces price history", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, domain.Product{
			ID:    "prod-oil",
			Title: "Olive oil 1l",
			PriceHistory: []domain.PricePoint{
				{Type: domain.PriceTypeSelling, Value: dec("12.3"), Date: newer},
			},
		}))

		products, err := repo.FindByIDs(ctx, []string{"prod-oil"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		require.Equal(t, "Olive oil 1l", products[0].Title)
		require.Len(t, products[0].PriceHistory, 1)
		require.True(t, products[0].PriceHistory[0].Date.Equal(newer))
	})

	t.Run("empty id list returns nothing", func(t *testing.T) {
		products, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		require.Empty(t, products)
	})
}

func TestExpenseRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewExpenseRepository(newTestDB(t))

	require.NoError(t, repo.Save(ctx, domain.Expense{
		ID:                "exp-port",
		Type:              domain.ExpenseTypeFixed,
		Description:       "Port handling",
		Value:             dec("500"),
		Prorate:           true,
		IncotermThreshold: "fob",
	}))
	require.NoError(t, repo.Save(ctx, domain.Expense{
		ID:                "exp-pallet",
		Type:              domain.ExpenseTypeVariable,
		Value:             dec("1.25"),
		Distribution:      domain.DistributionPerUnit,
		IncotermThreshold: "FCA",
	}))

	t.Run("finds saved expenses", func(t *testing.T) {
		expenses, err := repo.FindByIDs(ctx, []string{"exp-port", "exp-pallet", "nope"})
		require.NoError(t, err)
		require.Len(t, expenses, 2)

		byID := map[string]domain.Expense{}
		for _, e := range expenses {
			byID[e.ID] = e
		}

		port := byID["exp-port"]
		require.True(t, port.Prorate)
		require.Equal(t, "FOB", port.IncotermThreshold)
		require.Equal(t, domain.DistributionTotal, port.Distribution)
		require.True(t, port.Value.Equal(dec("500")))

		pallet := byID["exp-pallet"]
		require.False(t, pallet.Prorate)
		require.Equal(t, domain.DistributionPerUnit, pallet.Distribution)
		require.Equal(t, domain.ExpenseTypeVariable, pallet.Type)
	})

	t.Run("rejects thresholds outside the chain", func(t *testing.T) {
		err := repo.Save(ctx, domain.Expense{
			ID:                "exp-bad",
			Type:              domain.ExpenseTypeFixed,
			Value:             dec("1"),
			IncotermThreshold: "XXX",
		})
		require.Error(t, err)
	})
}

func TestPricingConfigRepository(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewPricingConfigRepository(newTestDB(t))

	t.Run("missing tenant returns not found", func(t *testing.T) {
		_, err := repo.Get(ctx, "acme")
		require.ErrorIs(t, err, domain.ErrPricingConfigNotFound)
	})

	t.Run("save and get round trip", func(t *testing.T) {
		cfg := domain.PricingConfig{
			AdjustForVAT: true,
			VATRate:      dec("21"),
			BaseCurrency: "EUR",
			RoundingMode: domain.RoundingDown,
			Precision:    3,
		}
		require.NoError(t, repo.Save(ctx, "acme", cfg))

		got, err := repo.Get(ctx, "acme")
		require.NoError(t, err)
		require.True(t, got.AdjustForVAT)
		require.True(t, got.VATRate.Equal(dec("21")))
		require.Equal(t, "EUR", got.BaseCurrency)
		require.Equal(t, domain.RoundingDown, got.RoundingMode)
		require.Equal(t, int32(3), got.Precision)
	})

	t.Run("save rejects invalid config", func(t *testing.T) {
		cfg := domain.DefaultPricingConfig()
		cfg.RoundingMode = "BANKERS"
		require.Error(t, repo.Save(ctx, "acme", cfg))
	})
}
