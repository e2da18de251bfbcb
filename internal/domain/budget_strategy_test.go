package domain_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/exportquote/internal/domain"
)

func budgetItems() []domain.BudgetItem {
	return []domain.BudgetItem{
		{ProductID: "prod-a", Quantity: 100, UnitPrice: dec("75")},
		{ProductID: "prod-b", Quantity: 50, UnitPrice: dec("200")},
	}
}

func budgetCosts() []decimal.Decimal {
	return []decimal.Decimal{dec("500"), dec("300")}
}

func TestCalculateBudget_FOB(t *testing.T) {
	result := domain.CalculateBudget(budgetItems(), budgetCosts(), "fob", decimal.Zero)

	require.Equal(t, "FOB", result.Incoterm)
	requireDecimal(t, "17500", result.SubtotalProducts)
	requireDecimal(t, "800", result.TotalExpenses)
	requireDecimal(t, "0", result.TotalDuties)
	requireDecimal(t, "18300", result.TotalAmount)

	require.Len(t, result.Items, 2)

	a := result.Items[0]
	requireDecimal(t, "7500", a.Subtotal)
	requireDecimal(t, "342.857143", a.ExpenseShare)
	requireDecimal(t, "7842.857143", a.TotalLine)

	b := result.Items[1]
	requireDecimal(t, "457.142857", b.ExpenseShare)
	requireDecimal(t, "10457.142857", b.TotalLine)
}

func TestCalculateBudget_TotalByIncoterm(t *testing.T) {
	tests := []struct {
		incoterm string
		dutyRate string
		total    string
		duties   string
	}{
		{"EXW", "0", "17500", "0"},
		{"FCA", "0", "17500", "0"},
		{"FOB", "0", "18300", "0"},
		{"CIF", "0", "18300", "0"},
		{"CFR", "0", "18300", "0"},
		{"DDP", "10", "20130", "1830"},
		{"DAP", "10", "18300", "1830"},
	}

	for _, tt := range tests {
		t.Run(tt.incoterm, func(t *testing.T) {
			result := domain.CalculateBudget(budgetItems(), budgetCosts(), tt.incoterm, dec(tt.dutyRate))
			requireDecimal(t, tt.total, result.TotalAmount)
			requireDecimal(t, tt.duties, result.TotalDuties)
		})
	}
}

func TestCalculateBudget_DutiesPerLine(t *testing.T) {
	result := domain.CalculateBudget(budgetItems(), budgetCosts(), "DDP", dec("10"))

	requireDecimal(t, "784.285714", result.Items[0].Duties)
	requireDecimal(t, "1045.714286", result.Items[1].Duties)
	requireDecimal(t, "8627.142857", result.Items[0].TotalLine)
}

func TestCalculateBudget_ZeroSubtotal(t *testing.T) {
	items := []domain.BudgetItem{
		{ProductID: "sample-a", Quantity: 10, UnitPrice: decimal.Zero},
		{ProductID: "sample-b", Quantity: 5, UnitPrice: decimal.Zero},
	}

	result := domain.CalculateBudget(items, budgetCosts(), "FOB", decimal.Zero)

	for _, line := range result.Items {
		requireDecimal(t, "0", line.ExpenseShare)
		requireDecimal(t, "0", line.TotalLine)
	}
	requireDecimal(t, "800", result.TotalAmount)
}

func TestCalculateBudget_SixDecimals(t *testing.T) {
	items := []domain.BudgetItem{
		{ProductID: "a", Quantity: 3, UnitPrice: dec("1.1111119")},
		{ProductID: "b", Quantity: 7, UnitPrice: dec("2.5")},
	}

	result := domain.CalculateBudget(items, []decimal.Decimal{dec("1")}, "CIF", dec("7.5"))

	for _, line := range result.Items {
		for _, value := range []decimal.Decimal{line.UnitPrice, line.Subtotal, line.ExpenseShare, line.Duties, line.TotalLine} {
			require.LessOrEqual(t, -value.Exponent(), int32(6), value.String())
		}
	}
}

func TestBudgetItem_Validate(t *testing.T) {
	require.NoError(t, budgetItems()[0].Validate())
	require.Error(t, domain.BudgetItem{Quantity: 1}.Validate())
	require.Error(t, domain.BudgetItem{ProductID: "a"}.Validate())
	require.Error(t, domain.BudgetItem{ProductID: "a", Quantity: 1, UnitPrice: dec("-1")}.Validate())
	require.Error(t, domain.BudgetItem{ProductID: "a", Quantity: 1, Weight: dec("-0.5")}.Validate())
	require.Error(t, domain.BudgetItem{ProductID: "a", Quantity: 1, Volume: dec("-2")}.Validate())
}

func TestCalculateBudget_ShipmentWeightAndVolume(t *testing.T) {
	items := budgetItems()
	items[0].Weight = dec("1.25")
	items[0].Volume = dec("0.0015")
	items[1].Weight = dec("0.8")

	result := domain.CalculateBudget(items, budgetCosts(), "FOB", decimal.Zero)

	requireDecimal(t, "125", result.Items[0].TotalWeight)
	requireDecimal(t, "0.15", result.Items[0].TotalVolume)
	requireDecimal(t, "40", result.Items[1].TotalWeight)
	requireDecimal(t, "0", result.Items[1].TotalVolume)
	requireDecimal(t, "165", result.TotalWeight)
	requireDecimal(t, "0.15", result.TotalVolume)

	// Physical attributes never move money.
	requireDecimal(t, "342.857143", result.Items[0].ExpenseShare)
	requireDecimal(t, "18300", result.TotalAmount)
}

func TestBudgetStrategy_Allocate(t *testing.T) {
	strategy := domain.NewBudgetStrategy()
	require.Equal(t, domain.StrategyBudget, strategy.Name())

	allocation, err := strategy.Allocate(context.Background(), domain.AllocationInput{
		Incoterm: "FOB",
		Items: []domain.LineItem{
			{ProductID: "prod-a", Quantity: 100, BasePrice: dec("75")},
			{ProductID: "prod-b", Quantity: 50, BasePrice: dec("200")},
		},
		Expenses: []domain.Expense{
			{ID: "e1", Value: dec("500"), IncotermThreshold: "DDP"},
			{ID: "e2", Value: dec("300"), IncotermThreshold: "CIF"},
		},
		Config: domain.DefaultPricingConfig(),
	})
	require.NoError(t, err)

	require.NotNil(t, allocation.Budget)
	requireDecimal(t, "18300", allocation.Budget.TotalAmount)
	requireDecimal(t, "800", allocation.Budget.TotalExpenses)

	a := allocation.Products[0]
	requireDecimal(t, "78.428571", a.UnitPrice)
	require.True(t, a.TotalPrice.Equal(a.UnitPrice.Mul(decimal.NewFromInt(100))))
	require.Len(t, a.Breakdown, 2)
	require.Equal(t, domain.KindProratedExpense, a.Breakdown[1].Kind)
	requireDecimal(t, "342.857143", a.Breakdown[1].AmountTotal)
}

func TestBudgetStrategy_DutiesRow(t *testing.T) {
	allocation, err := domain.NewBudgetStrategy().Allocate(context.Background(), domain.AllocationInput{
		Incoterm: "DDP",
		Items:    []domain.LineItem{{ProductID: "prod-a", Quantity: 10, BasePrice: dec("100")}},
		Config:   domain.DefaultPricingConfig(),
		DutyRate: dec("5"),
	})
	require.NoError(t, err)

	product := allocation.Products[0]
	require.Len(t, product.Breakdown, 3)
	duties := product.Breakdown[2]
	require.Equal(t, domain.KindDuties, duties.Kind)
	requireDecimal(t, "50", duties.AmountTotal)
	require.Equal(t, "flat 5%", duties.Description)
	requireDecimal(t, "105", product.UnitPrice)
	requireDecimal(t, "1050", allocation.Budget.TotalAmount)
}
