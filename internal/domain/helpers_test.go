package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/exportquote/internal/domain"
)

// standardChain mirrors the seeded chain: a sea branch and a multimodal branch under FCA.
func standardChain() []domain.IncotermNode {
	return []domain.IncotermNode{
		{Code: "DDP", PreviousCode: "DAP"},
		{Code: "FOB", PreviousCode: "FCA"},
		{Code: "EXW"},
		{Code: "CPT", PreviousCode: "FCA", Position: 1},
		{Code: "CFR", PreviousCode: "FOB"},
		{Code: "FCA", PreviousCode: "EXW"},
		{Code: "CIP", PreviousCode: "CPT"},
		{Code: "CIF", PreviousCode: "CFR"},
		{Code: "DAP", PreviousCode: "CIP"},
	}
}

func newHierarchy(t *testing.T) *domain.IncotermHierarchy {
	t.Helper()

	h, err := domain.NewIncotermHierarchy(standardChain())
	require.NoError(t, err)
	return h
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func requireDecimal(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()

	want := dec(expected)
	if !want.Equal(actual) {
		require.Failf(t, "decimal mismatch", "expected %s, got %s. %v", want, actual, msgAndArgs)
	}
}
