package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// budgetScale is the fixed number of decimals used by the budget strategy.
const budgetScale int32 = 6

// RoundingPolicy rounds final prices to a configured precision.
type RoundingPolicy struct {
	mode      RoundingMode
	precision int32
}

// NewRoundingPolicy validates mode and precision.
func NewRoundingPolicy(mode RoundingMode, precision int32) (RoundingPolicy, error) {
	parsed, err := ParseRoundingMode(string(mode))
	if err != nil {
		return RoundingPolicy{}, err
	}
	if precision < 0 {
		return RoundingPolicy{}, fmt.Errorf("precision must be >= 0, got %d", precision)
	}

	return RoundingPolicy{mode: parsed, precision: precision}, nil
}

// Apply rounds value according to the policy.
func (p RoundingPolicy) Apply(value decimal.Decimal) decimal.Decimal {
	switch p.mode {
	case RoundingDown:
		return value.RoundFloor(p.precision)
	case RoundingUp:
		return value.RoundCeil(p.precision)
	default:
		return value.Round(p.precision)
	}
}

// Mode returns the rounding mode.
func (p RoundingPolicy) Mode() RoundingMode {
	return p.mode
}

// Precision returns the number of decimals kept.
func (p RoundingPolicy) Precision() int32 {
	return p.precision
}

func fixed6(value decimal.Decimal) decimal.Decimal {
	return value.Round(budgetScale)
}
