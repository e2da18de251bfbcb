package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const exportDutyLabel = "Export Duty (DEX)"

// ExportDuty is the outcome of a DEX computation for one line.
type ExportDuty struct {
	AdValorem  decimal.Decimal
	Fixed      decimal.Decimal
	Amount     decimal.Decimal
	AppliedMin bool
	AppliedMax bool
}

// CalculateExportDuty computes ad-valorem plus fixed duty on fobValue, clamped to the
// tariff minimum first and then to its maximum.
func CalculateExportDuty(tariff TariffClassification, fobValue decimal.Decimal) ExportDuty {
	duty := ExportDuty{
		AdValorem: decimal.Zero,
		Fixed:     decimal.Zero,
	}

	if tariff.AdValoremRate != nil {
		duty.AdValorem = fobValue.Mul(tariff.AdValoremRate.Div(hundred))
	}
	if tariff.FixedExportDuty != nil {
		duty.Fixed = *tariff.FixedExportDuty
	}

	duty.Amount = duty.AdValorem.Add(duty.Fixed)

	if tariff.ExportDutyMinAmount != nil && duty.Amount.LessThan(*tariff.ExportDutyMinAmount) {
		duty.Amount = *tariff.ExportDutyMinAmount
		duty.AppliedMin = true
	} else if tariff.ExportDutyMaxAmount != nil && duty.Amount.GreaterThan(*tariff.ExportDutyMaxAmount) {
		duty.Amount = *tariff.ExportDutyMaxAmount
		duty.AppliedMax = true
	}

	return duty
}

// Entry renders the duty as a breakdown row spread over quantity units.
func (d ExportDuty) Entry(tariff TariffClassification, quantity int64) CostBreakdownEntry {
	return CostBreakdownEntry{
		Label:              exportDutyLabel,
		Kind:               KindExportDuty,
		AmountPerUnit:      d.Amount.Div(decimal.NewFromInt(quantity)),
		AmountTotal:        d.Amount,
		IncludedInIncoterm: true,
		Description:        d.describe(tariff),
	}
}

func (d ExportDuty) describe(tariff TariffClassification) string {
	var parts []string

	if tariff.Code != "" {
		parts = append(parts, "tariff "+tariff.Code)
	}
	if tariff.AdValoremRate != nil {
		parts = append(parts, fmt.Sprintf("ad valorem %s%%", tariff.AdValoremRate.String()))
	}
	if tariff.FixedExportDuty != nil {
		parts = append(parts, "fixed "+tariff.FixedExportDuty.String())
	}
	if d.AppliedMin {
		parts = append(parts, "minimum applied")
	}
	if d.AppliedMax {
		parts = append(parts, "maximum applied")
	}

	return strings.Join(parts, ", ")
}
