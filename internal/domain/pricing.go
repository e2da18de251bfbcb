package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RoundingMode selects how final unit prices are rounded.
type RoundingMode string

const (
	RoundingHalfUp RoundingMode = "HALF_UP"
	RoundingDown   RoundingMode = "DOWN"
	RoundingUp     RoundingMode = "UP"
)

const (
	defaultCurrency  = "USD"
	defaultPrecision = 2
)

// ParseRoundingMode normalizes and validates a rounding mode name.
func ParseRoundingMode(s string) (RoundingMode, error) {
	mode := RoundingMode(strings.ToUpper(strings.TrimSpace(s)))
	switch mode {
	case RoundingHalfUp, RoundingDown, RoundingUp:
		return mode, nil
	default:
		return "", fmt.Errorf("unsupported rounding mode %q", s)
	}
}

// PricingConfig contains the tenant pricing policy.
type PricingConfig struct {
	AdjustForVAT bool            `json:"adjustForVAT"`
	VATRate      decimal.Decimal `json:"vatRate"` // percent
	BaseCurrency string          `json:"baseCurrency"`
	RoundingMode RoundingMode    `json:"roundingMode"`
	Precision    int32           `json:"precision"`
}

// DefaultPricingConfig is used when a tenant has no stored configuration.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		AdjustForVAT: false,
		VATRate:      decimal.Zero,
		BaseCurrency: defaultCurrency,
		RoundingMode: RoundingHalfUp,
		Precision:    defaultPrecision,
	}
}

// NewDefaultPricingConfig builds the fallback policy from operator settings.
// Empty currency or rounding keep the built-in defaults.
func NewDefaultPricingConfig(currency, rounding string, precision int32) (PricingConfig, error) {
	cfg := DefaultPricingConfig()
	cfg.Precision = precision

	if currency != "" {
		cfg.BaseCurrency = strings.ToUpper(strings.TrimSpace(currency))
	}

	if rounding != "" {
		mode, err := ParseRoundingMode(rounding)
		if err != nil {
			return PricingConfig{}, err
		}
		cfg.RoundingMode = mode
	}

	if err := cfg.Validate(); err != nil {
		return PricingConfig{}, err
	}

	return cfg, nil
}

// Validate checks the configuration is usable by the engine.
func (c PricingConfig) Validate() error {
	if _, err := ParseRoundingMode(string(c.RoundingMode)); err != nil {
		return err
	}
	if c.Precision < 0 {
		return fmt.Errorf("precision must be >= 0, got %d", c.Precision)
	}
	if c.VATRate.IsNegative() {
		return fmt.Errorf("vat rate must be >= 0, got %s", c.VATRate)
	}
	if c.BaseCurrency == "" {
		return errors.New("base currency cannot be empty")
	}
	return nil
}
