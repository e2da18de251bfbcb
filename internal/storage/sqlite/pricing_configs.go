package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/davidbz/exportquote/internal/domain"
)

// PricingConfigRepository implements domain.PricingConfigStore.
type PricingConfigRepository struct {
	db *sql.DB
}

// NewPricingConfigRepository creates a pricing config repository.
func NewPricingConfigRepository(db *sql.DB) *PricingConfigRepository {
	return &PricingConfigRepository{db: db}
}

// Get returns the tenant configuration or domain.ErrPricingConfigNotFound.
func (r *PricingConfigRepository) Get(ctx context.Context, tenantID string) (domain.PricingConfig, error) {
	var cfg domain.PricingConfig

	err := r.db.QueryRowContext(ctx, `
		SELECT adjust_for_vat, vat_rate, base_currency, rounding_mode, precision_digits
		FROM pricing_configs WHERE tenant_id = ?`, tenantID,
	).Scan(&cfg.AdjustForVAT, &cfg.VATRate, &cfg.BaseCurrency, &cfg.RoundingMode, &cfg.Precision)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PricingConfig{}, fmt.Errorf("%w: tenant %s", domain.ErrPricingConfigNotFound, tenantID)
	}
	if err != nil {
		return domain.PricingConfig{}, fmt.Errorf("query pricing config: %w", err)
	}

	return cfg, nil
}

// Save upserts the tenant configuration after validating it.
func (r *PricingConfigRepository) Save(ctx context.Context, tenantID string, cfg domain.PricingConfig) error {
	if tenantID == "" {
		return errors.New("tenant id cannot be empty")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid pricing config: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO pricing_configs
			(tenant_id, adjust_for_vat, vat_rate, base_currency, rounding_mode, precision_digits)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id) DO UPDATE SET
			adjust_for_vat = excluded.adjust_for_vat,
			vat_rate = excluded.vat_rate,
			base_currency = excluded.base_currency,
			rounding_mode = excluded.rounding_mode,
			precision_digits = excluded.precision_digits`,
		tenantID,
		cfg.AdjustForVAT,
		cfg.VATRate.String(),
		cfg.BaseCurrency,
		string(cfg.RoundingMode),
		cfg.Precision,
	); err != nil {
		return fmt.Errorf("upsert pricing config %s: %w", tenantID, err)
	}

	return nil
}
