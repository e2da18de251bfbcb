package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidbz/exportquote/internal/domain"
)

// ProductRepository implements domain.ProductRepository.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a product repository.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindByIDs returns the products among ids with their tariff and price history.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT p.id, p.title, t.code, t.ad_valorem_rate, t.fixed_export_duty,
		       t.export_duty_min_amount, t.export_duty_max_amount
		FROM products p
		LEFT JOIN tariff_positions t ON t.code = p.tariff_code
		WHERE p.id IN (` + placeholders(len(ids)) + `)
		ORDER BY p.id`

	rows, err := r.db.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	index := make(map[string]int)

	for rows.Next() {
		var (
			product  domain.Product
			code     sql.NullString
			adValRat decimal.NullDecimal
			fixed    decimal.NullDecimal
			minimum  decimal.NullDecimal
			maximum  decimal.NullDecimal
		)

		if err := rows.Scan(&product.ID, &product.Title, &code, &adValRat, &fixed, &minimum, &maximum); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}

		if code.Valid {
			product.Tariff = &domain.TariffClassification{
				Code:                code.String,
				AdValoremRate:       nullable(adValRat),
				FixedExportDuty:     nullable(fixed),
				ExportDutyMinAmount: nullable(minimum),
				ExportDutyMaxAmount: nullable(maximum),
			}
		}

		index[product.ID] = len(products)
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	if len(products) == 0 {
		return products, nil
	}

	if err := r.attachPriceHistory(ctx, ids, products, index); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *ProductRepository) attachPriceHistory(
	ctx context.Context,
	ids []string,
	products []domain.Product,
	index map[string]int,
) error {
	query := `
		SELECT product_id, type, value, recorded_at
		FROM price_history
		WHERE product_id IN (` + placeholders(len(ids)) + `)
		ORDER BY product_id, recorded_at`

	rows, err := r.db.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			productID  string
			point      domain.PricePoint
			recordedAt string
		)

		if err := rows.Scan(&productID, &point.Type, &point.Value, &recordedAt); err != nil {
			return fmt.Errorf("scan price history: %w", err)
		}

		point.Date, err = time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			return fmt.Errorf("parse price history date %q: %w", recordedAt, err)
		}

		i, ok := index[productID]
		if !ok {
			continue
		}
		products[i].PriceHistory = append(products[i].PriceHistory, point)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate price history: %w", err)
	}

	return nil
}

// Save upserts a product, its tariff position and replaces its price history.
func (r *ProductRepository) Save(ctx context.Context, product domain.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var tariffCode any
	if product.Tariff != nil && product.Tariff.Code != "" {
		tariffCode = product.Tariff.Code
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tariff_positions
				(code, ad_valorem_rate, fixed_export_duty, export_duty_min_amount, export_duty_max_amount)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (code) DO UPDATE SET
				ad_valorem_rate = excluded.ad_valorem_rate,
				fixed_export_duty = excluded.fixed_export_duty,
				export_duty_min_amount = excluded.export_duty_min_amount,
				export_duty_max_amount = excluded.export_duty_max_amount`,
			product.Tariff.Code,
			nullDecimal(product.Tariff.AdValoremRate),
			nullDecimal(product.Tariff.FixedExportDuty),
			nullDecimal(product.Tariff.ExportDutyMinAmount),
			nullDecimal(product.Tariff.ExportDutyMaxAmount),
		); err != nil {
			return fmt.Errorf("upsert tariff position %s: %w", product.Tariff.Code, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO products (id, title, tariff_code) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET title = excluded.title, tariff_code = excluded.tariff_code`,
		product.ID, product.Title, tariffCode,
	); err != nil {
		return fmt.Errorf("upsert product %s: %w", product.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM price_history WHERE product_id = ?`, product.ID); err != nil {
		return fmt.Errorf("clear price history of %s: %w", product.ID, err)
	}

	for _, point := range product.PriceHistory {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO price_history (product_id, type, value, recorded_at) VALUES (?, ?, ?, ?)`,
			product.ID, string(point.Type), point.Value.String(), point.Date.UTC().Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("insert price history of %s: %w", product.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit product %s: %w", product.ID, err)
	}

	return nil
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}
