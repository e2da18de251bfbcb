package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/davidbz/exportquote/internal/domain"
)

// ExpenseRepository implements domain.ExpenseRepository.
type ExpenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates an expense repository.
func NewExpenseRepository(db *sql.DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// FindByIDs returns the expenses among ids.
func (r *ExpenseRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Expense, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, type, description, value, prorate, distribution, incoterm_threshold
		FROM expenses
		WHERE id IN (` + placeholders(len(ids)) + `)
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []domain.Expense
	for rows.Next() {
		var expense domain.Expense
		if err := rows.Scan(
			&expense.ID,
			&expense.Type,
			&expense.Description,
			&expense.Value,
			&expense.Prorate,
			&expense.Distribution,
			&expense.IncotermThreshold,
		); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// Save upserts an expense.
func (r *ExpenseRepository) Save(ctx context.Context, expense domain.Expense) error {
	distribution := expense.Distribution
	if distribution == "" {
		distribution = domain.DistributionTotal
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, type, description, value, prorate, distribution, incoterm_threshold)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			type = excluded.type,
			description = excluded.description,
			value = excluded.value,
			prorate = excluded.prorate,
			distribution = excluded.distribution,
			incoterm_threshold = excluded.incoterm_threshold`,
		expense.ID,
		string(expense.Type),
		expense.Description,
		expense.Value.String(),
		expense.Prorate,
		string(distribution),
		domain.NormalizeIncoterm(expense.IncotermThreshold),
	); err != nil {
		return fmt.Errorf("upsert expense %s: %w", expense.ID, err)
	}

	return nil
}
