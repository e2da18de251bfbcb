package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/davidbz/exportquote/internal/domain"
)

// IncotermRepository implements domain.IncotermRepository.
type IncotermRepository struct {
	db *sql.DB
}

// NewIncotermRepository creates an Incoterm repository.
func NewIncotermRepository(db *sql.DB) *IncotermRepository {
	return &IncotermRepository{db: db}
}

// List returns every stored link of the chain.
func (r *IncotermRepository) List(ctx context.Context) ([]domain.IncotermNode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code, name, previous_code, position FROM incoterms ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("query incoterms: %w", err)
	}
	defer rows.Close()

	var nodes []domain.IncotermNode
	for rows.Next() {
		node, scanErr := scanIncoterm(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incoterms: %w", err)
	}

	return nodes, nil
}

func scanIncoterm(rows *sql.Rows) (domain.IncotermNode, error) {
	var (
		node     domain.IncotermNode
		previous sql.NullString
	)

	if err := rows.Scan(&node.Code, &node.Name, &previous, &node.Position); err != nil {
		return domain.IncotermNode{}, fmt.Errorf("scan incoterm: %w", err)
	}
	node.PreviousCode = previous.String

	return node, nil
}
