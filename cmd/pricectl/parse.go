package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/davidbz/exportquote/internal/domain"
)

// catalog is the import file layout.
type catalog struct {
	Products       []domain.Product                `json:"products"`
	Expenses       []domain.Expense                `json:"expenses"`
	PricingConfigs map[string]domain.PricingConfig `json:"pricingConfigs"`
}

func readCatalog(path string) (*catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var c catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	return &c, nil
}

// parseProducts parses id:quantity[:basePrice] entries.
func parseProducts(values []string) ([]domain.ProductRequest, error) {
	products := make([]domain.ProductRequest, 0, len(values))

	for _, value := range values {
		parts := strings.Split(value, ":")
		if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
			return nil, fmt.Errorf("invalid product %q, expected id:quantity[:basePrice]", value)
		}

		quantity, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q: %w", value, err)
		}

		product := domain.ProductRequest{
			ProductID: parts[0],
			Quantity:  quantity,
		}

		if len(parts) == 3 {
			price, err := decimal.NewFromString(parts[2])
			if err != nil {
				return nil, fmt.Errorf("invalid base price in %q: %w", value, err)
			}
			product.BasePrice = &price
		}

		products = append(products, product)
	}

	return products, nil
}
