package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AppendPriceHistory inserts a price change audit row. History rows are
// never updated or deleted, only appended.
func (s *Store) AppendPriceHistory(ctx context.Context, productID string, oldPrice, newPrice int64, currency string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO price_history (id, product_id, old_price, new_price, currency, changed_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, uuid.New().String(), productID, oldPrice, newPrice, currency)
	if err != nil {
		return fmt.Errorf("appending price history for product %s: %w", productID, err)
	}
	return nil
}

// AppendColorHistory inserts one audit row per added/removed color
func (s *Store) AppendColorHistory(ctx context.Context, productID, colorName, change string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO color_history (id, product_id, color_name, change, changed_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, uuid.New().String(), productID, colorName, change)
	if err != nil {
		return fmt.Errorf("appending color history for product %s: %w", productID, err)
	}
	return nil
}

// AppendSizeHistory inserts one audit row per added/removed (color, size) pair
func (s *Store) AppendSizeHistory(ctx context.Context, productID, colorName, sizeLabel, change string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO size_history (id, product_id, color_name, size_label, change, changed_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, uuid.New().String(), productID, colorName, sizeLabel, change)
	if err != nil {
		return fmt.Errorf("appending size history for product %s: %w", productID, err)
	}
	return nil
}
