package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// GetBrand returns a brand by id, or nil when it does not exist
func (s *Store) GetBrand(ctx context.Context, id string) (*Brand, error) {
	var b Brand
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, slug, api_base_url, api_config, is_active, created_at, updated_at
		FROM brands
		WHERE id = $1
	`, id).Scan(&b.ID, &b.Name, &b.Slug, &b.APIBaseURL, &b.APIConfig, &b.IsActive, &b.CreatedAt, &b.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying brand %s: %w", id, err)
	}
	return &b, nil
}
