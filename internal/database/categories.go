package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const categoryColumns = `id, brand_id, name, slug, parent_id, level, sort_order, is_leaf, is_active, api_id, created_at, updated_at`

func scanCategory(row pgx.Row) (*Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.BrandID, &c.Name, &c.Slug, &c.ParentID, &c.Level,
		&c.SortOrder, &c.IsLeaf, &c.IsActive, &c.APIID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCategory returns a category by id, or nil when it does not exist
func (s *Store) GetCategory(ctx context.Context, id string) (*Category, error) {
	c, err := scanCategory(s.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+` FROM categories WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("querying category %s: %w", id, err)
	}
	return c, nil
}

// ListEligibleLeafCategories returns the brand's scrapeable categories:
// active leaves with an external api id, in sort order.
func (s *Store) ListEligibleLeafCategories(ctx context.Context, brandID string) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE brand_id = $1 AND is_leaf = true AND is_active = true AND api_id IS NOT NULL
		ORDER BY sort_order, name
	`, brandID)
	if err != nil {
		return nil, fmt.Errorf("querying leaf categories for brand %s: %w", brandID, err)
	}
	defer rows.Close()

	return collectCategories(rows)
}

// ListEligibleLeafCategoriesUnder returns scrapeable categories in the
// subtree rooted at the given category, the root itself included when
// eligible.
func (s *Store) ListEligibleLeafCategoriesUnder(ctx context.Context, categoryID string) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `
		WITH RECURSIVE subtree AS (
			SELECT `+categoryColumns+` FROM categories WHERE id = $1
			UNION ALL
			SELECT c.id, c.brand_id, c.name, c.slug, c.parent_id, c.level, c.sort_order,
			       c.is_leaf, c.is_active, c.api_id, c.created_at, c.updated_at
			FROM categories c
			JOIN subtree st ON c.parent_id = st.id
		)
		SELECT `+categoryColumns+`
		FROM subtree
		WHERE is_leaf = true AND is_active = true AND api_id IS NOT NULL
		ORDER BY level, sort_order, name
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("querying subtree categories under %s: %w", categoryID, err)
	}
	defer rows.Close()

	return collectCategories(rows)
}

// ListSiblingLeafCategories returns the active leaf categories sharing the
// given category's parent and level, the category itself excluded.
func (s *Store) ListSiblingLeafCategories(ctx context.Context, c Category) ([]Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE brand_id = $1
		  AND parent_id IS NOT DISTINCT FROM $2
		  AND level = $3
		  AND id <> $4
		  AND is_leaf = true AND is_active = true
		ORDER BY sort_order, name
	`, c.BrandID, c.ParentID, c.Level, c.ID)
	if err != nil {
		return nil, fmt.Errorf("querying siblings of category %s: %w", c.ID, err)
	}
	defer rows.Close()

	return collectCategories(rows)
}

func collectCategories(rows pgx.Rows) ([]Category, error) {
	categories := make([]Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.BrandID, &c.Name, &c.Slug, &c.ParentID, &c.Level,
			&c.SortOrder, &c.IsLeaf, &c.IsActive, &c.APIID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CategorySlugExists reports whether a slug is taken within a brand
func (s *Store) CategorySlugExists(ctx context.Context, brandID, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM categories WHERE brand_id = $1 AND slug = $2)
	`, brandID, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking category slug %q: %w", slug, err)
	}
	return exists, nil
}

// CreateCategory inserts a category. The caller resolves slug uniqueness.
func (s *Store) CreateCategory(ctx context.Context, c *Category) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO categories (id, brand_id, name, slug, parent_id, level, sort_order,
		                        is_leaf, is_active, api_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, c.ID, c.BrandID, c.Name, c.Slug, c.ParentID, c.Level, c.SortOrder,
		c.IsLeaf, c.IsActive, c.APIID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting category %q: %w", c.Name, err)
	}
	return nil
}

// FindSeeAllCategory returns the catch-all category for a brand/parent pair,
// or nil when none exists yet
func (s *Store) FindSeeAllCategory(ctx context.Context, brandID string, parentID *string, name string) (*Category, error) {
	c, err := scanCategory(s.pool.QueryRow(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE brand_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND name = $3
		LIMIT 1
	`, brandID, parentID, name))
	if err != nil {
		return nil, fmt.Errorf("querying see-all category for brand %s: %w", brandID, err)
	}
	return c, nil
}

// ListProductIDsForCategory returns the ids of products linked to a category
func (s *Store) ListProductIDsForCategory(ctx context.Context, categoryID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT product_id FROM product_categories WHERE category_id = $1 ORDER BY product_id
	`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("querying products for category %s: %w", categoryID, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// HasProductCategoryLink reports whether an association row already exists
func (s *Store) HasProductCategoryLink(ctx context.Context, productID, categoryID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM product_categories WHERE product_id = $1 AND category_id = $2)
	`, productID, categoryID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking product-category link: %w", err)
	}
	return exists, nil
}

// LinkProductCategory idempotently associates a product with a category.
// Existence is checked first so a duplicate key is never the control path.
func (s *Store) LinkProductCategory(ctx context.Context, productID, categoryID string) error {
	exists, err := s.HasProductCategoryLink(ctx, productID, categoryID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO product_categories (id, product_id, category_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (product_id, category_id) DO NOTHING
	`, uuid.New().String(), productID, categoryID)
	if err != nil {
		return fmt.Errorf("linking product %s to category %s: %w", productID, categoryID, err)
	}
	return nil
}
