package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/modera/catalog-service/internal/types"
)

const productColumns = `id, brand_id, name, slug, product_code, url, description, meta_title,
	meta_description, composition, care_instructions, price, currency, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.BrandID, &p.Name, &p.Slug, &p.ProductCode, &p.URL,
		&p.Description, &p.MetaTitle, &p.MetaDescription, &p.Composition,
		&p.CareInstructions, &p.Price, &p.Currency, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindProductByID returns a product by id, or nil when absent
func (s *Store) FindProductByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("querying product %s: %w", id, err)
	}
	return p, nil
}

// FindProductByCode returns a brand's product by external product code
func (s *Store) FindProductByCode(ctx context.Context, brandID, code string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE brand_id = $1 AND product_code = $2 LIMIT 1
	`, brandID, code))
	if err != nil {
		return nil, fmt.Errorf("querying product by code %q: %w", code, err)
	}
	return p, nil
}

// FindProductBySlug returns a brand's product by slug
func (s *Store) FindProductBySlug(ctx context.Context, brandID, slug string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE brand_id = $1 AND slug = $2 LIMIT 1
	`, brandID, slug))
	if err != nil {
		return nil, fmt.Errorf("querying product by slug %q: %w", slug, err)
	}
	return p, nil
}

// FindProductByName returns a brand's product by exact, case-sensitive name
func (s *Store) FindProductByName(ctx context.Context, brandID, name string) (*Product, error) {
	p, err := scanProduct(s.pool.QueryRow(ctx, `
		SELECT `+productColumns+` FROM products WHERE brand_id = $1 AND name = $2 LIMIT 1
	`, brandID, name))
	if err != nil {
		return nil, fmt.Errorf("querying product by name %q: %w", name, err)
	}
	return p, nil
}

// ProductSlugExists reports whether a product slug is taken within a brand
func (s *Store) ProductSlugExists(ctx context.Context, brandID, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM products WHERE brand_id = $1 AND slug = $2)
	`, brandID, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking product slug %q: %w", slug, err)
	}
	return exists, nil
}

// FindProductIDByCodeOrURL returns the id of a brand's product matching the
// product code or URL, or "" when none does. Used by the orchestrator to
// dedupe products shared across overlapping category listings.
func (s *Store) FindProductIDByCodeOrURL(ctx context.Context, brandID, code, url string) (string, error) {
	if code == "" && url == "" {
		return "", nil
	}

	var id string
	err := s.pool.QueryRow(ctx, `
		SELECT id FROM products
		WHERE brand_id = $1
		  AND (($2 <> '' AND product_code = $2) OR ($3 <> '' AND url = $3))
		LIMIT 1
	`, brandID, code, url).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying product by code/url: %w", err)
	}
	return id, nil
}

// CreateProduct inserts a product together with its full variant/size tree
// in one transaction
func (s *Store) CreateProduct(ctx context.Context, p *Product, colors []types.ColorVariant) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning create transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO products (id, brand_id, name, slug, product_code, url, description,
		                      meta_title, meta_description, composition, care_instructions,
		                      price, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, p.ID, p.BrandID, p.Name, p.Slug, p.ProductCode, p.URL, p.Description,
		p.MetaTitle, p.MetaDescription, p.Composition, p.CareInstructions,
		p.Price, p.Currency, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting product %q: %w", p.Name, err)
	}

	if err := insertVariantTree(ctx, tx, p.ID, colors); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateProductFields overwrites the descriptive fields unconditionally and
// bumps updated_at
func (s *Store) UpdateProductFields(ctx context.Context, p *Product) error {
	p.UpdatedAt = time.Now()

	_, err := s.pool.Exec(ctx, `
		UPDATE products
		SET name = $1, slug = $2, product_code = $3, url = $4, description = $5,
		    meta_title = $6, meta_description = $7, composition = $8,
		    care_instructions = $9, price = $10, currency = $11, updated_at = $12
		WHERE id = $13
	`, p.Name, p.Slug, p.ProductCode, p.URL, p.Description,
		p.MetaTitle, p.MetaDescription, p.Composition,
		p.CareInstructions, p.Price, p.Currency, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("updating product %s: %w", p.ID, err)
	}
	return nil
}

// VariantTree is a stored color variant together with its sizes
type VariantTree struct {
	Variant ColorVariant
	Sizes   []Size
}

// ListVariantTree returns a product's stored variants with their sizes, in
// position order
func (s *Store) ListVariantTree(ctx context.Context, productID string) ([]VariantTree, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, color_name, color_code, display_color, sku, price,
		       availability, position, images, created_at
		FROM color_variants
		WHERE product_id = $1
		ORDER BY position
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("querying variants for product %s: %w", productID, err)
	}
	defer rows.Close()

	trees := make([]VariantTree, 0)
	for rows.Next() {
		var v ColorVariant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.ColorName, &v.ColorCode, &v.DisplayColor,
			&v.SKU, &v.Price, &v.Availability, &v.Position, &v.Images, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning variant: %w", err)
		}
		trees = append(trees, VariantTree{Variant: v})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range trees {
		sizes, err := s.listSizes(ctx, trees[i].Variant.ID)
		if err != nil {
			return nil, err
		}
		trees[i].Sizes = sizes
	}
	return trees, nil
}

func (s *Store) listSizes(ctx context.Context, variantID string) ([]Size, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, variant_id, label, availability, selected, position, created_at
		FROM sizes
		WHERE variant_id = $1
		ORDER BY position
	`, variantID)
	if err != nil {
		return nil, fmt.Errorf("querying sizes for variant %s: %w", variantID, err)
	}
	defer rows.Close()

	sizes := make([]Size, 0)
	for rows.Next() {
		var sz Size
		if err := rows.Scan(&sz.ID, &sz.VariantID, &sz.Label, &sz.Availability,
			&sz.Selected, &sz.Position, &sz.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning size: %w", err)
		}
		sizes = append(sizes, sz)
	}
	return sizes, rows.Err()
}

// ReplaceVariants deletes a product's entire variant tree (sizes cascade)
// and re-inserts the incoming one, in a single transaction. Partial variant
// updates are not supported.
func (s *Store) ReplaceVariants(ctx context.Context, productID string, colors []types.ColorVariant) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning replace transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM color_variants WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("deleting variants for product %s: %w", productID, err)
	}

	if err := insertVariantTree(ctx, tx, productID, colors); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertVariantTree(ctx context.Context, tx pgx.Tx, productID string, colors []types.ColorVariant) error {
	for i, color := range colors {
		variantID := uuid.New().String()

		var price *int64
		if color.Price > 0 {
			price = types.Int64Ptr(color.Price)
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO color_variants (id, product_id, color_name, color_code, display_color,
			                            sku, price, availability, position, images, created_at)
			VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, NOW())
		`, variantID, productID, color.Name, color.Code, color.DisplayColor,
			color.SKU, price, string(color.Availability), i, color.Images)
		if err != nil {
			return fmt.Errorf("inserting variant %q: %w", color.Name, err)
		}

		for _, size := range color.Sizes {
			// size.Position carries the source ordering, preserved for display
			_, err := tx.Exec(ctx, `
				INSERT INTO sizes (id, variant_id, label, availability, selected, position, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, NOW())
			`, uuid.New().String(), variantID, size.Label, string(size.Availability), size.Selected, size.Position)
			if err != nil {
				return fmt.Errorf("inserting size %q for variant %q: %w", size.Label, color.Name, err)
			}
		}
	}
	return nil
}
