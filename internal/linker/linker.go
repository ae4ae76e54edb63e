// Package linker maintains the "See All" catch-all categories: leaf
// categories that aggregate every product of their sibling categories so a
// storefront can render a flat view of a whole category group.
package linker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/modera/catalog-service/internal/database"
	"github.com/modera/catalog-service/internal/pkg/slug"
)

// SeeAllName is the display name given to auto-created catch-all categories
const SeeAllName = "See All"

// Store is the category persistence surface the linker needs.
// *database.Store implements it; tests substitute a fake.
type Store interface {
	GetCategory(ctx context.Context, id string) (*database.Category, error)
	ListSiblingLeafCategories(ctx context.Context, c database.Category) ([]database.Category, error)
	ListProductIDsForCategory(ctx context.Context, categoryID string) ([]string, error)
	HasProductCategoryLink(ctx context.Context, productID, categoryID string) (bool, error)
	LinkProductCategory(ctx context.Context, productID, categoryID string) error
	FindSeeAllCategory(ctx context.Context, brandID string, parentID *string, name string) (*database.Category, error)
	CategorySlugExists(ctx context.Context, brandID, slug string) (bool, error)
	CreateCategory(ctx context.Context, c *database.Category) error
}

// Result reports what a linking run did
type Result struct {
	TotalProductsLinked        int `json:"totalProductsLinked"`
	SiblingCategoriesProcessed int `json:"siblingCategoriesProcessed"`
}

// Linker associates sibling-category products with a see-all category
type Linker struct {
	store  Store
	logger zerolog.Logger
}

// New creates a linker over the given store
func New(store Store, logger zerolog.Logger) *Linker {
	return &Linker{store: store, logger: logger}
}

// ErrCategoryNotFound is returned when the see-all category id is unknown
var ErrCategoryNotFound = fmt.Errorf("category not found")

// LinkSiblingsToSeeAll links every product of the see-all category's sibling
// leaf categories to the see-all category itself. Links are idempotent: a
// product already linked is skipped, so re-runs only pick up new products.
func (l *Linker) LinkSiblingsToSeeAll(ctx context.Context, seeAllCategoryID string) (*Result, error) {
	seeAll, err := l.store.GetCategory(ctx, seeAllCategoryID)
	if err != nil {
		return nil, fmt.Errorf("loading see-all category: %w", err)
	}
	if seeAll == nil {
		return nil, ErrCategoryNotFound
	}

	siblings, err := l.store.ListSiblingLeafCategories(ctx, *seeAll)
	if err != nil {
		return nil, fmt.Errorf("listing sibling categories: %w", err)
	}

	result := &Result{}
	for _, sibling := range siblings {
		productIDs, err := l.store.ListProductIDsForCategory(ctx, sibling.ID)
		if err != nil {
			l.logger.Error().Err(err).
				Str("category_id", sibling.ID).
				Str("category", sibling.Name).
				Msg("Failed to list category products, skipping")
			continue
		}

		linked := 0
		for _, productID := range productIDs {
			exists, err := l.store.HasProductCategoryLink(ctx, productID, seeAll.ID)
			if err != nil {
				l.logger.Error().Err(err).Str("product_id", productID).Msg("Link existence check failed")
				continue
			}
			if exists {
				continue
			}
			if err := l.store.LinkProductCategory(ctx, productID, seeAll.ID); err != nil {
				l.logger.Error().Err(err).Str("product_id", productID).Msg("Failed to link product")
				continue
			}
			linked++
		}

		result.TotalProductsLinked += linked
		result.SiblingCategoriesProcessed++

		l.logger.Debug().
			Str("category", sibling.Name).
			Int("products", len(productIDs)).
			Int("linked", linked).
			Msg("Processed sibling category")
	}

	l.logger.Info().
		Str("see_all_id", seeAll.ID).
		Int("siblings", result.SiblingCategoriesProcessed).
		Int("linked", result.TotalProductsLinked).
		Msg("See-all linking complete")

	return result, nil
}

// EnsureSeeAll returns the see-all category under the given parent, creating
// it on first use. The created category is a leaf positioned after its
// siblings; its slug is brand-unique.
func (l *Linker) EnsureSeeAll(ctx context.Context, brandID string, parentID *string) (*database.Category, error) {
	existing, err := l.store.FindSeeAllCategory(ctx, brandID, parentID, SeeAllName)
	if err != nil {
		return nil, fmt.Errorf("looking up see-all category: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	level := 0
	if parentID != nil {
		parent, err := l.store.GetCategory(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("loading parent category: %w", err)
		}
		if parent == nil {
			return nil, ErrCategoryNotFound
		}
		level = parent.Level + 1
	}

	categorySlug, err := slug.Unique(slug.Make(SeeAllName), func(candidate string) (bool, error) {
		return l.store.CategorySlugExists(ctx, brandID, candidate)
	})
	if err != nil {
		return nil, fmt.Errorf("resolving see-all slug: %w", err)
	}

	category := &database.Category{
		ID:       uuid.New().String(),
		BrandID:  brandID,
		Name:     SeeAllName,
		Slug:     categorySlug,
		ParentID: parentID,
		Level:    level,
		IsLeaf:   true,
		IsActive: true,
	}
	if err := l.store.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("creating see-all category: %w", err)
	}

	l.logger.Info().
		Str("category_id", category.ID).
		Str("slug", category.Slug).
		Msg("Created see-all category")

	return category, nil
}
