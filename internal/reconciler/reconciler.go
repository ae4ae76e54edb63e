// Package reconciler matches incoming canonical products against the stored
// catalog and performs diff-aware creates and updates, recording price,
// color, and size deltas as append-only history.
package reconciler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/modera/catalog-service/internal/database"
	"github.com/modera/catalog-service/internal/pkg/slug"
	"github.com/modera/catalog-service/internal/types"
)

// DefaultSizeLabel is the sentinel used when a source omits size labels
const DefaultSizeLabel = "one-size"

// Store is the catalog persistence surface the reconciler needs.
// *database.Store implements it; tests substitute a fake.
type Store interface {
	FindProductByID(ctx context.Context, id string) (*database.Product, error)
	FindProductByCode(ctx context.Context, brandID, code string) (*database.Product, error)
	FindProductBySlug(ctx context.Context, brandID, slug string) (*database.Product, error)
	FindProductByName(ctx context.Context, brandID, name string) (*database.Product, error)
	ProductSlugExists(ctx context.Context, brandID, slug string) (bool, error)
	CreateProduct(ctx context.Context, p *database.Product, colors []types.ColorVariant) error
	UpdateProductFields(ctx context.Context, p *database.Product) error
	ListVariantTree(ctx context.Context, productID string) ([]database.VariantTree, error)
	ReplaceVariants(ctx context.Context, productID string, colors []types.ColorVariant) error
	LinkProductCategory(ctx context.Context, productID, categoryID string) error
	AppendPriceHistory(ctx context.Context, productID string, oldPrice, newPrice int64, currency string) error
	AppendColorHistory(ctx context.Context, productID, colorName, change string) error
	AppendSizeHistory(ctx context.Context, productID, colorName, sizeLabel, change string) error
}

// Result reports what SaveProduct did
type Result struct {
	Product *database.Product
	Created bool
}

// Reconciler applies incoming products to the stored catalog
type Reconciler struct {
	store  Store
	logger zerolog.Logger
}

// New creates a reconciler over the given store
func New(store Store, logger zerolog.Logger) *Reconciler {
	return &Reconciler{store: store, logger: logger}
}

// SaveProduct reconciles one canonical product into the catalog. Matching is
// applied in strict priority order (id, product code, slug, exact name); the
// first hit routes to update, no hit routes to create. Each call is
// self-contained: a failure here never corrupts a sibling product's
// reconciliation.
func (r *Reconciler) SaveProduct(ctx context.Context, p types.Product, brandID, categoryID string) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid product: %w", err)
	}

	applyDefaults(&p)

	existing, err := r.match(ctx, p, brandID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		stored, err := r.create(ctx, p, brandID, categoryID)
		if err != nil {
			return nil, err
		}
		return &Result{Product: stored, Created: true}, nil
	}

	stored, err := r.update(ctx, p, existing, categoryID)
	if err != nil {
		return nil, err
	}
	return &Result{Product: stored, Created: false}, nil
}

// match applies the priority-ordered lookup. The order is deterministic and
// yields at most one candidate, so no ambiguity handling is needed.
func (r *Reconciler) match(ctx context.Context, p types.Product, brandID string) (*database.Product, error) {
	if p.SourceID != "" {
		found, err := r.store.FindProductByID(ctx, p.SourceID)
		if err != nil {
			return nil, fmt.Errorf("matching by id: %w", err)
		}
		if found != nil {
			return found, nil
		}
	}

	if p.ProductCode != "" {
		found, err := r.store.FindProductByCode(ctx, brandID, p.ProductCode)
		if err != nil {
			return nil, fmt.Errorf("matching by product code: %w", err)
		}
		if found != nil {
			return found, nil
		}
	}

	if s := p.Slug; s != "" {
		found, err := r.store.FindProductBySlug(ctx, brandID, s)
		if err != nil {
			return nil, fmt.Errorf("matching by slug: %w", err)
		}
		if found != nil {
			return found, nil
		}
	}

	found, err := r.store.FindProductByName(ctx, brandID, p.Name)
	if err != nil {
		return nil, fmt.Errorf("matching by name: %w", err)
	}
	return found, nil
}

func (r *Reconciler) create(ctx context.Context, p types.Product, brandID, categoryID string) (*database.Product, error) {
	id := p.SourceID
	if id == "" {
		id = uuid.New().String()
	}

	base := p.Slug
	if base == "" {
		base = slug.Make(p.Name)
	}
	unique, err := slug.Unique(base, func(candidate string) (bool, error) {
		return r.store.ProductSlugExists(ctx, brandID, candidate)
	})
	if err != nil {
		return nil, fmt.Errorf("resolving slug for %q: %w", p.Name, err)
	}

	stored := toStoredProduct(p, id, brandID, unique)
	if err := r.store.CreateProduct(ctx, stored, p.Colors); err != nil {
		return nil, fmt.Errorf("creating product %q: %w", p.Name, err)
	}

	if err := r.store.LinkProductCategory(ctx, stored.ID, categoryID); err != nil {
		return nil, fmt.Errorf("linking product %q to category: %w", p.Name, err)
	}

	r.logger.Debug().
		Str("product", stored.ID).
		Str("name", stored.Name).
		Int("colors", len(p.Colors)).
		Msg("Created product")

	return stored, nil
}

// update appends history rows for every detected delta BEFORE replacing the
// variant tree, so a crash between the two never hides a detected change.
func (r *Reconciler) update(ctx context.Context, p types.Product, existing *database.Product, categoryID string) (*database.Product, error) {
	oldTree, err := r.store.ListVariantTree(ctx, existing.ID)
	if err != nil {
		return nil, fmt.Errorf("loading variants for product %s: %w", existing.ID, err)
	}

	if ShouldLogPriceChange(existing.Price, p.Price) {
		if err := r.store.AppendPriceHistory(ctx, existing.ID, existing.Price, p.Price, p.Currency); err != nil {
			return nil, err
		}
		r.logger.Info().
			Str("product", existing.ID).
			Int64("old_price", existing.Price).
			Int64("new_price", p.Price).
			Msg("Price change recorded")
	}

	oldColors, oldSizes := treeKeys(oldTree)
	newColors, newSizes := incomingKeys(p.Colors)

	for _, change := range DiffColors(oldColors, newColors) {
		if err := r.store.AppendColorHistory(ctx, existing.ID, change.ColorName, change.Change); err != nil {
			return nil, err
		}
	}
	for _, change := range DiffSizes(oldSizes, newSizes) {
		if err := r.store.AppendSizeHistory(ctx, existing.ID, change.ColorName, change.SizeLabel, change.Change); err != nil {
			return nil, err
		}
	}

	if err := r.store.ReplaceVariants(ctx, existing.ID, p.Colors); err != nil {
		return nil, fmt.Errorf("replacing variants for product %s: %w", existing.ID, err)
	}

	updated, err := r.refreshFields(ctx, p, existing)
	if err != nil {
		return nil, err
	}

	if err := r.store.LinkProductCategory(ctx, updated.ID, categoryID); err != nil {
		return nil, fmt.Errorf("linking product %s to category: %w", updated.ID, err)
	}

	return updated, nil
}

// refreshFields overwrites the descriptive fields unconditionally with the
// incoming values. A renamed product gets a fresh brand-unique slug; its own
// current slug is treated as free so an unchanged name is a no-op.
func (r *Reconciler) refreshFields(ctx context.Context, p types.Product, existing *database.Product) (*database.Product, error) {
	base := p.Slug
	if base == "" {
		base = slug.Make(p.Name)
	}

	newSlug := existing.Slug
	if base != existing.Slug {
		resolved, err := slug.Unique(base, func(candidate string) (bool, error) {
			if candidate == existing.Slug {
				return false, nil
			}
			return r.store.ProductSlugExists(ctx, existing.BrandID, candidate)
		})
		if err != nil {
			return nil, fmt.Errorf("resolving slug for %q: %w", p.Name, err)
		}
		newSlug = resolved
	}

	updated := toStoredProduct(p, existing.ID, existing.BrandID, newSlug)
	updated.CreatedAt = existing.CreatedAt

	if err := r.store.UpdateProductFields(ctx, updated); err != nil {
		return nil, fmt.Errorf("updating product %s: %w", existing.ID, err)
	}
	return updated, nil
}

// applyDefaults fills the gaps sources are allowed to leave: unspecified
// variant availability becomes in-stock, missing size labels become the
// one-size sentinel.
func applyDefaults(p *types.Product) {
	for i := range p.Colors {
		color := &p.Colors[i]
		if color.Availability == "" || color.Availability == types.AvailabilityUnknown {
			color.Availability = types.AvailabilityInStock
		}
		for j := range color.Sizes {
			size := &color.Sizes[j]
			if size.Label == "" {
				size.Label = DefaultSizeLabel
			}
			if size.Availability == "" {
				size.Availability = types.AvailabilityUnknown
			}
		}
	}
}

func treeKeys(tree []database.VariantTree) ([]string, []SizeKey) {
	colors := make([]string, 0, len(tree))
	sizes := make([]SizeKey, 0)
	for _, vt := range tree {
		colors = append(colors, vt.Variant.ColorName)
		for _, sz := range vt.Sizes {
			sizes = append(sizes, SizeKey{ColorName: vt.Variant.ColorName, SizeLabel: sz.Label})
		}
	}
	return colors, sizes
}

func incomingKeys(colors []types.ColorVariant) ([]string, []SizeKey) {
	names := make([]string, 0, len(colors))
	sizes := make([]SizeKey, 0)
	for _, c := range colors {
		names = append(names, c.Name)
		for _, sz := range c.Sizes {
			sizes = append(sizes, SizeKey{ColorName: c.Name, SizeLabel: sz.Label})
		}
	}
	return names, sizes
}

func toStoredProduct(p types.Product, id, brandID, productSlug string) *database.Product {
	return &database.Product{
		ID:               id,
		BrandID:          brandID,
		Name:             p.Name,
		Slug:             productSlug,
		ProductCode:      nullable(p.ProductCode),
		URL:              nullable(p.URL),
		Description:      nullable(p.Description),
		MetaTitle:        nullable(p.MetaTitle),
		MetaDescription:  nullable(p.MetaDescription),
		Composition:      nullable(p.Composition),
		CareInstructions: nullable(p.CareInstructions),
		Price:            p.Price,
		Currency:         p.Currency,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
