package reconciler

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modera/catalog-service/internal/database"
	"github.com/modera/catalog-service/internal/types"
)

type priceRow struct {
	productID string
	oldPrice  int64
	newPrice  int64
}

type colorRow struct {
	productID string
	colorName string
	change    string
}

type sizeRow struct {
	productID string
	colorName string
	sizeLabel string
	change    string
}

// fakeStore is an in-memory Store that also logs operation order so tests
// can assert history rows land before the variant replacement.
type fakeStore struct {
	products     map[string]*database.Product
	variants     map[string][]types.ColorVariant
	links        map[string]bool
	priceHistory []priceRow
	colorHistory []colorRow
	sizeHistory  []sizeRow
	ops          []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[string]*database.Product),
		variants: make(map[string][]types.ColorVariant),
		links:    make(map[string]bool),
	}
}

func (f *fakeStore) seed(p *database.Product, colors []types.ColorVariant) {
	f.products[p.ID] = p
	f.variants[p.ID] = colors
}

func (f *fakeStore) FindProductByID(_ context.Context, id string) (*database.Product, error) {
	return f.products[id], nil
}

func (f *fakeStore) FindProductByCode(_ context.Context, brandID, code string) (*database.Product, error) {
	for _, p := range f.products {
		if p.BrandID == brandID && p.ProductCode != nil && *p.ProductCode == code {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindProductBySlug(_ context.Context, brandID, slug string) (*database.Product, error) {
	for _, p := range f.products {
		if p.BrandID == brandID && p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindProductByName(_ context.Context, brandID, name string) (*database.Product, error) {
	for _, p := range f.products {
		if p.BrandID == brandID && p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ProductSlugExists(_ context.Context, brandID, slug string) (bool, error) {
	for _, p := range f.products {
		if p.BrandID == brandID && p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateProduct(_ context.Context, p *database.Product, colors []types.ColorVariant) error {
	f.ops = append(f.ops, "create")
	f.products[p.ID] = p
	f.variants[p.ID] = colors
	return nil
}

func (f *fakeStore) UpdateProductFields(_ context.Context, p *database.Product) error {
	f.ops = append(f.ops, "update_fields")
	f.products[p.ID] = p
	return nil
}

func (f *fakeStore) ListVariantTree(_ context.Context, productID string) ([]database.VariantTree, error) {
	tree := make([]database.VariantTree, 0)
	for _, c := range f.variants[productID] {
		vt := database.VariantTree{Variant: database.ColorVariant{ProductID: productID, ColorName: c.Name}}
		for _, sz := range c.Sizes {
			vt.Sizes = append(vt.Sizes, database.Size{Label: sz.Label})
		}
		tree = append(tree, vt)
	}
	return tree, nil
}

func (f *fakeStore) ReplaceVariants(_ context.Context, productID string, colors []types.ColorVariant) error {
	f.ops = append(f.ops, "replace_variants")
	f.variants[productID] = colors
	return nil
}

func (f *fakeStore) LinkProductCategory(_ context.Context, productID, categoryID string) error {
	f.links[productID+"|"+categoryID] = true
	return nil
}

func (f *fakeStore) AppendPriceHistory(_ context.Context, productID string, oldPrice, newPrice int64, _ string) error {
	f.ops = append(f.ops, "price_history")
	f.priceHistory = append(f.priceHistory, priceRow{productID, oldPrice, newPrice})
	return nil
}

func (f *fakeStore) AppendColorHistory(_ context.Context, productID, colorName, change string) error {
	f.ops = append(f.ops, "color_history")
	f.colorHistory = append(f.colorHistory, colorRow{productID, colorName, change})
	return nil
}

func (f *fakeStore) AppendSizeHistory(_ context.Context, productID, colorName, sizeLabel, change string) error {
	f.ops = append(f.ops, "size_history")
	f.sizeHistory = append(f.sizeHistory, sizeRow{productID, colorName, sizeLabel, change})
	return nil
}

func newTestReconciler(store *fakeStore) *Reconciler {
	return New(store, zerolog.Nop())
}

func sampleProduct() types.Product {
	return types.Product{
		Name:        "Ribbed Knit Sweater",
		ProductCode: "5644/678",
		URL:         "https://example.com/ribbed-knit-sweater",
		Price:       2995,
		Currency:    "EUR",
		Colors: []types.ColorVariant{
			{
				Name:         "Black",
				Availability: types.AvailabilityInStock,
				Sizes: []types.Size{
					{Label: "S", Availability: types.AvailabilityInStock, Position: 0},
					{Label: "M", Availability: types.AvailabilityOutOfStock, Position: 1},
				},
			},
		},
	}
}

func TestSaveProductCreates(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(store)

	res, err := r.SaveProduct(context.Background(), sampleProduct(), "brand-1", "cat-1")
	require.NoError(t, err)

	assert.True(t, res.Created)
	assert.Equal(t, "ribbed-knit-sweater", res.Product.Slug)
	assert.True(t, store.links[res.Product.ID+"|cat-1"])
	assert.Len(t, store.variants[res.Product.ID], 1)
	assert.Empty(t, store.priceHistory)
	assert.Empty(t, store.colorHistory)
}

func TestCreateDefaultsAvailabilityAndSizeLabel(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(store)

	p := sampleProduct()
	p.Colors = []types.ColorVariant{
		{
			Name:  "Ecru",
			Sizes: []types.Size{{Label: "", Position: 0}},
		},
	}

	res, err := r.SaveProduct(context.Background(), p, "brand-1", "cat-1")
	require.NoError(t, err)

	stored := store.variants[res.Product.ID]
	require.Len(t, stored, 1)
	assert.Equal(t, types.AvailabilityInStock, stored[0].Availability)
	require.Len(t, stored[0].Sizes, 1)
	assert.Equal(t, DefaultSizeLabel, stored[0].Sizes[0].Label)
}

func TestSlugCollisionGetsSuffix(t *testing.T) {
	store := newFakeStore()
	store.seed(&database.Product{
		ID: "p-0", BrandID: "brand-1", Name: "Puffer Jacket (2024)", Slug: "puffer-jacket",
	}, nil)
	store.seed(&database.Product{
		ID: "p-1", BrandID: "brand-1", Name: "Puffer Jacket (2025)", Slug: "puffer-jacket-1",
	}, nil)
	r := newTestReconciler(store)

	p := sampleProduct()
	p.Name = "Puffer Jacket"
	p.ProductCode = "9999/001"

	res, err := r.SaveProduct(context.Background(), p, "brand-1", "cat-1")
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, "puffer-jacket-2", res.Product.Slug)
}

func TestMatchRoutesToUpdateNeverCreate(t *testing.T) {
	tests := []struct {
		name string
		seed func(*fakeStore)
		prep func(*types.Product)
	}{
		{
			name: "match by id",
			seed: func(s *fakeStore) {
				s.seed(&database.Product{ID: "src-1", BrandID: "brand-1", Name: "Other", Slug: "other", Price: 100}, nil)
			},
			prep: func(p *types.Product) { p.SourceID = "src-1" },
		},
		{
			name: "match by product code",
			seed: func(s *fakeStore) {
				s.seed(&database.Product{
					ID: "p-1", BrandID: "brand-1", Name: "Old Name", Slug: "old-name",
					ProductCode: types.StringPtr("5644/678"), Price: 100,
				}, nil)
			},
			prep: func(p *types.Product) {},
		},
		{
			name: "match by slug",
			seed: func(s *fakeStore) {
				s.seed(&database.Product{ID: "p-1", BrandID: "brand-1", Name: "Renamed", Slug: "ribbed-knit-sweater", Price: 100}, nil)
			},
			prep: func(p *types.Product) {
				p.ProductCode = ""
				p.Slug = "ribbed-knit-sweater"
			},
		},
		{
			name: "match by exact name",
			seed: func(s *fakeStore) {
				s.seed(&database.Product{ID: "p-1", BrandID: "brand-1", Name: "Ribbed Knit Sweater", Slug: "something-else", Price: 100}, nil)
			},
			prep: func(p *types.Product) { p.ProductCode = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			tt.seed(store)
			r := newTestReconciler(store)

			p := sampleProduct()
			tt.prep(&p)

			res, err := r.SaveProduct(context.Background(), p, "brand-1", "cat-1")
			require.NoError(t, err)
			assert.False(t, res.Created, "existing match must route to update, never create")
			assert.Len(t, store.products, 1, "no duplicate product rows")
		})
	}
}

func TestMatchPriorityCodeBeatsName(t *testing.T) {
	store := newFakeStore()
	store.seed(&database.Product{
		ID: "by-code", BrandID: "brand-1", Name: "Different Name", Slug: "different-name",
		ProductCode: types.StringPtr("5644/678"), Price: 100,
	}, nil)
	store.seed(&database.Product{
		ID: "by-name", BrandID: "brand-1", Name: "Ribbed Knit Sweater", Slug: "ribbed-knit-sweater", Price: 100,
	}, nil)
	r := newTestReconciler(store)

	res, err := r.SaveProduct(context.Background(), sampleProduct(), "brand-1", "cat-1")
	require.NoError(t, err)
	assert.Equal(t, "by-code", res.Product.ID)
}

func TestPriceHistoryGuard(t *testing.T) {
	tests := []struct {
		name         string
		storedPrice  int64
		incoming     int64
		expectedRows int
	}{
		{"price changed", 2995, 1995, 1},
		{"price unchanged", 2995, 2995, 0},
		{"no known prior price", 0, 2995, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.seed(&database.Product{
				ID: "p-1", BrandID: "brand-1", Name: "Ribbed Knit Sweater", Slug: "ribbed-knit-sweater",
				Price: tt.storedPrice, Currency: "EUR",
			}, nil)
			r := newTestReconciler(store)

			p := sampleProduct()
			p.ProductCode = ""
			p.Price = tt.incoming

			_, err := r.SaveProduct(context.Background(), p, "brand-1", "cat-1")
			require.NoError(t, err)

			require.Len(t, store.priceHistory, tt.expectedRows)
			if tt.expectedRows == 1 {
				assert.Equal(t, tt.storedPrice, store.priceHistory[0].oldPrice)
				assert.Equal(t, tt.incoming, store.priceHistory[0].newPrice)
			}
		})
	}
}

func TestColorAndSizeHistoryOnUpdate(t *testing.T) {
	store := newFakeStore()
	store.seed(&database.Product{
		ID: "p-1", BrandID: "brand-1", Name: "Ribbed Knit Sweater", Slug: "ribbed-knit-sweater", Price: 2995,
	}, []types.ColorVariant{
		{Name: "Black", Sizes: []types.Size{{Label: "S"}, {Label: "M"}}},
		{Name: "Navy", Sizes: []types.Size{{Label: "S"}}},
	})
	r := newTestReconciler(store)

	p := sampleProduct()
	p.ProductCode = ""
	p.Colors = []types.ColorVariant{
		{Name: "Black", Availability: types.AvailabilityInStock, Sizes: []types.Size{
			{Label: "S", Availability: types.AvailabilityInStock},
			{Label: "L", Availability: types.AvailabilityInStock},
		}},
		{Name: "Ecru", Availability: types.AvailabilityInStock, Sizes: []types.Size{
			{Label: "S", Availability: types.AvailabilityInStock},
		}},
	}

	_, err := r.SaveProduct(context.Background(), p, "brand-1", "cat-1")
	require.NoError(t, err)

	// Navy removed, Ecru added
	assert.ElementsMatch(t, []colorRow{
		{"p-1", "Navy", "removed"},
		{"p-1", "Ecru", "added"},
	}, store.colorHistory)

	// (Black,M) and (Navy,S) removed; (Black,L) and (Ecru,S) added
	assert.Len(t, store.sizeHistory, 4)

	// Stored variant set equals the incoming set exactly
	assert.Equal(t, p.Colors, store.variants["p-1"])
}

func TestIdenticalResaveIsIdempotent(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(store)

	p := sampleProduct()
	res, err := r.SaveProduct(context.Background(), p, "brand-1", "cat-1")
	require.NoError(t, err)
	require.True(t, res.Created)

	res2, err := r.SaveProduct(context.Background(), p, "brand-1", "cat-1")
	require.NoError(t, err)

	assert.False(t, res2.Created)
	assert.Empty(t, store.priceHistory, "re-saving identical data must not log price history")
	assert.Empty(t, store.colorHistory, "re-saving identical data must not log color history")
	assert.Empty(t, store.sizeHistory, "re-saving identical data must not log size history")
	assert.Len(t, store.products, 1)
	assert.Equal(t, p.Colors, store.variants[res.Product.ID])
}

func TestHistoryAppendedBeforeVariantReplacement(t *testing.T) {
	store := newFakeStore()
	store.seed(&database.Product{
		ID: "p-1", BrandID: "brand-1", Name: "Ribbed Knit Sweater", Slug: "ribbed-knit-sweater", Price: 1000,
	}, []types.ColorVariant{
		{Name: "Navy", Sizes: []types.Size{{Label: "S"}}},
	})
	r := newTestReconciler(store)

	p := sampleProduct()
	p.ProductCode = ""

	_, err := r.SaveProduct(context.Background(), p, "brand-1", "cat-1")
	require.NoError(t, err)

	replaceIdx := -1
	lastHistoryIdx := -1
	for i, op := range store.ops {
		switch op {
		case "replace_variants":
			replaceIdx = i
		case "price_history", "color_history", "size_history":
			lastHistoryIdx = i
		}
	}
	require.GreaterOrEqual(t, replaceIdx, 0)
	require.GreaterOrEqual(t, lastHistoryIdx, 0)
	assert.Less(t, lastHistoryIdx, replaceIdx,
		fmt.Sprintf("history must be appended before variants are replaced, got ops %v", store.ops))
}

func TestInvalidProductRejected(t *testing.T) {
	store := newFakeStore()
	r := newTestReconciler(store)

	p := sampleProduct()
	p.Name = "   "

	_, err := r.SaveProduct(context.Background(), p, "brand-1", "cat-1")
	assert.Error(t, err)
	assert.Empty(t, store.products)
}
