package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/modera/catalog-service/internal/types"
)

// setupStoreTestDB starts a PostgreSQL container, applies the schema
// migration and returns a connected store.
func setupStoreTestDB(t *testing.T) (*Store, context.Context) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForListeningPort("5432/tcp").
					WithStartupTimeout(60*time.Second),
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(1).
					WithStartupTimeout(60*time.Second),
			),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	migration, err := os.ReadFile("../../migrations/001_init.sql")
	require.NoError(t, err)

	_, err = pool.Exec(ctx, string(migration))
	require.NoError(t, err)

	return NewStore(pool), ctx
}

func seedBrand(t *testing.T, ctx context.Context, store *Store, name, slug string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := store.pool.Exec(ctx, `
		INSERT INTO brands (id, name, slug, api_config)
		VALUES ($1, $2, $3, '{"baseUrls":{"api":"https://api.example.com"}}')
	`, id, name, slug)
	require.NoError(t, err)
	return id
}

func seedCategory(t *testing.T, ctx context.Context, store *Store, c Category) string {
	t.Helper()
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	require.NoError(t, store.CreateCategory(ctx, &c))
	return c.ID
}

func TestStoreBrandsAndCategories(t *testing.T) {
	store, ctx := setupStoreTestDB(t)

	brandID := seedBrand(t, ctx, store, "Zara", "zara")

	t.Run("GetBrand", func(t *testing.T) {
		brand, err := store.GetBrand(ctx, brandID)
		require.NoError(t, err)
		require.NotNil(t, brand)
		assert.Equal(t, "Zara", brand.Name)
		assert.True(t, brand.IsActive)
		require.NotNil(t, brand.APIConfig)
		assert.Contains(t, *brand.APIConfig, "baseUrls")
	})

	t.Run("GetBrandMissing", func(t *testing.T) {
		brand, err := store.GetBrand(ctx, uuid.New().String())
		require.NoError(t, err)
		assert.Nil(t, brand)
	})

	// Category tree:
	//   women (root, not leaf)
	//     dresses  (leaf, api_id)      -- eligible
	//     knitwear (leaf, api_id)      -- eligible
	//     archive  (leaf, api_id, inactive)
	//     lookbook (leaf, no api_id)
	rootID := seedCategory(t, ctx, store, Category{
		BrandID: brandID, Name: "Women", Slug: "women", Level: 0, IsLeaf: false, IsActive: true,
	})
	dressesID := seedCategory(t, ctx, store, Category{
		BrandID: brandID, Name: "Dresses", Slug: "dresses", ParentID: &rootID, Level: 1,
		SortOrder: 1, IsLeaf: true, IsActive: true, APIID: types.StringPtr("c-100"),
	})
	knitwearID := seedCategory(t, ctx, store, Category{
		BrandID: brandID, Name: "Knitwear", Slug: "knitwear", ParentID: &rootID, Level: 1,
		SortOrder: 2, IsLeaf: true, IsActive: true, APIID: types.StringPtr("c-200"),
	})
	seedCategory(t, ctx, store, Category{
		BrandID: brandID, Name: "Archive", Slug: "archive", ParentID: &rootID, Level: 1,
		SortOrder: 3, IsLeaf: true, IsActive: false, APIID: types.StringPtr("c-300"),
	})
	seedCategory(t, ctx, store, Category{
		BrandID: brandID, Name: "Lookbook", Slug: "lookbook", ParentID: &rootID, Level: 1,
		SortOrder: 4, IsLeaf: true, IsActive: true,
	})

	t.Run("GetCategory", func(t *testing.T) {
		c, err := store.GetCategory(ctx, dressesID)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "Dresses", c.Name)
		require.NotNil(t, c.ParentID)
		assert.Equal(t, rootID, *c.ParentID)
	})

	t.Run("ListEligibleLeafCategories", func(t *testing.T) {
		categories, err := store.ListEligibleLeafCategories(ctx, brandID)
		require.NoError(t, err)
		require.Len(t, categories, 2, "inactive and api-less leaves must be excluded")
		assert.Equal(t, "Dresses", categories[0].Name)
		assert.Equal(t, "Knitwear", categories[1].Name)
	})

	t.Run("ListEligibleLeafCategoriesUnder", func(t *testing.T) {
		categories, err := store.ListEligibleLeafCategoriesUnder(ctx, rootID)
		require.NoError(t, err)
		assert.Len(t, categories, 2)

		// A leaf root with an api id is its own subtree
		categories, err = store.ListEligibleLeafCategoriesUnder(ctx, dressesID)
		require.NoError(t, err)
		require.Len(t, categories, 1)
		assert.Equal(t, dressesID, categories[0].ID)
	})

	t.Run("ListSiblingLeafCategories", func(t *testing.T) {
		dresses, err := store.GetCategory(ctx, dressesID)
		require.NoError(t, err)

		siblings, err := store.ListSiblingLeafCategories(ctx, *dresses)
		require.NoError(t, err)
		// Knitwear and Lookbook: active leaves. Archive is inactive.
		require.Len(t, siblings, 2)
		assert.Equal(t, knitwearID, siblings[0].ID)
		assert.Equal(t, "Lookbook", siblings[1].Name)
	})

	t.Run("CategorySlugExists", func(t *testing.T) {
		exists, err := store.CategorySlugExists(ctx, brandID, "dresses")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = store.CategorySlugExists(ctx, brandID, "see-all")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("FindSeeAllCategory", func(t *testing.T) {
		c, err := store.FindSeeAllCategory(ctx, brandID, &rootID, "See All")
		require.NoError(t, err)
		assert.Nil(t, c)

		seedCategory(t, ctx, store, Category{
			BrandID: brandID, Name: "See All", Slug: "see-all", ParentID: &rootID,
			Level: 1, IsLeaf: true, IsActive: true,
		})

		c, err = store.FindSeeAllCategory(ctx, brandID, &rootID, "See All")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "see-all", c.Slug)
	})
}

func TestStoreProducts(t *testing.T) {
	store, ctx := setupStoreTestDB(t)

	brandID := seedBrand(t, ctx, store, "Pull&Bear", "pullbear")
	categoryID := seedCategory(t, ctx, store, Category{
		BrandID: brandID, Name: "Jackets", Slug: "jackets", Level: 0,
		IsLeaf: true, IsActive: true, APIID: types.StringPtr("c-900"),
	})

	colors := []types.ColorVariant{
		{
			Name:         "Black",
			Code:         "800",
			SKU:          "sku-black",
			Availability: types.AvailabilityInStock,
			Images:       []string{"https://img.example.com/black.jpg"},
			Sizes: []types.Size{
				{Label: "S", Availability: types.AvailabilityInStock, Position: 0},
				{Label: "M", Availability: types.AvailabilityOutOfStock, Position: 1},
			},
		},
		{
			Name:         "Ecru",
			Price:        3995,
			Availability: types.AvailabilityInStock,
			Sizes: []types.Size{
				{Label: "M", Availability: types.AvailabilityInStock, Position: 0},
			},
		},
	}

	product := &Product{
		ID:          uuid.New().String(),
		BrandID:     brandID,
		Name:        "Puffer Jacket",
		Slug:        "puffer-jacket",
		ProductCode: types.StringPtr("5071/533"),
		URL:         types.StringPtr("https://example.com/puffer-jacket"),
		Price:       4599,
		Currency:    "EUR",
	}
	require.NoError(t, store.CreateProduct(ctx, product, colors))

	t.Run("FindProduct", func(t *testing.T) {
		byID, err := store.FindProductByID(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, int64(4599), byID.Price)

		byCode, err := store.FindProductByCode(ctx, brandID, "5071/533")
		require.NoError(t, err)
		require.NotNil(t, byCode)
		assert.Equal(t, product.ID, byCode.ID)

		bySlug, err := store.FindProductBySlug(ctx, brandID, "puffer-jacket")
		require.NoError(t, err)
		require.NotNil(t, bySlug)

		byName, err := store.FindProductByName(ctx, brandID, "Puffer Jacket")
		require.NoError(t, err)
		require.NotNil(t, byName)

		missing, err := store.FindProductByCode(ctx, brandID, "0000/000")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("ProductSlugExists", func(t *testing.T) {
		exists, err := store.ProductSlugExists(ctx, brandID, "puffer-jacket")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = store.ProductSlugExists(ctx, brandID, "puffer-jacket-1")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("FindProductIDByCodeOrURL", func(t *testing.T) {
		id, err := store.FindProductIDByCodeOrURL(ctx, brandID, "5071/533", "")
		require.NoError(t, err)
		assert.Equal(t, product.ID, id)

		id, err = store.FindProductIDByCodeOrURL(ctx, brandID, "", "https://example.com/puffer-jacket")
		require.NoError(t, err)
		assert.Equal(t, product.ID, id)

		id, err = store.FindProductIDByCodeOrURL(ctx, brandID, "", "")
		require.NoError(t, err)
		assert.Empty(t, id)

		id, err = store.FindProductIDByCodeOrURL(ctx, brandID, "no-such-code", "https://example.com/other")
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("ListVariantTree", func(t *testing.T) {
		trees, err := store.ListVariantTree(ctx, product.ID)
		require.NoError(t, err)
		require.Len(t, trees, 2)

		black := trees[0]
		assert.Equal(t, "Black", black.Variant.ColorName)
		assert.Nil(t, black.Variant.Price, "zero color price inherits the product price")
		require.NotNil(t, black.Variant.SKU)
		assert.Equal(t, "sku-black", *black.Variant.SKU)
		require.Len(t, black.Sizes, 2)
		assert.Equal(t, "S", black.Sizes[0].Label)
		assert.Equal(t, types.AvailabilityOutOfStock, black.Sizes[1].Availability)

		ecru := trees[1]
		require.NotNil(t, ecru.Variant.Price)
		assert.Equal(t, int64(3995), *ecru.Variant.Price)
		assert.Nil(t, ecru.Variant.ColorCode)
	})

	t.Run("UpdateProductFields", func(t *testing.T) {
		product.Price = 3999
		product.Description = types.StringPtr("Water repellent puffer jacket.")
		require.NoError(t, store.UpdateProductFields(ctx, product))

		updated, err := store.FindProductByID(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, int64(3999), updated.Price)
		require.NotNil(t, updated.Description)
		assert.Equal(t, "Water repellent puffer jacket.", *updated.Description)
	})

	t.Run("ReplaceVariants", func(t *testing.T) {
		replacement := []types.ColorVariant{
			{
				Name:         "Navy",
				Availability: types.AvailabilityInStock,
				Sizes: []types.Size{
					{Label: "L", Availability: types.AvailabilityInStock, Position: 0},
				},
			},
		}
		require.NoError(t, store.ReplaceVariants(ctx, product.ID, replacement))

		trees, err := store.ListVariantTree(ctx, product.ID)
		require.NoError(t, err)
		require.Len(t, trees, 1)
		assert.Equal(t, "Navy", trees[0].Variant.ColorName)

		// Old sizes must be gone with their variants
		var orphaned int
		err = store.pool.QueryRow(ctx, `
			SELECT count(*) FROM sizes s
			LEFT JOIN color_variants v ON v.id = s.variant_id
			WHERE v.id IS NULL
		`).Scan(&orphaned)
		require.NoError(t, err)
		assert.Zero(t, orphaned)
	})

	t.Run("History", func(t *testing.T) {
		require.NoError(t, store.AppendPriceHistory(ctx, product.ID, 4599, 3999, "EUR"))
		require.NoError(t, store.AppendColorHistory(ctx, product.ID, "Ecru", ChangeRemoved))
		require.NoError(t, store.AppendSizeHistory(ctx, product.ID, "Black", "S", ChangeRemoved))

		var prices, colors, sizes int
		require.NoError(t, store.pool.QueryRow(ctx,
			`SELECT count(*) FROM price_history WHERE product_id = $1`, product.ID).Scan(&prices))
		require.NoError(t, store.pool.QueryRow(ctx,
			`SELECT count(*) FROM color_history WHERE product_id = $1`, product.ID).Scan(&colors))
		require.NoError(t, store.pool.QueryRow(ctx,
			`SELECT count(*) FROM size_history WHERE product_id = $1`, product.ID).Scan(&sizes))
		assert.Equal(t, 1, prices)
		assert.Equal(t, 1, colors)
		assert.Equal(t, 1, sizes)
	})

	t.Run("LinkProductCategory", func(t *testing.T) {
		linked, err := store.HasProductCategoryLink(ctx, product.ID, categoryID)
		require.NoError(t, err)
		assert.False(t, linked)

		require.NoError(t, store.LinkProductCategory(ctx, product.ID, categoryID))
		require.NoError(t, store.LinkProductCategory(ctx, product.ID, categoryID)) // idempotent

		linked, err = store.HasProductCategoryLink(ctx, product.ID, categoryID)
		require.NoError(t, err)
		assert.True(t, linked)

		ids, err := store.ListProductIDsForCategory(ctx, categoryID)
		require.NoError(t, err)
		require.Len(t, ids, 1)
		assert.Equal(t, product.ID, ids[0])
	})
}
