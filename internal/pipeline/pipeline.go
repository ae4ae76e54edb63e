// Package pipeline orchestrates bulk catalog crawls: it enumerates a brand's
// eligible leaf categories, fetches each one through the brand's source
// adapter and reconciles every product into the catalog. Failures are
// isolated per category and per product so one broken row never aborts a run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/modera/catalog-service/internal/adapters/config"
	"github.com/modera/catalog-service/internal/adapters/registry"
	"github.com/modera/catalog-service/internal/brandconfig"
	"github.com/modera/catalog-service/internal/database"
	"github.com/modera/catalog-service/internal/pkg/runid"
	"github.com/modera/catalog-service/internal/reconciler"
	"github.com/modera/catalog-service/internal/types"
)

var (
	// ErrBrandNotFound is returned when the brand id is unknown
	ErrBrandNotFound = errors.New("brand not found")
	// ErrCategoryNotFound is returned when the category id is unknown
	ErrCategoryNotFound = errors.New("category not found")
	// ErrNoEligibleCategories is returned when a run has nothing to crawl
	ErrNoEligibleCategories = errors.New("no eligible leaf categories")
	// ErrNoUsableURL is returned when the brand config cannot resolve a
	// category URL for an adapter that requires one
	ErrNoUsableURL = errors.New("no usable API URL configured for category")
)

// Store is the catalog surface the orchestrator needs.
// *database.Store implements it; tests substitute a fake.
type Store interface {
	GetBrand(ctx context.Context, id string) (*database.Brand, error)
	GetCategory(ctx context.Context, id string) (*database.Category, error)
	ListEligibleLeafCategories(ctx context.Context, brandID string) ([]database.Category, error)
	ListEligibleLeafCategoriesUnder(ctx context.Context, categoryID string) ([]database.Category, error)
	LinkProductCategory(ctx context.Context, productID, categoryID string) error
}

// Saver reconciles one product into the catalog
type Saver interface {
	SaveProduct(ctx context.Context, p types.Product, brandID, categoryID string) (*reconciler.Result, error)
}

// Result represents the outcome of a scrape run
type Result struct {
	RunID               string   `json:"runId"`
	Scraped             int      `json:"totalProductsScraped"`
	Created             int      `json:"totalProductsCreated"`
	Updated             int      `json:"totalProductsUpdated"`
	CategoriesProcessed int      `json:"categoriesProcessed"`
	TotalCategories     int      `json:"totalCategories"`
	Errors              []string `json:"errors,omitempty"`
}

// Orchestrator drives scrape runs over the adapter registry
type Orchestrator struct {
	store    Store
	registry *registry.Registry
	saver    Saver
	logger   zerolog.Logger
	timeout  time.Duration
}

// New creates an orchestrator. timeout bounds a whole run; zero means no limit.
func New(store Store, reg *registry.Registry, saver Saver, logger zerolog.Logger, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		store:    store,
		registry: reg,
		saver:    saver,
		logger:   logger,
		timeout:  timeout,
	}
}

// ScrapeBrand crawls every eligible leaf category of a brand
func (o *Orchestrator) ScrapeBrand(ctx context.Context, brandID string) (*Result, error) {
	brand, err := o.store.GetBrand(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("loading brand: %w", err)
	}
	if brand == nil {
		return nil, ErrBrandNotFound
	}

	categories, err := o.store.ListEligibleLeafCategories(ctx, brand.ID)
	if err != nil {
		return nil, fmt.Errorf("listing eligible categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, ErrNoEligibleCategories
	}

	return o.run(ctx, brand, categories), nil
}

// ScrapeCategorySubtree crawls the eligible leaf categories at or below the
// given category
func (o *Orchestrator) ScrapeCategorySubtree(ctx context.Context, categoryID string) (*Result, error) {
	category, err := o.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("loading category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	brand, err := o.store.GetBrand(ctx, category.BrandID)
	if err != nil {
		return nil, fmt.Errorf("loading brand: %w", err)
	}
	if brand == nil {
		return nil, ErrBrandNotFound
	}

	categories, err := o.store.ListEligibleLeafCategoriesUnder(ctx, category.ID)
	if err != nil {
		return nil, fmt.Errorf("listing subtree categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, ErrNoEligibleCategories
	}

	return o.run(ctx, brand, categories), nil
}

// ScrapeSingleCategory crawls exactly one category through a fixed brand
// adapter. apiIDOverride, when non-empty, replaces the category's stored
// external id; limit > 0 truncates the fetched products for sampling runs.
func (o *Orchestrator) ScrapeSingleCategory(ctx context.Context, brandKey config.BrandKey, categoryID, apiIDOverride string, limit int) (*Result, error) {
	category, err := o.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("loading category: %w", err)
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	brand, err := o.store.GetBrand(ctx, category.BrandID)
	if err != nil {
		return nil, fmt.Errorf("loading brand: %w", err)
	}
	if brand == nil {
		return nil, ErrBrandNotFound
	}

	adapter, ok := o.registry.Get(brandKey)
	if !ok {
		return nil, fmt.Errorf("no adapter implementation for brand: %s", brandKey)
	}

	if apiIDOverride != "" {
		category.APIID = &apiIDOverride
	}
	if category.APIID == nil || *category.APIID == "" {
		return nil, ErrNoUsableURL
	}

	cfg := brandconfig.Parse(brand.APIConfig)
	handle, err := o.resolveHandle(adapter, cfg, *category.APIID)
	if err != nil {
		return nil, err
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	runID := runid.New("scrape")
	result := &Result{RunID: runID, TotalCategories: 1, Errors: make([]string, 0)}
	seen := make(map[string]string)

	start := time.Now()
	o.scrapeCategory(ctx, brand, *category, adapter, handle, limit, seen, result)
	o.observeRun(string(brandKey), result, time.Since(start))

	return result, nil
}

// run executes a scrape over the given categories, resolving the adapter from
// the brand name
func (o *Orchestrator) run(ctx context.Context, brand *database.Brand, categories []database.Category) *Result {
	runID := runid.New("scrape")
	result := &Result{
		RunID:           runID,
		TotalCategories: len(categories),
		Errors:          make([]string, 0),
	}

	brandKey := config.NormalizeBrandKey(brand.Name)
	logger := o.logger.With().
		Str("run_id", runID).
		Str("brand", brand.Name).
		Logger()

	adapter, err := o.registry.GetByName(brand.Name)
	if err != nil {
		logger.Warn().Str("brand_key", string(brandKey)).Msg("No adapter for brand, skipping run")
		result.Errors = append(result.Errors, err.Error())
		scrapeRuns.WithLabelValues(string(brandKey), "failed").Inc()
		return result
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	cfg := brandconfig.Parse(brand.APIConfig)
	seen := make(map[string]string)

	logger.Info().Int("categories", len(categories)).Msg("Starting scrape run")
	start := time.Now()

	for _, category := range categories {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("run aborted: %v", ctx.Err()))
			break
		}

		handle, err := o.resolveHandle(adapter, cfg, derefOrEmpty(category.APIID))
		if err != nil {
			logger.Warn().
				Str("category", category.Name).
				Msg("Category has no resolvable source URL, skipping")
			categoriesScraped.WithLabelValues(string(brandKey), "skipped").Inc()
			continue
		}

		o.scrapeCategory(ctx, brand, category, adapter, handle, 0, seen, result)
	}

	o.observeRun(string(brandKey), result, time.Since(start))
	logger.Info().
		Int("scraped", result.Scraped).
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("categories", result.CategoriesProcessed).
		Int("errors", len(result.Errors)).
		Dur("duration", time.Since(start)).
		Msg("Scrape run complete")

	return result
}

// scrapeCategory fetches one category and reconciles its products. seen maps
// a product's code-or-URL key to its stored id so overlapping categories only
// add a link instead of reconciling the same product twice in a run.
func (o *Orchestrator) scrapeCategory(
	ctx context.Context,
	brand *database.Brand,
	category database.Category,
	adapter registry.SourceAdapter,
	handle string,
	limit int,
	seen map[string]string,
	result *Result,
) {
	brandKey := string(adapter.Key())

	products, err := adapter.ScrapeCategoryProducts(ctx, handle, limit)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("category %s: %v", category.Name, err))
		categoriesScraped.WithLabelValues(brandKey, "error").Inc()
		return
	}

	categoryProducts.Observe(float64(len(products)))

	for _, product := range products {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("run aborted: %v", ctx.Err()))
			return
		}

		key := dedupeKey(product)
		if key != "" {
			if id, ok := seen[key]; ok {
				if err := o.store.LinkProductCategory(ctx, id, category.ID); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("linking %s to %s: %v", product.Name, category.Name, err))
				}
				continue
			}
		}

		res, err := o.saver.SaveProduct(ctx, product, brand.ID, category.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("product %s in %s: %v", product.Name, category.Name, err))
			productsScraped.WithLabelValues(brandKey, "error").Inc()
			continue
		}

		result.Scraped++
		if res.Created {
			result.Created++
			productsScraped.WithLabelValues(brandKey, "created").Inc()
		} else {
			result.Updated++
			productsScraped.WithLabelValues(brandKey, "updated").Inc()
		}
		if key != "" {
			seen[key] = res.Product.ID
		}
	}

	result.CategoriesProcessed++
	categoriesScraped.WithLabelValues(brandKey, "ok").Inc()
}

// resolveHandle turns a category's external id into the adapter's handle:
// a fully built URL for endpoint-keyed adapters, the raw id otherwise.
func (o *Orchestrator) resolveHandle(adapter registry.SourceAdapter, cfg *brandconfig.Config, apiID string) (string, error) {
	if apiID == "" {
		return "", ErrNoUsableURL
	}
	if adapter.EndpointKey() == "" {
		return apiID, nil
	}
	url := cfg.BuildURL(adapter.EndpointKey(), map[string]string{"categoryId": apiID})
	if url == "" {
		return "", ErrNoUsableURL
	}
	return url, nil
}

func (o *Orchestrator) observeRun(brandKey string, result *Result, elapsed time.Duration) {
	scrapeDuration.WithLabelValues(brandKey).Observe(elapsed.Seconds())
	status := "completed"
	if len(result.Errors) > 0 && result.Scraped == 0 {
		status = "failed"
	}
	scrapeRuns.WithLabelValues(brandKey, status).Inc()
}

// dedupeKey identifies a product across overlapping categories within a run
func dedupeKey(p types.Product) string {
	if p.ProductCode != "" {
		return "code:" + p.ProductCode
	}
	if p.URL != "" {
		return "url:" + p.URL
	}
	return ""
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
