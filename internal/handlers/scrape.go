// Package handlers exposes the internal HTTP surface: scrape triggers,
// see-all linking, and health.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/modera/catalog-service/internal/adapters/config"
	"github.com/modera/catalog-service/internal/database"
	"github.com/modera/catalog-service/internal/linker"
	"github.com/modera/catalog-service/internal/pipeline"
	"github.com/modera/catalog-service/internal/pkg/attempts"
)

// Orchestrator is the scrape surface the handlers drive
type Orchestrator interface {
	ScrapeBrand(ctx context.Context, brandID string) (*pipeline.Result, error)
	ScrapeCategorySubtree(ctx context.Context, categoryID string) (*pipeline.Result, error)
	ScrapeSingleCategory(ctx context.Context, brandKey config.BrandKey, categoryID, apiIDOverride string, limit int) (*pipeline.Result, error)
}

// SeeAllLinker links sibling-category products into a see-all category,
// creating the category on first use when the request addresses it by parent
type SeeAllLinker interface {
	LinkSiblingsToSeeAll(ctx context.Context, seeAllCategoryID string) (*linker.Result, error)
	EnsureSeeAll(ctx context.Context, brandID string, parentID *string) (*database.Category, error)
}

// Handler carries the dependencies of the internal endpoints
type Handler struct {
	orchestrator Orchestrator
	linker       SeeAllLinker
	limiter      *attempts.Limiter
	logger       zerolog.Logger
	// runs bounds concurrent scrape runs so a burst of triggers cannot
	// exhaust the outbound connection budget
	runs *semaphore.Weighted
}

// NewHandler creates the handler set. maxConcurrentRuns bounds simultaneous
// scrape runs; values below 1 are clamped to 1.
func NewHandler(orchestrator Orchestrator, seeAll SeeAllLinker, limiter *attempts.Limiter, logger zerolog.Logger, maxConcurrentRuns int64) *Handler {
	if maxConcurrentRuns < 1 {
		maxConcurrentRuns = 1
	}
	return &Handler{
		orchestrator: orchestrator,
		linker:       seeAll,
		limiter:      limiter,
		logger:       logger,
		runs:         semaphore.NewWeighted(maxConcurrentRuns),
	}
}

// ScrapeBrandRequest triggers a crawl of every eligible category of a brand
type ScrapeBrandRequest struct {
	BrandID   string `json:"brandId" binding:"required"`
	BrandName string `json:"brandName" binding:"required"`
}

// ScrapeCategoryRequest triggers a crawl of a category subtree
type ScrapeCategoryRequest struct {
	CategoryID   string `json:"categoryId" binding:"required"`
	CategoryName string `json:"categoryName" binding:"required"`
}

// ScrapeBrand handles POST /internal/scrape/brand
func (h *Handler) ScrapeBrand(c *gin.Context) {
	var req ScrapeBrandRequest
	if err := c.BindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "brandId and brandName are required", nil)
		return
	}

	if !h.runs.TryAcquire(1) {
		respond(c, http.StatusTooManyRequests, "Too many concurrent scrape runs, try again later", nil)
		return
	}
	defer h.runs.Release(1)

	result, err := h.orchestrator.ScrapeBrand(c.Request.Context(), req.BrandID)
	if err != nil {
		h.respondScrapeError(c, err)
		return
	}

	if result.Scraped == 0 {
		respondNoProducts(c, result)
		return
	}
	respond(c, http.StatusOK, "Brand scrape complete", result)
}

// ScrapeCategory handles POST /internal/scrape/category
func (h *Handler) ScrapeCategory(c *gin.Context) {
	var req ScrapeCategoryRequest
	if err := c.BindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "categoryId and categoryName are required", nil)
		return
	}

	if !h.runs.TryAcquire(1) {
		respond(c, http.StatusTooManyRequests, "Too many concurrent scrape runs, try again later", nil)
		return
	}
	defer h.runs.Release(1)

	result, err := h.orchestrator.ScrapeCategorySubtree(c.Request.Context(), req.CategoryID)
	if err != nil {
		h.respondScrapeError(c, err)
		return
	}

	if result.Scraped == 0 {
		respondNoProducts(c, result)
		return
	}
	respond(c, http.StatusOK, "Category scrape complete", result)
}

// LinkSeeAllRequest asks for sibling products to be linked into a see-all
// category. Either seeAllCategoryId names an existing category, or brandId
// (plus an optional parentCategoryId) asks for the category to be created
// under that parent first.
type LinkSeeAllRequest struct {
	SeeAllCategoryID string  `json:"seeAllCategoryId,omitempty"`
	BrandID          string  `json:"brandId,omitempty"`
	ParentCategoryID *string `json:"parentCategoryId,omitempty"`
}

// LinkSeeAll handles POST /internal/categories/link-see-all
func (h *Handler) LinkSeeAll(c *gin.Context) {
	var req LinkSeeAllRequest
	if err := c.BindJSON(&req); err != nil || (req.SeeAllCategoryID == "" && req.BrandID == "") {
		respond(c, http.StatusBadRequest, "seeAllCategoryId or brandId is required", nil)
		return
	}

	seeAllID := req.SeeAllCategoryID
	if seeAllID == "" {
		category, err := h.linker.EnsureSeeAll(c.Request.Context(), req.BrandID, req.ParentCategoryID)
		if err != nil {
			if errors.Is(err, linker.ErrCategoryNotFound) {
				respond(c, http.StatusNotFound, "Parent category not found", nil)
				return
			}
			h.logger.Error().Err(err).Str("brand_id", req.BrandID).Msg("See-all category creation failed")
			respond(c, http.StatusInternalServerError, "Linking failed", nil)
			return
		}
		seeAllID = category.ID
	}

	result, err := h.linker.LinkSiblingsToSeeAll(c.Request.Context(), seeAllID)
	if err != nil {
		if errors.Is(err, linker.ErrCategoryNotFound) {
			respond(c, http.StatusNotFound, "Category not found", nil)
			return
		}
		h.logger.Error().Err(err).Str("category_id", seeAllID).Msg("See-all linking failed")
		respond(c, http.StatusInternalServerError, "Linking failed", nil)
		return
	}

	respond(c, http.StatusOK, "See-all linking complete", result)
}

// respondScrapeError maps orchestrator errors onto HTTP statuses
func (h *Handler) respondScrapeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pipeline.ErrBrandNotFound):
		respond(c, http.StatusNotFound, "Brand not found", nil)
	case errors.Is(err, pipeline.ErrCategoryNotFound):
		respond(c, http.StatusNotFound, "Category not found", nil)
	case errors.Is(err, pipeline.ErrNoEligibleCategories):
		respond(c, http.StatusBadRequest, "No eligible leaf categories to scrape", nil)
	case errors.Is(err, pipeline.ErrNoUsableURL):
		respond(c, http.StatusBadRequest, "Brand has no usable API URL configured for this category", nil)
	default:
		h.logger.Error().Err(err).Msg("Scrape run failed")
		respond(c, http.StatusInternalServerError, "Scrape failed", nil)
	}
}
