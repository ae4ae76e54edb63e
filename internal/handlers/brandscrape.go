package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/modera/catalog-service/internal/adapters/config"
)

// BrandScrapeRequest triggers a single-category crawl through a fixed brand
// adapter. ApiID overrides the category's stored external id; TestCount
// truncates the fetch for sampling runs.
type BrandScrapeRequest struct {
	CategoryID string `json:"categoryId" binding:"required"`
	ApiID      string `json:"apiId,omitempty"`
	TestCount  int    `json:"testCount,omitempty"`
}

// BrandScrapeData is the payload returned by the brand-specific triggers
type BrandScrapeData struct {
	TotalProducts   int      `json:"totalProducts"`
	CreatedProducts int      `json:"createdProducts"`
	UpdatedProducts int      `json:"updatedProducts"`
	Errors          []string `json:"errors,omitempty"`
}

// ScrapeZara handles POST /internal/scrape/zara
func (h *Handler) ScrapeZara(c *gin.Context) {
	h.scrapeSingle(c, config.BrandZara)
}

// ScrapePullBear handles POST /internal/scrape/pullbear
func (h *Handler) ScrapePullBear(c *gin.Context) {
	h.scrapeSingle(c, config.BrandPullBear)
}

// scrapeSingle runs one category through the given brand adapter, guarded by
// the failure limiter so a broken source cannot be hammered: repeated failed
// triggers for the same category lock it out for a while.
func (h *Handler) scrapeSingle(c *gin.Context, brandKey config.BrandKey) {
	var req BrandScrapeRequest
	if err := c.BindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "categoryId is required", nil)
		return
	}

	limiterID := string(brandKey) + ":" + req.CategoryID
	decision := h.limiter.Check(limiterID)
	if !decision.Allowed {
		retryIn := time.Until(decision.LockedUntil).Round(time.Second)
		respond(c, http.StatusTooManyRequests,
			fmt.Sprintf("Too many failed attempts for this category, retry in %s", retryIn), nil)
		return
	}

	if !h.runs.TryAcquire(1) {
		respond(c, http.StatusTooManyRequests, "Too many concurrent scrape runs, try again later", nil)
		return
	}
	defer h.runs.Release(1)

	result, err := h.orchestrator.ScrapeSingleCategory(c.Request.Context(), brandKey, req.CategoryID, req.ApiID, req.TestCount)
	if err != nil {
		h.limiter.RecordFailure(limiterID)
		h.respondScrapeError(c, err)
		return
	}

	h.limiter.Clear(limiterID)
	data := BrandScrapeData{
		TotalProducts:   result.Scraped,
		CreatedProducts: result.Created,
		UpdatedProducts: result.Updated,
		Errors:          result.Errors,
	}
	if result.Scraped == 0 {
		respondNoProducts(c, data)
		return
	}
	respond(c, http.StatusOK, "Scrape complete", data)
}
