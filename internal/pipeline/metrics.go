package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// productsScraped tracks reconciled products per brand and outcome.
	productsScraped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_scrape_products_total",
		Help: "Total number of products processed by brand and outcome",
	}, []string{"brand", "outcome"}) // outcome: created, updated, error

	// categoriesScraped tracks processed categories per brand.
	categoriesScraped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_scrape_categories_total",
		Help: "Total number of categories processed by brand and outcome",
	}, []string{"brand", "outcome"}) // outcome: ok, skipped, error

	// scrapeRuns tracks whole scrape runs per brand.
	scrapeRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_scrape_runs_total",
		Help: "Total number of scrape runs by brand and status",
	}, []string{"brand", "status"}) // status: completed, failed

	// scrapeDuration tracks how long a whole scrape run takes per brand.
	scrapeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_scrape_run_duration_seconds",
		Help:    "Duration of scrape runs by brand",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{"brand"})

	// categoryProducts tracks the product count distribution per category fetch.
	categoryProducts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_scrape_category_products_count",
		Help:    "Number of products returned per category fetch",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})
)
