package base

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/modera/catalog-service/internal/adapters/config"
	httpclient "github.com/modera/catalog-service/internal/http"
	"github.com/modera/catalog-service/internal/http/ratelimit"
	"github.com/modera/catalog-service/internal/types"
)

// SourceAdapter interface defines the contract for all brand source adapters.
// Adapters are pure fetch+normalize functions and never touch the catalog.
type SourceAdapter interface {
	Key() config.BrandKey
	Name() string
	// EndpointKey names the brand-config endpoint template the orchestrator
	// must resolve into a full URL before calling ScrapeCategoryProducts.
	// Empty means the adapter addresses categories by raw external api id.
	EndpointKey() string
	// ScrapeCategoryProducts fetches one category worth of products. handle is
	// either a fully built URL or a raw external category id, per EndpointKey.
	// limit > 0 truncates the result for sampling runs. A transport failure is
	// an error; a 200 with zero products is ([]types.Product{}, nil).
	ScrapeCategoryProducts(ctx context.Context, handle string, limit int) ([]types.Product, error)
}

// Adapter provides common implementations for all brand adapters
type Adapter struct {
	key         config.BrandKey
	name        string
	endpointKey string
	httpClient  *httpclient.Client
}

// NewAdapter creates a base adapter from the brand's static configuration.
// rateBase is the deployment-wide pacing config; per-brand overrides from
// the brand configuration are applied on top.
func NewAdapter(cfg config.BrandConfig, rateBase ratelimit.Config) *Adapter {
	rateLimitConfig := rateBase
	if cfg.RateLimitOverrides != nil {
		rateLimitConfig = rateBase.Merge(*cfg.RateLimitOverrides)
	}

	client := httpclient.NewClient(rateLimitConfig)
	if len(cfg.Headers) > 0 {
		client.SetHeaders(cfg.Headers)
	}

	return &Adapter{
		key:         cfg.Key,
		name:        cfg.Name,
		endpointKey: cfg.EndpointKey,
		httpClient:  client,
	}
}

// Key returns the brand key
func (a *Adapter) Key() config.BrandKey {
	return a.key
}

// Name returns the brand display name
func (a *Adapter) Name() string {
	return a.name
}

// EndpointKey returns the brand-config endpoint key, or "" for raw-id adapters
func (a *Adapter) EndpointKey() string {
	return a.endpointKey
}

// HTTPClient returns the HTTP client for making requests
func (a *Adapter) HTTPClient() *httpclient.Client {
	return a.httpClient
}

// FetchJSON fetches url and decodes the response body into out
func (a *Adapter) FetchJSON(ctx context.Context, url string, out interface{}) error {
	body, err := a.httpClient.GetBytes(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", a.name, err)
	}
	return nil
}

// ToCents converts a decimal price in major currency units to integer cents
func ToCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ApplyLimit truncates products to limit when limit is positive
func ApplyLimit(products []types.Product, limit int) []types.Product {
	if limit > 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}

// CleanText collapses whitespace runs and trims the result
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FirstNonEmpty returns the first non-blank string among candidates
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

// NormalizeAvailability maps brand-specific stock spellings onto the enum
func NormalizeAvailability(raw string) types.Availability {
	return types.ParseAvailability(raw)
}
