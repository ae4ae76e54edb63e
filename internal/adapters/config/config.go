package config

import (
	"strings"

	"github.com/modera/catalog-service/internal/http/ratelimit"
)

// BrandKey represents unique identifier for each supported brand source
type BrandKey string

const (
	BrandZara     BrandKey = "zara"
	BrandPullBear BrandKey = "pullbear"
)

// BrandKeys contains all valid brand keys
var BrandKeys = []BrandKey{
	BrandZara,
	BrandPullBear,
}

// NormalizeBrandKey folds a display brand name into its key form.
// "Pull&Bear", "pull & bear" and "PULLBEAR" all map to "pullbear".
func NormalizeBrandKey(name string) BrandKey {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return BrandKey(b.String())
}

// BrandConfig contains adapter-level configuration for a brand source
type BrandConfig struct {
	Key         BrandKey          `json:"key"`
	Name        string            `json:"name"`
	EndpointKey string            `json:"endpointKey,omitempty"`
	// CategoryURLTemplate is used by adapters that address categories by raw
	// external id; {categoryId} is substituted per request.
	CategoryURLTemplate string                   `json:"categoryUrlTemplate,omitempty"`
	Headers             map[string]string        `json:"headers,omitempty"`
	RateLimitOverrides  *ratelimit.PartialConfig `json:"-"`
}

// BrandConfigs contains all brand configurations. Endpoint templates and base
// URLs live in each brand row's api_config; only transport-level defaults that
// never vary per deployment belong here.
var BrandConfigs = map[BrandKey]BrandConfig{
	BrandZara: {
		Key:         BrandZara,
		Name:        "Zara",
		EndpointKey: "categoryProducts",
		Headers: map[string]string{
			"Accept":          "application/json",
			"Accept-Language": "en-US,en;q=0.9",
		},
		RateLimitOverrides: &ratelimit.PartialConfig{
			RequestsPerSecond: intPtr(1),
			MaxRetries:        intPtr(4),
		},
	},
	BrandPullBear: {
		Key:                 BrandPullBear,
		Name:                "Pull&Bear",
		CategoryURLTemplate: "https://www.pullandbear.com/itxrest/3/catalog/store/25009521/20309457/category/{categoryId}/product?languageId=-1&appId=1",
		Headers: map[string]string{
			"Accept": "application/json",
		},
		RateLimitOverrides: &ratelimit.PartialConfig{
			RequestsPerSecond: intPtr(1),
		},
	},
}

// GetBrandConfig returns the configuration for a brand
func GetBrandConfig(key BrandKey) (BrandConfig, bool) {
	config, ok := BrandConfigs[key]
	return config, ok
}

// IsValidBrandKey checks if a string is a valid brand key
func IsValidBrandKey(value string) bool {
	for _, key := range BrandKeys {
		if string(key) == value {
			return true
		}
	}
	return false
}

func intPtr(v int) *int {
	return &v
}
