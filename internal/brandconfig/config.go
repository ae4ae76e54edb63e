// Package brandconfig parses the per-brand JSON API configuration stored on a
// brand row and builds concrete request URLs from its endpoint templates.
package brandconfig

import (
	"encoding/json"
	"strings"
)

// BaseURLs holds the configured base URLs for a brand's API.
// Main is preferred; API is the fallback.
type BaseURLs struct {
	Main string `json:"main,omitempty"`
	API  string `json:"api,omitempty"`
}

// Config is the typed form of a brand's apiConfig JSON blob
type Config struct {
	Endpoints map[string]string `json:"endpoints"`
	BaseURLs  BaseURLs          `json:"baseUrls"`
	Headers   map[string]string `json:"headers,omitempty"`
}

// Parse decodes a raw apiConfig blob into a typed Config. It fails soft:
// a nil, empty, or malformed blob yields nil, signaling "no endpoints
// available" so the orchestrator skips the brand instead of halting a batch.
func Parse(raw *string) *Config {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}

	var cfg Config
	if err := json.Unmarshal([]byte(*raw), &cfg); err != nil {
		return nil
	}
	if len(cfg.Endpoints) == 0 {
		return nil
	}
	return &cfg
}

// HasEndpoint reports whether the config carries a template for the given key
func (c *Config) HasEndpoint(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Endpoints[key]
	return ok
}

// baseURL returns the configured base URL, preferring main over api
func (c *Config) baseURL() string {
	if c.BaseURLs.Main != "" {
		return c.BaseURLs.Main
	}
	return c.BaseURLs.API
}

// BuildURL looks up a named endpoint template, substitutes each {param} token
// with the string form of the supplied value, and prefixes the configured base
// URL. It fails closed: an unknown endpoint key, a nil config, or a missing
// base URL all return "" so callers treat the brand/endpoint combination as
// not scrapeable rather than emitting a malformed URL.
func (c *Config) BuildURL(endpointKey string, params map[string]string) string {
	if c == nil {
		return ""
	}

	template, ok := c.Endpoints[endpointKey]
	if !ok || template == "" {
		return ""
	}

	base := c.baseURL()
	if base == "" && !strings.HasPrefix(template, "http://") && !strings.HasPrefix(template, "https://") {
		return ""
	}

	path := template
	for name, value := range params {
		path = strings.ReplaceAll(path, "{"+name+"}", value)
	}

	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
