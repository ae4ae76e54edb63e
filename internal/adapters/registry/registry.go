package registry

import (
	"fmt"
	"sync"

	"github.com/modera/catalog-service/internal/adapters/base"
	"github.com/modera/catalog-service/internal/adapters/brands"
	"github.com/modera/catalog-service/internal/adapters/config"
	"github.com/modera/catalog-service/internal/http/ratelimit"
)

// BrandKey identifies a brand source. Alias so callers outside the adapters
// tree do not have to import the adapter config package directly.
type BrandKey = config.BrandKey

// SourceAdapter is re-exported for callers resolving adapters by brand
type SourceAdapter = base.SourceAdapter

// Registry manages brand adapter registration and retrieval
type Registry struct {
	mu       sync.RWMutex
	adapters map[BrandKey]SourceAdapter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[BrandKey]SourceAdapter),
	}
}

// Default returns a registry with all implemented brand adapters registered.
// rateBase is the deployment-wide outbound pacing config; each adapter
// applies its own per-brand overrides on top.
func Default(rateBase ratelimit.Config) *Registry {
	r := NewRegistry()
	r.Register(config.BrandZara, brands.NewZaraAdapter(rateBase))
	r.Register(config.BrandPullBear, brands.NewPullBearAdapter(rateBase))
	return r
}

// Register registers an adapter for a brand key
func (r *Registry) Register(key BrandKey, adapter SourceAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[key] = adapter
}

// Get retrieves an adapter by brand key
func (r *Registry) Get(key BrandKey) (SourceAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[key]
	return adapter, ok
}

// GetByName resolves an adapter from a display brand name
func (r *Registry) GetByName(name string) (SourceAdapter, error) {
	key := config.NormalizeBrandKey(name)
	adapter, ok := r.Get(key)
	if !ok {
		return nil, fmt.Errorf("no adapter implementation for brand: %s", name)
	}
	return adapter, nil
}

// Keys returns all registered brand keys
func (r *Registry) Keys() []BrandKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]BrandKey, 0, len(r.adapters))
	for key := range r.adapters {
		keys = append(keys, key)
	}
	return keys
}

// IsRegistered checks if a brand has an adapter
func (r *Registry) IsRegistered(key BrandKey) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.adapters[key]
	return ok
}
