package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modera/catalog-service/internal/adapters/config"
	"github.com/modera/catalog-service/internal/http/ratelimit"
)

func TestDefaultRegistersAllBrands(t *testing.T) {
	r := Default(ratelimit.DefaultConfig())

	for _, key := range config.BrandKeys {
		assert.True(t, r.IsRegistered(key), "brand %s must be registered", key)
	}
	assert.Len(t, r.Keys(), len(config.BrandKeys))
}

func TestGetByName(t *testing.T) {
	r := Default(ratelimit.DefaultConfig())

	tests := []struct {
		name        string
		brandName   string
		expectedKey BrandKey
		wantErr     bool
	}{
		{"exact key", "zara", config.BrandZara, false},
		{"display name", "Zara", config.BrandZara, false},
		{"ampersand folded", "Pull&Bear", config.BrandPullBear, false},
		{"spaced variant", "pull & bear", config.BrandPullBear, false},
		{"unsupported brand", "Bershka", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := r.GetByName(tt.brandName)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedKey, adapter.Key())
		})
	}
}

func TestZaraRequiresBuiltURL(t *testing.T) {
	r := Default(ratelimit.DefaultConfig())

	zara, ok := r.Get(config.BrandZara)
	require.True(t, ok)
	assert.Equal(t, "categoryProducts", zara.EndpointKey())

	pullbear, ok := r.Get(config.BrandPullBear)
	require.True(t, ok)
	assert.Empty(t, pullbear.EndpointKey(), "addresses categories by raw api id")
}
