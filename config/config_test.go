package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modera/catalog-service/internal/http/ratelimit"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 3, cfg.RateLimit.MaxRetries)
	assert.Equal(t, 4, cfg.Scrape.MaxConcurrentRuns)
}

func TestToRateLimit(t *testing.T) {
	section := RateLimitConfig{
		RequestsPerSecond: 9,
		MaxRetries:        1,
		InitialBackoffMs:  250,
		MaxBackoffMs:      10000,
	}
	assert.Equal(t, ratelimit.Config{
		RequestsPerSecond: 9,
		MaxRetries:        1,
		InitialBackoffMs:  250,
		MaxBackoffMs:      10000,
	}, section.ToRateLimit())
}

func TestDefaultsMatchClientDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ratelimit.DefaultConfig(), cfg.RateLimit.ToRateLimit())
}
