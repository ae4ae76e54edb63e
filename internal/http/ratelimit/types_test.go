package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeAppliesOverridesOnBase(t *testing.T) {
	base := Config{RequestsPerSecond: 5, MaxRetries: 2, InitialBackoffMs: 50, MaxBackoffMs: 5000}

	one := 1
	merged := base.Merge(PartialConfig{RequestsPerSecond: &one})
	assert.Equal(t, 1, merged.RequestsPerSecond)
	assert.Equal(t, 2, merged.MaxRetries, "fields without an override keep the base value")
	assert.Equal(t, 50, merged.InitialBackoffMs)
	assert.Equal(t, 5000, merged.MaxBackoffMs)
}

func TestMergeWithoutOverridesReturnsBase(t *testing.T) {
	base := Config{RequestsPerSecond: 7, MaxRetries: 1, InitialBackoffMs: 10, MaxBackoffMs: 100}
	assert.Equal(t, base, base.Merge(PartialConfig{}))
}

func TestWithOverridesStartsFromDefaults(t *testing.T) {
	four := 4
	cfg := WithOverrides(PartialConfig{MaxRetries: &four})
	assert.Equal(t, DefaultConfig().RequestsPerSecond, cfg.RequestsPerSecond)
	assert.Equal(t, 4, cfg.MaxRetries)
}
