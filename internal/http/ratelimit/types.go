package ratelimit

import (
	"sync"
	"time"
)

// Config holds outbound request pacing and retry configuration
type Config struct {
	RequestsPerSecond int `json:"requestsPerSecond"`
	MaxRetries        int `json:"maxRetries"`
	InitialBackoffMs  int `json:"initialBackoffMs"`
	MaxBackoffMs      int `json:"maxBackoffMs"`
}

// DefaultConfig returns the default pacing configuration
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 2,
		MaxRetries:        3,
		InitialBackoffMs:  100,
		MaxBackoffMs:      30000,
	}
}

// PartialConfig allows per-adapter overrides of individual fields
type PartialConfig struct {
	RequestsPerSecond *int `json:"requestsPerSecond,omitempty"`
	MaxRetries        *int `json:"maxRetries,omitempty"`
	InitialBackoffMs  *int `json:"initialBackoffMs,omitempty"`
	MaxBackoffMs      *int `json:"maxBackoffMs,omitempty"`
}

// Merge returns the config with the given overrides applied on top
func (c Config) Merge(overrides PartialConfig) Config {
	if overrides.RequestsPerSecond != nil {
		c.RequestsPerSecond = *overrides.RequestsPerSecond
	}
	if overrides.MaxRetries != nil {
		c.MaxRetries = *overrides.MaxRetries
	}
	if overrides.InitialBackoffMs != nil {
		c.InitialBackoffMs = *overrides.InitialBackoffMs
	}
	if overrides.MaxBackoffMs != nil {
		c.MaxBackoffMs = *overrides.MaxBackoffMs
	}
	return c
}

// WithOverrides returns the default config with the given overrides applied
func WithOverrides(overrides PartialConfig) Config {
	return DefaultConfig().Merge(overrides)
}

// Pacer spaces outbound requests so a source API sees at most
// RequestsPerSecond calls. Safe for concurrent use.
type Pacer struct {
	mu          sync.Mutex
	config      Config
	lastRequest time.Time
}

// NewPacer creates a pacer with the given config
func NewPacer(config Config) *Pacer {
	return &Pacer{config: config}
}

// Throttle blocks until the next request is allowed to go out
func (p *Pacer) Throttle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.RequestsPerSecond <= 0 {
		p.lastRequest = time.Now()
		return
	}

	minInterval := time.Second / time.Duration(p.config.RequestsPerSecond)
	if elapsed := time.Since(p.lastRequest); elapsed < minInterval {
		time.Sleep(minInterval - elapsed)
	}
	p.lastRequest = time.Now()
}

// Reset clears the pacer state
func (p *Pacer) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastRequest = time.Time{}
}
