// Package usecase implements the analysis orchestration over an AI backend
// client, the result cache, and the reflection history store.
package usecase

import (
	"time"

	"github.com/kagami-lab/kagami/pkg/domain/interfaces"
)

// UseCases bundles the analysis operations exposed to the CLI and hosts
type UseCases struct {
	client      interfaces.Client
	reflections interfaces.ReflectionRepository
	cache       *analysisCache
	marker      string
	now         func() time.Time
}

// Option configures UseCases construction
type Option func(*config)

type config struct {
	reflections interfaces.ReflectionRepository
	marker      string
	cacheTTL    time.Duration
	cacheSize   int
	now         func() time.Time
}

// WithReflections attaches a reflection store. Without one, analyses are not
// recorded.
func WithReflections(repo interfaces.ReflectionRepository) Option {
	return func(c *config) {
		c.reflections = repo
	}
}

// WithPrivateMarker sets the delimiter for private content spans stripped
// before anything is sent to an AI backend. Empty disables sanitization.
func WithPrivateMarker(marker string) Option {
	return func(c *config) {
		c.marker = marker
	}
}

// WithCacheTTL overrides the analysis cache TTL
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.cacheTTL = ttl
	}
}

// WithCacheSize overrides the analysis cache capacity
func WithCacheSize(size int) Option {
	return func(c *config) {
		c.cacheSize = size
	}
}

// WithClock injects a clock for tests
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// New creates the use case bundle around an AI backend client
func New(client interfaces.Client, opts ...Option) *UseCases {
	cfg := &config{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &UseCases{
		client:      client,
		reflections: cfg.reflections,
		cache:       newAnalysisCache(cfg.cacheTTL, cfg.cacheSize, cfg.now),
		marker:      cfg.marker,
		now:         cfg.now,
	}
}
