// Package cache provides the read-through cache used by the catalog responders.
//
// Backends store opaque bytes with a TTL. A Layer wraps a backend with
// get-or-compute semantics: a hit is decoded and returned without computing,
// a miss computes and stores the result. Backend failures never fail the
// request; the layer logs them and falls back to computing directly.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Cache is the contract every backend implements.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Get returns (nil, false, nil) on a miss; absent and expired entries are
//     indistinguishable.
//   - A non-nil error means the backend itself failed.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Layer adds get-or-compute semantics, failure fallback, logging, and metrics
// to a backend. A nil *Layer, or one without a backend, always computes.
type Layer struct {
	name    string
	backend Cache
	logger  *slog.Logger
	metrics *Metrics
}

// LayerOption configures a Layer.
type LayerOption func(*Layer)

// WithLogger sets the logger used for backend failures and hit/miss traces.
func WithLogger(logger *slog.Logger) LayerOption {
	return func(l *Layer) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithMetrics records hits, misses, and backend errors.
func WithMetrics(m *Metrics) LayerOption {
	return func(l *Layer) {
		l.metrics = m
	}
}

// NewLayer wraps backend under the given name. The name labels logs and metrics.
func NewLayer(name string, backend Cache, opts ...LayerOption) *Layer {
	l := &Layer{
		name:    name,
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Name returns the layer name.
func (l *Layer) Name() string {
	if l == nil {
		return "none"
	}
	return l.name
}

// GetOrCompute returns the cached value for key, or runs compute and caches its
// result for ttl. Errors from compute are returned and never cached.
//
// Concurrent misses on the same key may all compute; the last write wins.
func GetOrCompute[T any](ctx context.Context, l *Layer, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	if l == nil || l.backend == nil || ttl <= 0 {
		return compute(ctx)
	}

	raw, ok, err := l.backend.Get(ctx, key)
	if err != nil {
		l.metrics.observe(l.name, resultError)
		l.logger.WarnContext(ctx, "cache get failed, computing directly",
			slog.String("cache", l.name),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return compute(ctx)
	}

	if ok {
		var v T
		err = json.Unmarshal(raw, &v)
		if err == nil {
			l.metrics.observe(l.name, resultHit)
			l.logger.DebugContext(ctx, "cache hit", slog.String("cache", l.name), slog.String("key", key))
			return v, nil
		}
		l.logger.WarnContext(ctx, "cache entry undecodable, treating as miss",
			slog.String("cache", l.name),
			slog.String("key", key),
			slog.Any("error", err),
		)
	}

	l.metrics.observe(l.name, resultMiss)
	l.logger.DebugContext(ctx, "cache miss", slog.String("cache", l.name), slog.String("key", key))

	v, err := compute(ctx)
	if err != nil {
		return v, err
	}

	encoded, err := json.Marshal(v)
	if err != nil {
		l.logger.WarnContext(ctx, "cache value not encodable",
			slog.String("cache", l.name),
			slog.String("key", key),
			slog.Any("error", err),
		)
		return v, nil
	}
	if err := l.backend.Set(ctx, key, encoded, ttl); err != nil {
		l.metrics.observe(l.name, resultError)
		l.logger.WarnContext(ctx, "cache set failed",
			slog.String("cache", l.name),
			slog.String("key", key),
			slog.Any("error", err),
		)
	}
	return v, nil
}
