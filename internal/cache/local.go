package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/viccon/sturdyc"
)

// LocalConfig holds the settings of the in-process backend.
type LocalConfig struct {
	// Capacity is the maximum number of entries. Must be greater than 0.
	Capacity int

	// NumShards spreads entries over independently locked shards. Must be greater than 0.
	NumShards int

	// MaxTTL caps every per-entry TTL. Must be greater than 0.
	MaxTTL time.Duration

	// EvictionPercentage is the share of entries evicted when the cache is full (1-100).
	EvictionPercentage int
}

// DefaultLocalConfig returns a LocalConfig suitable for a single API process.
func DefaultLocalConfig() LocalConfig {
	return LocalConfig{
		Capacity:           10000,
		NumShards:          64,
		MaxTTL:             5 * time.Minute,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid.
func (c LocalConfig) Validate() error {
	if c.Capacity <= 0 {
		return errors.New("local cache capacity must be greater than 0")
	}
	if c.NumShards <= 0 {
		return errors.New("local cache num_shards must be greater than 0")
	}
	if c.MaxTTL <= 0 {
		return errors.New("local cache max_ttl must be greater than 0")
	}
	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return fmt.Errorf("local cache eviction_percentage %d must be between 1 and 100", c.EvictionPercentage)
	}
	return nil
}

type localEntry struct {
	value     []byte
	expiresAt time.Time
}

// Local is an in-process backend built on a sharded sturdyc client.
// Every entry carries its own expiry, so responders may use different TTLs
// against the same instance.
type Local struct {
	client *sturdyc.Client[localEntry]
	maxTTL time.Duration
	now    func() time.Time
}

// LocalOption configures a Local backend.
type LocalOption func(*Local)

// WithClock replaces the time source used for entry expiry.
func WithClock(now func() time.Time) LocalOption {
	return func(l *Local) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLocal creates an in-process backend.
func NewLocal(cfg LocalConfig, opts ...LocalOption) (*Local, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	l := &Local{
		client: sturdyc.New[localEntry](cfg.Capacity, cfg.NumShards, cfg.MaxTTL, cfg.EvictionPercentage),
		maxTTL: cfg.MaxTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Get implements Cache.
func (l *Local) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := l.client.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !l.now().Before(e.expiresAt) {
		l.client.Delete(key)
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set implements Cache. TTLs above MaxTTL are clamped; non-positive TTLs store nothing.
func (l *Local) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if ttl > l.maxTTL {
		ttl = l.maxTTL
	}
	l.client.Set(key, localEntry{value: slices.Clone(value), expiresAt: l.now().Add(ttl)})
	return nil
}

// Len returns the number of stored entries, expired ones included until evicted.
func (l *Local) Len() int {
	return l.client.Size()
}
