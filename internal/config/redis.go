package config

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// SetupRedis returns a client for the networked cache, or nil when Redis is
// disabled. An unreachable server is logged and tolerated: cache reads then
// fail over to the store until the server comes back.
func SetupRedis(cfg *RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	if cfg == nil {
		return nil, errors.New("redis config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}
	if !cfg.Enabled {
		return nil, nil
	}
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}

	dialTimeout := MustDuration(cfg.DialTimeout)
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	ctx := context.Background()
	if dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dialTimeout)
		defer cancel()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, cache will fall back to the store",
			slog.String("addr", cfg.Addr),
			slog.Any("error", err),
		)
	} else {
		logger.Info("redis connected", slog.String("addr", cfg.Addr), slog.Int("db", cfg.DB))
	}

	return client, nil
}
