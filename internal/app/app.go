package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/bglist/internal/cache"
	"github.com/simp-lee/bglist/internal/config"
	"github.com/simp-lee/bglist/internal/domain"
	"github.com/simp-lee/bglist/internal/middleware"
	"github.com/simp-lee/bglist/internal/module/catalog"
	"github.com/simp-lee/bglist/internal/pkg"
	"github.com/simp-lee/bglist/internal/query"
)

const shutdownTimeout = 5 * time.Second

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine   *gin.Engine
	db       *gorm.DB
	redis    *redis.Client
	registry *prometheus.Registry
	logger   *logger.Logger
	cfg      *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from a validated Config.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	a := &App{logger: log, cfg: cfg}
	success := false
	defer func() {
		if !success {
			a.close()
		}
	}()

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 exposes permissive CORS")
	}

	a.db, err = config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	if cfg.Server.Mode == gin.DebugMode {
		if err := config.Migrate(a.db, &domain.BoardGame{}, &domain.Domain{}, &domain.Mechanic{}); err != nil {
			return nil, err
		}
		log.Info("auto migration completed")
	}

	a.redis, err = config.SetupRedis(&cfg.Cache.Redis, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup redis: %w", err)
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	catalogOpts, err := newCatalogOptions(cfg, log.Logger, a.redis, cache.NewMetrics(a.registry))
	if err != nil {
		return nil, err
	}

	registry := query.CatalogRegistry()
	validator, err := query.NewValidator(registry, query.Options{
		MaxPageSize:       cfg.Catalog.MaxPageSize,
		DefaultPageSize:   cfg.Catalog.DefaultPageSize,
		DefaultSortColumn: cfg.Catalog.DefaultSortColumn,
		DefaultSortOrder:  domain.SortOrder(cfg.Catalog.DefaultSortOrder),
	})
	if err != nil {
		return nil, fmt.Errorf("setup list validator: %w", err)
	}
	if err := pkg.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	a.engine = gin.New()

	corsConfig, err := resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS)
	if err != nil {
		return nil, err
	}
	a.engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestID(),
		middleware.NoCacheDefault(),
		middleware.Logger(log.Logger),
		middleware.NewHTTPMetrics(a.registry).Handler(),
		middleware.CORSWithConfig(corsConfig),
		middleware.Timeout(config.MustDuration(cfg.Server.Timeout)),
	)

	modules := catalog.NewModules(catalog.Deps{
		DB:        a.db,
		Registry:  registry,
		Validator: validator,
		Options:   catalogOpts,
	})
	deps := &RouteDeps{
		Modules:  []Module{modules.BoardGames, modules.Domains, modules.Mechanics},
		DB:       a.db,
		Gatherer: a.registry,
	}
	if a.redis != nil {
		deps.Redis = redisPinger{a.redis}
	}
	if err := RegisterRoutes(a.engine, deps); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return a, nil
}

// newCatalogOptions builds the list and item cache layers selected by
// catalog.list_cache and catalog.item_cache. Both layers share one backend
// instance per kind; their keys never collide.
func newCatalogOptions(cfg *config.Config, log *slog.Logger, rdb *redis.Client, metrics *cache.Metrics) (catalog.Options, error) {
	var local, shared cache.Cache
	backend := func(kind string) (cache.Cache, error) {
		switch kind {
		case config.CacheLocal:
			if local == nil {
				l, err := cache.NewLocal(cache.LocalConfig{
					Capacity:           cfg.Cache.Local.Capacity,
					NumShards:          cfg.Cache.Local.NumShards,
					MaxTTL:             config.MustDuration(cfg.Cache.Local.MaxTTL),
					EvictionPercentage: cfg.Cache.Local.EvictionPercentage,
				})
				if err != nil {
					return nil, fmt.Errorf("setup local cache: %w", err)
				}
				local = l
			}
			return local, nil
		case config.CacheRedis:
			if rdb == nil {
				return nil, errors.New("redis cache selected but redis is disabled")
			}
			if shared == nil {
				shared = cache.NewRedis(rdb, cfg.Cache.Redis.KeyPrefix)
			}
			return shared, nil
		default:
			return nil, nil
		}
	}

	layer := func(name, kind string) (*cache.Layer, error) {
		b, err := backend(kind)
		if err != nil || b == nil {
			return nil, err
		}
		log.Info("cache layer enabled", slog.String("cache", name), slog.String("backend", kind))
		return cache.NewLayer(name, b, cache.WithLogger(log), cache.WithMetrics(metrics)), nil
	}

	listLayer, err := layer("list", cfg.Catalog.ListCache)
	if err != nil {
		return catalog.Options{}, err
	}
	itemLayer, err := layer("item", cfg.Catalog.ItemCache)
	if err != nil {
		return catalog.Options{}, err
	}

	return catalog.Options{
		ListCache: listLayer,
		ItemCache: itemLayer,
		ListTTL:   config.MustDuration(cfg.Catalog.ListTTL),
		ItemTTL:   config.MustDuration(cfg.Catalog.ItemTTL),
	}, nil
}

// resolveCORSConfig overlays configured CORS settings on the defaults. In
// release mode an empty allow list denies every cross-origin request.
func resolveCORSConfig(mode string, cfg config.CORSConfig) (middleware.CORSConfig, error) {
	out := middleware.DefaultCORSConfig()

	switch {
	case len(cfg.AllowOrigins) > 0:
		out.AllowOrigins = cfg.AllowOrigins
	case mode == gin.ReleaseMode:
		out.AllowOrigins = []string{}
	}
	if len(cfg.AllowMethods) > 0 {
		out.AllowMethods = cfg.AllowMethods
	}
	if len(cfg.AllowHeaders) > 0 {
		out.AllowHeaders = cfg.AllowHeaders
	}
	out.AllowCredentials = cfg.AllowCredentials

	if cfg.MaxAge != "" {
		d, err := time.ParseDuration(cfg.MaxAge)
		if err != nil {
			return middleware.CORSConfig{}, fmt.Errorf("invalid server.cors.max_age %q: %w", cfg.MaxAge, err)
		}
		out.MaxAge = d
	}
	return out, nil
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM or a server
// error, then shuts down gracefully and releases the store, Redis, and logger.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	log := a.log()
	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", slog.Any("error", err))
		}
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped")
	a.close()
	return runErr
}

func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}

// close releases every resource New acquired. It is safe on a partially built App.
func (a *App) close() {
	log := a.log()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Error("redis close error", slog.Any("error", err))
		}
		a.redis = nil
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Error("database close error", slog.Any("error", err))
			} else {
				log.Info("database connection closed")
			}
		}
		a.db = nil
	}

	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
		a.logger = nil
	}
}
