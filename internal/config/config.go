package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Cache backend selectors used by catalog.list_cache and catalog.item_cache.
const (
	CacheLocal = "local"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Cache    CacheConfig    `koanf:"cache"`
	Catalog  CatalogConfig  `koanf:"catalog"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host    string     `koanf:"host"`
	Port    int        `koanf:"port"`
	Mode    string     `koanf:"mode"`
	Timeout string     `koanf:"timeout"`
	CORS    CORSConfig `koanf:"cors"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// CacheConfig holds the settings of both cache backends.
type CacheConfig struct {
	Local LocalCacheConfig `koanf:"local"`
	Redis RedisConfig      `koanf:"redis"`
}

// LocalCacheConfig tunes the in-process sharded cache.
type LocalCacheConfig struct {
	Capacity           int    `koanf:"capacity"`
	NumShards          int    `koanf:"num_shards"`
	MaxTTL             string `koanf:"max_ttl"`
	EvictionPercentage int    `koanf:"eviction_percentage"`
}

// RedisConfig holds the networked cache connection settings.
type RedisConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Addr        string `koanf:"addr"`
	Password    string `koanf:"password"`
	DB          int    `koanf:"db"`
	KeyPrefix   string `koanf:"key_prefix"`
	DialTimeout string `koanf:"dial_timeout"`
}

// CatalogConfig holds list defaults, bounds, and cache policy for the catalog API.
type CatalogConfig struct {
	MaxPageSize       int    `koanf:"max_page_size"`
	DefaultPageSize   int    `koanf:"default_page_size"`
	DefaultSortColumn string `koanf:"default_sort_column"`
	DefaultSortOrder  string `koanf:"default_sort_order"`
	ListTTL           string `koanf:"list_ttl"`
	ItemTTL           string `koanf:"item_ttl"`
	ListCache         string `koanf:"list_cache"`
	ItemCache         string `koanf:"item_cache"`
}

// Load reads configuration from a YAML file and overlays environment variables.
// Environment variables use the prefix "APP__" and double-underscore as the
// hierarchy separator. Single underscores are preserved as part of the key name.
// For example, APP__CACHE__REDIS__ADDR=redis:6379 overrides cache.redis.addr and
// APP__CATALOG__MAX_PAGE_SIZE=50 overrides catalog.max_page_size.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}

	if err := k.Load(env.Provider("APP__", ".", func(s string) string {
		key := strings.TrimPrefix(s, "APP__")
		key = strings.ToLower(key)
		key = strings.ReplaceAll(key, "__", ".")
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints and supported values, filling in
// defaults for omitted cache and catalog settings.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateCatalog()
}

func (c *Config) validateServer() error {
	mode := strings.TrimSpace(c.Server.Mode)
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		c.Server.Mode = mode
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", c.Server.Mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	host := strings.TrimSpace(c.Server.Host)
	if host == "" {
		return fmt.Errorf("server.host is required")
	}
	c.Server.Host = host

	// Whitespace-only means unset.
	c.Server.Timeout = strings.TrimSpace(c.Server.Timeout)
	c.Server.CORS.MaxAge = strings.TrimSpace(c.Server.CORS.MaxAge)

	if err := optionalDuration("server.timeout", c.Server.Timeout); err != nil {
		return err
	}
	return optionalDuration("server.cors.max_age", c.Server.CORS.MaxAge)
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "sqlite":
		sqlitePath := strings.TrimSpace(c.Database.SQLite.Path)
		if sqlitePath == "" {
			return fmt.Errorf("database.sqlite.path is required when driver is sqlite")
		}
		c.Database.SQLite.Path = sqlitePath
	case "postgres":
		if err := c.validatePostgres(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid database.driver %q: must be one of %q, %q", c.Database.Driver, "sqlite", "postgres")
	}

	c.Database.Pool.ConnMaxLifetime = strings.TrimSpace(c.Database.Pool.ConnMaxLifetime)
	return optionalDuration("database.pool.conn_max_lifetime", c.Database.Pool.ConnMaxLifetime)
}

func (c *Config) validatePostgres() error {
	pg := &c.Database.Postgres

	host := strings.TrimSpace(pg.Host)
	if host == "" {
		return fmt.Errorf("database.postgres.host is required when driver is postgres")
	}
	if pg.Port < 1 || pg.Port > 65535 {
		return fmt.Errorf("invalid database.postgres.port %d: must be between 1 and 65535", pg.Port)
	}
	user := strings.TrimSpace(pg.User)
	if user == "" {
		return fmt.Errorf("database.postgres.user is required when driver is postgres")
	}
	dbName := strings.TrimSpace(pg.DBName)
	if dbName == "" {
		return fmt.Errorf("database.postgres.dbname is required when driver is postgres")
	}

	sslMode := strings.TrimSpace(pg.SSLMode)
	switch sslMode {
	case "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("invalid database.postgres.sslmode %q: must be one of %q, %q, %q, %q, %q, %q", pg.SSLMode, "disable", "allow", "prefer", "require", "verify-ca", "verify-full")
	}
	if c.Server.Mode == gin.ReleaseMode {
		switch sslMode {
		case "require", "verify-ca", "verify-full":
		default:
			return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q", pg.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
		}
	}

	pg.Host = host
	pg.User = user
	pg.DBName = dbName
	pg.SSLMode = sslMode
	return nil
}

func (c *Config) validateLog() error {
	level := strings.ToLower(strings.TrimSpace(c.Log.Level))
	switch level {
	case "debug", "info", "warn", "error":
		c.Log.Level = level
	default:
		return fmt.Errorf("invalid log.level %q: must be one of %q, %q, %q, %q", c.Log.Level, "debug", "info", "warn", "error")
	}

	format := strings.ToLower(strings.TrimSpace(c.Log.Format))
	switch format {
	case "text", "json":
		c.Log.Format = format
	default:
		return fmt.Errorf("invalid log.format %q: must be one of %q, %q", c.Log.Format, "text", "json")
	}
	return nil
}

func (c *Config) validateCache() error {
	local := &c.Cache.Local
	if local.Capacity == 0 {
		local.Capacity = 10000
	}
	if local.NumShards == 0 {
		local.NumShards = 64
	}
	if local.EvictionPercentage == 0 {
		local.EvictionPercentage = 10
	}
	local.MaxTTL = defaultString(local.MaxTTL, "5m")

	if local.Capacity < 0 {
		return fmt.Errorf("invalid cache.local.capacity %d: must be positive", local.Capacity)
	}
	if local.NumShards < 0 {
		return fmt.Errorf("invalid cache.local.num_shards %d: must be positive", local.NumShards)
	}
	if local.EvictionPercentage < 1 || local.EvictionPercentage > 100 {
		return fmt.Errorf("invalid cache.local.eviction_percentage %d: must be between 1 and 100", local.EvictionPercentage)
	}
	if err := optionalDuration("cache.local.max_ttl", local.MaxTTL); err != nil {
		return err
	}

	r := &c.Cache.Redis
	r.Addr = strings.TrimSpace(r.Addr)
	r.DialTimeout = defaultString(r.DialTimeout, "2s")
	if err := optionalDuration("cache.redis.dial_timeout", r.DialTimeout); err != nil {
		return err
	}
	if r.DB < 0 {
		return fmt.Errorf("invalid cache.redis.db %d: must not be negative", r.DB)
	}
	if r.Enabled && r.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required when redis is enabled")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	cat := &c.Catalog
	if cat.MaxPageSize == 0 {
		cat.MaxPageSize = 100
	}
	if cat.DefaultPageSize == 0 {
		cat.DefaultPageSize = 10
	}
	cat.DefaultSortColumn = defaultString(cat.DefaultSortColumn, "Name")
	cat.DefaultSortOrder = strings.ToUpper(defaultString(cat.DefaultSortOrder, "ASC"))
	cat.ListTTL = defaultString(cat.ListTTL, "30s")
	cat.ItemTTL = defaultString(cat.ItemTTL, "60s")
	cat.ListCache = strings.ToLower(defaultString(cat.ListCache, CacheLocal))
	cat.ItemCache = strings.ToLower(defaultString(cat.ItemCache, CacheLocal))

	if cat.MaxPageSize < 1 {
		return fmt.Errorf("invalid catalog.max_page_size %d: must be positive", cat.MaxPageSize)
	}
	if cat.DefaultPageSize < 1 || cat.DefaultPageSize > cat.MaxPageSize {
		return fmt.Errorf("invalid catalog.default_page_size %d: must be between 1 and %d", cat.DefaultPageSize, cat.MaxPageSize)
	}
	switch cat.DefaultSortOrder {
	case "ASC", "DESC":
	default:
		return fmt.Errorf("invalid catalog.default_sort_order %q: must be one of %q, %q", cat.DefaultSortOrder, "ASC", "DESC")
	}
	if err := optionalDuration("catalog.list_ttl", cat.ListTTL); err != nil {
		return err
	}
	if err := optionalDuration("catalog.item_ttl", cat.ItemTTL); err != nil {
		return err
	}

	// The local cache clamps every entry to cache.local.max_ttl, so a longer
	// catalog TTL would never take effect.
	maxTTL := MustDuration(c.Cache.Local.MaxTTL)
	for _, sel := range []struct {
		name    string
		value   string
		ttlName string
		ttl     string
	}{
		{"catalog.list_cache", cat.ListCache, "catalog.list_ttl", cat.ListTTL},
		{"catalog.item_cache", cat.ItemCache, "catalog.item_ttl", cat.ItemTTL},
	} {
		switch sel.value {
		case CacheNone:
		case CacheLocal:
			if ttl := MustDuration(sel.ttl); ttl > maxTTL {
				return fmt.Errorf("invalid %s %q: exceeds cache.local.max_ttl %q", sel.ttlName, sel.ttl, c.Cache.Local.MaxTTL)
			}
		case CacheRedis:
			if !c.Cache.Redis.Enabled {
				return fmt.Errorf("%s is %q but cache.redis.enabled is false", sel.name, CacheRedis)
			}
		default:
			return fmt.Errorf("invalid %s %q: must be one of %q, %q, %q", sel.name, sel.value, CacheLocal, CacheRedis, CacheNone)
		}
	}
	return nil
}

// MustDuration parses a duration that Validate has already accepted.
// Empty strings yield 0.
func MustDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		panic(fmt.Sprintf("config: unvalidated duration %q: %v", s, err))
	}
	return d
}

func optionalDuration(name, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid %s %q: must be greater than 0", name, value)
	}
	return nil
}

func defaultString(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
