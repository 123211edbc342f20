package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/AsimRauf/jewellery-store-sub002/internal/store"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store/elasticsearch"
	"github.com/AsimRauf/jewellery-store-sub002/internal/store/mongo"
	pkgconfig "github.com/AsimRauf/jewellery-store-sub002/pkg/config"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/database"
	"github.com/AsimRauf/jewellery-store-sub002/pkg/tracing"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMemory        = "memory"
	BackendPostgres      = "postgres"
	BackendMongo         = "mongo"
	BackendElasticsearch = "elasticsearch"
)

// Backends returns every supported store backend.
func Backends() []string {
	return []string{BackendMemory, BackendPostgres, BackendMongo, BackendElasticsearch}
}

// Config holds all configuration for the catalog search service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"catalog-search"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort            int           `env:"HTTP_PORT" envDefault:"8080"`
	HTTPRequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"15s"`
	SearchCacheMaxAge   int           `env:"SEARCH_CACHE_MAX_AGE" envDefault:"30"`
	CORSAllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`
	AdminToken          string        `env:"ADMIN_TOKEN"`
	AdminJWTSecret      string        `env:"ADMIN_JWT_SECRET"`
	SearchRateLimit     float64       `env:"SEARCH_RATE_LIMIT" envDefault:"50"`
	SearchRateBurst     int           `env:"SEARCH_RATE_BURST" envDefault:"100"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`

	// Search fan-out
	SearchConcurrency     int           `env:"SEARCH_CONCURRENCY" envDefault:"9"`
	SearchCategoryTimeout time.Duration `env:"SEARCH_CATEGORY_TIMEOUT" envDefault:"5s"`

	// Store backend (memory, postgres, mongo or elasticsearch)
	StoreBackend       string        `env:"STORE_BACKEND" envDefault:"memory"`
	FixturePath        string        `env:"FIXTURE_PATH"`
	SlowQueryThreshold time.Duration `env:"SLOW_QUERY_THRESHOLD" envDefault:"250ms"`

	Postgres      database.PostgresConfig
	Mongo         mongo.Config
	Elasticsearch elasticsearch.Config
	Breaker       store.BreakerConfig

	// Redis search cache
	CacheEnabled bool          `env:"CACHE_ENABLED" envDefault:"false"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	Redis        database.RedisConfig

	// Kafka catalog change events
	KafkaEnabled        bool          `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers        []string      `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	KafkaGroupID        string        `env:"KAFKA_GROUP_ID" envDefault:"catalog-search"`
	KafkaDeadLetter     bool          `env:"KAFKA_DEAD_LETTER" envDefault:"true"`
	KafkaIdempotencyTTL time.Duration `env:"KAFKA_IDEMPOTENCY_TTL" envDefault:"24h"`

	Tracing tracing.Config
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load catalog search config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Tracing.ServiceName = cfg.ServiceName
	cfg.Tracing.Environment = cfg.Environment
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if !slices.Contains(Backends(), c.StoreBackend) {
		return fmt.Errorf("invalid STORE_BACKEND %q: must be one of %v", c.StoreBackend, Backends())
	}
	if c.SearchConcurrency < 1 {
		return fmt.Errorf("invalid SEARCH_CONCURRENCY: %d", c.SearchConcurrency)
	}
	if c.SearchCategoryTimeout < 0 {
		return fmt.Errorf("invalid SEARCH_CATEGORY_TIMEOUT: %s", c.SearchCategoryTimeout)
	}
	if c.SearchRateLimit < 0 || (c.SearchRateLimit > 0 && c.SearchRateBurst < 1) {
		return fmt.Errorf("invalid search rate limit: %g/s burst %d", c.SearchRateLimit, c.SearchRateBurst)
	}
	if c.CacheEnabled && c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when the cache is enabled")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when Kafka is enabled")
	}
	return nil
}
